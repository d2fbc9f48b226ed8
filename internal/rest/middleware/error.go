package middleware

import (
	"github.com/gin-gonic/gin"

	ierr "github.com/lumenbill/lumenbill/internal/errors"
)

// ErrorHandler translates errors attached by handlers into the API error
// shape. Handlers call c.Error(err) and return; this middleware owns the
// status code mapping and the response body.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		c.JSON(ierr.HTTPStatusFromErr(err), ierr.NewErrorResponse(err))
	}
}

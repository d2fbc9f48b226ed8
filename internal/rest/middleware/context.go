package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/lumenbill/lumenbill/internal/types"
)

// RequestContextMiddleware seeds the request context with the request ID and
// the caller's tenant and environment. A missing request ID gets generated
// so every log line downstream is correlatable.
func RequestContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		requestID := c.GetHeader(types.HeaderRequestID)
		if requestID == "" {
			requestID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REQUEST)
		}
		ctx = types.SetRequestID(ctx, requestID)

		if tenantID := c.GetHeader(types.HeaderTenantID); tenantID != "" {
			ctx = types.SetTenantID(ctx, tenantID)
		}
		if environmentID := c.GetHeader(types.HeaderEnvironmentID); environmentID != "" {
			ctx = types.SetEnvironmentID(ctx, environmentID)
		}

		c.Header(types.HeaderRequestID, requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

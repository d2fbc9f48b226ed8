package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ierr "github.com/lumenbill/lumenbill/internal/errors"
	"github.com/lumenbill/lumenbill/internal/logger"
	"github.com/lumenbill/lumenbill/internal/service"
)

type CheckoutSessionHandler struct {
	checkoutService service.CheckoutSessionService
	log             *logger.Logger
}

func NewCheckoutSessionHandler(checkoutService service.CheckoutSessionService, log *logger.Logger) *CheckoutSessionHandler {
	return &CheckoutSessionHandler{
		checkoutService: checkoutService,
		log:             log,
	}
}

// @Summary Confirm a checkout session
// @Description Resolves the customer, finalizes the fee calculation and updates the payment intent. Only open sessions can be confirmed.
// @Tags Checkout Sessions
// @Produce json
// @Param id path string true "Checkout Session ID"
// @Success 200 {object} dto.ConfirmCheckoutSessionResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 422 {object} ierr.ErrorResponse
// @Router /checkout-sessions/{id}/confirm [post]
func (h *CheckoutSessionHandler) ConfirmCheckoutSession(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("checkout session id is required").
			WithHint("Provide the checkout session ID in the path").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.checkoutService.Confirm(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

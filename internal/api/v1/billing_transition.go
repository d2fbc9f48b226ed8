package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lumenbill/lumenbill/internal/api/dto"
	ierr "github.com/lumenbill/lumenbill/internal/errors"
	"github.com/lumenbill/lumenbill/internal/logger"
	"github.com/lumenbill/lumenbill/internal/service"
)

type BillingTransitionHandler struct {
	transitionService service.BillingPeriodTransitionService
	log               *logger.Logger
}

func NewBillingTransitionHandler(transitionService service.BillingPeriodTransitionService, log *logger.Logger) *BillingTransitionHandler {
	return &BillingTransitionHandler{
		transitionService: transitionService,
		log:               log,
	}
}

// @Summary Process a billing period transition
// @Description Grants entitlement usage credits and expires stale ones for one period boundary. Safe to redeliver.
// @Tags Billing Periods
// @Accept json
// @Produce json
// @Param id path string true "Subscription ID"
// @Param payload body dto.BillingPeriodTransitionRequest true "Transition payload"
// @Success 200 {object} dto.BillingPeriodTransitionResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /subscriptions/{id}/transition [post]
func (h *BillingTransitionHandler) ProcessTransition(c *gin.Context) {
	var req dto.BillingPeriodTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}
	req.SubscriptionID = c.Param("id")

	resp, err := h.transitionService.ProcessTransition(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

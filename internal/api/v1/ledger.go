package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lumenbill/lumenbill/internal/logger"
	"github.com/lumenbill/lumenbill/internal/service"
)

type LedgerHandler struct {
	ledgerService service.LedgerService
	log           *logger.Logger
}

func NewLedgerHandler(ledgerService service.LedgerService, log *logger.Logger) *LedgerHandler {
	return &LedgerHandler{
		ledgerService: ledgerService,
		log:           log,
	}
}

// @Summary Get a ledger account balance
// @Description Returns posted credits minus posted debits for the subscription's account on one usage meter.
// @Tags Ledger
// @Produce json
// @Param id path string true "Subscription ID"
// @Param meter_id path string true "Usage Meter ID"
// @Success 200 {object} dto.LedgerAccountBalanceResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /subscriptions/{id}/balances/{meter_id} [get]
func (h *LedgerHandler) GetAccountBalance(c *gin.Context) {
	resp, err := h.ledgerService.GetAccountBalance(c.Request.Context(), c.Param("id"), c.Param("meter_id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Discard a ledger entry
// @Description Soft-voids an entry so it no longer counts toward balances. Idempotent.
// @Tags Ledger
// @Produce json
// @Param id path string true "Ledger Entry ID"
// @Success 200 {object} map[string]bool
// @Failure 404 {object} ierr.ErrorResponse
// @Router /ledger-entries/{id}/discard [post]
func (h *LedgerHandler) DiscardEntry(c *gin.Context) {
	if err := h.ledgerService.DiscardEntry(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"discarded": true})
}

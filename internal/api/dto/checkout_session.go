package dto

import (
	"github.com/lumenbill/lumenbill/internal/domain/customer"
)

// ConfirmCheckoutSessionResponse is returned by checkout confirmation.
type ConfirmCheckoutSessionResponse struct {
	Customer         *customer.Customer `json:"customer"`
	TotalDueAmount   int64              `json:"total_due_amount"`
	TotalFeeAmount   int64              `json:"total_fee_amount"`
	FeeCalculationID string             `json:"fee_calculation_id,omitempty"`
}

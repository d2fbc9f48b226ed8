package dto

import (
	"github.com/lumenbill/lumenbill/internal/domain/ledgerentry"
	"github.com/lumenbill/lumenbill/internal/domain/usagecredit"
	ierr "github.com/lumenbill/lumenbill/internal/errors"
	"github.com/lumenbill/lumenbill/internal/types"
)

// BillingPeriodTransitionRequest is the command to run one billing period
// transition for a subscription. Delivered by the scheduler or a webhook.
type BillingPeriodTransitionRequest struct {
	SubscriptionID string                               `json:"subscription_id"`
	Payload        types.BillingPeriodTransitionPayload `json:"payload"`
}

func (r *BillingPeriodTransitionRequest) Validate() error {
	if r.SubscriptionID == "" {
		return ierr.NewError("subscription_id is required").
			WithHint("Provide the subscription to transition").
			Mark(ierr.ErrValidation)
	}
	return r.Payload.Validate()
}

// BillingPeriodTransitionResponse is the result of one transition command.
// Both slices are empty when no feature item was eligible, and when the
// command had already been processed (AlreadyProcessed set).
type BillingPeriodTransitionResponse struct {
	LedgerTransactionID string                     `json:"ledger_transaction_id,omitempty"`
	UsageCredits        []*usagecredit.UsageCredit `json:"usage_credits"`
	LedgerEntries       []*ledgerentry.LedgerEntry `json:"ledger_entries"`
	ExpiredEntries      []*ledgerentry.LedgerEntry `json:"expired_entries,omitempty"`
	AlreadyProcessed    bool                       `json:"already_processed,omitempty"`
}

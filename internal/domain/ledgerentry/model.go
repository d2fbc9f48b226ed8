package ledgerentry

import (
	"time"

	ierr "github.com/lumenbill/lumenbill/internal/errors"
	"github.com/lumenbill/lumenbill/internal/types"
)

// LedgerEntry is a single typed movement against a ledger account. Entries
// are append-only: correcting a mistake appends an offsetting entry or marks
// the original discarded. Amount and direction never change after posting.
type LedgerEntry struct {
	ID                  string                     `json:"id" gorm:"column:id;primaryKey"`
	LedgerTransactionID string                     `json:"ledger_transaction_id" gorm:"column:ledger_transaction_id;index"`
	LedgerAccountID     string                     `json:"ledger_account_id" gorm:"column:ledger_account_id;index"`
	SubscriptionID      string                     `json:"subscription_id" gorm:"column:subscription_id;index"`
	UsageMeterID        string                     `json:"usage_meter_id" gorm:"column:usage_meter_id"`
	Direction           types.LedgerEntryDirection `json:"direction" gorm:"column:direction"`
	EntryType           types.LedgerEntryType      `json:"entry_type" gorm:"column:entry_type"`
	Amount              int64                      `json:"amount" gorm:"column:amount"`
	EntryStatus         types.LedgerEntryStatus    `json:"entry_status" gorm:"column:entry_status"`
	// SourceUsageCreditID is a back-reference to the credit this entry
	// recognizes or consumes; never an ownership link.
	SourceUsageCreditID *string    `json:"source_usage_credit_id,omitempty" gorm:"column:source_usage_credit_id;index"`
	BillingPeriodID     *string    `json:"billing_period_id,omitempty" gorm:"column:billing_period_id"`
	EntryTimestamp      time.Time  `json:"entry_timestamp" gorm:"column:entry_timestamp"`
	DiscardedAt         *time.Time `json:"discarded_at,omitempty" gorm:"column:discarded_at"`
	EnvironmentID       string     `json:"environment_id" gorm:"column:environment_id;index"`
	types.BaseModel
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

func (e *LedgerEntry) Validate() error {
	if err := e.Direction.Validate(); err != nil {
		return err
	}
	if e.LedgerTransactionID == "" {
		return ierr.NewError("ledger_transaction_id is required").Mark(ierr.ErrValidation)
	}
	if e.LedgerAccountID == "" {
		return ierr.NewError("ledger_account_id is required").Mark(ierr.ErrValidation)
	}
	if e.Amount < 0 {
		return ierr.NewError("entry amount cannot be negative").
			WithHint("Use direction debit instead of a negative amount").
			WithReportableDetails(map[string]interface{}{"amount": e.Amount}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// SignedAmount returns the entry's contribution to the account balance:
// positive for credits, negative for debits, zero once discarded.
func (e *LedgerEntry) SignedAmount() int64 {
	if e.EntryStatus == types.LedgerEntryStatusDiscarded {
		return 0
	}
	if e.Direction == types.LedgerEntryDirectionDebit {
		return -e.Amount
	}
	return e.Amount
}

package ledgertransaction

import (
	ierr "github.com/lumenbill/lumenbill/internal/errors"
	"github.com/lumenbill/lumenbill/internal/types"
)

// LedgerTransaction groups the ledger entries produced by one command into
// a single economic event. The idempotency key carries a unique index, so a
// redelivered command conflicts on insert instead of double-applying.
type LedgerTransaction struct {
	ID                   string                            `json:"id" gorm:"column:id;primaryKey"`
	SubscriptionID       string                            `json:"subscription_id" gorm:"column:subscription_id;index"`
	InitiatingSourceType types.LedgerTransactionSourceType `json:"initiating_source_type" gorm:"column:initiating_source_type"`
	InitiatingSourceID   string                            `json:"initiating_source_id" gorm:"column:initiating_source_id"`
	IdempotencyKey       string                            `json:"idempotency_key" gorm:"column:idempotency_key;uniqueIndex"`
	Description          string                            `json:"description" gorm:"column:description"`
	EnvironmentID        string                            `json:"environment_id" gorm:"column:environment_id;index"`
	types.BaseModel
}

func (LedgerTransaction) TableName() string {
	return "ledger_transactions"
}

func (t *LedgerTransaction) Validate() error {
	if t.SubscriptionID == "" {
		return ierr.NewError("subscription_id is required").Mark(ierr.ErrValidation)
	}
	if t.IdempotencyKey == "" {
		return ierr.NewError("idempotency_key is required").Mark(ierr.ErrValidation)
	}
	return nil
}

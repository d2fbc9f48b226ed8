package usagecredit

import (
	"time"

	ierr "github.com/lumenbill/lumenbill/internal/errors"
	"github.com/lumenbill/lumenbill/internal/types"
)

// UsageCredit is an immutable grant of consumable credit. IssuedAmount is
// fixed at creation; consumption is tracked through ledger entries, never by
// mutating the credit row. Amounts are integer minor-currency units.
type UsageCredit struct {
	ID                  string                               `json:"id" gorm:"column:id;primaryKey"`
	Amount              int64                                `json:"amount" gorm:"column:amount"`
	IssuedAmount        int64                                `json:"issued_amount" gorm:"column:issued_amount"`
	CreditStatus        types.UsageCreditStatus              `json:"credit_status" gorm:"column:credit_status"`
	CreditType          types.UsageCreditType                `json:"credit_type" gorm:"column:credit_type"`
	SourceReferenceType types.UsageCreditSourceReferenceType `json:"source_reference_type" gorm:"column:source_reference_type"`
	UsageMeterID        string                               `json:"usage_meter_id" gorm:"column:usage_meter_id;index"`
	SubscriptionID      string                               `json:"subscription_id" gorm:"column:subscription_id;index"`
	BillingPeriodID     *string                              `json:"billing_period_id,omitempty" gorm:"column:billing_period_id"`
	PaymentID           *string                              `json:"payment_id,omitempty" gorm:"column:payment_id"`
	// ExpiresAt is nil for evergreen credits (one-time and credit-trial
	// grants); recurring grants expire at the end of the billing period.
	ExpiresAt     *time.Time     `json:"expires_at,omitempty" gorm:"column:expires_at"`
	IssuedAt      time.Time      `json:"issued_at" gorm:"column:issued_at"`
	Notes         *string        `json:"notes,omitempty" gorm:"column:notes"`
	Metadata      types.Metadata `json:"metadata,omitempty" gorm:"column:metadata;serializer:json"`
	EnvironmentID string         `json:"environment_id" gorm:"column:environment_id;index"`
	types.BaseModel
}

func (UsageCredit) TableName() string {
	return "usage_credits"
}

func (c *UsageCredit) Validate() error {
	if c.SubscriptionID == "" {
		return ierr.NewError("subscription_id is required").Mark(ierr.ErrValidation)
	}
	if c.UsageMeterID == "" {
		return ierr.NewError("usage_meter_id is required").Mark(ierr.ErrValidation)
	}
	if c.Amount < 0 {
		return ierr.NewError("credit amount cannot be negative").
			WithReportableDetails(map[string]interface{}{"amount": c.Amount}).
			Mark(ierr.ErrValidation)
	}
	if c.IssuedAmount != c.Amount {
		return ierr.NewError("issued_amount must equal amount at creation").
			WithReportableDetails(map[string]interface{}{
				"amount":        c.Amount,
				"issued_amount": c.IssuedAmount,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

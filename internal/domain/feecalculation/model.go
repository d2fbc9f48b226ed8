package feecalculation

import (
	"time"

	"github.com/shopspring/decimal"

	ierr "github.com/lumenbill/lumenbill/internal/errors"
	"github.com/lumenbill/lumenbill/internal/types"
)

var hundred = decimal.NewFromInt(100)

// FeeCalculation is the fee breakdown computed for a checkout session.
// Monetary amounts are integer minor-currency units; only the percentage
// rate uses decimal arithmetic. A calculation is finalized exactly once and
// immutable afterwards.
type FeeCalculation struct {
	ID                string `json:"id" gorm:"column:id;primaryKey"`
	CheckoutSessionID string `json:"checkout_session_id" gorm:"column:checkout_session_id;index"`
	Currency          string `json:"currency" gorm:"column:currency"`

	BaseAmount     int64 `json:"base_amount" gorm:"column:base_amount"`
	DiscountAmount int64 `json:"discount_amount" gorm:"column:discount_amount"`
	TaxAmount      int64 `json:"tax_amount" gorm:"column:tax_amount"`
	FlatFeeAmount  int64 `json:"flat_fee_amount" gorm:"column:flat_fee_amount"`
	// PercentageFeeRate is the processing fee rate in percent, bounded to
	// [0, 100].
	PercentageFeeRate decimal.Decimal `json:"percentage_fee_rate" gorm:"column:percentage_fee_rate;type:numeric(7,4)"`

	CalculationStatus types.FeeCalculationStatus `json:"calculation_status" gorm:"column:calculation_status"`
	FinalizedAt       *time.Time                 `json:"finalized_at,omitempty" gorm:"column:finalized_at"`
	EnvironmentID     string                     `json:"environment_id" gorm:"column:environment_id;index"`
	types.BaseModel
}

func (FeeCalculation) TableName() string {
	return "fee_calculations"
}

func (f *FeeCalculation) Validate() error {
	if f.CheckoutSessionID == "" {
		return ierr.NewError("checkout_session_id is required").Mark(ierr.ErrValidation)
	}
	if f.BaseAmount < 0 || f.DiscountAmount < 0 || f.TaxAmount < 0 || f.FlatFeeAmount < 0 {
		return ierr.NewError("fee calculation amounts cannot be negative").
			Mark(ierr.ErrValidation)
	}
	if f.PercentageFeeRate.IsNegative() || f.PercentageFeeRate.GreaterThan(hundred) {
		return ierr.NewError("percentage fee rate must be between 0 and 100").
			WithReportableDetails(map[string]interface{}{
				"percentage_fee_rate": f.PercentageFeeRate.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsFinalized reports whether the calculation has been finalized.
func (f *FeeCalculation) IsFinalized() bool {
	return f.CalculationStatus == types.FeeCalculationStatusFinalized
}

// TotalDueAmount is the amount the customer pays: base minus discount plus
// tax, floored at zero.
func (f *FeeCalculation) TotalDueAmount() int64 {
	due := f.BaseAmount - f.DiscountAmount + f.TaxAmount
	if due < 0 {
		return 0
	}
	return due
}

// TotalFeeAmount is the platform fee: the flat fee plus the percentage rate
// applied to the amount due, rounded half-up to a minor unit.
func (f *FeeCalculation) TotalFeeAmount() int64 {
	due := decimal.NewFromInt(f.TotalDueAmount())
	pct := due.Mul(f.PercentageFeeRate).Div(hundred).Round(0)
	return f.FlatFeeAmount + pct.IntPart()
}

package billingperiod

import (
	"time"

	ierr "github.com/lumenbill/lumenbill/internal/errors"
	"github.com/lumenbill/lumenbill/internal/types"
)

// BillingPeriod is one billing cycle of a subscription.
type BillingPeriod struct {
	ID             string                    `json:"id" gorm:"column:id;primaryKey"`
	SubscriptionID string                    `json:"subscription_id" gorm:"column:subscription_id;index"`
	StartDate      time.Time                 `json:"start_date" gorm:"column:start_date"`
	EndDate        time.Time                 `json:"end_date" gorm:"column:end_date"`
	PeriodStatus   types.BillingPeriodStatus `json:"period_status" gorm:"column:period_status"`
	EnvironmentID  string                    `json:"environment_id" gorm:"column:environment_id;index"`
	types.BaseModel
}

func (BillingPeriod) TableName() string {
	return "billing_periods"
}

func (p *BillingPeriod) Validate() error {
	if p.SubscriptionID == "" {
		return ierr.NewError("subscription_id is required").Mark(ierr.ErrValidation)
	}
	if p.EndDate.Before(p.StartDate) {
		return ierr.NewError("billing period ends before it starts").
			WithReportableDetails(map[string]interface{}{
				"start_date": p.StartDate,
				"end_date":   p.EndDate,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Ref returns the payload slice of this period.
func (p *BillingPeriod) Ref() types.BillingPeriodRef {
	return types.BillingPeriodRef{ID: p.ID, StartDate: p.StartDate, EndDate: p.EndDate}
}

package subscription

import (
	"time"

	"github.com/lumenbill/lumenbill/internal/types"
)

// Subscription is the minimal subscription slice this core reads: identity
// and tenancy. Plan management and lifecycle live outside the ledger path.
type Subscription struct {
	ID            string     `json:"id" gorm:"column:id;primaryKey"`
	CustomerID    string     `json:"customer_id" gorm:"column:customer_id;index"`
	PlanID        *string    `json:"plan_id,omitempty" gorm:"column:plan_id"`
	StartDate     time.Time  `json:"start_date" gorm:"column:start_date"`
	CanceledAt    *time.Time `json:"canceled_at,omitempty" gorm:"column:canceled_at"`
	EnvironmentID string     `json:"environment_id" gorm:"column:environment_id;index"`
	types.BaseModel
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// FeatureItem is a subscription feature entitlement. Toggle features have no
// usage meter and never touch the ledger; usage-credit-grant features carry
// an amount, a meter and a renewal frequency. Read-only to the ledger core.
type FeatureItem struct {
	ID               string                 `json:"id" gorm:"column:id;primaryKey"`
	SubscriptionID   string                 `json:"subscription_id" gorm:"column:subscription_id;index"`
	FeatureID        string                 `json:"feature_id" gorm:"column:feature_id"`
	FeatureType      types.FeatureType      `json:"feature_type" gorm:"column:feature_type"`
	Amount           int64                  `json:"amount" gorm:"column:amount"`
	UsageMeterID     *string                `json:"usage_meter_id,omitempty" gorm:"column:usage_meter_id"`
	RenewalFrequency types.RenewalFrequency `json:"renewal_frequency" gorm:"column:renewal_frequency"`
	DetachedAt       *time.Time             `json:"detached_at,omitempty" gorm:"column:detached_at"`
	EnvironmentID    string                 `json:"environment_id" gorm:"column:environment_id;index"`
	types.BaseModel
}

func (FeatureItem) TableName() string {
	return "subscription_feature_items"
}

// IsMetered reports whether the item participates in usage credit grants.
func (f *FeatureItem) IsMetered() bool {
	return f.UsageMeterID != nil && *f.UsageMeterID != ""
}

package billingperiod

import (
	"context"

	"github.com/lumenbill/lumenbill/internal/types"
)

// Repository defines persistence operations for billing periods.
type Repository interface {
	// Create inserts a billing period.
	Create(ctx context.Context, period *BillingPeriod) error

	// Get retrieves a billing period by ID.
	Get(ctx context.Context, id string) (*BillingPeriod, error)

	// UpdateStatus moves a period to a new lifecycle status.
	UpdateStatus(ctx context.Context, id string, status types.BillingPeriodStatus) error
}

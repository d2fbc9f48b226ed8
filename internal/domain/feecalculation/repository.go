package feecalculation

import "context"

// Repository defines persistence operations for fee calculations.
type Repository interface {
	// Create inserts a fee calculation.
	Create(ctx context.Context, calc *FeeCalculation) error

	// Get retrieves a fee calculation by ID.
	Get(ctx context.Context, id string) (*FeeCalculation, error)

	// Update persists status transitions (finalization only).
	Update(ctx context.Context, calc *FeeCalculation) error

	// GetLatestByCheckoutSession returns the most recent calculation for a
	// session, or nil when none exists yet.
	GetLatestByCheckoutSession(ctx context.Context, checkoutSessionID string) (*FeeCalculation, error)
}

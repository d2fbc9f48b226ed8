package checkoutsession

import "context"

// Repository defines persistence operations for checkout sessions.
type Repository interface {
	// Get retrieves a checkout session by ID.
	Get(ctx context.Context, id string) (*CheckoutSession, error)

	// Update persists session mutations (status transitions, customer
	// attachment).
	Update(ctx context.Context, session *CheckoutSession) error
}

package purchase

import "context"

// Repository defines read operations over purchases.
type Repository interface {
	// Get retrieves a purchase by ID.
	Get(ctx context.Context, id string) (*Purchase, error)
}

package customer

import "context"

// Repository defines persistence operations for customers.
type Repository interface {
	// Create inserts a new customer. A duplicate external ID fails with
	// ErrAlreadyExists.
	Create(ctx context.Context, customer *Customer) error

	// Get retrieves a customer by ID.
	Get(ctx context.Context, id string) (*Customer, error)

	// Update persists mutable customer fields (name, address, gateway IDs).
	Update(ctx context.Context, customer *Customer) error
}

package ledgertransaction

import "context"

// Repository defines persistence operations for ledger transactions.
type Repository interface {
	// Create inserts a ledger transaction. A duplicate idempotency key
	// fails with ErrAlreadyExists.
	Create(ctx context.Context, txn *LedgerTransaction) error

	// Get retrieves a ledger transaction by ID.
	Get(ctx context.Context, id string) (*LedgerTransaction, error)

	// GetByIdempotencyKey returns the transaction created for a key, or nil
	// when the command has not been processed yet.
	GetByIdempotencyKey(ctx context.Context, key string) (*LedgerTransaction, error)
}

package ledgeraccount

import "context"

// Repository defines persistence operations for ledger accounts.
type Repository interface {
	// Create inserts a new ledger account. A concurrent creation for the
	// same (subscription, usage meter) pair fails with ErrAlreadyExists.
	Create(ctx context.Context, account *LedgerAccount) error

	// Get retrieves a ledger account by ID.
	Get(ctx context.Context, id string) (*LedgerAccount, error)

	// GetBySubscriptionAndMeter retrieves the account for one pair, or nil
	// when none exists.
	GetBySubscriptionAndMeter(ctx context.Context, subscriptionID, usageMeterID string) (*LedgerAccount, error)

	// FindOrCreate resolves accounts for every given usage meter, creating
	// missing ones. Implementations must be idempotent under concurrent
	// callers: insert, catch the uniqueness conflict, re-select. Returns a
	// map keyed by usage meter ID.
	FindOrCreate(ctx context.Context, subscriptionID string, usageMeterIDs []string) (map[string]*LedgerAccount, error)
}

package usagecredit

import (
	"context"
	"time"
)

// Repository defines persistence operations for usage credits. Credits are
// insert-only; there is no update operation.
type Repository interface {
	// CreateBulk inserts credits in one statement inside the caller's
	// transaction and returns them in input order.
	CreateBulk(ctx context.Context, credits []*UsageCredit) ([]*UsageCredit, error)

	// Get retrieves a usage credit by ID.
	Get(ctx context.Context, id string) (*UsageCredit, error)

	// ListBySubscription returns all credits for a subscription, newest first.
	ListBySubscription(ctx context.Context, subscriptionID string) ([]*UsageCredit, error)

	// ListExpiring returns posted credits for the subscription whose
	// expiry falls in (from, to]. Used by the expiry sweep at period close.
	ListExpiring(ctx context.Context, subscriptionID string, from, to time.Time) ([]*UsageCredit, error)
}

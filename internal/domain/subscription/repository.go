package subscription

import "context"

// Repository defines read operations over subscriptions and their feature
// items. The ledger core never writes subscriptions.
type Repository interface {
	// Get retrieves a subscription by ID.
	Get(ctx context.Context, id string) (*Subscription, error)

	// ListFeatureItems returns the subscription's non-detached feature
	// items ordered by ID for deterministic processing.
	ListFeatureItems(ctx context.Context, subscriptionID string) ([]*FeatureItem, error)
}

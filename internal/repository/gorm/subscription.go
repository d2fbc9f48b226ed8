package gorm

import (
	"context"
	"errors"

	gormdb "gorm.io/gorm"

	domainSubscription "github.com/lumenbill/lumenbill/internal/domain/subscription"
	ierr "github.com/lumenbill/lumenbill/internal/errors"
	"github.com/lumenbill/lumenbill/internal/logger"
	"github.com/lumenbill/lumenbill/internal/postgres"
	"github.com/lumenbill/lumenbill/internal/types"
)

type subscriptionRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(client postgres.IClient, logger *logger.Logger) domainSubscription.Repository {
	return &subscriptionRepository{
		client: client,
		logger: logger,
	}
}

func (r *subscriptionRepository) Get(ctx context.Context, id string) (*domainSubscription.Subscription, error) {
	var sub domainSubscription.Subscription
	err := r.client.Querier(ctx).
		Where("id = ? AND tenant_id = ?", id, types.GetTenantID(ctx)).
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gormdb.ErrRecordNotFound) {
			return nil, ierr.NewErrorf("subscription not found: %s", id).
				WithHint("The subscription does not exist").
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get subscription").
			Mark(ierr.ErrDatabase)
	}
	return &sub, nil
}

func (r *subscriptionRepository) ListFeatureItems(ctx context.Context, subscriptionID string) ([]*domainSubscription.FeatureItem, error) {
	var items []*domainSubscription.FeatureItem
	err := r.client.Querier(ctx).
		Where("subscription_id = ? AND tenant_id = ? AND detached_at IS NULL",
			subscriptionID, types.GetTenantID(ctx)).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list subscription feature items").
			WithReportableDetails(map[string]interface{}{"subscription_id": subscriptionID}).
			Mark(ierr.ErrDatabase)
	}
	return items, nil
}

package gorm

import (
	"context"
	"errors"
	"time"

	gormdb "gorm.io/gorm"

	domainUsageCredit "github.com/lumenbill/lumenbill/internal/domain/usagecredit"
	ierr "github.com/lumenbill/lumenbill/internal/errors"
	"github.com/lumenbill/lumenbill/internal/logger"
	"github.com/lumenbill/lumenbill/internal/postgres"
	"github.com/lumenbill/lumenbill/internal/types"
)

type usageCreditRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

// NewUsageCreditRepository creates a new usage credit repository
func NewUsageCreditRepository(client postgres.IClient, logger *logger.Logger) domainUsageCredit.Repository {
	return &usageCreditRepository{
		client: client,
		logger: logger,
	}
}

func (r *usageCreditRepository) CreateBulk(ctx context.Context, credits []*domainUsageCredit.UsageCredit) ([]*domainUsageCredit.UsageCredit, error) {
	if len(credits) == 0 {
		return credits, nil
	}
	for _, c := range credits {
		if err := c.Validate(); err != nil {
			return nil, err
		}
	}
	r.logger.Debugw("bulk inserting usage credits", "count", len(credits))

	if err := r.client.Querier(ctx).Create(credits).Error; err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to insert usage credits").
			WithReportableDetails(map[string]interface{}{"count": len(credits)}).
			Mark(ierr.ErrDatabase)
	}
	return credits, nil
}

func (r *usageCreditRepository) Get(ctx context.Context, id string) (*domainUsageCredit.UsageCredit, error) {
	var credit domainUsageCredit.UsageCredit
	err := r.client.Querier(ctx).
		Where("id = ? AND tenant_id = ?", id, types.GetTenantID(ctx)).
		First(&credit).Error
	if err != nil {
		if errors.Is(err, gormdb.ErrRecordNotFound) {
			return nil, ierr.NewErrorf("usage credit not found: %s", id).
				WithHint("The usage credit does not exist").
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get usage credit").
			Mark(ierr.ErrDatabase)
	}
	return &credit, nil
}

func (r *usageCreditRepository) ListBySubscription(ctx context.Context, subscriptionID string) ([]*domainUsageCredit.UsageCredit, error) {
	var credits []*domainUsageCredit.UsageCredit
	err := r.client.Querier(ctx).
		Where("subscription_id = ? AND tenant_id = ?", subscriptionID, types.GetTenantID(ctx)).
		Order("issued_at DESC, id DESC").
		Find(&credits).Error
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list usage credits").
			WithReportableDetails(map[string]interface{}{"subscription_id": subscriptionID}).
			Mark(ierr.ErrDatabase)
	}
	return credits, nil
}

func (r *usageCreditRepository) ListExpiring(ctx context.Context, subscriptionID string, from, to time.Time) ([]*domainUsageCredit.UsageCredit, error) {
	var credits []*domainUsageCredit.UsageCredit
	err := r.client.Querier(ctx).
		Where("subscription_id = ? AND tenant_id = ? AND credit_status = ? AND expires_at > ? AND expires_at <= ?",
			subscriptionID, types.GetTenantID(ctx), types.UsageCreditStatusPosted, from, to).
		Order("id ASC").
		Find(&credits).Error
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list expiring usage credits").
			WithReportableDetails(map[string]interface{}{"subscription_id": subscriptionID}).
			Mark(ierr.ErrDatabase)
	}
	return credits, nil
}

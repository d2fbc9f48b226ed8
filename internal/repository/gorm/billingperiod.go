package gorm

import (
	"context"
	"errors"
	"time"

	gormdb "gorm.io/gorm"

	domainBillingPeriod "github.com/lumenbill/lumenbill/internal/domain/billingperiod"
	ierr "github.com/lumenbill/lumenbill/internal/errors"
	"github.com/lumenbill/lumenbill/internal/logger"
	"github.com/lumenbill/lumenbill/internal/postgres"
	"github.com/lumenbill/lumenbill/internal/types"
)

type billingPeriodRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

// NewBillingPeriodRepository creates a new billing period repository
func NewBillingPeriodRepository(client postgres.IClient, logger *logger.Logger) domainBillingPeriod.Repository {
	return &billingPeriodRepository{
		client: client,
		logger: logger,
	}
}

func (r *billingPeriodRepository) Create(ctx context.Context, period *domainBillingPeriod.BillingPeriod) error {
	if err := period.Validate(); err != nil {
		return err
	}
	if err := r.client.Querier(ctx).Create(period).Error; err != nil {
		if postgres.IsUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("A billing period with this ID already exists").
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create billing period").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *billingPeriodRepository) Get(ctx context.Context, id string) (*domainBillingPeriod.BillingPeriod, error) {
	var period domainBillingPeriod.BillingPeriod
	err := r.client.Querier(ctx).
		Where("id = ? AND tenant_id = ?", id, types.GetTenantID(ctx)).
		First(&period).Error
	if err != nil {
		if errors.Is(err, gormdb.ErrRecordNotFound) {
			return nil, ierr.NewErrorf("billing period not found: %s", id).
				WithHint("The billing period does not exist").
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get billing period").
			Mark(ierr.ErrDatabase)
	}
	return &period, nil
}

func (r *billingPeriodRepository) UpdateStatus(ctx context.Context, id string, status types.BillingPeriodStatus) error {
	res := r.client.Querier(ctx).
		Model(&domainBillingPeriod.BillingPeriod{}).
		Where("id = ? AND tenant_id = ?", id, types.GetTenantID(ctx)).
		Updates(map[string]interface{}{
			"period_status": status,
			"updated_at":    time.Now().UTC(),
		})
	if res.Error != nil {
		return ierr.WithError(res.Error).
			WithHint("Failed to update billing period status").
			WithReportableDetails(map[string]interface{}{"id": id, "status": status}).
			Mark(ierr.ErrDatabase)
	}
	if res.RowsAffected == 0 {
		return ierr.NewErrorf("billing period not found: %s", id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

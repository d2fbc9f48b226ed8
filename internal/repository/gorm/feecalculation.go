package gorm

import (
	"context"
	"errors"
	"time"

	gormdb "gorm.io/gorm"

	domainFeeCalculation "github.com/lumenbill/lumenbill/internal/domain/feecalculation"
	ierr "github.com/lumenbill/lumenbill/internal/errors"
	"github.com/lumenbill/lumenbill/internal/logger"
	"github.com/lumenbill/lumenbill/internal/postgres"
	"github.com/lumenbill/lumenbill/internal/types"
)

type feeCalculationRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

// NewFeeCalculationRepository creates a new fee calculation repository
func NewFeeCalculationRepository(client postgres.IClient, logger *logger.Logger) domainFeeCalculation.Repository {
	return &feeCalculationRepository{
		client: client,
		logger: logger,
	}
}

func (r *feeCalculationRepository) Create(ctx context.Context, calc *domainFeeCalculation.FeeCalculation) error {
	if err := calc.Validate(); err != nil {
		return err
	}
	r.logger.Debugw("creating fee calculation", "checkout_session_id", calc.CheckoutSessionID)

	if err := r.client.Querier(ctx).Create(calc).Error; err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create fee calculation").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *feeCalculationRepository) Get(ctx context.Context, id string) (*domainFeeCalculation.FeeCalculation, error) {
	var calc domainFeeCalculation.FeeCalculation
	err := r.client.Querier(ctx).
		Where("id = ? AND tenant_id = ?", id, types.GetTenantID(ctx)).
		First(&calc).Error
	if err != nil {
		if errors.Is(err, gormdb.ErrRecordNotFound) {
			return nil, ierr.NewErrorf("fee calculation not found: %s", id).
				WithHint("The fee calculation does not exist").
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get fee calculation").
			Mark(ierr.ErrDatabase)
	}
	return &calc, nil
}

func (r *feeCalculationRepository) Update(ctx context.Context, calc *domainFeeCalculation.FeeCalculation) error {
	calc.UpdatedAt = time.Now().UTC()
	calc.UpdatedBy = types.GetUserID(ctx)

	res := r.client.Querier(ctx).
		Where("id = ? AND tenant_id = ?", calc.ID, types.GetTenantID(ctx)).
		Save(calc)
	if res.Error != nil {
		return ierr.WithError(res.Error).
			WithHint("Failed to update fee calculation").
			WithReportableDetails(map[string]interface{}{"id": calc.ID}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *feeCalculationRepository) GetLatestByCheckoutSession(ctx context.Context, checkoutSessionID string) (*domainFeeCalculation.FeeCalculation, error) {
	var calc domainFeeCalculation.FeeCalculation
	err := r.client.Querier(ctx).
		Where("checkout_session_id = ? AND tenant_id = ?", checkoutSessionID, types.GetTenantID(ctx)).
		Order("created_at DESC, id DESC").
		First(&calc).Error
	if err != nil {
		if errors.Is(err, gormdb.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get latest fee calculation").
			WithReportableDetails(map[string]interface{}{"checkout_session_id": checkoutSessionID}).
			Mark(ierr.ErrDatabase)
	}
	return &calc, nil
}

package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lumenbill/lumenbill/internal/domain/checkoutsession"
	"github.com/lumenbill/lumenbill/internal/domain/feecalculation"
	ierr "github.com/lumenbill/lumenbill/internal/errors"
	"github.com/lumenbill/lumenbill/internal/types"
)

// FeeCalculationService computes and finalizes fee breakdowns for checkout
// sessions. A calculation is finalized exactly once per session; repeated
// finalization returns the existing record unchanged.
type FeeCalculationService interface {
	// GetOrCreateForCheckoutSession returns the latest fee calculation for
	// the session, creating one when none exists. AddPaymentMethod sessions
	// never get a calculation.
	GetOrCreateForCheckoutSession(ctx context.Context, session *checkoutsession.CheckoutSession) (*feecalculation.FeeCalculation, error)

	// Finalize marks the calculation finalized. Idempotent: an already
	// finalized calculation is returned as is.
	Finalize(ctx context.Context, calc *feecalculation.FeeCalculation) (*feecalculation.FeeCalculation, error)
}

type feeCalculationService struct {
	ServiceParams
}

func NewFeeCalculationService(params ServiceParams) FeeCalculationService {
	return &feeCalculationService{ServiceParams: params}
}

func (s *feeCalculationService) GetOrCreateForCheckoutSession(ctx context.Context, session *checkoutsession.CheckoutSession) (*feecalculation.FeeCalculation, error) {
	if session.SessionType == types.CheckoutSessionTypeAddPaymentMethod {
		return nil, ierr.NewError("add-payment-method sessions have no fee calculation").
			WithHint("Fee calculations only apply to sessions that charge the customer").
			Mark(ierr.ErrInvalidOperation)
	}

	existing, err := s.FeeCalculationRepo.GetLatestByCheckoutSession(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	calc := s.buildForSession(ctx, session)
	if err := s.FeeCalculationRepo.Create(ctx, calc); err != nil {
		return nil, err
	}
	s.Logger.WithContext(ctx).Infow("created fee calculation",
		"checkout_session_id", session.ID,
		"fee_calculation_id", calc.ID,
	)
	return calc, nil
}

func (s *feeCalculationService) Finalize(ctx context.Context, calc *feecalculation.FeeCalculation) (*feecalculation.FeeCalculation, error) {
	if calc == nil {
		return nil, ierr.NewError("fee calculation is required").Mark(ierr.ErrValidation)
	}
	if calc.IsFinalized() {
		return calc, nil
	}

	calc.CalculationStatus = types.FeeCalculationStatusFinalized
	now := time.Now().UTC()
	calc.FinalizedAt = &now
	if err := s.FeeCalculationRepo.Update(ctx, calc); err != nil {
		return nil, err
	}
	return calc, nil
}

// buildForSession constructs the pending calculation from the session's
// pricing snapshot and the platform fee schedule.
func (s *feeCalculationService) buildForSession(ctx context.Context, session *checkoutsession.CheckoutSession) *feecalculation.FeeCalculation {
	rate, err := decimal.NewFromString(s.Config.Fees.PercentageFeeRate)
	if err != nil {
		s.Logger.WithContext(ctx).Warnw("invalid percentage fee rate in config, using 0",
			"percentage_fee_rate", s.Config.Fees.PercentageFeeRate,
		)
		rate = decimal.Zero
	}
	return &feecalculation.FeeCalculation{
		ID:                types.GenerateUUIDWithPrefix(types.UUID_PREFIX_FEE_CALCULATION),
		CheckoutSessionID: session.ID,
		Currency:          session.Currency,
		BaseAmount:        session.BaseAmount,
		DiscountAmount:    session.DiscountAmount,
		TaxAmount:         session.TaxAmount,
		FlatFeeAmount:     s.Config.Fees.FlatFeeAmount,
		PercentageFeeRate: rate,
		CalculationStatus: types.FeeCalculationStatusPending,
		EnvironmentID:     types.GetEnvironmentID(ctx),
		BaseModel:         types.GetDefaultBaseModel(ctx),
	}
}

package service

import (
	"context"

	"github.com/samber/lo"

	"github.com/lumenbill/lumenbill/internal/api/dto"
	"github.com/lumenbill/lumenbill/internal/domain/checkoutsession"
	"github.com/lumenbill/lumenbill/internal/domain/customer"
	"github.com/lumenbill/lumenbill/internal/domain/feecalculation"
	ierr "github.com/lumenbill/lumenbill/internal/errors"
	"github.com/lumenbill/lumenbill/internal/integration/stripe"
	"github.com/lumenbill/lumenbill/internal/types"
)

// CheckoutSessionService drives checkout session confirmation: the state
// machine Open -> customer resolved -> fee calculation finalized -> payment
// intent updated -> Confirmed. Confirmation is idempotent with respect to
// gateway side effects: the gateway customer is created at most once and a
// finalized fee calculation is reused, never recreated.
type CheckoutSessionService interface {
	Confirm(ctx context.Context, id string) (*dto.ConfirmCheckoutSessionResponse, error)
}

type checkoutSessionService struct {
	ServiceParams
	feeService FeeCalculationService
}

func NewCheckoutSessionService(params ServiceParams, feeService FeeCalculationService) CheckoutSessionService {
	return &checkoutSessionService{
		ServiceParams: params,
		feeService:    feeService,
	}
}

func (s *checkoutSessionService) Confirm(ctx context.Context, id string) (*dto.ConfirmCheckoutSessionResponse, error) {
	var response *dto.ConfirmCheckoutSessionResponse
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		session, err := s.CheckoutSessionRepo.Get(ctx, id)
		if err != nil {
			return err
		}
		if !session.IsOpen() {
			return ierr.NewErrorf("checkout session is not open: %s", id).
				WithHint("Only open sessions can be confirmed").
				WithReportableDetails(map[string]interface{}{
					"id":     id,
					"status": session.SessionStatus,
				}).
				Mark(ierr.ErrInvalidOperation)
		}

		// Reuse any existing fee calculation before creating one: the
		// finalized-once invariant hangs off this lookup.
		var feeCalc *feecalculation.FeeCalculation
		if session.SessionType != types.CheckoutSessionTypeAddPaymentMethod {
			feeCalc, err = s.feeService.GetOrCreateForCheckoutSession(ctx, session)
			if err != nil {
				return err
			}
		}

		cust, err := s.resolveCustomer(ctx, session)
		if err != nil {
			return err
		}

		// Attach the customer to the session if it was resolved indirectly.
		if session.CustomerID == nil || *session.CustomerID != cust.ID {
			session.CustomerID = lo.ToPtr(cust.ID)
			if err := s.CheckoutSessionRepo.Update(ctx, session); err != nil {
				return err
			}
		}

		cust, err = s.ensureStripeCustomer(ctx, session, cust)
		if err != nil {
			return err
		}

		response = &dto.ConfirmCheckoutSessionResponse{Customer: cust}

		switch {
		case session.StripeSetupIntentID != nil:
			if err := s.attachCustomerToSetupIntent(ctx, session, cust); err != nil {
				return err
			}
		case session.StripePaymentIntentID != nil &&
			session.SessionType != types.CheckoutSessionTypeAddPaymentMethod &&
			feeCalc != nil:
			finalized, err := s.feeService.Finalize(ctx, feeCalc)
			if err != nil {
				return err
			}
			totalDue := finalized.TotalDueAmount()
			totalFee := finalized.TotalFeeAmount()

			params := stripe.UpdatePaymentIntentParams{
				CustomerID: lo.FromPtr(cust.StripeCustomerID),
				Amount:     totalDue,
			}
			if totalDue > 0 {
				params.ApplicationFeeAmount = lo.ToPtr(totalFee)
			}
			if err := s.StripeGateway.UpdatePaymentIntent(ctx, *session.StripePaymentIntentID, params); err != nil {
				return err
			}

			response.TotalDueAmount = totalDue
			response.TotalFeeAmount = totalFee
			response.FeeCalculationID = finalized.ID
		}

		session.SessionStatus = types.CheckoutSessionStatusConfirmed
		return s.CheckoutSessionRepo.Update(ctx, session)
	})
	if err != nil {
		s.Logger.WithContext(ctx).Errorw("checkout session confirmation failed",
			"checkout_session_id", id,
			"error", err,
		)
		return nil, err
	}
	return response, nil
}

// resolveCustomer implements the resolution order: explicit customer ID,
// then the purchase's customer, then a new customer from the session's
// email and name. A session with none of the three cannot be confirmed.
func (s *checkoutSessionService) resolveCustomer(ctx context.Context, session *checkoutsession.CheckoutSession) (*customer.Customer, error) {
	if session.CustomerID != nil && *session.CustomerID != "" {
		return s.CustomerRepo.Get(ctx, *session.CustomerID)
	}

	if session.PurchaseID != nil && *session.PurchaseID != "" {
		p, err := s.PurchaseRepo.Get(ctx, *session.PurchaseID)
		if err != nil {
			return nil, err
		}
		return s.CustomerRepo.Get(ctx, p.CustomerID)
	}

	email := lo.FromPtr(session.CustomerEmail)
	if email == "" {
		return nil, ierr.NewErrorf("checkout session has no customer email, and no purchase: %s", session.ID).
			WithHint("Provide a customer, a purchase, or a customer email on the session").
			Mark(ierr.ErrValidation)
	}

	name := lo.FromPtr(session.CustomerName)
	if name == "" && session.BillingAddress != nil {
		name = session.BillingAddress.Name
	}
	if name == "" {
		name = email
	}

	cust := &customer.Customer{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CUSTOMER),
		ExternalID:     types.GenerateUUID(),
		Email:          email,
		Name:           name,
		BillingAddress: session.BillingAddress,
		EnvironmentID:  types.GetEnvironmentID(ctx),
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
	if err := s.CustomerRepo.Create(ctx, cust); err != nil {
		return nil, err
	}
	s.Logger.WithContext(ctx).Infow("created customer from checkout session",
		"checkout_session_id", session.ID,
		"customer_id", cust.ID,
	)
	return cust, nil
}

// ensureStripeCustomer creates the gateway identity lazily, exactly once,
// and persists it back onto the customer record. Subsequent confirmations
// reuse the stored ID.
func (s *checkoutSessionService) ensureStripeCustomer(ctx context.Context, session *checkoutsession.CheckoutSession, cust *customer.Customer) (*customer.Customer, error) {
	if cust.StripeCustomerID != nil && *cust.StripeCustomerID != "" {
		return cust, nil
	}

	if cust.Email == "" {
		return nil, ierr.NewErrorf("checkout session has no customer email: %s", session.ID).
			WithHint("A customer email is required to create the gateway customer").
			Mark(ierr.ErrValidation)
	}

	gatewayCust, err := s.StripeGateway.CreateCustomer(ctx, stripe.CreateCustomerParams{
		Email: cust.Email,
		Name:  cust.Name,
	})
	if err != nil {
		return nil, err
	}

	cust.StripeCustomerID = lo.ToPtr(gatewayCust.ID)
	if err := s.CustomerRepo.Update(ctx, cust); err != nil {
		return nil, err
	}
	return cust, nil
}

// attachCustomerToSetupIntent updates the setup intent with the customer,
// but only when no customer is attached yet.
func (s *checkoutSessionService) attachCustomerToSetupIntent(ctx context.Context, session *checkoutsession.CheckoutSession, cust *customer.Customer) error {
	intent, err := s.StripeGateway.GetSetupIntent(ctx, *session.StripeSetupIntentID)
	if err != nil {
		return err
	}
	if intent.CustomerID != "" {
		return nil
	}
	return s.StripeGateway.UpdateSetupIntent(ctx, intent.ID, lo.FromPtr(cust.StripeCustomerID))
}

package service

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"

	"github.com/lumenbill/lumenbill/internal/domain/checkoutsession"
	"github.com/lumenbill/lumenbill/internal/domain/customer"
	"github.com/lumenbill/lumenbill/internal/domain/purchase"
	ierr "github.com/lumenbill/lumenbill/internal/errors"
	"github.com/lumenbill/lumenbill/internal/testutil"
	"github.com/lumenbill/lumenbill/internal/types"
)

type CheckoutSessionServiceSuite struct {
	testutil.BaseServiceTestSuite
	service CheckoutSessionService
	gateway *testutil.FakeStripeGateway
}

func TestCheckoutSessionService(t *testing.T) {
	suite.Run(t, new(CheckoutSessionServiceSuite))
}

func (s *CheckoutSessionServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.GetConfig().Fees.FlatFeeAmount = 30
	s.GetConfig().Fees.PercentageFeeRate = "2.9"
	s.gateway = testutil.NewFakeStripeGateway()
	params := testServiceParams(&s.BaseServiceTestSuite, s.gateway)
	s.service = NewCheckoutSessionService(params, NewFeeCalculationService(params))
}

func (s *CheckoutSessionServiceSuite) newCustomer(withStripeID bool) *customer.Customer {
	cust := &customer.Customer{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CUSTOMER),
		ExternalID: types.GenerateUUID(),
		Email:      "jordan@example.com",
		Name:       "Jordan Example",
		BaseModel:  types.GetDefaultBaseModel(s.GetContext()),
	}
	if withStripeID {
		cust.StripeCustomerID = lo.ToPtr("cus_existing")
	}
	s.Require().NoError(s.GetStores().CustomerRepo.Create(s.GetContext(), cust))
	return cust
}

func (s *CheckoutSessionServiceSuite) newSession(mutate func(*checkoutsession.CheckoutSession)) *checkoutsession.CheckoutSession {
	session := &checkoutsession.CheckoutSession{
		ID:                    types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CHECKOUT_SESSION),
		SessionStatus:         types.CheckoutSessionStatusOpen,
		SessionType:           types.CheckoutSessionTypeProduct,
		StripePaymentIntentID: lo.ToPtr("pi_test"),
		BaseAmount:            10000,
		DiscountAmount:        1000,
		TaxAmount:             500,
		Currency:              "usd",
		BaseModel:             types.GetDefaultBaseModel(s.GetContext()),
	}
	if mutate != nil {
		mutate(session)
	}
	s.Require().NoError(s.GetStores().CheckoutSessionRepo.Create(s.GetContext(), session))
	return session
}

func (s *CheckoutSessionServiceSuite) TestConfirmWithExplicitCustomer() {
	cust := s.newCustomer(false)
	session := s.newSession(func(cs *checkoutsession.CheckoutSession) {
		cs.CustomerID = lo.ToPtr(cust.ID)
	})

	resp, err := s.service.Confirm(s.GetContext(), session.ID)
	s.Require().NoError(err)
	s.Equal(cust.ID, resp.Customer.ID)
	s.Equal(int64(9500), resp.TotalDueAmount)
	s.Equal(int64(306), resp.TotalFeeAmount)
	s.NotEmpty(resp.FeeCalculationID)

	// Gateway customer created once and persisted back.
	s.Equal(1, s.gateway.CreateCustomerCalls)
	stored, err := s.GetStores().CustomerRepo.Get(s.GetContext(), cust.ID)
	s.Require().NoError(err)
	s.NotEmpty(lo.FromPtr(stored.StripeCustomerID))

	// Payment intent carries the totals.
	s.Equal(1, s.gateway.UpdatePaymentIntentCalls)
	s.Equal(int64(9500), s.gateway.LastPaymentIntentParams.Amount)
	s.Equal(int64(306), lo.FromPtr(s.gateway.LastPaymentIntentParams.ApplicationFeeAmount))

	updated, err := s.GetStores().CheckoutSessionRepo.Get(s.GetContext(), session.ID)
	s.Require().NoError(err)
	s.Equal(types.CheckoutSessionStatusConfirmed, updated.SessionStatus)

	calc, err := s.GetStores().FeeCalculationRepo.Get(s.GetContext(), resp.FeeCalculationID)
	s.Require().NoError(err)
	s.True(calc.IsFinalized())
}

func (s *CheckoutSessionServiceSuite) TestConfirmResolvesCustomerFromPurchase() {
	cust := s.newCustomer(false)
	p := &purchase.Purchase{
		ID:         types.GenerateUUID(),
		CustomerID: cust.ID,
		BaseModel:  types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().PurchaseRepo.Create(s.GetContext(), p))

	session := s.newSession(func(cs *checkoutsession.CheckoutSession) {
		cs.PurchaseID = lo.ToPtr(p.ID)
	})

	resp, err := s.service.Confirm(s.GetContext(), session.ID)
	s.Require().NoError(err)
	s.Equal(cust.ID, resp.Customer.ID)

	// The resolved customer gets attached to the session.
	updated, err := s.GetStores().CheckoutSessionRepo.Get(s.GetContext(), session.ID)
	s.Require().NoError(err)
	s.Equal(cust.ID, lo.FromPtr(updated.CustomerID))
}

func (s *CheckoutSessionServiceSuite) TestConfirmCreatesCustomerFromEmail() {
	session := s.newSession(func(cs *checkoutsession.CheckoutSession) {
		cs.CustomerEmail = lo.ToPtr("sam@example.com")
		cs.CustomerName = lo.ToPtr("Sam Example")
	})

	resp, err := s.service.Confirm(s.GetContext(), session.ID)
	s.Require().NoError(err)
	s.Equal("sam@example.com", resp.Customer.Email)
	s.Equal("Sam Example", resp.Customer.Name)
	s.Equal(1, s.GetStores().CustomerRepo.Count(s.GetContext()))

	updated, err := s.GetStores().CheckoutSessionRepo.Get(s.GetContext(), session.ID)
	s.Require().NoError(err)
	s.Equal(resp.Customer.ID, lo.FromPtr(updated.CustomerID))
}

func (s *CheckoutSessionServiceSuite) TestConfirmWithoutCustomerSourceFails() {
	session := s.newSession(nil)

	_, err := s.service.Confirm(s.GetContext(), session.ID)
	s.Require().Error(err)
	s.True(ierr.IsValidation(err))

	// Nothing confirmed, no gateway side effects.
	updated, getErr := s.GetStores().CheckoutSessionRepo.Get(s.GetContext(), session.ID)
	s.Require().NoError(getErr)
	s.Equal(types.CheckoutSessionStatusOpen, updated.SessionStatus)
	s.Equal(0, s.gateway.CreateCustomerCalls)
}

func (s *CheckoutSessionServiceSuite) TestConfirmNonOpenSessionFails() {
	cust := s.newCustomer(true)
	session := s.newSession(func(cs *checkoutsession.CheckoutSession) {
		cs.SessionStatus = types.CheckoutSessionStatusExpired
		cs.CustomerID = lo.ToPtr(cust.ID)
	})

	_, err := s.service.Confirm(s.GetContext(), session.ID)
	s.Require().Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *CheckoutSessionServiceSuite) TestRepeatedConfirmationIsRejected() {
	cust := s.newCustomer(false)
	session := s.newSession(func(cs *checkoutsession.CheckoutSession) {
		cs.CustomerID = lo.ToPtr(cust.ID)
	})

	_, err := s.service.Confirm(s.GetContext(), session.ID)
	s.Require().NoError(err)

	_, err = s.service.Confirm(s.GetContext(), session.ID)
	s.Require().Error(err)
	s.True(ierr.IsInvalidOperation(err))

	// The gateway customer was only ever created once.
	s.Equal(1, s.gateway.CreateCustomerCalls)
	s.Equal(1, s.gateway.UpdatePaymentIntentCalls)
}

func (s *CheckoutSessionServiceSuite) TestExistingGatewayCustomerIsReused() {
	cust := s.newCustomer(true)
	session := s.newSession(func(cs *checkoutsession.CheckoutSession) {
		cs.CustomerID = lo.ToPtr(cust.ID)
	})

	_, err := s.service.Confirm(s.GetContext(), session.ID)
	s.Require().NoError(err)
	s.Equal(0, s.gateway.CreateCustomerCalls)
	s.Equal("cus_existing", s.gateway.LastPaymentIntentParams.CustomerID)
}

func (s *CheckoutSessionServiceSuite) TestSetupIntentCustomerAttachedWhenAbsent() {
	cust := s.newCustomer(true)
	s.gateway.SeedSetupIntent("seti_test", "")
	session := s.newSession(func(cs *checkoutsession.CheckoutSession) {
		cs.SessionType = types.CheckoutSessionTypeAddPaymentMethod
		cs.CustomerID = lo.ToPtr(cust.ID)
		cs.StripePaymentIntentID = nil
		cs.StripeSetupIntentID = lo.ToPtr("seti_test")
	})

	_, err := s.service.Confirm(s.GetContext(), session.ID)
	s.Require().NoError(err)
	s.Equal(1, s.gateway.UpdateSetupIntentCalls)
	s.Equal("cus_existing", s.gateway.SetupIntent("seti_test").CustomerID)

	// Add-payment-method sessions never produce a fee calculation.
	s.Equal(0, s.GetStores().FeeCalculationRepo.Count(s.GetContext()))
}

func (s *CheckoutSessionServiceSuite) TestSetupIntentWithCustomerLeftAlone() {
	cust := s.newCustomer(true)
	s.gateway.SeedSetupIntent("seti_test", "cus_other")
	session := s.newSession(func(cs *checkoutsession.CheckoutSession) {
		cs.SessionType = types.CheckoutSessionTypeAddPaymentMethod
		cs.CustomerID = lo.ToPtr(cust.ID)
		cs.StripePaymentIntentID = nil
		cs.StripeSetupIntentID = lo.ToPtr("seti_test")
	})

	_, err := s.service.Confirm(s.GetContext(), session.ID)
	s.Require().NoError(err)
	s.Equal(0, s.gateway.UpdateSetupIntentCalls)
	s.Equal("cus_other", s.gateway.SetupIntent("seti_test").CustomerID)
}

func (s *CheckoutSessionServiceSuite) TestZeroDueOmitsApplicationFee() {
	cust := s.newCustomer(true)
	session := s.newSession(func(cs *checkoutsession.CheckoutSession) {
		cs.CustomerID = lo.ToPtr(cust.ID)
		cs.BaseAmount = 0
		cs.DiscountAmount = 0
		cs.TaxAmount = 0
	})

	resp, err := s.service.Confirm(s.GetContext(), session.ID)
	s.Require().NoError(err)
	s.Equal(int64(0), resp.TotalDueAmount)
	s.Equal(1, s.gateway.UpdatePaymentIntentCalls)
	s.Nil(s.gateway.LastPaymentIntentParams.ApplicationFeeAmount)
}

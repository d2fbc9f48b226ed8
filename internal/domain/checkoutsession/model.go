package checkoutsession

import (
	"github.com/lumenbill/lumenbill/internal/domain/customer"
	ierr "github.com/lumenbill/lumenbill/internal/errors"
	"github.com/lumenbill/lumenbill/internal/types"
)

// CheckoutSession is a pending checkout flow. Confirmation drives the state
// machine Open -> Confirmed; any other starting state is rejected.
type CheckoutSession struct {
	ID            string                      `json:"id" gorm:"column:id;primaryKey"`
	SessionStatus types.CheckoutSessionStatus `json:"session_status" gorm:"column:session_status"`
	SessionType   types.CheckoutSessionType   `json:"session_type" gorm:"column:session_type"`

	// Customer resolution inputs, in priority order: an explicit customer,
	// a purchase to derive one from, or raw email/name to create one.
	CustomerID     *string                  `json:"customer_id,omitempty" gorm:"column:customer_id"`
	PurchaseID     *string                  `json:"purchase_id,omitempty" gorm:"column:purchase_id"`
	CustomerEmail  *string                  `json:"customer_email,omitempty" gorm:"column:customer_email"`
	CustomerName   *string                  `json:"customer_name,omitempty" gorm:"column:customer_name"`
	BillingAddress *customer.BillingAddress `json:"billing_address,omitempty" gorm:"column:billing_address;serializer:json"`

	StripeSetupIntentID   *string `json:"stripe_setup_intent_id,omitempty" gorm:"column:stripe_setup_intent_id"`
	StripePaymentIntentID *string `json:"stripe_payment_intent_id,omitempty" gorm:"column:stripe_payment_intent_id"`

	// Pricing snapshot taken when the session was opened, in minor units.
	// The fee calculation is seeded from these.
	BaseAmount     int64 `json:"base_amount" gorm:"column:base_amount"`
	DiscountAmount int64 `json:"discount_amount" gorm:"column:discount_amount"`
	TaxAmount      int64 `json:"tax_amount" gorm:"column:tax_amount"`

	Currency      string `json:"currency" gorm:"column:currency"`
	EnvironmentID string `json:"environment_id" gorm:"column:environment_id;index"`
	types.BaseModel
}

func (CheckoutSession) TableName() string {
	return "checkout_sessions"
}

// IsOpen reports whether the session can still be confirmed.
func (s *CheckoutSession) IsOpen() bool {
	return s.SessionStatus == types.CheckoutSessionStatusOpen
}

// HasCustomerSource reports whether any customer resolution input exists.
// A session with none of them cannot be confirmed.
func (s *CheckoutSession) HasCustomerSource() bool {
	return strPtrSet(s.CustomerID) || strPtrSet(s.PurchaseID) || strPtrSet(s.CustomerEmail)
}

func (s *CheckoutSession) Validate() error {
	if s.Currency == "" && s.SessionType != types.CheckoutSessionTypeAddPaymentMethod {
		return ierr.NewError("currency is required").Mark(ierr.ErrValidation)
	}
	return nil
}

func strPtrSet(p *string) bool {
	return p != nil && *p != ""
}

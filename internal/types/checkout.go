package types

// CheckoutSessionStatus is the state machine over a checkout session.
// Only Open sessions can be confirmed.
type CheckoutSessionStatus string

const (
	CheckoutSessionStatusOpen      CheckoutSessionStatus = "open"
	CheckoutSessionStatusConfirmed CheckoutSessionStatus = "confirmed"
	CheckoutSessionStatusExpired   CheckoutSessionStatus = "expired"
	CheckoutSessionStatusFailed    CheckoutSessionStatus = "failed"
)

// CheckoutSessionType is the flow the session was opened for.
// AddPaymentMethod sessions never produce a fee calculation.
type CheckoutSessionType string

const (
	CheckoutSessionTypeProduct          CheckoutSessionType = "product"
	CheckoutSessionTypePurchase         CheckoutSessionType = "purchase"
	CheckoutSessionTypeAddPaymentMethod CheckoutSessionType = "add_payment_method"
)

// FeeCalculationStatus: a fee calculation is finalized exactly once; after
// that it is immutable and reused by any repeated confirmation.
type FeeCalculationStatus string

const (
	FeeCalculationStatusPending   FeeCalculationStatus = "pending"
	FeeCalculationStatusFinalized FeeCalculationStatus = "finalized"
)

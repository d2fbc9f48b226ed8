package types

// UsageCreditStatus is the lifecycle state of a credit grant. Only Posted
// credits are spendable; Pending credits await payment confirmation.
type UsageCreditStatus string

const (
	UsageCreditStatusPosted  UsageCreditStatus = "posted"
	UsageCreditStatusPending UsageCreditStatus = "pending"
)

// UsageCreditType distinguishes complimentary grants from paid top-ups.
type UsageCreditType string

const (
	UsageCreditTypeGrant   UsageCreditType = "grant"
	UsageCreditTypePayment UsageCreditType = "payment"
)

// UsageCreditSourceReferenceType records which flow issued the credit.
type UsageCreditSourceReferenceType string

const (
	UsageCreditSourceReferenceTypeBillingPeriodTransition UsageCreditSourceReferenceType = "billing_period_transition"
	UsageCreditSourceReferenceTypePayment                 UsageCreditSourceReferenceType = "payment"
	UsageCreditSourceReferenceTypeManual                  UsageCreditSourceReferenceType = "manual"
)

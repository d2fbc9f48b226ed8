package customer

import (
	ierr "github.com/lumenbill/lumenbill/internal/errors"
	"github.com/lumenbill/lumenbill/internal/types"
)

// BillingAddress is the customer's billing address, persisted as JSONB.
type BillingAddress struct {
	Name       string `json:"name,omitempty"`
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// Customer is a billable customer. StripeCustomerID is set lazily the first
// time a payment-gateway identity is needed, then reused forever.
type Customer struct {
	ID               string          `json:"id" gorm:"column:id;primaryKey"`
	ExternalID       string          `json:"external_id" gorm:"column:external_id;uniqueIndex"`
	Email            string          `json:"email" gorm:"column:email;index"`
	Name             string          `json:"name" gorm:"column:name"`
	BillingAddress   *BillingAddress `json:"billing_address,omitempty" gorm:"column:billing_address;serializer:json"`
	StripeCustomerID *string         `json:"stripe_customer_id,omitempty" gorm:"column:stripe_customer_id"`
	EnvironmentID    string          `json:"environment_id" gorm:"column:environment_id;index"`
	types.BaseModel
}

func (Customer) TableName() string {
	return "customers"
}

func (c *Customer) Validate() error {
	if c.Email == "" {
		return ierr.NewError("customer email is required").Mark(ierr.ErrValidation)
	}
	return nil
}

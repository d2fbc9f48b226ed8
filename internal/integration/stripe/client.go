// Package stripe wraps the payment gateway operations the billing core
// needs. The core only supplies and reads customer IDs, amounts and fee
// amounts; everything else about the gateway API stays behind this package.
package stripe

import (
	"context"

	stripesdk "github.com/stripe/stripe-go/v82"
	stripeclient "github.com/stripe/stripe-go/v82/client"

	"github.com/lumenbill/lumenbill/internal/config"
	ierr "github.com/lumenbill/lumenbill/internal/errors"
	"github.com/lumenbill/lumenbill/internal/logger"
)

// Customer is the gateway customer slice the core reads.
type Customer struct {
	ID    string
	Email string
	Name  string
}

// SetupIntent is the gateway setup intent slice the core reads.
type SetupIntent struct {
	ID         string
	CustomerID string
}

type CreateCustomerParams struct {
	Email string
	Name  string
}

type UpdatePaymentIntentParams struct {
	CustomerID string
	// Amount is the total due in minor-currency units.
	Amount int64
	// ApplicationFeeAmount is nil when no platform fee applies.
	ApplicationFeeAmount *int64
}

// Gateway is the payment gateway contract consumed by the checkout path.
// Tests substitute a fake; production uses the stripe-go client.
type Gateway interface {
	CreateCustomer(ctx context.Context, params CreateCustomerParams) (*Customer, error)
	GetSetupIntent(ctx context.Context, id string) (*SetupIntent, error)
	UpdateSetupIntent(ctx context.Context, id string, customerID string) error
	UpdatePaymentIntent(ctx context.Context, id string, params UpdatePaymentIntentParams) error
}

type gateway struct {
	api    *stripeclient.API
	logger *logger.Logger
}

// NewGateway creates a stripe-backed Gateway from configuration.
func NewGateway(cfg *config.Configuration, log *logger.Logger) Gateway {
	api := &stripeclient.API{}
	api.Init(cfg.Stripe.SecretKey, nil)
	return &gateway{api: api, logger: log}
}

func (g *gateway) CreateCustomer(ctx context.Context, params CreateCustomerParams) (*Customer, error) {
	cust, err := g.api.Customers.New(&stripesdk.CustomerParams{
		Params: stripesdk.Params{Context: ctx},
		Email:  stripesdk.String(params.Email),
		Name:   stripesdk.String(params.Name),
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to create gateway customer").
			WithReportableDetails(map[string]interface{}{"email": params.Email}).
			Mark(ierr.ErrInternal)
	}
	g.logger.Debugw("created stripe customer", "stripe_customer_id", cust.ID)
	return &Customer{ID: cust.ID, Email: params.Email, Name: params.Name}, nil
}

func (g *gateway) GetSetupIntent(ctx context.Context, id string) (*SetupIntent, error) {
	si, err := g.api.SetupIntents.Get(id, &stripesdk.SetupIntentParams{
		Params: stripesdk.Params{Context: ctx},
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to fetch setup intent").
			WithReportableDetails(map[string]interface{}{"setup_intent_id": id}).
			Mark(ierr.ErrInternal)
	}
	out := &SetupIntent{ID: si.ID}
	if si.Customer != nil {
		out.CustomerID = si.Customer.ID
	}
	return out, nil
}

func (g *gateway) UpdateSetupIntent(ctx context.Context, id string, customerID string) error {
	_, err := g.api.SetupIntents.Update(id, &stripesdk.SetupIntentParams{
		Params:   stripesdk.Params{Context: ctx},
		Customer: stripesdk.String(customerID),
	})
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update setup intent").
			WithReportableDetails(map[string]interface{}{"setup_intent_id": id}).
			Mark(ierr.ErrInternal)
	}
	return nil
}

func (g *gateway) UpdatePaymentIntent(ctx context.Context, id string, params UpdatePaymentIntentParams) error {
	piParams := &stripesdk.PaymentIntentParams{
		Params:   stripesdk.Params{Context: ctx},
		Customer: stripesdk.String(params.CustomerID),
		Amount:   stripesdk.Int64(params.Amount),
	}
	if params.ApplicationFeeAmount != nil {
		piParams.ApplicationFeeAmount = stripesdk.Int64(*params.ApplicationFeeAmount)
	}
	_, err := g.api.PaymentIntents.Update(id, piParams)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update payment intent").
			WithReportableDetails(map[string]interface{}{"payment_intent_id": id}).
			Mark(ierr.ErrInternal)
	}
	return nil
}

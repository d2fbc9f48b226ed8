package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/lumenbill/lumenbill/internal/integration/stripe"
)

// FakeStripeGateway is an in-memory stripe.Gateway recording every call so
// tests can assert gateway side effects, in particular how many customers
// were created across repeated confirmations.
type FakeStripeGateway struct {
	mu sync.Mutex

	customers    map[string]*stripe.Customer
	setupIntents map[string]*stripe.SetupIntent

	CreateCustomerCalls      int
	UpdateSetupIntentCalls   int
	UpdatePaymentIntentCalls int

	// LastPaymentIntentParams holds the params of the most recent
	// UpdatePaymentIntent call.
	LastPaymentIntentParams stripe.UpdatePaymentIntentParams

	// Err, when set, is returned by every call.
	Err error
}

func NewFakeStripeGateway() *FakeStripeGateway {
	return &FakeStripeGateway{
		customers:    make(map[string]*stripe.Customer),
		setupIntents: make(map[string]*stripe.SetupIntent),
	}
}

// SeedSetupIntent registers a setup intent, optionally with a customer
// already attached.
func (f *FakeStripeGateway) SeedSetupIntent(id, customerID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setupIntents[id] = &stripe.SetupIntent{ID: id, CustomerID: customerID}
}

func (f *FakeStripeGateway) SetupIntent(id string) *stripe.SetupIntent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.setupIntents[id]
}

func (f *FakeStripeGateway) CreateCustomer(_ context.Context, params stripe.CreateCustomerParams) (*stripe.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	f.CreateCustomerCalls++
	cust := &stripe.Customer{
		ID:    fmt.Sprintf("cus_fake_%d", f.CreateCustomerCalls),
		Email: params.Email,
		Name:  params.Name,
	}
	f.customers[cust.ID] = cust
	return cust, nil
}

func (f *FakeStripeGateway) GetSetupIntent(_ context.Context, id string) (*stripe.SetupIntent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	if si, ok := f.setupIntents[id]; ok {
		return &stripe.SetupIntent{ID: si.ID, CustomerID: si.CustomerID}, nil
	}
	return &stripe.SetupIntent{ID: id}, nil
}

func (f *FakeStripeGateway) UpdateSetupIntent(_ context.Context, id string, customerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.UpdateSetupIntentCalls++
	si, ok := f.setupIntents[id]
	if !ok {
		si = &stripe.SetupIntent{ID: id}
		f.setupIntents[id] = si
	}
	si.CustomerID = customerID
	return nil
}

func (f *FakeStripeGateway) UpdatePaymentIntent(_ context.Context, id string, params stripe.UpdatePaymentIntentParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.UpdatePaymentIntentCalls++
	f.LastPaymentIntentParams = params
	return nil
}

package testutil

import (
	"context"
	"sort"

	"github.com/samber/lo"

	"github.com/lumenbill/lumenbill/internal/domain/billingperiod"
	"github.com/lumenbill/lumenbill/internal/domain/checkoutsession"
	"github.com/lumenbill/lumenbill/internal/domain/customer"
	"github.com/lumenbill/lumenbill/internal/domain/feecalculation"
	"github.com/lumenbill/lumenbill/internal/domain/purchase"
	"github.com/lumenbill/lumenbill/internal/domain/subscription"
	ierr "github.com/lumenbill/lumenbill/internal/errors"
	"github.com/lumenbill/lumenbill/internal/types"
)

// InMemorySubscriptionStore implements subscription.Repository. Feature
// items are seeded directly through AddFeatureItem.
type InMemorySubscriptionStore struct {
	*InMemoryStore[*subscription.Subscription]
	featureItems *InMemoryStore[*subscription.FeatureItem]
}

func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		InMemoryStore: NewInMemoryStore[*subscription.Subscription](),
		featureItems:  NewInMemoryStore[*subscription.FeatureItem](),
	}
}

func (s *InMemorySubscriptionStore) Create(ctx context.Context, sub *subscription.Subscription) error {
	return s.InMemoryStore.Create(ctx, sub.ID, sub)
}

func (s *InMemorySubscriptionStore) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemorySubscriptionStore) AddFeatureItem(ctx context.Context, item *subscription.FeatureItem) error {
	return s.featureItems.Create(ctx, item.ID, item)
}

func (s *InMemorySubscriptionStore) ListFeatureItems(ctx context.Context, subscriptionID string) ([]*subscription.FeatureItem, error) {
	items := lo.Filter(s.featureItems.List(ctx), func(item *subscription.FeatureItem, _ int) bool {
		return item.SubscriptionID == subscriptionID && item.DetachedAt == nil
	})
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

// InMemoryBillingPeriodStore implements billingperiod.Repository.
type InMemoryBillingPeriodStore struct {
	*InMemoryStore[*billingperiod.BillingPeriod]
}

func NewInMemoryBillingPeriodStore() *InMemoryBillingPeriodStore {
	return &InMemoryBillingPeriodStore{InMemoryStore: NewInMemoryStore[*billingperiod.BillingPeriod]()}
}

func (s *InMemoryBillingPeriodStore) Create(ctx context.Context, period *billingperiod.BillingPeriod) error {
	if err := period.Validate(); err != nil {
		return err
	}
	return s.InMemoryStore.Create(ctx, period.ID, period)
}

func (s *InMemoryBillingPeriodStore) Get(ctx context.Context, id string) (*billingperiod.BillingPeriod, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemoryBillingPeriodStore) UpdateStatus(ctx context.Context, id string, status types.BillingPeriodStatus) error {
	period, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return err
	}
	period.PeriodStatus = status
	return s.InMemoryStore.Update(ctx, id, period)
}

// InMemoryCustomerStore implements customer.Repository with the unique
// external ID semantics of the database.
type InMemoryCustomerStore struct {
	*InMemoryStore[*customer.Customer]
}

func NewInMemoryCustomerStore() *InMemoryCustomerStore {
	return &InMemoryCustomerStore{InMemoryStore: NewInMemoryStore[*customer.Customer]()}
}

func (s *InMemoryCustomerStore) Create(ctx context.Context, cust *customer.Customer) error {
	for _, existing := range s.InMemoryStore.List(ctx) {
		if existing.ExternalID == cust.ExternalID {
			return ierr.NewErrorf("customer with external id %s already exists", cust.ExternalID).
				Mark(ierr.ErrAlreadyExists)
		}
	}
	return s.InMemoryStore.Create(ctx, cust.ID, cust)
}

func (s *InMemoryCustomerStore) Get(ctx context.Context, id string) (*customer.Customer, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemoryCustomerStore) Update(ctx context.Context, cust *customer.Customer) error {
	return s.InMemoryStore.Update(ctx, cust.ID, cust)
}

// InMemoryPurchaseStore implements purchase.Repository.
type InMemoryPurchaseStore struct {
	*InMemoryStore[*purchase.Purchase]
}

func NewInMemoryPurchaseStore() *InMemoryPurchaseStore {
	return &InMemoryPurchaseStore{InMemoryStore: NewInMemoryStore[*purchase.Purchase]()}
}

func (s *InMemoryPurchaseStore) Create(ctx context.Context, p *purchase.Purchase) error {
	return s.InMemoryStore.Create(ctx, p.ID, p)
}

func (s *InMemoryPurchaseStore) Get(ctx context.Context, id string) (*purchase.Purchase, error) {
	return s.InMemoryStore.Get(ctx, id)
}

// InMemoryCheckoutSessionStore implements checkoutsession.Repository.
type InMemoryCheckoutSessionStore struct {
	*InMemoryStore[*checkoutsession.CheckoutSession]
}

func NewInMemoryCheckoutSessionStore() *InMemoryCheckoutSessionStore {
	return &InMemoryCheckoutSessionStore{InMemoryStore: NewInMemoryStore[*checkoutsession.CheckoutSession]()}
}

func (s *InMemoryCheckoutSessionStore) Create(ctx context.Context, session *checkoutsession.CheckoutSession) error {
	return s.InMemoryStore.Create(ctx, session.ID, session)
}

func (s *InMemoryCheckoutSessionStore) Get(ctx context.Context, id string) (*checkoutsession.CheckoutSession, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemoryCheckoutSessionStore) Update(ctx context.Context, session *checkoutsession.CheckoutSession) error {
	return s.InMemoryStore.Update(ctx, session.ID, session)
}

// InMemoryFeeCalculationStore implements feecalculation.Repository.
type InMemoryFeeCalculationStore struct {
	*InMemoryStore[*feecalculation.FeeCalculation]
}

func NewInMemoryFeeCalculationStore() *InMemoryFeeCalculationStore {
	return &InMemoryFeeCalculationStore{InMemoryStore: NewInMemoryStore[*feecalculation.FeeCalculation]()}
}

func (s *InMemoryFeeCalculationStore) Create(ctx context.Context, calc *feecalculation.FeeCalculation) error {
	if err := calc.Validate(); err != nil {
		return err
	}
	return s.InMemoryStore.Create(ctx, calc.ID, calc)
}

func (s *InMemoryFeeCalculationStore) Get(ctx context.Context, id string) (*feecalculation.FeeCalculation, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemoryFeeCalculationStore) Update(ctx context.Context, calc *feecalculation.FeeCalculation) error {
	return s.InMemoryStore.Update(ctx, calc.ID, calc)
}

func (s *InMemoryFeeCalculationStore) GetLatestByCheckoutSession(ctx context.Context, checkoutSessionID string) (*feecalculation.FeeCalculation, error) {
	var latest *feecalculation.FeeCalculation
	for _, calc := range s.InMemoryStore.List(ctx) {
		if calc.CheckoutSessionID == checkoutSessionID {
			latest = calc
		}
	}
	return latest, nil
}

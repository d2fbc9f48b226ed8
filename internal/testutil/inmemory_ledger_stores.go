package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/lumenbill/lumenbill/internal/domain/ledgeraccount"
	"github.com/lumenbill/lumenbill/internal/domain/ledgerentry"
	"github.com/lumenbill/lumenbill/internal/domain/ledgertransaction"
	"github.com/lumenbill/lumenbill/internal/domain/usagecredit"
	ierr "github.com/lumenbill/lumenbill/internal/errors"
	"github.com/lumenbill/lumenbill/internal/types"
)

// InMemoryLedgerAccountStore implements ledgeraccount.Repository with the
// same uniqueness semantics as the database: one account per
// (subscription, usage meter), enforced under a single lock so concurrent
// FindOrCreate calls race exactly like they do against the unique index.
type InMemoryLedgerAccountStore struct {
	*InMemoryStore[*ledgeraccount.LedgerAccount]
	mu sync.Mutex
}

func NewInMemoryLedgerAccountStore() *InMemoryLedgerAccountStore {
	return &InMemoryLedgerAccountStore{
		InMemoryStore: NewInMemoryStore[*ledgeraccount.LedgerAccount](),
	}
}

func (s *InMemoryLedgerAccountStore) Create(ctx context.Context, account *ledgeraccount.LedgerAccount) error {
	if err := account.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing := s.findPair(ctx, account.SubscriptionID, account.UsageMeterID); existing != nil {
		return ierr.NewError("ledger account already exists for subscription and usage meter").
			WithReportableDetails(map[string]interface{}{
				"subscription_id": account.SubscriptionID,
				"usage_meter_id":  account.UsageMeterID,
			}).
			Mark(ierr.ErrAlreadyExists)
	}
	return s.InMemoryStore.Create(ctx, account.ID, account)
}

func (s *InMemoryLedgerAccountStore) Get(ctx context.Context, id string) (*ledgeraccount.LedgerAccount, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemoryLedgerAccountStore) GetBySubscriptionAndMeter(ctx context.Context, subscriptionID, usageMeterID string) (*ledgeraccount.LedgerAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findPair(ctx, subscriptionID, usageMeterID), nil
}

func (s *InMemoryLedgerAccountStore) FindOrCreate(ctx context.Context, subscriptionID string, usageMeterIDs []string) (map[string]*ledgeraccount.LedgerAccount, error) {
	accounts := make(map[string]*ledgeraccount.LedgerAccount, len(usageMeterIDs))
	for _, meterID := range usageMeterIDs {
		account := &ledgeraccount.LedgerAccount{
			ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LEDGER_ACCOUNT),
			SubscriptionID: subscriptionID,
			UsageMeterID:   meterID,
			EnvironmentID:  types.GetEnvironmentID(ctx),
			BaseModel:      types.GetDefaultBaseModel(ctx),
		}
		err := s.Create(ctx, account)
		if err == nil {
			accounts[meterID] = account
			continue
		}
		if !ierr.IsAlreadyExists(err) {
			return nil, err
		}
		existing, err := s.GetBySubscriptionAndMeter(ctx, subscriptionID, meterID)
		if err != nil {
			return nil, err
		}
		accounts[meterID] = existing
	}
	return accounts, nil
}

func (s *InMemoryLedgerAccountStore) findPair(ctx context.Context, subscriptionID, usageMeterID string) *ledgeraccount.LedgerAccount {
	for _, account := range s.InMemoryStore.List(ctx) {
		if account.SubscriptionID == subscriptionID && account.UsageMeterID == usageMeterID {
			return account
		}
	}
	return nil
}

// InMemoryUsageCreditStore implements usagecredit.Repository.
type InMemoryUsageCreditStore struct {
	*InMemoryStore[*usagecredit.UsageCredit]
}

func NewInMemoryUsageCreditStore() *InMemoryUsageCreditStore {
	return &InMemoryUsageCreditStore{InMemoryStore: NewInMemoryStore[*usagecredit.UsageCredit]()}
}

func (s *InMemoryUsageCreditStore) CreateBulk(ctx context.Context, credits []*usagecredit.UsageCredit) ([]*usagecredit.UsageCredit, error) {
	for _, c := range credits {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if err := s.InMemoryStore.Create(ctx, c.ID, c); err != nil {
			return nil, err
		}
	}
	return credits, nil
}

func (s *InMemoryUsageCreditStore) Get(ctx context.Context, id string) (*usagecredit.UsageCredit, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemoryUsageCreditStore) ListBySubscription(ctx context.Context, subscriptionID string) ([]*usagecredit.UsageCredit, error) {
	return lo.Filter(s.InMemoryStore.List(ctx), func(c *usagecredit.UsageCredit, _ int) bool {
		return c.SubscriptionID == subscriptionID
	}), nil
}

func (s *InMemoryUsageCreditStore) ListExpiring(ctx context.Context, subscriptionID string, from, to time.Time) ([]*usagecredit.UsageCredit, error) {
	return lo.Filter(s.InMemoryStore.List(ctx), func(c *usagecredit.UsageCredit, _ int) bool {
		if c.SubscriptionID != subscriptionID || c.CreditStatus != types.UsageCreditStatusPosted {
			return false
		}
		return c.ExpiresAt != nil && c.ExpiresAt.After(from) && !c.ExpiresAt.After(to)
	}), nil
}

// InMemoryLedgerTransactionStore implements ledgertransaction.Repository,
// including the unique idempotency key semantics.
type InMemoryLedgerTransactionStore struct {
	*InMemoryStore[*ledgertransaction.LedgerTransaction]
	mu sync.Mutex
}

func NewInMemoryLedgerTransactionStore() *InMemoryLedgerTransactionStore {
	return &InMemoryLedgerTransactionStore{
		InMemoryStore: NewInMemoryStore[*ledgertransaction.LedgerTransaction](),
	}
}

func (s *InMemoryLedgerTransactionStore) Create(ctx context.Context, txn *ledgertransaction.LedgerTransaction) error {
	if err := txn.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.InMemoryStore.List(ctx) {
		if existing.IdempotencyKey == txn.IdempotencyKey {
			return ierr.NewError("ledger transaction with idempotency key already exists").
				WithReportableDetails(map[string]interface{}{"idempotency_key": txn.IdempotencyKey}).
				Mark(ierr.ErrAlreadyExists)
		}
	}
	return s.InMemoryStore.Create(ctx, txn.ID, txn)
}

func (s *InMemoryLedgerTransactionStore) Get(ctx context.Context, id string) (*ledgertransaction.LedgerTransaction, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemoryLedgerTransactionStore) GetByIdempotencyKey(ctx context.Context, key string) (*ledgertransaction.LedgerTransaction, error) {
	for _, txn := range s.InMemoryStore.List(ctx) {
		if txn.IdempotencyKey == key {
			return txn, nil
		}
	}
	return nil, nil
}

// InMemoryLedgerEntryStore implements ledgerentry.Repository.
type InMemoryLedgerEntryStore struct {
	*InMemoryStore[*ledgerentry.LedgerEntry]
}

func NewInMemoryLedgerEntryStore() *InMemoryLedgerEntryStore {
	return &InMemoryLedgerEntryStore{InMemoryStore: NewInMemoryStore[*ledgerentry.LedgerEntry]()}
}

func (s *InMemoryLedgerEntryStore) CreateBulk(ctx context.Context, entries []*ledgerentry.LedgerEntry) ([]*ledgerentry.LedgerEntry, error) {
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return nil, err
		}
		if err := s.InMemoryStore.Create(ctx, e.ID, e); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

func (s *InMemoryLedgerEntryStore) Get(ctx context.Context, id string) (*ledgerentry.LedgerEntry, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemoryLedgerEntryStore) ListByAccount(ctx context.Context, ledgerAccountID string) ([]*ledgerentry.LedgerEntry, error) {
	return lo.Filter(s.InMemoryStore.List(ctx), func(e *ledgerentry.LedgerEntry, _ int) bool {
		return e.LedgerAccountID == ledgerAccountID
	}), nil
}

func (s *InMemoryLedgerEntryStore) Discard(ctx context.Context, id string) error {
	entry, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return err
	}
	if entry.EntryStatus == types.LedgerEntryStatusDiscarded {
		return nil
	}
	now := time.Now().UTC()
	entry.EntryStatus = types.LedgerEntryStatusDiscarded
	entry.DiscardedAt = &now
	return s.InMemoryStore.Update(ctx, id, entry)
}

func (s *InMemoryLedgerEntryStore) AggregateBalance(ctx context.Context, ledgerAccountID string) (int64, error) {
	var balance int64
	for _, e := range s.InMemoryStore.List(ctx) {
		if e.LedgerAccountID != ledgerAccountID || e.EntryStatus != types.LedgerEntryStatusPosted {
			continue
		}
		balance += e.SignedAmount()
	}
	return balance, nil
}

func (s *InMemoryLedgerEntryStore) BalanceBySourceCredit(ctx context.Context, sourceUsageCreditIDs []string) (map[string]int64, error) {
	wanted := lo.SliceToMap(sourceUsageCreditIDs, func(id string) (string, struct{}) { return id, struct{}{} })
	balances := make(map[string]int64, len(sourceUsageCreditIDs))
	for _, e := range s.InMemoryStore.List(ctx) {
		if e.SourceUsageCreditID == nil || e.EntryStatus != types.LedgerEntryStatusPosted {
			continue
		}
		if _, ok := wanted[*e.SourceUsageCreditID]; !ok {
			continue
		}
		balances[*e.SourceUsageCreditID] += e.SignedAmount()
	}
	return balances, nil
}

package gorm

import (
	"context"
	"errors"

	gormdb "gorm.io/gorm"

	domainLedgerAccount "github.com/lumenbill/lumenbill/internal/domain/ledgeraccount"
	ierr "github.com/lumenbill/lumenbill/internal/errors"
	"github.com/lumenbill/lumenbill/internal/logger"
	"github.com/lumenbill/lumenbill/internal/postgres"
	"github.com/lumenbill/lumenbill/internal/types"
)

type ledgerAccountRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

// NewLedgerAccountRepository creates a new ledger account repository
func NewLedgerAccountRepository(client postgres.IClient, logger *logger.Logger) domainLedgerAccount.Repository {
	return &ledgerAccountRepository{
		client: client,
		logger: logger,
	}
}

func (r *ledgerAccountRepository) Create(ctx context.Context, account *domainLedgerAccount.LedgerAccount) error {
	if err := account.Validate(); err != nil {
		return err
	}
	r.logger.Debugw("creating ledger account",
		"subscription_id", account.SubscriptionID,
		"usage_meter_id", account.UsageMeterID,
	)

	if err := r.client.Querier(ctx).Create(account).Error; err != nil {
		if postgres.IsUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("A ledger account already exists for this subscription and usage meter").
				WithReportableDetails(map[string]interface{}{
					"subscription_id": account.SubscriptionID,
					"usage_meter_id":  account.UsageMeterID,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create ledger account").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *ledgerAccountRepository) Get(ctx context.Context, id string) (*domainLedgerAccount.LedgerAccount, error) {
	var account domainLedgerAccount.LedgerAccount
	err := r.client.Querier(ctx).
		Where("id = ? AND tenant_id = ?", id, types.GetTenantID(ctx)).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gormdb.ErrRecordNotFound) {
			return nil, ierr.NewErrorf("ledger account not found: %s", id).
				WithHint("The ledger account does not exist").
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get ledger account").
			Mark(ierr.ErrDatabase)
	}
	return &account, nil
}

func (r *ledgerAccountRepository) GetBySubscriptionAndMeter(ctx context.Context, subscriptionID, usageMeterID string) (*domainLedgerAccount.LedgerAccount, error) {
	var account domainLedgerAccount.LedgerAccount
	err := r.client.Querier(ctx).
		Where("subscription_id = ? AND usage_meter_id = ? AND tenant_id = ?",
			subscriptionID, usageMeterID, types.GetTenantID(ctx)).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gormdb.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to look up ledger account").
			WithReportableDetails(map[string]interface{}{
				"subscription_id": subscriptionID,
				"usage_meter_id":  usageMeterID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return &account, nil
}

// FindOrCreate resolves one account per usage meter, creating missing ones.
// Creation is insert-catch-conflict-reselect: a concurrent creator winning
// the race is indistinguishable from the account having always existed.
func (r *ledgerAccountRepository) FindOrCreate(ctx context.Context, subscriptionID string, usageMeterIDs []string) (map[string]*domainLedgerAccount.LedgerAccount, error) {
	accounts := make(map[string]*domainLedgerAccount.LedgerAccount, len(usageMeterIDs))

	for _, usageMeterID := range usageMeterIDs {
		existing, err := r.GetBySubscriptionAndMeter(ctx, subscriptionID, usageMeterID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			accounts[usageMeterID] = existing
			continue
		}

		account := &domainLedgerAccount.LedgerAccount{
			ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LEDGER_ACCOUNT),
			SubscriptionID: subscriptionID,
			UsageMeterID:   usageMeterID,
			EnvironmentID:  types.GetEnvironmentID(ctx),
			BaseModel:      types.GetDefaultBaseModel(ctx),
		}
		err = r.Create(ctx, account)
		if err == nil {
			accounts[usageMeterID] = account
			continue
		}
		if !ierr.IsAlreadyExists(err) {
			return nil, err
		}

		// Lost the race: another transaction created the account between our
		// select and insert. Re-fetch the winner's row.
		winner, err := r.GetBySubscriptionAndMeter(ctx, subscriptionID, usageMeterID)
		if err != nil {
			return nil, err
		}
		if winner == nil {
			return nil, ierr.NewErrorf("ledger account vanished after conflict: %s/%s", subscriptionID, usageMeterID).
				Mark(ierr.ErrDatabase)
		}
		accounts[usageMeterID] = winner
	}

	return accounts, nil
}

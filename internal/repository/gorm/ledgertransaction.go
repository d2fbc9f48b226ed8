package gorm

import (
	"context"
	"errors"

	gormdb "gorm.io/gorm"

	domainLedgerTransaction "github.com/lumenbill/lumenbill/internal/domain/ledgertransaction"
	ierr "github.com/lumenbill/lumenbill/internal/errors"
	"github.com/lumenbill/lumenbill/internal/logger"
	"github.com/lumenbill/lumenbill/internal/postgres"
	"github.com/lumenbill/lumenbill/internal/types"
)

type ledgerTransactionRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

// NewLedgerTransactionRepository creates a new ledger transaction repository
func NewLedgerTransactionRepository(client postgres.IClient, logger *logger.Logger) domainLedgerTransaction.Repository {
	return &ledgerTransactionRepository{
		client: client,
		logger: logger,
	}
}

func (r *ledgerTransactionRepository) Create(ctx context.Context, txn *domainLedgerTransaction.LedgerTransaction) error {
	if err := txn.Validate(); err != nil {
		return err
	}
	r.logger.Debugw("creating ledger transaction",
		"subscription_id", txn.SubscriptionID,
		"initiating_source_type", txn.InitiatingSourceType,
	)

	if err := r.client.Querier(ctx).Create(txn).Error; err != nil {
		if postgres.IsUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("A ledger transaction with this idempotency key already exists").
				WithReportableDetails(map[string]interface{}{
					"idempotency_key": txn.IdempotencyKey,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create ledger transaction").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *ledgerTransactionRepository) Get(ctx context.Context, id string) (*domainLedgerTransaction.LedgerTransaction, error) {
	var txn domainLedgerTransaction.LedgerTransaction
	err := r.client.Querier(ctx).
		Where("id = ? AND tenant_id = ?", id, types.GetTenantID(ctx)).
		First(&txn).Error
	if err != nil {
		if errors.Is(err, gormdb.ErrRecordNotFound) {
			return nil, ierr.NewErrorf("ledger transaction not found: %s", id).
				WithHint("The ledger transaction does not exist").
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get ledger transaction").
			Mark(ierr.ErrDatabase)
	}
	return &txn, nil
}

func (r *ledgerTransactionRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domainLedgerTransaction.LedgerTransaction, error) {
	var txn domainLedgerTransaction.LedgerTransaction
	err := r.client.Querier(ctx).
		Where("idempotency_key = ? AND tenant_id = ?", key, types.GetTenantID(ctx)).
		First(&txn).Error
	if err != nil {
		if errors.Is(err, gormdb.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to look up ledger transaction by idempotency key").
			Mark(ierr.ErrDatabase)
	}
	return &txn, nil
}

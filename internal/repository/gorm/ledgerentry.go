package gorm

import (
	"context"
	"errors"
	"time"

	gormdb "gorm.io/gorm"

	domainLedgerEntry "github.com/lumenbill/lumenbill/internal/domain/ledgerentry"
	ierr "github.com/lumenbill/lumenbill/internal/errors"
	"github.com/lumenbill/lumenbill/internal/logger"
	"github.com/lumenbill/lumenbill/internal/postgres"
	"github.com/lumenbill/lumenbill/internal/types"
)

type ledgerEntryRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

// NewLedgerEntryRepository creates a new ledger entry repository
func NewLedgerEntryRepository(client postgres.IClient, logger *logger.Logger) domainLedgerEntry.Repository {
	return &ledgerEntryRepository{
		client: client,
		logger: logger,
	}
}

func (r *ledgerEntryRepository) CreateBulk(ctx context.Context, entries []*domainLedgerEntry.LedgerEntry) ([]*domainLedgerEntry.LedgerEntry, error) {
	if len(entries) == 0 {
		return entries, nil
	}
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return nil, err
		}
	}
	r.logger.Debugw("bulk inserting ledger entries", "count", len(entries))

	if err := r.client.Querier(ctx).Create(entries).Error; err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to insert ledger entries").
			WithReportableDetails(map[string]interface{}{"count": len(entries)}).
			Mark(ierr.ErrDatabase)
	}
	return entries, nil
}

func (r *ledgerEntryRepository) Get(ctx context.Context, id string) (*domainLedgerEntry.LedgerEntry, error) {
	var entry domainLedgerEntry.LedgerEntry
	err := r.client.Querier(ctx).
		Where("id = ? AND tenant_id = ?", id, types.GetTenantID(ctx)).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gormdb.ErrRecordNotFound) {
			return nil, ierr.NewErrorf("ledger entry not found: %s", id).
				WithHint("The ledger entry does not exist").
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get ledger entry").
			Mark(ierr.ErrDatabase)
	}
	return &entry, nil
}

func (r *ledgerEntryRepository) ListByAccount(ctx context.Context, ledgerAccountID string) ([]*domainLedgerEntry.LedgerEntry, error) {
	var entries []*domainLedgerEntry.LedgerEntry
	err := r.client.Querier(ctx).
		Where("ledger_account_id = ? AND tenant_id = ?", ledgerAccountID, types.GetTenantID(ctx)).
		Order("entry_timestamp ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list ledger entries").
			WithReportableDetails(map[string]interface{}{"ledger_account_id": ledgerAccountID}).
			Mark(ierr.ErrDatabase)
	}
	return entries, nil
}

// Discard soft-voids an entry. The update is restricted to status and
// discarded_at; amount and direction are immutable by construction.
func (r *ledgerEntryRepository) Discard(ctx context.Context, id string) error {
	entry, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if entry.EntryStatus == types.LedgerEntryStatusDiscarded {
		return nil
	}

	now := time.Now().UTC()
	res := r.client.Querier(ctx).
		Model(&domainLedgerEntry.LedgerEntry{}).
		Where("id = ? AND tenant_id = ?", id, types.GetTenantID(ctx)).
		Updates(map[string]interface{}{
			"entry_status": types.LedgerEntryStatusDiscarded,
			"discarded_at": now,
			"updated_at":   now,
		})
	if res.Error != nil {
		return ierr.WithError(res.Error).
			WithHint("Failed to discard ledger entry").
			WithReportableDetails(map[string]interface{}{"id": id}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *ledgerEntryRepository) AggregateBalance(ctx context.Context, ledgerAccountID string) (int64, error) {
	var balance *int64
	err := r.client.Querier(ctx).
		Model(&domainLedgerEntry.LedgerEntry{}).
		Select("SUM(CASE WHEN direction = ? THEN amount ELSE -amount END)", types.LedgerEntryDirectionCredit).
		Where("ledger_account_id = ? AND tenant_id = ? AND entry_status = ?",
			ledgerAccountID, types.GetTenantID(ctx), types.LedgerEntryStatusPosted).
		Scan(&balance).Error
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to aggregate ledger balance").
			WithReportableDetails(map[string]interface{}{"ledger_account_id": ledgerAccountID}).
			Mark(ierr.ErrDatabase)
	}
	if balance == nil {
		return 0, nil
	}
	return *balance, nil
}

func (r *ledgerEntryRepository) BalanceBySourceCredit(ctx context.Context, sourceUsageCreditIDs []string) (map[string]int64, error) {
	balances := make(map[string]int64, len(sourceUsageCreditIDs))
	if len(sourceUsageCreditIDs) == 0 {
		return balances, nil
	}

	type row struct {
		SourceUsageCreditID string
		Balance             int64
	}
	var rows []row
	err := r.client.Querier(ctx).
		Model(&domainLedgerEntry.LedgerEntry{}).
		Select("source_usage_credit_id, SUM(CASE WHEN direction = ? THEN amount ELSE -amount END) AS balance",
			types.LedgerEntryDirectionCredit).
		Where("source_usage_credit_id IN ? AND tenant_id = ? AND entry_status = ?",
			sourceUsageCreditIDs, types.GetTenantID(ctx), types.LedgerEntryStatusPosted).
		Group("source_usage_credit_id").
		Scan(&rows).Error
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to compute balances by source credit").
			Mark(ierr.ErrDatabase)
	}
	for _, rw := range rows {
		balances[rw.SourceUsageCreditID] = rw.Balance
	}
	return balances, nil
}

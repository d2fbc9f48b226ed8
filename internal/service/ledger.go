package service

import (
	"context"

	"github.com/lumenbill/lumenbill/internal/api/dto"
	ierr "github.com/lumenbill/lumenbill/internal/errors"
)

// LedgerService exposes read and correction operations over ledger
// accounts. Entries are append-only; the only post-insert mutation is the
// discard soft-void, which excludes an entry from balances without
// rewriting history.
type LedgerService interface {
	// GetAccountBalance returns the available balance for the account
	// keyed by subscription and usage meter.
	GetAccountBalance(ctx context.Context, subscriptionID, usageMeterID string) (*dto.LedgerAccountBalanceResponse, error)

	// DiscardEntry soft-voids a ledger entry. Idempotent: discarding an
	// already discarded entry is a no-op.
	DiscardEntry(ctx context.Context, entryID string) error
}

type ledgerService struct {
	ServiceParams
}

func NewLedgerService(params ServiceParams) LedgerService {
	return &ledgerService{ServiceParams: params}
}

func (s *ledgerService) GetAccountBalance(ctx context.Context, subscriptionID, usageMeterID string) (*dto.LedgerAccountBalanceResponse, error) {
	account, err := s.LedgerAccountRepo.GetBySubscriptionAndMeter(ctx, subscriptionID, usageMeterID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ierr.NewError("ledger account not found").
			WithHint("No ledger account exists for this subscription and usage meter").
			WithReportableDetails(map[string]interface{}{
				"subscription_id": subscriptionID,
				"usage_meter_id":  usageMeterID,
			}).
			Mark(ierr.ErrNotFound)
	}

	balance, err := s.LedgerEntryRepo.AggregateBalance(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	return &dto.LedgerAccountBalanceResponse{
		LedgerAccountID: account.ID,
		SubscriptionID:  subscriptionID,
		UsageMeterID:    usageMeterID,
		Balance:         balance,
	}, nil
}

func (s *ledgerService) DiscardEntry(ctx context.Context, entryID string) error {
	if _, err := s.LedgerEntryRepo.Get(ctx, entryID); err != nil {
		return err
	}
	if err := s.LedgerEntryRepo.Discard(ctx, entryID); err != nil {
		return err
	}
	s.Logger.WithContext(ctx).Infow("discarded ledger entry", "ledger_entry_id", entryID)
	return nil
}

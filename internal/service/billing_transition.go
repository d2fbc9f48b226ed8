package service

import (
	"context"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/lumenbill/lumenbill/internal/api/dto"
	"github.com/lumenbill/lumenbill/internal/domain/billingperiod"
	"github.com/lumenbill/lumenbill/internal/domain/ledgeraccount"
	"github.com/lumenbill/lumenbill/internal/domain/ledgerentry"
	"github.com/lumenbill/lumenbill/internal/domain/ledgertransaction"
	"github.com/lumenbill/lumenbill/internal/domain/subscription"
	"github.com/lumenbill/lumenbill/internal/domain/usagecredit"
	ierr "github.com/lumenbill/lumenbill/internal/errors"
	"github.com/lumenbill/lumenbill/internal/idempotency"
	"github.com/lumenbill/lumenbill/internal/types"
)

// BillingPeriodTransitionService processes billing period transition
// commands: the economic event at each period boundary that grants
// entitlement usage credits and expires stale ones, exactly once.
type BillingPeriodTransitionService interface {
	// ProcessTransition runs one transition command end to end inside a
	// single database transaction. Redelivery of the same command is
	// detected via the ledger transaction idempotency key and returns an
	// empty result with AlreadyProcessed set instead of double-granting.
	ProcessTransition(ctx context.Context, req dto.BillingPeriodTransitionRequest) (*dto.BillingPeriodTransitionResponse, error)

	// GrantEntitlementUsageCredits is the grant step of the processor,
	// exposed for orchestration layers that manage their own transaction
	// and ledger transaction record. Must be called inside a transaction.
	GrantEntitlementUsageCredits(ctx context.Context, params GrantEntitlementUsageCreditsParams) (*GrantEntitlementUsageCreditsResult, error)
}

// GrantEntitlementUsageCreditsParams carries the processor's input state.
// LedgerAccounts is mutated in place as missing accounts are created; it is
// confined to one command's execution and must not be shared across
// concurrent commands.
type GrantEntitlementUsageCreditsParams struct {
	LedgerAccounts    map[string]*ledgeraccount.LedgerAccount
	LedgerTransaction *ledgertransaction.LedgerTransaction
	SubscriptionID    string
	Payload           types.BillingPeriodTransitionPayload
	FeatureItems      []*subscription.FeatureItem
}

// GrantEntitlementUsageCreditsResult holds the inserted rows; both slices
// are empty when no feature item was eligible.
type GrantEntitlementUsageCreditsResult struct {
	UsageCredits  []*usagecredit.UsageCredit
	LedgerEntries []*ledgerentry.LedgerEntry
}

type billingPeriodTransitionService struct {
	ServiceParams
	idempGen *idempotency.Generator
}

func NewBillingPeriodTransitionService(params ServiceParams) BillingPeriodTransitionService {
	return &billingPeriodTransitionService{
		ServiceParams: params,
		idempGen:      idempotency.NewGenerator(),
	}
}

func (s *billingPeriodTransitionService) ProcessTransition(ctx context.Context, req dto.BillingPeriodTransitionRequest) (*dto.BillingPeriodTransitionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sub, err := s.SubRepo.Get(ctx, req.SubscriptionID)
	if err != nil {
		return nil, err
	}

	idempotencyKey := s.transitionIdempotencyKey(req)

	var response *dto.BillingPeriodTransitionResponse
	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		existing, err := s.LedgerTransactionRepo.GetByIdempotencyKey(ctx, idempotencyKey)
		if err != nil {
			return err
		}
		if existing != nil {
			s.Logger.WithContext(ctx).Infow("transition command already processed",
				"subscription_id", sub.ID,
				"ledger_transaction_id", existing.ID,
			)
			response = &dto.BillingPeriodTransitionResponse{
				LedgerTransactionID: existing.ID,
				UsageCredits:        []*usagecredit.UsageCredit{},
				LedgerEntries:       []*ledgerentry.LedgerEntry{},
				AlreadyProcessed:    true,
			}
			return nil
		}

		ledgerTxn := &ledgertransaction.LedgerTransaction{
			ID:                   types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LEDGER_TRANSACTION),
			SubscriptionID:       sub.ID,
			InitiatingSourceType: types.LedgerTransactionSourceTypeBillingPeriodTransition,
			InitiatingSourceID:   sub.ID,
			IdempotencyKey:       idempotencyKey,
			Description:          "billing period transition",
			EnvironmentID:        types.GetEnvironmentID(ctx),
			BaseModel:            types.GetDefaultBaseModel(ctx),
		}
		if err := s.LedgerTransactionRepo.Create(ctx, ledgerTxn); err != nil {
			// A concurrent delivery of the same command won the insert race.
			// The caller retries and hits the already-processed branch.
			return err
		}

		if err := s.ensureBillingPeriods(ctx, sub.ID, req.Payload); err != nil {
			return err
		}

		featureItems, err := s.SubRepo.ListFeatureItems(ctx, sub.ID)
		if err != nil {
			return err
		}

		grantResult, err := s.GrantEntitlementUsageCredits(ctx, GrantEntitlementUsageCreditsParams{
			LedgerAccounts:    map[string]*ledgeraccount.LedgerAccount{},
			LedgerTransaction: ledgerTxn,
			SubscriptionID:    sub.ID,
			Payload:           req.Payload,
			FeatureItems:      featureItems,
		})
		if err != nil {
			return err
		}

		expiredEntries, err := s.expireCredits(ctx, ledgerTxn, sub.ID, req.Payload)
		if err != nil {
			return err
		}

		response = &dto.BillingPeriodTransitionResponse{
			LedgerTransactionID: ledgerTxn.ID,
			UsageCredits:        grantResult.UsageCredits,
			LedgerEntries:       grantResult.LedgerEntries,
			ExpiredEntries:      expiredEntries,
		}
		return nil
	})
	if err != nil {
		s.Logger.WithContext(ctx).Errorw("billing period transition failed",
			"subscription_id", req.SubscriptionID,
			"payload_type", req.Payload.Type,
			"error", err,
		)
		return nil, err
	}

	return response, nil
}

// GrantEntitlementUsageCredits computes which feature items yield a credit
// grant and persists the credits plus their recognizing ledger entries. All
// inserts run in the caller's transaction; any failure rolls back the whole
// command.
func (s *billingPeriodTransitionService) GrantEntitlementUsageCredits(ctx context.Context, params GrantEntitlementUsageCreditsParams) (*GrantEntitlementUsageCreditsResult, error) {
	payload := params.Payload
	itemsToGrant := eligibleFeatureItems(payload, params.FeatureItems)

	// Resolve ledger accounts for meters that do not have one yet. The map
	// mutation is safe: the map belongs to this command alone.
	missingMeterIDs := lo.FilterMap(itemsToGrant, func(item *subscription.FeatureItem, _ int) (string, bool) {
		meterID := lo.FromPtr(item.UsageMeterID)
		_, ok := params.LedgerAccounts[meterID]
		return meterID, !ok
	})
	if len(missingMeterIDs) > 0 {
		created, err := s.LedgerAccountRepo.FindOrCreate(ctx, params.SubscriptionID, lo.Uniq(missingMeterIDs))
		if err != nil {
			return nil, err
		}
		for meterID, account := range created {
			params.LedgerAccounts[meterID] = account
		}
	}

	now := time.Now().UTC()
	credits := make([]*usagecredit.UsageCredit, 0, len(itemsToGrant))
	for _, item := range itemsToGrant {
		credits = append(credits, &usagecredit.UsageCredit{
			ID:                  types.GenerateUUIDWithPrefix(types.UUID_PREFIX_USAGE_CREDIT),
			Amount:              item.Amount,
			IssuedAmount:        item.Amount,
			CreditStatus:        types.UsageCreditStatusPosted,
			CreditType:          types.UsageCreditTypeGrant,
			SourceReferenceType: types.UsageCreditSourceReferenceTypeBillingPeriodTransition,
			UsageMeterID:        lo.FromPtr(item.UsageMeterID),
			SubscriptionID:      params.SubscriptionID,
			BillingPeriodID:     payload.NewBillingPeriodID(),
			ExpiresAt:           grantExpiry(payload, item),
			IssuedAt:            now,
			EnvironmentID:       types.GetEnvironmentID(ctx),
			BaseModel:           types.GetDefaultBaseModel(ctx),
		})
	}

	// Idempotent no-op: nothing eligible, nothing written.
	if len(credits) == 0 {
		return &GrantEntitlementUsageCreditsResult{
			UsageCredits:  []*usagecredit.UsageCredit{},
			LedgerEntries: []*ledgerentry.LedgerEntry{},
		}, nil
	}

	insertedCredits, err := s.UsageCreditRepo.CreateBulk(ctx, credits)
	if err != nil {
		return nil, err
	}

	entries := make([]*ledgerentry.LedgerEntry, 0, len(insertedCredits))
	for _, credit := range insertedCredits {
		account, ok := params.LedgerAccounts[credit.UsageMeterID]
		if !ok {
			return nil, ierr.NewErrorf("no ledger account resolved for usage meter %s", credit.UsageMeterID).
				Mark(ierr.ErrInternal)
		}
		entries = append(entries, &ledgerentry.LedgerEntry{
			ID:                  types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LEDGER_ENTRY),
			LedgerTransactionID: params.LedgerTransaction.ID,
			LedgerAccountID:     account.ID,
			SubscriptionID:      params.SubscriptionID,
			UsageMeterID:        credit.UsageMeterID,
			Direction:           types.LedgerEntryDirectionCredit,
			EntryType:           types.LedgerEntryTypeCreditGrantRecognized,
			Amount:              credit.IssuedAmount,
			EntryStatus:         types.LedgerEntryStatusPosted,
			SourceUsageCreditID: lo.ToPtr(credit.ID),
			BillingPeriodID:     credit.BillingPeriodID,
			EntryTimestamp:      now,
			EnvironmentID:       types.GetEnvironmentID(ctx),
			BaseModel:           types.GetDefaultBaseModel(ctx),
		})
	}

	insertedEntries, err := s.LedgerEntryRepo.CreateBulk(ctx, entries)
	if err != nil {
		return nil, err
	}

	s.Logger.WithContext(ctx).Infow("granted entitlement usage credits",
		"subscription_id", params.SubscriptionID,
		"credit_count", len(insertedCredits),
		"ledger_transaction_id", params.LedgerTransaction.ID,
	)

	return &GrantEntitlementUsageCreditsResult{
		UsageCredits:  insertedCredits,
		LedgerEntries: insertedEntries,
	}, nil
}

// eligibleFeatureItems is the entitlement grant policy. On an initial grant
// (credit trial or first period) every metered item is eligible; on a
// renewal only recurring items are. Recurring items are additionally
// suppressed under a credit trial: trials get the initial grant only, they
// never re-grant. Output order is stable by feature item ID.
func eligibleFeatureItems(payload types.BillingPeriodTransitionPayload, items []*subscription.FeatureItem) []*subscription.FeatureItem {
	metered := lo.Filter(items, func(item *subscription.FeatureItem, _ int) bool {
		return item.IsMetered()
	})

	var eligible []*subscription.FeatureItem
	if payload.IsInitialGrant() {
		eligible = metered
	} else {
		eligible = lo.Filter(metered, func(item *subscription.FeatureItem, _ int) bool {
			return item.RenewalFrequency == types.RenewalFrequencyEveryBillingPeriod
		})
	}

	eligible = lo.Filter(eligible, func(item *subscription.FeatureItem, _ int) bool {
		if item.RenewalFrequency == types.RenewalFrequencyEveryBillingPeriod {
			return payload.Type == types.BillingPeriodTransitionTypeStandard
		}
		return true
	})

	sort.Slice(eligible, func(i, j int) bool { return eligible[i].ID < eligible[j].ID })
	return eligible
}

// grantExpiry: recurring grants under a standard payload expire at the end
// of the opening period; one-time and credit-trial grants are evergreen.
func grantExpiry(payload types.BillingPeriodTransitionPayload, item *subscription.FeatureItem) *time.Time {
	if item.RenewalFrequency != types.RenewalFrequencyEveryBillingPeriod {
		return nil
	}
	if payload.Type != types.BillingPeriodTransitionTypeStandard || payload.NewBillingPeriod == nil {
		return nil
	}
	return lo.ToPtr(payload.NewBillingPeriod.EndDate)
}

// expireCredits closes out credits whose expiry falls inside the period
// being closed: each one with a remaining balance gets an offsetting
// credit_grant_expired debit. Entries are appended, never mutated.
func (s *billingPeriodTransitionService) expireCredits(ctx context.Context, ledgerTxn *ledgertransaction.LedgerTransaction, subscriptionID string, payload types.BillingPeriodTransitionPayload) ([]*ledgerentry.LedgerEntry, error) {
	if payload.Type != types.BillingPeriodTransitionTypeStandard || payload.PreviousBillingPeriod == nil {
		return nil, nil
	}

	prev := payload.PreviousBillingPeriod
	expiring, err := s.UsageCreditRepo.ListExpiring(ctx, subscriptionID, prev.StartDate, prev.EndDate)
	if err != nil {
		return nil, err
	}
	if len(expiring) == 0 {
		return nil, nil
	}

	creditIDs := lo.Map(expiring, func(c *usagecredit.UsageCredit, _ int) string { return c.ID })
	balances, err := s.LedgerEntryRepo.BalanceBySourceCredit(ctx, creditIDs)
	if err != nil {
		return nil, err
	}

	accounts, err := s.LedgerAccountRepo.FindOrCreate(ctx, subscriptionID,
		lo.Uniq(lo.Map(expiring, func(c *usagecredit.UsageCredit, _ int) string { return c.UsageMeterID })))
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entries := make([]*ledgerentry.LedgerEntry, 0, len(expiring))
	for _, credit := range expiring {
		remaining := balances[credit.ID]
		if remaining <= 0 {
			continue
		}
		entries = append(entries, &ledgerentry.LedgerEntry{
			ID:                  types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LEDGER_ENTRY),
			LedgerTransactionID: ledgerTxn.ID,
			LedgerAccountID:     accounts[credit.UsageMeterID].ID,
			SubscriptionID:      subscriptionID,
			UsageMeterID:        credit.UsageMeterID,
			Direction:           types.LedgerEntryDirectionDebit,
			EntryType:           types.LedgerEntryTypeCreditGrantExpired,
			Amount:              remaining,
			EntryStatus:         types.LedgerEntryStatusPosted,
			SourceUsageCreditID: lo.ToPtr(credit.ID),
			BillingPeriodID:     lo.ToPtr(prev.ID),
			EntryTimestamp:      now,
			EnvironmentID:       types.GetEnvironmentID(ctx),
			BaseModel:           types.GetDefaultBaseModel(ctx),
		})
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return s.LedgerEntryRepo.CreateBulk(ctx, entries)
}

// ensureBillingPeriods records the period bookkeeping for a standard
// transition: the closing period moves to completed and the opening period
// row is created when the orchestrator has not persisted it yet.
func (s *billingPeriodTransitionService) ensureBillingPeriods(ctx context.Context, subscriptionID string, payload types.BillingPeriodTransitionPayload) error {
	if payload.Type != types.BillingPeriodTransitionTypeStandard {
		return nil
	}

	if prev := payload.PreviousBillingPeriod; prev != nil {
		period, err := s.BillingPeriodRepo.Get(ctx, prev.ID)
		if err != nil && !ierr.IsNotFound(err) {
			return err
		}
		if period != nil && period.PeriodStatus != types.BillingPeriodStatusCompleted {
			if err := s.BillingPeriodRepo.UpdateStatus(ctx, prev.ID, types.BillingPeriodStatusCompleted); err != nil {
				return err
			}
		}
	}

	next := payload.NewBillingPeriod
	_, err := s.BillingPeriodRepo.Get(ctx, next.ID)
	if err == nil {
		return nil
	}
	if !ierr.IsNotFound(err) {
		return err
	}
	return s.BillingPeriodRepo.Create(ctx, &billingperiod.BillingPeriod{
		ID:             next.ID,
		SubscriptionID: subscriptionID,
		StartDate:      next.StartDate,
		EndDate:        next.EndDate,
		PeriodStatus:   types.BillingPeriodStatusActive,
		EnvironmentID:  types.GetEnvironmentID(ctx),
		BaseModel:      types.GetDefaultBaseModel(ctx),
	})
}

// transitionIdempotencyKey derives the command's identity: the same
// subscription and opening period always map to the same key, so webhook
// retries collide instead of double-granting.
func (s *billingPeriodTransitionService) transitionIdempotencyKey(req dto.BillingPeriodTransitionRequest) string {
	params := map[string]interface{}{
		"subscription_id": req.SubscriptionID,
		"payload_type":    string(req.Payload.Type),
	}
	if id := req.Payload.NewBillingPeriodID(); id != nil {
		params["new_billing_period_id"] = *id
	}
	return s.idempGen.GenerateKey(idempotency.ScopeBillingPeriodTransition, params)
}

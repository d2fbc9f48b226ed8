package service

import (
	"sync"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"

	"github.com/lumenbill/lumenbill/internal/api/dto"
	"github.com/lumenbill/lumenbill/internal/domain/billingperiod"
	"github.com/lumenbill/lumenbill/internal/domain/ledgeraccount"
	"github.com/lumenbill/lumenbill/internal/domain/ledgerentry"
	"github.com/lumenbill/lumenbill/internal/domain/ledgertransaction"
	"github.com/lumenbill/lumenbill/internal/domain/subscription"
	"github.com/lumenbill/lumenbill/internal/domain/usagecredit"
	ierr "github.com/lumenbill/lumenbill/internal/errors"
	"github.com/lumenbill/lumenbill/internal/testutil"
	"github.com/lumenbill/lumenbill/internal/types"
)

type BillingPeriodTransitionServiceSuite struct {
	testutil.BaseServiceTestSuite
	service BillingPeriodTransitionService

	sub       *subscription.Subscription
	meterOne  string
	meterTwo  string
	prevStart time.Time
	prevEnd   time.Time
	nextEnd   time.Time
}

func TestBillingPeriodTransitionService(t *testing.T) {
	suite.Run(t, new(BillingPeriodTransitionServiceSuite))
}

func (s *BillingPeriodTransitionServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewBillingPeriodTransitionService(testServiceParams(&s.BaseServiceTestSuite, testutil.NewFakeStripeGateway()))

	s.prevStart = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.prevEnd = time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	s.nextEnd = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	s.meterOne = "meter_api_calls"
	s.meterTwo = "meter_tokens"

	s.sub = &subscription.Subscription{
		ID:         "sub_test_1",
		CustomerID: "cust_test_1",
		StartDate:  s.prevStart,
		BaseModel:  types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().SubRepo.Create(s.GetContext(), s.sub))
}

func (s *BillingPeriodTransitionServiceSuite) addFeatureItem(id string, featureType types.FeatureType, amount int64, meterID string, freq types.RenewalFrequency) {
	item := &subscription.FeatureItem{
		ID:               id,
		SubscriptionID:   s.sub.ID,
		FeatureID:        "feat_" + id,
		FeatureType:      featureType,
		Amount:           amount,
		RenewalFrequency: freq,
		BaseModel:        types.GetDefaultBaseModel(s.GetContext()),
	}
	if meterID != "" {
		item.UsageMeterID = lo.ToPtr(meterID)
	}
	s.Require().NoError(s.GetStores().SubRepo.AddFeatureItem(s.GetContext(), item))
}

func (s *BillingPeriodTransitionServiceSuite) initialStandardPayload() types.BillingPeriodTransitionPayload {
	return types.BillingPeriodTransitionPayload{
		Type: types.BillingPeriodTransitionTypeStandard,
		NewBillingPeriod: &types.BillingPeriodRef{
			ID:        "bp_first",
			StartDate: s.prevStart,
			EndDate:   s.prevEnd,
		},
	}
}

func (s *BillingPeriodTransitionServiceSuite) renewalStandardPayload() types.BillingPeriodTransitionPayload {
	return types.BillingPeriodTransitionPayload{
		Type: types.BillingPeriodTransitionTypeStandard,
		PreviousBillingPeriod: &types.BillingPeriodRef{
			ID:        "bp_prev",
			StartDate: s.prevStart,
			EndDate:   s.prevEnd,
		},
		NewBillingPeriod: &types.BillingPeriodRef{
			ID:        "bp_next",
			StartDate: s.prevEnd,
			EndDate:   s.nextEnd,
		},
	}
}

func (s *BillingPeriodTransitionServiceSuite) TestInitialTransitionGrantsAllMeteredItems() {
	// A toggle feature and a one-time metered grant of 500. The toggle
	// never touches the ledger; the first transition grants the 500.
	s.addFeatureItem("sfi_1", types.FeatureTypeToggle, 0, "", "")
	s.addFeatureItem("sfi_2", types.FeatureTypeUsageCreditGrant, 500, s.meterOne, types.RenewalFrequencyOnce)

	resp, err := s.service.ProcessTransition(s.GetContext(), dto.BillingPeriodTransitionRequest{
		SubscriptionID: s.sub.ID,
		Payload:        s.initialStandardPayload(),
	})
	s.Require().NoError(err)
	s.False(resp.AlreadyProcessed)
	s.Require().Len(resp.UsageCredits, 1)
	s.Require().Len(resp.LedgerEntries, 1)

	credit := resp.UsageCredits[0]
	s.Equal(int64(500), credit.Amount)
	s.Equal(int64(500), credit.IssuedAmount)
	s.Equal(s.meterOne, credit.UsageMeterID)
	s.Equal(types.UsageCreditStatusPosted, credit.CreditStatus)
	s.Equal(types.UsageCreditTypeGrant, credit.CreditType)
	s.Equal("bp_first", lo.FromPtr(credit.BillingPeriodID))
	s.Nil(credit.ExpiresAt)

	entry := resp.LedgerEntries[0]
	s.Equal(types.LedgerEntryDirectionCredit, entry.Direction)
	s.Equal(types.LedgerEntryTypeCreditGrantRecognized, entry.EntryType)
	s.Equal(int64(500), entry.Amount)
	s.Equal(credit.ID, lo.FromPtr(entry.SourceUsageCreditID))
	s.Equal(resp.LedgerTransactionID, entry.LedgerTransactionID)

	// One ledger account materialized for the meter, with the full balance.
	s.Equal(1, s.GetStores().LedgerAccountRepo.Count(s.GetContext()))
	balance, err := s.GetStores().LedgerEntryRepo.AggregateBalance(s.GetContext(), entry.LedgerAccountID)
	s.Require().NoError(err)
	s.Equal(int64(500), balance)
}

func (s *BillingPeriodTransitionServiceSuite) TestRenewalGrantsOnlyRecurringItems() {
	s.addFeatureItem("sfi_once", types.FeatureTypeUsageCreditGrant, 500, s.meterOne, types.RenewalFrequencyOnce)
	s.addFeatureItem("sfi_recurring", types.FeatureTypeUsageCreditGrant, 100, s.meterTwo, types.RenewalFrequencyEveryBillingPeriod)

	resp, err := s.service.ProcessTransition(s.GetContext(), dto.BillingPeriodTransitionRequest{
		SubscriptionID: s.sub.ID,
		Payload:        s.renewalStandardPayload(),
	})
	s.Require().NoError(err)
	s.Require().Len(resp.UsageCredits, 1)

	credit := resp.UsageCredits[0]
	s.Equal(s.meterTwo, credit.UsageMeterID)
	s.Equal(int64(100), credit.Amount)
	// Recurring grants expire with the period that opened them.
	s.Require().NotNil(credit.ExpiresAt)
	s.Equal(s.nextEnd, *credit.ExpiresAt)
}

func (s *BillingPeriodTransitionServiceSuite) TestCreditTrialSuppressesRecurringItems() {
	s.addFeatureItem("sfi_once", types.FeatureTypeUsageCreditGrant, 500, s.meterOne, types.RenewalFrequencyOnce)
	s.addFeatureItem("sfi_recurring", types.FeatureTypeUsageCreditGrant, 100, s.meterTwo, types.RenewalFrequencyEveryBillingPeriod)

	resp, err := s.service.ProcessTransition(s.GetContext(), dto.BillingPeriodTransitionRequest{
		SubscriptionID: s.sub.ID,
		Payload:        types.BillingPeriodTransitionPayload{Type: types.BillingPeriodTransitionTypeCreditTrial},
	})
	s.Require().NoError(err)
	s.Require().Len(resp.UsageCredits, 1)

	credit := resp.UsageCredits[0]
	s.Equal(s.meterOne, credit.UsageMeterID)
	// Trials have no billing period and trial grants never expire.
	s.Nil(credit.BillingPeriodID)
	s.Nil(credit.ExpiresAt)
}

func (s *BillingPeriodTransitionServiceSuite) TestRedeliveryReturnsAlreadyProcessed() {
	s.addFeatureItem("sfi_1", types.FeatureTypeUsageCreditGrant, 500, s.meterOne, types.RenewalFrequencyOnce)

	req := dto.BillingPeriodTransitionRequest{
		SubscriptionID: s.sub.ID,
		Payload:        s.initialStandardPayload(),
	}

	first, err := s.service.ProcessTransition(s.GetContext(), req)
	s.Require().NoError(err)
	s.Require().Len(first.UsageCredits, 1)

	second, err := s.service.ProcessTransition(s.GetContext(), req)
	s.Require().NoError(err)
	s.True(second.AlreadyProcessed)
	s.Equal(first.LedgerTransactionID, second.LedgerTransactionID)
	s.Empty(second.UsageCredits)
	s.Empty(second.LedgerEntries)

	// No double grant.
	s.Equal(1, s.GetStores().UsageCreditRepo.Count(s.GetContext()))
	s.Equal(1, s.GetStores().LedgerEntryRepo.Count(s.GetContext()))
	s.Equal(1, s.GetStores().LedgerTransactionRepo.Count(s.GetContext()))
}

func (s *BillingPeriodTransitionServiceSuite) TestConcurrentDeliveryProcessesOnce() {
	s.addFeatureItem("sfi_1", types.FeatureTypeUsageCreditGrant, 500, s.meterOne, types.RenewalFrequencyOnce)

	req := dto.BillingPeriodTransitionRequest{
		SubscriptionID: s.sub.ID,
		Payload:        s.initialStandardPayload(),
	}

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.service.ProcessTransition(s.GetContext(), req)
		}(i)
	}
	wg.Wait()

	// Losers of the insert race fail with a conflict; exactly one command
	// lands and the ledger is written once.
	for _, err := range errs {
		if err != nil {
			s.True(ierr.IsAlreadyExists(err))
		}
	}
	s.Equal(1, s.GetStores().LedgerTransactionRepo.Count(s.GetContext()))
	s.Equal(1, s.GetStores().UsageCreditRepo.Count(s.GetContext()))
	s.Equal(1, s.GetStores().LedgerEntryRepo.Count(s.GetContext()))
}

func (s *BillingPeriodTransitionServiceSuite) TestNoEligibleItemsWritesNothing() {
	s.addFeatureItem("sfi_toggle", types.FeatureTypeToggle, 0, "", "")

	ledgerTxn := &ledgertransaction.LedgerTransaction{
		ID:                   types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LEDGER_TRANSACTION),
		SubscriptionID:       s.sub.ID,
		InitiatingSourceType: types.LedgerTransactionSourceTypeBillingPeriodTransition,
		InitiatingSourceID:   s.sub.ID,
		IdempotencyKey:       "test-key",
		BaseModel:            types.GetDefaultBaseModel(s.GetContext()),
	}
	items, err := s.GetStores().SubRepo.ListFeatureItems(s.GetContext(), s.sub.ID)
	s.Require().NoError(err)

	result, err := s.service.GrantEntitlementUsageCredits(s.GetContext(), GrantEntitlementUsageCreditsParams{
		LedgerAccounts:    map[string]*ledgeraccount.LedgerAccount{},
		LedgerTransaction: ledgerTxn,
		SubscriptionID:    s.sub.ID,
		Payload:           s.initialStandardPayload(),
		FeatureItems:      items,
	})
	s.Require().NoError(err)
	s.NotNil(result.UsageCredits)
	s.NotNil(result.LedgerEntries)
	s.Empty(result.UsageCredits)
	s.Empty(result.LedgerEntries)

	s.Equal(0, s.GetStores().UsageCreditRepo.Count(s.GetContext()))
	s.Equal(0, s.GetStores().LedgerEntryRepo.Count(s.GetContext()))
	s.Equal(0, s.GetStores().LedgerAccountRepo.Count(s.GetContext()))
}

func (s *BillingPeriodTransitionServiceSuite) TestExistingLedgerAccountIsReused() {
	s.addFeatureItem("sfi_1", types.FeatureTypeUsageCreditGrant, 500, s.meterOne, types.RenewalFrequencyOnce)

	existing := &ledgeraccount.LedgerAccount{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LEDGER_ACCOUNT),
		SubscriptionID: s.sub.ID,
		UsageMeterID:   s.meterOne,
		BaseModel:      types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().LedgerAccountRepo.Create(s.GetContext(), existing))

	resp, err := s.service.ProcessTransition(s.GetContext(), dto.BillingPeriodTransitionRequest{
		SubscriptionID: s.sub.ID,
		Payload:        s.initialStandardPayload(),
	})
	s.Require().NoError(err)
	s.Require().Len(resp.LedgerEntries, 1)
	s.Equal(existing.ID, resp.LedgerEntries[0].LedgerAccountID)
	s.Equal(1, s.GetStores().LedgerAccountRepo.Count(s.GetContext()))
}

func (s *BillingPeriodTransitionServiceSuite) TestRenewalExpiresRemainingBalance() {
	s.addFeatureItem("sfi_recurring", types.FeatureTypeUsageCreditGrant, 100, s.meterOne, types.RenewalFrequencyEveryBillingPeriod)

	ctx := s.GetContext()
	stores := s.GetStores()

	account := &ledgeraccount.LedgerAccount{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LEDGER_ACCOUNT),
		SubscriptionID: s.sub.ID,
		UsageMeterID:   s.meterOne,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
	s.Require().NoError(stores.LedgerAccountRepo.Create(ctx, account))

	// A grant of 500 from the closing period, 200 already consumed.
	expiring := &usagecredit.UsageCredit{
		ID:                  types.GenerateUUIDWithPrefix(types.UUID_PREFIX_USAGE_CREDIT),
		Amount:              500,
		IssuedAmount:        500,
		CreditStatus:        types.UsageCreditStatusPosted,
		CreditType:          types.UsageCreditTypeGrant,
		SourceReferenceType: types.UsageCreditSourceReferenceTypeBillingPeriodTransition,
		UsageMeterID:        s.meterOne,
		SubscriptionID:      s.sub.ID,
		ExpiresAt:           lo.ToPtr(s.prevEnd),
		IssuedAt:            s.prevStart,
		BaseModel:           types.GetDefaultBaseModel(ctx),
	}
	_, err := stores.UsageCreditRepo.CreateBulk(ctx, []*usagecredit.UsageCredit{expiring})
	s.Require().NoError(err)

	_, err = stores.LedgerEntryRepo.CreateBulk(ctx, []*ledgerentry.LedgerEntry{
		{
			ID:                  types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LEDGER_ENTRY),
			LedgerTransactionID: "ltxn_seed",
			LedgerAccountID:     account.ID,
			SubscriptionID:      s.sub.ID,
			UsageMeterID:        s.meterOne,
			Direction:           types.LedgerEntryDirectionCredit,
			EntryType:           types.LedgerEntryTypeCreditGrantRecognized,
			Amount:              500,
			EntryStatus:         types.LedgerEntryStatusPosted,
			SourceUsageCreditID: lo.ToPtr(expiring.ID),
			EntryTimestamp:      s.prevStart,
			BaseModel:           types.GetDefaultBaseModel(ctx),
		},
		{
			ID:                  types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LEDGER_ENTRY),
			LedgerTransactionID: "ltxn_seed",
			LedgerAccountID:     account.ID,
			SubscriptionID:      s.sub.ID,
			UsageMeterID:        s.meterOne,
			Direction:           types.LedgerEntryDirectionDebit,
			EntryType:           types.LedgerEntryTypeUsageCost,
			Amount:              200,
			EntryStatus:         types.LedgerEntryStatusPosted,
			SourceUsageCreditID: lo.ToPtr(expiring.ID),
			EntryTimestamp:      s.prevStart.Add(time.Hour),
			BaseModel:           types.GetDefaultBaseModel(ctx),
		},
	})
	s.Require().NoError(err)

	resp, err := s.service.ProcessTransition(ctx, dto.BillingPeriodTransitionRequest{
		SubscriptionID: s.sub.ID,
		Payload:        s.renewalStandardPayload(),
	})
	s.Require().NoError(err)

	s.Require().Len(resp.ExpiredEntries, 1)
	expired := resp.ExpiredEntries[0]
	s.Equal(types.LedgerEntryDirectionDebit, expired.Direction)
	s.Equal(types.LedgerEntryTypeCreditGrantExpired, expired.EntryType)
	s.Equal(int64(300), expired.Amount)
	s.Equal(expiring.ID, lo.FromPtr(expired.SourceUsageCreditID))

	// Conservation: the old grant nets to zero, leaving only the renewal
	// grant of 100 on the account.
	balance, err := stores.LedgerEntryRepo.AggregateBalance(ctx, account.ID)
	s.Require().NoError(err)
	s.Equal(int64(100), balance)
}

func (s *BillingPeriodTransitionServiceSuite) TestFullyConsumedCreditDoesNotExpire() {
	ctx := s.GetContext()
	stores := s.GetStores()

	account := &ledgeraccount.LedgerAccount{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LEDGER_ACCOUNT),
		SubscriptionID: s.sub.ID,
		UsageMeterID:   s.meterOne,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
	s.Require().NoError(stores.LedgerAccountRepo.Create(ctx, account))

	spent := &usagecredit.UsageCredit{
		ID:                  types.GenerateUUIDWithPrefix(types.UUID_PREFIX_USAGE_CREDIT),
		Amount:              500,
		IssuedAmount:        500,
		CreditStatus:        types.UsageCreditStatusPosted,
		CreditType:          types.UsageCreditTypeGrant,
		SourceReferenceType: types.UsageCreditSourceReferenceTypeBillingPeriodTransition,
		UsageMeterID:        s.meterOne,
		SubscriptionID:      s.sub.ID,
		ExpiresAt:           lo.ToPtr(s.prevEnd),
		IssuedAt:            s.prevStart,
		BaseModel:           types.GetDefaultBaseModel(ctx),
	}
	_, err := stores.UsageCreditRepo.CreateBulk(ctx, []*usagecredit.UsageCredit{spent})
	s.Require().NoError(err)

	_, err = stores.LedgerEntryRepo.CreateBulk(ctx, []*ledgerentry.LedgerEntry{
		{
			ID:                  types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LEDGER_ENTRY),
			LedgerTransactionID: "ltxn_seed",
			LedgerAccountID:     account.ID,
			SubscriptionID:      s.sub.ID,
			UsageMeterID:        s.meterOne,
			Direction:           types.LedgerEntryDirectionCredit,
			EntryType:           types.LedgerEntryTypeCreditGrantRecognized,
			Amount:              500,
			EntryStatus:         types.LedgerEntryStatusPosted,
			SourceUsageCreditID: lo.ToPtr(spent.ID),
			EntryTimestamp:      s.prevStart,
			BaseModel:           types.GetDefaultBaseModel(ctx),
		},
		{
			ID:                  types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LEDGER_ENTRY),
			LedgerTransactionID: "ltxn_seed",
			LedgerAccountID:     account.ID,
			SubscriptionID:      s.sub.ID,
			UsageMeterID:        s.meterOne,
			Direction:           types.LedgerEntryDirectionDebit,
			EntryType:           types.LedgerEntryTypeUsageCost,
			Amount:              500,
			EntryStatus:         types.LedgerEntryStatusPosted,
			SourceUsageCreditID: lo.ToPtr(spent.ID),
			EntryTimestamp:      s.prevStart.Add(time.Hour),
			BaseModel:           types.GetDefaultBaseModel(ctx),
		},
	})
	s.Require().NoError(err)

	resp, err := s.service.ProcessTransition(ctx, dto.BillingPeriodTransitionRequest{
		SubscriptionID: s.sub.ID,
		Payload:        s.renewalStandardPayload(),
	})
	s.Require().NoError(err)
	s.Empty(resp.ExpiredEntries)
}

func (s *BillingPeriodTransitionServiceSuite) TestStandardTransitionUpdatesBillingPeriods() {
	ctx := s.GetContext()
	stores := s.GetStores()

	s.Require().NoError(stores.BillingPeriodRepo.Create(ctx, &billingperiod.BillingPeriod{
		ID:             "bp_prev",
		SubscriptionID: s.sub.ID,
		StartDate:      s.prevStart,
		EndDate:        s.prevEnd,
		PeriodStatus:   types.BillingPeriodStatusActive,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}))

	_, err := s.service.ProcessTransition(ctx, dto.BillingPeriodTransitionRequest{
		SubscriptionID: s.sub.ID,
		Payload:        s.renewalStandardPayload(),
	})
	s.Require().NoError(err)

	prev, err := stores.BillingPeriodRepo.Get(ctx, "bp_prev")
	s.Require().NoError(err)
	s.Equal(types.BillingPeriodStatusCompleted, prev.PeriodStatus)

	next, err := stores.BillingPeriodRepo.Get(ctx, "bp_next")
	s.Require().NoError(err)
	s.Equal(types.BillingPeriodStatusActive, next.PeriodStatus)
	s.Equal(s.sub.ID, next.SubscriptionID)
}

func (s *BillingPeriodTransitionServiceSuite) TestInvalidPayloadIsRejected() {
	_, err := s.service.ProcessTransition(s.GetContext(), dto.BillingPeriodTransitionRequest{
		SubscriptionID: s.sub.ID,
		Payload:        types.BillingPeriodTransitionPayload{Type: types.BillingPeriodTransitionTypeStandard},
	})
	s.Require().Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *BillingPeriodTransitionServiceSuite) TestUnknownSubscriptionIsRejected() {
	_, err := s.service.ProcessTransition(s.GetContext(), dto.BillingPeriodTransitionRequest{
		SubscriptionID: "sub_missing",
		Payload:        s.initialStandardPayload(),
	})
	s.Require().Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *BillingPeriodTransitionServiceSuite) TestDetachedItemsAreIgnored() {
	s.addFeatureItem("sfi_live", types.FeatureTypeUsageCreditGrant, 500, s.meterOne, types.RenewalFrequencyOnce)
	detached := &subscription.FeatureItem{
		ID:               "sfi_detached",
		SubscriptionID:   s.sub.ID,
		FeatureID:        "feat_detached",
		FeatureType:      types.FeatureTypeUsageCreditGrant,
		Amount:           900,
		UsageMeterID:     lo.ToPtr(s.meterTwo),
		RenewalFrequency: types.RenewalFrequencyOnce,
		DetachedAt:       lo.ToPtr(time.Now().UTC()),
		BaseModel:        types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().SubRepo.AddFeatureItem(s.GetContext(), detached))

	resp, err := s.service.ProcessTransition(s.GetContext(), dto.BillingPeriodTransitionRequest{
		SubscriptionID: s.sub.ID,
		Payload:        s.initialStandardPayload(),
	})
	s.Require().NoError(err)
	s.Require().Len(resp.UsageCredits, 1)
	s.Equal(s.meterOne, resp.UsageCredits[0].UsageMeterID)
}

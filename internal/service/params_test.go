package service

import (
	"github.com/lumenbill/lumenbill/internal/testutil"
)

// testServiceParams builds ServiceParams over the suite's in-memory stores.
func testServiceParams(base *testutil.BaseServiceTestSuite, gateway *testutil.FakeStripeGateway) ServiceParams {
	stores := base.GetStores()
	return ServiceParams{
		Logger: base.GetLogger(),
		Config: base.GetConfig(),
		DB:     base.GetDB(),

		LedgerAccountRepo:     stores.LedgerAccountRepo,
		LedgerTransactionRepo: stores.LedgerTransactionRepo,
		LedgerEntryRepo:       stores.LedgerEntryRepo,
		UsageCreditRepo:       stores.UsageCreditRepo,
		SubRepo:               stores.SubRepo,
		BillingPeriodRepo:     stores.BillingPeriodRepo,
		CustomerRepo:          stores.CustomerRepo,
		PurchaseRepo:          stores.PurchaseRepo,
		CheckoutSessionRepo:   stores.CheckoutSessionRepo,
		FeeCalculationRepo:    stores.FeeCalculationRepo,

		StripeGateway: gateway,
	}
}

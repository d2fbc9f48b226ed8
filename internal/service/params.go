package service

import (
	"github.com/lumenbill/lumenbill/internal/config"
	"github.com/lumenbill/lumenbill/internal/domain/billingperiod"
	"github.com/lumenbill/lumenbill/internal/domain/checkoutsession"
	"github.com/lumenbill/lumenbill/internal/domain/customer"
	"github.com/lumenbill/lumenbill/internal/domain/feecalculation"
	"github.com/lumenbill/lumenbill/internal/domain/ledgeraccount"
	"github.com/lumenbill/lumenbill/internal/domain/ledgerentry"
	"github.com/lumenbill/lumenbill/internal/domain/ledgertransaction"
	"github.com/lumenbill/lumenbill/internal/domain/purchase"
	"github.com/lumenbill/lumenbill/internal/domain/subscription"
	"github.com/lumenbill/lumenbill/internal/domain/usagecredit"
	"github.com/lumenbill/lumenbill/internal/integration/stripe"
	"github.com/lumenbill/lumenbill/internal/logger"
	"github.com/lumenbill/lumenbill/internal/postgres"
)

// ServiceParams holds the common dependencies injected into every service.
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient

	LedgerAccountRepo     ledgeraccount.Repository
	LedgerTransactionRepo ledgertransaction.Repository
	LedgerEntryRepo       ledgerentry.Repository
	UsageCreditRepo       usagecredit.Repository
	SubRepo               subscription.Repository
	BillingPeriodRepo     billingperiod.Repository
	CustomerRepo          customer.Repository
	PurchaseRepo          purchase.Repository
	CheckoutSessionRepo   checkoutsession.Repository
	FeeCalculationRepo    feecalculation.Repository

	StripeGateway stripe.Gateway
}

package testutil

import (
	"context"

	"github.com/stretchr/testify/suite"

	"github.com/lumenbill/lumenbill/internal/config"
	"github.com/lumenbill/lumenbill/internal/logger"
	"github.com/lumenbill/lumenbill/internal/types"
)

// Stores bundles the in-memory repositories used by service tests.
type Stores struct {
	LedgerAccountRepo     *InMemoryLedgerAccountStore
	LedgerTransactionRepo *InMemoryLedgerTransactionStore
	LedgerEntryRepo       *InMemoryLedgerEntryStore
	UsageCreditRepo       *InMemoryUsageCreditStore
	SubRepo               *InMemorySubscriptionStore
	BillingPeriodRepo     *InMemoryBillingPeriodStore
	CustomerRepo          *InMemoryCustomerStore
	PurchaseRepo          *InMemoryPurchaseStore
	CheckoutSessionRepo   *InMemoryCheckoutSessionStore
	FeeCalculationRepo    *InMemoryFeeCalculationStore
}

func NewStores() Stores {
	return Stores{
		LedgerAccountRepo:     NewInMemoryLedgerAccountStore(),
		LedgerTransactionRepo: NewInMemoryLedgerTransactionStore(),
		LedgerEntryRepo:       NewInMemoryLedgerEntryStore(),
		UsageCreditRepo:       NewInMemoryUsageCreditStore(),
		SubRepo:               NewInMemorySubscriptionStore(),
		BillingPeriodRepo:     NewInMemoryBillingPeriodStore(),
		CustomerRepo:          NewInMemoryCustomerStore(),
		PurchaseRepo:          NewInMemoryPurchaseStore(),
		CheckoutSessionRepo:   NewInMemoryCheckoutSessionStore(),
		FeeCalculationRepo:    NewInMemoryFeeCalculationStore(),
	}
}

// BaseServiceTestSuite is the common fixture for service tests: fresh
// in-memory stores, a test logger and a context carrying tenant identity.
type BaseServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	logger *logger.Logger
	config *config.Configuration
	stores Stores
	db     *PassthroughDBClient
}

// SetupTest initializes fresh state before each test.
func (s *BaseServiceTestSuite) SetupTest() {
	cfg := config.GetDefaultConfig()
	log, err := logger.NewLogger(cfg)
	s.Require().NoError(err)

	s.logger = log
	s.config = cfg
	s.stores = NewStores()
	s.db = NewPassthroughDBClient()

	ctx := context.Background()
	ctx = types.SetTenantID(ctx, types.DefaultTenantID)
	ctx = types.SetEnvironmentID(ctx, types.DefaultEnvironmentID)
	ctx = types.SetUserID(ctx, types.DefaultUserID)
	s.ctx = ctx
}

func (s *BaseServiceTestSuite) GetContext() context.Context      { return s.ctx }
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger        { return s.logger }
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration { return s.config }
func (s *BaseServiceTestSuite) GetStores() Stores                { return s.stores }
func (s *BaseServiceTestSuite) GetDB() *PassthroughDBClient      { return s.db }

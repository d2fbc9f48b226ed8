package main

import (
	"context"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/lumenbill/lumenbill/internal/api"
	v1 "github.com/lumenbill/lumenbill/internal/api/v1"
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
	gormrepo "github.com/lumenbill/lumenbill/internal/repository/gorm"
	"github.com/lumenbill/lumenbill/internal/service"
)

func init() {
	// Best effort. Config errors surface again, fatally, inside fx.
	if cfg, err := config.NewConfig(); err == nil && cfg.Sentry.Enabled {
		_ = sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Sentry.Environment,
			TracesSampleRate: cfg.Sentry.SampleRate,
		})
	}
}

func main() {
	app := fx.New(
		fx.Provide(
			config.NewConfig,
			logger.NewLogger,
			fx.Annotate(postgres.NewClient, fx.As(new(postgres.IClient))),
			stripe.NewGateway,

			gormrepo.NewLedgerAccountRepository,
			gormrepo.NewLedgerTransactionRepository,
			gormrepo.NewLedgerEntryRepository,
			gormrepo.NewUsageCreditRepository,
			gormrepo.NewSubscriptionRepository,
			gormrepo.NewBillingPeriodRepository,
			gormrepo.NewCustomerRepository,
			gormrepo.NewPurchaseRepository,
			gormrepo.NewCheckoutSessionRepository,
			gormrepo.NewFeeCalculationRepository,

			newServiceParams,
			service.NewBillingPeriodTransitionService,
			service.NewFeeCalculationService,
			service.NewCheckoutSessionService,
			service.NewCatalogSetupService,
			service.NewLedgerService,

			v1.NewBillingTransitionHandler,
			v1.NewCheckoutSessionHandler,
			v1.NewCatalogHandler,
			v1.NewLedgerHandler,
			api.NewRouter,
		),
		fx.Invoke(startServer),
	)

	app.Run()
}

func newServiceParams(
	log *logger.Logger,
	cfg *config.Configuration,
	db postgres.IClient,
	ledgerAccountRepo ledgeraccount.Repository,
	ledgerTransactionRepo ledgertransaction.Repository,
	ledgerEntryRepo ledgerentry.Repository,
	usageCreditRepo usagecredit.Repository,
	subRepo subscription.Repository,
	billingPeriodRepo billingperiod.Repository,
	customerRepo customer.Repository,
	purchaseRepo purchase.Repository,
	checkoutSessionRepo checkoutsession.Repository,
	feeCalculationRepo feecalculation.Repository,
	stripeGateway stripe.Gateway,
) service.ServiceParams {
	return service.ServiceParams{
		Logger: log,
		Config: cfg,
		DB:     db,

		LedgerAccountRepo:     ledgerAccountRepo,
		LedgerTransactionRepo: ledgerTransactionRepo,
		LedgerEntryRepo:       ledgerEntryRepo,
		UsageCreditRepo:       usageCreditRepo,
		SubRepo:               subRepo,
		BillingPeriodRepo:     billingPeriodRepo,
		CustomerRepo:          customerRepo,
		PurchaseRepo:          purchaseRepo,
		CheckoutSessionRepo:   checkoutSessionRepo,
		FeeCalculationRepo:    feeCalculationRepo,

		StripeGateway: stripeGateway,
	}
}

func startServer(lc fx.Lifecycle, router *gin.Engine, cfg *config.Configuration, log *logger.Logger) {
	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			log.Infow("starting server", "address", cfg.Server.Address)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatalw("server failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			sentry.Flush(2 * time.Second)
			return server.Shutdown(shutdownCtx)
		},
	})
}

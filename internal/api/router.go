package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	v1 "github.com/lumenbill/lumenbill/internal/api/v1"
	"github.com/lumenbill/lumenbill/internal/config"
	"github.com/lumenbill/lumenbill/internal/logger"
	"github.com/lumenbill/lumenbill/internal/rest/middleware"
)

// Handlers collects every versioned handler for router construction.
type Handlers struct {
	fx.In

	BillingTransition *v1.BillingTransitionHandler
	CheckoutSession   *v1.CheckoutSessionHandler
	Catalog           *v1.CatalogHandler
	Ledger            *v1.LedgerHandler
}

// NewRouter builds the HTTP router with the standard middleware chain.
func NewRouter(handlers Handlers, cfg *config.Configuration, log *logger.Logger) *gin.Engine {
	if cfg.Deployment.Mode == config.ModeProd {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestContextMiddleware(),
		middleware.SentryMiddleware(cfg),
		middleware.LoggingMiddleware(log),
		middleware.ErrorHandler(),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	group := router.Group("/v1")
	{
		group.POST("/subscriptions/:id/transition", handlers.BillingTransition.ProcessTransition)
		group.GET("/subscriptions/:id/balances/:meter_id", handlers.Ledger.GetAccountBalance)
		group.POST("/ledger-entries/:id/discard", handlers.Ledger.DiscardEntry)
		group.POST("/checkout-sessions/:id/confirm", handlers.CheckoutSession.ConfirmCheckoutSession)
		group.POST("/catalog/validate", handlers.Catalog.ValidateCatalog)
	}

	return router
}

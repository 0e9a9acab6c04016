// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"erpledger/internal/app"
	"erpledger/internal/infrastructure/cache"
	"erpledger/internal/infrastructure/http/v1/dto"
	"erpledger/internal/infrastructure/http/v1/handlers"
	"erpledger/internal/infrastructure/http/v1/middleware"
	"erpledger/internal/infrastructure/metrics"
	"erpledger/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	Services *app.Services

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator validates bearer tokens. Nil disables authentication.
	JWTValidator middleware.JWTValidator

	// AuthRequired rejects anonymous requests. Otherwise anonymous
	// requests are recorded as the system actor.
	AuthRequired bool

	// Idempotency stores replayable responses. Nil disables the middleware.
	Idempotency cache.IdempotencyStore

	// Metrics is optional; when set /metrics is served.
	Metrics *metrics.Metrics

	// StorageName and ReadinessChecks feed /health/ready.
	StorageName     string
	ReadinessChecks []handlers.Check
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	if err := dto.RegisterValidators(); err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.Middleware())
	}
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.StorageName, cfg.ReadinessChecks...)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	v1 := router.Group("/api/v1")
	switch {
	case cfg.JWTValidator != nil && cfg.AuthRequired:
		v1.Use(middleware.Auth(cfg.JWTValidator))
	case cfg.JWTValidator != nil:
		v1.Use(middleware.OptionalAuth(cfg.JWTValidator))
	}
	// After auth so keys are scoped to the caller.
	if cfg.Idempotency != nil {
		v1.Use(middleware.Idempotency(cfg.Idempotency))
	}

	base := handlers.NewBaseHandler()
	registerCatalogRoutes(v1, base, cfg.Services)
	registerStockRoutes(v1, base, cfg.Services)
	registerOrderRoutes(v1, base, cfg.Services)
	registerReturnRoutes(v1, base, cfg.Services)
	registerReportRoutes(v1, base, cfg.Services)

	return router, nil
}

func registerCatalogRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, s *app.Services) {
	h := handlers.NewCatalogHandler(base, s.Catalog)
	prod := handlers.NewProductionHandler(base, s.Production)

	rg.POST("/products", h.CreateProduct)
	rg.GET("/products", h.ListProducts)
	rg.GET("/products/:id", h.GetProduct)
	rg.PUT("/products/:id/bom", h.SetBOM)
	rg.GET("/products/:id/production", prod.History)
	rg.POST("/components", h.CreateComponent)
	rg.GET("/components", h.ListComponents)

	rg.POST("/production", prod.Produce)
	rg.GET("/production/preview", prod.Preview)
}

func registerStockRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, s *app.Services) {
	h := handlers.NewStockHandler(base, s.Inventory)
	stock := rg.Group("/stock/:itemType/:itemId")
	{
		stock.GET("", h.Get)
		stock.POST("/batches", h.Receive)
		stock.POST("/adjustments", h.Adjust)
	}

	q := handlers.NewQualityHandler(base, s.Quality)
	rg.PUT("/quality/:productId/batches/:lot", q.SetStatus)
}

func registerOrderRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, s *app.Services) {
	h := handlers.NewOrdersHandler(base, s.Orders, s.Billing)
	orders := rg.Group("/orders")
	{
		orders.POST("", h.Create)
		orders.GET("", h.List)
		orders.GET("/:id", h.Get)
		orders.GET("/:id/plan", h.Plan)
		orders.POST("/:id/fulfill", h.Fulfill)
		orders.POST("/:id/backorder", h.Backorder)
		orders.POST("/:id/cancel", h.Cancel)
		orders.POST("/:id/invoice", h.Invoice)
	}

	b := handlers.NewBillingHandler(base, s.Billing)
	rg.GET("/invoices/:id", b.GetInvoice)
	rg.GET("/credit-notes/:id", b.GetCreditNote)
	rg.POST("/credit-notes/:id/apply", b.ApplyCredit)
}

func registerReturnRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, s *app.Services) {
	h := handlers.NewReturnsHandler(base, s.Returns)
	rg.POST("/returns", h.Create)
	rg.GET("/returns/:id", h.Get)
	rg.POST("/returns/:id/process", h.Process)
	rg.POST("/supplier-returns", h.CreateSupplier)
	rg.POST("/supplier-returns/:id/process", h.ProcessSupplier)
}

func registerReportRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, s *app.Services) {
	h := handlers.NewReportsHandler(base, s.Reports)
	rg.GET("/ledger", h.Ledger)
	rg.GET("/trace/product-lots/:lot", h.TraceProductLot)
	rg.GET("/trace/component-lots/:componentId/:lot", h.TraceComponentLot)

	reports := rg.Group("/reports")
	{
		reports.GET("/stock-levels", h.StockLevels)
		reports.GET("/low-stock", h.LowStock)
		reports.GET("/reconciliation", h.Reconciliation)
	}
}

package router

import (
	"context"
	"time"

	"airportpos/internal/config"
	"airportpos/internal/handler"
	"airportpos/internal/infra"
	"airportpos/internal/middleware"
	"airportpos/internal/model"
	"airportpos/internal/realtime"
	"airportpos/internal/repository"
	"airportpos/internal/service"
	"airportpos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the long-lived collaborators built in main and shared with the
// worker pool. Publisher and Metrics may be nil.
type Deps struct {
	DB         *gorm.DB
	RDB        *redis.Client
	Dispatcher *worker.Dispatcher
	Renderer   *infra.InvoiceRenderer
	Publisher  realtime.Publisher
	Metrics    *infra.CheckoutMetrics
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, d Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.FrontendURL))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	productRepo := repository.NewProductRepository(d.DB)
	movementRepo := repository.NewStockMovementRepository(d.DB)
	billRepo := repository.NewBillRepository(d.DB)
	shopRepo := repository.NewShopRepository(d.DB)
	vendorRepo := repository.NewVendorRepository(d.DB)
	cashierRepo := repository.NewCashierRepository(d.DB)
	adminRepo := repository.NewAdminRepository(d.DB)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(vendorRepo, cashierRepo, adminRepo, cfg)
	checkoutSvc := service.NewCheckoutService(service.CheckoutDeps{
		Tx:        repository.NewTransactor(d.DB),
		Ledger:    service.NewStockLedger(productRepo, movementRepo),
		Bills:     billRepo,
		Shops:     shopRepo,
		Cashiers:  cashierRepo,
		Notifier:  d.Dispatcher,
		Publisher: d.Publisher,
		Renderer:  d.Renderer,
		Invoices:  d.Dispatcher,
		Metrics:   d.Metrics,
	})
	billSvc := service.NewBillService(billRepo, shopRepo, d.Dispatcher)
	productSvc := service.NewProductService(productRepo, shopRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	billingH := handler.NewBillingHandler(checkoutSvc, billSvc)
	productsH := handler.NewProductsHandler(productSvc)
	eventsH := handler.NewEventsHandler(func(ctx context.Context) (<-chan realtime.BillEvent, error) {
		return realtime.Subscribe(ctx, d.RDB)
	}, shopRepo)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(d.DB, d.RDB))
	if cfg.PrometheusEnabled {
		r.GET("/metrics", gin.WrapH(infra.MetricsHandler()))
	}
	r.Static(infra.InvoiceURLPrefix, d.Renderer.StoragePath())

	// Auth (public)
	r.POST("/auth/login", middleware.LoginRateLimiter(), authH.VendorLogin)
	r.POST("/auth/cashier/login", middleware.LoginRateLimiter(), authH.CashierLogin)
	r.POST("/admin/login", middleware.LoginRateLimiter(), authH.AdminLogin)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)

	billing := r.Group("/billing", jwtMW)
	{
		billing.POST("", middleware.RequireRole(model.RoleCashier), billingH.Checkout)
		billing.GET("/cashier", middleware.RequireRole(model.RoleCashier), billingH.CashierBills)
		billing.GET("/vendor", middleware.RequireRole(model.RoleVendor, model.RoleCashier), billingH.ScopeBills)
		billing.GET("/shop/:shopId", middleware.RequireRole(model.RoleVendor), billingH.ShopBills)
		billing.POST("/:id/invoice", middleware.RequireRole(model.RoleVendor, model.RoleCashier), billingH.RegenerateInvoice)
	}

	products := r.Group("/products", jwtMW, middleware.RequireRole(model.RoleCashier, model.RoleVendor, model.RoleAdmin))
	{
		products.GET("", productsH.List)
		products.GET("/:id", productsH.Get)
	}

	r.GET("/events/bills", jwtMW, middleware.RequireRole(model.RoleVendor, model.RoleAdmin), eventsH.Bills)

	// Swagger UI, only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}

package router

import (
	"time"

	"tilerp/internal/config"
	"tilerp/internal/handler"
	"tilerp/internal/infra"
	"tilerp/internal/middleware"
	"tilerp/internal/repository"
	"tilerp/internal/service"
	"tilerp/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Services is the wired service layer, shared by the HTTP router and the
// worker pool.
type Services struct {
	Products   service.ProductService
	Purchases  service.PurchaseService
	Quotations service.QuotationService
	Dispatch   service.DispatchService
	Payments   service.PaymentService
	Documents  service.DocumentService
	Renderer   *infra.DocumentRenderer
}

// NewServices builds repositories and services.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func NewServices(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *Services {
	// ── Infrastructure ───────────────────────────────────────────────────────
	var locker service.Locker = service.NoopLocker{}
	if rdb != nil {
		locker = infra.NewRedisLocker(rdb)
	}
	renderer := infra.NewDocumentRenderer(cfg)
	dispatcher := worker.NewDispatcher(rdb)

	// ── Repositories ─────────────────────────────────────────────────────────
	productRepo := repository.NewProductRepository(db)
	stockRepo := repository.NewStockRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	quotationRepo := repository.NewQuotationRepository(db)
	challanRepo := repository.NewChallanRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	architectRepo := repository.NewArchitectRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	ledger := service.NewStockLedger(productRepo, stockRepo)
	svcs := &Services{
		Products:   service.NewProductService(productRepo, stockRepo, ledger),
		Purchases:  service.NewPurchaseService(purchaseRepo, productRepo, stockRepo, ledger),
		Quotations: service.NewQuotationService(quotationRepo, challanRepo, stockRepo, architectRepo, ledger, locker, cfg.DispatchLockTTL),
		Dispatch:   service.NewDispatchService(challanRepo, quotationRepo, productRepo, ledger, locker, cfg.DispatchLockTTL),
		Payments:   service.NewPaymentService(paymentRepo, quotationRepo),
		Renderer:   renderer,
	}
	svcs.Documents = service.NewDocumentService(svcs.Quotations, svcs.Dispatch, svcs.Purchases, renderer, dispatcher)
	return svcs
}

// New wires all dependencies and returns a configured Gin engine.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, svcs *Services) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS)
	go limiter.RunPurge(5*time.Minute, nil)

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.Env, cfg.AllowedOrigins()))
	r.Use(middleware.ErrorHandler())
	r.Use(limiter.Middleware())

	// ── Handlers ─────────────────────────────────────────────────────────────
	productH := handler.NewProductHandler(svcs.Products)
	purchaseH := handler.NewPurchaseHandler(svcs.Purchases, svcs.Documents)
	quotationH := handler.NewQuotationHandler(svcs.Quotations, svcs.Documents)
	challanH := handler.NewChallanHandler(svcs.Dispatch, svcs.Documents)
	paymentH := handler.NewPaymentHandler(svcs.Payments)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Protected routes
	api := r.Group("/api", middleware.JWTAuth(cfg.JWTSecret))

	stockWriters := middleware.RequireRole(middleware.RoleAdmin, middleware.RoleStore)
	money := middleware.RequireRole(middleware.RoleAdmin, middleware.RoleAccounts)
	sellers := middleware.RequireRole(middleware.RoleAdmin, middleware.RoleSales)
	collectors := middleware.RequireRole(middleware.RoleAdmin, middleware.RoleSales, middleware.RoleAccounts)

	product := api.Group("/product")
	{
		product.POST("/add", stockWriters, productH.Create)
		product.PUT("/update/:id", stockWriters, productH.Update)
		product.GET("/list", productH.List)
		product.GET("/:id/stock", productH.Stock)
		product.GET("/:id/movements", productH.Movements)
	}

	purchase := api.Group("/purchase")
	{
		purchase.POST("/add", stockWriters, purchaseH.Add)
		purchase.PUT("/update", stockWriters, purchaseH.Update)
		purchase.GET("/list", purchaseH.List)
		purchase.GET("/purchase/:id", purchaseH.Get)
		purchase.GET("/export", purchaseH.Export)
	}

	quotation := api.Group("/Quotation")
	{
		quotation.POST("/saveQuotation", sellers, quotationH.Save)
		quotation.PUT("/updateQuotation/:id", sellers, quotationH.Update)
		quotation.GET("/list", quotationH.List)
		quotation.GET("/print/:id", quotationH.Print)
		quotation.POST("/settle-commission", money, quotationH.SettleCommission)
		quotation.GET("/architect/:architectId", quotationH.ByArchitect)
		quotation.GET("/architect-ledger/:architectId", quotationH.ArchitectLedger)
		quotation.GET("/:id", quotationH.Get)
		quotation.POST("/:id/email", sellers, quotationH.Email)

		quotation.POST("/generate-dc", challanH.Generate)
		quotation.GET("/delivery-challan/list", challanH.List)
		quotation.GET("/delivery-challan/print/:challanId", challanH.Print)
		quotation.GET("/delivery-challan/:challanId", challanH.Get)
		quotation.DELETE("/delivery-challan/delete/:challanId", stockWriters, challanH.Delete)
	}

	payment := api.Group("/payment")
	{
		payment.POST("/request", collectors, paymentH.Create)
		payment.GET("/pending", paymentH.Pending)
		payment.PUT("/update-status", money, paymentH.UpdateStatus)
	}

	// Swagger UI, only outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}

package router

import (
	"github.com/AriBaderkhan/seraj-store/docs"
	"github.com/AriBaderkhan/seraj-store/internal/config"
	"github.com/AriBaderkhan/seraj-store/internal/handler"
	"github.com/AriBaderkhan/seraj-store/internal/metrics"
	"github.com/AriBaderkhan/seraj-store/internal/middleware"
	"github.com/AriBaderkhan/seraj-store/internal/repository"
	"github.com/AriBaderkhan/seraj-store/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
//
// publisher receives receipts after each committed sale; nil disables the
// hand-off. m and gatherer back the /metrics endpoint and may share one
// registry.
func New(
	cfg *config.Config,
	db *gorm.DB,
	rdb *redis.Client,
	publisher service.ReceiptPublisher,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.Metrics(m))
	r.Use(middleware.ErrorHandler())

	// ── Repositories ─────────────────────────────────────────────────────────
	itemRepo := repository.NewItemRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	deviceRepo := repository.NewDeviceRepository(db)
	batchRepo := repository.NewBatchRepository(db)
	cartRepo := repository.NewCartRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	reconciler := service.NewStockReconciler(itemRepo, deviceRepo, batchRepo, saleRepo, movementRepo, m)
	itemSvc := service.NewItemService(itemRepo, purchaseRepo, deviceRepo, batchRepo, cartRepo, movementRepo, catalogRepo, reconciler)
	unitSvc := service.NewUnitService(itemRepo, deviceRepo, batchRepo, purchaseRepo, reconciler)
	cartSvc := service.NewCartService(cartRepo, itemRepo, deviceRepo)
	saleSvc := service.NewSaleService(saleRepo, cartRepo, itemRepo, deviceRepo, batchRepo, reconciler, publisher, m,
		service.StoreInfo{Name: cfg.StoreName, Address: cfg.StoreAddress})

	// ── Handlers ─────────────────────────────────────────────────────────────
	itemsH := handler.NewItemsHandler(itemSvc, unitSvc)
	unitsH := handler.NewUnitsHandler(unitSvc)
	cartH := handler.NewCartHandler(cartSvc)
	salesH := handler.NewSalesHandler(saleSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	// Protected routes; tokens come from the auth service
	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		items := v1.Group("/items")
		{
			items.POST("", itemsH.Create)
			items.GET("/:id", itemsH.Get)
			items.PATCH("/:id", itemsH.Update)
			items.DELETE("/:id", itemsH.Delete)
			items.POST("/:id/purchases", itemsH.AddPurchase)
			items.POST("/:id/reconcile", itemsH.Reconcile)
		}
		v1.GET("/categories/:id/items", itemsH.ListByCategory)

		v1.PATCH("/devices/:id", unitsH.UpdateDevice)
		v1.DELETE("/devices/:id", unitsH.DeleteDevice)
		v1.PATCH("/batch-lines/:id", unitsH.UpdateBatchLine)
		v1.DELETE("/batch-lines/:id", unitsH.DeleteBatchLine)

		cart := v1.Group("/cart")
		{
			cart.POST("", cartH.AddLine)
			cart.GET("", cartH.List)
			cart.DELETE("", cartH.Clear)
			cart.DELETE("/items/:item_id", cartH.RemoveItem)
		}

		sales := v1.Group("/sales")
		{
			sales.POST("", salesH.Create)
			sales.GET("", salesH.List)
			sales.GET("/lookup", salesH.Lookup)
			sales.GET("/:id", salesH.Get)
			sales.PATCH("/:id", salesH.Update)
			sales.DELETE("/:id", salesH.Delete)
		}
	}

	// Swagger UI, only enabled outside production
	if !cfg.IsProduction() {
		docs.SwaggerInfo.BasePath = "/"
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}

package routes

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/ibrhamsworld/erp-api/internal/config"
	domainRepo "github.com/ibrhamsworld/erp-api/internal/domain/repository"
	"github.com/ibrhamsworld/erp-api/internal/infrastructure/metrics"
	"github.com/ibrhamsworld/erp-api/internal/presentation/http/dto/response"
	"github.com/ibrhamsworld/erp-api/internal/presentation/http/handler"
	"github.com/ibrhamsworld/erp-api/internal/presentation/http/middleware"
	"github.com/rs/zerolog"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Health    *handler.HealthHandler
	Sale      *handler.SaleHandler
	Product   *handler.ProductHandler
	Pricing   *handler.PricingHandler
	Inventory *handler.InventoryHandler
	Customer  *handler.CustomerHandler
	User      *handler.UserHandler
	Dashboard *handler.DashboardHandler
	Printer   *handler.PrinterHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	Cfg             *config.Config
	Log             zerolog.Logger
	Metrics         *metrics.Metrics
	RateLimiter     *middleware.ClientRateLimiter // optional
	IdempotencyRepo domainRepo.IdempotencyRepository
}

func init() {
	// Validation errors name fields the way clients send them.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(middleware.LoggerMiddleware(deps.Log))
	router.Use(middleware.Recovery(deps.Log))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))
	if deps.Metrics != nil {
		router.Use(middleware.Metrics(deps.Metrics))
	}

	router.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "Route not found")
	})

	router.GET("/health", h.Health.Check)
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	v1 := router.Group("/api/v1")
	if deps.RateLimiter != nil {
		v1.Use(deps.RateLimiter.Middleware())
	}
	{
		registerSaleRoutes(v1, h, deps)
		registerProductRoutes(v1, h)
		registerPricingRoutes(v1, h)
		registerInventoryRoutes(v1, h)
		registerCustomerRoutes(v1, h)

		v1.GET("/branches", h.Product.ListBranches)
		v1.POST("/branches", h.Product.CreateBranch)

		v1.GET("/users", h.User.List)
		v1.POST("/users", h.User.Create)

		v1.GET("/dashboard", h.Dashboard.GetStats)

		registerPrinterRoutes(v1, h)
	}

	return router
}

func registerSaleRoutes(v1 *gin.RouterGroup, h *Handlers, deps *Deps) {
	sales := v1.Group("/sales")
	{
		sales.POST("/quote", h.Sale.Quote)
		// Sale creation honours Idempotency-Key so a retried submit records one sale
		sales.POST("", middleware.Idempotency(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
			Log:  deps.Log,
		}), h.Sale.Record)
		sales.POST("/drafts", h.Sale.RecordDraft)
		sales.GET("", h.Sale.List)
		sales.GET("/:id", h.Sale.Get)
		sales.POST("/:id/complete", h.Sale.Complete)
		sales.POST("/:id/cancel", h.Sale.Cancel)
		sales.GET("/:id/receipt", h.Sale.Receipt)
		sales.POST("/:id/receipt/print", h.Sale.PrintReceipt)
	}
}

func registerProductRoutes(v1 *gin.RouterGroup, h *Handlers) {
	products := v1.Group("/products")
	{
		products.GET("", h.Product.List)
		products.POST("", h.Product.Create)
		products.GET("/:id", h.Product.Get)
		products.PUT("/:id", h.Product.Update)
		products.DELETE("/:id", h.Product.Delete)
		products.POST("/:id/variants", h.Product.AddVariant)
		products.PUT("/:id/variants/:variant_id", h.Product.UpdateVariant)
		products.DELETE("/:id/variants/:variant_id", h.Product.DeleteVariant)
	}
}

func registerPricingRoutes(v1 *gin.RouterGroup, h *Handlers) {
	pricing := v1.Group("/pricing")
	{
		pricing.GET("", h.Pricing.Current)
		pricing.PUT("/products/:id", h.Pricing.UpdatePrice)
		pricing.GET("/history", h.Pricing.History)
	}
}

func registerInventoryRoutes(v1 *gin.RouterGroup, h *Handlers) {
	inventory := v1.Group("/inventory")
	{
		inventory.GET("", h.Inventory.List)
		inventory.GET("/low-stock", h.Inventory.LowStock)
		inventory.GET("/export", h.Inventory.Export)
		inventory.POST("/:id/adjust", h.Inventory.Adjust)
	}
}

func registerCustomerRoutes(v1 *gin.RouterGroup, h *Handlers) {
	customers := v1.Group("/customers")
	{
		customers.GET("", h.Customer.List)
		customers.POST("", h.Customer.Create)
		customers.GET("/:id", h.Customer.Get)
		customers.PUT("/:id", h.Customer.Update)
		customers.DELETE("/:id", h.Customer.Delete)
		customers.GET("/:id/sales", h.Customer.Sales)
	}
}

func registerPrinterRoutes(v1 *gin.RouterGroup, h *Handlers) {
	printerGroup := v1.Group("/printer")
	{
		printerGroup.GET("/status", h.Printer.GetStatus)
		printerGroup.POST("/test", h.Printer.TestPrint)
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/ibrhamsworld/erp-api/internal/application/service"
	"github.com/ibrhamsworld/erp-api/internal/config"
	domainRepo "github.com/ibrhamsworld/erp-api/internal/domain/repository"
	"github.com/ibrhamsworld/erp-api/internal/infrastructure/cache"
	"github.com/ibrhamsworld/erp-api/internal/infrastructure/database"
	"github.com/ibrhamsworld/erp-api/internal/infrastructure/events"
	"github.com/ibrhamsworld/erp-api/internal/infrastructure/metrics"
	"github.com/ibrhamsworld/erp-api/internal/infrastructure/repository"
	"github.com/ibrhamsworld/erp-api/internal/presentation/http/handler"
	"github.com/ibrhamsworld/erp-api/internal/presentation/http/middleware"
	"github.com/ibrhamsworld/erp-api/internal/presentation/http/routes"
	"github.com/ibrhamsworld/erp-api/pkg/logger"
	"github.com/ibrhamsworld/erp-api/pkg/printer"
	"github.com/rs/zerolog"
)

const idempotencySweepInterval = time.Hour

func main() {
	// Load configuration
	cfg := config.Load()
	log := logger.New(cfg.App.Env, cfg.App.Debug)

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	loc, err := time.LoadLocation(cfg.Database.Timezone)
	if err != nil {
		log.Warn().Err(err).Str("timezone", cfg.Database.Timezone).Msg("unknown timezone, using UTC")
		loc = time.UTC
	}

	db, err := database.New(&cfg.Database, log, cfg.App.Debug)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("failed to connect to database")
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	if err := database.SeedDefaultData(db, log); err != nil {
		log.Warn().Err(err).Msg("failed to seed default data")
	}

	priceCache := cache.New(cfg.Redis, log)
	publisher := events.New(cfg.Kafka, log)
	m := metrics.New()

	thermalPrinter, err := printer.New(printer.Config{
		Type:    cfg.Printer.Type,
		USBPath: cfg.Printer.USBPath,
		Address: cfg.Printer.Address,
	})
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize printer, printing disabled")
		thermalPrinter, _ = printer.New(printer.Config{Type: printer.TypeNone})
	}

	// Repositories
	productRepo := repository.NewProductRepository(db)
	variantRepo := repository.NewProductVariantRepository(db)
	branchRepo := repository.NewBranchRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	userRepo := repository.NewUserRepository(db)
	historyRepo := repository.NewPriceChangeRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)
	tx := repository.NewTransactor(db)

	// Services
	prices := service.NewPriceResolver(productRepo, priceCache, m, log)
	threshold := cfg.Inventory.LowStockThresholdKg
	saleService := service.NewSaleService(saleRepo, productRepo, customerRepo, branchRepo, userRepo, tx, prices, publisher, m, cfg.Company.ReceiptPrefix, log)
	catalogService := service.NewCatalogService(productRepo, variantRepo, branchRepo, prices, threshold, log)
	pricingService := service.NewPricingService(productRepo, variantRepo, historyRepo, tx, prices, publisher, m, log)
	inventoryService := service.NewInventoryService(productRepo, threshold, log)
	customerService := service.NewCustomerService(customerRepo, saleRepo)
	userService := service.NewUserService(userRepo, branchRepo)
	dashboardService := service.NewDashboardService(saleRepo, productRepo, customerRepo, threshold, loc)
	printerService := service.NewPrinterService(thermalPrinter, saleRepo, cfg.Company, cfg.Printer.CharWidth, loc, log)

	handlers := &routes.Handlers{
		Health: handler.NewHealthHandler(cfg.App.Name, func(ctx context.Context) error {
			return database.Ping(ctx, db)
		}),
		Sale:      handler.NewSaleHandler(saleService, printerService, loc),
		Product:   handler.NewProductHandler(catalogService),
		Pricing:   handler.NewPricingHandler(pricingService),
		Inventory: handler.NewInventoryHandler(inventoryService),
		Customer:  handler.NewCustomerHandler(customerService),
		User:      handler.NewUserHandler(userService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Printer:   handler.NewPrinterHandler(printerService),
	}

	rateLimiter := middleware.NewClientRateLimiter(middleware.RateLimiterConfigFrom(&cfg.RateLimit))

	router := routes.Setup(handlers, &routes.Deps{
		Cfg:             cfg,
		Log:             log,
		Metrics:         m,
		RateLimiter:     rateLimiter,
		IdempotencyRepo: idempotencyRepo,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go sweepIdempotencyKeys(sweepCtx, idempotencyRepo, log)

	go func() {
		log.Info().
			Str("port", cfg.App.Port).
			Str("env", cfg.App.Env).
			Str("database", cfg.Database.Driver).
			Str("printer", thermalPrinter.Type()).
			Msgf("starting %s", cfg.App.Name)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	stopSweep()
	rateLimiter.Stop()
	if err := publisher.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close event publisher")
	}
	if err := priceCache.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close price cache")
	}
	if err := thermalPrinter.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close printer")
	}
	if err := database.Close(db); err != nil {
		log.Error().Err(err).Msg("failed to close database")
	}

	log.Info().Msg("server exited")
}

// sweepIdempotencyKeys removes expired keys until ctx is cancelled
func sweepIdempotencyKeys(ctx context.Context, repo domainRepo.IdempotencyRepository, log zerolog.Logger) {
	ticker := time.NewTicker(idempotencySweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.DeleteExpired(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("failed to delete expired idempotency keys")
				continue
			}
			if n > 0 {
				log.Debug().Int64("deleted", n).Msg("expired idempotency keys removed")
			}
		}
	}
}

package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/ibrhamsworld/erp-api/internal/config"
	"github.com/ibrhamsworld/erp-api/internal/domain/entity"
	"github.com/ibrhamsworld/erp-api/internal/infrastructure/database"
	"github.com/ibrhamsworld/erp-api/internal/infrastructure/metrics"
	"github.com/ibrhamsworld/erp-api/internal/infrastructure/repository"
	"github.com/ibrhamsworld/erp-api/pkg/apperror"
	"github.com/ibrhamsworld/erp-api/pkg/pricing"
	"github.com/ibrhamsworld/erp-api/pkg/printer"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memoryPriceCache struct {
	mu      sync.Mutex
	entries map[uuid.UUID]pricing.PriceEntry
	deleted []uuid.UUID
	failGet bool
}

func newMemoryPriceCache() *memoryPriceCache {
	return &memoryPriceCache{entries: make(map[uuid.UUID]pricing.PriceEntry)}
}

func (c *memoryPriceCache) Get(_ context.Context, id uuid.UUID) (*pricing.PriceEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet {
		return nil, errors.New("cache unavailable")
	}
	entry, ok := c.entries[id]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

func (c *memoryPriceCache) Set(_ context.Context, id uuid.UUID, entry pricing.PriceEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = entry
	return nil
}

func (c *memoryPriceCache) Delete(_ context.Context, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	c.deleted = append(c.deleted, id)
	return nil
}

func (c *memoryPriceCache) Close() error { return nil }

type recordingPublisher struct {
	mu        sync.Mutex
	recorded  []*entity.Sale
	cancelled []*entity.Sale
	prices    []*entity.PriceChange
	err       error
}

func (p *recordingPublisher) PublishSaleRecorded(_ context.Context, sale *entity.Sale) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.recorded = append(p.recorded, sale)
	return p.err
}

func (p *recordingPublisher) PublishSaleCancelled(_ context.Context, sale *entity.Sale) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelled = append(p.cancelled, sale)
	return p.err
}

func (p *recordingPublisher) PublishPriceChanged(_ context.Context, change *entity.PriceChange) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prices = append(p.prices, change)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type recordingPrinter struct {
	jobs [][]byte
	err  error
}

func (p *recordingPrinter) Print(data []byte) error {
	p.jobs = append(p.jobs, data)
	return p.err
}
func (p *recordingPrinter) Close() error      { return nil }
func (p *recordingPrinter) IsConnected() bool { return p.err == nil }
func (p *recordingPrinter) Type() string      { return printer.TypeNetwork }

// testEnv wires every service over a seeded in-memory SQLite catalog.
type testEnv struct {
	db        *gorm.DB
	cache     *memoryPriceCache
	publisher *recordingPublisher
	printer   *recordingPrinter
	metrics   *metrics.Metrics

	sales     *SaleService
	catalog   *CatalogService
	pricing   *PricingService
	customers *CustomerService
	users     *UserService
	inventory *InventoryService
	dashboard *DashboardService
	receipts  *PrinterService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.NewSQLiteDB("file:"+t.Name()+"?mode=memory&cache=shared", nil)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	require.NoError(t, database.SeedDefaultData(db, zerolog.Nop()))
	t.Cleanup(func() { _ = database.Close(db) })

	log := zerolog.Nop()
	productRepo := repository.NewProductRepository(db)
	variantRepo := repository.NewProductVariantRepository(db)
	branchRepo := repository.NewBranchRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	userRepo := repository.NewUserRepository(db)
	historyRepo := repository.NewPriceChangeRepository(db)
	tx := repository.NewTransactor(db)

	env := &testEnv{
		db:        db,
		cache:     newMemoryPriceCache(),
		publisher: &recordingPublisher{},
		printer:   &recordingPrinter{},
		metrics:   metrics.New(),
	}
	threshold := decimal.NewFromInt(100)
	prices := NewPriceResolver(productRepo, env.cache, env.metrics, log)

	env.sales = NewSaleService(saleRepo, productRepo, customerRepo, branchRepo, userRepo, tx, prices, env.publisher, env.metrics, "IBR", log)
	env.catalog = NewCatalogService(productRepo, variantRepo, branchRepo, prices, threshold, log)
	env.pricing = NewPricingService(productRepo, variantRepo, historyRepo, tx, prices, env.publisher, env.metrics, log)
	env.customers = NewCustomerService(customerRepo, saleRepo)
	env.users = NewUserService(userRepo, branchRepo)
	env.inventory = NewInventoryService(productRepo, threshold, log)
	env.dashboard = NewDashboardService(saleRepo, productRepo, customerRepo, threshold, nil)
	env.receipts = NewPrinterService(env.printer, saleRepo, config.CompanyConfig{
		Name:    "IBRHAMS WORLD",
		Address: "Lagos, Nigeria",
		Phone:   "+234 800 000 0000",
	}, printer.Width58mm, nil, log)
	return env
}

// product returns a seeded product by code.
func (e *testEnv) product(t *testing.T, code string) *entity.Product {
	t.Helper()
	var p entity.Product
	require.NoError(t, e.db.Preload("Variants").Where("code = ?", code).First(&p).Error)
	return &p
}

func (e *testEnv) variant(t *testing.T, p *entity.Product, name string) *entity.ProductVariant {
	t.Helper()
	for i := range p.Variants {
		if p.Variants[i].Name == name {
			return &p.Variants[i]
		}
	}
	t.Fatalf("variant %q not found on %s", name, p.Name)
	return nil
}

func (e *testEnv) stockOf(t *testing.T, id uuid.UUID) decimal.Decimal {
	t.Helper()
	var p entity.Product
	require.NoError(t, e.db.First(&p, "id = ?", id).Error)
	return p.StockKg
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func requireAppError(t *testing.T, err error, code int) *apperror.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	require.Equal(t, code, appErr.Code, appErr.Message)
	return appErr
}

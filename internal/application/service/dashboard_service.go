package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ibrhamsworld/erp-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

const (
	recentSalesLimit = 5
	topProductsLimit = 5
	salesTrendDays   = 7
)

// DashboardService provides dashboard statistics
type DashboardService struct {
	saleRepo       repository.SaleRepository
	productRepo    repository.ProductRepository
	customerRepo   repository.CustomerRepository
	defaultAlertKg decimal.Decimal
	location       *time.Location
	now            func() time.Time
}

// NewDashboardService creates a new dashboard service. Days and months are
// counted in loc, the shop's local time.
func NewDashboardService(
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	defaultAlertKg decimal.Decimal,
	loc *time.Location,
) *DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardService{
		saleRepo:       saleRepo,
		productRepo:    productRepo,
		customerRepo:   customerRepo,
		defaultAlertKg: defaultAlertKg,
		location:       loc,
		now:            time.Now,
	}
}

// DashboardStats represents dashboard statistics
type DashboardStats struct {
	TodaySalesTotal   decimal.Decimal               `json:"today_sales_total"`
	TodaySalesCount   int64                         `json:"today_sales_count"`
	InventoryValue    decimal.Decimal               `json:"inventory_value"`
	LowStockCount     int64                         `json:"low_stock_count"`
	NewCustomersMonth int64                         `json:"new_customers_this_month"`
	RecentSales       []RecentSale                  `json:"recent_sales"`
	TopProducts       []repository.TopProductResult `json:"top_products"`
	SalesTrend        []DailySales                  `json:"sales_trend"`
}

// DailySales is one day of the sales trend chart
type DailySales struct {
	Date  string          `json:"date"` // YYYY-MM-DD
	Count int64           `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// RecentSale is a row of the recent sales table
type RecentSale struct {
	ID        uuid.UUID       `json:"id"`
	ReceiptNo string          `json:"receipt_no"`
	Customer  string          `json:"customer"`
	Amount    decimal.Decimal `json:"amount"`
	Date      time.Time       `json:"date"`
}

// Stats gathers the dashboard figures
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	now := s.now().In(s.location)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.location)

	today, err := s.saleRepo.Summary(ctx, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	products, err := s.productRepo.ListAll(ctx, &repository.ProductFilterParams{})
	if err != nil {
		return nil, err
	}
	inventoryValue := decimal.Zero
	for i := range products {
		inventoryValue = inventoryValue.Add(products[i].StockValue())
	}

	lowStock, err := s.productRepo.CountLowStock(ctx, s.defaultAlertKg)
	if err != nil {
		return nil, err
	}

	newCustomers, err := s.customerRepo.CountCreatedSince(ctx, monthStart)
	if err != nil {
		return nil, err
	}

	recent, err := s.saleRepo.Recent(ctx, recentSalesLimit)
	if err != nil {
		return nil, err
	}
	recentSales := make([]RecentSale, 0, len(recent))
	for _, sale := range recent {
		row := RecentSale{
			ID:        sale.ID,
			ReceiptNo: sale.ReceiptNo,
			Amount:    sale.TotalAmount,
			Date:      sale.Date,
		}
		if sale.Customer != nil {
			row.Customer = sale.Customer.Name
		}
		recentSales = append(recentSales, row)
	}

	top, err := s.saleRepo.TopProducts(ctx, monthStart, topProductsLimit)
	if err != nil {
		return nil, err
	}
	if top == nil {
		top = []repository.TopProductResult{}
	}

	trend, err := s.salesTrend(ctx, dayStart)
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		TodaySalesTotal:   today.Total,
		TodaySalesCount:   today.Count,
		InventoryValue:    inventoryValue,
		LowStockCount:     lowStock,
		NewCustomersMonth: newCustomers,
		RecentSales:       recentSales,
		TopProducts:       top,
		SalesTrend:        trend,
	}, nil
}

// salesTrend totals completed sales for each of the last salesTrendDays
// days, oldest first, ending with the day starting at today.
func (s *DashboardService) salesTrend(ctx context.Context, today time.Time) ([]DailySales, error) {
	trend := make([]DailySales, 0, salesTrendDays)
	for i := salesTrendDays - 1; i >= 0; i-- {
		start := today.AddDate(0, 0, -i)
		summary, err := s.saleRepo.Summary(ctx, start, start.AddDate(0, 0, 1))
		if err != nil {
			return nil, err
		}
		trend = append(trend, DailySales{
			Date:  start.Format("2006-01-02"),
			Count: summary.Count,
			Total: summary.Total,
		})
	}
	return trend, nil
}

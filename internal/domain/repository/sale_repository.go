package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ibrhamsworld/erp-api/internal/domain/entity"
	"github.com/ibrhamsworld/erp-api/internal/domain/enum"
	"github.com/ibrhamsworld/erp-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// SaleRepository defines the interface for sale data operations
type SaleRepository interface {
	// Create inserts the sale together with its items
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error)
	// GetWithDetails loads items, customer, branch and sales rep
	GetWithDetails(ctx context.Context, id uuid.UUID) (*entity.Sale, error)
	GetByReceiptNo(ctx context.Context, receiptNo string) (*entity.Sale, error)
	// ReplaceItems swaps the sale's items and total, used when a draft is repriced
	ReplaceItems(ctx context.Context, sale *entity.Sale) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status enum.SaleStatus, at time.Time) error
	List(ctx context.Context, params *SaleFilterParams) ([]entity.Sale, int64, error)
	// CountReceiptsForYear counts sales whose receipt number carries prefix and year
	CountReceiptsForYear(ctx context.Context, prefix string, year int) (int64, error)
	// Summary totals completed sales dated in [from, to)
	Summary(ctx context.Context, from, to time.Time) (*SalesSummary, error)
	// Recent returns the latest completed sales with their customers
	Recent(ctx context.Context, limit int) ([]entity.Sale, error)
	// TopProducts ranks products by revenue over completed sales since from
	TopProducts(ctx context.Context, from time.Time, limit int) ([]TopProductResult, error)
}

// SaleFilterParams contains filtering parameters for sale queries
type SaleFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string // receipt number or customer name
	Status     *enum.SaleStatus
	CustomerID *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
	SortOrder  string
}

// SalesSummary is an aggregate over completed sales
type SalesSummary struct {
	Count int64
	Total decimal.Decimal
}

// TopProductResult represents a product's sales performance
type TopProductResult struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	QuantityKg  decimal.Decimal `json:"quantity_kg"`
	Revenue     decimal.Decimal `json:"revenue"`
}

package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ibrhamsworld/erp-api/internal/domain/entity"
	"github.com/ibrhamsworld/erp-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// ProductRepository defines the interface for product data operations
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	// GetByID loads the product with its branch and variants
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	// GetByIDs loads products and their variants in one query per table (prevents N+1)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error)
	GetByCode(ctx context.Context, code string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *ProductFilterParams) ([]entity.Product, int64, error)
	// ListAll returns every product matching params without paging
	ListAll(ctx context.Context, params *ProductFilterParams) ([]entity.Product, error)
	// GetLowStock returns products at or below their alert level; products
	// without one use defaultAlertKg.
	GetLowStock(ctx context.Context, defaultAlertKg decimal.Decimal) ([]entity.Product, error)
	CountLowStock(ctx context.Context, defaultAlertKg decimal.Decimal) (int64, error)
	UpdatePrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) error
	// AdjustStock adds deltaKg (which may be negative) unless the result would
	// drop below zero. Returns false when the stock was insufficient.
	AdjustStock(ctx context.Context, id uuid.UUID, deltaKg decimal.Decimal) (bool, error)
	// AtomicDecrementBatch decrements stock for several products at once.
	// If any product has insufficient stock nothing is changed and the
	// offending IDs are returned.
	AtomicDecrementBatch(ctx context.Context, decrements map[uuid.UUID]decimal.Decimal) (failedIDs []uuid.UUID, err error)
	// AtomicIncrementBatch restores stock, e.g. when a sale is cancelled
	AtomicIncrementBatch(ctx context.Context, increments map[uuid.UUID]decimal.Decimal) error
}

// ProductFilterParams contains filtering parameters for product queries
type ProductFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	BranchID   *uuid.UUID
	// LowStock keeps products at or below their alert level, using
	// DefaultAlertKg for products without one
	LowStock       bool
	DefaultAlertKg decimal.Decimal
	SortBy         string
	SortOrder      string
}

// ProductVariantRepository defines the interface for variant data operations
type ProductVariantRepository interface {
	Create(ctx context.Context, variant *entity.ProductVariant) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.ProductVariant, error)
	Update(ctx context.Context, variant *entity.ProductVariant) error
	Delete(ctx context.Context, id uuid.UUID) error
	UpdatePrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) error
}

// BranchRepository defines the interface for branch data operations
type BranchRepository interface {
	Create(ctx context.Context, branch *entity.Branch) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Branch, error)
	GetByName(ctx context.Context, name string) (*entity.Branch, error)
	List(ctx context.Context) ([]entity.Branch, error)
}

// PriceChangeRepository stores the price audit trail
type PriceChangeRepository interface {
	Create(ctx context.Context, change *entity.PriceChange) error
	// List returns changes newest first, optionally for one product
	List(ctx context.Context, productID *uuid.UUID, params *pagination.PaginationParams) ([]entity.PriceChange, int64, error)
}

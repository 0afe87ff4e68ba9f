package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/ibrhamsworld/erp-api/internal/domain/entity"
	domainRepo "github.com/ibrhamsworld/erp-api/internal/domain/repository"
	"github.com/ibrhamsworld/erp-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var productSortColumns = map[string]string{
	"name":         "name",
	"code":         "code",
	"price_per_kg": "price_per_kg",
	"stock_kg":     "stock_kg",
	"created_at":   "created_at",
}

const lowStockCondition = "stock_kg <= COALESCE(low_stock_alert_kg, ?)"

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) domainRepo.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	return conn(ctx, r.db).Create(product).Error
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	err := conn(ctx, r.db).
		Preload("Branch").
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

// GetByIDs retrieves multiple products by their IDs in a single query
func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	if len(ids) == 0 {
		return []entity.Product{}, nil
	}
	var products []entity.Product
	err := conn(ctx, r.db).
		Preload("Variants").
		Where("id IN ?", ids).
		Find(&products).Error
	return products, err
}

func (r *productRepository) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	var product entity.Product
	err := conn(ctx, r.db).First(&product, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

// productDetailColumns are the columns Update writes. Price and stock only
// change through UpdatePrice and the stock methods.
var productDetailColumns = []string{"branch_id", "name", "slug", "code", "description", "low_stock_alert_kg"}

// Update writes the product's descriptive columns; variants are managed separately.
func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	return conn(ctx, r.db).Model(product).
		Select(productDetailColumns).
		Updates(product).Error
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).Delete(&entity.Product{}, "id = ?", id).Error
}

func (r *productRepository) filtered(ctx context.Context, params *domainRepo.ProductFilterParams) *gorm.DB {
	query := conn(ctx, r.db).Model(&entity.Product{})

	if params.Search != "" {
		pattern := likePattern(params.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(code) LIKE ?", pattern, pattern)
	}
	if params.BranchID != nil {
		query = query.Where("branch_id = ?", *params.BranchID)
	}
	if params.LowStock {
		query = query.Where(lowStockCondition, params.DefaultAlertKg)
	}
	return query
}

func (r *productRepository) order(params *domainRepo.ProductFilterParams) string {
	column, ok := productSortColumns[params.SortBy]
	if !ok {
		return "name ASC"
	}
	return column + " " + sortDirection(params.SortOrder)
}

func (r *productRepository) List(ctx context.Context, params *domainRepo.ProductFilterParams) ([]entity.Product, int64, error) {
	var products []entity.Product
	var total int64

	query := r.filtered(ctx, params)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Branch").Preload("Variants").
		Order(r.order(params)).
		Find(&products).Error

	return products, total, err
}

func (r *productRepository) ListAll(ctx context.Context, params *domainRepo.ProductFilterParams) ([]entity.Product, error) {
	var products []entity.Product
	err := r.filtered(ctx, params).
		Preload("Branch").
		Order(r.order(params)).
		Find(&products).Error
	return products, err
}

func (r *productRepository) GetLowStock(ctx context.Context, defaultAlertKg decimal.Decimal) ([]entity.Product, error) {
	var products []entity.Product
	err := conn(ctx, r.db).
		Where(lowStockCondition, defaultAlertKg).
		Preload("Branch").
		Order("stock_kg ASC").
		Find(&products).Error
	return products, err
}

func (r *productRepository) CountLowStock(ctx context.Context, defaultAlertKg decimal.Decimal) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&entity.Product{}).
		Where(lowStockCondition, defaultAlertKg).
		Count(&count).Error
	return count, err
}

func (r *productRepository) UpdatePrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) error {
	return conn(ctx, r.db).Model(&entity.Product{}).
		Where("id = ?", id).
		Update("price_per_kg", price).Error
}

// AdjustStock runs UPDATE products SET stock_kg = stock_kg + delta WHERE id = ? AND stock_kg + delta >= 0
func (r *productRepository) AdjustStock(ctx context.Context, id uuid.UUID, deltaKg decimal.Decimal) (bool, error) {
	result := conn(ctx, r.db).Model(&entity.Product{}).
		Where("id = ? AND stock_kg + ? >= 0", id, deltaKg).
		Update("stock_kg", gorm.Expr("stock_kg + ?", deltaKg))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// AtomicDecrementBatch decrements stock for multiple products in a single transaction.
// If any product has insufficient stock, the entire transaction is rolled back.
func (r *productRepository) AtomicDecrementBatch(ctx context.Context, decrements map[uuid.UUID]decimal.Decimal) ([]uuid.UUID, error) {
	if len(decrements) == 0 {
		return nil, nil
	}

	var failedIDs []uuid.UUID

	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		for id, amount := range decrements {
			result := tx.Model(&entity.Product{}).
				Where("id = ? AND stock_kg >= ?", id, amount).
				Update("stock_kg", gorm.Expr("stock_kg - ?", amount))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				failedIDs = append(failedIDs, id)
			}
		}

		if len(failedIDs) > 0 {
			return errInsufficientStock
		}
		return nil
	})

	if errors.Is(err, errInsufficientStock) {
		return failedIDs, nil
	}
	return nil, err
}

// AtomicIncrementBatch restores stock for multiple products (for cancellations).
func (r *productRepository) AtomicIncrementBatch(ctx context.Context, increments map[uuid.UUID]decimal.Decimal) error {
	if len(increments) == 0 {
		return nil
	}

	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		for id, amount := range increments {
			if err := tx.Model(&entity.Product{}).
				Where("id = ?", id).
				Update("stock_kg", gorm.Expr("stock_kg + ?", amount)).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

type productVariantRepository struct {
	db *gorm.DB
}

// NewProductVariantRepository creates a new variant repository
func NewProductVariantRepository(db *gorm.DB) domainRepo.ProductVariantRepository {
	return &productVariantRepository{db: db}
}

func (r *productVariantRepository) Create(ctx context.Context, variant *entity.ProductVariant) error {
	return conn(ctx, r.db).Create(variant).Error
}

func (r *productVariantRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.ProductVariant, error) {
	var variant entity.ProductVariant
	err := conn(ctx, r.db).First(&variant, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &variant, err
}

// Update renames the variant; its price changes through UpdatePrice.
func (r *productVariantRepository) Update(ctx context.Context, variant *entity.ProductVariant) error {
	return conn(ctx, r.db).Model(variant).
		Select("name").
		Updates(variant).Error
}

func (r *productVariantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).Delete(&entity.ProductVariant{}, "id = ?", id).Error
}

func (r *productVariantRepository) UpdatePrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) error {
	return conn(ctx, r.db).Model(&entity.ProductVariant{}).
		Where("id = ?", id).
		Update("price_per_kg", price).Error
}

type branchRepository struct {
	db *gorm.DB
}

// NewBranchRepository creates a new branch repository
func NewBranchRepository(db *gorm.DB) domainRepo.BranchRepository {
	return &branchRepository{db: db}
}

func (r *branchRepository) Create(ctx context.Context, branch *entity.Branch) error {
	return conn(ctx, r.db).Create(branch).Error
}

func (r *branchRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Branch, error) {
	var branch entity.Branch
	err := conn(ctx, r.db).First(&branch, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &branch, err
}

func (r *branchRepository) GetByName(ctx context.Context, name string) (*entity.Branch, error) {
	var branch entity.Branch
	err := conn(ctx, r.db).First(&branch, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &branch, err
}

func (r *branchRepository) List(ctx context.Context) ([]entity.Branch, error) {
	var branches []entity.Branch
	err := conn(ctx, r.db).Order("name ASC").Find(&branches).Error
	return branches, err
}

type priceChangeRepository struct {
	db *gorm.DB
}

// NewPriceChangeRepository creates a new price history repository
func NewPriceChangeRepository(db *gorm.DB) domainRepo.PriceChangeRepository {
	return &priceChangeRepository{db: db}
}

func (r *priceChangeRepository) Create(ctx context.Context, change *entity.PriceChange) error {
	return conn(ctx, r.db).Create(change).Error
}

func (r *priceChangeRepository) List(ctx context.Context, productID *uuid.UUID, params *pagination.PaginationParams) ([]entity.PriceChange, int64, error) {
	var changes []entity.PriceChange
	var total int64

	query := conn(ctx, r.db).Model(&entity.PriceChange{})
	if productID != nil {
		query = query.Where("product_id = ?", *productID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("changed_at DESC").
		Find(&changes).Error
	return changes, total, err
}

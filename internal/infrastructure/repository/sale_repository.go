package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ibrhamsworld/erp-api/internal/domain/entity"
	"github.com/ibrhamsworld/erp-api/internal/domain/enum"
	domainRepo "github.com/ibrhamsworld/erp-api/internal/domain/repository"
	"github.com/ibrhamsworld/erp-api/pkg/pricing"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// quantityPlaces matches the decimal(20,3) kg columns
const quantityPlaces = 3

type saleRepository struct {
	db *gorm.DB
}

// NewSaleRepository creates a new sale repository
func NewSaleRepository(db *gorm.DB) domainRepo.SaleRepository {
	return &saleRepository{db: db}
}

func (r *saleRepository) Create(ctx context.Context, sale *entity.Sale) error {
	return conn(ctx, r.db).Omit("Customer", "Branch", "SalesRep").Create(sale).Error
}

func (r *saleRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	var sale entity.Sale
	err := conn(ctx, r.db).Preload("Items").First(&sale, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &sale, err
}

func (r *saleRepository) GetWithDetails(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	var sale entity.Sale
	err := conn(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Customer").
		Preload("Branch").
		Preload("SalesRep").
		First(&sale, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &sale, err
}

func (r *saleRepository) GetByReceiptNo(ctx context.Context, receiptNo string) (*entity.Sale, error) {
	var sale entity.Sale
	err := conn(ctx, r.db).Preload("Items").First(&sale, "receipt_no = ?", receiptNo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &sale, err
}

func (r *saleRepository) ReplaceItems(ctx context.Context, sale *entity.Sale) error {
	db := conn(ctx, r.db)

	if err := db.Where("sale_id = ?", sale.ID).Delete(&entity.SaleItem{}).Error; err != nil {
		return err
	}
	for i := range sale.Items {
		sale.Items[i].ID = uuid.Nil
		sale.Items[i].SaleID = sale.ID
	}
	if len(sale.Items) > 0 {
		if err := db.Create(&sale.Items).Error; err != nil {
			return err
		}
	}
	return db.Model(&entity.Sale{}).
		Where("id = ?", sale.ID).
		Update("total_amount", sale.TotalAmount).Error
}

func (r *saleRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.SaleStatus, at time.Time) error {
	updates := map[string]interface{}{"status": status}
	switch status {
	case enum.SaleStatusCompleted:
		updates["completed_at"] = at
		updates["date"] = at
	case enum.SaleStatusCancelled:
		updates["cancelled_at"] = at
	}
	return conn(ctx, r.db).Model(&entity.Sale{}).Where("id = ?", id).Updates(updates).Error
}

func (r *saleRepository) List(ctx context.Context, params *domainRepo.SaleFilterParams) ([]entity.Sale, int64, error) {
	var sales []entity.Sale
	var total int64

	query := conn(ctx, r.db).Model(&entity.Sale{})

	if params.Search != "" {
		pattern := likePattern(params.Search)
		query = query.Where(
			"LOWER(receipt_no) LIKE ? OR customer_id IN (SELECT id FROM customers WHERE LOWER(name) LIKE ? OR phone LIKE ?)",
			pattern, pattern, pattern,
		)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.CustomerID != nil {
		query = query.Where("customer_id = ?", *params.CustomerID)
	}
	if params.StartDate != nil {
		query = query.Where("date >= ?", params.StartDate.UTC())
	}
	if params.EndDate != nil {
		query = query.Where("date < ?", params.EndDate.UTC())
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Customer").Preload("Items").
		Order("date " + sortDirection(params.SortOrder)).
		Find(&sales).Error

	return sales, total, err
}

func (r *saleRepository) CountReceiptsForYear(ctx context.Context, prefix string, year int) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&entity.Sale{}).
		Where("receipt_no LIKE ?", fmt.Sprintf("%s-%d-%%", prefix, year)).
		Count(&count).Error
	return count, err
}

func (r *saleRepository) Summary(ctx context.Context, from, to time.Time) (*domainRepo.SalesSummary, error) {
	var row struct {
		Count int64
		Total decimal.Decimal
	}
	err := conn(ctx, r.db).Model(&entity.Sale{}).
		Select("COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS total").
		Where("status = ? AND date >= ? AND date < ?", enum.SaleStatusCompleted, from.UTC(), to.UTC()).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	// SQLite sums decimals as floats.
	return &domainRepo.SalesSummary{Count: row.Count, Total: row.Total.Round(pricing.MoneyPlaces)}, nil
}

func (r *saleRepository) Recent(ctx context.Context, limit int) ([]entity.Sale, error) {
	var sales []entity.Sale
	err := conn(ctx, r.db).
		Where("status = ?", enum.SaleStatusCompleted).
		Preload("Customer").
		Order("date DESC").
		Limit(limit).
		Find(&sales).Error
	return sales, err
}

func (r *saleRepository) TopProducts(ctx context.Context, from time.Time, limit int) ([]domainRepo.TopProductResult, error) {
	var results []domainRepo.TopProductResult
	err := conn(ctx, r.db).Raw(`
		SELECT
			si.product_id AS product_id,
			si.product_name AS product_name,
			COALESCE(SUM(si.quantity_kg), 0) AS quantity_kg,
			COALESCE(SUM(si.total_price), 0) AS revenue
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		WHERE s.status = ? AND s.date >= ?
		GROUP BY si.product_id, si.product_name
		ORDER BY revenue DESC
		LIMIT ?
	`, enum.SaleStatusCompleted, from.UTC(), limit).Scan(&results).Error
	if err != nil {
		return nil, err
	}
	for i := range results {
		results[i].QuantityKg = results[i].QuantityKg.Round(quantityPlaces)
		results[i].Revenue = results[i].Revenue.Round(pricing.MoneyPlaces)
	}
	return results, nil
}

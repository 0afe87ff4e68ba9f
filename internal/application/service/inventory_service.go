package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/ibrhamsworld/erp-api/internal/domain/entity"
	"github.com/ibrhamsworld/erp-api/internal/domain/repository"
	"github.com/ibrhamsworld/erp-api/pkg/apperror"
	"github.com/ibrhamsworld/erp-api/pkg/pagination"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const inventorySheet = "Inventory"

// InventoryService reports and adjusts stock levels
type InventoryService struct {
	productRepo    repository.ProductRepository
	defaultAlertKg decimal.Decimal
	log            zerolog.Logger
}

// NewInventoryService creates a new inventory service. defaultAlertKg
// applies to products without their own low stock level.
func NewInventoryService(productRepo repository.ProductRepository, defaultAlertKg decimal.Decimal, log zerolog.Logger) *InventoryService {
	return &InventoryService{
		productRepo:    productRepo,
		defaultAlertKg: defaultAlertKg,
		log:            log,
	}
}

// StockLevel is a product's stock position
type StockLevel struct {
	ProductID    uuid.UUID       `json:"product_id"`
	Name         string          `json:"name"`
	Code         string          `json:"code"`
	Branch       string          `json:"branch"`
	PricePerKg   decimal.Decimal `json:"price_per_kg"`
	StockKg      decimal.Decimal `json:"stock_kg"`
	AlertLevelKg decimal.Decimal `json:"alert_level_kg"`
	StockValue   decimal.Decimal `json:"stock_value"`
	LowStock     bool            `json:"low_stock"`
}

func (l StockLevel) status() string {
	if l.LowStock {
		return "Low stock"
	}
	return "In stock"
}

func (s *InventoryService) stockLevel(p *entity.Product) StockLevel {
	level := StockLevel{
		ProductID:    p.ID,
		Name:         p.Name,
		Code:         p.Code,
		PricePerKg:   p.PricePerKg,
		StockKg:      p.StockKg,
		AlertLevelKg: p.AlertLevel(s.defaultAlertKg),
		StockValue:   p.StockValue(),
		LowStock:     p.IsLowStock(s.defaultAlertKg),
	}
	if p.Branch != nil {
		level.Branch = p.Branch.Name
	}
	return level
}

// StockLevels lists products with their stock position
func (s *InventoryService) StockLevels(ctx context.Context, params *repository.ProductFilterParams) (*pagination.PaginatedResult[StockLevel], error) {
	params.DefaultAlertKg = s.defaultAlertKg
	products, total, err := s.productRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	levels := make([]StockLevel, 0, len(products))
	for i := range products {
		levels = append(levels, s.stockLevel(&products[i]))
	}
	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(levels, pag), nil
}

// LowStock lists every product at or below its alert level, lowest stock first
func (s *InventoryService) LowStock(ctx context.Context) ([]StockLevel, error) {
	products, err := s.productRepo.GetLowStock(ctx, s.defaultAlertKg)
	if err != nil {
		return nil, err
	}

	levels := make([]StockLevel, 0, len(products))
	for i := range products {
		levels = append(levels, s.stockLevel(&products[i]))
	}
	return levels, nil
}

// AdjustStock adds deltaKg (negative to remove) to a product's stock
func (s *InventoryService) AdjustStock(ctx context.Context, productID uuid.UUID, deltaKg decimal.Decimal, reason string) (*StockLevel, error) {
	if deltaKg.IsZero() {
		return nil, apperror.NewFieldError("delta_kg", "Adjustment must not be zero")
	}
	if strings.TrimSpace(reason) == "" {
		return nil, apperror.NewFieldError("reason", "Reason is required")
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}

	ok, err := s.productRepo.AdjustStock(ctx, productID, deltaKg)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.NewBadRequestError(fmt.Sprintf("Stock for %s cannot go below zero", product.Name))
	}

	s.log.Info().
		Str("product_id", productID.String()).
		Str("delta_kg", deltaKg.String()).
		Str("reason", strings.TrimSpace(reason)).
		Msg("Stock adjusted")

	product, err = s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	level := s.stockLevel(product)
	return &level, nil
}

// ExportXLSX writes the full stock list as a spreadsheet
func (s *InventoryService) ExportXLSX(ctx context.Context, w io.Writer) error {
	products, err := s.productRepo.ListAll(ctx, &repository.ProductFilterParams{})
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", inventorySheet); err != nil {
		return err
	}

	header := []any{"Product", "Code", "Branch", "Price/kg", "Stock (kg)", "Stock value", "Status"}
	if err := f.SetSheetRow(inventorySheet, "A1", &header); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(inventorySheet, "A1", "G1", bold); err != nil {
		return err
	}

	for i := range products {
		level := s.stockLevel(&products[i])
		row := []any{
			level.Name,
			level.Code,
			level.Branch,
			level.PricePerKg.InexactFloat64(),
			level.StockKg.InexactFloat64(),
			level.StockValue.InexactFloat64(),
			level.status(),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(inventorySheet, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(inventorySheet, "A", "A", 24); err != nil {
		return err
	}
	return f.Write(w)
}

package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VariantRequest is a variant created together with its product
type VariantRequest struct {
	Name       string          `json:"name" binding:"required,max=255"`
	PricePerKg decimal.Decimal `json:"price_per_kg"`
}

// CreateProductRequest represents a product creation request
type CreateProductRequest struct {
	BranchID        *uuid.UUID       `json:"branch_id"`
	Name            string           `json:"name" binding:"required,min=2,max=255"`
	Code            string           `json:"code" binding:"omitempty,max=100"`
	Description     *string          `json:"description"`
	PricePerKg      decimal.Decimal  `json:"price_per_kg"`
	StockKg         decimal.Decimal  `json:"stock_kg"`
	LowStockAlertKg *decimal.Decimal `json:"low_stock_alert_kg"`
	Variants        []VariantRequest `json:"variants" binding:"omitempty,dive"`
}

// UpdateProductRequest represents a product update request. Price and
// stock have their own endpoints.
type UpdateProductRequest struct {
	BranchID        *uuid.UUID       `json:"branch_id"`
	Name            *string          `json:"name" binding:"omitempty,min=2,max=255"`
	Code            *string          `json:"code" binding:"omitempty,min=1,max=100"`
	Description     *string          `json:"description"`
	LowStockAlertKg *decimal.Decimal `json:"low_stock_alert_kg"`
}

// UpdateVariantRequest renames a variant
type UpdateVariantRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

// ProductFilterRequest represents product filter parameters
type ProductFilterRequest struct {
	Search    string `form:"search"`
	BranchID  string `form:"branch_id" binding:"omitempty,uuid"`
	LowStock  bool   `form:"low_stock"`
	SortBy    string `form:"sort_by" binding:"omitempty,oneof=name code price_per_kg stock_kg created_at"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
	Page      int    `form:"page"`
	PerPage   int    `form:"per_page"`
}

// CreateBranchRequest represents a branch creation request
type CreateBranchRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Location string `json:"location" binding:"max=255"`
	Contact  string `json:"contact" binding:"max=100"`
}

package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UpdatePriceRequest changes a product price, or a variant price when
// VariantID is set
type UpdatePriceRequest struct {
	VariantID *uuid.UUID       `json:"variant_id"`
	NewPrice  *decimal.Decimal `json:"new_price" binding:"required"`
	ChangedBy string           `json:"changed_by" binding:"required,max=255"`
	Reason    string           `json:"reason" binding:"required"`
}

// PriceHistoryRequest filters the price audit trail
type PriceHistoryRequest struct {
	ProductID string `form:"product_id" binding:"omitempty,uuid"`
	Page      int    `form:"page"`
	PerPage   int    `form:"per_page"`
}

// AdjustStockRequest adds (or with a negative delta removes) stock
type AdjustStockRequest struct {
	DeltaKg *decimal.Decimal `json:"delta_kg" binding:"required"`
	Reason  string           `json:"reason" binding:"required"`
}

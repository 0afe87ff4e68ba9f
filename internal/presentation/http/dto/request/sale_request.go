package request

import "github.com/shopspring/decimal"

// SaleItemRequest is one line of the sales form. UnitPrice is accepted
// for compatibility but ignored: the catalog price is always used.
type SaleItemRequest struct {
	ProductID  string           `json:"product_id" binding:"required,uuid"`
	VariantID  string           `json:"variant_id" binding:"omitempty,uuid"`
	QuantityKg decimal.Decimal  `json:"quantity_kg"`
	UnitPrice  *decimal.Decimal `json:"unit_price,omitempty"`
}

// RecordSaleRequest represents a completed sale or a draft
type RecordSaleRequest struct {
	CustomerName    string            `json:"customer_name" binding:"required,max=255"`
	CustomerPhone   string            `json:"customer_phone" binding:"required,max=50"`
	CustomerAddress *string           `json:"customer_address"`
	BranchID        string            `json:"branch_id" binding:"omitempty,uuid"`
	SalesRepID      string            `json:"sales_rep_id" binding:"omitempty,uuid"`
	Notes           *string           `json:"notes"`
	Items           []SaleItemRequest `json:"items" binding:"min=1,dive"`
}

// QuoteItemRequest is a possibly incomplete line of the sales form
type QuoteItemRequest struct {
	ProductID  string          `json:"product_id"`
	VariantID  string          `json:"variant_id"`
	QuantityKg decimal.Decimal `json:"quantity_kg"`
}

// QuoteRequest asks for the running total of a form being filled in
type QuoteRequest struct {
	Items []QuoteItemRequest `json:"items"`
}

// SaleFilterRequest represents sale filter parameters
type SaleFilterRequest struct {
	Search     string `form:"search"`
	Status     string `form:"status" binding:"omitempty,oneof=draft completed cancelled"`
	CustomerID string `form:"customer_id" binding:"omitempty,uuid"`
	StartDate  string `form:"start_date"` // YYYY-MM-DD
	EndDate    string `form:"end_date"`   // YYYY-MM-DD, inclusive
	SortOrder  string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
	Page       int    `form:"page"`
	PerPage    int    `form:"per_page"`
}

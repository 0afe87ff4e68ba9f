package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/ibrhamsworld/erp-api/internal/domain/enum"
	"github.com/ibrhamsworld/erp-api/pkg/pricing"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Sale is a recorded (or drafted) sale to a customer
type Sale struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	ReceiptNo   string          `gorm:"size:50;uniqueIndex;not null" json:"receipt_no"`
	Date        time.Time       `gorm:"not null;index" json:"date"`
	BranchID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"branch_id"`
	SalesRepID  *uuid.UUID      `gorm:"type:uuid;index" json:"sales_rep_id,omitempty"`
	CustomerID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"customer_id"`
	Status      enum.SaleStatus `gorm:"size:20;not null;index;default:'draft'" json:"status"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`
	Notes       *string         `gorm:"type:text" json:"notes,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	CancelledAt *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// Relationships
	Branch   *Branch    `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
	SalesRep *User      `gorm:"foreignKey:SalesRepID" json:"sales_rep,omitempty"`
	Customer *Customer  `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items    []SaleItem `gorm:"foreignKey:SaleID" json:"items"`
}

// BeforeCreate generates a UUID before creating a new sale
func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Sale model
func (Sale) TableName() string {
	return "sales"
}

func (s *Sale) IsDraft() bool     { return s.Status == enum.SaleStatusDraft }
func (s *Sale) IsCompleted() bool { return s.Status == enum.SaleStatusCompleted }
func (s *Sale) IsCancelled() bool { return s.Status == enum.SaleStatusCancelled }

// LineItems returns the sale's items in calculator form.
func (s *Sale) LineItems() []pricing.LineItem {
	items := make([]pricing.LineItem, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, it.LineItem())
	}
	return items
}

// TotalQuantityKg sums the weight of all items.
func (s *Sale) TotalQuantityKg() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.Items {
		total = total.Add(it.QuantityKg)
	}
	return total
}

// SaleItem is one priced line of a sale. Names and prices are copied at
// sale time so receipts do not change when the catalog does.
type SaleItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	SaleID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	VariantID   *uuid.UUID      `gorm:"type:uuid;index" json:"variant_id,omitempty"`
	ProductName string          `gorm:"size:255;not null" json:"product_name"`
	VariantName string          `gorm:"size:255" json:"variant_name,omitempty"`
	QuantityKg  decimal.Decimal `gorm:"type:decimal(20,3);not null" json:"quantity_kg"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"total_price"`
	CreatedAt   time.Time       `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new sale item
func (i *SaleItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the SaleItem model
func (SaleItem) TableName() string {
	return "sale_items"
}

// LineItem converts the item to calculator form.
func (i SaleItem) LineItem() pricing.LineItem {
	return pricing.LineItem{
		ProductID:  i.ProductID,
		VariantID:  i.VariantID,
		QuantityKg: i.QuantityKg,
	}
}

// DisplayName is "Acrylic (Satin Acrylic)" for variants, else the product name.
func (i SaleItem) DisplayName() string {
	if i.VariantName == "" {
		return i.ProductName
	}
	return i.ProductName + " (" + i.VariantName + ")"
}

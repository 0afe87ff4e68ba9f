package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/ibrhamsworld/erp-api/pkg/pricing"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a paint material sold by weight
type Product struct {
	ID              uuid.UUID           `gorm:"type:uuid;primary_key" json:"id"`
	BranchID        uuid.UUID           `gorm:"type:uuid;not null;index" json:"branch_id"`
	Name            string              `gorm:"size:255;not null" json:"name"`
	Slug            string              `gorm:"size:255;not null;index" json:"slug"`
	Code            string              `gorm:"size:100;uniqueIndex;not null" json:"code"`
	Description     *string             `gorm:"type:text" json:"description,omitempty"`
	PricePerKg      decimal.Decimal     `gorm:"type:decimal(20,4);not null;default:0" json:"price_per_kg"`
	StockKg         decimal.Decimal     `gorm:"type:decimal(20,3);not null;default:0" json:"stock_kg"`
	LowStockAlertKg decimal.NullDecimal `gorm:"type:decimal(20,3)" json:"low_stock_alert_kg"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	DeletedAt       gorm.DeletedAt      `gorm:"index" json:"-"`

	// Relationships
	Branch   *Branch          `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
	Variants []ProductVariant `gorm:"foreignKey:ProductID" json:"variants"`
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// AlertLevel returns the product's own low stock level, or fallback when unset.
func (p *Product) AlertLevel(fallback decimal.Decimal) decimal.Decimal {
	if p.LowStockAlertKg.Valid {
		return p.LowStockAlertKg.Decimal
	}
	return fallback
}

// IsLowStock reports whether stock has fallen to the alert level.
func (p *Product) IsLowStock(fallback decimal.Decimal) bool {
	return p.StockKg.LessThanOrEqual(p.AlertLevel(fallback))
}

// StockValue is the value of the stock on hand at the current price.
func (p *Product) StockValue() decimal.Decimal {
	return pricing.LineTotal(p.StockKg, p.PricePerKg)
}

// FindVariant returns the variant with id, or nil.
func (p *Product) FindVariant(id uuid.UUID) *ProductVariant {
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i]
		}
	}
	return nil
}

// PriceEntry snapshots the product's current prices for the calculator.
func (p *Product) PriceEntry() pricing.PriceEntry {
	entry := pricing.PriceEntry{ProductPrice: p.PricePerKg}
	if len(p.Variants) > 0 {
		entry.VariantPrices = make(map[uuid.UUID]decimal.Decimal, len(p.Variants))
		for _, v := range p.Variants {
			entry.VariantPrices[v.ID] = v.PricePerKg
		}
	}
	return entry
}

// ProductVariant is a finish or grade of a product with its own price,
// e.g. Satin Acrylic.
type ProductVariant struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Name       string          `gorm:"size:255;not null" json:"name"`
	PricePerKg decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"price_per_kg"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	DeletedAt  gorm.DeletedAt  `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new variant
func (v *ProductVariant) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ProductVariant model
func (ProductVariant) TableName() string {
	return "product_variants"
}

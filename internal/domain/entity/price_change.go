package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PriceChange is an audit record of a product or variant price update
type PriceChange struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	VariantID   *uuid.UUID      `gorm:"type:uuid;index" json:"variant_id,omitempty"`
	ProductName string          `gorm:"size:255;not null" json:"product_name"`
	VariantName string          `gorm:"size:255" json:"variant_name,omitempty"`
	OldPrice    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"old_price"`
	NewPrice    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"new_price"`
	ChangedBy   string          `gorm:"size:255;not null" json:"changed_by"`
	Reason      string          `gorm:"type:text;not null" json:"reason"`
	ChangedAt   time.Time       `gorm:"not null;index" json:"changed_at"`
}

// BeforeCreate generates a UUID and stamps the change time
func (c *PriceChange) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.ChangedAt.IsZero() {
		c.ChangedAt = time.Now().UTC()
	}
	return nil
}

// TableName returns the table name for the PriceChange model
func (PriceChange) TableName() string {
	return "price_changes"
}

// Delta is NewPrice - OldPrice.
func (c *PriceChange) Delta() decimal.Decimal {
	return c.NewPrice.Sub(c.OldPrice)
}

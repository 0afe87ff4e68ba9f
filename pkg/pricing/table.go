package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceEntry holds the prices of one catalog product.
type PriceEntry struct {
	ProductPrice  decimal.Decimal               `json:"product_price"`
	VariantPrices map[uuid.UUID]decimal.Decimal `json:"variant_prices,omitempty"`
}

// PriceTable is an in-memory PriceLookup over a catalog snapshot.
// A variant price replaces the product price when a variant is given; an
// unknown variant of a known product is treated as unknown.
type PriceTable map[uuid.UUID]PriceEntry

// NewPriceTable returns an empty table.
func NewPriceTable() PriceTable {
	return make(PriceTable)
}

// Set records the product-level price.
func (t PriceTable) Set(productID uuid.UUID, price decimal.Decimal) {
	entry := t[productID]
	entry.ProductPrice = price
	t[productID] = entry
}

// SetVariant records a variant price for productID.
func (t PriceTable) SetVariant(productID, variantID uuid.UUID, price decimal.Decimal) {
	entry := t[productID]
	if entry.VariantPrices == nil {
		entry.VariantPrices = make(map[uuid.UUID]decimal.Decimal)
	}
	entry.VariantPrices[variantID] = price
	t[productID] = entry
}

// UnitPricePerKg implements PriceLookup.
func (t PriceTable) UnitPricePerKg(productID uuid.UUID, variantID *uuid.UUID) (decimal.Decimal, bool) {
	entry, ok := t[productID]
	if !ok {
		return decimal.Zero, false
	}
	if variantID == nil {
		return entry.ProductPrice, true
	}
	price, ok := entry.VariantPrices[*variantID]
	return price, ok
}

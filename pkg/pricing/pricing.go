// Package pricing computes sale line totals and grand totals.
//
// All amounts are Naira values held as decimals. Each line is rounded to two
// decimal places (half away from zero) before it is added to the grand total,
// so a printed receipt always adds up line by line.
package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of fractional digits kept on computed amounts.
const MoneyPlaces = 2

// LineItem is one product (and optional variant) entry of a sale.
type LineItem struct {
	ProductID  uuid.UUID       `json:"product_id"`
	VariantID  *uuid.UUID      `json:"variant_id,omitempty"`
	QuantityKg decimal.Decimal `json:"quantity_kg"`
}

// PriceLookup resolves the current per-kilogram price of a catalog entry.
// The second return value is false when the price is unknown.
type PriceLookup interface {
	UnitPricePerKg(productID uuid.UUID, variantID *uuid.UUID) (decimal.Decimal, bool)
}

// PriceLookupFunc adapts a plain function to PriceLookup.
type PriceLookupFunc func(productID uuid.UUID, variantID *uuid.UUID) (decimal.Decimal, bool)

// UnitPricePerKg calls f.
func (f PriceLookupFunc) UnitPricePerKg(productID uuid.UUID, variantID *uuid.UUID) (decimal.Decimal, bool) {
	return f(productID, variantID)
}

// Line is a line item together with its resolved price and rounded total.
type Line struct {
	Item           LineItem        `json:"item"`
	UnitPricePerKg decimal.Decimal `json:"unit_price_per_kg"`
	Resolved       bool            `json:"resolved"`
	Total          decimal.Decimal `json:"total"`
}

// Breakdown is the derived pricing of a set of line items.
type Breakdown struct {
	Lines      []Line          `json:"lines"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// LineTotal returns quantityKg × unitPricePerKg rounded to two decimals.
// A non-positive quantity contributes nothing.
func LineTotal(quantityKg, unitPricePerKg decimal.Decimal) decimal.Decimal {
	if !quantityKg.IsPositive() {
		return decimal.Zero
	}
	return quantityKg.Mul(unitPricePerKg).Round(MoneyPlaces)
}

// GrandTotal sums the rounded line totals of items. Lines whose price
// cannot be resolved contribute zero.
func GrandTotal(items []LineItem, lookup PriceLookup) decimal.Decimal {
	return Compute(items, lookup).GrandTotal
}

// Compute prices every item and returns the per-line results in input order.
func Compute(items []LineItem, lookup PriceLookup) Breakdown {
	b := Breakdown{
		Lines:      make([]Line, 0, len(items)),
		GrandTotal: decimal.Zero,
	}

	for _, item := range items {
		line := Line{Item: item, UnitPricePerKg: decimal.Zero, Total: decimal.Zero}
		if lookup != nil {
			if price, ok := lookup.UnitPricePerKg(item.ProductID, item.VariantID); ok {
				line.UnitPricePerKg = price
				line.Resolved = true
				line.Total = LineTotal(item.QuantityKg, price)
			}
		}
		b.Lines = append(b.Lines, line)
		b.GrandTotal = b.GrandTotal.Add(line.Total)
	}

	return b
}

// CountedItems returns the number of lines that contribute to the total.
func (b Breakdown) CountedItems() int {
	n := 0
	for _, l := range b.Lines {
		if l.Resolved && l.Item.QuantityKg.IsPositive() {
			n++
		}
	}
	return n
}

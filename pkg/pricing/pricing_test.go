package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}

func TestLineTotal(t *testing.T) {
	tests := []struct {
		name     string
		quantity string
		price    string
		want     string
	}{
		{"zero quantity", "0", "1000", "0"},
		{"zero price", "12.5", "0", "0"},
		{"exact", "2", "1000", "2000.00"},
		{"half rounds away from zero", "1.5", "1000.333", "1500.50"},
		{"rounds down below half", "1.333", "1000", "1333.00"},
		{"three decimal kg", "0.001", "1500", "1.50"},
		{"penny boundary", "1", "10.005", "10.01"},
		{"negative quantity contributes nothing", "-2", "1000", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertAmount(t, tt.want, LineTotal(dec(tt.quantity), dec(tt.price)))
		})
	}
}

func TestLineTotal_AtMostTwoDecimals(t *testing.T) {
	got := LineTotal(dec("3.217"), dec("987.654"))
	assert.LessOrEqual(t, -got.Exponent(), int32(MoneyPlaces))
	assertAmount(t, "3177.28", got)
}

func TestGrandTotal_Empty(t *testing.T) {
	assertAmount(t, "0", GrandTotal(nil, NewPriceTable()))
	assertAmount(t, "0", GrandTotal([]LineItem{}, nil))
}

func TestGrandTotal_SumsRoundedLines(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	table := NewPriceTable()
	table.Set(a, dec("10.005"))
	table.Set(b, dec("10.005"))

	items := []LineItem{
		{ProductID: a, QuantityKg: dec("1")},
		{ProductID: b, QuantityKg: dec("1")},
	}

	got := GrandTotal(items, table)

	// 2 × round(10.005) rather than round(20.010)
	assertAmount(t, "20.02", got)
	rawSum := dec("10.005").Add(dec("10.005")).Round(MoneyPlaces)
	assert.False(t, rawSum.Equal(got))
}

func TestGrandTotal_OrderIndependent(t *testing.T) {
	acrylic, calcium, genepo := uuid.New(), uuid.New(), uuid.New()
	table := NewPriceTable()
	table.Set(acrylic, dec("1000"))
	table.Set(calcium, dec("800"))
	table.Set(genepo, dec("1500.333"))

	items := []LineItem{
		{ProductID: acrylic, QuantityKg: dec("2.5")},
		{ProductID: calcium, QuantityKg: dec("0.125")},
		{ProductID: genepo, QuantityKg: dec("3.3")},
	}
	reversed := []LineItem{items[2], items[1], items[0]}

	forward := GrandTotal(items, table)
	backward := GrandTotal(reversed, table)

	assert.True(t, forward.Equal(backward))
	assertAmount(t, "7551.10", forward)
}

func TestGrandTotal_UnknownProductContributesZero(t *testing.T) {
	known := uuid.New()
	table := NewPriceTable()
	table.Set(known, dec("900"))

	items := []LineItem{
		{ProductID: known, QuantityKg: dec("2")},
		{ProductID: uuid.New(), QuantityKg: dec("5")},
	}

	assertAmount(t, "1800", GrandTotal(items, table))
}

func TestCompute_VariantPrices(t *testing.T) {
	acrylic := uuid.New()
	satin, gloss, missing := uuid.New(), uuid.New(), uuid.New()

	table := NewPriceTable()
	table.Set(acrylic, dec("1000"))
	table.SetVariant(acrylic, satin, dec("1200"))
	table.SetVariant(acrylic, gloss, dec("1300"))

	items := []LineItem{
		{ProductID: acrylic, QuantityKg: dec("1")},
		{ProductID: acrylic, VariantID: &satin, QuantityKg: dec("2")},
		{ProductID: acrylic, VariantID: &gloss, QuantityKg: dec("0")},
		{ProductID: acrylic, VariantID: &missing, QuantityKg: dec("4")},
	}

	b := Compute(items, table)
	require.Len(t, b.Lines, 4)

	assertAmount(t, "1000", b.Lines[0].Total)
	assertAmount(t, "1200", b.Lines[1].UnitPricePerKg)
	assertAmount(t, "2400", b.Lines[1].Total)
	assert.True(t, b.Lines[2].Resolved)
	assertAmount(t, "0", b.Lines[2].Total)
	assert.False(t, b.Lines[3].Resolved)
	assertAmount(t, "0", b.Lines[3].Total)

	assertAmount(t, "3400", b.GrandTotal)
	assert.Equal(t, 2, b.CountedItems())
}

func TestPriceLookupFunc(t *testing.T) {
	calls := 0
	lookup := PriceLookupFunc(func(uuid.UUID, *uuid.UUID) (decimal.Decimal, bool) {
		calls++
		return dec("800"), true
	})

	got := GrandTotal([]LineItem{
		{ProductID: uuid.New(), QuantityKg: dec("1.5")},
		{ProductID: uuid.New(), QuantityKg: dec("0.5")},
	}, lookup)

	assertAmount(t, "1600", got)
	assert.Equal(t, 2, calls)
}

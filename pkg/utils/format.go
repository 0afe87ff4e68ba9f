package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CurrencySymbol is the Naira sign printed in front of amounts.
const CurrencySymbol = "₦"

// DateLayout renders dates the way receipts show them, e.g. "15 Jan 2024, 14:30".
const DateLayout = "2 Jan 2006, 15:04"

// FormatCurrency renders amount as a Naira string with digit grouping, e.g. ₦45,200.00.
// It is for display only; the formatted string never feeds back into computation.
func FormatCurrency(amount decimal.Decimal) string {
	return CurrencySymbol + FormatAmount(amount)
}

// FormatAmount renders amount with digit grouping and two decimals, without a symbol.
func FormatAmount(amount decimal.Decimal) string {
	fixed := amount.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	units := decimal.RequireFromString(whole).IntPart()
	grouped := message.NewPrinter(language.English).Sprintf("%d", units)

	sign := ""
	if amount.Round(2).IsNegative() {
		sign = "-"
	}
	return sign + grouped + "." + frac
}

// FormatQuantity renders a kilogram quantity without trailing zeros, e.g. 2.5.
func FormatQuantity(kg decimal.Decimal) string {
	return kg.String()
}

// FormatDate renders t as "15 Jan 2024, 14:30".
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// GenerateReceiptNumber formats a receipt number such as IBR-2024-000124.
func GenerateReceiptNumber(prefix string, year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%06d", prefix, year, seq)
}

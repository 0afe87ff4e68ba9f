package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"45200", "₦45,200.00"},
		{"0", "₦0.00"},
		{"999.5", "₦999.50"},
		{"1500.4995", "₦1,500.50"},
		{"1234567.891", "₦1,234,567.89"},
		{"-2000", "-₦2,000.00"},
		{"-0.001", "₦0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCurrency(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestFormatCurrency_DoesNotChangeValue(t *testing.T) {
	amount := decimal.RequireFromString("10.005")
	_ = FormatCurrency(amount)
	assert.Equal(t, "10.005", amount.String())
}

func TestFormatDate(t *testing.T) {
	ts := time.Date(2024, time.January, 15, 14, 30, 59, 0, time.UTC)
	assert.Equal(t, "15 Jan 2024, 14:30", FormatDate(ts))

	ts = time.Date(2024, time.March, 3, 9, 5, 0, 0, time.UTC)
	assert.Equal(t, "3 Mar 2024, 09:05", FormatDate(ts))
}

func TestGenerateReceiptNumber(t *testing.T) {
	assert.Equal(t, "IBR-2024-000124", GenerateReceiptNumber("IBR", 2024, 124))
	assert.Equal(t, "IBR-2025-000001", GenerateReceiptNumber("IBR", 2025, 1))
	assert.Equal(t, "IBR-2025-1234567", GenerateReceiptNumber("IBR", 2025, 1234567))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "satin-acrylic", Slugify("  Satin Acrylic "))
	assert.Equal(t, "pva-glue-50kg", Slugify("PVA Glue (50kg)"))
	assert.Equal(t, "calcium-carbonate", Slugify("Calcium -- Carbonate"))
}

func TestGenerateProductCode(t *testing.T) {
	code := GenerateProductCode()
	assert.Regexp(t, `^PRD-[0-9A-F]{8}$`, code)
	assert.NotEqual(t, code, GenerateProductCode())
}

func TestParseOptionalUUID(t *testing.T) {
	id, err := ParseOptionalUUID("")
	require.NoError(t, err)
	assert.Nil(t, id)

	id, err = ParseOptionalUUID("6f1c1f0e-3d0e-4a8b-9a55-2a3c8f0b7d11")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, "6f1c1f0e-3d0e-4a8b-9a55-2a3c8f0b7d11", id.String())

	_, err = ParseOptionalUUID("not-a-uuid")
	assert.Error(t, err)
}

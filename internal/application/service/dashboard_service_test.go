package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardStats(t *testing.T) {
	env := newTestEnv(t)
	fixedClock(env)
	ctx := context.Background()
	acrylic := env.product(t, "PRD-ACRYLIC")
	pva := env.product(t, "PRD-PVA")

	stats, err := env.dashboard.Stats(ctx)
	require.NoError(t, err)
	assert.True(t, stats.TodaySalesTotal.IsZero())
	assert.Zero(t, stats.TodaySalesCount)
	assert.True(t, dec("2394000").Equal(stats.InventoryValue), stats.InventoryValue.String())
	assert.Equal(t, int64(1), stats.LowStockCount)
	assert.Empty(t, stats.RecentSales)
	assert.Empty(t, stats.TopProducts)
	require.Len(t, stats.SalesTrend, 7)

	_, err = env.sales.RecordSale(ctx, saleInput(SaleItemInput{ProductID: acrylic.ID, QuantityKg: dec("2.5")}), false)
	require.NoError(t, err)
	_, err = env.sales.RecordSale(ctx, saleInput(SaleItemInput{ProductID: pva.ID, QuantityKg: dec("10")}), false)
	require.NoError(t, err)
	// Drafts are not counted.
	_, err = env.sales.RecordSale(ctx, saleInput(SaleItemInput{ProductID: pva.ID, QuantityKg: dec("1")}), true)
	require.NoError(t, err)

	stats, err = env.dashboard.Stats(ctx)
	require.NoError(t, err)
	assert.True(t, dec("11500").Equal(stats.TodaySalesTotal), stats.TodaySalesTotal.String())
	assert.Equal(t, int64(2), stats.TodaySalesCount)
	assert.True(t, dec("2382500").Equal(stats.InventoryValue), stats.InventoryValue.String())
	assert.Equal(t, int64(1), stats.NewCustomersMonth)

	require.Len(t, stats.RecentSales, 2)
	assert.Equal(t, "Adebayo Okafor", stats.RecentSales[0].Customer)

	require.Len(t, stats.TopProducts, 2)
	assert.Equal(t, "PVA", stats.TopProducts[0].ProductName)
	assert.True(t, dec("9000").Equal(stats.TopProducts[0].Revenue))

	require.Len(t, stats.SalesTrend, 7)
	last := stats.SalesTrend[6]
	assert.Equal(t, "2024-01-15", last.Date)
	assert.Equal(t, int64(2), last.Count)
	assert.True(t, dec("11500").Equal(last.Total))
	assert.Equal(t, "2024-01-09", stats.SalesTrend[0].Date)
	assert.True(t, stats.SalesTrend[0].Total.IsZero())
}

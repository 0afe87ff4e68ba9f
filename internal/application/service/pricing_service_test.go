package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/ibrhamsworld/erp-api/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdatePrice_Product(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	acrylic := env.product(t, "PRD-ACRYLIC")

	// Warm the cache so the update has something to invalidate.
	_, err := env.sales.Quote(ctx, []SaleItemInput{{ProductID: acrylic.ID, QuantityKg: dec("1")}})
	require.NoError(t, err)

	change, err := env.pricing.UpdatePrice(ctx, &UpdatePriceInput{
		ProductID: acrylic.ID,
		NewPrice:  dec("1150.50"),
		ChangedBy: " Manager ",
		Reason:    "Supplier increase",
	})
	require.NoError(t, err)

	assert.Equal(t, "Acrylic", change.ProductName)
	assert.Nil(t, change.VariantID)
	assert.True(t, dec("1000").Equal(change.OldPrice))
	assert.True(t, dec("1150.50").Equal(change.NewPrice))
	assert.Equal(t, "Manager", change.ChangedBy)

	assert.Contains(t, env.cache.deleted, acrylic.ID)
	assert.NotContains(t, env.cache.entries, acrylic.ID)
	assert.Len(t, env.publisher.prices, 1)

	quote, err := env.sales.Quote(ctx, []SaleItemInput{{ProductID: acrylic.ID, QuantityKg: dec("2")}})
	require.NoError(t, err)
	assert.True(t, dec("2301").Equal(quote.GrandTotal), quote.GrandTotal.String())
}

func TestUpdatePrice_Variant(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	acrylic := env.product(t, "PRD-ACRYLIC")
	satin := env.variant(t, acrylic, "Satin Acrylic")

	change, err := env.pricing.UpdatePrice(ctx, &UpdatePriceInput{
		ProductID: acrylic.ID,
		VariantID: &satin.ID,
		NewPrice:  dec("1250"),
		ChangedBy: "Manager",
		Reason:    "Market price",
	})
	require.NoError(t, err)
	require.NotNil(t, change.VariantID)
	assert.Equal(t, "Satin Acrylic", change.VariantName)
	assert.True(t, dec("1200").Equal(change.OldPrice))

	// The product price is untouched.
	product, err := env.catalog.GetProduct(ctx, acrylic.ID)
	require.NoError(t, err)
	assert.True(t, dec("1000").Equal(product.PricePerKg))
	assert.True(t, dec("1250").Equal(product.FindVariant(satin.ID).PricePerKg))
}

func TestUpdatePrice_Rejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pva := env.product(t, "PRD-PVA")

	_, err := env.pricing.UpdatePrice(ctx, &UpdatePriceInput{ProductID: pva.ID, NewPrice: dec("-1")})
	appErr := requireAppError(t, err, http.StatusUnprocessableEntity)
	assert.Len(t, appErr.Errors, 3)

	_, err = env.pricing.UpdatePrice(ctx, &UpdatePriceInput{
		ProductID: pva.ID,
		NewPrice:  dec("900.00"),
		ChangedBy: "Manager",
		Reason:    "No change",
	})
	appErr = requireAppError(t, err, http.StatusBadRequest)
	assert.Equal(t, "New price is the same as the current price", appErr.Message)

	missing := env.product(t, "PRD-GENEPO").ID
	require.NoError(t, env.catalog.DeleteProduct(ctx, missing))
	_, err = env.pricing.UpdatePrice(ctx, &UpdatePriceInput{
		ProductID: missing,
		NewPrice:  dec("1"),
		ChangedBy: "Manager",
		Reason:    "Gone",
	})
	requireAppError(t, err, http.StatusNotFound)

	assert.Empty(t, env.publisher.prices)
}

func TestPriceHistory_NewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pva := env.product(t, "PRD-PVA")
	genepo := env.product(t, "PRD-GENEPO")

	for _, price := range []string{"950", "975"} {
		_, err := env.pricing.UpdatePrice(ctx, &UpdatePriceInput{ProductID: pva.ID, NewPrice: dec(price), ChangedBy: "Manager", Reason: "Update"})
		require.NoError(t, err)
	}
	_, err := env.pricing.UpdatePrice(ctx, &UpdatePriceInput{ProductID: genepo.ID, NewPrice: dec("1600"), ChangedBy: "Manager", Reason: "Update"})
	require.NoError(t, err)

	history, err := env.pricing.PriceHistory(ctx, &pva.ID, pagination.DefaultPagination())
	require.NoError(t, err)
	require.Len(t, history.Items, 2)
	assert.True(t, dec("975").Equal(history.Items[0].NewPrice))
	assert.True(t, dec("950").Equal(history.Items[0].OldPrice))

	all, err := env.pricing.PriceHistory(ctx, nil, pagination.DefaultPagination())
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.Pagination.Total)
}

func TestCurrentPricing(t *testing.T) {
	env := newTestEnv(t)

	list, err := env.pricing.CurrentPricing(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 4)

	byName := make(map[string]ProductPricing, len(list))
	for _, p := range list {
		byName[p.Name] = p
	}
	assert.Len(t, byName["Acrylic"].Variants, 3)
	assert.Len(t, byName["Calcium"].Variants, 2)
	assert.Empty(t, byName["PVA"].Variants)
	assert.True(t, dec("1500").Equal(byName["Genepo"].PricePerKg))
}

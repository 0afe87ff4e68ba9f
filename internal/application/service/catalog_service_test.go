package service

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/ibrhamsworld/erp-api/internal/domain/entity"
	"github.com/ibrhamsworld/erp-api/internal/domain/repository"
	"github.com/ibrhamsworld/erp-api/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestCreateProduct_DefaultsToMainBranch(t *testing.T) {
	env := newTestEnv(t)

	product, err := env.catalog.CreateProduct(context.Background(), &CreateProductInput{
		Name:       " Gum Arabic ",
		PricePerKg: dec("700"),
		StockKg:    dec("25"),
		Variants:   []VariantInput{{Name: "Powder", PricePerKg: dec("750")}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Gum Arabic", product.Name)
	assert.Equal(t, "gum-arabic", product.Slug)
	assert.True(t, strings.HasPrefix(product.Code, "PRD-"))
	require.NotNil(t, product.Branch)
	assert.Equal(t, entity.DefaultBranchName, product.Branch.Name)
	require.Len(t, product.Variants, 1)
	assert.Equal(t, "Powder", product.Variants[0].Name)
}

func TestCreateProduct_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.catalog.CreateProduct(ctx, &CreateProductInput{Name: "A"})
	appErr := requireAppError(t, err, http.StatusUnprocessableEntity)
	assert.Equal(t, "name", appErr.Errors[0].Field)

	_, err = env.catalog.CreateProduct(ctx, &CreateProductInput{Name: "Resin", PricePerKg: dec("-5")})
	appErr = requireAppError(t, err, http.StatusUnprocessableEntity)
	assert.Equal(t, "price_per_kg", appErr.Errors[0].Field)

	_, err = env.catalog.CreateProduct(ctx, &CreateProductInput{Name: "Resin", Code: "PRD-PVA"})
	requireAppError(t, err, http.StatusConflict)

	branch := uuid.New()
	_, err = env.catalog.CreateProduct(ctx, &CreateProductInput{Name: "Resin", BranchID: &branch})
	requireAppError(t, err, http.StatusNotFound)
}

func TestUpdateProduct(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pva := env.product(t, "PRD-PVA")

	updated, err := env.catalog.UpdateProduct(ctx, pva.ID, &UpdateProductInput{
		Name:            ptr("PVA Glue"),
		LowStockAlertKg: ptr(dec("50")),
	})
	require.NoError(t, err)
	assert.Equal(t, "PVA Glue", updated.Name)
	assert.Equal(t, "pva-glue", updated.Slug)
	assert.True(t, updated.LowStockAlertKg.Valid)
	assert.True(t, dec("900").Equal(updated.PricePerKg))

	_, err = env.catalog.UpdateProduct(ctx, pva.ID, &UpdateProductInput{Code: ptr("PRD-GENEPO")})
	requireAppError(t, err, http.StatusConflict)
}

func TestDeleteProduct_HidesAndInvalidates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	genepo := env.product(t, "PRD-GENEPO")

	require.NoError(t, env.catalog.DeleteProduct(ctx, genepo.ID))
	assert.Contains(t, env.cache.deleted, genepo.ID)

	_, err := env.catalog.GetProduct(ctx, genepo.ID)
	requireAppError(t, err, http.StatusNotFound)

	list, err := env.catalog.ListProducts(ctx, &repository.ProductFilterParams{Pagination: pagination.DefaultPagination()})
	require.NoError(t, err)
	assert.Equal(t, int64(3), list.Pagination.Total)
}

func TestVariants(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	genepo := env.product(t, "PRD-GENEPO")
	pva := env.product(t, "PRD-PVA")

	variant, err := env.catalog.AddVariant(ctx, genepo.ID, "Fine Genepo", dec("1650"))
	require.NoError(t, err)
	assert.Contains(t, env.cache.deleted, genepo.ID)

	renamed, err := env.catalog.UpdateVariant(ctx, genepo.ID, variant.ID, "Extra Fine Genepo")
	require.NoError(t, err)
	assert.Equal(t, "Extra Fine Genepo", renamed.Name)
	assert.True(t, dec("1650").Equal(renamed.PricePerKg))

	// A variant is only reachable through its own product.
	_, err = env.catalog.UpdateVariant(ctx, pva.ID, variant.ID, "Moved")
	requireAppError(t, err, http.StatusNotFound)

	require.NoError(t, env.catalog.DeleteVariant(ctx, genepo.ID, variant.ID))
	product, err := env.catalog.GetProduct(ctx, genepo.ID)
	require.NoError(t, err)
	assert.Empty(t, product.Variants)
}

func TestBranches(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	branch, err := env.catalog.CreateBranch(ctx, "Ikeja", "Ikeja, Lagos", "0800")
	require.NoError(t, err)
	assert.Equal(t, "Ikeja", branch.Name)

	_, err = env.catalog.CreateBranch(ctx, "Ikeja", "", "")
	requireAppError(t, err, http.StatusConflict)

	branches, err := env.catalog.ListBranches(ctx)
	require.NoError(t, err)
	assert.Len(t, branches, 2)
}

func TestCustomers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	customer, err := env.customers.CreateCustomer(ctx, &CreateCustomerInput{Name: "Ngozi Obi", Phone: "08020000000"})
	require.NoError(t, err)

	_, err = env.customers.CreateCustomer(ctx, &CreateCustomerInput{Name: "Someone Else", Phone: "08020000000"})
	appErr := requireAppError(t, err, http.StatusConflict)
	assert.Equal(t, "A customer with this phone number already exists", appErr.Message)

	_, err = env.customers.CreateCustomer(ctx, &CreateCustomerInput{})
	appErr = requireAppError(t, err, http.StatusUnprocessableEntity)
	assert.Len(t, appErr.Errors, 2)

	updated, err := env.customers.UpdateCustomer(ctx, &UpdateCustomerInput{ID: customer.ID, Address: ptr("12 Allen Avenue")})
	require.NoError(t, err)
	require.NotNil(t, updated.Address)
	assert.Equal(t, "12 Allen Avenue", *updated.Address)

	list, err := env.customers.ListCustomers(ctx, pagination.DefaultPagination(), "ngozi")
	require.NoError(t, err)
	require.Len(t, list.Items, 1)

	require.NoError(t, env.customers.DeleteCustomer(ctx, customer.ID))
	_, err = env.customers.GetCustomer(ctx, customer.ID)
	requireAppError(t, err, http.StatusNotFound)
}

func TestCustomers_WithSales(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pva := env.product(t, "PRD-PVA")

	sale, err := env.sales.RecordSale(ctx, saleInput(SaleItemInput{ProductID: pva.ID, QuantityKg: dec("1")}), false)
	require.NoError(t, err)

	sales, err := env.customers.CustomerSales(ctx, sale.CustomerID, pagination.DefaultPagination())
	require.NoError(t, err)
	require.Len(t, sales.Items, 1)
	assert.Equal(t, sale.ReceiptNo, sales.Items[0].ReceiptNo)

	err = env.customers.DeleteCustomer(ctx, sale.CustomerID)
	appErr := requireAppError(t, err, http.StatusConflict)
	assert.Equal(t, "Customer has sales and cannot be deleted", appErr.Message)
}

func TestUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.users.CreateUser(ctx, &CreateUserInput{Name: "Tunde Bakare", Email: "Tunde@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, "tunde@example.com", user.Email)
	assert.Equal(t, "SALES_REP", user.Role.String())
	require.NotNil(t, user.Branch)

	_, err = env.users.CreateUser(ctx, &CreateUserInput{Name: "Tunde", Email: "tunde@example.com"})
	requireAppError(t, err, http.StatusConflict)

	_, err = env.users.CreateUser(ctx, &CreateUserInput{Name: "X", Email: "not-an-email", Role: "OWNER"})
	appErr := requireAppError(t, err, http.StatusUnprocessableEntity)
	assert.Len(t, appErr.Errors, 2)

	// The user can now be named as the sales rep on a sale.
	pva := env.product(t, "PRD-PVA")
	input := saleInput(SaleItemInput{ProductID: pva.ID, QuantityKg: dec("1")})
	input.SalesRepID = &user.ID
	sale, err := env.sales.RecordSale(ctx, input, false)
	require.NoError(t, err)
	require.NotNil(t, sale.SalesRep)
	assert.Equal(t, "Tunde Bakare", sale.SalesRep.Name)

	users, err := env.users.ListUsers(ctx, pagination.DefaultPagination(), "")
	require.NoError(t, err)
	assert.Len(t, users.Items, 1)
}

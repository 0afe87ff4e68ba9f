package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordReceiptSale(t *testing.T, env *testEnv) uuid.UUID {
	t.Helper()
	fixedClock(env)
	acrylic := env.product(t, "PRD-ACRYLIC")
	input := saleInput(SaleItemInput{ProductID: acrylic.ID, QuantityKg: dec("2.5")})
	input.CustomerAddress = ptr("5 Broad Street, Lagos")

	sale, err := env.sales.RecordSale(context.Background(), input, false)
	require.NoError(t, err)
	return sale.ID
}

func TestBuildReceipt(t *testing.T) {
	env := newTestEnv(t)
	saleID := recordReceiptSale(t, env)

	receipt, err := env.receipts.BuildReceipt(context.Background(), saleID)
	require.NoError(t, err)

	assert.Equal(t, "IBRHAMS WORLD", receipt.Header.StoreName)
	assert.Equal(t, "IBR-2024-000001", receipt.ReceiptNo)
	assert.Equal(t, "15 Jan 2024, 14:30", receipt.Date)
	assert.Equal(t, "completed", receipt.Status)
	assert.Equal(t, "Main Branch", receipt.Branch)
	assert.Equal(t, "Adebayo Okafor", receipt.Customer.Name)
	assert.Equal(t, "5 Broad Street, Lagos", receipt.Customer.Address)

	require.Len(t, receipt.Items, 1)
	assert.Equal(t, "Acrylic", receipt.Items[0].Name)
	assert.Equal(t, "2.5 kg × ₦1,000.00/kg", receipt.Items[0].Detail)
	assert.Equal(t, "₦2,500.00", receipt.Items[0].TotalText)
	assert.Equal(t, "₦2,500.00", receipt.TotalText)
	assert.Equal(t, ReceiptFooter, receipt.Footer)
}

func TestBuildReceipt_NotFound(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.receipts.BuildReceipt(context.Background(), uuid.New())
	requireAppError(t, err, http.StatusNotFound)
}

func TestPrintReceipt(t *testing.T) {
	env := newTestEnv(t)
	saleID := recordReceiptSale(t, env)

	_, err := env.receipts.PrintReceipt(context.Background(), saleID)
	require.NoError(t, err)
	require.Len(t, env.printer.jobs, 1)

	job := string(env.printer.jobs[0])
	assert.Contains(t, job, "IBR-2024-000001")
	assert.Contains(t, job, "2.5 kg x N1,000.00/kg")
	assert.Contains(t, job, "N2,500.00")
	assert.Contains(t, job, "Thank you for your business!")
	assert.NotContains(t, job, "₦")
}

func TestPrintReceipt_PrinterFailureKeepsReceipt(t *testing.T) {
	env := newTestEnv(t)
	saleID := recordReceiptSale(t, env)
	env.printer.err = errors.New("paper out")

	receipt, err := env.receipts.PrintReceipt(context.Background(), saleID)
	require.Error(t, err)
	require.NotNil(t, receipt)
	assert.Equal(t, "IBR-2024-000001", receipt.ReceiptNo)
}

func TestPrinterStatusAndTestPrint(t *testing.T) {
	env := newTestEnv(t)

	status := env.receipts.Status()
	assert.True(t, status.Configured)
	assert.True(t, status.Connected)
	assert.Equal(t, "network", status.Type)

	receipt, err := env.receipts.TestPrint()
	require.NoError(t, err)
	assert.Equal(t, "₦2,000.00", receipt.TotalText)
	assert.Len(t, env.printer.jobs, 1)
}

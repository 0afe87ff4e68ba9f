package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ibrhamsworld/erp-api/internal/config"
	"github.com/ibrhamsworld/erp-api/internal/domain/entity"
	"github.com/ibrhamsworld/erp-api/internal/domain/repository"
	"github.com/ibrhamsworld/erp-api/pkg/apperror"
	"github.com/ibrhamsworld/erp-api/pkg/printer"
	"github.com/ibrhamsworld/erp-api/pkg/utils"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ReceiptFooter is printed below the total of every receipt.
var ReceiptFooter = []string{
	"Thank you for your business!",
	"This receipt was generated electronically",
	"IBRHAMS WORLD ERP System",
}

// PrinterService handles receipt formatting and thermal printing.
type PrinterService struct {
	printer   printer.Printer
	saleRepo  repository.SaleRepository
	company   config.CompanyConfig
	charWidth int
	location  *time.Location
	log       zerolog.Logger
}

// NewPrinterService creates a new printer service. Receipt dates are shown in loc.
func NewPrinterService(
	p printer.Printer,
	saleRepo repository.SaleRepository,
	company config.CompanyConfig,
	charWidth int,
	loc *time.Location,
	log zerolog.Logger,
) *PrinterService {
	if loc == nil {
		loc = time.UTC
	}
	return &PrinterService{
		printer:   p,
		saleRepo:  saleRepo,
		company:   company,
		charWidth: charWidth,
		location:  loc,
		log:       log,
	}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
}

// Status returns printer connection status.
func (s *PrinterService) Status() *PrinterStatus {
	return &PrinterStatus{
		Configured: s.printer.Type() != printer.TypeNone,
		Connected:  s.printer.IsConnected(),
		Type:       s.printer.Type(),
	}
}

func (s *PrinterService) header() entity.ReceiptHeader {
	return entity.ReceiptHeader{
		StoreName: s.company.Name,
		Address:   s.company.Address,
		Phone:     s.company.Phone,
	}
}

// BuildReceipt composes the receipt of a sale.
func (s *PrinterService) BuildReceipt(ctx context.Context, saleID uuid.UUID) (*entity.Receipt, error) {
	sale, err := s.saleRepo.GetWithDetails(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, apperror.NewNotFoundError("Sale")
	}

	receipt := &entity.Receipt{
		Header:      s.header(),
		ReceiptNo:   sale.ReceiptNo,
		Date:        utils.FormatDate(sale.Date.In(s.location)),
		Status:      string(sale.Status),
		TotalAmount: sale.TotalAmount,
		TotalText:   utils.FormatCurrency(sale.TotalAmount),
		Footer:      ReceiptFooter,
		Items:       make([]entity.ReceiptItem, 0, len(sale.Items)),
	}
	if sale.Branch != nil {
		receipt.Branch = sale.Branch.Name
	}
	if sale.SalesRep != nil {
		receipt.SalesRep = sale.SalesRep.Name
	}
	if sale.Customer != nil {
		receipt.Customer = entity.ReceiptCustomer{
			Name:  sale.Customer.Name,
			Phone: sale.Customer.Phone,
		}
		if sale.Customer.Address != nil {
			receipt.Customer.Address = *sale.Customer.Address
		}
	}

	for _, it := range sale.Items {
		receipt.Items = append(receipt.Items, receiptItem(it.DisplayName(), it.QuantityKg, it.UnitPrice, it.TotalPrice))
	}
	return receipt, nil
}

func receiptItem(name string, qty, unitPrice, total decimal.Decimal) entity.ReceiptItem {
	return entity.ReceiptItem{
		Name:       name,
		QuantityKg: qty,
		UnitPrice:  unitPrice,
		Total:      total,
		Detail:     fmt.Sprintf("%s kg × %s/kg", utils.FormatQuantity(qty), utils.FormatCurrency(unitPrice)),
		TotalText:  utils.FormatCurrency(total),
	}
}

// PrintReceipt builds a sale's receipt and sends it to the printer.
// The receipt is returned even when printing fails.
func (s *PrinterService) PrintReceipt(ctx context.Context, saleID uuid.UUID) (*entity.Receipt, error) {
	receipt, err := s.BuildReceipt(ctx, saleID)
	if err != nil {
		return nil, err
	}

	if err := s.printer.Print(FormatReceipt(receipt, s.charWidth)); err != nil {
		s.log.Error().Err(err).Str("sale_id", saleID.String()).Msg("Printer error")
		return receipt, fmt.Errorf("failed to print receipt: %w", err)
	}
	return receipt, nil
}

// TestPrint sends a sample receipt to the printer.
func (s *PrinterService) TestPrint() (*entity.Receipt, error) {
	receipt := &entity.Receipt{
		Header:    s.header(),
		ReceiptNo: "TEST-0001",
		Date:      utils.FormatDate(time.Now().In(s.location)),
		Status:    "test",
		Branch:    entity.DefaultBranchName,
		Customer:  entity.ReceiptCustomer{Name: "Printer Test", Phone: "-"},
		Items: []entity.ReceiptItem{
			receiptItem("Test Item 1", decimal.NewFromInt(1), decimal.NewFromInt(1000), decimal.NewFromInt(1000)),
			receiptItem("Test Item 2", decimal.RequireFromString("2.5"), decimal.NewFromInt(400), decimal.NewFromInt(1000)),
		},
		TotalAmount: decimal.NewFromInt(2000),
		TotalText:   utils.FormatCurrency(decimal.NewFromInt(2000)),
		Footer:      ReceiptFooter,
	}

	if err := s.printer.Print(FormatReceipt(receipt, s.charWidth)); err != nil {
		return receipt, fmt.Errorf("test print failed: %w", err)
	}
	return receipt, nil
}

// FormatReceipt converts a Receipt into ESC/POS bytes.
func FormatReceipt(r *entity.Receipt, charWidth int) []byte {
	doc := printer.NewDocument(charWidth)

	// Header
	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetFontSize(printer.FontDouble).
		Text(r.Header.StoreName).
		SetFontSize(printer.FontNormal).
		SetBold(false)

	if r.Header.Address != "" {
		doc.Text(r.Header.Address)
	}
	if r.Header.Phone != "" {
		doc.Text(r.Header.Phone)
	}

	doc.SetAlign(printer.AlignLeft).
		Separator('-')

	doc.KeyValue("Receipt:", r.ReceiptNo).
		KeyValue("Date:", r.Date)
	if r.Branch != "" {
		doc.KeyValue("Branch:", r.Branch)
	}
	if r.SalesRep != "" {
		doc.KeyValue("Sales rep:", r.SalesRep)
	}

	doc.Separator('-')

	doc.KeyValue("Customer:", r.Customer.Name).
		KeyValue("Phone:", r.Customer.Phone)
	if r.Customer.Address != "" {
		doc.Text(r.Customer.Address)
	}

	doc.Separator('-')

	for _, item := range r.Items {
		doc.ItemLine(item.Name, item.TotalText).
			DetailLine(item.Detail)
	}

	doc.Separator('=')

	doc.SetBold(true).
		KeyValue("TOTAL:", r.TotalText).
		SetBold(false)

	doc.Separator('-')

	doc.SetAlign(printer.AlignCenter).LineFeed()
	for _, line := range r.Footer {
		doc.Text(line)
	}
	doc.SetAlign(printer.AlignLeft).
		FeedLines(3).
		PartialCut()

	return doc.Bytes()
}

package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ibrhamsworld/erp-api/internal/domain/entity"
	"github.com/ibrhamsworld/erp-api/internal/domain/enum"
	"github.com/ibrhamsworld/erp-api/internal/domain/repository"
	"github.com/ibrhamsworld/erp-api/internal/infrastructure/events"
	"github.com/ibrhamsworld/erp-api/internal/infrastructure/metrics"
	infraRepo "github.com/ibrhamsworld/erp-api/internal/infrastructure/repository"
	"github.com/ibrhamsworld/erp-api/pkg/apperror"
	"github.com/ibrhamsworld/erp-api/pkg/pagination"
	"github.com/ibrhamsworld/erp-api/pkg/pricing"
	"github.com/ibrhamsworld/erp-api/pkg/utils"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// MinQuantityKg is the smallest quantity accepted on a recorded sale.
var MinQuantityKg = decimal.New(1, -3)

// SaleService records, completes and cancels sales
type SaleService struct {
	saleRepo      repository.SaleRepository
	productRepo   repository.ProductRepository
	customerRepo  repository.CustomerRepository
	branchRepo    repository.BranchRepository
	userRepo      repository.UserRepository
	tx            repository.Transactor
	prices        *PriceResolver
	publisher     events.Publisher
	metrics       *metrics.Metrics
	receiptPrefix string
	log           zerolog.Logger
	now           func() time.Time
}

// NewSaleService creates a new sale service
func NewSaleService(
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	branchRepo repository.BranchRepository,
	userRepo repository.UserRepository,
	tx repository.Transactor,
	prices *PriceResolver,
	publisher events.Publisher,
	m *metrics.Metrics,
	receiptPrefix string,
	log zerolog.Logger,
) *SaleService {
	return &SaleService{
		saleRepo:      saleRepo,
		productRepo:   productRepo,
		customerRepo:  customerRepo,
		branchRepo:    branchRepo,
		userRepo:      userRepo,
		tx:            tx,
		prices:        prices,
		publisher:     publisher,
		metrics:       m,
		receiptPrefix: receiptPrefix,
		log:           log,
		now:           time.Now,
	}
}

// SaleItemInput represents an item on the sales form. Unit prices are
// always taken from the catalog.
type SaleItemInput struct {
	ProductID  uuid.UUID
	VariantID  *uuid.UUID
	QuantityKg decimal.Decimal
}

// RecordSaleInput represents the record sale input
type RecordSaleInput struct {
	CustomerName    string
	CustomerPhone   string
	CustomerAddress *string
	BranchID        *uuid.UUID
	SalesRepID      *uuid.UUID
	Notes           *string
	Items           []SaleItemInput
}

// QuoteResult is the running total shown while a sale is being entered
type QuoteResult struct {
	pricing.Breakdown
	ItemCount      int    `json:"item_count"`
	GrandTotalText string `json:"grand_total_text"`
}

func lineItems(items []SaleItemInput) []pricing.LineItem {
	out := make([]pricing.LineItem, 0, len(items))
	for _, it := range items {
		out = append(out, pricing.LineItem{ProductID: it.ProductID, VariantID: it.VariantID, QuantityKg: it.QuantityKg})
	}
	return out
}

// Quote prices a partially filled form. Unknown products and empty
// quantities contribute nothing; it never fails on item content.
func (s *SaleService) Quote(ctx context.Context, items []SaleItemInput) (*QuoteResult, error) {
	li := lineItems(items)
	table, err := s.prices.Resolve(ctx, li)
	if err != nil {
		return nil, err
	}

	breakdown := pricing.Compute(li, table)
	return &QuoteResult{
		Breakdown:      breakdown,
		ItemCount:      breakdown.CountedItems(),
		GrandTotalText: utils.FormatCurrency(breakdown.GrandTotal),
	}, nil
}

func validateSaleInput(input *RecordSaleInput) []apperror.FieldError {
	var errs []apperror.FieldError
	if strings.TrimSpace(input.CustomerName) == "" {
		errs = append(errs, apperror.FieldError{Field: "customer_name", Message: "Customer name is required"})
	}
	if strings.TrimSpace(input.CustomerPhone) == "" {
		errs = append(errs, apperror.FieldError{Field: "customer_phone", Message: "Phone number is required"})
	}
	if len(input.Items) == 0 {
		errs = append(errs, apperror.FieldError{Field: "items", Message: "At least one item is required"})
	}
	for i, it := range input.Items {
		if it.ProductID == uuid.Nil {
			errs = append(errs, apperror.FieldError{Field: fmt.Sprintf("items[%d].product_id", i), Message: "Product is required"})
		}
		if it.QuantityKg.LessThan(MinQuantityKg) {
			errs = append(errs, apperror.FieldError{Field: fmt.Sprintf("items[%d].quantity_kg", i), Message: "Quantity must be at least 0.001 kg"})
		}
	}
	return errs
}

// pricedItems checks every item against the catalog and prices it at the
// catalog's current prices.
func (s *SaleService) pricedItems(ctx context.Context, items []SaleItemInput) ([]entity.SaleItem, decimal.Decimal, error) {
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, decimal.Zero, err
	}
	productMap := make(map[uuid.UUID]*entity.Product, len(products))
	for i := range products {
		productMap[products[i].ID] = &products[i]
	}

	var fieldErrors []apperror.FieldError
	for i, it := range items {
		product, ok := productMap[it.ProductID]
		if !ok {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: fmt.Sprintf("items[%d].product_id", i), Message: "Product not found"})
			continue
		}
		if it.VariantID != nil && product.FindVariant(*it.VariantID) == nil {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: fmt.Sprintf("items[%d].variant_id", i), Message: "Variant not found"})
		}
	}
	if len(fieldErrors) > 0 {
		return nil, decimal.Zero, apperror.NewValidationError(fieldErrors)
	}

	// Recorded totals use the rows just read, never the price cache.
	table := pricing.NewPriceTable()
	for id, product := range productMap {
		table[id] = product.PriceEntry()
	}
	li := lineItems(items)
	breakdown := pricing.Compute(li, table)

	saleItems := make([]entity.SaleItem, 0, len(items))
	for i, line := range breakdown.Lines {
		if !line.Resolved {
			return nil, decimal.Zero, apperror.NewFieldError(fmt.Sprintf("items[%d].product_id", i), "Price not available")
		}
		product := productMap[line.Item.ProductID]
		item := entity.SaleItem{
			ProductID:   product.ID,
			VariantID:   line.Item.VariantID,
			ProductName: product.Name,
			QuantityKg:  line.Item.QuantityKg,
			UnitPrice:   line.UnitPricePerKg,
			TotalPrice:  line.Total,
		}
		if line.Item.VariantID != nil {
			item.VariantName = product.FindVariant(*line.Item.VariantID).Name
		}
		saleItems = append(saleItems, item)
	}
	return saleItems, breakdown.GrandTotal, nil
}

func stockByProduct(items []entity.SaleItem) map[uuid.UUID]decimal.Decimal {
	out := make(map[uuid.UUID]decimal.Decimal, len(items))
	for _, it := range items {
		out[it.ProductID] = out[it.ProductID].Add(it.QuantityKg)
	}
	return out
}

// decrementStock takes the sale's quantities out of stock or fails with the
// names of the products that are short.
func (s *SaleService) decrementStock(ctx context.Context, items []entity.SaleItem) error {
	failedIDs, err := s.productRepo.AtomicDecrementBatch(ctx, stockByProduct(items))
	if err != nil {
		return err
	}
	if len(failedIDs) == 0 {
		return nil
	}

	failed := make(map[uuid.UUID]bool, len(failedIDs))
	for _, id := range failedIDs {
		failed[id] = true
	}
	var names []string
	for _, it := range items {
		if failed[it.ProductID] {
			names = append(names, it.ProductName)
			delete(failed, it.ProductID)
		}
	}
	sort.Strings(names)
	return apperror.NewBadRequestError("Insufficient stock for: " + strings.Join(names, ", "))
}

func (s *SaleService) findOrCreateCustomer(ctx context.Context, input *RecordSaleInput) (*entity.Customer, error) {
	phone := strings.TrimSpace(input.CustomerPhone)
	customer, err := s.customerRepo.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	if customer != nil {
		return customer, nil
	}

	customer = &entity.Customer{
		Name:    strings.TrimSpace(input.CustomerName),
		Phone:   phone,
		Address: input.CustomerAddress,
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *SaleService) resolveBranch(ctx context.Context, id *uuid.UUID) (uuid.UUID, error) {
	if id != nil {
		branch, err := s.branchRepo.GetByID(ctx, *id)
		if err != nil {
			return uuid.Nil, err
		}
		if branch == nil {
			return uuid.Nil, apperror.NewFieldError("branch_id", "Branch not found")
		}
		return branch.ID, nil
	}
	branch, err := s.branchRepo.GetByName(ctx, entity.DefaultBranchName)
	if err != nil {
		return uuid.Nil, err
	}
	if branch == nil {
		return uuid.Nil, apperror.NewFieldError("branch_id", "Branch is required")
	}
	return branch.ID, nil
}

func (s *SaleService) nextReceiptNo(ctx context.Context, at time.Time) (string, error) {
	count, err := s.saleRepo.CountReceiptsForYear(ctx, s.receiptPrefix, at.Year())
	if err != nil {
		return "", err
	}
	return utils.GenerateReceiptNumber(s.receiptPrefix, at.Year(), count+1), nil
}

// RecordSale validates and stores a sale. Completed sales take their
// quantities out of stock in the same transaction; drafts do not.
func (s *SaleService) RecordSale(ctx context.Context, input *RecordSaleInput, asDraft bool) (*entity.Sale, error) {
	if errs := validateSaleInput(input); len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}

	if input.SalesRepID != nil {
		rep, err := s.userRepo.GetByID(ctx, *input.SalesRepID)
		if err != nil {
			return nil, err
		}
		if rep == nil {
			return nil, apperror.NewFieldError("sales_rep_id", "Sales rep not found")
		}
	}

	status := enum.SaleStatusCompleted
	if asDraft {
		status = enum.SaleStatusDraft
	}
	now := s.now().UTC()

	var sale *entity.Sale
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		items, total, err := s.pricedItems(ctx, input.Items)
		if err != nil {
			return err
		}

		branchID, err := s.resolveBranch(ctx, input.BranchID)
		if err != nil {
			return err
		}

		customer, err := s.findOrCreateCustomer(ctx, input)
		if err != nil {
			return err
		}

		if status == enum.SaleStatusCompleted {
			if err := s.decrementStock(ctx, items); err != nil {
				return err
			}
		}

		receiptNo, err := s.nextReceiptNo(ctx, now)
		if err != nil {
			return err
		}

		sale = &entity.Sale{
			ReceiptNo:   receiptNo,
			Date:        now,
			BranchID:    branchID,
			SalesRepID:  input.SalesRepID,
			CustomerID:  customer.ID,
			Status:      status,
			TotalAmount: total,
			Notes:       input.Notes,
			Items:       items,
		}
		if status == enum.SaleStatusCompleted {
			sale.CompletedAt = &now
		}
		return s.saleRepo.Create(ctx, sale)
	})
	if err != nil {
		if infraRepo.IsDuplicateKey(err) {
			return nil, apperror.NewConflictError("Receipt number already in use, please retry")
		}
		return nil, err
	}

	s.afterRecorded(ctx, sale)
	return s.saleRepo.GetWithDetails(ctx, sale.ID)
}

func (s *SaleService) afterRecorded(ctx context.Context, sale *entity.Sale) {
	s.metrics.SaleRecorded(sale.Status.String(), sale.TotalAmount)
	if sale.IsCompleted() {
		if err := s.publisher.PublishSaleRecorded(ctx, sale); err != nil {
			s.log.Warn().Err(err).Str("sale_id", sale.ID.String()).Msg("sale.recorded event not published")
		}
	}
	s.log.Info().
		Str("sale_id", sale.ID.String()).
		Str("receipt_no", sale.ReceiptNo).
		Str("status", sale.Status.String()).
		Str("total", sale.TotalAmount.StringFixed(2)).
		Msg("Sale recorded")
}

// CompleteDraft reprices a draft at current prices, takes its quantities
// out of stock and marks it completed.
func (s *SaleService) CompleteDraft(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	var sale *entity.Sale
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		sale, err = s.saleRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if sale == nil {
			return apperror.NewNotFoundError("Sale")
		}
		if !sale.IsDraft() {
			return apperror.NewBadRequestError("Only draft sales can be completed")
		}

		inputs := make([]SaleItemInput, 0, len(sale.Items))
		for _, it := range sale.Items {
			inputs = append(inputs, SaleItemInput{ProductID: it.ProductID, VariantID: it.VariantID, QuantityKg: it.QuantityKg})
		}
		items, total, err := s.pricedItems(ctx, inputs)
		if err != nil {
			var appErr *apperror.AppError
			if errors.As(err, &appErr) && appErr.Code == http.StatusUnprocessableEntity {
				return apperror.NewBadRequestError("Draft contains products that are no longer available")
			}
			return err
		}

		if err := s.decrementStock(ctx, items); err != nil {
			return err
		}

		sale.Items = items
		sale.TotalAmount = total
		if err := s.saleRepo.ReplaceItems(ctx, sale); err != nil {
			return err
		}

		now := s.now().UTC()
		sale.Status = enum.SaleStatusCompleted
		sale.Date = now
		sale.CompletedAt = &now
		return s.saleRepo.UpdateStatus(ctx, sale.ID, enum.SaleStatusCompleted, now)
	})
	if err != nil {
		return nil, err
	}

	s.afterRecorded(ctx, sale)
	return s.saleRepo.GetWithDetails(ctx, id)
}

// CancelSale cancels a sale, putting completed quantities back into stock
func (s *SaleService) CancelSale(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	var sale *entity.Sale
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		sale, err = s.saleRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if sale == nil {
			return apperror.NewNotFoundError("Sale")
		}
		if sale.IsCancelled() {
			return apperror.NewBadRequestError("Sale is already cancelled")
		}

		if sale.IsCompleted() {
			if err := s.productRepo.AtomicIncrementBatch(ctx, stockByProduct(sale.Items)); err != nil {
				return err
			}
		}

		now := s.now().UTC()
		sale.Status = enum.SaleStatusCancelled
		sale.CancelledAt = &now
		return s.saleRepo.UpdateStatus(ctx, sale.ID, enum.SaleStatusCancelled, now)
	})
	if err != nil {
		return nil, err
	}

	if err := s.publisher.PublishSaleCancelled(ctx, sale); err != nil {
		s.log.Warn().Err(err).Str("sale_id", sale.ID.String()).Msg("sale.cancelled event not published")
	}
	s.log.Info().Str("sale_id", sale.ID.String()).Str("receipt_no", sale.ReceiptNo).Msg("Sale cancelled")
	return s.saleRepo.GetWithDetails(ctx, id)
}

// GetSale retrieves a sale with its items, customer and branch
func (s *SaleService) GetSale(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	sale, err := s.saleRepo.GetWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, apperror.NewNotFoundError("Sale")
	}
	return sale, nil
}

// ListSales lists sales with filtering
func (s *SaleService) ListSales(ctx context.Context, params *repository.SaleFilterParams) (*pagination.PaginatedResult[entity.Sale], error) {
	sales, total, err := s.saleRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(sales, pag), nil
}

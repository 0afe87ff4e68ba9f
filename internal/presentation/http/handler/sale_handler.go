package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ibrhamsworld/erp-api/internal/application/service"
	"github.com/ibrhamsworld/erp-api/internal/domain/enum"
	"github.com/ibrhamsworld/erp-api/internal/domain/repository"
	"github.com/ibrhamsworld/erp-api/internal/presentation/http/dto/request"
	"github.com/ibrhamsworld/erp-api/internal/presentation/http/dto/response"
)

// SaleHandler handles sale-related HTTP requests
type SaleHandler struct {
	saleService    *service.SaleService
	printerService *service.PrinterService
	location       *time.Location
}

// NewSaleHandler creates a new sale handler. Date filters are read in loc.
func NewSaleHandler(saleService *service.SaleService, printerService *service.PrinterService, loc *time.Location) *SaleHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &SaleHandler{saleService: saleService, printerService: printerService, location: loc}
}

// Quote returns the running total of a sales form. It never rejects
// incomplete lines; they simply add nothing.
func (h *SaleHandler) Quote(c *gin.Context) {
	var req request.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindingError(c, err)
		return
	}

	items := make([]service.SaleItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		productID, err := uuid.Parse(it.ProductID)
		if err != nil {
			productID = uuid.Nil
		}
		items = append(items, service.SaleItemInput{
			ProductID:  productID,
			VariantID:  optionalUUID(it.VariantID),
			QuantityKg: it.QuantityKg,
		})
	}

	quote, err := h.saleService.Quote(c.Request.Context(), items)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Quote calculated", quote)
}

// Record handles recording a completed sale
func (h *SaleHandler) Record(c *gin.Context) {
	h.record(c, false)
}

// RecordDraft handles saving a sale as a draft
func (h *SaleHandler) RecordDraft(c *gin.Context) {
	h.record(c, true)
}

func (h *SaleHandler) record(c *gin.Context, asDraft bool) {
	var req request.RecordSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindingError(c, err)
		return
	}

	input := &service.RecordSaleInput{
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		BranchID:        optionalUUID(req.BranchID),
		SalesRepID:      optionalUUID(req.SalesRepID),
		Notes:           req.Notes,
		Items:           make([]service.SaleItemInput, 0, len(req.Items)),
	}
	for _, it := range req.Items {
		productID := optionalUUID(it.ProductID)
		if productID == nil {
			productID = &uuid.Nil
		}
		input.Items = append(input.Items, service.SaleItemInput{
			ProductID:  *productID,
			VariantID:  optionalUUID(it.VariantID),
			QuantityKg: it.QuantityKg,
		})
	}

	sale, err := h.saleService.RecordSale(c.Request.Context(), input, asDraft)
	if err != nil {
		response.Error(c, err)
		return
	}

	message := "Sale recorded successfully"
	if asDraft {
		message = "Draft saved successfully"
	}
	response.Created(c, message, sale)
}

// List handles listing sales
func (h *SaleHandler) List(c *gin.Context) {
	var req request.SaleFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindingError(c, err)
		return
	}

	params := &repository.SaleFilterParams{
		Pagination: pageParams(req.Page, req.PerPage),
		Search:     req.Search,
		CustomerID: optionalUUID(req.CustomerID),
		SortOrder:  req.SortOrder,
	}
	if req.Status != "" {
		status, err := enum.ParseSaleStatus(req.Status)
		if err != nil {
			response.BadRequest(c, "Invalid status")
			return
		}
		params.Status = &status
	}

	start, err := parseDay(req.StartDate, h.location)
	if err != nil {
		response.BadRequest(c, "Invalid start_date, expected YYYY-MM-DD")
		return
	}
	end, err := parseDay(req.EndDate, h.location)
	if err != nil {
		response.BadRequest(c, "Invalid end_date, expected YYYY-MM-DD")
		return
	}
	params.StartDate = start
	if end != nil {
		next := end.AddDate(0, 0, 1)
		params.EndDate = &next
	}

	result, err := h.saleService.ListSales(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, "Sales retrieved successfully", result)
}

// Get handles getting a single sale
func (h *SaleHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "sale")
	if !ok {
		return
	}

	sale, err := h.saleService.GetSale(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Sale retrieved successfully", sale)
}

// Complete handles completing a draft sale
func (h *SaleHandler) Complete(c *gin.Context) {
	id, ok := pathID(c, "id", "sale")
	if !ok {
		return
	}

	sale, err := h.saleService.CompleteDraft(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Sale completed successfully", sale)
}

// Cancel handles cancelling a sale
func (h *SaleHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c, "id", "sale")
	if !ok {
		return
	}

	sale, err := h.saleService.CancelSale(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Sale cancelled successfully", sale)
}

// Receipt returns the receipt of a sale as JSON
func (h *SaleHandler) Receipt(c *gin.Context) {
	id, ok := pathID(c, "id", "sale")
	if !ok {
		return
	}

	receipt, err := h.printerService.BuildReceipt(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Receipt retrieved successfully", receipt)
}

// PrintReceipt sends a sale's receipt to the thermal printer
func (h *SaleHandler) PrintReceipt(c *gin.Context) {
	id, ok := pathID(c, "id", "sale")
	if !ok {
		return
	}

	receipt, err := h.printerService.PrintReceipt(c.Request.Context(), id)
	if err != nil {
		// If receipt was built but printing failed, return receipt with warning
		if receipt != nil {
			response.OK(c, "Receipt generated but printing failed", gin.H{
				"receipt": receipt,
				"warning": err.Error(),
			})
			return
		}
		response.Error(c, err)
		return
	}
	response.OK(c, "Receipt printed successfully", gin.H{
		"receipt": receipt,
	})
}

package handler

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ibrhamsworld/erp-api/internal/application/service"
	"github.com/ibrhamsworld/erp-api/internal/domain/repository"
	"github.com/ibrhamsworld/erp-api/internal/presentation/http/dto/request"
	"github.com/ibrhamsworld/erp-api/internal/presentation/http/dto/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// InventoryHandler handles stock HTTP requests
type InventoryHandler struct {
	inventoryService *service.InventoryService
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(inventoryService *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// List handles listing stock levels
func (h *InventoryHandler) List(c *gin.Context) {
	var req request.ProductFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindingError(c, err)
		return
	}

	result, err := h.inventoryService.StockLevels(c.Request.Context(), &repository.ProductFilterParams{
		Pagination: pageParams(req.Page, req.PerPage),
		Search:     req.Search,
		BranchID:   optionalUUID(req.BranchID),
		LowStock:   req.LowStock,
		SortBy:     req.SortBy,
		SortOrder:  req.SortOrder,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, "Stock levels retrieved successfully", result)
}

// LowStock handles listing products at or below their alert level
func (h *InventoryHandler) LowStock(c *gin.Context) {
	levels, err := h.inventoryService.LowStock(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Low stock products retrieved successfully", levels)
}

// Adjust handles a manual stock adjustment
func (h *InventoryHandler) Adjust(c *gin.Context) {
	id, ok := pathID(c, "id", "product")
	if !ok {
		return
	}

	var req request.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindingError(c, err)
		return
	}

	level, err := h.inventoryService.AdjustStock(c.Request.Context(), id, *req.DeltaKg, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Stock adjusted successfully", level)
}

// Export handles downloading the stock report as an Excel workbook
func (h *InventoryHandler) Export(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.inventoryService.ExportXLSX(c.Request.Context(), &buf); err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("inventory-%s.xlsx", time.Now().Format(dateLayout))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(200, xlsxContentType, buf.Bytes())
}

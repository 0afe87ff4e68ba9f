package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/ibrhamsworld/erp-api/internal/application/service"
	"github.com/ibrhamsworld/erp-api/internal/presentation/http/dto/request"
	"github.com/ibrhamsworld/erp-api/internal/presentation/http/dto/response"
)

// PricingHandler handles price management HTTP requests
type PricingHandler struct {
	pricingService *service.PricingService
}

// NewPricingHandler creates a new pricing handler
func NewPricingHandler(pricingService *service.PricingService) *PricingHandler {
	return &PricingHandler{pricingService: pricingService}
}

// Current handles listing the current price of every product and variant
func (h *PricingHandler) Current(c *gin.Context) {
	prices, err := h.pricingService.CurrentPricing(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Pricing retrieved successfully", prices)
}

// UpdatePrice handles changing a product or variant price
func (h *PricingHandler) UpdatePrice(c *gin.Context) {
	id, ok := pathID(c, "id", "product")
	if !ok {
		return
	}

	var req request.UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindingError(c, err)
		return
	}

	change, err := h.pricingService.UpdatePrice(c.Request.Context(), &service.UpdatePriceInput{
		ProductID: id,
		VariantID: req.VariantID,
		NewPrice:  *req.NewPrice,
		ChangedBy: req.ChangedBy,
		Reason:    req.Reason,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Price updated successfully", change)
}

// History handles listing price changes, newest first
func (h *PricingHandler) History(c *gin.Context) {
	var req request.PriceHistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindingError(c, err)
		return
	}

	result, err := h.pricingService.PriceHistory(c.Request.Context(), optionalUUID(req.ProductID), pageParams(req.Page, req.PerPage))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, "Price history retrieved successfully", result)
}

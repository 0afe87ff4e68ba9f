package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/ibrhamsworld/erp-api/internal/application/service"
	"github.com/ibrhamsworld/erp-api/internal/domain/repository"
	"github.com/ibrhamsworld/erp-api/internal/presentation/http/dto/request"
	"github.com/ibrhamsworld/erp-api/internal/presentation/http/dto/response"
)

// ProductHandler handles product and variant HTTP requests
type ProductHandler struct {
	catalogService *service.CatalogService
}

// NewProductHandler creates a new product handler
func NewProductHandler(catalogService *service.CatalogService) *ProductHandler {
	return &ProductHandler{catalogService: catalogService}
}

// List handles listing products
func (h *ProductHandler) List(c *gin.Context) {
	var filter request.ProductFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BindingError(c, err)
		return
	}

	params := &repository.ProductFilterParams{
		Pagination: pageParams(filter.Page, filter.PerPage),
		Search:     filter.Search,
		BranchID:   optionalUUID(filter.BranchID),
		LowStock:   filter.LowStock,
		SortBy:     filter.SortBy,
		SortOrder:  filter.SortOrder,
	}

	result, err := h.catalogService.ListProducts(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, "Products retrieved successfully", result)
}

// Create handles creating a new product
func (h *ProductHandler) Create(c *gin.Context) {
	var req request.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindingError(c, err)
		return
	}

	input := &service.CreateProductInput{
		BranchID:        req.BranchID,
		Name:            req.Name,
		Code:            req.Code,
		Description:     req.Description,
		PricePerKg:      req.PricePerKg,
		StockKg:         req.StockKg,
		LowStockAlertKg: req.LowStockAlertKg,
	}
	for _, v := range req.Variants {
		input.Variants = append(input.Variants, service.VariantInput{Name: v.Name, PricePerKg: v.PricePerKg})
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Product created successfully", product)
}

// Get handles getting a single product with its variants
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "product")
	if !ok {
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Product retrieved successfully", product)
}

// Update handles updating a product
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id", "product")
	if !ok {
		return
	}

	var req request.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindingError(c, err)
		return
	}

	product, err := h.catalogService.UpdateProduct(c.Request.Context(), id, &service.UpdateProductInput{
		BranchID:        req.BranchID,
		Name:            req.Name,
		Code:            req.Code,
		Description:     req.Description,
		LowStockAlertKg: req.LowStockAlertKg,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Product updated successfully", product)
}

// Delete handles deleting a product
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id", "product")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteProduct(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AddVariant handles adding a variant to a product
func (h *ProductHandler) AddVariant(c *gin.Context) {
	id, ok := pathID(c, "id", "product")
	if !ok {
		return
	}

	var req request.VariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindingError(c, err)
		return
	}

	variant, err := h.catalogService.AddVariant(c.Request.Context(), id, req.Name, req.PricePerKg)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Variant created successfully", variant)
}

// UpdateVariant handles renaming a variant
func (h *ProductHandler) UpdateVariant(c *gin.Context) {
	id, ok := pathID(c, "id", "product")
	if !ok {
		return
	}
	variantID, ok := pathID(c, "variant_id", "variant")
	if !ok {
		return
	}

	var req request.UpdateVariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindingError(c, err)
		return
	}

	variant, err := h.catalogService.UpdateVariant(c.Request.Context(), id, variantID, req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Variant updated successfully", variant)
}

// DeleteVariant handles deleting a variant
func (h *ProductHandler) DeleteVariant(c *gin.Context) {
	id, ok := pathID(c, "id", "product")
	if !ok {
		return
	}
	variantID, ok := pathID(c, "variant_id", "variant")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteVariant(c.Request.Context(), id, variantID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListBranches handles listing branches
func (h *ProductHandler) ListBranches(c *gin.Context) {
	branches, err := h.catalogService.ListBranches(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Branches retrieved successfully", branches)
}

// CreateBranch handles creating a branch
func (h *ProductHandler) CreateBranch(c *gin.Context) {
	var req request.CreateBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindingError(c, err)
		return
	}

	branch, err := h.catalogService.CreateBranch(c.Request.Context(), req.Name, req.Location, req.Contact)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Branch created successfully", branch)
}

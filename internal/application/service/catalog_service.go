package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/ibrhamsworld/erp-api/internal/domain/entity"
	"github.com/ibrhamsworld/erp-api/internal/domain/repository"
	infraRepo "github.com/ibrhamsworld/erp-api/internal/infrastructure/repository"
	"github.com/ibrhamsworld/erp-api/pkg/apperror"
	"github.com/ibrhamsworld/erp-api/pkg/pagination"
	"github.com/ibrhamsworld/erp-api/pkg/utils"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CatalogService handles products, variants and branches
type CatalogService struct {
	productRepo repository.ProductRepository
	variantRepo repository.ProductVariantRepository
	branchRepo  repository.BranchRepository
	prices      *PriceResolver
	// defaultAlertKg applies to products without their own alert level
	defaultAlertKg decimal.Decimal
	log            zerolog.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(
	productRepo repository.ProductRepository,
	variantRepo repository.ProductVariantRepository,
	branchRepo repository.BranchRepository,
	prices *PriceResolver,
	defaultAlertKg decimal.Decimal,
	log zerolog.Logger,
) *CatalogService {
	return &CatalogService{
		productRepo:    productRepo,
		variantRepo:    variantRepo,
		branchRepo:     branchRepo,
		prices:         prices,
		defaultAlertKg: defaultAlertKg,
		log:            log,
	}
}

// VariantInput is a variant created together with its product
type VariantInput struct {
	Name       string
	PricePerKg decimal.Decimal
}

// CreateProductInput represents the create product input
type CreateProductInput struct {
	BranchID        *uuid.UUID // defaults to the main branch
	Name            string
	Code            string
	Description     *string
	PricePerKg      decimal.Decimal
	StockKg         decimal.Decimal
	LowStockAlertKg *decimal.Decimal
	Variants        []VariantInput
}

// UpdateProductInput represents the update product input. Prices change
// through PricingService and stock through InventoryService so both keep
// their audit trail.
type UpdateProductInput struct {
	BranchID        *uuid.UUID
	Name            *string
	Code            *string
	Description     *string
	LowStockAlertKg *decimal.Decimal
}

func validateProductName(name string) *apperror.AppError {
	n := len([]rune(strings.TrimSpace(name)))
	if n < 2 || n > 255 {
		return apperror.NewFieldError("name", "Name must be between 2 and 255 characters")
	}
	return nil
}

func validateNonNegative(field string, v decimal.Decimal, message string) *apperror.AppError {
	if v.IsNegative() {
		return apperror.NewFieldError(field, message)
	}
	return nil
}

// CreateProduct creates a new product
func (s *CatalogService) CreateProduct(ctx context.Context, input *CreateProductInput) (*entity.Product, error) {
	if err := validateProductName(input.Name); err != nil {
		return nil, err
	}
	if err := validateNonNegative("price_per_kg", input.PricePerKg, "Price must not be negative"); err != nil {
		return nil, err
	}
	if err := validateNonNegative("stock_kg", input.StockKg, "Stock must not be negative"); err != nil {
		return nil, err
	}
	if input.LowStockAlertKg != nil {
		if err := validateNonNegative("low_stock_alert_kg", *input.LowStockAlertKg, "Low stock alert must not be negative"); err != nil {
			return nil, err
		}
	}
	for _, v := range input.Variants {
		if strings.TrimSpace(v.Name) == "" {
			return nil, apperror.NewFieldError("variants", "Variant name is required")
		}
		if v.PricePerKg.IsNegative() {
			return nil, apperror.NewFieldError("variants", "Variant price must not be negative")
		}
	}

	branchID, err := s.resolveBranch(ctx, input.BranchID)
	if err != nil {
		return nil, err
	}

	// Auto-generate code if not provided
	code := strings.TrimSpace(input.Code)
	if code == "" {
		code = utils.GenerateProductCode()
	}

	existing, err := s.productRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Product code already exists")
	}

	name := strings.TrimSpace(input.Name)
	product := &entity.Product{
		BranchID:    branchID,
		Name:        name,
		Slug:        utils.Slugify(name),
		Code:        code,
		Description: input.Description,
		PricePerKg:  input.PricePerKg,
		StockKg:     input.StockKg,
	}
	if input.LowStockAlertKg != nil {
		product.LowStockAlertKg = decimal.NewNullDecimal(*input.LowStockAlertKg)
	}
	for _, v := range input.Variants {
		product.Variants = append(product.Variants, entity.ProductVariant{
			Name:       strings.TrimSpace(v.Name),
			PricePerKg: v.PricePerKg,
		})
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		if infraRepo.IsDuplicateKey(err) {
			return nil, apperror.NewConflictError("Product code already exists")
		}
		return nil, err
	}

	s.log.Info().Str("product_id", product.ID.String()).Str("code", product.Code).Msg("Product created")
	return s.productRepo.GetByID(ctx, product.ID)
}

func (s *CatalogService) resolveBranch(ctx context.Context, id *uuid.UUID) (uuid.UUID, error) {
	if id != nil {
		branch, err := s.branchRepo.GetByID(ctx, *id)
		if err != nil {
			return uuid.Nil, err
		}
		if branch == nil {
			return uuid.Nil, apperror.NewNotFoundError("Branch")
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

// GetProduct retrieves a product by ID
func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// ListProducts lists products with filtering and pagination
func (s *CatalogService) ListProducts(ctx context.Context, params *repository.ProductFilterParams) (*pagination.PaginatedResult[entity.Product], error) {
	params.DefaultAlertKg = s.defaultAlertKg
	products, total, err := s.productRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(products, pag), nil
}

// UpdateProduct updates a product's descriptive fields
func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, input *UpdateProductInput) (*entity.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if err := validateProductName(*input.Name); err != nil {
			return nil, err
		}
		product.Name = strings.TrimSpace(*input.Name)
		product.Slug = utils.Slugify(product.Name)
	}
	if input.Code != nil {
		code := strings.TrimSpace(*input.Code)
		if code == "" {
			return nil, apperror.NewFieldError("code", "Code must not be empty")
		}
		if code != product.Code {
			existing, err := s.productRepo.GetByCode(ctx, code)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				return nil, apperror.NewConflictError("Product code already exists")
			}
			product.Code = code
		}
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.LowStockAlertKg != nil {
		if err := validateNonNegative("low_stock_alert_kg", *input.LowStockAlertKg, "Low stock alert must not be negative"); err != nil {
			return nil, err
		}
		product.LowStockAlertKg = decimal.NewNullDecimal(*input.LowStockAlertKg)
	}
	if input.BranchID != nil {
		branchID, err := s.resolveBranch(ctx, input.BranchID)
		if err != nil {
			return nil, err
		}
		product.BranchID = branchID
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		if infraRepo.IsDuplicateKey(err) {
			return nil, apperror.NewConflictError("Product code already exists")
		}
		return nil, err
	}
	return s.productRepo.GetByID(ctx, id)
}

// DeleteProduct soft-deletes a product
func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.prices.Invalidate(ctx, id)
	s.log.Info().Str("product_id", id.String()).Msg("Product deleted")
	return nil
}

// AddVariant adds a priced variant to a product
func (s *CatalogService) AddVariant(ctx context.Context, productID uuid.UUID, name string, price decimal.Decimal) (*entity.ProductVariant, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperror.NewFieldError("name", "Variant name is required")
	}
	if err := validateNonNegative("price_per_kg", price, "Price must not be negative"); err != nil {
		return nil, err
	}
	if _, err := s.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	variant := &entity.ProductVariant{
		ProductID:  productID,
		Name:       strings.TrimSpace(name),
		PricePerKg: price,
	}
	if err := s.variantRepo.Create(ctx, variant); err != nil {
		return nil, err
	}
	s.prices.Invalidate(ctx, productID)
	return variant, nil
}

func (s *CatalogService) getVariant(ctx context.Context, productID, variantID uuid.UUID) (*entity.ProductVariant, error) {
	variant, err := s.variantRepo.GetByID(ctx, variantID)
	if err != nil {
		return nil, err
	}
	if variant == nil || variant.ProductID != productID {
		return nil, apperror.NewNotFoundError("Variant")
	}
	return variant, nil
}

// UpdateVariant renames a variant
func (s *CatalogService) UpdateVariant(ctx context.Context, productID, variantID uuid.UUID, name string) (*entity.ProductVariant, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperror.NewFieldError("name", "Variant name is required")
	}
	variant, err := s.getVariant(ctx, productID, variantID)
	if err != nil {
		return nil, err
	}
	variant.Name = strings.TrimSpace(name)
	if err := s.variantRepo.Update(ctx, variant); err != nil {
		return nil, err
	}
	return variant, nil
}

// DeleteVariant soft-deletes a variant
func (s *CatalogService) DeleteVariant(ctx context.Context, productID, variantID uuid.UUID) error {
	if _, err := s.getVariant(ctx, productID, variantID); err != nil {
		return err
	}
	if err := s.variantRepo.Delete(ctx, variantID); err != nil {
		return err
	}
	s.prices.Invalidate(ctx, productID)
	return nil
}

// CreateBranch creates a shop location
func (s *CatalogService) CreateBranch(ctx context.Context, name, location, contact string) (*entity.Branch, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.NewFieldError("name", "Name is required")
	}

	existing, err := s.branchRepo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Branch already exists")
	}

	branch := &entity.Branch{Name: name, Location: strings.TrimSpace(location), Contact: strings.TrimSpace(contact)}
	if err := s.branchRepo.Create(ctx, branch); err != nil {
		if infraRepo.IsDuplicateKey(err) {
			return nil, apperror.NewConflictError("Branch already exists")
		}
		return nil, err
	}
	return branch, nil
}

// ListBranches returns all branches
func (s *CatalogService) ListBranches(ctx context.Context) ([]entity.Branch, error) {
	return s.branchRepo.List(ctx)
}

package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ibrhamsworld/erp-api/internal/domain/entity"
	"github.com/ibrhamsworld/erp-api/internal/domain/repository"
	"github.com/ibrhamsworld/erp-api/internal/infrastructure/events"
	"github.com/ibrhamsworld/erp-api/internal/infrastructure/metrics"
	"github.com/ibrhamsworld/erp-api/pkg/apperror"
	"github.com/ibrhamsworld/erp-api/pkg/pagination"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// PricingService manages catalog prices and their audit trail
type PricingService struct {
	productRepo repository.ProductRepository
	variantRepo repository.ProductVariantRepository
	historyRepo repository.PriceChangeRepository
	tx          repository.Transactor
	prices      *PriceResolver
	publisher   events.Publisher
	metrics     *metrics.Metrics
	log         zerolog.Logger
}

// NewPricingService creates a new pricing service
func NewPricingService(
	productRepo repository.ProductRepository,
	variantRepo repository.ProductVariantRepository,
	historyRepo repository.PriceChangeRepository,
	tx repository.Transactor,
	prices *PriceResolver,
	publisher events.Publisher,
	m *metrics.Metrics,
	log zerolog.Logger,
) *PricingService {
	return &PricingService{
		productRepo: productRepo,
		variantRepo: variantRepo,
		historyRepo: historyRepo,
		tx:          tx,
		prices:      prices,
		publisher:   publisher,
		metrics:     m,
		log:         log,
	}
}

// VariantPrice is the current price of a variant
type VariantPrice struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	PricePerKg  decimal.Decimal `json:"price_per_kg"`
	LastUpdated time.Time       `json:"last_updated"`
}

// ProductPricing is the current pricing of a product and its variants
type ProductPricing struct {
	ProductID   uuid.UUID       `json:"product_id"`
	Name        string          `json:"name"`
	Code        string          `json:"code"`
	PricePerKg  decimal.Decimal `json:"price_per_kg"`
	LastUpdated time.Time       `json:"last_updated"`
	Variants    []VariantPrice  `json:"variants"`
}

// CurrentPricing lists every product with its current prices
func (s *PricingService) CurrentPricing(ctx context.Context) ([]ProductPricing, error) {
	products, err := s.productRepo.ListAll(ctx, &repository.ProductFilterParams{})
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	// ListAll skips variants; load them in one batch.
	withVariants, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	variants := make(map[uuid.UUID][]entity.ProductVariant, len(withVariants))
	for _, p := range withVariants {
		variants[p.ID] = p.Variants
	}

	result := make([]ProductPricing, 0, len(products))
	for _, p := range products {
		item := ProductPricing{
			ProductID:   p.ID,
			Name:        p.Name,
			Code:        p.Code,
			PricePerKg:  p.PricePerKg,
			LastUpdated: p.UpdatedAt,
			Variants:    make([]VariantPrice, 0, len(variants[p.ID])),
		}
		for _, v := range variants[p.ID] {
			item.Variants = append(item.Variants, VariantPrice{
				ID:          v.ID,
				Name:        v.Name,
				PricePerKg:  v.PricePerKg,
				LastUpdated: v.UpdatedAt,
			})
		}
		result = append(result, item)
	}
	return result, nil
}

// UpdatePriceInput represents a price change request
type UpdatePriceInput struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	NewPrice  decimal.Decimal
	ChangedBy string
	Reason    string
}

// UpdatePrice changes a product or variant price and records the change
func (s *PricingService) UpdatePrice(ctx context.Context, input *UpdatePriceInput) (*entity.PriceChange, error) {
	var fieldErrors []apperror.FieldError
	if input.NewPrice.IsNegative() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "new_price", Message: "Price must not be negative"})
	}
	if strings.TrimSpace(input.ChangedBy) == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "changed_by", Message: "Changed by is required"})
	}
	if strings.TrimSpace(input.Reason) == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "reason", Message: "Reason is required"})
	}
	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}

	var change *entity.PriceChange
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		product, err := s.productRepo.GetByID(ctx, input.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return apperror.NewNotFoundError("Product")
		}

		change = &entity.PriceChange{
			ProductID:   product.ID,
			ProductName: product.Name,
			NewPrice:    input.NewPrice,
			ChangedBy:   strings.TrimSpace(input.ChangedBy),
			Reason:      strings.TrimSpace(input.Reason),
		}

		if input.VariantID != nil {
			variant := product.FindVariant(*input.VariantID)
			if variant == nil {
				return apperror.NewNotFoundError("Variant")
			}
			if variant.PricePerKg.Equal(input.NewPrice) {
				return apperror.NewBadRequestError("New price is the same as the current price")
			}
			change.VariantID = &variant.ID
			change.VariantName = variant.Name
			change.OldPrice = variant.PricePerKg
			if err := s.variantRepo.UpdatePrice(ctx, variant.ID, input.NewPrice); err != nil {
				return err
			}
		} else {
			if product.PricePerKg.Equal(input.NewPrice) {
				return apperror.NewBadRequestError("New price is the same as the current price")
			}
			change.OldPrice = product.PricePerKg
			if err := s.productRepo.UpdatePrice(ctx, product.ID, input.NewPrice); err != nil {
				return err
			}
		}

		return s.historyRepo.Create(ctx, change)
	})
	if err != nil {
		return nil, err
	}

	s.prices.Invalidate(ctx, input.ProductID)
	s.metrics.PriceChanged()
	if err := s.publisher.PublishPriceChanged(ctx, change); err != nil {
		s.log.Warn().Err(err).Str("product_id", change.ProductID.String()).Msg("price.changed event not published")
	}

	s.log.Info().
		Str("product_id", change.ProductID.String()).
		Str("old_price", change.OldPrice.String()).
		Str("new_price", change.NewPrice.String()).
		Str("changed_by", change.ChangedBy).
		Msg("Price updated")
	return change, nil
}

// PriceHistory lists price changes newest first, optionally for one product
func (s *PricingService) PriceHistory(ctx context.Context, productID *uuid.UUID, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.PriceChange], error) {
	changes, total, err := s.historyRepo.List(ctx, productID, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(changes, pag), nil
}

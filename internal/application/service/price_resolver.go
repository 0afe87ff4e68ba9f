package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/ibrhamsworld/erp-api/internal/domain/repository"
	"github.com/ibrhamsworld/erp-api/internal/infrastructure/cache"
	"github.com/ibrhamsworld/erp-api/internal/infrastructure/metrics"
	"github.com/ibrhamsworld/erp-api/pkg/pricing"
	"github.com/rs/zerolog"
)

// PriceResolver builds price tables for line items, reading through the
// price cache and falling back to the catalog.
type PriceResolver struct {
	productRepo repository.ProductRepository
	cache       cache.PriceCache
	metrics     *metrics.Metrics
	log         zerolog.Logger
}

// NewPriceResolver creates a new price resolver
func NewPriceResolver(
	productRepo repository.ProductRepository,
	priceCache cache.PriceCache,
	m *metrics.Metrics,
	log zerolog.Logger,
) *PriceResolver {
	if priceCache == nil {
		priceCache = cache.NoopPriceCache{}
	}
	return &PriceResolver{
		productRepo: productRepo,
		cache:       priceCache,
		metrics:     m,
		log:         log,
	}
}

// Resolve returns the current prices of every product referenced by items.
// Products that do not exist are left out of the table.
func (r *PriceResolver) Resolve(ctx context.Context, items []pricing.LineItem) (pricing.PriceTable, error) {
	table := pricing.NewPriceTable()

	seen := make(map[uuid.UUID]struct{}, len(items))
	var ids []uuid.UUID
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}

	var misses []uuid.UUID
	hits, failures := 0, 0
	for _, id := range ids {
		entry, err := r.cache.Get(ctx, id)
		if err != nil {
			failures++
			r.log.Warn().Err(err).Str("product_id", id.String()).Msg("Price cache read failed, using database")
			misses = append(misses, id)
			continue
		}
		if entry == nil {
			misses = append(misses, id)
			continue
		}
		hits++
		table[id] = *entry
	}
	r.metrics.CacheLookup("hit", hits)
	r.metrics.CacheLookup("miss", len(misses)-failures)
	r.metrics.CacheLookup("error", failures)

	if len(misses) == 0 {
		return table, nil
	}

	products, err := r.productRepo.GetByIDs(ctx, misses)
	if err != nil {
		return nil, fmt.Errorf("load product prices: %w", err)
	}
	for i := range products {
		entry := products[i].PriceEntry()
		table[products[i].ID] = entry
		if err := r.cache.Set(ctx, products[i].ID, entry); err != nil {
			r.log.Warn().Err(err).Str("product_id", products[i].ID.String()).Msg("Price cache write failed")
		}
	}

	return table, nil
}

// Invalidate drops a product's cached prices after a change.
func (r *PriceResolver) Invalidate(ctx context.Context, productID uuid.UUID) {
	if err := r.cache.Delete(ctx, productID); err != nil {
		r.log.Warn().Err(err).Str("product_id", productID.String()).Msg("Price cache invalidation failed")
	}
}

// Package cache keeps catalog prices in Redis so quotes do not hit the
// database for every keystroke on the sales form.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ibrhamsworld/erp-api/internal/config"
	"github.com/ibrhamsworld/erp-api/pkg/pricing"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	priceKeyPrefix  = "price:"
	defaultPriceTTL = 10 * time.Minute
)

// PriceCache stores the price entry of one product.
// Get returns (nil, nil) on a miss.
type PriceCache interface {
	Get(ctx context.Context, productID uuid.UUID) (*pricing.PriceEntry, error)
	Set(ctx context.Context, productID uuid.UUID, entry pricing.PriceEntry) error
	Delete(ctx context.Context, productID uuid.UUID) error
	Close() error
}

// RedisPriceCache implements PriceCache with JSON values in Redis.
type RedisPriceCache struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewRedisPriceCache creates a Redis-backed price cache.
func NewRedisPriceCache(cfg config.RedisConfig, log zerolog.Logger) *RedisPriceCache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisPriceCacheWithClient(client, cfg.TTL, log)
}

// NewRedisPriceCacheWithClient wraps an existing client.
func NewRedisPriceCacheWithClient(client *redis.Client, ttl time.Duration, log zerolog.Logger) *RedisPriceCache {
	if ttl <= 0 {
		ttl = defaultPriceTTL
	}
	return &RedisPriceCache{
		client: client,
		ttl:    ttl,
		log:    log.With().Str("component", "price-cache").Logger(),
	}
}

// New returns a Redis cache when an address is configured, otherwise a no-op cache.
func New(cfg config.RedisConfig, log zerolog.Logger) PriceCache {
	if cfg.Addr == "" {
		log.Info().Msg("Redis not configured, price cache disabled")
		return NoopPriceCache{}
	}
	return NewRedisPriceCache(cfg, log)
}

// PriceKey returns the Redis key for a product's prices.
func PriceKey(productID uuid.UUID) string {
	return priceKeyPrefix + productID.String()
}

// Ping checks connectivity.
func (c *RedisPriceCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisPriceCache) Get(ctx context.Context, productID uuid.UUID) (*pricing.PriceEntry, error) {
	data, err := c.client.Get(ctx, PriceKey(productID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var entry pricing.PriceEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		// A corrupt value is treated as a miss and overwritten on the next Set.
		c.log.Warn().Err(err).Str("product_id", productID.String()).Msg("Discarding undecodable cached price")
		return nil, nil
	}
	return &entry, nil
}

func (c *RedisPriceCache) Set(ctx context.Context, productID uuid.UUID, entry pricing.PriceEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, PriceKey(productID), data, c.ttl).Err()
}

func (c *RedisPriceCache) Delete(ctx context.Context, productID uuid.UUID) error {
	return c.client.Del(ctx, PriceKey(productID)).Err()
}

// Close closes the Redis client.
func (c *RedisPriceCache) Close() error {
	return c.client.Close()
}

// NoopPriceCache never stores anything; every Get is a miss.
type NoopPriceCache struct{}

func (NoopPriceCache) Get(context.Context, uuid.UUID) (*pricing.PriceEntry, error) { return nil, nil }
func (NoopPriceCache) Set(context.Context, uuid.UUID, pricing.PriceEntry) error    { return nil }
func (NoopPriceCache) Delete(context.Context, uuid.UUID) error                     { return nil }
func (NoopPriceCache) Close() error                                                { return nil }

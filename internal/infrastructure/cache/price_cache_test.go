package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ibrhamsworld/erp-api/internal/config"
	"github.com/ibrhamsworld/erp-api/pkg/logger"
	"github.com/ibrhamsworld/erp-api/pkg/pricing"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceKey(t *testing.T) {
	id := uuid.MustParse("6f1c2d7e-3b4a-4c5d-8e9f-0a1b2c3d4e5f")
	assert.Equal(t, "price:6f1c2d7e-3b4a-4c5d-8e9f-0a1b2c3d4e5f", PriceKey(id))
}

func TestNew_WithoutAddressIsNoop(t *testing.T) {
	c := New(config.RedisConfig{}, logger.Nop())
	_, ok := c.(NoopPriceCache)
	assert.True(t, ok)
}

func TestNoopPriceCache(t *testing.T) {
	ctx := context.Background()
	c := NoopPriceCache{}
	id := uuid.New()

	require.NoError(t, c.Set(ctx, id, pricing.PriceEntry{ProductPrice: decimal.NewFromInt(1000)}))
	entry, err := c.Get(ctx, id)
	assert.NoError(t, err)
	assert.Nil(t, entry)
	assert.NoError(t, c.Delete(ctx, id))
	assert.NoError(t, c.Close())
}

func TestRedisPriceCache_DefaultTTL(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	c := NewRedisPriceCacheWithClient(client, 0, logger.Nop())
	defer c.Close()
	assert.Equal(t, defaultPriceTTL, c.ttl)
}

func TestRedisPriceCache_UnreachableServerReturnsError(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	c := NewRedisPriceCacheWithClient(client, time.Minute, logger.Nop())
	defer c.Close()

	entry, err := c.Get(context.Background(), uuid.New())
	assert.Error(t, err)
	assert.Nil(t, entry)
}

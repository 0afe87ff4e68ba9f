package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "IBR", cfg.Company.ReceiptPrefix)
	assert.Equal(t, 10*time.Minute, cfg.Redis.TTL)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, "none", cfg.Printer.Type)
	assert.Equal(t, "100", cfg.Inventory.LowStockThresholdKg.String())
	assert.Contains(t, cfg.CORS.AllowedHeaders, "Idempotency-Key")
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DB_PATH", "/tmp/erp.db")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_PRICE_TTL", "30s")
	t.Setenv("LOW_STOCK_THRESHOLD_KG", "250.5")
	t.Setenv("RATE_LIMIT_DURATION", "30")

	cfg := Load()

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/erp.db", cfg.Database.Path)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 30*time.Second, cfg.Redis.TTL)
	assert.Equal(t, "250.5", cfg.Inventory.LowStockThresholdKg.String())
	assert.Equal(t, 30*time.Second, cfg.RateLimit.RateWindow())
}

func TestLoad_BadThresholdFallsBack(t *testing.T) {
	t.Setenv("LOW_STOCK_THRESHOLD_KG", "lots")
	assert.Equal(t, "100", Load().Inventory.LowStockThresholdKg.String())
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", User: "erp", Password: "secret", Name: "erp", Port: "5432", SSLMode: "disable", Timezone: "Africa/Lagos"}
	assert.Equal(t, "host=db user=erp password=secret dbname=erp port=5432 sslmode=disable TimeZone=Africa/Lagos", c.DSN())
}

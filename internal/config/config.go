package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Printer   PrinterConfig
	Company   CompanyConfig
	Inventory InventoryConfig
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

type DatabaseConfig struct {
	Driver   string // postgres or sqlite
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
	Path     string // sqlite file
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int // seconds
}

// RedisConfig configures the catalog price cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// KafkaConfig configures domain event publishing. No brokers disables it.
type KafkaConfig struct {
	Brokers      []string
	SalesTopic   string
	PricingTopic string
}

type PrinterConfig struct {
	Type      string // usb, network or none
	USBPath   string
	Address   string
	CharWidth int
}

// CompanyConfig is printed in receipt headers.
type CompanyConfig struct {
	Name          string
	Address       string
	Phone         string
	ReceiptPrefix string
}

type InventoryConfig struct {
	// LowStockThresholdKg applies to products without their own alert level.
	LowStockThresholdKg decimal.Decimal
}

// Load reads .env (when present) and the process environment.
func Load() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return &Config{
		App: AppConfig{
			Name:  v.GetString("APP_NAME"),
			Env:   v.GetString("APP_ENV"),
			Port:  v.GetString("APP_PORT"),
			Debug: v.GetBool("APP_DEBUG"),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(v.GetString("DB_DRIVER")),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			SSLMode:  v.GetString("DB_SSL_MODE"),
			Timezone: v.GetString("DB_TIMEZONE"),
			Path:     v.GetString("DB_PATH"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
			AllowedMethods: splitList(v.GetString("CORS_ALLOWED_METHODS")),
			AllowedHeaders: splitList(v.GetString("CORS_ALLOWED_HEADERS")),
		},
		RateLimit: RateLimitConfig{
			Requests: v.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: v.GetInt("RATE_LIMIT_DURATION"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			TTL:      v.GetDuration("REDIS_PRICE_TTL"),
		},
		Kafka: KafkaConfig{
			Brokers:      splitList(v.GetString("KAFKA_BROKERS")),
			SalesTopic:   v.GetString("KAFKA_SALES_TOPIC"),
			PricingTopic: v.GetString("KAFKA_PRICING_TOPIC"),
		},
		Printer: PrinterConfig{
			Type:      v.GetString("PRINTER_TYPE"),
			USBPath:   v.GetString("PRINTER_USB_PATH"),
			Address:   v.GetString("PRINTER_ADDRESS"),
			CharWidth: v.GetInt("PRINTER_CHAR_WIDTH"),
		},
		Company: CompanyConfig{
			Name:          v.GetString("COMPANY_NAME"),
			Address:       v.GetString("COMPANY_ADDRESS"),
			Phone:         v.GetString("COMPANY_PHONE"),
			ReceiptPrefix: v.GetString("RECEIPT_PREFIX"),
		},
		Inventory: InventoryConfig{
			LowStockThresholdKg: decimalOr(v.GetString("LOW_STOCK_THRESHOLD_KG"), decimal.NewFromInt(100)),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "ibrhams-erp-api")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_DEBUG", true)

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "ibrhams_erp")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_TIMEZONE", "Africa/Lagos")
	v.SetDefault("DB_PATH", "erp.db")

	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("CORS_ALLOWED_METHODS", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
	v.SetDefault("CORS_ALLOWED_HEADERS", "Origin,Content-Type,Accept,Idempotency-Key,X-Request-ID")

	v.SetDefault("RATE_LIMIT_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_DURATION", 60)

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_PRICE_TTL", "10m")

	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_SALES_TOPIC", "erp.sales")
	v.SetDefault("KAFKA_PRICING_TOPIC", "erp.pricing")

	v.SetDefault("PRINTER_TYPE", "none")
	v.SetDefault("PRINTER_CHAR_WIDTH", 32)

	v.SetDefault("COMPANY_NAME", "IBRHAMS WORLD")
	v.SetDefault("COMPANY_ADDRESS", "Lagos, Nigeria")
	v.SetDefault("COMPANY_PHONE", "")
	v.SetDefault("RECEIPT_PREFIX", "IBR")

	v.SetDefault("LOW_STOCK_THRESHOLD_KG", "100")
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}

// IsProduction reports whether the service runs with APP_ENV=production.
func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}

// RateWindow returns the rate limit window as a duration.
func (c *RateLimitConfig) RateWindow() time.Duration {
	return time.Duration(c.Duration) * time.Second
}

// splitList parses comma separated env values, ignoring blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func decimalOr(s string, fallback decimal.Decimal) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return d
}

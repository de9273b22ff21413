package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Payment  PaymentConfig
	Storage  StorageConfig
	Cache    CacheConfig
	Broker   BrokerConfig
	Orders   OrdersConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string
}

// DatabaseConfig selects the GORM dialect and its DSN.
type DatabaseConfig struct {
	Driver string // postgres, mysql or sqlite
	DSN    string
}

// AuthConfig holds identity token verification settings.
type AuthConfig struct {
	JWTSecret        string
	AdminExternalIDs []string
}

// PaymentConfig holds payment processor credentials. An empty KeySecret puts
// signature verification into demo mode.
type PaymentConfig struct {
	KeyID     string
	KeySecret string
	BaseURL   string
	Currency  string
	Timeout   time.Duration
}

// GatewayEnabled reports whether processor orders should be created at checkout.
func (c PaymentConfig) GatewayEnabled() bool {
	return c.KeyID != "" && c.KeySecret != ""
}

// StorageConfig holds object storage settings for product images.
type StorageConfig struct {
	S3Enabled     bool
	Bucket        string
	Region        string
	Prefix        string
	PublicBaseURL string
}

// CacheConfig holds the Redis read cache settings. An empty Addr disables caching.
type CacheConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

// BrokerConfig holds the RabbitMQ connection. An empty URL disables event publishing.
type BrokerConfig struct {
	URL      string
	Exchange string
	Consume  bool
}

// OrdersConfig holds order lifecycle policy switches.
type OrdersConfig struct {
	EnforceTransitions bool
	VerifyTotal        bool
}

// LogConfig holds logger configuration.
type LogConfig struct {
	Level  string
	Format string // "json" or "console"
}

// SetDefaults registers every key with its default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DATABASE_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=jammal port=5432 sslmode=disable")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("ADMIN_EXTERNAL_IDS", "")
	v.SetDefault("RAZORPAY_KEY_ID", "")
	v.SetDefault("RAZORPAY_KEY_SECRET", "")
	v.SetDefault("RAZORPAY_BASE_URL", "https://api.razorpay.com")
	v.SetDefault("RAZORPAY_CURRENCY", "INR")
	v.SetDefault("RAZORPAY_TIMEOUT", "10s")
	v.SetDefault("S3_ENABLED", false)
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_REGION", "ap-south-1")
	v.SetDefault("S3_PREFIX", "products/")
	v.SetDefault("S3_PUBLIC_BASE_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "orders")
	v.SetDefault("RABBITMQ_CONSUME", false)
	v.SetDefault("ORDERS_ENFORCE_TRANSITIONS", false)
	v.SetDefault("CHECKOUT_VERIFY_TOTAL", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

// Load reads configuration from the environment and, when CONFIG_FILE is set,
// from that file. Environment variables win over the file.
func Load() (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	return FromViper(v)
}

// FromViper builds and validates a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("APP_PORT"),
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(v.GetString("DB_DRIVER")),
			DSN:    v.GetString("DATABASE_DSN"),
		},
		Auth: AuthConfig{
			JWTSecret:        v.GetString("JWT_SECRET"),
			AdminExternalIDs: splitList(v.GetString("ADMIN_EXTERNAL_IDS")),
		},
		Payment: PaymentConfig{
			KeyID:     v.GetString("RAZORPAY_KEY_ID"),
			KeySecret: v.GetString("RAZORPAY_KEY_SECRET"),
			BaseURL:   v.GetString("RAZORPAY_BASE_URL"),
			Currency:  v.GetString("RAZORPAY_CURRENCY"),
			Timeout:   v.GetDuration("RAZORPAY_TIMEOUT"),
		},
		Storage: StorageConfig{
			S3Enabled:     v.GetBool("S3_ENABLED"),
			Bucket:        v.GetString("S3_BUCKET"),
			Region:        v.GetString("S3_REGION"),
			Prefix:        v.GetString("S3_PREFIX"),
			PublicBaseURL: v.GetString("S3_PUBLIC_BASE_URL"),
		},
		Cache: CacheConfig{
			RedisAddr:     v.GetString("REDIS_ADDR"),
			RedisPassword: v.GetString("REDIS_PASSWORD"),
			RedisDB:       v.GetInt("REDIS_DB"),
			TTL:           v.GetDuration("CACHE_TTL"),
		},
		Broker: BrokerConfig{
			URL:      v.GetString("RABBITMQ_URL"),
			Exchange: v.GetString("RABBITMQ_EXCHANGE"),
			Consume:  v.GetBool("RABBITMQ_CONSUME"),
		},
		Orders: OrdersConfig{
			EnforceTransitions: v.GetBool("ORDERS_ENFORCE_TRANSITIONS"),
			VerifyTotal:        v.GetBool("CHECKOUT_VERIFY_TOTAL"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("LOG_LEVEL")),
			Format: strings.ToLower(v.GetString("LOG_FORMAT")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("APP_PORT is required")
	}

	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("invalid database driver: %s (must be postgres, mysql or sqlite)", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("DATABASE_DSN is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Payment.KeyID != "" && c.Payment.KeySecret == "" {
		return fmt.Errorf("RAZORPAY_KEY_SECRET is required when RAZORPAY_KEY_ID is set")
	}
	if c.Payment.GatewayEnabled() && c.Payment.BaseURL == "" {
		return fmt.Errorf("RAZORPAY_BASE_URL is required when the payment gateway is enabled")
	}
	if c.Payment.Timeout <= 0 {
		return fmt.Errorf("invalid payment timeout: %s", c.Payment.Timeout)
	}

	if c.Storage.S3Enabled {
		if c.Storage.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.Storage.Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
	}

	if c.Cache.TTL <= 0 {
		return fmt.Errorf("invalid cache ttl: %s", c.Cache.TTL)
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level)
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Log.Format)
	}

	return nil
}

// IsAdminExternalID reports whether id is listed in ADMIN_EXTERNAL_IDS.
func (c AuthConfig) IsAdminExternalID(id string) bool {
	for _, admin := range c.AdminExternalIDs {
		if admin == id {
			return true
		}
	}
	return false
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

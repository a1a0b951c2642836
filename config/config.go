package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Quantity  QuantityConfig  `mapstructure:"quantity"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// QuantityConfig controls how quantities are read and rendered at the API boundary
type QuantityConfig struct {
	InputMode          string `mapstructure:"input_mode"`   // "fraction" or "decimal"
	DisplayMode        string `mapstructure:"display_mode"` // "auto", "fraction" or "decimal"
	DecimalPlaces      int    `mapstructure:"decimal_places"`
	KitchenDenominator int64  `mapstructure:"kitchen_denominator"`
}

// CatalogConfig locates the recipe and meal plan catalog
type CatalogConfig struct {
	Path  string `mapstructure:"path"`
	Watch bool   `mapstructure:"watch"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type string        `mapstructure:"type"` // "memory" or "none"
	TTL  time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute, 0 disables
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/mealplanner/")

	// MEALPLANNER_SERVER_PORT -> server.port
	v.SetEnvPrefix("MEALPLANNER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("quantity.input_mode", "fraction")
	v.SetDefault("quantity.display_mode", "auto")
	v.SetDefault("quantity.decimal_places", 4)
	v.SetDefault("quantity.kitchen_denominator", 16)

	v.SetDefault("catalog.path", "catalog.yaml")
	v.SetDefault("catalog.watch", true)

	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", "15m")

	v.SetDefault("ratelimit.per_ip", 100)

	v.SetDefault("log.level", "info")
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.Quantity.InputMode {
	case "fraction", "decimal":
	default:
		return fmt.Errorf("quantity input mode must be 'fraction' or 'decimal', got: %s", config.Quantity.InputMode)
	}

	switch config.Quantity.DisplayMode {
	case "auto", "fraction", "decimal":
	default:
		return fmt.Errorf("quantity display mode must be 'auto', 'fraction' or 'decimal', got: %s", config.Quantity.DisplayMode)
	}

	if config.Quantity.DecimalPlaces < 1 || config.Quantity.DecimalPlaces > 10 {
		return fmt.Errorf("quantity decimal places must be between 1 and 10, got: %d", config.Quantity.DecimalPlaces)
	}

	if config.Quantity.KitchenDenominator <= 0 {
		return fmt.Errorf("kitchen denominator must be positive, got: %d", config.Quantity.KitchenDenominator)
	}

	if config.Catalog.Path == "" {
		return fmt.Errorf("catalog path is required (set MEALPLANNER_CATALOG_PATH)")
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "none" {
		return fmt.Errorf("cache type must be 'memory' or 'none', got: %s", config.Cache.Type)
	}

	if config.RateLimit.PerIP < 0 {
		return fmt.Errorf("rate limit must not be negative, got: %d", config.RateLimit.PerIP)
	}

	return nil
}

// loadEnvFile exports KEY=value pairs from ./.env without overriding the
// real environment. A missing file is not an error.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	for _, key := range v.AllKeys() {
		name := strings.ToUpper(key)
		if _, set := os.LookupEnv(name); set {
			continue
		}
		if err := os.Setenv(name, v.GetString(key)); err != nil {
			return err
		}
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Store      StoreConfig
	ExportList ExportListConfig `mapstructure:"export_list"`
	Catalog    CatalogConfig
	Scanner    ScannerConfig
	RateLimit  RateLimitConfig
	Logging    LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// StoreConfig selects and configures the catalog store
type StoreConfig struct {
	Type              string        `mapstructure:"type"` // "memory", "postgres" or "supabase"
	PostgresURL       string        `mapstructure:"postgres_url"`
	MaxConns          int           `mapstructure:"max_conns"`
	SupabaseURL       string        `mapstructure:"supabase_url"`
	SupabaseKey       string        `mapstructure:"supabase_key"`
	Table             string        `mapstructure:"table"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

// ExportListConfig selects where the scratch export list is kept
type ExportListConfig struct {
	Type     string `mapstructure:"type"` // "memory", "file" or "redis"
	Dir      string `mapstructure:"dir"`
	RedisURL string `mapstructure:"redis_url"`
	Key      string `mapstructure:"key"`
}

// CatalogConfig holds catalog normalization settings
type CatalogConfig struct {
	Uppercase bool `mapstructure:"uppercase"`
}

// ScannerConfig holds barcode input settings
type ScannerConfig struct {
	DedupeWindow time.Duration `mapstructure:"dedupe_window"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute, 0 disables
}

// LoggingConfig holds log output settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/sku-app/")

	// Environment variable settings: SKUAPP_STORE_TYPE -> store.type
	v.SetEnvPrefix("SKUAPP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads ./.env into the process environment if it exists.
// Variables already set are not overridden.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return godotenv.Load()
}

// setDefaults sets default configuration values. Every key gets a
// default so AutomaticEnv can see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})

	// Store defaults
	v.SetDefault("store.type", "memory")
	v.SetDefault("store.postgres_url", "")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.supabase_url", "")
	v.SetDefault("store.supabase_key", "")
	v.SetDefault("store.table", "products")
	v.SetDefault("store.timeout", "15s")
	v.SetDefault("store.requests_per_second", 10)

	// Export list defaults
	v.SetDefault("export_list.type", "memory")
	v.SetDefault("export_list.dir", "./data")
	v.SetDefault("export_list.redis_url", "")
	v.SetDefault("export_list.key", "export_list")

	// Catalog defaults
	v.SetDefault("catalog.uppercase", true)

	// Scanner defaults
	v.SetDefault("scanner.dedupe_window", "2s")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 120)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.Store.Type {
	case "memory":
	case "postgres":
		if config.Store.PostgresURL == "" {
			return fmt.Errorf("postgres URL is required when store type is 'postgres' (set SKUAPP_STORE_POSTGRES_URL)")
		}
	case "supabase":
		if config.Store.SupabaseURL == "" || config.Store.SupabaseKey == "" {
			return fmt.Errorf("supabase URL and key are required when store type is 'supabase'")
		}
	default:
		return fmt.Errorf("store type must be 'memory', 'postgres' or 'supabase', got: %s", config.Store.Type)
	}

	switch config.ExportList.Type {
	case "memory":
	case "file":
		if config.ExportList.Dir == "" {
			return fmt.Errorf("export list dir is required when type is 'file'")
		}
	case "redis":
		if config.ExportList.RedisURL == "" {
			return fmt.Errorf("Redis URL is required when export list type is 'redis'")
		}
	default:
		return fmt.Errorf("export list type must be 'memory', 'file' or 'redis', got: %s", config.ExportList.Type)
	}

	if config.RateLimit.PerIP < 0 {
		return fmt.Errorf("ratelimit.per_ip must not be negative, got: %d", config.RateLimit.PerIP)
	}

	return nil
}

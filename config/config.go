// Package config handles loading and validation of application configuration
// from environment variables.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/waghostel/MedicalDeviceRegulationAgent-sub005/logger"
)

// Environment represents the application's running environment (development or production).
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Environment    Environment `mapstructure:"ENVIRONMENT" yaml:"environment"`
	Port           string      `mapstructure:"PORT" yaml:"port"`
	AllowedOrigins []string    `mapstructure:"ALLOWED_ORIGINS" yaml:"allowed_origins"`
	Version        string      `mapstructure:"VERSION" yaml:"version"`
}

// DatabaseConfig holds PostgreSQL database connection details.
type DatabaseConfig struct {
	Host         string `mapstructure:"HOST" yaml:"host"`
	Port         int    `mapstructure:"PORT" yaml:"port"`
	User         string `mapstructure:"USER" yaml:"user"`
	Password     string `mapstructure:"PASSWORD" yaml:"password"`
	Name         string `mapstructure:"NAME" yaml:"name"`
	SSLMode      string `mapstructure:"SSL_MODE" yaml:"ssl_mode"`
	MaxOpenConns int    `mapstructure:"MAX_OPEN_CONNS" yaml:"max_open_conns"`
}

// ConnString returns a key/value connection string for pgx.
func (c *DatabaseConfig) ConnString() string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, sslmode)
}

// RedisConfig holds Redis connection details for the response cache.
// Enabled=false means the deployment runs without a cache; the health
// aggregator then reports the cache check as not configured rather than down.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"ENABLED" yaml:"enabled"`
	Address  string `mapstructure:"ADDRESS" yaml:"address"`
	Password string `mapstructure:"PASSWORD" yaml:"password"`
	DB       int    `mapstructure:"DB" yaml:"db"`
	UseTLS   bool   `mapstructure:"USE_TLS" yaml:"use_tls"`
	PoolSize int    `mapstructure:"POOL_SIZE" yaml:"pool_size"`
}

// FDAConfig holds connection details for the openFDA device API, the
// external regulatory data source backing classification lookups.
type FDAConfig struct {
	Enabled        bool   `mapstructure:"ENABLED" yaml:"enabled"`
	BaseURL        string `mapstructure:"BASE_URL" yaml:"base_url"`
	APIKey         string `mapstructure:"API_KEY" yaml:"api_key"`
	TimeoutSeconds int    `mapstructure:"TIMEOUT_SECONDS" yaml:"timeout_seconds"`
}

// Timeout returns the HTTP client timeout for openFDA requests.
func (c *FDAConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// HealthConfig holds thresholds and timeouts for the health aggregator.
type HealthConfig struct {
	// ProbeTimeoutSeconds bounds each individual probe.
	ProbeTimeoutSeconds int `mapstructure:"PROBE_TIMEOUT_SECONDS" yaml:"probe_timeout_seconds"`
	// AggregateTimeoutSeconds bounds a whole CheckAll call. Probes still
	// running at the deadline are reported as timed out, not omitted.
	AggregateTimeoutSeconds int `mapstructure:"AGGREGATE_TIMEOUT_SECONDS" yaml:"aggregate_timeout_seconds"`
	// MinFreeDiskMB is the minimum free space on DiskPath. Free space equal
	// to the threshold is healthy.
	MinFreeDiskMB uint64 `mapstructure:"MIN_FREE_DISK_MB" yaml:"min_free_disk_mb"`
	// DiskPath is the volume the disk-space check inspects.
	DiskPath string `mapstructure:"DISK_PATH" yaml:"disk_path"`
	// MinAvailableMemoryMB is the minimum available system memory. Available
	// memory equal to the threshold is healthy.
	MinAvailableMemoryMB uint64 `mapstructure:"MIN_AVAILABLE_MEMORY_MB" yaml:"min_available_memory_mb"`
}

// ProbeTimeout returns the per-probe timeout as a duration.
func (c *HealthConfig) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutSeconds) * time.Second
}

// AggregateTimeout returns the whole-report timeout as a duration.
func (c *HealthConfig) AggregateTimeout() time.Duration {
	return time.Duration(c.AggregateTimeoutSeconds) * time.Second
}

// Config aggregates all application configuration sections.
type Config struct {
	Server   ServerConfig   `mapstructure:"SERVER" yaml:"server"`
	Database DatabaseConfig `mapstructure:"DATABASE" yaml:"database"`
	Redis    RedisConfig    `mapstructure:"REDIS" yaml:"redis"`
	FDA      FDAConfig      `mapstructure:"FDA" yaml:"fda"`
	Health   HealthConfig   `mapstructure:"HEALTH" yaml:"health"`
}

// IsDevelopment returns true if the application is running in development environment.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == EnvDevelopment
}

// IsProduction returns true if the application is running in production environment.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

// bindEnvVars binds multiple environment variables to config keys.
// Format: []{configKey, envVar}
func bindEnvVars(v *viper.Viper, bindings [][2]string) error {
	for _, b := range bindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b[0], err)
		}
	}
	return nil
}

// LoadConfig loads configuration from environment variables using Viper,
// sets default values, binds environment variables to config struct fields,
// unmarshals the configuration, and validates it.
func LoadConfig() (*Config, error) {
	v := viper.New()
	log := logger.GetLogger()

	v.SetDefault("SERVER.ENVIRONMENT", EnvDevelopment)
	v.SetDefault("SERVER.PORT", "8000")
	v.SetDefault("SERVER.ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("SERVER.VERSION", "dev")
	v.SetDefault("DATABASE.HOST", "localhost")
	v.SetDefault("DATABASE.PORT", 5432)
	v.SetDefault("DATABASE.USER", "postgres")
	v.SetDefault("DATABASE.PASSWORD", "")
	v.SetDefault("DATABASE.NAME", "medreg_dev")
	v.SetDefault("DATABASE.SSL_MODE", "disable")
	v.SetDefault("DATABASE.MAX_OPEN_CONNS", 5)
	v.SetDefault("REDIS.ENABLED", true)
	v.SetDefault("REDIS.ADDRESS", "localhost:6379")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)
	v.SetDefault("REDIS.USE_TLS", false)
	v.SetDefault("REDIS.POOL_SIZE", 3)
	v.SetDefault("FDA.ENABLED", true)
	v.SetDefault("FDA.BASE_URL", "https://api.fda.gov")
	v.SetDefault("FDA.API_KEY", "")
	v.SetDefault("FDA.TIMEOUT_SECONDS", 10)
	v.SetDefault("HEALTH.PROBE_TIMEOUT_SECONDS", 5)
	v.SetDefault("HEALTH.AGGREGATE_TIMEOUT_SECONDS", 10)
	v.SetDefault("HEALTH.MIN_FREE_DISK_MB", 512)
	v.SetDefault("HEALTH.DISK_PATH", "/")
	v.SetDefault("HEALTH.MIN_AVAILABLE_MEMORY_MB", 256)
	v.SetDefault("LOG_LEVEL", "info")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Bind environment variables
	envBindings := [][2]string{
		// Server config
		{"SERVER.ENVIRONMENT", "SERVER_ENVIRONMENT"},
		{"SERVER.PORT", "PORT"},
		{"SERVER.ALLOWED_ORIGINS", "ALLOWED_ORIGINS"},
		{"SERVER.VERSION", "VERSION"},
		// Database config
		{"DATABASE.HOST", "DB_HOST"},
		{"DATABASE.PORT", "DB_PORT"},
		{"DATABASE.USER", "DB_USER"},
		{"DATABASE.PASSWORD", "DB_PASSWORD"},
		{"DATABASE.NAME", "DB_NAME"},
		{"DATABASE.SSL_MODE", "DB_SSL_MODE"},
		{"DATABASE.MAX_OPEN_CONNS", "DB_MAX_OPEN_CONNS"},
		// Redis config
		{"REDIS.ENABLED", "REDIS_ENABLED"},
		{"REDIS.ADDRESS", "REDIS_ADDRESS"},
		{"REDIS.PASSWORD", "REDIS_PASSWORD"},
		{"REDIS.DB", "REDIS_DB"},
		{"REDIS.USE_TLS", "REDIS_USE_TLS"},
		// openFDA config
		{"FDA.ENABLED", "FDA_ENABLED"},
		{"FDA.BASE_URL", "FDA_BASE_URL"},
		{"FDA.API_KEY", "FDA_API_KEY"},
		{"FDA.TIMEOUT_SECONDS", "FDA_TIMEOUT_SECONDS"},
		// Health aggregator config
		{"HEALTH.PROBE_TIMEOUT_SECONDS", "HEALTH_PROBE_TIMEOUT_SECONDS"},
		{"HEALTH.AGGREGATE_TIMEOUT_SECONDS", "HEALTH_AGGREGATE_TIMEOUT_SECONDS"},
		{"HEALTH.MIN_FREE_DISK_MB", "HEALTH_MIN_FREE_DISK_MB"},
		{"HEALTH.DISK_PATH", "HEALTH_DISK_PATH"},
		{"HEALTH.MIN_AVAILABLE_MEMORY_MB", "HEALTH_MIN_AVAILABLE_MEMORY_MB"},
	}

	if err := bindEnvVars(v, envBindings); err != nil {
		return nil, err
	}

	log.Infow("Configuration loaded",
		"environment", v.GetString("SERVER.ENVIRONMENT"),
		"server_port", v.GetString("SERVER.PORT"),
		"db_host", v.GetString("DATABASE.HOST"),
		"redis_enabled", v.GetBool("REDIS.ENABLED"),
		"fda_enabled", v.GetBool("FDA.ENABLED"),
		"fda_api_key", logger.MaskSensitiveString(v.GetString("FDA.API_KEY"), 2, 2),
	)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// validateConfig checks if the loaded configuration values are valid.
func validateConfig(cfg *Config) error {
	if cfg.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if cfg.Server.Environment != EnvDevelopment && cfg.Server.Environment != EnvProduction {
		return fmt.Errorf("invalid environment: %s", cfg.Server.Environment)
	}
	if cfg.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if cfg.Redis.Enabled && cfg.Redis.Address == "" {
		return fmt.Errorf("redis address is required when the cache is enabled")
	}
	if cfg.FDA.Enabled {
		if cfg.FDA.BaseURL == "" {
			return fmt.Errorf("FDA base URL is required when the FDA check is enabled")
		}
		if _, err := url.ParseRequestURI(cfg.FDA.BaseURL); err != nil {
			return fmt.Errorf("invalid FDA base URL '%s': %w", cfg.FDA.BaseURL, err)
		}
	}
	if cfg.Health.ProbeTimeoutSeconds <= 0 {
		return fmt.Errorf("health probe timeout must be positive")
	}
	if cfg.Health.AggregateTimeoutSeconds <= 0 {
		return fmt.Errorf("health aggregate timeout must be positive")
	}
	if cfg.Health.DiskPath == "" {
		return fmt.Errorf("health disk path is required")
	}
	return nil
}

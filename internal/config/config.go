// Package config provides runtime configuration for the service.
// Values are layered: YAML config file, then .env file, then environment
// variables, with service defaults applied for anything left unset.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/skillsenselab/offerhub/internal/logging"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port" validate:"gte=0,lte=65535"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// RedisConfig holds cache store connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" validate:"required"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
	PoolSize int    `mapstructure:"pool_size" validate:"gte=0"`
}

// VendorConfig holds per-vendor endpoint settings.
type VendorConfig struct {
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
}

// VendorsConfig holds the vendor adapter and retry wrapper settings.
type VendorsConfig struct {
	// Timeout is the per-call timeout applied independently to each attempt.
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
	// RetryAttempts is the total number of attempts per vendor call.
	RetryAttempts int `mapstructure:"retry_attempts" validate:"gte=1"`
	// RetryDelay is the fixed delay between attempts.
	RetryDelay time.Duration `mapstructure:"retry_delay" validate:"gte=0"`

	One   VendorConfig `mapstructure:"one"`
	Two   VendorConfig `mapstructure:"two"`
	Three VendorConfig `mapstructure:"three"`
}

// BreakerConfig holds circuit breaker settings shared by all vendors.
type BreakerConfig struct {
	FailureThreshold int           `mapstructure:"failure_threshold" validate:"gte=1"`
	Cooldown         time.Duration `mapstructure:"cooldown" validate:"gt=0"`
}

// CacheConfig holds the result cache settings.
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl" validate:"gt=0"`
}

// RateLimitConfig holds the fixed-window limiter settings.
type RateLimitConfig struct {
	Limit  int           `mapstructure:"limit" validate:"gte=1"`
	Window time.Duration `mapstructure:"window" validate:"gt=0"`
}

// AuthConfig holds caller authentication settings.
type AuthConfig struct {
	// APIKeys is the accepted key set. Entries may be plain keys or
	// bcrypt hashes (prefixed "$2"), which are compared with bcrypt.
	APIKeys []string `mapstructure:"api_keys" validate:"min=1"`
	// AdminJWTSecret signs admin bearer tokens. Empty disables the
	// admin endpoints.
	AdminJWTSecret string `mapstructure:"admin_jwt_secret"`
}

// PrewarmConfig holds the background prewarm job settings.
type PrewarmConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval" validate:"gt=0"`
	SKUs     []string      `mapstructure:"skus"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Endpoint string        `mapstructure:"endpoint"`
	Insecure bool          `mapstructure:"insecure"`
	Interval time.Duration `mapstructure:"interval"`
}

// Config is the full service configuration.
type Config struct {
	Name        string         `mapstructure:"name"`
	Environment string         `mapstructure:"environment" validate:"oneof=development staging production"`
	Version     string         `mapstructure:"version"`
	Logging     logging.Config `mapstructure:"logging"`
	Server      ServerConfig   `mapstructure:"server"`
	Redis       RedisConfig    `mapstructure:"redis"`
	Auth        AuthConfig     `mapstructure:"auth"`
	Vendors     VendorsConfig  `mapstructure:"vendors"`
	Breaker     BreakerConfig  `mapstructure:"breaker"`
	// Freshness is the maximum quote age accepted by the decision pipeline.
	Freshness time.Duration   `mapstructure:"freshness" validate:"gt=0"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Prewarm   PrewarmConfig   `mapstructure:"prewarm"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ApplyDefaults fills every unset field with the service default.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "offerhub"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	c.Logging.ApplyDefaults()

	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 120 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}

	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 10
	}

	// Local development works out of the box; production must configure keys.
	if len(c.Auth.APIKeys) == 0 && c.Environment == "development" {
		c.Auth.APIKeys = []string{"local-dev-key"}
	}

	if c.Vendors.Timeout == 0 {
		c.Vendors.Timeout = 2 * time.Second
	}
	if c.Vendors.RetryAttempts == 0 {
		c.Vendors.RetryAttempts = 3
	}
	if c.Vendors.RetryDelay == 0 {
		c.Vendors.RetryDelay = 100 * time.Millisecond
	}
	if c.Vendors.One.BaseURL == "" {
		c.Vendors.One.BaseURL = "http://localhost:9100/vendor-one"
	}
	if c.Vendors.Two.BaseURL == "" {
		c.Vendors.Two.BaseURL = "http://localhost:9100/vendor-two"
	}
	if c.Vendors.Three.BaseURL == "" {
		c.Vendors.Three.BaseURL = "http://localhost:9100/vendor-three"
	}

	if c.Breaker.FailureThreshold == 0 {
		c.Breaker.FailureThreshold = 3
	}
	if c.Breaker.Cooldown == 0 {
		c.Breaker.Cooldown = 30 * time.Second
	}

	if c.Freshness == 0 {
		c.Freshness = 10 * time.Minute
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 120 * time.Second
	}
	if c.RateLimit.Limit == 0 {
		c.RateLimit.Limit = 60
	}
	if c.RateLimit.Window == 0 {
		c.RateLimit.Window = 60 * time.Second
	}

	if c.Prewarm.Interval == 0 {
		c.Prewarm.Interval = 5 * time.Minute
	}

	if c.Telemetry.Endpoint == "" {
		c.Telemetry.Endpoint = "localhost:4318"
	}
	if c.Telemetry.Interval == 0 {
		c.Telemetry.Interval = 15 * time.Second
	}
}

// Validate checks the configuration after defaults are applied.
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	return nil
}

// Load reads configuration for the service. An explicit config file path may
// be given; otherwise standard locations are searched. Environment variables
// (OFFERHUB_SERVER_PORT, OFFERHUB_CACHE_TTL, ...) override file values.
func Load(configFile string) (*Config, error) {
	// .env is best effort, matching local-development usage.
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}

	v := viper.New()
	v.SetEnvPrefix("OFFERHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile == "" {
		configFile = findConfigFile()
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// findConfigFile searches standard locations for a config file.
func findConfigFile() string {
	searchPaths := []string{
		"./cmd/offerhub/config.yml",
		"./config/config.yml",
		"./config.yml",
	}
	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

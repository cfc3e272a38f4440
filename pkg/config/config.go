package config

import (
	"fmt"
	"net/url"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the SnowSarva engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"5000"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	BaseURL  string `yaml:"base_url" env:"BASE_URL" env-default:""` // Auto-derived from Port if empty
	Version  string `yaml:"-"`                                     // Set at load time, not from config

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Redis cache configuration (optional)
	Redis RedisConfig `yaml:"redis"`

	// Session cookie configuration
	Session SessionConfig `yaml:"session"`

	// Defaults applied to new warehouse connections
	Snowflake SnowflakeConfig `yaml:"snowflake"`

	// LLM analysis configuration
	AI AIConfig `yaml:"ai"`

	// Dashboard metric cache TTL in seconds.
	DashboardCacheTTL int `yaml:"dashboard_cache_ttl" env:"DASHBOARD_CACHE_TTL" env-default:"300"`

	// Credential encryption key for stored connection secrets.
	// Must be a 32-byte key, base64 encoded. Generate with: openssl rand -base64 32
	// Server will fail to start if this is not set.
	ConnectionCredentialsKey string `yaml:"-" env:"CONNECTION_CREDENTIALS_KEY"` // Secret - not in YAML
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"snowsarva"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"snowsarva"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// RedisConfig holds Redis cache configuration.
// Leave Host empty to run without a cache.
type RedisConfig struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:""`
	Port     int    `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"-" env:"REDIS_PASSWORD"` // Secret - not in YAML
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// SessionConfig holds cookie session configuration.
type SessionConfig struct {
	// CookieName is the session cookie name.
	CookieName string `yaml:"cookie_name" env:"SESSION_COOKIE_NAME" env-default:"snowsarva_session"`

	// CookieDomain is the domain for session cookies (optional).
	CookieDomain string `yaml:"cookie_domain" env:"SESSION_COOKIE_DOMAIN" env-default:""`

	// MaxAgeSeconds is the session lifetime.
	MaxAgeSeconds int `yaml:"max_age_seconds" env:"SESSION_MAX_AGE_SECONDS" env-default:"86400"`

	// Secret signs session cookies. Server will fail to start if unset.
	Secret string `yaml:"-" env:"SESSION_SECRET"` // Secret - not in YAML
}

// SnowflakeConfig holds defaults applied when a connection omits them.
type SnowflakeConfig struct {
	DefaultRole      string `yaml:"default_role" env:"SNOWFLAKE_DEFAULT_ROLE" env-default:"ACCOUNTADMIN"`
	DefaultWarehouse string `yaml:"default_warehouse" env:"SNOWFLAKE_DEFAULT_WAREHOUSE" env-default:"COMPUTE_WH"`
	// ConnectTimeoutSeconds bounds live connection tests.
	ConnectTimeoutSeconds int `yaml:"connect_timeout_seconds" env:"SNOWFLAKE_CONNECT_TIMEOUT_SECONDS" env-default:"15"`
}

// AIConfig holds LLM endpoint configuration for query optimization and
// error analysis.
type AIConfig struct {
	// Provider selects the client implementation: "openai" or "anthropic".
	Provider string `yaml:"provider" env:"AI_PROVIDER" env-default:"openai"`
	// Endpoint is the base URL for OpenAI-compatible providers.
	Endpoint string `yaml:"endpoint" env:"AI_ENDPOINT" env-default:"https://api.openai.com/v1"`
	Model    string `yaml:"model" env:"AI_MODEL" env-default:"gpt-4o"`
	APIKey   string `yaml:"-" env:"AI_API_KEY"` // Secret - not in YAML
	// Temperature for analysis requests. Low by default: answers should be
	// reproducible, not creative.
	Temperature float64 `yaml:"temperature" env:"AI_TEMPERATURE" env-default:"0.1"`
}

// IsConfigured returns true if an LLM endpoint is usable.
func (c *AIConfig) IsConfigured() bool {
	return c.Model != "" && (c.Provider == "anthropic" || c.Endpoint != "")
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Auto-derive BaseURL from Port if not explicitly set
	if cfg.BaseURL == "" {
		cfg.BaseURL = (&url.URL{
			Scheme: "http",
			Host:   "localhost:" + cfg.Port,
		}).String()
	}

	return cfg, nil
}

// validate checks that required secrets are present.
func (c *Config) validate() error {
	if c.Session.Secret == "" {
		return fmt.Errorf("SESSION_SECRET must be set")
	}
	if c.ConnectionCredentialsKey == "" {
		return fmt.Errorf("CONNECTION_CREDENTIALS_KEY must be set")
	}
	return nil
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

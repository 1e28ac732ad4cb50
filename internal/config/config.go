// Package config loads and validates application configuration from YAML files
// and environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root application configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Identity      IdentityConfig      `yaml:"identity"`
	Catalog       CatalogConfig       `yaml:"catalog"`
	Pricing       PricingConfig       `yaml:"pricing"`
	Quotes        QuotesConfig        `yaml:"quotes"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig describes HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	HandlerTimeout  time.Duration `yaml:"handler_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORS            CORSConfig    `yaml:"cors"`
}

// CORSConfig describes Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
	MaxAge         int      `yaml:"max_age"`
}

// IdentityConfig describes JWT and identity provider settings. Anonymous
// requests are always allowed; a verified token only upgrades the caller's
// price tier and staff visibility.
type IdentityConfig struct {
	Issuer       string            `yaml:"issuer"`
	Audience     string            `yaml:"audience"`
	JWKSURL      string            `yaml:"jwks_url"`
	JWKSCacheTTL time.Duration     `yaml:"jwks_cache_ttl"`
	Algorithms   []string          `yaml:"algorithms"`
	ClaimPaths   map[string]string `yaml:"claim_paths"`
	StaffRoles   []string          `yaml:"staff_roles"`
	TierCacheTTL time.Duration     `yaml:"tier_cache_ttl"`
}

// CatalogConfig describes where to find catalog YAML files.
type CatalogConfig struct {
	Directories []string `yaml:"directories"`
}

// PricingConfig describes pricing engine settings not carried by the catalog.
type PricingConfig struct {
	PublicMarkupPercent float64 `yaml:"public_markup_percent"`
}

// QuotesConfig describes quote persistence and idempotency settings.
type QuotesConfig struct {
	Store       QuoteStoreConfig  `yaml:"store"`
	Idempotency IdempotencyConfig `yaml:"idempotency"`
}

// QuoteStoreConfig describes quote persistence settings. The DSN is read
// from the environment variable named by DSNEnv, never from the file.
type QuoteStoreConfig struct {
	Driver          string        `yaml:"driver"`
	DSNEnv          string        `yaml:"dsn_env"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// IdempotencyConfig describes idempotency store settings for quote creation.
type IdempotencyConfig struct {
	Driver     string        `yaml:"driver"`
	AddrEnv    string        `yaml:"addr_env"`
	DB         int           `yaml:"db"`
	DefaultTTL time.Duration `yaml:"default_ttl"`
}

// ObservabilityConfig describes logging, tracing, and metrics settings.
type ObservabilityConfig struct {
	LogLevel string        `yaml:"log_level"`
	Tracing  TracingConfig `yaml:"tracing"`
	Metrics  MetricsConfig `yaml:"metrics"`
}

// TracingConfig describes distributed tracing settings.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"sampling_rate"`
}

// MetricsConfig describes Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Defaults returns a Config with sensible default values.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			HandlerTimeout:  25 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			CORS: CORSConfig{
				AllowedMethods: []string{"GET", "POST", "OPTIONS"},
				AllowedHeaders: []string{"Authorization", "Content-Type",
					"X-Correlation-Id", "X-Idempotency-Key"},
				MaxAge: 86400,
			},
		},
		Identity: IdentityConfig{
			JWKSCacheTTL: 1 * time.Hour,
			Algorithms:   []string{"RS256"},
			ClaimPaths: map[string]string{
				"subject_id": "sub",
				"email":      "email",
				"company":    "company",
				"roles":      "roles",
				"tier":       "price_tier",
			},
			StaffRoles:   []string{"staff", "sales_admin"},
			TierCacheTTL: 5 * time.Minute,
		},
		Catalog: CatalogConfig{
			Directories: []string{"catalog"},
		},
		Pricing: PricingConfig{
			PublicMarkupPercent: 25,
		},
		Quotes: QuotesConfig{
			Store: QuoteStoreConfig{
				Driver:          "memory",
				DSNEnv:          "BOSCOTEK_QUOTES_DSN",
				MaxOpenConns:    25,
				ConnMaxLifetime: 5 * time.Minute,
			},
			Idempotency: IdempotencyConfig{
				Driver:     "memory",
				AddrEnv:    "BOSCOTEK_REDIS_ADDR",
				DefaultTTL: 24 * time.Hour,
			},
		},
		Observability: ObservabilityConfig{
			LogLevel: "info",
			Tracing: TracingConfig{
				Exporter:     "otlp",
				SamplingRate: 0.1,
			},
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}

// Load reads a YAML config file, applies environment variable overrides,
// and validates required fields.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required fields are present and valid.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 1 and 65535")
	}
	if len(c.Catalog.Directories) == 0 {
		errs = append(errs, "catalog.directories must not be empty")
	}
	if c.Pricing.PublicMarkupPercent < 0 {
		errs = append(errs, "pricing.public_markup_percent must not be negative")
	}
	switch c.Quotes.Store.Driver {
	case "memory", "postgres":
	default:
		errs = append(errs, fmt.Sprintf("quotes.store.driver %q is not supported", c.Quotes.Store.Driver))
	}
	switch c.Quotes.Idempotency.Driver {
	case "memory", "redis":
	default:
		errs = append(errs, fmt.Sprintf("quotes.idempotency.driver %q is not supported", c.Quotes.Idempotency.Driver))
	}
	// JWKS settings are only required when token verification is on. An
	// empty issuer disables verification and every caller prices as public.
	if c.Identity.Issuer != "" {
		if c.Identity.JWKSURL == "" {
			errs = append(errs, "identity.jwks_url is required when identity.issuer is set")
		}
		if c.Identity.Audience == "" {
			errs = append(errs, "identity.audience is required when identity.issuer is set")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// applyEnvOverrides reads BOSCOTEK_* environment variables and overrides
// config values. Only the most commonly overridden fields are supported.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BOSCOTEK_SERVER_PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("BOSCOTEK_IDENTITY_ISSUER"); v != "" {
		cfg.Identity.Issuer = v
	}
	if v := os.Getenv("BOSCOTEK_IDENTITY_JWKS_URL"); v != "" {
		cfg.Identity.JWKSURL = v
	}
	if v := os.Getenv("BOSCOTEK_IDENTITY_AUDIENCE"); v != "" {
		cfg.Identity.Audience = v
	}
	if v := os.Getenv("BOSCOTEK_CATALOG_DIRECTORIES"); v != "" {
		cfg.Catalog.Directories = strings.Split(v, ",")
	}
	if v := os.Getenv("BOSCOTEK_QUOTES_STORE_DRIVER"); v != "" {
		cfg.Quotes.Store.Driver = v
	}
	if v := os.Getenv("BOSCOTEK_QUOTES_IDEMPOTENCY_DRIVER"); v != "" {
		cfg.Quotes.Idempotency.Driver = v
	}
	if v := os.Getenv("BOSCOTEK_OBSERVABILITY_LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
}

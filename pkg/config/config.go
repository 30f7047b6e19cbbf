// Package config provides configuration management for kbbridge.
// It loads settings from environment variables with the KBBRIDGE_ prefix,
// optionally overlaid by a YAML file, and provides sensible defaults for all
// configuration options.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration settings for a knowledge base client.
type Config struct {
	Service ServiceConfig `yaml:"service"`
	Store   StoreConfig   `yaml:"store"`
	Domain  DomainConfig  `yaml:"domain"`
	Log     LogConfig     `yaml:"log"`
}

// ServiceConfig selects and tunes the knowledge base transport.
type ServiceConfig struct {
	Transport         string        `yaml:"transport"`           // http, websocket or memory (default: http)
	BaseURL           string        `yaml:"base_url"`            // Service URL (default: http://localhost:8080)
	Prefix            string        `yaml:"prefix"`              // Service namespace (default: /kcl_rosplan)
	Timeout           time.Duration `yaml:"timeout"`             // Per-call timeout (default: 10s)
	RequestsPerSecond float64       `yaml:"requests_per_second"` // Client-side rate limit, 0 disables (default: 0)
	Burst             int           `yaml:"burst"`               // Rate limiter burst (default: 1)
	MaxFailures       int           `yaml:"max_failures"`        // Failures before the circuit opens (default: 3)
}

// StoreConfig contains document store configuration.
type StoreConfig struct {
	Engine string `yaml:"engine"` // sqlite or postgres (default: sqlite)
	DSN    string `yaml:"dsn"`    // Connection string (default: ./data/kbbridge.db)
}

// DomainConfig describes the planning domain served by the memory transport.
type DomainConfig struct {
	File string `yaml:"file"` // YAML domain file; empty accepts any type and predicate
}

// LogConfig contains logging configuration.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: info)
}

// Supported transports and storage engines.
const (
	TransportHTTP      = "http"
	TransportWebsocket = "websocket"
	TransportMemory    = "memory"

	EngineSQLite   = "sqlite"
	EnginePostgres = "postgres"
)

// LoadConfig loads configuration from environment variables with sensible defaults.
// All environment variables use the KBBRIDGE_ prefix.
func LoadConfig() (*Config, error) {
	cfg := buildBaseConfig()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigFile loads environment configuration and overlays the YAML file
// at path. Keys present in the file take precedence over the environment.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	cfg := buildBaseConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the transport and engine are known and that the
// numeric limits are usable.
func (c *Config) Validate() error {
	switch c.Service.Transport {
	case TransportHTTP, TransportWebsocket:
		if c.Service.BaseURL == "" {
			return errors.New("config: service base_url is required for remote transports")
		}
	case TransportMemory:
	default:
		return fmt.Errorf("config: unknown transport %q", c.Service.Transport)
	}

	switch c.Store.Engine {
	case EngineSQLite, EnginePostgres:
	default:
		return fmt.Errorf("config: unknown storage engine %q", c.Store.Engine)
	}
	if c.Store.DSN == "" {
		return errors.New("config: store dsn is required")
	}

	if c.Service.Timeout <= 0 {
		return errors.New("config: service timeout must be positive")
	}
	if c.Service.RequestsPerSecond < 0 || c.Service.Burst < 0 || c.Service.MaxFailures < 0 {
		return errors.New("config: service limits must not be negative")
	}
	return nil
}

// buildBaseConfig constructs a Config with values from environment variables
// and defaults.
func buildBaseConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			Transport:         getEnv("KBBRIDGE_TRANSPORT", TransportHTTP),
			BaseURL:           getEnv("KBBRIDGE_BASE_URL", "http://localhost:8080"),
			Prefix:            getEnv("KBBRIDGE_PREFIX", "/kcl_rosplan"),
			Timeout:           getEnvDuration("KBBRIDGE_TIMEOUT", 10*time.Second),
			RequestsPerSecond: getEnvFloat("KBBRIDGE_REQUESTS_PER_SECOND", 0),
			Burst:             getEnvInt("KBBRIDGE_BURST", 1),
			MaxFailures:       getEnvInt("KBBRIDGE_MAX_FAILURES", 3),
		},
		Store: StoreConfig{
			Engine: getEnv("KBBRIDGE_STORAGE_ENGINE", EngineSQLite),
			DSN:    getEnv("KBBRIDGE_STORE_DSN", "./data/kbbridge.db"),
		},
		Domain: DomainConfig{
			File: getEnv("KBBRIDGE_DOMAIN_FILE", ""),
		},
		Log: LogConfig{
			Level: getEnv("KBBRIDGE_LOG_LEVEL", "info"),
		},
	}
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value.
// If the environment variable exists but cannot be parsed as an integer,
// it returns the default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go duration strings such as "500ms" or "10s".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

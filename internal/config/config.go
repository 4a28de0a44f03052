// Package config loads the service configuration from config.toml, an optional
// config.<env>.toml overlay, a .env file and YIELD_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"yield-advisor/pkg/database"
	"yield-advisor/pkg/logging"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"
	DotEnvFile           = ".env"

	EnvYieldEnv         = "YIELD_ENV"
	EnvYieldVersion     = "YIELD_VERSION"
	EnvYieldNodeID      = "YIELD_NODE_ID"
	EnvLogLevel         = "YIELD_LOG_LEVEL"
	EnvBatchConcurrency = "YIELD_BATCH_CONCURRENCY"

	defaultVersion          = "1.0.0"
	defaultLogLevel         = "info"
	defaultBatchConcurrency = 8
)

var databaseEnv = &database.Env{
	Host:            "YIELD_DB_HOST",
	Port:            "YIELD_DB_PORT",
	User:            "YIELD_DB_USER",
	Password:        "YIELD_DB_PASSWORD",
	Database:        "YIELD_DB_NAME",
	SSLMode:         "YIELD_DB_SSL_MODE",
	MaxOpenConns:    "YIELD_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "YIELD_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "YIELD_DB_CONN_MAX_LIFETIME",
	ConnMaxIdleTime: "YIELD_DB_CONN_MAX_IDLE_TIME",
}

// Config is the root configuration of the yield advisor binaries.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  database.Config `toml:"database"`
	Logging   LoggingConfig   `toml:"logging"`
	Predictor PredictorConfig `toml:"predictor"`
	Catalog   CatalogConfig   `toml:"catalog"`
	Batch     BatchConfig     `toml:"batch"`
	NodeID    int64           `toml:"node_id"`
	Version   string          `toml:"version"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// LogLevel returns the parsed level.
func (c *LoggingConfig) LogLevel() logging.LogLevel {
	return logging.ParseLevel(c.Level)
}

func (c *LoggingConfig) validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("unknown level %q", c.Level)
	}
}

// BatchConfig holds batch scoring settings.
type BatchConfig struct {
	Concurrency int `toml:"concurrency"`
}

// Env returns the YIELD_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvYieldEnv); env != "" {
		return env
	}
	return "local"
}

// LoadConfig reads configuration from the working directory. Missing files are
// not an error: defaults and environment variables then provide every value.
func LoadConfig() (*Config, error) {
	return LoadFrom(BaseConfigFile)
}

// LoadFrom is LoadConfig with an explicit base file. The overlay and .env are
// looked up next to it.
func LoadFrom(basePath string) (*Config, error) {
	dir := filepath.Dir(basePath)

	// Variables already set in the process win over .env.
	if err := godotenv.Load(filepath.Join(dir, DotEnvFile)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", DotEnvFile, err)
	}

	cfg := &Config{}

	if _, err := os.Stat(basePath); err == nil {
		loaded, err := load(basePath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(dir); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sections.
func (c *Config) Merge(overlay *Config) {
	if overlay.NodeID != 0 {
		c.NodeID = overlay.NodeID
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	if overlay.Logging.Level != "" {
		c.Logging.Level = overlay.Logging.Level
	}
	if overlay.Batch.Concurrency != 0 {
		c.Batch.Concurrency = overlay.Batch.Concurrency
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Predictor.Merge(&overlay.Predictor)
	c.Catalog.Merge(&overlay.Catalog)
}

// Validate checks rules that span sections. Each section validates itself during load.
func (c *Config) Validate() error {
	if c.NodeID < 0 || c.NodeID > 1023 {
		return fmt.Errorf("node_id must be between 0 and 1023, got %d", c.NodeID)
	}
	if err := c.Logging.validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if c.Batch.Concurrency < 1 {
		return fmt.Errorf("batch: concurrency must be positive, got %d", c.Batch.Concurrency)
	}
	if c.Catalog.Source == CatalogSourcePostgres && (c.Database.Host == "" || c.Database.Database == "") {
		return errors.New("catalog source postgres requires database host and name")
	}
	return nil
}

func (c *Config) finalize() error {
	c.loadDefaults()
	if err := c.loadEnv(); err != nil {
		return err
	}

	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Predictor.Finalize(); err != nil {
		return fmt.Errorf("predictor: %w", err)
	}
	if err := c.Catalog.Finalize(); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	return c.Validate()
}

func (c *Config) loadDefaults() {
	if c.Version == "" {
		c.Version = defaultVersion
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Batch.Concurrency == 0 {
		c.Batch.Concurrency = defaultBatchConcurrency
	}
}

func (c *Config) loadEnv() error {
	if v := os.Getenv(EnvYieldVersion); v != "" {
		c.Version = v
	}
	if v := os.Getenv(EnvYieldNodeID); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvYieldNodeID, err)
		}
		c.NodeID = n
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvBatchConcurrency); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvBatchConcurrency, err)
		}
		c.Batch.Concurrency = n
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath(dir string) string {
	if env := os.Getenv(EnvYieldEnv); env != "" {
		path := filepath.Join(dir, fmt.Sprintf(OverlayConfigPattern, env))
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Package config loads the storefront configuration from YAML with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joeshaw/envdecode"
	"gopkg.in/yaml.v3"
)

// Config is the full storefront configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Auth       AuthConfig       `yaml:"auth"`
	Logging    LoggingConfig    `yaml:"logging"`
	Checkpoint CheckpointConfig `yaml:"checkpoint"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host              string `yaml:"host"`
	Port              int    `yaml:"port"`
	RequestsPerSecond int    `yaml:"requests_per_second"`
	Burst             int    `yaml:"burst"`
}

// StorageConfig selects and configures the persistence backend.
type StorageConfig struct {
	// Backend is one of "memory", "file", "redis" or "postgres".
	Backend string `yaml:"backend"`

	File struct {
		Dir string `yaml:"dir"`
	} `yaml:"file"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Postgres struct {
		DSN string `yaml:"dsn"`
	} `yaml:"postgres"`
}

// CatalogConfig points at the product catalog document.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig configures the remote authentication client. An empty BaseURL
// disables remote auth.
type AuthConfig struct {
	BaseURL           string `yaml:"base_url"`
	TimeoutSeconds    int    `yaml:"timeout_seconds"`
	RequestsPerSecond int    `yaml:"requests_per_second"`
	Burst             int    `yaml:"burst"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// CheckpointConfig configures the periodic state flush.
type CheckpointConfig struct {
	Schedule string `yaml:"schedule"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 8080
	cfg.Server.RequestsPerSecond = 50
	cfg.Server.Burst = 100
	cfg.Storage.Backend = "file"
	cfg.Storage.File.Dir = "data"
	cfg.Catalog.Path = filepath.Join("config", "products.json")
	cfg.Auth.TimeoutSeconds = 15
	cfg.Auth.RequestsPerSecond = 1
	cfg.Auth.Burst = 5
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "text"
	cfg.Logging.Output = "stdout"
	cfg.Checkpoint.Schedule = "@every 30s"
	return cfg
}

// Load reads the configuration from path, applies environment overrides and
// validates the result. A missing file is not an error; defaults plus the
// environment apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath.Clean(path))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// fall through to env overrides
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envOverrides mirrors the Config fields that can be set from the
// environment. Unset variables leave the file/default values untouched.
type envOverrides struct {
	Host           string `env:"STOREFRONT_HOST"`
	Port           int    `env:"STOREFRONT_PORT"`
	StorageBackend string `env:"STOREFRONT_STORAGE_BACKEND"`
	StorageFileDir string `env:"STOREFRONT_STORAGE_DIR"`
	RedisAddr      string `env:"STOREFRONT_REDIS_ADDR"`
	RedisPassword  string `env:"STOREFRONT_REDIS_PASSWORD"`
	PostgresDSN    string `env:"STOREFRONT_POSTGRES_DSN"`
	CatalogPath    string `env:"STOREFRONT_CATALOG_PATH"`
	AuthBaseURL    string `env:"STOREFRONT_AUTH_BASE_URL"`
	LogLevel       string `env:"STOREFRONT_LOG_LEVEL"`
	LogFormat      string `env:"STOREFRONT_LOG_FORMAT"`
	FlushSchedule  string `env:"STOREFRONT_CHECKPOINT_SCHEDULE"`
}

func applyEnv(cfg *Config) error {
	var env envOverrides
	if err := envdecode.Decode(&env); err != nil {
		if errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
			return nil
		}
		return fmt.Errorf("failed to decode environment: %w", err)
	}

	if env.Host != "" {
		cfg.Server.Host = env.Host
	}
	if env.Port != 0 {
		cfg.Server.Port = env.Port
	}
	if env.StorageBackend != "" {
		cfg.Storage.Backend = env.StorageBackend
	}
	if env.StorageFileDir != "" {
		cfg.Storage.File.Dir = env.StorageFileDir
	}
	if env.RedisAddr != "" {
		cfg.Storage.Redis.Addr = env.RedisAddr
	}
	if env.RedisPassword != "" {
		cfg.Storage.Redis.Password = env.RedisPassword
	}
	if env.PostgresDSN != "" {
		cfg.Storage.Postgres.DSN = env.PostgresDSN
	}
	if env.CatalogPath != "" {
		cfg.Catalog.Path = env.CatalogPath
	}
	if env.AuthBaseURL != "" {
		cfg.Auth.BaseURL = env.AuthBaseURL
	}
	if env.LogLevel != "" {
		cfg.Logging.Level = env.LogLevel
	}
	if env.LogFormat != "" {
		cfg.Logging.Format = env.LogFormat
	}
	if env.FlushSchedule != "" {
		cfg.Checkpoint.Schedule = env.FlushSchedule
	}
	return nil
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server: port %d is out of range", c.Server.Port)
	}

	switch c.Storage.Backend {
	case "memory":
	case "file":
		if c.Storage.File.Dir == "" {
			return fmt.Errorf("storage: file backend requires a dir")
		}
	case "redis":
		if c.Storage.Redis.Addr == "" {
			return fmt.Errorf("storage: redis backend requires an addr")
		}
	case "postgres":
		if c.Storage.Postgres.DSN == "" {
			return fmt.Errorf("storage: postgres backend requires a dsn")
		}
	default:
		return fmt.Errorf("storage: unknown backend %q", c.Storage.Backend)
	}

	if c.Catalog.Path == "" {
		return fmt.Errorf("catalog: path is required")
	}
	return nil
}

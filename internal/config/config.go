// Package config resolves cratedocs settings from a TOML config file,
// environment variables, and defaults, plus the XDG-style paths the
// cache and catalog live under.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	UserAgent string `mapstructure:"user_agent"`
	// CratesIOPerSecond caps request rate against the crates.io API host
	// per the registry crawler policy.
	CratesIOPerSecond float64 `mapstructure:"cratesio_per_second"`
}

type CacheConfig struct {
	TTLHours int `mapstructure:"ttl_hours"`
	// DocLRUSize bounds how many decoded rustdoc documents stay in
	// memory.
	DocLRUSize int `mapstructure:"doc_lru_size"`
}

type ToolsConfig struct {
	// DefaultLimit is the result cap for search and list tools when the
	// caller passes none.
	DefaultLimit int `mapstructure:"default_limit"`
}

type Config struct {
	HTTP  HTTPConfig  `mapstructure:"http"`
	Cache CacheConfig `mapstructure:"cache"`
	Tools ToolsConfig `mapstructure:"tools"`
}

// TTL returns the configured cache TTL as a duration.
func (c *Config) TTL() time.Duration {
	return time.Duration(c.Cache.TTLHours) * time.Hour
}

// cacheBase returns the base cache directory for cratedocs.
// Checks XDG_CACHE_HOME, then ~/.cache, then /tmp/cratedocs as fallback.
func cacheBase() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "cratedocs")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache", "cratedocs")
	}
	return filepath.Join(os.TempDir(), "cratedocs")
}

// HTTPCacheDir returns the directory for cached upstream responses.
func HTTPCacheDir() string {
	return filepath.Join(cacheBase(), "http")
}

// CatalogPath returns the path to the DuckDB catalog file.
func CatalogPath() string {
	return filepath.Join(cacheBase(), "catalog.db")
}

func InitializeViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("toml")

	viper.AddConfigPath(".")
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		viper.AddConfigPath(filepath.Join(xdg, "cratedocs"))
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "cratedocs"))
	}

	viper.SetDefault("http.user_agent", "cratedocs/0.1 (https://github.com/cratedocs/cratedocs)")
	viper.SetDefault("http.cratesio_per_second", 1.0)
	viper.SetDefault("cache.ttl_hours", 24)
	viper.SetDefault("cache.doc_lru_size", 4)
	viper.SetDefault("tools.default_limit", 10)

	viper.SetEnvPrefix("CRATEDOCS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}

func Load() (*Config, error) {
	if err := InitializeViper(); err != nil {
		return nil, err
	}

	var config Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &config,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(viper.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

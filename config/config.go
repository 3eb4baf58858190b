package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Provider names accepted in Config.Provider.
const (
	ProviderYahoo    = "yahoo"
	ProviderYahooWeb = "yahoo-web"
	ProviderLongport = "longport"
)

type Config struct {
	ProjectDir   string `json:"project_dir"`
	DataCacheDir string `json:"data_cache_dir"`

	// Provider selects the market data backend: yahoo, yahoo-web or longport.
	Provider string `json:"provider"`

	CacheEnabled bool          `json:"cache_enabled"`
	CacheTTL     time.Duration `json:"cache_ttl"`

	HTTPTimeout time.Duration `json:"http_timeout"`
	Debug       bool          `json:"debug"`

	// Longport API configuration, only needed for the longport provider.
	LongportAppKey      string `json:"longport_app_key"`
	LongportAppSecret   string `json:"longport_app_secret"`
	LongportAccessToken string `json:"longport_access_token"`
}

func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()

	cfg := &Config{
		ProjectDir:   currentDir,
		DataCacheDir: filepath.Join(currentDir, "data", "cache"),

		Provider: ProviderYahoo,

		CacheEnabled: false,
		CacheTTL:     15 * time.Minute,

		HTTPTimeout: 30 * time.Second,
		Debug:       false,
	}

	// Load environment variables from .env file
	_ = godotenv.Load()

	// Override with environment variables if they exist
	cfg.loadFromEnv()

	return cfg
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("PROJECT_DIR"); val != "" {
		c.ProjectDir = val
	}
	if val := os.Getenv("DATA_CACHE_DIR"); val != "" {
		c.DataCacheDir = val
	}

	if val := os.Getenv("PUTCALL_PROVIDER"); val != "" {
		c.Provider = strings.ToLower(strings.TrimSpace(val))
	}

	if val := os.Getenv("CACHE_ENABLED"); val != "" {
		if cache, err := strconv.ParseBool(val); err == nil {
			c.CacheEnabled = cache
		}
	}
	if val := os.Getenv("CACHE_TTL"); val != "" {
		if ttl, err := time.ParseDuration(val); err == nil {
			c.CacheTTL = ttl
		}
	}

	if val := os.Getenv("HTTP_TIMEOUT"); val != "" {
		if timeout, err := time.ParseDuration(val); err == nil {
			c.HTTPTimeout = timeout
		}
	}

	if val := os.Getenv("PUTCALL_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}

	if val := os.Getenv("LONGPORT_APP_KEY"); val != "" {
		c.LongportAppKey = val
	}
	if val := os.Getenv("LONGPORT_APP_SECRET"); val != "" {
		c.LongportAppSecret = val
	}
	if val := os.Getenv("LONGPORT_ACCESS_TOKEN"); val != "" {
		c.LongportAccessToken = val
	}
}

func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderYahoo, ProviderYahooWeb:
	case ProviderLongport:
		if c.LongportAppKey == "" || c.LongportAppSecret == "" || c.LongportAccessToken == "" {
			return fmt.Errorf("longport provider requires LONGPORT_APP_KEY, LONGPORT_APP_SECRET and LONGPORT_ACCESS_TOKEN")
		}
	default:
		return fmt.Errorf("unknown provider %q (expected %s, %s or %s)",
			c.Provider, ProviderYahoo, ProviderYahooWeb, ProviderLongport)
	}

	if c.CacheEnabled && c.CacheTTL <= 0 {
		return fmt.Errorf("cache ttl must be positive, got %s", c.CacheTTL)
	}

	return nil
}

func (c *Config) EnsureDirectories() error {
	dirs := []string{c.ProjectDir, c.DataCacheDir}
	for _, dir := range dirs {
		path := strings.TrimSpace(dir)
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", path, err)
		}
	}
	return nil
}

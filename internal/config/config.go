package config

import (
	"fmt"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	API     APIConfig     `toml:"api"`
	Cache   CacheConfig   `toml:"cache"`
	Storage StorageConfig `toml:"storage"`
	Logging LoggingConfig `toml:"logging"`
	MCP     MCPConfig     `toml:"mcp"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// APIConfig points at the two backend API groups.
type APIConfig struct {
	AssetsURL  string `toml:"assets_url"`
	FinanceURL string `toml:"finance_url"`
	Timeout    string `toml:"timeout"`
	Market     string `toml:"market"` // quote currency for crypto requests
}

// GetTimeout parses the request timeout, falling back to 10s.
func (c *APIConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// CacheConfig optionally bounds the store's latest-quote cache. Both
// settings are opt-in: left empty, a quote is kept until the next fetch
// for the same symbol replaces it.
type CacheConfig struct {
	QuoteTTL  string `toml:"quote_ttl"`
	MaxQuotes int    `toml:"max_quotes"`
}

// GetQuoteTTL parses the quote TTL. Zero means quotes never expire.
func (c *CacheConfig) GetQuoteTTL() time.Duration {
	d, err := time.ParseDuration(c.QuoteTTL)
	if err != nil || d <= 0 {
		return 0
	}
	return d
}

// StorageConfig contains storage layer settings.
type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig contains BadgerDB-specific settings.
type BadgerConfig struct {
	Path string `toml:"path"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Format     string   `toml:"format"`
	Outputs    []string `toml:"outputs"` // "console", "file"
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// MCPConfig toggles the /mcp tool endpoint.
type MCPConfig struct {
	Enabled bool `toml:"enabled"`
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies FINANCE_* environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if port := os.Getenv("FINANCE_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("FINANCE_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if u := os.Getenv("FINANCE_ASSETS_URL"); u != "" {
		config.API.AssetsURL = strings.TrimRight(u, "/")
	}
	if u := os.Getenv("FINANCE_FINANCE_URL"); u != "" {
		config.API.FinanceURL = strings.TrimRight(u, "/")
	}
	if timeout := os.Getenv("FINANCE_API_TIMEOUT"); timeout != "" {
		config.API.Timeout = timeout
	}
	if badgerPath := os.Getenv("FINANCE_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}
	if level := os.Getenv("FINANCE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("FINANCE_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if enabled := os.Getenv("FINANCE_MCP_ENABLED"); enabled != "" {
		if b, err := strconv.ParseBool(enabled); err == nil {
			config.MCP.Enabled = b
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate reports mandatory settings that are missing or malformed. An
// empty result means the config is usable.
func (c *Config) Validate() []string {
	var issues []string
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		issues = append(issues, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	for name, raw := range map[string]string{"api.assets_url": c.API.AssetsURL, "api.finance_url": c.API.FinanceURL} {
		u, err := url.Parse(raw)
		if raw == "" || err != nil || u.Scheme == "" || u.Host == "" {
			issues = append(issues, fmt.Sprintf("%s must be an absolute URL, got %q", name, raw))
		}
	}
	if c.Storage.Badger.Path == "" {
		issues = append(issues, "storage.badger.path is required")
	}
	sort.Strings(issues)
	return issues
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.Server.Port != 4250 {
		t.Errorf("expected default port 4250, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "localhost" {
		t.Errorf("expected default host localhost, got %s", cfg.Server.Host)
	}
	if cfg.API.AssetsURL != "http://localhost:8081/api/assets" {
		t.Errorf("unexpected default assets url %s", cfg.API.AssetsURL)
	}
	if cfg.API.FinanceURL != "http://localhost:8081/api/finance" {
		t.Errorf("unexpected default finance url %s", cfg.API.FinanceURL)
	}
	if cfg.API.Market != "USD" {
		t.Errorf("expected default market USD, got %s", cfg.API.Market)
	}
	if cfg.Storage.Badger.Path != "./data/finance" {
		t.Errorf("expected default badger path ./data/finance, got %s", cfg.Storage.Badger.Path)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Logging.Level)
	}
	if !cfg.MCP.Enabled {
		t.Error("expected MCP enabled by default")
	}
	if cfg.Cache.GetQuoteTTL() != 0 || cfg.Cache.MaxQuotes != 0 {
		t.Errorf("expected quote cache unbounded by default, got %+v", cfg.Cache)
	}
}

func TestLoadFromFiles_NoFiles(t *testing.T) {
	cfg, err := LoadFromFiles()
	if err != nil {
		t.Fatalf("LoadFromFiles with no files should not error: %v", err)
	}
	if cfg.Server.Port != 4250 {
		t.Errorf("expected default port 4250, got %d", cfg.Server.Port)
	}
}

func TestLoadFromFiles_ValidTOML(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "test.toml")

	content := `
[server]
port = 9090
host = "0.0.0.0"

[api]
assets_url = "http://backend:9000/api/assets"
finance_url = "http://backend:9000/api/finance"
timeout = "3s"
market = "EUR"

[cache]
quote_ttl = "30s"
max_quotes = 10

[storage.badger]
path = "/tmp/test-db"

[logging]
level = "debug"
format = "json"
outputs = ["console", "file"]

[mcp]
enabled = false
`
	if err := os.WriteFile(tomlPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFiles(tomlPath)
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.API.AssetsURL != "http://backend:9000/api/assets" {
		t.Errorf("unexpected assets url %s", cfg.API.AssetsURL)
	}
	if cfg.API.GetTimeout() != 3*time.Second {
		t.Errorf("expected timeout 3s, got %v", cfg.API.GetTimeout())
	}
	if cfg.API.Market != "EUR" {
		t.Errorf("expected market EUR, got %s", cfg.API.Market)
	}
	if cfg.Cache.GetQuoteTTL() != 30*time.Second {
		t.Errorf("expected quote ttl 30s, got %v", cfg.Cache.GetQuoteTTL())
	}
	if cfg.Cache.MaxQuotes != 10 {
		t.Errorf("expected max quotes 10, got %d", cfg.Cache.MaxQuotes)
	}
	if cfg.Storage.Badger.Path != "/tmp/test-db" {
		t.Errorf("expected badger path /tmp/test-db, got %s", cfg.Storage.Badger.Path)
	}
	if len(cfg.Logging.Outputs) != 2 {
		t.Errorf("expected 2 log outputs, got %v", cfg.Logging.Outputs)
	}
	if cfg.MCP.Enabled {
		t.Error("expected MCP disabled")
	}
}

func TestLoadFromFiles_MultipleFiles(t *testing.T) {
	dir := t.TempDir()

	base := filepath.Join(dir, "base.toml")
	if err := os.WriteFile(base, []byte("[server]\nport = 3000\nhost = \"base-host\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	override := filepath.Join(dir, "override.toml")
	if err := os.WriteFile(override, []byte("[server]\nport = 4000\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFiles(base, override)
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}
	if cfg.Server.Port != 4000 {
		t.Errorf("expected port 4000 from override, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "base-host" {
		t.Errorf("expected host base-host from base file, got %s", cfg.Server.Host)
	}
}

func TestLoadFromFiles_MissingFile(t *testing.T) {
	if _, err := LoadFromFiles("/nonexistent/path.toml"); err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestLoadFromFiles_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "invalid.toml")
	if err := os.WriteFile(tomlPath, []byte("this is not valid {{toml"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFiles(tomlPath); err == nil {
		t.Error("expected error for invalid TOML, got nil")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := NewDefaultConfig()

	t.Setenv("FINANCE_SERVER_PORT", "9999")
	t.Setenv("FINANCE_SERVER_HOST", "env-host")
	t.Setenv("FINANCE_ASSETS_URL", "http://env/api/assets/")
	t.Setenv("FINANCE_FINANCE_URL", "http://env/api/finance")
	t.Setenv("FINANCE_API_TIMEOUT", "2s")
	t.Setenv("FINANCE_BADGER_PATH", "/env/path")
	t.Setenv("FINANCE_LOG_LEVEL", "error")
	t.Setenv("FINANCE_MCP_ENABLED", "false")

	applyEnvOverrides(cfg)

	if cfg.Server.Port != 9999 {
		t.Errorf("expected env port 9999, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "env-host" {
		t.Errorf("expected env host env-host, got %s", cfg.Server.Host)
	}
	if cfg.API.AssetsURL != "http://env/api/assets" {
		t.Errorf("expected trailing slash trimmed, got %s", cfg.API.AssetsURL)
	}
	if cfg.API.FinanceURL != "http://env/api/finance" {
		t.Errorf("unexpected finance url %s", cfg.API.FinanceURL)
	}
	if cfg.API.GetTimeout() != 2*time.Second {
		t.Errorf("expected 2s timeout, got %v", cfg.API.GetTimeout())
	}
	if cfg.Storage.Badger.Path != "/env/path" {
		t.Errorf("expected env badger path /env/path, got %s", cfg.Storage.Badger.Path)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("expected env log level error, got %s", cfg.Logging.Level)
	}
	if cfg.MCP.Enabled {
		t.Error("expected MCP disabled by env")
	}
}

func TestApplyEnvOverrides_InvalidValues(t *testing.T) {
	cfg := NewDefaultConfig()

	t.Setenv("FINANCE_SERVER_PORT", "not-a-number")
	t.Setenv("FINANCE_MCP_ENABLED", "maybe")

	applyEnvOverrides(cfg)

	if cfg.Server.Port != 4250 {
		t.Errorf("expected default port kept, got %d", cfg.Server.Port)
	}
	if !cfg.MCP.Enabled {
		t.Error("expected MCP default kept for unparsable value")
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := NewDefaultConfig()

	ApplyFlagOverrides(cfg, 7000, "flag-host")
	if cfg.Server.Port != 7000 || cfg.Server.Host != "flag-host" {
		t.Errorf("flags not applied: %+v", cfg.Server)
	}

	ApplyFlagOverrides(cfg, 0, "")
	if cfg.Server.Port != 7000 || cfg.Server.Host != "flag-host" {
		t.Errorf("zero flags should not override: %+v", cfg.Server)
	}
}

func TestGetTimeout_InvalidFallsBack(t *testing.T) {
	api := APIConfig{Timeout: "soon"}
	if api.GetTimeout() != 10*time.Second {
		t.Errorf("expected 10s fallback, got %v", api.GetTimeout())
	}
	cache := CacheConfig{QuoteTTL: "-5s"}
	if cache.GetQuoteTTL() != 0 {
		t.Errorf("expected invalid ttl to disable expiry, got %v", cache.GetQuoteTTL())
	}
}

func TestGetVersionInfo(t *testing.T) {
	info := GetVersionInfo()
	if info.Version != Version || info.Build != Build || info.GitCommit != GitCommit {
		t.Errorf("unexpected version info %+v", info)
	}
	if GetFullVersion() == "" {
		t.Error("expected non-empty full version")
	}
}

func TestValidate(t *testing.T) {
	cfg := NewDefaultConfig()
	if issues := cfg.Validate(); len(issues) != 0 {
		t.Fatalf("expected default config to validate, got %v", issues)
	}

	cfg.Server.Port = 0
	cfg.API.FinanceURL = "localhost:8081"
	cfg.Storage.Badger.Path = ""

	issues := cfg.Validate()
	if len(issues) != 3 {
		t.Fatalf("expected 3 issues, got %d: %v", len(issues), issues)
	}
	if !strings.HasPrefix(issues[0], "api.finance_url") {
		t.Errorf("expected sorted issues, first was %q", issues[0])
	}
}

func TestSampleConfigFile(t *testing.T) {
	cfg, err := LoadFromFiles(filepath.Join("..", "..", "config", "finance-portal.toml"))
	if err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
	if issues := cfg.Validate(); len(issues) != 0 {
		t.Errorf("sample config has issues: %v", issues)
	}
	if cfg.Logging.MaxBackups != 5 {
		t.Errorf("expected max_backups 5 from sample, got %d", cfg.Logging.MaxBackups)
	}
}

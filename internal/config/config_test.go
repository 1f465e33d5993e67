package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	cfg := Config{}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_EmptyBaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.Upstream.BaseURL = "  "

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for empty base_url")
	}
	if err.Error() != "upstream.base_url is required" {
		t.Errorf("unexpected error message: %q", err.Error())
	}
}

func TestValidate_NonPositiveTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.Upstream.TimeoutSec = -1

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative timeout")
	}
}

func TestValidate_NonPositiveRetries(t *testing.T) {
	cfg := validConfig()
	cfg.Upstream.MaxRetries = -2

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for negative retries")
	}
	expected := "upstream.max_retries must be positive, got -2"
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_InconsistentLimits(t *testing.T) {
	tests := []struct {
		name   string
		search SearchConfig
	}{
		{"min above max", SearchConfig{MaxQueryLength: 500, MinLimit: 10, MaxLimit: 5, DefaultLimit: 5}},
		{"negative min", SearchConfig{MaxQueryLength: 500, MinLimit: -1, MaxLimit: 5, DefaultLimit: 5}},
		{"default above max", SearchConfig{MaxQueryLength: 500, MinLimit: 1, MaxLimit: 5, DefaultLimit: 6}},
		{"negative query length", SearchConfig{MaxQueryLength: -1, MinLimit: 1, MaxLimit: 5, DefaultLimit: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Search = tt.search
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestValidate_Transport(t *testing.T) {
	for _, tr := range []string{TransportStdio, TransportHTTP} {
		t.Run("transport="+tr, func(t *testing.T) {
			cfg := validConfig()
			cfg.Server.Transport = tr
			if err := cfg.Validate(); err != nil {
				t.Fatalf("unexpected error for transport %q: %v", tr, err)
			}
		})
	}

	cfg := validConfig()
	cfg.Server.Transport = "sse"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown transport")
	}
	expected := `server.transport must be "stdio" or "http", got "sse"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_InvalidPortOnlyMattersForHTTP(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = -1

	if err := cfg.Validate(); err != nil {
		t.Fatalf("stdio transport should ignore http.port: %v", err)
	}

	cfg.Server.Transport = TransportHTTP
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Server.Name != "openfda-classification" {
		t.Errorf("expected Server.Name=openfda-classification, got %q", cfg.Server.Name)
	}
	if cfg.Server.Transport != TransportStdio {
		t.Errorf("expected Transport=stdio, got %q", cfg.Server.Transport)
	}
	if cfg.Upstream.BaseURL != "https://api.fda.gov" {
		t.Errorf("expected BaseURL=https://api.fda.gov, got %q", cfg.Upstream.BaseURL)
	}
	if cfg.Upstream.TimeoutSec != 30 {
		t.Errorf("expected TimeoutSec=30, got %d", cfg.Upstream.TimeoutSec)
	}
	if cfg.Upstream.MaxRetries != 3 {
		t.Errorf("expected MaxRetries=3, got %d", cfg.Upstream.MaxRetries)
	}
	if cfg.Upstream.RetryDelayMs != 1000 {
		t.Errorf("expected RetryDelayMs=1000, got %d", cfg.Upstream.RetryDelayMs)
	}
	if cfg.Upstream.RateLimitPerMinute != 240 {
		t.Errorf("expected RateLimitPerMinute=240, got %d", cfg.Upstream.RateLimitPerMinute)
	}
	if cfg.Search.MaxQueryLength != 500 {
		t.Errorf("expected MaxQueryLength=500, got %d", cfg.Search.MaxQueryLength)
	}
	if cfg.Search.MinLimit != 1 || cfg.Search.MaxLimit != 1000 || cfg.Search.DefaultLimit != 10 {
		t.Errorf("unexpected limits: %+v", cfg.Search)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		Server:   ServerConfig{Name: "custom", Transport: TransportHTTP},
		HTTP:     HTTPConfig{Port: 9000, ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Upstream: UpstreamConfig{BaseURL: "http://localhost:9999", TimeoutSec: 5, MaxRetries: 1, RetryDelayMs: 10},
		Search:   SearchConfig{MaxQueryLength: 100, MinLimit: 2, MaxLimit: 50, DefaultLimit: 5},
	}
	cfg.ApplyDefaults()

	if cfg.Server.Name != "custom" {
		t.Errorf("expected Name=custom, got %q", cfg.Server.Name)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Upstream.BaseURL != "http://localhost:9999" {
		t.Errorf("expected custom BaseURL, got %q", cfg.Upstream.BaseURL)
	}
	if cfg.Upstream.RetryDelayMs != 10 {
		t.Errorf("expected RetryDelayMs=10, got %d", cfg.Upstream.RetryDelayMs)
	}
	if cfg.Search.MaxLimit != 50 {
		t.Errorf("expected MaxLimit=50, got %d", cfg.Search.MaxLimit)
	}
}

func TestDerivedValues(t *testing.T) {
	cfg := validConfig()

	b := cfg.Bounds()
	if b.MaxQueryLength != 500 || b.MinLimit != 1 || b.MaxLimit != 1000 || b.DefaultLimit != 10 {
		t.Errorf("unexpected bounds: %+v", b)
	}

	p := cfg.RetryPolicy()
	if p.MaxAttempts != 3 || p.Delay != time.Second {
		t.Errorf("unexpected policy: %+v", p)
	}

	if cfg.Timeout() != 30*time.Second {
		t.Errorf("Timeout() = %v", cfg.Timeout())
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("OPENFDA_TEST_URL", "http://127.0.0.1:1234")

	got := string(expandEnvVars([]byte("a: ${OPENFDA_TEST_URL}\nb: ${OPENFDA_TEST_MISSING:-fallback}\nc: ${OPENFDA_TEST_MISSING}")))
	want := "a: http://127.0.0.1:1234\nb: fallback\nc: "
	if got != want {
		t.Errorf("expandEnvVars() = %q, want %q", got, want)
	}
}

func TestLoad_FromConfigPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	content := strings.Join([]string{
		"server:",
		"  transport: http",
		"http:",
		"  port: 9191",
		"upstream:",
		"  base_url: ${OPENFDA_TEST_BASE:-http://localhost:8000}",
		"  timeout_sec: 5",
		"  max_retries: 2",
		"search:",
		"  default_limit: 25",
		"logging:",
		"  level: debug",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Transport != TransportHTTP || cfg.HTTP.Port != 9191 {
		t.Errorf("unexpected server config: %+v %+v", cfg.Server, cfg.HTTP)
	}
	if cfg.Upstream.BaseURL != "http://localhost:8000" {
		t.Errorf("BaseURL = %q", cfg.Upstream.BaseURL)
	}
	if cfg.Upstream.MaxRetries != 2 || cfg.Upstream.TimeoutSec != 5 {
		t.Errorf("unexpected upstream config: %+v", cfg.Upstream)
	}
	if cfg.Search.DefaultLimit != 25 || cfg.Search.MaxLimit != 1000 {
		t.Errorf("unexpected search config: %+v", cfg.Search)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
}

func TestLoad_LogLevelEnvOverride(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("LOG_LEVEL", "WARN")

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Upstream.BaseURL != "https://api.fda.gov" {
		t.Errorf("BaseURL = %q", cfg.Upstream.BaseURL)
	}
}

func TestLoad_InvalidConfigRefused(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("upstream:\n  timeout_sec: -5\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)

	_, err := Load("test")
	if err == nil {
		t.Fatal("expected error for negative timeout")
	}
	if !strings.Contains(err.Error(), "invalid config") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("upstream: [unterminated"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)

	if _, err := Load("test"); err == nil {
		t.Fatal("expected parse error")
	}
}

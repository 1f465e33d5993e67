package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/openfda-mcp/internal/domain/retry"
	"github.com/kailas-cloud/openfda-mcp/internal/domain/search/request"
)

// Supported MCP transports.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config holds the openfda-mcp configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	HTTP     HTTPConfig     `yaml:"http"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Search   SearchConfig   `yaml:"search"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds MCP server identity and transport selection.
type ServerConfig struct {
	Name      string `yaml:"name"`
	Transport string `yaml:"transport"` // stdio (default), http
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
	File  string `yaml:"file"`  // optional log file, written in addition to stderr
}

// HTTPConfig holds HTTP server settings, used when server.transport is http.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// UpstreamConfig holds openFDA API settings.
type UpstreamConfig struct {
	BaseURL            string `yaml:"base_url"`
	TimeoutSec         int    `yaml:"timeout_sec"`
	MaxRetries         int    `yaml:"max_retries"` // total attempts, first one included
	RetryDelayMs       int    `yaml:"retry_delay_ms"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute"` // advisory only
	UserAgent          string `yaml:"user_agent"`
}

// SearchConfig holds tool argument limits.
type SearchConfig struct {
	MaxQueryLength int `yaml:"max_query_length"`
	MinLimit       int `yaml:"min_limit"`
	MaxLimit       int `yaml:"max_limit"`
	DefaultLimit   int `yaml:"default_limit"`
}

// Load reads configuration by environment name (local, dev, prod).
// A missing config file is not an error: defaults reproduce the openFDA constants.
func Load(env string) (Config, error) {
	// .env is optional; real environment variables win over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	configPath := findConfigPath(env)

	var cfg Config
	data, err := os.ReadFile(filepath.Clean(configPath))
	switch {
	case err == nil:
		// Substitute env variables of the form ${VAR}
		data = expandEnvVars(data)
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// defaults only
	default:
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		cfg.Logging.Level = strings.ToLower(lvl)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Server.Name == "" {
		c.Server.Name = "openfda-classification"
	}
	if c.Server.Transport == "" {
		c.Server.Transport = TransportStdio
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// one search may take 3 x 30s plus retry pauses
		c.HTTP.WriteTimeoutSec = 120
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Upstream.BaseURL == "" {
		c.Upstream.BaseURL = "https://api.fda.gov"
	}
	if c.Upstream.TimeoutSec == 0 {
		c.Upstream.TimeoutSec = 30
	}
	if c.Upstream.MaxRetries == 0 {
		c.Upstream.MaxRetries = retry.DefaultMaxAttempts
	}
	if c.Upstream.RetryDelayMs == 0 {
		c.Upstream.RetryDelayMs = int(retry.DefaultDelay / time.Millisecond)
	}
	if c.Upstream.RateLimitPerMinute == 0 {
		c.Upstream.RateLimitPerMinute = 240
	}
	if c.Upstream.UserAgent == "" {
		c.Upstream.UserAgent = "openfda-mcp"
	}
	if c.Search.MaxQueryLength == 0 {
		c.Search.MaxQueryLength = request.MaxQueryLength
	}
	if c.Search.MinLimit == 0 {
		c.Search.MinLimit = request.MinLimit
	}
	if c.Search.MaxLimit == 0 {
		c.Search.MaxLimit = request.MaxLimit
	}
	if c.Search.DefaultLimit == 0 {
		c.Search.DefaultLimit = request.DefaultLimit
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Upstream.BaseURL) == "" {
		return fmt.Errorf("upstream.base_url is required")
	}
	if c.Upstream.TimeoutSec <= 0 {
		return fmt.Errorf("upstream.timeout_sec must be positive, got %d", c.Upstream.TimeoutSec)
	}
	if c.Upstream.MaxRetries <= 0 {
		return fmt.Errorf("upstream.max_retries must be positive, got %d", c.Upstream.MaxRetries)
	}
	if c.Upstream.RetryDelayMs < 0 {
		return fmt.Errorf("upstream.retry_delay_ms must not be negative, got %d", c.Upstream.RetryDelayMs)
	}
	if c.Search.MaxQueryLength <= 0 {
		return fmt.Errorf("search.max_query_length must be positive, got %d", c.Search.MaxQueryLength)
	}
	if c.Search.MinLimit <= 0 || c.Search.MinLimit > c.Search.MaxLimit {
		return fmt.Errorf(
			"search limits must satisfy 0 < min_limit <= max_limit, got min=%d max=%d",
			c.Search.MinLimit, c.Search.MaxLimit,
		)
	}
	if c.Search.DefaultLimit < c.Search.MinLimit || c.Search.DefaultLimit > c.Search.MaxLimit {
		return fmt.Errorf(
			"search.default_limit must be between %d and %d, got %d",
			c.Search.MinLimit, c.Search.MaxLimit, c.Search.DefaultLimit,
		)
	}
	switch c.Server.Transport {
	case TransportStdio:
	case TransportHTTP:
		if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
			return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
		}
	default:
		return fmt.Errorf("server.transport must be %q or %q, got %q",
			TransportStdio, TransportHTTP, c.Server.Transport)
	}
	return nil
}

// Bounds returns the argument limits for request validation.
func (c *Config) Bounds() request.Bounds {
	return request.Bounds{
		MaxQueryLength: c.Search.MaxQueryLength,
		MinLimit:       c.Search.MinLimit,
		MaxLimit:       c.Search.MaxLimit,
		DefaultLimit:   c.Search.DefaultLimit,
	}
}

// RetryPolicy returns the upstream retry policy.
func (c *Config) RetryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: c.Upstream.MaxRetries,
		Delay:       time.Duration(c.Upstream.RetryDelayMs) * time.Millisecond,
	}
}

// Timeout returns the per-attempt upstream timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Upstream.TimeoutSec) * time.Second
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}

	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}

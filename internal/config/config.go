package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the foofind-search configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Daemon  DaemonConfig  `yaml:"daemon"`
	Redis   RedisConfig   `yaml:"redis"`
	Sources SourcesConfig `yaml:"sources"`
	Cache   CacheConfig   `yaml:"cache"`
	Stats   StatsConfig   `yaml:"stats"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings for the maintenance routes.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DaemonConfig holds search daemon connection settings and query budgets.
type DaemonConfig struct {
	Addr             string `yaml:"addr"`
	Index            string `yaml:"index"`
	ConnectTimeoutMs int    `yaml:"connect_timeout_ms"`
	MaxQueryTimeMs   int    `yaml:"max_query_time_ms"`
	MaxOpenConns     int    `yaml:"max_open_conns"`
	PageSize         int    `yaml:"page_size"`
	MaxMatches       int    `yaml:"max_matches"`
	Cutoff           int    `yaml:"cutoff"`
	MaxBatchSize     int    `yaml:"max_batch_size"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	KeyPrefix        string   `yaml:"key_prefix"`
}

// SourcesConfig selects the source registry backend.
type SourcesConfig struct {
	Driver      string `yaml:"driver"` // redis, postgres (default: redis)
	DSN         string `yaml:"dsn"`
	CacheTTLSec int    `yaml:"cache_ttl_sec"`
}

// CacheConfig holds result cache settings.
type CacheConfig struct {
	Enabled       *bool `yaml:"enabled"`
	SearchTTLSec  int   `yaml:"search_ttl_sec"`
	RelatedTTLSec int   `yaml:"related_ttl_sec"`
}

// IsEnabled reports whether the result cache is on (default: true).
func (c CacheConfig) IsEnabled() bool { return c.Enabled == nil || *c.Enabled }

// StatsConfig holds ranking statistics refresh settings.
type StatsConfig struct {
	RefreshIntervalSec int `yaml:"refresh_interval_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
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
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Daemon.Index == "" {
		c.Daemon.Index = "idx_files"
	}
	if c.Daemon.ConnectTimeoutMs <= 0 {
		c.Daemon.ConnectTimeoutMs = 1000
	}
	if c.Daemon.MaxQueryTimeMs <= 0 {
		c.Daemon.MaxQueryTimeMs = 1500
	}
	if c.Daemon.MaxOpenConns <= 0 {
		c.Daemon.MaxOpenConns = 16
	}
	if c.Daemon.PageSize <= 0 {
		c.Daemon.PageSize = 10
	}
	if c.Daemon.MaxMatches <= 0 {
		c.Daemon.MaxMatches = 1000
	}
	if c.Daemon.Cutoff <= 0 {
		c.Daemon.Cutoff = 2000000
	}
	if c.Daemon.MaxBatchSize <= 0 {
		c.Daemon.MaxBatchSize = 32
	}
	if c.Redis.ReadinessTimeout <= 0 {
		c.Redis.ReadinessTimeout = 10
	}
	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = "foofind:"
	}
	if c.Sources.Driver == "" {
		c.Sources.Driver = "redis"
	}
	if c.Sources.CacheTTLSec <= 0 {
		c.Sources.CacheTTLSec = 30
	}
	if c.Cache.SearchTTLSec <= 0 {
		c.Cache.SearchTTLSec = 21600
	}
	if c.Cache.RelatedTTLSec <= 0 {
		c.Cache.RelatedTTLSec = 3600
	}
	if c.Stats.RefreshIntervalSec <= 0 {
		c.Stats.RefreshIntervalSec = 60
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Daemon.Addr == "" {
		return fmt.Errorf("daemon.addr is required")
	}
	if c.Daemon.PageSize > c.Daemon.MaxMatches {
		return fmt.Errorf("daemon.page_size (%d) must not exceed daemon.max_matches (%d)",
			c.Daemon.PageSize, c.Daemon.MaxMatches)
	}
	if len(c.Redis.Addrs) == 0 {
		return fmt.Errorf("redis.addrs is required")
	}
	switch c.Sources.Driver {
	case "redis":
		// ok
	case "postgres":
		if c.Sources.DSN == "" {
			return fmt.Errorf("sources.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("sources.driver must be \"redis\" or \"postgres\", got %q", c.Sources.Driver)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
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

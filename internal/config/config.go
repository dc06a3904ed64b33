// Package config loads the liquiditick server configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverRedis  = "redis"
	DriverValkey = "valkey"
	DriverMemory = "memory"
)

// Config holds the liquiditick API configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Storage StorageConfig `yaml:"storage"`
	Quota   QuotaConfig   `yaml:"quota"`
	Source  SourceConfig  `yaml:"source"`
	Report  ReportConfig  `yaml:"report"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds the bearer keys guarding the usage admin routes.
type AuthConfig struct {
	AdminKeys []string `yaml:"admin_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// StorageConfig holds the key-value store settings.
type StorageConfig struct {
	Driver           string   `yaml:"driver"` // redis, valkey, memory (default: memory)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	KeyPrefix        string   `yaml:"key_prefix"`
}

// QuotaConfig holds the free-tier allowance.
type QuotaConfig struct {
	DailyLimit int    `yaml:"daily_limit"`
	Timezone   string `yaml:"timezone"` // IANA name; empty means the server's local zone
}

// SourceConfig holds the opportunity database settings.
type SourceConfig struct {
	DSN         string `yaml:"dsn"` // empty or placeholder runs in demo mode
	AutoMigrate bool   `yaml:"auto_migrate"`
	CacheTTLSec int    `yaml:"cache_ttl_sec"` // 0 disables the cache
}

// ReportConfig holds the daily report narrator settings.
type ReportConfig struct {
	APIKey     string `yaml:"api_key"` // empty uses the template narrative
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	MaxTokens  int    `yaml:"max_tokens"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// envOverlay lists the variables that override YAML after load. Zero values are ignored.
type envOverlay struct {
	Port          int      `env:"LIQUIDITICK_HTTP_PORT"`
	StorageDriver string   `env:"LIQUIDITICK_STORAGE_DRIVER"`
	StorageAddrs  []string `env:"LIQUIDITICK_STORAGE_ADDRS" envSeparator:","`
	DailyLimit    int      `env:"LIQUIDITICK_DAILY_LIMIT"`
	Timezone      string   `env:"LIQUIDITICK_TIMEZONE"`
	SourceDSN     string   `env:"LIQUIDITICK_SOURCE_DSN"`
	ReportAPIKey  string   `env:"LIQUIDITICK_REPORT_API_KEY"`
	AdminKeys     []string `env:"LIQUIDITICK_ADMIN_KEYS" envSeparator:","`
	LogLevel      string   `env:"LIQUIDITICK_LOG_LEVEL"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return parse(data)
}

func parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

func (c *Config) applyEnv() error {
	var o envOverlay
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	if o.Port != 0 {
		c.HTTP.Port = o.Port
	}
	if o.StorageDriver != "" {
		c.Storage.Driver = o.StorageDriver
	}
	if len(o.StorageAddrs) > 0 {
		c.Storage.Addrs = o.StorageAddrs
	}
	if o.DailyLimit != 0 {
		c.Quota.DailyLimit = o.DailyLimit
	}
	if o.Timezone != "" {
		c.Quota.Timezone = o.Timezone
	}
	if o.SourceDSN != "" {
		c.Source.DSN = o.SourceDSN
	}
	if o.ReportAPIKey != "" {
		c.Report.APIKey = o.ReportAPIKey
	}
	if len(o.AdminKeys) > 0 {
		c.Auth.AdminKeys = o.AdminKeys
	}
	if o.LogLevel != "" {
		c.Logging.Level = o.LogLevel
	}
	return nil
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverMemory
	}
	if c.Storage.ReadinessTimeout <= 0 {
		c.Storage.ReadinessTimeout = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "liquiditick:"
	}
	if c.Quota.DailyLimit <= 0 {
		c.Quota.DailyLimit = 10
	}
	if c.Report.Model == "" {
		c.Report.Model = "gpt-4o-mini"
	}
	if c.Report.MaxTokens <= 0 {
		c.Report.MaxTokens = 200
	}
	if c.Report.TimeoutSec <= 0 {
		c.Report.TimeoutSec = 15
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Storage.Driver {
	case DriverRedis, DriverValkey:
		if len(c.Storage.Addrs) == 0 {
			return fmt.Errorf("storage.addrs is required for driver %q", c.Storage.Driver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("storage.driver must be %q, %q or %q, got %q",
			DriverRedis, DriverValkey, DriverMemory, c.Storage.Driver)
	}
	if _, err := c.Quota.Location(); err != nil {
		return err
	}
	if c.Source.CacheTTLSec < 0 {
		return fmt.Errorf("source.cache_ttl_sec must not be negative, got %d", c.Source.CacheTTLSec)
	}
	return nil
}

// Location resolves the quota timezone.
func (q QuotaConfig) Location() (*time.Location, error) {
	if q.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(q.Timezone)
	if err != nil {
		return nil, fmt.Errorf("quota.timezone %q: %w", q.Timezone, err)
	}
	return loc, nil
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

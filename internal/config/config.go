package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"docproc/internal/domain"

	"gopkg.in/yaml.v3"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StorageSupabase = "supabase"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort      string        `yaml:"server_port"`
	BackendURL      string        `yaml:"backend_url"`
	BackendTimeout  time.Duration `yaml:"-"`
	LogLevel        string        `yaml:"log_level"`
	StorageDriver   string        `yaml:"storage_driver"`
	StatePath       string        `yaml:"state_path"`
	SupabaseURL     string        `yaml:"supabase_url"`
	SupabaseKey     string        `yaml:"supabase_anon_key"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	MaxUploadMemory int64         `yaml:"max_upload_memory"`

	// BackendTimeoutRaw carries the YAML value, e.g. "30s".
	BackendTimeoutRaw string `yaml:"backend_timeout"`
}

func defaults() *AppConfig {
	return &AppConfig{
		ServerPort:      "8080",
		BackendURL:      "http://localhost:8000",
		LogLevel:        "info",
		StorageDriver:   StorageFile,
		StatePath:       "./data/client_state.json",
		MaxUploadMemory: 32 << 20,
	}
}

// NewConfig creates a configuration from defaults and the environment. A
// CONFIG_FILE that cannot be read is ignored; use Load to see the error.
func NewConfig() domain.Config {
	cfg, err := Load()
	if err != nil {
		cfg = defaults()
		cfg.applyEnv()
	}
	return cfg
}

// Load builds the configuration: defaults, then the YAML file named by
// CONFIG_FILE, then environment variables.
func Load() (*AppConfig, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *AppConfig) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	if c.BackendTimeoutRaw != "" {
		d, err := time.ParseDuration(c.BackendTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parse backend_timeout: %w", err)
		}
		c.BackendTimeout = d
	}
	return nil
}

func (c *AppConfig) applyEnv() {
	// Cloud Run (and many PaaS) provide the listening port via PORT.
	// Keep SERVER_PORT for local/dev compatibility.
	c.ServerPort = getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", c.ServerPort))
	c.BackendURL = getEnvOrDefault("BACKEND_URL", c.BackendURL)
	c.BackendTimeout = getEnvDurationOrDefault("BACKEND_TIMEOUT", c.BackendTimeout)
	c.LogLevel = getEnvOrDefault("LOG_LEVEL", c.LogLevel)
	c.StorageDriver = strings.ToLower(getEnvOrDefault("STORAGE_DRIVER", c.StorageDriver))
	c.StatePath = getEnvOrDefault("STATE_PATH", c.StatePath)
	c.SupabaseURL = getEnvOrDefault("SUPABASE_URL", c.SupabaseURL)
	c.SupabaseKey = getEnvOrDefault("SUPABASE_ANON_KEY", c.SupabaseKey)
	c.MaxUploadMemory = getEnvInt64OrDefault("MAX_UPLOAD_MEMORY", c.MaxUploadMemory)
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		c.AllowedOrigins = splitList(origins)
	}
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetBackendURL returns the base URL of the extraction backend
func (c *AppConfig) GetBackendURL() string {
	return c.BackendURL
}

// GetBackendTimeout returns the per-request timeout, 0 for none
func (c *AppConfig) GetBackendTimeout() time.Duration {
	return c.BackendTimeout
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetStorageDriver returns the client storage driver
func (c *AppConfig) GetStorageDriver() string {
	return c.StorageDriver
}

// GetStatePath returns the file used by the file storage driver
func (c *AppConfig) GetStatePath() string {
	return c.StatePath
}

// GetSupabaseURL returns the Supabase URL
func (c *AppConfig) GetSupabaseURL() string {
	return c.SupabaseURL
}

// GetSupabaseKey returns the Supabase anon key
func (c *AppConfig) GetSupabaseKey() string {
	return c.SupabaseKey
}

// GetAllowedOrigins returns the CORS origins; empty means same-origin only
func (c *AppConfig) GetAllowedOrigins() []string {
	return c.AllowedOrigins
}

// GetMaxUploadMemory returns the multipart memory limit
func (c *AppConfig) GetMaxUploadMemory() int64 {
	return c.MaxUploadMemory
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDurationOrDefault accepts "30s" style durations or plain seconds.
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

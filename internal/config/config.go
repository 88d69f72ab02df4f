package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultDataSource = "https://docs.google.com/spreadsheets/d/e/2PACX-1vR39zCK50jRbeuJonUUGCWGa5t1psOH98nuZrZpZtVUtS8j_EFGg2WwqlTZmSlkjmGI6wK_HIIqKsR3/pub?gid=789094753&single=true&output=csv"

const (
	EmptySelectionAll  = "all"
	EmptySelectionNone = "none"

	MinPageSize = 6
	MaxPageSize = 10
)

type Config struct {
	Server    ServerConfig
	Data      DataConfig
	Dashboard DashboardConfig
	Logger    LoggerConfig
	Security  SecurityConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DataConfig describes where the order dataset comes from. Source is either
// an http(s) URL or a local file path.
type DataConfig struct {
	Source       string
	FetchTimeout time.Duration
	FetchRetries int
}

type DashboardConfig struct {
	PageSize       int
	EmptySelection string
	Locale         string
}

type LoggerConfig struct {
	Level  string
	Format string
}

type SecurityConfig struct {
	EnableRateLimit bool
	RateLimitRPS    int
	RateLimitBurst  int
	AllowedOrigins  []string
	TrustedProxies  []string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnvString("SERVER_HOST", "localhost"),
			Port:            getEnvInt("SERVER_PORT", 8050),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Data: DataConfig{
			Source:       getEnvString("DATA_SOURCE", defaultDataSource),
			FetchTimeout: getEnvDuration("DATA_FETCH_TIMEOUT", 30*time.Second),
			FetchRetries: getEnvInt("DATA_FETCH_RETRIES", 2),
		},
		Dashboard: DashboardConfig{
			PageSize:       getEnvInt("DASHBOARD_PAGE_SIZE", MinPageSize),
			EmptySelection: getEnvString("DASHBOARD_EMPTY_SELECTION", EmptySelectionAll),
			Locale:         getEnvString("DASHBOARD_LOCALE", "es"),
		},
		Logger: LoggerConfig{
			Level:  getEnvString("LOG_LEVEL", "info"),
			Format: getEnvString("LOG_FORMAT", "json"),
		},
		Security: SecurityConfig{
			EnableRateLimit: getEnvBool("SECURITY_RATE_LIMIT_ENABLED", true),
			RateLimitRPS:    getEnvInt("SECURITY_RATE_LIMIT_RPS", 50),
			RateLimitBurst:  getEnvInt("SECURITY_RATE_LIMIT_BURST", 20),
			AllowedOrigins:  getEnvStringSlice("SECURITY_ALLOWED_ORIGINS", []string{"http://localhost:8050"}),
			TrustedProxies:  getEnvStringSlice("SECURITY_TRUSTED_PROXIES", []string{"127.0.0.1"}),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if strings.TrimSpace(c.Data.Source) == "" {
		return fmt.Errorf("data source cannot be empty")
	}

	if c.Data.FetchTimeout <= 0 {
		return fmt.Errorf("data fetch timeout must be positive")
	}

	if c.Data.FetchRetries < 0 {
		return fmt.Errorf("data fetch retries cannot be negative, got %d", c.Data.FetchRetries)
	}

	if c.Dashboard.PageSize < MinPageSize || c.Dashboard.PageSize > MaxPageSize {
		return fmt.Errorf("page size must be between %d and %d, got %d", MinPageSize, MaxPageSize, c.Dashboard.PageSize)
	}

	validSelections := []string{EmptySelectionAll, EmptySelectionNone}
	if !contains(validSelections, c.Dashboard.EmptySelection) {
		return fmt.Errorf("invalid empty selection policy %q, must be one of: %s", c.Dashboard.EmptySelection, strings.Join(validSelections, ", "))
	}

	if c.Dashboard.Locale == "" {
		return fmt.Errorf("dashboard locale cannot be empty")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.Logger.Level) {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.Logger.Level, strings.Join(validLogLevels, ", "))
	}

	validLogFormats := []string{"json", "text"}
	if !contains(validLogFormats, c.Logger.Format) {
		return fmt.Errorf("invalid log format %q, must be one of: %s", c.Logger.Format, strings.Join(validLogFormats, ", "))
	}

	if c.Security.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit RPS must be positive")
	}

	if c.Security.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit burst must be positive")
	}

	return nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// EmptySelectionMeansAll reports whether an explicit empty country selection
// should be read as "every country".
func (c DashboardConfig) EmptySelectionMeansAll() bool {
	return c.EmptySelection == EmptySelectionAll
}

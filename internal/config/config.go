package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Upload   UploadConfig   `yaml:"upload"`
	Logger   LoggerConfig   `yaml:"logger"`
	Security SecurityConfig `yaml:"security"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret"`
	TokenTTL   time.Duration `yaml:"token_ttl"`
	BcryptCost int           `yaml:"bcrypt_cost"`
}

type UploadConfig struct {
	// Dir receives uploaded files before parsing; cleared per request.
	Dir      string `yaml:"dir"`
	MaxBytes int64  `yaml:"max_bytes"`
}

type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type SecurityConfig struct {
	EnableRateLimit bool     `yaml:"rate_limit_enabled"`
	RateLimitRPS    int      `yaml:"rate_limit_rps"`
	RateLimitBurst  int      `yaml:"rate_limit_burst"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
	TrustedProxies  []string `yaml:"trusted_proxies"`
}

// Load builds configuration from the environment. A .env file in the
// working directory is read first when present, then an optional YAML file
// named by CONFIG_FILE overlays the defaults, and individual environment
// variables win over both.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8084,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "salescope.db",
		},
		Auth: AuthConfig{
			TokenTTL:   24 * time.Hour,
			BcryptCost: 12,
		},
		Upload: UploadConfig{
			Dir:      os.TempDir(),
			MaxBytes: 32 << 20,
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "json",
		},
		Security: SecurityConfig{
			EnableRateLimit: true,
			RateLimitRPS:    100,
			RateLimitBurst:  10,
			AllowedOrigins:  []string{"http://localhost:8084"},
			TrustedProxies:  []string{"127.0.0.1"},
		},
	}
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Host = getEnvString("SERVER_HOST", c.Server.Host)
	c.Server.Port = getEnvInt("SERVER_PORT", c.Server.Port)
	c.Server.ReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.IdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", c.Server.IdleTimeout)
	c.Server.ShutdownTimeout = getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)

	c.Database.Driver = getEnvString("DATABASE_DRIVER", c.Database.Driver)
	c.Database.DSN = getEnvString("DATABASE_DSN", c.Database.DSN)

	c.Auth.JWTSecret = getEnvString("AUTH_JWT_SECRET", c.Auth.JWTSecret)
	c.Auth.TokenTTL = getEnvDuration("AUTH_TOKEN_TTL", c.Auth.TokenTTL)
	c.Auth.BcryptCost = getEnvInt("AUTH_BCRYPT_COST", c.Auth.BcryptCost)

	c.Upload.Dir = getEnvString("UPLOAD_DIR", c.Upload.Dir)
	c.Upload.MaxBytes = getEnvInt64("UPLOAD_MAX_BYTES", c.Upload.MaxBytes)

	c.Logger.Level = getEnvString("LOG_LEVEL", c.Logger.Level)
	c.Logger.Format = getEnvString("LOG_FORMAT", c.Logger.Format)

	c.Security.EnableRateLimit = getEnvBool("SECURITY_RATE_LIMIT_ENABLED", c.Security.EnableRateLimit)
	c.Security.RateLimitRPS = getEnvInt("SECURITY_RATE_LIMIT_RPS", c.Security.RateLimitRPS)
	c.Security.RateLimitBurst = getEnvInt("SECURITY_RATE_LIMIT_BURST", c.Security.RateLimitBurst)
	c.Security.AllowedOrigins = getEnvStringSlice("SECURITY_ALLOWED_ORIGINS", c.Security.AllowedOrigins)
	c.Security.TrustedProxies = getEnvStringSlice("SECURITY_TRUSTED_PROXIES", c.Security.TrustedProxies)
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

	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("database driver must be sqlite or postgres, got %q", c.Database.Driver)
	}

	if c.Database.DSN == "" {
		return fmt.Errorf("database DSN cannot be empty")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET must be set")
	}

	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth token TTL must be positive")
	}

	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("bcrypt cost must be between 4 and 31, got %d", c.Auth.BcryptCost)
	}

	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("upload max bytes must be positive")
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

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
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
		return strings.Split(value, ",")
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

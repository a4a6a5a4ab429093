package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Currency CurrencyConfig
	Quote    QuoteConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	Environment  string
	ServiceName  string
	ReadTimeout  int
	WriteTimeout int
	CORSOrigins  string // Comma-separated list of allowed origins
	LogLevel     string // empty keeps the environment default
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MaxConns       int
	MinConns       int
	MigrationsPath string
	AutoMigrate    bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	ReadTimeout  int // in seconds
	WriteTimeout int // in seconds
}

// CurrencyConfig holds the registry configuration
type CurrencyConfig struct {
	Default            string
	Store              string
	Cache              bool
	AutoUpdate         bool
	AutoUpdateExclude  []string
	AutoUpdateInterval int // in minutes, 0 disables the scheduler
}

// QuoteConfig holds the external quote service configuration
type QuoteConfig struct {
	URL            string
	ConnectTimeout int // in seconds
	Timeout        int // in seconds
	Format         string
	Retry          bool
	HealthCheck    bool
}

// Redis timeout defaults in seconds
const (
	DefaultRedisReadTimeout  = 3
	DefaultRedisWriteTimeout = 3
)

// DefaultRedisReadTimeoutDuration returns the default Redis read timeout
func DefaultRedisReadTimeoutDuration() time.Duration {
	return time.Duration(DefaultRedisReadTimeout) * time.Second
}

// DefaultRedisWriteTimeoutDuration returns the default Redis write timeout
func DefaultRedisWriteTimeoutDuration() time.Duration {
	return time.Duration(DefaultRedisWriteTimeout) * time.Second
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			ServiceName:  serviceName,
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 10),
			CORSOrigins:  getEnv("CORS_ORIGINS", "http://localhost:3000"),
			LogLevel:     getEnv("LOG_LEVEL", ""),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			DBName:         getEnv("DB_NAME", "currencies"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MaxConns:       getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:       getEnvAsInt("DB_MIN_CONNS", 5),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "file://migrations"),
			AutoMigrate:    getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			ReadTimeout:  getEnvAsInt("REDIS_READ_TIMEOUT", DefaultRedisReadTimeout),
			WriteTimeout: getEnvAsInt("REDIS_WRITE_TIMEOUT", DefaultRedisWriteTimeout),
		},
		Currency: CurrencyConfig{
			Default:            strings.ToLower(getEnv("CURRENCY_DEFAULT", "usd")),
			Store:              getEnv("CURRENCY_STORE", "database"),
			Cache:              getEnvAsBool("CURRENCY_CACHE", true),
			AutoUpdate:         getEnvAsBool("CURRENCY_AUTOUPDATE", false),
			AutoUpdateExclude:  getEnvAsSlice("CURRENCY_AUTOUPDATE_EXCLUDE", nil),
			AutoUpdateInterval: getEnvAsInt("AUTOUPDATE_INTERVAL", 0),
		},
		Quote: QuoteConfig{
			URL:            getEnv("QUOTE_URL", "http://download.finance.yahoo.com/d/quotes.csv"),
			ConnectTimeout: getEnvAsInt("QUOTE_CONNECT_TIMEOUT", 30),
			Timeout:        getEnvAsInt("QUOTE_TIMEOUT", 30),
			Format:         getEnv("QUOTE_FORMAT", "fixed"),
			Retry:          getEnvAsBool("QUOTE_RETRY", false),
			HealthCheck:    getEnvAsBool("QUOTE_HEALTHCHECK", false),
		},
	}

	if cfg.Currency.Default == "" {
		return nil, fmt.Errorf("CURRENCY_DEFAULT must not be empty")
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// URL returns the database connection string in URL form, as expected by migrate
func (c *DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// RedisReadTimeoutDuration returns the read timeout, falling back to the default
func (c *RedisConfig) RedisReadTimeoutDuration() time.Duration {
	if c.ReadTimeout <= 0 {
		return DefaultRedisReadTimeoutDuration()
	}
	return time.Duration(c.ReadTimeout) * time.Second
}

// RedisWriteTimeoutDuration returns the write timeout, falling back to the default
func (c *RedisConfig) RedisWriteTimeoutDuration() time.Duration {
	if c.WriteTimeout <= 0 {
		return DefaultRedisWriteTimeoutDuration()
	}
	return time.Duration(c.WriteTimeout) * time.Second
}

// ConnectTimeoutDuration returns the quote service connect timeout
func (c *QuoteConfig) ConnectTimeoutDuration() time.Duration {
	return time.Duration(c.ConnectTimeout) * time.Second
}

// TimeoutDuration returns the quote service total timeout
func (c *QuoteConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsSlice splits a comma-separated variable, dropping blanks and lower-casing entries
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	var values []string
	for _, part := range strings.Split(valueStr, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			values = append(values, part)
		}
	}
	return values
}

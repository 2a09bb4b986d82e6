// Package config provides seeder configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported values for DB_DRIVER.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds seeder configuration values loaded from file or environment variables.
type Config struct {
	DBDriver              string `mapstructure:"DB_DRIVER"`
	DBHost                string `mapstructure:"DB_HOST"`
	DBPort                string `mapstructure:"DB_PORT"`
	DBName                string `mapstructure:"DB_NAME"`
	DBUser                string `mapstructure:"DB_USER"`
	DBPassword            string `mapstructure:"DB_PASSWORD"`
	DBSSLMode             string `mapstructure:"DB_SSLMODE"`
	ConnectTimeoutSeconds int    `mapstructure:"CONNECT_TIMEOUT_SECONDS"`
	Env                   string `mapstructure:"APP_ENV"`
	LogLevel              string `mapstructure:"LOG_LEVEL"`
	LogFormat             string `mapstructure:"LOG_FORMAT"`
	SeedHashPasswords     bool   `mapstructure:"SEED_HASH_PASSWORDS"`
	RedisURL              string `mapstructure:"REDIS_URL"`
	TracingEnabled        bool   `mapstructure:"TRACING_ENABLED"`
	TracingExporter       string `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint          string `mapstructure:"OTLP_ENDPOINT"`
	PushgatewayURL        string `mapstructure:"PUSHGATEWAY_URL"`
}

var defaults = map[string]any{
	"DB_DRIVER":               DriverMongo,
	"DB_HOST":                 "localhost",
	"DB_PORT":                 "27017",
	"DB_NAME":                 "octofit_db",
	"DB_USER":                 "",
	"DB_PASSWORD":             "",
	"DB_SSLMODE":              "disable",
	"CONNECT_TIMEOUT_SECONDS": 5,
	"APP_ENV":                 "development",
	"LOG_LEVEL":               "info",
	"LOG_FORMAT":              "text",
	"SEED_HASH_PASSWORDS":     false,
	"REDIS_URL":               "",
	"TRACING_ENABLED":         false,
	"TRACING_EXPORTER":        "stdout",
	"OTLP_ENDPOINT":           "",
	"PUSHGATEWAY_URL":         "",
}

// LoadConfig loads configuration from an optional .env file, an optional
// config.yml and the process environment, in increasing precedence.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	v := viper.New()
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config.yml: %w", err)
		}
	}

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func (c *Config) normalize() {
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	c.DBSSLMode = strings.ToLower(strings.TrimSpace(c.DBSSLMode))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
}

// Validate ensures that required configuration values are present and consistent.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverMongo, DriverPostgres:
		if c.DBHost == "" {
			return errors.New("DB_HOST is required")
		}
		port, err := strconv.Atoi(c.DBPort)
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("DB_PORT must be a valid TCP port, got %q", c.DBPort)
		}
	case DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want mongo, postgres or sqlite)", c.DBDriver)
	}

	if c.DBName == "" {
		return errors.New("DB_NAME is required")
	}
	if c.ConnectTimeoutSeconds <= 0 {
		return errors.New("CONNECT_TIMEOUT_SECONDS must be positive")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported LOG_LEVEL %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported LOG_FORMAT %q", c.LogFormat)
	}

	if c.TracingEnabled && c.TracingExporter == "otlp" && c.OTLPEndpoint == "" {
		return errors.New("OTLP_ENDPOINT is required when TRACING_EXPORTER is otlp")
	}

	if c.IsProduction() {
		// Plaintext fixture passwords never go into a production store.
		if !c.SeedHashPasswords {
			return errors.New("SEED_HASH_PASSWORDS must be enabled in production")
		}
		if c.DBDriver == DriverPostgres && (c.DBSSLMode == "disable" || c.DBSSLMode == "") {
			log.Println("WARNING: DB_SSLMODE is 'disable' in production. It is highly recommended to use SSL for database connections.")
		}
	}

	return nil
}

// IsProduction reports whether APP_ENV names a production environment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// ConnectTimeout returns the timeout applied when connecting to the store.
func (c *Config) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutSeconds) * time.Second
}

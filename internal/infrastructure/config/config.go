package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Store    StoreConfig    `mapstructure:"store"`
	Log      LogConfig      `mapstructure:"log"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	HTTPPort        int           `mapstructure:"http_port"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	DSN      string `mapstructure:"dsn"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
	LogSQL   bool   `mapstructure:"log_sql"`
}

// StoreConfig selects where progress records live.
type StoreConfig struct {
	Driver      string        `mapstructure:"driver"`
	RedisAddr   string        `mapstructure:"redis_addr"`
	RedisDB     int           `mapstructure:"redis_db"`
	RedisPrefix string        `mapstructure:"redis_prefix"`
	FileDir     string        `mapstructure:"file_dir"`
	MaxRetries  int           `mapstructure:"max_retries"`
	RetryDelay  time.Duration `mapstructure:"retry_delay"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TracingConfig toggles the OpenTelemetry exporter.
type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
}

// Store drivers.
const (
	StoreSQL   = "sql"
	StoreRedis = "redis"
	StoreFile  = "file"
)

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Set default values
	setDefaults()

	// Enable reading from environment variables
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read configuration file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if _, err := config.StoreDriver(); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.http_port", 8080)
	viper.SetDefault("server.cors_origins", []string{"*"})
	viper.SetDefault("server.shutdown_timeout", 10*time.Second)

	// Database defaults
	viper.SetDefault("database.driver", "sqlite3")
	viper.SetDefault("database.dsn", "")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "brazilian")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.log_sql", false)

	// Store defaults
	viper.SetDefault("store.driver", StoreSQL)
	viper.SetDefault("store.redis_addr", "localhost:6379")
	viper.SetDefault("store.redis_db", 0)
	viper.SetDefault("store.redis_prefix", "brazilian:")
	viper.SetDefault("store.file_dir", "data/progress")
	viper.SetDefault("store.max_retries", 8)
	viper.SetDefault("store.retry_delay", 5*time.Millisecond)

	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")

	// Tracing defaults
	viper.SetDefault("tracing.enabled", false)
	viper.SetDefault("tracing.service_name", "brazilian")
}

// DatabaseDriver returns the normalized database driver name.
func (c *Config) DatabaseDriver() (string, error) {
	driver := strings.ToLower(strings.TrimSpace(c.Database.Driver))
	switch driver {
	case "", "sqlite", "sqlite3":
		return "sqlite3", nil
	case "postgres", "postgresql":
		return "postgres", nil
	case "pgx":
		return "pgx", nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
}

// DatabaseURL returns the DSN for the configured driver. An explicit DSN
// always wins.
func (c *Config) DatabaseURL() (string, error) {
	if dsn := strings.TrimSpace(c.Database.DSN); dsn != "" {
		return dsn, nil
	}

	driver, err := c.DatabaseDriver()
	if err != nil {
		return "", err
	}
	if driver == "sqlite3" {
		return "file:brazilian.db?_fk=1&cache=shared", nil
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:     "/" + c.Database.Name,
		RawQuery: url.Values{"sslmode": []string{c.Database.SSLMode}}.Encode(),
	}
	return u.String(), nil
}

// StoreDriver returns the normalized progress store driver.
func (c *Config) StoreDriver() (string, error) {
	driver := strings.ToLower(strings.TrimSpace(c.Store.Driver))
	switch driver {
	case "":
		return StoreSQL, nil
	case StoreSQL, StoreRedis, StoreFile:
		return driver, nil
	default:
		return "", fmt.Errorf("unsupported store driver %q", c.Store.Driver)
	}
}

// HTTPAddr is the listen address of the API server.
func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.HTTPPort)
}

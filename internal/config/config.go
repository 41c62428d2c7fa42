package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Supported database drivers
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port            string   `yaml:"port" env:"SERVER_PORT"`
		Mode            string   `yaml:"mode" env:"SERVER_MODE"`
		ReadTimeout     string   `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
		WriteTimeout    string   `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
		ShutdownTimeout string   `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
		AllowedOrigins  []string `yaml:"allowed_origins" env:"SERVER_ALLOWED_ORIGINS"`
		StoragePath     string   `yaml:"storage_path" env:"SERVER_STORAGE_PATH"`
		UploadMaxBytes  int64    `yaml:"upload_max_bytes" env:"SERVER_UPLOAD_MAX_BYTES"`
	} `yaml:"server"`

	Database struct {
		Driver string `yaml:"driver" env:"DB_DRIVER"`
		// URI and Name address the document store
		URI  string `yaml:"uri" env:"DB_URI"`
		Name string `yaml:"name" env:"DB_DATABASE"`

		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		ConnectTimeout  string `yaml:"connect_timeout" env:"DB_CONNECT_TIMEOUT"`
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
		Seed            bool   `yaml:"seed" env:"DB_SEED"`
	} `yaml:"database"`

	JWT struct {
		Secret            string `yaml:"secret" env:"JWT_SECRET"`
		SessionExpiration string `yaml:"session_expiration" env:"JWT_SESSION_EXPIRATION"`
		Issuer            string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Admin struct {
		Username     string `yaml:"username" env:"ADMIN_USERNAME"`
		PasswordHash string `yaml:"password_hash" env:"ADMIN_PASSWORD_HASH"`
		CookieName   string `yaml:"cookie_name" env:"ADMIN_COOKIE_NAME"`
		CookieSecure bool   `yaml:"cookie_secure" env:"ADMIN_COOKIE_SECURE"`
	} `yaml:"admin"`

	Redis struct {
		Addr     string `yaml:"addr" env:"REDIS_ADDR"`
		Password string `yaml:"password" env:"REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"REDIS_DB"`
	} `yaml:"redis"`

	RateLimit struct {
		LoginAttempts int    `yaml:"login_attempts" env:"RATELIMIT_LOGIN_ATTEMPTS"`
		LoginWindow   string `yaml:"login_window" env:"RATELIMIT_LOGIN_WINDOW"`
	} `yaml:"ratelimit"`

	SMTP struct {
		Host         string `yaml:"host" env:"SMTP_HOST"`
		Port         int    `yaml:"port" env:"SMTP_PORT"`
		Username     string `yaml:"username" env:"SMTP_USERNAME"`
		Password     string `yaml:"password" env:"SMTP_PASSWORD"`
		FromName     string `yaml:"from_name" env:"SMTP_FROM_NAME"`
		FromEmail    string `yaml:"from_email" env:"SMTP_FROM_EMAIL"`
		ContactEmail string `yaml:"contact_email" env:"SMTP_CONTACT_EMAIL"`
		UseTLS       bool   `yaml:"use_tls" env:"SMTP_USE_TLS"`
	} `yaml:"smtp"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Tracing struct {
		Enabled     bool   `yaml:"enabled" env:"TRACING_ENABLED"`
		ServiceName string `yaml:"service_name" env:"TRACING_SERVICE_NAME"`
		Exporter    string `yaml:"exporter" env:"TRACING_EXPORTER"`
	} `yaml:"tracing"`
}

// LoadConfig loads configuration from a file, a .env file in the working
// directory and environment variables
func LoadConfig(configPath string) (*Config, error) {
	return LoadConfigWithEnvFile(configPath, ".env")
}

// LoadConfigWithEnvFile is LoadConfig with an explicit .env location.
// Variables already present in the environment win over the .env file.
func LoadConfigWithEnvFile(configPath, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	// Load default config with sane defaults
	config := &Config{}
	setDefaults(config)

	// Try to read config file if it exists
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Override with environment variables
	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	// Server defaults
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.ReadTimeout = "15s"
	config.Server.WriteTimeout = "15s"
	config.Server.ShutdownTimeout = "5s"
	config.Server.AllowedOrigins = []string{"http://localhost:3000"}
	config.Server.StoragePath = "uploads"
	config.Server.UploadMaxBytes = 10 << 20

	// Database defaults
	config.Database.Driver = DriverMongo
	config.Database.URI = "mongodb://localhost:27017"
	config.Database.Name = "academy"
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "academy"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.ConnectTimeout = "10s"
	config.Database.MigrationsDir = "migrations"

	// JWT defaults
	config.JWT.SessionExpiration = "12h"
	config.JWT.Issuer = "academy.app"

	// Admin defaults
	config.Admin.Username = "admin"
	config.Admin.CookieName = "academy_session"

	// Rate limit defaults
	config.RateLimit.LoginAttempts = 5
	config.RateLimit.LoginWindow = "15m"

	// SMTP defaults
	config.SMTP.Port = 587
	config.SMTP.FromName = "Academy"

	// Logging defaults
	config.Logging.Level = "info"
	config.Logging.Format = "json"

	// Tracing defaults
	config.Tracing.ServiceName = "academy"
	config.Tracing.Exporter = "stdout"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	// Recursively process the config structure and look for env tags
	return applyEnvOverrides(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	switch config.Database.Driver {
	case DriverMongo:
		if config.Database.URI == "" {
			return fmt.Errorf("database uri is required for the mongo driver")
		}
		if config.Database.Name == "" {
			return fmt.Errorf("database name is required for the mongo driver")
		}
	case DriverPostgres:
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
	case DriverMemory:
	case "":
		return fmt.Errorf("database driver is required")
	default:
		return fmt.Errorf("unsupported database driver %q", config.Database.Driver)
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if config.Admin.Username == "" {
		return fmt.Errorf("admin username is required")
	}
	if h := config.Admin.PasswordHash; h != "" && !strings.HasPrefix(h, "$2") {
		return fmt.Errorf("admin password hash must be a bcrypt hash")
	}
	if config.RateLimit.LoginAttempts < 1 {
		return fmt.Errorf("ratelimit login_attempts must be positive")
	}

	durations := map[string]string{
		"server read_timeout":        config.Server.ReadTimeout,
		"server write_timeout":       config.Server.WriteTimeout,
		"server shutdown_timeout":    config.Server.ShutdownTimeout,
		"database conn_max_lifetime": config.Database.ConnMaxLifetime,
		"database connect_timeout":   config.Database.ConnectTimeout,
		"JWT session expiration":     config.JWT.SessionExpiration,
		"ratelimit login_window":     config.RateLimit.LoginWindow,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
	}

	return nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Mode, "production")
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

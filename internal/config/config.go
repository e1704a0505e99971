package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Log       LogConfig
	Import    ImportConfig
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite"; sqlite is for local single-user runs.
	Driver   string
	Path     string
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
	LogLevel string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

type LogConfig struct {
	Level  string
	Format string
}

// ImportConfig bounds the ledger import endpoints.
type ImportConfig struct {
	// PreviewRows caps the rows returned by a parse (preview) request.
	PreviewRows int
	// MaxFileSize is the largest accepted upload in bytes.
	MaxFileSize int64
	// MaxApplyRows caps a single apply batch.
	MaxApplyRows int
	// MaxErrorsShown truncates the error list in apply responses.
	MaxErrorsShown int
}

// Load reads configuration from .env and the environment.
func Load() *Config {
	return LoadFile(".env")
}

// LoadFile reads configuration from the given env file, falling back to
// environment variables and defaults when the file is missing.
func LoadFile(path string) *Config {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	// A missing file is normal in containers.
	_ = v.ReadInConfig()

	v.SetDefault("APP_NAME", "ledger-api")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_DEBUG", true)
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_SQLITE_PATH", "ledger.db")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "ledger")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("DB_LOG_LEVEL", "warn")
	v.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	v.SetDefault("JWT_EXPIRY_HOURS", 24)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	v.SetDefault("RATE_LIMIT_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_DURATION", 60)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("IMPORT_PREVIEW_ROWS", 500)
	v.SetDefault("IMPORT_MAX_FILE_SIZE", 10485760)
	v.SetDefault("IMPORT_MAX_APPLY_ROWS", 50000)
	v.SetDefault("IMPORT_MAX_ERRORS_SHOWN", 100)

	return &Config{
		App: AppConfig{
			Name:  v.GetString("APP_NAME"),
			Env:   v.GetString("APP_ENV"),
			Port:  v.GetString("APP_PORT"),
			Debug: v.GetBool("APP_DEBUG"),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(v.GetString("DB_DRIVER")),
			Path:     v.GetString("DB_SQLITE_PATH"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			SSLMode:  v.GetString("DB_SSL_MODE"),
			Timezone: v.GetString("DB_TIMEZONE"),
			LogLevel: v.GetString("DB_LOG_LEVEL"),
		},
		JWT: JWTConfig{
			Secret:      v.GetString("JWT_SECRET"),
			ExpiryHours: time.Duration(v.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetStringSlice("CORS_ALLOWED_ORIGINS")),
			AllowedMethods: splitList(v.GetStringSlice("CORS_ALLOWED_METHODS")),
			AllowedHeaders: splitList(v.GetStringSlice("CORS_ALLOWED_HEADERS")),
		},
		RateLimit: RateLimitConfig{
			Requests: v.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: v.GetInt("RATE_LIMIT_DURATION"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Import: ImportConfig{
			PreviewRows:    v.GetInt("IMPORT_PREVIEW_ROWS"),
			MaxFileSize:    v.GetInt64("IMPORT_MAX_FILE_SIZE"),
			MaxApplyRows:   v.GetInt("IMPORT_MAX_APPLY_ROWS"),
			MaxErrorsShown: v.GetInt("IMPORT_MAX_ERRORS_SHOWN"),
		},
	}
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var errs []error

	if c.App.Port == "" {
		errs = append(errs, errors.New("APP_PORT must not be empty"))
	}
	if c.App.Env == "production" && c.JWT.Secret == "change-this-secret-in-production" {
		errs = append(errs, errors.New("JWT_SECRET must be set in production"))
	}
	if len(c.JWT.Secret) < 16 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 16 characters"))
	}
	if c.JWT.ExpiryHours <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRY_HOURS must be positive"))
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Duration <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_REQUESTS and RATE_LIMIT_DURATION must be positive"))
	}
	if c.Import.PreviewRows <= 0 {
		errs = append(errs, fmt.Errorf("IMPORT_PREVIEW_ROWS must be positive, got %d", c.Import.PreviewRows))
	}
	if c.Import.MaxFileSize <= 0 {
		errs = append(errs, fmt.Errorf("IMPORT_MAX_FILE_SIZE must be positive, got %d", c.Import.MaxFileSize))
	}
	if c.Import.MaxApplyRows <= 0 {
		errs = append(errs, fmt.Errorf("IMPORT_MAX_APPLY_ROWS must be positive, got %d", c.Import.MaxApplyRows))
	}
	if c.Import.MaxErrorsShown < 0 {
		errs = append(errs, fmt.Errorf("IMPORT_MAX_ERRORS_SHOWN must not be negative, got %d", c.Import.MaxErrorsShown))
	}
	switch c.Database.Driver {
	case "postgres":
	case "sqlite":
		if c.Database.Path == "" {
			errs = append(errs, errors.New("DB_SQLITE_PATH must be set for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.Database.Driver))
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}

// splitList accepts both repeated values and a single comma separated string.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

package config

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var (
	validLogLevels = []string{"debug", "info", "warn", "error"}
	validDrivers   = []string{DriverPostgres, DriverSQLite}
	validHashers   = []string{"bcrypt", "argon2id"}
)

type Config struct {
	// Server
	Port        string
	AppEnv      string
	AppURL      string
	CORSOrigins string

	// Logging
	LogLevel         string
	LogRetentionDays int

	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBPath     string

	// Auth
	JWTSecret      string
	JWTExpiresIn   time.Duration
	PasswordHasher string
	BcryptCost     int
	AdminEmails    string

	// Tenants
	TenantsConfigPath string

	// Rate limiting
	RateLimitMax    int
	RateLimitWindow time.Duration

	// Mail
	MailHost     string
	MailPort     int
	MailUsername string
	MailPassword string
	MailFrom     string

	SentryDSN string
}

// Load reads the configuration from the environment and an optional
// config.{toml,yaml,json} in the working directory. Environment wins.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return FromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_URL", "http://localhost:8080")
	v.SetDefault("CORS_ORIGINS", "*")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_RETENTION_DAYS", 30)

	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "catalog_db")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_PATH", "catalog.db")

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_EXPIRES_IN", "90d")
	v.SetDefault("PASSWORD_HASHER", "bcrypt")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("ADMIN_EMAILS", "")

	v.SetDefault("TENANTS_CONFIG_PATH", "tenants.json")

	v.SetDefault("RATE_LIMIT_MAX", 100)
	v.SetDefault("RATE_LIMIT_WINDOW", "1h")

	v.SetDefault("MAIL_HOST", "")
	v.SetDefault("MAIL_PORT", 587)
	v.SetDefault("MAIL_USERNAME", "")
	v.SetDefault("MAIL_PASSWORD", "")
	v.SetDefault("MAIL_FROM", "Catalog <no-reply@catalog.local>")

	v.SetDefault("SENTRY_DSN", "")
}

// FromViper builds and validates a Config from an already populated viper
// instance.
func FromViper(v *viper.Viper) (*Config, error) {
	expiresIn, err := parseDuration(v.GetString("JWT_EXPIRES_IN"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRES_IN: %w", err)
	}
	window, err := parseDuration(v.GetString("RATE_LIMIT_WINDOW"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_WINDOW: %w", err)
	}

	cfg := &Config{
		Port:        v.GetString("PORT"),
		AppEnv:      v.GetString("APP_ENV"),
		AppURL:      strings.TrimRight(v.GetString("APP_URL"), "/"),
		CORSOrigins: v.GetString("CORS_ORIGINS"),

		LogLevel:         strings.ToLower(v.GetString("LOG_LEVEL")),
		LogRetentionDays: v.GetInt("LOG_RETENTION_DAYS"),

		DBDriver:   strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),
		DBSSLMode:  v.GetString("DB_SSLMODE"),
		DBPath:     v.GetString("DB_PATH"),

		JWTSecret:      v.GetString("JWT_SECRET"),
		JWTExpiresIn:   expiresIn,
		PasswordHasher: strings.ToLower(v.GetString("PASSWORD_HASHER")),
		BcryptCost:     v.GetInt("BCRYPT_COST"),
		AdminEmails:    v.GetString("ADMIN_EMAILS"),

		TenantsConfigPath: v.GetString("TENANTS_CONFIG_PATH"),

		RateLimitMax:    v.GetInt("RATE_LIMIT_MAX"),
		RateLimitWindow: window,

		MailHost:     v.GetString("MAIL_HOST"),
		MailPort:     v.GetInt("MAIL_PORT"),
		MailUsername: v.GetString("MAIL_USERNAME"),
		MailPassword: v.GetString("MAIL_PASSWORD"),
		MailFrom:     v.GetString("MAIL_FROM"),

		SentryDSN: v.GetString("SENTRY_DSN"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if !strings.HasPrefix(c.AppURL, "http://") && !strings.HasPrefix(c.AppURL, "https://") {
		return fmt.Errorf("APP_URL must be an http(s) URL, got %q", c.AppURL)
	}
	if c.JWTExpiresIn <= 0 {
		return errors.New("JWT_EXPIRES_IN must be positive")
	}
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid LOG_LEVEL %q", c.LogLevel)
	}
	if !slices.Contains(validDrivers, c.DBDriver) {
		return fmt.Errorf("invalid DB_DRIVER %q", c.DBDriver)
	}
	if !slices.Contains(validHashers, c.PasswordHasher) {
		return fmt.Errorf("invalid PASSWORD_HASHER %q", c.PasswordHasher)
	}
	if c.RateLimitMax <= 0 || c.RateLimitWindow <= 0 {
		return errors.New("rate limit must be positive")
	}
	if c.LogRetentionDays <= 0 {
		return errors.New("LOG_RETENTION_DAYS must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) IsTest() bool {
	return c.AppEnv == "test"
}

// AdminEmailList returns the lower-cased ADMIN_EMAILS entries.
func (c *Config) AdminEmailList() []string {
	var out []string
	for _, e := range strings.Split(c.AdminEmails, ",") {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			out = append(out, e)
		}
	}
	return out
}

func (c *Config) DSN() string {
	if c.DBDriver == DriverSQLite {
		return c.DBPath
	}
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// parseDuration accepts Go durations plus a whole-day form such as "90d".
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, err
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

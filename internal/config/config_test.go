package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(overrides map[string]any) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range overrides {
		v.Set(k, val)
	}
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := FromViper(newViper(map[string]any{"JWT_SECRET": "s3cret"}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, 90*24*time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, "bcrypt", cfg.PasswordHasher)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, 100, cfg.RateLimitMax)
	assert.Equal(t, time.Hour, cfg.RateLimitWindow)
	assert.Equal(t, 30, cfg.LogRetentionDays)
	assert.Equal(t, "http://localhost:8080", cfg.AppURL)
}

func TestFromViper_AppURLTrailingSlash(t *testing.T) {
	cfg, err := FromViper(newViper(map[string]any{"JWT_SECRET": "s3cret", "APP_URL": "https://shop.example.com/"}))
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com", cfg.AppURL)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DB_PATH", "/tmp/catalog.db")
	t.Setenv("JWT_EXPIRES_IN", "15m")
	t.Setenv("PASSWORD_HASHER", "argon2id")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.JWTSecret)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "/tmp/catalog.db", cfg.DSN())
	assert.Equal(t, 15*time.Minute, cfg.JWTExpiresIn)
	assert.Equal(t, "argon2id", cfg.PasswordHasher)
}

func TestFromViper_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]any
	}{
		{"missing secret", map[string]any{}},
		{"bad driver", map[string]any{"JWT_SECRET": "x", "DB_DRIVER": "mysql"}},
		{"bad hasher", map[string]any{"JWT_SECRET": "x", "PASSWORD_HASHER": "md5"}},
		{"bad level", map[string]any{"JWT_SECRET": "x", "LOG_LEVEL": "loud"}},
		{"bad app url", map[string]any{"JWT_SECRET": "x", "APP_URL": "shop.example.com"}},
		{"bad expiry", map[string]any{"JWT_SECRET": "x", "JWT_EXPIRES_IN": "soon"}},
		{"zero rate limit", map[string]any{"JWT_SECRET": "x", "RATE_LIMIT_MAX": 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromViper(newViper(tt.overrides))
			assert.Error(t, err)
		})
	}
}

func TestAdminEmailList(t *testing.T) {
	cfg := &Config{AdminEmails: " Admin@Example.com, ,ops@example.com"}
	assert.Equal(t, []string{"admin@example.com", "ops@example.com"}, cfg.AdminEmailList())
}

func TestDSN_Postgres(t *testing.T) {
	cfg := &Config{DBDriver: DriverPostgres, DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "n", DBPort: "5432", DBSSLMode: "disable"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5432 sslmode=disable TimeZone=UTC", cfg.DSN())
}

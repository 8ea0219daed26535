package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-at-least-32-characters!!")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "carelane-hms", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenTTL)
	assert.Equal(t, 100.0, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.BurstSize)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-at-least-32-characters!!")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_SSLMODE", "verify-full")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SERVER_READ_TIMEOUT", "30s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestProductionValidation(t *testing.T) {
	t.Run("short secret rejected in production", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		t.Setenv("JWT_SECRET", "short")
		t.Setenv("DB_PASSWORD", "pw")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "32 characters")
	})

	t.Run("sslmode disable rejected in production", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		t.Setenv("JWT_SECRET", "test-secret-at-least-32-characters!!")
		t.Setenv("DB_PASSWORD", "pw")
		t.Setenv("DB_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DB_SSLMODE")
	})

	t.Run("db password required outside development", func(t *testing.T) {
		t.Setenv("APP_ENV", "staging")
		t.Setenv("JWT_SECRET", "test-secret-at-least-32-characters!!")
		t.Setenv("DB_PASSWORD", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DB_PASSWORD")
	})
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		Name:     "carelane",
		User:     "svc",
		Password: "pw",
		SSLMode:  "require",
	}
	assert.Equal(t, "host=localhost user=svc password=pw dbname=carelane port=5432 sslmode=require Timezone=UTC", d.DSN())
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("X_INT", "not-a-number")
	assert.Equal(t, 7, getEnvInt("X_INT", 7), "unparseable values fall back")

	t.Setenv("X_DUR", "250ms")
	assert.Equal(t, 250*time.Millisecond, getEnvDuration("X_DUR", time.Second))

	t.Setenv("X_SLICE", " a,, b ,")
	assert.Equal(t, []string{"a", "b"}, getEnvSlice("X_SLICE", nil))

	t.Setenv("X_BOOL", "true")
	assert.True(t, getEnvBool("X_BOOL", false))
}

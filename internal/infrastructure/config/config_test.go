package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable the tests touch; viper treats empty values as unset
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CRM_APP_NAME", "CRM_APP_ENV", "CRM_APP_PORT",
		"CRM_DATABASE_DRIVER", "CRM_DATABASE_HOST", "CRM_DATABASE_PORT", "CRM_DATABASE_USER",
		"CRM_DATABASE_PASSWORD", "CRM_DATABASE_DBNAME", "CRM_DATABASE_SSLMODE",
		"CRM_DATABASE_MAX_OPEN_CONNS", "CRM_DATABASE_MAX_IDLE_CONNS",
		"CRM_JWT_SECRET", "CRM_REDIS_HOST", "CRM_SCHEDULER_SWEEP_INTERVAL",
		"CRM_BILLING_DEFAULT_CURRENCY", "CRM_TELEMETRY_SAMPLING_RATIO",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "crm-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "crm", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, time.Hour, cfg.Scheduler.SweepInterval)
		assert.True(t, cfg.Scheduler.Enabled)
		assert.Equal(t, "USD", cfg.Billing.DefaultCurrency)
		assert.Equal(t, 30, cfg.Billing.DefaultDueDays)
		assert.Equal(t, 3, cfg.Billing.NumberRetries)
		assert.Equal(t, 20*time.Millisecond, cfg.Billing.NumberRetryDelay)
		assert.Equal(t, 10, cfg.HTTP.LoginRateLimit)
		assert.Equal(t, time.Minute, cfg.HTTP.LoginRateWindow)
		assert.False(t, cfg.RedisEnabled())
	})

	t.Run("loads values from environment variables with CRM prefix", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CRM_APP_PORT", "9000")
		t.Setenv("CRM_DATABASE_DRIVER", "sqlite")
		t.Setenv("CRM_DATABASE_HOST", "db.internal")
		t.Setenv("CRM_DATABASE_PORT", "5433")
		t.Setenv("CRM_REDIS_HOST", "cache.internal")
		t.Setenv("CRM_SCHEDULER_SWEEP_INTERVAL", "15m")
		t.Setenv("CRM_BILLING_DEFAULT_CURRENCY", "EUR")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, "db.internal", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.True(t, cfg.RedisEnabled())
		assert.Equal(t, "cache.internal:6379", cfg.Redis.Addr())
		assert.Equal(t, 15*time.Minute, cfg.Scheduler.SweepInterval)
		assert.Equal(t, "EUR", cfg.Billing.DefaultCurrency)
	})

	t.Run("rejects unknown database driver", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CRM_DATABASE_DRIVER", "mongodb")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CRM_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("CRM_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("rejects out of range sampling ratio", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CRM_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	t.Run("requires a long jwt secret", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CRM_APP_ENV", "production")
		t.Setenv("CRM_JWT_SECRET", "short")
		t.Setenv("CRM_DATABASE_PASSWORD", "secret")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret")
	})

	t.Run("requires database password for postgres", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CRM_APP_ENV", "production")
		t.Setenv("CRM_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password")
	})

	t.Run("passes with valid production config", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CRM_APP_ENV", "production")
		t.Setenv("CRM_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
		t.Setenv("CRM_DATABASE_PASSWORD", "secret")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{Host: "localhost", Port: 5432, User: "u", Password: "p", DBName: "crm", SSLMode: "disable"}
		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost:5432")
		assert.Contains(t, dsn, "/crm")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{Host: "localhost", Port: 5432, User: "user", Password: "pass@word#123", DBName: "db", SSLMode: "disable"}
		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})
}

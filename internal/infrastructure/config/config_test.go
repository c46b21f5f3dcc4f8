package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "storefront", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, ".", cfg.App.ContentRoot)
		assert.Equal(t, ProviderPostgres, cfg.Database.Provider)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "storefront", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, 60*time.Minute, cfg.Cache.DefaultCacheTime)
		assert.True(t, cfg.Cache.Enabled)
		assert.False(t, cfg.Redis.Enabled)
		assert.Equal(t, "USD", cfg.Plugins.PrimaryCurrencyCode)
		assert.Equal(t, "Tax.FixedRate", cfg.Plugins.ActiveTaxProvider)
		assert.Contains(t, cfg.Plugins.InstallOnSetup, "Pickup.PickupInStore")
		assert.Equal(t, []string{"en-US"}, cfg.Localization.SupportedLanguages)
		assert.Equal(t, "including_tax", cfg.Tax.DisplayType)
		assert.False(t, cfg.Telemetry.Enabled)
		assert.Equal(t, "storefront", cfg.Telemetry.ServiceName)
		assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
	})

	t.Run("loads values from environment variables with SF prefix", func(t *testing.T) {
		t.Setenv("SF_APP_NAME", "test-app")
		t.Setenv("SF_APP_PORT", "9000")
		t.Setenv("SF_DATABASE_PROVIDER", "sqlite")
		t.Setenv("SF_DATABASE_SQLITE_PATH", "/tmp/test.db")
		t.Setenv("SF_REDIS_ENABLED", "true")
		t.Setenv("SF_REDIS_HOST", "cache.local")
		t.Setenv("SF_REDIS_PORT", "6380")
		t.Setenv("SF_CACHE_DEFAULT_CACHE_TIME", "15m")
		t.Setenv("SF_HOSTING_FORWARDED_HTTP_HEADER", "CF-Connecting-IP")
		t.Setenv("SF_LOCALIZATION_SUPPORTED_LANGUAGES", "en-US,fr-FR")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, ProviderSQLite, cfg.Database.Provider)
		assert.Equal(t, "/tmp/test.db", cfg.Database.DSN())
		assert.True(t, cfg.Redis.Enabled)
		assert.Equal(t, "cache.local:6380", cfg.Redis.Addr())
		assert.Equal(t, 15*time.Minute, cfg.Cache.DefaultCacheTime)
		assert.Equal(t, "CF-Connecting-IP", cfg.Hosting.ForwardedHTTPHeader)
		assert.Equal(t, []string{"en-US", "fr-FR"}, cfg.Localization.SupportedLanguages)
	})

	t.Run("rejects unknown provider", func(t *testing.T) {
		t.Setenv("SF_DATABASE_PROVIDER", "sqlserver")

		_, err := Load()
		assert.ErrorContains(t, err, "database.provider")
	})

	t.Run("rejects fixed tax rate above 100", func(t *testing.T) {
		t.Setenv("SF_TAX_FIXED_RATE", "120")

		_, err := Load()
		assert.ErrorContains(t, err, "tax.fixed_rate")
	})

	t.Run("rejects idle conns above open conns", func(t *testing.T) {
		t.Setenv("SF_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("SF_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		assert.ErrorContains(t, err, "max_idle_conns")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	setProduction := func(t *testing.T) {
		t.Setenv("SF_APP_ENV", "production")
		t.Setenv("SF_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
		t.Setenv("SF_ADMIN_KEY", "admin-key")
		t.Setenv("SF_DATABASE_PASSWORD", "secure-password")
		t.Setenv("SF_DATABASE_SSLMODE", "require")
	}

	t.Run("valid production config", func(t *testing.T) {
		setProduction(t)

		_, err := Load()
		assert.NoError(t, err)
	})

	t.Run("short jwt secret", func(t *testing.T) {
		setProduction(t)
		t.Setenv("SF_JWT_SECRET", "short-secret")

		_, err := Load()
		assert.ErrorContains(t, err, "at least 32 characters")
	})

	t.Run("missing admin key", func(t *testing.T) {
		setProduction(t)
		t.Setenv("SF_ADMIN_KEY", "")

		_, err := Load()
		assert.ErrorContains(t, err, "admin.key")
	})

	t.Run("ssl disabled", func(t *testing.T) {
		setProduction(t)
		t.Setenv("SF_DATABASE_SSLMODE", "disable")

		_, err := Load()
		assert.ErrorContains(t, err, "sslmode")
	})

	t.Run("sqlite skips postgres checks", func(t *testing.T) {
		setProduction(t)
		t.Setenv("SF_DATABASE_PROVIDER", "sqlite")
		t.Setenv("SF_DATABASE_SSLMODE", "disable")

		_, err := Load()
		assert.NoError(t, err)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Provider: ProviderPostgres,
		Host:     "db",
		Port:     5432,
		User:     "shop",
		Password: "p@ss word",
		DBName:   "storefront",
		SSLMode:  "disable",
	}

	assert.Equal(t, "postgres://shop:p%40ss%20word@db:5432/storefront?sslmode=disable", d.DSN())
}

func TestRedisConfig_Addr(t *testing.T) {
	assert.Equal(t, "", RedisConfig{}.Addr())
	assert.Equal(t, "localhost:6379", RedisConfig{Host: "localhost", Port: 6379}.Addr())
}

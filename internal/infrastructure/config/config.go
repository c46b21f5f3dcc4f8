package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Data provider names accepted in database.provider
const (
	ProviderPostgres = "postgres"
	ProviderSQLite   = "sqlite"
)

// Config holds all application configuration
type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Cache        CacheConfig
	Hosting      HostingConfig
	Plugins      PluginsConfig
	JWT          JWTConfig
	Admin        AdminConfig
	Localization LocalizationConfig
	Tax          TaxConfig
	Tasks        TasksConfig
	Log          LogConfig
	HTTP         HTTPConfig
	Telemetry    TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
	// ContentRoot is the directory "~/" paths are mapped to
	ContentRoot string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Provider        string // postgres or sqlite
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
	SlowThreshold   time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port, or an empty string when no host is configured
func (r RedisConfig) Addr() string {
	if r.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// CacheConfig holds caching settings
type CacheConfig struct {
	Enabled          bool
	DefaultCacheTime time.Duration
}

// HostingConfig describes the proxies in front of the application
type HostingConfig struct {
	// ForwardedHTTPHeader replaces X-Forwarded-For when set (e.g. CF-Connecting-IP)
	ForwardedHTTPHeader    string
	UseHTTPClusterHTTPS    bool
	UseHTTPXForwardedProto bool
}

// PluginsConfig holds plugin and engine settings
type PluginsConfig struct {
	IgnoreStartupTasks         bool
	SkipPattern                string
	ActiveExchangeRateProvider string
	ActiveTaxProvider          string
	PrimaryCurrencyCode        string
	// InstallOnSetup lists the plugins installed with a fresh database
	InstallOnSetup []string
}

// JWTConfig holds JWT settings for administrator tokens
type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// AdminConfig holds the administrator credentials
type AdminConfig struct {
	Key string
}

// LocalizationConfig holds language negotiation settings
type LocalizationConfig struct {
	DefaultLanguage    string
	SupportedLanguages []string
}

// TaxConfig holds tax display settings
type TaxConfig struct {
	DisplayType string // including_tax, excluding_tax
	// FixedRate is the percentage charged by the fixed rate provider
	FixedRate float64
}

// TasksConfig holds scheduled task settings
type TasksConfig struct {
	Enabled              bool
	ClearCacheInterval   time.Duration
	ExchangeRateInterval time.Duration
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// TelemetryConfig holds OpenTelemetry tracing settings. Tracing is off by default.
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string // OTLP gRPC host:port
	Insecure          bool
	SamplingRatio     float64
	ServiceName       string
	// TraceSQLVariables keeps bound values in database spans
	TraceSQLVariables bool
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with SF_ prefix (e.g., SF_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("SF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Booleans that default to true need an explicit default so that an
	// unset key is distinguishable from false.
	v.SetDefault("cache.enabled", true)
	v.SetDefault("tasks.enabled", true)
	v.SetDefault("telemetry.sampling_ratio", 1.0)

	cfg := &Config{
		App: AppConfig{
			Name:        v.GetString("app.name"),
			Env:         v.GetString("app.env"),
			Port:        v.GetString("app.port"),
			ContentRoot: v.GetString("app.content_root"),
		},
		Database: DatabaseConfig{
			Provider:        v.GetString("database.provider"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			SQLitePath:      v.GetString("database.sqlite_path"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
			SlowThreshold:   v.GetDuration("database.slow_threshold"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Cache: CacheConfig{
			Enabled:          v.GetBool("cache.enabled"),
			DefaultCacheTime: v.GetDuration("cache.default_cache_time"),
		},
		Hosting: HostingConfig{
			ForwardedHTTPHeader:    v.GetString("hosting.forwarded_http_header"),
			UseHTTPClusterHTTPS:    v.GetBool("hosting.use_http_cluster_https"),
			UseHTTPXForwardedProto: v.GetBool("hosting.use_http_x_forwarded_proto"),
		},
		Plugins: PluginsConfig{
			IgnoreStartupTasks:         v.GetBool("plugins.ignore_startup_tasks"),
			SkipPattern:                v.GetString("plugins.skip_pattern"),
			ActiveExchangeRateProvider: v.GetString("plugins.active_exchange_rate_provider"),
			ActiveTaxProvider:          v.GetString("plugins.active_tax_provider"),
			PrimaryCurrencyCode:        v.GetString("plugins.primary_currency_code"),
			InstallOnSetup:             getList(v, "plugins.install_on_setup"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("jwt.secret"),
			Expiration: v.GetDuration("jwt.expiration"),
			Issuer:     v.GetString("jwt.issuer"),
		},
		Admin: AdminConfig{
			Key: v.GetString("admin.key"),
		},
		Localization: LocalizationConfig{
			DefaultLanguage:    v.GetString("localization.default_language"),
			SupportedLanguages: getList(v, "localization.supported_languages"),
		},
		Tax: TaxConfig{
			DisplayType: v.GetString("tax.display_type"),
			FixedRate:   v.GetFloat64("tax.fixed_rate"),
		},
		Tasks: TasksConfig{
			Enabled:              v.GetBool("tasks.enabled"),
			ClearCacheInterval:   v.GetDuration("tasks.clear_cache_interval"),
			ExchangeRateInterval: v.GetDuration("tasks.exchange_rate_interval"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			CORSAllowOrigins: getList(v, "http.cors_allow_origins"),
			CORSAllowMethods: getList(v, "http.cors_allow_methods"),
			CORSAllowHeaders: getList(v, "http.cors_allow_headers"),
			TrustedProxies:   getList(v, "http.trusted_proxies"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			Insecure:          v.GetBool("telemetry.insecure"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			TraceSQLVariables: v.GetBool("telemetry.trace_sql_variables"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// getList reads a string list from TOML arrays or comma separated env values
func getList(v *viper.Viper, key string) []string {
	raw := v.GetStringSlice(key)
	var out []string
	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "storefront"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.App.ContentRoot == "" {
		cfg.App.ContentRoot = "."
	}
	if cfg.Database.Provider == "" {
		cfg.Database.Provider = ProviderPostgres
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "storefront"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "App_Data/storefront.db"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Database.SlowThreshold == 0 {
		cfg.Database.SlowThreshold = 200 * time.Millisecond
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Cache.DefaultCacheTime == 0 {
		cfg.Cache.DefaultCacheTime = 60 * time.Minute
	}
	if cfg.Plugins.SkipPattern == "" {
		cfg.Plugins.SkipPattern = `^(testing|internal/testutil)`
	}
	if cfg.Plugins.PrimaryCurrencyCode == "" {
		cfg.Plugins.PrimaryCurrencyCode = "USD"
	}
	if cfg.Plugins.ActiveTaxProvider == "" {
		cfg.Plugins.ActiveTaxProvider = "Tax.FixedRate"
	}
	if cfg.Plugins.ActiveExchangeRateProvider == "" {
		cfg.Plugins.ActiveExchangeRateProvider = "CurrencyExchange.Manual"
	}
	if len(cfg.Plugins.InstallOnSetup) == 0 {
		cfg.Plugins.InstallOnSetup = []string{"Tax.FixedRate", "CurrencyExchange.Manual", "Pickup.PickupInStore"}
	}
	if cfg.JWT.Expiration == 0 {
		cfg.JWT.Expiration = 8 * time.Hour
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "storefront"
	}
	if cfg.Localization.DefaultLanguage == "" {
		cfg.Localization.DefaultLanguage = "en-US"
	}
	if len(cfg.Localization.SupportedLanguages) == 0 {
		cfg.Localization.SupportedLanguages = []string{cfg.Localization.DefaultLanguage}
	}
	if cfg.Tax.DisplayType == "" {
		cfg.Tax.DisplayType = "including_tax"
	}
	if cfg.Tasks.ClearCacheInterval == 0 {
		cfg.Tasks.ClearCacheInterval = 24 * time.Hour
	}
	if cfg.Tasks.ExchangeRateInterval == 0 {
		cfg.Tasks.ExchangeRateInterval = time.Hour
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	// No CORS origin default: cross-origin requests stay disabled until configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.Database.Provider {
	case ProviderPostgres, ProviderSQLite:
	default:
		return fmt.Errorf("database.provider must be %q or %q, got %q",
			ProviderPostgres, ProviderSQLite, c.Database.Provider)
	}

	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.Tax.FixedRate < 0 || c.Tax.FixedRate > 100 {
		return fmt.Errorf("tax.fixed_rate must be between 0 and 100")
	}
	if c.Cache.DefaultCacheTime < 0 {
		return fmt.Errorf("cache.default_cache_time cannot be negative")
	}

	if c.App.Env == "production" {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Admin.Key == "" {
			return fmt.Errorf("admin.key is required in production")
		}
		if c.Database.Provider == ProviderPostgres {
			if c.Database.Password == "" {
				return fmt.Errorf("database.password is required in production")
			}
			if c.Database.SSLMode == "disable" {
				return fmt.Errorf("database.sslmode cannot be 'disable' in production")
			}
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	return nil
}

// DSN returns the connection string for the configured provider
func (d *DatabaseConfig) DSN() string {
	if d.Provider == ProviderSQLite {
		return d.SQLitePath
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Package persistence contains the gorm data layer: providers, the database handle and repositories.
package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database holds the database connection and provides methods for database operations
type Database struct {
	DB       *gorm.DB
	provider DataProvider
}

// DatabaseOption is a functional option for configuring the database
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	logLevel gormlogger.LogLevel
	tracing  *telemetry.GormTracing
}

// WithLogLevel sets the gorm log level
func WithLogLevel(level gormlogger.LogLevel) DatabaseOption {
	return func(o *databaseOptions) {
		o.logLevel = level
	}
}

// WithTracing adds a span to every statement. DBSystem defaults to the
// provider name.
func WithTracing(tracing telemetry.GormTracing) DatabaseOption {
	return func(o *databaseOptions) {
		o.tracing = &tracing
	}
}

// NewDatabase opens a connection through provider and applies the pool settings
func NewDatabase(cfg *config.DatabaseConfig, provider DataProvider, zapLogger *zap.Logger, opts ...DatabaseOption) (*Database, error) {
	o := databaseOptions{logLevel: gormlogger.Warn}
	for _, opt := range opts {
		opt(&o)
	}
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}

	gormLog := logger.NewGormLogger(zapLogger, o.logLevel,
		logger.WithSlowThreshold(cfg.SlowThreshold),
		logger.WithProvider(provider.Name()),
	)

	db, err := gorm.Open(provider.Dialector(cfg.DSN()), &gorm.Config{
		Logger:                 gormLog,
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if o.tracing != nil {
		if o.tracing.DBSystem == "" {
			o.tracing.DBSystem = provider.Name()
		}
		if err := o.tracing.Register(db); err != nil {
			return nil, fmt.Errorf("failed to register database tracing: %w", err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	zapLogger.Info("database connected", zap.String("provider", provider.Name()))
	return &Database{DB: db, provider: provider}, nil
}

// NewDatabaseFromGorm wraps an existing gorm connection
func NewDatabaseFromGorm(db *gorm.DB, provider DataProvider) *Database {
	return &Database{DB: db, provider: provider}
}

// Provider returns the data provider the database was opened with
func (d *Database) Provider() DataProvider {
	return d.provider
}

// Initialize installs the schema when the database is empty
func (d *Database) Initialize(ctx context.Context) error {
	if d.provider == nil {
		return fmt.Errorf("database has no data provider")
	}
	return d.provider.InitializeDatabase(ctx, d.DB)
}

// IsInstalled reports whether the core schema exists
func (d *Database) IsInstalled(ctx context.Context) (bool, error) {
	return tablesInstalled(d.DB.WithContext(ctx))
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Stats returns database connection pool statistics
func (d *Database) Stats() (ConnectionStats, error) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return ConnectionStats{}, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	stats := sqlDB.Stats()
	return ConnectionStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration,
	}, nil
}

// ConnectionStats holds database connection pool statistics
type ConnectionStats struct {
	MaxOpenConnections int           `json:"max_open_connections"`
	OpenConnections    int           `json:"open_connections"`
	InUse              int           `json:"in_use"`
	Idle               int           `json:"idle"`
	WaitCount          int64         `json:"wait_count"`
	WaitDuration       time.Duration `json:"wait_duration"`
}

// Transaction executes fn within a database transaction
func (d *Database) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.DB.WithContext(ctx).Transaction(fn)
}

// ExecuteNonQuery runs a statement with named or positional parameters and returns the affected rows
func (d *Database) ExecuteNonQuery(ctx context.Context, sql string, params ...any) (int64, error) {
	result := d.DB.WithContext(ctx).Exec(sql, params...)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to execute statement: %w", result.Error)
	}
	return result.RowsAffected, nil
}

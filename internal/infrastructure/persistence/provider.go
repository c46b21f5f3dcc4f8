package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/fileprovider"
	"github.com/storefront/backend/internal/infrastructure/migration"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Virtual locations of installation assets, resolved through the file provider
const (
	MigrationsPath     = "~/migrations"
	InstallScriptsPath = "~/App_Data/Install"
)

// sentinelTables marks an installed database. If any exists, installation is skipped.
var sentinelTables = []string{
	"store",
	"address",
	"country",
	"state_province",
	"locale_string_resource",
}

// DataProvider knows how to open and install one database engine
type DataProvider interface {
	Name() string
	Dialector(dsn string) gorm.Dialector
	InitializeDatabase(ctx context.Context, db *gorm.DB) error
	BackupSupported() bool
	SupportedLengthOfBinaryHash() int
}

// ProviderOption is a functional option for configuring data providers
type ProviderOption func(*providerBase)

// WithProviderLogger sets the logger for the provider
func WithProviderLogger(logger *zap.Logger) ProviderOption {
	return func(p *providerBase) {
		p.logger = logger
	}
}

type providerBase struct {
	name   string
	files  fileprovider.FileProvider
	logger *zap.Logger
}

func newProviderBase(name string, files fileprovider.FileProvider, opts []ProviderOption) providerBase {
	p := providerBase{name: name, files: files, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

func (p *providerBase) Name() string {
	return p.name
}

func (p *providerBase) isInstalled(db *gorm.DB) (bool, error) {
	return tablesInstalled(db)
}

// tablesInstalled reports whether any sentinel table exists, ignoring case
func tablesInstalled(db *gorm.DB) (bool, error) {
	tables, err := db.Migrator().GetTables()
	if err != nil {
		return false, fmt.Errorf("failed to list tables: %w", err)
	}
	for _, table := range tables {
		for _, sentinel := range sentinelTables {
			if strings.EqualFold(table, sentinel) {
				return true, nil
			}
		}
	}
	return false, nil
}

// executeInstallScripts runs the provider's index and function scripts when present
func (p *providerBase) executeInstallScripts(ctx context.Context, db *gorm.DB) error {
	for _, kind := range []string{"indexes", "functions"} {
		path := p.files.MapPath(fmt.Sprintf("%s/%s.%s.sql", InstallScriptsPath, p.name, kind))
		if !p.files.FileExists(path) {
			p.logger.Debug("install script not found, skipping", zap.String("path", path))
			continue
		}

		script, err := p.files.ReadAllText(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		if strings.TrimSpace(script) == "" {
			continue
		}
		if err := db.WithContext(ctx).Exec(script).Error; err != nil {
			return fmt.Errorf("failed to execute %s: %w", path, err)
		}
		p.logger.Info("executed install script", zap.String("path", path))
	}
	return nil
}

// PostgresProvider installs the schema from the versioned migrations
type PostgresProvider struct {
	providerBase
	dsn string
}

// Ensure PostgresProvider implements DataProvider
var _ DataProvider = (*PostgresProvider)(nil)

// NewPostgresProvider creates the postgres provider. dsn is used by the migrator.
func NewPostgresProvider(dsn string, files fileprovider.FileProvider, opts ...ProviderOption) *PostgresProvider {
	return &PostgresProvider{
		providerBase: newProviderBase(config.ProviderPostgres, files, opts),
		dsn:          dsn,
	}
}

func (p *PostgresProvider) Dialector(dsn string) gorm.Dialector {
	return postgres.Open(dsn)
}

// InitializeDatabase applies the migrations and install scripts to an empty database
func (p *PostgresProvider) InitializeDatabase(ctx context.Context, db *gorm.DB) error {
	installed, err := p.isInstalled(db.WithContext(ctx))
	if err != nil {
		return err
	}
	if installed {
		p.logger.Debug("database already installed")
		return nil
	}

	m, err := migration.NewFromURL(p.dsn, p.files.MapPath(MigrationsPath), migration.WithLogger(p.logger))
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			p.logger.Warn("failed to close migrator", zap.Error(err))
		}
	}()

	if err := m.Up(); err != nil {
		return err
	}
	return p.executeInstallScripts(ctx, db)
}

func (p *PostgresProvider) BackupSupported() bool {
	return true
}

func (p *PostgresProvider) SupportedLengthOfBinaryHash() int {
	return 8000
}

// SQLiteProvider installs the schema with gorm AutoMigrate
type SQLiteProvider struct {
	providerBase
}

// Ensure SQLiteProvider implements DataProvider
var _ DataProvider = (*SQLiteProvider)(nil)

// NewSQLiteProvider creates the sqlite provider
func NewSQLiteProvider(files fileprovider.FileProvider, opts ...ProviderOption) *SQLiteProvider {
	return &SQLiteProvider{providerBase: newProviderBase(config.ProviderSQLite, files, opts)}
}

func (p *SQLiteProvider) Dialector(dsn string) gorm.Dialector {
	return sqlite.Open(dsn)
}

// InitializeDatabase creates the core tables and runs the install scripts on an empty database
func (p *SQLiteProvider) InitializeDatabase(ctx context.Context, db *gorm.DB) error {
	installed, err := p.isInstalled(db.WithContext(ctx))
	if err != nil {
		return err
	}
	if installed {
		p.logger.Debug("database already installed")
		return nil
	}

	if err := db.WithContext(ctx).AutoMigrate(models.CoreModels()...); err != nil {
		return fmt.Errorf("failed to create core tables: %w", err)
	}
	return p.executeInstallScripts(ctx, db)
}

func (p *SQLiteProvider) BackupSupported() bool {
	return false
}

func (p *SQLiteProvider) SupportedLengthOfBinaryHash() int {
	return 0
}

// DataProviderManager selects the provider named in the database configuration
type DataProviderManager struct {
	cfg   *config.DatabaseConfig
	files fileprovider.FileProvider
	opts  []ProviderOption
}

// NewDataProviderManager creates a manager for cfg
func NewDataProviderManager(cfg *config.DatabaseConfig, files fileprovider.FileProvider, opts ...ProviderOption) *DataProviderManager {
	return &DataProviderManager{cfg: cfg, files: files, opts: opts}
}

// DataProvider returns the configured provider
func (m *DataProviderManager) DataProvider() (DataProvider, error) {
	switch strings.ToLower(m.cfg.Provider) {
	case config.ProviderPostgres:
		return NewPostgresProvider(m.cfg.DSN(), m.files, m.opts...), nil
	case config.ProviderSQLite:
		return NewSQLiteProvider(m.files, m.opts...), nil
	default:
		return nil, fmt.Errorf("not supported data provider name: '%s'", m.cfg.Provider)
	}
}

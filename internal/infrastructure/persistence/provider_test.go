package persistence

import (
	"context"
	"testing"

	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/fileprovider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataProviderManager(t *testing.T) {
	files := fileprovider.NewLocalFileProvider(t.TempDir())

	tests := []struct {
		name        string
		provider    string
		wantName    string
		wantBackup  bool
		wantHashLen int
	}{
		{"postgres", "postgres", config.ProviderPostgres, true, 8000},
		{"sqlite upper case", "SQLite", config.ProviderSQLite, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewDataProviderManager(&config.DatabaseConfig{Provider: tt.provider}, files)
			p, err := m.DataProvider()
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, p.Name())
			assert.Equal(t, tt.wantBackup, p.BackupSupported())
			assert.Equal(t, tt.wantHashLen, p.SupportedLengthOfBinaryHash())
			assert.NotNil(t, p.Dialector("dsn"))
		})
	}

	t.Run("unknown provider", func(t *testing.T) {
		m := NewDataProviderManager(&config.DatabaseConfig{Provider: "sqlserver"}, files)
		_, err := m.DataProvider()
		assert.EqualError(t, err, "not supported data provider name: 'sqlserver'")
	})
}

func TestSQLiteProvider_InitializeDatabase(t *testing.T) {
	ctx := context.Background()
	db, files := newTestDatabase(t)

	// CREATE INDEX without IF NOT EXISTS fails if the install runs twice
	script := files.MapPath("~/App_Data/Install/sqlite.indexes.sql")
	require.NoError(t, files.CreateFile(script))
	require.NoError(t, files.WriteAllText(script, "CREATE INDEX ix_store_display_order ON store (display_order);"))

	require.NoError(t, db.Initialize(ctx))

	migrator := db.DB.Migrator()
	for _, table := range sentinelTables {
		assert.True(t, migrator.HasTable(table), table)
	}
	assert.True(t, migrator.HasIndex("store", "ix_store_display_order"))

	require.NoError(t, db.Initialize(ctx))
}

func TestSQLiteProvider_SkipsInstalledDatabase(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDatabase(t)

	require.NoError(t, db.DB.Exec("CREATE TABLE Country (id TEXT PRIMARY KEY)").Error)

	require.NoError(t, db.Initialize(ctx))
	assert.False(t, db.DB.Migrator().HasTable("store"))
}

func TestSQLiteProvider_MissingScriptsAreSkipped(t *testing.T) {
	db, _ := newTestDatabase(t)

	require.NoError(t, db.Initialize(context.Background()))
	assert.True(t, db.DB.Migrator().HasTable("address"))
}

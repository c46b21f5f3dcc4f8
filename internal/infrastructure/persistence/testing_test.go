package persistence

import (
	"testing"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/fileprovider"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestDatabase opens a private in-memory sqlite database rooted at a temp content root
func newTestDatabase(t *testing.T) (*Database, *fileprovider.LocalFileProvider) {
	t.Helper()

	files := fileprovider.NewLocalFileProvider(t.TempDir())
	cfg := &config.DatabaseConfig{
		Provider:     config.ProviderSQLite,
		SQLitePath:   "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}

	db, err := NewDatabase(cfg, NewSQLiteProvider(files), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, files
}

// Package testutil holds helpers shared by tests across packages: an
// installed in-memory database and a JSON request helper for gin routers.
package testutil

import (
	"context"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/fileprovider"
	"github.com/storefront/backend/internal/infrastructure/persistence"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// NewTestDatabase opens a private in-memory sqlite database with the core
// tables created. It is closed when the test ends.
func NewTestDatabase(t *testing.T) *persistence.Database {
	t.Helper()

	cfg := &config.DatabaseConfig{
		Provider:     config.ProviderSQLite,
		SQLitePath:   "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}
	provider := persistence.NewSQLiteProvider(fileprovider.NewLocalFileProvider(t.TempDir()))

	db, err := persistence.NewDatabase(cfg, provider, zap.NewNop())
	require.NoError(t, err, "open test database")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Initialize(context.Background()), "initialize test database")
	return db
}

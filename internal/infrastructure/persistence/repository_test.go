package persistence

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/stores"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestStoreRepository(t *testing.T) *GormRepository[stores.Store, models.StoreModel] {
	t.Helper()
	db, _ := newTestDatabase(t)
	require.NoError(t, db.Initialize(context.Background()))
	return NewStoreRepository(db.DB)
}

func newStore(name string, order int) *stores.Store {
	return &stores.Store{
		BaseEntity:   shared.NewBaseEntity(),
		Name:         name,
		URL:          "http://localhost/",
		Hosts:        "localhost",
		DisplayOrder: order,
	}
}

func TestGormRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := newTestStoreRepository(t)

	s := newStore("Main", 1)
	require.NoError(t, repo.Insert(ctx, s))

	got, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Main", got.Name)
	assert.Equal(t, "localhost", got.Hosts)

	got.Name = "Renamed"
	require.NoError(t, repo.Update(ctx, got))

	again, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", again.Name)

	require.NoError(t, repo.Delete(ctx, again))
	_, err = repo.GetByID(ctx, s.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormRepository_InvalidInput(t *testing.T) {
	ctx := context.Background()
	repo := newTestStoreRepository(t)

	assert.ErrorIs(t, repo.Insert(ctx, nil), shared.ErrInvalidInput)
	assert.ErrorIs(t, repo.Update(ctx, nil), shared.ErrInvalidInput)
	assert.ErrorIs(t, repo.Delete(ctx, nil), shared.ErrInvalidInput)
	assert.ErrorIs(t, repo.InsertMany(ctx, nil), shared.ErrInvalidInput)
	assert.ErrorIs(t, repo.UpdateMany(ctx, []*stores.Store{}), shared.ErrInvalidInput)
	assert.ErrorIs(t, repo.DeleteMany(ctx, nil), shared.ErrInvalidInput)
	assert.ErrorIs(t, repo.InsertMany(ctx, []*stores.Store{nil}), shared.ErrInvalidInput)
	assert.ErrorIs(t, repo.Update(ctx, &stores.Store{Name: "No ID"}), shared.ErrInvalidInput)
	assert.ErrorIs(t, repo.Delete(ctx, &stores.Store{}), shared.ErrInvalidInput)

	_, err := repo.GetByID(ctx, uuid.Nil)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormRepository_Batch(t *testing.T) {
	ctx := context.Background()
	repo := newTestStoreRepository(t)

	batch := []*stores.Store{newStore("B", 2), newStore("A", 1), newStore("C", 3)}
	batch[0].ID = uuid.Nil
	require.NoError(t, repo.InsertMany(ctx, batch))
	assert.NotEqual(t, uuid.Nil, batch[0].ID)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	for _, s := range batch {
		s.CompanyName = "ACME"
	}
	require.NoError(t, repo.UpdateMany(ctx, batch))

	ordered, err := repo.Find(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("company_name = ?", "ACME").Order("display_order")
	})
	require.NoError(t, err)
	require.Len(t, ordered, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{ordered[0].Name, ordered[1].Name, ordered[2].Name})

	first, err := repo.First(ctx, func(db *gorm.DB) *gorm.DB { return db.Order("display_order desc") })
	require.NoError(t, err)
	assert.Equal(t, "C", first.Name)

	_, err = repo.First(ctx, func(db *gorm.DB) *gorm.DB { return db.Where("name = ?", "missing") })
	assert.ErrorIs(t, err, shared.ErrNotFound)

	require.NoError(t, repo.DeleteMany(ctx, batch[:2]))
	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestGormRepository_GetPaged(t *testing.T) {
	ctx := context.Background()
	repo := newTestStoreRepository(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Insert(ctx, newStore(fmt.Sprintf("Store %d", i), i)))
	}

	byOrder := func(db *gorm.DB) *gorm.DB { return db.Order("display_order") }

	page, err := repo.GetPaged(ctx, 1, 2, byOrder)
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.TotalCount)
	assert.Equal(t, 3, page.TotalPages)
	assert.True(t, page.HasPreviousPage)
	assert.True(t, page.HasNextPage)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Store 2", page.Items[0].Name)

	last, err := repo.GetPaged(ctx, 2, 2, byOrder)
	require.NoError(t, err)
	assert.Len(t, last.Items, 1)
	assert.False(t, last.HasNextPage)

	clamped, err := repo.GetPaged(ctx, -1, 0, byOrder)
	require.NoError(t, err)
	assert.Equal(t, 0, clamped.PageIndex)
	assert.Equal(t, 1, clamped.PageSize)
	assert.Len(t, clamped.Items, 1)
}

func TestGormRepository_TableNoTracking(t *testing.T) {
	ctx := context.Background()
	repo := newTestStoreRepository(t)
	require.NoError(t, repo.Insert(ctx, newStore("Main", 1)))

	var names []string
	require.NoError(t, repo.TableNoTracking(ctx).Pluck("name", &names).Error)
	assert.Equal(t, []string{"Main"}, names)

	var total int64
	require.NoError(t, repo.Table(ctx).Count(&total).Error)
	assert.Equal(t, int64(1), total)
}

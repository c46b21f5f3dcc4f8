package pickupinstore

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appdirectory "github.com/storefront/backend/internal/application/directory"
	"github.com/storefront/backend/internal/domain/common"
	"github.com/storefront/backend/internal/domain/directory"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/stores"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/testutil"
)

type mockResources struct {
	mock.Mock
}

func (m *mockResources) GetResource(ctx context.Context, name string) string {
	return m.Called(ctx, name).String(0)
}

func (m *mockResources) AddOrUpdatePluginLocaleResource(ctx context.Context, resources map[string]string, languageID *uuid.UUID) error {
	return m.Called(ctx, resources, languageID).Error(0)
}

func (m *mockResources) DeletePluginLocaleResources(ctx context.Context, names []string) error {
	return m.Called(ctx, names).Error(0)
}

type fixedStore struct {
	store *stores.Store
}

func (f fixedStore) CurrentStore(context.Context) (*stores.Store, error) { return f.store, nil }

func (f fixedStore) ActiveStoreScopeConfiguration(context.Context) (uuid.UUID, error) {
	return uuid.Nil, nil
}

type fixture struct {
	db        *persistence.Database
	cache     *cache.MemoryCache
	repo      shared.Repository[StorePickupPoint]
	points    *StorePickupPointService
	countries *appdirectory.CountryService
	addresses *appdirectory.AddressService
	resources *mockResources
	store     *stores.Store
	provider  *Provider
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDatabase(t)
	mc := cache.NewMemoryCache()
	countries := appdirectory.NewCountryService(
		persistence.NewCountryRepository(db.DB),
		persistence.NewStateProvinceRepository(db.DB),
		mc,
	)
	f := &fixture{
		db:        db,
		cache:     mc,
		repo:      NewStorePickupPointRepository(db.DB),
		countries: countries,
		addresses: appdirectory.NewAddressService(persistence.NewAddressRepository(db.DB), countries),
		resources: &mockResources{},
		store:     &stores.Store{BaseEntity: shared.NewBaseEntity(), Name: "Main"},
	}
	f.points = NewStorePickupPointService(f.repo, mc, 0)
	f.provider = NewProvider(db.DB, f.points, f.addresses, countries, f.resources, fixedStore{store: f.store}, nil)
	return f
}

func (f *fixture) seedUSA(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	usa := &directory.Country{
		BaseEntity:         shared.NewBaseEntity(),
		Name:               "United States",
		TwoLetterIsoCode:   "US",
		ThreeLetterIsoCode: "USA",
		NumericIsoCode:     840,
		Published:          true,
	}
	require.NoError(t, f.countries.InsertCountry(ctx, usa))
	require.NoError(t, f.countries.InsertStateProvince(ctx, &directory.StateProvince{
		BaseEntity:   shared.NewBaseEntity(),
		CountryID:    usa.ID,
		Name:         "New York",
		Abbreviation: "NY",
		Published:    true,
	}))
}

func (f *fixture) insertPoint(t *testing.T, name string, order int, storeID *uuid.UUID) *StorePickupPoint {
	t.Helper()
	ctx := context.Background()
	address, err := common.NewAddress("1 Main Street", "Springfield", "12345")
	require.NoError(t, err)
	require.NoError(t, f.addresses.InsertAddress(ctx, address))

	p, err := NewStorePickupPoint(name, address.ID, decimal.NewFromInt(2))
	require.NoError(t, err)
	p.DisplayOrder = order
	p.StoreID = storeID
	require.NoError(t, f.points.Insert(ctx, p))
	return p
}

func TestStorePickupPoint_Validate(t *testing.T) {
	_, err := NewStorePickupPoint(" ", uuid.New(), decimal.Zero)
	assert.Error(t, err)

	_, err = NewStorePickupPoint("Depot", uuid.Nil, decimal.Zero)
	assert.Error(t, err)

	_, err = NewStorePickupPoint("Depot", uuid.New(), decimal.NewFromInt(-1))
	assert.Error(t, err)

	p, err := NewStorePickupPoint("Depot", uuid.New(), decimal.Zero)
	require.NoError(t, err)
	assert.True(t, p.AvailableIn(uuid.New()))
}

func TestStorePickupPointService_GetAll(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, createTable(f.db.DB))
	ctx := context.Background()

	other := uuid.New()
	f.insertPoint(t, "Beta", 2, nil)
	f.insertPoint(t, "Alpha", 2, &f.store.ID)
	f.insertPoint(t, "First", 1, nil)
	f.insertPoint(t, "Elsewhere", 0, &other)

	t.Run("store points and shared points ordered", func(t *testing.T) {
		page, err := f.points.GetAll(ctx, f.store.ID, 0, 0)
		require.NoError(t, err)
		names := make([]string, 0, len(page.Items))
		for _, p := range page.Items {
			names = append(names, p.Name)
		}
		assert.Equal(t, []string{"First", "Alpha", "Beta"}, names)
	})

	t.Run("all stores", func(t *testing.T) {
		page, err := f.points.GetAll(ctx, uuid.Nil, 0, 0)
		require.NoError(t, err)
		assert.Len(t, page.Items, 4)
	})

	t.Run("paged", func(t *testing.T) {
		page, err := f.points.GetAll(ctx, uuid.Nil, 1, 3)
		require.NoError(t, err)
		assert.Len(t, page.Items, 1)
		assert.Equal(t, int64(4), page.TotalCount)
		assert.True(t, page.HasPreviousPage)
	})

	t.Run("cached until a mutation", func(t *testing.T) {
		_, err := f.points.GetAll(ctx, uuid.Nil, 0, 0)
		require.NoError(t, err)

		hidden := &StorePickupPoint{BaseEntity: shared.NewBaseEntity(), AddressID: uuid.New(), Name: "Direct"}
		require.NoError(t, f.repo.Insert(ctx, hidden))

		page, err := f.points.GetAll(ctx, uuid.Nil, 0, 0)
		require.NoError(t, err)
		assert.Len(t, page.Items, 4)

		require.NoError(t, f.points.Delete(ctx, hidden))
		set, err := f.cache.IsSet(ctx, "storefront.pickuppoint.all-"+uuid.Nil.String())
		require.NoError(t, err)
		assert.False(t, set)
	})
}

func TestStorePickupPointService_Update(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, createTable(f.db.DB))
	ctx := context.Background()

	p := f.insertPoint(t, "Depot", 1, nil)
	p.Name = "Renamed"
	p.PickupFee = decimal.RequireFromString("3.5")
	require.NoError(t, f.points.Update(ctx, p))

	got, err := f.points.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.True(t, decimal.RequireFromString("3.5").Equal(got.PickupFee))

	p.Name = ""
	assert.Error(t, f.points.Update(ctx, p))
}

func TestProvider_InstallAndGetPickupPoints(t *testing.T) {
	f := newFixture(t)
	f.seedUSA(t)
	ctx := context.Background()

	f.resources.On("AddOrUpdatePluginLocaleResource", mock.Anything,
		mock.MatchedBy(func(r map[string]string) bool { return len(r) == 14 }),
		(*uuid.UUID)(nil)).Return(nil).Once()

	require.NoError(t, f.provider.Install(ctx))
	assert.True(t, f.db.DB.Migrator().HasTable(&StorePickupPointModel{}))

	resp, err := f.provider.GetPickupPoints(ctx, nil)
	require.NoError(t, err)
	assert.True(t, resp.Success())
	require.Len(t, resp.PickupPoints, 1)

	point := resp.PickupPoints[0]
	assert.Equal(t, "New York store", point.Name)
	assert.Equal(t, SystemName, point.ProviderSystemName)
	assert.Equal(t, "21 West 52nd Street", point.Address)
	assert.Equal(t, "New York", point.City)
	assert.Equal(t, "NY", point.StateAbbreviation)
	assert.Equal(t, "US", point.CountryCode)
	assert.Equal(t, "10021", point.ZipPostalCode)
	assert.Equal(t, "10.00 - 19.00", point.OpeningHours)
	assert.True(t, decimal.RequireFromString("1.99").Equal(point.PickupFee))
	_, err = uuid.Parse(point.ID)
	assert.NoError(t, err)

	f.resources.AssertExpectations(t)
}

func TestProvider_GetPickupPoints(t *testing.T) {
	t.Run("none configured", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, createTable(f.db.DB))
		f.resources.On("GetResource", mock.Anything, "Plugins.Pickup.PickupInStore.NoPickupPoints").
			Return("No pickup points are available")

		resp, err := f.provider.GetPickupPoints(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, resp.PickupPoints)
		assert.Equal(t, []string{"No pickup points are available"}, resp.Errors)
	})

	t.Run("points without address are skipped", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, createTable(f.db.DB))
		kept := f.insertPoint(t, "Kept", 1, nil)
		orphan := &StorePickupPoint{BaseEntity: shared.NewBaseEntity(), AddressID: uuid.New(), Name: "Orphan"}
		require.NoError(t, f.points.Insert(context.Background(), orphan))

		resp, err := f.provider.GetPickupPoints(context.Background(), nil)
		require.NoError(t, err)
		require.Len(t, resp.PickupPoints, 1)
		assert.Equal(t, kept.ID.String(), resp.PickupPoints[0].ID)
		assert.Empty(t, resp.PickupPoints[0].CountryCode)
	})
}

func TestProvider_Uninstall(t *testing.T) {
	f := newFixture(t)
	f.seedUSA(t)
	ctx := context.Background()

	f.resources.On("AddOrUpdatePluginLocaleResource", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.resources.On("DeletePluginLocaleResources", mock.Anything,
		mock.MatchedBy(func(names []string) bool { return len(names) == 14 })).Return(nil).Once()

	require.NoError(t, f.provider.Install(ctx))
	page, err := f.points.GetAll(ctx, uuid.Nil, 0, 0)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	addressID := page.Items[0].AddressID

	require.NoError(t, f.provider.Uninstall(ctx))
	assert.False(t, f.db.DB.Migrator().HasTable(&StorePickupPointModel{}))

	_, err = f.addresses.GetAddressByID(ctx, addressID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	f.resources.AssertExpectations(t)
}

func TestProvider_Descriptor(t *testing.T) {
	p := NewProvider(nil, nil, nil, nil, nil, nil, nil)
	assert.Equal(t, SystemName, p.Descriptor().SystemName)
	assert.Nil(t, p.ShipmentTracker())
	assert.Equal(t, "http://shop.example/Admin/PickupInStore/Configure", p.ConfigurationPageURL("http://shop.example/"))
	assert.Equal(t, "http://shop.example/Admin/PickupInStore/Configure", p.ConfigurationPageURL("http://shop.example"))
}

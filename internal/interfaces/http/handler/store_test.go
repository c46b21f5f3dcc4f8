package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/storefront/backend/internal/application/stores"
	"github.com/storefront/backend/internal/domain/customers"
	"github.com/storefront/backend/internal/domain/directory"
	"github.com/storefront/backend/internal/domain/shared"
	domainstores "github.com/storefront/backend/internal/domain/stores"
	"github.com/storefront/backend/internal/domain/tax"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

func TestStoreHandler_GetCurrentStore(t *testing.T) {
	store := &domainstores.Store{
		BaseEntity:      shared.NewBaseEntity(),
		Name:            "Your store name",
		URL:             "http://shop.local/",
		Hosts:           "shop.local, www.shop.local",
		DefaultCurrency: "USD",
	}
	sc := new(MockStoreContext)
	sc.On("CurrentStore", mock.Anything).Return(store, nil)

	api := newTestAPI(t, NewStoreHandler(sc, new(MockWorkContext)).Routes())
	w := api.do(t, http.MethodGet, "/api/v1/store", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp StoreResponse
	dataOf(t, w, &resp)
	assert.Equal(t, store.ID, resp.ID)
	assert.Equal(t, []string{"shop.local", "www.shop.local"}, resp.Hosts)
	assert.Equal(t, "USD", resp.DefaultCurrency)
}

func TestStoreHandler_NoStore(t *testing.T) {
	sc := new(MockStoreContext)
	sc.On("CurrentStore", mock.Anything).Return(nil, stores.ErrNoStore)

	api := newTestAPI(t, NewStoreHandler(sc, new(MockWorkContext)).Routes())
	w := api.do(t, http.MethodGet, "/api/v1/store", nil, "")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, dto.ErrCodeStoreNotLoaded, errorCodeOf(t, w))
}

func newWorkContextMock(admin bool) *MockWorkContext {
	wc := new(MockWorkContext)
	customer := &customers.Customer{Username: "guest", IsGuest: true}
	if admin {
		customer = &customers.Customer{Username: "admin", IsAdmin: true}
	}
	wc.On("CurrentCustomer", mock.Anything).Return(customer)
	wc.On("WorkingLanguage", mock.Anything).Return(language.MustParse("de-DE"))
	wc.On("WorkingCurrency", mock.Anything).Return(&directory.Currency{CurrencyCode: "EUR", Published: true}, nil)
	wc.On("TaxDisplayType", mock.Anything).Return(tax.ExcludingTax)
	wc.On("IsAdmin", mock.Anything).Return(admin)
	return wc
}

func TestStoreHandler_GetWorkContext(t *testing.T) {
	t.Run("guest", func(t *testing.T) {
		sc := new(MockStoreContext)
		api := newTestAPI(t, NewStoreHandler(sc, newWorkContextMock(false)).Routes())

		w := api.do(t, http.MethodGet, "/api/v1/work-context", nil, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp WorkContextResponse
		dataOf(t, w, &resp)
		assert.True(t, resp.Customer.IsGuest)
		assert.Equal(t, "de-DE", resp.Language)
		assert.Equal(t, "EUR", resp.CurrencyCode)
		assert.Equal(t, "excluding_tax", resp.TaxDisplayType)
		assert.Nil(t, resp.StoreScope)
		sc.AssertNotCalled(t, "ActiveStoreScopeConfiguration", mock.Anything)
	})

	t.Run("administrator with store scope", func(t *testing.T) {
		scope := uuid.New()
		sc := new(MockStoreContext)
		sc.On("ActiveStoreScopeConfiguration", mock.Anything).Return(scope, nil)
		api := newTestAPI(t, NewStoreHandler(sc, newWorkContextMock(true)).Routes())

		w := api.do(t, http.MethodGet, "/api/v1/work-context", nil, "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp WorkContextResponse
		dataOf(t, w, &resp)
		assert.True(t, resp.IsAdmin)
		require.NotNil(t, resp.StoreScope)
		assert.Equal(t, scope, *resp.StoreScope)
	})

	t.Run("no currency", func(t *testing.T) {
		wc := new(MockWorkContext)
		wc.On("WorkingCurrency", mock.Anything).Return(nil, shared.ErrNotFound)
		api := newTestAPI(t, NewStoreHandler(new(MockStoreContext), wc).Routes())

		w := api.do(t, http.MethodGet, "/api/v1/work-context", nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"golang.org/x/text/language"

	"github.com/storefront/backend/internal/domain/common"
	"github.com/storefront/backend/internal/domain/customers"
	"github.com/storefront/backend/internal/domain/directory"
	"github.com/storefront/backend/internal/domain/shipping"
	"github.com/storefront/backend/internal/domain/stores"
	"github.com/storefront/backend/internal/domain/tax"
)

// MockStoreContext is a mock implementation of stores.StoreContext
type MockStoreContext struct {
	mock.Mock
}

func (m *MockStoreContext) CurrentStore(ctx context.Context) (*stores.Store, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stores.Store), args.Error(1)
}

func (m *MockStoreContext) ActiveStoreScopeConfiguration(ctx context.Context) (uuid.UUID, error) {
	args := m.Called(ctx)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

// MockWorkContext is a mock implementation of customers.WorkContext
type MockWorkContext struct {
	mock.Mock
}

func (m *MockWorkContext) CurrentCustomer(ctx context.Context) *customers.Customer {
	return m.Called(ctx).Get(0).(*customers.Customer)
}

func (m *MockWorkContext) CurrentVendor(ctx context.Context) *customers.Vendor {
	return nil
}

func (m *MockWorkContext) WorkingLanguage(ctx context.Context) language.Tag {
	return m.Called(ctx).Get(0).(language.Tag)
}

func (m *MockWorkContext) WorkingCurrency(ctx context.Context) (*directory.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*directory.Currency), args.Error(1)
}

func (m *MockWorkContext) TaxDisplayType(ctx context.Context) tax.DisplayType {
	return m.Called(ctx).Get(0).(tax.DisplayType)
}

func (m *MockWorkContext) IsAdmin(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}

// MockCurrencyReader is a mock implementation of CurrencyReader
type MockCurrencyReader struct {
	mock.Mock
}

func (m *MockCurrencyReader) GetAllCurrencies(ctx context.Context, showHidden bool) ([]*directory.Currency, error) {
	args := m.Called(ctx, showHidden)
	return args.Get(0).([]*directory.Currency), args.Error(1)
}

func (m *MockCurrencyReader) GetLiveRates(ctx context.Context, code string) ([]directory.ExchangeRate, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]directory.ExchangeRate), args.Error(1)
}

// MockCountryReader is a mock implementation of CountryReader
type MockCountryReader struct {
	mock.Mock
}

func (m *MockCountryReader) GetCountryByTwoLetterIsoCode(ctx context.Context, code string) (*directory.Country, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*directory.Country), args.Error(1)
}

func (m *MockCountryReader) GetCountryByThreeLetterIsoCode(ctx context.Context, code string) (*directory.Country, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*directory.Country), args.Error(1)
}

func (m *MockCountryReader) GetStateProvinceByAbbreviation(ctx context.Context, abbreviation string, countryID *uuid.UUID) (*directory.StateProvince, error) {
	args := m.Called(ctx, abbreviation, countryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*directory.StateProvince), args.Error(1)
}

func (m *MockCountryReader) GetStateProvincesByCountryID(ctx context.Context, countryID uuid.UUID) ([]*directory.StateProvince, error) {
	args := m.Called(ctx, countryID)
	return args.Get(0).([]*directory.StateProvince), args.Error(1)
}

// MockTaxRateCalculator is a mock implementation of TaxRateCalculator
type MockTaxRateCalculator struct {
	mock.Mock
}

func (m *MockTaxRateCalculator) GetTaxRate(ctx context.Context, req tax.CalculateTaxRequest) (*tax.CalculateTaxResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tax.CalculateTaxResult), args.Error(1)
}

// MockPickupPointLister is a mock implementation of PickupPointLister
type MockPickupPointLister struct {
	mock.Mock
}

func (m *MockPickupPointLister) GetPickupPoints(ctx context.Context, address *common.Address, provider string) (*shipping.GetPickupPointsResponse, error) {
	args := m.Called(ctx, address, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.GetPickupPointsResponse), args.Error(1)
}

// MockResourceReader is a mock implementation of ResourceReader
type MockResourceReader struct {
	mock.Mock
}

func (m *MockResourceReader) GetResource(ctx context.Context, name string) string {
	return m.Called(ctx, name).String(0)
}

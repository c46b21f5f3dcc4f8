package directory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/plugin"
)

// Currency is a currency the store can display prices in.
type Currency struct {
	shared.BaseEntity
	Name         string
	CurrencyCode string
	Rate         decimal.Decimal
	Published    bool
	DisplayOrder int
}

// ExchangeRate is a live rate reported by an exchange rate provider.
type ExchangeRate struct {
	CurrencyCode string          `json:"currency_code"`
	Rate         decimal.Decimal `json:"rate"`
	UpdatedOn    time.Time       `json:"updated_on"`
}

// ExchangeRateProvider is a plugin that reports live currency rates
// relative to a base currency.
type ExchangeRateProvider interface {
	plugin.Plugin
	GetCurrencyLiveRates(ctx context.Context, exchangeRateCurrencyCode string) ([]ExchangeRate, error)
}

// Package manualrates is an exchange rate provider that derives live rates
// from the rates stored with each currency.
package manualrates

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/directory"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/plugin"
)

// SystemName identifies the plugin
const SystemName = "CurrencyExchange.Manual"

// rateScale is the number of decimal places kept when rebasing rates
const rateScale = 8

// Provider reports the stored currency rates rebased on the requested currency
type Provider struct {
	plugin.BasePlugin
	currencies shared.Repository[directory.Currency]
	now        func() time.Time
}

var _ directory.ExchangeRateProvider = (*Provider)(nil)

// NewProvider creates the provider
func NewProvider(currencies shared.Repository[directory.Currency]) *Provider {
	return &Provider{
		BasePlugin: plugin.BasePlugin{PluginDescriptor: plugin.Descriptor{
			SystemName:   SystemName,
			FriendlyName: "Manual exchange rates",
			Group:        "Exchange rate providers",
			Version:      "1.00",
			Author:       "Storefront team",
			Description:  "Uses the rates entered for each currency",
			DisplayOrder: 1,
		}},
		currencies: currencies,
		now:        time.Now,
	}
}

// GetCurrencyLiveRates returns the rate of every other published currency
// relative to exchangeRateCurrencyCode
func (p *Provider) GetCurrencyLiveRates(ctx context.Context, exchangeRateCurrencyCode string) ([]directory.ExchangeRate, error) {
	all, err := p.currencies.Find(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("published = ?", true).Order("display_order, currency_code")
	})
	if err != nil {
		return nil, err
	}

	var base *directory.Currency
	for _, c := range all {
		if strings.EqualFold(c.CurrencyCode, exchangeRateCurrencyCode) {
			base = c
			break
		}
	}
	if base == nil {
		return nil, fmt.Errorf("%w: currency '%s' is not published", shared.ErrNotFound, exchangeRateCurrencyCode)
	}
	if base.Rate.IsZero() {
		return nil, fmt.Errorf("%w: currency '%s' has no rate", shared.ErrInvalidState, base.CurrencyCode)
	}

	updated := p.now().UTC()
	rates := make([]directory.ExchangeRate, 0, len(all)-1)
	for _, c := range all {
		if c.ID == base.ID {
			continue
		}
		rates = append(rates, directory.ExchangeRate{
			CurrencyCode: c.CurrencyCode,
			Rate:         c.Rate.DivRound(base.Rate, rateScale),
			UpdatedOn:    updated,
		})
	}
	return rates, nil
}

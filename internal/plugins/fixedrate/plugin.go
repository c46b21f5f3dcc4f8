// Package fixedrate is a tax provider that charges one configured rate
// regardless of address or tax category.
package fixedrate

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/shared/plugin"
	"github.com/storefront/backend/internal/domain/tax"
)

// SystemName identifies the plugin
const SystemName = "Tax.FixedRate"

// Provider returns the same tax rate for every request
type Provider struct {
	plugin.BasePlugin
	rate decimal.Decimal
}

var _ tax.Provider = (*Provider)(nil)

// NewProvider creates the provider. rate is a percentage.
func NewProvider(rate decimal.Decimal) *Provider {
	return &Provider{
		BasePlugin: plugin.BasePlugin{PluginDescriptor: plugin.Descriptor{
			SystemName:   SystemName,
			FriendlyName: "Fixed tax rate",
			Group:        "Tax providers",
			Version:      "1.00",
			Author:       "Storefront team",
			Description:  "Applies a single configured tax rate",
			DisplayOrder: 1,
		}},
		rate: rate,
	}
}

// Rate returns the configured percentage
func (p *Provider) Rate() decimal.Decimal {
	return p.rate
}

// GetTaxRate returns the configured rate
func (p *Provider) GetTaxRate(_ context.Context, _ tax.CalculateTaxRequest) (*tax.CalculateTaxResult, error) {
	return &tax.CalculateTaxResult{TaxRate: p.rate}, nil
}

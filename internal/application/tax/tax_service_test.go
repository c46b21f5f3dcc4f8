package tax

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/plugin"
	"github.com/storefront/backend/internal/domain/tax"
)

type fakeTaxProvider struct {
	plugin.BasePlugin
	rate decimal.Decimal
	err  error
}

func (p *fakeTaxProvider) GetTaxRate(context.Context, tax.CalculateTaxRequest) (*tax.CalculateTaxResult, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &tax.CalculateTaxResult{TaxRate: p.rate}, nil
}

func newFakeTaxProvider(name string, rate int64) *fakeTaxProvider {
	return &fakeTaxProvider{
		BasePlugin: plugin.BasePlugin{PluginDescriptor: plugin.Descriptor{SystemName: name, Group: "Tax providers"}},
		rate:       decimal.NewFromInt(rate),
	}
}

func TestTaxService_GetTaxRate(t *testing.T) {
	ctx := context.Background()
	pm := plugin.NewPluginManager(nil)
	fixed := newFakeTaxProvider("Tax.Fixed", 10)
	other := newFakeTaxProvider("Tax.Other", 20)
	require.NoError(t, pm.Register(fixed))
	require.NoError(t, pm.Register(other))
	require.NoError(t, pm.Install(ctx, "Tax.Fixed"))
	require.NoError(t, pm.Install(ctx, "Tax.Other"))

	svc := NewTaxService(pm, "Tax.Fixed")
	result, err := svc.GetTaxRate(ctx, tax.CalculateTaxRequest{Price: decimal.NewFromInt(100)})
	require.NoError(t, err)
	assert.True(t, result.TaxRate.Equal(decimal.NewFromInt(10)))
	assert.True(t, result.Success())

	fixed.err = errors.New("rate table missing")
	_, err = svc.GetTaxRate(ctx, tax.CalculateTaxRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Tax.Fixed")
}

func TestTaxService_MissingProvider(t *testing.T) {
	ctx := context.Background()
	pm := plugin.NewPluginManager(nil)
	require.NoError(t, pm.Register(newFakeTaxProvider("Tax.Fixed", 10)))

	_, err := NewTaxService(pm, "").GetTaxRate(ctx, tax.CalculateTaxRequest{})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = NewTaxService(pm, "Tax.Fixed").GetTaxRate(ctx, tax.CalculateTaxRequest{})
	assert.ErrorIs(t, err, shared.ErrNotFound, "registered but not installed")

	_, err = NewTaxService(pm, "Tax.Unknown").GetTaxRate(ctx, tax.CalculateTaxRequest{})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

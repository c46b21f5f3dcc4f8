package fixedrate

import (
	"context"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/dig"

	"github.com/storefront/backend/internal/domain/shared/plugin"
	"github.com/storefront/backend/internal/domain/tax"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/engine"
)

func TestProvider_GetTaxRate(t *testing.T) {
	p := NewProvider(decimal.RequireFromString("7.5"))

	result, err := p.GetTaxRate(context.Background(), tax.CalculateTaxRequest{Price: decimal.NewFromInt(10)})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("7.5").Equal(result.TaxRate))
	assert.Empty(t, result.Errors)
	assert.Equal(t, SystemName, p.Descriptor().SystemName)
	assert.Empty(t, p.ConfigurationPageURL("http://shop.local/"))
}

func TestStartup_ProvidesPlugin(t *testing.T) {
	registry := engine.NewRegistry()
	registry.MustRegister(engine.Component{Name: "core.Plugins", Value: managerStartup{}})
	registry.MustRegister(engine.Component{Name: "plugins/fixedrate.Startup", Plugin: SystemName, Value: Startup{}})
	finder, err := engine.NewTypeFinder(registry, "")
	require.NoError(t, err)

	cfg := &config.Config{Tax: config.TaxConfig{FixedRate: 20}}
	e := engine.New(cfg, finder)
	require.NoError(t, e.ConfigureServices(context.Background()))

	p, ok := e.Plugins().GetPlugin(SystemName)
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(20).Equal(p.(*Provider).Rate()))
}

type managerStartup struct{}

func (managerStartup) Order() int { return 0 }

func (managerStartup) ConfigureServices(c *dig.Container, _ *config.Config) error {
	return c.Provide(func() *plugin.PluginManager { return plugin.NewPluginManager(nil) })
}

func (managerStartup) Configure(*gin.Engine) {}

package fixedrate

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/dig"

	"github.com/storefront/backend/internal/domain/shared/plugin"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/engine"
)

func init() {
	engine.Register(engine.Component{Name: "plugins/fixedrate.Startup", Plugin: SystemName, Value: Startup{}})
}

// Startup provides the plugin to the plugin manager
type Startup struct{}

func (Startup) Order() int { return 100 }

func (Startup) ConfigureServices(c *dig.Container, _ *config.Config) error {
	return engine.ProvidePlugin(c, func(cfg *config.Config) plugin.Plugin {
		return NewProvider(decimal.NewFromFloat(cfg.Tax.FixedRate))
	})
}

func (Startup) Configure(*gin.Engine) {}

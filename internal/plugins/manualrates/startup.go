package manualrates

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/dig"

	"github.com/storefront/backend/internal/domain/directory"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/plugin"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/engine"
)

func init() {
	engine.Register(engine.Component{Name: "plugins/manualrates.Startup", Plugin: SystemName, Value: Startup{}})
}

// Startup provides the plugin to the plugin manager
type Startup struct{}

func (Startup) Order() int { return 100 }

func (Startup) ConfigureServices(c *dig.Container, _ *config.Config) error {
	return engine.ProvidePlugin(c, func(currencies shared.Repository[directory.Currency]) plugin.Plugin {
		return NewProvider(currencies)
	})
}

func (Startup) Configure(*gin.Engine) {}

package engine

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/dig"

	"github.com/storefront/backend/internal/infrastructure/config"
)

// Startup configures services and the request pipeline at application start.
// Startups run in ascending Order.
type Startup interface {
	Order() int
	// ConfigureServices provides the component's constructors to the container
	ConfigureServices(c *dig.Container, cfg *config.Config) error
	// Configure adds middleware and routes to the router
	Configure(r *gin.Engine)
}

// DependencyRegistrar registers services after every Startup has run.
type DependencyRegistrar interface {
	Order() int
	Register(c *dig.Container, finder TypeFinder, cfg *config.Config) error
}

// MapperProfile registers object conversions with the Mapper.
type MapperProfile interface {
	Order() int
	Configure(m *Mapper)
}

// StartupTask runs once after the container is populated.
type StartupTask interface {
	Order() int
	Execute(ctx context.Context) error
}

// ordered is implemented by every engine component
type ordered interface {
	Order() int
}

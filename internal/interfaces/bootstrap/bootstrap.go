// Package bootstrap registers the core engine components: the
// infrastructure and application services, the HTTP handlers, the request
// pipeline and the installation task that seeds a fresh database.
package bootstrap

import (
	"github.com/storefront/backend/internal/infrastructure/engine"
)

// Version is reported by the system endpoints. It is set at build time.
var Version = "dev"

func init() {
	for _, c := range Components() {
		engine.Register(c)
	}
}

// Components returns fresh instances of the core components
func Components() []engine.Component {
	return []engine.Component{
		{Name: "interfaces/bootstrap.CoreStartup", Value: &CoreStartup{}},
		{Name: "interfaces/bootstrap.HandlerRegistrar", Value: HandlerRegistrar{}},
		{Name: "interfaces/bootstrap.InstallationTask", Value: NewInstallationTask},
	}
}

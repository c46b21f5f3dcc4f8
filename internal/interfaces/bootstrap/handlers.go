package bootstrap

import (
	"fmt"
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	appdirectory "github.com/storefront/backend/internal/application/directory"
	applocalization "github.com/storefront/backend/internal/application/localization"
	appshipping "github.com/storefront/backend/internal/application/shipping"
	apptax "github.com/storefront/backend/internal/application/tax"
	"github.com/storefront/backend/internal/domain/customers"
	"github.com/storefront/backend/internal/domain/shared/plugin"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/engine"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
	"github.com/storefront/backend/internal/interfaces/http/webhelper"
)

// Admin token requests allowed per client within tokenRateWindow
const (
	tokenRateLimit  = 5
	tokenRateWindow = time.Minute
)

// HandlerRegistrar provides the core HTTP handlers and their route groups
type HandlerRegistrar struct{}

func (HandlerRegistrar) Order() int { return 0 }

func (HandlerRegistrar) Register(c *dig.Container, _ engine.TypeFinder, _ *config.Config) error {
	handlers := []any{
		func(cfg *config.Config, db *persistence.Database, log *zap.Logger) *handler.SystemHandler {
			return handler.NewSystemHandler(cfg.App.Name, Version, db, log)
		},
		func(jwt *auth.JWTService, blacklist auth.TokenBlacklist, wh *webhelper.WebHelper, log *zap.Logger) *handler.TokenHandler {
			limiter := middleware.NewRateLimiter(tokenRateLimit, tokenRateWindow, middleware.WithClientKey(wh.GetCurrentIPAddress))
			return handler.NewTokenHandler(jwt, blacklist, limiter, log)
		},
		func(m cache.Manager, wh *webhelper.WebHelper, log *zap.Logger) *handler.MaintenanceHandler {
			return handler.NewMaintenanceHandler(m, wh, log)
		},
		func(pm *plugin.PluginManager, wh *webhelper.WebHelper, m cache.Manager, log *zap.Logger) *handler.PluginHandler {
			return handler.NewPluginHandler(pm, wh, m, log)
		},
		handler.NewStoreHandler,
		handler.NewRequestInfoHandler,
		func(currencies *appdirectory.CurrencyService, countries *appdirectory.CountryService) *handler.DirectoryHandler {
			return handler.NewDirectoryHandler(currencies, countries)
		},
		func(taxes *apptax.TaxService, countries *appdirectory.CountryService, work customers.WorkContext) *handler.TaxHandler {
			return handler.NewTaxHandler(taxes, countries, work)
		},
		func(shipping *appshipping.ShippingService, countries *appdirectory.CountryService) *handler.ShippingHandler {
			return handler.NewShippingHandler(shipping, countries)
		},
		func(resources *applocalization.LocalizationService, work customers.WorkContext) *handler.LocalizationHandler {
			return handler.NewLocalizationHandler(resources, work)
		},
	}
	for _, ctor := range handlers {
		if err := c.Provide(ctor); err != nil {
			return fmt.Errorf("failed to provide handler: %w", err)
		}
	}

	routes := []any{
		func(h *handler.SystemHandler) router.RouteRegistrar { return h.Routes() },
		func(h *handler.TokenHandler) router.RouteRegistrar { return h.Routes() },
		func(h *handler.TokenHandler) router.RouteRegistrar { return h.AdminRoutes() },
		func(h *handler.MaintenanceHandler) router.RouteRegistrar { return h.Routes() },
		func(h *handler.PluginHandler) router.RouteRegistrar { return h.Routes() },
		func(h *handler.StoreHandler) router.RouteRegistrar { return h.Routes() },
		func(h *handler.RequestInfoHandler) router.RouteRegistrar { return h.Routes() },
		func(h *handler.DirectoryHandler) router.RouteRegistrar { return h.Routes() },
		func(h *handler.TaxHandler) router.RouteRegistrar { return h.Routes() },
		func(h *handler.ShippingHandler) router.RouteRegistrar { return h.Routes() },
		func(h *handler.LocalizationHandler) router.RouteRegistrar { return h.Routes() },
	}
	for _, ctor := range routes {
		if err := c.Provide(ctor, dig.Group(router.RoutesGroup)); err != nil {
			return fmt.Errorf("failed to provide routes: %w", err)
		}
	}
	return nil
}

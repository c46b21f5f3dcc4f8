package bootstrap

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/dig"
	"go.uber.org/zap"

	appcustomers "github.com/storefront/backend/internal/application/customers"
	appdirectory "github.com/storefront/backend/internal/application/directory"
	applocalization "github.com/storefront/backend/internal/application/localization"
	appshipping "github.com/storefront/backend/internal/application/shipping"
	appstores "github.com/storefront/backend/internal/application/stores"
	apptax "github.com/storefront/backend/internal/application/tax"
	"github.com/storefront/backend/internal/domain/common"
	"github.com/storefront/backend/internal/domain/customers"
	"github.com/storefront/backend/internal/domain/directory"
	"github.com/storefront/backend/internal/domain/localization"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/plugin"
	"github.com/storefront/backend/internal/domain/stores"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/fileprovider"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	infraplugin "github.com/storefront/backend/internal/infrastructure/plugin"
	"github.com/storefront/backend/internal/infrastructure/scheduler"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
	"github.com/storefront/backend/internal/interfaces/http/webhelper"
)

// maxRequestBodyBytes bounds request bodies
const maxRequestBodyBytes = 1 << 20

// CoreStartup provides the infrastructure and application services and
// builds the request pipeline. It runs before every plugin startup.
type CoreStartup struct {
	container *dig.Container
	cfg       *config.Config
}

func (s *CoreStartup) Order() int { return 0 }

// ConfigureServices provides the core constructors. Nothing is built until
// first resolved.
func (s *CoreStartup) ConfigureServices(c *dig.Container, cfg *config.Config) error {
	s.container, s.cfg = c, cfg

	for _, ctor := range []any{
		// infrastructure
		func(cfg *config.Config) fileprovider.FileProvider {
			return fileprovider.NewLocalFileProvider(cfg.App.ContentRoot)
		},
		newDatabase,
		func(db *persistence.Database) webhelper.InstallationChecker { return db },
		func(cfg *config.Config, log *zap.Logger) *cache.Factory {
			return cache.NewFactory(cfg.Cache, cfg.Redis, cache.WithLogger(log))
		},
		func(f *cache.Factory) (cache.Manager, error) { return f.NewStaticManager(context.Background()) },
		func(f *cache.Factory) (cache.Locker, error) { return f.NewLocker(context.Background()) },
		func(files fileprovider.FileProvider, log *zap.Logger) plugin.InstalledStore {
			return infraplugin.NewFileInstalledStore(files, log)
		},
		plugin.NewPluginManager,

		// repositories
		func(db *persistence.Database) shared.Repository[stores.Store] {
			return persistence.NewStoreRepository(db.DB)
		},
		func(db *persistence.Database) shared.Repository[common.Address] {
			return persistence.NewAddressRepository(db.DB)
		},
		func(db *persistence.Database) shared.Repository[directory.Country] {
			return persistence.NewCountryRepository(db.DB)
		},
		func(db *persistence.Database) shared.Repository[directory.StateProvince] {
			return persistence.NewStateProvinceRepository(db.DB)
		},
		func(db *persistence.Database) shared.Repository[directory.Currency] {
			return persistence.NewCurrencyRepository(db.DB)
		},
		func(db *persistence.Database) shared.Repository[localization.Language] {
			return persistence.NewLanguageRepository(db.DB)
		},
		func(db *persistence.Database) shared.Repository[localization.LocaleStringResource] {
			return persistence.NewLocaleStringResourceRepository(db.DB)
		},

		// application services
		appstores.NewStoreService,
		func(s *appstores.StoreService) stores.StoreContext { return s },
		appdirectory.NewCountryService,
		appdirectory.NewAddressService,
		func(repo shared.Repository[directory.Currency], pm *plugin.PluginManager, m cache.Manager, cfg *config.Config, log *zap.Logger) *appdirectory.CurrencyService {
			return appdirectory.NewCurrencyService(repo, pm, m, cfg.Plugins.ActiveExchangeRateProvider,
				appdirectory.WithRatesCacheTime(cfg.Cache.DefaultCacheTime),
				appdirectory.WithCurrencyLogger(log),
			)
		},
		appcustomers.NewWorkContext,
		func(w *appcustomers.WorkContext) customers.WorkContext { return w },
		applocalization.NewLocalizationService,
		appshipping.NewShippingService,
		func(pm *plugin.PluginManager, cfg *config.Config) *apptax.TaxService {
			return apptax.NewTaxService(pm, cfg.Plugins.ActiveTaxProvider)
		},

		// security and web helpers
		func(cfg *config.Config) *auth.JWTService { return auth.NewJWTService(cfg.JWT, cfg.Admin) },
		func(m cache.Manager) auth.TokenBlacklist { return auth.NewCacheTokenBlacklist(m) },
		func(cfg *config.Config, files fileprovider.FileProvider, sc stores.StoreContext, checker webhelper.InstallationChecker, log *zap.Logger) *webhelper.WebHelper {
			return webhelper.New(cfg.Hosting, files, sc, webhelper.WithInstallationChecker(checker), webhelper.WithLogger(log))
		},
		newScheduler,
	} {
		if err := c.Provide(ctor); err != nil {
			return fmt.Errorf("failed to provide core services: %w", err)
		}
	}
	return nil
}

// newDatabase opens the database through the configured data provider
func newDatabase(cfg *config.Config, files fileprovider.FileProvider, log *zap.Logger) (*persistence.Database, error) {
	provider, err := persistence.NewDataProviderManager(&cfg.Database, files, persistence.WithProviderLogger(log)).DataProvider()
	if err != nil {
		return nil, err
	}
	opts := []persistence.DatabaseOption{persistence.WithLogLevel(logger.MapGormLogLevel(cfg.Log.Level))}
	if cfg.Telemetry.Enabled {
		opts = append(opts, persistence.WithTracing(telemetry.GormTracing{LogSQL: cfg.Telemetry.TraceSQLVariables}))
	}
	return persistence.NewDatabase(&cfg.Database, provider, log, opts...)
}

// newScheduler registers the built-in tasks. With tasks disabled the
// scheduler has nothing to run.
func newScheduler(
	cfg *config.Config,
	locker cache.Locker,
	m cache.Manager,
	currencies *appdirectory.CurrencyService,
	log *zap.Logger,
) (*scheduler.Scheduler, error) {
	s := scheduler.NewScheduler(locker, log.Named("scheduler"))
	if !cfg.Tasks.Enabled {
		return s, nil
	}

	tasks := []scheduler.Task{
		scheduler.NewClearCacheTask(m, cfg.Tasks.ClearCacheInterval),
		appdirectory.NewUpdateExchangeRatesTask(currencies, cfg.Plugins.PrimaryCurrencyCode, cfg.Tasks.ExchangeRateInterval, log),
	}
	for _, t := range tasks {
		if err := s.Register(t); err != nil {
			return nil, err
		}
	}
	return s, nil
}

type pipelineParams struct {
	dig.In

	Logger     *zap.Logger
	JWT        *auth.JWTService
	Blacklist  auth.TokenBlacklist
	Web        *webhelper.WebHelper
	Registrars []router.RouteRegistrar `group:"routes"`
}

// Configure installs the middleware chain and mounts every registered
// route group
func (s *CoreStartup) Configure(r *gin.Engine) {
	middleware.SetupValidator()
	err := s.container.Invoke(func(p pipelineParams) {
		if len(s.cfg.HTTP.TrustedProxies) > 0 {
			if err := r.SetTrustedProxies(s.cfg.HTTP.TrustedProxies); err != nil {
				p.Logger.Warn("Invalid trusted proxies, ignoring", zap.Error(err))
			}
		}

		jwtCfg := middleware.JWTMiddlewareConfig{
			JWTService:     p.JWT,
			TokenBlacklist: p.Blacklist,
			Logger:         p.Logger,
		}
		r.Use(
			logger.Recovery(p.Logger),
			middleware.RequestID(),
		)
		r.Use(middleware.Tracing(s.cfg.Telemetry)...)
		r.Use(
			logger.GinMiddleware(p.Logger, "/api/v1/system/ping", "/api/v1/system/health"),
			middleware.Secure(),
			middleware.CORS(middleware.CORSConfigFrom(s.cfg.HTTP)),
			middleware.BodyLimit(maxRequestBodyBytes),
			middleware.RequestContext(),
			p.Web.TrackPost(),
			middleware.OptionalAdminAuth(jwtCfg),
		)

		router.NewRouter(r, router.WithAdminMiddleware(middleware.AdminAuth(jwtCfg))).
			Register(p.Registrars...).
			Setup()

		groups := make([]string, len(p.Registrars))
		for i, reg := range p.Registrars {
			groups[i] = fmt.Sprint(reg)
		}
		p.Logger.Info("Request pipeline configured", zap.Strings("route_groups", groups))
	})
	if err != nil {
		panic(fmt.Errorf("failed to configure request pipeline: %w", err))
	}
}

package pickupinstore

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/dig"
	"go.uber.org/zap"

	appdirectory "github.com/storefront/backend/internal/application/directory"
	applocalization "github.com/storefront/backend/internal/application/localization"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/plugin"
	"github.com/storefront/backend/internal/domain/stores"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/engine"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/interfaces/http/router"
	"github.com/storefront/backend/internal/interfaces/http/webhelper"
)

func init() {
	for _, c := range Components() {
		engine.Register(c)
	}
}

// Components returns the engine components owned by the plugin
func Components() []engine.Component {
	return []engine.Component{
		{Name: "plugins/pickupinstore.Startup", Plugin: SystemName, Value: Startup{}},
		{Name: "plugins/pickupinstore.Registrar", Plugin: SystemName, Value: Registrar{}},
		{Name: "plugins/pickupinstore.MapperProfile", Plugin: SystemName, Value: MapperProfile{}},
		{Name: "plugins/pickupinstore.AvailabilityTask", Plugin: SystemName, Value: NewAvailabilityTask},
	}
}

// Startup provides the pickup point services and the plugin
type Startup struct{}

func (Startup) Order() int { return 100 }

type providerParams struct {
	dig.In

	DB           *persistence.Database
	Points       *StorePickupPointService
	Addresses    *appdirectory.AddressService
	Countries    *appdirectory.CountryService
	Resources    *applocalization.LocalizationService
	StoreContext stores.StoreContext
	Logger       *zap.Logger
}

func (Startup) ConfigureServices(c *dig.Container, cfg *config.Config) error {
	ctors := []any{
		func(db *persistence.Database) shared.Repository[StorePickupPoint] {
			return NewStorePickupPointRepository(db.DB)
		},
		func(points shared.Repository[StorePickupPoint], m cache.Manager) *StorePickupPointService {
			return NewStorePickupPointService(points, m, cfg.Cache.DefaultCacheTime)
		},
	}
	for _, ctor := range ctors {
		if err := c.Provide(ctor); err != nil {
			return fmt.Errorf("failed to provide pickup point services: %w", err)
		}
	}

	return engine.ProvidePlugin(c, func(p providerParams) plugin.Plugin {
		return NewProvider(p.DB.DB, p.Points, p.Addresses, p.Countries, p.Resources, p.StoreContext, p.Logger)
	})
}

func (Startup) Configure(*gin.Engine) {}

// Registrar provides the admin handler and its routes
type Registrar struct{}

func (Registrar) Order() int { return 100 }

func (Registrar) Register(c *dig.Container, _ engine.TypeFinder, _ *config.Config) error {
	err := c.Provide(func(
		points *StorePickupPointService,
		addresses *appdirectory.AddressService,
		countries *appdirectory.CountryService,
		pm *plugin.PluginManager,
		mapper *engine.Mapper,
		wh *webhelper.WebHelper,
		log *zap.Logger,
	) *ConfigureHandler {
		return NewConfigureHandler(points, addresses, countries, pm, mapper, wh, log)
	})
	if err != nil {
		return fmt.Errorf("failed to provide pickup point handler: %w", err)
	}
	return c.Provide(func(h *ConfigureHandler) router.RouteRegistrar { return h.Routes() }, dig.Group(router.RoutesGroup))
}

// MapperProfile maps pickup points to their admin representation
type MapperProfile struct{}

func (MapperProfile) Order() int { return 100 }

func (MapperProfile) Configure(m *engine.Mapper) {
	engine.CreateMap(m, func(src *StorePickupPoint, dst *PickupPointResponse) error {
		*dst = PickupPointResponse{
			ID:           src.ID,
			StoreID:      src.StoreID,
			AddressID:    src.AddressID,
			Name:         src.Name,
			Description:  src.Description,
			OpeningHours: src.OpeningHours,
			PickupFee:    src.PickupFee,
			DisplayOrder: src.DisplayOrder,
			Latitude:     src.Latitude,
			Longitude:    src.Longitude,
			CreatedAt:    src.CreatedAt,
			UpdatedAt:    src.UpdatedAt,
		}
		return nil
	})
}

// AvailabilityTask logs how many pickup points are configured when the
// application starts
type AvailabilityTask struct {
	points *StorePickupPointService
	logger *zap.Logger
}

// NewAvailabilityTask creates the task
func NewAvailabilityTask(points *StorePickupPointService, logger *zap.Logger) *AvailabilityTask {
	return &AvailabilityTask{points: points, logger: logger}
}

func (t *AvailabilityTask) Order() int { return 100 }

func (t *AvailabilityTask) Execute(ctx context.Context) error {
	page, err := t.points.GetAll(ctx, uuid.Nil, 0, 1)
	if err != nil {
		t.logger.Warn("Pickup points are unavailable", zap.Error(err))
		return nil
	}
	if page.TotalCount == 0 {
		t.logger.Warn("Pickup in store is installed but no pickup point is configured")
		return nil
	}
	t.logger.Info("Pickup in store is available", zap.Int64("pickup_points", page.TotalCount))
	return nil
}

package pickupinstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/common"
	"github.com/storefront/backend/internal/domain/directory"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/plugin"
	"github.com/storefront/backend/internal/domain/shipping"
	"github.com/storefront/backend/internal/domain/stores"
)

// SystemName identifies the plugin
const SystemName = "Pickup.PickupInStore"

const (
	resourcePrefix    = "Plugins.Pickup.PickupInStore."
	noPickupPointsKey = resourcePrefix + "NoPickupPoints"
	configurePath     = "Admin/PickupInStore/Configure"
)

// Addresses stores the addresses of pickup points.
// *directory.AddressService implements it.
type Addresses interface {
	GetAddressByID(ctx context.Context, id uuid.UUID) (*common.Address, error)
	InsertAddress(ctx context.Context, address *common.Address) error
	DeleteAddress(ctx context.Context, address *common.Address) error
}

// Countries finds the country and state of the sample pickup point
type Countries interface {
	GetCountryByThreeLetterIsoCode(ctx context.Context, code string) (*directory.Country, error)
	GetStateProvinceByAbbreviation(ctx context.Context, abbreviation string, countryID *uuid.UUID) (*directory.StateProvince, error)
}

// LocaleResources reads and maintains the plugin's locale resources
type LocaleResources interface {
	GetResource(ctx context.Context, name string) string
	AddOrUpdatePluginLocaleResource(ctx context.Context, resources map[string]string, languageID *uuid.UUID) error
	DeletePluginLocaleResources(ctx context.Context, names []string) error
}

// Provider offers the store's own pickup points
type Provider struct {
	plugin.BasePlugin
	db           *gorm.DB
	points       *StorePickupPointService
	addresses    Addresses
	countries    Countries
	resources    LocaleResources
	storeContext stores.StoreContext
	logger       *zap.Logger
}

var _ shipping.PickupPointProvider = (*Provider)(nil)

// NewProvider creates the provider
func NewProvider(
	db *gorm.DB,
	points *StorePickupPointService,
	addresses Addresses,
	countries Countries,
	resources LocaleResources,
	storeContext stores.StoreContext,
	logger *zap.Logger,
) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		BasePlugin: plugin.BasePlugin{PluginDescriptor: plugin.Descriptor{
			SystemName:   SystemName,
			FriendlyName: "Pickup in store",
			Group:        "Pickup point providers",
			Version:      "1.00",
			Author:       "Storefront team",
			Description:  "Lets customers collect orders from the store's pickup points",
			DisplayOrder: 1,
		}},
		db:           db,
		points:       points,
		addresses:    addresses,
		countries:    countries,
		resources:    resources,
		storeContext: storeContext,
		logger:       logger.Named("pickupinstore"),
	}
}

// ConfigurationPageURL returns the admin page for pickup points
func (p *Provider) ConfigurationPageURL(storeLocation string) string {
	if !strings.HasSuffix(storeLocation, "/") {
		storeLocation += "/"
	}
	return storeLocation + configurePath
}

// ShipmentTracker returns nil: collected orders are not tracked
func (p *Provider) ShipmentTracker() shipping.ShipmentTracker {
	return nil
}

// GetPickupPoints returns the pickup points of the current store. The
// customer's address does not narrow the result.
func (p *Provider) GetPickupPoints(ctx context.Context, _ *common.Address) (*shipping.GetPickupPointsResponse, error) {
	store, err := p.storeContext.CurrentStore(ctx)
	if err != nil {
		return nil, err
	}

	page, err := p.points.GetAll(ctx, store.ID, 0, 0)
	if err != nil {
		return nil, err
	}

	result := shipping.NewGetPickupPointsResponse()
	for _, point := range page.Items {
		address, err := p.addresses.GetAddressByID(ctx, point.AddressID)
		if errors.Is(err, shared.ErrNotFound) {
			p.logger.Debug("Skipping pickup point without address", zap.String("point_id", point.ID.String()))
			continue
		}
		if err != nil {
			return nil, err
		}
		result.PickupPoints = append(result.PickupPoints, p.toPickupPoint(point, address))
	}

	if len(result.PickupPoints) == 0 {
		result.AddError(p.resources.GetResource(ctx, noPickupPointsKey))
	}
	return result, nil
}

func (p *Provider) toPickupPoint(point *StorePickupPoint, address *common.Address) shipping.PickupPoint {
	return shipping.PickupPoint{
		ID:                 point.ID.String(),
		Name:               point.Name,
		Description:        point.Description,
		ProviderSystemName: SystemName,
		Address:            address.Address1,
		City:               address.City,
		County:             address.County,
		StateAbbreviation:  address.StateAbbreviation(),
		CountryCode:        address.CountryTwoLetterCode(),
		ZipPostalCode:      address.ZipPostalCode,
		Latitude:           point.Latitude,
		Longitude:          point.Longitude,
		PickupFee:          point.PickupFee,
		OpeningHours:       point.OpeningHours,
		DisplayOrder:       point.DisplayOrder,
	}
}

// Install creates the plugin table, a sample pickup point and the locale resources
func (p *Provider) Install(ctx context.Context) error {
	if err := createTable(p.db.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to create pickup point table: %w", err)
	}

	if err := p.insertSamplePoint(ctx); err != nil {
		return err
	}

	return p.resources.AddOrUpdatePluginLocaleResource(ctx, localeResources, nil)
}

func (p *Provider) insertSamplePoint(ctx context.Context) error {
	address, err := common.NewAddress("21 West 52nd Street", "New York", "10021")
	if err != nil {
		return err
	}

	country, err := p.countries.GetCountryByThreeLetterIsoCode(ctx, "USA")
	switch {
	case err == nil:
		address.Country = country
		state, err := p.countries.GetStateProvinceByAbbreviation(ctx, "NY", &country.ID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		address.StateProvince = state
	case !errors.Is(err, shared.ErrNotFound):
		return err
	}

	if err := p.addresses.InsertAddress(ctx, address); err != nil {
		return fmt.Errorf("failed to insert pickup point address: %w", err)
	}

	point, err := NewStorePickupPoint("New York store", address.ID, decimal.RequireFromString("1.99"))
	if err != nil {
		return err
	}
	point.OpeningHours = "10.00 - 19.00"
	return p.points.Insert(ctx, point)
}

// Uninstall removes the pickup points, their addresses, the table and the
// locale resources
func (p *Provider) Uninstall(ctx context.Context) error {
	page, err := p.points.GetAll(ctx, uuid.Nil, 0, 0)
	if err != nil {
		return err
	}
	for _, point := range page.Items {
		address, err := p.addresses.GetAddressByID(ctx, point.AddressID)
		if errors.Is(err, shared.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if err := p.addresses.DeleteAddress(ctx, address); err != nil {
			return err
		}
	}

	if err := dropTable(p.db.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to drop pickup point table: %w", err)
	}
	if err := p.points.cache.RemoveByPattern(ctx, PickupPointsPatternKey); err != nil {
		return err
	}

	names := make([]string, 0, len(localeResources))
	for name := range localeResources {
		names = append(names, name)
	}
	return p.resources.DeletePluginLocaleResources(ctx, names)
}

var localeResources = map[string]string{
	resourcePrefix + "AddNew":                   "Add a new pickup point",
	resourcePrefix + "Fields.Description":       "Description",
	resourcePrefix + "Fields.Description.Hint":  "Specify a description of the pickup point.",
	resourcePrefix + "Fields.DisplayOrder":      "Display order",
	resourcePrefix + "Fields.DisplayOrder.Hint": "Specify the pickup point display order.",
	resourcePrefix + "Fields.Name":              "Name",
	resourcePrefix + "Fields.Name.Hint":         "Specify a name of the pickup point.",
	resourcePrefix + "Fields.OpeningHours":      "Opening hours",
	resourcePrefix + "Fields.OpeningHours.Hint": "Specify opening hours of the pickup point (Monday - Friday: 09:00 - 19:00 for example).",
	resourcePrefix + "Fields.PickupFee":         "Pickup fee",
	resourcePrefix + "Fields.PickupFee.Hint":    "Specify a fee for the shipping to the pickup point.",
	resourcePrefix + "Fields.Store":             "Store",
	resourcePrefix + "Fields.Store.Hint":        "A store for which this pickup point will be available.",
	noPickupPointsKey:                           "No pickup points are available",
}

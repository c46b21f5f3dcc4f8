package bootstrap

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/dig"
	"go.uber.org/zap"

	appdirectory "github.com/storefront/backend/internal/application/directory"
	applocalization "github.com/storefront/backend/internal/application/localization"
	appstores "github.com/storefront/backend/internal/application/stores"
	"github.com/storefront/backend/internal/domain/directory"
	"github.com/storefront/backend/internal/domain/localization"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/plugin"
	"github.com/storefront/backend/internal/domain/stores"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/persistence"
)

// InstallationTask creates the schema of an empty database and seeds the
// default store, language, currencies and countries. It then installs the
// plugins configured in plugins.install_on_setup.
type InstallationTask struct {
	db         *persistence.Database
	stores     *appstores.StoreService
	countries  *appdirectory.CountryService
	currencies *appdirectory.CurrencyService
	languages  *applocalization.LocalizationService
	plugins    *plugin.PluginManager
	cfg        *config.Config
	logger     *zap.Logger
}

type installationParams struct {
	dig.In

	DB         *persistence.Database
	Stores     *appstores.StoreService
	Countries  *appdirectory.CountryService
	Currencies *appdirectory.CurrencyService
	Languages  *applocalization.LocalizationService
	Plugins    *plugin.PluginManager
	Config     *config.Config
	Logger     *zap.Logger
}

// NewInstallationTask creates the task from the container
func NewInstallationTask(p installationParams) *InstallationTask {
	return &InstallationTask{
		db:         p.DB,
		stores:     p.Stores,
		countries:  p.Countries,
		currencies: p.Currencies,
		languages:  p.Languages,
		plugins:    p.Plugins,
		cfg:        p.Config,
		logger:     p.Logger.Named("installation"),
	}
}

func (t *InstallationTask) Order() int { return 0 }

// Execute installs the database. A database that already has a store is
// left alone.
func (t *InstallationTask) Execute(ctx context.Context) error {
	if err := t.db.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	existing, err := t.stores.GetAllStores(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		t.logger.Debug("Database already installed", zap.Int("stores", len(existing)))
		return nil
	}

	t.logger.Info("Installing default data")
	if err := t.seed(ctx); err != nil {
		return fmt.Errorf("failed to seed default data: %w", err)
	}
	return t.installPlugins(ctx)
}

func (t *InstallationTask) seed(ctx context.Context) error {
	english := &localization.Language{
		BaseEntity:      shared.NewBaseEntity(),
		Name:            "English",
		LanguageCulture: "en-US",
		UniqueSeoCode:   "en",
		Published:       true,
		DisplayOrder:    1,
	}
	if err := t.languages.InsertLanguage(ctx, english); err != nil {
		return err
	}

	for i, c := range []struct {
		name, code, rate string
	}{
		{"US Dollar", "USD", "1"},
		{"Euro", "EUR", "0.92"},
	} {
		currency := &directory.Currency{
			BaseEntity:   shared.NewBaseEntity(),
			Name:         c.name,
			CurrencyCode: c.code,
			Rate:         decimal.RequireFromString(c.rate),
			Published:    true,
			DisplayOrder: i + 1,
		}
		if err := t.currencies.InsertCurrency(ctx, currency); err != nil {
			return err
		}
	}

	usa := &directory.Country{
		BaseEntity:         shared.NewBaseEntity(),
		Name:               "United States",
		TwoLetterIsoCode:   "US",
		ThreeLetterIsoCode: "USA",
		NumericIsoCode:     840,
		AllowsBilling:      true,
		AllowsShipping:     true,
		Published:          true,
		DisplayOrder:       1,
	}
	if err := t.countries.InsertCountry(ctx, usa); err != nil {
		return err
	}
	for i, s := range []struct{ name, abbreviation string }{
		{"California", "CA"},
		{"New York", "NY"},
		{"Texas", "TX"},
	} {
		state := &directory.StateProvince{
			BaseEntity:   shared.NewBaseEntity(),
			CountryID:    usa.ID,
			Name:         s.name,
			Abbreviation: s.abbreviation,
			Published:    true,
			DisplayOrder: i + 1,
		}
		if err := t.countries.InsertStateProvince(ctx, state); err != nil {
			return err
		}
	}

	store := &stores.Store{
		BaseEntity:        shared.NewBaseEntity(),
		Name:              "Your store name",
		URL:               fmt.Sprintf("http://localhost:%s/", t.cfg.App.Port),
		Hosts:             "localhost,127.0.0.1",
		DefaultCurrency:   t.cfg.Plugins.PrimaryCurrencyCode,
		DefaultLanguageID: &english.ID,
		DisplayOrder:      1,
		CompanyName:       "Your company name",
	}
	return t.stores.InsertStore(ctx, store)
}

func (t *InstallationTask) installPlugins(ctx context.Context) error {
	for _, name := range t.cfg.Plugins.InstallOnSetup {
		if _, ok := t.plugins.GetPlugin(name); !ok {
			t.logger.Warn("Plugin to install is not registered", zap.String("plugin", name))
			continue
		}
		if t.plugins.IsInstalled(name) {
			continue
		}
		if err := t.plugins.Install(ctx, name); err != nil {
			return fmt.Errorf("failed to install plugin '%s': %w", name, err)
		}
		t.logger.Info("Plugin installed", zap.String("plugin", name))
	}
	return nil
}

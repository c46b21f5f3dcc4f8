package localization

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/storefront/backend/internal/domain/customers"
	"github.com/storefront/backend/internal/domain/localization"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/testutil"
)

// fixedLanguage is a WorkContext stub that only answers WorkingLanguage
type fixedLanguage struct {
	customers.WorkContext
	tag language.Tag
}

func (f fixedLanguage) WorkingLanguage(context.Context) language.Tag { return f.tag }

func newTestLocalizationService(t *testing.T, tag language.Tag) (*LocalizationService, *cache.MemoryCache) {
	t.Helper()
	db := testutil.NewTestDatabase(t)
	mc := cache.NewMemoryCache()
	svc := NewLocalizationService(
		persistence.NewLanguageRepository(db.DB),
		persistence.NewLocaleStringResourceRepository(db.DB),
		mc,
		fixedLanguage{tag: tag},
		nil,
	)
	return svc, mc
}

func insertLanguage(t *testing.T, s *LocalizationService, name, culture, seo string, order int) *localization.Language {
	t.Helper()
	l := &localization.Language{
		BaseEntity:      shared.NewBaseEntity(),
		Name:            name,
		LanguageCulture: culture,
		UniqueSeoCode:   seo,
		Published:       true,
		DisplayOrder:    order,
	}
	require.NoError(t, s.InsertLanguage(context.Background(), l))
	return l
}

func TestLocalizationService_GetLanguageByTag(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestLocalizationService(t, language.Und)
	en := insertLanguage(t, svc, "English", "en-US", "en", 1)
	de := insertLanguage(t, svc, "German", "de-DE", "de", 2)

	got, err := svc.GetLanguageByTag(ctx, language.MustParse("de-DE"))
	require.NoError(t, err)
	assert.Equal(t, de.ID, got.ID)

	got, err = svc.GetLanguageByTag(ctx, language.MustParse("de-AT"))
	require.NoError(t, err)
	assert.Equal(t, de.ID, got.ID, "base language match")

	got, err = svc.GetLanguageByTag(ctx, language.MustParse("fr-FR"))
	require.NoError(t, err)
	assert.Equal(t, en.ID, got.ID, "first published language")
}

func TestLocalizationService_GetResource(t *testing.T) {
	ctx := context.Background()
	svc, mc := newTestLocalizationService(t, language.MustParse("de-DE"))
	en := insertLanguage(t, svc, "English", "en-US", "en", 1)
	de := insertLanguage(t, svc, "German", "de-DE", "de", 2)

	require.NoError(t, svc.AddOrUpdatePluginLocaleResource(ctx, map[string]string{"Shop.Welcome": "Welcome"}, &en.ID))
	require.NoError(t, svc.AddOrUpdatePluginLocaleResource(ctx, map[string]string{"Shop.Welcome": "Willkommen"}, &de.ID))

	assert.Equal(t, "Willkommen", svc.GetResource(ctx, "shop.welcome"))
	assert.Equal(t, "Welcome", svc.GetResourceForLanguage(ctx, "Shop.Welcome", en.ID))
	assert.Equal(t, "Shop.Missing", svc.GetResource(ctx, "Shop.Missing"))
	assert.Contains(t, mc.Keys(), "storefront.lsr.all-"+de.ID.String())

	require.NoError(t, svc.AddOrUpdatePluginLocaleResource(ctx, map[string]string{"shop.welcome": "Hallo"}, &de.ID))
	assert.NotContains(t, mc.Keys(), "storefront.lsr.all-"+de.ID.String())
	assert.Equal(t, "Hallo", svc.GetResource(ctx, "Shop.Welcome"))
}

func TestLocalizationService_PluginResources(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestLocalizationService(t, language.AmericanEnglish)
	en := insertLanguage(t, svc, "English", "en-US", "en", 1)
	de := insertLanguage(t, svc, "German", "de-DE", "de", 2)

	resources := map[string]string{
		"Plugins.Test.Name":  "Name",
		"Plugins.Test.Title": "Title",
	}
	require.NoError(t, svc.AddOrUpdatePluginLocaleResource(ctx, resources, nil))
	assert.Equal(t, "Name", svc.GetResourceForLanguage(ctx, "Plugins.Test.Name", en.ID))
	assert.Equal(t, "Title", svc.GetResourceForLanguage(ctx, "Plugins.Test.Title", de.ID))

	require.NoError(t, svc.DeletePluginLocaleResources(ctx, []string{"plugins.test.name", "Plugins.Test.Title"}))
	assert.Equal(t, "Plugins.Test.Name", svc.GetResourceForLanguage(ctx, "Plugins.Test.Name", en.ID))
	assert.Equal(t, "Plugins.Test.Title", svc.GetResourceForLanguage(ctx, "Plugins.Test.Title", de.ID))

	assert.NoError(t, svc.AddOrUpdatePluginLocaleResource(ctx, nil, nil))
	assert.NoError(t, svc.DeletePluginLocaleResources(ctx, nil))
}

func TestLocalizationService_NoLanguages(t *testing.T) {
	svc, _ := newTestLocalizationService(t, language.AmericanEnglish)
	assert.Equal(t, "Any.Resource", svc.GetResource(context.Background(), "Any.Resource"))

	_, err := svc.WorkingLanguage(context.Background())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

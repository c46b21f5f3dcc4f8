package localization

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/customers"
	"github.com/storefront/backend/internal/domain/localization"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/persistence"
)

// Cache keys
const (
	LanguagesPatternKey       = "storefront.language."
	languagesAllKey           = "storefront.language.all"
	LocaleResourcesPatternKey = "storefront.lsr."
	localeResourcesAllKey     = "storefront.lsr.all-%s"
)

// LocalizationService reads languages and translated string resources
type LocalizationService struct {
	languages shared.Repository[localization.Language]
	resources shared.Repository[localization.LocaleStringResource]
	cache     cache.Manager
	work      customers.WorkContext
	logger    *zap.Logger
}

// NewLocalizationService creates a new LocalizationService.
// work supplies the working language and may be nil outside requests.
func NewLocalizationService(
	languages shared.Repository[localization.Language],
	resources shared.Repository[localization.LocaleStringResource],
	cacheManager cache.Manager,
	work customers.WorkContext,
	logger *zap.Logger,
) *LocalizationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalizationService{
		languages: languages,
		resources: resources,
		cache:     cacheManager,
		work:      work,
		logger:    logger,
	}
}

// GetAllLanguages returns the languages in display order
func (s *LocalizationService) GetAllLanguages(ctx context.Context, showHidden bool) ([]*localization.Language, error) {
	all, err := cache.GetOrAcquireDefault(ctx, s.cache, languagesAllKey, func(ctx context.Context) ([]*localization.Language, error) {
		return s.languages.Find(ctx, func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order, name")
		})
	})
	if err != nil || showHidden {
		return all, err
	}

	published := make([]*localization.Language, 0, len(all))
	for _, l := range all {
		if l.Published {
			published = append(published, l)
		}
	}
	return published, nil
}

// InsertLanguage stores a language
func (s *LocalizationService) InsertLanguage(ctx context.Context, lang *localization.Language) error {
	if err := s.languages.Insert(ctx, lang); err != nil {
		return err
	}
	return s.cache.RemoveByPattern(ctx, LanguagesPatternKey)
}

// GetLanguageByTag returns the published language whose culture matches tag,
// then one with the same base language, then the first published language.
func (s *LocalizationService) GetLanguageByTag(ctx context.Context, tag language.Tag) (*localization.Language, error) {
	all, err := s.GetAllLanguages(ctx, false)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("%w: no published language", shared.ErrNotFound)
	}

	for _, l := range all {
		if strings.EqualFold(l.LanguageCulture, tag.String()) {
			return l, nil
		}
	}
	base, _ := tag.Base()
	for _, l := range all {
		if strings.EqualFold(l.UniqueSeoCode, base.String()) {
			return l, nil
		}
	}
	return all[0], nil
}

// WorkingLanguage returns the language of the current request
func (s *LocalizationService) WorkingLanguage(ctx context.Context) (*localization.Language, error) {
	tag := language.Und
	if s.work != nil {
		tag = s.work.WorkingLanguage(ctx)
	}
	return s.GetLanguageByTag(ctx, tag)
}

// GetResource returns the translation of name in the working language.
// A missing resource yields name itself.
func (s *LocalizationService) GetResource(ctx context.Context, name string) string {
	lang, err := s.WorkingLanguage(ctx)
	if err != nil {
		s.logger.Debug("No working language, returning resource name", zap.String("resource", name), zap.Error(err))
		return name
	}
	return s.GetResourceForLanguage(ctx, name, lang.ID)
}

// GetResourceForLanguage returns the translation of name in languageID
func (s *LocalizationService) GetResourceForLanguage(ctx context.Context, name string, languageID uuid.UUID) string {
	resources, err := s.resourceMap(ctx, languageID)
	if err != nil {
		s.logger.Warn("Failed to load locale resources", zap.String("language_id", languageID.String()), zap.Error(err))
		return name
	}
	if value, ok := resources[strings.ToLower(strings.TrimSpace(name))]; ok {
		return value
	}
	return name
}

func (s *LocalizationService) resourceMap(ctx context.Context, languageID uuid.UUID) (map[string]string, error) {
	key := fmt.Sprintf(localeResourcesAllKey, languageID)
	return cache.GetOrAcquireDefault(ctx, s.cache, key, func(ctx context.Context) (map[string]string, error) {
		rows, err := s.resources.Find(ctx, func(db *gorm.DB) *gorm.DB {
			return db.Where("language_id = @language", persistence.GUIDParameter("language", &languageID))
		})
		if err != nil {
			return nil, err
		}
		out := make(map[string]string, len(rows))
		for _, r := range rows {
			out[strings.ToLower(r.ResourceName)] = r.ResourceValue
		}
		return out, nil
	})
}

// AddOrUpdatePluginLocaleResource writes resources for one language, or for
// every language when languageID is nil
func (s *LocalizationService) AddOrUpdatePluginLocaleResource(ctx context.Context, resources map[string]string, languageID *uuid.UUID) error {
	if len(resources) == 0 {
		return nil
	}

	langs, err := s.GetAllLanguages(ctx, true)
	if err != nil {
		return err
	}

	for _, lang := range langs {
		if languageID != nil && lang.ID != *languageID {
			continue
		}
		if err := s.upsertResources(ctx, lang.ID, resources); err != nil {
			return err
		}
	}
	return s.cache.RemoveByPattern(ctx, LocaleResourcesPatternKey)
}

func (s *LocalizationService) upsertResources(ctx context.Context, languageID uuid.UUID, resources map[string]string) error {
	existing, err := s.resources.Find(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("language_id = @language", persistence.GUIDParameter("language", &languageID))
	})
	if err != nil {
		return err
	}
	byName := make(map[string]*localization.LocaleStringResource, len(existing))
	for _, r := range existing {
		byName[strings.ToLower(r.ResourceName)] = r
	}

	var inserts, updates []*localization.LocaleStringResource
	for name, value := range resources {
		if r, ok := byName[strings.ToLower(name)]; ok {
			if r.ResourceValue != value {
				r.ResourceValue = value
				r.Touch()
				updates = append(updates, r)
			}
			continue
		}
		inserts = append(inserts, &localization.LocaleStringResource{
			BaseEntity:    shared.NewBaseEntity(),
			LanguageID:    languageID,
			ResourceName:  name,
			ResourceValue: value,
		})
	}

	if len(inserts) > 0 {
		if err := s.resources.InsertMany(ctx, inserts); err != nil {
			return fmt.Errorf("failed to insert locale resources: %w", err)
		}
	}
	if len(updates) > 0 {
		if err := s.resources.UpdateMany(ctx, updates); err != nil {
			return fmt.Errorf("failed to update locale resources: %w", err)
		}
	}
	return nil
}

// DeletePluginLocaleResources removes the named resources in every language
func (s *LocalizationService) DeletePluginLocaleResources(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}
	lowered := make([]string, len(names))
	for i, n := range names {
		lowered[i] = strings.ToLower(n)
	}

	rows, err := s.resources.Find(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("LOWER(resource_name) IN ?", lowered)
	})
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		if err := s.resources.DeleteMany(ctx, rows); err != nil {
			return fmt.Errorf("failed to delete locale resources: %w", err)
		}
	}
	return s.cache.RemoveByPattern(ctx, LocaleResourcesPatternKey)
}

package directory

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/directory"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/cache"
)

// Cache keys
const (
	CountriesPatternKey          = "storefront.country."
	countryByIDKey               = "storefront.country.byid-%s"
	countryByTwoLetterCodeKey    = "storefront.country.bytwoletter-%s"
	countryByThreeLetterCodeKey  = "storefront.country.bythreeletter-%s"
	StateProvincesPatternKey     = "storefront.stateprovince."
	stateProvinceByIDKey         = "storefront.stateprovince.byid-%s"
	stateProvinceByAbbrKey       = "storefront.stateprovince.byabbr-%s-%s"
	stateProvincesByCountryIDKey = "storefront.stateprovince.bycountry-%s"
)

// CountryService reads countries and their states
type CountryService struct {
	countries shared.Repository[directory.Country]
	states    shared.Repository[directory.StateProvince]
	cache     cache.Manager
}

// NewCountryService creates a new CountryService
func NewCountryService(
	countries shared.Repository[directory.Country],
	states shared.Repository[directory.StateProvince],
	cacheManager cache.Manager,
) *CountryService {
	return &CountryService{
		countries: countries,
		states:    states,
		cache:     cacheManager,
	}
}

// GetCountryByID returns a country
func (s *CountryService) GetCountryByID(ctx context.Context, id uuid.UUID) (*directory.Country, error) {
	return cache.GetOrAcquireDefault(ctx, s.cache, fmt.Sprintf(countryByIDKey, id), func(ctx context.Context) (*directory.Country, error) {
		return s.countries.GetByID(ctx, id)
	})
}

// GetCountryByTwoLetterIsoCode returns the country with the ISO 3166 alpha-2 code
func (s *CountryService) GetCountryByTwoLetterIsoCode(ctx context.Context, code string) (*directory.Country, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, shared.ErrNotFound
	}
	return cache.GetOrAcquireDefault(ctx, s.cache, fmt.Sprintf(countryByTwoLetterCodeKey, code), func(ctx context.Context) (*directory.Country, error) {
		return s.countries.First(ctx, func(db *gorm.DB) *gorm.DB {
			return db.Where("UPPER(two_letter_iso_code) = ?", code)
		})
	})
}

// GetCountryByThreeLetterIsoCode returns the country with the ISO 3166 alpha-3 code
func (s *CountryService) GetCountryByThreeLetterIsoCode(ctx context.Context, code string) (*directory.Country, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, shared.ErrNotFound
	}
	return cache.GetOrAcquireDefault(ctx, s.cache, fmt.Sprintf(countryByThreeLetterCodeKey, code), func(ctx context.Context) (*directory.Country, error) {
		return s.countries.First(ctx, func(db *gorm.DB) *gorm.DB {
			return db.Where("UPPER(three_letter_iso_code) = ?", code)
		})
	})
}

// InsertCountry stores a country
func (s *CountryService) InsertCountry(ctx context.Context, country *directory.Country) error {
	if err := s.countries.Insert(ctx, country); err != nil {
		return err
	}
	return s.cache.RemoveByPattern(ctx, CountriesPatternKey)
}

// GetStateProvinceByID returns a state or province
func (s *CountryService) GetStateProvinceByID(ctx context.Context, id uuid.UUID) (*directory.StateProvince, error) {
	return cache.GetOrAcquireDefault(ctx, s.cache, fmt.Sprintf(stateProvinceByIDKey, id), func(ctx context.Context) (*directory.StateProvince, error) {
		return s.states.GetByID(ctx, id)
	})
}

// GetStateProvinceByAbbreviation returns the state with the abbreviation.
// A nil countryID matches any country.
func (s *CountryService) GetStateProvinceByAbbreviation(ctx context.Context, abbreviation string, countryID *uuid.UUID) (*directory.StateProvince, error) {
	abbreviation = strings.TrimSpace(abbreviation)
	if abbreviation == "" {
		return nil, shared.ErrNotFound
	}

	country := "any"
	if countryID != nil {
		country = countryID.String()
	}
	key := fmt.Sprintf(stateProvinceByAbbrKey, strings.ToLower(abbreviation), country)

	return cache.GetOrAcquireDefault(ctx, s.cache, key, func(ctx context.Context) (*directory.StateProvince, error) {
		return s.states.First(ctx, func(db *gorm.DB) *gorm.DB {
			db = db.Where("LOWER(abbreviation) = ?", strings.ToLower(abbreviation))
			if countryID != nil {
				db = db.Where("country_id = ?", *countryID)
			}
			return db.Order("display_order, name")
		})
	})
}

// GetStateProvincesByCountryID returns the published states of a country in display order
func (s *CountryService) GetStateProvincesByCountryID(ctx context.Context, countryID uuid.UUID) ([]*directory.StateProvince, error) {
	return cache.GetOrAcquireDefault(ctx, s.cache, fmt.Sprintf(stateProvincesByCountryIDKey, countryID), func(ctx context.Context) ([]*directory.StateProvince, error) {
		return s.states.Find(ctx, func(db *gorm.DB) *gorm.DB {
			return db.Where("country_id = ? AND published = ?", countryID, true).Order("display_order, name")
		})
	})
}

// InsertStateProvince stores a state or province
func (s *CountryService) InsertStateProvince(ctx context.Context, state *directory.StateProvince) error {
	if err := s.states.Insert(ctx, state); err != nil {
		return err
	}
	return s.cache.RemoveByPattern(ctx, StateProvincesPatternKey)
}

package directory

import (
	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/shared"
)

// Country is a country that addresses can refer to.
type Country struct {
	shared.BaseEntity
	Name               string
	TwoLetterIsoCode   string
	ThreeLetterIsoCode string
	NumericIsoCode     int
	AllowsBilling      bool
	AllowsShipping     bool
	Published          bool
	DisplayOrder       int
}

// StateProvince is a first-level subdivision of a country.
type StateProvince struct {
	shared.BaseEntity
	CountryID    uuid.UUID
	Name         string
	Abbreviation string
	Published    bool
	DisplayOrder int
}

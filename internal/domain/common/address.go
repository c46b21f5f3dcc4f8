package common

import (
	"strings"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/directory"
	"github.com/storefront/backend/internal/domain/shared"
)

// Address is a postal address shared by customers, stores and pickup points.
type Address struct {
	shared.BaseEntity
	FirstName       string
	LastName        string
	Email           string
	Company         string
	CountryID       *uuid.UUID
	StateProvinceID *uuid.UUID
	County          string
	City            string
	Address1        string
	Address2        string
	ZipPostalCode   string
	PhoneNumber     string

	// Loaded on read when the references are set.
	Country       *directory.Country
	StateProvince *directory.StateProvince
}

// NewAddress creates an address with a fresh identity.
func NewAddress(address1, city, zip string) (*Address, error) {
	if strings.TrimSpace(address1) == "" && strings.TrimSpace(city) == "" {
		return nil, shared.NewDomainError("INVALID_ADDRESS", "Address line or city is required")
	}
	return &Address{
		BaseEntity:    shared.NewBaseEntity(),
		Address1:      address1,
		City:          city,
		ZipPostalCode: zip,
	}, nil
}

// StateAbbreviation returns the state code or an empty string.
func (a *Address) StateAbbreviation() string {
	if a.StateProvince == nil {
		return ""
	}
	return a.StateProvince.Abbreviation
}

// CountryTwoLetterCode returns the ISO 3166 alpha-2 code or an empty string.
func (a *Address) CountryTwoLetterCode() string {
	if a.Country == nil {
		return ""
	}
	return a.Country.TwoLetterIsoCode
}

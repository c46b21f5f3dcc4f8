package handler

import (
	"context"
	"errors"
	"strings"

	"github.com/storefront/backend/internal/domain/common"
	"github.com/storefront/backend/internal/domain/shared"
)

// AddressInput is a postal address given by the client
type AddressInput struct {
	CountryCode       string `json:"country_code" form:"country" binding:"omitempty,min=2,max=3"`
	StateAbbreviation string `json:"state" form:"state" binding:"omitempty,max=100"`
	County            string `json:"county" form:"county" binding:"omitempty,max=100"`
	City              string `json:"city" form:"city" binding:"omitempty,max=100"`
	Address1          string `json:"address1" form:"address1" binding:"omitempty,max=400"`
	ZipPostalCode     string `json:"zip_postal_code" form:"zip" binding:"omitempty,max=20"`
}

// IsEmpty reports whether no field is set
func (in AddressInput) IsEmpty() bool {
	return strings.TrimSpace(in.CountryCode+in.StateAbbreviation+in.County+in.City+in.Address1+in.ZipPostalCode) == ""
}

// ResolveAddress builds an address with its country and state loaded.
// Unknown countries or states leave the reference unset.
func ResolveAddress(ctx context.Context, countries CountryReader, in AddressInput) (*common.Address, error) {
	address := &common.Address{
		BaseEntity:    shared.NewBaseEntity(),
		County:        in.County,
		City:          in.City,
		Address1:      in.Address1,
		ZipPostalCode: in.ZipPostalCode,
	}
	if countries == nil {
		return address, nil
	}

	country, err := findCountry(ctx, countries, in.CountryCode)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if country != nil {
		address.Country = country
		address.CountryID = &country.ID
	}

	if in.StateAbbreviation == "" {
		return address, nil
	}
	state, err := countries.GetStateProvinceByAbbreviation(ctx, in.StateAbbreviation, address.CountryID)
	if errors.Is(err, shared.ErrNotFound) {
		return address, nil
	}
	if err != nil {
		return nil, err
	}
	address.StateProvince = state
	address.StateProvinceID = &state.ID
	return address, nil
}

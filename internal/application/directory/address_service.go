package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/common"
	"github.com/storefront/backend/internal/domain/shared"
)

// AddressService handles address operations
type AddressService struct {
	addresses shared.Repository[common.Address]
	countries *CountryService
}

// NewAddressService creates a new AddressService
func NewAddressService(addresses shared.Repository[common.Address], countries *CountryService) *AddressService {
	return &AddressService{
		addresses: addresses,
		countries: countries,
	}
}

// GetAddressByID loads an address together with its country and state
func (s *AddressService) GetAddressByID(ctx context.Context, id uuid.UUID) (*common.Address, error) {
	if id == uuid.Nil {
		return nil, shared.ErrNotFound
	}

	address, err := s.addresses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if address.CountryID != nil {
		country, err := s.countries.GetCountryByID(ctx, *address.CountryID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		address.Country = country
	}
	if address.StateProvinceID != nil {
		state, err := s.countries.GetStateProvinceByID(ctx, *address.StateProvinceID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		address.StateProvince = state
	}

	return address, nil
}

// InsertAddress stores a new address
func (s *AddressService) InsertAddress(ctx context.Context, address *common.Address) error {
	if address == nil {
		return fmt.Errorf("%w: address is required", shared.ErrInvalidInput)
	}
	if address.Country != nil && address.CountryID == nil {
		id := address.Country.ID
		address.CountryID = &id
	}
	if address.StateProvince != nil && address.StateProvinceID == nil {
		id := address.StateProvince.ID
		address.StateProvinceID = &id
	}
	return s.addresses.Insert(ctx, address)
}

// DeleteAddress removes an address
func (s *AddressService) DeleteAddress(ctx context.Context, address *common.Address) error {
	if address == nil {
		return fmt.Errorf("%w: address is required", shared.ErrInvalidInput)
	}
	return s.addresses.Delete(ctx, address)
}

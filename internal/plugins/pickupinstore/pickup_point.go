// Package pickupinstore lets customers collect orders from the store's own
// pickup points.
package pickupinstore

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/shared"
)

// StorePickupPoint is a place a customer can collect an order from.
// A nil StoreID makes the point available in every store.
type StorePickupPoint struct {
	shared.BaseEntity
	StoreID      *uuid.UUID
	AddressID    uuid.UUID
	Name         string
	Description  string
	OpeningHours string
	PickupFee    decimal.Decimal
	DisplayOrder int
	Latitude     *decimal.Decimal
	Longitude    *decimal.Decimal
}

// NewStorePickupPoint creates a point at the given address
func NewStorePickupPoint(name string, addressID uuid.UUID, fee decimal.Decimal) (*StorePickupPoint, error) {
	p := &StorePickupPoint{
		BaseEntity: shared.NewBaseEntity(),
		AddressID:  addressID,
		Name:       strings.TrimSpace(name),
		PickupFee:  fee,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the invariants of a point
func (p *StorePickupPoint) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return shared.NewDomainError("INVALID_PICKUP_POINT", "Pickup point name is required")
	}
	if p.AddressID == uuid.Nil {
		return shared.NewDomainError("INVALID_PICKUP_POINT", "Pickup point address is required")
	}
	if p.PickupFee.IsNegative() {
		return shared.NewDomainError("INVALID_PICKUP_POINT", "Pickup fee cannot be negative")
	}
	return nil
}

// AvailableIn reports whether the point is offered in the store
func (p *StorePickupPoint) AvailableIn(storeID uuid.UUID) bool {
	return p.StoreID == nil || storeID == uuid.Nil || *p.StoreID == storeID
}

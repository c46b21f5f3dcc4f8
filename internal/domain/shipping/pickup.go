package shipping

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/common"
	"github.com/storefront/backend/internal/domain/shared/plugin"
)

// PickupPoint is a place where a customer can collect an order.
type PickupPoint struct {
	ID                 string           `json:"id"`
	Name               string           `json:"name"`
	Description        string           `json:"description"`
	ProviderSystemName string           `json:"provider_system_name"`
	Address            string           `json:"address"`
	City               string           `json:"city"`
	County             string           `json:"county"`
	StateAbbreviation  string           `json:"state_abbreviation"`
	CountryCode        string           `json:"country_code"`
	ZipPostalCode      string           `json:"zip_postal_code"`
	Latitude           *decimal.Decimal `json:"latitude,omitempty"`
	Longitude          *decimal.Decimal `json:"longitude,omitempty"`
	PickupFee          decimal.Decimal  `json:"pickup_fee"`
	OpeningHours       string           `json:"opening_hours"`
	DisplayOrder       int              `json:"display_order"`
}

// GetPickupPointsResponse carries the points found or the reasons none were.
type GetPickupPointsResponse struct {
	PickupPoints []PickupPoint `json:"pickup_points"`
	Errors       []string      `json:"errors"`
}

// NewGetPickupPointsResponse returns an empty, successful response.
func NewGetPickupPointsResponse() *GetPickupPointsResponse {
	return &GetPickupPointsResponse{
		PickupPoints: []PickupPoint{},
		Errors:       []string{},
	}
}

// Success reports whether no errors were added.
func (r *GetPickupPointsResponse) Success() bool {
	return len(r.Errors) == 0
}

// AddError records an error message.
func (r *GetPickupPointsResponse) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// ShipmentTracker looks up shipment progress by tracking number.
type ShipmentTracker interface {
	URL(trackingNumber string) string
	IsMatch(trackingNumber string) bool
}

// PickupPointProvider is a plugin that offers pickup points.
type PickupPointProvider interface {
	plugin.Plugin
	// ShipmentTracker may return nil when the provider cannot track shipments.
	ShipmentTracker() ShipmentTracker
	GetPickupPoints(ctx context.Context, address *common.Address) (*GetPickupPointsResponse, error)
}

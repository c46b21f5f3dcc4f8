package shipping

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/common"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/plugin"
	"github.com/storefront/backend/internal/domain/shipping"
)

// ShippingService aggregates the installed pickup point providers
type ShippingService struct {
	plugins *plugin.PluginManager
	logger  *zap.Logger
}

// NewShippingService creates a new ShippingService
func NewShippingService(plugins *plugin.PluginManager, logger *zap.Logger) *ShippingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShippingService{plugins: plugins, logger: logger}
}

// LoadActivePickupPointProviders returns the installed providers, or only
// the named one when providerSystemName is set
func (s *ShippingService) LoadActivePickupPointProviders(providerSystemName string) []shipping.PickupPointProvider {
	return plugin.InstalledOfType[shipping.PickupPointProvider](s.plugins, providerSystemName)
}

// GetPickupPoints collects pickup points near address from every installed
// provider. Provider errors are reported in the response rather than
// returned, so one failing provider does not hide the others.
func (s *ShippingService) GetPickupPoints(ctx context.Context, address *common.Address, providerSystemName string) (*shipping.GetPickupPointsResponse, error) {
	providers := s.LoadActivePickupPointProviders(providerSystemName)
	if len(providers) == 0 {
		if providerSystemName != "" {
			return nil, fmt.Errorf("%w: pickup point provider '%s' is not installed", shared.ErrNotFound, providerSystemName)
		}
		return nil, fmt.Errorf("%w: no pickup point provider is installed", shared.ErrNotFound)
	}

	result := shipping.NewGetPickupPointsResponse()
	for _, provider := range providers {
		name := provider.Descriptor().SystemName
		resp, err := provider.GetPickupPoints(ctx, address)
		if err != nil {
			s.logger.Warn("Pickup point provider failed", zap.String("provider", name), zap.Error(err))
			result.AddError(err.Error())
			continue
		}
		result.PickupPoints = append(result.PickupPoints, resp.PickupPoints...)
		result.Errors = append(result.Errors, resp.Errors...)
	}

	sort.SliceStable(result.PickupPoints, func(i, j int) bool {
		return result.PickupPoints[i].DisplayOrder < result.PickupPoints[j].DisplayOrder
	})
	return result, nil
}

package tax

import (
	"context"
	"fmt"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/plugin"
	"github.com/storefront/backend/internal/domain/tax"
)

// TaxService computes tax rates with the configured tax provider
type TaxService struct {
	plugins        *plugin.PluginManager
	activeProvider string
}

// NewTaxService creates a new TaxService
func NewTaxService(plugins *plugin.PluginManager, activeProvider string) *TaxService {
	return &TaxService{plugins: plugins, activeProvider: activeProvider}
}

// LoadActiveTaxProvider returns the configured provider if it is installed
func (s *TaxService) LoadActiveTaxProvider() (tax.Provider, error) {
	if s.activeProvider == "" || s.plugins == nil {
		return nil, fmt.Errorf("%w: no active tax provider", shared.ErrNotFound)
	}
	providers := plugin.InstalledOfType[tax.Provider](s.plugins, s.activeProvider)
	if len(providers) == 0 {
		return nil, fmt.Errorf("%w: tax provider '%s' is not installed", shared.ErrNotFound, s.activeProvider)
	}
	return providers[0], nil
}

// GetTaxRate asks the active provider for the rate that applies to req
func (s *TaxService) GetTaxRate(ctx context.Context, req tax.CalculateTaxRequest) (*tax.CalculateTaxResult, error) {
	provider, err := s.LoadActiveTaxProvider()
	if err != nil {
		return nil, err
	}
	result, err := provider.GetTaxRate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("tax provider '%s' failed: %w", provider.Descriptor().SystemName, err)
	}
	return result, nil
}

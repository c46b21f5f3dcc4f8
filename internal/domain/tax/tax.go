package tax

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/common"
	"github.com/storefront/backend/internal/domain/shared/plugin"
)

// DisplayType controls whether prices are shown with or without tax.
type DisplayType int

const (
	IncludingTax DisplayType = iota
	ExcludingTax
)

// String returns the display type name
func (d DisplayType) String() string {
	if d == ExcludingTax {
		return "excluding_tax"
	}
	return "including_tax"
}

// ParseDisplayType maps a configuration value to a DisplayType.
// Unknown values fall back to IncludingTax.
func ParseDisplayType(s string) DisplayType {
	if s == "excluding_tax" {
		return ExcludingTax
	}
	return IncludingTax
}

// CalculateTaxRequest is the input of a tax rate lookup.
type CalculateTaxRequest struct {
	CustomerID    uuid.UUID
	TaxCategoryID uuid.UUID
	Price         decimal.Decimal
	Address       *common.Address
}

// CalculateTaxResult is the outcome of a tax rate lookup.
type CalculateTaxResult struct {
	TaxRate decimal.Decimal `json:"tax_rate"`
	Errors  []string        `json:"errors"`
}

// Success reports whether no errors were added.
func (r *CalculateTaxResult) Success() bool {
	return len(r.Errors) == 0
}

// AddError records an error message.
func (r *CalculateTaxResult) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// Provider is a plugin that computes tax rates.
type Provider interface {
	plugin.Plugin
	GetTaxRate(ctx context.Context, req CalculateTaxRequest) (*CalculateTaxResult, error)
}

package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/customers"
	"github.com/storefront/backend/internal/domain/tax"
	"github.com/storefront/backend/internal/interfaces/http/router"
)

// TaxRateCalculator computes tax rates with the active provider
type TaxRateCalculator interface {
	GetTaxRate(ctx context.Context, req tax.CalculateTaxRequest) (*tax.CalculateTaxResult, error)
}

// TaxHandler serves tax rate lookups
type TaxHandler struct {
	BaseHandler
	tax       TaxRateCalculator
	countries CountryReader
	work      customers.WorkContext
}

// NewTaxHandler creates a new TaxHandler
func NewTaxHandler(calculator TaxRateCalculator, countries CountryReader, work customers.WorkContext) *TaxHandler {
	return &TaxHandler{tax: calculator, countries: countries, work: work}
}

// Routes returns the tax route group
func (h *TaxHandler) Routes() *router.DomainGroup {
	return router.NewDomainGroup("tax", "/tax").
		POST("/rate", h.GetTaxRate)
}

// TaxRateRequest is the input of a tax rate lookup
type TaxRateRequest struct {
	TaxCategoryID string          `json:"tax_category_id" binding:"omitempty,uuid"`
	Price         decimal.Decimal `json:"price"`
	Address       AddressInput    `json:"address"`
}

// TaxRateResponse is the rate and the display type prices use
type TaxRateResponse struct {
	TaxRate        decimal.Decimal `json:"tax_rate"`
	TaxDisplayType string          `json:"tax_display_type"`
	Errors         []string        `json:"errors"`
}

// GetTaxRate returns the tax rate for the current customer at an address
func (h *TaxHandler) GetTaxRate(c *gin.Context) {
	var req TaxRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	ctx := c.Request.Context()

	calc := tax.CalculateTaxRequest{
		Price:      req.Price,
		CustomerID: h.work.CurrentCustomer(ctx).ID,
	}
	if req.TaxCategoryID != "" {
		// validated by the uuid binding
		calc.TaxCategoryID = uuid.MustParse(req.TaxCategoryID)
	}
	if !req.Address.IsEmpty() {
		address, err := ResolveAddress(ctx, h.countries, req.Address)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		calc.Address = address
	}

	result, err := h.tax.GetTaxRate(ctx, calc)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	errs := result.Errors
	if errs == nil {
		errs = []string{}
	}
	h.Success(c, TaxRateResponse{
		TaxRate:        result.TaxRate,
		TaxDisplayType: h.work.TaxDisplayType(ctx).String(),
		Errors:         errs,
	})
}

package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/directory"
	"github.com/storefront/backend/internal/interfaces/http/router"
)

// CurrencyReader is the part of the currency service the handlers use
type CurrencyReader interface {
	GetAllCurrencies(ctx context.Context, showHidden bool) ([]*directory.Currency, error)
	GetLiveRates(ctx context.Context, exchangeRateCurrencyCode string) ([]directory.ExchangeRate, error)
}

// CountryReader looks up countries and their states
type CountryReader interface {
	GetCountryByTwoLetterIsoCode(ctx context.Context, code string) (*directory.Country, error)
	GetCountryByThreeLetterIsoCode(ctx context.Context, code string) (*directory.Country, error)
	GetStateProvinceByAbbreviation(ctx context.Context, abbreviation string, countryID *uuid.UUID) (*directory.StateProvince, error)
	GetStateProvincesByCountryID(ctx context.Context, countryID uuid.UUID) ([]*directory.StateProvince, error)
}

// DirectoryHandler serves currencies, live rates, countries and states
type DirectoryHandler struct {
	BaseHandler
	currencies CurrencyReader
	countries  CountryReader
}

// NewDirectoryHandler creates a new DirectoryHandler
func NewDirectoryHandler(currencies CurrencyReader, countries CountryReader) *DirectoryHandler {
	return &DirectoryHandler{currencies: currencies, countries: countries}
}

// Routes returns the directory route group
func (h *DirectoryHandler) Routes() *router.DomainGroup {
	g := router.NewDomainGroup("directory", "")
	g.Group("currencies", "/currencies").
		GET("", h.ListCurrencies).
		GET("/:code/live-rates", h.GetLiveRates)
	g.Group("countries", "/countries").
		GET("/:code", h.GetCountry).
		GET("/:code/states", h.ListStates)
	return g
}

// CurrencyResponse represents a published currency
type CurrencyResponse struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	CurrencyCode string          `json:"currency_code"`
	Rate         decimal.Decimal `json:"rate"`
	DisplayOrder int             `json:"display_order"`
}

// CountryResponse represents a country
type CountryResponse struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	TwoLetterIsoCode   string    `json:"two_letter_iso_code"`
	ThreeLetterIsoCode string    `json:"three_letter_iso_code"`
	AllowsBilling      bool      `json:"allows_billing"`
	AllowsShipping     bool      `json:"allows_shipping"`
}

// StateProvinceResponse represents a state or province
type StateProvinceResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Abbreviation string    `json:"abbreviation"`
}

// ListCurrencies returns the published currencies in display order
func (h *DirectoryHandler) ListCurrencies(c *gin.Context) {
	currencies, err := h.currencies.GetAllCurrencies(c.Request.Context(), false)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]CurrencyResponse, 0, len(currencies))
	for _, cur := range currencies {
		out = append(out, CurrencyResponse{
			ID:           cur.ID,
			Name:         cur.Name,
			CurrencyCode: cur.CurrencyCode,
			Rate:         cur.Rate,
			DisplayOrder: cur.DisplayOrder,
		})
	}
	h.Success(c, out)
}

// GetLiveRates returns the live rates relative to :code from the active
// exchange rate provider
func (h *DirectoryHandler) GetLiveRates(c *gin.Context) {
	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))
	if len(code) != 3 {
		h.BadRequest(c, "Currency code must have three letters")
		return
	}

	rates, err := h.currencies.GetLiveRates(c.Request.Context(), code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if rates == nil {
		rates = []directory.ExchangeRate{}
	}
	h.Success(c, rates)
}

// GetCountry returns a country by its two or three letter ISO code
func (h *DirectoryHandler) GetCountry(c *gin.Context) {
	country, ok := h.lookupCountry(c)
	if !ok {
		return
	}
	h.Success(c, CountryResponse{
		ID:                 country.ID,
		Name:               country.Name,
		TwoLetterIsoCode:   country.TwoLetterIsoCode,
		ThreeLetterIsoCode: country.ThreeLetterIsoCode,
		AllowsBilling:      country.AllowsBilling,
		AllowsShipping:     country.AllowsShipping,
	})
}

// ListStates returns the published states of a country
func (h *DirectoryHandler) ListStates(c *gin.Context) {
	country, ok := h.lookupCountry(c)
	if !ok {
		return
	}

	states, err := h.countries.GetStateProvincesByCountryID(c.Request.Context(), country.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]StateProvinceResponse, 0, len(states))
	for _, s := range states {
		out = append(out, StateProvinceResponse{ID: s.ID, Name: s.Name, Abbreviation: s.Abbreviation})
	}
	h.Success(c, out)
}

func (h *DirectoryHandler) lookupCountry(c *gin.Context) (*directory.Country, bool) {
	country, err := findCountry(c.Request.Context(), h.countries, c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return nil, false
	}
	if country == nil {
		h.BadRequest(c, "Country code must have two or three letters")
		return nil, false
	}
	return country, true
}

// findCountry resolves a two or three letter ISO code. It returns nil and
// no error when code has neither length.
func findCountry(ctx context.Context, countries CountryReader, code string) (*directory.Country, error) {
	code = strings.TrimSpace(code)
	switch len(code) {
	case 2:
		return countries.GetCountryByTwoLetterIsoCode(ctx, code)
	case 3:
		return countries.GetCountryByThreeLetterIsoCode(ctx, code)
	default:
		return nil, nil
	}
}

package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/customers"
	"github.com/storefront/backend/internal/domain/stores"
	"github.com/storefront/backend/internal/interfaces/http/router"
)

// StoreHandler exposes the current store and the request's working context
type StoreHandler struct {
	BaseHandler
	stores stores.StoreContext
	work   customers.WorkContext
}

// NewStoreHandler creates a new StoreHandler
func NewStoreHandler(storeContext stores.StoreContext, work customers.WorkContext) *StoreHandler {
	return &StoreHandler{stores: storeContext, work: work}
}

// Routes returns the store route group
func (h *StoreHandler) Routes() *router.DomainGroup {
	return router.NewDomainGroup("store", "").
		GET("/store", h.GetCurrentStore).
		GET("/work-context", h.GetWorkContext)
}

// StoreResponse represents the current store
type StoreResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	URL             string    `json:"url"`
	SSLEnabled      bool      `json:"ssl_enabled"`
	Hosts           []string  `json:"hosts"`
	DefaultCurrency string    `json:"default_currency,omitempty"`
	CompanyName     string    `json:"company_name,omitempty"`
	DisplayOrder    int       `json:"display_order"`
}

// ToStoreResponse converts a store to its response DTO
func ToStoreResponse(s *stores.Store) StoreResponse {
	hosts := s.ParseHostValues()
	if hosts == nil {
		hosts = []string{}
	}
	return StoreResponse{
		ID:              s.ID,
		Name:            s.Name,
		URL:             s.URL,
		SSLEnabled:      s.SSLEnabled,
		Hosts:           hosts,
		DefaultCurrency: s.DefaultCurrency,
		CompanyName:     s.CompanyName,
		DisplayOrder:    s.DisplayOrder,
	}
}

// GetCurrentStore returns the store serving this request
func (h *StoreHandler) GetCurrentStore(c *gin.Context) {
	store, err := h.stores.CurrentStore(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ToStoreResponse(store))
}

// CustomerResponse is the customer a request runs as
type CustomerResponse struct {
	Username string `json:"username"`
	IsGuest  bool   `json:"is_guest"`
	IsAdmin  bool   `json:"is_admin"`
}

// WorkContextResponse represents the working state of the request
type WorkContextResponse struct {
	Customer       CustomerResponse `json:"customer"`
	Language       string           `json:"language"`
	CurrencyCode   string           `json:"currency_code"`
	TaxDisplayType string           `json:"tax_display_type"`
	IsAdmin        bool             `json:"is_admin"`
	// StoreScope is the store an administrator edits settings for
	StoreScope *uuid.UUID `json:"store_scope,omitempty"`
}

// GetWorkContext returns the customer, language, currency and tax display
// type the request is served with
func (h *StoreHandler) GetWorkContext(c *gin.Context) {
	ctx := c.Request.Context()

	currency, err := h.work.WorkingCurrency(ctx)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	customer := h.work.CurrentCustomer(ctx)
	resp := WorkContextResponse{
		Customer: CustomerResponse{
			Username: customer.Username,
			IsGuest:  customer.IsGuest,
			IsAdmin:  customer.IsAdmin,
		},
		Language:       h.work.WorkingLanguage(ctx).String(),
		CurrencyCode:   currency.CurrencyCode,
		TaxDisplayType: h.work.TaxDisplayType(ctx).String(),
		IsAdmin:        h.work.IsAdmin(ctx),
	}

	if resp.IsAdmin {
		scope, err := h.stores.ActiveStoreScopeConfiguration(ctx)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		if scope != uuid.Nil {
			resp.StoreScope = &scope
		}
	}

	h.Success(c, resp)
}

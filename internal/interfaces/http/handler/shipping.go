package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/storefront/backend/internal/domain/common"
	"github.com/storefront/backend/internal/domain/shipping"
	"github.com/storefront/backend/internal/interfaces/http/router"
)

// PickupPointLister collects pickup points from the installed providers
type PickupPointLister interface {
	GetPickupPoints(ctx context.Context, address *common.Address, providerSystemName string) (*shipping.GetPickupPointsResponse, error)
}

// ShippingHandler serves the public pickup point list
type ShippingHandler struct {
	BaseHandler
	shipping  PickupPointLister
	countries CountryReader
}

// NewShippingHandler creates a new ShippingHandler
func NewShippingHandler(lister PickupPointLister, countries CountryReader) *ShippingHandler {
	return &ShippingHandler{shipping: lister, countries: countries}
}

// Routes returns the shipping route group
func (h *ShippingHandler) Routes() *router.DomainGroup {
	return router.NewDomainGroup("shipping", "").
		GET("/pickup-points", h.GetPickupPoints)
}

// PickupPointsQuery selects the provider and the customer's address
type PickupPointsQuery struct {
	AddressInput
	Provider string `form:"provider" binding:"omitempty,max=200"`
}

// GetPickupPoints returns the pickup points of the current store. Provider
// failures are listed in the errors field next to the points that were found.
func (h *ShippingHandler) GetPickupPoints(c *gin.Context) {
	var q PickupPointsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.ValidationError(c, err)
		return
	}
	ctx := c.Request.Context()

	var address *common.Address
	if !q.AddressInput.IsEmpty() {
		resolved, err := ResolveAddress(ctx, h.countries, q.AddressInput)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		address = resolved
	}

	resp, err := h.shipping.GetPickupPoints(ctx, address, q.Provider)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

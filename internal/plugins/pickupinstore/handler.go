package pickupinstore

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/engine"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/router"
)

// InstallChecker reports whether a plugin is installed.
// *plugin.PluginManager implements it.
type InstallChecker interface {
	IsInstalled(name string) bool
}

// ConfigureHandler serves the admin pages of the plugin
type ConfigureHandler struct {
	handler.BaseHandler
	points    *StorePickupPointService
	addresses Addresses
	countries handler.CountryReader
	plugins   InstallChecker
	mapper    *engine.Mapper
	links     handler.PageLinker
	logger    *zap.Logger
}

// NewConfigureHandler creates a new ConfigureHandler
func NewConfigureHandler(
	points *StorePickupPointService,
	addresses Addresses,
	countries handler.CountryReader,
	plugins InstallChecker,
	mapper *engine.Mapper,
	links handler.PageLinker,
	logger *zap.Logger,
) *ConfigureHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConfigureHandler{
		points:    points,
		addresses: addresses,
		countries: countries,
		plugins:   plugins,
		mapper:    mapper,
		links:     links,
		logger:    logger,
	}
}

// Routes returns the admin route group
func (h *ConfigureHandler) Routes() *router.DomainGroup {
	return router.NewAdminGroup("pickupinstore", "/pickupinstore/configure").
		Use(h.requireInstalled).
		GET("", h.List).
		POST("", h.Create).
		PUT("/:id", h.Update).
		DELETE("/:id", h.Delete)
}

func (h *ConfigureHandler) requireInstalled(c *gin.Context) {
	if h.plugins != nil && !h.plugins.IsInstalled(SystemName) {
		h.NotFound(c, "Plugin '"+SystemName+"' is not installed")
		c.Abort()
		return
	}
	c.Next()
}

// PickupPointResponse is a pickup point as shown to administrators
type PickupPointResponse struct {
	ID           uuid.UUID        `json:"id"`
	StoreID      *uuid.UUID       `json:"store_id,omitempty"`
	AddressID    uuid.UUID        `json:"address_id"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	OpeningHours string           `json:"opening_hours"`
	PickupFee    decimal.Decimal  `json:"pickup_fee"`
	DisplayOrder int              `json:"display_order"`
	Latitude     *decimal.Decimal `json:"latitude,omitempty"`
	Longitude    *decimal.Decimal `json:"longitude,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// PickupPointRequest creates or edits a pickup point. The address is
// required on create and replaces the current one on update.
type PickupPointRequest struct {
	Name         string                `json:"name" binding:"required,max=400"`
	Description  string                `json:"description" binding:"omitempty,max=4000"`
	OpeningHours string                `json:"opening_hours" binding:"omitempty,max=400"`
	PickupFee    decimal.Decimal       `json:"pickup_fee" binding:"gte=0"`
	DisplayOrder int                   `json:"display_order" binding:"gte=0"`
	StoreID      *uuid.UUID            `json:"store_id"`
	Latitude     *decimal.Decimal      `json:"latitude"`
	Longitude    *decimal.Decimal      `json:"longitude"`
	Address      *handler.AddressInput `json:"address"`
}

// ListQuery pages the configure list
type ListQuery struct {
	dto.PageRequest
	StoreID string `form:"store_id" binding:"omitempty,uuid"`
}

// List returns a page of pickup points, optionally for one store
func (h *ConfigureHandler) List(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.ValidationError(c, err)
		return
	}
	storeID := uuid.Nil
	if q.StoreID != "" {
		storeID = uuid.MustParse(q.StoreID)
	}

	page, err := h.points.GetAll(c.Request.Context(), storeID, q.PageIndex, q.Size())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]PickupPointResponse, 0, len(page.Items))
	for _, p := range page.Items {
		resp, err := h.toResponse(p)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		items = append(items, resp)
	}
	handler.PagedWithLinks(c, h.links, page, items)
}

// Create adds a pickup point together with its address
func (h *ConfigureHandler) Create(c *gin.Context) {
	var req PickupPointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	if req.Address == nil || req.Address.IsEmpty() {
		h.BadRequest(c, "Pickup point address is required")
		return
	}
	ctx := c.Request.Context()

	address, err := handler.ResolveAddress(ctx, h.countries, *req.Address)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.addresses.InsertAddress(ctx, address); err != nil {
		h.HandleError(c, err)
		return
	}

	point := &StorePickupPoint{BaseEntity: shared.NewBaseEntity(), AddressID: address.ID}
	req.apply(point)
	if err := h.points.Insert(ctx, point); err != nil {
		h.HandleError(c, err)
		return
	}

	h.logger.Info("Pickup point created", zap.String("point_id", point.ID.String()), zap.String("name", point.Name))
	resp, err := h.toResponse(point)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Update edits a pickup point
func (h *ConfigureHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}
	var req PickupPointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	ctx := c.Request.Context()

	point, err := h.points.GetByID(ctx, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var previous uuid.UUID
	if req.Address != nil && !req.Address.IsEmpty() {
		address, err := handler.ResolveAddress(ctx, h.countries, *req.Address)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		if err := h.addresses.InsertAddress(ctx, address); err != nil {
			h.HandleError(c, err)
			return
		}
		previous, point.AddressID = point.AddressID, address.ID
	}

	req.apply(point)
	if err := h.points.Update(ctx, point); err != nil {
		h.HandleError(c, err)
		return
	}
	if previous != uuid.Nil {
		h.deleteAddress(c, previous)
	}

	resp, err := h.toResponse(point)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete removes a pickup point and its address
func (h *ConfigureHandler) Delete(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	point, err := h.points.GetByID(ctx, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.points.Delete(ctx, point); err != nil {
		h.HandleError(c, err)
		return
	}
	h.deleteAddress(c, point.AddressID)

	h.logger.Info("Pickup point deleted", zap.String("point_id", point.ID.String()))
	h.NoContent(c)
}

// deleteAddress removes an address no longer used by a point. Failures are
// logged since the point change already succeeded.
func (h *ConfigureHandler) deleteAddress(c *gin.Context, id uuid.UUID) {
	ctx := c.Request.Context()
	address, err := h.addresses.GetAddressByID(ctx, id)
	if err == nil {
		err = h.addresses.DeleteAddress(ctx, address)
	}
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		h.logger.Warn("Failed to delete pickup point address", zap.String("address_id", id.String()), zap.Error(err))
	}
}

func (h *ConfigureHandler) toResponse(p *StorePickupPoint) (PickupPointResponse, error) {
	var resp PickupPointResponse
	err := h.mapper.Map(p, &resp)
	return resp, err
}

func (r *PickupPointRequest) apply(p *StorePickupPoint) {
	p.Name = r.Name
	p.Description = r.Description
	p.OpeningHours = r.OpeningHours
	p.PickupFee = r.PickupFee
	p.DisplayOrder = r.DisplayOrder
	p.StoreID = r.StoreID
	p.Latitude = r.Latitude
	p.Longitude = r.Longitude
}

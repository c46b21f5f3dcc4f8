package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/storefront/backend/internal/domain/customers"
	"github.com/storefront/backend/internal/interfaces/http/router"
)

// ResourceReader returns translated strings for the working language
type ResourceReader interface {
	GetResource(ctx context.Context, name string) string
}

// LocalizationHandler serves locale string resources
type LocalizationHandler struct {
	BaseHandler
	resources ResourceReader
	work      customers.WorkContext
}

// NewLocalizationHandler creates a new LocalizationHandler
func NewLocalizationHandler(resources ResourceReader, work customers.WorkContext) *LocalizationHandler {
	return &LocalizationHandler{resources: resources, work: work}
}

// Routes returns the localization route group
func (h *LocalizationHandler) Routes() *router.DomainGroup {
	return router.NewDomainGroup("localization", "/resources").
		GET("/:name", h.GetResource)
}

// ResourceResponse is one translated string
type ResourceResponse struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Language string `json:"language"`
}

// GetResource returns the resource in the working language. Unknown names
// come back unchanged as the value.
func (h *LocalizationHandler) GetResource(c *gin.Context) {
	name := c.Param("name")
	ctx := c.Request.Context()
	h.Success(c, ResourceResponse{
		Name:     name,
		Value:    h.resources.GetResource(ctx, name),
		Language: h.work.WorkingLanguage(ctx).String(),
	})
}

package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/interfaces/http/router"
)

// Restarter asks the host process to restart. *webhelper.WebHelper implements it.
type Restarter interface {
	RestartAppDomain() error
}

// MaintenanceHandler handles the administrator cache and restart endpoints
type MaintenanceHandler struct {
	BaseHandler
	cache     cache.Manager
	restarter Restarter
	logger    *zap.Logger
}

// NewMaintenanceHandler creates a new MaintenanceHandler
func NewMaintenanceHandler(staticCache cache.Manager, restarter Restarter, logger *zap.Logger) *MaintenanceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MaintenanceHandler{cache: staticCache, restarter: restarter, logger: logger}
}

// Routes returns the admin maintenance routes
func (h *MaintenanceHandler) Routes() *router.DomainGroup {
	g := router.NewAdminGroup("maintenance", "")
	g.Group("cache", "/cache").
		POST("/clear", h.ClearCache).
		POST("/remove-by-pattern", h.RemoveByPattern)
	g.POST("/restart", h.Restart)
	return g
}

// RemoveByPatternRequest holds the key pattern to evict
type RemoveByPatternRequest struct {
	Pattern string `json:"pattern" binding:"required,max=500"`
}

// ClearCache removes every entry except the protected keys
func (h *MaintenanceHandler) ClearCache(c *gin.Context) {
	if err := h.cache.Clear(c.Request.Context()); err != nil {
		h.logger.Error("Failed to clear cache", zap.Error(err))
		h.InternalError(c, "Failed to clear cache")
		return
	}
	h.logger.Info("Cache cleared")
	h.Success(c, gin.H{"cleared": true})
}

// RemoveByPattern evicts the keys matching a pattern
func (h *MaintenanceHandler) RemoveByPattern(c *gin.Context) {
	var req RemoveByPatternRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	if err := h.cache.RemoveByPattern(c.Request.Context(), req.Pattern); err != nil {
		h.logger.Warn("Failed to remove cache entries", zap.String("pattern", req.Pattern), zap.Error(err))
		h.BadRequest(c, err.Error())
		return
	}
	h.Success(c, gin.H{"pattern": req.Pattern})
}

// Restart touches the restart marker
func (h *MaintenanceHandler) Restart(c *gin.Context) {
	if err := h.restarter.RestartAppDomain(); err != nil {
		h.logger.Error("Restart request failed", zap.Error(err))
		h.InternalError(c, err.Error())
		return
	}
	h.Success(c, gin.H{"restarting": true})
}

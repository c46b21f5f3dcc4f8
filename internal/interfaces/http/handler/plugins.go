package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/shared/plugin"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/interfaces/http/router"
)

// StoreLocator resolves the store root URL. *webhelper.WebHelper implements it.
type StoreLocator interface {
	GetStoreLocation(c *gin.Context, useSSL *bool) (string, error)
}

// PluginHandler lists, installs and uninstalls plugins
type PluginHandler struct {
	BaseHandler
	plugins *plugin.PluginManager
	locator StoreLocator
	cache   cache.Manager
	logger  *zap.Logger
}

// NewPluginHandler creates a new PluginHandler
func NewPluginHandler(plugins *plugin.PluginManager, locator StoreLocator, staticCache cache.Manager, logger *zap.Logger) *PluginHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PluginHandler{plugins: plugins, locator: locator, cache: staticCache, logger: logger}
}

// Routes returns the admin plugin routes
func (h *PluginHandler) Routes() *router.DomainGroup {
	return router.NewAdminGroup("plugins", "/plugins").
		GET("", h.List).
		POST("/:name/install", h.Install).
		POST("/:name/uninstall", h.Uninstall)
}

// PluginResponse is a plugin with its state and configuration page
type PluginResponse struct {
	plugin.Info
	ConfigurationURL string `json:"configuration_url,omitempty"`
}

// PluginStateResponse reports the result of an install or uninstall
type PluginStateResponse struct {
	SystemName      string `json:"system_name"`
	Installed       bool   `json:"installed"`
	RestartRequired bool   `json:"restart_required"`
}

// List returns every registered plugin ordered by display order
func (h *PluginHandler) List(c *gin.Context) {
	location, err := h.locator.GetStoreLocation(c, nil)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	infos := h.plugins.ListPlugins()
	out := make([]PluginResponse, 0, len(infos))
	for _, info := range infos {
		resp := PluginResponse{Info: info}
		if p, ok := h.plugins.GetPlugin(info.SystemName); ok && info.Installed {
			resp.ConfigurationURL = p.ConfigurationPageURL(location)
		}
		out = append(out, resp)
	}
	h.Success(c, out)
}

// Install runs the plugin's install hook. Components owned by the plugin
// start taking part after the next restart.
func (h *PluginHandler) Install(c *gin.Context) {
	h.changeState(c, true)
}

// Uninstall runs the plugin's uninstall hook
func (h *PluginHandler) Uninstall(c *gin.Context) {
	h.changeState(c, false)
}

func (h *PluginHandler) changeState(c *gin.Context, install bool) {
	name := c.Param("name")
	ctx := c.Request.Context()

	var err error
	if install {
		err = h.plugins.Install(ctx, name)
	} else {
		err = h.plugins.Uninstall(ctx, name)
	}
	if err != nil {
		h.logger.Warn("Plugin state change failed",
			zap.String("plugin", name),
			zap.Bool("install", install),
			zap.Error(err),
		)
		h.HandleError(c, err)
		return
	}

	if h.cache != nil {
		if err := h.cache.Clear(ctx); err != nil {
			h.logger.Warn("Failed to clear cache after plugin state change", zap.Error(err))
		}
	}

	h.logger.Info("Plugin state changed", zap.String("plugin", name), zap.Bool("installed", install))
	h.Success(c, PluginStateResponse{SystemName: name, Installed: install, RestartRequired: true})
}

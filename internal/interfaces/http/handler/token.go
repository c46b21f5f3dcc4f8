package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
)

// TokenHandler exchanges the administrator key for a token and revokes tokens
type TokenHandler struct {
	BaseHandler
	jwt       *auth.JWTService
	blacklist auth.TokenBlacklist
	limiter   *middleware.RateLimiter
	logger    *zap.Logger
}

// NewTokenHandler creates a new TokenHandler. A nil limiter disables rate limiting.
func NewTokenHandler(jwt *auth.JWTService, blacklist auth.TokenBlacklist, limiter *middleware.RateLimiter, logger *zap.Logger) *TokenHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenHandler{jwt: jwt, blacklist: blacklist, limiter: limiter, logger: logger}
}

// Routes returns the public token route. It lives outside the admin group
// since the caller has no token yet.
func (h *TokenHandler) Routes() *router.DomainGroup {
	issue := []gin.HandlerFunc{h.IssueToken}
	if h.limiter != nil {
		issue = append([]gin.HandlerFunc{middleware.RateLimit(h.limiter)}, issue...)
	}
	return router.NewDomainGroup("token", "/admin").POST("/token", issue...)
}

// AdminRoutes returns the token routes that need an administrator token
func (h *TokenHandler) AdminRoutes() *router.DomainGroup {
	return router.NewAdminGroup("token", "/token").POST("/revoke", h.RevokeToken)
}

// IssueTokenRequest carries the administrator key
type IssueTokenRequest struct {
	Username string `json:"username" binding:"required,max=100"`
	AdminKey string `json:"admin_key" binding:"required"`
}

// IssueToken returns a bearer token for a valid administrator key
func (h *TokenHandler) IssueToken(c *gin.Context) {
	var req IssueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	token, err := h.jwt.IssueAdminToken(req.Username, req.AdminKey)
	if err != nil {
		h.logger.Warn("Administrator token request rejected",
			zap.String("username", req.Username),
			zap.String("client_ip", c.ClientIP()),
			zap.Error(err),
		)
		h.HandleError(c, err)
		return
	}

	h.logger.Info("Administrator token issued", zap.String("username", req.Username))
	h.Success(c, token)
}

// RevokeTokenResponse confirms a revocation
type RevokeTokenResponse struct {
	Revoked bool `json:"revoked"`
}

// RevokeToken blacklists the token used for this request until it expires
func (h *TokenHandler) RevokeToken(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.blacklist.AddToBlacklist(c.Request.Context(), claims.ID, claims.GetRemainingTTL()); err != nil {
		h.logger.Error("Failed to revoke token", zap.String("jti", claims.ID), zap.Error(err))
		h.InternalError(c, "Failed to revoke token")
		return
	}

	h.Success(c, RevokeTokenResponse{Revoked: true})
}

package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
)

const testAdminKey = "s3cret-admin-key"

type testAPI struct {
	engine    *gin.Engine
	jwt       *auth.JWTService
	blacklist auth.TokenBlacklist
}

func newTestJWT() *auth.JWTService {
	return auth.NewJWTService(
		config.JWTConfig{Secret: "test-secret-with-enough-length", Expiration: time.Hour, Issuer: "storefront"},
		config.AdminConfig{Key: testAdminKey},
	)
}

// newTestAPI mounts the registrars the way the server does: public routes
// under /api/v1 and admin groups under /api/v1/admin behind AdminAuth.
func newTestAPI(t *testing.T, registrars ...router.RouteRegistrar) *testAPI {
	t.Helper()
	api := &testAPI{
		engine:    gin.New(),
		jwt:       newTestJWT(),
		blacklist: auth.NewCacheTokenBlacklist(cache.NewMemoryCache()),
	}
	jwtCfg := middleware.JWTMiddlewareConfig{JWTService: api.jwt, TokenBlacklist: api.blacklist}
	api.engine.Use(middleware.RequestID(), middleware.RequestContext(), middleware.OptionalAdminAuth(jwtCfg))
	router.NewRouter(api.engine, router.WithAdminMiddleware(middleware.AdminAuth(jwtCfg))).
		Register(registrars...).
		Setup()
	return api
}

func (a *testAPI) adminToken(t *testing.T) string {
	t.Helper()
	token, err := a.jwt.IssueAdminToken("admin", testAdminKey)
	require.NoError(t, err)
	return token.AccessToken
}

// do sends a request; body is JSON encoded unless nil
func (a *testAPI) do(t *testing.T, method, target string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(middleware.AuthHeaderKey, middleware.BearerPrefix+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

// dataOf decodes the data field of a success envelope into dest
func dataOf(t *testing.T, w *httptest.ResponseRecorder, dest any) {
	t.Helper()
	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.True(t, env.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, dest))
}

func errorCodeOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error, w.Body.String())
	return resp.Error.Code
}


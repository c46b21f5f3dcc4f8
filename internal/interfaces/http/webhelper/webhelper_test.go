package webhelper

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/stores"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/fileprovider"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubStores struct {
	store *stores.Store
	err   error
}

func (s stubStores) CurrentStore(context.Context) (*stores.Store, error) { return s.store, s.err }

func (s stubStores) ActiveStoreScopeConfiguration(context.Context) (uuid.UUID, error) {
	return uuid.Nil, nil
}

type stubInstalled bool

func (s stubInstalled) IsInstalled(context.Context) (bool, error) { return bool(s), nil }

func newContext(method, target string) (*gin.Context, *http.Request) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(method, target, nil)
	c.Request = req
	return c, req
}

func newHelper(t *testing.T, hosting config.HostingConfig, opts ...Option) *WebHelper {
	t.Helper()
	return New(hosting, fileprovider.NewLocalFileProvider(t.TempDir()), stubStores{}, opts...)
}

func TestGetCurrentIPAddress(t *testing.T) {
	tests := []struct {
		name    string
		hosting config.HostingConfig
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "remote address", remote: "10.1.2.3:5555", want: "10.1.2.3"},
		{name: "forwarded for first value", headers: map[string]string{XForwardedForHeader: "203.0.113.7, 10.0.0.1"}, remote: "10.0.0.1:1", want: "203.0.113.7"},
		{name: "custom header", hosting: config.HostingConfig{ForwardedHTTPHeader: "CF-Connecting-IP"},
			headers: map[string]string{"CF-Connecting-IP": "198.51.100.2", XForwardedForHeader: "1.1.1.1"}, remote: "10.0.0.1:1", want: "198.51.100.2"},
		{name: "ipv6 loopback", remote: "[::1]:8080", want: "127.0.0.1"},
		{name: "forwarded with port", headers: map[string]string{XForwardedForHeader: "203.0.113.7:4711"}, remote: "10.0.0.1:1", want: "203.0.113.7"},
		{name: "ipv6 normalised", headers: map[string]string{XForwardedForHeader: "2001:DB8::1"}, want: "2001:db8::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHelper(t, tt.hosting)
			c, req := newContext(http.MethodGet, "/")
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, h.GetCurrentIPAddress(c))
		})
	}

	assert.Empty(t, newHelper(t, config.HostingConfig{}).GetCurrentIPAddress(nil))
}

func TestIsCurrentConnectionSecured(t *testing.T) {
	c, req := newContext(http.MethodGet, "/")

	h := newHelper(t, config.HostingConfig{})
	assert.False(t, h.IsCurrentConnectionSecured(c))
	assert.Equal(t, "http", h.CurrentRequestProtocol(c))
	req.TLS = &tls.ConnectionState{}
	assert.True(t, h.IsCurrentConnectionSecured(c))
	assert.Equal(t, "https", h.CurrentRequestProtocol(c))

	req.TLS = nil
	h = newHelper(t, config.HostingConfig{UseHTTPClusterHTTPS: true})
	req.Header.Set(HTTPClusterHTTPSHeader, "ON")
	assert.True(t, h.IsCurrentConnectionSecured(c))

	h = newHelper(t, config.HostingConfig{UseHTTPXForwardedProto: true})
	assert.False(t, h.IsCurrentConnectionSecured(c))
	req.Header.Set(XForwardedProtoHeader, "https")
	assert.True(t, h.IsCurrentConnectionSecured(c))

	assert.False(t, h.IsCurrentConnectionSecured(nil))
}

func TestStoreLocation(t *testing.T) {
	h := newHelper(t, config.HostingConfig{})

	c, req := newContext(http.MethodGet, "/catalog/shoes?page=2&Sort=Name")
	req.Host = "shop.local:8080"

	assert.Equal(t, "http://shop.local:8080/", h.GetStoreHost(c, false))
	assert.Equal(t, "https://shop.local:8080/", h.GetStoreHost(c, true))

	location, err := h.GetStoreLocation(c, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://shop.local:8080/", location)

	req.Header.Set(XForwardedPrefixHeader, "store/")
	useSSL := true
	location, err = h.GetStoreLocation(c, &useSSL)
	require.NoError(t, err)
	assert.Equal(t, "https://shop.local:8080/store/", location)

	pageURL, err := h.GetThisPageURL(c, true, nil, false)
	require.NoError(t, err)
	assert.Equal(t, "http://shop.local:8080/store/catalog/shoes?page=2&Sort=Name", pageURL)

	pageURL, err = h.GetThisPageURL(c, false, nil, true)
	require.NoError(t, err)
	assert.Equal(t, "http://shop.local:8080/store/catalog/shoes", pageURL)

	req.Host = ""
	assert.Empty(t, h.GetStoreHost(c, false))
}

func TestGetStoreLocation_NoRequest(t *testing.T) {
	files := fileprovider.NewLocalFileProvider(t.TempDir())

	t.Run("not installed", func(t *testing.T) {
		h := New(config.HostingConfig{}, files, stubStores{})
		location, err := h.GetStoreLocation(nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "/", location)
	})

	t.Run("store url", func(t *testing.T) {
		h := New(config.HostingConfig{}, files, stubStores{store: &stores.Store{URL: "https://shop.example"}},
			WithInstallationChecker(stubInstalled(true)))
		location, err := h.GetStoreLocation(nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "https://shop.example/", location)
	})

	t.Run("store cannot be loaded", func(t *testing.T) {
		h := New(config.HostingConfig{}, files, stubStores{err: errors.New("db down")},
			WithInstallationChecker(stubInstalled(true)))
		_, err := h.GetStoreLocation(nil, nil)
		assert.ErrorIs(t, err, ErrStoreNotLoaded)

		h = New(config.HostingConfig{}, files, stubStores{store: &stores.Store{}},
			WithInstallationChecker(stubInstalled(true)))
		_, err = h.GetStoreLocation(nil, nil)
		assert.ErrorIs(t, err, ErrStoreNotLoaded)
	})
}

func TestRequestProperties(t *testing.T) {
	h := newHelper(t, config.HostingConfig{})

	c, req := newContext(http.MethodPost, "/images/logo.png?v=3")
	req.Header.Set("Referer", "http://shop.local/")
	req.Header.Set(XRequestedWithHeader, "XMLHttpRequest")

	assert.Equal(t, "http://shop.local/", h.GetURLReferrer(c))
	assert.True(t, h.IsAjaxRequest(c))
	assert.True(t, h.IsStaticResource(c))
	assert.Equal(t, "/images/logo.png?v=3", h.GetRawURL(c))

	req.RequestURI = ""
	req.Header.Set(XForwardedPrefixHeader, "/shop")
	assert.Equal(t, "/shop/images/logo.png?v=3", h.GetRawURL(c))

	assert.False(t, h.IsPostBeingDone(c))
	h.SetPostBeingDone(c, true)
	assert.True(t, h.IsPostBeingDone(c))

	page, _ := newContext(http.MethodGet, "/catalog/shoes")
	assert.False(t, h.IsStaticResource(page))

	assert.Empty(t, h.GetURLReferrer(nil))
	assert.False(t, h.IsAjaxRequest(nil))
	assert.False(t, h.IsPostBeingDone(nil))
	assert.Empty(t, h.GetRawURL(nil))
}

func TestIsRequestBeingRedirected(t *testing.T) {
	h := newHelper(t, config.HostingConfig{})

	c, _ := newContext(http.MethodGet, "/")
	c.Status(http.StatusOK)
	assert.False(t, h.IsRequestBeingRedirected(c))

	c.Status(http.StatusFound)
	assert.True(t, h.IsRequestBeingRedirected(c))
	c.Status(http.StatusMovedPermanently)
	assert.True(t, h.IsRequestBeingRedirected(c))
}

func TestIsLocalRequest(t *testing.T) {
	h := newHelper(t, config.HostingConfig{})

	tests := []struct {
		name   string
		remote string
		local  net.Addr
		want   bool
	}{
		{name: "no remote address", remote: "", want: true},
		{name: "ipv6 loopback counts as unset", remote: "[::1]:1234", want: true},
		{name: "loopback", remote: "127.0.0.1:1234", want: true},
		{name: "remote", remote: "203.0.113.9:1234", want: false},
		{name: "same as local", remote: "10.0.0.5:1234", local: &net.TCPAddr{IP: net.ParseIP("10.0.0.5"), Port: 80}, want: true},
		{name: "differs from local", remote: "10.0.0.6:1234", local: &net.TCPAddr{IP: net.ParseIP("10.0.0.5"), Port: 80}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, req := newContext(http.MethodGet, "/")
			req.RemoteAddr = tt.remote
			if tt.local != nil {
				c.Request = req.WithContext(context.WithValue(req.Context(), http.LocalAddrContextKey, tt.local))
			}
			assert.Equal(t, tt.want, h.IsLocalRequest(c))
		})
	}
}

func TestRestartAppDomain(t *testing.T) {
	files := fileprovider.NewLocalFileProvider(t.TempDir())
	h := New(config.HostingConfig{}, files, stubStores{})
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return fixed }

	require.NoError(t, h.RestartAppDomain())

	marker := files.MapPath(RestartMarkerPath)
	assert.True(t, files.FileExists(marker))
	modified, err := files.GetLastWriteTime(marker)
	require.NoError(t, err)
	assert.True(t, modified.Equal(fixed))
}

func TestQueryString(t *testing.T) {
	id := uuid.New()
	c, _ := newContext(http.MethodGet, "/?page=3&flag=true&name=shoes&bad=x&price=1.5&storeId="+id.String())

	assert.Equal(t, 3, QueryString[int](c, "page"))
	assert.True(t, QueryString[bool](c, "flag"))
	assert.Equal(t, "shoes", QueryString[string](c, "name"))
	assert.Equal(t, 1.5, QueryString[float64](c, "price"))
	assert.Equal(t, id, QueryString[uuid.UUID](c, "storeId"))
	assert.Equal(t, 0, QueryString[int](c, "bad"))
	assert.Equal(t, 0, QueryString[int](c, "missing"))
	assert.Equal(t, uuid.Nil, QueryString[uuid.UUID](c, "bad"))
	assert.Equal(t, 0, QueryString[int](nil, "page"))
}

// Package webhelper answers questions about the current HTTP request: client
// address, store location, page URLs and query string edits.
package webhelper

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/stores"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/fileprovider"
)

// Request headers and items the helper reads
const (
	XForwardedForHeader    = "X-Forwarded-For"
	XForwardedProtoHeader  = "X-Forwarded-Proto"
	XForwardedPrefixHeader = "X-Forwarded-Prefix"
	HTTPClusterHTTPSHeader = "HTTP_CLUSTER_HTTPS"
	XRequestedWithHeader   = "X-Requested-With"

	isPostBeingDoneItem = "storefront.IsPOSTBeingDone"
)

// RestartMarkerPath is touched to ask the process supervisor for a restart
const RestartMarkerPath = "~/App_Data/restart.txt"

// ErrStoreNotLoaded is returned when the store location cannot be resolved
var ErrStoreNotLoaded = errors.New("current store cannot be loaded")

// InstallationChecker reports whether the database schema exists.
// *persistence.Database implements it.
type InstallationChecker interface {
	IsInstalled(ctx context.Context) (bool, error)
}

// WebHelper resolves request-dependent URLs and addresses
type WebHelper struct {
	hosting   config.HostingConfig
	files     fileprovider.FileProvider
	stores    stores.StoreContext
	installed InstallationChecker
	logger    *zap.Logger
	now       func() time.Time
}

// Option configures a WebHelper
type Option func(*WebHelper)

// WithInstallationChecker lets GetStoreLocation fall back to the store URL
// when no request is available
func WithInstallationChecker(checker InstallationChecker) Option {
	return func(w *WebHelper) {
		w.installed = checker
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(w *WebHelper) {
		w.logger = logger
	}
}

// New creates a WebHelper
func New(hosting config.HostingConfig, files fileprovider.FileProvider, storeContext stores.StoreContext, opts ...Option) *WebHelper {
	w := &WebHelper{
		hosting: hosting,
		files:   files,
		stores:  storeContext,
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func requestAvailable(c *gin.Context) bool {
	return c != nil && c.Request != nil
}

// GetURLReferrer returns the Referer header
func (w *WebHelper) GetURLReferrer(c *gin.Context) string {
	if !requestAvailable(c) {
		return ""
	}
	return c.GetHeader("Referer")
}

// GetCurrentIPAddress returns the client address, preferring the forwarded
// header configured for the hosting environment
func (w *WebHelper) GetCurrentIPAddress(c *gin.Context) string {
	if !requestAvailable(c) {
		return ""
	}

	header := XForwardedForHeader
	if w.hosting.ForwardedHTTPHeader != "" {
		header = w.hosting.ForwardedHTTPHeader
	}

	result := ""
	if forwarded := c.GetHeader(header); forwarded != "" {
		result = strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	if result == "" {
		result = remoteHost(c.Request.RemoteAddr)
	}

	if strings.EqualFold(result, "::1") {
		result = "127.0.0.1"
	}
	if ip := net.ParseIP(result); ip != nil {
		return ip.String()
	}
	if result != "" {
		result = strings.Split(result, ":")[0]
	}
	return result
}

// remoteHost strips the port from a RemoteAddr
func remoteHost(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

// IsCurrentConnectionSecured reports whether the client connected over HTTPS,
// honouring load balancer headers when configured
func (w *WebHelper) IsCurrentConnectionSecured(c *gin.Context) bool {
	if !requestAvailable(c) {
		return false
	}
	if w.hosting.UseHTTPClusterHTTPS {
		return strings.EqualFold(c.GetHeader(HTTPClusterHTTPSHeader), "on")
	}
	if w.hosting.UseHTTPXForwardedProto {
		return strings.EqualFold(c.GetHeader(XForwardedProtoHeader), "https")
	}
	return c.Request.TLS != nil
}

// CurrentRequestProtocol returns "https" or "http"
func (w *WebHelper) CurrentRequestProtocol(c *gin.Context) string {
	if w.IsCurrentConnectionSecured(c) {
		return "https"
	}
	return "http"
}

// GetStoreHost returns scheme://host/ for the request, or "" without a Host
func (w *WebHelper) GetStoreHost(c *gin.Context, useSSL bool) string {
	if !requestAvailable(c) || c.Request.Host == "" {
		return ""
	}
	scheme := "http"
	if useSSL {
		scheme = "https"
	}
	return strings.TrimRight(scheme+"://"+c.Request.Host, "/") + "/"
}

// GetStoreLocation returns the store root URL ending with a slash. Without
// a request it uses the URL of the current store once the database is installed.
func (w *WebHelper) GetStoreLocation(c *gin.Context, useSSL *bool) (string, error) {
	secured := w.IsCurrentConnectionSecured(c)
	if useSSL != nil {
		secured = *useSSL
	}

	location := ""
	storeHost := w.GetStoreHost(c, secured)
	if storeHost != "" {
		location = strings.TrimRight(storeHost, "/") + pathBase(c)
	}

	if storeHost == "" && w.databaseInstalled(c) {
		store, err := w.stores.CurrentStore(requestContext(c))
		if err != nil || store == nil || store.URL == "" {
			if err != nil {
				w.logger.Warn("Failed to load current store", zap.Error(err))
			}
			return "", ErrStoreNotLoaded
		}
		location = store.URL
	}

	return strings.TrimRight(location, "/") + "/", nil
}

func (w *WebHelper) databaseInstalled(c *gin.Context) bool {
	if w.installed == nil || w.stores == nil {
		return false
	}
	ok, err := w.installed.IsInstalled(requestContext(c))
	if err != nil {
		w.logger.Warn("Failed to check database installation", zap.Error(err))
		return false
	}
	return ok
}

func requestContext(c *gin.Context) context.Context {
	if requestAvailable(c) {
		return c.Request.Context()
	}
	return context.Background()
}

// pathBase is the prefix a reverse proxy strips before forwarding
func pathBase(c *gin.Context) string {
	if !requestAvailable(c) {
		return ""
	}
	prefix := strings.TrimRight(c.GetHeader(XForwardedPrefixHeader), "/")
	if prefix != "" && !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return prefix
}

// GetThisPageURL returns the absolute URL of the current page
func (w *WebHelper) GetThisPageURL(c *gin.Context, includeQuery bool, useSSL *bool, lowercase bool) (string, error) {
	if !requestAvailable(c) {
		return "", nil
	}
	location, err := w.GetStoreLocation(c, useSSL)
	if err != nil {
		return "", err
	}

	pageURL := strings.TrimRight(location, "/") + c.Request.URL.Path
	if includeQuery && c.Request.URL.RawQuery != "" {
		pageURL += "?" + c.Request.URL.RawQuery
	}
	if lowercase {
		pageURL = strings.ToLower(pageURL)
	}
	return pageURL, nil
}

// IsStaticResource reports whether the path has a file extension with a
// known content type
func (w *WebHelper) IsStaticResource(c *gin.Context) bool {
	if !requestAvailable(c) {
		return false
	}
	ext := path.Ext(c.Request.URL.Path)
	return ext != "" && mime.TypeByExtension(ext) != ""
}

// RestartAppDomain touches the restart marker watched by the supervisor
func (w *WebHelper) RestartAppDomain() error {
	marker := w.files.MapPath(RestartMarkerPath)
	if err := w.files.CreateFile(marker); err != nil {
		return restartError(err)
	}
	if err := w.files.SetLastWriteTimeUtc(marker, w.now().UTC()); err != nil {
		return restartError(err)
	}
	w.logger.Info("Application restart requested", zap.String("marker", marker))
	return nil
}

func restartError(cause error) error {
	return fmt.Errorf("the application needs to be restarted due to a configuration change, but was unable to do so; "+
		"give the application write access to %s: %w", RestartMarkerPath, cause)
}

// IsRequestBeingRedirected reports whether the response is a 301 or 302
func (w *WebHelper) IsRequestBeingRedirected(c *gin.Context) bool {
	if !requestAvailable(c) {
		return false
	}
	status := c.Writer.Status()
	return status == http.StatusMovedPermanently || status == http.StatusFound
}

// IsPostBeingDone reports whether the request was marked as performing a POST
func (w *WebHelper) IsPostBeingDone(c *gin.Context) bool {
	if c == nil {
		return false
	}
	return c.GetBool(isPostBeingDoneItem)
}

// SetPostBeingDone marks the request as performing a POST
func (w *WebHelper) SetPostBeingDone(c *gin.Context, value bool) {
	if c != nil {
		c.Set(isPostBeingDoneItem, value)
	}
}

// TrackPost marks POST requests so later handlers can ask IsPostBeingDone
func (w *WebHelper) TrackPost() gin.HandlerFunc {
	return func(c *gin.Context) {
		w.SetPostBeingDone(c, c.Request.Method == http.MethodPost)
		c.Next()
	}
}

// IsLocalRequest reports whether the request comes from this machine
func (w *WebHelper) IsLocalRequest(c *gin.Context) bool {
	if !requestAvailable(c) {
		return false
	}
	remote := net.ParseIP(remoteHost(c.Request.RemoteAddr))
	if !ipSet(remote) {
		return true
	}

	var local net.IP
	if addr, ok := c.Request.Context().Value(http.LocalAddrContextKey).(net.Addr); ok {
		local = net.ParseIP(remoteHost(addr.String()))
	}
	if ipSet(local) {
		return remote.Equal(local)
	}
	return remote.IsLoopback()
}

func ipSet(ip net.IP) bool {
	return ip != nil && !ip.Equal(net.IPv6loopback)
}

// GetRawURL returns the request target as sent by the client
func (w *WebHelper) GetRawURL(c *gin.Context) string {
	if !requestAvailable(c) {
		return ""
	}
	if c.Request.RequestURI != "" {
		return c.Request.RequestURI
	}
	raw := pathBase(c) + c.Request.URL.Path
	if c.Request.URL.RawQuery != "" {
		raw += "?" + c.Request.URL.RawQuery
	}
	return raw
}

// IsAjaxRequest reports whether the request was sent by XMLHttpRequest
func (w *WebHelper) IsAjaxRequest(c *gin.Context) bool {
	if !requestAvailable(c) {
		return false
	}
	return c.GetHeader(XRequestedWithHeader) == "XMLHttpRequest"
}

// QueryString returns the query parameter name converted to T. Missing or
// unconvertible values give the zero value.
func QueryString[T any](c *gin.Context, name string) T {
	var zero T
	if !requestAvailable(c) {
		return zero
	}
	raw := c.Query(name)
	if raw == "" {
		return zero
	}

	var (
		out any
		err error
	)
	switch any(zero).(type) {
	case string:
		out = raw
	case bool:
		out, err = cast.ToBoolE(raw)
	case int:
		out, err = cast.ToIntE(raw)
	case int32:
		out, err = cast.ToInt32E(raw)
	case int64:
		out, err = cast.ToInt64E(raw)
	case uint:
		out, err = cast.ToUintE(raw)
	case float64:
		out, err = cast.ToFloat64E(raw)
	case time.Time:
		out, err = cast.ToTimeE(raw)
	case time.Duration:
		out, err = cast.ToDurationE(raw)
	case uuid.UUID:
		out, err = uuid.Parse(raw)
	default:
		return zero
	}
	if err != nil {
		return zero
	}
	v, _ := out.(T)
	return v
}

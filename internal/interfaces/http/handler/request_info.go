package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/storefront/backend/internal/interfaces/http/router"
	"github.com/storefront/backend/internal/interfaces/http/webhelper"
)

// RequestInfoHandler shows how the application sees the calling request.
// It helps checking the hosting settings behind proxies and load balancers.
type RequestInfoHandler struct {
	BaseHandler
	web *webhelper.WebHelper
}

func NewRequestInfoHandler(web *webhelper.WebHelper) *RequestInfoHandler {
	return &RequestInfoHandler{web: web}
}

// Routes returns the admin request info routes
func (h *RequestInfoHandler) Routes() *router.DomainGroup {
	return router.NewAdminGroup("requestinfo", "/request-info").
		GET("", h.Get).
		POST("", h.Get)
}

// RequestInfoResponse is the request as resolved by the web helper
type RequestInfoResponse struct {
	ClientIP       string `json:"client_ip"`
	Local          bool   `json:"local"`
	Secured        bool   `json:"secured"`
	Protocol       string `json:"protocol"`
	StoreHost      string `json:"store_host"`
	StoreLocation  string `json:"store_location"`
	ThisPageURL    string `json:"this_page_url"`
	RawURL         string `json:"raw_url"`
	Referrer       string `json:"referrer,omitempty"`
	Ajax           bool   `json:"ajax"`
	StaticResource bool   `json:"static_resource"`
	PostBeingDone  bool   `json:"post_being_done"`
	Redirected     bool   `json:"redirected"`
}

// Get describes the current request. ?lowercase=true lowercases the page URL.
func (h *RequestInfoHandler) Get(c *gin.Context) {
	location, err := h.web.GetStoreLocation(c, nil)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	pageURL, err := h.web.GetThisPageURL(c, true, nil, webhelper.QueryString[bool](c, "lowercase"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	secured := h.web.IsCurrentConnectionSecured(c)
	h.Success(c, RequestInfoResponse{
		ClientIP:       h.web.GetCurrentIPAddress(c),
		Local:          h.web.IsLocalRequest(c),
		Secured:        secured,
		Protocol:       h.web.CurrentRequestProtocol(c),
		StoreHost:      h.web.GetStoreHost(c, secured),
		StoreLocation:  location,
		ThisPageURL:    pageURL,
		RawURL:         h.web.GetRawURL(c),
		Referrer:       h.web.GetURLReferrer(c),
		Ajax:           h.web.IsAjaxRequest(c),
		StaticResource: h.web.IsStaticResource(c),
		PostBeingDone:  h.web.IsPostBeingDone(c),
		Redirected:     h.web.IsRequestBeingRedirected(c),
	})
}

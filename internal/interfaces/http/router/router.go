// Package router mounts route groups under /api/<version>, with
// administrator groups behind a guarded /admin sub-group.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RoutesGroup is the dig value group route registrars are provided to
const RoutesGroup = "routes"

type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// AdminRouteRegistrar is a registrar that can ask to be mounted under the
// admin group
type AdminRouteRegistrar interface {
	RouteRegistrar
	IsAdmin() bool
}

type Router struct {
	engine     *gin.Engine
	apiVersion string
	adminGuard []gin.HandlerFunc
	registrars []RouteRegistrar
}

type RouterOption func(*Router)

// WithAPIVersion changes the version segment, v1 by default
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) { r.apiVersion = version }
}

// WithAdminMiddleware adds handlers run before every admin route
func WithAdminMiddleware(middleware ...gin.HandlerFunc) RouterOption {
	return func(r *Router) { r.adminGuard = append(r.adminGuard, middleware...) }
}

func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register queues registrars for Setup
func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrars...)
	return r
}

// Setup mounts every queued registrar on the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	admin := api.Group("/admin", r.adminGuard...)

	for _, reg := range r.registrars {
		target := api
		if a, ok := reg.(AdminRouteRegistrar); ok && a.IsAdmin() {
			target = admin
		}
		reg.RegisterRoutes(target)
	}
}

// DomainGroup collects the routes of one area of the API. Nothing touches
// gin until RegisterRoutes, so groups can be built before the engine exists.
type DomainGroup struct {
	name       string
	prefix     string
	admin      bool
	middleware []gin.HandlerFunc
	mounts     []func(*gin.RouterGroup)
}

func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// NewAdminGroup creates a group mounted under the admin group
func NewAdminGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix, admin: true}
}

func (dg *DomainGroup) IsAdmin() bool {
	return dg.admin
}

// Use adds middleware run before every route of the group and its subgroups
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

func (dg *DomainGroup) GET(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.route(http.MethodGet, path, handlers)
}

func (dg *DomainGroup) POST(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.route(http.MethodPost, path, handlers)
}

func (dg *DomainGroup) PUT(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.route(http.MethodPut, path, handlers)
}

func (dg *DomainGroup) DELETE(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.route(http.MethodDelete, path, handlers)
}

func (dg *DomainGroup) route(method, path string, handlers []gin.HandlerFunc) *DomainGroup {
	dg.mounts = append(dg.mounts, func(g *gin.RouterGroup) {
		g.Handle(method, path, handlers...)
	})
	return dg
}

// Group returns a subgroup mounted below this group's prefix
func (dg *DomainGroup) Group(name, prefix string) *DomainGroup {
	sub := NewDomainGroup(dg.name+"."+name, prefix)
	dg.mounts = append(dg.mounts, sub.RegisterRoutes)
	return sub
}

func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group(dg.prefix, dg.middleware...)
	for _, mount := range dg.mounts {
		mount(g)
	}
}

func (dg *DomainGroup) String() string {
	if dg.admin {
		return "admin:" + dg.name
	}
	return dg.name
}

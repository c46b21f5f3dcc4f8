// Package webcontext carries the parts of the HTTP request that services
// need after the handler has handed them a plain context.Context.
package webcontext

import (
	"context"
	"net/url"
)

type requestKey struct{}

// Request describes the request being served
type Request struct {
	Host           string
	AcceptLanguage string
	Query          url.Values
	// Username is set for authenticated administrators
	Username string
	IsAdmin  bool
}

// With returns a context carrying r
func With(ctx context.Context, r *Request) context.Context {
	return context.WithValue(ctx, requestKey{}, r)
}

// From returns the request stored on ctx. Outside a request it returns an
// empty Request and false.
func From(ctx context.Context) (*Request, bool) {
	if ctx != nil {
		if r, ok := ctx.Value(requestKey{}).(*Request); ok && r != nil {
			return r, true
		}
	}
	return &Request{Query: url.Values{}}, false
}

// QueryValue returns the first value of the query parameter name
func (r *Request) QueryValue(name string) string {
	if r.Query == nil {
		return ""
	}
	return r.Query.Get(name)
}

// Package http provides the HTTP server, routing and request plumbing.
package http

import "net/http"

// Middleware wraps an http.Handler with cross-cutting behavior.
type Middleware func(http.Handler) http.Handler

// Router is the routing surface handlers register against. It hides the
// concrete mux so the transport can be swapped in tests.
type Router interface {
	http.Handler

	Use(mw ...Middleware)
	Group(fn func(Router))
	Route(pattern string, fn func(Router))

	Get(pattern string, h http.HandlerFunc)
	Post(pattern string, h http.HandlerFunc)
	Put(pattern string, h http.HandlerFunc)
	Patch(pattern string, h http.HandlerFunc)
	Delete(pattern string, h http.HandlerFunc)

	Handle(pattern string, h http.Handler)
}

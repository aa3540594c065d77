package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// chiRouter adapts chi.Router to the Router interface.
type chiRouter struct {
	mux chi.Router
}

// NewRouter creates a chi-backed Router.
func NewRouter() Router {
	return &chiRouter{mux: chi.NewRouter()}
}

func (r *chiRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *chiRouter) Use(mw ...Middleware) {
	for _, m := range mw {
		r.mux.Use(m)
	}
}

func (r *chiRouter) Group(fn func(Router)) {
	r.mux.Group(func(sub chi.Router) {
		fn(&chiRouter{mux: sub})
	})
}

func (r *chiRouter) Route(pattern string, fn func(Router)) {
	r.mux.Route(pattern, func(sub chi.Router) {
		fn(&chiRouter{mux: sub})
	})
}

func (r *chiRouter) Get(pattern string, h http.HandlerFunc)    { r.mux.Get(pattern, h) }
func (r *chiRouter) Post(pattern string, h http.HandlerFunc)   { r.mux.Post(pattern, h) }
func (r *chiRouter) Put(pattern string, h http.HandlerFunc)    { r.mux.Put(pattern, h) }
func (r *chiRouter) Patch(pattern string, h http.HandlerFunc)  { r.mux.Patch(pattern, h) }
func (r *chiRouter) Delete(pattern string, h http.HandlerFunc) { r.mux.Delete(pattern, h) }

func (r *chiRouter) Handle(pattern string, h http.Handler) { r.mux.Handle(pattern, h) }

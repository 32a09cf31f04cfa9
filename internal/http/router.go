// Package http assembles the chi router from the domain handlers.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registrar is implemented by every domain handler: it mounts its routes on
// the router, wrapping protected ones with requireAuth.
type Registrar interface {
	Register(r chi.Router, requireAuth func(http.Handler) http.Handler)
}

// Deps carries everything the router needs.
type Deps struct {
	Pool        *pgxpool.Pool
	Middlewares []func(http.Handler) http.Handler
	RequireAuth func(http.Handler) http.Handler
	Handlers    []Registrar
}

// New builds the full route tree: global middleware, the health and metrics
// endpoints, and the domain handlers.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(deps.Middlewares...)

	r.Get("/healthz", healthz(deps.Pool))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	for _, h := range deps.Handlers {
		h.Register(r, deps.RequireAuth)
	}
	return r
}

func healthz(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pool != nil {
			if err := pool.Ping(r.Context()); err != nil {
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/chaser/internal/syncservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *syncservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/status", h.Status)
	r.Get("/targets", h.Targets)
	r.Get("/targets/entries", h.Entries)
	r.Get("/ignore", h.CheckIgnore)
	r.Get("/history", h.History)

	r.Post("/sync", h.Sync)
	r.Post("/refresh", h.Refresh)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/notemeta/internal/noteservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced. events, when
// not nil, is served at /events.
func NewRouter(svc *noteservice.Service, authEnabled bool, token string, events http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Note metadata.
	r.Get("/notes", h.ListNotes)
	r.Get("/notes/*", h.GetNote)
	r.Patch("/notes/*", h.EditNote)

	// Index queries.
	r.Get("/fields", h.Fields)
	r.Get("/search", h.Search)

	if events != nil {
		r.Get("/events", events.ServeHTTP)
	}

	return r
}

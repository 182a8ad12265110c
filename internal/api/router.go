package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ansuz/internal/objects"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *objects.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Objects CRUD.
	r.Get("/objects", h.ListObjects)
	r.Post("/objects", h.CreateObject)
	r.Get("/objects/{id}", h.GetObject)
	r.Put("/objects/{id}", h.UpdateObject)
	r.Delete("/objects/{id}", h.DeleteObject)

	// Link relations.
	r.Get("/objects/{id}/links", h.GetLinks)
	r.Post("/objects/{id}/links", h.AddLink)
	r.Get("/objects/{id}/backlinks", h.GetBacklinks)

	// Graph traversal.
	r.Get("/objects/{id}/graph", h.TraverseGraph)
	r.Get("/objects/{id}/graph/summary", h.GraphSummary)

	// Search.
	r.Get("/search", h.Search)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

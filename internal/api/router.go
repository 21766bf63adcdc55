package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/partitura/internal/scoreservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// maxUpload caps request bodies carrying score documents.
func NewRouter(svc *scoreservice.Service, authEnabled bool, token string, sseHandler http.Handler, maxUpload int64) chi.Router {
	h := NewHandler(svc, maxUpload)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/scores", h.ListScores)
	r.Post("/scores", h.UploadScore)
	r.Get("/scores/*", h.GetScore)
	r.Put("/scores/*", h.UpdateScore)
	r.Delete("/scores/*", h.DeleteScore)

	r.Get("/search", h.Search)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

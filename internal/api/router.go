package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/halvard/synapse/internal/noteservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *noteservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Vault tree.
	r.Get("/vault", h.ListVault)

	// Notes CRUD and lifecycle. Static segments must come before the
	// wildcard routes.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Post("/notes/rename", h.RenameNote)
	r.Post("/notes/duplicate", h.DuplicateNote)
	r.Post("/notes/star", h.ToggleStar)
	r.Get("/notes/*", h.GetNote)
	r.Put("/notes/*", h.UpdateNote)
	r.Delete("/notes/*", h.DeleteNote)

	// Query surface.
	r.Get("/search", h.Search)
	r.Get("/backlinks", h.Backlinks)
	r.Get("/links", h.Links)
	r.Get("/tags", h.Tags)
	r.Get("/tags/notes", h.NotesByTag)
	r.Get("/outline/*", h.Outline)

	// Index maintenance.
	r.Post("/reindex", h.Reindex)

	// Settings.
	r.Get("/settings/{key}", h.GetSetting)
	r.Put("/settings/{key}", h.PutSetting)

	// SSE endpoint (protected by the same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

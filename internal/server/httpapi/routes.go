package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes builds the chi router for the vault API.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(clientIPMiddleware)

	r.Route("/v1", func(r chi.Router) {
		// public
		r.Post("/users/register", h.handleRegister)
		r.Post("/users/login", h.handleLogin)

		// authenticated
		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware)

			r.Post("/documents", h.handleUpload)
			r.Get("/documents", h.handleList)
			r.Get("/documents/shared", h.handleListShared)
			r.Post("/documents/bulk/move", h.handleBulkMove)
			r.Post("/documents/bulk/delete", h.handleBulkDelete)
			r.Get("/documents/{id}", h.handleDownload)
			r.Delete("/documents/{id}", h.handleDelete)
			r.Post("/documents/{id}/share", h.handleShare)
			r.Patch("/documents/{id}/rename", h.handleRename)
			r.Patch("/documents/{id}/move", h.handleMove)

			r.Post("/folders", h.handleCreateFolder)
			r.Get("/folders", h.handleListFolders)
			r.Get("/folders/content", h.handleFolderContent)

			r.Get("/audit", h.handleAuditLog)
		})
	})

	return r
}

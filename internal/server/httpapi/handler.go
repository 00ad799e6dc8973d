// Package httpapi exposes the vault over HTTP/JSON. Handlers are thin:
// they decode input, call a service, and translate service errors into
// status codes, keeping forbidden, missing and corrupted outcomes
// distinguishable for clients.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"docvault/internal/common"
	"docvault/internal/logging"
	"docvault/internal/server/services"
)

type Handler struct {
	users     *services.UserService
	documents *services.DocumentService
	folders   *services.FolderService
	audit     *services.AuditService
	logger    logging.Logger
	jwtSecret []byte
}

func NewHandler(
	users *services.UserService,
	documents *services.DocumentService,
	folders *services.FolderService,
	audit *services.AuditService,
	logger logging.Logger,
	jwtSecret []byte,
) *Handler {
	return &Handler{
		users:     users,
		documents: documents,
		folders:   folders,
		audit:     audit,
		logger:    logger.With("module", "httpapi"),
		jwtSecret: jwtSecret,
	}
}

func (h *Handler) respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error(context.Background(), "failed to marshal response", "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func (h *Handler) respondWithError(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, map[string]any{"error": message})
}

// respondWithServiceError maps domain errors onto HTTP statuses. The
// integrity case gets its own message so a corrupted document is never
// mistaken for a generic server failure.
func (h *Handler) respondWithServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		h.respondWithError(w, http.StatusNotFound, "not found")
	case errors.Is(err, common.ErrorViewerNotFound):
		h.respondWithError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, common.ErrorForbidden), errors.Is(err, common.ErrorNotOwner):
		h.respondWithError(w, http.StatusForbidden, "access denied")
	case errors.Is(err, common.ErrorSelfShare):
		h.respondWithError(w, http.StatusBadRequest, "cannot share a document with yourself")
	case errors.Is(err, common.ErrorInvalidDuration):
		h.respondWithError(w, http.StatusBadRequest, "invalid share duration")
	case errors.Is(err, common.ErrorInvalidName):
		h.respondWithError(w, http.StatusBadRequest, "invalid name")
	case errors.Is(err, common.ErrorUnauthorized):
		h.respondWithError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, common.ErrorIntegrity):
		h.respondWithError(w, http.StatusInternalServerError, "document integrity check failed")
	default:
		h.logger.Error(context.Background(), "internal error", "err", err)
		h.respondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

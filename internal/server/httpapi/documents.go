package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"docvault/internal/server/models"
)

// maxUploadBytes caps one upload request.
const maxUploadBytes = 50 << 20

// share durations accepted at the edge, in whole hours
const (
	minShareHours = 1
	maxShareHours = 72
)

type documentResponse struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	FileName  string    `json:"fileName"`
	FileType  string    `json:"fileType"`
	Size      int64     `json:"size"`
	FolderID  *string   `json:"folderId"`
	CreatedAt time.Time `json:"createdAt"`
}

func toDocumentResponse(doc *models.Document) documentResponse {
	return documentResponse{
		ID:        doc.ID,
		OwnerID:   doc.OwnerID,
		FileName:  doc.FileName,
		FileType:  doc.FileType,
		Size:      doc.Size,
		FolderID:  doc.FolderID,
		CreatedAt: doc.CreatedAt,
	}
}

func toDocumentResponses(docs []*models.Document) []documentResponse {
	out := make([]documentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toDocumentResponse(doc))
	}
	return out
}

// handleUpload (POST /v1/documents) accepts a multipart form with a
// "file" part and an optional "folder_id" field.
func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "invalid multipart payload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	var folderID *string
	if v := r.FormValue("folder_id"); v != "" {
		folderID = &v
	}

	fileType := header.Header.Get("Content-Type")
	if fileType == "" {
		fileType = "application/octet-stream"
	}

	doc, err := h.documents.Upload(r.Context(), principalID(r), data, header.Filename, fileType, folderID)
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusCreated, toDocumentResponse(doc))
}

// handleDownload (GET /v1/documents/{id}) streams the decrypted content.
func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	plaintext, doc, err := h.documents.Retrieve(r.Context(), chi.URLParam(r, "id"), principalID(r))
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", doc.FileType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	w.WriteHeader(http.StatusOK)
	w.Write(plaintext)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	docs, err := h.documents.List(r.Context(), principalID(r), r.URL.Query().Get("search"))
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, toDocumentResponses(docs))
}

func (h *Handler) handleListShared(w http.ResponseWriter, r *http.Request) {
	docs, err := h.documents.ListShared(r.Context(), principalID(r))
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, toDocumentResponses(docs))
}

// handleShare (POST /v1/documents/{id}/share) grants time-bounded view
// access. The duration is taken in whole hours and bounded here, at the
// edge; the grant logic itself only requires it to be positive.
func (h *Handler) handleShare(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Hours int    `json:"hours"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if req.Email == "" {
		h.respondWithError(w, http.StatusBadRequest, "email is required")
		return
	}
	if req.Hours < minShareHours || req.Hours > maxShareHours {
		h.respondWithError(w, http.StatusBadRequest,
			fmt.Sprintf("hours must be between %d and %d", minShareHours, maxShareHours))
		return
	}

	grant, err := h.documents.Share(r.Context(), chi.URLParam(r, "id"), principalID(r),
		req.Email, time.Duration(req.Hours)*time.Hour)
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]any{
		"viewerId":   grant.ViewerID,
		"permission": grant.Permission,
		"validUntil": grant.ValidUntil,
	})
}

func (h *Handler) handleRename(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FileName string `json:"fileName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FileName == "" {
		h.respondWithError(w, http.StatusBadRequest, "fileName is required")
		return
	}

	if err := h.documents.Rename(r.Context(), chi.URLParam(r, "id"), principalID(r), req.FileName); err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FolderID *string `json:"folderId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	if err := h.documents.Move(r.Context(), chi.URLParam(r, "id"), principalID(r), req.FolderID); err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.documents.Delete(r.Context(), chi.URLParam(r, "id"), principalID(r)); err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleBulkMove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DocumentIDs []string `json:"documentIds"`
		FolderID    *string  `json:"folderId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.DocumentIDs) == 0 {
		h.respondWithError(w, http.StatusBadRequest, "documentIds are required")
		return
	}

	if err := h.documents.BulkMove(r.Context(), req.DocumentIDs, principalID(r), req.FolderID); err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleBulkDelete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DocumentIDs []string `json:"documentIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.DocumentIDs) == 0 {
		h.respondWithError(w, http.StatusBadRequest, "documentIds are required")
		return
	}

	if err := h.documents.BulkDelete(r.Context(), req.DocumentIDs, principalID(r)); err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

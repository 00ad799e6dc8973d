package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"docvault/internal/server/models"
)

type folderResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ParentID  *string   `json:"parentId"`
	CreatedAt time.Time `json:"createdAt"`
}

func toFolderResponses(folders []*models.Folder) []folderResponse {
	out := make([]folderResponse, 0, len(folders))
	for _, f := range folders {
		out = append(out, folderResponse{ID: f.ID, Name: f.Name, ParentID: f.ParentID, CreatedAt: f.CreatedAt})
	}
	return out
}

func (h *Handler) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string  `json:"name"`
		ParentID *string `json:"parentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	folder, err := h.folders.Create(r.Context(), principalID(r), req.Name, req.ParentID)
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusCreated, folderResponse{
		ID: folder.ID, Name: folder.Name, ParentID: folder.ParentID, CreatedAt: folder.CreatedAt,
	})
}

func (h *Handler) handleListFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := h.folders.ListAll(r.Context(), principalID(r))
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, toFolderResponses(folders))
}

// handleFolderContent (GET /v1/folders/content?parent_id=...) lists one
// level of the tree; no parent_id means the root.
func (h *Handler) handleFolderContent(w http.ResponseWriter, r *http.Request) {
	var parentID *string
	if v := r.URL.Query().Get("parent_id"); v != "" {
		parentID = &v
	}

	content, err := h.folders.Content(r.Context(), principalID(r), parentID)
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]any{
		"folders":   toFolderResponses(content.Folders),
		"documents": toDocumentResponses(content.Documents),
	})
}

func (h *Handler) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 1000 {
			h.respondWithError(w, http.StatusBadRequest, "limit must be between 1 and 1000")
			return
		}
		limit = n
	}

	entries, err := h.audit.ListForActor(r.Context(), principalID(r), limit)
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}

	type auditResponse struct {
		ID        string    `json:"id"`
		Action    string    `json:"action"`
		ActorID   string    `json:"actorId"`
		Resource  string    `json:"resource"`
		Status    string    `json:"status"`
		Details   string    `json:"details,omitempty"`
		CreatedAt time.Time `json:"createdAt"`
	}
	out := make([]auditResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, auditResponse{
			ID: e.ID, Action: e.Action, ActorID: e.ActorID,
			Resource: e.Resource, Status: e.Status, Details: e.Details,
			CreatedAt: e.CreatedAt,
		})
	}
	h.respondWithJSON(w, http.StatusOK, out)
}

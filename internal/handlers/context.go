package handlers

import (
	"net/http"

	"fingpt-backend/internal/models"
	"fingpt-backend/internal/store"
)

type ContextHandler struct {
	store *store.ContextStore
}

func NewContextHandler(contextStore *store.ContextStore) *ContextHandler {
	return &ContextHandler{store: contextStore}
}

// Upload persists one or more context files (txt, csv or pdf). Same-named
// files are replaced; the store is re-read on every chat request so new
// uploads take effect immediately.
func (h *ContextHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 20*1024*1024)

	if err := r.ParseMultipartForm(20 * 1024 * 1024); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid multipart body", r))
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "No files provided", r))
		return
	}

	var stored []models.ContextFile
	for _, hdr := range headers {
		f, err := hdr.Open()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Unreadable file: "+hdr.Filename, r))
			return
		}

		info, err := h.store.Save(hdr.Filename, f)
		f.Close()
		if err != nil {
			writeJSON(w, http.StatusUnsupportedMediaType, errorResp("UNSUPPORTED_FORMAT", err.Error(), r))
			return
		}
		stored = append(stored, info)
	}

	writeJSON(w, http.StatusOK, models.UploadResponse{Stored: stored})
}

// List describes the files currently held by the context store.
func (h *ContextHandler) List(w http.ResponseWriter, r *http.Request) {
	files, err := h.store.List()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to list context files", r))
		return
	}
	if files == nil {
		files = []models.ContextFile{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"files": files})
}

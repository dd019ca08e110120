package handlers

import (
	"net/http"

	"github.com/speech-coach/backend/internal/storage"
)

type FilesHandler struct {
	store *storage.Store
}

func NewFilesHandler(store *storage.Store) *FilesHandler {
	return &FilesHandler{store: store}
}

// List returns the names of all converted wav files in the store.
func (h *FilesHandler) List(w http.ResponseWriter, r *http.Request) {
	names, err := h.store.ListWAVs()
	if err != nil {
		jsonError(w, "failed to list upload directory", http.StatusInternalServerError)
		return
	}

	jsonResponse(w, map[string]interface{}{
		"count": len(names),
		"files": names,
	}, http.StatusOK)
}

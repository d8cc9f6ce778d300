package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/satonic/satonic-storefront/internal/preview"
)

// GetPreview serves the bytes behind a live preview handle
func GetPreview(registry *preview.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file, ok := registry.Open(chi.URLParam(r, "id"))
		if !ok {
			writeMessage(w, http.StatusNotFound, "preview not found")
			return
		}
		w.Header().Set("Content-Type", file.ContentType)
		w.Header().Set("Cache-Control", "private, no-store")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		http.ServeContent(w, r, file.Name, time.Time{}, bytes.NewReader(file.Data))
	}
}

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/satonic/satonic-storefront/internal/services"
)

// GetNFT handles retrieving a stored item with its auction
func GetNFT(nftService *services.NFTService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nftID := chi.URLParam(r, "id")
		if nftID == "" {
			writeMessage(w, http.StatusBadRequest, "item id is required")
			return
		}

		item, err := nftService.GetItem(r.Context(), nftID)
		if err != nil {
			writeError(w, r, err)
			return
		}

		if item == nil {
			writeMessage(w, http.StatusNotFound, "item not found")
			return
		}

		writeJSON(w, http.StatusOK, item)
	}
}

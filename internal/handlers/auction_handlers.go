package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/satonic/satonic-storefront/internal/services"
)

// GetAuction handles retrieving the auction of a stored item
func GetAuction(auctionService *services.AuctionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nftID := chi.URLParam(r, "id")
		if nftID == "" {
			writeMessage(w, http.StatusBadRequest, "item id is required")
			return
		}

		auction, err := auctionService.GetByNFTID(r.Context(), nftID)
		if err != nil {
			writeError(w, r, err)
			return
		}

		if auction == nil {
			writeMessage(w, http.StatusNotFound, "auction not found")
			return
		}

		writeJSON(w, http.StatusOK, auction)
	}
}

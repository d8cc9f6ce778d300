package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/satonic/satonic-storefront/internal/services"
)

type likesResponse struct {
	Likes []string `json:"likes"`
}

type likeResponse struct {
	ListingID string `json:"listing_id"`
	Liked     bool   `json:"liked"`
}

type cartResponse struct {
	Cart []string `json:"cart"`
}

// GetLikes returns the liked listings of the session
func GetLikes(favorites *services.FavoritesService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		likes, err := favorites.Likes(r.Context(), mustSession(r).ID())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, likesResponse{Likes: likes})
	}
}

// ToggleLike likes or unlikes a listing
func ToggleLike(favorites *services.FavoritesService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listingID := chi.URLParam(r, "id")
		liked, err := favorites.ToggleLike(r.Context(), mustSession(r).ID(), listingID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, likeResponse{ListingID: listingID, Liked: liked})
	}
}

// GetCart returns the cart of the session
func GetCart(favorites *services.FavoritesService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cart, err := favorites.Cart(r.Context(), mustSession(r).ID())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, cartResponse{Cart: cart})
	}
}

// AddToCart adds a listing to the cart
func AddToCart(favorites *services.FavoritesService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cart, err := favorites.AddToCart(r.Context(), mustSession(r).ID(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, cartResponse{Cart: cart})
	}
}

// RemoveFromCart removes a listing from the cart
func RemoveFromCart(favorites *services.FavoritesService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cart, err := favorites.RemoveFromCart(r.Context(), mustSession(r).ID(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, cartResponse{Cart: cart})
	}
}

// ClearCart empties the cart
func ClearCart(favorites *services.FavoritesService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := favorites.ClearCart(r.Context(), mustSession(r).ID()); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

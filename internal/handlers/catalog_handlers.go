package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/satonic/satonic-storefront/internal/catalog"
	"github.com/satonic/satonic-storefront/internal/models"
)

type facetsResponse struct {
	Facets      []models.Facet       `json:"facets"`
	SortOptions []models.FacetOption `json:"sort_options"`
}

// GetListings handles filtered, sorted and paginated listing queries
func GetListings(c *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		filters := models.ListingFilters{
			Collections: listParam(query["collection"]),
			Blockchains: listParam(query["blockchain"]),
			Status:      listParam(query["status"]),
			Price:       listParam(query["price"]),
		}

		page := 1
		if v := query.Get("page"); v != "" {
			if p, err := strconv.Atoi(v); err == nil && p > 0 {
				page = p
			}
		}

		writeJSON(w, http.StatusOK, c.FetchListings(filters, query.Get("sort"), page))
	}
}

// GetListing handles retrieving one listing
func GetListing(c *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listing, err := c.FetchItemDetails(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, listing)
	}
}

// GetCollections handles listing collections
func GetCollections(c *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, c.FetchCollections())
	}
}

// GetFacets handles retrieving the filter and sort options
func GetFacets(c *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, facetsResponse{Facets: c.Facets(), SortOptions: catalog.SortOptions})
	}
}

// listParam accepts both repeated parameters and comma separated values
func listParam(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

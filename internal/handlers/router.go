package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/satonic/satonic-storefront/internal/catalog"
	"github.com/satonic/satonic-storefront/internal/preview"
	"github.com/satonic/satonic-storefront/internal/services"
)

// HealthCheck reports whether a dependency is reachable
type HealthCheck func(ctx context.Context) error

// RouterDeps are the components served by the router
type RouterDeps struct {
	Logger         zerolog.Logger
	AllowedOrigins []string
	Creations      *services.CreationService
	Catalog        *catalog.Catalog
	Favorites      *services.FavoritesService
	NFTs           *services.NFTService
	Auctions       *services.AuctionService
	Previews       *preview.Registry
	Hub            *Hub
	Checks         map[string]HealthCheck
	// StaticDir serves locally stored assets under /static when set
	StaticDir string
}

// NewRouter builds the HTTP routes
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(deps.Logger))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	}))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/healthz", Health(deps.Checks))
		r.Get("/creation-options", GetCreationOptions())
		r.Post("/creations", StartCreation(deps.Creations))

		r.Route("/creations/current", func(r chi.Router) {
			r.Use(RequireSession(deps.Creations))

			r.Get("/", GetCreation())
			r.Patch("/", UpdateCreation())
			r.Post("/assets", AddAsset())
			r.Delete("/assets/{id}", RemoveAsset())
			r.Post("/attributes", AddAttribute())
			r.Patch("/attributes/{index}", UpdateAttribute())
			r.Delete("/attributes/{index}", RemoveAttribute())
			r.Put("/collection/{kind}", SetCollectionImage())
			r.Put("/step", SetStep())
			r.Post("/next", NextStep())
			r.Post("/back", PreviousStep())
			r.Post("/draft", SaveDraft())
			r.Post("/draft/load", LoadDraft())
			r.Post("/reset", ResetCreation())
			r.Post("/submit", SubmitCreation())
			r.Get("/fees", GetFees())
			if deps.Hub != nil {
				r.Get("/ws", ServeWs(deps.Hub))
			}
		})

		r.Get("/previews/{id}", GetPreview(deps.Previews))

		r.Get("/listings", GetListings(deps.Catalog))
		r.Get("/listings/{id}", GetListing(deps.Catalog))
		r.Get("/collections", GetCollections(deps.Catalog))
		r.Get("/facets", GetFacets(deps.Catalog))

		r.Route("/favorites", func(r chi.Router) {
			r.Use(RequireSession(deps.Creations))

			r.Get("/likes", GetLikes(deps.Favorites))
			r.Post("/likes/{id}", ToggleLike(deps.Favorites))
			r.Get("/cart", GetCart(deps.Favorites))
			r.Post("/cart/{id}", AddToCart(deps.Favorites))
			r.Delete("/cart/{id}", RemoveFromCart(deps.Favorites))
			r.Delete("/cart", ClearCart(deps.Favorites))
		})

		r.Get("/items/{id}", GetNFT(deps.NFTs))
		r.Get("/items/{id}/auction", GetAuction(deps.Auctions))
	})

	if deps.StaticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(deps.StaticDir))))
	}

	return r
}

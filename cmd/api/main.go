package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/satonic/satonic-storefront/internal/catalog"
	"github.com/satonic/satonic-storefront/internal/config"
	"github.com/satonic/satonic-storefront/internal/creation"
	"github.com/satonic/satonic-storefront/internal/handlers"
	"github.com/satonic/satonic-storefront/internal/logging"
	"github.com/satonic/satonic-storefront/internal/preview"
	"github.com/satonic/satonic-storefront/internal/server"
	"github.com/satonic/satonic-storefront/internal/services"
	"github.com/satonic/satonic-storefront/internal/storage"
	"github.com/satonic/satonic-storefront/internal/store"
)

func main() {
	// Load .env if present
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := logging.NewLogger(cfg.App.Env, cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checks := make(map[string]handlers.HealthCheck)

	var db *store.Database
	if cfg.Database.Enabled {
		db, err = store.NewDatabase(cfg.Database)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer db.Close()
		if err := db.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare schema")
		}
		checks["database"] = func(ctx context.Context) error {
			return db.GetDB().PingContext(ctx)
		}
	}

	kv := openKeyValueStore(ctx, cfg, db, checks, logger)

	uploader := openAssetStore(ctx, cfg, logger)

	var cat *catalog.Catalog
	if cfg.Catalog.SeedFile != "" {
		cat, err = catalog.LoadFile(cfg.Catalog.SeedFile)
	} else {
		cat, err = catalog.LoadDefault()
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load catalog")
	}

	nftOpts := services.NFTServiceOptions{
		Uploader: uploader,
		Catalog:  cat,
		Delay:    time.Duration(cfg.Creation.SubmitDelayMillis) * time.Millisecond,
		Logger:   logger,
	}
	auctions := services.NewAuctionService(nil)
	if db != nil {
		auctions = services.NewAuctionService(store.NewAuctionRepository(db))
		nftOpts.Repo = store.NewNFTRepository(db)
	}
	nftOpts.Auctions = auctions
	nfts := services.NewNFTService(nftOpts)

	hub := handlers.NewHub(cfg.Server.AllowedOrigins, logger)
	go hub.Run(ctx)

	previews := preview.NewRegistry(cfg.Creation.PreviewBaseURL)
	tokens := services.NewTokenService(cfg.Session)
	creations := services.NewCreationService(creation.SessionOptions{
		Previews: previews,
		Drafts:   kv,
		Creator:  nfts,
		Notifier: services.MultiNotifier{hub, services.NewLogNotifier(logger)},
		Logger:   logger,
	}, tokens, time.Duration(cfg.Session.IdleTimeoutMinutes)*time.Minute)
	go creations.Run(ctx, time.Minute)

	deps := handlers.RouterDeps{
		Logger:         logger,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Creations:      creations,
		Catalog:        cat,
		Favorites:      services.NewFavoritesService(kv, cat),
		NFTs:           nfts,
		Auctions:       auctions,
		Previews:       previews,
		Hub:            hub,
		Checks:         checks,
	}
	if cfg.Assets.Backend == config.AssetsLocal {
		deps.StaticDir = cfg.Assets.LocalDir
	}

	srv := server.NewHTTPServer(cfg.Server, handlers.NewRouter(deps))

	go func() {
		logger.Info().Str("addr", srv.Addr()).Msg("API listening")
		if err := srv.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

func openKeyValueStore(ctx context.Context, cfg *config.Config, db *store.Database, checks map[string]handlers.HealthCheck, logger zerolog.Logger) creation.KeyValueStore {
	ttl := time.Duration(cfg.Drafts.TTLHours) * time.Hour

	switch cfg.Drafts.Backend {
	case config.BackendRedis:
		client, err := store.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect redis")
		}
		checks["redis"] = func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}
		return store.NewRedisKV(client, "storefront:", ttl)
	case config.BackendPostgres:
		if db == nil {
			logger.Fatal().Msg("postgres drafts backend requires the database to be enabled")
		}
		return store.NewPostgresKV(db, ttl)
	default:
		return store.NewMemoryKV(ttl)
	}
}

func openAssetStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) services.AssetUploader {
	if cfg.Assets.Backend == config.AssetsMinIO {
		uploader, err := storage.NewMinIOUploader(ctx, cfg.MinIO)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect object storage")
		}
		return uploader
	}

	files, err := storage.NewFileStore(cfg.Assets.LocalDir, cfg.Assets.PublicBaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare asset directory")
	}
	return files
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"adcraft/internal/adapter/repo"
	"adcraft/internal/creative"
	"adcraft/internal/http/handlers"
	httpapi "adcraft/internal/http/httpapi"
	"adcraft/internal/infra"
	"adcraft/internal/providers/openai"
	"adcraft/internal/providers/stock"
	"adcraft/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	model, err := openai.NewClient(openai.Options{
		APIKey:       cfg.OpenAIAPIKey,
		Organization: cfg.OpenAIOrg,
		BaseURL:      cfg.OpenAIBaseURL,
		ImageModel:   cfg.OpenAIImageModel,
		VisionModel:  cfg.OpenAIVisionModel,
		Logger:       &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure image model client")
	}

	local, err := storage.NewFileStore(cfg.StaticDir, cfg.StaticBaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare local storage")
	}

	// The remote object store is preferred; without credentials the local
	// filesystem serves as the only backend.
	var store storage.ObjectStore = local
	if cfg.SupabaseURL != "" && cfg.SupabaseServiceKey != "" {
		supa, err := storage.NewSupabaseStore(storage.SupabaseOptions{
			ProjectURL: cfg.SupabaseURL,
			ServiceKey: cfg.SupabaseServiceKey,
			Bucket:     cfg.SupabaseBucket,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure object storage")
		}
		store = supa
	} else {
		logger.Warn().Msg("supabase storage not configured, using local filesystem only")
	}

	ctx := context.Background()

	var metadata creative.MetadataStore
	var gallery handlers.GalleryStore
	if cfg.DatabaseURL != "" {
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer pool.Close()
		images := repo.NewImageRepository(pool)
		metadata = images
		gallery = images
	} else {
		logger.Warn().Msg("database not configured, metadata persistence disabled")
	}

	service, err := creative.NewService(creative.Options{
		Model:    model,
		Store:    store,
		Local:    local,
		Metadata: metadata,
		Logger:   &logger,
		TempDir:  cfg.TempDir,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build generation service")
	}

	app := &handlers.App{
		Pipeline: service,
		Gallery:  gallery,
		Store:    store,
		Local:    local,
		Logger:   logger,
	}
	if cfg.ShutterstockAPIKey != "" {
		app.Stock = stock.NewClient(stock.Options{APIKey: cfg.ShutterstockAPIKey})
	}

	router := httpapi.NewRouter(app, cfg)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

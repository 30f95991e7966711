package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ims-storefront-bridge/internal/bootstrap"
	"ims-storefront-bridge/internal/config"
	apiinfra "ims-storefront-bridge/internal/infrastructure/api"

	"github.com/rs/zerolog"
)

func main() {
	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger = bootstrap.NewLogger(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer app.Close(context.Background())

	installService, err := app.InstallService(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize install service")
	}

	if cfg.Sync.APIToken != "" {
		if err := cfg.ValidateIMS(); err != nil {
			logger.Fatal().Err(err).Msg("SYNC_API_TOKEN is set but IMS is not configured")
		}
	} else {
		logger.Info().Msg("SYNC_API_TOKEN not set, sync routes disabled")
	}

	router := apiinfra.NewRouter(apiinfra.RouterConfig{
		Installer:      installService,
		Syncer:         app.Sync,
		Runs:           app.Runs,
		MetricsHandler: app.Metrics.Handler(),
		SyncAPIToken:   cfg.Sync.APIToken,
		SwaggerFile:    "./docs/swagger.json",
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Failed to shut down server")
		}
	}()

	logger.Info().Str("port", cfg.Port).Msg("Starting API server")
	logger.Info().Msg("Install endpoint available at " + cfg.AppURL + "/install")
	logger.Info().Msg("Swagger documentation available at http://localhost:" + cfg.Port + "/swagger/index.html")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
	logger.Info().Msg("Server stopped")
}

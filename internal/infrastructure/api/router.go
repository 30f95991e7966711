package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"ims-storefront-bridge/internal/application"
	"ims-storefront-bridge/internal/domain"
	"ims-storefront-bridge/internal/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Installer runs the installation handshake
type Installer interface {
	Start(ctx context.Context, query url.Values) (*application.StartResult, error)
	Callback(ctx context.Context, query url.Values) (*domain.ShopCredential, error)
}

// Syncer runs one catalog sync for a seller
type Syncer interface {
	Sync(ctx context.Context, sellerNumber string) (*domain.SyncReport, error)
}

// RouterConfig holds the dependencies of the HTTP surface
type RouterConfig struct {
	Installer      Installer
	Syncer         Syncer
	Runs           ports.SyncRunRepository
	MetricsHandler http.Handler
	SyncAPIToken   string
	SwaggerFile    string
	Logger         zerolog.Logger
}

// NewRouter builds the chi router of the API server
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	if cfg.SwaggerFile != "" {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
		r.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			http.ServeFile(w, r, cfg.SwaggerFile)
		})
	}

	// One redirect URL serves both legs of the handshake.
	r.Get("/install", installHandler(cfg.Installer, cfg.Logger))

	if cfg.SyncAPIToken != "" && cfg.Syncer != nil {
		r.Group(func(r chi.Router) {
			r.Use(bearerAuth(cfg.SyncAPIToken))
			r.Post("/sync/{sellerNumber}", syncHandler(cfg.Syncer, cfg.Logger))
			if cfg.Runs != nil {
				r.Get("/sync/{sellerNumber}/latest", latestRunHandler(cfg.Runs, cfg.Logger))
			}
		})
	}

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

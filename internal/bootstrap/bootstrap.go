package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"ims-storefront-bridge/internal/application"
	"ims-storefront-bridge/internal/config"
	"ims-storefront-bridge/internal/infrastructure/encryption"
	"ims-storefront-bridge/internal/infrastructure/ims"
	"ims-storefront-bridge/internal/infrastructure/metrics"
	"ims-storefront-bridge/internal/infrastructure/repository"
	shopifyinfra "ims-storefront-bridge/internal/infrastructure/shopify"
	"ims-storefront-bridge/internal/ports"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NewLogger builds the root logger of a binary
func NewLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// App holds the process-level resources shared by the binaries
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Metrics *metrics.Collector

	Encryption *encryption.Service
	Shops      *repository.MongoShopRepository
	Runs       *repository.MongoSyncRunRepository
	Sync       *application.CatalogSyncService

	mongo *mongo.Client
	redis *redis.Client
}

// New connects to MongoDB and wires the catalog sync
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	encryptionService, err := encryption.NewService(cfg.EncryptKey)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize encryption service: %w", err)
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	db := client.Database(cfg.Mongo.Database)

	shops := repository.NewMongoShopRepository(db)
	runs := repository.NewMongoSyncRunRepository(db)
	if err := shops.EnsureIndexes(connectCtx); err != nil {
		logger.Warn().Err(err).Msg("Failed to ensure shop indexes")
	}
	if err := runs.EnsureIndexes(connectCtx); err != nil {
		logger.Warn().Err(err).Msg("Failed to ensure sync run indexes")
	}

	collector := metrics.NewCollector()

	imsFactory := ims.NewFactory(ims.Options{
		AuthURL:           cfg.IMS.AuthURL,
		APIURL:            cfg.IMS.APIURL,
		ClientID:          cfg.IMS.ClientID,
		ClientSecret:      cfg.IMS.ClientSecret,
		APIKey:            cfg.IMS.APIKey,
		PageSize:          cfg.IMS.PageSize,
		RequestsPerSecond: cfg.IMS.RequestsPerSecond,
		Timeout:           cfg.IMS.Timeout,
	}, logger.With().Str("component", "ims").Logger())

	storefronts := shopifyinfra.NewFactory(shopifyinfra.Options{
		APIKey:     cfg.Shopify.APIKey,
		APISecret:  cfg.Shopify.APISecret,
		APIVersion: cfg.Shopify.APIVersion,
		Retries:    cfg.Shopify.Retries,
	}, logger.With().Str("component", "storefront").Logger())

	syncService := application.NewCatalogSyncService(
		imsFactory,
		storefronts,
		application.NewCredentialResolver(cfg.Sync.IntegrationKey, logger),
		shops,
		runs,
		encryptionService,
		collector,
		application.SyncOptions{
			Concurrency: cfg.Sync.Concurrency,
			ImageMode:   cfg.Sync.ImageMode,
		},
		logger.With().Str("component", "sync").Logger(),
	)

	return &App{
		Config:     cfg,
		Logger:     logger,
		Metrics:    collector,
		Encryption: encryptionService,
		Shops:      shops,
		Runs:       runs,
		Sync:       syncService,
		mongo:      client,
	}, nil
}

// InstallService wires the installation handshake, connecting to Redis for sessions
func (a *App) InstallService(ctx context.Context) (*application.InstallService, error) {
	sessions, client, err := newSessionStore(ctx, a.Config, a.Logger)
	if err != nil {
		return nil, err
	}
	a.redis = client

	oauth := shopifyinfra.NewOAuth(a.Config.Shopify.APIKey, a.Config.Shopify.APISecret, a.Logger.With().Str("component", "oauth").Logger())

	return application.NewInstallService(
		sessions,
		a.Shops,
		oauth,
		a.Encryption,
		a.Metrics,
		application.InstallOptions{
			Scopes:             a.Config.Shopify.Scopes,
			RedirectURI:        a.Config.AppURL + "/install",
			SessionTTL:         a.Config.Install.SessionTTL,
			TimestampTolerance: a.Config.Install.TimestampTolerance,
		},
		a.Logger.With().Str("component", "install").Logger(),
	), nil
}

// newSessionStore connects the Redis session store. Process memory is used only when
// REDIS_ADDR is empty and INSTALL_MEMORY_SESSIONS is set.
func newSessionStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (ports.SessionStore, *redis.Client, error) {
	if cfg.Redis.Addr == "" {
		if !cfg.Install.MemorySessions {
			return nil, nil, errors.New("REDIS_ADDR is required for install sessions (set INSTALL_MEMORY_SESSIONS=true for a single local instance)")
		}
		logger.Warn().Msg("REDIS_ADDR not set, keeping install sessions in memory")
		return repository.NewInMemorySessionStore(), nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return repository.NewRedisSessionStore(client), client, nil
}

// Close releases the connections held by the app
func (a *App) Close(ctx context.Context) {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close Redis client")
		}
	}
	if err := a.mongo.Disconnect(ctx); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to disconnect from MongoDB")
	}
}

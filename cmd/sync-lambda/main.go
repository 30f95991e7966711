package main

import (
	"context"
	"fmt"
	"os"

	"ims-storefront-bridge/internal/bootstrap"
	"ims-storefront-bridge/internal/config"
	"ims-storefront-bridge/internal/domain"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog"
)

// SyncEvent is the invocation payload, typically from a schedule rule
type SyncEvent struct {
	SellerNumber string `json:"sellerNumber"`
}

type syncer interface {
	Sync(ctx context.Context, sellerNumber string) (*domain.SyncReport, error)
}

type handler struct {
	syncer        syncer
	defaultSeller string
	logger        zerolog.Logger
}

// Handle runs one sync. Product failures are logged and returned in the report;
// only an aborted run is an error.
func (h *handler) Handle(ctx context.Context, event SyncEvent) (*domain.SyncReport, error) {
	seller := event.SellerNumber
	if seller == "" {
		seller = h.defaultSeller
	}
	if seller == "" {
		return nil, fmt.Errorf("%w: sellerNumber is required", domain.ErrInvalidRequest)
	}

	report, err := h.syncer.Sync(ctx, seller)
	if err != nil {
		h.logger.Error().Err(err).Str("sellerNumber", seller).Msg("Sync run aborted")
		return nil, err
	}

	for _, failure := range report.Failures() {
		h.logger.Warn().
			Str("sellerNumber", seller).
			Str("productNumber", failure.ProductNumber).
			Str("stage", string(failure.Stage)).
			Str("error", failure.Error).
			Msg("Product failed to sync")
	}
	return report, nil
}

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := cfg.ValidateIMS(); err != nil {
		logger.Fatal().Err(err).Msg("IMS is not configured")
	}
	logger = bootstrap.NewLogger(os.Stdout, cfg.LogLevel)

	// Connections are reused across warm invocations
	app, err := bootstrap.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
	}

	h := &handler{
		syncer:        app.Sync,
		defaultSeller: cfg.Sync.SellerNumber,
		logger:        logger,
	}
	lambda.Start(h.Handle)
}

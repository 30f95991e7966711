package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"ims-storefront-bridge/internal/bootstrap"
	"ims-storefront-bridge/internal/config"
	"ims-storefront-bridge/internal/domain"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
)

var errProductsFailed = errors.New("one or more products failed to sync")

// syncer runs one catalog sync
type syncer interface {
	Sync(ctx context.Context, sellerNumber string) (*domain.SyncReport, error)
}

// environment is what a run needs once configuration is loaded
type environment struct {
	syncer        syncer
	defaultSeller string
	close         func()
}

type connectFunc func(ctx context.Context) (*environment, error)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newCommand(connect(&logger), os.Stdout)
	if err := cmd.Run(ctx, os.Args); err != nil {
		logger.Error().Err(err).Msg("Sync failed")
		stop()
		os.Exit(1)
	}
}

// connect loads configuration and wires the sync against MongoDB
func connect(logger *zerolog.Logger) connectFunc {
	return func(ctx context.Context) (*environment, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		if err := cfg.ValidateIMS(); err != nil {
			return nil, err
		}
		*logger = bootstrap.NewLogger(os.Stderr, cfg.LogLevel)

		app, err := bootstrap.New(ctx, cfg, *logger)
		if err != nil {
			return nil, err
		}
		return &environment{
			syncer:        app.Sync,
			defaultSeller: cfg.Sync.SellerNumber,
			close:         func() { app.Close(context.Background()) },
		}, nil
	}
}

func newCommand(connect connectFunc, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "copy a seller's IMS catalog to its storefront",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "seller",
				Usage:   "IMS seller number",
				Sources: cli.EnvVars("SELLER_NUMBER"),
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "indent the JSON report",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			env, err := connect(ctx)
			if err != nil {
				return err
			}
			defer env.close()

			seller := cmd.String("seller")
			if seller == "" {
				seller = env.defaultSeller
			}
			if seller == "" {
				return fmt.Errorf("%w: --seller or SELLER_NUMBER is required", domain.ErrInvalidRequest)
			}

			report, err := env.syncer.Sync(ctx, seller)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(out)
			if cmd.Bool("pretty") {
				enc.SetIndent("", "  ")
			}
			if err := enc.Encode(report); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}

			if report.Failed > 0 {
				return fmt.Errorf("%w: %d of %d", errProductsFailed, report.Failed, len(report.Outcomes))
			}
			return nil
		},
	}
}

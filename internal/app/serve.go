package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cohortpulse/cohortpulse/internal/config"
	"github.com/cohortpulse/cohortpulse/internal/logging"
	"github.com/cohortpulse/cohortpulse/internal/server"
	"github.com/cohortpulse/cohortpulse/internal/store"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve the aggregation engine over HTTP.

Endpoints: POST /api/analyze, POST /api/upload, POST /api/cohort-matrix,
GET /api/cohort-matrix, GET /api/health. Uploaded claim datasets are
retained in SQLite so filter changes recompute without a re-upload.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	if err := logging.Init(flagVerbose || cfg.Log.Verbose, cfg.Log.Dir); err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening dataset store: %w", err)
	}
	defer db.Close()

	srv := server.New(cfg, db)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(srv.ListenAndServe)
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}

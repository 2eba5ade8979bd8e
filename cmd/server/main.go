// cmd/server/main.go
// This is the entry point for the domino tournament API server.
// The cmd/ folder holds executable binaries; internal/ holds the packages they are built from.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/trentd187/domino-tournament/internal/config"
	"github.com/trentd187/domino-tournament/internal/database"
	"github.com/trentd187/domino-tournament/internal/live"
	"github.com/trentd187/domino-tournament/internal/logging"
	"github.com/trentd187/domino-tournament/internal/metrics"
	"github.com/trentd187/domino-tournament/internal/report"
	"github.com/trentd187/domino-tournament/internal/server"
	"github.com/trentd187/domino-tournament/internal/store"
	"github.com/trentd187/domino-tournament/internal/tournament"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		logging.Logger().Fatal().Err(err).Msg("server stopped")
	}
}

func run() error {
	// Load configuration from environment variables (and optionally .env / CONFIG_FILE).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log := logging.Logger()

	// Open the store and bring its schema up to date. Migrations run on every start so a
	// fresh shared folder is usable immediately.
	target := database.TargetFromConfig(cfg)
	db, err := database.Open(target)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn().Err(err).Msg("failed to close store")
		}
	}()
	log.Info().Str("store", target.Describe()).Msg("store ready")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The hub fans tournament events out to live board subscribers. It runs until ctx is
	// cancelled, which also disconnects every subscriber.
	hub := live.NewHub()
	go hub.Run(ctx)

	m := metrics.New()
	svc := tournament.New(store.New(db), tournament.Options{
		MaxPlayers: cfg.MaxPlayers,
		MaxRounds:  cfg.MaxRounds,
		WinWeight:  cfg.WinWeight,
		Metrics:    m,
		Hub:        hub,
	})

	// Rebuild stats once at boot so a store written by an older build serves a fresh ranking.
	if _, err := svc.Recompute(ctx); err != nil {
		log.Warn().Err(err).Msg("initial ranking recompute failed")
	}

	app := server.New(server.Deps{
		Config:   cfg,
		Service:  svc,
		Hub:      hub,
		Metrics:  m,
		Exporter: report.NewExporter(svc, cfg.TournamentTitle),
	})

	if cfg.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is empty: write routes are open")
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

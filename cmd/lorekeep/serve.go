// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/lorekeep/lorekeep/internal/auth"
	"github.com/lorekeep/lorekeep/internal/config"
	"github.com/lorekeep/lorekeep/internal/logging"
	"github.com/lorekeep/lorekeep/internal/observability"
	"github.com/lorekeep/lorekeep/internal/store"
)

const (
	shutdownTimeout     = 10 * time.Second
	sessionPruneEvery   = time.Hour
	sessionPruneTimeout = 30 * time.Second
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the decision engine with metrics and health endpoints",
		Long: `Connects to PostgreSQL, applies pending migrations, wires the
decision engine, and serves /metrics and health probes until interrupted.
The request surface itself is provided by the embedding process.`,
		RunE: runServe,
	}

	cmd.Flags().String("database.url", "", "PostgreSQL connection URL")
	cmd.Flags().String("log.level", config.DefaultLogLevel, "minimum log level")
	cmd.Flags().String("log.format", config.DefaultLogFormat, "log format (json or text)")
	cmd.Flags().String("observability.addr", config.DefaultObservabilityAddr, "metrics/health listen address")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	logging.SetDefault("lorekeep", version, logging.Options{
		Format: cfg.Log.Format,
		Level:  cfg.Log.Level,
	})
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.New(ctx, cfg.Database.URL, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	migrator, err := st.Migrator()
	if err != nil {
		return err
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		return err
	}
	_ = migrator.Close()

	deps := newDeps(st.Pool(), cfg.Session.TTL, logger)
	go pruneSessions(ctx, deps.Sessions, logger)

	ready := func() bool {
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return st.Ping(pingCtx) == nil
	}

	obs := observability.NewServer(cfg.Observability.Addr, ready, logger)
	errCh, err := obs.Start()
	if err != nil {
		return err
	}

	logger.Info("lorekeep serving", "observability_addr", obs.Addr())

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case serveErr, ok := <-errCh:
		if ok && serveErr != nil {
			return oops.With("operation", "observability server").Wrap(serveErr)
		}
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return obs.Stop(stopCtx)
}

// pruneSessions deletes expired sessions periodically until ctx is done.
func pruneSessions(ctx context.Context, sessions *auth.SessionStore, logger *slog.Logger) {
	ticker := time.NewTicker(sessionPruneEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pruneCtx, cancel := context.WithTimeout(ctx, sessionPruneTimeout)
			pruned, err := sessions.PruneExpired(pruneCtx)
			cancel()
			if err != nil {
				logger.Warn("session prune failed", "error", err)
				continue
			}
			if pruned > 0 {
				logger.Info("pruned expired sessions", "count", pruned)
			}
		}
	}
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

// Package store provides the PostgreSQL connection pool and schema
// management shared by the repositories.
package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// Connection defaults.
const (
	DefaultMaxConns       = 10
	DefaultConnectTimeout = 30 * time.Second
)

// pinger is the subset of the pool used by readiness checks. It matches
// pgxmock's pool interface so tests run without a database.
type pinger interface {
	Ping(ctx context.Context) error
}

// Store owns the connection pool handed to the repositories.
type Store struct {
	pool   *pgxpool.Pool
	dsn    string
	logger *slog.Logger
}

// New connects to PostgreSQL and waits for the database to accept
// connections, backing off between attempts. The dsn is kept for the
// migrator, which manages its own connection.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, oops.Code("STORE_CONFIG_INVALID").With("operation", "parse pool config").Wrap(err)
	}
	if cfg.MaxConns == 0 {
		cfg.MaxConns = DefaultMaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, oops.Code("STORE_CONNECT_FAILED").With("operation", "create pool").Wrap(err)
	}

	if err := waitReady(ctx, pool, logger); err != nil {
		pool.Close()
		return nil, err
	}

	return &Store{pool: pool, dsn: dsn, logger: logger}, nil
}

// Pool returns the underlying connection pool.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Migrator returns a schema migrator bound to this store's database.
func (s *Store) Migrator() (*Migrator, error) {
	return NewMigrator(s.dsn)
}

// Ping checks database liveness.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return oops.Code("STORE_PING_FAILED").Wrap(err)
	}
	return nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// waitReady pings the database with fibonacci backoff until it responds or
// the timeout elapses. Databases routinely come up after the process under
// container orchestration.
func waitReady(ctx context.Context, p pinger, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultConnectTimeout)
	defer cancel()

	backoff := retry.NewFibonacci(250 * time.Millisecond)
	backoff = retry.WithMaxDuration(DefaultConnectTimeout, backoff)

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := p.Ping(ctx); err != nil {
			logger.DebugContext(ctx, "database not ready, retrying", "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return oops.Code("STORE_CONNECT_FAILED").
			With("operation", "wait for database").
			Wrap(err)
	}
	return nil
}

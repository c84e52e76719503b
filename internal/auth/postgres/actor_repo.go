// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/lorekeep/lorekeep/internal/auth"
	"github.com/lorekeep/lorekeep/internal/world"
)

// ActorRepository implements auth.ActorRepository using PostgreSQL.
type ActorRepository struct {
	pool *pgxpool.Pool
}

// NewActorRepository creates a new ActorRepository.
func NewActorRepository(pool *pgxpool.Pool) *ActorRepository {
	return &ActorRepository{pool: pool}
}

// Get retrieves an actor by ID.
func (r *ActorRepository) Get(ctx context.Context, id ulid.ULID) (*auth.Actor, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, system_role, created_at FROM actors WHERE id = $1
	`, id.String())

	var a auth.Actor
	var idStr, roleStr string
	err := row.Scan(&idStr, &roleStr, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("NOT_FOUND").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get actor").With("id", id.String()).Wrap(err)
	}

	if a.ID, err = ulid.Parse(idStr); err != nil {
		return nil, oops.With("operation", "parse actor id").With("id", idStr).Wrap(err)
	}
	a.SystemRole = auth.SystemRole(roleStr)
	return &a, nil
}

// Create persists a new actor.
func (r *ActorRepository) Create(ctx context.Context, a *auth.Actor) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO actors (id, system_role, created_at) VALUES ($1, $2, $3)
	`, a.ID.String(), string(a.SystemRole), a.CreatedAt)
	if err != nil {
		return oops.With("operation", "create actor").With("id", a.ID.String()).Wrap(err)
	}
	return nil
}

// Compile-time interface check.
var _ auth.ActorRepository = (*ActorRepository)(nil)

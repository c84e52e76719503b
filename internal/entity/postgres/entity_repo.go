// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

// Package postgres implements the entity repository using PostgreSQL.
package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/lorekeep/lorekeep/internal/access"
	"github.com/lorekeep/lorekeep/internal/entity"
	"github.com/lorekeep/lorekeep/internal/world"
)

// EntityRepository implements entity.Repository using PostgreSQL. Access
// policies are stored as a JSONB document alongside the entity row so reads
// fetch the entity and its grants in one round trip.
type EntityRepository struct {
	pool *pgxpool.Pool
}

// NewEntityRepository creates a new EntityRepository.
func NewEntityRepository(pool *pgxpool.Pool) *EntityRepository {
	return &EntityRepository{pool: pool}
}

// Get retrieves an entity with its access policy.
func (r *EntityRepository) Get(ctx context.Context, id ulid.ULID) (*entity.Entity, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, world_id, name, policy, created_by, created_at
		FROM entities WHERE id = $1
	`, id.String())

	var e entity.Entity
	var idStr, worldIDStr, createdByStr string
	var policyJSON []byte
	err := row.Scan(&idStr, &worldIDStr, &e.Name, &policyJSON, &createdByStr, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("NOT_FOUND").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get entity").With("id", id.String()).Wrap(err)
	}

	if e.ID, err = ulid.Parse(idStr); err != nil {
		return nil, oops.With("operation", "parse entity id").With("id", idStr).Wrap(err)
	}
	if e.WorldID, err = ulid.Parse(worldIDStr); err != nil {
		return nil, oops.With("operation", "parse world_id").With("world_id", worldIDStr).Wrap(err)
	}
	if e.CreatedBy, err = ulid.Parse(createdByStr); err != nil {
		return nil, oops.With("operation", "parse created_by").With("created_by", createdByStr).Wrap(err)
	}
	if err := json.Unmarshal(policyJSON, &e.Policy); err != nil {
		return nil, oops.With("operation", "decode entity policy").With("id", idStr).Wrap(err)
	}
	return &e, nil
}

// Create persists a new entity and its policy.
// Callers must validate the entity before calling this method.
func (r *EntityRepository) Create(ctx context.Context, e *entity.Entity) error {
	policyJSON, err := json.Marshal(e.Policy)
	if err != nil {
		return oops.With("operation", "encode entity policy").With("id", e.ID.String()).Wrap(err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO entities (id, world_id, name, policy, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, e.ID.String(), e.WorldID.String(), e.Name, policyJSON, e.CreatedBy.String(), e.CreatedAt)
	if err != nil {
		return oops.With("operation", "create entity").With("id", e.ID.String()).Wrap(err)
	}
	return nil
}

// UpdatePolicy replaces the entity's access policy.
func (r *EntityRepository) UpdatePolicy(ctx context.Context, id ulid.ULID, pol access.Policy) error {
	policyJSON, err := json.Marshal(pol)
	if err != nil {
		return oops.With("operation", "encode entity policy").With("id", id.String()).Wrap(err)
	}

	result, err := r.pool.Exec(ctx, `
		UPDATE entities SET policy = $2 WHERE id = $1
	`, id.String(), policyJSON)
	if err != nil {
		return oops.With("operation", "update entity policy").With("id", id.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("NOT_FOUND").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	return nil
}

// Delete removes an entity. Notes and mentions cascade via foreign keys.
func (r *EntityRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM entities WHERE id = $1`, id.String())
	if err != nil {
		return oops.With("operation", "delete entity").With("id", id.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("NOT_FOUND").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	return nil
}

// Compile-time interface check.
var _ entity.Repository = (*EntityRepository)(nil)

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

	"github.com/lorekeep/lorekeep/internal/atlas"
	"github.com/lorekeep/lorekeep/internal/world"
)

// TypeRepository implements atlas.TypeRepository using PostgreSQL. Rule rows
// are append-only; reads order by id so log order follows creation order.
type TypeRepository struct {
	pool *pgxpool.Pool
}

// NewTypeRepository creates a new TypeRepository.
func NewTypeRepository(pool *pgxpool.Pool) *TypeRepository {
	return &TypeRepository{pool: pool}
}

// GetType retrieves a location type.
func (r *TypeRepository) GetType(ctx context.Context, id ulid.ULID) (*atlas.LocationType, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, world_id, name, created_at
		FROM location_types WHERE id = $1
	`, id.String())

	var t atlas.LocationType
	var idStr, worldIDStr string
	err := row.Scan(&idStr, &worldIDStr, &t.Name, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("NOT_FOUND").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get location type").With("id", id.String()).Wrap(err)
	}

	if t.ID, err = ulid.Parse(idStr); err != nil {
		return nil, oops.With("operation", "parse type id").With("id", idStr).Wrap(err)
	}
	if t.WorldID, err = ulid.Parse(worldIDStr); err != nil {
		return nil, oops.With("operation", "parse world_id").With("world_id", worldIDStr).Wrap(err)
	}
	return &t, nil
}

// FindTypeByName retrieves a world's location type by its unique name.
// Used by the seed command to resolve rule pack references.
func (r *TypeRepository) FindTypeByName(ctx context.Context, worldID ulid.ULID, name string) (*atlas.LocationType, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, world_id, name, created_at
		FROM location_types WHERE world_id = $1 AND name = $2
	`, worldID.String(), name)

	var t atlas.LocationType
	var idStr, worldIDStr string
	err := row.Scan(&idStr, &worldIDStr, &t.Name, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("NOT_FOUND").With("name", name).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "find location type by name").With("name", name).Wrap(err)
	}

	if t.ID, err = ulid.Parse(idStr); err != nil {
		return nil, oops.With("operation", "parse type id").With("id", idStr).Wrap(err)
	}
	if t.WorldID, err = ulid.Parse(worldIDStr); err != nil {
		return nil, oops.With("operation", "parse world_id").With("world_id", worldIDStr).Wrap(err)
	}
	return &t, nil
}

// CreateType persists a new location type.
func (r *TypeRepository) CreateType(ctx context.Context, t *atlas.LocationType) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO location_types (id, world_id, name, created_at)
		VALUES ($1, $2, $3, $4)
	`, t.ID.String(), t.WorldID.String(), t.Name, t.CreatedAt)
	if err != nil {
		return oops.With("operation", "create location type").With("id", t.ID.String()).Wrap(err)
	}
	return nil
}

// AppendRule appends a rule row; earlier rows for the same pair are kept.
func (r *TypeRepository) AppendRule(ctx context.Context, rule *atlas.TypeRule) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO location_type_rules (id, world_id, parent_type_id, child_type_id, allowed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, rule.ID.String(), rule.WorldID.String(), rule.ParentTypeID.String(),
		rule.ChildTypeID.String(), rule.Allowed, rule.CreatedAt)
	if err != nil {
		return oops.With("operation", "append type rule").With("id", rule.ID.String()).Wrap(err)
	}
	return nil
}

// RulesForPair returns all rule rows for the exact ordered pair in creation
// order.
func (r *TypeRepository) RulesForPair(ctx context.Context, parentTypeID, childTypeID ulid.ULID) ([]atlas.TypeRule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, world_id, parent_type_id, child_type_id, allowed, created_at
		FROM location_type_rules
		WHERE parent_type_id = $1 AND child_type_id = $2
		ORDER BY id
	`, parentTypeID.String(), childTypeID.String())
	if err != nil {
		return nil, oops.With("operation", "list rules for pair").
			With("parent_type_id", parentTypeID.String()).
			With("child_type_id", childTypeID.String()).
			Wrap(err)
	}
	defer rows.Close()

	return scanRules(rows)
}

// RulesForWorld returns all rule rows of a world in creation order.
func (r *TypeRepository) RulesForWorld(ctx context.Context, worldID ulid.ULID) ([]atlas.TypeRule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, world_id, parent_type_id, child_type_id, allowed, created_at
		FROM location_type_rules WHERE world_id = $1 ORDER BY id
	`, worldID.String())
	if err != nil {
		return nil, oops.With("operation", "list rules for world").
			With("world_id", worldID.String()).
			Wrap(err)
	}
	defer rows.Close()

	return scanRules(rows)
}

func scanRules(rows pgx.Rows) ([]atlas.TypeRule, error) {
	rules := make([]atlas.TypeRule, 0)
	for rows.Next() {
		var rule atlas.TypeRule
		var idStr, worldIDStr, parentStr, childStr string
		if err := rows.Scan(&idStr, &worldIDStr, &parentStr, &childStr, &rule.Allowed, &rule.CreatedAt); err != nil {
			return nil, oops.With("operation", "scan type rule").Wrap(err)
		}

		var err error
		if rule.ID, err = ulid.Parse(idStr); err != nil {
			return nil, oops.With("operation", "parse rule id").With("id", idStr).Wrap(err)
		}
		if rule.WorldID, err = ulid.Parse(worldIDStr); err != nil {
			return nil, oops.With("operation", "parse world_id").With("world_id", worldIDStr).Wrap(err)
		}
		if rule.ParentTypeID, err = ulid.Parse(parentStr); err != nil {
			return nil, oops.With("operation", "parse parent_type_id").With("parent_type_id", parentStr).Wrap(err)
		}
		if rule.ChildTypeID, err = ulid.Parse(childStr); err != nil {
			return nil, oops.With("operation", "parse child_type_id").With("child_type_id", childStr).Wrap(err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate type rules").Wrap(err)
	}
	return rules, nil
}

// Compile-time interface check.
var _ atlas.TypeRepository = (*TypeRepository)(nil)

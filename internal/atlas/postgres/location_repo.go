// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

// Package postgres implements the atlas repositories using PostgreSQL.
package postgres

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/lorekeep/lorekeep/internal/atlas"
	"github.com/lorekeep/lorekeep/internal/world"
)

// LocationRepository implements atlas.LocationRepository using PostgreSQL.
type LocationRepository struct {
	pool *pgxpool.Pool
}

// NewLocationRepository creates a new LocationRepository.
func NewLocationRepository(pool *pgxpool.Pool) *LocationRepository {
	return &LocationRepository{pool: pool}
}

// Get retrieves a location with its access policy.
func (r *LocationRepository) Get(ctx context.Context, id ulid.ULID) (*atlas.Location, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, world_id, type_id, parent_id, name, policy, created_by, created_at
		FROM locations WHERE id = $1
	`, id.String())

	loc, err := scanLocationRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("NOT_FOUND").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get location").With("id", id.String()).Wrap(err)
	}
	return loc, nil
}

// Create persists a new location.
// Callers run hierarchy validation before this method.
func (r *LocationRepository) Create(ctx context.Context, l *atlas.Location) error {
	policyJSON, err := json.Marshal(l.Policy)
	if err != nil {
		return oops.With("operation", "encode location policy").With("id", l.ID.String()).Wrap(err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO locations (id, world_id, type_id, parent_id, name, policy, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, l.ID.String(), l.WorldID.String(), l.TypeID.String(), ulidToStringPtr(l.ParentID),
		l.Name, policyJSON, l.CreatedBy.String(), l.CreatedAt)
	if err != nil {
		return oops.With("operation", "create location").With("id", l.ID.String()).Wrap(err)
	}
	return nil
}

// Reparent moves a location under a new parent. Moves within a world are
// serialized through an advisory lock so two concurrent reparents cannot
// jointly create a cycle the per-move check would miss.
func (r *LocationRepository) Reparent(ctx context.Context, id ulid.ULID, newParentID *ulid.ULID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return oops.Code("TX_BEGIN_FAILED").Wrap(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	var worldIDStr string
	err = tx.QueryRow(ctx, `SELECT world_id FROM locations WHERE id = $1`, id.String()).Scan(&worldIDStr)
	if errors.Is(err, pgx.ErrNoRows) {
		return oops.Code("NOT_FOUND").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return oops.With("operation", "look up location world").With("id", id.String()).Wrap(err)
	}

	worldID, err := ulid.Parse(worldIDStr)
	if err != nil {
		return oops.With("operation", "parse world_id").With("world_id", worldIDStr).Wrap(err)
	}
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, worldLockKey(worldID)); err != nil {
		return oops.With("operation", "acquire world reparent lock").
			With("world_id", worldIDStr).
			Wrap(err)
	}

	// Re-check for a cycle under the lock. The caller's pure check ran
	// against an unlocked snapshot; a concurrent move may have changed the
	// chain since.
	if newParentID != nil {
		if err := checkNoCycleInTx(ctx, tx, id, *newParentID); err != nil {
			return err
		}
	}

	result, err := tx.Exec(ctx, `
		UPDATE locations SET parent_id = $2 WHERE id = $1
	`, id.String(), ulidToStringPtr(newParentID))
	if err != nil {
		return oops.With("operation", "reparent location").With("id", id.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("NOT_FOUND").With("id", id.String()).Wrap(world.ErrNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return oops.Code("TX_COMMIT_FAILED").Wrap(err)
	}
	return nil
}

// AncestorChain returns the ordered ancestor ids of a location, nearest
// first, via a recursive CTE over parent pointers.
func (r *LocationRepository) AncestorChain(ctx context.Context, id ulid.ULID) ([]ulid.ULID, error) {
	rows, err := r.pool.Query(ctx, `
		WITH RECURSIVE ancestors AS (
			SELECT parent_id, 1 AS depth FROM locations WHERE id = $1
			UNION ALL
			SELECT l.parent_id, a.depth + 1
			FROM locations l
			JOIN ancestors a ON l.id = a.parent_id
			WHERE a.parent_id IS NOT NULL
		)
		SELECT parent_id FROM ancestors WHERE parent_id IS NOT NULL ORDER BY depth
	`, id.String())
	if err != nil {
		return nil, oops.With("operation", "ancestor chain").With("id", id.String()).Wrap(err)
	}
	defer rows.Close()

	var chain []ulid.ULID
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, oops.With("operation", "scan ancestor id").Wrap(err)
		}
		ancestorID, err := ulid.Parse(s)
		if err != nil {
			return nil, oops.With("operation", "parse ancestor id").With("id", s).Wrap(err)
		}
		chain = append(chain, ancestorID)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate ancestor chain").Wrap(err)
	}
	return chain, nil
}

// SnapshotWorld loads every location in a world into an arena.
func (r *LocationRepository) SnapshotWorld(ctx context.Context, worldID ulid.ULID) (atlas.Arena, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, world_id, type_id, parent_id, name, policy, created_by, created_at
		FROM locations WHERE world_id = $1
	`, worldID.String())
	if err != nil {
		return nil, oops.With("operation", "snapshot world locations").
			With("world_id", worldID.String()).
			Wrap(err)
	}
	defer rows.Close()

	arena := atlas.Arena{}
	for rows.Next() {
		loc, err := scanLocationRow(rows)
		if err != nil {
			return nil, oops.With("operation", "scan location row").Wrap(err)
		}
		arena[loc.ID] = loc
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate locations").Wrap(err)
	}
	return arena, nil
}

// Delete removes a location and its dependents.
func (r *LocationRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM locations WHERE id = $1`, id.String())
	if err != nil {
		return oops.With("operation", "delete location").With("id", id.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("NOT_FOUND").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	return nil
}

// checkNoCycleInTx walks the new parent's ancestor chain inside the
// transaction and rejects the move if the location appears in it.
func checkNoCycleInTx(ctx context.Context, tx pgx.Tx, id, newParentID ulid.ULID) error {
	if newParentID == id {
		return reparentCycleError(id, newParentID)
	}

	var cyclic bool
	err := tx.QueryRow(ctx, `
		WITH RECURSIVE ancestors AS (
			SELECT id, parent_id FROM locations WHERE id = $2
			UNION ALL
			SELECT l.id, l.parent_id
			FROM locations l
			JOIN ancestors a ON l.id = a.parent_id
		)
		SELECT EXISTS (SELECT 1 FROM ancestors WHERE id = $1)
	`, id.String(), newParentID.String()).Scan(&cyclic)
	if err != nil {
		return oops.With("operation", "reparent cycle check").With("id", id.String()).Wrap(err)
	}
	if cyclic {
		return reparentCycleError(id, newParentID)
	}
	return nil
}

func reparentCycleError(id, newParentID ulid.ULID) error {
	return oops.Code("CONFLICT_CYCLE").
		With("location_id", id.String()).
		With("new_parent_id", newParentID.String()).
		Errorf("reparent would create a cycle")
}

// worldLockKey folds a world ULID into the int64 advisory-lock keyspace.
func worldLockKey(worldID ulid.ULID) int64 {
	b := worldID.Bytes()
	return int64(binary.BigEndian.Uint64(b[8:]))
}

// scanLocationRow scans one location from a row.
func scanLocationRow(row pgx.Row) (*atlas.Location, error) {
	var loc atlas.Location
	var idStr, worldIDStr, typeIDStr, createdByStr string
	var parentIDStr *string
	var policyJSON []byte

	err := row.Scan(&idStr, &worldIDStr, &typeIDStr, &parentIDStr, &loc.Name, &policyJSON, &createdByStr, &loc.CreatedAt)
	if err != nil {
		// Propagate pgx.ErrNoRows unchanged for callers to handle with context.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.With("operation", "scan location").Wrap(err)
	}

	if loc.ID, err = ulid.Parse(idStr); err != nil {
		return nil, oops.With("operation", "parse location id").With("id", idStr).Wrap(err)
	}
	if loc.WorldID, err = ulid.Parse(worldIDStr); err != nil {
		return nil, oops.With("operation", "parse world_id").With("world_id", worldIDStr).Wrap(err)
	}
	if loc.TypeID, err = ulid.Parse(typeIDStr); err != nil {
		return nil, oops.With("operation", "parse type_id").With("type_id", typeIDStr).Wrap(err)
	}
	if loc.CreatedBy, err = ulid.Parse(createdByStr); err != nil {
		return nil, oops.With("operation", "parse created_by").With("created_by", createdByStr).Wrap(err)
	}
	if parentIDStr != nil {
		parentID, err := ulid.Parse(*parentIDStr)
		if err != nil {
			return nil, oops.With("operation", "parse parent_id").With("parent_id", *parentIDStr).Wrap(err)
		}
		loc.ParentID = &parentID
	}
	if err := json.Unmarshal(policyJSON, &loc.Policy); err != nil {
		return nil, oops.With("operation", "decode location policy").With("id", idStr).Wrap(err)
	}
	return &loc, nil
}

// ulidToStringPtr converts a ULID pointer to a string pointer for SQL
// parameters. Returns nil if the input is nil.
func ulidToStringPtr(id *ulid.ULID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

// Compile-time interface check.
var _ atlas.LocationRepository = (*LocationRepository)(nil)

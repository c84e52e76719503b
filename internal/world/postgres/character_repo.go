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

	"github.com/lorekeep/lorekeep/internal/world"
)

// CharacterRepository implements world.CharacterRepository using PostgreSQL.
type CharacterRepository struct {
	pool *pgxpool.Pool
}

// NewCharacterRepository creates a new CharacterRepository.
func NewCharacterRepository(pool *pgxpool.Pool) *CharacterRepository {
	return &CharacterRepository{pool: pool}
}

// Get retrieves a character by ID.
func (r *CharacterRepository) Get(ctx context.Context, id ulid.ULID) (*world.Character, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, world_id, player_id, name, created_at
		FROM characters WHERE id = $1
	`, id.String())

	var c world.Character
	var idStr, worldIDStr, playerIDStr string
	err := row.Scan(&idStr, &worldIDStr, &playerIDStr, &c.Name, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("NOT_FOUND").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get character").With("id", id.String()).Wrap(err)
	}

	if c.ID, err = parseULID(idStr, "id"); err != nil {
		return nil, err
	}
	if c.WorldID, err = parseULID(worldIDStr, "world_id"); err != nil {
		return nil, err
	}
	if c.PlayerID, err = parseULID(playerIDStr, "player_id"); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create persists a new character.
// Callers must validate the character before calling this method.
func (r *CharacterRepository) Create(ctx context.Context, c *world.Character) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO characters (id, world_id, player_id, name, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, c.ID.String(), c.WorldID.String(), c.PlayerID.String(), c.Name, c.CreatedAt)
	if err != nil {
		return oops.With("operation", "create character").With("id", c.ID.String()).Wrap(err)
	}
	return nil
}

// ListOwnedBy returns the IDs of characters the player owns in a world.
func (r *CharacterRepository) ListOwnedBy(ctx context.Context, worldID, playerID ulid.ULID) ([]ulid.ULID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id FROM characters WHERE world_id = $1 AND player_id = $2 ORDER BY id
	`, worldID.String(), playerID.String())
	if err != nil {
		return nil, oops.With("operation", "list characters owned by").
			With("world_id", worldID.String()).
			With("player_id", playerID.String()).
			Wrap(err)
	}
	defer rows.Close()

	return scanIDList(rows, "id")
}

// Compile-time interface check.
var _ world.CharacterRepository = (*CharacterRepository)(nil)

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

// Delegate list tables, all keyed (world_id, user_id).
const (
	tableArchitects        = "world_architects"
	tableCampaignCreators  = "world_campaign_creators"
	tableCharacterCreators = "world_character_creators"
)

// WorldRepository implements world.WorldRepository using PostgreSQL.
type WorldRepository struct {
	pool *pgxpool.Pool
}

// NewWorldRepository creates a new WorldRepository.
func NewWorldRepository(pool *pgxpool.Pool) *WorldRepository {
	return &WorldRepository{pool: pool}
}

// Get retrieves a world with its architect and delegate sets.
func (r *WorldRepository) Get(ctx context.Context, id ulid.ULID) (*world.World, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, primary_architect_id, created_at
		FROM worlds WHERE id = $1
	`, id.String())

	var w world.World
	var idStr, architectStr string
	err := row.Scan(&idStr, &w.Name, &architectStr, &w.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("NOT_FOUND").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get world").With("id", id.String()).Wrap(err)
	}

	if w.ID, err = parseULID(idStr, "id"); err != nil {
		return nil, err
	}
	if w.PrimaryArchitectID, err = parseULID(architectStr, "primary_architect_id"); err != nil {
		return nil, err
	}

	if w.ArchitectIDs, err = r.listDelegates(ctx, tableArchitects, id); err != nil {
		return nil, err
	}
	if w.CampaignCreatorIDs, err = r.listDelegates(ctx, tableCampaignCreators, id); err != nil {
		return nil, err
	}
	if w.CharacterCreatorIDs, err = r.listDelegates(ctx, tableCharacterCreators, id); err != nil {
		return nil, err
	}
	return &w, nil
}

// Create persists a new world and its delegate sets.
// Callers must validate the world before calling this method.
func (r *WorldRepository) Create(ctx context.Context, w *world.World) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return oops.Code("TX_BEGIN_FAILED").Wrap(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	_, err = tx.Exec(ctx, `
		INSERT INTO worlds (id, name, primary_architect_id, created_at)
		VALUES ($1, $2, $3, $4)
	`, w.ID.String(), w.Name, w.PrimaryArchitectID.String(), w.CreatedAt)
	if err != nil {
		return oops.With("operation", "create world").With("id", w.ID.String()).Wrap(err)
	}

	if err := replaceDelegates(ctx, tx, tableArchitects, w.ID, w.ArchitectIDs); err != nil {
		return err
	}
	if err := replaceDelegates(ctx, tx, tableCampaignCreators, w.ID, w.CampaignCreatorIDs); err != nil {
		return err
	}
	if err := replaceDelegates(ctx, tx, tableCharacterCreators, w.ID, w.CharacterCreatorIDs); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return oops.Code("TX_COMMIT_FAILED").Wrap(err)
	}
	return nil
}

// SetArchitects replaces the additional-architect set.
func (r *WorldRepository) SetArchitects(ctx context.Context, worldID ulid.ULID, architectIDs []ulid.ULID) error {
	return r.replaceInTx(ctx, tableArchitects, worldID, architectIDs)
}

// SetCampaignCreators replaces the campaign-creator delegate set.
func (r *WorldRepository) SetCampaignCreators(ctx context.Context, worldID ulid.ULID, userIDs []ulid.ULID) error {
	return r.replaceInTx(ctx, tableCampaignCreators, worldID, userIDs)
}

// SetCharacterCreators replaces the character-creator delegate set.
func (r *WorldRepository) SetCharacterCreators(ctx context.Context, worldID ulid.ULID, userIDs []ulid.ULID) error {
	return r.replaceInTx(ctx, tableCharacterCreators, worldID, userIDs)
}

func (r *WorldRepository) listDelegates(ctx context.Context, table string, worldID ulid.ULID) ([]ulid.ULID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id FROM `+table+` WHERE world_id = $1 ORDER BY user_id`,
		worldID.String())
	if err != nil {
		return nil, oops.With("operation", "list "+table).With("world_id", worldID.String()).Wrap(err)
	}
	defer rows.Close()

	return scanIDList(rows, "user_id")
}

func (r *WorldRepository) replaceInTx(ctx context.Context, table string, worldID ulid.ULID, userIDs []ulid.ULID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return oops.Code("TX_BEGIN_FAILED").Wrap(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if err := replaceDelegates(ctx, tx, table, worldID, userIDs); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return oops.Code("TX_COMMIT_FAILED").Wrap(err)
	}
	return nil
}

// replaceDelegates swaps the full delegate set for a world within tx.
func replaceDelegates(ctx context.Context, tx pgx.Tx, table string, worldID ulid.ULID, userIDs []ulid.ULID) error {
	_, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE world_id = $1`, worldID.String())
	if err != nil {
		return oops.With("operation", "clear "+table).With("world_id", worldID.String()).Wrap(err)
	}
	for _, userID := range userIDs {
		_, err := tx.Exec(ctx,
			`INSERT INTO `+table+` (world_id, user_id) VALUES ($1, $2)`,
			worldID.String(), userID.String())
		if err != nil {
			return oops.With("operation", "insert "+table).
				With("world_id", worldID.String()).
				With("user_id", userID.String()).
				Wrap(err)
		}
	}
	return nil
}

// Compile-time interface check.
var _ world.WorldRepository = (*WorldRepository)(nil)

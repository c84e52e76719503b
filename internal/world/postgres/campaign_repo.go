// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/lorekeep/lorekeep/internal/world"
)

// CampaignRepository implements world.CampaignRepository using PostgreSQL.
type CampaignRepository struct {
	pool *pgxpool.Pool
}

// NewCampaignRepository creates a new CampaignRepository.
func NewCampaignRepository(pool *pgxpool.Pool) *CampaignRepository {
	return &CampaignRepository{pool: pool}
}

// Get retrieves a campaign with its roster and delegate sets.
func (r *CampaignRepository) Get(ctx context.Context, id ulid.ULID) (*world.Campaign, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, world_id, name, owner_id, created_by_id, gm_user_id, created_at
		FROM campaigns WHERE id = $1
	`, id.String())

	c, err := scanCampaignRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("NOT_FOUND").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get campaign").With("id", id.String()).Wrap(err)
	}

	if c.CharacterCreatorIDs, err = r.listCharacterCreators(ctx, id); err != nil {
		return nil, err
	}
	if c.Roster, err = r.listRoster(ctx, id); err != nil {
		return nil, err
	}
	return c, nil
}

// Create persists a new campaign.
// Callers must validate the campaign before calling this method.
func (r *CampaignRepository) Create(ctx context.Context, c *world.Campaign) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return oops.Code("TX_BEGIN_FAILED").Wrap(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	_, err = tx.Exec(ctx, `
		INSERT INTO campaigns (id, world_id, name, owner_id, created_by_id, gm_user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, c.ID.String(), c.WorldID.String(), c.Name, c.OwnerID.String(),
		c.CreatedByID.String(), c.GMUserID.String(), c.CreatedAt)
	if err != nil {
		return oops.With("operation", "create campaign").With("id", c.ID.String()).Wrap(err)
	}

	for _, userID := range c.CharacterCreatorIDs {
		_, err := tx.Exec(ctx, `
			INSERT INTO campaign_character_creators (campaign_id, user_id) VALUES ($1, $2)
		`, c.ID.String(), userID.String())
		if err != nil {
			return oops.With("operation", "insert campaign character creator").
				With("campaign_id", c.ID.String()).
				Wrap(err)
		}
	}
	for _, entry := range c.Roster {
		_, err := tx.Exec(ctx, `
			INSERT INTO campaign_roster (campaign_id, character_id, status, joined_at)
			VALUES ($1, $2, $3, $4)
		`, c.ID.String(), entry.CharacterID.String(), string(entry.Status), entry.JoinedAt)
		if err != nil {
			return oops.With("operation", "insert roster entry").
				With("campaign_id", c.ID.String()).
				With("character_id", entry.CharacterID.String()).
				Wrap(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return oops.Code("TX_COMMIT_FAILED").Wrap(err)
	}
	return nil
}

// SetRosterStatus upserts a roster entry for a character.
func (r *CampaignRepository) SetRosterStatus(ctx context.Context, campaignID, characterID ulid.ULID, status world.RosterStatus) error {
	if err := status.Validate(); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO campaign_roster (campaign_id, character_id, status, joined_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (campaign_id, character_id) DO UPDATE SET status = EXCLUDED.status
	`, campaignID.String(), characterID.String(), string(status), time.Now())
	if err != nil {
		return oops.With("operation", "set roster status").
			With("campaign_id", campaignID.String()).
			With("character_id", characterID.String()).
			Wrap(err)
	}
	return nil
}

// ListByWorld returns all campaigns in a world with their rosters.
func (r *CampaignRepository) ListByWorld(ctx context.Context, worldID ulid.ULID) ([]*world.Campaign, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, world_id, name, owner_id, created_by_id, gm_user_id, created_at
		FROM campaigns WHERE world_id = $1 ORDER BY created_at DESC
	`, worldID.String())
	if err != nil {
		return nil, oops.With("operation", "list campaigns by world").
			With("world_id", worldID.String()).
			Wrap(err)
	}
	defer rows.Close()

	var campaigns []*world.Campaign
	for rows.Next() {
		c, err := scanCampaignRow(rows)
		if err != nil {
			return nil, oops.With("operation", "scan campaign row").Wrap(err)
		}
		campaigns = append(campaigns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate campaigns").Wrap(err)
	}

	for _, c := range campaigns {
		if c.CharacterCreatorIDs, err = r.listCharacterCreators(ctx, c.ID); err != nil {
			return nil, err
		}
		if c.Roster, err = r.listRoster(ctx, c.ID); err != nil {
			return nil, err
		}
	}
	return campaigns, nil
}

func (r *CampaignRepository) listCharacterCreators(ctx context.Context, campaignID ulid.ULID) ([]ulid.ULID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id FROM campaign_character_creators WHERE campaign_id = $1 ORDER BY user_id
	`, campaignID.String())
	if err != nil {
		return nil, oops.With("operation", "list campaign character creators").
			With("campaign_id", campaignID.String()).
			Wrap(err)
	}
	defer rows.Close()

	return scanIDList(rows, "user_id")
}

func (r *CampaignRepository) listRoster(ctx context.Context, campaignID ulid.ULID) ([]world.RosterEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT character_id, status, joined_at
		FROM campaign_roster WHERE campaign_id = $1 ORDER BY joined_at
	`, campaignID.String())
	if err != nil {
		return nil, oops.With("operation", "list roster").
			With("campaign_id", campaignID.String()).
			Wrap(err)
	}
	defer rows.Close()

	var roster []world.RosterEntry
	for rows.Next() {
		var entry world.RosterEntry
		var charIDStr, statusStr string
		if err := rows.Scan(&charIDStr, &statusStr, &entry.JoinedAt); err != nil {
			return nil, oops.With("operation", "scan roster entry").Wrap(err)
		}
		if entry.CharacterID, err = parseULID(charIDStr, "character_id"); err != nil {
			return nil, err
		}
		entry.Status = world.RosterStatus(statusStr)
		roster = append(roster, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate roster").Wrap(err)
	}
	return roster, nil
}

// scanCampaignRow scans one campaign row without its roster or delegates.
func scanCampaignRow(row pgx.Row) (*world.Campaign, error) {
	var c world.Campaign
	var idStr, worldIDStr, ownerStr, createdByStr, gmStr string

	err := row.Scan(&idStr, &worldIDStr, &c.Name, &ownerStr, &createdByStr, &gmStr, &c.CreatedAt)
	if err != nil {
		// Propagate pgx.ErrNoRows unchanged for callers to handle with context.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.With("operation", "scan campaign").Wrap(err)
	}

	if c.ID, err = parseULID(idStr, "id"); err != nil {
		return nil, err
	}
	if c.WorldID, err = parseULID(worldIDStr, "world_id"); err != nil {
		return nil, err
	}
	if c.OwnerID, err = parseULID(ownerStr, "owner_id"); err != nil {
		return nil, err
	}
	if c.CreatedByID, err = parseULID(createdByStr, "created_by_id"); err != nil {
		return nil, err
	}
	if c.GMUserID, err = parseULID(gmStr, "gm_user_id"); err != nil {
		return nil, err
	}
	return &c, nil
}

// Compile-time interface check.
var _ world.CampaignRepository = (*CampaignRepository)(nil)

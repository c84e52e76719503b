// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package world

import (
	"context"
	"errors"

	"github.com/oklog/ulid/v2"
)

// ErrNotFound is the sentinel wrapped by repositories when a record is absent.
var ErrNotFound = errors.New("not found")

// WorldRepository manages world persistence.
type WorldRepository interface {
	// Get retrieves a world with its architect and delegate sets.
	Get(ctx context.Context, id ulid.ULID) (*World, error)

	// Create persists a new world.
	Create(ctx context.Context, w *World) error

	// SetArchitects replaces the additional-architect set.
	SetArchitects(ctx context.Context, worldID ulid.ULID, architectIDs []ulid.ULID) error

	// SetCampaignCreators replaces the campaign-creator delegate set.
	SetCampaignCreators(ctx context.Context, worldID ulid.ULID, userIDs []ulid.ULID) error

	// SetCharacterCreators replaces the character-creator delegate set.
	SetCharacterCreators(ctx context.Context, worldID ulid.ULID, userIDs []ulid.ULID) error
}

// CampaignRepository manages campaign persistence.
type CampaignRepository interface {
	// Get retrieves a campaign with its roster and delegate sets.
	Get(ctx context.Context, id ulid.ULID) (*Campaign, error)

	// Create persists a new campaign.
	Create(ctx context.Context, c *Campaign) error

	// SetRosterStatus upserts a roster entry for a character.
	SetRosterStatus(ctx context.Context, campaignID, characterID ulid.ULID, status RosterStatus) error

	// ListByWorld returns all campaigns in a world.
	ListByWorld(ctx context.Context, worldID ulid.ULID) ([]*Campaign, error)
}

// CharacterRepository manages character persistence.
type CharacterRepository interface {
	// Get retrieves a character by ID.
	Get(ctx context.Context, id ulid.ULID) (*Character, error)

	// Create persists a new character.
	Create(ctx context.Context, c *Character) error

	// ListOwnedBy returns the IDs of characters the player owns in a world.
	ListOwnedBy(ctx context.Context, worldID, playerID ulid.ULID) ([]ulid.ULID, error)
}

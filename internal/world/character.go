// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package world

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Character is a player-owned persona scoped to one world. It participates
// in campaigns through roster entries.
type Character struct {
	ID        ulid.ULID
	WorldID   ulid.ULID
	PlayerID  ulid.ULID
	Name      string
	CreatedAt time.Time
}

// NewCharacter creates a validated Character with a generated ID.
func NewCharacter(worldID, playerID ulid.ULID, name string) (*Character, error) {
	c := &Character{
		ID:        ulid.Make(),
		WorldID:   worldID,
		PlayerID:  playerID,
		Name:      name,
		CreatedAt: time.Now(),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks that the character has required fields.
func (c *Character) Validate() error {
	if c.ID.IsZero() {
		return &ValidationError{Field: "id", Message: "cannot be zero"}
	}
	if c.WorldID.IsZero() {
		return &ValidationError{Field: "world_id", Message: "cannot be zero"}
	}
	if c.PlayerID.IsZero() {
		return &ValidationError{Field: "player_id", Message: "cannot be zero"}
	}
	return ValidateName(c.Name)
}

// IsOwnedBy reports whether the player owns this character.
func (c *Character) IsOwnedBy(playerID ulid.ULID) bool {
	return c.PlayerID == playerID
}

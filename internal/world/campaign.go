// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package world

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// RosterStatus is the participation status of a character in a campaign.
type RosterStatus string

// Roster statuses.
const (
	RosterActive   RosterStatus = "ACTIVE"
	RosterInactive RosterStatus = "INACTIVE"
)

// String returns the string representation of the roster status.
func (s RosterStatus) String() string {
	return string(s)
}

// Validate checks that the roster status is a known value.
func (s RosterStatus) Validate() error {
	switch s {
	case RosterActive, RosterInactive:
		return nil
	default:
		return &ValidationError{Field: "status", Message: "must be ACTIVE or INACTIVE"}
	}
}

// RosterEntry records a character's membership in a campaign.
type RosterEntry struct {
	CharacterID ulid.ULID
	Status      RosterStatus
	JoinedAt    time.Time
}

// Campaign is a game run inside a world. Its world never changes after
// creation.
type Campaign struct {
	ID          ulid.ULID
	WorldID     ulid.ULID
	Name        string
	OwnerID     ulid.ULID
	CreatedByID ulid.ULID
	GMUserID    ulid.ULID
	// CharacterCreatorIDs are users delegated to create characters for this
	// campaign specifically, on top of the world-level delegation.
	CharacterCreatorIDs []ulid.ULID
	Roster              []RosterEntry
	CreatedAt           time.Time
}

// NewCampaign creates a validated Campaign with a generated ID.
// The creating user becomes owner, creator, and GM until reassigned.
func NewCampaign(worldID ulid.ULID, name string, createdBy ulid.ULID) (*Campaign, error) {
	c := &Campaign{
		ID:          ulid.Make(),
		WorldID:     worldID,
		Name:        name,
		OwnerID:     createdBy,
		CreatedByID: createdBy,
		GMUserID:    createdBy,
		CreatedAt:   time.Now(),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks that the campaign has required fields.
func (c *Campaign) Validate() error {
	if c.ID.IsZero() {
		return &ValidationError{Field: "id", Message: "cannot be zero"}
	}
	if c.WorldID.IsZero() {
		return &ValidationError{Field: "world_id", Message: "cannot be zero"}
	}
	if c.OwnerID.IsZero() && c.CreatedByID.IsZero() {
		return &ValidationError{Field: "owner_id", Message: "campaign must have an owner or creator"}
	}
	for i, entry := range c.Roster {
		if entry.CharacterID.IsZero() {
			return &ValidationError{Field: "roster", Message: "entry " + itoa(i) + " character cannot be zero"}
		}
		if err := entry.Status.Validate(); err != nil {
			return err
		}
	}
	return ValidateName(c.Name)
}

// IsOwner reports whether the user owns the campaign. The original creator
// is treated as equivalent to the owner for access purposes.
func (c *Campaign) IsOwner(userID ulid.ULID) bool {
	return userID == c.OwnerID || userID == c.CreatedByID
}

// IsGM reports whether the user is the campaign's GM.
func (c *Campaign) IsGM(userID ulid.ULID) bool {
	return userID == c.GMUserID
}

// IsCharacterCreator reports whether the user is delegated to create
// characters scoped to this campaign.
func (c *Campaign) IsCharacterCreator(userID ulid.ULID) bool {
	return containsID(c.CharacterCreatorIDs, userID)
}

// RosterEntryFor returns the roster entry for the character, if any.
func (c *Campaign) RosterEntryFor(characterID ulid.ULID) (RosterEntry, bool) {
	for _, entry := range c.Roster {
		if entry.CharacterID == characterID {
			return entry, true
		}
	}
	return RosterEntry{}, false
}

// HasRosteredCharacter reports whether the character appears on the roster
// with ACTIVE status.
func (c *Campaign) HasRosteredCharacter(characterID ulid.ULID) bool {
	entry, ok := c.RosterEntryFor(characterID)
	return ok && entry.Status == RosterActive
}

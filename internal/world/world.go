// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

// Package world contains the world, campaign, and character domain types.
package world

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// World is the top-level container owning campaigns, characters, entities,
// locations, and their types.
type World struct {
	ID                 ulid.ULID
	Name               string
	PrimaryArchitectID ulid.ULID
	ArchitectIDs       []ulid.ULID
	// CampaignCreatorIDs are users delegated to create campaigns in this world.
	CampaignCreatorIDs []ulid.ULID
	// CharacterCreatorIDs are users delegated to create characters in this world.
	CharacterCreatorIDs []ulid.ULID
	CreatedAt           time.Time
}

// NewWorld creates a validated World with a generated ID.
// The primary architect is required; a world always has one.
func NewWorld(name string, primaryArchitectID ulid.ULID) (*World, error) {
	w := &World{
		ID:                 ulid.Make(),
		Name:               name,
		PrimaryArchitectID: primaryArchitectID,
		CreatedAt:          time.Now(),
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

// Validate checks that the world has required fields.
func (w *World) Validate() error {
	if w.ID.IsZero() {
		return &ValidationError{Field: "id", Message: "cannot be zero"}
	}
	if w.PrimaryArchitectID.IsZero() {
		return &ValidationError{Field: "primary_architect_id", Message: "cannot be zero"}
	}
	return ValidateName(w.Name)
}

// IsArchitect reports whether the user is the primary architect or listed
// among the world's additional architects.
func (w *World) IsArchitect(userID ulid.ULID) bool {
	if userID == w.PrimaryArchitectID {
		return true
	}
	return containsID(w.ArchitectIDs, userID)
}

// IsCampaignCreator reports whether the user is delegated to create campaigns.
func (w *World) IsCampaignCreator(userID ulid.ULID) bool {
	return containsID(w.CampaignCreatorIDs, userID)
}

// IsCharacterCreator reports whether the user is delegated to create characters.
func (w *World) IsCharacterCreator(userID ulid.ULID) bool {
	return containsID(w.CharacterCreatorIDs, userID)
}

func containsID(ids []ulid.ULID, id ulid.ULID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

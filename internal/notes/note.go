// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

// Package notes contains freeform entity notes and their visibility rules.
package notes

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

// Visibility is the fixed-at-creation visibility mode of a note.
type Visibility string

// Visibility modes.
const (
	VisibilityShared  Visibility = "SHARED"
	VisibilityPrivate Visibility = "PRIVATE"
)

// String returns the string representation of the visibility mode.
func (v Visibility) String() string {
	return string(v)
}

// Note is a freeform annotation on an entity. Notes are created by authors
// and never mutated; they are deleted when their owning entity is deleted.
type Note struct {
	ID          ulid.ULID
	EntityID    ulid.ULID
	AuthorID    ulid.ULID
	Visibility  Visibility
	CampaignID  *ulid.ULID
	CharacterID *ulid.ULID
	Body        string
	CreatedAt   time.Time
}

// Repository manages note persistence.
type Repository interface {
	// Create persists a new note. Creation-time validation happens before
	// this call.
	Create(ctx context.Context, n *Note) error

	// Get retrieves a note by ID.
	Get(ctx context.Context, id ulid.ULID) (*Note, error)

	// ListByEntity returns all notes on an entity, newest first. Visibility
	// filtering happens in the caller over this single snapshot.
	ListByEntity(ctx context.Context, entityID ulid.ULID) ([]*Note, error)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

// Package mentions resolves the visibility of note-to-entity references.
package mentions

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

// Mention is a directed edge from a source note to a target entity, created
// when note text references another entity. Mentions are never mutated.
type Mention struct {
	ID             ulid.ULID
	NoteID         ulid.ULID
	SourceEntityID ulid.ULID
	TargetEntityID ulid.ULID
	CreatedAt      time.Time
}

// Repository manages mention persistence.
type Repository interface {
	// Create persists a new mention.
	Create(ctx context.Context, m *Mention) error

	// ListByTarget returns all mentions pointing at the target entity.
	ListByTarget(ctx context.Context, targetEntityID ulid.ULID) ([]*Mention, error)
}

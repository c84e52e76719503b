// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

// Package entity contains world-scoped domain objects that carry access
// policies.
package entity

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/lorekeep/lorekeep/internal/access"
	"github.com/lorekeep/lorekeep/internal/world"
)

// Entity is a world-scoped domain object (person, faction, item, lore entry)
// protected by an access policy.
type Entity struct {
	ID        ulid.ULID
	WorldID   ulid.ULID
	Name      string
	Policy    access.Policy
	CreatedBy ulid.ULID
	CreatedAt time.Time
}

// NewEntity creates a validated Entity with a generated ID. The creator sets
// the initial access policy, subject to the creator's own authority.
func NewEntity(worldID, createdBy ulid.ULID, name string, pol access.Policy) (*Entity, error) {
	e := &Entity{
		ID:        ulid.Make(),
		WorldID:   worldID,
		Name:      name,
		Policy:    pol,
		CreatedBy: createdBy,
		CreatedAt: time.Now(),
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate checks that the entity has required fields.
func (e *Entity) Validate() error {
	if e.ID.IsZero() {
		return oops.Code("VALIDATION").Errorf("entity ID cannot be zero")
	}
	if e.WorldID.IsZero() {
		return oops.Code("VALIDATION").Errorf("entity world ID cannot be zero")
	}
	return world.ValidateName(e.Name)
}

// Repository manages entity persistence. Deleting an entity cascades its
// access policy, notes, and mentions.
type Repository interface {
	// Get retrieves an entity with its access policy.
	Get(ctx context.Context, id ulid.ULID) (*Entity, error)

	// Create persists a new entity and its policy.
	Create(ctx context.Context, e *Entity) error

	// UpdatePolicy replaces the entity's access policy. Gated by management
	// authority; the read/evaluate paths never mutate policies.
	UpdatePolicy(ctx context.Context, id ulid.ULID, pol access.Policy) error

	// Delete removes an entity and its dependents.
	Delete(ctx context.Context, id ulid.ULID) error
}

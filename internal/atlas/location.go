// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

// Package atlas contains the location tree, its type system, and the
// hierarchy validator.
package atlas

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/lorekeep/lorekeep/internal/access"
	"github.com/lorekeep/lorekeep/internal/world"
)

// LocationType is a world-scoped type tag for locations.
type LocationType struct {
	ID        ulid.ULID
	WorldID   ulid.ULID
	Name      string
	CreatedAt time.Time
}

// NewLocationType creates a validated LocationType with a generated ID.
func NewLocationType(worldID ulid.ULID, name string) (*LocationType, error) {
	t := &LocationType{
		ID:        ulid.Make(),
		WorldID:   worldID,
		Name:      name,
		CreatedAt: time.Now(),
	}
	if t.WorldID.IsZero() {
		return nil, oops.Code("VALIDATION").Errorf("location type world ID cannot be zero")
	}
	if err := world.ValidateName(t.Name); err != nil {
		return nil, err
	}
	return t, nil
}

// Location is a node in a world's location tree. The parent is held as an
// id, not a live reference; ancestor walks operate over an arena by id
// lookup so cycle checks terminate within the arena size.
type Location struct {
	ID        ulid.ULID
	WorldID   ulid.ULID
	TypeID    ulid.ULID
	ParentID  *ulid.ULID
	Name      string
	Policy    access.Policy
	CreatedBy ulid.ULID
	CreatedAt time.Time
}

// NewLocation creates a validated Location with a generated ID.
func NewLocation(worldID, typeID ulid.ULID, parentID *ulid.ULID, name string, createdBy ulid.ULID, pol access.Policy) (*Location, error) {
	l := &Location{
		ID:        ulid.Make(),
		WorldID:   worldID,
		TypeID:    typeID,
		ParentID:  parentID,
		Name:      name,
		Policy:    pol,
		CreatedBy: createdBy,
		CreatedAt: time.Now(),
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// Validate checks that the location has required fields.
func (l *Location) Validate() error {
	if l.ID.IsZero() {
		return oops.Code("VALIDATION").Errorf("location ID cannot be zero")
	}
	if l.WorldID.IsZero() {
		return oops.Code("VALIDATION").Errorf("location world ID cannot be zero")
	}
	if l.TypeID.IsZero() {
		return oops.Code("VALIDATION").Errorf("location type ID cannot be zero")
	}
	if l.ParentID != nil && l.ParentID.IsZero() {
		return oops.Code("VALIDATION").Errorf("location parent ID cannot be zero when set")
	}
	return world.ValidateName(l.Name)
}

// LocationRepository manages location persistence.
type LocationRepository interface {
	// Get retrieves a location with its access policy.
	Get(ctx context.Context, id ulid.ULID) (*Location, error)

	// Create persists a new location after hierarchy validation.
	Create(ctx context.Context, l *Location) error

	// Reparent moves a location under a new parent. Implementations must
	// serialize reparents per world so concurrent moves cannot jointly
	// create a cycle.
	Reparent(ctx context.Context, id ulid.ULID, newParentID *ulid.ULID) error

	// AncestorChain returns the ordered ancestor ids of a location, nearest
	// first, walking parent pointers to the root.
	AncestorChain(ctx context.Context, id ulid.ULID) ([]ulid.ULID, error)

	// SnapshotWorld loads every location in a world into an arena for pure
	// hierarchy checks.
	SnapshotWorld(ctx context.Context, worldID ulid.ULID) (Arena, error)

	// Delete removes a location and its dependents.
	Delete(ctx context.Context, id ulid.ULID) error
}

// TypeRepository manages location types and their pairing rules.
type TypeRepository interface {
	// GetType retrieves a location type.
	GetType(ctx context.Context, id ulid.ULID) (*LocationType, error)

	// CreateType persists a new location type.
	CreateType(ctx context.Context, t *LocationType) error

	// AppendRule appends a rule row; earlier rows for the same pair are kept.
	AppendRule(ctx context.Context, r *TypeRule) error

	// RulesForPair returns all rule rows for the exact ordered pair in
	// creation order.
	RulesForPair(ctx context.Context, parentTypeID, childTypeID ulid.ULID) ([]TypeRule, error)

	// RulesForWorld returns all rule rows of a world in creation order.
	RulesForWorld(ctx context.Context, worldID ulid.ULID) ([]TypeRule, error)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package engine

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/lorekeep/lorekeep/internal/atlas"
	"github.com/lorekeep/lorekeep/internal/auth"
)

// hierarchyFor loads one consistent snapshot of a world's rule log and
// location arena for pure hierarchy checks.
func (e *Engine) hierarchyFor(ctx context.Context, worldID ulid.ULID) (atlas.Hierarchy, error) {
	rules, err := e.types.RulesForWorld(ctx, worldID)
	if err != nil {
		return atlas.Hierarchy{}, err
	}
	arena, err := e.locations.SnapshotWorld(ctx, worldID)
	if err != nil {
		return atlas.Hierarchy{}, err
	}
	return atlas.Hierarchy{Rules: rules, Arena: arena}, nil
}

// requireWorldManagement resolves the actor's capability set and rejects
// actors without world-level authority. Location structure is world-scoped;
// its management follows world authority, not object grants.
func (e *Engine) requireWorldManagement(ctx context.Context, actor auth.Actor, worldID ulid.ULID) error {
	caps, err := e.Authority(ctx, actor, worldID, nil)
	if err != nil {
		return err
	}
	if !caps.BypassesGrants() {
		return oops.Code("FORBIDDEN").
			With("actor_id", actor.ID.String()).
			With("world_id", worldID.String()).
			Errorf("location management requires world-level authority")
	}
	return nil
}

// CreateLocation validates type rules for the placement and persists the
// location. A root placement (nil parent) is always type-valid.
func (e *Engine) CreateLocation(ctx context.Context, actor auth.Actor, l *atlas.Location) error {
	if err := l.Validate(); err != nil {
		return err
	}
	if err := e.requireWorldManagement(ctx, actor, l.WorldID); err != nil {
		return err
	}

	h, err := e.hierarchyFor(ctx, l.WorldID)
	if err != nil {
		return err
	}
	if err := h.CheckPlacement(l.TypeID, l.ParentID); err != nil {
		return err
	}

	return e.locations.Create(ctx, l)
}

// ReparentLocation moves a location under a new parent after the type-rule
// and cycle checks pass. The repository serializes reparents per world so
// the check-then-write is effectively atomic.
func (e *Engine) ReparentLocation(ctx context.Context, actor auth.Actor, locationID ulid.ULID, newParentID *ulid.ULID) error {
	loc, err := e.locations.Get(ctx, locationID)
	if err != nil {
		return err
	}
	if err := e.requireWorldManagement(ctx, actor, loc.WorldID); err != nil {
		return err
	}

	h, err := e.hierarchyFor(ctx, loc.WorldID)
	if err != nil {
		return err
	}
	if err := h.CheckReparent(locationID, newParentID); err != nil {
		return err
	}

	return e.locations.Reparent(ctx, locationID, newParentID)
}

// CheckPlacement runs the type-rule check for a prospective placement
// without persisting anything.
func (e *Engine) CheckPlacement(ctx context.Context, worldID, childTypeID ulid.ULID, parentID *ulid.ULID) error {
	h, err := e.hierarchyFor(ctx, worldID)
	if err != nil {
		return err
	}
	return h.CheckPlacement(childTypeID, parentID)
}

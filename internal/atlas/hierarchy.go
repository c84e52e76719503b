// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package atlas

import (
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Arena is an id-indexed snapshot of a world's locations. Hierarchy checks
// walk parent ids through the arena instead of live object references, so a
// walk is bounded by the arena size.
type Arena map[ulid.ULID]*Location

// AncestorChain returns the ordered ancestor ids of the location, nearest
// first. A parent id missing from the arena fails with NOT_FOUND. A chain
// longer than the arena means the stored tree already contains a cycle,
// which is reported rather than looped on.
func (a Arena) AncestorChain(id ulid.ULID) ([]ulid.ULID, error) {
	loc, ok := a[id]
	if !ok {
		return nil, oops.Code("NOT_FOUND").
			With("location_id", id.String()).
			Errorf("location not in arena")
	}

	var chain []ulid.ULID
	for loc.ParentID != nil {
		parentID := *loc.ParentID
		chain = append(chain, parentID)
		if len(chain) > len(a) {
			return nil, oops.Code("CONFLICT_CYCLE").
				With("location_id", id.String()).
				Errorf("ancestor chain exceeds arena size; stored tree is cyclic")
		}
		loc, ok = a[parentID]
		if !ok {
			return nil, oops.Code("NOT_FOUND").
				With("location_id", parentID.String()).
				Errorf("ancestor not in arena")
		}
	}
	return chain, nil
}

// Hierarchy validates location placement against a consistent snapshot of
// the rule log and the location arena. Both checks are pure; persistence
// happens in the caller after validation passes.
type Hierarchy struct {
	Rules RuleLog
	Arena Arena
}

// CheckPlacement validates that a location of childTypeID may be placed
// under the parent location. A nil parent is a root placement and is always
// type-valid. A pairing with no effective allow rule fails with
// CONFLICT_RULE.
func (h Hierarchy) CheckPlacement(childTypeID ulid.ULID, parentID *ulid.ULID) error {
	if parentID == nil {
		return nil
	}
	parent, ok := h.Arena[*parentID]
	if !ok {
		return oops.Code("NOT_FOUND").
			With("location_id", parentID.String()).
			Errorf("parent location not found")
	}
	if !h.Rules.Effective(parent.TypeID, childTypeID) {
		return oops.Code("CONFLICT_RULE").
			With("parent_type_id", parent.TypeID.String()).
			With("child_type_id", childTypeID.String()).
			Errorf("location type pairing is not allowed")
	}
	return nil
}

// CheckReparent validates moving a location under a new parent: the type
// pairing must be allowed, and the location must not appear anywhere in the
// new parent's ancestor chain (the parent itself included), or the move
// would create a cycle.
//
// The same walk runs at creation time for uniformity, where it is trivially
// cycle-free by construction.
func (h Hierarchy) CheckReparent(id ulid.ULID, newParentID *ulid.ULID) error {
	loc, ok := h.Arena[id]
	if !ok {
		return oops.Code("NOT_FOUND").
			With("location_id", id.String()).
			Errorf("location not found")
	}
	if err := h.CheckPlacement(loc.TypeID, newParentID); err != nil {
		return err
	}
	if newParentID == nil {
		return nil
	}
	if *newParentID == id {
		return cycleError(id, *newParentID)
	}

	chain, err := h.Arena.AncestorChain(*newParentID)
	if err != nil {
		return err
	}
	for _, ancestorID := range chain {
		if ancestorID == id {
			return cycleError(id, *newParentID)
		}
	}
	return nil
}

func cycleError(id, parentID ulid.ULID) error {
	return oops.Code("CONFLICT_CYCLE").
		With("location_id", id.String()).
		With("new_parent_id", parentID.String()).
		Errorf("reparent would create a cycle")
}

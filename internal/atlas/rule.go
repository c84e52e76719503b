// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package atlas

import (
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// TypeRule declares whether locations of a child type may nest under
// locations of a parent type. Rules form an append-only override log:
// multiple rows may exist for the same ordered pair over time.
type TypeRule struct {
	ID           ulid.ULID
	WorldID      ulid.ULID
	ParentTypeID ulid.ULID
	ChildTypeID  ulid.ULID
	Allowed      bool
	CreatedAt    time.Time
}

// NewTypeRule creates a validated TypeRule with a generated ID.
func NewTypeRule(worldID, parentTypeID, childTypeID ulid.ULID, allowed bool) (*TypeRule, error) {
	r := &TypeRule{
		ID:           ulid.Make(),
		WorldID:      worldID,
		ParentTypeID: parentTypeID,
		ChildTypeID:  childTypeID,
		Allowed:      allowed,
		CreatedAt:    time.Now(),
	}
	if r.WorldID.IsZero() || r.ParentTypeID.IsZero() || r.ChildTypeID.IsZero() {
		return nil, oops.Code("VALIDATION").Errorf("type rule world, parent, and child IDs are required")
	}
	return r, nil
}

// RuleLog is a snapshot of rule rows, in creation order.
type RuleLog []TypeRule

// Effective returns the authoritative permission for the exact ordered pair:
// the allowed value of the most recently created matching row. No row for
// the pair means the pairing is denied.
//
// Recency wins over an older explicit deny; the log is an override history,
// not a veto list.
func (log RuleLog) Effective(parentTypeID, childTypeID ulid.ULID) bool {
	var (
		found   bool
		allowed bool
		latest  time.Time
		tieID   ulid.ULID
	)
	for _, r := range log {
		if r.ParentTypeID != parentTypeID || r.ChildTypeID != childTypeID {
			continue
		}
		// ULIDs order by creation time; break CreatedAt ties by ID so two
		// rows in the same instant still resolve deterministically.
		if !found || r.CreatedAt.After(latest) ||
			(r.CreatedAt.Equal(latest) && r.ID.Compare(tieID) > 0) {
			found = true
			allowed = r.Allowed
			latest = r.CreatedAt
			tieID = r.ID
		}
	}
	return found && allowed
}

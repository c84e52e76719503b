// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

// Package access evaluates object-level access grants.
//
// An access policy carries two independent grants, read and write, each with
// three orthogonal fields: global, campaigns, characters. Evaluation order
// is fixed: a global grant short-circuits the lists.
package access

import (
	"github.com/oklog/ulid/v2"
)

// Operation selects which grant of a policy is evaluated.
type Operation string

// Operations.
const (
	OpRead  Operation = "read"
	OpWrite Operation = "write"
)

// String returns the string representation of the operation.
func (o Operation) String() string {
	return string(o)
}

// Context is the acting campaign/character the actor has currently selected.
// It is supplied per call, never cached per session: the same object can be
// readable or not for the same actor depending on the context.
type Context struct {
	CampaignID  *ulid.ULID
	CharacterID *ulid.ULID
}

// Grant is one directional access grant of a policy.
type Grant struct {
	Global     bool
	Campaigns  []ulid.ULID
	Characters []ulid.ULID
}

// Permits reports whether the grant is satisfied in the given context.
// Global always satisfies the grant regardless of the lists.
func (g Grant) Permits(rc Context) bool {
	if g.Global {
		return true
	}
	if rc.CampaignID != nil && containsID(g.Campaigns, *rc.CampaignID) {
		return true
	}
	if rc.CharacterID != nil && containsID(g.Characters, *rc.CharacterID) {
		return true
	}
	return false
}

// Policy is the read/write grant structure attached to an entity or
// location.
type Policy struct {
	Read  Grant
	Write Grant
}

// Grant returns the grant for the operation. Unknown operations return an
// empty (deny-everything) grant.
func (p Policy) Grant(op Operation) Grant {
	switch op {
	case OpRead:
		return p.Read
	case OpWrite:
		return p.Write
	default:
		return Grant{}
	}
}

// PublicReadPolicy returns a policy with a global read grant and no write
// grants, the default for creator-published objects.
func PublicReadPolicy() Policy {
	return Policy{Read: Grant{Global: true}}
}

func containsID(ids []ulid.ULID, id ulid.ULID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

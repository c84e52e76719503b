// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

// Package auth contains actor identity and the session store.
//
// Password verification and credential management live in the serving layer;
// this package only carries the identity contract the decision engine needs
// (who is acting, with which system role) and the token-based session
// lifecycle used to establish that identity.
package auth

import (
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// SystemRole is the system-wide role of an actor.
type SystemRole string

// System roles.
const (
	RoleSystemAdmin  SystemRole = "SYSTEM_ADMIN"
	RoleStandardUser SystemRole = "STANDARD_USER"
)

// String returns the string representation of the system role.
func (r SystemRole) String() string {
	return string(r)
}

// Validate checks that the system role is a known value.
func (r SystemRole) Validate() error {
	switch r {
	case RoleSystemAdmin, RoleStandardUser:
		return nil
	default:
		return oops.Code("VALIDATION").
			With("system_role", string(r)).
			Errorf("unknown system role")
	}
}

// Actor is an authenticated identity as supplied by the serving layer.
type Actor struct {
	ID         ulid.ULID
	SystemRole SystemRole
	CreatedAt  time.Time
}

// NewActor creates a validated Actor.
func NewActor(id ulid.ULID, role SystemRole) (Actor, error) {
	if id.IsZero() {
		return Actor{}, oops.Code("VALIDATION").Errorf("actor ID cannot be zero")
	}
	if err := role.Validate(); err != nil {
		return Actor{}, err
	}
	return Actor{ID: id, SystemRole: role, CreatedAt: time.Now()}, nil
}

// IsSystemAdmin reports whether the actor holds the system admin role.
func (a Actor) IsSystemAdmin() bool {
	return a.SystemRole == RoleSystemAdmin
}

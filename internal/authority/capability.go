// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

// Package authority derives an actor's capability set for a world and
// campaign scope. Consumers test membership of the subset they require
// instead of re-deriving roles; there is no priority ordering between
// capabilities.
package authority

import (
	"fmt"
	"sort"

	"github.com/oklog/ulid/v2"
)

// Capability is a named authority an actor holds over a scope.
type Capability int

// Capabilities.
const (
	CapSystemAdmin Capability = iota // system_admin
	CapWorldArchitect
	CapCampaignGM
	CapCampaignOwner
	CapCampaignCreator
	CapCharacterCreator
)

var capabilityStrings = [...]string{
	"system_admin",
	"world_architect",
	"campaign_gm",
	"campaign_owner",
	"campaign_creator",
	"character_creator",
}

func (c Capability) String() string {
	if c >= 0 && int(c) < len(capabilityStrings) {
		return capabilityStrings[c]
	}
	return fmt.Sprintf("unknown(%d)", int(c))
}

// Set is the capability set resolved for one actor in one scope.
// Character ownership is parametrized by character ID and kept separately
// from the named capabilities.
type Set struct {
	caps       map[Capability]struct{}
	characters map[ulid.ULID]struct{}
}

// NewSet creates an empty capability set.
func NewSet() Set {
	return Set{
		caps:       make(map[Capability]struct{}),
		characters: make(map[ulid.ULID]struct{}),
	}
}

// Grant adds a capability to the set.
func (s Set) Grant(c Capability) {
	s.caps[c] = struct{}{}
}

// GrantCharacter records ownership of a character.
func (s Set) GrantCharacter(id ulid.ULID) {
	s.characters[id] = struct{}{}
}

// Has reports whether the set contains the capability.
func (s Set) Has(c Capability) bool {
	_, ok := s.caps[c]
	return ok
}

// HasAny reports whether the set contains at least one of the capabilities.
func (s Set) HasAny(caps ...Capability) bool {
	for _, c := range caps {
		if s.Has(c) {
			return true
		}
	}
	return false
}

// OwnsCharacter reports whether the actor owns the character.
func (s Set) OwnsCharacter(id ulid.ULID) bool {
	_, ok := s.characters[id]
	return ok
}

// BypassesGrants reports whether the set carries world-level authority that
// bypasses object-level access grants entirely.
func (s Set) BypassesGrants() bool {
	return s.HasAny(CapSystemAdmin, CapWorldArchitect)
}

// Capabilities returns the named capabilities in stable order.
func (s Set) Capabilities() []Capability {
	out := make([]Capability, 0, len(s.caps))
	for c := range s.caps {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package authority

import (
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/lorekeep/lorekeep/internal/auth"
	"github.com/lorekeep/lorekeep/internal/world"
)

// Resolve derives the actor's capability set from the world and campaign
// snapshots and the actor's owned characters. The campaign may be nil when
// the operation has no campaign scope. Snapshots are fetched fresh per call
// by the caller; nothing here is cached across requests.
func Resolve(actor auth.Actor, w *world.World, c *world.Campaign, ownedCharacters []ulid.ULID) (Set, error) {
	if w == nil {
		return Set{}, oops.Code("VALIDATION").Errorf("world snapshot is required")
	}
	if c != nil && c.WorldID != w.ID {
		return Set{}, oops.Code("VALIDATION").
			With("world_id", w.ID.String()).
			With("campaign_world_id", c.WorldID.String()).
			Errorf("campaign does not belong to world")
	}

	set := NewSet()

	if actor.IsSystemAdmin() {
		set.Grant(CapSystemAdmin)
	}
	if w.IsArchitect(actor.ID) {
		set.Grant(CapWorldArchitect)
	}
	if w.IsCampaignCreator(actor.ID) {
		set.Grant(CapCampaignCreator)
	}
	if w.IsCharacterCreator(actor.ID) {
		set.Grant(CapCharacterCreator)
	}

	if c != nil {
		if c.IsGM(actor.ID) {
			set.Grant(CapCampaignGM)
		}
		if c.IsOwner(actor.ID) {
			set.Grant(CapCampaignOwner)
		}
		if c.IsCharacterCreator(actor.ID) {
			set.Grant(CapCharacterCreator)
		}
	}

	for _, id := range ownedCharacters {
		set.GrantCharacter(id)
	}

	return set, nil
}

// CanCreateCampaign reports whether the set satisfies campaign creation:
// system admin, world architect, or campaign-creator delegate.
func CanCreateCampaign(s Set) bool {
	return s.HasAny(CapSystemAdmin, CapWorldArchitect, CapCampaignCreator)
}

// CanCreateCharacter reports whether the set satisfies character creation:
// system admin, world architect, or character-creator delegate (world- or
// campaign-scoped).
func CanCreateCharacter(s Set) bool {
	return s.HasAny(CapSystemAdmin, CapWorldArchitect, CapCharacterCreator)
}

// CanManageCampaign reports whether the set satisfies campaign management:
// system admin, world architect, campaign GM, or campaign owner.
func CanManageCampaign(s Set) bool {
	return s.HasAny(CapSystemAdmin, CapWorldArchitect, CapCampaignGM, CapCampaignOwner)
}

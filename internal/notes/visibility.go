// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package notes

import (
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/lorekeep/lorekeep/internal/access"
	"github.com/lorekeep/lorekeep/internal/authority"
	"github.com/lorekeep/lorekeep/internal/world"
)

// privilegedCaps are the capabilities that see private notes and may author
// them without a character: admin, architect, and the campaign's GM.
var privilegedCaps = []authority.Capability{
	authority.CapSystemAdmin,
	authority.CapWorldArchitect,
	authority.CapCampaignGM,
}

// ValidateNew checks the creation-time rules for a note.
//
// SHARED requires a campaign. PRIVATE authored by a non-privileged actor
// requires a character the author owns that is actively rostered in the
// note's campaign; privileged authors may write PRIVATE notes without a
// character.
func ValidateNew(n *Note, authorCaps authority.Set, campaign *world.Campaign) error {
	if n.ID.IsZero() || n.EntityID.IsZero() || n.AuthorID.IsZero() {
		return oops.Code("VALIDATION").Errorf("note ID, entity ID, and author ID are required")
	}

	switch n.Visibility {
	case VisibilityShared:
		if n.CampaignID == nil {
			return oops.Code("VALIDATION").
				With("visibility", n.Visibility.String()).
				Errorf("a shared note must carry a campaign")
		}
		return nil

	case VisibilityPrivate:
		if authorCaps.HasAny(privilegedCaps...) {
			return nil
		}
		if n.CharacterID == nil {
			return oops.Code("FORBIDDEN").
				With("author_id", n.AuthorID.String()).
				Errorf("a private note by a player must carry a character")
		}
		if !authorCaps.OwnsCharacter(*n.CharacterID) {
			return oops.Code("FORBIDDEN").
				With("character_id", n.CharacterID.String()).
				Errorf("private note character is not owned by the author")
		}
		if campaign == nil || !campaign.HasRosteredCharacter(*n.CharacterID) {
			return oops.Code("FORBIDDEN").
				With("character_id", n.CharacterID.String()).
				Errorf("private note character is not rostered in the campaign")
		}
		return nil

	default:
		return oops.Code("VALIDATION").
			With("visibility", string(n.Visibility)).
			Errorf("unknown note visibility")
	}
}

// Visible reports whether one note is visible to the actor in the given
// context. The caller has already established that the actor can read the
// owning entity; this only applies the note-level rules.
//
// Notes addressed to a different campaign than the context are excluded
// entirely. A SHARED note in the context campaign is visible with no further
// restriction. A PRIVATE note is visible only to its author or to a
// privileged actor for that campaign; an actor supplying the author's
// character without being the author does not qualify.
func Visible(n *Note, actorID ulid.ULID, caps authority.Set, rc access.Context) bool {
	if n.CampaignID != nil {
		if rc.CampaignID == nil || *n.CampaignID != *rc.CampaignID {
			return false
		}
	}

	switch n.Visibility {
	case VisibilityShared:
		return true
	case VisibilityPrivate:
		if n.AuthorID == actorID {
			return true
		}
		return caps.HasAny(privilegedCaps...)
	default:
		return false
	}
}

// Filter returns the notes on an entity visible to the actor, preserving
// input order. Filtering degrades per item by omission, never by error.
func Filter(all []*Note, actorID ulid.ULID, caps authority.Set, rc access.Context) []*Note {
	visible := make([]*Note, 0, len(all))
	for _, n := range all {
		if Visible(n, actorID, caps, rc) {
			visible = append(visible, n)
		}
	}
	return visible
}

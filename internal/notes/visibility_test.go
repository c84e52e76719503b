// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package notes_test

import (
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorekeep/lorekeep/internal/access"
	"github.com/lorekeep/lorekeep/internal/authority"
	"github.com/lorekeep/lorekeep/internal/notes"
	"github.com/lorekeep/lorekeep/internal/world"
	"github.com/lorekeep/lorekeep/pkg/errutil"
)

func ref(id ulid.ULID) *ulid.ULID {
	return &id
}

func capsWith(caps ...authority.Capability) authority.Set {
	set := authority.NewSet()
	for _, c := range caps {
		set.Grant(c)
	}
	return set
}

func baseNote(visibility notes.Visibility) *notes.Note {
	return &notes.Note{
		ID:         ulid.Make(),
		EntityID:   ulid.Make(),
		AuthorID:   ulid.Make(),
		Visibility: visibility,
		Body:       "The duke is lying.",
	}
}

func TestValidateNew_SharedRequiresCampaign(t *testing.T) {
	n := baseNote(notes.VisibilityShared)

	err := notes.ValidateNew(n, capsWith(authority.CapCampaignGM), nil)
	errutil.AssertErrorCode(t, err, errutil.CodeValidation)

	n.CampaignID = ref(ulid.Make())
	assert.NoError(t, notes.ValidateNew(n, authority.NewSet(), nil))
}

func TestValidateNew_PrivateByPrivilegedAuthor(t *testing.T) {
	for _, cap := range []authority.Capability{authority.CapSystemAdmin, authority.CapWorldArchitect, authority.CapCampaignGM} {
		t.Run(cap.String(), func(t *testing.T) {
			n := baseNote(notes.VisibilityPrivate)
			n.CampaignID = ref(ulid.Make())
			// No character: privileged authors may omit it.
			assert.NoError(t, notes.ValidateNew(n, capsWith(cap), nil))
		})
	}
}

func TestValidateNew_PrivateByPlayer(t *testing.T) {
	charID := ulid.Make()
	campaignID := ulid.Make()

	campaign := &world.Campaign{
		ID:       campaignID,
		WorldID:  ulid.Make(),
		Name:     "The Long Road",
		OwnerID:  ulid.Make(),
		GMUserID: ulid.Make(),
		Roster:   []world.RosterEntry{{CharacterID: charID, Status: world.RosterActive}},
	}

	ownerCaps := authority.NewSet()
	ownerCaps.GrantCharacter(charID)

	t.Run("valid owned rostered character", func(t *testing.T) {
		n := baseNote(notes.VisibilityPrivate)
		n.CampaignID = ref(campaignID)
		n.CharacterID = ref(charID)
		assert.NoError(t, notes.ValidateNew(n, ownerCaps, campaign))
	})

	t.Run("missing character", func(t *testing.T) {
		n := baseNote(notes.VisibilityPrivate)
		n.CampaignID = ref(campaignID)
		err := notes.ValidateNew(n, ownerCaps, campaign)
		errutil.AssertErrorCode(t, err, errutil.CodeForbidden)
	})

	t.Run("character not owned", func(t *testing.T) {
		n := baseNote(notes.VisibilityPrivate)
		n.CampaignID = ref(campaignID)
		n.CharacterID = ref(ulid.Make())
		err := notes.ValidateNew(n, ownerCaps, campaign)
		errutil.AssertErrorCode(t, err, errutil.CodeForbidden)
	})

	t.Run("character not rostered", func(t *testing.T) {
		rogue := ulid.Make()
		caps := authority.NewSet()
		caps.GrantCharacter(rogue)

		n := baseNote(notes.VisibilityPrivate)
		n.CampaignID = ref(campaignID)
		n.CharacterID = ref(rogue)
		err := notes.ValidateNew(n, caps, campaign)
		errutil.AssertErrorCode(t, err, errutil.CodeForbidden)
	})
}

func TestValidateNew_UnknownVisibility(t *testing.T) {
	n := baseNote(notes.Visibility("SECRET"))
	err := notes.ValidateNew(n, authority.NewSet(), nil)
	errutil.AssertErrorCode(t, err, errutil.CodeValidation)
}

func TestVisible_CampaignScoping(t *testing.T) {
	campaignID := ulid.Make()
	otherCampaign := ulid.Make()
	actor := ulid.Make()

	n := baseNote(notes.VisibilityShared)
	n.CampaignID = ref(campaignID)

	tests := []struct {
		name    string
		rc      access.Context
		visible bool
	}{
		{"matching campaign", access.Context{CampaignID: ref(campaignID)}, true},
		{"different campaign", access.Context{CampaignID: ref(otherCampaign)}, false},
		{"no campaign context", access.Context{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := notes.Visible(n, actor, capsWith(authority.CapCampaignGM), tt.rc)
			assert.Equal(t, tt.visible, got)
		})
	}
}

func TestVisible_PrivateIsAuthorBound(t *testing.T) {
	campaignID := ulid.Make()
	author := ulid.Make()
	authorChar := ulid.Make()
	stranger := ulid.Make()

	n := baseNote(notes.VisibilityPrivate)
	n.AuthorID = author
	n.CampaignID = ref(campaignID)
	n.CharacterID = ref(authorChar)

	rc := access.Context{CampaignID: ref(campaignID), CharacterID: ref(authorChar)}

	assert.True(t, notes.Visible(n, author, authority.NewSet(), rc))
	assert.True(t, notes.Visible(n, stranger, capsWith(authority.CapCampaignGM), rc))

	// Supplying the author's character without being the author does not
	// qualify.
	assert.False(t, notes.Visible(n, stranger, authority.NewSet(), rc))
}

// TestFilter_Matrix covers the listing matrix from three perspectives: an
// outsider, the campaign GM, and the authoring player.
func TestFilter_Matrix(t *testing.T) {
	campaignID := ulid.Make()
	entityID := ulid.Make()
	gm := ulid.Make()
	player := ulid.Make()
	playerChar := ulid.Make()
	outsider := ulid.Make()

	shared := &notes.Note{
		ID: ulid.Make(), EntityID: entityID, AuthorID: gm,
		Visibility: notes.VisibilityShared, CampaignID: ref(campaignID),
	}
	gmPrivate := &notes.Note{
		ID: ulid.Make(), EntityID: entityID, AuthorID: gm,
		Visibility: notes.VisibilityPrivate, CampaignID: ref(campaignID),
	}
	playerPrivate := &notes.Note{
		ID: ulid.Make(), EntityID: entityID, AuthorID: player,
		Visibility: notes.VisibilityPrivate, CampaignID: ref(campaignID), CharacterID: ref(playerChar),
	}
	all := []*notes.Note{shared, gmPrivate, playerPrivate}

	rc := access.Context{CampaignID: ref(campaignID)}

	t.Run("outsider sees only the shared note", func(t *testing.T) {
		got := notes.Filter(all, outsider, authority.NewSet(), rc)
		require.Len(t, got, 1)
		assert.Equal(t, shared.ID, got[0].ID)
	})

	t.Run("gm sees all three", func(t *testing.T) {
		got := notes.Filter(all, gm, capsWith(authority.CapCampaignGM), rc)
		assert.Len(t, got, 3)
	})

	t.Run("player sees shared plus own private, never the gm's", func(t *testing.T) {
		playerCaps := authority.NewSet()
		playerCaps.GrantCharacter(playerChar)
		playerRC := access.Context{CampaignID: ref(campaignID), CharacterID: ref(playerChar)}

		got := notes.Filter(all, player, playerCaps, playerRC)
		require.Len(t, got, 2)
		assert.Equal(t, shared.ID, got[0].ID)
		assert.Equal(t, playerPrivate.ID, got[1].ID)
	})
}

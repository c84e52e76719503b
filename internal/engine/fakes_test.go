// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package engine_test

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/lorekeep/lorekeep/internal/access"
	"github.com/lorekeep/lorekeep/internal/atlas"
	"github.com/lorekeep/lorekeep/internal/entity"
	"github.com/lorekeep/lorekeep/internal/mentions"
	"github.com/lorekeep/lorekeep/internal/notes"
	"github.com/lorekeep/lorekeep/internal/world"
)

func notFound(kind string, id ulid.ULID) error {
	return oops.Code("NOT_FOUND").With("id", id.String()).Errorf("%s not found", kind)
}

type fakeWorldRepo struct {
	worlds map[ulid.ULID]*world.World
}

func (r *fakeWorldRepo) Get(_ context.Context, id ulid.ULID) (*world.World, error) {
	w, ok := r.worlds[id]
	if !ok {
		return nil, notFound("world", id)
	}
	return w, nil
}

func (r *fakeWorldRepo) Create(_ context.Context, w *world.World) error {
	r.worlds[w.ID] = w
	return nil
}

func (r *fakeWorldRepo) SetArchitects(_ context.Context, worldID ulid.ULID, ids []ulid.ULID) error {
	r.worlds[worldID].ArchitectIDs = ids
	return nil
}

func (r *fakeWorldRepo) SetCampaignCreators(_ context.Context, worldID ulid.ULID, ids []ulid.ULID) error {
	r.worlds[worldID].CampaignCreatorIDs = ids
	return nil
}

func (r *fakeWorldRepo) SetCharacterCreators(_ context.Context, worldID ulid.ULID, ids []ulid.ULID) error {
	r.worlds[worldID].CharacterCreatorIDs = ids
	return nil
}

type fakeCampaignRepo struct {
	campaigns map[ulid.ULID]*world.Campaign
}

func (r *fakeCampaignRepo) Get(_ context.Context, id ulid.ULID) (*world.Campaign, error) {
	c, ok := r.campaigns[id]
	if !ok {
		return nil, notFound("campaign", id)
	}
	return c, nil
}

func (r *fakeCampaignRepo) Create(_ context.Context, c *world.Campaign) error {
	r.campaigns[c.ID] = c
	return nil
}

func (r *fakeCampaignRepo) SetRosterStatus(_ context.Context, campaignID, characterID ulid.ULID, status world.RosterStatus) error {
	c, ok := r.campaigns[campaignID]
	if !ok {
		return notFound("campaign", campaignID)
	}
	for i := range c.Roster {
		if c.Roster[i].CharacterID == characterID {
			c.Roster[i].Status = status
			return nil
		}
	}
	c.Roster = append(c.Roster, world.RosterEntry{CharacterID: characterID, Status: status})
	return nil
}

func (r *fakeCampaignRepo) ListByWorld(_ context.Context, worldID ulid.ULID) ([]*world.Campaign, error) {
	var out []*world.Campaign
	for _, c := range r.campaigns {
		if c.WorldID == worldID {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeCharacterRepo struct {
	characters map[ulid.ULID]*world.Character
}

func (r *fakeCharacterRepo) Get(_ context.Context, id ulid.ULID) (*world.Character, error) {
	c, ok := r.characters[id]
	if !ok {
		return nil, notFound("character", id)
	}
	return c, nil
}

func (r *fakeCharacterRepo) Create(_ context.Context, c *world.Character) error {
	r.characters[c.ID] = c
	return nil
}

func (r *fakeCharacterRepo) ListOwnedBy(_ context.Context, worldID, playerID ulid.ULID) ([]ulid.ULID, error) {
	var out []ulid.ULID
	for _, c := range r.characters {
		if c.WorldID == worldID && c.PlayerID == playerID {
			out = append(out, c.ID)
		}
	}
	return out, nil
}

type fakeEntityRepo struct {
	entities map[ulid.ULID]*entity.Entity
}

func (r *fakeEntityRepo) Get(_ context.Context, id ulid.ULID) (*entity.Entity, error) {
	e, ok := r.entities[id]
	if !ok {
		return nil, notFound("entity", id)
	}
	return e, nil
}

func (r *fakeEntityRepo) Create(_ context.Context, e *entity.Entity) error {
	r.entities[e.ID] = e
	return nil
}

func (r *fakeEntityRepo) UpdatePolicy(_ context.Context, id ulid.ULID, pol access.Policy) error {
	e, ok := r.entities[id]
	if !ok {
		return notFound("entity", id)
	}
	e.Policy = pol
	return nil
}

func (r *fakeEntityRepo) Delete(_ context.Context, id ulid.ULID) error {
	delete(r.entities, id)
	return nil
}

type fakeNoteRepo struct {
	notes map[ulid.ULID]*notes.Note
	order []ulid.ULID
}

func (r *fakeNoteRepo) Create(_ context.Context, n *notes.Note) error {
	r.notes[n.ID] = n
	r.order = append(r.order, n.ID)
	return nil
}

func (r *fakeNoteRepo) Get(_ context.Context, id ulid.ULID) (*notes.Note, error) {
	n, ok := r.notes[id]
	if !ok {
		return nil, notFound("note", id)
	}
	return n, nil
}

func (r *fakeNoteRepo) ListByEntity(_ context.Context, entityID ulid.ULID) ([]*notes.Note, error) {
	var out []*notes.Note
	for _, id := range r.order {
		if n := r.notes[id]; n.EntityID == entityID {
			out = append(out, n)
		}
	}
	return out, nil
}

type fakeMentionRepo struct {
	mentions []*mentions.Mention
}

func (r *fakeMentionRepo) Create(_ context.Context, m *mentions.Mention) error {
	r.mentions = append(r.mentions, m)
	return nil
}

func (r *fakeMentionRepo) ListByTarget(_ context.Context, targetEntityID ulid.ULID) ([]*mentions.Mention, error) {
	var out []*mentions.Mention
	for _, m := range r.mentions {
		if m.TargetEntityID == targetEntityID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeLocationRepo struct {
	locations map[ulid.ULID]*atlas.Location
}

func (r *fakeLocationRepo) Get(_ context.Context, id ulid.ULID) (*atlas.Location, error) {
	l, ok := r.locations[id]
	if !ok {
		return nil, notFound("location", id)
	}
	return l, nil
}

func (r *fakeLocationRepo) Create(_ context.Context, l *atlas.Location) error {
	r.locations[l.ID] = l
	return nil
}

func (r *fakeLocationRepo) Reparent(_ context.Context, id ulid.ULID, newParentID *ulid.ULID) error {
	l, ok := r.locations[id]
	if !ok {
		return notFound("location", id)
	}
	l.ParentID = newParentID
	return nil
}

func (r *fakeLocationRepo) AncestorChain(_ context.Context, id ulid.ULID) ([]ulid.ULID, error) {
	arena := atlas.Arena(r.locations)
	return arena.AncestorChain(id)
}

func (r *fakeLocationRepo) SnapshotWorld(_ context.Context, worldID ulid.ULID) (atlas.Arena, error) {
	arena := atlas.Arena{}
	for id, l := range r.locations {
		if l.WorldID == worldID {
			arena[id] = l
		}
	}
	return arena, nil
}

func (r *fakeLocationRepo) Delete(_ context.Context, id ulid.ULID) error {
	delete(r.locations, id)
	return nil
}

type fakeTypeRepo struct {
	types map[ulid.ULID]*atlas.LocationType
	rules []atlas.TypeRule
}

func (r *fakeTypeRepo) GetType(_ context.Context, id ulid.ULID) (*atlas.LocationType, error) {
	t, ok := r.types[id]
	if !ok {
		return nil, notFound("location type", id)
	}
	return t, nil
}

func (r *fakeTypeRepo) CreateType(_ context.Context, t *atlas.LocationType) error {
	r.types[t.ID] = t
	return nil
}

func (r *fakeTypeRepo) AppendRule(_ context.Context, rule *atlas.TypeRule) error {
	r.rules = append(r.rules, *rule)
	return nil
}

func (r *fakeTypeRepo) RulesForPair(_ context.Context, parentTypeID, childTypeID ulid.ULID) ([]atlas.TypeRule, error) {
	var out []atlas.TypeRule
	for _, rule := range r.rules {
		if rule.ParentTypeID == parentTypeID && rule.ChildTypeID == childTypeID {
			out = append(out, rule)
		}
	}
	return out, nil
}

func (r *fakeTypeRepo) RulesForWorld(_ context.Context, worldID ulid.ULID) ([]atlas.TypeRule, error) {
	var out []atlas.TypeRule
	for _, rule := range r.rules {
		if rule.WorldID == worldID {
			out = append(out, rule)
		}
	}
	return out, nil
}

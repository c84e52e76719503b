// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package engine

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/lorekeep/lorekeep/internal/access"
	"github.com/lorekeep/lorekeep/internal/auth"
	"github.com/lorekeep/lorekeep/internal/mentions"
	"github.com/lorekeep/lorekeep/internal/notes"
	"github.com/lorekeep/lorekeep/internal/world"
)

// NewNoteParams carries the creation-time inputs for a note.
type NewNoteParams struct {
	EntityID    ulid.ULID
	Visibility  notes.Visibility
	CampaignID  *ulid.ULID
	CharacterID *ulid.ULID
	Body        string
}

// CreateNote validates and persists a note authored by the actor.
//
// The author must be able to read the entity in the note's campaign scope,
// and the creation-time visibility rules apply: SHARED requires a campaign,
// PRIVATE by a non-privileged author requires an owned character rostered in
// the note's campaign.
func (e *Engine) CreateNote(ctx context.Context, actor auth.Actor, p NewNoteParams) (*notes.Note, error) {
	ent, err := e.entities.Get(ctx, p.EntityID)
	if err != nil {
		return nil, err
	}

	caps, err := e.Authority(ctx, actor, ent.WorldID, p.CampaignID)
	if err != nil {
		return nil, err
	}

	rc := access.Context{CampaignID: p.CampaignID, CharacterID: p.CharacterID}
	if !access.Evaluate(caps, ent.Policy, access.OpRead, rc).IsAllowed() {
		return nil, oops.Code("FORBIDDEN").
			With("entity_id", p.EntityID.String()).
			Errorf("entity is not readable in this context")
	}

	var campaign *world.Campaign
	if p.CampaignID != nil {
		campaign, err = e.campaigns.Get(ctx, *p.CampaignID)
		if err != nil {
			return nil, err
		}
	}

	note := &notes.Note{
		ID:          ulid.Make(),
		EntityID:    p.EntityID,
		AuthorID:    actor.ID,
		Visibility:  p.Visibility,
		CampaignID:  p.CampaignID,
		CharacterID: p.CharacterID,
		Body:        p.Body,
		CreatedAt:   time.Now(),
	}
	if err := notes.ValidateNew(note, caps, campaign); err != nil {
		return nil, err
	}

	if err := e.notes.Create(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// ListNotes returns the notes on an entity visible to the actor in the given
// context. An actor who cannot read the entity at all gets FORBIDDEN;
// individual invisible notes are omitted, never errors.
func (e *Engine) ListNotes(ctx context.Context, actor auth.Actor, entityID ulid.ULID, rc access.Context) ([]*notes.Note, error) {
	ent, err := e.entities.Get(ctx, entityID)
	if err != nil {
		return nil, err
	}

	caps, err := e.Authority(ctx, actor, ent.WorldID, rc.CampaignID)
	if err != nil {
		return nil, err
	}
	if !access.Evaluate(caps, ent.Policy, access.OpRead, rc).IsAllowed() {
		return nil, oops.Code("FORBIDDEN").
			With("entity_id", entityID.String()).
			Errorf("entity is not readable in this context")
	}

	all, err := e.notes.ListByEntity(ctx, entityID)
	if err != nil {
		return nil, err
	}
	return notes.Filter(all, actor.ID, caps, rc), nil
}

// ListMentions returns the mentions pointing at the target entity that are
// visible to the actor. An unreadable target fails the whole call with
// FORBIDDEN; mentions with invisible sources are dropped silently.
func (e *Engine) ListMentions(ctx context.Context, actor auth.Actor, targetEntityID ulid.ULID, rc access.Context) ([]*mentions.Mention, error) {
	target, err := e.entities.Get(ctx, targetEntityID)
	if err != nil {
		return nil, err
	}

	caps, err := e.Authority(ctx, actor, target.WorldID, rc.CampaignID)
	if err != nil {
		return nil, err
	}

	all, err := e.mentions.ListByTarget(ctx, targetEntityID)
	if err != nil {
		return nil, err
	}

	candidates := make([]mentions.Candidate, 0, len(all))
	for _, m := range all {
		note, err := e.notes.Get(ctx, m.NoteID)
		if err != nil {
			return nil, err
		}
		source, err := e.entities.Get(ctx, m.SourceEntityID)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, mentions.Candidate{
			Mention:      m,
			SourcePolicy: source.Policy,
			SourceNote:   note,
		})
	}

	return mentions.Resolve(actor.ID, caps, rc, target.Policy, candidates)
}

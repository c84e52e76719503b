// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

// Package engine orchestrates the decision components per operation.
//
// Every operation fetches one consistent snapshot through the repositories,
// resolves the actor's capability set, then runs the pure decision logic.
// Nothing here performs blocking work beyond those fetches, and nothing is
// cached across requests.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/lorekeep/lorekeep/internal/access"
	"github.com/lorekeep/lorekeep/internal/atlas"
	"github.com/lorekeep/lorekeep/internal/auth"
	"github.com/lorekeep/lorekeep/internal/authority"
	"github.com/lorekeep/lorekeep/internal/entity"
	"github.com/lorekeep/lorekeep/internal/mentions"
	"github.com/lorekeep/lorekeep/internal/notes"
	"github.com/lorekeep/lorekeep/internal/world"
)

// Engine is the in-process decision surface consumed by the serving layer.
type Engine struct {
	worlds     world.WorldRepository
	campaigns  world.CampaignRepository
	characters world.CharacterRepository
	entities   entity.Repository
	notes      notes.Repository
	mentions   mentions.Repository
	locations  atlas.LocationRepository
	types      atlas.TypeRepository
	logger     *slog.Logger
}

// New creates an Engine over the given repositories.
func New(
	worlds world.WorldRepository,
	campaigns world.CampaignRepository,
	characters world.CharacterRepository,
	entities entity.Repository,
	noteRepo notes.Repository,
	mentionRepo mentions.Repository,
	locations atlas.LocationRepository,
	types atlas.TypeRepository,
	logger *slog.Logger,
) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		worlds:     worlds,
		campaigns:  campaigns,
		characters: characters,
		entities:   entities,
		notes:      noteRepo,
		mentions:   mentionRepo,
		locations:  locations,
		types:      types,
		logger:     logger,
	}
}

// Authority resolves the actor's capability set for a world and optional
// campaign. Campaign snapshots are validated against the world.
func (e *Engine) Authority(ctx context.Context, actor auth.Actor, worldID ulid.ULID, campaignID *ulid.ULID) (authority.Set, error) {
	w, err := e.worlds.Get(ctx, worldID)
	if err != nil {
		return authority.Set{}, err
	}

	var campaign *world.Campaign
	if campaignID != nil {
		campaign, err = e.campaigns.Get(ctx, *campaignID)
		if err != nil {
			return authority.Set{}, err
		}
	}

	owned, err := e.characters.ListOwnedBy(ctx, worldID, actor.ID)
	if err != nil {
		return authority.Set{}, err
	}

	return authority.Resolve(actor, w, campaign, owned)
}

// CanAccessEntity decides the operation on an entity for the actor in the
// given context.
func (e *Engine) CanAccessEntity(ctx context.Context, actor auth.Actor, entityID ulid.ULID, op access.Operation, rc access.Context) (access.Decision, error) {
	start := time.Now()

	ent, err := e.entities.Get(ctx, entityID)
	if err != nil {
		return access.Decision{}, err
	}

	caps, err := e.Authority(ctx, actor, ent.WorldID, rc.CampaignID)
	if err != nil {
		return access.Decision{}, err
	}

	decision := access.Evaluate(caps, ent.Policy, op, rc)
	if err := decision.Validate(); err != nil {
		return decision, oops.Wrapf(err, "decision validation failed")
	}

	access.RecordEvaluation(time.Since(start), op, decision.Effect)
	e.logger.DebugContext(ctx, "access decision",
		"actor_id", actor.ID.String(),
		"entity_id", entityID.String(),
		"operation", op.String(),
		"effect", decision.Effect.String(),
	)
	return decision, nil
}

// UpdateEntityPolicy replaces an entity's access policy. Requires management
// authority over the entity's world/campaign scope; read paths never reach
// this.
func (e *Engine) UpdateEntityPolicy(ctx context.Context, actor auth.Actor, entityID ulid.ULID, rc access.Context, pol access.Policy) error {
	ent, err := e.entities.Get(ctx, entityID)
	if err != nil {
		return err
	}

	caps, err := e.Authority(ctx, actor, ent.WorldID, rc.CampaignID)
	if err != nil {
		return err
	}
	if !caps.BypassesGrants() && !authority.CanManageCampaign(caps) {
		return oops.Code("FORBIDDEN").
			With("actor_id", actor.ID.String()).
			With("entity_id", entityID.String()).
			Errorf("policy mutation requires management authority")
	}

	return e.entities.UpdatePolicy(ctx, entityID, pol)
}

// CanCreateCampaign reports whether the actor may create a campaign in the
// world.
func (e *Engine) CanCreateCampaign(ctx context.Context, actor auth.Actor, worldID ulid.ULID) (bool, error) {
	caps, err := e.Authority(ctx, actor, worldID, nil)
	if err != nil {
		return false, err
	}
	return authority.CanCreateCampaign(caps), nil
}

// CanCreateCharacter reports whether the actor may create a character in the
// world, optionally scoped to a campaign's delegate list.
func (e *Engine) CanCreateCharacter(ctx context.Context, actor auth.Actor, worldID ulid.ULID, campaignID *ulid.ULID) (bool, error) {
	caps, err := e.Authority(ctx, actor, worldID, campaignID)
	if err != nil {
		return false, err
	}
	return authority.CanCreateCharacter(caps), nil
}

// CanManageCampaign reports whether the actor may manage the campaign.
func (e *Engine) CanManageCampaign(ctx context.Context, actor auth.Actor, campaignID ulid.ULID) (bool, error) {
	campaign, err := e.campaigns.Get(ctx, campaignID)
	if err != nil {
		return false, err
	}
	caps, err := e.Authority(ctx, actor, campaign.WorldID, &campaignID)
	if err != nil {
		return false, err
	}
	return authority.CanManageCampaign(caps), nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package main

import (
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorekeep/lorekeep/internal/auth"
	"github.com/lorekeep/lorekeep/internal/engine"

	atlaspg "github.com/lorekeep/lorekeep/internal/atlas/postgres"
	authpg "github.com/lorekeep/lorekeep/internal/auth/postgres"
	entitypg "github.com/lorekeep/lorekeep/internal/entity/postgres"
	notespg "github.com/lorekeep/lorekeep/internal/notes/postgres"
	worldpg "github.com/lorekeep/lorekeep/internal/world/postgres"
)

// Deps bundles the wired application services. The embedding serving layer
// receives the Engine; the serve command owns the session store lifecycle.
type Deps struct {
	Engine   *engine.Engine
	Sessions *auth.SessionStore
}

// newDeps wires the repositories onto the pool and builds the services.
func newDeps(pool *pgxpool.Pool, sessionTTL time.Duration, logger *slog.Logger) *Deps {
	eng := engine.New(
		worldpg.NewWorldRepository(pool),
		worldpg.NewCampaignRepository(pool),
		worldpg.NewCharacterRepository(pool),
		entitypg.NewEntityRepository(pool),
		notespg.NewNoteRepository(pool),
		notespg.NewMentionRepository(pool),
		atlaspg.NewLocationRepository(pool),
		atlaspg.NewTypeRepository(pool),
		logger,
	)

	sessions := auth.NewSessionStore(
		authpg.NewSessionRepository(pool),
		authpg.NewActorRepository(pool),
		sessionTTL,
	)

	return &Deps{Engine: eng, Sessions: sessions}
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorekeep/lorekeep/internal/access"
	"github.com/lorekeep/lorekeep/internal/entity"
	entitypg "github.com/lorekeep/lorekeep/internal/entity/postgres"
	"github.com/lorekeep/lorekeep/internal/mentions"
	"github.com/lorekeep/lorekeep/internal/notes"
	"github.com/lorekeep/lorekeep/internal/notes/postgres"
	"github.com/lorekeep/lorekeep/internal/world"
	worldpg "github.com/lorekeep/lorekeep/internal/world/postgres"
)

type noteFixture struct {
	worldID    ulid.ULID
	campaignID ulid.ULID
	entityID   ulid.ULID
}

func setupNoteFixture(ctx context.Context, t *testing.T) noteFixture {
	t.Helper()

	w, err := world.NewWorld("Notes World "+ulid.Make().String(), ulid.Make())
	require.NoError(t, err)
	require.NoError(t, worldpg.NewWorldRepository(testPool).Create(ctx, w))
	t.Cleanup(func() {
		_, _ = testPool.Exec(ctx, `DELETE FROM worlds WHERE id = $1`, w.ID.String())
	})

	c, err := world.NewCampaign(w.ID, "Winter Court", ulid.Make())
	require.NoError(t, err)
	require.NoError(t, worldpg.NewCampaignRepository(testPool).Create(ctx, c))

	e, err := entity.NewEntity(w.ID, w.PrimaryArchitectID, "Thornmarch Keep", access.PublicReadPolicy())
	require.NoError(t, err)
	require.NoError(t, entitypg.NewEntityRepository(testPool).Create(ctx, e))

	return noteFixture{worldID: w.ID, campaignID: c.ID, entityID: e.ID}
}

func TestNoteRepository_Roundtrip(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewNoteRepository(testPool)
	fix := setupNoteFixture(ctx, t)

	n := &notes.Note{
		ID:         ulid.Make(),
		EntityID:   fix.entityID,
		AuthorID:   ulid.Make(),
		Visibility: notes.VisibilityShared,
		CampaignID: &fix.campaignID,
		Body:       "The keep changed hands during the siege.",
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, n))

	got, err := repo.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, n.EntityID, got.EntityID)
	assert.Equal(t, n.AuthorID, got.AuthorID)
	assert.Equal(t, notes.VisibilityShared, got.Visibility)
	require.NotNil(t, got.CampaignID)
	assert.Equal(t, fix.campaignID, *got.CampaignID)
	assert.Nil(t, got.CharacterID)
	assert.Equal(t, n.Body, got.Body)

	_, err = repo.Get(ctx, ulid.Make())
	assert.ErrorIs(t, err, world.ErrNotFound)
}

func TestNoteRepository_ListByEntity(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewNoteRepository(testPool)
	fix := setupNoteFixture(ctx, t)

	author := ulid.Make()
	var ids []ulid.ULID
	for _, body := range []string{"first", "second", "third"} {
		n := &notes.Note{
			ID:         ulid.Make(),
			EntityID:   fix.entityID,
			AuthorID:   author,
			Visibility: notes.VisibilityPrivate,
			Body:       body,
			CreatedAt:  time.Now().UTC(),
		}
		require.NoError(t, repo.Create(ctx, n))
		ids = append(ids, n.ID)
	}

	list, err := repo.ListByEntity(ctx, fix.entityID)
	require.NoError(t, err)
	require.Len(t, list, 3)

	// Newest first.
	assert.Equal(t, ids[2], list[0].ID)
	assert.Equal(t, ids[0], list[2].ID)
}

func TestMentionRepository_ListByTarget(t *testing.T) {
	ctx := context.Background()
	noteRepo := postgres.NewNoteRepository(testPool)
	mentionRepo := postgres.NewMentionRepository(testPool)
	fix := setupNoteFixture(ctx, t)

	target, err := entity.NewEntity(fix.worldID, ulid.Make(), "Vex", access.PublicReadPolicy())
	require.NoError(t, err)
	require.NoError(t, entitypg.NewEntityRepository(testPool).Create(ctx, target))

	n := &notes.Note{
		ID:         ulid.Make(),
		EntityID:   fix.entityID,
		AuthorID:   ulid.Make(),
		Visibility: notes.VisibilityShared,
		CampaignID: &fix.campaignID,
		Body:       "Vex was seen at the keep.",
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, noteRepo.Create(ctx, n))

	m := &mentions.Mention{
		ID:             ulid.Make(),
		NoteID:         n.ID,
		SourceEntityID: fix.entityID,
		TargetEntityID: target.ID,
		CreatedAt:      time.Now().UTC(),
	}
	require.NoError(t, mentionRepo.Create(ctx, m))

	list, err := mentionRepo.ListByTarget(ctx, target.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, n.ID, list[0].NoteID)
	assert.Equal(t, fix.entityID, list[0].SourceEntityID)

	t.Run("deleting the entity cascades", func(t *testing.T) {
		require.NoError(t, entitypg.NewEntityRepository(testPool).Delete(ctx, fix.entityID))

		_, err := noteRepo.Get(ctx, n.ID)
		assert.ErrorIs(t, err, world.ErrNotFound)

		list, err := mentionRepo.ListByTarget(ctx, target.ID)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

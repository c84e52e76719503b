// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

//go:build integration

package postgres_test

import (
	"context"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorekeep/lorekeep/internal/access"
	"github.com/lorekeep/lorekeep/internal/atlas"
	"github.com/lorekeep/lorekeep/internal/atlas/postgres"
	"github.com/lorekeep/lorekeep/internal/world"
	worldpg "github.com/lorekeep/lorekeep/internal/world/postgres"
)

func createTestWorld(ctx context.Context, t *testing.T) ulid.ULID {
	t.Helper()
	w, err := world.NewWorld("Atlas World "+ulid.Make().String(), ulid.Make())
	require.NoError(t, err)
	require.NoError(t, worldpg.NewWorldRepository(testPool).Create(ctx, w))

	t.Cleanup(func() {
		_, _ = testPool.Exec(ctx, `DELETE FROM worlds WHERE id = $1`, w.ID.String())
	})
	return w.ID
}

func createTestType(ctx context.Context, t *testing.T, repo *postgres.TypeRepository, worldID ulid.ULID, name string) *atlas.LocationType {
	t.Helper()
	lt, err := atlas.NewLocationType(worldID, name)
	require.NoError(t, err)
	require.NoError(t, repo.CreateType(ctx, lt))
	return lt
}

func TestTypeRepository_RuleLog(t *testing.T) {
	ctx := context.Background()
	types := postgres.NewTypeRepository(testPool)
	worldID := createTestWorld(ctx, t)

	region := createTestType(ctx, t, types, worldID, "Region")
	city := createTestType(ctx, t, types, worldID, "City")

	allow, err := atlas.NewTypeRule(worldID, region.ID, city.ID, true)
	require.NoError(t, err)
	require.NoError(t, types.AppendRule(ctx, allow))

	deny, err := atlas.NewTypeRule(worldID, region.ID, city.ID, false)
	require.NoError(t, err)
	require.NoError(t, types.AppendRule(ctx, deny))

	t.Run("append keeps earlier rows", func(t *testing.T) {
		rules, err := types.RulesForPair(ctx, region.ID, city.ID)
		require.NoError(t, err)
		require.Len(t, rules, 2)
		assert.Equal(t, allow.ID, rules[0].ID)
		assert.Equal(t, deny.ID, rules[1].ID)
	})

	t.Run("latest row is effective", func(t *testing.T) {
		rules, err := types.RulesForWorld(ctx, worldID)
		require.NoError(t, err)
		assert.False(t, atlas.RuleLog(rules).Effective(region.ID, city.ID))
	})

	t.Run("get type", func(t *testing.T) {
		got, err := types.GetType(ctx, region.ID)
		require.NoError(t, err)
		assert.Equal(t, "Region", got.Name)

		_, err = types.GetType(ctx, ulid.Make())
		assert.ErrorIs(t, err, world.ErrNotFound)
	})
}

func TestLocationRepository_TreeOperations(t *testing.T) {
	ctx := context.Background()
	types := postgres.NewTypeRepository(testPool)
	locations := postgres.NewLocationRepository(testPool)
	worldID := createTestWorld(ctx, t)

	zone := createTestType(ctx, t, types, worldID, "Zone")
	creator := ulid.Make()

	newLoc := func(parentID *ulid.ULID, name string) *atlas.Location {
		l, err := atlas.NewLocation(worldID, zone.ID, parentID, name, creator, access.PublicReadPolicy())
		require.NoError(t, err)
		require.NoError(t, locations.Create(ctx, l))
		return l
	}

	root := newLoc(nil, "Root")
	mid := newLoc(&root.ID, "Mid")
	leaf := newLoc(&mid.ID, "Leaf")

	t.Run("get preserves policy and parent", func(t *testing.T) {
		got, err := locations.Get(ctx, leaf.ID)
		require.NoError(t, err)
		require.NotNil(t, got.ParentID)
		assert.Equal(t, mid.ID, *got.ParentID)
		assert.True(t, got.Policy.Read.Global)
	})

	t.Run("ancestor chain walks to the root", func(t *testing.T) {
		chain, err := locations.AncestorChain(ctx, leaf.ID)
		require.NoError(t, err)
		assert.Equal(t, []ulid.ULID{mid.ID, root.ID}, chain)
	})

	t.Run("snapshot loads the world arena", func(t *testing.T) {
		arena, err := locations.SnapshotWorld(ctx, worldID)
		require.NoError(t, err)
		assert.Len(t, arena, 3)
		assert.Contains(t, arena, root.ID)
	})

	t.Run("reparent persists the move", func(t *testing.T) {
		require.NoError(t, locations.Reparent(ctx, leaf.ID, &root.ID))
		got, err := locations.Get(ctx, leaf.ID)
		require.NoError(t, err)
		require.NotNil(t, got.ParentID)
		assert.Equal(t, root.ID, *got.ParentID)

		// Back to a root placement.
		require.NoError(t, locations.Reparent(ctx, leaf.ID, nil))
		got, err = locations.Get(ctx, leaf.ID)
		require.NoError(t, err)
		assert.Nil(t, got.ParentID)
	})

	t.Run("reparent unknown location", func(t *testing.T) {
		err := locations.Reparent(ctx, ulid.Make(), &root.ID)
		assert.ErrorIs(t, err, world.ErrNotFound)
	})

	t.Run("delete cascades to children", func(t *testing.T) {
		require.NoError(t, locations.Delete(ctx, root.ID))
		_, err := locations.Get(ctx, mid.ID)
		assert.ErrorIs(t, err, world.ErrNotFound)
	})
}

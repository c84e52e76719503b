// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package atlas_test

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorekeep/lorekeep/internal/atlas"
	"github.com/lorekeep/lorekeep/pkg/errutil"
)

func ref(id ulid.ULID) *ulid.ULID {
	return &id
}

type treeBuilder struct {
	worldID ulid.ULID
	arena   atlas.Arena
}

func newTreeBuilder() *treeBuilder {
	return &treeBuilder{worldID: ulid.Make(), arena: atlas.Arena{}}
}

func (b *treeBuilder) add(typeID ulid.ULID, parentID *ulid.ULID) ulid.ULID {
	loc := &atlas.Location{
		ID:       ulid.Make(),
		WorldID:  b.worldID,
		TypeID:   typeID,
		ParentID: parentID,
		Name:     "loc",
	}
	b.arena[loc.ID] = loc
	return loc.ID
}

func TestArena_AncestorChain(t *testing.T) {
	b := newTreeBuilder()
	typeID := ulid.Make()
	root := b.add(typeID, nil)
	mid := b.add(typeID, ref(root))
	leaf := b.add(typeID, ref(mid))

	chain, err := b.arena.AncestorChain(leaf)
	require.NoError(t, err)
	assert.Equal(t, []ulid.ULID{mid, root}, chain)

	chain, err = b.arena.AncestorChain(root)
	require.NoError(t, err)
	assert.Empty(t, chain)

	_, err = b.arena.AncestorChain(ulid.Make())
	errutil.AssertErrorCode(t, err, errutil.CodeNotFound)
}

func TestArena_AncestorChain_DetectsStoredCycle(t *testing.T) {
	b := newTreeBuilder()
	typeID := ulid.Make()
	a := b.add(typeID, nil)
	c := b.add(typeID, ref(a))
	b.arena[a].ParentID = ref(c)

	_, err := b.arena.AncestorChain(a)
	errutil.AssertErrorCode(t, err, errutil.CodeConflictCycle)
}

// TestHierarchy_PlacementScenario builds Region > City > District and then
// appends a later deny for the direct Region > District pairing.
func TestHierarchy_PlacementScenario(t *testing.T) {
	region := ulid.Make()
	city := ulid.Make()
	district := ulid.Make()
	base := time.Now()

	rules := atlas.RuleLog{
		rule(region, city, true, base),
		rule(city, district, true, base),
	}

	b := newTreeBuilder()
	regionLoc := b.add(region, nil)
	cityLoc := b.add(city, ref(regionLoc))

	h := atlas.Hierarchy{Rules: rules, Arena: b.arena}

	require.NoError(t, h.CheckPlacement(city, ref(regionLoc)))
	require.NoError(t, h.CheckPlacement(district, ref(cityLoc)))

	// Direct Region > District was never allowed.
	err := h.CheckPlacement(district, ref(regionLoc))
	errutil.AssertErrorCode(t, err, errutil.CodeConflictRule)

	// An explicit later deny keeps it that way even after an allow existed.
	h.Rules = append(h.Rules,
		rule(region, district, true, base.Add(time.Minute)),
		rule(region, district, false, base.Add(2*time.Minute)),
	)
	err = h.CheckPlacement(district, ref(regionLoc))
	errutil.AssertErrorCode(t, err, errutil.CodeConflictRule)
}

func TestHierarchy_CheckPlacement(t *testing.T) {
	region := ulid.Make()
	city := ulid.Make()

	b := newTreeBuilder()
	regionLoc := b.add(region, nil)

	h := atlas.Hierarchy{
		Rules: atlas.RuleLog{rule(region, city, true, time.Now())},
		Arena: b.arena,
	}

	t.Run("root placement is always valid", func(t *testing.T) {
		assert.NoError(t, h.CheckPlacement(city, nil))
		assert.NoError(t, h.CheckPlacement(ulid.Make(), nil))
	})

	t.Run("missing parent", func(t *testing.T) {
		err := h.CheckPlacement(city, ref(ulid.Make()))
		errutil.AssertErrorCode(t, err, errutil.CodeNotFound)
	})

	t.Run("allowed pairing", func(t *testing.T) {
		assert.NoError(t, h.CheckPlacement(city, ref(regionLoc)))
	})

	t.Run("reversed pairing denied", func(t *testing.T) {
		cityLoc := b.add(city, ref(regionLoc))
		err := h.CheckPlacement(region, ref(cityLoc))
		errutil.AssertErrorCode(t, err, errutil.CodeConflictRule)
	})
}

func TestHierarchy_CheckReparent(t *testing.T) {
	zone := ulid.Make()
	base := time.Now()

	b := newTreeBuilder()
	root := b.add(zone, nil)
	mid := b.add(zone, ref(root))
	leaf := b.add(zone, ref(mid))
	sibling := b.add(zone, ref(root))

	h := atlas.Hierarchy{
		Rules: atlas.RuleLog{rule(zone, zone, true, base)},
		Arena: b.arena,
	}

	t.Run("valid move", func(t *testing.T) {
		assert.NoError(t, h.CheckReparent(leaf, ref(sibling)))
	})

	t.Run("move to root", func(t *testing.T) {
		assert.NoError(t, h.CheckReparent(leaf, nil))
	})

	t.Run("unknown location", func(t *testing.T) {
		err := h.CheckReparent(ulid.Make(), ref(root))
		errutil.AssertErrorCode(t, err, errutil.CodeNotFound)
	})

	t.Run("self parent is a cycle", func(t *testing.T) {
		err := h.CheckReparent(mid, ref(mid))
		errutil.AssertErrorCode(t, err, errutil.CodeConflictCycle)
	})

	t.Run("moving under own descendant is a cycle", func(t *testing.T) {
		err := h.CheckReparent(root, ref(leaf))
		errutil.AssertErrorCode(t, err, errutil.CodeConflictCycle)

		err = h.CheckReparent(mid, ref(leaf))
		errutil.AssertErrorCode(t, err, errutil.CodeConflictCycle)
	})

	t.Run("type rules apply to moves", func(t *testing.T) {
		other := ulid.Make()
		outlier := b.add(other, nil)
		err := h.CheckReparent(outlier, ref(root))
		errutil.AssertErrorCode(t, err, errutil.CodeConflictRule)
	})
}

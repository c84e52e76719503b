// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

//go:build integration

package hierarchy_test

import (
	"context"
	"sync"

	"github.com/oklog/ulid/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/samber/oops"

	"github.com/lorekeep/lorekeep/internal/access"
	"github.com/lorekeep/lorekeep/internal/atlas"
	atlaspg "github.com/lorekeep/lorekeep/internal/atlas/postgres"
	"github.com/lorekeep/lorekeep/internal/world"
	worldpg "github.com/lorekeep/lorekeep/internal/world/postgres"
)

var _ = Describe("Concurrent reparent", func() {
	var (
		ctx       context.Context
		locations *atlaspg.LocationRepository
		worldID   ulid.ULID
	)

	newLocation := func(typeID ulid.ULID, parentID *ulid.ULID, name string) *atlas.Location {
		loc, err := atlas.NewLocation(worldID, typeID, parentID, name, ulid.Make(), access.PublicReadPolicy())
		Expect(err).NotTo(HaveOccurred())
		Expect(locations.Create(ctx, loc)).To(Succeed())
		return loc
	}

	BeforeEach(func() {
		ctx = context.Background()
		locations = atlaspg.NewLocationRepository(testPool)

		w, err := world.NewWorld("Concurrency World "+ulid.Make().String(), ulid.Make())
		Expect(err).NotTo(HaveOccurred())
		Expect(worldpg.NewWorldRepository(testPool).Create(ctx, w)).To(Succeed())
		worldID = w.ID

		DeferCleanup(func() {
			_, err := testPool.Exec(context.Background(), `DELETE FROM worlds WHERE id = $1`, worldID.String())
			Expect(err).NotTo(HaveOccurred())
		})
	})

	It("never lets two opposing moves create a cycle", func() {
		types := atlaspg.NewTypeRepository(testPool)
		zone, err := atlas.NewLocationType(worldID, "Zone")
		Expect(err).NotTo(HaveOccurred())
		Expect(types.CreateType(ctx, zone)).To(Succeed())

		a := newLocation(zone.ID, nil, "A")
		b := newLocation(zone.ID, nil, "B")

		// Each move alone is legal; together they would form A -> B -> A.
		var wg sync.WaitGroup
		errs := make([]error, 2)
		moves := []struct {
			child  ulid.ULID
			parent ulid.ULID
		}{
			{a.ID, b.ID},
			{b.ID, a.ID},
		}

		for i, move := range moves {
			wg.Add(1)
			go func(idx int, childID, parentID ulid.ULID) {
				defer GinkgoRecover()
				defer wg.Done()
				errs[idx] = locations.Reparent(ctx, childID, &parentID)
			}(i, move.child, move.parent)
		}
		wg.Wait()

		failures := 0
		for _, moveErr := range errs {
			if moveErr != nil {
				failures++
				oopsErr, ok := oops.AsOops(moveErr)
				Expect(ok).To(BeTrue())
				Expect(oopsErr.Code()).To(Equal("CONFLICT_CYCLE"))
			}
		}
		Expect(failures).To(Equal(1), "exactly one of the opposing moves must be rejected")

		// The stored tree must still be acyclic.
		arena, err := locations.SnapshotWorld(ctx, worldID)
		Expect(err).NotTo(HaveOccurred())
		for id := range arena {
			_, chainErr := arena.AncestorChain(id)
			Expect(chainErr).NotTo(HaveOccurred())
		}
	})

	It("serializes a fan of moves onto one parent without losing any", func() {
		types := atlaspg.NewTypeRepository(testPool)
		zone, err := atlas.NewLocationType(worldID, "Zone")
		Expect(err).NotTo(HaveOccurred())
		Expect(types.CreateType(ctx, zone)).To(Succeed())

		hub := newLocation(zone.ID, nil, "Hub")

		const movers = 8
		children := make([]*atlas.Location, movers)
		for i := range children {
			children[i] = newLocation(zone.ID, nil, "Spoke")
		}

		var wg sync.WaitGroup
		errs := make([]error, movers)
		for i, child := range children {
			wg.Add(1)
			go func(idx int, childID ulid.ULID) {
				defer GinkgoRecover()
				defer wg.Done()
				errs[idx] = locations.Reparent(ctx, childID, &hub.ID)
			}(i, child.ID)
		}
		wg.Wait()

		for _, moveErr := range errs {
			Expect(moveErr).NotTo(HaveOccurred())
		}

		arena, err := locations.SnapshotWorld(ctx, worldID)
		Expect(err).NotTo(HaveOccurred())
		for _, child := range children {
			moved := arena[child.ID]
			Expect(moved).NotTo(BeNil())
			Expect(moved.ParentID).To(HaveValue(Equal(hub.ID)))
		}
	})
})

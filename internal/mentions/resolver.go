// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package mentions

import (
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/lorekeep/lorekeep/internal/access"
	"github.com/lorekeep/lorekeep/internal/authority"
	"github.com/lorekeep/lorekeep/internal/notes"
)

// Candidate bundles a mention with the snapshot of its source side: the
// source entity's access policy and the note the mention came from. The
// caller fetches these in one consistent read.
type Candidate struct {
	Mention      *Mention
	SourcePolicy access.Policy
	SourceNote   *notes.Note
}

// Resolve filters the mentions pointing at a target down to those visible to
// the actor.
//
// The boundary is the target's own readability: if the actor cannot read the
// target entity under the context, the whole call fails with FORBIDDEN
// rather than returning a filtered empty list. Each candidate is then
// included only if the actor can read the mention's source entity and can
// see the underlying source note; invisible sources are dropped silently.
func Resolve(actorID ulid.ULID, caps authority.Set, rc access.Context, targetPolicy access.Policy, candidates []Candidate) ([]*Mention, error) {
	if !access.Evaluate(caps, targetPolicy, access.OpRead, rc).IsAllowed() {
		return nil, oops.Code("FORBIDDEN").
			With("actor_id", actorID.String()).
			Errorf("target entity is not readable in this context")
	}

	visible := make([]*Mention, 0, len(candidates))
	for _, c := range candidates {
		if c.Mention == nil || c.SourceNote == nil {
			continue
		}
		if !access.Evaluate(caps, c.SourcePolicy, access.OpRead, rc).IsAllowed() {
			continue
		}
		if !notes.Visible(c.SourceNote, actorID, caps, rc) {
			continue
		}
		visible = append(visible, c.Mention)
	}
	return visible, nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package access

import (
	"github.com/lorekeep/lorekeep/internal/authority"
)

// Evaluate decides whether the capability set permits the operation on an
// object carrying the policy, in the given context.
//
// World-level authority (system admin, world architect) bypasses
// object-level grants entirely. Otherwise the grant for the operation is
// inspected: global first, then the campaign list, then the character list.
// Evaluation is pure; identical inputs always yield identical decisions.
func Evaluate(caps authority.Set, pol Policy, op Operation, rc Context) Decision {
	if caps.BypassesGrants() {
		return NewDecision(EffectWorldBypass, "world-level authority")
	}

	grant := pol.Grant(op)
	if grant.Global {
		return NewDecision(EffectAllow, "global grant")
	}
	if rc.CampaignID != nil && containsID(grant.Campaigns, *rc.CampaignID) {
		return NewDecision(EffectAllow, "campaign grant")
	}
	if rc.CharacterID != nil && containsID(grant.Characters, *rc.CharacterID) {
		return NewDecision(EffectAllow, "character grant")
	}
	return NewDecision(EffectDefaultDeny, "no matching grant")
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package access

import "fmt"

// Effect represents the evaluated outcome of an access decision.
type Effect int

// Effect constants define the possible outcomes of grant evaluation.
const (
	EffectDefaultDeny Effect = iota // default_deny
	EffectAllow                     // allow
	EffectWorldBypass               // world_bypass
)

var effectStrings = [...]string{
	"default_deny",
	"allow",
	"world_bypass",
}

func (e Effect) String() string {
	if e >= 0 && int(e) < len(effectStrings) {
		return effectStrings[e]
	}
	return fmt.Sprintf("unknown(%d)", int(e))
}

// Decision is the result of evaluating an access grant.
// The allowed field is unexported to prevent invariant bypass; it is derived
// from the effect at construction time.
type Decision struct {
	allowed bool
	Effect  Effect
	Reason  string
}

// NewDecision creates a Decision with the allowed field set consistently
// based on the effect: Allow and WorldBypass grant access, DefaultDeny does
// not.
func NewDecision(effect Effect, reason string) Decision {
	return Decision{
		allowed: effect == EffectAllow || effect == EffectWorldBypass,
		Effect:  effect,
		Reason:  reason,
	}
}

// IsAllowed returns whether the decision grants access.
func (d Decision) IsAllowed() bool {
	return d.allowed
}

// Validate checks that the allowed field is consistent with the effect.
// Called at evaluator return boundaries.
func (d Decision) Validate() error {
	expect := d.Effect == EffectAllow || d.Effect == EffectWorldBypass
	if d.allowed != expect {
		return fmt.Errorf("decision invariant violated: allowed=%v but effect=%s", d.allowed, d.Effect)
	}
	return nil
}

//
//  Copyright © Fieldgate Inc. All rights reserved.
//

// Package model defines the core data structures for permission
// evaluation.
//
// This package contains the runtime value types shared by the rule
// store, the decision engine and the seed loader. Rules are value
// objects: equality is structural and a rule has no identity beyond its
// contents.
//
// # Key Types
//
// Rule types:
//   - [Rule]: (target, kind, effect, condition set) tuple
//   - [Target]: dotted identifier of a field or action of an entity
//   - [Kind]: the operation being authorized (view, edit, action)
//   - [Effect]: the sign of a rule (allow, disallow)
//   - [ConditionSet]: predicate tokens that must all hold for a rule to apply
//
// Evaluation types:
//   - [Context]: the set of predicate tokens currently true
//   - [TargetSet]: a set of concrete targets
//   - [User], [Entity]: snapshots of the inputs predicates evaluate against
package model

import (
	"github.com/fieldgate/permengine/pkg/common"
)

// Kind identifies the operation a rule authorizes.
type Kind string

// Permission kinds. Edit implies view on read paths: a writable field is
// always readable. View never implies edit, and action participates in no
// implication at all.
const (
	KindView   Kind = "view"
	KindEdit   Kind = "edit"
	KindAction Kind = "action"
)

// Valid reports whether k is one of the three defined permission kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindView, KindEdit, KindAction:
		return true
	}
	return false
}

// Compatible returns the rule kinds that can satisfy a request for k:
//
//	view   <- {view, edit}
//	edit   <- {edit}
//	action <- {action}
func (k Kind) Compatible() []Kind {
	if k == KindView {
		return []Kind{KindView, KindEdit}
	}
	return []Kind{k}
}

// Satisfies reports whether a rule of kind k qualifies for the requested
// kind.
func (k Kind) Satisfies(requested Kind) bool {
	for _, c := range requested.Compatible() {
		if k == c {
			return true
		}
	}
	return false
}

// Effect is the sign of a rule.
type Effect string

// Rule effects. An unmatched target is denied by default, so Disallow
// rules exist only to carve exceptions out of broader Allow rules.
const (
	EffectAllow    Effect = "allow"
	EffectDisallow Effect = "disallow"
)

// Valid reports whether e is a defined effect.
func (e Effect) Valid() bool {
	return e == EffectAllow || e == EffectDisallow
}

// Rule is a single declarative permission statement.
//
// A rule applies in a given context when its condition set is a subset
// of the active context and its target matches the concrete target
// under evaluation. Rules are created by module seed programs at
// bootstrap and never mutated by request traffic.
type Rule struct {
	Target     Target       `json:"target"`
	Kind       Kind         `json:"permission_kind"`
	Effect     Effect       `json:"effect"`
	Conditions ConditionSet `json:"condition"`
}

// Normalize returns a copy of the rule with its condition set
// de-duplicated and sorted. Loaders normalize every rule before
// publishing it so structural equality and stable ordering hold.
func (r Rule) Normalize() Rule {
	r.Conditions = r.Conditions.Normalize()
	return r
}

// Specificity returns the primary specificity key of the rule: the
// number of conditions. More conditions mean a more specific rule.
func (r Rule) Specificity() int {
	return len(r.Conditions)
}

// Validate checks the rule against the data-model invariants: a known
// kind, a known effect, and a target that is either fully qualified or
// ends with ".*". Returns a [common.SeedError] describing the first
// violation found.
func (r Rule) Validate() error {
	if !r.Kind.Valid() {
		return common.NewSeedError("", common.SeedReasonUnknownKind, "unknown permission kind %q in rule for %q", r.Kind, r.Target)
	}
	if !r.Effect.Valid() {
		return common.NewSeedError("", common.SeedReasonUnknownEffect, "unknown effect %q in rule for %q", r.Effect, r.Target)
	}
	if err := r.Target.Validate(); err != nil {
		return err
	}
	return nil
}

// User is a snapshot of the acting user, as assembled by the caller
// from its identity layer. The engine never resolves users itself.
type User struct {
	// ID is an opaque identity, unique within the deployment.
	ID string `json:"id"`
	// Groups holds the names of every role group the user belongs to.
	Groups []string `json:"groups,omitempty"`
}

// Entity is a snapshot of the business object a decision concerns.
//
// The caller assembles it from the persisted record (or the incoming
// payload for unsaved objects); the engine never reads or writes the
// entity graph. Type ancestry is not part of the snapshot: it lives in
// the schema registry so that rules authored against a base type apply
// to every concrete variant without reflective walks at decision time.
type Entity struct {
	// Type is the concrete entity type name, e.g. "audit_spotcheck".
	Type string `json:"type"`
	// Status is the current lifecycle status, empty when the type has none.
	Status string `json:"status,omitempty"`
	// New marks a freshly created object that has not been persisted yet.
	New bool `json:"new,omitempty"`
	// Relations maps relation names (author, assignee, staff_member, ...)
	// to the user IDs standing in that relation to the entity. The
	// vocabulary defines which relations are visible; anything else in
	// this map is ignored.
	Relations map[string][]string `json:"relations,omitempty"`
}

// Related reports whether the given user stands in the named relation
// to the entity.
func (e *Entity) Related(relation, userID string) bool {
	if e == nil {
		return false
	}
	for _, id := range e.Relations[relation] {
		if id == userID {
			return true
		}
	}
	return false
}

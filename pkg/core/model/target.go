//
//  Copyright © Fieldgate Inc. All rights reserved.
//

package model

import (
	"sort"
	"strings"

	"github.com/fieldgate/permengine/pkg/common"
)

// Wildcard is the field segment that matches any field or action of an
// entity. Wildcards appear only in rules; every concrete target the
// engine is asked to resolve is fully qualified.
const Wildcard = "*"

// Target is a dotted identifier "<app>_<entity>.<field_or_action>",
// e.g. "audit_engagement.partner" or "audit_engagement.submit". The
// field segment may be the literal "*" in rules.
type Target string

// NewTarget builds a target from an entity type name and a field or
// action name.
func NewTarget(entity, field string) Target {
	return Target(entity + "." + field)
}

// Entity returns the entity-type segment of the target.
func (t Target) Entity() string {
	if i := strings.LastIndex(string(t), "."); i >= 0 {
		return string(t)[:i]
	}
	return ""
}

// Field returns the field-or-action segment of the target.
func (t Target) Field() string {
	if i := strings.LastIndex(string(t), "."); i >= 0 {
		return string(t)[i+1:]
	}
	return string(t)
}

// IsWildcard reports whether the target ends with ".*".
func (t Target) IsWildcard() bool {
	return strings.HasSuffix(string(t), "."+Wildcard)
}

// Matches reports whether a rule with this target governs the given
// concrete target: either the two are equal, or this target is a
// wildcard over the concrete target's entity.
func (t Target) Matches(concrete Target) bool {
	if t == concrete {
		return true
	}
	if t.IsWildcard() {
		return strings.HasPrefix(string(concrete), strings.TrimSuffix(string(t), Wildcard))
	}
	return false
}

// Validate checks the target against the dotted grammar. A valid target
// has a non-empty entity segment and a non-empty field segment; "*" is
// only valid as the entire field segment.
func (t Target) Validate() error {
	s := string(t)
	if s == "" {
		return common.NewSeedError("", common.SeedReasonMalformedTarget, "empty target")
	}
	i := strings.LastIndex(s, ".")
	if i <= 0 || i == len(s)-1 {
		return common.NewSeedError("", common.SeedReasonMalformedTarget, "target %q does not match <app>_<entity>.<field_or_action>", s)
	}
	field := s[i+1:]
	if strings.Contains(field, Wildcard) && field != Wildcard {
		return common.NewSeedError("", common.SeedReasonMalformedTarget, "target %q may only use %q as the entire field segment", s, Wildcard)
	}
	return nil
}

// ParseTarget validates s and returns it as a [Target]. It is the
// integration-boundary counterpart of [Target.Validate]: callers that
// accept targets from the outside reject anything ill-formed here,
// so the engine itself can treat unknown targets as simply denied.
func ParseTarget(s string) (Target, error) {
	t := Target(s)
	if err := t.Validate(); err != nil {
		return "", common.NewIntegrationError("target", "%q does not match the dotted target grammar", s)
	}
	return t, nil
}

// TargetSet is a set of concrete targets.
type TargetSet map[Target]struct{}

// NewTargetSet builds a set from the given targets.
func NewTargetSet(targets ...Target) TargetSet {
	s := make(TargetSet, len(targets))
	for _, t := range targets {
		s[t] = struct{}{}
	}
	return s
}

// Has reports whether t is in the set.
func (s TargetSet) Has(t Target) bool {
	_, ok := s[t]
	return ok
}

// Add inserts t into the set.
func (s TargetSet) Add(t Target) {
	s[t] = struct{}{}
}

// Remove deletes t from the set.
func (s TargetSet) Remove(t Target) {
	delete(s, t)
}

// Slice returns the members in byte order, for deterministic output.
func (s TargetSet) Slice() []Target {
	out := make([]Target, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Strings returns the members in byte order as plain strings.
func (s TargetSet) Strings() []string {
	targets := s.Slice()
	out := make([]string, len(targets))
	for i, t := range targets {
		out[i] = string(t)
	}
	return out
}

// Clone returns an independent copy of the set.
func (s TargetSet) Clone() TargetSet {
	out := make(TargetSet, len(s))
	for t := range s {
		out[t] = struct{}{}
	}
	return out
}

//
//  Copyright © Fieldgate Inc. All rights reserved.
//

package model

import (
	"sort"
)

// Context is the active context of a decision: the set of predicate
// tokens that currently hold for (user, entity, module). Tokens are
// opaque to the decision engine; it only tests subset membership.
type Context map[string]struct{}

// NewContext builds a context from the given tokens, collapsing
// duplicates.
func NewContext(tokens ...string) Context {
	c := make(Context, len(tokens))
	for _, t := range tokens {
		c[t] = struct{}{}
	}
	return c
}

// Has reports whether the token holds in this context.
func (c Context) Has(token string) bool {
	_, ok := c[token]
	return ok
}

// Add inserts a token into the context.
func (c Context) Add(token string) {
	c[token] = struct{}{}
}

// Tokens returns the context's tokens in byte order.
func (c Context) Tokens() []string {
	out := make([]string, 0, len(c))
	for t := range c {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// ConditionSet is the unordered set of predicate tokens a rule requires.
// An empty set means the rule is always applicable, subject to target
// match. The slice representation keeps rules directly serializable to
// the persisted text[] column; use [ConditionSet.Normalize] to restore
// set semantics after construction.
type ConditionSet []string

// Normalize returns the set de-duplicated and sorted.
func (cs ConditionSet) Normalize() ConditionSet {
	if len(cs) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(cs))
	out := make(ConditionSet, 0, len(cs))
	for _, t := range cs {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// SubsetOf reports whether every condition token holds in ctx. This is
// the rule-applicability test: a rule with conditions {X, Y} does not
// match a context holding only {X}.
func (cs ConditionSet) SubsetOf(ctx Context) bool {
	for _, t := range cs {
		if !ctx.Has(t) {
			return false
		}
	}
	return true
}

// Equal reports structural equality with other; both sides are compared
// in normalized form.
func (cs ConditionSet) Equal(other ConditionSet) bool {
	a, b := cs.Normalize(), other.Normalize()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Key returns a canonical string form of the normalized set, usable as
// a deterministic tie-break key.
func (cs ConditionSet) Key() string {
	n := cs.Normalize()
	out := ""
	for i, t := range n {
		if i > 0 {
			out += "\x00"
		}
		out += t
	}
	return out
}

//
//  Copyright © Fieldgate Inc. All rights reserved.
//

package vocabulary

import (
	"fmt"
)

// GroupPredicate emits one `user.group="<group-name>"` token for every
// role group the user belongs to.
type GroupPredicate struct{}

// Template implements [Predicate].
func (GroupPredicate) Template() string { return `user.group="{group}"` }

// Scope implements [Predicate].
func (GroupPredicate) Scope() Scope { return ScopeUser }

// Evaluate implements [Predicate].
func (GroupPredicate) Evaluate(in Input) []string {
	if in.User == nil || len(in.User.Groups) == 0 {
		return nil
	}
	tokens := make([]string, 0, len(in.User.Groups))
	for _, g := range in.User.Groups {
		tokens = append(tokens, fmt.Sprintf("user.group=%q", g))
	}
	return tokens
}

// StatusPredicate emits `<entity>.status="<status>"` for the entity's
// current lifecycle status.
//
// The entity segment of the token is the highest ancestor type that
// declares status, not the concrete subtype: rules are authored once at
// the base level and must match across all variants. The precomputed
// type registry supplies that ancestor; without a registry entry the
// concrete type name is used as-is.
type StatusPredicate struct{}

// Template implements [Predicate].
func (StatusPredicate) Template() string { return `{entity}.status="{status}"` }

// Scope implements [Predicate].
func (StatusPredicate) Scope() Scope { return ScopeEntity }

// Evaluate implements [Predicate].
func (StatusPredicate) Evaluate(in Input) []string {
	if in.Entity == nil || in.Entity.Status == "" {
		return nil
	}
	name := in.Entity.Type
	if owner, ok := in.Types.StatusOwner(name); ok {
		name = owner
	}
	return []string{fmt.Sprintf("%s.status=%q", name, in.Entity.Status)}
}

// NewObjectPredicate emits `new <entity>` when the entity is freshly
// created and not yet persisted.
//
// One token is emitted for the concrete type and each of its declared
// ancestors, so `new audit_engagement` written in a base-level seed
// matches a fresh spot check as well.
type NewObjectPredicate struct{}

// Template implements [Predicate].
func (NewObjectPredicate) Template() string { return `new {entity}` }

// Scope implements [Predicate].
func (NewObjectPredicate) Scope() Scope { return ScopeEntity }

// Evaluate implements [Predicate].
func (NewObjectPredicate) Evaluate(in Input) []string {
	if in.Entity == nil || !in.Entity.New {
		return nil
	}
	lineage := in.Types.Lineage(in.Entity.Type)
	tokens := make([]string, 0, len(lineage))
	for _, name := range lineage {
		tokens = append(tokens, "new "+name)
	}
	return tokens
}

// ModulePredicate emits `module=<name>` for the functional module the
// request runs under, scoping rules to their owning module.
type ModulePredicate struct{}

// Template implements [Predicate].
func (ModulePredicate) Template() string { return "module={name}" }

// Scope implements [Predicate].
func (ModulePredicate) Scope() Scope { return ScopeModule }

// Evaluate implements [Predicate].
func (ModulePredicate) Evaluate(in Input) []string {
	if in.Module == "" {
		return nil
	}
	return []string{"module=" + in.Module}
}

// RelationPredicate emits `<alias>.<relation>=user` when the acting
// user stands in the named relation to the entity, e.g.
// `engagement.author=user` or `visit.focal_point=user`.
//
// Alias is the short entity alias used in seed files, decoupled from
// the canonical type name. The relation itself is read from the entity
// snapshot; the vocabulary decides which relations are visible at all,
// which keeps predicates from walking unbounded object graphs.
type RelationPredicate struct {
	// Alias is the entity alias in the token, e.g. "engagement".
	Alias string
	// Relation is the relation name, e.g. "author" or "staff_member".
	Relation string
}

// Template implements [Predicate].
func (p RelationPredicate) Template() string {
	return fmt.Sprintf("%s.%s=user", p.Alias, p.Relation)
}

// Scope implements [Predicate].
func (p RelationPredicate) Scope() Scope { return ScopeEntity }

// Evaluate implements [Predicate].
func (p RelationPredicate) Evaluate(in Input) []string {
	if in.User == nil || in.Entity == nil {
		return nil
	}
	if !in.Entity.Related(p.Relation, in.User.ID) {
		return nil
	}
	return []string{p.Template()}
}

// FuncPredicate wraps an arbitrary domain predicate. Modules use it for
// tokens outside the shared grammar, e.g. staff-membership flags
// computed by the caller.
//
// Fn must be pure. If it panics, the context assembler treats the
// predicate as false and warns once per process.
type FuncPredicate struct {
	// Token is both the template and the emitted token.
	Token string
	// In declares the predicate's scope.
	In Scope
	// Fn reports whether the predicate holds.
	Fn func(in Input) bool
}

// Template implements [Predicate].
func (p FuncPredicate) Template() string { return p.Token }

// Scope implements [Predicate].
func (p FuncPredicate) Scope() Scope { return p.In }

// Evaluate implements [Predicate].
func (p FuncPredicate) Evaluate(in Input) []string {
	if p.Fn == nil || !p.Fn(in) {
		return nil
	}
	return []string{p.Token}
}

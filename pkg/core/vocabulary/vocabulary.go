//
//  Copyright © Fieldgate Inc. All rights reserved.
//

// Package vocabulary enumerates every predicate the permission system
// recognizes and evaluates them against (user, entity, module) to
// produce condition tokens.
//
// A predicate exposes a template describing its token form, e.g.
// `user.group="{group}"`, and a pure evaluator returning the token(s)
// that currently hold. The decision engine treats tokens as opaque
// strings; this package owns their meaning.
//
// Vocabularies are assembled at bootstrap: the shared predicates come
// from [Default] and each functional module registers its own relation
// and custom predicates via [Vocabulary.With]. There is no open-class
// registry at decision time.
package vocabulary

import (
	"time"

	"github.com/fieldgate/permengine/pkg/core/model"
	"github.com/fieldgate/permengine/pkg/core/schema"
)

// Scope declares which inputs a predicate needs. The context assembler
// skips predicates whose required input is absent from the request.
type Scope int

// Predicate scopes.
const (
	// ScopeModule predicates are always relevant.
	ScopeModule Scope = iota
	// ScopeUser predicates require the acting user.
	ScopeUser
	// ScopeEntity predicates require the entity under decision.
	ScopeEntity
)

// Input carries the decision inputs to predicate evaluators.
//
// Evaluators are pure functions of Input: they must not mutate it or
// reach for ambient state. Time-dependent predicates read Now, which
// the assembler pins from its injected clock so tests are
// deterministic.
type Input struct {
	User   *model.User
	Entity *model.Entity
	Module string
	Types  *schema.Registry
	Now    time.Time
}

// Predicate is a named boolean function over (user, entity, module)
// whose truthy output is one or more token strings.
type Predicate interface {
	// Template describes the token form, e.g. `user.group="{group}"`.
	// Templates identify predicates in diagnostics and must be unique
	// within a vocabulary.
	Template() string

	// Scope declares which inputs the predicate requires.
	Scope() Scope

	// Evaluate returns the predicate's token(s) if it currently holds,
	// or nothing. A predicate that cannot evaluate (missing attribute,
	// detached entity) returns nothing; it never reports an error into
	// the decision path.
	Evaluate(in Input) []string
}

// Vocabulary is a fixed, ordered set of predicates.
//
// A Vocabulary is immutable: With returns an extended copy, so a base
// vocabulary can be shared across modules while each module carries its
// own extensions.
type Vocabulary struct {
	predicates []Predicate
}

// New creates a vocabulary from the given predicates.
func New(predicates ...Predicate) *Vocabulary {
	return &Vocabulary{predicates: predicates}
}

// Default returns the vocabulary of predicates shared by every module:
// user groups, entity lifecycle status, freshly-created objects and the
// module scope token.
//
// Relation predicates (author, assignee, focal point, ...) are
// module-specific; modules add them with [Vocabulary.With] at
// bootstrap.
func Default() *Vocabulary {
	return New(
		GroupPredicate{},
		StatusPredicate{},
		NewObjectPredicate{},
		ModulePredicate{},
	)
}

// With returns a copy of the vocabulary extended with the given
// predicates.
func (v *Vocabulary) With(predicates ...Predicate) *Vocabulary {
	out := make([]Predicate, 0, len(v.predicates)+len(predicates))
	out = append(out, v.predicates...)
	out = append(out, predicates...)
	return &Vocabulary{predicates: out}
}

// Predicates returns the vocabulary's predicates in registration order.
func (v *Vocabulary) Predicates() []Predicate {
	return v.predicates
}

//
//  Copyright © Fieldgate Inc. All rights reserved.
//

// Package assembler builds the active context for a decision: the set
// of predicate tokens that currently hold for (user, entity, module).
//
// Assembly is deterministic. Identical inputs produce identical
// contexts; any time dependence goes through the injected clock so
// tests can pin it.
package assembler

import (
	"sync"
	"time"

	"github.com/fieldgate/permengine/internal/logging"
	"github.com/fieldgate/permengine/pkg/core/model"
	"github.com/fieldgate/permengine/pkg/core/schema"
	"github.com/fieldgate/permengine/pkg/core/vocabulary"
)

var logger = logging.GetLogger("permengine.assembler")

const agent = "assembler"

// Clock supplies the current time to time-dependent predicates.
type Clock func() time.Time

// Assembler evaluates a vocabulary against decision inputs.
//
// An Assembler is safe for concurrent use; per-request state lives on
// the stack of [Assembler.Assemble].
type Assembler struct {
	vocab *vocabulary.Vocabulary
	types *schema.Registry
	clock Clock

	// warned tracks predicates whose evaluator panicked, so the
	// diagnostic is emitted once per predicate per process.
	warnedMu sync.Mutex
	warned   map[string]struct{}
}

// New creates an assembler for the given vocabulary and type registry.
// A nil clock defaults to time.Now.
func New(vocab *vocabulary.Vocabulary, types *schema.Registry, clock Clock) *Assembler {
	if clock == nil {
		clock = time.Now
	}
	return &Assembler{
		vocab:  vocab,
		types:  types,
		clock:  clock,
		warned: make(map[string]struct{}),
	}
}

// Assemble evaluates every relevant predicate and returns the active
// context. Module-level predicates are always relevant; user-level
// predicates require a user and entity-level predicates require an
// entity. Duplicate tokens collapse.
func (a *Assembler) Assemble(user *model.User, entity *model.Entity, module string) model.Context {
	in := vocabulary.Input{
		User:   user,
		Entity: entity,
		Module: module,
		Types:  a.types,
		Now:    a.clock(),
	}

	ctx := model.NewContext()
	for _, p := range a.vocab.Predicates() {
		switch p.Scope() {
		case vocabulary.ScopeUser:
			if user == nil {
				continue
			}
		case vocabulary.ScopeEntity:
			if entity == nil {
				continue
			}
		}

		for _, token := range a.evaluate(p, in) {
			ctx.Add(token)
		}
	}

	return ctx
}

// evaluate runs one predicate, converting a panic into "predicate is
// false" with a once-per-process warning.
func (a *Assembler) evaluate(p vocabulary.Predicate, in vocabulary.Input) (tokens []string) {
	defer func() {
		if r := recover(); r != nil {
			tokens = nil
			a.warnOnce(p.Template(), r)
		}
	}()
	return p.Evaluate(in)
}

func (a *Assembler) warnOnce(template string, cause interface{}) {
	a.warnedMu.Lock()
	defer a.warnedMu.Unlock()
	if _, ok := a.warned[template]; ok {
		return
	}
	a.warned[template] = struct{}{}
	logger.Warnf(agent, "evaluate", "predicate %s failed and is treated as false: %+v", template, cause)
}

// ResetWarnings clears the once-per-process warning registry. Intended
// for testing.
func (a *Assembler) ResetWarnings() {
	a.warnedMu.Lock()
	defer a.warnedMu.Unlock()
	a.warned = make(map[string]struct{})
}

//
//  Copyright © Fieldgate Inc. All rights reserved.
//

// Package core implements the permission decision algorithm.
//
// A decision takes an active context, a set of concrete targets and a
// permission kind, and returns the subset of targets that resolve to
// allow. The rule set is declarative and may contain overlapping grants
// and denials authored by different module seeds; the algorithm orders
// applicable rules by specificity and consumes targets as verdicts
// land, so a narrow rule always overrides a broad one and unmatched
// targets default to deny.
package core

import (
	"sort"

	"github.com/fieldgate/permengine/internal/logging"
	"github.com/fieldgate/permengine/pkg/core/model"
	"github.com/fieldgate/permengine/pkg/core/rulestore"
	"github.com/fieldgate/permengine/pkg/core/schema"
)

var logger = logging.GetLogger("permengine")

const agent = "engine"

// Engine evaluates decisions against a rule store and a type registry.
//
// Engine is stateless between calls and safe for concurrent use; each
// decision reads a single consistent snapshot of the store.
type Engine struct {
	store *rulestore.Store
	types *schema.Registry
}

// NewEngine creates a decision engine.
func NewEngine(store *rulestore.Store, types *schema.Registry) *Engine {
	return &Engine{
		store: store,
		types: types,
	}
}

// expansion is a requested target together with its ancestor-qualified
// forms. A rule written against a base type governs the concrete
// variant's target through these forms.
type expansion struct {
	target model.Target
	forms  []model.Target
}

func (e *Engine) expand(targets model.TargetSet) ([]expansion, []string) {
	expansions := make([]expansion, 0, len(targets))
	var entities []string

	for _, t := range targets.Slice() {
		entity, field := t.Entity(), t.Field()
		lineage := e.types.Lineage(entity)

		forms := make([]model.Target, 0, len(lineage))
		for _, ancestor := range lineage {
			forms = append(forms, model.NewTarget(ancestor, field))
		}
		expansions = append(expansions, expansion{target: t, forms: forms})
		entities = append(entities, lineage...)
	}

	return expansions, entities
}

// governs reports whether the rule's target matches the requested
// target directly or through any of its ancestor-qualified forms.
func governs(rule model.Rule, exp expansion) bool {
	for _, form := range exp.forms {
		if rule.Target.Matches(form) {
			return true
		}
	}
	return false
}

// orderRules sorts candidates most specific first:
//
//  1. larger condition set (more conditions = more specific)
//  2. non-wildcard target before wildcard
//  3. byte order on target
//  4. effect, allow before disallow
//  5. byte order on the canonical condition-set key
//
// Steps 3-5 carry no semantic weight; they only pin a stable total
// order so decisions are reproducible.
func orderRules(rules []model.Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		a, b := rules[i], rules[j]
		if sa, sb := a.Specificity(), b.Specificity(); sa != sb {
			return sa > sb
		}
		if wa, wb := a.Target.IsWildcard(), b.Target.IsWildcard(); wa != wb {
			return !wa
		}
		if a.Target != b.Target {
			return a.Target < b.Target
		}
		if a.Effect != b.Effect {
			return a.Effect < b.Effect
		}
		return a.Conditions.Key() < b.Conditions.Key()
	})
}

// Decide returns the subset of targets allowed for the requested kind
// in the given context.
//
// The engine never raises during evaluation: unknown targets, missing
// rules and empty contexts all resolve to deny.
func (e *Engine) Decide(ctx model.Context, targets model.TargetSet, kind model.Kind) model.TargetSet {
	allowed := model.NewTargetSet()
	if len(targets) == 0 || !kind.Valid() {
		return allowed
	}

	expansions, entities := e.expand(targets)

	candidates := e.store.Candidates(ctx, entities)
	if len(candidates) == 0 {
		return allowed
	}

	// restrict to rules whose kind satisfies the request: view is
	// satisfied by view or edit, edit and action only by themselves
	compatible := candidates[:0]
	for _, r := range candidates {
		if r.Kind.Satisfies(kind) {
			compatible = append(compatible, r)
		}
	}
	if len(compatible) == 0 {
		return allowed
	}

	orderRules(compatible)

	// walk most specific first, consuming targets as verdicts land;
	// less specific rules cannot override a consumed target
	remaining := targets.Clone()
	for _, r := range compatible {
		if len(remaining) == 0 {
			break
		}
		for _, exp := range expansions {
			if !remaining.Has(exp.target) {
				continue
			}
			if !governs(r, exp) {
				continue
			}
			if r.Effect == model.EffectAllow {
				allowed.Add(exp.target)
			}
			remaining.Remove(exp.target)
		}
	}

	if logger.IsDebugEnabled() {
		logger.Debugf(agent, "Decide", "kind=%s targets=%d allowed=%d", kind, len(targets), len(allowed))
	}

	return allowed
}

// Check is a single-target convenience over [Engine.Decide].
func (e *Engine) Check(ctx model.Context, target model.Target, kind model.Kind) bool {
	return e.Decide(ctx, model.NewTargetSet(target), kind).Has(target)
}

//
//  Copyright © Fieldgate Inc. All rights reserved.
//

// Package rulestore holds permission rules in memory, indexed for fast
// candidate lookup, with atomic reload semantics.
//
// The store is read-mostly: many concurrent decisions, one writer at
// seed time. Each load builds a fresh immutable snapshot and publishes
// it with a single atomic pointer swap, so an in-flight decision sees
// either the old rule set or the new one, never a mix.
//
// Rules are grouped by owning module. A module's seed run replaces only
// that module's subtree; other modules' rules are carried over
// untouched.
package rulestore

import (
	"sort"

	"github.com/fieldgate/permengine/internal/logging"
	"github.com/fieldgate/permengine/pkg/common"
	"github.com/fieldgate/permengine/pkg/core/model"
	"sync"
	"sync/atomic"
)

var logger = logging.GetLogger("permengine.rulestore")

const agent = "rulestore"

// snapshot is one immutable published version of the store.
type snapshot struct {
	// modules groups the normalized rules by owning module.
	modules map[string][]model.Rule
	// byEntity indexes the same rules by target entity, so lookup for a
	// decision is bounded by the rules for the entities in question.
	byEntity map[string][]model.Rule
	total    int
}

var emptySnapshot = &snapshot{
	modules:  map[string][]model.Rule{},
	byEntity: map[string][]model.Rule{},
}

// Store is the in-memory rule store.
//
// The zero value is not usable; create instances with [New]. All
// methods are safe for concurrent use.
type Store struct {
	current atomic.Pointer[snapshot]
	// loadMu serializes writers; readers never take it.
	loadMu sync.Mutex
}

// New creates an empty store.
func New() *Store {
	s := &Store{}
	s.current.Store(emptySnapshot)
	return s
}

// Load replaces the entire store with the given module-grouped rules.
//
// Every rule is validated and normalized before anything is published;
// a malformed rule aborts the load with a [common.SeedError] and the
// previous contents remain in effect.
func (s *Store) Load(rules map[string][]model.Rule) error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	modules := make(map[string][]model.Rule, len(rules))
	for module, moduleRules := range rules {
		normalized, err := normalize(module, moduleRules)
		if err != nil {
			return err
		}
		modules[module] = normalized
	}

	s.publish(modules)
	return nil
}

// LoadModule atomically replaces one module's rule subtree, leaving
// every other module untouched. A module with no remaining rules may be
// cleared by passing an empty slice.
//
// Returns a [common.SeedError] and retains the previous store when any
// rule is malformed.
func (s *Store) LoadModule(module string, rules []model.Rule) error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	normalized, err := normalize(module, rules)
	if err != nil {
		return err
	}

	prev := s.current.Load()
	modules := make(map[string][]model.Rule, len(prev.modules)+1)
	for m, r := range prev.modules {
		if m != module {
			modules[m] = r
		}
	}
	if len(normalized) > 0 {
		modules[module] = normalized
	}

	s.publish(modules)
	return nil
}

func (s *Store) publish(modules map[string][]model.Rule) {
	next := &snapshot{
		modules:  modules,
		byEntity: map[string][]model.Rule{},
	}
	for _, moduleRules := range modules {
		for _, r := range moduleRules {
			entity := r.Target.Entity()
			next.byEntity[entity] = append(next.byEntity[entity], r)
			next.total++
		}
	}
	// deterministic bucket order: loading the same seed twice yields
	// byte-identical indexes
	for entity := range next.byEntity {
		orderBucket(next.byEntity[entity])
	}

	s.current.Store(next)
	logger.Debugf(agent, "publish", "published %d rules across %d modules", next.total, len(modules))
}

func normalize(module string, rules []model.Rule) ([]model.Rule, error) {
	out := make([]model.Rule, 0, len(rules))
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			if seedErr, ok := err.(*common.SeedError); ok && seedErr.Module == "" {
				seedErr.Module = module
			}
			logger.Warnf(agent, "load", "rejecting seed for %q: %v", module, err)
			return nil, err
		}
		out = append(out, r.Normalize())
	}
	orderBucket(out)
	return out, nil
}

func orderBucket(rules []model.Rule) {
	sort.Slice(rules, func(i, j int) bool {
		a, b := rules[i], rules[j]
		if a.Target != b.Target {
			return a.Target < b.Target
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Effect != b.Effect {
			return a.Effect < b.Effect
		}
		return a.Conditions.Key() < b.Conditions.Key()
	})
}

// Candidates returns every rule that (a) is applicable in ctx, meaning
// its condition set is a subset of the active context, and (b) targets
// one of the given entity types, exactly or by wildcard. The entities
// slice is typically the concrete type of the decision's entity plus
// its declared ancestors.
//
// The returned slice is freshly allocated; callers may reorder it.
func (s *Store) Candidates(ctx model.Context, entities []string) []model.Rule {
	snap := s.current.Load()

	var out []model.Rule
	seen := make(map[string]struct{}, len(entities))
	for _, entity := range entities {
		if _, dup := seen[entity]; dup {
			continue
		}
		seen[entity] = struct{}{}

		for _, r := range snap.byEntity[entity] {
			if r.Conditions.SubsetOf(ctx) {
				out = append(out, r)
			}
		}
	}
	return out
}

// Modules returns the names of modules with rules in the current
// snapshot, in byte order.
func (s *Store) Modules() []string {
	snap := s.current.Load()
	out := make([]string, 0, len(snap.modules))
	for m := range snap.modules {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// ModuleRules returns a module's rules in index order.
func (s *Store) ModuleRules(module string) []model.Rule {
	snap := s.current.Load()
	rules := snap.modules[module]
	out := make([]model.Rule, len(rules))
	copy(out, rules)
	return out
}

// Rules returns every rule in the current snapshot, grouped by module
// in byte order. Used by the seed CLI and the Postgres cache writer.
func (s *Store) Rules() []model.Rule {
	snap := s.current.Load()
	out := make([]model.Rule, 0, snap.total)
	modules := make([]string, 0, len(snap.modules))
	for m := range snap.modules {
		modules = append(modules, m)
	}
	sort.Strings(modules)
	for _, m := range modules {
		out = append(out, snap.modules[m]...)
	}
	return out
}

// Len returns the total number of rules in the current snapshot.
func (s *Store) Len() int {
	return s.current.Load().total
}

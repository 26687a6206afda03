//
//  Copyright © Fieldgate Inc. All rights reserved.
//

// Package schema describes the shape of the business data the engine
// authorizes: the entity-type registry and the nested response schemas
// the field filter walks.
//
// The engine never introspects live objects. Everything it needs to
// know about a type — its ancestry and which ancestor declares the
// lifecycle status — is declared once at bootstrap and precomputed
// here, so decisions involve no reflection.
package schema

import (
	"fmt"
)

// EntityType declares one business entity type to the engine.
type EntityType struct {
	// Name is the canonical type name, e.g. "audit_engagement" or
	// "audit_spotcheck".
	Name string `yaml:"name" json:"name"`
	// Parent names the base type this type extends, empty for roots.
	// Rules authored against the parent apply to this type.
	Parent string `yaml:"parent,omitempty" json:"parent,omitempty"`
	// HasStatus marks the type that declares the lifecycle status field.
	// Status predicate tokens are always resolved against the highest
	// ancestor with HasStatus set, so rules authored at the base level
	// match every concrete variant.
	HasStatus bool `yaml:"has_status,omitempty" json:"has_status,omitempty"`
}

type typeEntry struct {
	decl EntityType
	// lineage holds the type itself plus every ancestor, nearest first.
	lineage []string
	// statusOwner is the highest ancestor declaring status, "" if none.
	statusOwner string
}

// Registry holds the precomputed type ancestry for a deployment.
//
// A Registry is immutable after construction and safe for concurrent
// use.
type Registry struct {
	types map[string]*typeEntry
}

// NewRegistry precomputes ancestry for the declared types.
//
// Returns an error when a parent reference is undeclared or the parent
// chain contains a cycle.
func NewRegistry(types ...EntityType) (*Registry, error) {
	decls := make(map[string]EntityType, len(types))
	for _, t := range types {
		if t.Name == "" {
			return nil, fmt.Errorf("entity type with empty name")
		}
		if _, ok := decls[t.Name]; ok {
			return nil, fmt.Errorf("entity type %q declared twice", t.Name)
		}
		decls[t.Name] = t
	}

	r := &Registry{types: make(map[string]*typeEntry, len(types))}
	for name := range decls {
		entry := &typeEntry{decl: decls[name]}

		seen := map[string]bool{}
		for cur := name; cur != ""; {
			if seen[cur] {
				return nil, fmt.Errorf("entity type %q: ancestry cycle through %q", name, cur)
			}
			seen[cur] = true

			decl, ok := decls[cur]
			if !ok {
				return nil, fmt.Errorf("entity type %q: unknown parent %q", name, cur)
			}
			entry.lineage = append(entry.lineage, cur)
			if decl.HasStatus {
				// keep walking: the highest such ancestor wins
				entry.statusOwner = cur
			}
			cur = decl.Parent
		}

		r.types[name] = entry
	}

	return r, nil
}

// Known reports whether the type name was declared.
func (r *Registry) Known(name string) bool {
	if r == nil {
		return false
	}
	_, ok := r.types[name]
	return ok
}

// Lineage returns the type itself plus all its ancestors, nearest
// first. Unknown types resolve to just themselves, so callers degrade
// to exact-type matching rather than failing.
func (r *Registry) Lineage(name string) []string {
	if r != nil {
		if e, ok := r.types[name]; ok {
			return e.lineage
		}
	}
	return []string{name}
}

// StatusOwner returns the canonical name to use in status predicate
// tokens for the given type: the highest ancestor that declares status.
// ok is false when neither the type nor any ancestor declares one.
func (r *Registry) StatusOwner(name string) (owner string, ok bool) {
	if r == nil {
		return "", false
	}
	e, found := r.types[name]
	if !found || e.statusOwner == "" {
		return "", false
	}
	return e.statusOwner, true
}

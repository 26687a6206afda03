//
//  Copyright © Fieldgate Inc. All rights reserved.
//

// Package fieldfilter resolves nested response schemas against the
// permission engine, so serializers emit only authorized fields.
//
// Given a [schema.Node] tree, the filter aggregates every field's
// dotted target, asks the engine once for view and once for edit, and
// maps the verdicts back onto field paths. Fields the user may not view
// are pruned; fields viewable but not editable are reported read-only.
// A nested object is reachable only through its carrying field: when
// that field is not viewable the whole subtree is pruned, and when it
// is not editable the subtree is blocked from writes.
//
// For the same (schema, user, entity, module) inputs the outcome is
// identical across calls.
package fieldfilter

import (
	"context"
	"sort"
	"strings"

	"github.com/fieldgate/permengine/pkg/core/model"
	"github.com/fieldgate/permengine/pkg/core/options"
	"github.com/fieldgate/permengine/pkg/core/schema"
	"github.com/mohae/deepcopy"
)

// Engine is the subset of the permission engine the filter consumes.
// [core.Engine] satisfies it.
type Engine interface {
	Assemble(user *model.User, entity *model.Entity, module string) model.Context
	Decide(ctx context.Context, active model.Context, targets []string, kind model.Kind, decideOptions ...options.DecideOptionsFunc) ([]string, error)
}

// Result holds the resolved read/write verdicts for a schema tree,
// keyed by dotted field path from the root ("partner",
// "attachments.file_name", ...).
type Result struct {
	readable map[string]struct{}
	writable map[string]struct{}
}

// CanRead reports whether the field path is viewable.
func (r *Result) CanRead(path string) bool {
	_, ok := r.readable[path]
	return ok
}

// CanWrite reports whether the field path is editable.
func (r *Result) CanWrite(path string) bool {
	_, ok := r.writable[path]
	return ok
}

// ReadablePaths returns every viewable field path in byte order.
func (r *Result) ReadablePaths() []string {
	return sortedPaths(r.readable)
}

// WritablePaths returns every editable field path in byte order.
func (r *Result) WritablePaths() []string {
	return sortedPaths(r.writable)
}

// ReadOnlyPaths returns the field paths that are viewable but not
// editable, in byte order.
func (r *Result) ReadOnlyPaths() []string {
	out := make([]string, 0, len(r.readable))
	for path := range r.readable {
		if _, ok := r.writable[path]; !ok {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out
}

func sortedPaths(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for path := range set {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// Filter resolves the schema tree for (user, entity, module).
//
// The active context is assembled once from the root entity and shared
// by every node, nested ones included. The engine is queried once per
// kind over the aggregated target set; ancestor expansion inside the
// engine makes base-type rules govern concrete variants.
func Filter(ctx context.Context, pe Engine, node *schema.Node, user *model.User, entity *model.Entity, module string, decideOptions ...options.DecideOptionsFunc) (*Result, error) {
	active := pe.Assemble(user, entity, module)
	return FilterContext(ctx, pe, node, active, decideOptions...)
}

// FilterContext is [Filter] with a pre-assembled context, for callers
// that resolve several schemas over one decision context.
func FilterContext(ctx context.Context, pe Engine, node *schema.Node, active model.Context, decideOptions ...options.DecideOptionsFunc) (*Result, error) {
	targets := collectTargets(node)

	viewAllowed, err := pe.Decide(ctx, active, targets, model.KindView, decideOptions...)
	if err != nil {
		return nil, err
	}
	editAllowed, err := pe.Decide(ctx, active, targets, model.KindEdit, decideOptions...)
	if err != nil {
		return nil, err
	}

	result := &Result{
		readable: make(map[string]struct{}),
		writable: make(map[string]struct{}),
	}
	mark(node, "", true, true, asSet(viewAllowed), asSet(editAllowed), result)
	return result, nil
}

// collectTargets walks the tree breadth-first and returns the
// de-duplicated targets of every declared field.
func collectTargets(root *schema.Node) []string {
	seen := make(map[string]struct{})
	var out []string

	queue := []*schema.Node{root}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if node == nil {
			continue
		}
		for _, field := range node.FieldNames() {
			target := string(model.NewTarget(node.Entity, field))
			if _, dup := seen[target]; !dup {
				seen[target] = struct{}{}
				out = append(out, target)
			}
			if child := node.Fields[field]; child != nil {
				queue = append(queue, child)
			}
		}
	}
	return out
}

func asSet(targets []string) map[string]struct{} {
	out := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		out[t] = struct{}{}
	}
	return out
}

// mark records per-path verdicts. A path is readable only while every
// carrying field above it is readable, and writable only while every
// carrying field above it is writable.
func mark(node *schema.Node, prefix string, readable, writable bool, view, edit map[string]struct{}, result *Result) {
	for _, field := range node.FieldNames() {
		target := string(model.NewTarget(node.Entity, field))
		path := field
		if prefix != "" {
			path = prefix + "." + field
		}

		_, viewOK := view[target]
		_, editOK := edit[target]
		canRead := readable && viewOK
		canWrite := writable && editOK

		if !canRead {
			continue
		}
		result.readable[path] = struct{}{}
		if canWrite {
			result.writable[path] = struct{}{}
		}

		if child := node.Fields[field]; child != nil {
			mark(child, path, canRead, canWrite, view, edit, result)
		}
	}
}

// Apply returns a deep copy of the schema tree pruned to the readable
// fields of result. Field paths present in the copy but absent from
// result's writable set are read-only on write paths; use
// [Result.ReadOnlyPaths] to enumerate them.
func Apply(node *schema.Node, result *Result) *schema.Node {
	out := deepcopy.Copy(node).(*schema.Node)
	prune(out, "", result)
	return out
}

func prune(node *schema.Node, prefix string, result *Result) {
	for _, field := range node.FieldNames() {
		path := field
		if prefix != "" {
			path = prefix + "." + field
		}
		if !result.CanRead(path) {
			delete(node.Fields, field)
			continue
		}
		if child := node.Fields[field]; child != nil {
			prune(child, path, result)
		}
	}
}

// PathEntity returns the entity-qualified target for a field path in
// the given schema, or "" when the path does not exist. Helpful for
// diagnostics that want to explain a pruned path.
func PathEntity(root *schema.Node, path string) string {
	node := root
	segments := strings.Split(path, ".")
	for i, segment := range segments {
		if node == nil {
			return ""
		}
		child, ok := node.Fields[segment]
		if !ok {
			return ""
		}
		if i == len(segments)-1 {
			return string(model.NewTarget(node.Entity, segment))
		}
		node = child
	}
	return ""
}

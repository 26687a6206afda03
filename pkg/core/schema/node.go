//
//  Copyright © Fieldgate Inc. All rights reserved.
//

package schema

import (
	"sort"
)

// Node describes one object of a nested response schema: an entity type
// plus its declared fields. Fields whose value is another object (or a
// list of objects) carry a nested Node; plain fields map to nil.
//
// Nodes are descriptions, not data. The serializer layer builds them
// once per endpoint and reuses them across requests.
type Node struct {
	// Entity is the concrete entity type emitted at this level.
	Entity string `json:"entity"`
	// Fields maps each declared field name to its nested schema, or nil
	// for scalar fields.
	Fields map[string]*Node `json:"fields"`
}

// NewNode builds a node with the given scalar fields. Nested fields are
// attached with [Node.Nest].
func NewNode(entity string, fields ...string) *Node {
	n := &Node{
		Entity: entity,
		Fields: make(map[string]*Node, len(fields)),
	}
	for _, f := range fields {
		n.Fields[f] = nil
	}
	return n
}

// Nest attaches child as a nested schema under the given field name and
// returns the receiver for chaining.
func (n *Node) Nest(field string, child *Node) *Node {
	n.Fields[field] = child
	return n
}

// FieldNames returns the declared field names in byte order.
func (n *Node) FieldNames() []string {
	out := make([]string, 0, len(n.Fields))
	for f := range n.Fields {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

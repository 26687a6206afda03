//
//  Copyright © Fieldgate Inc. All rights reserved.
//

package schema_test

import (
	"testing"

	"github.com/fieldgate/permengine/pkg/core/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func auditTypes(t *testing.T) *schema.Registry {
	t.Helper()
	r, err := schema.NewRegistry(
		schema.EntityType{Name: "audit_engagement", HasStatus: true},
		schema.EntityType{Name: "audit_spotcheck", Parent: "audit_engagement"},
		schema.EntityType{Name: "audit_microassessment", Parent: "audit_engagement"},
		schema.EntityType{Name: "partner_organization"},
	)
	require.NoError(t, err)
	return r
}

func TestRegistryLineage(t *testing.T) {
	r := auditTypes(t)

	assert.Equal(t, []string{"audit_spotcheck", "audit_engagement"}, r.Lineage("audit_spotcheck"))
	assert.Equal(t, []string{"audit_engagement"}, r.Lineage("audit_engagement"))
	assert.Equal(t, []string{"partner_organization"}, r.Lineage("partner_organization"))

	// unknown types degrade to exact-type matching
	assert.Equal(t, []string{"mystery"}, r.Lineage("mystery"))
	assert.False(t, r.Known("mystery"))
	assert.True(t, r.Known("audit_spotcheck"))
}

func TestRegistryStatusOwner(t *testing.T) {
	r := auditTypes(t)

	owner, ok := r.StatusOwner("audit_spotcheck")
	assert.True(t, ok)
	assert.Equal(t, "audit_engagement", owner)

	owner, ok = r.StatusOwner("audit_engagement")
	assert.True(t, ok)
	assert.Equal(t, "audit_engagement", owner)

	_, ok = r.StatusOwner("partner_organization")
	assert.False(t, ok)
}

func TestRegistryHighestStatusOwnerWins(t *testing.T) {
	// both base and variant declare status; the base owns the token
	r, err := schema.NewRegistry(
		schema.EntityType{Name: "base", HasStatus: true},
		schema.EntityType{Name: "mid", Parent: "base", HasStatus: true},
		schema.EntityType{Name: "leaf", Parent: "mid"},
	)
	require.NoError(t, err)

	owner, ok := r.StatusOwner("leaf")
	assert.True(t, ok)
	assert.Equal(t, "base", owner)
}

func TestRegistryRejectsBadAncestry(t *testing.T) {
	_, err := schema.NewRegistry(
		schema.EntityType{Name: "orphan", Parent: "missing"},
	)
	assert.Error(t, err)

	_, err = schema.NewRegistry(
		schema.EntityType{Name: "a", Parent: "b"},
		schema.EntityType{Name: "b", Parent: "a"},
	)
	assert.Error(t, err)

	_, err = schema.NewRegistry(
		schema.EntityType{Name: "dup"},
		schema.EntityType{Name: "dup"},
	)
	assert.Error(t, err)
}

func TestNodeConstruction(t *testing.T) {
	node := schema.NewNode("audit_engagement", "partner", "status").
		Nest("action_points", schema.NewNode("audit_actionpoint", "description", "due_date"))

	assert.Equal(t, []string{"action_points", "partner", "status"}, node.FieldNames())
	assert.Nil(t, node.Fields["partner"])
	assert.NotNil(t, node.Fields["action_points"])
	assert.Equal(t, "audit_actionpoint", node.Fields["action_points"].Entity)
}

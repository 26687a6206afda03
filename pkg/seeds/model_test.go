//
//  Copyright © Fieldgate Inc. All rights reserved.
//

package seeds_test

import (
	"testing"

	"github.com/fieldgate/permengine/pkg/core/model"
	"github.com/fieldgate/permengine/pkg/seeds"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentRulesFlattening(t *testing.T) {
	doc := &seeds.Document{
		Module: "audit",
		Roles: []seeds.Role{
			{
				Group:      "Auditor",
				Conditions: []string{"audit.active"},
				Grants: []seeds.Grant{
					{
						Targets:    []string{"audit_engagement.partner", "audit_engagement.po_items"},
						Kinds:      []model.Kind{model.KindView, model.KindEdit},
						Conditions: []string{`audit_engagement.status="draft"`},
					},
				},
			},
		},
	}

	rules := doc.Rules()
	require.Len(t, rules, 4) // 2 targets x 2 kinds

	for _, r := range rules {
		assert.Equal(t, model.EffectAllow, r.Effect, "empty effect defaults to allow")
		assert.Equal(t, model.ConditionSet{
			"module=audit",
			`user.group="Auditor"`,
			"audit.active",
			`audit_engagement.status="draft"`,
		}, r.Conditions)
	}
}

func TestDocumentRulesGrouplessRole(t *testing.T) {
	doc := &seeds.Document{
		Module: "audit",
		Roles: []seeds.Role{
			{
				Grants: []seeds.Grant{
					{
						Targets: []string{"audit_engagement.reference_number"},
						Kinds:   []model.Kind{model.KindView},
					},
				},
			},
		},
	}

	rules := doc.Rules()
	require.Len(t, rules, 1)
	assert.Equal(t, model.ConditionSet{"module=audit"}, rules[0].Conditions,
		"a role without a group emits no group condition")
}

func TestDocumentRulesDisallow(t *testing.T) {
	doc := &seeds.Document{
		Module: "audit",
		Roles: []seeds.Role{
			{
				Group: "Auditor",
				Grants: []seeds.Grant{
					{
						Targets: []string{"audit_engagement.po_items"},
						Kinds:   []model.Kind{model.KindEdit},
						Effect:  model.EffectDisallow,
					},
				},
			},
		},
	}

	rules := doc.Rules()
	require.Len(t, rules, 1)
	assert.Equal(t, model.EffectDisallow, rules[0].Effect)
}

//
//  Copyright © Fieldgate Inc. All rights reserved.
//

package core

import (
	"testing"

	"github.com/fieldgate/permengine/pkg/core/model"
	"github.com/fieldgate/permengine/pkg/core/rulestore"
	"github.com/fieldgate/permengine/pkg/core/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rule(target string, kind model.Kind, effect model.Effect, conditions ...string) model.Rule {
	return model.Rule{
		Target:     model.Target(target),
		Kind:       kind,
		Effect:     effect,
		Conditions: model.ConditionSet(conditions),
	}
}

func newEngine(t *testing.T, rules ...model.Rule) *Engine {
	t.Helper()
	store := rulestore.New()
	require.NoError(t, store.LoadModule("test", rules))
	return NewEngine(store, nil)
}

func targets(names ...string) model.TargetSet {
	s := model.NewTargetSet()
	for _, n := range names {
		s.Add(model.Target(n))
	}
	return s
}

func TestEditImpliesView(t *testing.T) {
	e := newEngine(t,
		rule("a_b.x", model.KindView, model.EffectAllow),
		rule("a_b.x", model.KindEdit, model.EffectAllow),
	)
	ctx := model.NewContext()

	assert.Equal(t, []string{"a_b.x"}, e.Decide(ctx, targets("a_b.x"), model.KindEdit).Strings())
	assert.Equal(t, []string{"a_b.x"}, e.Decide(ctx, targets("a_b.x"), model.KindView).Strings())

	// edit-only rule still grants view
	e = newEngine(t, rule("a_b.y", model.KindEdit, model.EffectAllow))
	assert.True(t, e.Check(ctx, "a_b.y", model.KindView))
	assert.True(t, e.Check(ctx, "a_b.y", model.KindEdit))

	// view-only rule does not grant edit
	e = newEngine(t, rule("a_b.z", model.KindView, model.EffectAllow))
	assert.True(t, e.Check(ctx, "a_b.z", model.KindView))
	assert.False(t, e.Check(ctx, "a_b.z", model.KindEdit))
}

func TestSpecificityBeatsBreadth(t *testing.T) {
	e := newEngine(t,
		rule("a_b.*", model.KindView, model.EffectAllow),
		rule("a_b.x", model.KindView, model.EffectDisallow, "c1"),
	)

	// narrow conditional disallow overrides the blanket allow
	got := e.Decide(model.NewContext("c1"), targets("a_b.x", "a_b.y"), model.KindView)
	assert.Equal(t, []string{"a_b.y"}, got.Strings())

	// without c1 the disallow is not applicable at all
	got = e.Decide(model.NewContext(), targets("a_b.x", "a_b.y"), model.KindView)
	assert.Equal(t, []string{"a_b.x", "a_b.y"}, got.Strings())
}

func TestConditionalReallow(t *testing.T) {
	e := newEngine(t,
		rule("a_b.*", model.KindView, model.EffectAllow),
		rule("a_b.x", model.KindView, model.EffectDisallow, "c1"),
		rule("a_b.x", model.KindView, model.EffectAllow, "c1", "c2"),
	)

	// the two-condition allow is more specific than the one-condition disallow
	got := e.Decide(model.NewContext("c1", "c2"), targets("a_b.x"), model.KindView)
	assert.Equal(t, []string{"a_b.x"}, got.Strings())

	// with only c1 the disallow wins
	got = e.Decide(model.NewContext("c1"), targets("a_b.x"), model.KindView)
	assert.Empty(t, got.Strings())
}

func TestActionGating(t *testing.T) {
	e := newEngine(t,
		rule("order.submit", model.KindAction, model.EffectAllow,
			"module=order", `user.group="Manager"`, `order.status="draft"`),
	)

	draft := model.NewContext("module=order", `user.group="Manager"`, `order.status="draft"`)
	assert.Equal(t, []string{"order.submit"}, e.Decide(draft, targets("order.submit"), model.KindAction).Strings())

	submitted := model.NewContext("module=order", `user.group="Manager"`, `order.status="submitted"`)
	assert.Empty(t, e.Decide(submitted, targets("order.submit"), model.KindAction).Strings())

	// edit rules never satisfy action requests
	e = newEngine(t, rule("order.submit", model.KindEdit, model.EffectAllow))
	assert.False(t, e.Check(model.NewContext(), "order.submit", model.KindAction))
}

func TestDefaultDeny(t *testing.T) {
	e := newEngine(t)

	got := e.Decide(model.NewContext("anything"), targets("x_y.z"), model.KindView)
	assert.Empty(t, got.Strings())

	// a target referenced by no rule is denied even when others are allowed
	e = newEngine(t, rule("a_b.x", model.KindView, model.EffectAllow))
	got = e.Decide(model.NewContext(), targets("a_b.x", "a_b.unknown_field", "other_e.f"), model.KindView)
	assert.Equal(t, []string{"a_b.x"}, got.Strings())
}

func TestWildcardBlanketGrant(t *testing.T) {
	e := newEngine(t, rule("a_b.*", model.KindView, model.EffectAllow))

	got := e.Decide(model.NewContext(), targets("a_b.x", "a_b.y", "a_b.submit"), model.KindView)
	assert.Equal(t, []string{"a_b.submit", "a_b.x", "a_b.y"}, got.Strings())
}

func TestConcreteBeatsWildcardAtEqualConditions(t *testing.T) {
	// same condition count: the non-wildcard rule is consulted first
	e := newEngine(t,
		rule("a_b.*", model.KindView, model.EffectAllow, "c1"),
		rule("a_b.x", model.KindView, model.EffectDisallow, "c1"),
	)

	got := e.Decide(model.NewContext("c1"), targets("a_b.x", "a_b.y"), model.KindView)
	assert.Equal(t, []string{"a_b.y"}, got.Strings())
}

func TestAncestorRulesGovernConcreteVariants(t *testing.T) {
	types, err := schema.NewRegistry(
		schema.EntityType{Name: "audit_engagement", HasStatus: true},
		schema.EntityType{Name: "audit_spotcheck", Parent: "audit_engagement"},
	)
	require.NoError(t, err)

	store := rulestore.New()
	require.NoError(t, store.LoadModule("audit", []model.Rule{
		rule("audit_engagement.*", model.KindView, model.EffectAllow, "module=audit"),
		rule("audit_engagement.po_items", model.KindView, model.EffectDisallow, "module=audit", `user.group="Partner"`),
	}))
	e := NewEngine(store, types)

	// base-level rules apply to the concrete variant's targets
	ctx := model.NewContext("module=audit")
	got := e.Decide(ctx, targets("audit_spotcheck.partner", "audit_spotcheck.po_items"), model.KindView)
	assert.Equal(t, []string{"audit_spotcheck.partner", "audit_spotcheck.po_items"}, got.Strings())

	ctx = model.NewContext("module=audit", `user.group="Partner"`)
	got = e.Decide(ctx, targets("audit_spotcheck.partner", "audit_spotcheck.po_items"), model.KindView)
	assert.Equal(t, []string{"audit_spotcheck.partner"}, got.Strings())
}

func TestNoFabricatedTargets(t *testing.T) {
	e := newEngine(t, rule("a_b.*", model.KindView, model.EffectAllow))

	asked := targets("a_b.x")
	got := e.Decide(model.NewContext(), asked, model.KindView)
	for target := range got {
		assert.True(t, asked.Has(target))
	}
}

func TestDecideIsIdempotent(t *testing.T) {
	e := newEngine(t,
		rule("a_b.*", model.KindView, model.EffectAllow),
		rule("a_b.x", model.KindEdit, model.EffectAllow, "c1"),
		rule("a_b.y", model.KindView, model.EffectDisallow, "c1"),
	)
	ctx := model.NewContext("c1")
	asked := targets("a_b.x", "a_b.y", "a_b.z")

	first := e.Decide(ctx, asked, model.KindView)
	second := e.Decide(ctx, asked, model.KindView)
	assert.Equal(t, first.Strings(), second.Strings())
}

func TestMoreSpecificDisallowNeverWidens(t *testing.T) {
	base := []model.Rule{
		rule("a_b.*", model.KindView, model.EffectAllow),
		rule("a_b.x", model.KindView, model.EffectAllow, "c1"),
	}
	narrowDisallow := rule("a_b.x", model.KindView, model.EffectDisallow, "c1", "c2")

	contexts := []model.Context{
		model.NewContext(),
		model.NewContext("c1"),
		model.NewContext("c1", "c2"),
	}
	asked := targets("a_b.x", "a_b.y")

	for _, ctx := range contexts {
		before := newEngine(t, base...).Decide(ctx, asked, model.KindView)
		after := newEngine(t, append(base, narrowDisallow)...).Decide(ctx, asked, model.KindView)

		for target := range after {
			assert.True(t, before.Has(target), "disallow widened the result for %s", target)
		}
	}
}

func TestDecideRejectsInvalidKind(t *testing.T) {
	e := newEngine(t, rule("a_b.x", model.KindView, model.EffectAllow))
	assert.Empty(t, e.Decide(model.NewContext(), targets("a_b.x"), model.Kind("read")).Strings())
	assert.Empty(t, e.Decide(model.NewContext(), model.NewTargetSet(), model.KindView).Strings())
}

//
//  Copyright © Fieldgate Inc. All rights reserved.
//

package assembler_test

import (
	"testing"
	"time"

	"github.com/fieldgate/permengine/pkg/core/assembler"
	"github.com/fieldgate/permengine/pkg/core/model"
	"github.com/fieldgate/permengine/pkg/core/schema"
	"github.com/fieldgate/permengine/pkg/core/vocabulary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAssembler(t *testing.T, vocab *vocabulary.Vocabulary, clock assembler.Clock) *assembler.Assembler {
	t.Helper()
	types, err := schema.NewRegistry(
		schema.EntityType{Name: "audit_engagement", HasStatus: true},
		schema.EntityType{Name: "audit_spotcheck", Parent: "audit_engagement"},
	)
	require.NoError(t, err)
	return assembler.New(vocab, types, clock)
}

func TestAssembleFullContext(t *testing.T) {
	vocab := vocabulary.Default().With(
		vocabulary.RelationPredicate{Alias: "engagement", Relation: "author"},
	)
	a := newAssembler(t, vocab, nil)

	user := &model.User{ID: "u1", Groups: []string{"Auditor"}}
	entity := &model.Entity{
		Type:      "audit_spotcheck",
		Status:    "report_submitted",
		Relations: map[string][]string{"author": {"u1"}},
	}

	ctx := a.Assemble(user, entity, "audit")

	assert.Equal(t, []string{
		`audit_engagement.status="report_submitted"`,
		"engagement.author=user",
		"module=audit",
		`user.group="Auditor"`,
	}, ctx.Tokens())
}

func TestAssembleSkipsIrrelevantPredicates(t *testing.T) {
	a := newAssembler(t, vocabulary.Default(), nil)

	// no entity: entity-level predicates are skipped, not failed
	ctx := a.Assemble(&model.User{ID: "u1", Groups: []string{"Auditor"}}, nil, "audit")
	assert.Equal(t, []string{"module=audit", `user.group="Auditor"`}, ctx.Tokens())

	// no user either: module predicates still apply
	ctx = a.Assemble(nil, nil, "audit")
	assert.Equal(t, []string{"module=audit"}, ctx.Tokens())
}

func TestAssembleIsDeterministic(t *testing.T) {
	a := newAssembler(t, vocabulary.Default(), nil)
	user := &model.User{ID: "u1", Groups: []string{"Auditor", "Manager"}}
	entity := &model.Entity{Type: "audit_engagement", Status: "draft"}

	first := a.Assemble(user, entity, "audit")
	second := a.Assemble(user, entity, "audit")
	assert.Equal(t, first.Tokens(), second.Tokens())
}

func TestAssembleUsesInjectedClock(t *testing.T) {
	pinned := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	afterHours := vocabulary.FuncPredicate{
		Token: "clock.after_hours",
		In:    vocabulary.ScopeModule,
		Fn: func(in vocabulary.Input) bool {
			return in.Now.Hour() >= 18
		},
	}

	a := newAssembler(t, vocabulary.New(afterHours), func() time.Time { return pinned })
	assert.Empty(t, a.Assemble(nil, nil, "audit").Tokens())

	evening := pinned.Add(10 * time.Hour)
	a = newAssembler(t, vocabulary.New(afterHours), func() time.Time { return evening })
	assert.Equal(t, []string{"clock.after_hours"}, a.Assemble(nil, nil, "audit").Tokens())
}

func TestAssembleRecoversPanickingPredicate(t *testing.T) {
	boom := vocabulary.FuncPredicate{
		Token: "broken.token",
		In:    vocabulary.ScopeModule,
		Fn: func(in vocabulary.Input) bool {
			panic("missing attribute")
		},
	}

	a := newAssembler(t, vocabulary.Default().With(boom), nil)

	// the failed predicate is simply false; the rest of the context survives
	ctx := a.Assemble(&model.User{ID: "u1", Groups: []string{"Auditor"}}, nil, "audit")
	assert.Equal(t, []string{"module=audit", `user.group="Auditor"`}, ctx.Tokens())

	// repeated assembly keeps working
	ctx = a.Assemble(nil, nil, "audit")
	assert.Equal(t, []string{"module=audit"}, ctx.Tokens())

	a.ResetWarnings()
}

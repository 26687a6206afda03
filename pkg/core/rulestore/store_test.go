//
//  Copyright © Fieldgate Inc. All rights reserved.
//

package rulestore_test

import (
	"sync"
	"testing"

	"github.com/fieldgate/permengine/pkg/common"
	"github.com/fieldgate/permengine/pkg/core/model"
	"github.com/fieldgate/permengine/pkg/core/rulestore"
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

func TestLoadAndCandidates(t *testing.T) {
	s := rulestore.New()

	err := s.Load(map[string][]model.Rule{
		"audit": {
			rule("audit_engagement.*", model.KindView, model.EffectAllow, "module=audit"),
			rule("audit_engagement.po_items", model.KindEdit, model.EffectAllow, "module=audit", `user.group="Auditor"`),
		},
		"tpm": {
			rule("tpm_visit.*", model.KindView, model.EffectAllow, "module=tpm"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []string{"audit", "tpm"}, s.Modules())

	// condition subset filters out rules for other modules
	ctx := model.NewContext("module=audit", `user.group="Auditor"`)
	candidates := s.Candidates(ctx, []string{"audit_engagement", "tpm_visit"})
	assert.Len(t, candidates, 2)

	// missing group condition excludes the edit rule
	candidates = s.Candidates(model.NewContext("module=audit"), []string{"audit_engagement"})
	assert.Len(t, candidates, 1)
	assert.Equal(t, model.Target("audit_engagement.*"), candidates[0].Target)

	// unknown entity yields nothing
	assert.Empty(t, s.Candidates(ctx, []string{"travel_trip"}))
}

func TestCandidatesDeduplicatesEntities(t *testing.T) {
	s := rulestore.New()
	require.NoError(t, s.LoadModule("audit", []model.Rule{
		rule("audit_engagement.partner", model.KindView, model.EffectAllow),
	}))

	candidates := s.Candidates(model.NewContext(), []string{"audit_engagement", "audit_engagement"})
	assert.Len(t, candidates, 1)
}

func TestLoadModuleReplacesOnlyOwnSubtree(t *testing.T) {
	s := rulestore.New()

	require.NoError(t, s.LoadModule("audit", []model.Rule{
		rule("audit_engagement.*", model.KindView, model.EffectAllow),
	}))
	require.NoError(t, s.LoadModule("tpm", []model.Rule{
		rule("tpm_visit.*", model.KindView, model.EffectAllow),
	}))

	// reseeding audit leaves tpm untouched
	require.NoError(t, s.LoadModule("audit", []model.Rule{
		rule("audit_engagement.partner", model.KindView, model.EffectAllow),
		rule("audit_engagement.submit", model.KindAction, model.EffectAllow),
	}))

	assert.Len(t, s.ModuleRules("audit"), 2)
	assert.Len(t, s.ModuleRules("tpm"), 1)

	// clearing a module removes it entirely
	require.NoError(t, s.LoadModule("audit", nil))
	assert.Equal(t, []string{"tpm"}, s.Modules())
}

func TestMalformedSeedRetainsPreviousStore(t *testing.T) {
	s := rulestore.New()
	require.NoError(t, s.LoadModule("audit", []model.Rule{
		rule("audit_engagement.*", model.KindView, model.EffectAllow),
	}))

	err := s.LoadModule("audit", []model.Rule{
		rule("audit_engagement.partner", model.KindView, model.EffectAllow),
		rule("", model.KindView, model.EffectAllow),
	})
	require.Error(t, err)

	var seedErr *common.SeedError
	require.ErrorAs(t, err, &seedErr)
	assert.Equal(t, "audit", seedErr.Module)
	assert.Equal(t, common.SeedReasonMalformedTarget, seedErr.Reason)

	// previous contents still served
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, model.Target("audit_engagement.*"), s.ModuleRules("audit")[0].Target)
}

func TestLoadNormalizesConditionSets(t *testing.T) {
	s := rulestore.New()
	require.NoError(t, s.LoadModule("audit", []model.Rule{
		rule("audit_engagement.partner", model.KindView, model.EffectAllow, "b", "a", "b"),
	}))

	got := s.ModuleRules("audit")[0]
	assert.Equal(t, model.ConditionSet{"a", "b"}, got.Conditions)
}

func TestReloadIdempotence(t *testing.T) {
	seed := map[string][]model.Rule{
		"audit": {
			rule("audit_engagement.*", model.KindView, model.EffectAllow, "module=audit"),
			rule("audit_engagement.partner", model.KindEdit, model.EffectDisallow, "c2", "c1"),
		},
	}

	a, b := rulestore.New(), rulestore.New()
	require.NoError(t, a.Load(seed))
	require.NoError(t, b.Load(seed))
	require.NoError(t, b.Load(seed))

	assert.Equal(t, a.Rules(), b.Rules())
}

func TestConcurrentReloadAndRead(t *testing.T) {
	s := rulestore.New()
	require.NoError(t, s.LoadModule("audit", []model.Rule{
		rule("audit_engagement.*", model.KindView, model.EffectAllow),
	}))

	ctx := model.NewContext()
	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			_ = s.LoadModule("audit", []model.Rule{
				rule("audit_engagement.*", model.KindView, model.EffectAllow),
				rule("audit_engagement.partner", model.KindView, model.EffectDisallow),
			})
			_ = s.LoadModule("audit", []model.Rule{
				rule("audit_engagement.*", model.KindView, model.EffectAllow),
			})
		}
		close(stop)
	}()

	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				// a reader observes a consistent snapshot: either 1 or 2
				// rules, never a partial index
				candidates := s.Candidates(ctx, []string{"audit_engagement"})
				n := len(candidates)
				assert.True(t, n == 1 || n == 2, "unexpected candidate count %d", n)
			}
		}()
	}

	wg.Wait()
}

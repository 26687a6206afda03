//
//  Copyright © Fieldgate Inc. All rights reserved.
//

package pgcache_test

import (
	"testing"

	"github.com/fieldgate/permengine/pkg/core/model"
	"github.com/fieldgate/permengine/pkg/seeds/pgcache"
	"github.com/stretchr/testify/assert"
)

func TestGroupByModule(t *testing.T) {
	rules := []model.Rule{
		{
			Target:     "audit_engagement.partner",
			Kind:       model.KindView,
			Effect:     model.EffectAllow,
			Conditions: model.ConditionSet{`user.group="Auditor"`, "module=audit"},
		},
		{
			Target:     "tpm_visit.sections",
			Kind:       model.KindEdit,
			Effect:     model.EffectAllow,
			Conditions: model.ConditionSet{"module=tpm"},
		},
		{
			Target:     "attachment.file_name",
			Kind:       model.KindView,
			Effect:     model.EffectAllow,
			Conditions: model.ConditionSet{},
		},
	}

	grouped := pgcache.GroupByModule(rules)
	assert.Len(t, grouped["audit"], 1)
	assert.Len(t, grouped["tpm"], 1)
	assert.Len(t, grouped[""], 1, "rules without a module token land under the empty module")
}

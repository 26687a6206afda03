//
//  Copyright © Fieldgate Inc. All rights reserved.
//

package parsers_test

import (
	"testing"

	"github.com/fieldgate/permengine/pkg/common"
	"github.com/fieldgate/permengine/pkg/core/model"
	"github.com/fieldgate/permengine/pkg/seeds/parsers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const auditSeed = `
version: permissions/v1
module: audit
entities:
  - name: audit_engagement
    has_status: true
  - name: audit_spotcheck
    parent: audit_engagement
relations:
  - alias: engagement
    relation: author
roles:
  - group: Auditor
    grants:
      - targets: [audit_engagement.*]
        kinds: [view]
      - targets: [audit_engagement.po_items]
        kinds: [edit]
        effect: disallow
        conditions: ['audit_engagement.status="final"']
`

func TestParseV1(t *testing.T) {
	doc, err := parsers.Parse([]byte(auditSeed))
	require.NoError(t, err)

	assert.Equal(t, "audit", doc.Module)

	require.Len(t, doc.Types, 2)
	assert.Equal(t, "audit_engagement", doc.Types[0].Name)
	assert.True(t, doc.Types[0].HasStatus)
	assert.Equal(t, "audit_engagement", doc.Types[1].Parent)

	require.Len(t, doc.Relations, 1)
	assert.Equal(t, "engagement", doc.Relations[0].Alias)
	assert.Equal(t, "author", doc.Relations[0].Relation)

	require.Len(t, doc.Roles, 1)
	require.Len(t, doc.Roles[0].Grants, 2)
	assert.Equal(t, []model.Kind{model.KindView}, doc.Roles[0].Grants[0].Kinds)
	assert.Equal(t, model.EffectDisallow, doc.Roles[0].Grants[1].Effect)
}

func TestParseUnknownVersion(t *testing.T) {
	_, err := parsers.Parse([]byte("version: permissions/v9\nmodule: audit\n"))
	require.Error(t, err)

	seedErr, ok := err.(*common.SeedError)
	require.True(t, ok)
	assert.Equal(t, common.SeedReasonUnknownVersion, seedErr.Reason)
}

func TestParseMissingModule(t *testing.T) {
	_, err := parsers.Parse([]byte("version: permissions/v1\n"))
	require.Error(t, err)

	seedErr, ok := err.(*common.SeedError)
	require.True(t, ok)
	assert.Equal(t, common.SeedReasonParse, seedErr.Reason)
}

func TestParseMalformedYaml(t *testing.T) {
	_, err := parsers.Parse([]byte("version: [unclosed"))
	require.Error(t, err)

	seedErr, ok := err.(*common.SeedError)
	require.True(t, ok)
	assert.Equal(t, common.SeedReasonParse, seedErr.Reason)
}

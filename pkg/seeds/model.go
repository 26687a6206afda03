//
//  Copyright © Fieldgate Inc. All rights reserved.
//

// Package seeds provides types for representing parsed permission seed
// documents.
//
// Seeds are defined in YAML files, one per functional module, and
// loaded via the [registry] package. This package contains the
// intermediate model types used after parsing but before flattening
// into the runtime rule form.
//
// A seed document declares the module's entity types, the relations its
// conditions may reference, and a set of role blocks. Each role block
// names a user group and carries grants; the flattener combines the
// module token, the role's group token and each grant's own conditions
// into the condition set of every emitted rule.
package seeds

import (
	"github.com/fieldgate/permengine/pkg/core/model"
	"github.com/fieldgate/permengine/pkg/core/schema"
)

// RelationDecl declares a relation predicate the module's conditions
// may reference, e.g. alias "engagement" relation "author" for the
// token `engagement.author=user`.
type RelationDecl struct {
	// Alias is the short entity alias used in condition tokens.
	Alias string
	// Relation is the relation name read from the entity snapshot.
	Relation string
}

// Grant is one permission statement within a role block.
type Grant struct {
	// Targets are the dotted targets the grant covers. The field segment
	// may be "*".
	Targets []string
	// Kinds are the permission kinds granted; one rule is emitted per
	// (target, kind) pair.
	Kinds []model.Kind
	// Effect is the sign of the emitted rules. Empty defaults to allow.
	Effect model.Effect
	// Conditions are extra condition tokens beyond the module and group
	// tokens, e.g. `audit_engagement.status="final"` or `new attachment`.
	Conditions []string
}

// Role is a block of grants tied to a user group.
type Role struct {
	// Group is the role group name; empty means the role's grants apply
	// to any user (no group condition is emitted).
	Group string
	// Conditions are tokens added to every grant of the role.
	Conditions []string
	// Grants are the role's permission statements.
	Grants []Grant
}

// Document is the complete representation of one parsed module seed.
type Document struct {
	// Module is the owning functional module, e.g. "audit".
	Module string
	// Types are the entity types the module declares.
	Types []schema.EntityType
	// Relations are the relation predicates the module's conditions use.
	Relations []RelationDecl
	// Roles are the module's role blocks.
	Roles []Role
}

// Rules flattens the document into its runtime rules.
//
// Every emitted rule carries the module token. A role with a group adds
// the group token; role- and grant-level conditions are appended after
// that. Rules are not normalized or validated here; the rule store does
// both on load.
func (d *Document) Rules() []model.Rule {
	var out []model.Rule
	for _, role := range d.Roles {
		base := make([]string, 0, 2+len(role.Conditions))
		base = append(base, "module="+d.Module)
		if role.Group != "" {
			base = append(base, `user.group="`+role.Group+`"`)
		}
		base = append(base, role.Conditions...)

		for _, grant := range role.Grants {
			effect := grant.Effect
			if effect == "" {
				effect = model.EffectAllow
			}
			conditions := make([]string, 0, len(base)+len(grant.Conditions))
			conditions = append(conditions, base...)
			conditions = append(conditions, grant.Conditions...)

			for _, target := range grant.Targets {
				for _, kind := range grant.Kinds {
					out = append(out, model.Rule{
						Target:     model.Target(target),
						Kind:       kind,
						Effect:     effect,
						Conditions: conditions,
					})
				}
			}
		}
	}
	return out
}

//
//  Copyright © Fieldgate Inc. All rights reserved.
//

// Package v1 parses the permissions/v1 seed document format.
package v1

import (
	"github.com/fieldgate/permengine/pkg/common"
	"github.com/fieldgate/permengine/pkg/core/model"
	"github.com/fieldgate/permengine/pkg/core/schema"
	"github.com/fieldgate/permengine/pkg/seeds"

	"gopkg.in/yaml.v3"
)

// Entity represents an entity type declaration in permissions/v1 format
type Entity struct {
	Name      string `yaml:"name"`
	Parent    string `yaml:"parent,omitempty"`
	HasStatus bool   `yaml:"has_status,omitempty"`
}

// Relation represents a relation predicate declaration in permissions/v1 format
type Relation struct {
	Alias    string `yaml:"alias"`
	Relation string `yaml:"relation"`
}

// Grant represents a permission statement in permissions/v1 format
type Grant struct {
	Targets    []string `yaml:"targets"`
	Kinds      []string `yaml:"kinds"`
	Effect     string   `yaml:"effect,omitempty"`
	Conditions []string `yaml:"conditions,omitempty"`
}

// Role represents a role block in permissions/v1 format
type Role struct {
	Group      string   `yaml:"group,omitempty"`
	Conditions []string `yaml:"conditions,omitempty"`
	Grants     []Grant  `yaml:"grants"`
}

// Document represents a complete seed file in permissions/v1 format
type Document struct {
	Version   string     `yaml:"version"`
	Module    string     `yaml:"module"`
	Entities  []Entity   `yaml:"entities,omitempty"`
	Relations []Relation `yaml:"relations,omitempty"`
	Roles     []Role     `yaml:"roles"`
}

func exportGrant(def Grant) seeds.Grant {
	kinds := make([]model.Kind, 0, len(def.Kinds))
	for _, k := range def.Kinds {
		kinds = append(kinds, model.Kind(k))
	}
	return seeds.Grant{
		Targets:    def.Targets,
		Kinds:      kinds,
		Effect:     model.Effect(def.Effect),
		Conditions: def.Conditions,
	}
}

func exportRole(def Role) seeds.Role {
	grants := make([]seeds.Grant, 0, len(def.Grants))
	for _, g := range def.Grants {
		grants = append(grants, exportGrant(g))
	}
	return seeds.Role{
		Group:      def.Group,
		Conditions: def.Conditions,
		Grants:     grants,
	}
}

// Parse unmarshals a permissions/v1 seed document and exports it to the
// intermediate model.
func Parse(data []byte) (*seeds.Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, common.NewSeedError("", common.SeedReasonParse, "%v", err)
	}

	if doc.Module == "" {
		return nil, common.NewSeedError("", common.SeedReasonParse, "seed document does not name a module")
	}

	out := &seeds.Document{
		Module: doc.Module,
	}

	for _, e := range doc.Entities {
		out.Types = append(out.Types, schema.EntityType{
			Name:      e.Name,
			Parent:    e.Parent,
			HasStatus: e.HasStatus,
		})
	}
	for _, r := range doc.Relations {
		out.Relations = append(out.Relations, seeds.RelationDecl{
			Alias:    r.Alias,
			Relation: r.Relation,
		})
	}
	for _, r := range doc.Roles {
		out.Roles = append(out.Roles, exportRole(r))
	}

	return out, nil
}

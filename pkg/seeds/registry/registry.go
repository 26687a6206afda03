//
//  Copyright © Fieldgate Inc. All rights reserved.
//

// Package registry provides functionality for loading and validating
// permission seeds from YAML files.
//
// The registry is the primary entry point for seeding an engine. It
// parses seed files, merges their entity-type declarations into one
// type registry, validates every emitted rule against it, and yields
// per-module rule lists plus the assembled condition vocabulary.
//
// # Loading Seeds
//
//	r, err := registry.NewRegistry([]string{
//	    "./seeds/audit.yaml",
//	    "./seeds/tpm.yaml",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Using with the Engine
//
//	store := rulestore.New()
//	_ = store.Load(r.Rules())
//	engine, _ := core.NewEngine(
//	    options.WithTypes(r.Types()),
//	    options.WithVocabulary(r.Vocabulary()),
//	)
package registry

import (
	"github.com/fieldgate/permengine/pkg/common"
	"github.com/fieldgate/permengine/pkg/core/model"
	"github.com/fieldgate/permengine/pkg/core/schema"
	"github.com/fieldgate/permengine/pkg/core/vocabulary"
	"github.com/fieldgate/permengine/pkg/seeds"
	"github.com/fieldgate/permengine/pkg/seeds/parsers"
)

// Registry manages loaded seed documents and their validation state.
//
// Registry is created by [NewRegistry], which loads and validates seed
// YAML files. The registry can then supply the engine's rule store,
// type registry and vocabulary.
type Registry struct {
	documents map[string]*seeds.Document
	modules   []string
	types     *schema.Registry
	vocab     *vocabulary.Vocabulary
}

// NewRegistry loads and validates permission seeds from the specified
// paths.
//
// Each path should be a seed YAML file. Seeds are loaded in the order
// provided; a later document for the same module replaces the earlier
// one. Returns an error if any seed fails to parse or validate.
func NewRegistry(seedPaths []string) (*Registry, error) {
	documents := make([]*seeds.Document, 0, len(seedPaths))
	for _, path := range seedPaths {
		doc, err := parsers.Load(path)
		if err != nil {
			return nil, err
		}
		documents = append(documents, doc)
	}

	return newRegistry(documents)
}

// NewRegistryFromDocuments builds a registry from already-parsed
// documents, in the same later-wins order as [NewRegistry]. Intended
// for modules that assemble their seed programmatically.
func NewRegistryFromDocuments(documents []*seeds.Document) (*Registry, error) {
	return newRegistry(documents)
}

func newRegistry(documents []*seeds.Document) (*Registry, error) {
	r := &Registry{
		documents: make(map[string]*seeds.Document, len(documents)),
	}
	for _, doc := range documents {
		if _, ok := r.documents[doc.Module]; !ok {
			r.modules = append(r.modules, doc.Module)
		}
		r.documents[doc.Module] = doc
	}

	var declared []schema.EntityType
	vocab := vocabulary.Default()
	for _, module := range r.modules {
		doc := r.documents[module]
		declared = append(declared, doc.Types...)
		for _, rel := range doc.Relations {
			vocab = vocab.With(vocabulary.RelationPredicate{
				Alias:    rel.Alias,
				Relation: rel.Relation,
			})
		}
	}

	types, err := schema.NewRegistry(declared...)
	if err != nil {
		return nil, common.NewSeedError("", common.SeedReasonUnknownEntity, "%v", err)
	}
	r.types = types
	r.vocab = vocab

	if err := r.verify(); err != nil {
		return nil, err
	}
	return r, nil
}

// verify checks every flattened rule: well-formed target, known kind
// and effect, and a target entity declared by some loaded module.
func (r *Registry) verify() error {
	for _, module := range r.modules {
		doc := r.documents[module]
		for _, rule := range doc.Rules() {
			if err := rule.Validate(); err != nil {
				if seedErr, ok := err.(*common.SeedError); ok && seedErr.Module == "" {
					seedErr.Module = module
				}
				return err
			}
			if entity := rule.Target.Entity(); !r.types.Known(entity) {
				return common.NewSeedError(module, common.SeedReasonUnknownEntity,
					"rule for %q references undeclared entity type %q", rule.Target, entity)
			}
		}
	}
	return nil
}

// Modules returns the loaded module names in load order.
func (r *Registry) Modules() []string {
	out := make([]string, len(r.modules))
	copy(out, r.modules)
	return out
}

// Document returns the parsed seed for a module, or nil.
func (r *Registry) Document(module string) *seeds.Document {
	return r.documents[module]
}

// Rules returns the flattened rules of every loaded module, grouped by
// module, in the shape [rulestore.Store.Load] accepts.
func (r *Registry) Rules() map[string][]model.Rule {
	out := make(map[string][]model.Rule, len(r.documents))
	for module, doc := range r.documents {
		out[module] = doc.Rules()
	}
	return out
}

// Types returns the merged entity-type registry.
func (r *Registry) Types() *schema.Registry {
	return r.types
}

// Vocabulary returns the default vocabulary extended with every
// relation predicate the loaded seeds declare.
func (r *Registry) Vocabulary() *vocabulary.Vocabulary {
	return r.vocab
}

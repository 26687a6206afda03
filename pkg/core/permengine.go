//
//  Copyright © Fieldgate Inc. All rights reserved.
//

// Package core provides the primary interface for the Fieldgate
// Permission Engine, a declarative field-and-action authorization
// system. Rules bind dotted targets such as "audit_engagement.partner"
// to permission kinds (view, edit, action) under condition sets, and
// decisions resolve the most specific applicable rule, defaulting to
// deny.
//
// # Quick Start
//
// Create an engine from module seed files:
//
//	pe, err := core.NewSeededEngine([]string{"./seeds/audit.yaml"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pe.Close()
//
// Resolve a decision:
//
//	allowed, err := pe.DecideFor(ctx, user, entity, "audit",
//	    []string{"audit_engagement.partner"}, model.KindEdit)
//
// # Configuration
//
// The engine supports various configuration options via functional
// options:
//
//	pe, err := core.NewEngine(
//	    options.WithDecisionLog(decisionlog.NewStdoutFactory()),
//	    options.WithVocabulary(vocab),
//	    options.WithTypes(types),
//	)
//
// # Probe Mode
//
// For UI capabilities discovery without generating decision records,
// use probe mode:
//
//	allowed, err := pe.DecideFor(ctx, user, entity, module, targets, kind,
//	    options.SetProbeMode(true))
//
// See the [options] package for all available configuration options.
package core

import (
	"context"
	"os"
	"time"

	internal "github.com/fieldgate/permengine/internal/core"
	"github.com/fieldgate/permengine/internal/logging"
	"github.com/fieldgate/permengine/pkg/common"
	"github.com/fieldgate/permengine/pkg/core/assembler"
	"github.com/fieldgate/permengine/pkg/core/config"
	"github.com/fieldgate/permengine/pkg/core/decisionlog"
	"github.com/fieldgate/permengine/pkg/core/model"
	"github.com/fieldgate/permengine/pkg/core/options"
	"github.com/fieldgate/permengine/pkg/core/rulestore"
	"github.com/fieldgate/permengine/pkg/core/schema"
	"github.com/fieldgate/permengine/pkg/core/vocabulary"
	"github.com/fieldgate/permengine/pkg/seeds/registry"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var logger = logging.GetLogger("permengine")
var agent = "permengine"

// Engine is the primary interface for resolving permission decisions.
//
// An Engine combines a rule store, an entity-type registry, a condition
// vocabulary and a decision log. Decisions assemble the active context
// from (user, entity, module), match it against the loaded rules and
// return the allowed subset of the requested targets; everything not
// explicitly allowed is denied.
//
// Implementations of Engine are safe for concurrent use by multiple
// goroutines.
type Engine interface {
	// DecideFor assembles the active context for (user, entity, module)
	// and returns the subset of targets allowed for the requested kind,
	// in byte order.
	//
	// user may be nil for anonymous evaluation and entity may be nil for
	// decisions that concern no particular object. Returns a
	// [common.IntegrationError] when kind is unknown or any target does
	// not match the dotted grammar; an unauthorized target is not an
	// error, it is simply absent from the result.
	DecideFor(ctx context.Context, user *model.User, entity *model.Entity, module string, targets []string, kind model.Kind, decideOptions ...options.DecideOptionsFunc) ([]string, error)

	// Decide is DecideFor with a pre-assembled context, for callers that
	// batch many decisions over one (user, entity, module) tuple.
	Decide(ctx context.Context, active model.Context, targets []string, kind model.Kind, decideOptions ...options.DecideOptionsFunc) ([]string, error)

	// Check is a single-target convenience over DecideFor.
	Check(ctx context.Context, user *model.User, entity *model.Entity, module string, target string, kind model.Kind, decideOptions ...options.DecideOptionsFunc) (bool, error)

	// Assemble returns the active context for (user, entity, module)
	// without resolving a decision.
	Assemble(user *model.User, entity *model.Entity, module string) model.Context

	// Store returns the underlying rule store, for seeding and
	// introspection.
	Store() *rulestore.Store

	// Types returns the entity-type registry the engine resolves
	// ancestry against.
	Types() *schema.Registry

	// Close releases the decision log stream. The engine must not be
	// used after Close.
	Close()
}

// EngineImpl is the default implementation of the [Engine] interface.
//
// EngineImpl wraps the internal decision engine and can be embedded or
// wrapped by applications that need to extend the engine's behavior.
// Use [NewEngine] or [NewSeededEngine] to create a properly initialized
// instance.
type EngineImpl struct {
	engine *internal.Engine
	store  *rulestore.Store
	types  *schema.Registry
	asm    *assembler.Assembler
	stream decisionlog.Stream
	clock  func() time.Time
}

// NewEngine creates and initializes a new [Engine] instance with an
// empty rule store.
//
// By default the engine logs decisions to stdout, carries the shared
// [vocabulary.Default] predicates and has no entity-type declarations.
// Use functional options to configure each:
//
//	pe, err := core.NewEngine(
//	    options.WithDecisionLog(decisionlog.NewNullFactory()),
//	    options.WithVocabulary(r.Vocabulary()),
//	    options.WithTypes(r.Types()),
//	)
//
// NewEngine loads configuration from environment variables and config
// files before initializing the engine. See the [config] package for
// details.
func NewEngine(engineOptions ...options.EngineOptionsFunc) (Engine, error) {
	pe, err := newEngine(engineOptions...)
	if err != nil {
		return nil, err
	}
	return pe, nil
}

// NewSeededEngine creates and initializes a new [Engine] instance from
// local seed YAML files.
//
// Each seedPath should be a permissions/v1 seed document. Seeds are
// loaded in the order provided, with later documents taking precedence
// for module collisions. The entity types and relation predicates the
// seeds declare become the engine's type registry and vocabulary unless
// overridden via options.
//
// Other defaults are inherited from [NewEngine].
func NewSeededEngine(seedPaths []string, engineOptions ...options.EngineOptionsFunc) (Engine, error) {
	r, err := registry.NewRegistry(seedPaths)
	if err != nil {
		return nil, err
	}

	engineOptions = append([]options.EngineOptionsFunc{
		options.WithTypes(r.Types()),
		options.WithVocabulary(r.Vocabulary()),
	}, engineOptions...)

	pe, err := newEngine(engineOptions...)
	if err != nil {
		return nil, err
	}

	if err := pe.store.Load(r.Rules()); err != nil {
		pe.Close()
		return nil, err
	}
	return pe, nil
}

func newEngine(engineOptions ...options.EngineOptionsFunc) (*EngineImpl, error) {
	err := config.Load()
	if err != nil {
		return nil, errors.Wrap(err, "error loading config")
	}

	opts := &options.EngineOptions{
		DecisionLogFactory: decisionlog.NewIoWriterFactoryWithOptions(
			os.Stdout,
			decisionlog.Options{PrettyPrint: config.VConfig.GetBool(config.DecisionLogPretty)},
		),
		Vocabulary: vocabulary.Default(),
	}
	for _, o := range engineOptions {
		o(opts)
	}

	stream, err := opts.DecisionLogFactory.NewStream()
	if err != nil {
		return nil, errors.Wrap(err, "error creating decision log stream")
	}

	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	store := rulestore.New()
	return &EngineImpl{
		engine: internal.NewEngine(store, opts.Types),
		store:  store,
		types:  opts.Types,
		asm:    assembler.New(opts.Vocabulary, opts.Types, assembler.Clock(clock)),
		stream: stream,
		clock:  clock,
	}, nil
}

// parseTargets validates boundary inputs: a known kind and concrete,
// well-formed targets. Wildcards are a rule-authoring construct and are
// rejected here.
func parseTargets(targets []string, kind model.Kind) (model.TargetSet, error) {
	if !kind.Valid() {
		return nil, common.NewIntegrationError("kind", "%q is not one of view, edit, action", kind)
	}
	set := model.NewTargetSet()
	for _, s := range targets {
		t, err := model.ParseTarget(s)
		if err != nil {
			return nil, err
		}
		if t.IsWildcard() {
			return nil, common.NewIntegrationError("target", "%q: wildcards may not be requested, only granted", s)
		}
		set.Add(t)
	}
	return set, nil
}

func (pe *EngineImpl) decide(active model.Context, user, module string, targets model.TargetSet, kind model.Kind, decideOptions []options.DecideOptionsFunc) []string {
	opts := &options.DecideOptions{Probe: false}
	for _, o := range decideOptions {
		o(opts)
	}

	allowed := pe.engine.Decide(active, targets, kind)

	if !opts.Probe {
		record := &decisionlog.Record{
			ID:        uuid.NewString(),
			Timestamp: pe.clock(),
			User:      user,
			Module:    module,
			Kind:      kind,
			Targets:   targets.Strings(),
			Allowed:   allowed.Strings(),
			Context:   active.Tokens(),
		}
		if err := pe.stream.Send(record); err != nil {
			logger.Warnf(agent, "decide", "failed to emit decision record %s: %v", record.ID, err)
		}
	}

	return allowed.Strings()
}

// DecideFor assembles the active context for (user, entity, module) and
// resolves the requested targets. See [Engine.DecideFor].
func (pe *EngineImpl) DecideFor(ctx context.Context, user *model.User, entity *model.Entity, module string, targets []string, kind model.Kind, decideOptions ...options.DecideOptionsFunc) ([]string, error) {
	logger.Debug(agent, "DecideFor", "Enter")
	defer logger.Debug(agent, "DecideFor", "Exit")

	set, err := parseTargets(targets, kind)
	if err != nil {
		return nil, err
	}

	userID := ""
	if user != nil {
		userID = user.ID
	}

	active := pe.asm.Assemble(user, entity, module)
	return pe.decide(active, userID, module, set, kind, decideOptions), nil
}

// Decide resolves the requested targets against a pre-assembled
// context. See [Engine.Decide].
func (pe *EngineImpl) Decide(ctx context.Context, active model.Context, targets []string, kind model.Kind, decideOptions ...options.DecideOptionsFunc) ([]string, error) {
	set, err := parseTargets(targets, kind)
	if err != nil {
		return nil, err
	}
	return pe.decide(active, "", "", set, kind, decideOptions), nil
}

// Check resolves a single target to a boolean. See [Engine.Check].
func (pe *EngineImpl) Check(ctx context.Context, user *model.User, entity *model.Entity, module string, target string, kind model.Kind, decideOptions ...options.DecideOptionsFunc) (bool, error) {
	allowed, err := pe.DecideFor(ctx, user, entity, module, []string{target}, kind, decideOptions...)
	if err != nil {
		return false, err
	}
	return len(allowed) == 1, nil
}

// Assemble returns the active context for (user, entity, module).
func (pe *EngineImpl) Assemble(user *model.User, entity *model.Entity, module string) model.Context {
	return pe.asm.Assemble(user, entity, module)
}

// Store returns the engine's rule store.
func (pe *EngineImpl) Store() *rulestore.Store {
	return pe.store
}

// Types returns the engine's entity-type registry.
func (pe *EngineImpl) Types() *schema.Registry {
	return pe.types
}

// Close releases the decision log stream.
func (pe *EngineImpl) Close() {
	pe.stream.Close()
}

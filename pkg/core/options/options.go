//
//  Copyright © Fieldgate Inc. All rights reserved.
//
// shared between pkg/core and internal callers, and thus must be in a separate package to avoid circular dependencies

package options

import (
	"time"

	"github.com/fieldgate/permengine/pkg/core/decisionlog"
	"github.com/fieldgate/permengine/pkg/core/schema"
	"github.com/fieldgate/permengine/pkg/core/vocabulary"
)

// EngineOptions defines the configuration options for initializing a
// permission engine: the decision log factory, the condition
// vocabulary, the entity-type registry and the clock.
type EngineOptions struct {
	DecisionLogFactory decisionlog.Factory
	Vocabulary         *vocabulary.Vocabulary
	Types              *schema.Registry
	Clock              func() time.Time
}

// EngineOptionsFunc is a function that modifies EngineOptions.
type EngineOptionsFunc func(*EngineOptions)

// WithDecisionLog configures the decision log stream for the engine.
func WithDecisionLog(factory decisionlog.Factory) EngineOptionsFunc {
	return func(o *EngineOptions) {
		o.DecisionLogFactory = factory
	}
}

// WithVocabulary configures the condition vocabulary for the engine.
// Modules typically extend [vocabulary.Default] with their relation and
// custom predicates at bootstrap and pass the result here.
func WithVocabulary(v *vocabulary.Vocabulary) EngineOptionsFunc {
	return func(o *EngineOptions) {
		o.Vocabulary = v
	}
}

// WithTypes configures the precomputed entity-type registry, which
// supplies ancestry for base-level rule matching and status-token
// resolution.
func WithTypes(r *schema.Registry) EngineOptionsFunc {
	return func(o *EngineOptions) {
		o.Types = r
	}
}

// WithClock injects the time source used by time-dependent predicates.
// Tests pin it to a fixed instant; production leaves the default
// (time.Now).
func WithClock(clock func() time.Time) EngineOptionsFunc {
	return func(o *EngineOptions) {
		o.Clock = clock
	}
}

// DecideOptions represents configuration options for Decide operations.
type DecideOptions struct {
	Probe bool
}

// DecideOptionsFunc is a function that modifies DecideOptions.
type DecideOptionsFunc func(*DecideOptions)

// SetProbeMode configures probe mode for Decide operations. Probe mode
// evaluates rules but does not log the decision, which is helpful for
// returning information about what a user could do without implying
// they tried. For instance, a UI that greys out a "submit" button based
// on a probe decision should not generate a record suggesting the user
// attempted to submit.
//
// Probe mode is disabled by default. Use with caution and only in places
// where you are sure that the decision doesn't require logging.
func SetProbeMode(probe bool) DecideOptionsFunc {
	return func(o *DecideOptions) {
		o.Probe = probe
	}
}

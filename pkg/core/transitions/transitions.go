//
//  Copyright © Fieldgate Inc. All rights reserved.
//

// Package transitions gates state-machine transitions on action
// permissions.
//
// A transition is declared with an action name such as "submit" or
// "cancel". Before firing it, the integration layer asks the guard,
// which resolves the target "<entity>.<action>" with kind action. The
// transition proceeds only when that target resolves to allow.
package transitions

import (
	"context"
	"fmt"

	"github.com/fieldgate/permengine/pkg/core/model"
	"github.com/fieldgate/permengine/pkg/core/options"
)

// Engine is the subset of the permission engine the guard consumes.
// [core.Engine] satisfies it.
type Engine interface {
	Check(ctx context.Context, user *model.User, entity *model.Entity, module string, target string, kind model.Kind, decideOptions ...options.DecideOptionsFunc) (bool, error)
}

// DeniedError reports a blocked transition. It names only the action:
// the caller decides how much to reveal to the end user.
type DeniedError struct {
	// Action is the transition's action name, e.g. "submit".
	Action string
}

// Error implements the error interface.
func (e *DeniedError) Error() string {
	return fmt.Sprintf("transition %q is not allowed", e.Action)
}

// Guard gates transitions for one functional module.
type Guard struct {
	engine Engine
	module string
}

// NewGuard creates a transition guard over the given engine.
func NewGuard(engine Engine, module string) *Guard {
	return &Guard{
		engine: engine,
		module: module,
	}
}

// Allow reports whether the user may fire the named action on the
// entity. The target is "<entity-type>.<action>"; the entity's declared
// ancestors are honored by the engine, so base-level action rules gate
// concrete variants.
//
// Returns a [common.IntegrationError] when the action does not form a
// valid target.
func (g *Guard) Allow(ctx context.Context, user *model.User, entity *model.Entity, action string, decideOptions ...options.DecideOptionsFunc) (bool, error) {
	target := model.NewTarget(entity.Type, action)
	return g.engine.Check(ctx, user, entity, g.module, string(target), model.KindAction, decideOptions...)
}

// Require is [Guard.Allow] with a denial error: it returns nil when the
// transition may fire and a [DeniedError] naming the action otherwise.
func (g *Guard) Require(ctx context.Context, user *model.User, entity *model.Entity, action string, decideOptions ...options.DecideOptionsFunc) error {
	ok, err := g.Allow(ctx, user, entity, action, decideOptions...)
	if err != nil {
		return err
	}
	if !ok {
		return &DeniedError{Action: action}
	}
	return nil
}

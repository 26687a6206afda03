//
//  Copyright © Fieldgate Inc. All rights reserved.
//

package generic

import (
	"net/http"

	"github.com/fieldgate/permengine/pkg/common"
	"github.com/fieldgate/permengine/pkg/core"
	"github.com/fieldgate/permengine/pkg/core/fieldfilter"
	"github.com/fieldgate/permengine/pkg/core/model"
	"github.com/fieldgate/permengine/pkg/core/options"
	"github.com/fieldgate/permengine/pkg/core/schema"
	"github.com/fieldgate/permengine/pkg/core/transitions"

	"github.com/labstack/echo/v4"
)

// DecideRequest is the body of POST /v1/decide.
type DecideRequest struct {
	User    *model.User   `json:"user,omitempty"`
	Entity  *model.Entity `json:"entity,omitempty"`
	Module  string        `json:"module"`
	Targets []string      `json:"targets"`
	Kind    model.Kind    `json:"kind"`
	Probe   bool          `json:"probe,omitempty"`
}

// DecideResponse is the body of a successful decide call. Targets
// absent from Allowed are denied; denial is not an error.
type DecideResponse struct {
	Allowed []string `json:"allowed"`
}

// FilterRequest is the body of POST /v1/filter.
type FilterRequest struct {
	User   *model.User   `json:"user,omitempty"`
	Entity *model.Entity `json:"entity,omitempty"`
	Module string        `json:"module"`
	Schema *schema.Node  `json:"schema"`
	Probe  bool          `json:"probe,omitempty"`
}

// FilterResponse reports the resolved field paths of a schema.
type FilterResponse struct {
	Readable []string `json:"readable"`
	Writable []string `json:"writable"`
	ReadOnly []string `json:"read_only"`
}

// TransitionRequest is the body of POST /v1/transition.
type TransitionRequest struct {
	User   *model.User   `json:"user,omitempty"`
	Entity *model.Entity `json:"entity"`
	Module string        `json:"module"`
	Action string        `json:"action"`
	Probe  bool          `json:"probe,omitempty"`
}

// TransitionResponse reports whether the transition may fire.
type TransitionResponse struct {
	Allow bool `json:"allow"`
}

// ErrorResponse carries a boundary validation failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

type api struct {
	pe core.Engine
}

// fail maps an engine error onto an HTTP status: integration errors are
// the caller's fault (400), anything else is a 500.
func fail(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	if _, ok := err.(*common.IntegrationError); ok {
		status = http.StatusBadRequest
	}
	return c.JSON(status, ErrorResponse{Error: err.Error()})
}

func (a api) decide(c echo.Context) error {
	var req DecideRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	allowed, err := a.pe.DecideFor(c.Request().Context(), req.User, req.Entity, req.Module,
		req.Targets, req.Kind, options.SetProbeMode(req.Probe))
	if err != nil {
		return fail(c, err)
	}
	if allowed == nil {
		allowed = []string{}
	}
	return c.JSON(http.StatusOK, DecideResponse{Allowed: allowed})
}

func (a api) filter(c echo.Context) error {
	var req FilterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	if req.Schema == nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing schema"})
	}

	result, err := fieldfilter.Filter(c.Request().Context(), a.pe, req.Schema,
		req.User, req.Entity, req.Module, options.SetProbeMode(req.Probe))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, FilterResponse{
		Readable: result.ReadablePaths(),
		Writable: result.WritablePaths(),
		ReadOnly: result.ReadOnlyPaths(),
	})
}

func (a api) transition(c echo.Context) error {
	var req TransitionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	if req.Entity == nil || req.Action == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing entity or action"})
	}

	guard := transitions.NewGuard(a.pe, req.Module)
	allow, err := guard.Allow(c.Request().Context(), req.User, req.Entity, req.Action,
		options.SetProbeMode(req.Probe))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, TransitionResponse{Allow: allow})
}

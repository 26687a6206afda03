//
//  Copyright © Fieldgate Inc. All rights reserved.
//

// Package generic implements an HTTP/REST decision point over echo.
//
// Endpoints:
//
//	POST /v1/decide      resolve targets for a permission kind
//	POST /v1/filter      resolve a nested schema's field paths
//	POST /v1/transition  gate a state-machine transition
//
// Denials are normal 200 responses carrying the allowed subset; mapping
// a denial to HTTP 403 belongs to the enforcement point. Boundary
// validation failures return 400.
package generic

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fieldgate/permengine/pkg/core"
	"github.com/fieldgate/permengine/pkg/decisionpoint"

	"github.com/labstack/echo/v4"
)

// Server represents a generic decision point server that serves the REST API.
type Server struct {
	echo *echo.Echo
}

// CreateServer creates and starts a new generic decision point server
// on the given port.
func CreateServer(pe core.Engine, port int) (decisionpoint.Server, error) {
	e := newEcho(pe)

	// Start server in goroutine since e.Start() blocks
	go func() {
		if err := e.Start(fmt.Sprintf(":%d", port)); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal(err)
		}
	}()

	return &Server{
		echo: e,
	}, nil
}

func newEcho(pe core.Engine) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	a := api{pe: pe}
	e.POST("/v1/decide", a.decide)
	e.POST("/v1/filter", a.filter)
	e.POST("/v1/transition", a.transition)

	return e
}

// Stop gracefully stops the Server by shutting down the echo HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

//
//  Copyright © Fieldgate Inc. All rights reserved.
//

// Package decisionpoint provides interfaces and implementations for
// permission decision point servers.
//
// A decision point exposes the permission engine as a network service
// that enforcement points (API gateways, serializer layers, workflow
// engines) can call to resolve field and action permissions.
//
// # Available Implementations
//
//   - [generic]: HTTP/REST server over echo
//
// # Usage
//
// Create and start a decision point server:
//
//	pe, _ := core.NewSeededEngine(seedPaths)
//	server, _ := generic.CreateServer(pe, 9000)
//	defer server.Stop(ctx)
package decisionpoint

import "context"

// Server is the interface for decision point servers that can be
// gracefully stopped.
//
// Implementations must ensure that [Stop] completes any in-flight
// requests before returning.
type Server interface {
	// Stop gracefully shuts down the server, waiting for active requests
	// to complete or until the context is cancelled.
	Stop(context.Context) error
}

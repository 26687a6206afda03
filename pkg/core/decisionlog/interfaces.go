//
//  Copyright © Fieldgate Inc. All rights reserved.
//

// Package decisionlog provides a hookable stream of permission
// decisions.
//
// The engine itself does not persist decisions; it hands each one to a
// configured [Stream]. Deployments that need an audit trail attach a
// stream that forwards records to their log pipeline; everyone else
// keeps the default stdout stream or disables logging with the null
// stream.
//
// # Built-in Implementations
//
//   - [NewStdoutFactory]: writes JSON records to stdout
//   - [NewIoWriterFactory]: writes JSON records to any io.Writer
//   - [NewNullFactory]: discards all records
//
// # Custom Implementations
//
// To ship records elsewhere (message broker, database, cloud logging):
//
//  1. Implement [Factory] to create stream instances
//  2. Implement [Stream] to handle record delivery
//  3. Pass the factory via options.WithDecisionLog when creating the engine
package decisionlog

import (
	"time"

	"github.com/fieldgate/permengine/pkg/core/model"
)

// Record describes one permission decision.
type Record struct {
	// ID uniquely identifies the decision.
	ID string `json:"id"`
	// Timestamp is the time the decision completed.
	Timestamp time.Time `json:"timestamp"`
	// User is the acting user's ID, empty for anonymous decisions.
	User string `json:"user,omitempty"`
	// Module is the functional module the decision ran under.
	Module string `json:"module,omitempty"`
	// Kind is the requested permission kind.
	Kind model.Kind `json:"kind"`
	// Targets are the concrete targets that were asked about.
	Targets []string `json:"targets"`
	// Allowed is the subset of Targets that resolved to allow.
	Allowed []string `json:"allowed"`
	// Context is the active context the decision ran against.
	Context []string `json:"context,omitempty"`
}

// Factory creates decision log [Stream] instances.
//
// Early initialization (validating configuration) belongs in factory
// construction; late initialization (opening connections, allocating
// buffers) belongs in [Factory.NewStream]. The engine guarantees that
// configuration is fully loaded before NewStream is called.
type Factory interface {
	// NewStream creates a new decision log stream, ready to receive
	// records via [Stream.Send].
	NewStream() (Stream, error)
}

// Stream delivers decision records to their destination.
//
// Implementations must be safe for concurrent use; the engine may call
// [Stream.Send] from multiple goroutines simultaneously. Send must not
// modify the record.
type Stream interface {
	// Send delivers one decision record. The engine logs send errors
	// but does not retry.
	Send(record *Record) error

	// Close releases any resources held by the stream, flushing
	// buffered records first.
	Close()
}

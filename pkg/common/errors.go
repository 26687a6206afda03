//
//  Copyright © Fieldgate Inc. All rights reserved.
//

// Package common provides shared types and utilities used across the
// permission engine packages.
//
// # Error Handling
//
// Two structured error types cover the only situations in which the
// engine surfaces errors:
//
//   - [SeedError]: a malformed rule or seed document detected at load
//     time. The previous rule store remains in effect.
//   - [IntegrationError]: an ill-formed input detected at the
//     integration boundary (unknown permission kind, target not
//     matching the dotted grammar).
//
// Decision-time misses are not errors; an unauthorized target is simply
// absent from the allowed set.
package common

import (
	"fmt"
)

// SeedReason is the machine-readable classification of a seed-load failure.
type SeedReason string

// Seed failure reason codes.
const (
	// SeedReasonParse indicates the seed document could not be parsed.
	SeedReasonParse SeedReason = "PARSE_ERROR"
	// SeedReasonUnknownKind indicates a rule referenced a permission kind
	// outside {view, edit, action}.
	SeedReasonUnknownKind SeedReason = "UNKNOWN_KIND"
	// SeedReasonUnknownEffect indicates a rule referenced an effect outside
	// {allow, disallow}.
	SeedReasonUnknownEffect SeedReason = "UNKNOWN_EFFECT"
	// SeedReasonMalformedTarget indicates a rule target that is empty or does
	// not match the "<app>_<entity>.<field_or_action>" grammar.
	SeedReasonMalformedTarget SeedReason = "MALFORMED_TARGET"
	// SeedReasonUnknownEntity indicates a rule or condition referenced an
	// entity type that is not declared in the type registry.
	SeedReasonUnknownEntity SeedReason = "UNKNOWN_ENTITY"
	// SeedReasonUnknownVersion indicates an unsupported seed document version.
	SeedReasonUnknownVersion SeedReason = "UNKNOWN_VERSION"
)

// SeedError represents a malformed rule or seed document detected at
// load time.
//
// SeedError is surfaced to the operator running the seed program; it is
// never produced on the decision path. When a load fails with a
// SeedError the rule store retains its previous contents.
type SeedError struct {
	// Module is the functional module whose seed failed to load, when known.
	Module string
	// Reason is the machine-readable failure classification.
	Reason SeedReason
	// Detail is a human-readable description of the failure.
	Detail string
}

// Error implements the error interface, returning a formatted string
// containing the module, detail and reason code.
func (e *SeedError) Error() string {
	if e.Module != "" {
		return fmt.Sprintf("seed %s: %s(code-%s)", e.Module, e.Detail, e.Reason)
	}
	return fmt.Sprintf("seed: %s(code-%s)", e.Detail, e.Reason)
}

// NewSeedError creates a new [SeedError] for the given module with the
// specified reason code and message.
func NewSeedError(module string, reason SeedReason, format string, args ...interface{}) *SeedError {
	return &SeedError{
		Module: module,
		Reason: reason,
		Detail: fmt.Sprintf(format, args...),
	}
}

// IntegrationError represents an ill-formed input passed across the
// integration boundary, such as an unknown permission kind or a target
// that does not match the dotted grammar.
//
// Integration errors are rejected before the decision engine runs; the
// engine itself never raises during permission evaluation.
type IntegrationError struct {
	// Field names the offending input parameter (e.g. "kind", "target").
	Field string
	// Detail is a human-readable description of the problem.
	Detail string
}

// Error implements the error interface.
func (e *IntegrationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Detail)
}

// NewIntegrationError creates a new [IntegrationError] for the named field.
func NewIntegrationError(field string, format string, args ...interface{}) *IntegrationError {
	return &IntegrationError{
		Field:  field,
		Detail: fmt.Sprintf(format, args...),
	}
}

// Package fault classifies operation failures so callers can tell a missing
// entity from a state-machine conflict from bad input without string matching.
package fault

import (
	"errors"
	"fmt"
)

// Kind is the failure category of an Error.
type Kind int

const (
	// NotFound means a referenced entity does not exist.
	NotFound Kind = iota
	// Conflict means a state-machine precondition was violated.
	Conflict
	// Invalid means the input was malformed.
	Invalid
	// Timeout means persistence did not answer within the operation bound.
	Timeout
	// SignalFailure means the power-control sidecar was unreachable. It is
	// surfaced as warning metadata, never as an operation failure.
	SignalFailure
)

// Error carries the failure kind plus enough detail to render a user-facing
// message: which entity, and why.
type Error struct {
	Kind   Kind
	Entity string
	Reason string
}

func (e *Error) Error() string {
	if e.Entity == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Entity, e.Reason)
}

// NotFoundf builds a NotFound error for the named entity.
func NotFoundf(entity, format string, args ...any) *Error {
	return &Error{Kind: NotFound, Entity: entity, Reason: fmt.Sprintf(format, args...)}
}

// Conflictf builds a Conflict error for the named entity.
func Conflictf(entity, format string, args ...any) *Error {
	return &Error{Kind: Conflict, Entity: entity, Reason: fmt.Sprintf(format, args...)}
}

// Invalidf builds an Invalid error.
func Invalidf(format string, args ...any) *Error {
	return &Error{Kind: Invalid, Reason: fmt.Sprintf(format, args...)}
}

// Timeoutf builds a Timeout error for the named entity.
func Timeoutf(entity, format string, args ...any) *Error {
	return &Error{Kind: Timeout, Entity: entity, Reason: fmt.Sprintf(format, args...)}
}

// KindOf extracts the failure kind from err, or (0, false) if err is not a
// fault error anywhere in its chain.
func KindOf(err error) (Kind, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return 0, false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, k Kind) bool {
	got, ok := KindOf(err)
	return ok && got == k
}

// Package apperr defines the typed domain errors the engine surfaces to its
// callers. All of them reflect a caller input problem, never a transient
// fault, so they are returned synchronously and never retried internally.
// Store failures propagate wrapped but untranslated.
package apperr

import (
	"fmt"
	"strings"
)

// ValidationError reports malformed input: a bad schedule code format or a
// missing required field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports an operation against a resource that does not exist,
// e.g. a claim on a code no student has reported yet.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// PermissionError reports an operation the acting user is not allowed to
// perform, e.g. unclaiming a code held by another professor.
type PermissionError struct {
	Action string
	Reason string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("%s not permitted: %s", e.Action, e.Reason)
}

// ConflictError reports a claim on a code whose active claim is held by a
// different professor. The holder is surfaced so the caller can present an
// actionable message.
type ConflictError struct {
	Resource string
	Key      string
	HeldBy   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q already claimed by %s", e.Resource, e.Key, e.HeldBy)
}

// NoMatchingRoomsError reports a vacancy toggle whose combined room name
// resolved to zero registered rooms.
type NoMatchingRoomsError struct {
	Requested []string
}

func (e *NoMatchingRoomsError) Error() string {
	return fmt.Sprintf("no registered rooms match %s", strings.Join(e.Requested, ", "))
}

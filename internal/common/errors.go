// Package common defines shared constants and sentinel errors used across
// client and server layers of StudyKeeper. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrRemoteIDConflict is returned when a record that already carries a
	// remote identifier is asked to adopt a different one. This is a
	// programming error in the reconciler, never resolved silently.
	ErrRemoteIDConflict = errors.New("remote id conflict")

	// Validation errors surfaced as terminal sync failures.
	ErrorValidation = errors.New("validation error")
)

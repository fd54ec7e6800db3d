// Package common defines shared constants and sentinel errors used across
// the application layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Storage-level errors.
	ErrNotFound     = errors.New("not found")
	ErrStorageQuota = errors.New("storage quota exceeded")

	// Replication errors. Always recovered locally (fall back to the local
	// replica or abandon the write), never surfaced to action callers.
	ErrRemoteUnavailable = errors.New("remote store unavailable")
	ErrNoTenant          = errors.New("no tenant resolved")

	// Validation errors (rejected input, illegal state transition). Surfaced
	// synchronously; an action returning one must not have mutated any store.
	ErrValidation      = errors.New("validation error")
	ErrMileageWarning  = errors.New("return mileage below exit mileage")
	ErrVehicleNotIn    = errors.New("vehicle is not inside")
	ErrMovementNotOpen = errors.New("no active movement")

	// Auth errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
)

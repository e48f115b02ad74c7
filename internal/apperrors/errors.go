// Package apperrors defines the error categories shared by the ledger core,
// storage and service layers. Errors are wrapped with context using %w and
// matched with errors.Is.
package apperrors

import "errors"

// ErrValidation indicates malformed or inconsistent input (split sums,
// unknown participants, non-positive amounts).
var ErrValidation = errors.New("validation error")

// ErrAuthorization indicates the actor lacks permission for the mutation.
var ErrAuthorization = errors.New("not authorized")

// ErrConflict indicates the request collides with existing state, such as a
// duplicate pending settlement.
var ErrConflict = errors.New("conflict")

// ErrInvalidState indicates a transition from a state that does not allow it.
var ErrInvalidState = errors.New("invalid state")

// ErrNotFound indicates that a referenced group, bill, settlement or
// participant does not exist.
var ErrNotFound = errors.New("resource not found")

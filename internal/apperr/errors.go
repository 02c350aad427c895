package apperr

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Closed error taxonomy for the chat core. Provider-specific errors are
// translated into one of these at the store/model boundary and never
// propagate past it.

// ValidationError reports a missing or blank required field, detected before
// any network call.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s is required", e.Field)
}

// InvalidSessionError means the referenced chat session no longer exists.
// The conversation flow reacts by creating a replacement session.
type InvalidSessionError struct {
	SessionId uuid.UUID
}

func (e *InvalidSessionError) Error() string {
	return fmt.Sprintf("invalid session id: %s", e.SessionId)
}

// StoreError is any other persistence failure. It is surfaced as a soft
// notice and does not abort the conversation flow.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error during %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// ModelConfigError is a credential or configuration problem on the model
// endpoint.
type ModelConfigError struct {
	Err error
}

func (e *ModelConfigError) Error() string {
	return fmt.Sprintf("model configuration error: %v", e.Err)
}

func (e *ModelConfigError) Unwrap() error { return e.Err }

// ModelError is any other model-call failure.
type ModelError struct {
	Err error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model error: %v", e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

// UnexpectedError is the catch-all wrapper applied at the outermost
// pipeline boundary.
type UnexpectedError struct {
	Err error
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("unexpected error: %v", e.Err)
}

func (e *UnexpectedError) Unwrap() error { return e.Err }

// ErrSendInFlight rejects a second send (or a session mutation) while a send
// is already being processed for the same session.
var ErrSendInFlight = errors.New("a message is already being processed for this session")

// Kind helpers so callers don't need errors.As boilerplate everywhere.

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func IsInvalidSession(err error) bool {
	var e *InvalidSessionError
	return errors.As(err, &e)
}

func IsStore(err error) bool {
	var e *StoreError
	return errors.As(err, &e)
}

func IsModelConfig(err error) bool {
	var e *ModelConfigError
	return errors.As(err, &e)
}

package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails business rule validation
// (e.g. missing required field, end date before start date).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrInvalidTransition is returned when a workflow operation is not legal
// from the current state, e.g. submit() outside the payment step.
var ErrInvalidTransition = errors.New("invalid transition")

// ErrSubmissionInFlight is returned for any mutation attempted while a
// submission for the same draft is pending.
var ErrSubmissionInFlight = errors.New("submission in flight")

// ErrSessionClosed is returned for operations on an abandoned session.
var ErrSessionClosed = errors.New("session closed")

// ErrMissingContext is returned when a workflow is started without a
// destination or package reference. Callers redirect to the catalog.
var ErrMissingContext = errors.New("missing destination or package")

// ErrSubmission wraps a rejection from the booking submission collaborator.
// It is retryable: the draft is preserved at the payment step.
var ErrSubmission = errors.New("submission failed")

// ErrPriceLabel is returned when a package price label has no parseable amount.
var ErrPriceLabel = errors.New("unparseable price label")

// ErrAbandoned is delivered to a pending submit when its session was abandoned.
var ErrAbandoned = errors.New("session abandoned")

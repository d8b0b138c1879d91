package domain

import "errors"

// ErrNotFound is returned when an operation references an event ID that is
// not in the collection, or when a persistence slot holds no payload.
// Handlers map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when form input is missing a required field or
// carries a malformed value (non-numeric coordinate, unparsable date).
// Handlers map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrPersistence is returned when the durable slot could not be written.
// The in-memory collection is left untouched when this is returned.
// Handlers map this to HTTP 503.
var ErrPersistence = errors.New("persistence error")

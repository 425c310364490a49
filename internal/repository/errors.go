// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers and the booking engine to distinguish between different
// failure scenarios without string matching.
package repository

import "errors"

// ErrNotFound is returned when an update, delete or lookup targets a
// row that does not exist. Handlers should translate this into an
// HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEvent is returned when creating or updating an event
// would produce a second listing with the same title, venue and day.
// Handlers should translate this into an HTTP 409 response.
var ErrDuplicateEvent = errors.New("duplicate event")

// ErrInsufficientSeats is returned by the guarded seat decrement when
// the requested quantity exceeds the seats remaining at execution
// time. It is the storage-level backstop behind the engine's
// pre-commit validation: inside the commit transaction it is what
// stops two concurrent checkouts from both taking the last seats.
var ErrInsufficientSeats = errors.New("insufficient seats")

// ErrCapacityBelowSold is returned when an event update asks for a
// total_seats smaller than the tickets already sold, read under the
// update's own row lock. Handlers should translate this into an HTTP
// 400 response.
var ErrCapacityBelowSold = errors.New("total seats below tickets sold")

// ErrUsernameExists is returned when registering a username that is
// already taken.
var ErrUsernameExists = errors.New("username already exists")

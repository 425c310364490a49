// Package booking implements the cart and the order-booking engine: the
// logic that turns a pending selection of events and quantities into a
// committed order without overselling seats.  Validation failures carry
// enough structure for handlers to render every problem at once; commit
// failures wrap their cause and guarantee nothing was persisted.
package booking

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Deeekaaay/EventManagement/internal/model"
)

var (
	// ErrEmptyCart is returned when checkout is attempted with no entries.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrInvalidQuantity rejects non-positive quantities on Add and
	// negative quantities on Update.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrInvalidConfirmationCode is returned when the supplied payment
	// confirmation code is not exactly six decimal digits.  The code is
	// only format-checked; no external verification happens.
	ErrInvalidConfirmationCode = errors.New("confirmation code must be exactly 6 digits")
)

// ViolationKind classifies one validation failure for a cart entry.
type ViolationKind string

const (
	// ViolationOversell means the requested quantity exceeds the seats
	// currently remaining for the event.
	ViolationOversell ViolationKind = "oversell"
	// ViolationPastEvent means the event's day is earlier than today in
	// the Mon=0..Sun=6 week ordering.
	ViolationPastEvent ViolationKind = "past_event"
	// ViolationUnavailable means the event no longer exists or has been
	// disabled since it was added to the cart.
	ViolationUnavailable ViolationKind = "unavailable"
)

// Violation describes why one cart entry failed validation.
type Violation struct {
	EventID   uint64        `json:"event_id"`
	Title     string        `json:"title"`
	Day       model.Weekday `json:"day"`
	Kind      ViolationKind `json:"kind"`
	Requested int           `json:"requested"`
	Remaining int           `json:"remaining,omitempty"`
}

func (v Violation) String() string {
	switch v.Kind {
	case ViolationOversell:
		return fmt.Sprintf("%s (%s) - only %d left", v.Title, v.Day, v.Remaining)
	case ViolationPastEvent:
		return fmt.Sprintf("%s (%s) - cannot book past events", v.Title, v.Day)
	default:
		return fmt.Sprintf("%s (%s) - no longer available", v.Title, v.Day)
	}
}

// ValidationError aggregates every violation found while re-checking the
// cart against live catalog data.  Violations appear in cart insertion
// order.  The cart is left unchanged so the user can correct it.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.String()
	}
	return "checkout failed: " + strings.Join(msgs, "; ")
}

// CommitError wraps a failure inside the commit transaction.  The whole
// transaction has been rolled back: no order row, no items, no seat
// change survived.  The caller should treat the checkout as not having
// happened and may retry with fresh data.
type CommitError struct {
	Cause error
}

func (e *CommitError) Error() string { return "order commit failed: " + e.Cause.Error() }
func (e *CommitError) Unwrap() error { return e.Cause }

package model

import (
	"fmt"
	"time"
)

// Weekday is the three-letter day label attached to every event listing
// ("Mon" through "Sun").  Listings carry a day of the week only, with no
// calendar date: the booking week wraps, so a "Mon" listing is next Monday
// when today is Wednesday and today when today is Monday.  This is the
// inherited behaviour of the system and is relied on by the checkout
// validation, which rejects days earlier than the current one.
type Weekday string

const (
	Mon Weekday = "Mon"
	Tue Weekday = "Tue"
	Wed Weekday = "Wed"
	Thu Weekday = "Thu"
	Fri Weekday = "Fri"
	Sat Weekday = "Sat"
	Sun Weekday = "Sun"
)

// Weekdays lists all valid labels in week order, Monday first.
var Weekdays = []Weekday{Mon, Tue, Wed, Thu, Fri, Sat, Sun}

var dayIndex = map[Weekday]int{
	Mon: 0, Tue: 1, Wed: 2, Thu: 3, Fri: 4, Sat: 5, Sun: 6,
}

// Index returns the position of the day in the Mon=0..Sun=6 ordering.
// The second return value is false for unknown labels.
func (w Weekday) Index() (int, bool) {
	i, ok := dayIndex[w]
	return i, ok
}

// Valid reports whether w is one of the seven known labels.
func (w Weekday) Valid() bool {
	_, ok := dayIndex[w]
	return ok
}

// ParseWeekday validates a day label coming from user input.
func ParseWeekday(s string) (Weekday, error) {
	w := Weekday(s)
	if !w.Valid() {
		return "", fmt.Errorf("invalid day %q: must be one of Mon..Sun", s)
	}
	return w, nil
}

// WeekdayOf maps a point in time to its label.  time.Weekday counts from
// Sunday, so the mapping shifts by one to keep Monday first.
func WeekdayOf(t time.Time) Weekday {
	return Weekdays[(int(t.Weekday())+6)%7]
}

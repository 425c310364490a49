package model

import "github.com/shopspring/decimal"

// Event represents a bookable listing as stored in the `events` table.
// Capacity is persisted as available_seats; Sold is derived from it when
// the row is scanned so that the 0 <= sold <= total invariant is visible
// in one place.
//
// Fields:
//  ID         – primary key identifier (events.event_id).
//  Title      – event title.
//  Venue      – where the event takes place (events.location).
//  Day        – weekday label of the listing (events.day).
//  Price      – ticket price, non-negative (events.price).
//  TotalSeats – fixed capacity (events.total_seats).
//  Sold       – tickets sold so far, total_seats - available_seats.
//  Enabled    – whether the listing is visible and bookable.
type Event struct {
	ID         uint64          `json:"id"`
	Title      string          `json:"title"`
	Venue      string          `json:"venue"`
	Day        Weekday         `json:"day"`
	Price      decimal.Decimal `json:"price"`
	TotalSeats int             `json:"total_seats"`
	Sold       int             `json:"sold"`
	Enabled    bool            `json:"enabled"`
}

// Remaining returns the bookable capacity at the time the row was read.
// It is always derived, never stored on its own.
func (e Event) Remaining() int { return e.TotalSeats - e.Sold }

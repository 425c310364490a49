package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Deeekaaay/EventManagement/internal/model"
)

// EventRepo provides CRUD operations for event listings and the
// transactional seat decrement used by order commits.  Capacity is
// persisted as available_seats; the Sold field on model.Event is derived
// when rows are scanned.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns a new EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions that
// span this repository and the order ledger.
func (r *EventRepo) DB() *sql.DB { return r.db }

const eventColumns = `event_id, title, day, location, price, total_seats, available_seats, enabled`

func scanEvent(row interface{ Scan(...any) error }) (model.Event, error) {
	var (
		ev        model.Event
		price     string
		available int
	)
	if err := row.Scan(&ev.ID, &ev.Title, &ev.Day, &ev.Venue, &price, &ev.TotalSeats, &available, &ev.Enabled); err != nil {
		return model.Event{}, err
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return model.Event{}, fmt.Errorf("parse price %q: %w", price, err)
	}
	ev.Price = p
	ev.Sold = ev.TotalSeats - available
	return ev, nil
}

// List returns all event listings ordered by id.  When includeDisabled is
// false only enabled listings are returned (the customer-facing view).
func (r *EventRepo) List(ctx context.Context, includeDisabled bool) ([]model.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events`
	if !includeDisabled {
		q += ` WHERE enabled = 1`
	}
	q += ` ORDER BY event_id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]model.Event, 0)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// GetEvent returns the current row for one event, or nil when no such
// listing exists.  This is the authoritative read the booking engine uses
// for checkout validation.
func (r *EventRepo) GetEvent(ctx context.Context, id uint64) (*model.Event, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE event_id = ?`, id)
	ev, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &ev, nil
}

// Exists reports whether another listing with the same title, venue and
// day already exists.  excludeID skips the listing being edited so an
// update does not collide with itself; pass 0 when creating.
func (r *EventRepo) Exists(ctx context.Context, title, venue string, day model.Weekday, excludeID uint64) (bool, error) {
	const q = `SELECT COUNT(*) FROM events WHERE title = ? AND location = ? AND day = ? AND event_id != ?`
	var n int
	if err := r.db.QueryRowContext(ctx, q, title, venue, day, excludeID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create inserts a new listing and populates its generated id.  It
// returns ErrDuplicateEvent when a listing with the same title, venue and
// day already exists (also enforced by a unique key, so concurrent
// creates cannot slip through).
func (r *EventRepo) Create(ctx context.Context, ev *model.Event) error {
	dup, err := r.Exists(ctx, ev.Title, ev.Venue, ev.Day, 0)
	if err != nil {
		return err
	}
	if dup {
		return ErrDuplicateEvent
	}
	const q = `INSERT INTO events (title, day, location, price, total_seats, available_seats, enabled)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		ev.Title, ev.Day, ev.Venue, ev.Price.StringFixed(2), ev.TotalSeats, ev.Remaining(), ev.Enabled)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateEvent
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	ev.ID = uint64(id)
	return nil
}

// Update rewrites the mutable fields of a listing.  Like Create it
// rejects duplicate (title, venue, day) triples; it returns ErrNotFound
// when the listing does not exist.  The Sold field on ev is ignored: the
// current sold count is read under a row lock in the same transaction as
// the write, so a checkout committing concurrently cannot have its seat
// decrement overwritten, and ErrCapacityBelowSold is raised when the new
// total_seats is smaller than the tickets actually sold.
func (r *EventRepo) Update(ctx context.Context, ev model.Event) error {
	dup, err := r.Exists(ctx, ev.Title, ev.Venue, ev.Day, ev.ID)
	if err != nil {
		return err
	}
	if dup {
		return ErrDuplicateEvent
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var total, available int
	err = tx.QueryRowContext(ctx,
		`SELECT total_seats, available_seats FROM events WHERE event_id = ? FOR UPDATE`,
		ev.ID).Scan(&total, &available)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	sold := total - available
	if ev.TotalSeats < sold {
		return fmt.Errorf("event %d: %d sold: %w", ev.ID, sold, ErrCapacityBelowSold)
	}

	const q = `UPDATE events SET title = ?, day = ?, location = ?, price = ?, total_seats = ?, available_seats = ?, enabled = ?
	           WHERE event_id = ?`
	if _, err := tx.ExecContext(ctx, q,
		ev.Title, ev.Day, ev.Venue, ev.Price.StringFixed(2), ev.TotalSeats, ev.TotalSeats-sold, ev.Enabled, ev.ID); err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateEvent
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Delete removes a listing.  Committed orders keep their own line item
// snapshots, so history survives the deletion.
func (r *EventRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE event_id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetEnabled toggles a listing's visibility without touching its seats.
func (r *EventRepo) SetEnabled(ctx context.Context, id uint64, enabled bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE events SET enabled = ? WHERE event_id = ?`, enabled, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		existing, err := r.GetEvent(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrNotFound
		}
	}
	return nil
}

// DecrementAvailableTx takes qty seats from the event inside an existing
// transaction.  The WHERE guard makes the decrement fail, rather than go
// negative, when fewer than qty seats remain at execution time: the row
// lock taken by the UPDATE means the second of two racing checkouts
// observes the first one's decrement and gets ErrInsufficientSeats here.
func (r *EventRepo) DecrementAvailableTx(ctx context.Context, tx *sql.Tx, eventID uint64, qty int) error {
	const q = `UPDATE events SET available_seats = available_seats - ?
	           WHERE event_id = ? AND available_seats >= ?`
	res, err := tx.ExecContext(ctx, q, qty, eventID, qty)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("event %d: %w", eventID, ErrInsufficientSeats)
	}
	return nil
}

// isDuplicateKey detects MySQL error 1062 (duplicate entry for a unique
// key) without depending on driver error types.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}

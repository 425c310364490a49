package booking

import (
	"context"
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/Deeekaaay/EventManagement/internal/clock"
	"github.com/Deeekaaay/EventManagement/internal/model"
)

// Catalog is the slice of the event catalog the engine needs: an
// authoritative, current read of one event.  A nil event with a nil error
// means the listing no longer exists.
type Catalog interface {
	GetEvent(ctx context.Context, id uint64) (*model.Event, error)
}

// Ledger persists a committed order.  Commit must run as a single
// transaction: order header, line items and the seat decrement for every
// item all succeed together or leave no trace.  It assigns the order id
// and number and returns the stored order.
type Ledger interface {
	Commit(ctx context.Context, order model.Order) (model.Order, error)
}

var confirmationCodeRe = regexp.MustCompile(`^\d{6}$`)

// Engine validates carts against live inventory and commits orders.
// It holds no mutable state of its own; all shared state lives behind
// the Catalog and Ledger, so one engine serves every session.
type Engine struct {
	catalog Catalog
	ledger  Ledger
	clock   clock.Clock
}

// NewEngine constructs an engine over the given collaborators.
func NewEngine(catalog Catalog, ledger Ledger, clk clock.Clock) *Engine {
	return &Engine{catalog: catalog, ledger: ledger, clock: clk}
}

// Checkout runs the full protocol for one cart: empty check, live
// re-validation, price computation, confirmation-code check and the
// atomic commit.  On success the cart is cleared and the committed order
// is returned.  On failure the cart and the catalog are untouched and
// the error is one of ErrEmptyCart, *ValidationError,
// ErrInvalidConfirmationCode or *CommitError.
func (e *Engine) Checkout(ctx context.Context, userID uint64, customerName string, cart *Cart, confirmationCode string) (model.Order, error) {
	if cart.Len() == 0 {
		return model.Order{}, ErrEmptyCart
	}

	items, total, err := e.validate(ctx, cart)
	if err != nil {
		return model.Order{}, err
	}

	if !confirmationCodeRe.MatchString(confirmationCode) {
		return model.Order{}, ErrInvalidConfirmationCode
	}

	order := model.Order{
		UserID:       userID,
		CustomerName: customerName,
		PlacedAt:     e.clock.Now(),
		Items:        items,
		TotalPrice:   total,
	}
	committed, err := e.ledger.Commit(ctx, order)
	if err != nil {
		return model.Order{}, &CommitError{Cause: err}
	}

	cart.Clear()
	return committed, nil
}

// validate re-fetches every cart entry from the catalog and checks it
// against current remaining seats and the current day of week.  Entries
// are walked in cart insertion order and all violations are collected
// before reporting, so the user sees every problem at once.  On success
// it returns the line item snapshots (live prices, not the cart's stale
// copies) and the order total.
func (e *Engine) validate(ctx context.Context, cart *Cart) ([]model.OrderItem, decimal.Decimal, error) {
	todayIdx, _ := model.WeekdayOf(e.clock.Now()).Index()

	var violations []Violation
	items := make([]model.OrderItem, 0, cart.Len())
	total := decimal.Zero

	for _, entry := range cart.Items() {
		fresh, err := e.catalog.GetEvent(ctx, entry.Event.ID)
		if err != nil {
			return nil, decimal.Zero, fmt.Errorf("fetch event %d: %w", entry.Event.ID, err)
		}
		if fresh == nil || !fresh.Enabled {
			violations = append(violations, Violation{
				EventID:   entry.Event.ID,
				Title:     entry.Event.Title,
				Day:       entry.Event.Day,
				Kind:      ViolationUnavailable,
				Requested: entry.Quantity,
			})
			continue
		}
		// The week wraps with no calendar date attached: "past" means
		// earlier than today's position in Mon..Sun only.
		if dayIdx, ok := fresh.Day.Index(); ok && dayIdx < todayIdx {
			violations = append(violations, Violation{
				EventID:   fresh.ID,
				Title:     fresh.Title,
				Day:       fresh.Day,
				Kind:      ViolationPastEvent,
				Requested: entry.Quantity,
			})
		}
		if entry.Quantity > fresh.Remaining() {
			violations = append(violations, Violation{
				EventID:   fresh.ID,
				Title:     fresh.Title,
				Day:       fresh.Day,
				Kind:      ViolationOversell,
				Requested: entry.Quantity,
				Remaining: fresh.Remaining(),
			})
		}

		items = append(items, model.OrderItem{
			EventID:        fresh.ID,
			Title:          fresh.Title,
			Venue:          fresh.Venue,
			Day:            fresh.Day,
			Quantity:       entry.Quantity,
			PricePerTicket: fresh.Price,
		})
		total = total.Add(fresh.Price.Mul(decimal.NewFromInt(int64(entry.Quantity))))
	}

	if len(violations) > 0 {
		return nil, decimal.Zero, &ValidationError{Violations: violations}
	}
	return items, total, nil
}

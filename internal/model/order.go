package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Order is a committed booking.  Orders are immutable once written: the
// total and every line item are captured at commit time and never
// recomputed from the catalog, so later price changes or event deletions
// do not rewrite history.
//
// Fields:
//  ID           – primary key identifier (orders.order_id).
//  Number       – human-facing sequential order number, the id zero-padded
//                 to four digits.  Unique and monotonically increasing;
//                 gaps from rolled-back attempts are acceptable, reuse is not.
//  UserID       – account the order is attributed to.
//  CustomerName – display name captured for the order (preferred name, or
//                 username on the admin listing).
//  PlacedAt     – commit timestamp (orders.order_date, UTC).
//  Items        – line items in the order.
//  TotalPrice   – sum of item price x quantity at commit time.
type Order struct {
	ID           uint64          `json:"id"`
	Number       string          `json:"number"`
	UserID       uint64          `json:"user_id"`
	CustomerName string          `json:"customer_name"`
	PlacedAt     time.Time       `json:"placed_at"`
	Items        []OrderItem     `json:"items"`
	TotalPrice   decimal.Decimal `json:"total_price"`
}

// OrderItem is a line item snapshot.  It references the event by id but
// owns its own copy of the title, venue, day and per-ticket price so the
// order survives catalog edits and deletions intact.
type OrderItem struct {
	EventID        uint64          `json:"event_id"`
	Title          string          `json:"title"`
	Venue          string          `json:"venue"`
	Day            Weekday         `json:"day"`
	Quantity       int             `json:"quantity"`
	PricePerTicket decimal.Decimal `json:"price_per_ticket"`
}

// FormatOrderNumber renders a ledger id as the displayed order number.
func FormatOrderNumber(id uint64) string { return fmt.Sprintf("%04d", id) }

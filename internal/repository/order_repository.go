package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Deeekaaay/EventManagement/internal/model"
)

// OrderRepo is the order ledger: durable storage of committed orders and
// their line items.  Commit is the single mutating entry point and runs
// everything inside one transaction; the read methods return orders
// newest first.
type OrderRepo struct {
	db     *sql.DB
	events *EventRepo
}

// NewOrderRepo returns a new OrderRepo.  The event repository supplies
// the guarded seat decrement used inside the commit transaction.
func NewOrderRepo(db *sql.DB, events *EventRepo) *OrderRepo {
	return &OrderRepo{db: db, events: events}
}

// Commit atomically persists an order: the header row, one line item per
// cart entry (snapshotting title, venue, day and price) and the seat
// decrement for every item, all in a single transaction.  On any failure
// the transaction is rolled back and nothing survives.  The generated
// order_id becomes the displayed order number; ids from rolled-back
// attempts leave gaps in the sequence and are never reused.
func (r *OrderRepo) Commit(ctx context.Context, order model.Order) (model.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Order{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO orders (user_id, order_date, total_price) VALUES (?, ?, ?)`,
		order.UserID, order.PlacedAt.UTC(), order.TotalPrice.StringFixed(2))
	if err != nil {
		return model.Order{}, fmt.Errorf("insert order: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Order{}, err
	}
	order.ID = uint64(id)
	order.Number = model.FormatOrderNumber(order.ID)

	if len(order.Items) > 0 {
		q := `INSERT INTO order_items (order_id, event_id, quantity, price_per_ticket, event_title, event_venue, event_day) VALUES `
		args := make([]any, 0, len(order.Items)*7)
		for i, it := range order.Items {
			if i > 0 {
				q += ","
			}
			q += "(?, ?, ?, ?, ?, ?, ?)"
			args = append(args, order.ID, it.EventID, it.Quantity, it.PricePerTicket.StringFixed(2), it.Title, it.Venue, it.Day)
		}
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return model.Order{}, fmt.Errorf("insert order items: %w", err)
		}
	}

	// Same transaction as the inserts above: an order row without its
	// seat decrement (or the reverse) must never be observable.
	for _, it := range order.Items {
		if err := r.events.DecrementAvailableTx(ctx, tx, it.EventID, it.Quantity); err != nil {
			return model.Order{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return model.Order{}, err
	}
	committed = true
	return order, nil
}

// ListAll returns every committed order, newest first, with the ordering
// account's username as the customer name.  Used by the admin view.
func (r *OrderRepo) ListAll(ctx context.Context) ([]model.Order, error) {
	const q = `SELECT o.order_id, o.user_id, o.order_date, o.total_price, u.username
	           FROM orders o
	           JOIN users u ON u.user_id = o.user_id
	           ORDER BY o.order_id DESC`
	return r.listOrders(ctx, q)
}

// ListByUser returns the orders of one account, newest first, with the
// account's preferred name as the customer name.
func (r *OrderRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Order, error) {
	const q = `SELECT o.order_id, o.user_id, o.order_date, o.total_price, u.preferred_name
	           FROM orders o
	           JOIN users u ON u.user_id = o.user_id
	           WHERE o.user_id = ?
	           ORDER BY o.order_id DESC`
	return r.listOrders(ctx, q, userID)
}

func (r *OrderRepo) listOrders(ctx context.Context, q string, args ...any) ([]model.Order, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]model.Order, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var (
			o     model.Order
			total string
		)
		if err := rows.Scan(&o.ID, &o.UserID, &o.PlacedAt, &total, &o.CustomerName); err != nil {
			return nil, err
		}
		o.TotalPrice, err = decimal.NewFromString(total)
		if err != nil {
			return nil, fmt.Errorf("parse order %d total %q: %w", o.ID, total, err)
		}
		o.Number = model.FormatOrderNumber(o.ID)
		o.Items = []model.OrderItem{}
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	// Fetch line items for all orders in one query.
	ids := make([]any, 0, len(orders))
	placeholders := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
		placeholders = append(placeholders, "?")
	}
	itemQ := `SELECT order_id, event_id, quantity, price_per_ticket, event_title, event_venue, event_day
	          FROM order_items
	          WHERE order_id IN (` + strings.Join(placeholders, ",") + `)
	          ORDER BY order_id, id`
	irows, err := r.db.QueryContext(ctx, itemQ, ids...)
	if err != nil {
		return nil, err
	}
	defer irows.Close()
	for irows.Next() {
		var (
			orderID uint64
			it      model.OrderItem
			price   string
		)
		if err := irows.Scan(&orderID, &it.EventID, &it.Quantity, &price, &it.Title, &it.Venue, &it.Day); err != nil {
			return nil, err
		}
		it.PricePerTicket, err = decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("parse item price %q: %w", price, err)
		}
		if i, ok := index[orderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	if err := irows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

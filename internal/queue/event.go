// Package queue defines message payloads exchanged over the message broker.
package queue

// OrderCommittedEvent is published after an order's transaction commits.
// It carries the full snapshot so downstream consumers can log, notify or
// feed analytics without querying the primary database.
type OrderCommittedEvent struct {
	OrderNumber  string               `json:"order_number"`
	UserID       uint64               `json:"user_id"`
	CustomerName string               `json:"customer_name"`
	TotalPrice   string               `json:"total_price"`
	Items        []OrderCommittedItem `json:"items"`
	PlacedAt     string               `json:"placed_at"`
}

// OrderCommittedItem is one line of a committed order.
type OrderCommittedItem struct {
	EventID        uint64 `json:"event_id"`
	Title          string `json:"title"`
	Venue          string `json:"venue"`
	Day            string `json:"day"`
	Quantity       int    `json:"quantity"`
	PricePerTicket string `json:"price_per_ticket"`
}

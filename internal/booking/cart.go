package booking

import (
	"sync"

	"github.com/Deeekaaay/EventManagement/internal/model"
)

// CartItem pairs an event snapshot with a requested quantity.  The event
// data is whatever the catalog returned when the item was added; it may go
// stale, which is why checkout re-validates everything against live rows.
type CartItem struct {
	Event    model.Event `json:"event"`
	Quantity int         `json:"quantity"`
}

// Cart is the session-local pending selection of events and quantities.
// It keeps insertion order so repeated validation passes over an unchanged
// cart always report violations in the same sequence.  A Cart belongs to
// one user, but that user's HTTP requests can run in parallel, so every
// operation takes the cart's own mutex.
type Cart struct {
	mu      sync.Mutex
	entries []CartItem
	index   map[uint64]int // event id -> position in entries
}

// NewCart returns an empty cart.
func NewCart() *Cart {
	return &Cart{index: make(map[uint64]int)}
}

// Add increments the stored quantity for the event, inserting a new entry
// at the end when the event is not yet in the cart.  Quantities must be
// positive.  No availability check happens here: cart contents may go
// stale, so seats are only checked against live data at checkout.
func (c *Cart) Add(event model.Event, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if i, ok := c.index[event.ID]; ok {
		c.entries[i].Quantity += qty
		c.entries[i].Event = event // keep the freshest snapshot
		return nil
	}
	c.index[event.ID] = len(c.entries)
	c.entries = append(c.entries, CartItem{Event: event, Quantity: qty})
	return nil
}

// Update replaces the stored quantity for the event.  A zero quantity
// removes the entry; negative quantities are rejected.  Updating an event
// that is not in the cart with a positive quantity inserts it.
func (c *Cart) Update(event model.Event, qty int) error {
	if qty < 0 {
		return ErrInvalidQuantity
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if qty == 0 {
		c.removeLocked(event.ID)
		return nil
	}
	if i, ok := c.index[event.ID]; ok {
		c.entries[i].Quantity = qty
		return nil
	}
	c.index[event.ID] = len(c.entries)
	c.entries = append(c.entries, CartItem{Event: event, Quantity: qty})
	return nil
}

// Remove drops the entry for the event id.  Removing an absent event is a
// no-op.
func (c *Cart) Remove(eventID uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(eventID)
}

func (c *Cart) removeLocked(eventID uint64) {
	i, ok := c.index[eventID]
	if !ok {
		return
	}
	c.entries = append(c.entries[:i], c.entries[i+1:]...)
	delete(c.index, eventID)
	for j := i; j < len(c.entries); j++ {
		c.index[c.entries[j].Event.ID] = j
	}
}

// Quantity returns the stored quantity for the event id, zero if absent.
func (c *Cart) Quantity(eventID uint64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i, ok := c.index[eventID]; ok {
		return c.entries[i].Quantity
	}
	return 0
}

// Items returns a snapshot of the cart contents in insertion order.
func (c *Cart) Items() []CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]CartItem, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len reports the number of distinct events in the cart.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear empties the cart.  Called after a successful checkout.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
	c.index = make(map[uint64]int)
}

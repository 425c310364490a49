package booking

import "sync"

// CartStore holds the active cart of every signed-in user, keyed by user
// id.  The store's mutex protects the map; the carts themselves carry
// their own locks, since one user's requests can hit the server in
// parallel.  Carts live in memory only and disappear on logout or
// process restart.
type CartStore struct {
	mu    sync.Mutex
	carts map[uint64]*Cart
}

// NewCartStore returns an empty store.
func NewCartStore() *CartStore {
	return &CartStore{carts: make(map[uint64]*Cart)}
}

// Get returns the cart for the user, creating an empty one on first use.
func (s *CartStore) Get(userID uint64) *Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[userID]
	if !ok {
		c = NewCart()
		s.carts[userID] = c
	}
	return c
}

// Drop discards the user's cart, if any.  Called on logout.
func (s *CartStore) Drop(userID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
}

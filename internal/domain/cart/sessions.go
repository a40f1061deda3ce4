package cart

import (
	"sync"

	"github.com/google/uuid"
)

// Sessions holds one cart per buyer. A cart lives from Open (login or first
// use) until Close (logout).
type Sessions struct {
	mu    sync.Mutex
	carts map[uuid.UUID]*Cart
}

func NewSessions() *Sessions {
	return &Sessions{carts: make(map[uuid.UUID]*Cart)}
}

// Open returns the buyer's cart, creating it when needed.
func (s *Sessions) Open(buyerID uuid.UUID) *Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[buyerID]
	if !ok {
		c = New()
		s.carts[buyerID] = c
	}
	return c
}

func (s *Sessions) Get(buyerID uuid.UUID) (*Cart, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[buyerID]
	return c, ok
}

func (s *Sessions) Close(buyerID uuid.UUID) {
	s.mu.Lock()
	delete(s.carts, buyerID)
	s.mu.Unlock()
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.carts)
}

// Package cart holds each user's pending ticket selections between
// visits.  Items live in memory for speed and are written through to a
// Persister so a restart or a second instance sees the same cart.
package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/cineteca/cineteca-api/internal/model"
)

var ErrBadIndex = errors.New("cart index out of range")

// Persister is the durable side of a cart.  Save replaces the whole
// item list for a user; Load returns it; Drop removes it.
type Persister interface {
	Save(ctx context.Context, userID uint64, items []model.CartItem) error
	Load(ctx context.Context, userID uint64) ([]model.CartItem, error)
	Drop(ctx context.Context, userID uint64) error
}

// Store is the in-memory cart front.  Items keep insertion order; the
// total is a pure function of the items and does not depend on order.
type Store struct {
	persist Persister

	mu    sync.RWMutex
	carts map[uint64][]model.CartItem
}

func NewStore(p Persister) *Store {
	return &Store{persist: p, carts: make(map[uint64][]model.CartItem)}
}

// Hydrate loads a user's persisted cart into memory, replacing whatever
// is cached.  Called on login and on first access after a restart.
func (s *Store) Hydrate(ctx context.Context, userID uint64) error {
	items, err := s.persist.Load(ctx, userID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.carts[userID] = items
	s.mu.Unlock()
	return nil
}

// Add appends an item and writes the cart through.
func (s *Store) Add(ctx context.Context, userID uint64, item model.CartItem) error {
	s.mu.Lock()
	s.carts[userID] = append(s.carts[userID], item)
	snapshot := cloneItems(s.carts[userID])
	s.mu.Unlock()
	return s.persist.Save(ctx, userID, snapshot)
}

// Remove deletes the item at the given position and writes through.
func (s *Store) Remove(ctx context.Context, userID uint64, index int) error {
	s.mu.Lock()
	items := s.carts[userID]
	if index < 0 || index >= len(items) {
		s.mu.Unlock()
		return ErrBadIndex
	}
	items = append(items[:index], items[index+1:]...)
	s.carts[userID] = items
	snapshot := cloneItems(items)
	s.mu.Unlock()
	return s.persist.Save(ctx, userID, snapshot)
}

// Clear empties the cart in memory and in the persister together.
func (s *Store) Clear(ctx context.Context, userID uint64) error {
	s.mu.Lock()
	delete(s.carts, userID)
	s.mu.Unlock()
	return s.persist.Drop(ctx, userID)
}

// Items returns a copy of the user's cart in insertion order.
func (s *Store) Items(userID uint64) []model.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneItems(s.carts[userID])
}

// TotalCents sums every item's subtotal.  Pure over the item list:
// reordering items never changes the result.
func (s *Store) TotalCents(userID uint64) uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total uint32
	for _, it := range s.carts[userID] {
		total += it.SubtotalCents()
	}
	return total
}

func cloneItems(items []model.CartItem) []model.CartItem {
	if items == nil {
		return nil
	}
	out := make([]model.CartItem, len(items))
	copy(out, items)
	return out
}

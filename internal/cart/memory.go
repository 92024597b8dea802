package cart

import (
	"context"
	"sync"

	"github.com/cineteca/cineteca-api/internal/model"
)

// MemoryPersister keeps carts in a map.  Used in tests and when Redis
// is unavailable at startup.
type MemoryPersister struct {
	mu    sync.Mutex
	saved map[uint64][]model.CartItem
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{saved: make(map[uint64][]model.CartItem)}
}

func (p *MemoryPersister) Save(_ context.Context, userID uint64, items []model.CartItem) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	cp := make([]model.CartItem, len(items))
	copy(cp, items)
	p.saved[userID] = cp
	return nil
}

func (p *MemoryPersister) Load(_ context.Context, userID uint64) ([]model.CartItem, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	items, ok := p.saved[userID]
	if !ok {
		return nil, nil
	}
	cp := make([]model.CartItem, len(items))
	copy(cp, items)
	return cp, nil
}

func (p *MemoryPersister) Drop(_ context.Context, userID uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.saved, userID)
	return nil
}

package compliance

import (
	"context"
	"sync"
)

// Store persists compliance items.
type Store interface {
	Create(ctx context.Context, item Item) error
	Get(ctx context.Context, id string) (Item, error)
	List(ctx context.Context, f Filter) ([]Item, error)
	Update(ctx context.Context, item Item) error
}

// MemoryStore keeps items in insertion order.
type MemoryStore struct {
	mu    sync.RWMutex
	items []Item
}

// NewMemoryStore returns a store seeded with copies of seed.
func NewMemoryStore(seed ...Item) *MemoryStore {
	return &MemoryStore{items: append([]Item(nil), seed...)}
}

// Create implements Store.
func (m *MemoryStore) Create(_ context.Context, item Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, item)
	return nil
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, id string) (Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, it := range m.items {
		if it.ID == id {
			return it, nil
		}
	}
	return Item{}, ErrNotFound
}

// List implements Store.
func (m *MemoryStore) List(_ context.Context, f Filter) ([]Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Item, 0, len(m.items))
	for _, it := range m.items {
		if f.SupplierID != 0 && it.SupplierID != f.SupplierID {
			continue
		}
		if f.Status != "" && it.Status != f.Status {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

// Update implements Store.
func (m *MemoryStore) Update(_ context.Context, item Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == item.ID {
			m.items[i] = item
			return nil
		}
	}
	return ErrNotFound
}

package order

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// Store persists orders.
type Store interface {
	Create(ctx context.Context, o Order) error
	Get(ctx context.Context, id string) (Order, error)
	List(ctx context.Context, f ListFilter) ([]Order, int, error)
	// UpdateStatus sets status and bumps Version. A non-nil expectedVersion that
	// differs from the stored one yields ErrVersionConflict.
	UpdateStatus(ctx context.Context, id, status string, expectedVersion *int, at time.Time) (Order, error)
}

// MemoryStore keeps orders in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	orders map[string]Order
	seq    []string
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{orders: make(map[string]Order)}
}

// Create implements Store.
func (m *MemoryStore) Create(_ context.Context, o Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = o.clone()
	m.seq = append(m.seq, o.ID)
	return nil
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, id string) (Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	return o.clone(), nil
}

// List implements Store. Newest orders come first.
func (m *MemoryStore) List(_ context.Context, f ListFilter) ([]Order, int, error) {
	if f.Offset < 0 || f.Limit < 0 {
		return nil, 0, errors.New("order: negative offset or limit")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	matched := make([]Order, 0, len(m.seq))
	for i := len(m.seq) - 1; i >= 0; i-- {
		o := m.orders[m.seq[i]]
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if f.SupplierID != 0 && o.SupplierID != f.SupplierID {
			continue
		}
		matched = append(matched, o.clone())
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	total := len(matched)
	start := f.Offset
	if start > total {
		start = total
	}
	end := total
	if f.Limit > 0 && f.Limit < end-start {
		end = start + f.Limit
	}
	return matched[start:end], total, nil
}

// UpdateStatus implements Store.
func (m *MemoryStore) UpdateStatus(_ context.Context, id, status string, expectedVersion *int, at time.Time) (Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	if expectedVersion != nil && *expectedVersion != o.Version {
		return Order{}, ErrVersionConflict
	}
	o.Status = status
	o.Version++
	o.UpdatedAt = at
	m.orders[id] = o
	return o.clone(), nil
}

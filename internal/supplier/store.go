package supplier

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Store persists the supplier catalog in insertion order.
type Store interface {
	// Add assigns id = max(existing ids) + 1, or 1 when the catalog is empty.
	Add(ctx context.Context, s Supplier) (Supplier, error)
	GetByID(ctx context.Context, id int) (Supplier, error)
	List(ctx context.Context) ([]Supplier, error)
	UpdateComplianceStatus(ctx context.Context, id int, status string) error
}

// ParseID coerces a path or form value to a supplier id.
func ParseID(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: invalid id %q", ErrNotFound, raw)
	}
	return id, nil
}

// MemoryStore keeps suppliers in a slice guarded by a mutex.
type MemoryStore struct {
	mu    sync.RWMutex
	items []Supplier
	now   func() time.Time
}

// NewMemoryStore returns a store holding copies of seed in the given order.
// Seed ids are kept as-is.
func NewMemoryStore(seed ...Supplier) *MemoryStore {
	m := &MemoryStore{now: time.Now}
	for _, s := range seed {
		m.items = append(m.items, s.clone())
	}
	return m
}

// Add implements Store.
func (m *MemoryStore) Add(_ context.Context, s Supplier) (Supplier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	maxID := 0
	for _, existing := range m.items {
		if existing.ID > maxID {
			maxID = existing.ID
		}
	}
	s = s.clone()
	s.ID = maxID + 1
	if s.CreatedAt.IsZero() {
		s.CreatedAt = m.now().UTC()
	}
	m.items = append(m.items, s)
	return s.clone(), nil
}

// GetByID implements Store.
func (m *MemoryStore) GetByID(_ context.Context, id int) (Supplier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.items {
		if s.ID == id {
			return s.clone(), nil
		}
	}
	return Supplier{}, ErrNotFound
}

// List implements Store.
func (m *MemoryStore) List(_ context.Context) ([]Supplier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Supplier, len(m.items))
	for i, s := range m.items {
		out[i] = s.clone()
	}
	return out, nil
}

// UpdateComplianceStatus implements Store.
func (m *MemoryStore) UpdateComplianceStatus(_ context.Context, id int, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id {
			m.items[i].ComplianceStatus = status
			return nil
		}
	}
	return ErrNotFound
}

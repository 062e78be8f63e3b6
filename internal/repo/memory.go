package repo

import (
	"context"
	"fmt"
	"sync"

	"github.com/noah-isme/backend-billing/internal/catalog"
	"github.com/noah-isme/backend-billing/internal/customer"
)

type table[T any] struct {
	mu   sync.RWMutex
	rows map[string]T
}

func (t *table[T]) get(id string) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.rows[id]
	return v, ok
}

func (t *table[T]) put(id string, v T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.rows == nil {
		t.rows = make(map[string]T)
	}
	t.rows[id] = v
}

// MemoryCustomers keeps customers in process memory.
type MemoryCustomers struct {
	t table[customer.Customer]
}

// NewMemoryCustomers returns an empty in-memory customer store.
func NewMemoryCustomers() *MemoryCustomers {
	return &MemoryCustomers{}
}

// FindByID implements customer.Lookup.
func (s *MemoryCustomers) FindByID(_ context.Context, id string) (customer.Customer, error) {
	c, ok := s.t.get(id)
	if !ok {
		return customer.Customer{}, fmt.Errorf("%w: %s", customer.ErrCustomerNotFound, id)
	}
	return c, nil
}

// SaveCustomer inserts or replaces c.
func (s *MemoryCustomers) SaveCustomer(_ context.Context, c customer.Customer) error {
	s.t.put(c.ID, c)
	return nil
}

// MemoryProducts keeps products in process memory.
type MemoryProducts struct {
	t table[catalog.Product]
}

// NewMemoryProducts returns an empty in-memory product store.
func NewMemoryProducts() *MemoryProducts {
	return &MemoryProducts{}
}

// FindByID implements catalog.Lookup.
func (s *MemoryProducts) FindByID(_ context.Context, id string) (catalog.Product, error) {
	p, ok := s.t.get(id)
	if !ok {
		return catalog.Product{}, fmt.Errorf("%w: %s", catalog.ErrProductNotFound, id)
	}
	return p, nil
}

// SaveProduct inserts or replaces p.
func (s *MemoryProducts) SaveProduct(_ context.Context, p catalog.Product) error {
	s.t.put(p.ID, p)
	return nil
}

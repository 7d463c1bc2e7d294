package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

var _ port.CartRepository = (*MemoryCart)(nil)

// MemoryCart is the default cart store; carts live only as long as the process.
type MemoryCart struct {
	mu    sync.Mutex
	carts map[string]map[string]int
}

func NewMemoryCart() *MemoryCart {
	return &MemoryCart{carts: make(map[string]map[string]int)}
}

func (m *MemoryCart) AddItem(ctx context.Context, owner, product string, quantity int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cart, ok := m.carts[owner]
	if !ok {
		cart = make(map[string]int)
		m.carts[owner] = cart
	}
	cart[product] += quantity
	if cart[product] <= 0 {
		delete(cart, product)
		return 0, nil
	}
	return cart[product], nil
}

func (m *MemoryCart) RemoveItem(ctx context.Context, owner, product string, quantity int) (int, error) {
	return m.AddItem(ctx, owner, product, -quantity)
}

func (m *MemoryCart) Items(ctx context.Context, owner string) ([]domain.CartEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := make([]domain.CartEntry, 0, len(m.carts[owner]))
	for product, quantity := range m.carts[owner] {
		items = append(items, domain.CartEntry{Product: product, Quantity: quantity})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Product < items[j].Product })
	return items, nil
}

func (m *MemoryCart) Clear(ctx context.Context, owner string) error {
	m.mu.Lock()
	delete(m.carts, owner)
	m.mu.Unlock()
	return nil
}

func (m *MemoryCart) Reset(ctx context.Context) error {
	m.mu.Lock()
	m.carts = make(map[string]map[string]int)
	m.mu.Unlock()
	return nil
}

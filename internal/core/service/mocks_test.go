package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/rl1809/storefront/internal/core/domain"
)

var errMockStore = errors.New("disk full")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Mock UserRepository
type mockUserRepo struct {
	mu      sync.Mutex
	exists  bool
	users   []domain.User
	saves   int
	failErr error
}

func (m *mockUserRepo) UsersExist(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exists, nil
}

func (m *mockUserRepo) LoadUsers(ctx context.Context) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.User, len(m.users))
	copy(out, m.users)
	return out, nil
}

func (m *mockUserRepo) SaveUsers(ctx context.Context, users []domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.users = make([]domain.User, len(users))
	copy(m.users, users)
	m.exists = true
	m.saves++
	return nil
}

// Mock ProductRepository
type mockProductRepo struct {
	mu       sync.Mutex
	products []domain.Product
	saves    int
	failErr  error
}

func (m *mockProductRepo) LoadProducts(ctx context.Context) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Product, len(m.products))
	copy(out, m.products)
	return out, nil
}

func (m *mockProductRepo) SaveProducts(ctx context.Context, products []domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.products = make([]domain.Product, len(products))
	copy(m.products, products)
	m.saves++
	return nil
}

func (m *mockProductRepo) stored() []domain.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Product, len(m.products))
	copy(out, m.products)
	return out
}

// Mock CartRepository
type mockCartRepo struct {
	mu    sync.Mutex
	carts map[string]map[string]int
}

func newMockCartRepo() *mockCartRepo {
	return &mockCartRepo{carts: make(map[string]map[string]int)}
}

func (m *mockCartRepo) AddItem(ctx context.Context, owner, product string, quantity int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.carts[owner] == nil {
		m.carts[owner] = make(map[string]int)
	}
	m.carts[owner][product] += quantity
	left := m.carts[owner][product]
	if left <= 0 {
		delete(m.carts[owner], product)
		return 0, nil
	}
	return left, nil
}

func (m *mockCartRepo) RemoveItem(ctx context.Context, owner, product string, quantity int) (int, error) {
	return m.AddItem(ctx, owner, product, -quantity)
}

func (m *mockCartRepo) Items(ctx context.Context, owner string) ([]domain.CartEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []domain.CartEntry
	for product, quantity := range m.carts[owner] {
		items = append(items, domain.CartEntry{Product: product, Quantity: quantity})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Product < items[j].Product })
	return items, nil
}

func (m *mockCartRepo) Clear(ctx context.Context, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, owner)
	return nil
}

func (m *mockCartRepo) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts = make(map[string]map[string]int)
	return nil
}

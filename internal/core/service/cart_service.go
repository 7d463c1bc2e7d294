package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

// CartService holds customer reservations. The catalog is only touched at
// checkout. mu is always taken before the catalog lock.
type CartService struct {
	mu      sync.Mutex
	carts   port.CartRepository
	catalog *CatalogService
	logger  *slog.Logger
}

func NewCartService(carts port.CartRepository, catalog *CatalogService, logger *slog.Logger) *CartService {
	return &CartService{
		carts:   carts,
		catalog: catalog,
		logger:  logger,
	}
}

// Add reserves quantity units of a catalog product and returns the new reservation.
func (s *CartService) Add(ctx context.Context, owner, productName string, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, fmt.Errorf("%w: quantity must be positive", ErrInvalidValue)
	}
	product, ok := s.catalog.FindByName(productName)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrProductNotFound, productName)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.carts.AddItem(ctx, owner, product.Name, quantity)
}

// Remove lowers a reservation; the entry disappears once nothing is left.
func (s *CartService) Remove(ctx context.Context, owner, productName string, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, fmt.Errorf("%w: quantity must be positive", ErrInvalidValue)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.carts.Items(ctx, owner)
	if err != nil {
		return 0, err
	}
	for _, item := range items {
		if strings.EqualFold(item.Product, strings.TrimSpace(productName)) {
			return s.carts.RemoveItem(ctx, owner, item.Product, quantity)
		}
	}
	return 0, fmt.Errorf("%w: %s is not in the cart", ErrProductNotFound, productName)
}

func (s *CartService) View(ctx context.Context, owner string) ([]domain.CartEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.carts.Items(ctx, owner)
}

// Checkout settles every reservation that the catalog can cover and skips
// the rest. The cart is emptied afterwards whatever the outcome per line.
func (s *CartService) Checkout(ctx context.Context, owner string) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.carts.Items(ctx, owner)
	if err != nil {
		return domain.Order{}, err
	}

	order := domain.Order{
		ID:        uuid.New().String(),
		Customer:  owner,
		CreatedAt: time.Now(),
	}

	var storeErr error
	for _, item := range items {
		available, ok, err := s.catalog.Deduct(ctx, item.Product, item.Quantity)
		if err != nil {
			storeErr = errors.Join(storeErr, err)
		}

		line := domain.OrderLine{
			Product:   item.Product,
			Quantity:  item.Quantity,
			Available: available,
			Status:    domain.OrderStatusConfirmed,
		}
		if !ok {
			line.Status = domain.OrderStatusInsufficient
			s.logger.Info("checkout line skipped", "customer", owner, "product", item.Product,
				"requested", item.Quantity, "available", available)
		}
		order.Lines = append(order.Lines, line)
	}

	if err := s.carts.Clear(ctx, owner); err != nil {
		return order, fmt.Errorf("clear cart: %w", err)
	}

	s.logger.Info("checkout completed", "order_id", order.ID, "customer", owner,
		"confirmed", len(order.Confirmed()), "insufficient", len(order.Insufficient()))
	return order, storeErr
}

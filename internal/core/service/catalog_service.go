package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

// ProductDetails carries the replacement fields for Edit.
type ProductDetails struct {
	Name     string
	Price    decimal.Decimal
	Quantity int
}

// CatalogService keeps the working copy of the product catalog. Writers hold
// mu for the whole mutate-and-persist sequence so readers only ever observe
// a settled catalog.
type CatalogService struct {
	mu       sync.RWMutex
	repo     port.ProductRepository
	products []domain.Product
	minPrice decimal.Decimal
	logger   *slog.Logger
}

func NewCatalogService(repo port.ProductRepository, minPrice decimal.Decimal, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		repo:     repo,
		minPrice: minPrice,
		logger:   logger,
	}
}

// Load replaces the working copy with the durable catalog. Ids are
// renumbered in stored order in case the store was edited by hand.
func (s *CatalogService) Load(ctx context.Context) error {
	products, err := s.repo.LoadProducts(ctx)
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}
	for i := range products {
		products[i].ID = i + 1
	}

	s.mu.Lock()
	s.products = products
	s.mu.Unlock()
	return nil
}

func (s *CatalogService) List() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out
}

func (s *CatalogService) FindByName(name string) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(name); i >= 0 {
		return s.products[i], true
	}
	return domain.Product{}, false
}

// CheckAvailability returns the stocked quantity, 0 for unknown products.
func (s *CatalogService) CheckAvailability(name string) int {
	p, ok := s.FindByName(name)
	if !ok {
		return 0
	}
	return p.Quantity
}

func (s *CatalogService) MinimumPrice() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.minPrice
}

func (s *CatalogService) Add(ctx context.Context, name string, price decimal.Decimal, quantity int) (domain.Product, error) {
	name = strings.TrimSpace(name)
	if err := validateDetails(name, price, quantity); err != nil {
		return domain.Product{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if price.LessThan(s.minPrice) {
		return domain.Product{}, fmt.Errorf("%w: %s < %s", ErrPriceBelowMinimum, price, s.minPrice)
	}

	product := domain.Product{
		ID:       len(s.products) + 1,
		Name:     name,
		Price:    price,
		Quantity: quantity,
	}
	s.products = append(s.products, product)
	if err := s.persist(ctx); err != nil {
		return product, err
	}

	s.logger.Info("product added", "id", product.ID, "name", product.Name)
	return product, nil
}

// Edit rewrites the first product whose name matches case-insensitively.
// All checks run before the product is touched.
func (s *CatalogService) Edit(ctx context.Context, name string, details ProductDetails) (domain.Product, error) {
	details.Name = strings.TrimSpace(details.Name)
	if err := validateDetails(details.Name, details.Price, details.Quantity); err != nil {
		return domain.Product{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(name)
	if i < 0 {
		return domain.Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, name)
	}
	if details.Price.LessThan(s.minPrice) {
		return domain.Product{}, fmt.Errorf("%w: %s < %s", ErrPriceBelowMinimum, details.Price, s.minPrice)
	}

	p := &s.products[i]
	p.Name = details.Name
	p.Price = details.Price
	p.Quantity = details.Quantity
	if err := s.persist(ctx); err != nil {
		return *p, err
	}

	s.logger.Info("product edited", "id", p.ID, "name", p.Name)
	return *p, nil
}

// Delete removes the product and shifts every later id down by one.
func (s *CatalogService) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	at := -1
	for i, p := range s.products {
		if p.ID == id {
			at = i
			break
		}
	}
	if at < 0 {
		return fmt.Errorf("%w: id %d", ErrProductNotFound, id)
	}

	s.products = append(s.products[:at], s.products[at+1:]...)
	for i := at; i < len(s.products); i++ {
		s.products[i].ID--
	}
	if err := s.persist(ctx); err != nil {
		return err
	}

	s.logger.Info("product deleted", "id", id)
	return nil
}

func (s *CatalogService) SetMinimumPrice(value decimal.Decimal, actor domain.User) error {
	if actor.Role != domain.RoleEmployee {
		return fmt.Errorf("%w: %s cannot set the minimum price", ErrUnauthorized, actor.Role)
	}
	if value.IsNegative() {
		return fmt.Errorf("%w: negative minimum price", ErrInvalidValue)
	}

	s.mu.Lock()
	s.minPrice = value
	s.mu.Unlock()

	s.logger.Info("minimum price changed", "value", value.String(), "by", actor.Username)
	return nil
}

// Deduct takes quantity units of the named product if enough are stocked.
// It returns the quantity that was available before the call.
func (s *CatalogService) Deduct(ctx context.Context, name string, quantity int) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(name)
	if i < 0 {
		return 0, false, nil
	}
	available := s.products[i].Quantity
	if quantity > available {
		return available, false, nil
	}

	s.products[i].Quantity -= quantity
	if err := s.persist(ctx); err != nil {
		return available, true, err
	}
	return available, true, nil
}

// indexOf must be called with mu held.
func (s *CatalogService) indexOf(name string) int {
	name = strings.TrimSpace(name)
	for i, p := range s.products {
		if strings.EqualFold(p.Name, name) {
			return i
		}
	}
	return -1
}

// persist must be called with mu held. A failed write is logged and the
// working copy is kept; the next successful write brings the store back in line.
func (s *CatalogService) persist(ctx context.Context) error {
	snapshot := make([]domain.Product, len(s.products))
	copy(snapshot, s.products)
	if err := s.repo.SaveProducts(ctx, snapshot); err != nil {
		s.logger.Error("saving products failed", "error", err)
		return fmt.Errorf("%w: %v", ErrStore, err)
	}
	return nil
}

func validateDetails(name string, price decimal.Decimal, quantity int) error {
	if name == "" {
		return fmt.Errorf("%w: empty product name", ErrInvalidValue)
	}
	if price.IsNegative() {
		return fmt.Errorf("%w: negative price", ErrInvalidValue)
	}
	if quantity < 0 {
		return fmt.Errorf("%w: negative quantity", ErrInvalidValue)
	}
	return nil
}

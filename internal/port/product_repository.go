package port

import (
	"context"

	"github.com/rl1809/storefront/internal/core/domain"
)

type ProductRepository interface {
	// LoadProducts reads the catalog in id order, empty when it does not exist
	LoadProducts(ctx context.Context) ([]domain.Product, error)

	// SaveProducts replaces the whole catalog
	SaveProducts(ctx context.Context, products []domain.Product) error
}

package port

import (
	"context"

	"github.com/rl1809/storefront/internal/core/domain"
)

type CartRepository interface {
	// AddItem increases the reserved quantity and returns the new total
	AddItem(ctx context.Context, owner, product string, quantity int) (int, error)

	// RemoveItem decreases the reserved quantity, dropping the entry once it reaches zero
	RemoveItem(ctx context.Context, owner, product string, quantity int) (int, error)

	// Items returns the owner's entries sorted by product name
	Items(ctx context.Context, owner string) ([]domain.CartEntry, error)

	// Clear empties the owner's cart
	Clear(ctx context.Context, owner string) error

	// Reset drops every cart, used on start-up since carts do not survive restarts
	Reset(ctx context.Context) error
}

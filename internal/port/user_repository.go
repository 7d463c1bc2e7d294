package port

import (
	"context"

	"github.com/rl1809/storefront/internal/core/domain"
)

type UserRepository interface {
	// UsersExist reports whether the user store has been created yet
	UsersExist(ctx context.Context) (bool, error)

	// LoadUsers reads the whole user list, empty when the store does not exist
	LoadUsers(ctx context.Context) ([]domain.User, error)

	// SaveUsers replaces the whole user list
	SaveUsers(ctx context.Context, users []domain.User) error
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

// SeedUsers are written the first time the server runs against an empty store.
var SeedUsers = []domain.User{
	{Username: "admin", Password: "12345", Role: domain.RoleAdmin},
	{Username: "custom", Password: "12345", Role: domain.RoleCustomer},
}

// UserService owns the users critical section: every read of the store and
// every read-modify-write happens under mu.
type UserService struct {
	mu        sync.Mutex
	repo      port.UserRepository
	validator *CredentialValidator
	logger    *slog.Logger
}

func NewUserService(repo port.UserRepository, validator *CredentialValidator, logger *slog.Logger) *UserService {
	return &UserService{
		repo:      repo,
		validator: validator,
		logger:    logger,
	}
}

// Bootstrap seeds the store when it does not exist yet and reports whether it did.
func (s *UserService) Bootstrap(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.repo.UsersExist(ctx)
	if err != nil {
		return false, fmt.Errorf("check user store: %w", err)
	}
	if exists {
		return false, nil
	}

	seed := make([]domain.User, len(SeedUsers))
	copy(seed, SeedUsers)
	if err := s.repo.SaveUsers(ctx, seed); err != nil {
		return false, fmt.Errorf("seed user store: %w", err)
	}
	return true, nil
}

func (s *UserService) LoadAll(ctx context.Context) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.repo.LoadUsers(ctx)
}

// Register validates the credentials for the role and appends the new user.
// Duplicate usernames are accepted.
func (s *UserService) Register(ctx context.Context, role domain.Role, username, password string) (domain.User, error) {
	user, err := s.validator.Validate(role, username, password)
	if err != nil {
		return domain.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.repo.LoadUsers(ctx)
	if err != nil {
		return domain.User{}, fmt.Errorf("load users: %w", err)
	}
	users = append(users, user)
	if err := s.repo.SaveUsers(ctx, users); err != nil {
		s.logger.Error("saving users failed", "username", username, "error", err)
		return domain.User{}, fmt.Errorf("%w: %v", ErrStore, err)
	}

	s.logger.Info("user registered", "username", user.Username, "role", user.Role)
	return user, nil
}

// FindByCredentials returns the first user matching both fields exactly, or nil.
func (s *UserService) FindByCredentials(ctx context.Context, username, password string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.repo.LoadUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	for _, u := range users {
		if u.Username == username && u.Password == password {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

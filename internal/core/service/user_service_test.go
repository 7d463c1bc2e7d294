package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rl1809/storefront/internal/core/domain"
)

func newTestUsers(repo *mockUserRepo) *UserService {
	policy := LengthPolicy{MinUsername: DefaultMinUsername, MinPassword: DefaultMinPassword}
	return NewUserService(repo, NewCredentialValidator(policy), discardLogger())
}

func TestBootstrap_SeedsMissingStore(t *testing.T) {
	repo := &mockUserRepo{}
	svc := newTestUsers(repo)

	seeded, err := svc.Bootstrap(context.Background())
	if err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	if !seeded {
		t.Fatal("expected store to be seeded")
	}

	users, _ := svc.LoadAll(context.Background())
	if len(users) != 2 {
		t.Fatalf("expected 2 seed users, got %d", len(users))
	}
	if users[0].Username != "admin" || users[0].Role != domain.RoleAdmin {
		t.Errorf("unexpected first seed user %+v", users[0])
	}
	if users[1].Username != "custom" || users[1].Role != domain.RoleCustomer {
		t.Errorf("unexpected second seed user %+v", users[1])
	}
}

func TestBootstrap_KeepsExistingStore(t *testing.T) {
	repo := &mockUserRepo{exists: true}
	svc := newTestUsers(repo)

	seeded, err := svc.Bootstrap(context.Background())
	if err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	if seeded || repo.saves != 0 {
		t.Errorf("expected no reseed, got seeded=%v saves=%d", seeded, repo.saves)
	}
}

func TestRegister_AppendsUser(t *testing.T) {
	ctx := context.Background()
	repo := &mockUserRepo{}
	svc := newTestUsers(repo)
	svc.Bootstrap(ctx)

	user, err := svc.Register(ctx, domain.RoleEmployee, "worker", "secret")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Role != domain.RoleEmployee {
		t.Errorf("expected EMPLOYEE, got %s", user.Role)
	}

	found, err := svc.FindByCredentials(ctx, "worker", "secret")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if found == nil || found.Role != domain.RoleEmployee {
		t.Errorf("expected to find registered employee, got %+v", found)
	}
}

func TestRegister_RejectsShortCredentials(t *testing.T) {
	repo := &mockUserRepo{}
	svc := newTestUsers(repo)

	_, err := svc.Register(context.Background(), domain.RoleCustomer, "ab", "secret")
	var credErr *CredentialsError
	if !errors.As(err, &credErr) || credErr.Reason != ReasonShortUsername {
		t.Fatalf("expected short username error, got: %v", err)
	}
	if credErr.Error() != "Error: Username must be at least 3 characters" {
		t.Errorf("unexpected message %q", credErr.Error())
	}
	if repo.saves != 0 {
		t.Error("expected nothing persisted")
	}
}

func TestRegister_StoreFailure(t *testing.T) {
	repo := &mockUserRepo{failErr: errMockStore}
	svc := newTestUsers(repo)

	_, err := svc.Register(context.Background(), domain.RoleCustomer, "alice", "secret")
	if !errors.Is(err, ErrStore) {
		t.Errorf("expected ErrStore, got: %v", err)
	}
}

func TestRegister_DuplicateUsernamesAllowed(t *testing.T) {
	ctx := context.Background()
	repo := &mockUserRepo{}
	svc := newTestUsers(repo)

	if _, err := svc.Register(ctx, domain.RoleCustomer, "alice", "first1"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := svc.Register(ctx, domain.RoleEmployee, "alice", "second"); err != nil {
		t.Fatalf("duplicate register failed: %v", err)
	}

	users, _ := svc.LoadAll(ctx)
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	found, _ := svc.FindByCredentials(ctx, "alice", "second")
	if found == nil || found.Role != domain.RoleEmployee {
		t.Errorf("expected the matching record, got %+v", found)
	}
}

func TestFindByCredentials_FirstMatchWins(t *testing.T) {
	repo := &mockUserRepo{exists: true, users: []domain.User{
		{Username: "bob", Password: "pw123", Role: domain.RoleCustomer},
		{Username: "bob", Password: "pw123", Role: domain.RoleEmployee},
	}}
	svc := newTestUsers(repo)

	found, err := svc.FindByCredentials(context.Background(), "bob", "pw123")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if found == nil || found.Role != domain.RoleCustomer {
		t.Errorf("expected first record, got %+v", found)
	}

	found, _ = svc.FindByCredentials(context.Background(), "bob", "PW123")
	if found != nil {
		t.Errorf("expected case-sensitive miss, got %+v", found)
	}
}

func TestRegister_Concurrent(t *testing.T) {
	ctx := context.Background()
	repo := &mockUserRepo{}
	svc := newTestUsers(repo)
	svc.Bootstrap(ctx)

	total := 50
	var wg sync.WaitGroup
	for i := 0; i < total; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if _, err := svc.Register(ctx, domain.RoleCustomer, fmt.Sprintf("user%03d", id), "secret"); err != nil {
				t.Errorf("register failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	users, _ := svc.LoadAll(ctx)
	if len(users) != total+len(SeedUsers) {
		t.Fatalf("expected %d users, got %d", total+len(SeedUsers), len(users))
	}
	seen := make(map[string]bool)
	for _, u := range users {
		seen[u.Username] = true
	}
	for i := 0; i < total; i++ {
		if !seen[fmt.Sprintf("user%03d", i)] {
			t.Errorf("user%03d was lost", i)
		}
	}
}

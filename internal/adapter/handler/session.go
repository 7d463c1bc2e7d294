package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
)

// menu is the handler for one role. end reports whether the session should
// terminate instead of going back to the login prompt.
type menu interface {
	run(ctx context.Context, s *Session, user domain.User) (end bool, err error)
}

// Session drives one connection: login, then the menu of the user's role.
type Session struct {
	conn    LineConn
	users   *service.UserService
	catalog *service.CatalogService
	carts   *service.CartService
	logger  *slog.Logger
	menus   map[domain.Role]menu

	// writeErr holds the first failed write; it is reported by the next read.
	writeErr error
}

func NewSession(conn LineConn, users *service.UserService, catalog *service.CatalogService, carts *service.CartService, logger *slog.Logger) *Session {
	return &Session{
		conn:    conn,
		users:   users,
		catalog: catalog,
		carts:   carts,
		logger:  logger,
		menus: map[domain.Role]menu{
			domain.RoleAdmin:    adminMenu{},
			domain.RoleCustomer: customerMenu{},
			domain.RoleEmployee: employeeMenu{},
		},
	}
}

// Run returns nil when the client leaves through the protocol and the
// transport error otherwise.
func (s *Session) Run(ctx context.Context) error {
	for {
		answer, err := s.prompt("Login? Y/N")
		if err != nil {
			return err
		}
		if !strings.EqualFold(strings.TrimSpace(answer), "Y") {
			s.println("Goodbye.")
			return s.writeErr
		}

		username, err := s.prompt("Enter username:")
		if err != nil {
			return err
		}
		password, err := s.prompt("Enter password:")
		if err != nil {
			return err
		}

		user, err := s.users.FindByCredentials(ctx, strings.TrimSpace(username), strings.TrimSpace(password))
		if err != nil {
			s.logger.Error("login lookup failed", "error", err)
			s.println("Error: Could not read users.")
			continue
		}
		if user == nil {
			s.logger.Info("login rejected", "username", strings.TrimSpace(username))
			s.println("Error: Invalid login.")
			continue
		}

		m, ok := s.menus[user.Role]
		if !ok {
			s.println("Error: Invalid login.")
			continue
		}
		s.logger.Info("logged in", "username", user.Username, "role", user.Role)

		end, err := m.run(ctx, s, *user)
		if err != nil {
			return err
		}
		if end {
			return s.writeErr
		}
	}
}

func (s *Session) println(format string, args ...any) {
	if s.writeErr != nil {
		return
	}
	line := format
	if len(args) > 0 {
		line = fmt.Sprintf(format, args...)
	}
	s.writeErr = s.conn.WriteLine(line)
}

func (s *Session) readLine() (string, error) {
	if s.writeErr != nil {
		return "", s.writeErr
	}
	return s.conn.ReadLine()
}

func (s *Session) prompt(text string) (string, error) {
	s.println(text)
	return s.readLine()
}

// promptInt reads an integer; ok is false when the answer was not a number
// and the client has already been told so.
func (s *Session) promptInt(text string) (n int, ok bool, err error) {
	answer, err := s.prompt(text)
	if err != nil {
		return 0, false, err
	}
	n, convErr := strconv.Atoi(strings.TrimSpace(answer))
	if convErr != nil {
		s.println("Error: Invalid number.")
		return 0, false, nil
	}
	return n, true, nil
}

func (s *Session) promptDecimal(text string) (d decimal.Decimal, ok bool, err error) {
	answer, err := s.prompt(text)
	if err != nil {
		return decimal.Zero, false, err
	}
	d, convErr := decimal.NewFromString(strings.TrimSpace(answer))
	if convErr != nil {
		s.println("Error: Invalid number.")
		return decimal.Zero, false, nil
	}
	return d, true, nil
}

func (s *Session) writeProducts() {
	for _, p := range s.catalog.List() {
		s.println(p.String())
	}
	// empty line ends the listing
	s.println("")
}

// reportError turns a service error into the single line the client sees.
func (s *Session) reportError(err error) {
	var credErr *service.CredentialsError
	switch {
	case errors.As(err, &credErr):
		s.println(credErr.Error())
	case errors.Is(err, service.ErrPriceBelowMinimum):
		s.println("Error: Price is below the minimum price of %s.", s.catalog.MinimumPrice())
	case errors.Is(err, service.ErrProductNotFound):
		s.println("Error: Product not found.")
	case errors.Is(err, service.ErrUnauthorized):
		s.println("Error: Not authorized.")
	case errors.Is(err, service.ErrInvalidValue):
		s.println("Error: Invalid value.")
	case errors.Is(err, service.ErrStore):
		s.println("Error: Could not save changes.")
	default:
		s.logger.Error("request failed", "error", err)
		s.println("Error: Internal error.")
	}
}

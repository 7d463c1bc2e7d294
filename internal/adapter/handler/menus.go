package handler

import (
	"context"
	"strconv"
	"strings"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
)

// adminMenu registers a single account and hands control back to the login prompt.
type adminMenu struct{}

func (adminMenu) run(ctx context.Context, s *Session, user domain.User) (bool, error) {
	s.println("Logged in as admin.")
	token, err := s.prompt("Enter user type to create: (ADMIN | CUSTOMER | EMPLOYEE)")
	if err != nil {
		return false, err
	}
	role, ok := domain.ParseRole(token)
	if !ok {
		s.println("Error: Invalid user type.")
		return false, nil
	}

	username, err := s.prompt("Enter username:")
	if err != nil {
		return false, err
	}
	password, err := s.prompt("Enter password:")
	if err != nil {
		return false, err
	}

	if _, err := s.users.Register(ctx, role, strings.TrimSpace(username), strings.TrimSpace(password)); err != nil {
		s.reportError(err)
		return false, nil
	}
	s.println("Success.")
	return false, nil
}

type customerMenu struct{}

func (customerMenu) run(ctx context.Context, s *Session, user domain.User) (bool, error) {
	for {
		s.println("Welcome, %s!", user.Username)
		s.println("1. View Products")
		s.println("2. Check Product Availability")
		s.println("3. View Cart")
		s.println("4. Checkout")
		s.println("5. Exit")
		answer, err := s.prompt("Choose an option:")
		if err != nil {
			return false, err
		}

		switch choice(answer) {
		case 1:
			s.writeProducts()
		case 2:
			name, err := s.prompt("Enter product name:")
			if err != nil {
				return false, err
			}
			name = strings.TrimSpace(name)
			s.println("Availability of %s: %d", name, s.catalog.CheckAvailability(name))
		case 3:
			if err := viewCart(ctx, s, user); err != nil {
				return false, err
			}
		case 4:
			checkout(ctx, s, user)
		case 5:
			s.println("Goodbye, %s!", user.Username)
			return true, nil
		default:
			s.println("Invalid choice. Please try again.")
		}
	}
}

// viewCart lists the cart and offers to change one entry.
func viewCart(ctx context.Context, s *Session, user domain.User) error {
	items, err := s.carts.View(ctx, user.Username)
	if err != nil {
		s.reportError(err)
		return nil
	}
	if len(items) == 0 {
		s.println("Your cart is empty.")
	}
	for _, item := range items {
		s.println("%s x %d", item.Product, item.Quantity)
	}

	action, err := s.prompt("Cart options: A) Add item  R) Remove item  B) Back")
	if err != nil {
		return err
	}
	action = strings.ToUpper(strings.TrimSpace(action))
	if action != "A" && action != "R" {
		return nil
	}

	name, err := s.prompt("Enter product name:")
	if err != nil {
		return err
	}
	quantity, ok, err := s.promptInt("Enter quantity:")
	if err != nil || !ok {
		return err
	}

	var left int
	if action == "A" {
		left, err = s.carts.Add(ctx, user.Username, name, quantity)
	} else {
		left, err = s.carts.Remove(ctx, user.Username, name, quantity)
	}
	if err != nil {
		s.reportError(err)
		return nil
	}
	s.println("Cart updated: %s x %d", strings.TrimSpace(name), left)
	return nil
}

func checkout(ctx context.Context, s *Session, user domain.User) {
	order, err := s.carts.Checkout(ctx, user.Username)
	if len(order.Lines) == 0 && err == nil {
		s.println("Your cart is empty.")
		return
	}
	for _, line := range order.Confirmed() {
		s.println("Purchased %s x %d", line.Product, line.Quantity)
	}
	for _, line := range order.Insufficient() {
		s.println("Insufficient stock for %s: requested %d, available %d", line.Product, line.Quantity, line.Available)
	}
	if err != nil {
		s.reportError(err)
	}
	if order.ID != "" {
		s.println("Checkout complete. Order %s", order.ID)
	}
}

type employeeMenu struct{}

func (employeeMenu) run(ctx context.Context, s *Session, user domain.User) (bool, error) {
	for {
		s.println("1. Add Product")
		s.println("2. Edit Product")
		s.println("3. Delete Product")
		s.println("4. View Products")
		s.println("5. Set Minimum Price")
		s.println("6. Exit")
		answer, err := s.prompt("Choose an option:")
		if err != nil {
			return false, err
		}

		switch choice(answer) {
		case 1:
			err = addProduct(ctx, s)
		case 2:
			err = editProduct(ctx, s)
		case 3:
			err = deleteProduct(ctx, s)
		case 4:
			s.writeProducts()
		case 5:
			err = setMinimumPrice(s, user)
		case 6:
			s.println("Goodbye, %s!", user.Username)
			return true, nil
		default:
			s.println("Invalid choice. Please try again.")
		}
		if err != nil {
			return false, err
		}
	}
}

func addProduct(ctx context.Context, s *Session) error {
	name, err := s.prompt("Enter product name:")
	if err != nil {
		return err
	}
	price, ok, err := s.promptDecimal("Enter product price:")
	if err != nil || !ok {
		return err
	}
	quantity, ok, err := s.promptInt("Enter product quantity:")
	if err != nil || !ok {
		return err
	}

	product, err := s.catalog.Add(ctx, name, price, quantity)
	if err != nil {
		s.reportError(err)
		return nil
	}
	s.println("Product added with ID %d.", product.ID)
	return nil
}

func editProduct(ctx context.Context, s *Session) error {
	target, err := s.prompt("Enter product name to edit:")
	if err != nil {
		return err
	}
	name, err := s.prompt("Enter new product name:")
	if err != nil {
		return err
	}
	price, ok, err := s.promptDecimal("Enter new product price:")
	if err != nil || !ok {
		return err
	}
	quantity, ok, err := s.promptInt("Enter new product quantity:")
	if err != nil || !ok {
		return err
	}

	details := service.ProductDetails{Name: name, Price: price, Quantity: quantity}
	if _, err := s.catalog.Edit(ctx, target, details); err != nil {
		s.reportError(err)
		return nil
	}
	s.println("Product updated.")
	return nil
}

func deleteProduct(ctx context.Context, s *Session) error {
	id, ok, err := s.promptInt("Enter product ID to delete:")
	if err != nil || !ok {
		return err
	}
	if err := s.catalog.Delete(ctx, id); err != nil {
		s.reportError(err)
		return nil
	}
	s.println("Product deleted.")
	return nil
}

func setMinimumPrice(s *Session, user domain.User) error {
	s.println("Current minimum price: %s", s.catalog.MinimumPrice())
	value, ok, err := s.promptDecimal("Enter new minimum price:")
	if err != nil || !ok {
		return err
	}
	if err := s.catalog.SetMinimumPrice(value, user); err != nil {
		s.reportError(err)
		return nil
	}
	s.println("Minimum price set to %s.", value)
	return nil
}

// choice parses a menu answer, returning 0 for anything that is not a number.
func choice(answer string) int {
	n, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil {
		return 0
	}
	return n
}

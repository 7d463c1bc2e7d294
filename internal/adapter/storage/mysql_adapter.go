package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

var (
	_ port.UserRepository    = (*MySQLAdapter)(nil)
	_ port.ProductRepository = (*MySQLAdapter)(nil)
)

// MySQLAdapter stores users and products in two tables. Saves replace the
// whole table inside one transaction, matching the file store semantics.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			seq INT AUTO_INCREMENT PRIMARY KEY,
			username VARCHAR(255) NOT NULL,
			password VARCHAR(255) NOT NULL,
			role VARCHAR(16) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id INT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			price DECIMAL(19,4) NOT NULL,
			quantity INT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// UsersExist treats an empty users table as a store that was never created.
func (m *MySQLAdapter) UsersExist(ctx context.Context) (bool, error) {
	var count int
	if err := m.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return count > 0, nil
}

func (m *MySQLAdapter) LoadUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT username, password, role FROM users ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		var u domain.User
		var role string
		if err := rows.Scan(&u.Username, &u.Password, &role); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		parsed, ok := domain.ParseRole(role)
		if !ok {
			return nil, fmt.Errorf("%w: unknown role %q", ErrIncompatibleStore, role)
		}
		u.Role = parsed
		users = append(users, u)
	}
	return users, rows.Err()
}

func (m *MySQLAdapter) SaveUsers(ctx context.Context, users []domain.User) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM users`); err != nil {
		return fmt.Errorf("clear users: %w", err)
	}
	for _, u := range users {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO users (username, password, role) VALUES (?, ?, ?)`,
			u.Username, u.Password, string(u.Role),
		)
		if err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
	}

	return tx.Commit()
}

func (m *MySQLAdapter) LoadProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT id, name, price, quantity FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		var price string
		if err := rows.Scan(&p.ID, &p.Name, &price, &p.Quantity); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		if p.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("%w: price of %q: %v", ErrIncompatibleStore, p.Name, err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (m *MySQLAdapter) SaveProducts(ctx context.Context, products []domain.Product) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM products`); err != nil {
		return fmt.Errorf("clear products: %w", err)
	}
	for _, p := range products {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO products (id, name, price, quantity) VALUES (?, ?, ?, ?)`,
			p.ID, p.Name, p.Price.String(), p.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert product: %w", err)
		}
	}

	return tx.Commit()
}

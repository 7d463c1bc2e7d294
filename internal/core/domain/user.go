package domain

import "strings"

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleEmployee Role = "EMPLOYEE"
	RoleCustomer Role = "CUSTOMER"
)

// ParseRole matches a role token case-insensitively.
func ParseRole(token string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(token))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleEmployee:
		return RoleEmployee, true
	case RoleCustomer:
		return RoleCustomer, true
	}
	return "", false
}

// User is a stored account. Password is compared by plain equality and
// usernames are not required to be unique.
type User struct {
	Username string
	Password string
	Role     Role
}

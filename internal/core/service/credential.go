package service

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/rl1809/storefront/internal/core/domain"
)

const (
	DefaultMinUsername = 3
	DefaultMinPassword = 5
	DefaultEmailDomain = "tu-sofia.bg"
)

// CredentialPolicy checks the credentials of non-admin accounts.
type CredentialPolicy interface {
	Check(username, password string) error
}

// LengthPolicy only enforces minimum lengths, counted in characters.
type LengthPolicy struct {
	MinUsername int
	MinPassword int
}

func (p LengthPolicy) Check(username, password string) error {
	if utf8.RuneCountInString(username) < p.MinUsername {
		return &CredentialsError{Reason: ReasonShortUsername, Min: p.MinUsername}
	}
	if utf8.RuneCountInString(password) < p.MinPassword {
		return &CredentialsError{Reason: ReasonShortPassword, Min: p.MinPassword}
	}
	return nil
}

// EmailPolicy requires usernames of the form <lowercase letters>@<domain>.
type EmailPolicy struct {
	pattern     *regexp.Regexp
	MinPassword int
}

func NewEmailPolicy(domainName string, minPassword int) EmailPolicy {
	return EmailPolicy{
		pattern:     regexp.MustCompile(`^[a-z]+@` + regexp.QuoteMeta(domainName) + `$`),
		MinPassword: minPassword,
	}
}

func (p EmailPolicy) Check(username, password string) error {
	if !p.pattern.MatchString(username) {
		return &CredentialsError{Reason: ReasonInvalidEmail}
	}
	if utf8.RuneCountInString(password) < p.MinPassword {
		return &CredentialsError{Reason: ReasonShortPassword, Min: p.MinPassword}
	}
	return nil
}

// NewCredentialPolicy builds a policy by name: "length" or "email".
func NewCredentialPolicy(name, emailDomain string, minUsername, minPassword int) (CredentialPolicy, error) {
	switch name {
	case "", "length":
		return LengthPolicy{MinUsername: minUsername, MinPassword: minPassword}, nil
	case "email":
		return NewEmailPolicy(emailDomain, minPassword), nil
	}
	return nil, fmt.Errorf("unknown credential policy %q", name)
}

type CredentialValidator struct {
	policy CredentialPolicy
}

func NewCredentialValidator(policy CredentialPolicy) *CredentialValidator {
	return &CredentialValidator{policy: policy}
}

// Validate builds a user for the role. Admin accounts skip the policy and
// only need non-empty credentials.
func (v *CredentialValidator) Validate(role domain.Role, username, password string) (domain.User, error) {
	switch role {
	case domain.RoleAdmin:
		if username == "" || password == "" {
			return domain.User{}, &CredentialsError{Reason: ReasonEmptyCredentials}
		}
	case domain.RoleCustomer, domain.RoleEmployee:
		if err := v.policy.Check(username, password); err != nil {
			return domain.User{}, err
		}
	default:
		return domain.User{}, fmt.Errorf("%w: role %q", ErrInvalidValue, role)
	}
	return domain.User{Username: username, Password: password, Role: role}, nil
}

package service

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrPriceBelowMinimum = errors.New("price below minimum")
	ErrUnauthorized      = errors.New("not authorized")
	ErrInvalidValue      = errors.New("invalid value")
	ErrStore             = errors.New("store write failed")
)

type CredentialReason string

const (
	ReasonEmptyCredentials CredentialReason = "empty credentials"
	ReasonShortUsername    CredentialReason = "username too short"
	ReasonShortPassword    CredentialReason = "password too short"
	ReasonInvalidEmail     CredentialReason = "invalid email format"
)

// CredentialsError reports a username/password policy violation.
type CredentialsError struct {
	Reason CredentialReason
	Min    int
}

func (e *CredentialsError) Error() string {
	switch e.Reason {
	case ReasonShortUsername:
		return fmt.Sprintf("Error: Username must be at least %d characters", e.Min)
	case ReasonShortPassword:
		return fmt.Sprintf("Error: Password must be at least %d characters", e.Min)
	case ReasonInvalidEmail:
		return "Error: Invalid email format."
	default:
		return "Error: Username and password are required."
	}
}

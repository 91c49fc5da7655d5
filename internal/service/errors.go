package service

import (
	"errors"
	"fmt"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrServiceNotFound = errors.New("service not found")
	ErrOrderNotFound   = errors.New("order not found")

	// ErrValidation covers malformed or missing input and business-rule
	// mismatches that the caller can fix.
	ErrValidation = errors.New("validation failed")

	ErrOperatorCodeNotApplicable = fmt.Errorf("%w: operator code not accepted for this service category", ErrValidation)
	ErrInvalidTransition         = fmt.Errorf("%w: status transition not allowed", ErrValidation)

	ErrInsufficientFunds       = errors.New("insufficient funds")
	ErrInvalidAmount           = errors.New("invalid amount")
	ErrInvalidOperatorCode     = errors.New("invalid operator code")
	ErrCodeGenerationExhausted = errors.New("operator code generation exhausted")

	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotOrderOwner      = errors.New("order belongs to another account")
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

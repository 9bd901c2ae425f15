// Package service provides business logic for the application.
package service

import (
	"errors"
	"fmt"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"github.com/paisa/paisa/internal/model"
)

// Service errors.
var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrBudgetNotFound      = errors.New("budget not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrTokenRevoked        = errors.New("token revoked")
)

// ValidationError reports a single rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// validateAmount requires a positive amount with at most two decimal places.
func validateAmount(field string, amount *decimal.Decimal) error {
	if amount == nil {
		return invalid(field, "is required")
	}
	return validateMoney(field, *amount, false)
}

func validateMoney(field string, amount decimal.Decimal, allowZero bool) error {
	if amount.IsNegative() {
		return invalid(field, "must not be negative")
	}
	// Bounds first: the checks below expand the value.
	switch err := model.CheckAmountBounds(amount); {
	case errors.Is(err, model.ErrAmountTooPrecise):
		return invalid(field, "must have at most 2 decimal places")
	case err != nil:
		return invalid(field, "is too large")
	}

	switch {
	case amount.IsZero() && !allowZero:
		return invalid(field, "must be greater than 0")
	case amount.Exponent() < -2 && !amount.Equal(amount.Round(2)):
		return invalid(field, "must have at most 2 decimal places")
	}
	return nil
}

func newID() string {
	return ulid.Make().String()
}

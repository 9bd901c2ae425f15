// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SignupRequest is the body of POST /api/v1/signup.
type SignupRequest struct {
	Name           string           `json:"name"`
	Email          string           `json:"email"`
	Password       string           `json:"password"`
	MonthlyBudget  *decimal.Decimal `json:"monthlyBudget,omitempty"`
	SavingsGoal    *decimal.Decimal `json:"savingsGoal,omitempty"`
	CurrentBalance *decimal.Decimal `json:"currentBalance,omitempty"`
}

// LoginRequest is the body of POST /api/v1/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest is the body of PUT /api/v1/users/me.
type UpdateProfileRequest struct {
	Name           *string          `json:"name,omitempty"`
	MonthlyBudget  *decimal.Decimal `json:"monthlyBudget,omitempty"`
	SavingsGoal    *decimal.Decimal `json:"savingsGoal,omitempty"`
	CurrentBalance *decimal.Decimal `json:"currentBalance,omitempty"`
}

// CreateTransactionRequest is the body of POST /api/v1/transactions.
// Date accepts RFC 3339 or YYYY-MM-DD.
type CreateTransactionRequest struct {
	Amount        *decimal.Decimal `json:"amount"`
	Type          string           `json:"type"`
	Category      string           `json:"category"`
	Date          string           `json:"date,omitempty"`
	Description   string           `json:"description,omitempty"`
	PaymentMethod string           `json:"paymentMethod,omitempty"`
	Recurring     bool             `json:"recurring,omitempty"`
	Tags          []string         `json:"tags,omitempty"`
}

// UpdateTransactionRequest is the body of PUT /api/v1/transactions/{id}.
// Omitted fields are left unchanged.
type UpdateTransactionRequest struct {
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	Type          *string          `json:"type,omitempty"`
	Category      *string          `json:"category,omitempty"`
	Date          *string          `json:"date,omitempty"`
	Description   *string          `json:"description,omitempty"`
	PaymentMethod *string          `json:"paymentMethod,omitempty"`
	Recurring     *bool            `json:"recurring,omitempty"`
	Tags          *[]string        `json:"tags,omitempty"`
}

// BudgetRequest is the body of POST /api/v1/budgets.
type BudgetRequest struct {
	Category string           `json:"category"`
	Amount   *decimal.Decimal `json:"amount"`
}

// UpdateBudgetRequest is the body of PUT /api/v1/budgets/{id}.
type UpdateBudgetRequest struct {
	Category *string          `json:"category,omitempty"`
	Amount   *decimal.Decimal `json:"amount,omitempty"`
}

// DateOnly is the calendar date layout accepted next to RFC 3339.
const DateOnly = "2006-01-02"

// ParseDate accepts an RFC 3339 timestamp or a bare YYYY-MM-DD date, which
// is read as UTC midnight. The bool reports whether the input was date-only.
func ParseDate(s string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), false, nil
	}
	t, err := time.Parse(DateOnly, s)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("must be RFC 3339 or YYYY-MM-DD, got %q", s)
	}
	return t, true, nil
}

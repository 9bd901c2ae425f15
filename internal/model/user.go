package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is an account holder and the owner of a ledger.
type User struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Email          string           `json:"email"`
	PasswordHash   string           `json:"-"`
	IsAdmin        bool             `json:"isAdmin"`
	MonthlyBudget  *decimal.Decimal `json:"monthlyBudget,omitempty"`
	SavingsGoal    *decimal.Decimal `json:"savingsGoal,omitempty"`
	CurrentBalance *decimal.Decimal `json:"currentBalance,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// AuthContext holds the authenticated caller's identity.
// This is injected into the request context by auth middleware.
type AuthContext struct {
	UserID    string
	TokenID   string
	IsAdmin   bool
	ExpiresAt time.Time
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget is a spending ceiling for one category, owned by one user.
// Uniqueness per (user, category) is not enforced; readers collapse
// duplicates with last-write-wins.
type Budget struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Category  string          `json:"category"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

package service

import (
	"context"
	"time"

	"github.com/paisa/paisa/internal/events"
	"github.com/paisa/paisa/internal/model"
	"github.com/paisa/paisa/internal/repository"
)

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUserProfile(ctx context.Context, user *model.User) error
	ListUsers(ctx context.Context) ([]*model.User, error)
}

// TransactionStore persists transactions. Every call is scoped by owner.
type TransactionStore interface {
	ListTransactions(ctx context.Context, userID string, filter repository.TransactionFilter) ([]*model.Transaction, error)
	GetTransaction(ctx context.Context, userID, id string) (*model.Transaction, error)
	CreateTransaction(ctx context.Context, tx *model.Transaction) error
	UpdateTransaction(ctx context.Context, userID string, tx *model.Transaction) error
	DeleteTransaction(ctx context.Context, userID, id string) error
}

// BudgetStore persists budgets. Every call is scoped by owner.
type BudgetStore interface {
	ListBudgets(ctx context.Context, userID string) ([]*model.Budget, error)
	GetBudget(ctx context.Context, userID, id string) (*model.Budget, error)
	CreateBudget(ctx context.Context, b *model.Budget) error
	UpdateBudget(ctx context.Context, userID string, b *model.Budget) error
	DeleteBudget(ctx context.Context, userID, id string) error
}

// Store is the full ledger store.
type Store interface {
	UserStore
	TransactionStore
	BudgetStore
}

// TokenRevoker tracks logged-out tokens.
type TokenRevoker interface {
	RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

// EventPublisher receives ledger change events.
type EventPublisher interface {
	PublishAsync(event events.Event)
}

type noopPublisher struct{}

func (noopPublisher) PublishAsync(events.Event) {}

// Package memory is an in-process ledger store used by tests and local runs
// without PostgreSQL.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/paisa/paisa/internal/model"
	"github.com/paisa/paisa/internal/repository"
)

// Store keeps users, transactions and budgets in maps guarded by one mutex.
// Values are copied on the way in and out so callers never share memory
// with the store.
type Store struct {
	mu           sync.RWMutex
	users        map[string]*model.User
	emails       map[string]string
	transactions map[string]*model.Transaction
	budgets      map[string]*model.Budget
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		users:        make(map[string]*model.User),
		emails:       make(map[string]string),
		transactions: make(map[string]*model.Transaction),
		budgets:      make(map[string]*model.Budget),
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error {
	return nil
}

// CreateUser stores a user, rejecting duplicate emails case-insensitively.
func (s *Store) CreateUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, ok := s.emails[key]; ok {
		return repository.ErrEmailExists
	}

	u := copyUser(user)
	u.Email = key
	s.users[u.ID] = u
	s.emails[key] = u.ID
	return nil
}

// GetUserByID retrieves a user by their ID.
func (s *Store) GetUserByID(_ context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return copyUser(u), nil
}

// GetUserByEmail retrieves a user by email, ignoring case.
func (s *Store) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[strings.ToLower(email)]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return copyUser(s.users[id]), nil
}

// UpdateUserProfile writes the mutable profile fields of a user.
func (s *Store) UpdateUserProfile(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[user.ID]
	if !ok {
		return repository.ErrUserNotFound
	}

	next := copyUser(user)
	u.Name = next.Name
	u.MonthlyBudget = next.MonthlyBudget
	u.SavingsGoal = next.SavingsGoal
	u.CurrentBalance = next.CurrentBalance
	u.UpdatedAt = next.UpdatedAt
	return nil
}

// ListUsers returns every user, newest first.
func (s *Store) ListUsers(context.Context) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*model.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, copyUser(u))
	}
	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.After(users[j].CreatedAt)
		}
		return users[i].ID > users[j].ID
	})
	return users, nil
}

// CreateTransaction stores a transaction.
func (s *Store) CreateTransaction(_ context.Context, tx *model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transactions[tx.ID] = copyTransaction(tx)
	return nil
}

// GetTransaction retrieves one of the user's transactions.
func (s *Store) GetTransaction(_ context.Context, userID, id string) (*model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.transactions[id]
	if !ok || tx.UserID != userID {
		return nil, repository.ErrTransactionNotFound
	}
	return copyTransaction(tx), nil
}

// ListTransactions returns the user's transactions ordered by date then ID, newest first.
func (s *Store) ListTransactions(_ context.Context, userID string, filter repository.TransactionFilter) ([]*model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	txs := make([]*model.Transaction, 0)
	for _, tx := range s.transactions {
		if tx.UserID == userID && filter.Matches(tx) {
			txs = append(txs, copyTransaction(tx))
		}
	}
	sort.Slice(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date) {
			return txs[i].Date.After(txs[j].Date)
		}
		return txs[i].ID > txs[j].ID
	})
	return txs, nil
}

// UpdateTransaction overwrites one of the user's transactions.
func (s *Store) UpdateTransaction(_ context.Context, userID string, tx *model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.transactions[tx.ID]
	if !ok || cur.UserID != userID {
		return repository.ErrTransactionNotFound
	}

	next := copyTransaction(tx)
	next.UserID = cur.UserID
	next.CreatedAt = cur.CreatedAt
	s.transactions[tx.ID] = next
	return nil
}

// DeleteTransaction removes one of the user's transactions.
func (s *Store) DeleteTransaction(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.transactions[id]
	if !ok || tx.UserID != userID {
		return repository.ErrTransactionNotFound
	}
	delete(s.transactions, id)
	return nil
}

// CreateBudget stores a budget.
func (s *Store) CreateBudget(_ context.Context, b *model.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *b
	s.budgets[b.ID] = &cp
	return nil
}

// GetBudget retrieves one of the user's budgets.
func (s *Store) GetBudget(_ context.Context, userID, id string) (*model.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.budgets[id]
	if !ok || b.UserID != userID {
		return nil, repository.ErrBudgetNotFound
	}
	cp := *b
	return &cp, nil
}

// ListBudgets returns all of the user's budgets ordered by category.
func (s *Store) ListBudgets(_ context.Context, userID string) ([]*model.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	budgets := make([]*model.Budget, 0)
	for _, b := range s.budgets {
		if b.UserID == userID {
			cp := *b
			budgets = append(budgets, &cp)
		}
	}
	sort.Slice(budgets, func(i, j int) bool {
		a, b := budgets[i], budgets[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.Before(b.UpdatedAt)
		}
		return a.ID < b.ID
	})
	return budgets, nil
}

// UpdateBudget overwrites category and amount of one of the user's budgets.
func (s *Store) UpdateBudget(_ context.Context, userID string, b *model.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.budgets[b.ID]
	if !ok || cur.UserID != userID {
		return repository.ErrBudgetNotFound
	}
	cur.Category = b.Category
	cur.Amount = b.Amount
	cur.UpdatedAt = b.UpdatedAt
	return nil
}

// DeleteBudget removes one of the user's budgets.
func (s *Store) DeleteBudget(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.budgets[id]
	if !ok || b.UserID != userID {
		return repository.ErrBudgetNotFound
	}
	delete(s.budgets, id)
	return nil
}

func copyUser(u *model.User) *model.User {
	cp := *u
	cp.MonthlyBudget = copyDecimal(u.MonthlyBudget)
	cp.SavingsGoal = copyDecimal(u.SavingsGoal)
	cp.CurrentBalance = copyDecimal(u.CurrentBalance)
	return &cp
}

func copyTransaction(tx *model.Transaction) *model.Transaction {
	cp := *tx
	cp.Tags = append(make([]string, 0, len(tx.Tags)), tx.Tags...)
	return &cp
}

func copyDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}

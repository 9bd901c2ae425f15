package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paisa/paisa/internal/model"
	"github.com/paisa/paisa/internal/repository"
)

func newTx(id, userID string, typ model.TransactionType, category string, date time.Time) *model.Transaction {
	return &model.Transaction{
		ID:            id,
		UserID:        userID,
		Amount:        decimal.NewFromInt(10),
		Type:          typ,
		Category:      category,
		Date:          date,
		PaymentMethod: model.PaymentOther,
		Tags:          []string{"a"},
	}
}

func TestStore_UserEmailIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()

	if err := s.CreateUser(ctx, &model.User{ID: "u1", Email: "Asha@Example.com"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if err := s.CreateUser(ctx, &model.User{ID: "u2", Email: "asha@example.COM"}); !errors.Is(err, repository.ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}

	u, err := s.GetUserByEmail(ctx, "ASHA@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if u.ID != "u1" || u.Email != "asha@example.com" {
		t.Errorf("got %+v", u)
	}

	if _, err := s.GetUserByID(ctx, "missing"); !errors.Is(err, repository.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestStore_TransactionsAreOwnerScoped(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	now := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	if err := s.CreateTransaction(ctx, newTx("t1", "alice", model.TransactionExpense, "Food", now)); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	got, err := s.ListTransactions(ctx, "alice", repository.TransactionFilter{})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(got) != 1 || got[0].ID != "t1" {
		t.Errorf("owner list = %+v, want exactly t1", got)
	}

	other, _ := s.ListTransactions(ctx, "bob", repository.TransactionFilter{})
	if len(other) != 0 {
		t.Errorf("bob should see nothing, got %+v", other)
	}

	if _, err := s.GetTransaction(ctx, "bob", "t1"); !errors.Is(err, repository.ErrTransactionNotFound) {
		t.Errorf("foreign get: expected ErrTransactionNotFound, got %v", err)
	}
	if err := s.UpdateTransaction(ctx, "bob", newTx("t1", "bob", model.TransactionIncome, "x", now)); !errors.Is(err, repository.ErrTransactionNotFound) {
		t.Errorf("foreign update: expected ErrTransactionNotFound, got %v", err)
	}
	if err := s.DeleteTransaction(ctx, "bob", "t1"); !errors.Is(err, repository.ErrTransactionNotFound) {
		t.Errorf("foreign delete: expected ErrTransactionNotFound, got %v", err)
	}

	if err := s.DeleteTransaction(ctx, "alice", "t1"); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if _, err := s.GetTransaction(ctx, "alice", "t1"); !errors.Is(err, repository.ErrTransactionNotFound) {
		t.Errorf("deleted get: expected ErrTransactionNotFound, got %v", err)
	}
}

func TestStore_ListTransactionsOrderAndFilter(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	day := func(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }

	for _, tx := range []*model.Transaction{
		newTx("a", "u", model.TransactionExpense, "Food", day(1)),
		newTx("b", "u", model.TransactionIncome, "Salary", day(5)),
		newTx("c", "u", model.TransactionExpense, "Food", day(5)),
		newTx("d", "u", model.TransactionExpense, "Rent", day(9)),
	} {
		if err := s.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("CreateTransaction: %v", err)
		}
	}

	from, to := day(2), day(8)
	tests := []struct {
		name   string
		filter repository.TransactionFilter
		want   []string
	}{
		{"all", repository.TransactionFilter{}, []string{"d", "c", "b", "a"}},
		{"expense", repository.TransactionFilter{Type: model.TransactionExpense}, []string{"d", "c", "a"}},
		{"category", repository.TransactionFilter{Category: "Food"}, []string{"c", "a"}},
		{"range", repository.TransactionFilter{From: &from, To: &to}, []string{"c", "b"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := s.ListTransactions(ctx, "u", tt.filter)
			if err != nil {
				t.Fatalf("ListTransactions: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d transactions, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("position %d = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestStore_ReturnsCopies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	tx := newTx("t1", "u", model.TransactionExpense, "Food", time.Now())
	if err := s.CreateTransaction(ctx, tx); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	tx.Tags[0] = "mutated"
	got, _ := s.GetTransaction(ctx, "u", "t1")
	if got.Tags[0] != "a" {
		t.Errorf("store shares tag slice with caller: %v", got.Tags)
	}

	got.Category = "changed"
	again, _ := s.GetTransaction(ctx, "u", "t1")
	if again.Category != "Food" {
		t.Errorf("store returned shared pointer, category = %q", again.Category)
	}
}

func TestStore_Budgets(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	now := time.Now().UTC()

	b := &model.Budget{ID: "b1", UserID: "u", Category: "Food", Amount: decimal.NewFromInt(100), UpdatedAt: now}
	if err := s.CreateBudget(ctx, b); err != nil {
		t.Fatalf("CreateBudget: %v", err)
	}

	if _, err := s.GetBudget(ctx, "other", "b1"); !errors.Is(err, repository.ErrBudgetNotFound) {
		t.Errorf("foreign get: expected ErrBudgetNotFound, got %v", err)
	}

	b.Amount = decimal.NewFromInt(250)
	if err := s.UpdateBudget(ctx, "u", b); err != nil {
		t.Fatalf("UpdateBudget: %v", err)
	}
	got, err := s.GetBudget(ctx, "u", "b1")
	if err != nil {
		t.Fatalf("GetBudget: %v", err)
	}
	if !got.Amount.Equal(decimal.NewFromInt(250)) {
		t.Errorf("amount = %s, want 250", got.Amount)
	}

	list, _ := s.ListBudgets(ctx, "u")
	if len(list) != 1 {
		t.Errorf("ListBudgets = %d entries, want 1", len(list))
	}

	if err := s.DeleteBudget(ctx, "u", "b1"); err != nil {
		t.Fatalf("DeleteBudget: %v", err)
	}
	if err := s.DeleteBudget(ctx, "u", "b1"); !errors.Is(err, repository.ErrBudgetNotFound) {
		t.Errorf("second delete: expected ErrBudgetNotFound, got %v", err)
	}
}

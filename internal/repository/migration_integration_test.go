//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/paisa/paisa/internal/model"
	"github.com/paisa/paisa/internal/testutil"
)

// ============================================================================
// Migration Integration Tests
// ============================================================================

func TestIntegrationMigration_ApplyAllTables(t *testing.T) {
	ctx, _, pool := newIntegrationEnv(t)

	for _, table := range []string{"users", "transactions", "budgets"} {
		t.Run(table, func(t *testing.T) {
			exists, err := tableExists(ctx, pool, table)
			if err != nil {
				t.Fatalf("tableExists failed: %v", err)
			}
			if !exists {
				t.Errorf("Table %q should exist after migrations", table)
			}
		})
	}
}

func TestIntegrationMigration_TransactionsTableSchema(t *testing.T) {
	ctx, _, pool := newIntegrationEnv(t)

	expectedColumns := []string{
		"id",
		"user_id",
		"amount",
		"type",
		"category",
		"date",
		"description",
		"payment_method",
		"recurring",
		"tags",
		"created_at",
		"updated_at",
	}

	for _, col := range expectedColumns {
		t.Run(col, func(t *testing.T) {
			exists, err := columnExists(ctx, pool, "transactions", col)
			if err != nil {
				t.Fatalf("columnExists failed: %v", err)
			}
			if !exists {
				t.Errorf("Column %q should exist in transactions table", col)
			}
		})
	}
}

func TestIntegrationMigration_Idempotent(t *testing.T) {
	newIntegrationEnv(t)

	if err := RunMigrations(testutil.RequireEnv(t, "DATABASE_URL")); err != nil {
		t.Fatalf("second run should be a no-op: %v", err)
	}
}

// ============================================================================
// Repository Integration Tests
// ============================================================================

func TestIntegrationRepository_UserEmailUnique(t *testing.T) {
	ctx, repo, _ := newIntegrationEnv(t)

	user := testutil.NewTestUser(t, "Asha@Example.com")
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	dup := testutil.NewTestUser(t, "asha@example.com")
	if err := repo.CreateUser(ctx, dup); !errors.Is(err, ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}

	got, err := repo.GetUserByEmail(ctx, "ASHA@EXAMPLE.COM")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("got user %s, want %s", got.ID, user.ID)
	}
}

func TestIntegrationRepository_UserProfileDecimals(t *testing.T) {
	ctx, repo, _ := newIntegrationEnv(t)

	user := testutil.NewTestUser(t, "goal@example.com")
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	got, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if got.SavingsGoal != nil {
		t.Errorf("SavingsGoal should be NULL, got %v", got.SavingsGoal)
	}

	goal := decimal.RequireFromString("5000.50")
	got.SavingsGoal = &goal
	got.UpdatedAt = time.Now().UTC()
	if err := repo.UpdateUserProfile(ctx, got); err != nil {
		t.Fatalf("UpdateUserProfile: %v", err)
	}

	again, _ := repo.GetUserByID(ctx, user.ID)
	if again.SavingsGoal == nil || !again.SavingsGoal.Equal(goal) {
		t.Errorf("SavingsGoal = %v, want %s", again.SavingsGoal, goal)
	}
}

func TestIntegrationRepository_TransactionRoundTrip(t *testing.T) {
	ctx, repo, _ := newIntegrationEnv(t)

	alice := testutil.NewTestUser(t, "alice@example.com")
	bob := testutil.NewTestUser(t, "bob@example.com")
	for _, u := range []*model.User{alice, bob} {
		if err := repo.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser: %v", err)
		}
	}

	tx := testutil.NewTestTransaction(t, alice.ID, "Food", "12.34")
	tx.Tags = []string{"weekly", "groceries"}
	if err := repo.CreateTransaction(ctx, tx); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	list, err := repo.ListTransactions(ctx, alice.ID, TransactionFilter{})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(list) != 1 || list[0].ID != tx.ID {
		t.Fatalf("alice list = %+v, want exactly %s", list, tx.ID)
	}
	if !list[0].Amount.Equal(tx.Amount) {
		t.Errorf("amount = %s, want %s", list[0].Amount, tx.Amount)
	}
	if len(list[0].Tags) != 2 || list[0].Tags[0] != "weekly" {
		t.Errorf("tags = %v", list[0].Tags)
	}

	bobs, _ := repo.ListTransactions(ctx, bob.ID, TransactionFilter{})
	if len(bobs) != 0 {
		t.Errorf("bob should not see alice's transaction, got %d", len(bobs))
	}

	if _, err := repo.GetTransaction(ctx, bob.ID, tx.ID); !errors.Is(err, ErrTransactionNotFound) {
		t.Errorf("foreign get: expected ErrTransactionNotFound, got %v", err)
	}
	if err := repo.DeleteTransaction(ctx, bob.ID, tx.ID); !errors.Is(err, ErrTransactionNotFound) {
		t.Errorf("foreign delete: expected ErrTransactionNotFound, got %v", err)
	}

	tx.Category = "Groceries"
	tx.UpdatedAt = time.Now().UTC()
	if err := repo.UpdateTransaction(ctx, alice.ID, tx); err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	got, _ := repo.GetTransaction(ctx, alice.ID, tx.ID)
	if got.Category != "Groceries" {
		t.Errorf("category = %q, want Groceries", got.Category)
	}

	if err := repo.DeleteTransaction(ctx, alice.ID, tx.ID); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
}

func TestIntegrationRepository_Budgets(t *testing.T) {
	ctx, repo, _ := newIntegrationEnv(t)

	user := testutil.NewTestUser(t, "budget@example.com")
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	now := time.Now().UTC()
	b := &model.Budget{
		ID:        testutil.UniqueID("bgt"),
		UserID:    user.ID,
		Category:  "Food",
		Amount:    decimal.NewFromInt(300),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.CreateBudget(ctx, b); err != nil {
		t.Fatalf("CreateBudget: %v", err)
	}

	if _, err := repo.GetBudget(ctx, "someone-else", b.ID); !errors.Is(err, ErrBudgetNotFound) {
		t.Errorf("foreign get: expected ErrBudgetNotFound, got %v", err)
	}

	list, err := repo.ListBudgets(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListBudgets: %v", err)
	}
	if len(list) != 1 || !list[0].Amount.Equal(b.Amount) {
		t.Errorf("ListBudgets = %+v", list)
	}

	if err := repo.DeleteBudget(ctx, user.ID, b.ID); err != nil {
		t.Fatalf("DeleteBudget: %v", err)
	}
	if err := repo.DeleteBudget(ctx, user.ID, b.ID); !errors.Is(err, ErrBudgetNotFound) {
		t.Errorf("second delete: expected ErrBudgetNotFound, got %v", err)
	}
}

// ============================================================================
// Helper Functions
// ============================================================================

func tableExists(ctx context.Context, pool *pgxpool.Pool, tableName string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = 'public'
			AND table_name = $1
		)
	`, tableName).Scan(&exists)
	return exists, err
}

func columnExists(ctx context.Context, pool *pgxpool.Pool, tableName, columnName string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.columns
			WHERE table_schema = 'public'
			AND table_name = $1
			AND column_name = $2
		)
	`, tableName, columnName).Scan(&exists)
	return exists, err
}

// ============================================================================
// Test Environment Setup
// ============================================================================

func newIntegrationEnv(t *testing.T) (context.Context, *Repository, *pgxpool.Pool) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := New(ctx, dbURL, PoolOptions{MaxConns: 4})
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.pool)
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := ResetSchema(dbURL); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	return ctx, repo, repo.pool
}

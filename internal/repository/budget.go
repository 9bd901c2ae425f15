package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/paisa/paisa/internal/model"
)

// ErrBudgetNotFound covers both absent rows and rows owned by another user.
var ErrBudgetNotFound = errors.New("budget not found")

const budgetColumns = `id, user_id, category, amount, created_at, updated_at`

// CreateBudget inserts a new budget.
func (r *Repository) CreateBudget(ctx context.Context, b *model.Budget) error {
	query := `
		INSERT INTO budgets (` + budgetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query, b.ID, b.UserID, b.Category, b.Amount, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create budget: %w", err)
	}

	return nil
}

// GetBudget retrieves one of the user's budgets.
func (r *Repository) GetBudget(ctx context.Context, userID, id string) (*model.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE id = $1 AND user_id = $2`

	b, err := scanBudget(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBudgetNotFound
		}
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}

	return b, nil
}

// ListBudgets returns all of the user's budgets ordered by category.
func (r *Repository) ListBudgets(ctx context.Context, userID string) ([]*model.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE user_id = $1 ORDER BY category, updated_at, id`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	defer rows.Close()

	budgets := make([]*model.Budget, 0)
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budgets: %w", err)
	}

	return budgets, nil
}

// UpdateBudget overwrites category and amount of one of the user's budgets.
func (r *Repository) UpdateBudget(ctx context.Context, userID string, b *model.Budget) error {
	query := `
		UPDATE budgets
		SET category = $3, amount = $4, updated_at = $5
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.pool.Exec(ctx, query, b.ID, userID, b.Category, b.Amount, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update budget: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrBudgetNotFound
	}

	return nil
}

// DeleteBudget removes one of the user's budgets.
func (r *Repository) DeleteBudget(ctx context.Context, userID, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM budgets WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrBudgetNotFound
	}

	return nil
}

func scanBudget(row pgx.Row) (*model.Budget, error) {
	var b model.Budget
	err := row.Scan(&b.ID, &b.UserID, &b.Category, &b.Amount, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

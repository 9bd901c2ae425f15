package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paisa/paisa/internal/events"
	"github.com/paisa/paisa/internal/metrics"
	"github.com/paisa/paisa/internal/model"
	"github.com/paisa/paisa/internal/repository"
)

// BudgetService handles category budgets.
type BudgetService struct {
	store   BudgetStore
	events  EventPublisher
	metrics metrics.Recorder
}

// NewBudgetService creates a new BudgetService.
func NewBudgetService(store BudgetStore, publisher EventPublisher, recorder metrics.Recorder) *BudgetService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &BudgetService{store: store, events: publisher, metrics: recorder}
}

// BudgetInput defines input for creating a budget.
type BudgetInput struct {
	Category string
	Amount   *decimal.Decimal
}

// UpdateBudgetInput defines input for a partial update.
type UpdateBudgetInput struct {
	Category *string
	Amount   *decimal.Decimal
}

// ListBudgets returns the user's budgets.
func (s *BudgetService) ListBudgets(ctx context.Context, userID string) ([]*model.Budget, error) {
	budgets, err := s.store.ListBudgets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	return budgets, nil
}

// GetBudget retrieves one of the user's budgets.
func (s *BudgetService) GetBudget(ctx context.Context, userID, id string) (*model.Budget, error) {
	b, err := s.store.GetBudget(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrBudgetNotFound) {
			return nil, ErrBudgetNotFound
		}
		return nil, err
	}
	return b, nil
}

// CreateBudget sets a spending ceiling for a category.
func (s *BudgetService) CreateBudget(ctx context.Context, userID string, input BudgetInput) (*model.Budget, error) {
	category, err := normalizeCategory(input.Category)
	if err != nil {
		return nil, err
	}
	if err := validateAmount("amount", input.Amount); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	b := &model.Budget{
		ID:        newID(),
		UserID:    userID,
		Category:  category,
		Amount:    *input.Amount,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateBudget(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to create budget: %w", err)
	}

	s.metrics.IncBudgetCreated()
	s.events.PublishAsync(events.New(events.BudgetCreated, userID, b.ID, b))

	return b, nil
}

// UpdateBudget applies a partial update to one of the user's budgets.
func (s *BudgetService) UpdateBudget(ctx context.Context, userID, id string, input UpdateBudgetInput) (*model.Budget, error) {
	b, err := s.GetBudget(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if input.Category != nil {
		if b.Category, err = normalizeCategory(*input.Category); err != nil {
			return nil, err
		}
	}
	if input.Amount != nil {
		if err := validateAmount("amount", input.Amount); err != nil {
			return nil, err
		}
		b.Amount = *input.Amount
	}
	b.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateBudget(ctx, userID, b); err != nil {
		if errors.Is(err, repository.ErrBudgetNotFound) {
			return nil, ErrBudgetNotFound
		}
		return nil, fmt.Errorf("failed to update budget: %w", err)
	}

	s.metrics.IncBudgetUpdated()
	s.events.PublishAsync(events.New(events.BudgetUpdated, userID, b.ID, b))

	return b, nil
}

// DeleteBudget removes one of the user's budgets.
func (s *BudgetService) DeleteBudget(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteBudget(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrBudgetNotFound) {
			return ErrBudgetNotFound
		}
		return fmt.Errorf("failed to delete budget: %w", err)
	}

	s.metrics.IncBudgetDeleted()
	s.events.PublishAsync(events.New(events.BudgetDeleted, userID, id, nil))

	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paisa/paisa/internal/model"
	"github.com/paisa/paisa/internal/repository"
)

// UserService handles profile reads and updates.
type UserService struct {
	users UserStore
}

// NewUserService creates a new UserService.
func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

// UpdateProfileInput defines input for a partial profile update.
// Nil fields are left unchanged.
type UpdateProfileInput struct {
	Name           *string
	MonthlyBudget  *decimal.Decimal
	SavingsGoal    *decimal.Decimal
	CurrentBalance *decimal.Decimal
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile applies a partial update to the user's profile.
func (s *UserService) UpdateProfile(ctx context.Context, id string, input UpdateProfileInput) (*model.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name, err := normalizeName(*input.Name)
		if err != nil {
			return nil, err
		}
		user.Name = name
	}
	if err := validateProfileMoney(input.MonthlyBudget, input.SavingsGoal, input.CurrentBalance); err != nil {
		return nil, err
	}
	if input.MonthlyBudget != nil {
		user.MonthlyBudget = input.MonthlyBudget
	}
	if input.SavingsGoal != nil {
		user.SavingsGoal = input.SavingsGoal
	}
	if input.CurrentBalance != nil {
		user.CurrentBalance = input.CurrentBalance
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.users.UpdateUserProfile(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// ListUsers returns every account. Callers must restrict this to admins.
func (s *UserService) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

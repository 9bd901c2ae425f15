package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/paisa/paisa/internal/events"
	"github.com/paisa/paisa/internal/metrics"
	"github.com/paisa/paisa/internal/model"
	"github.com/paisa/paisa/internal/repository"
)

// TransactionService handles ledger entries.
type TransactionService struct {
	store   TransactionStore
	events  EventPublisher
	metrics metrics.Recorder
	now     func() time.Time
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(store TransactionStore, publisher EventPublisher, recorder metrics.Recorder) *TransactionService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &TransactionService{
		store:   store,
		events:  publisher,
		metrics: recorder,
		now:     time.Now,
	}
}

// CreateTransactionInput defines input for recording a transaction.
type CreateTransactionInput struct {
	Amount        *decimal.Decimal
	Type          string
	Category      string
	Date          *time.Time
	Description   string
	PaymentMethod string
	Recurring     bool
	Tags          []string
}

// UpdateTransactionInput defines input for a partial update.
// Nil fields are left unchanged.
type UpdateTransactionInput struct {
	Amount        *decimal.Decimal
	Type          *string
	Category      *string
	Date          *time.Time
	Description   *string
	PaymentMethod *string
	Recurring     *bool
	Tags          *[]string
}

// ListTransactions returns the user's transactions, newest first.
func (s *TransactionService) ListTransactions(ctx context.Context, userID string, filter repository.TransactionFilter) ([]*model.Transaction, error) {
	if filter.Type != "" && !filter.Type.IsValid() {
		return nil, invalid("type", "must be income or expense")
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, invalid("from", "must not be after to")
	}

	txs, err := s.store.ListTransactions(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txs, nil
}

// GetTransaction retrieves one of the user's transactions.
func (s *TransactionService) GetTransaction(ctx context.Context, userID, id string) (*model.Transaction, error) {
	tx, err := s.store.GetTransaction(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return tx, nil
}

// CreateTransaction validates and records a transaction for the user.
func (s *TransactionService) CreateTransaction(ctx context.Context, userID string, input CreateTransactionInput) (*model.Transaction, error) {
	if err := validateAmount("amount", input.Amount); err != nil {
		return nil, err
	}
	txType, err := parseTransactionType(input.Type)
	if err != nil {
		return nil, err
	}
	category, err := normalizeCategory(input.Category)
	if err != nil {
		return nil, err
	}
	description, err := normalizeDescription(input.Description)
	if err != nil {
		return nil, err
	}
	method, err := parsePaymentMethod(input.PaymentMethod)
	if err != nil {
		return nil, err
	}
	tags, err := normalizeTags(input.Tags)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	date := now
	if input.Date != nil {
		date = input.Date.UTC()
	}

	tx := &model.Transaction{
		ID:            newID(),
		UserID:        userID,
		Amount:        *input.Amount,
		Type:          txType,
		Category:      category,
		Date:          date,
		Description:   description,
		PaymentMethod: method,
		Recurring:     input.Recurring,
		Tags:          tags,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.CreateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	s.metrics.IncTransactionCreated()
	s.events.PublishAsync(events.New(events.TransactionCreated, userID, tx.ID, tx))

	return tx, nil
}

// UpdateTransaction applies a partial update to one of the user's transactions.
func (s *TransactionService) UpdateTransaction(ctx context.Context, userID, id string, input UpdateTransactionInput) (*model.Transaction, error) {
	tx, err := s.GetTransaction(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if input.Amount != nil {
		if err := validateAmount("amount", input.Amount); err != nil {
			return nil, err
		}
		tx.Amount = *input.Amount
	}
	if input.Type != nil {
		if tx.Type, err = parseTransactionType(*input.Type); err != nil {
			return nil, err
		}
	}
	if input.Category != nil {
		if tx.Category, err = normalizeCategory(*input.Category); err != nil {
			return nil, err
		}
	}
	if input.Date != nil {
		tx.Date = input.Date.UTC()
	}
	if input.Description != nil {
		if tx.Description, err = normalizeDescription(*input.Description); err != nil {
			return nil, err
		}
	}
	if input.PaymentMethod != nil {
		if tx.PaymentMethod, err = parsePaymentMethod(*input.PaymentMethod); err != nil {
			return nil, err
		}
	}
	if input.Recurring != nil {
		tx.Recurring = *input.Recurring
	}
	if input.Tags != nil {
		if tx.Tags, err = normalizeTags(*input.Tags); err != nil {
			return nil, err
		}
	}
	tx.UpdatedAt = s.now().UTC()

	if err := s.store.UpdateTransaction(ctx, userID, tx); err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	s.metrics.IncTransactionUpdated()
	s.events.PublishAsync(events.New(events.TransactionUpdated, userID, tx.ID, tx))

	return tx, nil
}

// DeleteTransaction removes one of the user's transactions.
func (s *TransactionService) DeleteTransaction(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			return ErrTransactionNotFound
		}
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	s.metrics.IncTransactionDeleted()
	s.events.PublishAsync(events.New(events.TransactionDeleted, userID, id, nil))

	return nil
}

func parseTransactionType(v string) (model.TransactionType, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", invalid("type", "is required")
	}
	t := model.TransactionType(strings.ToLower(v))
	if !t.IsValid() {
		return "", invalid("type", "must be income or expense")
	}
	return t, nil
}

func parsePaymentMethod(v string) (model.PaymentMethod, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return model.PaymentOther, nil
	}
	m := model.PaymentMethod(strings.ToLower(v))
	if !m.IsValid() {
		return "", invalid("paymentMethod", "must be one of cash, card, upi, bank_transfer, other")
	}
	return m, nil
}

func normalizeCategory(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", invalid("category", "is required")
	}
	if utf8.RuneCountInString(v) > model.MaxCategoryLength {
		return "", invalid("category", "must be at most %d characters", model.MaxCategoryLength)
	}
	return v, nil
}

func normalizeDescription(v string) (string, error) {
	v = strings.TrimSpace(v)
	if utf8.RuneCountInString(v) > model.MaxDescriptionLength {
		return "", invalid("description", "must be at most %d characters", model.MaxDescriptionLength)
	}
	return v, nil
}

func normalizeTags(tags []string) ([]string, error) {
	tags = model.NormalizeTags(tags)
	if len(tags) > model.MaxTags {
		return nil, invalid("tags", "must have at most %d entries", model.MaxTags)
	}
	for i, tag := range tags {
		if utf8.RuneCountInString(tag) > model.MaxTagLength {
			return nil, invalid(fmt.Sprintf("tags[%d]", i), "must be at most %d characters", model.MaxTagLength)
		}
	}
	return tags, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/paisa/paisa/internal/auth"
	"github.com/paisa/paisa/internal/events"
	"github.com/paisa/paisa/internal/metrics"
	"github.com/paisa/paisa/internal/model"
	"github.com/paisa/paisa/internal/repository"
)

const (
	maxNameLength  = 255
	maxEmailLength = 255
)

// AuthService registers users and issues, verifies and revokes their tokens.
type AuthService struct {
	users   UserStore
	tokens  *auth.TokenIssuer
	revoker TokenRevoker
	events  EventPublisher
	metrics metrics.Recorder
	logger  *slog.Logger
	admins  map[string]bool
}

// NewAuthService creates a new AuthService. revoker may be nil, in which
// case logout is accepted but tokens stay valid until they expire.
func NewAuthService(users UserStore, tokens *auth.TokenIssuer, revoker TokenRevoker, publisher EventPublisher, recorder metrics.Recorder, logger *slog.Logger) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &AuthService{
		users:   users,
		tokens:  tokens,
		revoker: revoker,
		events:  publisher,
		metrics: recorder,
		logger:  logger.With("component", "service.auth"),
		admins:  make(map[string]bool),
	}
}

// SetAdminEmails marks accounts registered with these addresses as admins.
func (s *AuthService) SetAdminEmails(emails []string) {
	for _, e := range emails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			s.admins[e] = true
		}
	}
}

// Session is a user together with a freshly issued bearer token.
type Session struct {
	User      *model.User
	Token     string
	ExpiresAt time.Time
}

// RegisterInput defines input for signing up.
type RegisterInput struct {
	Name           string
	Email          string
	Password       string
	MonthlyBudget  *decimal.Decimal
	SavingsGoal    *decimal.Decimal
	CurrentBalance *decimal.Decimal
}

// Register creates an account and signs the user in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	name, err := normalizeName(input.Name)
	if err != nil {
		return nil, err
	}
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if err := auth.ValidatePassword(input.Password); err != nil {
		return nil, invalid("password", "%s", err.Error())
	}
	if err := validateProfileMoney(input.MonthlyBudget, input.SavingsGoal, input.CurrentBalance); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:             newID(),
		Name:           name,
		Email:          email,
		PasswordHash:   hash,
		IsAdmin:        s.admins[email],
		MonthlyBudget:  input.MonthlyBudget,
		SavingsGoal:    input.SavingsGoal,
		CurrentBalance: input.CurrentBalance,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.IncSignup()
	s.events.PublishAsync(events.New(events.UserRegistered, user.ID, user.ID, nil))

	return s.issue(user)
}

// Authenticate checks credentials and signs the user in.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			auth.BurnVerify(password)
			s.metrics.IncLogin("failed")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		s.logger.Error("stored password hash is unreadable", "user_id", user.ID, "error", err)
		s.metrics.IncLogin("failed")
		return nil, ErrInvalidCredentials
	}
	if !ok {
		s.metrics.IncLogin("failed")
		return nil, ErrInvalidCredentials
	}

	s.metrics.IncLogin("success")
	return s.issue(user)
}

// Verify validates a bearer token and checks it has not been revoked.
// It returns auth.ErrInvalidToken, auth.ErrExpiredToken or ErrTokenRevoked
// for rejected tokens.
func (s *AuthService) Verify(ctx context.Context, token string) (*model.AuthContext, error) {
	ac, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	if s.revoker != nil {
		revoked, err := s.revoker.IsTokenRevoked(ctx, ac.TokenID)
		if err != nil {
			// Fail open on Redis errors - accept the token.
			s.logger.Warn("token revocation check failed", "error", err)
		} else if revoked {
			return nil, ErrTokenRevoked
		}
	}

	return ac, nil
}

// Logout revokes the token described by ac until it would have expired.
func (s *AuthService) Logout(ctx context.Context, ac *model.AuthContext) error {
	if s.revoker == nil {
		return nil
	}
	if err := s.revoker.RevokeToken(ctx, ac.TokenID, time.Until(ac.ExpiresAt)); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (s *AuthService) issue(user *model.User) (*Session, error) {
	token, ac, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &Session{User: user, Token: token, ExpiresAt: ac.ExpiresAt}, nil
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("name", "is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", invalid("name", "must be at most %d characters", maxNameLength)
	}
	return name, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", invalid("email", "is required")
	}
	if len(email) > maxEmailLength {
		return "", invalid("email", "must be at most %d characters", maxEmailLength)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", invalid("email", "must be a valid email address")
	}
	return email, nil
}

func validateProfileMoney(monthlyBudget, savingsGoal, currentBalance *decimal.Decimal) error {
	if monthlyBudget != nil {
		if err := validateMoney("monthlyBudget", *monthlyBudget, true); err != nil {
			return err
		}
	}
	if savingsGoal != nil {
		if err := validateMoney("savingsGoal", *savingsGoal, true); err != nil {
			return err
		}
	}
	if currentBalance != nil {
		if err := validateMoney("currentBalance", *currentBalance, true); err != nil {
			return err
		}
	}
	return nil
}

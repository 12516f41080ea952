package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cardiopredict/cardiopredict/internal/auth"
	"github.com/cardiopredict/cardiopredict/internal/metrics"
	"github.com/cardiopredict/cardiopredict/internal/model"
	"github.com/cardiopredict/cardiopredict/internal/repository"
)

// TokenTypeBearer is the only token type issued.
const TokenTypeBearer = "bearer"

// RegisterInput defines input for creating an account.
type RegisterInput struct {
	Email       string `json:"email" validate:"required,email,max=255"`
	Username    string `json:"username" validate:"required,max=100"`
	FirstName   string `json:"first_name" validate:"max=100"`
	LastName    string `json:"last_name" validate:"max=100"`
	Password    string `json:"password" validate:"required"`
	Role        string `json:"role" validate:"omitempty,oneof=user admin"`
	PhoneNumber string `json:"phone_number" validate:"max=32"`
}

// Token is an issued access token.
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

// AuthService registers accounts and exchanges credentials for tokens.
type AuthService struct {
	users   UserStore
	hasher  PasswordHasher
	issuer  auth.TokenIssuer
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, hasher PasswordHasher, issuer auth.TokenIssuer, recorder metrics.Recorder, logger *slog.Logger) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		users:   users,
		hasher:  hasher,
		issuer:  issuer,
		metrics: recorder,
		logger:  logger,
	}
}

// Register creates an active account.
// Email and username must both be unused.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	input.Email = strings.TrimSpace(input.Email)
	input.Username = strings.TrimSpace(input.Username)

	if err := validateStruct(input); err != nil {
		return nil, err
	}

	if err := s.checkAvailable(ctx, input.Email, input.Username); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := input.Role
	if role == "" {
		role = model.RoleUser
	}

	user := &model.User{
		Email:          input.Email,
		Username:       input.Username,
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		HashedPassword: hash,
		IsActive:       true,
		Role:           role,
		PhoneNumber:    input.PhoneNumber,
	}

	// The unique constraints still decide a race between two registrations.
	if err := s.users.CreateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return nil, ErrEmailTaken
		case errors.Is(err, repository.ErrUsernameExists):
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	s.metrics.IncUserRegistered()
	s.logger.Info("user_registered", "user_id", user.ID, "username", user.Username)

	return user, nil
}

func (s *AuthService) checkAvailable(ctx context.Context, email, username string) error {
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}

	if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}

	return nil
}

// Login verifies credentials and issues a bearer token.
// Unknown users, wrong passwords and inactive accounts all yield ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, username, password string) (*Token, error) {
	if username == "" || password == "" {
		return nil, s.loginFailed(username, "missing credentials")
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, s.loginFailed(username, "unknown user")
		}
		return nil, err
	}

	ok, err := s.hasher.Verify(password, user.HashedPassword)
	if err != nil {
		s.logger.Error("stored password hash unreadable", "user_id", user.ID, "error", err)
		return nil, s.loginFailed(username, "bad hash")
	}
	if !ok {
		return nil, s.loginFailed(username, "wrong password")
	}
	if !user.IsActive {
		return nil, s.loginFailed(username, "inactive")
	}

	accessToken, expiresAt, err := s.issuer.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.metrics.IncLogin("success")

	return &Token{
		AccessToken: accessToken,
		TokenType:   TokenTypeBearer,
		ExpiresAt:   expiresAt,
	}, nil
}

func (s *AuthService) loginFailed(username, reason string) error {
	s.metrics.IncLogin("failed")
	s.logger.Info("login_failed", "username", username, "reason", reason)
	return ErrUnauthorized
}

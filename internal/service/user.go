package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/cardiopredict/cardiopredict/internal/model"
	"github.com/cardiopredict/cardiopredict/internal/repository"
)

// UpdateProfileInput is a partial profile update. Nil fields are kept.
type UpdateProfileInput struct {
	FirstName   *string `json:"first_name" validate:"omitempty,max=100"`
	LastName    *string `json:"last_name" validate:"omitempty,max=100"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=32"`
}

// ChangePasswordInput replaces the caller's password.
type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}

// UserService manages the caller's own account.
type UserService struct {
	users  UserStore
	hasher PasswordHasher
}

// NewUserService creates a new UserService.
func NewUserService(users UserStore, hasher PasswordHasher) *UserService {
	return &UserService{users: users, hasher: hasher}
}

// Profile returns the caller's account.
func (s *UserService) Profile(ctx context.Context, caller *model.Claims) (*model.User, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}

	user, err := s.users.GetUserByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return user, nil
}

// UpdateProfile applies the non-nil fields of input to the caller's account.
func (s *UserService) UpdateProfile(ctx context.Context, caller *model.Claims, input UpdateProfileInput) error {
	if caller == nil {
		return ErrUnauthenticated
	}
	if err := validateStruct(input); err != nil {
		return err
	}

	user, err := s.Profile(ctx, caller)
	if err != nil {
		return err
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.PhoneNumber != nil {
		user.PhoneNumber = *input.PhoneNumber
	}

	if err := s.users.UpdateUserProfile(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrNotFound
		}
		return err
	}

	return nil
}

// ChangePassword replaces the caller's password after checking the current one.
func (s *UserService) ChangePassword(ctx context.Context, caller *model.Claims, input ChangePasswordInput) error {
	if caller == nil {
		return ErrUnauthenticated
	}
	if err := validateStruct(input); err != nil {
		return err
	}

	user, err := s.Profile(ctx, caller)
	if err != nil {
		return err
	}

	ok, err := s.hasher.Verify(input.CurrentPassword, user.HashedPassword)
	if err != nil || !ok {
		return ErrUnauthorized
	}

	hash, err := s.hasher.Hash(input.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.UpdateUserPassword(ctx, user.ID, hash); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrNotFound
		}
		return err
	}

	return nil
}

// Package users manages user profiles for authenticated principals.
package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	sl "quizserver/internal/lib/logger"
	"quizserver/internal/models"
	"quizserver/internal/storage"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email is already taken")
)

type Storage interface {
	UserByEmail(ctx context.Context, email string) (models.User, error)
	UpdateUser(ctx context.Context, user models.User) error
}

type Service struct {
	log     *slog.Logger
	storage Storage
}

func New(log *slog.Logger, storage Storage) *Service {
	return &Service{log: log, storage: storage}
}

// Profile returns the user record for the given email.
func (s *Service) Profile(ctx context.Context, email string) (models.User, error) {
	const op = "users.Profile"

	user, err := s.storage.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.User{}, ErrNotFound
		}

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// UpdateProfile changes the user's name and/or email. Empty fields are left
// untouched. Changing the email to one owned by another user fails with
// ErrEmailTaken.
func (s *Service) UpdateProfile(ctx context.Context, email, newEmail, newName string) (models.User, error) {
	const op = "users.UpdateProfile"

	log := s.log.With(slog.String("op", op))

	user, err := s.storage.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.User{}, ErrNotFound
		}

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	if newEmail != "" && newEmail != user.Email {
		_, err := s.storage.UserByEmail(ctx, newEmail)
		if err == nil {
			return models.User{}, ErrEmailTaken
		}
		if !errors.Is(err, storage.ErrUserNotFound) {
			return models.User{}, fmt.Errorf("%s: %w", op, err)
		}

		user.Email = newEmail
	}

	if strings.TrimSpace(newName) != "" {
		user.Name = newName
	}

	if err := s.storage.UpdateUser(ctx, user); err != nil {
		// The uniqueness check above raced against a concurrent signup.
		if errors.Is(err, storage.ErrUserExists) {
			return models.User{}, ErrEmailTaken
		}
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.User{}, ErrNotFound
		}

		log.Error("failed to update user", sl.Err(err))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("profile updated", slog.Int64("uid", user.ID))

	return user, nil
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Rohitkumar43/coditor/internal/apperror"
	"github.com/Rohitkumar43/coditor/internal/model"
	"github.com/Rohitkumar43/coditor/internal/repository"
)

// UserService syncs accounts from the identity provider and serves profile
// lookups. It never creates identities itself: the provider is the source of
// truth and this layer only mirrors it.
type UserService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(users repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// SyncUser mirrors a provider "user.created" event into the local store.
// Idempotent: a replayed webhook for an already-synced subject is a no-op
// and never resets pro-tier state.
func (s *UserService) SyncUser(ctx context.Context, subject, email, name string) (*model.User, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, apperror.ValidationFailed("subject", "subject is required")
	}

	user := &model.User{
		Subject: subject,
		Email:   strings.TrimSpace(email),
		Name:    strings.TrimSpace(name),
	}
	if err := s.users.SyncUser(ctx, user); err != nil {
		s.logger.Error("failed to sync user",
			slog.String("subject", subject),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("syncing user: %w", err)
	}

	s.logger.Info("user synced",
		slog.String("id", user.ID),
		slog.String("subject", subject),
	)

	return user, nil
}

// GetUser returns the profile for the given subject.
// Returns apperror.ErrNotFound when the subject has never been synced.
func (s *UserService) GetUser(ctx context.Context, subject string) (*model.User, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, apperror.ValidationFailed("subject", "subject is required")
	}

	return s.users.GetUserBySubject(ctx, subject)
}

// UpgradeToPro flips the pro flag for the subject, recording the billing
// references reported by the payment collaborator.
func (s *UserService) UpgradeToPro(ctx context.Context, subject, customerID, orderID string) error {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return apperror.ValidationFailed("subject", "subject is required")
	}

	if err := s.users.SetProStatus(ctx, subject, customerID, orderID); err != nil {
		return err
	}

	s.logger.Info("user upgraded to pro", slog.String("subject", subject))
	return nil
}

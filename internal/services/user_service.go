package services

import (
	"context"
	"fmt"

	"queens/internal/apperrors"
	"queens/internal/models"
	"queens/internal/repositories"

	"github.com/sirupsen/logrus"
)

// UserService handles profile reads and updates.
type UserService struct {
	userRepo repositories.UserRepository
	log      logrus.FieldLogger
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository, log logrus.FieldLogger) *UserService {
	return &UserService{userRepo: userRepo, log: log}
}

// GetAllUsers returns a page of users.
func (s *UserService) GetAllUsers(ctx context.Context, skip, limit int) ([]models.User, error) {
	return s.userRepo.List(ctx, skip, limit)
}

// GetUser returns one user by email.
func (s *UserService) GetUser(ctx context.Context, email string) (*models.User, error) {
	return s.userRepo.GetByEmail(ctx, normalizeEmail(email))
}

// UpdateUser applies a partial update to the caller's own profile.
// Applying the same request twice leaves the same stored state.
func (s *UserService) UpdateUser(ctx context.Context, caller, email string, req *models.UserUpdateRequest) (*models.User, error) {
	email = normalizeEmail(email)
	if normalizeEmail(caller) != email {
		return nil, apperrors.Unauthorized("you may only update your own profile")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	patch, fields := req.Patch()
	if len(fields) == 0 {
		return user, nil
	}
	if err := s.userRepo.UpdateFields(ctx, email, patch, fields); err != nil {
		return nil, fmt.Errorf("failed to update user %s: %w", email, err)
	}
	return s.userRepo.GetByEmail(ctx, email)
}

// DisableUser soft-deletes the caller's own account.
func (s *UserService) DisableUser(ctx context.Context, caller, email string) error {
	email = normalizeEmail(email)
	if normalizeEmail(caller) != email {
		return apperrors.Unauthorized("you may only disable your own account")
	}
	if err := s.userRepo.SoftDelete(ctx, email); err != nil {
		return err
	}
	s.log.WithField("email", email).Info("user disabled")
	return nil
}

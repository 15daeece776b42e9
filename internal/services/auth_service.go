package services

import (
	"context"
	"fmt"

	"queens/internal/apperrors"
	"queens/internal/identity"
	"queens/internal/models"
	"queens/internal/repositories"

	"github.com/sirupsen/logrus"
)

// AuthService handles signup, signin and session verification.
type AuthService struct {
	userRepo repositories.UserRepository
	gateway  identity.Gateway
	log      logrus.FieldLogger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, gateway identity.Gateway, log logrus.FieldLogger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		gateway:  gateway,
		log:      log,
	}
}

// RegisterUser registers the account with the identity provider and stores the profile.
// If the profile cannot be stored the provider account is removed again.
func (s *AuthService) RegisterUser(ctx context.Context, req *models.SignUpRequest) (*models.User, error) {
	email := normalizeEmail(req.Email)

	if existingUser, err := s.userRepo.GetByEmail(ctx, email); err == nil && existingUser != nil {
		return nil, apperrors.Conflict(fmt.Sprintf("email '%s' already registered", email))
	} else if err != nil && !apperrors.Is(err, apperrors.KindNotFound) {
		return nil, err
	}

	subject, err := s.gateway.Register(ctx, email, req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to register identity: %w", err)
	}

	user := &models.User{
		Email:       email,
		AuthSubject: subject,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Age:         req.Age,
		Profession:  req.Profession,
		University:  req.University,
		Skills:      nonNil(req.Skills),
		Interests:   nonNil(req.Interests),
		Assignments: []models.Assignment{},
		Events:      []models.Event{},
		QAPairs:     []models.QAPair{},
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if rmErr := s.gateway.Remove(ctx, email); rmErr != nil {
			s.log.WithError(rmErr).WithField("email", email).Error("failed to roll back identity registration")
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.log.WithField("email", email).Info("user registered")
	return user, nil
}

// LoginUser authenticates the credentials and returns a session.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (*identity.Session, error) {
	email = normalizeEmail(email)

	session, err := s.gateway.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	// Disabled profiles keep their identity but may not sign in.
	if _, err := s.userRepo.GetByEmail(ctx, email); err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return nil, apperrors.Unauthorized("invalid credentials")
		}
		return nil, err
	}
	return session, nil
}

// ValidateToken resolves a session token to its owner. Tokens issued before
// the account was disabled stop working at once.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*identity.Identity, error) {
	id, err := s.gateway.Verify(ctx, token)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByEmail(ctx, normalizeEmail(id.Email)); err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return nil, apperrors.Unauthorized("account disabled")
		}
		return nil, err
	}
	return id, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

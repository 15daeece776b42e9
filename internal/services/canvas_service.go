package services

import (
	"context"
	"fmt"

	"queens/internal/apperrors"
	"queens/internal/metrics"
	"queens/internal/models"
	"queens/internal/repositories"

	"github.com/sirupsen/logrus"
)

// CanvasService syncs upcoming assignments onto the user profile.
type CanvasService struct {
	userRepo repositories.UserRepository
	source   AssignmentSource
	metrics  metrics.Recorder
	log      logrus.FieldLogger
}

// NewCanvasService creates a new CanvasService.
func NewCanvasService(userRepo repositories.UserRepository, source AssignmentSource, rec metrics.Recorder, log logrus.FieldLogger) *CanvasService {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &CanvasService{userRepo: userRepo, source: source, metrics: rec, log: log}
}

// SyncAssignments fetches the caller's assignments due in the next week and stores them.
func (s *CanvasService) SyncAssignments(ctx context.Context, caller string) ([]models.Assignment, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(caller))
	if err != nil {
		return nil, err
	}
	if !user.HasCanvasToken() {
		return nil, apperrors.Validation("Canvas token not found for user", map[string]string{"canvas_token": "required"})
	}

	assignments, err := s.source.UpcomingAssignments(ctx, user.CanvasToken)
	if err != nil {
		s.metrics.RecordCollaboratorFailure("canvas")
		return nil, err
	}

	if err := s.userRepo.UpdateAssignments(ctx, user.Email, assignments); err != nil {
		return nil, fmt.Errorf("failed to store assignments: %w", err)
	}
	s.log.WithFields(logrus.Fields{"email": user.Email, "assignments": len(assignments)}).Info("canvas assignments synced")
	return assignments, nil
}

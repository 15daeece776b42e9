package services

import (
	"context"
	"strings"

	"queens/internal/models"
	"queens/pkg/rabbitmq"
)

// Completer produces LLM completions.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Model() string
}

// EmotionAnalyzer classifies free text.
type EmotionAnalyzer interface {
	Analyze(ctx context.Context, text string) (*models.EmotionAnalysis, error)
}

// AssignmentSource lists a student's upcoming assignments.
type AssignmentSource interface {
	UpcomingAssignments(ctx context.Context, token string) ([]models.Assignment, error)
}

// JournalPublisher announces new journal entries.
type JournalPublisher interface {
	PublishJournalCreated(ctx context.Context, evt rabbitmq.JournalCreated) error
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package repositories

import (
	"context"

	"queens/internal/models"
)

// JournalRepository defines the interface for journal data access.
type JournalRepository interface {
	Create(ctx context.Context, journal *models.Journal) error
	GetByID(ctx context.Context, id string) (*models.Journal, error)
	// ListByEmail returns a page of entries, newest first. A negative limit returns all.
	ListByEmail(ctx context.Context, email string, skip, limit int) ([]models.Journal, error)
	UpdateEmotionAnalysis(ctx context.Context, id string, analysis *models.EmotionAnalysis) error
	Delete(ctx context.Context, id string) error
}

package repositories

import (
	"context"
	"fmt"

	"queens/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMJournalRepository is a GORM implementation of JournalRepository.
type GORMJournalRepository struct {
	db *gorm.DB
}

// NewGORMJournalRepository creates a new instance of GORMJournalRepository.
func NewGORMJournalRepository(db *gorm.DB) *GORMJournalRepository {
	return &GORMJournalRepository{db: db}
}

// Create inserts a journal entry.
func (r *GORMJournalRepository) Create(ctx context.Context, journal *models.Journal) error {
	if journal.ID == "" {
		journal.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(journal).Error; err != nil {
		return fmt.Errorf("failed to create journal: %w", translate(err, "journal", journal.ID))
	}
	return nil
}

// GetByID retrieves a single journal entry.
func (r *GORMJournalRepository) GetByID(ctx context.Context, id string) (*models.Journal, error) {
	var journal models.Journal
	if err := r.db.WithContext(ctx).First(&journal, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get journal %s: %w", id, translate(err, "journal", id))
	}
	return &journal, nil
}

// ListByEmail returns the entries of one user in reverse-chronological order.
// Ties on created_at are broken by id so the order is stable across pages.
func (r *GORMJournalRepository) ListByEmail(ctx context.Context, email string, skip, limit int) ([]models.Journal, error) {
	journals := make([]models.Journal, 0)
	q := r.db.WithContext(ctx).
		Where("email = ?", email).
		Order("created_at DESC").Order("id DESC").
		Offset(skip)
	if limit >= 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&journals).Error; err != nil {
		return nil, fmt.Errorf("failed to list journals for %s: %w", email, translate(err, "journals", email))
	}
	return journals, nil
}

// UpdateEmotionAnalysis sets the insight annotation, the only mutable part of an entry.
func (r *GORMJournalRepository) UpdateEmotionAnalysis(ctx context.Context, id string, analysis *models.EmotionAnalysis) error {
	journal := models.Journal{ID: id, EmotionAnalysis: analysis}
	res := r.db.WithContext(ctx).Model(&journal).Select("emotion_analysis", "updated_at").Updates(&journal)
	if res.Error != nil {
		return fmt.Errorf("failed to annotate journal %s: %w", id, translate(res.Error, "journal", id))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to annotate journal %s: %w", id, translate(gorm.ErrRecordNotFound, "journal", id))
	}
	return nil
}

// Delete removes a journal entry.
func (r *GORMJournalRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Journal{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete journal %s: %w", id, translate(res.Error, "journal", id))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to delete journal %s: %w", id, translate(gorm.ErrRecordNotFound, "journal", id))
	}
	return nil
}

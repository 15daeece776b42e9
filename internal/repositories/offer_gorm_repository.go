package repositories

import (
	"context"
	"fmt"
	"time"

	"queens/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOfferRepository is a GORM implementation of OfferRepository.
type GORMOfferRepository struct {
	db *gorm.DB
}

// NewGORMOfferRepository creates a new instance of GORMOfferRepository.
func NewGORMOfferRepository(db *gorm.DB) *GORMOfferRepository {
	return &GORMOfferRepository{db: db}
}

// Create inserts an offer, assigning a fresh identifier when none is set.
func (r *GORMOfferRepository) Create(ctx context.Context, offer *models.Offer) error {
	if offer.ID == "" {
		offer.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(offer).Error; err != nil {
		return fmt.Errorf("failed to create offer: %w", translate(err, "offer", offer.ID))
	}
	return nil
}

// GetByID retrieves a single offer.
func (r *GORMOfferRepository) GetByID(ctx context.Context, id string) (*models.Offer, error) {
	var offer models.Offer
	if err := r.db.WithContext(ctx).First(&offer, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get offer %s: %w", id, translate(err, "offer", id))
	}
	return &offer, nil
}

// ListActive returns a page of active offers, optionally filtered by skill.
func (r *GORMOfferRepository) ListActive(ctx context.Context, now time.Time, skill string, skip, limit int) ([]models.Offer, error) {
	offers := make([]models.Offer, 0)
	q := r.db.WithContext(ctx).Where("expires_at > ?", now)
	if skill != "" {
		q = q.Where("skill = ?", skill)
	}
	err := q.Order("created_at DESC").Order("id DESC").Offset(skip).Limit(limit).Find(&offers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", translate(err, "offers", ""))
	}
	return offers, nil
}

// Update writes the mutable columns of an offer. Identifier, owner and creation time never change.
func (r *GORMOfferRepository) Update(ctx context.Context, offer *models.Offer) error {
	res := r.db.WithContext(ctx).Model(offer).
		Select("title", "detail", "skill", "point_cost", "duration", "expires_at", "updated_at").
		Updates(offer)
	if res.Error != nil {
		return fmt.Errorf("failed to update offer %s: %w", offer.ID, translate(res.Error, "offer", offer.ID))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to update offer %s: %w", offer.ID, translate(gorm.ErrRecordNotFound, "offer", offer.ID))
	}
	return nil
}

// Delete soft-deletes an offer.
func (r *GORMOfferRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Offer{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete offer %s: %w", id, translate(res.Error, "offer", id))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to delete offer %s: %w", id, translate(gorm.ErrRecordNotFound, "offer", id))
	}
	return nil
}

package repositories

import (
	"context"
	"time"

	"queens/internal/models"
)

// OfferRepository defines the interface for marketplace offer data access.
type OfferRepository interface {
	Create(ctx context.Context, offer *models.Offer) error
	GetByID(ctx context.Context, id string) (*models.Offer, error)
	// ListActive returns offers whose validity window contains now, newest first.
	ListActive(ctx context.Context, now time.Time, skill string, skip, limit int) ([]models.Offer, error)
	Update(ctx context.Context, offer *models.Offer) error
	Delete(ctx context.Context, id string) error
}

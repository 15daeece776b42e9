package repositories

import (
	"context"

	"queens/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, skip, limit int) ([]models.User, error)
	// UpdateFields writes only the named fields of patch onto the user with email.
	UpdateFields(ctx context.Context, email string, patch *models.User, fields []string) error
	UpdateAssignments(ctx context.Context, email string, assignments []models.Assignment) error
	SoftDelete(ctx context.Context, email string) error
}

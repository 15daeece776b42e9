package repositories

import (
	"context"
	"fmt"
	"time"

	"queens/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create inserts a user. The unique email index turns a duplicate into a conflict.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", translate(err, "user", user.Email))
	}
	return nil
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, fmt.Errorf("failed to get user by email %s: %w", email, translate(err, "user", email))
	}
	return &user, nil
}

// List returns a page of users ordered by creation time.
func (r *GORMUserRepository) List(ctx context.Context, skip, limit int) ([]models.User, error) {
	users := make([]models.User, 0)
	err := r.db.WithContext(ctx).
		Order("created_at ASC").Order("id ASC").
		Offset(skip).Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", translate(err, "users", ""))
	}
	return users, nil
}

// UpdateFields writes the named fields of patch, plus updated_at, in a single
// UPDATE. Columns that are not named keep whatever is stored.
func (r *GORMUserRepository) UpdateFields(ctx context.Context, email string, patch *models.User, fields []string) error {
	patch.ID = ""
	patch.UpdatedAt = time.Now().UTC()
	columns := append(append(make([]string, 0, len(fields)+1), fields...), "UpdatedAt")

	res := r.db.WithContext(ctx).Model(patch).Where("email = ?", email).Select(columns).Updates(patch)
	if res.Error != nil {
		return fmt.Errorf("failed to update user: %w", translate(res.Error, "user", email))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to update user: %w", translate(gorm.ErrRecordNotFound, "user", email))
	}
	return nil
}

// UpdateAssignments replaces the synced Canvas assignments of a user.
func (r *GORMUserRepository) UpdateAssignments(ctx context.Context, email string, assignments []models.Assignment) error {
	if assignments == nil {
		assignments = []models.Assignment{}
	}
	return r.UpdateFields(ctx, email, &models.User{Assignments: assignments}, []string{"Assignments"})
}

// SoftDelete disables a user. Rows are never removed so the email stays reserved.
func (r *GORMUserRepository) SoftDelete(ctx context.Context, email string) error {
	res := r.db.WithContext(ctx).Where("email = ?", email).Delete(&models.User{})
	if res.Error != nil {
		return fmt.Errorf("failed to disable user: %w", translate(res.Error, "user", email))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to disable user: %w", translate(gorm.ErrRecordNotFound, "user", email))
	}
	return nil
}

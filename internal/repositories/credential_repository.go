package repositories

import (
	"context"
	"fmt"

	"queens/internal/models"

	"gorm.io/gorm"
)

// CredentialRepository stores password hashes for the local identity provider.
type CredentialRepository interface {
	Create(ctx context.Context, cred *models.Credential) error
	GetByEmail(ctx context.Context, email string) (*models.Credential, error)
	Delete(ctx context.Context, email string) error
}

// GORMCredentialRepository is a GORM implementation of CredentialRepository.
type GORMCredentialRepository struct {
	db *gorm.DB
}

// NewGORMCredentialRepository creates a new instance of GORMCredentialRepository.
func NewGORMCredentialRepository(db *gorm.DB) *GORMCredentialRepository {
	return &GORMCredentialRepository{db: db}
}

func (r *GORMCredentialRepository) Create(ctx context.Context, cred *models.Credential) error {
	if err := r.db.WithContext(ctx).Create(cred).Error; err != nil {
		return fmt.Errorf("failed to store credential: %w", translate(err, "account", cred.Email))
	}
	return nil
}

func (r *GORMCredentialRepository) GetByEmail(ctx context.Context, email string) (*models.Credential, error) {
	var cred models.Credential
	if err := r.db.WithContext(ctx).First(&cred, "email = ?", email).Error; err != nil {
		return nil, fmt.Errorf("failed to get credential: %w", translate(err, "account", email))
	}
	return &cred, nil
}

func (r *GORMCredentialRepository) Delete(ctx context.Context, email string) error {
	if err := r.db.WithContext(ctx).Delete(&models.Credential{}, "email = ?", email).Error; err != nil {
		return fmt.Errorf("failed to delete credential: %w", translate(err, "account", email))
	}
	return nil
}

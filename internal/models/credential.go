package models

import "time"

// Credential is a bcrypt password hash held by the local identity provider.
type Credential struct {
	Email        string    `gorm:"primaryKey;type:varchar(255)"`
	Subject      string    `gorm:"uniqueIndex;type:varchar(36);not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

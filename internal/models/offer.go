package models

import (
	"time"

	"gorm.io/gorm"
)

// DefaultOfferDurationDays is the validity window used when none is given.
const DefaultOfferDurationDays = 30

// Offer is a marketplace item. ID is assigned by the server and never changes.
type Offer struct {
	ID         string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OwnerEmail string         `json:"ownerEmail" gorm:"index;type:varchar(255);not null"`
	Title      string         `json:"title"`
	Detail     string         `json:"detail" gorm:"type:text"`
	Skill      string         `json:"skill" gorm:"index"`
	PointCost  int            `json:"pointCost"`
	Duration   int            `json:"duration"` // days
	ExpiresAt  time.Time      `json:"expires_at" gorm:"index"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

// Active reports whether the offer is inside its validity window at now.
func (o *Offer) Active(now time.Time) bool {
	return now.Before(o.ExpiresAt)
}

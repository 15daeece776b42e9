package models

import "time"

// EmotionAnalysis is the insight annotation attached to a journal entry.
type EmotionAnalysis struct {
	Emotions        map[string]float64 `json:"emotions" validate:"required,min=1"`
	DominantEmotion string             `json:"dominant_emotion" validate:"required"`
	Timestamp       time.Time          `json:"timestamp"`
	EntryID         string             `json:"entry_id"`
}

// Journal is a journal entry owned by exactly one user.
// Only EmotionAnalysis may change after creation.
type Journal struct {
	ID              string           `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email           string           `json:"email" gorm:"index;type:varchar(255);not null"`
	Title           string           `json:"title"`
	Description     string           `json:"description" gorm:"type:text"`
	Date            string           `json:"date"` // MM-DD-YYYY
	BgColor         string           `json:"bgColor"`
	EmotionAnalysis *EmotionAnalysis `json:"emotion_analysis" gorm:"serializer:json"`
	CreatedAt       time.Time        `json:"created_at" gorm:"index"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// JournalDateLayout is the layout of Journal.Date and insight date ranges.
const JournalDateLayout = "01-02-2006"

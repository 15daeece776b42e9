package models

import (
	"time"

	"gorm.io/gorm"
)

// Assignment is an upcoming Canvas assignment synced onto a user.
type Assignment struct {
	DateDue    string `json:"date_due"`
	TimeDue    string `json:"time_due"`
	Name       string `json:"name"`
	CanvasLink string `json:"canvas_link"`
}

// Event is a calendar entry on the user's schedule.
type Event struct {
	ID    string `json:"id" validate:"required"`
	Title string `json:"title" validate:"required"`
	Start string `json:"start" validate:"required"`
	End   string `json:"end" validate:"required"`
	Color string `json:"color"`
}

// QAPair is an onboarding question and the user's answer.
type QAPair struct {
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer"`
}

// User represents a platform member. Email is the system-wide key.
type User struct {
	ID               string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email            string         `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	AuthSubject      string         `json:"cognito_id" gorm:"type:varchar(255)"`
	FirstName        string         `json:"first_name"`
	LastName         string         `json:"last_name"`
	PhoneNumber      string         `json:"phone_number,omitempty"`
	CanvasToken      string         `json:"-"` // never echoed back
	Coins            int            `json:"coins"`
	ProfileImagePath string         `json:"profile_image_path,omitempty"`
	Bio              string         `json:"bio,omitempty"`
	Profession       string         `json:"profession,omitempty"`
	University       string         `json:"university,omitempty"`
	Age              *int           `json:"age,omitempty"`
	Location         string         `json:"location,omitempty"`
	Skills           []string       `json:"skills" gorm:"serializer:json"`
	Interests        []string       `json:"interests" gorm:"serializer:json"`
	Assignments      []Assignment   `json:"assignments" gorm:"serializer:json"`
	Events           []Event        `json:"events" gorm:"serializer:json"`
	QAPairs          []QAPair       `json:"qa_pairs" gorm:"serializer:json"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"-" gorm:"index"`
}

// HasCanvasToken reports whether the user linked a Canvas account.
func (u *User) HasCanvasToken() bool {
	return u.CanvasToken != ""
}

// Answer returns the answer to question from the user's QA pairs.
func (u *User) Answer(question string) (string, bool) {
	for _, qa := range u.QAPairs {
		if qa.Question == question {
			return qa.Answer, true
		}
	}
	return "", false
}

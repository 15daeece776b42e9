package models

import "time"

// Phase is a menstrual cycle phase.
type Phase string

const (
	PhaseMenstrual  Phase = "menstrual"
	PhaseFollicular Phase = "follicular"
	PhaseOvulation  Phase = "ovulation"
	PhaseLuteal     Phase = "luteal"
)

// Onboarding questions the health views read from a user's QA pairs.
const (
	QuestionLastPeriod     = "When was the first day of your last period?"
	QuestionPeriodDuration = "How long does your period typically last?"
	QuestionMood           = "How would you describe your mood recently?"
	QuestionConfidence     = "Do you feel confident about your knowledge about your menstrual health"
)

// PhaseResponse is the derived phase view. It is computed on read and never stored.
type PhaseResponse struct {
	Phase        Phase     `json:"phase,omitempty"`
	HasData      bool      `json:"has_data"`
	Message      string    `json:"message,omitempty"`
	CalculatedAt time.Time `json:"calculated_at"`
}

// Recommendations are phase-specific suggestions generated by the LLM.
type Recommendations struct {
	Phase                   Phase     `json:"phase"`
	DietRecommendations     []string  `json:"diet_recommendations"`
	ExerciseRecommendations []string  `json:"exercise_recommendations"`
	SymptomsToWatch         []string  `json:"symptoms_to_watch"`
	Affirmation             string    `json:"affirmation"`
	GeneratedAt             time.Time `json:"generated_at"`
}

// SuggestedEvent is a calendar suggestion generated for the current week.
type SuggestedEvent struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Start  string `json:"start"`
	End    string `json:"end"`
	Color  string `json:"color"`
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// EventColors maps suggestion types to calendar colours.
var EventColors = map[string]string{
	"wellness":     "#4CAF50",
	"productivity": "#2196F3",
	"rest":         "#9C27B0",
	"social":       "#FF9800",
	"learning":     "#795548",
}

// DefaultEventColor is used for unknown suggestion types.
const DefaultEventColor = "#607D8B"

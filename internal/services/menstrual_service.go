package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"queens/internal/apperrors"
	"queens/internal/cache"
	"queens/internal/models"
	"queens/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// MenstrualHealthService derives phase, recommendations and suggested events
// from a user's onboarding answers. Nothing it computes is persisted.
type MenstrualHealthService struct {
	userRepo repositories.UserRepository
	llm      Completer
	cache    cache.Cache
	cacheTTL time.Duration
	log      logrus.FieldLogger
	now      func() time.Time
}

// NewMenstrualHealthService creates a new MenstrualHealthService.
func NewMenstrualHealthService(userRepo repositories.UserRepository, llm Completer, c cache.Cache, cacheTTL time.Duration, log logrus.FieldLogger) *MenstrualHealthService {
	if c == nil {
		c = cache.Nop{}
	}
	return &MenstrualHealthService{
		userRepo: userRepo,
		llm:      llm,
		cache:    c,
		cacheTTL: cacheTTL,
		log:      log,
		now:      time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (s *MenstrualHealthService) WithClock(now func() time.Time) *MenstrualHealthService {
	s.now = now
	return s
}

// GetPhase returns the current phase of the user.
func (s *MenstrualHealthService) GetPhase(ctx context.Context, email string) (*models.PhaseResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	phase := CalculatePhase(user.QAPairs, s.now())
	return &phase, nil
}

// GetRecommendations asks the LLM for phase-specific diet, exercise and symptom advice.
func (s *MenstrualHealthService) GetRecommendations(ctx context.Context, email string) (*models.Recommendations, error) {
	user, phase, err := s.phaseFor(ctx, email, "recommendations")
	if err != nil {
		return nil, err
	}

	key := cache.Key("recommendations", user.Email, string(phase.Phase), s.day())
	var cached models.Recommendations
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	confident := false
	if answer, ok := user.Answer(models.QuestionConfidence); ok {
		confident = strings.EqualFold(strings.TrimSpace(answer), "yes")
	}

	content, err := s.llm.Complete(ctx, recommendationsPrompt(user, phase.Phase, confident))
	if err != nil {
		return nil, err
	}

	var parsed struct {
		DietRecommendations     []string `json:"diet_recommendations"`
		ExerciseRecommendations []string `json:"exercise_recommendations"`
		SymptomsToWatch         []string `json:"symptoms_to_watch"`
		Affirmation             string   `json:"affirmation"`
	}
	if err := decodeLLMJSON(content, &parsed); err != nil {
		s.log.WithError(err).WithField("email", user.Email).Error("failed to parse recommendations")
		return nil, apperrors.Unavailable("language model", err)
	}

	recs := &models.Recommendations{
		Phase:                   phase.Phase,
		DietRecommendations:     nonNil(parsed.DietRecommendations),
		ExerciseRecommendations: nonNil(parsed.ExerciseRecommendations),
		SymptomsToWatch:         nonNil(parsed.SymptomsToWatch),
		Affirmation:             parsed.Affirmation,
		GeneratedAt:             s.now().UTC(),
	}
	s.cacheSet(ctx, key, recs)
	return recs, nil
}

// GetSuggestedEvents asks the LLM for calendar suggestions for the coming week.
func (s *MenstrualHealthService) GetSuggestedEvents(ctx context.Context, email string) ([]models.SuggestedEvent, error) {
	user, phase, err := s.phaseFor(ctx, email, "suggestions")
	if err != nil {
		return nil, err
	}

	key := cache.Key("suggested-events", user.Email, string(phase.Phase), s.day())
	var cached []models.SuggestedEvent
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	weekStart := s.now().UTC()
	weekEnd := weekStart.AddDate(0, 0, 6)
	prompt := suggestedEventsPrompt(user, phase.Phase, weekStart.Format(lastPeriodLayout), weekEnd.Format(lastPeriodLayout))

	content, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		SuggestedEvents []struct {
			Title  string `json:"title"`
			Start  string `json:"start"`
			End    string `json:"end"`
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"suggested_events"`
	}
	if err := decodeLLMJSON(content, &parsed); err != nil {
		s.log.WithError(err).WithField("email", user.Email).Error("failed to parse event suggestions")
		return nil, apperrors.Unavailable("language model", err)
	}

	events := make([]models.SuggestedEvent, 0, len(parsed.SuggestedEvents))
	for _, e := range parsed.SuggestedEvents {
		color, ok := models.EventColors[strings.ToLower(e.Type)]
		if !ok {
			color = models.DefaultEventColor
		}
		events = append(events, models.SuggestedEvent{
			ID:     "sugg_" + uuid.New().String(),
			Title:  e.Title,
			Start:  e.Start,
			End:    e.End,
			Color:  color,
			Type:   e.Type,
			Reason: e.Reason,
		})
	}
	s.cacheSet(ctx, key, events)
	return events, nil
}

func (s *MenstrualHealthService) phaseFor(ctx context.Context, email, what string) (*models.User, models.PhaseResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, models.PhaseResponse{}, err
	}
	phase := CalculatePhase(user.QAPairs, s.now())
	if !phase.HasData {
		return nil, phase, apperrors.Validation(
			fmt.Sprintf("Insufficient menstrual data to generate %s", what),
			map[string]string{"qa_pairs": phase.Message},
		)
	}
	return user, phase, nil
}

func (s *MenstrualHealthService) day() string {
	return s.now().UTC().Format(lastPeriodLayout)
}

func (s *MenstrualHealthService) cacheGet(ctx context.Context, key string, out any) bool {
	found, err := s.cache.GetJSON(ctx, key, out)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Warn("cache read failed")
		return false
	}
	return found
}

func (s *MenstrualHealthService) cacheSet(ctx context.Context, key string, value any) {
	if err := s.cache.SetJSON(ctx, key, value, s.cacheTTL); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("cache write failed")
	}
}

// decodeLLMJSON unmarshals a completion that should be a JSON object.
// Models sometimes wrap the object in a markdown fence or prose, so the
// outermost braces are extracted first.
func decodeLLMJSON(content string, out any) error {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return fmt.Errorf("completion contains no JSON object")
	}
	if err := json.Unmarshal([]byte(content[start:end+1]), out); err != nil {
		return fmt.Errorf("completion is not valid JSON: %w", err)
	}
	return nil
}

func describeAge(user *models.User) string {
	if user.Age == nil {
		return "adult"
	}
	return fmt.Sprintf("%d-year-old", *user.Age)
}

func recommendationsPrompt(user *models.User, phase models.Phase, confident bool) string {
	mood := "neutral"
	if answer, ok := user.Answer(models.QuestionMood); ok && strings.TrimSpace(answer) != "" {
		mood = answer
	}
	knowledge := "low"
	if confident {
		knowledge = "high"
	}

	return fmt.Sprintf(`As a menstrual health expert, provide personalized recommendations for a %s person in their %s phase who is feeling %s.
Their confidence in menstrual health knowledge is %s.

Return the response in the following JSON format:
{
    "diet_recommendations": [
        // 6 specific diet recommendations including:
        // - General nutrition
        // - Specific foods to include
        // - Foods to avoid
        // - Meal timing
        // - Hydration
        // - Nutrients/supplements
    ],
    "exercise_recommendations": [
        // 6 specific, phase-appropriate exercise recommendations
        // Consider age and energy levels
    ],
    "symptoms_to_watch": [
        // 6 phase-specific symptoms to be aware of
        // Include both common and less common signs
    ],
    "affirmation": "One phase and mood appropriate affirmation"
}

Make recommendations specific, actionable, and appropriate for their age and knowledge level.
If confidence is low, include brief explanations.
Ensure each point is clear and self-contained.
Use natural, encouraging language.`, describeAge(user), phase, mood, knowledge)
}

func suggestedEventsPrompt(user *models.User, phase models.Phase, weekStart, weekEnd string) string {
	var schedule strings.Builder
	for _, e := range user.Events {
		fmt.Fprintf(&schedule, "- %s from %s to %s\n", e.Title, e.Start, e.End)
	}
	interests := "no specific interests listed"
	if len(user.Interests) > 0 {
		interests = strings.Join(user.Interests, ", ")
	}
	profession := user.Profession
	if profession == "" {
		profession = "person"
	}

	return fmt.Sprintf(`As an event planning expert, suggest 5-6 personalized events for a %s %s
who is in their %s phase of menstrual cycle. Consider their interests: %s.

Current schedule for reference:
%s
Generate suggestions for the week of %s to %s.

Return the response in the following JSON format:
{
    "suggested_events": [
        {
            "title": "Event title",
            "start": "YYYY-MM-DD HH:MM",
            "end": "YYYY-MM-DD HH:MM",
            "type": "type of activity (wellness/productivity/rest/social/learning)",
            "reason": "Brief explanation of why this event is suggested"
        }
    ]
}

Guidelines:
1. Consider phase-appropriate activities (e.g., lighter activities during menstrual phase)
2. Account for age and profession (%s)
3. Incorporate user's interests where relevant
4. Suggest a mix of different activity types
5. Keep time slots reasonable (30-90 minutes)
6. Use 24-hour format for times

Make suggestions specific, actionable, and appropriate for their phase and age.`,
		describeAge(user), profession, phase, interests, schedule.String(), weekStart, weekEnd, profession)
}

package services

import (
	"strings"
	"time"

	"queens/internal/models"
)

const (
	cycleLength         = 28
	ovulationLength     = 3
	defaultPeriodLength = 5
	lastPeriodLayout    = "2006-01-02"
)

var periodLengths = map[string]int{
	"3-5":  4,
	"5-7":  6,
	"7-10": 8,
	"10+":  10,
}

// CalculatePhase derives the current cycle phase from onboarding answers.
// Cycles are assumed to be 28 days; past the first cycle the day count wraps.
func CalculatePhase(qaPairs []models.QAPair, now time.Time) models.PhaseResponse {
	resp := models.PhaseResponse{CalculatedAt: now.UTC()}
	if len(qaPairs) == 0 {
		resp.Message = "No menstrual health data available"
		return resp
	}

	var lastPeriod, duration string
	for _, qa := range qaPairs {
		switch qa.Question {
		case models.QuestionLastPeriod:
			lastPeriod = strings.TrimSpace(qa.Answer)
		case models.QuestionPeriodDuration:
			duration = strings.TrimSpace(qa.Answer)
		}
	}
	if lastPeriod == "" {
		resp.Message = "Last period date not provided"
		return resp
	}
	if duration == "" {
		resp.Message = "Period duration not provided"
		return resp
	}

	start, err := time.Parse(lastPeriodLayout, lastPeriod)
	if err != nil {
		resp.Message = "Invalid date format for last period"
		return resp
	}
	y, m, d := now.UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	days := int(today.Sub(start).Hours() / 24)
	if days < 0 {
		resp.Message = "Last period date is in the future"
		return resp
	}

	periodLength, ok := periodLengths[duration]
	if !ok {
		periodLength = defaultPeriodLength
	}
	follicularLength := 14 - periodLength

	day := days % cycleLength
	switch {
	case day < periodLength:
		resp.Phase = models.PhaseMenstrual
	case day < periodLength+follicularLength:
		resp.Phase = models.PhaseFollicular
	case day < periodLength+follicularLength+ovulationLength:
		resp.Phase = models.PhaseOvulation
	default:
		resp.Phase = models.PhaseLuteal
	}
	resp.HasData = true
	return resp
}

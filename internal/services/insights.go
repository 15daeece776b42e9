package services

import (
	"sort"
	"time"

	"queens/internal/models"
)

// BuildInsights aggregates the emotion annotations of journals whose date lies
// in [start, end]. Nil bounds are open. Entries without an annotation are ignored.
func BuildInsights(journals []models.Journal, start, end *time.Time) *models.JournalInsights {
	type acc struct {
		count int
		total float64
	}
	all := make(map[string]*acc)
	dominant := make(map[string]int)
	var first, last time.Time
	total := 0

	for _, j := range journals {
		if j.EmotionAnalysis == nil || len(j.EmotionAnalysis.Emotions) == 0 {
			continue
		}
		day := journalDay(j)
		if start != nil && day.Before(*start) {
			continue
		}
		if end != nil && day.After(*end) {
			continue
		}

		total++
		if first.IsZero() || day.Before(first) {
			first = day
		}
		if last.IsZero() || day.After(last) {
			last = day
		}
		for label, score := range j.EmotionAnalysis.Emotions {
			a, ok := all[label]
			if !ok {
				a = &acc{}
				all[label] = a
			}
			a.count++
			a.total += score
		}
		if j.EmotionAnalysis.DominantEmotion != "" {
			dominant[j.EmotionAnalysis.DominantEmotion]++
		}
	}

	insights := &models.JournalInsights{
		Metadata: models.InsightsMetadata{TotalEntries: total},
		Emotions: models.EmotionCounts{
			AllEmotions:      make(map[string]models.EmotionStats, len(all)),
			DominantEmotions: dominant,
		},
		SortedEmotions: models.SortedEmotionCounts{
			AllEmotions:      make([]models.EmotionCountWithScore, 0, len(all)),
			DominantEmotions: make([]models.EmotionCount, 0, len(dominant)),
		},
	}

	switch {
	case start != nil:
		insights.Metadata.DateRange.Start = start.Format(models.JournalDateLayout)
	case !first.IsZero():
		insights.Metadata.DateRange.Start = first.Format(models.JournalDateLayout)
	}
	switch {
	case end != nil:
		insights.Metadata.DateRange.End = end.Format(models.JournalDateLayout)
	case !last.IsZero():
		insights.Metadata.DateRange.End = last.Format(models.JournalDateLayout)
	}

	for label, a := range all {
		stats := models.EmotionStats{Count: a.count, AverageScore: a.total / float64(a.count)}
		insights.Emotions.AllEmotions[label] = stats
		insights.SortedEmotions.AllEmotions = append(insights.SortedEmotions.AllEmotions, models.EmotionCountWithScore{
			Emotion:      label,
			Count:        stats.Count,
			AverageScore: stats.AverageScore,
		})
	}
	sort.Slice(insights.SortedEmotions.AllEmotions, func(i, j int) bool {
		a, b := insights.SortedEmotions.AllEmotions[i], insights.SortedEmotions.AllEmotions[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.AverageScore != b.AverageScore {
			return a.AverageScore > b.AverageScore
		}
		return a.Emotion < b.Emotion
	})

	for label, n := range dominant {
		insights.SortedEmotions.DominantEmotions = append(insights.SortedEmotions.DominantEmotions, models.EmotionCount{Emotion: label, Count: n})
	}
	sort.Slice(insights.SortedEmotions.DominantEmotions, func(i, j int) bool {
		a, b := insights.SortedEmotions.DominantEmotions[i], insights.SortedEmotions.DominantEmotions[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Emotion < b.Emotion
	})

	return insights
}

// journalDay is the entry's own date, falling back to its creation day.
func journalDay(j models.Journal) time.Time {
	if d, err := time.Parse(models.JournalDateLayout, j.Date); err == nil {
		return d
	}
	y, m, d := j.CreatedAt.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

package models

// DateRange is an inclusive range of MM-DD-YYYY dates.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// InsightsMetadata describes the entries an insight was computed from.
type InsightsMetadata struct {
	DateRange    DateRange `json:"date_range"`
	TotalEntries int       `json:"total_entries"`
}

// EmotionStats aggregates one emotion label across entries.
type EmotionStats struct {
	Count        int     `json:"count"`
	AverageScore float64 `json:"average_score"`
}

// EmotionCountWithScore is a sorted form of EmotionStats.
type EmotionCountWithScore struct {
	Emotion      string  `json:"emotion"`
	Count        int     `json:"count"`
	AverageScore float64 `json:"average_score"`
}

// EmotionCount counts how often an emotion was dominant.
type EmotionCount struct {
	Emotion string `json:"emotion"`
	Count   int    `json:"count"`
}

// EmotionCounts holds the keyed aggregates.
type EmotionCounts struct {
	AllEmotions      map[string]EmotionStats `json:"all_emotions"`
	DominantEmotions map[string]int          `json:"dominant_emotions"`
}

// SortedEmotionCounts holds the aggregates ordered by count, highest first.
type SortedEmotionCounts struct {
	AllEmotions      []EmotionCountWithScore `json:"all_emotions"`
	DominantEmotions []EmotionCount          `json:"dominant_emotions"`
}

// JournalInsights summarises the emotion annotations of a user's journals.
type JournalInsights struct {
	Metadata       InsightsMetadata    `json:"metadata"`
	Emotions       EmotionCounts       `json:"emotions"`
	SortedEmotions SortedEmotionCounts `json:"sorted_emotions"`
}

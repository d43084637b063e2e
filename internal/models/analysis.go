package models

import (
	"time"
)

// snippetLength bounds the presentation snippet on history summaries;
// the canonical stored text is never truncated
const snippetLength = 75

// Keyword is one extracted keyword with the provider's relevance score
type Keyword struct {
	Text      string  `json:"text"`
	Relevance float64 `json:"relevance"`
}

// Analysis represents a single persisted annotation result. Rows are
// insert-only: they are created after a successful provider call and
// never updated or deleted.
type Analysis struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	SessionID   string `json:"session_id" gorm:"index"`
	TextContent string `json:"text_content" gorm:"type:text;not null"`

	SentimentLabel string  `json:"sentiment_label" gorm:"not null"`
	SentimentScore float64 `json:"sentiment_score" gorm:"not null"`

	// Emotion intensities are nullable: they stay unset when the
	// provider omitted the emotion feature entirely
	EmotionJoy     *float64 `json:"emotion_joy"`
	EmotionSadness *float64 `json:"emotion_sadness"`
	EmotionFear    *float64 `json:"emotion_fear"`
	EmotionDisgust *float64 `json:"emotion_disgust"`
	EmotionAnger   *float64 `json:"emotion_anger"`

	Keywords []Keyword `json:"keywords" gorm:"serializer:json;type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides the GORM table name
func (Analysis) TableName() string {
	return "analyses"
}

// AnalysisSummary is the compact history-listing view of an Analysis
type AnalysisSummary struct {
	ID             uint    `json:"id"`
	TextSnippet    string  `json:"text_snippet"`
	SentimentLabel string  `json:"sentiment_label"`
	SentimentScore float64 `json:"sentiment_score"`
	CreatedAt      string  `json:"created_at"`
}

// Summary converts an Analysis into its history-listing form,
// truncating the text to a display snippet
func (a *Analysis) Summary() AnalysisSummary {
	snippet := a.TextContent
	if runes := []rune(snippet); len(runes) > snippetLength {
		snippet = string(runes[:snippetLength]) + "..."
	}

	return AnalysisSummary{
		ID:             a.ID,
		TextSnippet:    snippet,
		SentimentLabel: a.SentimentLabel,
		SentimentScore: a.SentimentScore,
		CreatedAt:      a.CreatedAt.UTC().Format(time.RFC3339),
	}
}

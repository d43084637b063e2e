package nlu

// Sentiment is the document-level sentiment classification
type Sentiment struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// EmotionScores holds the fixed emotion vocabulary with intensity
// scores in [0,1]. Scores the provider omitted default to zero.
type EmotionScores struct {
	Joy     float64 `json:"joy"`
	Sadness float64 `json:"sadness"`
	Fear    float64 `json:"fear"`
	Disgust float64 `json:"disgust"`
	Anger   float64 `json:"anger"`
}

// Keyword is one extracted keyword with its relevance ranking
type Keyword struct {
	Text      string  `json:"text"`
	Relevance float64 `json:"relevance"`
}

// Annotation is the normalized result of one provider call. Emotions
// is nil when the provider omitted the emotion feature entirely.
type Annotation struct {
	Sentiment Sentiment      `json:"sentiment"`
	Emotions  *EmotionScores `json:"emotions"`
	Keywords  []Keyword      `json:"keywords"`
}

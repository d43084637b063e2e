package nlu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The provider has moved fields between versions; each fixture below
// is pinned to a shape observed in the wild.

const currentShape = `{
	"sentiment": {"document": {"label": "positive", "score": 0.98}},
	"emotion": {"document": {"emotion": {"joy": 0.9, "sadness": 0.1, "fear": 0.02, "disgust": 0.01, "anger": 0.03}}},
	"keywords": [
		{"text": "product", "relevance": 0.99},
		{"text": "love", "relevance": 0.87}
	]
}`

func TestNormalizeCurrentShape(t *testing.T) {
	annotation, err := Normalize([]byte(currentShape), 5)
	require.NoError(t, err)

	assert.Equal(t, "positive", annotation.Sentiment.Label)
	assert.Equal(t, 0.98, annotation.Sentiment.Score)

	require.NotNil(t, annotation.Emotions)
	assert.Equal(t, 0.9, annotation.Emotions.Joy)
	assert.Equal(t, 0.1, annotation.Emotions.Sadness)
	assert.Equal(t, 0.02, annotation.Emotions.Fear)
	assert.Equal(t, 0.01, annotation.Emotions.Disgust)
	assert.Equal(t, 0.03, annotation.Emotions.Anger)

	require.Len(t, annotation.Keywords, 2)
	assert.Equal(t, "product", annotation.Keywords[0].Text)
	assert.Equal(t, 0.99, annotation.Keywords[0].Relevance)
}

func TestNormalizeFlatSentiment(t *testing.T) {
	payload := `{"sentiment": {"label": "negative", "score": -0.7}}`

	annotation, err := Normalize([]byte(payload), 5)
	require.NoError(t, err)

	assert.Equal(t, "negative", annotation.Sentiment.Label)
	assert.Equal(t, -0.7, annotation.Sentiment.Score)
	assert.Nil(t, annotation.Emotions)
	assert.Empty(t, annotation.Keywords)
}

func TestNormalizeEmotionScoresUnderDocument(t *testing.T) {
	payload := `{
		"sentiment": {"document": {"label": "neutral", "score": 0.0}},
		"emotion": {"document": {"joy": 0.4, "anger": 0.2}}
	}`

	annotation, err := Normalize([]byte(payload), 5)
	require.NoError(t, err)

	require.NotNil(t, annotation.Emotions)
	assert.Equal(t, 0.4, annotation.Emotions.Joy)
	assert.Equal(t, 0.2, annotation.Emotions.Anger)
	// Omitted scores default to zero instead of failing
	assert.Equal(t, 0.0, annotation.Emotions.Sadness)
	assert.Equal(t, 0.0, annotation.Emotions.Fear)
	assert.Equal(t, 0.0, annotation.Emotions.Disgust)
}

func TestNormalizeFlatTopLevelEmotions(t *testing.T) {
	payload := `{
		"sentiment": {"label": "positive", "score": 0.5},
		"emotions": {"joy": 0.8, "sadness": 0.05}
	}`

	annotation, err := Normalize([]byte(payload), 5)
	require.NoError(t, err)

	require.NotNil(t, annotation.Emotions)
	assert.Equal(t, 0.8, annotation.Emotions.Joy)
	assert.Equal(t, 0.05, annotation.Emotions.Sadness)
}

func TestNormalizeStringKeywords(t *testing.T) {
	payload := `{
		"sentiment": {"document": {"label": "positive", "score": 0.9}},
		"keywords": ["example", "analysis"]
	}`

	annotation, err := Normalize([]byte(payload), 5)
	require.NoError(t, err)

	require.Len(t, annotation.Keywords, 2)
	assert.Equal(t, "example", annotation.Keywords[0].Text)
	assert.Equal(t, 0.0, annotation.Keywords[0].Relevance)
	assert.Equal(t, "analysis", annotation.Keywords[1].Text)
}

func TestNormalizeKeywordLimit(t *testing.T) {
	payload := `{
		"sentiment": {"document": {"label": "positive", "score": 0.9}},
		"keywords": ["a", "b", "c", "d", "e", "f", "g"]
	}`

	annotation, err := Normalize([]byte(payload), 5)
	require.NoError(t, err)
	assert.Len(t, annotation.Keywords, 5)
}

func TestNormalizeMissingSentiment(t *testing.T) {
	payloads := []string{
		`{}`,
		`{"sentiment": {}}`,
		`{"sentiment": {"document": {}}}`,
		`{"emotion": {"document": {"emotion": {"joy": 1.0}}}}`,
	}

	for _, payload := range payloads {
		_, err := Normalize([]byte(payload), 5)
		assert.ErrorIs(t, err, ErrMalformedResponse, "payload: %s", payload)
	}
}

func TestNormalizeInvalidJSON(t *testing.T) {
	_, err := Normalize([]byte("not json"), 5)
	assert.Error(t, err)
}

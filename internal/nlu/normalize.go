package nlu

import (
	"encoding/json"
	"errors"
)

// ErrMalformedResponse is returned when the provider payload carries
// no usable sentiment result
var ErrMalformedResponse = errors.New("provider response carries no sentiment result")

// emotionValues mirrors the provider's emotion score object. Pointers
// distinguish "omitted" from an explicit zero.
type emotionValues struct {
	Joy     *float64 `json:"joy"`
	Sadness *float64 `json:"sadness"`
	Fear    *float64 `json:"fear"`
	Disgust *float64 `json:"disgust"`
	Anger   *float64 `json:"anger"`
}

func (v *emotionValues) empty() bool {
	return v.Joy == nil && v.Sadness == nil && v.Fear == nil && v.Disgust == nil && v.Anger == nil
}

func (v *emotionValues) scores() *EmotionScores {
	deref := func(p *float64) float64 {
		if p == nil {
			return 0
		}
		return *p
	}
	return &EmotionScores{
		Joy:     deref(v.Joy),
		Sadness: deref(v.Sadness),
		Fear:    deref(v.Fear),
		Disgust: deref(v.Disgust),
		Anger:   deref(v.Anger),
	}
}

// emotionDocument accepts both the nested document shape
// ({"document":{"emotion":{...}}}) and the flattened one where the
// scores sit directly under "document"
type emotionDocument struct {
	Emotion *emotionValues `json:"emotion"`
	emotionValues
}

type sentimentSection struct {
	Document *struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	} `json:"document"`
	// Older provider versions returned a flat sentiment object
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type providerPayload struct {
	Sentiment *sentimentSection `json:"sentiment"`
	Emotion   *struct {
		Document *emotionDocument `json:"document"`
	} `json:"emotion"`
	// Some revisions surfaced a flat top-level "emotions" object
	Emotions *emotionValues    `json:"emotions"`
	Keywords []json.RawMessage `json:"keywords"`
}

// Normalize maps a raw provider payload onto the stable internal
// schema. The provider is known to move fields between versions, so
// every sub-object is optional: absent emotions default to nil (the
// response layer renders them as zero), absent keywords to an empty
// list. A payload without a sentiment label is an error; records are
// never persisted without one.
func Normalize(raw []byte, keywordLimit int) (*Annotation, error) {
	var payload providerPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}

	annotation := &Annotation{Keywords: []Keyword{}}

	// Sentiment: prefer the document-scoped shape, fall back to flat
	if payload.Sentiment != nil {
		if doc := payload.Sentiment.Document; doc != nil && doc.Label != "" {
			annotation.Sentiment = Sentiment{Label: doc.Label, Score: doc.Score}
		} else if payload.Sentiment.Label != "" {
			annotation.Sentiment = Sentiment{Label: payload.Sentiment.Label, Score: payload.Sentiment.Score}
		}
	}
	if annotation.Sentiment.Label == "" {
		return nil, ErrMalformedResponse
	}

	// Emotions: nested document, flattened document, or flat top-level
	switch {
	case payload.Emotion != nil && payload.Emotion.Document != nil && payload.Emotion.Document.Emotion != nil:
		annotation.Emotions = payload.Emotion.Document.Emotion.scores()
	case payload.Emotion != nil && payload.Emotion.Document != nil && !payload.Emotion.Document.empty():
		annotation.Emotions = payload.Emotion.Document.emotionValues.scores()
	case payload.Emotions != nil:
		annotation.Emotions = payload.Emotions.scores()
	}

	// Keywords arrive as objects or, in the oldest shape, bare strings
	for _, item := range payload.Keywords {
		if keywordLimit > 0 && len(annotation.Keywords) >= keywordLimit {
			break
		}

		var kw Keyword
		if err := json.Unmarshal(item, &kw); err == nil && kw.Text != "" {
			annotation.Keywords = append(annotation.Keywords, kw)
			continue
		}

		var text string
		if err := json.Unmarshal(item, &text); err == nil && text != "" {
			annotation.Keywords = append(annotation.Keywords, Keyword{Text: text})
		}
	}

	return annotation, nil
}

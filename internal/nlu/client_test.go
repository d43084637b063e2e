package nlu

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentiment-analyzer/backend/pkg/errors"
	"sentiment-analyzer/backend/pkg/logger"
)

func testLogger() *logger.Logger {
	cfg := logger.DefaultConfig()
	cfg.Level = "error"
	return logger.New(cfg)
}

func newTestClient(baseURL string) *Client {
	return NewClient(Config{
		BaseURL:      baseURL,
		APIKey:       "test-key",
		Timeout:      2 * time.Second,
		KeywordLimit: 5,
	}, testLogger())
}

func TestAnnotateSuccess(t *testing.T) {
	var gotRequest analyzeRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "apikey", user)
		assert.Equal(t, "test-key", pass)

		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"sentiment": {"document": {"label": "positive", "score": 0.98}},
			"emotion": {"document": {"emotion": {"joy": 0.9}}},
			"keywords": [{"text": "product", "relevance": 0.99}]
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	annotation, err := client.Annotate(context.Background(), "I love this product!")
	require.NoError(t, err)

	assert.Equal(t, "I love this product!", gotRequest.Text)
	assert.Equal(t, 5, gotRequest.Features.Keywords.Limit)

	assert.Equal(t, "positive", annotation.Sentiment.Label)
	require.NotNil(t, annotation.Emotions)
	assert.Equal(t, 0.9, annotation.Emotions.Joy)
	require.Len(t, annotation.Keywords, 1)
}

func TestAnnotateMissingConfig(t *testing.T) {
	client := NewClient(Config{}, testLogger())

	_, err := client.Annotate(context.Background(), "some text")
	require.Error(t, err)
	assert.Equal(t, "NLU_CONFIG_MISSING", errors.GetErrorCode(err))
	assert.Equal(t, http.StatusInternalServerError, errors.GetStatusCode(err))
}

func TestAnnotateAuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "invalid api key abc123"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.Annotate(context.Background(), "some text")
	require.Error(t, err)
	assert.Equal(t, "NLU_AUTH_FAILED", errors.GetErrorCode(err))
	// Auth problems are the server's fault, never the caller's
	assert.Equal(t, http.StatusInternalServerError, errors.GetStatusCode(err))
	// Provider error internals never leak to the caller
	assert.NotContains(t, err.Error(), "abc123")
}

func TestAnnotateProviderRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "unsupported text language"}`, http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.Annotate(context.Background(), "some text")
	require.Error(t, err)
	assert.Equal(t, "NLU_REJECTED", errors.GetErrorCode(err))
	assert.Equal(t, http.StatusUnprocessableEntity, errors.GetStatusCode(err))
}

func TestAnnotateProviderDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.Annotate(context.Background(), "some text")
	require.Error(t, err)
	assert.Equal(t, "NLU_UNAVAILABLE", errors.GetErrorCode(err))
}

func TestAnnotateNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	client := newTestClient(server.URL)

	_, err := client.Annotate(context.Background(), "some text")
	require.Error(t, err)
	assert.Equal(t, "NLU_UNAVAILABLE", errors.GetErrorCode(err))
}

func TestAnnotateMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"unexpected": true}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.Annotate(context.Background(), "some text")
	require.Error(t, err)
	assert.Equal(t, "NLU_MALFORMED_RESPONSE", errors.GetErrorCode(err))
}

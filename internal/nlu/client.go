package nlu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"sentiment-analyzer/backend/pkg/errors"
	"sentiment-analyzer/backend/pkg/logger"
)

// Annotator is the outbound annotation call the orchestrator depends on
type Annotator interface {
	Annotate(ctx context.Context, text string) (*Annotation, error)
}

// Client calls the external NLU provider's analyze endpoint. It
// performs exactly one attempt per call; failures surface immediately.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	version      string
	keywordLimit int
	log          *logger.Logger
}

// Config holds the provider endpoint and credentials
type Config struct {
	BaseURL      string
	APIKey       string
	Version      string
	Timeout      time.Duration
	KeywordLimit int
}

// NewClient creates a provider client. Missing credentials are not an
// error here: the server still boots and each annotate call reports a
// configuration error instead.
func NewClient(cfg Config, log *logger.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.KeywordLimit <= 0 {
		cfg.KeywordLimit = 5
	}
	if cfg.Version == "" {
		cfg.Version = "2022-04-07"
	}

	return &Client{
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		baseURL:      cfg.BaseURL,
		apiKey:       cfg.APIKey,
		version:      cfg.Version,
		keywordLimit: cfg.KeywordLimit,
		log:          log,
	}
}

type analyzeRequest struct {
	Text     string   `json:"text"`
	Features features `json:"features"`
}

type features struct {
	Sentiment struct{}       `json:"sentiment"`
	Emotion   struct{}       `json:"emotion"`
	Keywords  keywordFeature `json:"keywords"`
}

type keywordFeature struct {
	Limit int `json:"limit"`
}

// Annotate sends the text to the provider and normalizes the result.
// Provider error bodies are logged but never propagated to callers.
func (c *Client) Annotate(ctx context.Context, text string) (*Annotation, error) {
	if c.baseURL == "" || c.apiKey == "" {
		return nil, errors.NewInternalServerError("NLU_CONFIG_MISSING", "The analysis service is not configured.")
	}

	reqBody := analyzeRequest{Text: text}
	reqBody.Features.Keywords.Limit = c.keywordLimit

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, errors.NewInternalServerError("NLU_REQUEST_FAILED", "The analysis request could not be prepared.")
	}

	url := fmt.Sprintf("%s/v1/analyze?version=%s", c.baseURL, c.version)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, errors.NewInternalServerError("NLU_REQUEST_FAILED", "The analysis request could not be prepared.")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth("apikey", c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.LogError(err, "NLU request failed")
		return nil, errors.NewInternalServerError("NLU_UNAVAILABLE", "The analysis service could not be reached.")
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		c.log.LogError(err, "Failed to read NLU response")
		return nil, errors.NewInternalServerError("NLU_UNAVAILABLE", "The analysis service returned an unreadable response.")
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, c.statusError(httpResp.StatusCode, body)
	}

	annotation, err := Normalize(body, c.keywordLimit)
	if err != nil {
		c.log.LogError(err, "Failed to normalize NLU response")
		return nil, errors.NewInternalServerError("NLU_MALFORMED_RESPONSE", "The analysis service returned an unexpected response.")
	}

	return annotation, nil
}

// statusError maps a provider status code onto the internal taxonomy.
// Client-class provider rejections keep their status where sensible
// (e.g. unsupported language); auth problems are a server-side
// configuration fault and must not suggest the caller can fix them.
func (c *Client) statusError(status int, body []byte) *errors.AppError {
	c.log.Warn("NLU provider returned an error status",
		"status", status,
		"body_bytes", len(body),
	)

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return errors.NewInternalServerError("NLU_AUTH_FAILED", "The analysis service rejected the server credentials.")
	case status >= 400 && status < 500:
		return errors.NewError(status, "NLU_REJECTED", "The analysis service could not process this text.")
	default:
		return errors.NewInternalServerError("NLU_UNAVAILABLE", "The analysis service failed to process the request.")
	}
}

package captcha

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sentiment-analyzer/backend/pkg/logger"
)

// Verifier decides whether a challenge token proves a human caller
type Verifier interface {
	Verify(ctx context.Context, token string) bool
}

// HTTPVerifier checks challenge tokens against a third-party
// verification endpoint. Every failure mode resolves to a denial:
// missing configuration, network errors, non-success statuses, and
// rejected tokens all fail closed. A timed-out attempt is a
// verification failure, not a transient error to retry.
type HTTPVerifier struct {
	httpClient *http.Client
	verifyURL  string
	secret     string
	log        *logger.Logger
}

// Config holds the verification endpoint and server-side secret
type Config struct {
	VerifyURL string
	Secret    string
	Timeout   time.Duration
}

func NewHTTPVerifier(cfg Config, log *logger.Logger) *HTTPVerifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	return &HTTPVerifier{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		verifyURL:  cfg.VerifyURL,
		secret:     cfg.Secret,
		log:        log,
	}
}

type verifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify reports whether the token passed verification
func (v *HTTPVerifier) Verify(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}
	if v.secret == "" || v.verifyURL == "" {
		v.log.Error("Captcha verification is not configured, denying request")
		return false
	}

	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		v.log.LogError(err, "Failed to build captcha verification request")
		return false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		v.log.LogError(err, "Captcha verification request failed")
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		v.log.Warn("Captcha verification returned non-success status", "status", resp.StatusCode)
		return false
	}

	var result verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		v.log.LogError(err, "Failed to decode captcha verification response")
		return false
	}

	if !result.Success {
		v.log.Info("Captcha token rejected", "error_codes", result.ErrorCodes)
	}

	return result.Success
}

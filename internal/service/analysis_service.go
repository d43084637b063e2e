package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"sentiment-analyzer/backend/internal/cache"
	"sentiment-analyzer/backend/internal/captcha"
	"sentiment-analyzer/backend/internal/models"
	"sentiment-analyzer/backend/internal/nlu"
	"sentiment-analyzer/backend/internal/repository"
	"sentiment-analyzer/backend/pkg/errors"
	"sentiment-analyzer/backend/pkg/logger"
	"sentiment-analyzer/backend/pkg/observability"
	"sentiment-analyzer/backend/pkg/resilience"
)

// AnalysisServiceConfig holds the usage limits the orchestrator enforces
type AnalysisServiceConfig struct {
	MaxTextChars int
	DailyQuota   int
	HistoryLimit int
}

// DefaultAnalysisServiceConfig returns the default limits
func DefaultAnalysisServiceConfig() AnalysisServiceConfig {
	return AnalysisServiceConfig{
		MaxTextChars: 1000,
		DailyQuota:   10,
		HistoryLimit: 10,
	}
}

// AnalysisService sequences one analyze request: daily quota, captcha
// gate, input validation, the provider call, and the best-effort
// persistence of the result. Each step short-circuits on failure.
type AnalysisService struct {
	repo      repository.AnalysisRepository
	annotator nlu.Annotator
	verifier  captcha.Verifier
	cache     cache.AnnotationCache
	breaker   *resilience.CircuitBreaker
	metrics   *observability.Metrics
	log       *logger.Logger
	config    AnalysisServiceConfig
}

// NewAnalysisService creates the orchestrator. cache and metrics may
// be nil; both degrade to no-ops.
func NewAnalysisService(
	repo repository.AnalysisRepository,
	annotator nlu.Annotator,
	verifier captcha.Verifier,
	annotationCache cache.AnnotationCache,
	breaker *resilience.CircuitBreaker,
	metrics *observability.Metrics,
	log *logger.Logger,
	config AnalysisServiceConfig,
) *AnalysisService {
	if config.MaxTextChars <= 0 {
		config.MaxTextChars = 1000
	}
	if config.DailyQuota <= 0 {
		config.DailyQuota = 10
	}
	if config.HistoryLimit <= 0 {
		config.HistoryLimit = 10
	}

	return &AnalysisService{
		repo:      repo,
		annotator: annotator,
		verifier:  verifier,
		cache:     annotationCache,
		breaker:   breaker,
		metrics:   metrics,
		log:       log,
		config:    config,
	}
}

// startOfUTCDay returns midnight UTC of the given instant's day
func startOfUTCDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CheckQuota denies the request when the session has already persisted
// its daily allowance of analyses. The check is read-only: consumption
// happens implicitly when a successful result is persisted later, so
// concurrent in-flight requests can overshoot the quota slightly (an
// accepted race, see DESIGN.md).
func (s *AnalysisService) CheckQuota(ctx context.Context, sessionID string) error {
	count, err := s.repo.CountForSessionSince(sessionID, startOfUTCDay(time.Now()))
	if err != nil {
		s.log.LogError(err, "Daily quota check failed", "session_id", sessionID)
		return errors.NewInternalServerError("QUOTA_CHECK_FAILED", "The usage quota could not be checked.")
	}

	if count >= int64(s.config.DailyQuota) {
		s.metrics.IncQuotaRejections(ctx)
		return errors.NewTooManyRequestsError("DAILY_QUOTA_EXCEEDED", "The daily analysis quota for this session has been reached.")
	}

	return nil
}

// Analyze runs the captcha gate, validates the text, obtains an
// annotation (cache first, then the provider behind the circuit
// breaker), and persists the result without letting a storage failure
// reach the caller.
func (s *AnalysisService) Analyze(ctx context.Context, sessionID, text, captchaToken string) (*nlu.Annotation, error) {
	if !s.verifier.Verify(ctx, captchaToken) {
		s.metrics.IncCaptchaRejections(ctx)
		return nil, errors.NewForbiddenError("CAPTCHA_REJECTED", "Captcha verification failed. Request a new challenge and try again.")
	}

	if strings.TrimSpace(text) == "" {
		return nil, errors.NewBadRequestError("TEXT_REQUIRED", "The 'text' field is required and must be a non-empty string.")
	}
	if utf8.RuneCountInString(text) > s.config.MaxTextChars {
		return nil, errors.NewPayloadTooLargeError("TEXT_TOO_LONG", "The text exceeds the configured character limit.")
	}

	annotation, err := s.annotate(ctx, text)
	if err != nil {
		s.metrics.IncAnalysisFailures(ctx)
		return nil, errors.FromError(err)
	}

	s.persist(ctx, sessionID, text, annotation)
	s.metrics.IncAnalyses(ctx)

	return annotation, nil
}

// annotate serves from the cache when possible, otherwise makes the
// single provider call through the circuit breaker
func (s *AnalysisService) annotate(ctx context.Context, text string) (*nlu.Annotation, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, text); ok {
			s.metrics.IncCacheHits(ctx)
			return cached, nil
		}
	}

	var annotation *nlu.Annotation
	call := func() error {
		var err error
		annotation, err = s.annotator.Annotate(ctx, text)
		return err
	}

	var err error
	if s.breaker != nil {
		err = s.breaker.Execute(call)
	} else {
		err = call()
	}

	if err != nil {
		if err == resilience.ErrCircuitOpen {
			return nil, errors.NewInternalServerError("NLU_UNAVAILABLE", "The analysis service is temporarily unavailable.")
		}
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, text, annotation)
	}

	return annotation, nil
}

// persist writes the record best-effort. A storage failure here is
// logged and swallowed: the caller already has a successful
// annotation and must receive it regardless.
func (s *AnalysisService) persist(ctx context.Context, sessionID, text string, annotation *nlu.Annotation) {
	record := &models.Analysis{
		SessionID:      sessionID,
		TextContent:    text,
		SentimentLabel: annotation.Sentiment.Label,
		SentimentScore: annotation.Sentiment.Score,
		CreatedAt:      time.Now().UTC(),
	}

	if e := annotation.Emotions; e != nil {
		record.EmotionJoy = &e.Joy
		record.EmotionSadness = &e.Sadness
		record.EmotionFear = &e.Fear
		record.EmotionDisgust = &e.Disgust
		record.EmotionAnger = &e.Anger
	}

	for _, kw := range annotation.Keywords {
		record.Keywords = append(record.Keywords, models.Keyword{Text: kw.Text, Relevance: kw.Relevance})
	}

	if err := s.repo.Create(record); err != nil {
		s.metrics.IncPersistenceFailures(ctx)
		s.log.LogError(err, "Failed to persist analysis record, continuing", "session_id", sessionID)
	}
}

// History returns the most recent analyses for a session, newest
// first. Unlike the analyze path, a storage failure here surfaces:
// there is no meaningful partial result for a history query.
func (s *AnalysisService) History(ctx context.Context, sessionID string) ([]models.AnalysisSummary, error) {
	records, err := s.repo.RecentBySession(sessionID, s.config.HistoryLimit)
	if err != nil {
		s.log.LogError(err, "History query failed", "session_id", sessionID)
		return nil, errors.NewInternalServerError("HISTORY_UNAVAILABLE", "The analysis history could not be loaded.")
	}

	summaries := make([]models.AnalysisSummary, 0, len(records))
	for i := range records {
		summaries = append(summaries, records[i].Summary())
	}

	return summaries, nil
}

package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentiment-analyzer/backend/internal/models"
	"sentiment-analyzer/backend/internal/nlu"
	apperrors "sentiment-analyzer/backend/pkg/errors"
	"sentiment-analyzer/backend/pkg/logger"
)

type mockRepository struct {
	count       int64
	countErr    error
	createErr   error
	created     []*models.Analysis
	recent      []models.Analysis
	recentErr   error
	lastSession string
	lastSince   time.Time
}

func (m *mockRepository) Create(analysis *models.Analysis) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, analysis)
	return nil
}

func (m *mockRepository) RecentBySession(sessionID string, limit int) ([]models.Analysis, error) {
	m.lastSession = sessionID
	if m.recentErr != nil {
		return nil, m.recentErr
	}
	if len(m.recent) > limit {
		return m.recent[:limit], nil
	}
	return m.recent, nil
}

func (m *mockRepository) CountForSessionSince(sessionID string, since time.Time) (int64, error) {
	m.lastSession = sessionID
	m.lastSince = since
	return m.count, m.countErr
}

type mockAnnotator struct {
	annotation *nlu.Annotation
	err        error
	calls      int
}

func (m *mockAnnotator) Annotate(ctx context.Context, text string) (*nlu.Annotation, error) {
	m.calls++
	return m.annotation, m.err
}

type mockVerifier struct {
	accept bool
	calls  int
}

func (m *mockVerifier) Verify(ctx context.Context, token string) bool {
	m.calls++
	return m.accept
}

type mockCache struct {
	stored map[string]*nlu.Annotation
	hits   int
}

func newMockCache() *mockCache {
	return &mockCache{stored: make(map[string]*nlu.Annotation)}
}

func (m *mockCache) Get(ctx context.Context, text string) (*nlu.Annotation, bool) {
	a, ok := m.stored[text]
	if ok {
		m.hits++
	}
	return a, ok
}

func (m *mockCache) Set(ctx context.Context, text string, annotation *nlu.Annotation) {
	m.stored[text] = annotation
}

func testAnnotation() *nlu.Annotation {
	return &nlu.Annotation{
		Sentiment: nlu.Sentiment{Label: "positive", Score: 0.97},
		Emotions:  &nlu.EmotionScores{Joy: 0.9, Sadness: 0.05},
		Keywords:  []nlu.Keyword{{Text: "product", Relevance: 0.95}},
	}
}

func quietLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", JSON: true, Output: io.Discard})
}

func newService(repo *mockRepository, annotator *mockAnnotator, verifier *mockVerifier, annotationCache *mockCache) *AnalysisService {
	svc := NewAnalysisService(repo, annotator, verifier, nil, nil, nil, quietLogger(), DefaultAnalysisServiceConfig())
	if annotationCache != nil {
		svc.cache = annotationCache
	}
	return svc
}

func TestCheckQuota(t *testing.T) {
	t.Run("under quota passes", func(t *testing.T) {
		repo := &mockRepository{count: 9}
		svc := newService(repo, &mockAnnotator{}, &mockVerifier{accept: true}, nil)

		require.NoError(t, svc.CheckQuota(context.Background(), "session-a"))
		assert.Equal(t, "session-a", repo.lastSession)
	})

	t.Run("counts from start of UTC day", func(t *testing.T) {
		repo := &mockRepository{}
		svc := newService(repo, &mockAnnotator{}, &mockVerifier{accept: true}, nil)

		require.NoError(t, svc.CheckQuota(context.Background(), "session-a"))

		now := time.Now().UTC()
		assert.Equal(t, time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), repo.lastSince)
	})

	t.Run("at quota denies with 429", func(t *testing.T) {
		repo := &mockRepository{count: 10}
		svc := newService(repo, &mockAnnotator{}, &mockVerifier{accept: true}, nil)

		err := svc.CheckQuota(context.Background(), "session-a")
		require.Error(t, err)
		assert.Equal(t, 429, apperrors.GetStatusCode(err))
		assert.Equal(t, "DAILY_QUOTA_EXCEEDED", apperrors.GetErrorCode(err))
	})

	t.Run("count failure surfaces as 500", func(t *testing.T) {
		repo := &mockRepository{countErr: errors.New("connection refused")}
		svc := newService(repo, &mockAnnotator{}, &mockVerifier{accept: true}, nil)

		err := svc.CheckQuota(context.Background(), "session-a")
		require.Error(t, err)
		assert.Equal(t, 500, apperrors.GetStatusCode(err))
		assert.Equal(t, "QUOTA_CHECK_FAILED", apperrors.GetErrorCode(err))
	})
}

func TestAnalyzeCaptchaRejection(t *testing.T) {
	annotator := &mockAnnotator{annotation: testAnnotation()}
	svc := newService(&mockRepository{}, annotator, &mockVerifier{accept: false}, nil)

	_, err := svc.Analyze(context.Background(), "session-a", "some text", "bad-token")
	require.Error(t, err)
	assert.Equal(t, 403, apperrors.GetStatusCode(err))
	assert.Equal(t, "CAPTCHA_REJECTED", apperrors.GetErrorCode(err))
	assert.Zero(t, annotator.calls, "a rejected captcha must not reach the provider")
}

func TestAnalyzeTextValidation(t *testing.T) {
	t.Run("empty text", func(t *testing.T) {
		annotator := &mockAnnotator{annotation: testAnnotation()}
		svc := newService(&mockRepository{}, annotator, &mockVerifier{accept: true}, nil)

		_, err := svc.Analyze(context.Background(), "session-a", "   \n\t ", "token")
		require.Error(t, err)
		assert.Equal(t, 400, apperrors.GetStatusCode(err))
		assert.Equal(t, "TEXT_REQUIRED", apperrors.GetErrorCode(err))
		assert.Zero(t, annotator.calls)
	})

	t.Run("text over limit counts runes not bytes", func(t *testing.T) {
		annotator := &mockAnnotator{annotation: testAnnotation()}
		svc := newService(&mockRepository{}, annotator, &mockVerifier{accept: true}, nil)

		_, err := svc.Analyze(context.Background(), "session-a", strings.Repeat("a", 1001), "token")
		require.Error(t, err)
		assert.Equal(t, 413, apperrors.GetStatusCode(err))
		assert.Equal(t, "TEXT_TOO_LONG", apperrors.GetErrorCode(err))
		assert.Zero(t, annotator.calls)

		// 1000 multi-byte runes is 3000 bytes but still within the limit
		_, err = svc.Analyze(context.Background(), "session-a", strings.Repeat("é", 500), "token")
		require.NoError(t, err)
		assert.Equal(t, 1, annotator.calls)
	})
}

func TestAnalyzeSuccessPersistsRecord(t *testing.T) {
	repo := &mockRepository{}
	annotator := &mockAnnotator{annotation: testAnnotation()}
	svc := newService(repo, annotator, &mockVerifier{accept: true}, nil)

	before := time.Now().UTC()
	annotation, err := svc.Analyze(context.Background(), "session-a", "I love this product!", "token")
	after := time.Now().UTC()

	require.NoError(t, err)
	require.NotNil(t, annotation)
	assert.Equal(t, "positive", annotation.Sentiment.Label)

	require.Len(t, repo.created, 1)
	record := repo.created[0]
	assert.Equal(t, "session-a", record.SessionID)
	assert.Equal(t, "I love this product!", record.TextContent)
	assert.Equal(t, "positive", record.SentimentLabel)
	require.NotNil(t, record.EmotionJoy)
	assert.Equal(t, 0.9, *record.EmotionJoy)
	require.Len(t, record.Keywords, 1)
	assert.Equal(t, "product", record.Keywords[0].Text)
	assert.False(t, record.CreatedAt.Before(before))
	assert.False(t, record.CreatedAt.After(after))
}

func TestAnalyzeWithoutEmotionFeature(t *testing.T) {
	repo := &mockRepository{}
	annotator := &mockAnnotator{annotation: &nlu.Annotation{
		Sentiment: nlu.Sentiment{Label: "neutral", Score: 0},
	}}
	svc := newService(repo, annotator, &mockVerifier{accept: true}, nil)

	annotation, err := svc.Analyze(context.Background(), "session-a", "plain text", "token")
	require.NoError(t, err)
	assert.Nil(t, annotation.Emotions)

	require.Len(t, repo.created, 1)
	assert.Nil(t, repo.created[0].EmotionJoy, "absent emotion feature stays NULL")
}

func TestAnalyzePersistFailureSwallowed(t *testing.T) {
	repo := &mockRepository{createErr: errors.New("disk full")}
	annotator := &mockAnnotator{annotation: testAnnotation()}
	svc := newService(repo, annotator, &mockVerifier{accept: true}, nil)

	annotation, err := svc.Analyze(context.Background(), "session-a", "some text", "token")
	require.NoError(t, err, "a storage failure must not reach the caller")
	require.NotNil(t, annotation)
	assert.Equal(t, "positive", annotation.Sentiment.Label)
}

func TestAnalyzeProviderFailurePropagates(t *testing.T) {
	repo := &mockRepository{}
	annotator := &mockAnnotator{err: apperrors.NewInternalServerError("NLU_UNAVAILABLE", "The analysis service is temporarily unavailable.")}
	svc := newService(repo, annotator, &mockVerifier{accept: true}, nil)

	_, err := svc.Analyze(context.Background(), "session-a", "some text", "token")
	require.Error(t, err)
	assert.Equal(t, "NLU_UNAVAILABLE", apperrors.GetErrorCode(err))
	assert.Empty(t, repo.created, "a failed analysis must not be persisted")
}

func TestAnalyzeCacheHitSkipsProvider(t *testing.T) {
	repo := &mockRepository{}
	annotator := &mockAnnotator{annotation: testAnnotation()}
	annotationCache := newMockCache()
	svc := newService(repo, annotator, &mockVerifier{accept: true}, annotationCache)

	_, err := svc.Analyze(context.Background(), "session-a", "repeated text", "token")
	require.NoError(t, err)
	assert.Equal(t, 1, annotator.calls)

	_, err = svc.Analyze(context.Background(), "session-b", "repeated text", "token")
	require.NoError(t, err)
	assert.Equal(t, 1, annotator.calls, "second identical text should be served from the cache")
	assert.Equal(t, 1, annotationCache.hits)

	// Cached or not, every successful analysis is persisted for its session
	require.Len(t, repo.created, 2)
	assert.Equal(t, "session-a", repo.created[0].SessionID)
	assert.Equal(t, "session-b", repo.created[1].SessionID)
}

func TestHistory(t *testing.T) {
	t.Run("returns summaries newest first", func(t *testing.T) {
		now := time.Now().UTC()
		repo := &mockRepository{recent: []models.Analysis{
			{ID: 2, SessionID: "session-a", TextContent: "newer", SentimentLabel: "positive", SentimentScore: 0.9, CreatedAt: now},
			{ID: 1, SessionID: "session-a", TextContent: "older", SentimentLabel: "negative", SentimentScore: -0.4, CreatedAt: now.Add(-time.Hour)},
		}}
		svc := newService(repo, &mockAnnotator{}, &mockVerifier{accept: true}, nil)

		summaries, err := svc.History(context.Background(), "session-a")
		require.NoError(t, err)
		require.Len(t, summaries, 2)
		assert.Equal(t, uint(2), summaries[0].ID)
		assert.Equal(t, "newer", summaries[0].TextSnippet)
		assert.Equal(t, "positive", summaries[0].SentimentLabel)
	})

	t.Run("empty history is an empty list", func(t *testing.T) {
		svc := newService(&mockRepository{}, &mockAnnotator{}, &mockVerifier{accept: true}, nil)

		summaries, err := svc.History(context.Background(), "session-a")
		require.NoError(t, err)
		assert.NotNil(t, summaries)
		assert.Empty(t, summaries)
	})

	t.Run("storage failure surfaces as 500", func(t *testing.T) {
		repo := &mockRepository{recentErr: errors.New("connection refused")}
		svc := newService(repo, &mockAnnotator{}, &mockVerifier{accept: true}, nil)

		_, err := svc.History(context.Background(), "session-a")
		require.Error(t, err)
		assert.Equal(t, 500, apperrors.GetStatusCode(err))
		assert.Equal(t, "HISTORY_UNAVAILABLE", apperrors.GetErrorCode(err))
	})
}

package di

import (
	"context"

	"sentiment-analyzer/backend/internal/cache"
	"sentiment-analyzer/backend/internal/captcha"
	"sentiment-analyzer/backend/internal/nlu"
	"sentiment-analyzer/backend/internal/repository"
	"sentiment-analyzer/backend/internal/service"
	"sentiment-analyzer/backend/pkg/config"
	"sentiment-analyzer/backend/pkg/logger"
	"sentiment-analyzer/backend/pkg/observability"
	"sentiment-analyzer/backend/pkg/resilience"
	"sentiment-analyzer/backend/pkg/secrets"

	"gorm.io/gorm"
)

// Container holds all the dependencies for the application. Every
// collaborator is constructed exactly once here and passed by
// reference; nothing reaches for ambient global state.
type Container struct {
	DB              *gorm.DB
	Logger          *logger.Logger
	Secrets         secrets.Manager
	Repository      repository.AnalysisRepository
	Annotator       nlu.Annotator
	Verifier        captcha.Verifier
	Cache           cache.AnnotationCache
	Metrics         *observability.Metrics
	AnalysisService *service.AnalysisService
}

// New creates a new dependency injection container. metrics may be
// nil when the metrics endpoint is disabled.
func New(db *gorm.DB, log *logger.Logger, metrics *observability.Metrics) (*Container, error) {
	cfg := config.Get()
	ctx := context.Background()

	// Sensitive values resolve through Vault when enabled, with the
	// env-derived config values as fallback
	secretsManager, err := secrets.NewManager(log)
	if err != nil {
		return nil, err
	}

	nluAPIKey := secretsManager.GetSecretWithDefault(ctx, "nlu-api-key", cfg.NLU.APIKey)
	captchaSecret := secretsManager.GetSecretWithDefault(ctx, "captcha-secret", cfg.Captcha.Secret)

	annotator := nlu.NewClient(nlu.Config{
		BaseURL:      cfg.NLU.URL,
		APIKey:       nluAPIKey,
		Version:      cfg.NLU.Version,
		Timeout:      cfg.NLU.Timeout,
		KeywordLimit: cfg.NLU.KeywordLimit,
	}, log)

	verifier := captcha.NewHTTPVerifier(captcha.Config{
		VerifyURL: cfg.Captcha.VerifyURL,
		Secret:    captchaSecret,
		Timeout:   cfg.Captcha.Timeout,
	}, log)

	var annotationCache cache.AnnotationCache
	if cfg.Cache.Enabled {
		if cfg.Cache.RedisURL != "" {
			redisCache := cache.NewRedisCache(cfg.Cache.RedisURL, cfg.Cache.TTL, log)
			if err := redisCache.Ping(ctx); err != nil {
				log.LogError(err, "Redis unreachable, falling back to in-memory annotation cache")
				annotationCache = cache.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.MaxSize)
			} else {
				annotationCache = redisCache
			}
		} else {
			annotationCache = cache.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.MaxSize)
		}
	}

	breaker := resilience.New(resilience.DefaultConfig("nlu"), log)
	repo := repository.NewGormAnalysisRepository(db)

	analysisService := service.NewAnalysisService(
		repo,
		annotator,
		verifier,
		annotationCache,
		breaker,
		metrics,
		log,
		service.AnalysisServiceConfig{
			MaxTextChars: cfg.Limits.MaxTextChars,
			DailyQuota:   cfg.Limits.DailyQuota,
			HistoryLimit: 10,
		},
	)

	return &Container{
		DB:              db,
		Logger:          log,
		Secrets:         secretsManager,
		Repository:      repo,
		Annotator:       annotator,
		Verifier:        verifier,
		Cache:           annotationCache,
		Metrics:         metrics,
		AnalysisService: analysisService,
	}, nil
}

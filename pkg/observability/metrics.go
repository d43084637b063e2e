package observability

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Metrics holds the counters instrumenting the analyze pipeline.
// A nil *Metrics is valid and turns every increment into a no-op.
type Metrics struct {
	AnalysesTotal       metric.Int64Counter
	AnalysisFailures    metric.Int64Counter
	QuotaRejections     metric.Int64Counter
	CaptchaRejections   metric.Int64Counter
	CacheHits           metric.Int64Counter
	PersistenceFailures metric.Int64Counter
}

// NewMetrics registers the pipeline counters on the given provider
func NewMetrics(mp *sdkmetric.MeterProvider) (*Metrics, error) {
	meter := mp.Meter("sentiment-analyzer/backend")

	m := &Metrics{}
	var err error

	if m.AnalysesTotal, err = meter.Int64Counter("analyses_total",
		metric.WithDescription("Successful analyze requests")); err != nil {
		return nil, err
	}
	if m.AnalysisFailures, err = meter.Int64Counter("analysis_failures_total",
		metric.WithDescription("Analyze requests that failed at the provider")); err != nil {
		return nil, err
	}
	if m.QuotaRejections, err = meter.Int64Counter("quota_rejections_total",
		metric.WithDescription("Analyze requests denied by the daily quota")); err != nil {
		return nil, err
	}
	if m.CaptchaRejections, err = meter.Int64Counter("captcha_rejections_total",
		metric.WithDescription("Analyze requests denied by captcha verification")); err != nil {
		return nil, err
	}
	if m.CacheHits, err = meter.Int64Counter("annotation_cache_hits_total",
		metric.WithDescription("Analyze requests served from the annotation cache")); err != nil {
		return nil, err
	}
	if m.PersistenceFailures, err = meter.Int64Counter("persistence_failures_total",
		metric.WithDescription("Best-effort record writes that failed")); err != nil {
		return nil, err
	}

	return m, nil
}

// The increment helpers tolerate a nil receiver so callers can run
// with metrics disabled

func (m *Metrics) IncAnalyses(ctx context.Context) {
	if m != nil && m.AnalysesTotal != nil {
		m.AnalysesTotal.Add(ctx, 1)
	}
}

func (m *Metrics) IncAnalysisFailures(ctx context.Context) {
	if m != nil && m.AnalysisFailures != nil {
		m.AnalysisFailures.Add(ctx, 1)
	}
}

func (m *Metrics) IncQuotaRejections(ctx context.Context) {
	if m != nil && m.QuotaRejections != nil {
		m.QuotaRejections.Add(ctx, 1)
	}
}

func (m *Metrics) IncCaptchaRejections(ctx context.Context) {
	if m != nil && m.CaptchaRejections != nil {
		m.CaptchaRejections.Add(ctx, 1)
	}
}

func (m *Metrics) IncCacheHits(ctx context.Context) {
	if m != nil && m.CacheHits != nil {
		m.CacheHits.Add(ctx, 1)
	}
}

func (m *Metrics) IncPersistenceFailures(ctx context.Context) {
	if m != nil && m.PersistenceFailures != nil {
		m.PersistenceFailures.Add(ctx, 1)
	}
}

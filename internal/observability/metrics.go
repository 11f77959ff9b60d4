package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	oteltrace "go.opentelemetry.io/otel/trace"

	"internmatch/internal/ai"
	"internmatch/internal/config"
	"internmatch/internal/match"
)

var (
	_ match.Observer   = (*Manager)(nil)
	_ ai.UsageRecorder = (*Manager)(nil)
)

// Metric names exported by the service
const (
	MetricAIDuration      = "internmatch_ai_processing_duration_seconds"
	MetricAIRequests      = "internmatch_ai_requests_total"
	MetricAIErrors        = "internmatch_ai_errors_total"
	MetricAITokens        = "internmatch_ai_token_usage"
	MetricMatches         = "internmatch_matches_total"
	MetricMatchReturned   = "internmatch_match_returned"
	MetricPoolSize        = "internmatch_candidate_pool_size"
	MetricRerankOutcomes  = "internmatch_rerank_outcomes_total"
	MetricEmbedDuration   = "internmatch_embedding_duration_seconds"
	MetricEmbeddedTexts   = "internmatch_embedded_texts_total"
	MetricResumesParsed   = "internmatch_resumes_parsed_total"
	MetricItemsCleaned    = "internmatch_items_cleaned_total"
	MetricRateLimitHits   = "internmatch_rate_limit_hits_total"
	MetricTaxonomyReloads = "internmatch_taxonomy_reloads_total"
)

// Metrics holds the application instruments
type Metrics struct {
	// AI operations
	AIProcessingTime metric.Float64Histogram
	AIRequestCount   metric.Int64Counter
	AIErrorCount     metric.Int64Counter
	AITokenUsage     metric.Int64Histogram

	// Matching pipeline
	Matches           metric.Int64Counter
	MatchReturned     metric.Int64Histogram
	PoolSize          metric.Int64Histogram
	RerankOutcomes    metric.Int64Counter
	EmbeddingDuration metric.Float64Histogram
	EmbeddedTexts     metric.Int64Counter

	// Resume and data handling
	ResumesParsed metric.Int64Counter
	ItemsCleaned  metric.Int64Counter

	// Infrastructure
	RateLimitHits   metric.Int64Counter
	TaxonomyReloads metric.Int64Counter
}

func newMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.AIProcessingTime, err = meter.Float64Histogram(MetricAIDuration,
		metric.WithDescription("Time spent in AI backend calls"), metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("failed to create AI processing time metric: %w", err)
	}
	if m.AIRequestCount, err = meter.Int64Counter(MetricAIRequests,
		metric.WithDescription("Total number of AI backend calls")); err != nil {
		return nil, fmt.Errorf("failed to create AI request count metric: %w", err)
	}
	if m.AIErrorCount, err = meter.Int64Counter(MetricAIErrors,
		metric.WithDescription("Total number of failed AI backend calls")); err != nil {
		return nil, fmt.Errorf("failed to create AI error count metric: %w", err)
	}
	if m.AITokenUsage, err = meter.Int64Histogram(MetricAITokens,
		metric.WithDescription("Token usage per AI call by token type"), metric.WithUnit("{token}")); err != nil {
		return nil, fmt.Errorf("failed to create AI token usage metric: %w", err)
	}

	if m.Matches, err = meter.Int64Counter(MetricMatches,
		metric.WithDescription("Total number of match requests served")); err != nil {
		return nil, fmt.Errorf("failed to create matches metric: %w", err)
	}
	if m.MatchReturned, err = meter.Int64Histogram(MetricMatchReturned,
		metric.WithDescription("Recommendations returned per match request")); err != nil {
		return nil, fmt.Errorf("failed to create match returned metric: %w", err)
	}
	if m.PoolSize, err = meter.Int64Histogram(MetricPoolSize,
		metric.WithDescription("Candidate pool size after sector bucketing")); err != nil {
		return nil, fmt.Errorf("failed to create pool size metric: %w", err)
	}
	if m.RerankOutcomes, err = meter.Int64Counter(MetricRerankOutcomes,
		metric.WithDescription("Rerank outcomes by kind and explanation source")); err != nil {
		return nil, fmt.Errorf("failed to create rerank outcome metric: %w", err)
	}
	if m.EmbeddingDuration, err = meter.Float64Histogram(MetricEmbedDuration,
		metric.WithDescription("Time spent embedding profile and opportunity texts"), metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("failed to create embedding duration metric: %w", err)
	}
	if m.EmbeddedTexts, err = meter.Int64Counter(MetricEmbeddedTexts,
		metric.WithDescription("Total number of texts embedded")); err != nil {
		return nil, fmt.Errorf("failed to create embedded texts metric: %w", err)
	}

	if m.ResumesParsed, err = meter.Int64Counter(MetricResumesParsed,
		metric.WithDescription("Total number of resumes parsed")); err != nil {
		return nil, fmt.Errorf("failed to create resumes parsed metric: %w", err)
	}
	if m.ItemsCleaned, err = meter.Int64Counter(MetricItemsCleaned,
		metric.WithDescription("Total number of scraped items cleaned")); err != nil {
		return nil, fmt.Errorf("failed to create items cleaned metric: %w", err)
	}

	if m.RateLimitHits, err = meter.Int64Counter(MetricRateLimitHits,
		metric.WithDescription("Total number of rate limited requests")); err != nil {
		return nil, fmt.Errorf("failed to create rate limit hits metric: %w", err)
	}
	if m.TaxonomyReloads, err = meter.Int64Counter(MetricTaxonomyReloads,
		metric.WithDescription("Total number of taxonomy reload attempts")); err != nil {
		return nil, fmt.Errorf("failed to create taxonomy reloads metric: %w", err)
	}

	return m, nil
}

func (m *Manager) customMetrics() *config.CustomMetricsConfig {
	if m == nil || m.fullConfig == nil {
		return nil
	}
	return &m.fullConfig.Observability.CustomMetrics
}

// aiEnabled reports whether AI metrics are recorded; a nil config records all.
func (m *Manager) aiEnabled() bool {
	if m == nil || m.metrics == nil {
		return false
	}
	cm := m.customMetrics()
	return cm == nil || cm.AIOperations.Enabled
}

func (m *Manager) businessEnabled(pick func(config.BusinessMetricsConfig) bool) bool {
	if m == nil || m.metrics == nil {
		return false
	}
	cm := m.customMetrics()
	return cm == nil || (cm.BusinessMetrics.Enabled && pick(cm.BusinessMetrics))
}

func (m *Manager) infraEnabled(pick func(config.InfrastructureMetricsConfig) bool) bool {
	if m == nil || m.metrics == nil {
		return false
	}
	cm := m.customMetrics()
	return cm == nil || (cm.Infrastructure.Enabled && pick(cm.Infrastructure))
}

// RecordAIOperation records one AI backend call
func (m *Manager) RecordAIOperation(ctx context.Context, operation, model string, d time.Duration, inputTokens, outputTokens int64, err error) {
	if !m.aiEnabled() {
		return
	}
	cm := m.customMetrics()

	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.String("model", model),
		attribute.Bool("success", err == nil),
	}
	set := metric.WithAttributes(attrs...)

	if cm == nil || cm.AIOperations.TrackDuration {
		m.metrics.AIProcessingTime.Record(ctx, d.Seconds(), set)
	}
	m.metrics.AIRequestCount.Add(ctx, 1, set)
	if err != nil {
		m.metrics.AIErrorCount.Add(ctx, 1, set)
	}

	if inputTokens == 0 && outputTokens == 0 {
		return
	}
	if cm == nil || cm.AIOperations.TrackTokenUsage {
		for _, tt := range []struct {
			kind  string
			value int64
		}{
			{"input", inputTokens},
			{"output", outputTokens},
			{"total", inputTokens + outputTokens},
		} {
			m.metrics.AITokenUsage.Record(ctx, tt.value, metric.WithAttributes(
				attribute.String("operation", operation),
				attribute.String("token_type", tt.kind),
			))
		}
	}

	// Token counts always go on the span for debugging.
	oteltrace.SpanFromContext(ctx).SetAttributes(
		attribute.Int64("ai.tokens.input", inputTokens),
		attribute.Int64("ai.tokens.output", outputTokens),
	)
}

// ObserveEmbedding records one embedding call of the match pipeline
func (m *Manager) ObserveEmbedding(ctx context.Context, texts int, d time.Duration, err error) {
	if !m.businessEnabled(func(b config.BusinessMetricsConfig) bool { return b.TrackEmbeddings }) {
		return
	}
	set := metric.WithAttributes(attribute.Bool("success", err == nil))
	m.metrics.EmbeddingDuration.Record(ctx, d.Seconds(), set)
	m.metrics.EmbeddedTexts.Add(ctx, int64(texts), set)
}

// ObservePool records the candidate pool size for one match request
func (m *Manager) ObservePool(ctx context.Context, size int, fromOther bool) {
	if !m.businessEnabled(func(b config.BusinessMetricsConfig) bool { return b.TrackMatches }) {
		return
	}
	m.metrics.PoolSize.Record(ctx, int64(size), metric.WithAttributes(attribute.Bool("from_other", fromOther)))
}

// ObserveRerank records how a rerank ended
func (m *Manager) ObserveRerank(ctx context.Context, outcome, source string) {
	if !m.businessEnabled(func(b config.BusinessMetricsConfig) bool { return b.TrackRerank }) {
		return
	}
	m.metrics.RerankOutcomes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.String("source", source),
	))
}

// ObserveMatch records a finished match request
func (m *Manager) ObserveMatch(ctx context.Context, candidates, returned int) {
	if !m.businessEnabled(func(b config.BusinessMetricsConfig) bool { return b.TrackMatches }) {
		return
	}
	m.metrics.Matches.Add(ctx, 1, metric.WithAttributes(attribute.Bool("empty", candidates == 0)))
	m.metrics.MatchReturned.Record(ctx, int64(returned))
}

// RecordResumeParsed counts a parse request; mode is "quick" or "deep"
func (m *Manager) RecordResumeParsed(ctx context.Context, mode string, err error) {
	if !m.businessEnabled(func(b config.BusinessMetricsConfig) bool { return b.TrackParsing }) {
		return
	}
	m.metrics.ResumesParsed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mode", mode),
		attribute.Bool("success", err == nil),
	))
}

// RecordItemsCleaned counts cleaned scraped items of one kind
func (m *Manager) RecordItemsCleaned(ctx context.Context, kind string, n int) {
	if n <= 0 || !m.businessEnabled(func(b config.BusinessMetricsConfig) bool { return b.TrackCleanedData }) {
		return
	}
	m.metrics.ItemsCleaned.Add(ctx, int64(n), metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordRateLimitHit counts a rejected request; limiter is "ip" or "api_key"
func (m *Manager) RecordRateLimitHit(ctx context.Context, limiter, endpoint string) {
	if !m.infraEnabled(func(i config.InfrastructureMetricsConfig) bool { return i.TrackRateLimits }) {
		return
	}
	m.metrics.RateLimitHits.Add(ctx, 1, metric.WithAttributes(
		attribute.String("limiter", limiter),
		attribute.String("endpoint", endpoint),
	))
}

// RecordTaxonomyReload counts a taxonomy reload attempt. Its signature
// matches taxonomy.Store.OnReload.
func (m *Manager) RecordTaxonomyReload(name string, ok bool) {
	if !m.infraEnabled(func(i config.InfrastructureMetricsConfig) bool { return i.TrackTaxonomyReloads }) {
		return
	}
	m.metrics.TaxonomyReloads.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("taxonomy", name),
		attribute.Bool("success", ok),
	))
}

package observability

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"internmatch/internal/config"
)

func testSettings() Settings {
	return Settings{
		ServiceName:    "internmatch-test",
		ServiceVersion: "test",
		Enabled:        true,
		SampleRate:     1.0,
	}
}

func newTestManager(t *testing.T, cfg *config.Config) (*Manager, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	m, err := NewManager(testSettings(), cfg, WithMetricReader(reader))
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Shutdown(context.Background()) })
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) (metricdata.Metrics, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

// counterValue sums the data points of an int64 counter whose attributes
// include every given key/value.
func counterValue(t *testing.T, rm metricdata.ResourceMetrics, name string, want ...attribute.KeyValue) int64 {
	t.Helper()
	m, ok := findMetric(rm, name)
	if !ok {
		return 0
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "%s is not an int64 sum", name)

	var total int64
	for _, dp := range sum.DataPoints {
		matches := true
		for _, kv := range want {
			v, found := dp.Attributes.Value(kv.Key)
			if !found || v.Emit() != kv.Value.Emit() {
				matches = false
				break
			}
		}
		if matches {
			total += dp.Value
		}
	}
	return total
}

func histogramCount(t *testing.T, rm metricdata.ResourceMetrics, name string) uint64 {
	t.Helper()
	m, ok := findMetric(rm, name)
	if !ok {
		return 0
	}
	var count uint64
	switch h := m.Data.(type) {
	case metricdata.Histogram[int64]:
		for _, dp := range h.DataPoints {
			count += dp.Count
		}
	case metricdata.Histogram[float64]:
		for _, dp := range h.DataPoints {
			count += dp.Count
		}
	default:
		t.Fatalf("%s is not a histogram", name)
	}
	return count
}

func TestRecordAIOperation(t *testing.T) {
	m, reader := newTestManager(t, nil)
	ctx := context.Background()

	m.RecordAIOperation(ctx, "rerank", "gemini-2.0-flash", 120*time.Millisecond, 100, 40, nil)
	m.RecordAIOperation(ctx, "rerank", "gemini-2.0-flash", time.Second, 0, 0, stderrors.New("deadline"))

	rm := collect(t, reader)
	assert.EqualValues(t, 2, counterValue(t, rm, MetricAIRequests, attribute.String("operation", "rerank")))
	assert.EqualValues(t, 1, counterValue(t, rm, MetricAIErrors, attribute.Bool("success", false)))
	assert.EqualValues(t, 2, histogramCount(t, rm, MetricAIDuration))
	assert.EqualValues(t, 3, histogramCount(t, rm, MetricAITokens), "input, output and total for the successful call")
}

func TestPipelineObserver(t *testing.T) {
	m, reader := newTestManager(t, nil)
	ctx := context.Background()

	m.ObserveEmbedding(ctx, 21, 30*time.Millisecond, nil)
	m.ObservePool(ctx, 20, false)
	m.ObserveRerank(ctx, "ok", "ai")
	m.ObserveRerank(ctx, "timeout", "fallback")
	m.ObserveMatch(ctx, 20, 10)
	m.ObserveMatch(ctx, 0, 0)

	rm := collect(t, reader)
	assert.EqualValues(t, 21, counterValue(t, rm, MetricEmbeddedTexts))
	assert.EqualValues(t, 1, histogramCount(t, rm, MetricEmbedDuration))
	assert.EqualValues(t, 1, histogramCount(t, rm, MetricPoolSize))
	assert.EqualValues(t, 1, counterValue(t, rm, MetricRerankOutcomes, attribute.String("outcome", "timeout")))
	assert.EqualValues(t, 2, counterValue(t, rm, MetricRerankOutcomes))
	assert.EqualValues(t, 2, counterValue(t, rm, MetricMatches))
	assert.EqualValues(t, 1, counterValue(t, rm, MetricMatches, attribute.Bool("empty", true)))
	assert.EqualValues(t, 2, histogramCount(t, rm, MetricMatchReturned))
}

func TestServiceMetrics(t *testing.T) {
	m, reader := newTestManager(t, nil)
	ctx := context.Background()

	m.RecordResumeParsed(ctx, "deep", nil)
	m.RecordItemsCleaned(ctx, "internships", 12)
	m.RecordItemsCleaned(ctx, "internships", 0)
	m.RecordRateLimitHit(ctx, "ip", "/match")
	m.RecordTaxonomyReload("india-default", false)

	rm := collect(t, reader)
	assert.EqualValues(t, 1, counterValue(t, rm, MetricResumesParsed, attribute.String("mode", "deep")))
	assert.EqualValues(t, 12, counterValue(t, rm, MetricItemsCleaned, attribute.String("kind", "internships")))
	assert.EqualValues(t, 1, counterValue(t, rm, MetricRateLimitHits, attribute.String("limiter", "ip")))
	assert.EqualValues(t, 1, counterValue(t, rm, MetricTaxonomyReloads, attribute.Bool("success", false)))
}

func TestCustomMetricsGating(t *testing.T) {
	cfg := &config.Config{}
	cfg.Observability.Tracing.Enabled = true
	cfg.Observability.Metrics.Enabled = true
	cfg.Observability.CustomMetrics.BusinessMetrics = config.BusinessMetricsConfig{
		Enabled:      true,
		TrackMatches: true,
	}
	cfg.Observability.CustomMetrics.Infrastructure.Enabled = false
	cfg.Observability.CustomMetrics.AIOperations = config.AIOperationsMetricsConfig{Enabled: true}

	m, reader := newTestManager(t, cfg)
	ctx := context.Background()

	m.ObserveMatch(ctx, 5, 5)
	m.ObserveRerank(ctx, "ok", "ai")
	m.RecordRateLimitHit(ctx, "api_key", "/match")
	m.RecordAIOperation(ctx, "deepParse", "gemini-2.0-flash", time.Second, 10, 10, nil)

	rm := collect(t, reader)
	assert.EqualValues(t, 1, counterValue(t, rm, MetricMatches))
	assert.Zero(t, counterValue(t, rm, MetricRerankOutcomes), "rerank tracking is off")
	assert.Zero(t, counterValue(t, rm, MetricRateLimitHits), "infrastructure metrics are off")
	assert.EqualValues(t, 1, counterValue(t, rm, MetricAIRequests))
	assert.Zero(t, histogramCount(t, rm, MetricAIDuration), "duration tracking is off")
	assert.Zero(t, histogramCount(t, rm, MetricAITokens), "token tracking is off")
}

func TestDisabledManagerIsNoop(t *testing.T) {
	settings := testSettings()
	settings.Enabled = false
	m, err := NewManager(settings, nil)
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		m.ObserveMatch(context.Background(), 1, 1)
		m.RecordAIOperation(context.Background(), "rerank", "m", time.Second, 1, 1, nil)
	})
	assert.Nil(t, m.MetricsHandler())

	var nilManager *Manager
	assert.NotPanics(t, func() { nilManager.RecordTaxonomyReload("x", true) })

	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })
	rec := httptest.NewRecorder()
	m.HTTPMiddleware()(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.NoError(t, m.Shutdown(context.Background()))
}

func TestPrometheusHandlerOnAPIServer(t *testing.T) {
	settings := testSettings()
	settings.Prometheus = PrometheusSettings{Enabled: true, Endpoint: "/metrics"}

	m, err := NewManager(settings, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Shutdown(context.Background()) })

	endpoint, ok := m.ServeMetricsOnAPI()
	require.True(t, ok, "no dedicated port means the API server mounts the endpoint")
	assert.Equal(t, "/metrics", endpoint)

	m.ObserveMatch(context.Background(), 3, 3)

	srv := httptest.NewServer(m.MetricsHandler())
	defer srv.Close()
	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "internmatch_matches_total")
	assert.Contains(t, string(body), "go_goroutines")
}

func TestSettingsFromConfig(t *testing.T) {
	fallback := SettingsFromConfig(nil, "1.2.3")
	assert.Equal(t, "internmatch", fallback.ServiceName)
	assert.Equal(t, "1.2.3", fallback.ServiceVersion)
	assert.Equal(t, "9090", fallback.Prometheus.Port)

	cfg := &config.Config{}
	cfg.Observability.ServiceName = "svc"
	cfg.Observability.Enabled = true
	cfg.Observability.ServiceVersion = "9.9"
	cfg.Observability.SampleRate = 1
	cfg.Observability.Tracing.SampleRate = 0.25
	cfg.Observability.Console.Enabled = true
	cfg.Observability.Prometheus.Enabled = true

	s := SettingsFromConfig(cfg, "1.2.3")
	assert.Equal(t, "9.9", s.ServiceVersion)
	assert.InDelta(t, 0.25, s.SampleRate, 1e-9)
	assert.True(t, s.ConsoleOutput)
	assert.Equal(t, "/metrics", s.Prometheus.Endpoint, "empty endpoint defaults")
}

package ai

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"internmatch/internal/config"
)

func breakerConfig() config.CircuitBreakerConfig {
	return config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		MinRequests:      2,
		FailureThreshold: 0.5,
	}
}

func TestCircuitBreakerIndependentPerOperation(t *testing.T) {
	rerankCB := NewCircuitBreaker[string]("rerank", breakerConfig(), nil)
	parseCB := NewCircuitBreaker[string]("deepParse", breakerConfig(), nil)

	assert.Equal(t, "AI-rerank", rerankCB.GetStats()["name"])
	assert.Equal(t, "AI-deepParse", parseCB.GetStats()["name"])
	assert.Equal(t, "closed", rerankCB.GetStats()["state"])

	backendDown := &googleapi.Error{Code: http.StatusServiceUnavailable}
	for range 2 {
		_, err := rerankCB.Execute(func() (string, error) { return "", backendDown })
		require.Error(t, err)
	}

	assert.True(t, rerankCB.IsOpen())
	assert.False(t, rerankCB.IsHealthy())
	assert.True(t, parseCB.IsHealthy(), "breakers do not share state")

	_, err := rerankCB.Execute(func() (string, error) {
		t.Fatal("open breaker must not call through")
		return "", nil
	})
	assert.Error(t, err)
}

func TestCircuitBreakerIgnoresRequestErrors(t *testing.T) {
	cb := NewCircuitBreaker[string]("rerank", breakerConfig(), nil)
	badRequest := &googleapi.Error{Code: http.StatusBadRequest}

	for range 5 {
		_, err := cb.Execute(func() (string, error) { return "", badRequest })
		require.Error(t, err)
	}
	assert.True(t, cb.IsHealthy(), "client errors do not trip the breaker")
}

func TestCircuitBreakerDisabled(t *testing.T) {
	cfg := breakerConfig()
	cfg.Enabled = false

	cb := NewCircuitBreaker[int]("disabled", cfg, nil)
	assert.Nil(t, cb)

	v, err := cb.Execute(func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, map[string]any{"enabled": false}, cb.GetStats())
	assert.True(t, cb.IsHealthy())
	assert.False(t, cb.IsOpen())
}

func TestModelCircuitBreakerIsLenient(t *testing.T) {
	cb := NewModelCircuitBreaker[string]("rerank", breakerConfig(), nil)
	assert.Equal(t, "AI-rerank-Model", cb.GetStats()["name"])

	down := fmt.Errorf("wrapped: %w", context.DeadlineExceeded)
	for range 4 {
		_, _ = cb.Execute(func() (string, error) { return "", down })
	}
	assert.True(t, cb.IsHealthy(), "needs at least five requests before tripping")
}

func TestIsTransientError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline", context.DeadlineExceeded, true},
		{"throttled", &googleapi.Error{Code: http.StatusTooManyRequests}, true},
		{"server error", &googleapi.Error{Code: http.StatusBadGateway}, true},
		{"bad request", &googleapi.Error{Code: http.StatusBadRequest}, false},
		{"plain", stderrors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isTransientError(tt.err))
		})
	}
}

package ai

import (
	"context"
	"time"

	"internmatch/internal/match"
)

// Provider is a generative backend bound to one operation.
type Provider interface {
	match.Generator
	GetModelInfo(ctx context.Context) *ModelInfo
	GetCircuitBreakerStats() map[string]any
	Close() error
}

var (
	_ Provider       = (*GeminiGenerator)(nil)
	_ match.Embedder = (*GeminiEmbedder)(nil)
	_ match.Embedder = (*HashEmbedder)(nil)
)

// UsageRecorder receives per-call measurements. Implementations must be
// safe for concurrent use.
type UsageRecorder interface {
	RecordAIOperation(ctx context.Context, operation, model string, d time.Duration, inputTokens, outputTokens int64, err error)
}

type nopRecorder struct{}

func (nopRecorder) RecordAIOperation(context.Context, string, string, time.Duration, int64, int64, error) {
}

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

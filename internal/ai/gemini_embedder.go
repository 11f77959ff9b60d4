package ai

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/genai"

	"internmatch/internal/config"
	apperrors "internmatch/internal/errors"
)

const defaultEmbeddingBatchSize = 100

// GeminiEmbedder implements match.Embedder with the Gemini embedding API
type GeminiEmbedder struct {
	client         *genai.Client
	config         config.EmbeddingConfig
	circuitBreaker *CircuitBreaker[[][]float32]
	recorder       UsageRecorder
	logger         *apperrors.Logger
}

// NewGeminiEmbedder creates an embedder backed by Gemini
func NewGeminiEmbedder(cfg config.EmbeddingConfig, recorder UsageRecorder, logger *apperrors.Logger) (*GeminiEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, apperrors.NewConfigError(apperrors.ErrCodeMissingAPIKey, "no API key configured for embeddings", nil)
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, apperrors.NewAIError(apperrors.ErrCodeAIServiceFailed, "Failed to create Gemini client", err)
	}
	return newGeminiEmbedder(client, cfg, recorder, logger), nil
}

func newGeminiEmbedder(client *genai.Client, cfg config.EmbeddingConfig, recorder UsageRecorder, logger *apperrors.Logger) *GeminiEmbedder {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if logger == nil {
		logger = apperrors.NewNopLogger()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultEmbeddingBatchSize
	}
	return &GeminiEmbedder{
		client:         client,
		config:         cfg,
		circuitBreaker: NewCircuitBreaker[[][]float32](config.OperationEmbedding, cfg.CircuitBreaker, logger),
		recorder:       recorder,
		logger:         logger,
	}
}

// Encode embeds texts in order, splitting them into API-sized batches. The
// result has exactly one vector per text or an error.
func (e *GeminiEmbedder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "gemini.embed")
	defer span.End()
	span.SetAttributes(
		attribute.String("ai.model", e.config.Model),
		attribute.Int("input.texts", len(texts)),
	)

	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	vectors := make([][]float32, 0, len(texts))
	var err error
	for lo := 0; lo < len(texts); lo += e.config.BatchSize {
		hi := min(lo+e.config.BatchSize, len(texts))
		var batch [][]float32
		batch, err = e.circuitBreaker.Execute(func() ([][]float32, error) {
			return e.embedBatch(ctx, texts[lo:hi])
		})
		if err != nil {
			break
		}
		vectors = append(vectors, batch...)
	}
	e.recorder.RecordAIOperation(ctx, config.OperationEmbedding, e.config.Model, time.Since(start), 0, 0, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, apperrors.NewAIError(apperrors.ErrCodeEmbeddingFailed, "Failed to embed texts", err).
			WithContext("model", e.config.Model)
	}
	return vectors, nil
}

func (e *GeminiEmbedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}

	embedConfig := &genai.EmbedContentConfig{TaskType: e.config.TaskType}
	if e.config.Dimensions > 0 {
		dims := e.config.Dimensions
		embedConfig.OutputDimensionality = &dims
	}

	resp, err := e.client.Models.EmbedContent(ctx, e.config.Model, contents, embedConfig)
	if err != nil {
		return nil, err
	}
	if resp == nil || len(resp.Embeddings) != len(texts) {
		got := 0
		if resp != nil {
			got = len(resp.Embeddings)
		}
		return nil, fmt.Errorf("embedding batch returned %d vectors for %d texts", got, len(texts))
	}

	out := make([][]float32, len(texts))
	for i, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, fmt.Errorf("embedding %d in batch is empty", i)
		}
		out[i] = emb.Values
	}
	return out, nil
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (e *GeminiEmbedder) GetCircuitBreakerStats() map[string]any {
	return e.circuitBreaker.GetStats()
}

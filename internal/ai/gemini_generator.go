package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"

	"internmatch/internal/config"
	apperrors "internmatch/internal/errors"
	"internmatch/internal/types"
)

const tracerName = "internmatch.ai.gemini"

// defaultModelCheckTimeout bounds GetModelInfo when the caller's context
// has no deadline of its own.
const defaultModelCheckTimeout = 10 * time.Second

// GeminiGenerator implements match.Generator for Google Gemini. One
// generator serves one operation type.
type GeminiGenerator struct {
	client         *genai.Client
	config         *config.OperationAIConfig
	operationType  string
	circuitBreaker *CircuitBreaker[*genai.GenerateContentResponse]
	modelBreaker   *CircuitBreaker[*genai.Model]
	recorder       UsageRecorder
	logger         *apperrors.Logger
}

// NewGeminiGenerator creates a Gemini generator for a specific operation
func NewGeminiGenerator(cfg *config.OperationAIConfig, operationType string, recorder UsageRecorder, logger *apperrors.Logger) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, apperrors.NewConfigError(apperrors.ErrCodeMissingAPIKey,
			fmt.Sprintf("no API key configured for %s", operationType), nil)
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, apperrors.NewAIError(apperrors.ErrCodeAIServiceFailed,
			"Failed to create Gemini client", err)
	}

	return newGeminiGenerator(client, cfg, operationType, recorder, logger), nil
}

func newGeminiGenerator(client *genai.Client, cfg *config.OperationAIConfig, operationType string, recorder UsageRecorder, logger *apperrors.Logger) *GeminiGenerator {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if logger == nil {
		logger = apperrors.NewNopLogger()
	}
	return &GeminiGenerator{
		client:         client,
		config:         cfg,
		operationType:  operationType,
		circuitBreaker: NewCircuitBreaker[*genai.GenerateContentResponse](operationType, cfg.CircuitBreaker, logger),
		modelBreaker:   NewModelCircuitBreaker[*genai.Model](operationType, cfg.CircuitBreaker, logger),
		recorder:       recorder,
		logger:         logger,
	}
}

// Generate sends prompt to the configured model and returns the raw text of
// the first candidate. The call is bounded by the operation timeout even
// when the caller's context has none.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, opts types.GenerateOptions) (string, error) {
	operation := opts.Operation
	if operation == "" {
		operation = g.operationType
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "gemini."+operation)
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.Int("input.prompt_length", len(prompt)),
		attribute.Bool("ai.json_response", opts.JSONResponse),
	)

	if g.config.Timeout != nil && *g.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *g.config.Timeout)
		defer cancel()
	}

	genaiConfig := g.buildConfig(opts)
	if genaiConfig.Temperature != nil {
		span.SetAttributes(attribute.Float64("ai.temperature", float64(*genaiConfig.Temperature)))
	}

	start := time.Now()
	result, err := g.circuitBreaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return g.client.Models.GenerateContent(ctx, g.config.Model, genai.Text(prompt), genaiConfig)
	})
	duration := time.Since(start)

	usage := extractTokenUsage(result)
	var inputTokens, outputTokens int64
	if usage != nil {
		inputTokens, outputTokens = usage.InputTokens, usage.OutputTokens
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", usage.InputTokens),
			attribute.Int64("ai.tokens.output", usage.OutputTokens),
			attribute.Int64("ai.tokens.total", usage.TotalTokens),
		)
	}
	g.recorder.RecordAIOperation(ctx, operation, g.config.Model, duration, inputTokens, outputTokens, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		code := apperrors.ErrCodeAIServiceFailed
		if errors.Is(err, context.DeadlineExceeded) {
			code = apperrors.ErrCodeAITimeout
		}
		return "", apperrors.NewAIError(code, "Failed to generate content for "+operation, err).
			WithContext("operation", operation).
			WithContext("model", g.config.Model)
	}

	text := result.Text()
	if text == "" {
		span.SetStatus(codes.Error, "empty response")
		return "", apperrors.NewAIError(apperrors.ErrCodeAIResponseParseFailed,
			"Empty response from model for "+operation, nil)
	}

	span.SetAttributes(
		attribute.Int("output.text_length", len(text)),
		attribute.Bool("success", true),
	)
	return text, nil
}

// buildConfig maps call options onto the Gemini request configuration.
// Options win over the operation configuration.
func (g *GeminiGenerator) buildConfig(opts types.GenerateOptions) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}

	switch {
	case opts.Temperature > 0:
		temp := opts.Temperature
		cfg.Temperature = &temp
	case g.config.Temperature != nil && *g.config.Temperature > 0:
		temp := *g.config.Temperature
		cfg.Temperature = &temp
	}

	if opts.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = opts.MaxOutputTokens
	}
	if opts.JSONResponse {
		cfg.ResponseMIMEType = "application/json"
	}

	if g.config.UseSystemPrompts == nil || *g.config.UseSystemPrompts {
		if sp := systemPrompt(g.operationType, g.config); sp != "" {
			cfg.SystemInstruction = genai.NewContentFromText(sp, genai.RoleUser)
		}
	}
	return cfg
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiGenerator) GetModelInfo(ctx context.Context) *ModelInfo {
	modelInfo := &ModelInfo{Name: g.config.Model}

	checkCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		checkCtx, cancel = context.WithTimeout(ctx, defaultModelCheckTimeout)
		defer cancel()
	}

	model, err := g.modelBreaker.Execute(func() (*genai.Model, error) {
		return g.client.Models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"operation", g.operationType,
			"error", err.Error())
		return modelInfo
	}

	modelInfo.Available = true
	modelInfo.DisplayName = model.DisplayName
	modelInfo.Version = model.Version

	g.logger.Debug("Model availability check successful",
		"model", g.config.Model,
		"operation", g.operationType,
		"display_name", modelInfo.DisplayName,
		"version", modelInfo.Version)

	return modelInfo
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (g *GeminiGenerator) GetCircuitBreakerStats() map[string]any {
	return map[string]any{
		"ai_operations":    g.circuitBreaker.GetStats(),
		"model_operations": g.modelBreaker.GetStats(),
		"overall_healthy":  g.circuitBreaker.IsHealthy() && g.modelBreaker.IsHealthy(),
	}
}

// Close releases provider resources. The Gemini client holds none in
// single-shot usage.
func (g *GeminiGenerator) Close() error {
	return nil
}

// extractTokenUsage extracts token usage information from Gemini API response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}

// isTransientError reports whether err points at the backend rather than
// the request: network failures, timeouts, throttling and 5xx responses.
func isTransientError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return isTransientStatus(apiErr.Code)
	}

	var genaiErr genai.APIError
	if errors.As(err, &genaiErr) {
		return isTransientStatus(genaiErr.Code)
	}
	return false
}

func isTransientStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

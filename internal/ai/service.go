package ai

import (
	"context"
	"fmt"

	"internmatch/internal/config"
	"internmatch/internal/errors"
	"internmatch/internal/match"
)

// Service bundles the AI backends the pipeline needs: one generator per
// generative operation and one embedder. A missing generator means the
// pipeline takes its deterministic fallbacks.
type Service struct {
	rerank    Provider
	deepParse Provider
	embedder  match.Embedder
	cfg       *config.Config
	logger    *errors.Logger
}

// NewService builds the configured providers. Without an API key the
// generators are left unset and the local embedder is used, so the service
// still works offline.
func NewService(cfg *config.Config, recorder UsageRecorder, logger *errors.Logger) (*Service, error) {
	s := &Service{cfg: cfg, logger: logger}

	rerankCfg := cfg.GetRerankConfig()
	rerank, err := newProvider(&rerankCfg, config.OperationRerank, recorder, logger)
	if err != nil {
		return nil, err
	}
	s.rerank = rerank

	parseCfg := cfg.GetDeepParseConfig()
	deepParse, err := newProvider(&parseCfg, config.OperationDeepParse, recorder, logger)
	if err != nil {
		return nil, err
	}
	s.deepParse = deepParse

	embedder, err := NewEmbedder(cfg.GetEmbeddingConfig(), recorder, logger)
	if err != nil {
		return nil, err
	}
	s.embedder = embedder

	return s, nil
}

// newProvider creates the generator for an operation, or nil when no API
// key is configured.
func newProvider(cfg *config.OperationAIConfig, operationType string, recorder UsageRecorder, logger *errors.Logger) (Provider, error) {
	logger.Debug("Initializing AI provider",
		"provider", cfg.Provider,
		"operation_type", operationType,
		"model", cfg.Model,
		"has_api_key", cfg.APIKey != "")

	switch cfg.Provider {
	case "gemini":
		if cfg.APIKey == "" {
			logger.Warn("No API key configured, generative calls disabled", "operation_type", operationType)
			return nil, nil
		}
		return NewGeminiGenerator(cfg, operationType, recorder, logger)
	case "none":
		return nil, nil
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.Provider), nil)
	}
}

// NewEmbedder creates the configured embedder. The gemini provider falls
// back to the local embedder when no API key is available.
func NewEmbedder(cfg config.EmbeddingConfig, recorder UsageRecorder, logger *errors.Logger) (match.Embedder, error) {
	switch cfg.Provider {
	case "local":
		return NewHashEmbedder(cfg.LocalDims), nil
	case "gemini":
		if cfg.APIKey == "" {
			logger.Warn("No API key configured for embeddings, using local hashing embedder", "dims", cfg.LocalDims)
			return NewHashEmbedder(cfg.LocalDims), nil
		}
		return NewGeminiEmbedder(cfg, recorder, logger)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported embedding provider: %s", cfg.Provider), nil)
	}
}

// Generator returns the generator for an operation. The result is a nil
// interface when the operation has no provider.
func (s *Service) Generator(operationType string) match.Generator {
	var p Provider
	switch operationType {
	case config.OperationRerank:
		p = s.rerank
	case config.OperationDeepParse:
		p = s.deepParse
	}
	if p == nil {
		return nil
	}
	return p
}

// Embedder returns the configured embedder
func (s *Service) Embedder() match.Embedder {
	return s.embedder
}

// RerankPrompt returns the custom rerank template, or "" for the built-in one
func (s *Service) RerankPrompt() string {
	return UserPrompt(config.OperationRerank, s.cfg.GetRerankConfig())
}

// DeepParsePrompt returns the custom deep parse prompt, or "" for the built-in one
func (s *Service) DeepParsePrompt() string {
	return UserPrompt(config.OperationDeepParse, s.cfg.GetDeepParseConfig())
}

// GetModelInfo reports model availability per operation for health checks
func (s *Service) GetModelInfo(ctx context.Context) map[string]*ModelInfo {
	info := make(map[string]*ModelInfo, 2)
	for op, p := range map[string]Provider{config.OperationRerank: s.rerank, config.OperationDeepParse: s.deepParse} {
		if p == nil {
			info[op] = &ModelInfo{Name: "none", Error: "no provider configured"}
			continue
		}
		info[op] = p.GetModelInfo(ctx)
	}
	return info
}

// CircuitBreakerStats returns breaker statistics for every backend
func (s *Service) CircuitBreakerStats() map[string]any {
	stats := map[string]any{}
	if s.rerank != nil {
		stats[config.OperationRerank] = s.rerank.GetCircuitBreakerStats()
	}
	if s.deepParse != nil {
		stats[config.OperationDeepParse] = s.deepParse.GetCircuitBreakerStats()
	}
	if ge, ok := s.embedder.(*GeminiEmbedder); ok {
		stats[config.OperationEmbedding] = ge.GetCircuitBreakerStats()
	}
	return stats
}

// Close releases provider resources
func (s *Service) Close() error {
	for _, p := range []Provider{s.rerank, s.deepParse} {
		if p != nil {
			if err := p.Close(); err != nil {
				return err
			}
		}
	}
	return nil
}

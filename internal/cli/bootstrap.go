package cli

import (
	"context"
	"fmt"
	"time"

	"internmatch/internal/ai"
	"internmatch/internal/config"
	"internmatch/internal/errors"
	"internmatch/internal/match"
	"internmatch/internal/observability"
	"internmatch/internal/taxonomy"
)

// runtime is the fully wired pipeline shared by every command
type runtime struct {
	cfg        *config.Config
	logger     *errors.Logger
	obs        *observability.Manager
	ai         *ai.Service
	store      *taxonomy.Store
	watcher    *taxonomy.Watcher
	matcher    *match.Matcher
	deepParser *match.DeepParser
}

type runtimeOptions struct {
	// serve enables the long-running parts: the taxonomy watcher and the
	// Prometheus scrape endpoint
	serve bool
}

// newRuntime builds observability, the AI backends, the taxonomy store and
// the matcher in dependency order. Close releases them in reverse.
func newRuntime(cfg *config.Config, logger *errors.Logger, opts runtimeOptions) (*runtime, error) {
	rt := &runtime{cfg: cfg, logger: logger}

	settings := observability.SettingsFromConfig(cfg, Version)
	if !opts.serve {
		settings.Prometheus.Enabled = false
	}
	om, err := observability.NewManager(settings, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	rt.obs = om

	aiService, err := ai.NewService(cfg, om, logger)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to create AI service: %w", err)
	}
	rt.ai = aiService

	store, err := taxonomy.OpenStore(cfg.Match.TaxonomyFile, logger)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to load taxonomy: %w", err)
	}
	store.OnReload(om.RecordTaxonomyReload)
	rt.store = store

	if opts.serve && cfg.Match.WatchTaxonomy && store.Path() != "" {
		watcher, err := taxonomy.NewWatcher(store, cfg.Match.WatchDebounce, logger)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("failed to create taxonomy watcher: %w", err)
		}
		rt.watcher = watcher
	}

	matchSettings := cfg.Match.Settings()
	matcher, err := match.New(match.Deps{
		Embedder:     aiService.Embedder(),
		Generator:    aiService.Generator(config.OperationRerank),
		Taxonomy:     store,
		Settings:     matchSettings,
		RerankPrompt: aiService.RerankPrompt(),
		Observer:     om,
		Logger:       logger,
	})
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to create matcher: %w", err)
	}
	rt.matcher = matcher

	rt.deepParser = match.NewDeepParser(
		aiService.Generator(config.OperationDeepParse),
		store,
		matchSettings,
		aiService.DeepParsePrompt(),
		logger,
	)

	logger.Info("Pipeline ready",
		"taxonomy", store.Current().Name,
		"rerank_enabled", aiService.Generator(config.OperationRerank) != nil,
		"deep_parse_enabled", aiService.Generator(config.OperationDeepParse) != nil,
		"observability", om.Enabled())
	return rt, nil
}

// Close flushes telemetry and releases provider resources
func (rt *runtime) Close() {
	if rt.ai != nil {
		if err := rt.ai.Close(); err != nil {
			rt.logger.LogError(err, "Failed to close AI service")
		}
	}
	if rt.obs != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rt.obs.Shutdown(ctx); err != nil {
			rt.logger.LogError(err, "Failed to shutdown observability")
		}
	}
}

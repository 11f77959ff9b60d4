package config

import (
	"time"

	"github.com/spf13/viper"

	"internmatch/internal/match"
)

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// AI Configuration - Global defaults
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.timeout", 30*time.Second)
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.useSystemPrompts", true)

	// AI Configuration - Rerank operation defaults
	v.SetDefault("ai.rerank.provider", "gemini")
	v.SetDefault("ai.rerank.model", "")
	v.SetDefault("ai.rerank.timeout", 10*time.Second) // The pipeline abandons the call earlier
	v.SetDefault("ai.rerank.apiKey", "")
	v.SetDefault("ai.rerank.temperature", 0.8)
	v.SetDefault("ai.rerank.useSystemPrompts", true)

	// AI Configuration - Deep parse operation defaults
	v.SetDefault("ai.deepParse.provider", "gemini")
	v.SetDefault("ai.deepParse.model", "")
	v.SetDefault("ai.deepParse.timeout", 30*time.Second)
	v.SetDefault("ai.deepParse.apiKey", "")
	v.SetDefault("ai.deepParse.temperature", 0.1) // Extraction wants stable output
	v.SetDefault("ai.deepParse.useSystemPrompts", true)

	// AI Configuration - Embedding defaults
	v.SetDefault("ai.embedding.provider", "gemini")
	v.SetDefault("ai.embedding.model", "text-embedding-004")
	v.SetDefault("ai.embedding.apiKey", "")
	v.SetDefault("ai.embedding.timeout", 15*time.Second)
	v.SetDefault("ai.embedding.dimensions", 0)
	v.SetDefault("ai.embedding.taskType", "SEMANTIC_SIMILARITY")
	v.SetDefault("ai.embedding.batchSize", 100)
	v.SetDefault("ai.embedding.localDims", 384)

	// Circuit Breaker Configuration defaults for all operations
	for _, op := range []string{"rerank", "deepParse", "embedding"} {
		v.SetDefault("ai."+op+".circuitBreaker.enabled", true)
		v.SetDefault("ai."+op+".circuitBreaker.maxRequests", 3)
		v.SetDefault("ai."+op+".circuitBreaker.interval", 60*time.Second)
		v.SetDefault("ai."+op+".circuitBreaker.timeout", 30*time.Second)
		v.SetDefault("ai."+op+".circuitBreaker.minRequests", 3)
		v.SetDefault("ai."+op+".circuitBreaker.failureThreshold", 0.6)
	}

	setMatchDefaults(v)

	// Server Configuration
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 60*time.Second)
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.shutdownTimeout", 30*time.Second)
	v.SetDefault("server.cleanBatchThreshold", 50)
	v.SetDefault("server.cleanWorkers", 4)
	// TLS Configuration defaults
	v.SetDefault("server.tls.mode", "disabled") // disabled, server
	v.SetDefault("server.tls.certFile", "")
	v.SetDefault("server.tls.keyFile", "")
	v.SetDefault("server.tls.minVersion", "1.2")
	// API Authentication defaults
	v.SetDefault("server.apiKeys", []string{})
	// Rate limiting defaults
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", false)
	v.SetDefault("server.rateLimit.window", time.Minute)

	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "yaml", "text", "markdown"})
	v.SetDefault("app.maxFileSize", 5*1024*1024) // 5MB, room for a 5000 listing batch

	// Vault Configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.apiKeys", "")
	v.SetDefault("vault.secrets.geminiKey", "")

	// Observability Configuration
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "internmatch")
	v.SetDefault("observability.serviceVersion", "")  // Will use app version if empty
	v.SetDefault("observability.serviceInstance", "") // Will be auto-generated if empty
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)

	// Tracing Configuration
	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)

	// Metrics Configuration
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)

	// Custom Metrics Configuration
	v.SetDefault("observability.customMetrics.aiOperations.enabled", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackDuration", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackTokenUsage", true)
	v.SetDefault("observability.customMetrics.businessMetrics.enabled", true)
	v.SetDefault("observability.customMetrics.businessMetrics.trackMatches", true)
	v.SetDefault("observability.customMetrics.businessMetrics.trackRerank", true)
	v.SetDefault("observability.customMetrics.businessMetrics.trackEmbeddings", true)
	v.SetDefault("observability.customMetrics.businessMetrics.trackParsing", true)
	v.SetDefault("observability.customMetrics.businessMetrics.trackCleanedData", true)
	v.SetDefault("observability.customMetrics.infrastructure.enabled", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackRateLimits", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackTaxonomyReloads", true)

	// Console Configuration
	v.SetDefault("observability.console.enabled", false)
	v.SetDefault("observability.console.prettyPrint", true)

	// Prometheus Configuration
	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")

	// OTLP Configuration
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})

	// Health Check Configuration
	v.SetDefault("observability.healthCheck.timeout", 15*time.Second)
	v.SetDefault("observability.healthCheck.aiModelCheckTimeout", 10*time.Second)
}

// setMatchDefaults mirrors match.DefaultSettings so every knob can be
// overridden from the file or the environment.
func setMatchDefaults(v *viper.Viper) {
	d := match.DefaultSettings()

	v.SetDefault("match.weights.semanticWeight", d.Weights.SemanticWeight)
	v.SetDefault("match.weights.skillBoostPerMatch", d.Weights.SkillBoostPerMatch)
	v.SetDefault("match.weights.skillBoostSynonym", d.Weights.SkillBoostSynonym)
	v.SetDefault("match.weights.skillCoverageWeight", d.Weights.SkillCoverageWeight)
	v.SetDefault("match.weights.skillBoostCap", d.Weights.SkillBoostCap)
	v.SetDefault("match.weights.localBonus", d.Weights.LocalBonus)
	v.SetDefault("match.weights.remoteBonus", d.Weights.RemoteBonus)
	v.SetDefault("match.weights.regionalBonus", d.Weights.RegionalBonus)
	v.SetDefault("match.weights.anywhereBonus", d.Weights.AnywhereBonus)
	v.SetDefault("match.weights.onSectorMultiplier", d.Weights.OnSectorMultiplier)
	v.SetDefault("match.weights.offSectorMultiplier", d.Weights.OffSectorMultiplier)
	v.SetDefault("match.weights.scoreFloor", d.Weights.ScoreFloor)
	v.SetDefault("match.weights.scoreCeiling", d.Weights.ScoreCeiling)
	v.SetDefault("match.weights.minSkillMatchesOffSector", d.Weights.MinSkillMatches)

	v.SetDefault("match.pool.local", d.Pool.Local)
	v.SetDefault("match.pool.remote", d.Pool.Remote)
	v.SetDefault("match.pool.regional", d.Pool.Regional)
	v.SetDefault("match.pool.total", d.Pool.Total)
	v.SetDefault("match.pool.other", d.Pool.Other)

	v.SetDefault("match.limits.summaryChars", d.Limits.SummaryChars)
	v.SetDefault("match.limits.descriptionChars", d.Limits.DescriptionChars)
	v.SetDefault("match.limits.requirementsChars", d.Limits.RequirementsChars)
	v.SetDefault("match.limits.gapAnalysisTop", d.Limits.GapAnalysisTop)
	v.SetDefault("match.limits.missingSkills", d.Limits.MissingSkills)
	v.SetDefault("match.limits.minDeepParseChars", d.Limits.MinDeepParseChars)
	v.SetDefault("match.limits.maxResumeChars", d.Limits.MaxResumeChars)
	v.SetDefault("match.limits.maxOpportunities", d.Limits.MaxOpportunities)
	v.SetDefault("match.limits.explanationSkills", d.Limits.ExplanationSkills)
	v.SetDefault("match.limits.maxScoreAdjustment", d.Limits.MaxScoreAdjustment)
	v.SetDefault("match.limits.adjustmentSkillCap", d.Limits.AdjustmentSkillCap)
	v.SetDefault("match.limits.adjustmentNoSkillPenalty", d.Limits.AdjustmentNoSkillPt)
	v.SetDefault("match.limits.adjustmentLocal", d.Limits.AdjustmentLocal)
	v.SetDefault("match.limits.adjustmentRemote", d.Limits.AdjustmentRemote)
	v.SetDefault("match.limits.adjustmentRegional", d.Limits.AdjustmentRegional)

	v.SetDefault("match.rerank.enabled", d.Rerank.Enabled)
	v.SetDefault("match.rerank.candidates", d.Rerank.Candidates)
	v.SetDefault("match.rerank.promptJobs", d.Rerank.PromptJobs)
	v.SetDefault("match.rerank.promptSkills", d.Rerank.PromptSkills)
	v.SetDefault("match.rerank.snippetChars", d.Rerank.SnippetChars)
	v.SetDefault("match.rerank.timeout", d.Rerank.Timeout)
	v.SetDefault("match.rerank.temperature", d.Rerank.Temperature)
	v.SetDefault("match.rerank.maxOutputTokens", d.Rerank.MaxOutputTokens)

	v.SetDefault("match.deepParse.timeout", d.DeepParse.Timeout)
	v.SetDefault("match.deepParse.temperature", d.DeepParse.Temperature)
	v.SetDefault("match.deepParse.maxOutputTokens", d.DeepParse.MaxOutputTokens)

	v.SetDefault("match.taxonomyFile", "")
	v.SetDefault("match.watchTaxonomy", false)
	v.SetDefault("match.watchDebounce", 500*time.Millisecond)
}

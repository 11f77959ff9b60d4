package config

// Operation names used for AI configuration, prompts and metrics.
const (
	OperationRerank    = "rerank"
	OperationDeepParse = "deepParse"
	OperationEmbedding = "embedding"
)

// applyOperationDefaults applies global defaults to operation-specific configuration
func (c *Config) applyOperationDefaults(opCfg *OperationAIConfig) {
	if opCfg.Provider == "" {
		opCfg.Provider = c.AI.Provider
	}
	if opCfg.Model == "" {
		opCfg.Model = c.AI.Model
	}
	if opCfg.Timeout == nil {
		opCfg.Timeout = &c.AI.Timeout
	}
	if opCfg.APIKey == "" {
		opCfg.APIKey = c.AI.APIKey
	}
	if opCfg.Temperature == nil {
		opCfg.Temperature = &c.AI.Temperature
	}
	// UseSystemPrompts: apply global default only if not explicitly set
	if opCfg.UseSystemPrompts == nil {
		opCfg.UseSystemPrompts = &c.AI.UseSystemPrompts
	}
}

// GetRerankConfig returns the AI configuration for the re-rank call with fallback to global config
func (c *Config) GetRerankConfig() OperationAIConfig {
	config := c.AI.Rerank
	c.applyOperationDefaults(&config)
	inheritPrompts(&config.CustomPrompts, c.AI.CustomPrompts, OperationRerank)
	return config
}

// GetDeepParseConfig returns the AI configuration for deep resume parsing with fallback to global config
func (c *Config) GetDeepParseConfig() OperationAIConfig {
	config := c.AI.DeepParse
	c.applyOperationDefaults(&config)
	inheritPrompts(&config.CustomPrompts, c.AI.CustomPrompts, OperationDeepParse)
	return config
}

// GetEmbeddingConfig returns the embedding configuration with the global API key as fallback
func (c *Config) GetEmbeddingConfig() EmbeddingConfig {
	config := c.AI.Embedding
	if config.APIKey == "" {
		config.APIKey = c.AI.APIKey
	}
	if config.Timeout <= 0 {
		config.Timeout = c.AI.Timeout
	}
	return config
}

// inheritPrompts fills the operation's empty prompt fields from the global ones.
func inheritPrompts(dst *PromptConfig, global PromptConfig, operation string) {
	fill := func(target *string, fallback string) {
		if *target == "" {
			*target = fallback
		}
	}
	switch operation {
	case OperationRerank:
		fill(&dst.SystemPrompts.Rerank, global.SystemPrompts.Rerank)
		fill(&dst.SystemPrompts.RerankFile, global.SystemPrompts.RerankFile)
		fill(&dst.UserPrompts.Rerank, global.UserPrompts.Rerank)
		fill(&dst.UserPrompts.RerankFile, global.UserPrompts.RerankFile)
	case OperationDeepParse:
		fill(&dst.SystemPrompts.DeepParse, global.SystemPrompts.DeepParse)
		fill(&dst.SystemPrompts.DeepParseFile, global.SystemPrompts.DeepParseFile)
		fill(&dst.UserPrompts.DeepParse, global.UserPrompts.DeepParse)
		fill(&dst.UserPrompts.DeepParseFile, global.UserPrompts.DeepParseFile)
	}
}

package ai

import "internmatch/internal/config"

// SystemPrompts contains the system-level instructions per operation
type SystemPrompts struct {
	Rerank    string
	DeepParse string
}

// DefaultSystemPrompts provides the default system instructions
var DefaultSystemPrompts = SystemPrompts{
	Rerank: `You are a career counsellor for students applying to government-sponsored internships.

- Judge fit from the candidate's verified skills, location preference and sector interest
- Never credit the candidate with skills that are not listed
- Keep explanations short, concrete and encouraging
- Every learning resource must be a real, free, publicly reachable page
- Answer with a JSON array only`,

	DeepParse: `You are a resume parser that extracts facts, not opinions.

- Copy names, contact details and dates exactly as written
- Leave a field empty when the resume does not state it
- Do not infer skills from job titles alone
- Answer with a single JSON object only`,
}

// systemPrompt resolves the system prompt for an operation: file content
// first, then the inline configuration, then the built-in default.
func systemPrompt(operationType string, cfg *config.OperationAIConfig) string {
	loaded := config.GetPromptsForOperation(operationType)
	switch operationType {
	case config.OperationRerank:
		return resolvePrompt(loaded.System, cfg.CustomPrompts.SystemPrompts.Rerank, DefaultSystemPrompts.Rerank)
	case config.OperationDeepParse:
		return resolvePrompt(loaded.System, cfg.CustomPrompts.SystemPrompts.DeepParse, DefaultSystemPrompts.DeepParse)
	default:
		return ""
	}
}

// UserPrompt resolves the user prompt template for an operation. An empty
// result tells the pipeline to use its built-in template.
func UserPrompt(operationType string, cfg config.OperationAIConfig) string {
	loaded := config.GetPromptsForOperation(operationType)
	switch operationType {
	case config.OperationRerank:
		return resolvePrompt(loaded.User, cfg.CustomPrompts.UserPrompts.Rerank, "")
	case config.OperationDeepParse:
		return resolvePrompt(loaded.User, cfg.CustomPrompts.UserPrompts.DeepParse, "")
	default:
		return ""
	}
}

// resolvePrompt selects the prompt in priority order:
// 1. A prompt loaded from a file.
// 2. A prompt defined directly in the configuration.
// 3. A hardcoded default prompt.
func resolvePrompt(loadedFromFile, fromConfig, fromDefault string) string {
	if loadedFromFile != "" {
		return loadedFromFile
	}
	if fromConfig != "" {
		return fromConfig
	}
	return fromDefault
}

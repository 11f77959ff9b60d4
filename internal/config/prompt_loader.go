package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// promptFile names one configurable prompt file
type promptFile struct {
	path      string
	kind      string // "system" or "user"
	operation string
}

// promptFiles lists every prompt file path the configuration may carry.
// Operation-specific paths come after the global ones so they win on load.
func (c *Config) promptFiles() []promptFile {
	global := c.AI.CustomPrompts
	return []promptFile{
		{global.SystemPrompts.RerankFile, "system", OperationRerank},
		{global.UserPrompts.RerankFile, "user", OperationRerank},
		{global.SystemPrompts.DeepParseFile, "system", OperationDeepParse},
		{global.UserPrompts.DeepParseFile, "user", OperationDeepParse},
		{c.AI.Rerank.CustomPrompts.SystemPrompts.RerankFile, "system", OperationRerank},
		{c.AI.Rerank.CustomPrompts.UserPrompts.RerankFile, "user", OperationRerank},
		{c.AI.DeepParse.CustomPrompts.SystemPrompts.DeepParseFile, "system", OperationDeepParse},
		{c.AI.DeepParse.CustomPrompts.UserPrompts.DeepParseFile, "user", OperationDeepParse},
	}
}

// loadPromptsFromFiles loads custom prompts from external files if file paths are specified
func (c *Config) loadPromptsFromFiles() error {
	log.Println("[CONFIG] Starting custom prompt loading from files")

	var loaded AllLoadedPrompts
	count := 0
	for _, pf := range c.promptFiles() {
		if pf.path == "" {
			continue
		}
		content, err := c.loadPromptFromFile(pf.path, pf.kind, pf.operation)
		if err != nil {
			return fmt.Errorf("failed to load %s %s prompt: %w", pf.operation, pf.kind, err)
		}

		target := &loaded.Rerank
		if pf.operation == OperationDeepParse {
			target = &loaded.DeepParse
		}
		if pf.kind == "system" {
			target.System = content
		} else {
			target.User = content
		}
		count++
	}

	storeLoadedPrompts(loaded)

	if count == 0 {
		log.Println("[CONFIG] No custom prompt files configured - using built-in defaults")
	} else {
		log.Printf("[CONFIG] Total custom prompt files loaded: %d", count)
	}
	return nil
}

// loadPromptFromFile loads a prompt from a file with proper error handling and logging
func (c *Config) loadPromptFromFile(filePath, promptType, operation string) (string, error) {
	// Resolve relative paths
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s %s prompt file '%s': %w", promptType, operation, filePath, err)
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("%s %s prompt file not found: %s", promptType, operation, absPath)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s %s prompt file '%s': %w", promptType, operation, absPath, err)
	}

	trimmedContent := strings.TrimSpace(string(content))
	if trimmedContent == "" {
		return "", fmt.Errorf("%s %s prompt file '%s' is empty", promptType, operation, absPath)
	}

	log.Printf("[CONFIG] Successfully loaded %s %s prompt from file: %s (%d characters)",
		promptType, operation, absPath, len(trimmedContent))

	return trimmedContent, nil
}

// validatePromptFiles validates that prompt files exist and are readable before loading
func (c *Config) validatePromptFiles() error {
	var validationErrors []string

	for _, pf := range c.promptFiles() {
		if pf.path == "" {
			continue
		}
		absPath, err := filepath.Abs(pf.path)
		if err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("invalid path for %s %s prompt: %s", pf.kind, pf.operation, pf.path))
			continue
		}
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			validationErrors = append(validationErrors, fmt.Sprintf("%s %s prompt file not found: %s", pf.kind, pf.operation, absPath))
		}
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("prompt file validation failed:\n%s", strings.Join(validationErrors, "\n"))
	}
	return nil
}

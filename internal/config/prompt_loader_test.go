package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePrompt(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadPromptsFromFiles(t *testing.T) {
	dir := t.TempDir()
	globalSystem := writePrompt(t, dir, "system.rerank.md", "global rerank system")
	rerankSystem := writePrompt(t, dir, "system.rerank.op.md", "  operation rerank system\n")
	parseUser := writePrompt(t, dir, "user.deepparse.md", "parse this: {{.ResumeText}}")

	config := &Config{
		AI: AIConfig{
			CustomPrompts: PromptConfig{
				SystemPrompts: SystemPrompts{RerankFile: globalSystem},
			},
			Rerank: OperationAIConfig{
				CustomPrompts: PromptConfig{SystemPrompts: SystemPrompts{RerankFile: rerankSystem}},
			},
			DeepParse: OperationAIConfig{
				CustomPrompts: PromptConfig{UserPrompts: UserPrompts{DeepParseFile: parseUser}},
			},
		},
	}

	require.NoError(t, config.validatePromptFiles())
	require.NoError(t, config.loadPromptsFromFiles())

	rerank := GetPromptsForOperation(OperationRerank)
	assert.Equal(t, "operation rerank system", rerank.System, "operation file wins over global file")
	assert.Empty(t, rerank.User)

	parse := GetPromptsForOperation(OperationDeepParse)
	assert.Equal(t, "parse this: {{.ResumeText}}", parse.User)
	assert.Empty(t, parse.System)

	assert.Equal(t, LoadedPrompts{}, GetPromptsForOperation("unknown"))

	// Paths stay in the config untouched.
	assert.Equal(t, rerankSystem, config.AI.Rerank.CustomPrompts.SystemPrompts.RerankFile)

	// A reload with no files clears the previous content.
	require.NoError(t, (&Config{}).loadPromptsFromFiles())
	assert.Empty(t, GetPromptsForOperation(OperationRerank).System)
}

func TestValidatePromptFiles(t *testing.T) {
	dir := t.TempDir()
	valid := writePrompt(t, dir, "valid.md", "Valid content")

	config := &Config{
		AI: AIConfig{
			DeepParse: OperationAIConfig{
				CustomPrompts: PromptConfig{SystemPrompts: SystemPrompts{DeepParseFile: valid}},
			},
		},
	}
	assert.NoError(t, config.validatePromptFiles())

	config.AI.CustomPrompts.UserPrompts.RerankFile = filepath.Join(dir, "missing.md")
	err := config.validatePromptFiles()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user rerank prompt file not found")
}

func TestLoadPromptFromFile(t *testing.T) {
	dir := t.TempDir()
	config := &Config{}

	content, err := config.loadPromptFromFile(writePrompt(t, dir, "ok.md", "Prompt body"), "system", OperationRerank)
	require.NoError(t, err)
	assert.Equal(t, "Prompt body", content)

	_, err = config.loadPromptFromFile(writePrompt(t, dir, "blank.md", "  \n"), "system", OperationRerank)
	assert.ErrorContains(t, err, "is empty")

	_, err = config.loadPromptFromFile(filepath.Join(dir, "nope.md"), "system", OperationRerank)
	assert.ErrorContains(t, err, "not found")
}

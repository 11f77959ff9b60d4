package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"internmatch/internal/types"
)

const testConfig = `
ai:
  provider: none
  rerank:
    provider: none
  deepParse:
    provider: none
  embedding:
    provider: local
    localDims: 64
app:
  logLevel: error
observability:
  enabled: false
`

// runCLI executes the root command with args and returns its stdout
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(testConfig), 0600))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		resetFlags()
	})

	err := Execute(context.Background())
	return out.String(), err
}

// resetFlags restores every subcommand flag to its default. Flag values
// live in package variables and survive between Execute calls.
func resetFlags() {
	for _, cmd := range rootCmd.Commands() {
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
}

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestDecodeCleanItems(t *testing.T) {
	items, err := decodeCleanItems([]byte(` [{"location":"Pune"}]`))
	require.NoError(t, err)
	assert.Equal(t, []types.CleanItem{{"location": "Pune"}}, items)

	items, err = decodeCleanItems([]byte(`{"items":[{"location":null},{"title":"x"}]}`))
	require.NoError(t, err)
	assert.Len(t, items, 2)

	_, err = decodeCleanItems([]byte(`{"rows":[]}`))
	assert.ErrorContains(t, err, "no items")

	_, err = decodeCleanItems([]byte(`[{`))
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, Execute(context.Background()))
	assert.Contains(t, out.String(), "internmatch version dev")
}

func TestCleanCommand(t *testing.T) {
	input := writeInput(t, "items.json", `[{"location":"('chennai')"},{"location":null,"description":"<b>Go</b> APIs"}]`)

	out, err := runCLI(t, "clean", input, "--format", "json")
	require.NoError(t, err)

	var items []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &items), out)
	require.Len(t, items, 2)
	assert.Equal(t, "Chennai", items[0]["location"])
	assert.Equal(t, "Remote", items[1]["location"])
	assert.Equal(t, "Go APIs", items[1]["description"])
}

func TestParseCommand(t *testing.T) {
	resume := writeInput(t, "resume.txt", "Bachelor of Science. 3 years experience with Python, Docker and SQL.")

	out, err := runCLI(t, "parse", resume, "--format", "json", "--skills", "Figma")
	require.NoError(t, err)

	var parsed types.ParsedResume
	require.NoError(t, json.Unmarshal([]byte(out), &parsed), out)
	assert.Subset(t, parsed.Skills, []string{"python", "docker", "sql", "figma"})
	assert.Equal(t, 3, parsed.ExperienceYears)

	out, err = runCLI(t, "analyze", resume, "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "RESUME ANALYSIS (fallback)")

	short := writeInput(t, "short.txt", "Go")
	_, err = runCLI(t, "analyze", short, "--format", "json")
	assert.ErrorContains(t, err, "RESUME_TOO_SHORT")
}

func TestMatchCommand(t *testing.T) {
	request := writeInput(t, "request.yaml", `
student:
  name: Asha
  skills: [Python, SQL]
  preferred_locations: [Bangalore]
internships:
  - id: "1"
    role: Data Analyst Intern
    location: Bangalore
    skills_required: Python, SQL
  - id: "2"
    role: Sales Intern
    location: Delhi
    skills_required: Negotiation
`)

	out, err := runCLI(t, "match", request, "--format", "json")
	require.NoError(t, err)

	var resp types.MatchResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	assert.Equal(t, 2, resp.Meta.Candidates)
	assert.Equal(t, "fallback", resp.Meta.RerankSource)

	_, err = runCLI(t, "match", request, "--format", "xml")
	assert.ErrorContains(t, err, "unsupported output format")

	_, err = runCLI(t, "match", request, "--format", "json", "--work-preference", "moon")
	assert.Error(t, err)
}

func TestTaxonomyCommand(t *testing.T) {
	out, err := runCLI(t, "taxonomy")
	require.NoError(t, err)
	assert.Contains(t, out, "(built-in)")
	assert.Contains(t, out, "skills:")

	out, err = runCLI(t, "taxonomy", "--export")
	require.NoError(t, err)
	assert.Contains(t, out, "skills:")
	assert.Contains(t, out, "regions:")
}

package formatters

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"internmatch/internal/types"
)

func sampleMatch() types.MatchResponse {
	return types.MatchResponse{
		Results: []types.RankedOpportunity{{
			Opportunity:     types.Opportunity{ID: "1", Role: "Data Analyst Intern", Company: "Acme | Labs"},
			LocationLabel:   "Bangalore (your city)",
			MatchPercentage: "82%",
			MatchLabel:      "Strong match",
			MatchedSkills:   []string{"python", "sql"},
			GapAnalysis:     &types.GapAnalysis{MissingSkills: []string{"excel"}},
			AIExplanation:   "Your Python and SQL cover the core of this role.",
			Roadmap: &types.Roadmap{
				Summary: "Close the excel gap",
				Days:    []types.RoadmapDay{{Day: 1, Topic: "Excel basics", Action: "Watch a tutorial", Link: "https://example.com"}},
			},
		}},
		Meta: types.MatchMeta{Candidates: 3, PoolSize: 2, Returned: 1, RerankSource: "llm", TaxonomyName: "default"},
	}
}

func TestFormatMatch(t *testing.T) {
	r := NewFormatterRegistry()

	text, err := r.Format(sampleMatch(), "text")
	require.NoError(t, err)
	assert.Contains(t, text, "1 of 3 listings")
	assert.Contains(t, text, "1. Data Analyst Intern at Acme | Labs")
	assert.Contains(t, text, "Missing skills: excel")
	assert.Contains(t, text, "Day 1: Excel basics - Watch a tutorial")

	md, err := r.Format(sampleMatch(), "markdown")
	require.NoError(t, err)
	assert.Contains(t, md, "# Internship Recommendations")
	assert.Contains(t, md, `Acme \| Labs`)
	assert.Contains(t, md, "[Excel basics](https://example.com)")

	empty, err := r.Format(types.MatchResponse{}, "text")
	require.NoError(t, err)
	assert.Contains(t, empty, "No matching internships found.")
}

func TestFormatResumes(t *testing.T) {
	r := NewFormatterRegistry()

	text, err := r.Format(types.ParsedResume{Skills: []string{"go"}, ExperienceYears: 2}, "text")
	require.NoError(t, err)
	assert.Contains(t, text, "Skills: go")
	assert.Contains(t, text, "Education: none")
	assert.Contains(t, text, "Experience: 2 years")

	profile := types.DeepProfile{FullName: "Asha", ExtractedSkills: []string{"python"}, Source: "llm", ResumeStrengthScore: 70}
	md, err := r.Format(profile, "markdown")
	require.NoError(t, err)
	assert.Contains(t, md, "# Resume Analysis: Asha")
	assert.Contains(t, md, "- python")

	text, err = r.Format(profile, "text")
	require.NoError(t, err)
	assert.Contains(t, text, "RESUME ANALYSIS (llm)")
	assert.Contains(t, text, "Resume strength: 70/100")
}

func TestGenericFormats(t *testing.T) {
	r := NewFormatterRegistry()
	items := []types.CleanItem{{"location": "Chennai"}}

	out, err := r.Format(items, "json")
	require.NoError(t, err)
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "Chennai", decoded[0]["location"])

	out, err = r.Format(types.ParsedResume{Skills: []string{"go"}}, "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "experience_years: 0")
	assert.Contains(t, out, "- go")

	_, err = r.Format(items, "text")
	assert.ErrorContains(t, err, "no formatter found")

	assert.ElementsMatch(t, []string{"json", "yaml", "text", "markdown"}, r.GetSupportedFormats())
}

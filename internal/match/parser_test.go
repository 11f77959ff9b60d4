package match

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"internmatch/internal/taxonomy"
)

func TestParseResume(t *testing.T) {
	tax := taxonomy.Default()

	t.Run("empty text keeps existing skills", func(t *testing.T) {
		got := ParseResume(tax, "   \n ", []string{"Python", "python", " SQL "}, 300)
		assert.Equal(t, []string{"python", "sql"}, got.Skills)
		assert.Empty(t, got.Education)
		assert.Zero(t, got.ExperienceYears)
		assert.Empty(t, got.Summary)
	})

	t.Run("experience takes the maximum", func(t *testing.T) {
		got := ParseResume(tax, "3+ years experience in support. 5+ years management. 1 year abroad.", nil, 300)
		assert.Equal(t, 5, got.ExperienceYears)
	})

	t.Run("education follows list order", func(t *testing.T) {
		got := ParseResume(tax, "Completed my Master of Science after a Bachelor degree", nil, 300)
		assert.Equal(t, "bachelor", got.Education)

		got = ParseResume(tax, "PhD candidate", nil, 300)
		assert.Equal(t, "phd", got.Education)
	})

	t.Run("skills are word bounded", func(t *testing.T) {
		got := ParseResume(tax, "Built services in C++ and Go, deployed with Docker. Machine Learning hobbyist.", []string{"Figma"}, 300)
		assert.Subset(t, got.Skills, []string{"c++", "go", "docker", "machine learning", "figma"})
		assert.NotContains(t, got.Skills, "c")
		assert.NotContains(t, got.Skills, "r")
	})

	t.Run("summary is truncated", func(t *testing.T) {
		text := "  " + strings.Repeat("a", 400) + "  "
		got := ParseResume(tax, text, nil, 300)
		assert.Len(t, got.Summary, 300)
	})
}

func TestMergeSkills(t *testing.T) {
	assert.Equal(t, []string{"go", "python", "sql"}, MergeSkills([]string{"Python", "SQL"}, []string{"sql", " go", ""}))
}

func TestBuildTexts(t *testing.T) {
	limits := DefaultSettings().Limits

	o := opp("1", "Python Intern", "('Chennai')", "Python, SQL")
	o.Description = strings.Repeat("d", 600)
	text := BuildOpportunityText(o, limits)
	assert.True(t, strings.HasPrefix(text, "Python Intern Acme 1 Technology Chennai Python, SQL "))
	assert.Equal(t, 500, strings.Count(text, "d"))

	o.SkillsRequired = ""
	o.Skills = "Go"
	assert.Contains(t, BuildOpportunityText(o, limits), " Go ")
}

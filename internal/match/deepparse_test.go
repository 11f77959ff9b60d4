package match

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "internmatch/internal/errors"
	"internmatch/internal/taxonomy"
	"internmatch/internal/types"
)

const sampleResume = `Priya Sharma
priya.sharma@example.com | +91 9876543210
B.Tech in Computer Science, 2025. 2 years of freelance web work.
Skills: Python, React, SQL, Docker.`

func newTestDeepParser(gen Generator) *DeepParser {
	return NewDeepParser(gen, taxonomy.NewStore(nil, "", nil), DefaultSettings(), "", nil)
}

func TestDeepParseTooShort(t *testing.T) {
	_, err := newTestDeepParser(nil).Parse(context.Background(), "  Python developer  ")
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
	assert.Equal(t, apperrors.ErrCodeResumeTooShort, appErr.Code)
}

func TestDeepParseFallback(t *testing.T) {
	for name, gen := range map[string]Generator{
		"no generator":    nil,
		"generator error": &stubGenerator{err: errors.New("unavailable")},
		"prose response":  &stubGenerator{response: "Sorry, I can only summarise resumes."},
		"array response":  &stubGenerator{response: `["python"]`},
	} {
		t.Run(name, func(t *testing.T) {
			got, err := newTestDeepParser(gen).Parse(context.Background(), sampleResume)
			require.NoError(t, err)

			assert.Equal(t, SourceFallback, got.Source)
			assert.Equal(t, "Candidate Name", got.FullName)
			assert.Equal(t, "priya.sharma@example.com", got.Email)
			assert.Equal(t, "+91 9876543210", got.Phone)
			assert.Equal(t, "Entry", got.ExperienceLevel)
			assert.Equal(t, 2, got.ExperienceYears)
			assert.Equal(t, 50, got.ResumeStrengthScore)
			assert.Subset(t, got.ExtractedSkills, []string{"python", "react", "sql", "docker"})
			assert.NotNil(t, got.Domains)
		})
	}
}

func TestDeepParseMergesModelOutput(t *testing.T) {
	gen := &stubGenerator{response: "```json\n" + `{
		"fullName": "Priya Sharma",
		"email": "",
		"location": "Pune, Maharashtra",
		"extractedSkills": ["Python", "React", 42, ""],
		"domains": "web",
		"experienceLevel": "Intermediate",
		"experienceYears": "3",
		"graduationYear": 2025,
		"resumeStrengthScore": 140
	}` + "\n```"}

	got, err := newTestDeepParser(gen).Parse(context.Background(), sampleResume)
	require.NoError(t, err)

	assert.Equal(t, SourceLLM, got.Source)
	assert.Equal(t, "Priya Sharma", got.FullName)
	assert.Equal(t, "priya.sharma@example.com", got.Email, "empty model field keeps the local value")
	assert.Equal(t, "Pune, Maharashtra", got.Location)
	assert.Equal(t, []string{"Python", "React"}, got.ExtractedSkills)
	assert.Equal(t, []string{}, got.Domains, "wrong-typed list keeps the fallback")
	assert.Equal(t, "Intermediate", got.ExperienceLevel)
	assert.Equal(t, 3, got.ExperienceYears)
	assert.Equal(t, "2025", got.GraduationYear)
	assert.Equal(t, 100, got.ResumeStrengthScore)

	gen.mu.Lock()
	defer gen.mu.Unlock()
	require.Len(t, gen.opts, 1)
	assert.Equal(t, types.GenerateOptions{
		Operation:       "deepParse",
		Temperature:     0.1,
		MaxOutputTokens: 2048,
		JSONResponse:    true,
	}, gen.opts[0])
	assert.Contains(t, gen.prompts[0], "RESUME TEXT:\nPriya Sharma")
}

func TestExtractJSONObject(t *testing.T) {
	assert.Equal(t, `{"a":1}`, extractJSONObject(`{"a":1}`))
	assert.Equal(t, `{"a":1}`, extractJSONObject("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":{"b":2}}`, extractJSONObject(`Here you go: {"a":{"b":2}} hope it helps`))
	assert.Empty(t, extractJSONObject("no object here"))
}

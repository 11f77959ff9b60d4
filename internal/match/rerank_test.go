package match

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"internmatch/internal/taxonomy"
	"internmatch/internal/types"
)

func rerankFixture() (types.CandidateProfile, []string, []types.RankedOpportunity) {
	p := types.CandidateProfile{Name: "Asha", CareerGoal: "Data engineer"}
	skills := []string{"python", "sql"}
	var top []types.RankedOpportunity
	for i := range 8 {
		top = append(top, ranked(fmt.Sprintf("job-%d", i), "Data Intern", "Python, Spark", types.MatchLocal, 90-i))
	}
	return p, skills, top
}

func newTestReranker(t *testing.T, gen Generator, timeout time.Duration) *Reranker {
	t.Helper()
	s := DefaultSettings()
	s.Rerank.Timeout = timeout
	r, err := NewReranker(gen, s, "", nil)
	require.NoError(t, err)
	return r
}

func assertPermutation(t *testing.T, in, out []types.RankedOpportunity) {
	t.Helper()
	assert.ElementsMatch(t, ids(in), ids(out))
	for _, r := range out {
		assert.NotEmpty(t, r.AIExplanation, r.ID)
	}
}

func TestRerankTimeoutAbandonsCall(t *testing.T) {
	tax := taxonomy.Default()
	p, skills, top := rerankFixture()
	gen := &stubGenerator{
		response: `[{"index": 0, "explanation": "late"}]`,
		delay:    300 * time.Millisecond,
		finished: make(chan struct{}),
	}
	r := newTestReranker(t, gen, 20*time.Millisecond)

	start := time.Now()
	out, outcome := r.Rerank(context.Background(), tax, p, skills, "bachelor", top)
	elapsed := time.Since(start)

	assert.Equal(t, OutcomeTimeout, outcome)
	assert.Equal(t, "fallback", outcome.Source())
	assert.Less(t, elapsed, 250*time.Millisecond, "caller must not wait for the abandoned call")
	assert.Equal(t, ids(top), ids(out))
	for _, r := range out {
		assert.False(t, r.LLMReranked)
		assert.NotEqual(t, "late", r.AIExplanation)
	}

	// The abandoned call still finishes on its own and its result is dropped.
	select {
	case <-gen.finished:
	case <-time.After(2 * time.Second):
		t.Fatal("abandoned generator call never completed")
	}
	assert.Equal(t, ids(top), ids(out))
}

func TestRerankCallerCancellation(t *testing.T) {
	tax := taxonomy.Default()
	p, skills, top := rerankFixture()
	gen := &stubGenerator{response: "[]", delay: 200 * time.Millisecond}
	r := newTestReranker(t, gen, 5*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, outcome := r.Rerank(ctx, tax, p, skills, "", top)
	assert.Equal(t, OutcomeTimeout, outcome)
	assertPermutation(t, top, out)
}

func TestRerankGeneratorError(t *testing.T) {
	tax := taxonomy.Default()
	p, skills, top := rerankFixture()
	r := newTestReranker(t, &stubGenerator{err: errors.New("quota exceeded")}, time.Second)

	out, outcome := r.Rerank(context.Background(), tax, p, skills, "", top)
	assert.Equal(t, OutcomeError, outcome)
	assert.Equal(t, ids(top), ids(out))
	assert.Equal(t, FallbackAll(tax, DefaultSettings(), skills, top), out)
}

func TestRerankDisabled(t *testing.T) {
	tax := taxonomy.Default()
	p, skills, top := rerankFixture()

	r := newTestReranker(t, nil, time.Second)
	out, outcome := r.Rerank(context.Background(), tax, p, skills, "", top)
	assert.Equal(t, OutcomeDisabled, outcome)
	assertPermutation(t, top, out)

	gen := &stubGenerator{response: "[]"}
	s := DefaultSettings()
	s.Rerank.Enabled = false
	r, err := NewReranker(gen, s, "", nil)
	require.NoError(t, err)
	_, outcome = r.Rerank(context.Background(), tax, p, skills, "", top)
	assert.Equal(t, OutcomeDisabled, outcome)
	assert.Empty(t, gen.lastPrompt(), "disabled reranker never calls the generator")

	out, outcome = r.Rerank(context.Background(), tax, p, skills, "", nil)
	assert.Empty(t, out)
	assert.Equal(t, OutcomeDisabled, outcome)
}

func TestRerankAppliesModelOrder(t *testing.T) {
	tax := taxonomy.Default()
	p, skills, top := rerankFixture()
	gen := &stubGenerator{response: "Sure! Here is the ranking:\n```json\n" + `[
		{"index": 2, "explanation": "Your SQL work maps to their warehouse.", "roadmap": {"summary": "Learn Spark.", "days": [{"day": 1, "topic": "Basics", "action": "Watch", "link": "https://example.com"}]}},
		{"index": 2, "explanation": "duplicate"},
		{"index": 7, "explanation": "not shown to the model"},
		{"index": -1, "explanation": "negative"},
		{"index": 1.5, "explanation": "fractional"},
		{"index": "0", "explanation": "string index"},
		{"index": 4, "explanation": ""},
		{"index": 0, "explanation": {"text": "Python is a direct fit."}},
		{"index": 3, "explanation": {"reasoning": "Strong SQL overlap."}}
	]` + "\n```\nLet me know!"}
	r := newTestReranker(t, gen, time.Second)

	out, outcome := r.Rerank(context.Background(), tax, p, skills, "bachelor", top)
	require.Equal(t, OutcomeLLM, outcome)
	assert.Equal(t, "llm", outcome.Source())
	assertPermutation(t, top, out)

	assert.Equal(t,
		[]string{"job-2", "job-0", "job-3", "job-1", "job-4", "job-5", "job-6", "job-7"},
		ids(out))

	assert.True(t, out[0].LLMReranked)
	assert.Equal(t, "Your SQL work maps to their warehouse.", out[0].AIExplanation)
	require.NotNil(t, out[0].Roadmap)
	assert.Equal(t, "Learn Spark.", out[0].Roadmap.Summary)
	assert.Equal(t, 88, out[0].DisplayPercentage)

	assert.Equal(t, "Python is a direct fit.", out[1].AIExplanation)
	require.NotNil(t, out[1].Roadmap, "missing model roadmap is filled from the fallback")
	assert.Contains(t, out[1].Roadmap.Summary, "spark")

	assert.Equal(t, "Strong SQL overlap.", out[2].AIExplanation)

	for _, r := range out[3:] {
		assert.False(t, r.LLMReranked, r.ID)
		assert.True(t, strings.HasPrefix(r.AIExplanation, "Strategy Match:"), r.ID)
	}
}

func TestRerankUnparsable(t *testing.T) {
	tax := taxonomy.Default()
	p, skills, top := rerankFixture()

	for _, response := range []string{
		"I cannot help with that.",
		"[not json]",
		`{"index": 0, "explanation": "object, not array"}`,
		`[{"index": 9, "explanation": "out of range"}]`,
		"[]",
	} {
		r := newTestReranker(t, &stubGenerator{response: response}, time.Second)
		out, outcome := r.Rerank(context.Background(), tax, p, skills, "", top)
		assert.Equal(t, OutcomeUnparsable, outcome, response)
		assert.Equal(t, ids(top), ids(out), response)
	}
}

func TestRerankPromptShowsTopJobsOnly(t *testing.T) {
	tax := taxonomy.Default()
	p, skills, top := rerankFixture()
	gen := &stubGenerator{response: "[]"}
	r := newTestReranker(t, gen, time.Second)

	r.Rerank(context.Background(), tax, p, skills, "bachelor", top)
	prompt := gen.lastPrompt()

	assert.Contains(t, prompt, "- Name: Asha")
	assert.Contains(t, prompt, "- Current Skills: python, sql")
	assert.Contains(t, prompt, "- Education: bachelor")
	assert.Contains(t, prompt, "JOB #4 (Index 4)")
	assert.NotContains(t, prompt, "JOB #5")
	assert.Contains(t, prompt, "- Location: Bangalore (Direct Match)")
	assert.Contains(t, prompt, "- Verified Matches: python")

	gen.mu.Lock()
	defer gen.mu.Unlock()
	require.Len(t, gen.opts, 1)
	assert.Equal(t, "rerank", gen.opts[0].Operation)
}

func TestParsePromptTemplate(t *testing.T) {
	_, err := ParsePromptTemplate("{{.Name")
	assert.Error(t, err)

	tmpl, err := ParsePromptTemplate("Hi {{.Name}} ({{len .Jobs}} jobs)")
	require.NoError(t, err)
	out, err := renderPrompt(tmpl, RerankPromptData{Name: "Ravi"})
	require.NoError(t, err)
	assert.Equal(t, "Hi Ravi (0 jobs)", out)

	_, err = NewReranker(nil, DefaultSettings(), "{{end}}", nil)
	assert.Error(t, err)
}

package match

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"internmatch/internal/types"
)

// constEmbedder maps every text onto the same vector.
type constEmbedder struct{}

func (constEmbedder) Encode(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0, 0}
	}
	return out, nil
}

// wordEmbedder is a tiny deterministic bag-of-words embedder.
type wordEmbedder struct{}

func (wordEmbedder) Encode(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v := make([]float32, 32)
		for _, w := range strings.Fields(strings.ToLower(t)) {
			h := fnv.New32a()
			_, _ = h.Write([]byte(w))
			v[h.Sum32()%32]++
		}
		out[i] = v
	}
	return out, nil
}

type funcEmbedder func(ctx context.Context, texts []string) ([][]float32, error)

func (f funcEmbedder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	return f(ctx, texts)
}

// stubGenerator returns a canned response after an optional delay and
// records the last prompt it saw.
type stubGenerator struct {
	mu       sync.Mutex
	response string
	err      error
	delay    time.Duration
	prompts  []string
	opts     []types.GenerateOptions
	finished chan struct{}
}

func (g *stubGenerator) Generate(_ context.Context, prompt string, opts types.GenerateOptions) (string, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	g.opts = append(g.opts, opts)
	g.mu.Unlock()

	if g.delay > 0 {
		time.Sleep(g.delay)
	}
	if g.finished != nil {
		defer close(g.finished)
	}
	return g.response, g.err
}

func (g *stubGenerator) lastPrompt() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.prompts) == 0 {
		return ""
	}
	return g.prompts[len(g.prompts)-1]
}

func opp(id, role, location, skills string) types.Opportunity {
	return types.Opportunity{
		ID:             id,
		Role:           role,
		Company:        "Acme " + id,
		Sector:         "Technology",
		Location:       location,
		SkillsRequired: skills,
	}
}

func ranked(id, role, skills string, mt types.MatchType, score int) types.RankedOpportunity {
	return types.RankedOpportunity{
		Opportunity: types.Opportunity{
			ID:             id,
			Role:           role,
			Company:        "Acme " + id,
			Location:       "Bangalore",
			SkillsRequired: skills,
		},
		MatchType:      mt,
		SectorRelevant: true,
		MatchScore:     score,
		LocationLabel:  LocationLabel(mt),
	}
}

func ids(list []types.RankedOpportunity) []string {
	out := make([]string, len(list))
	for i, r := range list {
		out[i] = r.ID
	}
	return out
}

package match

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"text/template"
	"time"

	"github.com/tidwall/gjson"

	"internmatch/internal/errors"
	"internmatch/internal/taxonomy"
	"internmatch/internal/types"
)

// Generator is the narrow view of a generative-language service.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts types.GenerateOptions) (string, error)
}

// RerankOutcome says which path annotated the results.
type RerankOutcome string

const (
	OutcomeLLM        RerankOutcome = "llm"
	OutcomeDisabled   RerankOutcome = "disabled"
	OutcomeTimeout    RerankOutcome = "timeout"
	OutcomeError      RerankOutcome = "error"
	OutcomeUnparsable RerankOutcome = "unparsable"
)

// Source collapses the outcome into the provenance reported to callers.
func (o RerankOutcome) Source() string {
	if o == OutcomeLLM {
		return "llm"
	}
	return "fallback"
}

type generateResult struct {
	text string
	err  error
}

// Reranker makes one time-boxed generator call and falls back to the
// deterministic explainer on any failure.
type Reranker struct {
	gen      Generator
	settings Settings
	prompt   *template.Template
	logger   *errors.Logger
}

// NewReranker creates a reranker. A nil generator always takes the fallback.
func NewReranker(gen Generator, settings Settings, promptTemplate string, logger *errors.Logger) (*Reranker, error) {
	tmpl, err := ParsePromptTemplate(promptTemplate)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "failed to parse rerank prompt", err)
	}
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	return &Reranker{gen: gen, settings: settings, prompt: tmpl, logger: logger}, nil
}

// Rerank reorders and annotates top. The result is always a permutation of
// top with every item annotated.
func (r *Reranker) Rerank(ctx context.Context, tax *taxonomy.Taxonomy, p types.CandidateProfile, skills []string, education string, top []types.RankedOpportunity) ([]types.RankedOpportunity, RerankOutcome) {
	if len(top) == 0 {
		return top, OutcomeDisabled
	}
	if r.gen == nil || !r.settings.Rerank.Enabled || r.settings.Rerank.PromptJobs <= 0 {
		return FallbackAll(tax, r.settings, skills, top), OutcomeDisabled
	}

	shown := head(top, r.settings.Rerank.PromptJobs)
	prompt, err := renderPrompt(r.prompt, newRerankPromptData(p, skills, education, shown, r.settings.Rerank))
	if err != nil {
		r.logger.LogError(err, "Failed to render rerank prompt")
		return FallbackAll(tax, r.settings, skills, top), OutcomeError
	}

	text, outcome := r.callWithTimeout(ctx, prompt)
	if outcome != "" {
		return FallbackAll(tax, r.settings, skills, top), outcome
	}

	items := parseRerankItems(text, len(shown))
	if len(items) == 0 {
		r.logger.Warn("Rerank response was not usable, using fallback", "response_chars", len(text))
		return FallbackAll(tax, r.settings, skills, top), OutcomeUnparsable
	}
	return applyRerank(tax, r.settings, skills, top, items), OutcomeLLM
}

// callWithTimeout fires the generator on its own goroutine and waits at
// most the configured timeout. On timeout the call is abandoned: it keeps
// running and its result is dropped into a buffered channel nobody reads.
func (r *Reranker) callWithTimeout(ctx context.Context, prompt string) (string, RerankOutcome) {
	results := make(chan generateResult, 1)
	opts := types.GenerateOptions{
		Operation:       "rerank",
		Temperature:     r.settings.Rerank.Temperature,
		MaxOutputTokens: r.settings.Rerank.MaxOutputTokens,
	}
	callCtx := context.WithoutCancel(ctx)

	go func() {
		text, err := r.gen.Generate(callCtx, prompt, opts)
		results <- generateResult{text: text, err: err}
	}()

	timer := time.NewTimer(r.settings.Rerank.Timeout)
	defer timer.Stop()

	select {
	case res := <-results:
		if res.err != nil {
			r.logger.Warn("Rerank generator failed, using fallback", "error", res.err.Error())
			return "", OutcomeError
		}
		return res.text, ""
	case <-timer.C:
		r.logger.Warn("Rerank generator timed out, using fallback", "timeout", r.settings.Rerank.Timeout)
		return "", OutcomeTimeout
	case <-ctx.Done():
		return "", OutcomeTimeout
	}
}

type rerankItem struct {
	index       int
	explanation string
	roadmap     *types.Roadmap
}

// parseRerankItems reads the first '[' through the last ']' as a JSON array
// and keeps items whose index is a whole number inside [0, limit).
func parseRerankItems(text string, limit int) []rerankItem {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil
	}
	raw := text[start : end+1]
	if !gjson.Valid(raw) {
		return nil
	}
	arr := gjson.Parse(raw)
	if !arr.IsArray() {
		return nil
	}

	var items []rerankItem
	arr.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			return true
		}
		idx := item.Get("index")
		if idx.Type != gjson.Number || idx.Num != math.Trunc(idx.Num) {
			return true
		}
		i := int(idx.Num)
		if i < 0 || i >= limit {
			return true
		}
		explanation := flattenExplanation(item.Get("explanation"))
		if explanation == "" {
			return true
		}
		items = append(items, rerankItem{
			index:       i,
			explanation: explanation,
			roadmap:     parseRoadmap(item.Get("roadmap")),
		})
		return true
	})
	return items
}

func flattenExplanation(v gjson.Result) string {
	if v.IsObject() {
		if t := v.Get("text"); t.Exists() {
			return strings.TrimSpace(t.String())
		}
		if t := v.Get("reasoning"); t.Exists() {
			return strings.TrimSpace(t.String())
		}
		return v.Raw
	}
	return strings.TrimSpace(v.String())
}

func parseRoadmap(v gjson.Result) *types.Roadmap {
	if !v.IsObject() {
		return nil
	}
	var rm types.Roadmap
	if err := json.Unmarshal([]byte(v.Raw), &rm); err != nil {
		return nil
	}
	if rm.Summary == "" && len(rm.Days) == 0 {
		return nil
	}
	return &rm
}

// applyRerank places model-ordered items first, skipping reused indexes,
// then every remaining item in input order with the fallback annotation.
func applyRerank(tax *taxonomy.Taxonomy, s Settings, skills []string, top []types.RankedOpportunity, items []rerankItem) []types.RankedOpportunity {
	out := make([]types.RankedOpportunity, 0, len(top))
	used := make(map[int]bool, len(items))

	for _, it := range items {
		if used[it.index] {
			continue
		}
		used[it.index] = true

		entry := top[it.index]
		entry.AIExplanation = it.explanation
		entry.Roadmap = it.roadmap
		if entry.Roadmap == nil {
			entry.Roadmap = Fallback(tax, s, skills, entry).Roadmap
		}
		entry.LLMReranked = true
		entry.ScoreAdjustment = 0
		entry.DisplayPercentage = entry.MatchScore
		out = append(out, entry)
	}

	for i, entry := range top {
		if !used[i] {
			out = append(out, Fallback(tax, s, skills, entry))
		}
	}
	return out
}

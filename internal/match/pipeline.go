// Package match implements the recommendation pipeline: resume parsing,
// text synthesis, embedding similarity, tiered pool construction, hybrid
// scoring, gap analysis and the time-boxed re-rank with its deterministic
// fallback.
package match

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"internmatch/internal/errors"
	"internmatch/internal/taxonomy"
	"internmatch/internal/textutil"
	"internmatch/internal/types"
)

// Observer receives pipeline measurements. All methods must be cheap.
type Observer interface {
	ObserveEmbedding(ctx context.Context, texts int, d time.Duration, err error)
	ObservePool(ctx context.Context, size int, fromOther bool)
	ObserveRerank(ctx context.Context, outcome string, source string)
	ObserveMatch(ctx context.Context, candidates, returned int)
}

type nopObserver struct{}

func (nopObserver) ObserveEmbedding(context.Context, int, time.Duration, error) {}
func (nopObserver) ObservePool(context.Context, int, bool)                     {}
func (nopObserver) ObserveRerank(context.Context, string, string)              {}
func (nopObserver) ObserveMatch(context.Context, int, int)                     {}

// Deps are the collaborators a Matcher is built from.
type Deps struct {
	Embedder     Embedder
	Generator    Generator
	Taxonomy     *taxonomy.Store
	Settings     Settings
	RerankPrompt string
	Observer     Observer
	Logger       *errors.Logger
}

// Matcher runs the pipeline. It holds no per-request state and is safe for
// concurrent use.
type Matcher struct {
	embedder Embedder
	reranker *Reranker
	store    *taxonomy.Store
	settings Settings
	observer Observer
	logger   *errors.Logger
}

// New creates a Matcher.
func New(deps Deps) (*Matcher, error) {
	if deps.Embedder == nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "an embedding provider is required", nil)
	}
	if deps.Taxonomy == nil {
		deps.Taxonomy = taxonomy.NewStore(taxonomy.Default(), "", deps.Logger)
	}
	if deps.Logger == nil {
		deps.Logger = errors.NewNopLogger()
	}
	if deps.Observer == nil {
		deps.Observer = nopObserver{}
	}

	reranker, err := NewReranker(deps.Generator, deps.Settings, deps.RerankPrompt, deps.Logger)
	if err != nil {
		return nil, err
	}

	return &Matcher{
		embedder: deps.Embedder,
		reranker: reranker,
		store:    deps.Taxonomy,
		settings: deps.Settings,
		observer: deps.Observer,
		logger:   deps.Logger,
	}, nil
}

// Settings returns the tuning the matcher was built with.
func (m *Matcher) Settings() Settings {
	return m.settings
}

// Taxonomy returns the store the matcher reads its tables from.
func (m *Matcher) Taxonomy() *taxonomy.Store {
	return m.store
}

// Match ranks and annotates the opportunities for one candidate.
func (m *Matcher) Match(ctx context.Context, req types.MatchRequest) (types.MatchResponse, error) {
	tracer := otel.Tracer("internmatch.match")
	ctx, span := tracer.Start(ctx, "match.pipeline")
	defer span.End()

	if err := m.validate(req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		return types.MatchResponse{}, err
	}

	tax := m.store.Current()
	student := req.Student
	resume := textutil.Truncate(student.ResumeText, m.settings.Limits.MaxResumeChars)

	parsed := ParseResume(tax, resume, student.Skills, m.settings.Limits.SummaryChars)
	skills := parsed.Skills
	student.Skills = skills

	lp := ParseLocationPreference(tax, student, req.WorkPreference)
	pool := BuildPool(tax, student.PreferredSector, lp, req.Internships, m.settings.Pool)
	m.observer.ObservePool(ctx, len(pool.Entries), pool.FromOther)

	span.SetAttributes(
		attribute.Int("match.opportunities", len(req.Internships)),
		attribute.Int("match.pool_size", len(pool.Entries)),
		attribute.Int("match.candidate_skills", len(skills)),
		attribute.String("match.taxonomy", tax.Name),
	)

	meta := types.MatchMeta{
		Candidates:   len(req.Internships),
		PoolSize:     len(pool.Entries),
		RerankSource: "fallback",
		TaxonomyName: tax.Name,
	}
	if len(pool.Entries) == 0 {
		m.observer.ObserveMatch(ctx, meta.Candidates, 0)
		return types.MatchResponse{Results: []types.RankedOpportunity{}, Meta: meta}, nil
	}

	candidateText := BuildCandidateText(student, parsed, skills)
	texts := make([]string, len(pool.Entries))
	for i, e := range pool.Entries {
		texts[i] = BuildOpportunityText(e.Opportunity, m.settings.Limits)
	}

	start := time.Now()
	semantic, err := Similarities(ctx, m.embedder, candidateText, texts)
	m.observer.ObserveEmbedding(ctx, len(texts)+1, time.Since(start), err)
	if err != nil {
		m.logger.LogError(err, "Embedding failed, aborting match", "texts", len(texts)+1)
		span.RecordError(err)
		span.SetStatus(codes.Error, "embedding failed")
		return types.MatchResponse{}, err
	}

	scored := ScoreAll(tax, m.settings.Weights, skills, pool.Entries, semantic)
	meta.Scored = len(scored)

	top := head(scored, m.settings.Limits.GapAnalysisTop)
	for i := range top {
		gap := AnalyzeGap(skills, top[i].SkillsText(), m.settings.Limits.MissingSkills)
		top[i].GapAnalysis = &gap
	}

	rerankInput := head(top, m.settings.Rerank.Candidates)
	results, outcome := m.reranker.Rerank(ctx, tax, student, skills, parsed.Education, rerankInput)
	m.observer.ObserveRerank(ctx, string(outcome), outcome.Source())

	meta.Returned = len(results)
	meta.RerankSource = outcome.Source()
	m.observer.ObserveMatch(ctx, meta.Candidates, meta.Returned)

	span.SetAttributes(
		attribute.Int("match.scored", meta.Scored),
		attribute.Int("match.returned", meta.Returned),
		attribute.String("match.rerank_outcome", string(outcome)),
	)
	m.logger.Debug("Match completed",
		"candidates", meta.Candidates,
		"pool_size", meta.PoolSize,
		"scored", meta.Scored,
		"returned", meta.Returned,
		"rerank_outcome", outcome)

	if results == nil {
		results = []types.RankedOpportunity{}
	}
	return types.MatchResponse{Results: results, Meta: meta}, nil
}

// ParseResume runs the local parser against the current taxonomy.
func (m *Matcher) ParseResume(resumeText string, existingSkills []string) types.ParsedResume {
	resume := textutil.Truncate(resumeText, m.settings.Limits.MaxResumeChars)
	return ParseResume(m.store.Current(), resume, existingSkills, m.settings.Limits.SummaryChars)
}

func (m *Matcher) validate(req types.MatchRequest) error {
	if strings.TrimSpace(req.Student.Name) == "" {
		return errors.NewValidationError(errors.ErrCodeInvalidProfile, "student name is required", nil)
	}
	if limit := m.settings.Limits.MaxOpportunities; limit > 0 && len(req.Internships) > limit {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("too many opportunities: %d (max %d)", len(req.Internships), limit), nil)
	}
	for i, o := range req.Internships {
		if strings.TrimSpace(o.ID) == "" || strings.TrimSpace(o.Role) == "" {
			return errors.NewValidationError(errors.ErrCodeInvalidOpportunity,
				"every opportunity needs an id and a role", nil).WithContext("index", i)
		}
	}
	return nil
}

package match

import (
	"time"

	"internmatch/internal/types"
)

// Weights are the tunable scoring constants.
type Weights struct {
	SemanticWeight      float64 `mapstructure:"semanticWeight" json:"semanticWeight"`
	SkillBoostPerMatch  float64 `mapstructure:"skillBoostPerMatch" json:"skillBoostPerMatch"`
	SkillBoostSynonym   float64 `mapstructure:"skillBoostSynonym" json:"skillBoostSynonym"`
	SkillCoverageWeight float64 `mapstructure:"skillCoverageWeight" json:"skillCoverageWeight"`
	SkillBoostCap       float64 `mapstructure:"skillBoostCap" json:"skillBoostCap"`
	LocalBonus          float64 `mapstructure:"localBonus" json:"localBonus"`
	RemoteBonus         float64 `mapstructure:"remoteBonus" json:"remoteBonus"`
	RegionalBonus       float64 `mapstructure:"regionalBonus" json:"regionalBonus"`
	AnywhereBonus       float64 `mapstructure:"anywhereBonus" json:"anywhereBonus"`
	OnSectorMultiplier  float64 `mapstructure:"onSectorMultiplier" json:"onSectorMultiplier"`
	OffSectorMultiplier float64 `mapstructure:"offSectorMultiplier" json:"offSectorMultiplier"`
	ScoreFloor          float64 `mapstructure:"scoreFloor" json:"scoreFloor"`
	ScoreCeiling        float64 `mapstructure:"scoreCeiling" json:"scoreCeiling"`
	MinSkillMatches     int     `mapstructure:"minSkillMatchesOffSector" json:"minSkillMatchesOffSector"`
}

// PoolCaps bound each location bucket when building the candidate pool.
type PoolCaps struct {
	Local    int `mapstructure:"local" json:"local"`
	Remote   int `mapstructure:"remote" json:"remote"`
	Regional int `mapstructure:"regional" json:"regional"`
	Total    int `mapstructure:"total" json:"total"`
	Other    int `mapstructure:"other" json:"other"`
}

// Limits truncate texts and result lists.
type Limits struct {
	SummaryChars        int `mapstructure:"summaryChars" json:"summaryChars"`
	DescriptionChars    int `mapstructure:"descriptionChars" json:"descriptionChars"`
	RequirementsChars   int `mapstructure:"requirementsChars" json:"requirementsChars"`
	GapAnalysisTop      int `mapstructure:"gapAnalysisTop" json:"gapAnalysisTop"`
	MissingSkills       int `mapstructure:"missingSkills" json:"missingSkills"`
	MinDeepParseChars   int `mapstructure:"minDeepParseChars" json:"minDeepParseChars"`
	MaxResumeChars      int `mapstructure:"maxResumeChars" json:"maxResumeChars"`
	MaxOpportunities    int `mapstructure:"maxOpportunities" json:"maxOpportunities"`
	ExplanationSkills   int `mapstructure:"explanationSkills" json:"explanationSkills"`
	MaxScoreAdjustment  int `mapstructure:"maxScoreAdjustment" json:"maxScoreAdjustment"`
	AdjustmentSkillCap  int `mapstructure:"adjustmentSkillCap" json:"adjustmentSkillCap"`
	AdjustmentNoSkillPt int `mapstructure:"adjustmentNoSkillPenalty" json:"adjustmentNoSkillPenalty"`
	AdjustmentLocal     int `mapstructure:"adjustmentLocal" json:"adjustmentLocal"`
	AdjustmentRemote    int `mapstructure:"adjustmentRemote" json:"adjustmentRemote"`
	AdjustmentRegional  int `mapstructure:"adjustmentRegional" json:"adjustmentRegional"`
}

// RerankSettings configure the single time-boxed generator call.
type RerankSettings struct {
	Enabled         bool          `mapstructure:"enabled" json:"enabled"`
	Candidates      int           `mapstructure:"candidates" json:"candidates"`
	PromptJobs      int           `mapstructure:"promptJobs" json:"promptJobs"`
	PromptSkills    int           `mapstructure:"promptSkills" json:"promptSkills"`
	SnippetChars    int           `mapstructure:"snippetChars" json:"snippetChars"`
	Timeout         time.Duration `mapstructure:"timeout" json:"timeout"`
	Temperature     float32       `mapstructure:"temperature" json:"temperature"`
	MaxOutputTokens int32         `mapstructure:"maxOutputTokens" json:"maxOutputTokens"`
}

// DeepParseSettings configure the LLM resume analysis.
type DeepParseSettings struct {
	Timeout         time.Duration `mapstructure:"timeout" json:"timeout"`
	Temperature     float32       `mapstructure:"temperature" json:"temperature"`
	MaxOutputTokens int32         `mapstructure:"maxOutputTokens" json:"maxOutputTokens"`
}

// Settings groups everything the pipeline can be tuned with.
type Settings struct {
	Weights   Weights           `mapstructure:"weights" json:"weights"`
	Pool      PoolCaps          `mapstructure:"pool" json:"pool"`
	Limits    Limits            `mapstructure:"limits" json:"limits"`
	Rerank    RerankSettings    `mapstructure:"rerank" json:"rerank"`
	DeepParse DeepParseSettings `mapstructure:"deepParse" json:"deepParse"`
}

// DefaultWeights returns the production scoring constants.
func DefaultWeights() Weights {
	return Weights{
		SemanticWeight:      1.0,
		SkillBoostPerMatch:  0.06,
		SkillBoostSynonym:   0.03,
		SkillCoverageWeight: 0.10,
		SkillBoostCap:       0.35,
		LocalBonus:          0.35,
		RemoteBonus:         0.25,
		RegionalBonus:       0.20,
		AnywhereBonus:       0.0,
		OnSectorMultiplier:  1.0,
		OffSectorMultiplier: 0.4,
		ScoreFloor:          0.10,
		ScoreCeiling:        0.99,
		MinSkillMatches:     1,
	}
}

// DefaultSettings returns the production defaults for every knob.
func DefaultSettings() Settings {
	return Settings{
		Weights: DefaultWeights(),
		Pool: PoolCaps{
			Local:    25,
			Remote:   20,
			Regional: 15,
			Total:    50,
			Other:    20,
		},
		Limits: Limits{
			SummaryChars:        300,
			DescriptionChars:    500,
			RequirementsChars:   500,
			GapAnalysisTop:      15,
			MissingSkills:       5,
			MinDeepParseChars:   50,
			MaxResumeChars:      50000,
			MaxOpportunities:    5000,
			ExplanationSkills:   2,
			MaxScoreAdjustment:  5,
			AdjustmentSkillCap:  3,
			AdjustmentNoSkillPt: 1,
			AdjustmentLocal:     3,
			AdjustmentRemote:    2,
			AdjustmentRegional:  1,
		},
		Rerank: RerankSettings{
			Enabled:         true,
			Candidates:      10,
			PromptJobs:      5,
			PromptSkills:    12,
			SnippetChars:    150,
			Timeout:         4 * time.Second,
			Temperature:     0.8,
			MaxOutputTokens: 1024,
		},
		DeepParse: DeepParseSettings{
			Timeout:         20 * time.Second,
			Temperature:     0.1,
			MaxOutputTokens: 2048,
		},
	}
}

func (w Weights) locationBonus(mt types.MatchType) float64 {
	switch mt {
	case types.MatchLocal:
		return w.LocalBonus
	case types.MatchRemote:
		return w.RemoteBonus
	case types.MatchRegional:
		return w.RegionalBonus
	default:
		return w.AnywhereBonus
	}
}

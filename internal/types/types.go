package types

import "strings"

// Work modes accepted on a candidate profile.
const (
	WorkModeOffice = "office"
	WorkModeRemote = "remote"
	WorkModeAny    = "any"
)

// MatchType is the exclusive location tier an opportunity lands in.
type MatchType string

const (
	MatchLocal    MatchType = "local"
	MatchRemote   MatchType = "remote_match"
	MatchRegional MatchType = "regional"
	MatchAnywhere MatchType = "anywhere"
)

// CandidateProfile describes the person we are recommending for.
type CandidateProfile struct {
	Name               string   `json:"name" yaml:"name" validate:"required,max=200"`
	Skills             []string `json:"skills" yaml:"skills" validate:"max=200,dive,max=100"`
	Qualification      string   `json:"qualification,omitempty" yaml:"qualification"`
	CareerGoal         string   `json:"career_goal,omitempty" yaml:"career_goal"`
	PreferredSector    string   `json:"preferredSector,omitempty" yaml:"preferredSector"`
	PreferredState     string   `json:"preferred_state,omitempty" yaml:"preferred_state"`
	PreferredLocations []string `json:"preferred_locations,omitempty" yaml:"preferred_locations" validate:"max=20"`
	ResumeText         string   `json:"resume_text,omitempty" yaml:"resume_text" validate:"max=200000"`
	WorkMode           string   `json:"work_mode,omitempty" yaml:"work_mode" validate:"omitempty,oneof=office remote any"`
	Education          string   `json:"education,omitempty" yaml:"education"`
	Summary            string   `json:"summary,omitempty" yaml:"summary"`
	Strengths          string   `json:"strengths,omitempty" yaml:"strengths"`
}

// Opportunity is a single internship or job listing.
type Opportunity struct {
	ID             string `json:"id" yaml:"id" validate:"required"`
	Role           string `json:"role" yaml:"role" validate:"required"`
	Company        string `json:"company,omitempty" yaml:"company"`
	Sector         string `json:"sector,omitempty" yaml:"sector"`
	Location       string `json:"location,omitempty" yaml:"location"`
	SkillsRequired string `json:"skills_required,omitempty" yaml:"skills_required"`
	Skills         string `json:"skills,omitempty" yaml:"skills"`
	Description    string `json:"description,omitempty" yaml:"description"`
	Requirements   string `json:"requirements,omitempty" yaml:"requirements"`
	WorkMode       string `json:"work_mode,omitempty" yaml:"work_mode"`
}

// SkillsText returns the listing's required skills, preferring skills_required.
func (o Opportunity) SkillsText() string {
	if strings.TrimSpace(o.SkillsRequired) != "" {
		return o.SkillsRequired
	}
	return o.Skills
}

// ScoreBreakdown is the per-component summary shown to the candidate.
type ScoreBreakdown struct {
	ProfileSkillScore int `json:"profile_skill_score"`
	LocationScore     int `json:"location_score"`
}

// GapAnalysis compares required skills against the candidate's skills.
type GapAnalysis struct {
	MatchedSkills []string `json:"matched_skills"`
	MissingSkills []string `json:"missing_skills"`
	MatchCount    int      `json:"match_count"`
	GapCount      int      `json:"gap_count"`
	SkillCoverage int      `json:"skill_coverage"`
}

// RoadmapDay is one step of a learning plan.
type RoadmapDay struct {
	Day    int    `json:"day"`
	Topic  string `json:"topic"`
	Action string `json:"action"`
	Link   string `json:"link"`
}

// Roadmap is a short learning plan that bridges a missing skill.
type Roadmap struct {
	Summary string       `json:"summary"`
	Days    []RoadmapDay `json:"days"`
}

// RankedOpportunity is an opportunity with every annotation the pipeline adds.
type RankedOpportunity struct {
	Opportunity

	MatchType      MatchType `json:"match_type"`
	LocationLabel  string    `json:"location_label"`
	SectorRelevant bool      `json:"sector_relevant"`

	MatchScore        int            `json:"match_score"`
	MatchPercentage   string         `json:"match_percentage"`
	MatchLabel        string         `json:"match_label"`
	SkillCoverage     int            `json:"skill_coverage"`
	MatchedSkills     []string       `json:"matched_skills_list"`
	SemanticScore     float64        `json:"semantic_score"`
	SkillBoost        float64        `json:"skill_boost"`
	LocationBonus     float64        `json:"location_bonus"`
	SectorMultiplier  float64        `json:"sector_multiplier"`
	ScoreBreakdown    ScoreBreakdown `json:"score_breakdown"`
	GapAnalysis       *GapAnalysis   `json:"gap_analysis,omitempty"`
	AIExplanation     string         `json:"ai_explanation,omitempty"`
	Roadmap           *Roadmap       `json:"roadmap"`
	LLMReranked       bool           `json:"llm_reranked"`
	ScoreAdjustment   int            `json:"score_adjustment"`
	DisplayPercentage int            `json:"display_percentage,omitempty"`
}

// ParsedResume is the output of the local keyword parser.
type ParsedResume struct {
	Skills          []string `json:"skills"`
	Education       string   `json:"education"`
	ExperienceYears int      `json:"experience_years"`
	Summary         string   `json:"summary"`
}

// DeepProfile is the structured profile produced by the LLM resume analysis.
type DeepProfile struct {
	FullName             string   `json:"fullName"`
	Email                string   `json:"email"`
	Phone                string   `json:"phone"`
	Location             string   `json:"location"`
	ExtractedSkills      []string `json:"extractedSkills"`
	Domains              []string `json:"domains"`
	ToolsAndTechnologies []string `json:"toolsAndTechnologies"`
	SoftSkills           []string `json:"softSkills"`
	ExperienceLevel      string   `json:"experienceLevel"`
	ExperienceYears      int      `json:"experienceYears"`
	EducationLevel       string   `json:"educationLevel"`
	Education            string   `json:"education"`
	College              string   `json:"college"`
	GraduationYear       string   `json:"graduationYear"`
	ResumeStrengthScore  int      `json:"resumeStrengthScore"`
	Source               string   `json:"source"`
}

// MatchRequest is the input of a single recommendation run.
type MatchRequest struct {
	Student        CandidateProfile `json:"student" yaml:"student" validate:"required"`
	Internships    []Opportunity    `json:"internships" yaml:"internships" validate:"max=5000,dive"`
	WorkPreference string           `json:"workPreference,omitempty" yaml:"workPreference" validate:"omitempty,oneof=office remote any"`
}

// MatchMeta describes how a run went without exposing internals.
type MatchMeta struct {
	Candidates   int    `json:"candidates"`
	PoolSize     int    `json:"pool_size"`
	Scored       int    `json:"scored"`
	Returned     int    `json:"returned"`
	RerankSource string `json:"rerank_source"`
	TaxonomyName string `json:"taxonomy,omitempty"`
}

// MatchResponse is the ranked, annotated result of a run.
type MatchResponse struct {
	Results []RankedOpportunity `json:"data"`
	Meta    MatchMeta           `json:"meta"`
}

// GenerateOptions tunes a single generative call.
type GenerateOptions struct {
	Operation       string
	Temperature     float32
	MaxOutputTokens int32
	JSONResponse    bool
}

// CleanItem is a loosely typed listing passed through the cleaning endpoint.
type CleanItem map[string]any

package match

import (
	"fmt"
	"net/url"
	"strings"

	"internmatch/internal/taxonomy"
	"internmatch/internal/types"
)

// Fallback annotates one listing without any external call. It is a pure
// function of its arguments.
func Fallback(tax *taxonomy.Taxonomy, s Settings, skills []string, entry types.RankedOpportunity) types.RankedOpportunity {
	matched, missing := partitionRequired(skills, entry.SkillsText())

	adj := scoreAdjustment(s.Limits, entry.MatchType, len(matched))
	pct := clampInt(entry.MatchScore+adj, toPercent(s.Weights.ScoreFloor), toPercent(s.Weights.ScoreCeiling))

	role := strings.TrimSpace(entry.Role)
	if role == "" {
		role = "Internship"
	}
	company := strings.TrimSpace(entry.Company)
	if company == "" {
		company = "this organization"
	}

	if len(matched) > 0 {
		entry.AIExplanation = fmt.Sprintf(
			"Strategy Match: Your proficiency in %s is a direct asset for this %s. "+
				"We've calculated a %d%% accuracy match based on your technical profile.",
			strings.Join(head(matched, max(s.Limits.ExplanationSkills, 1)), ", "), role, pct)
	} else {
		entry.AIExplanation = fmt.Sprintf(
			"Potential Fit: Based on architectural analysis of your career goals, "+
				"this %s at %s offers a %d%% alignment with your professional trajectory.",
			role, company, pct)
	}

	entry.Roadmap = nil
	if len(missing) > 0 {
		entry.Roadmap = RenderRoadmap(tax.RoleCategoryFor(role).Roadmap, missing[0])
	}
	entry.LLMReranked = false
	entry.ScoreAdjustment = adj
	entry.DisplayPercentage = pct
	return entry
}

// FallbackAll annotates every listing through Fallback, keeping order.
func FallbackAll(tax *taxonomy.Taxonomy, s Settings, skills []string, entries []types.RankedOpportunity) []types.RankedOpportunity {
	out := make([]types.RankedOpportunity, len(entries))
	for i, e := range entries {
		out[i] = Fallback(tax, s, skills, e)
	}
	return out
}

// RenderRoadmap fills a template for one missing skill.
func RenderRoadmap(tpl taxonomy.RoadmapTemplate, skill string) *types.Roadmap {
	r := strings.NewReplacer("{skill}", skill, "{query}", url.QueryEscape(skill))
	roadmap := &types.Roadmap{
		Summary: r.Replace(tpl.Summary),
		Days:    make([]types.RoadmapDay, len(tpl.Days)),
	}
	for i, d := range tpl.Days {
		roadmap.Days[i] = types.RoadmapDay{
			Day:    i + 1,
			Topic:  r.Replace(d.Topic),
			Action: r.Replace(d.Action),
			Link:   r.Replace(d.Link),
		}
	}
	return roadmap
}

// scoreAdjustment nudges the displayed percentage by location tier and
// skill hits, bounded to +/- MaxScoreAdjustment.
func scoreAdjustment(l Limits, mt types.MatchType, matched int) int {
	adj := 0
	switch mt {
	case types.MatchLocal:
		adj = l.AdjustmentLocal
	case types.MatchRemote:
		adj = l.AdjustmentRemote
	case types.MatchRegional:
		adj = l.AdjustmentRegional
	}
	adj += min(matched, l.AdjustmentSkillCap)
	if matched == 0 {
		adj -= l.AdjustmentNoSkillPt
	}
	return clampInt(adj, -l.MaxScoreAdjustment, l.MaxScoreAdjustment)
}

package match

import (
	"fmt"
	"math"
	"sort"

	"internmatch/internal/taxonomy"
	"internmatch/internal/textutil"
	"internmatch/internal/types"
)

// Score computes the hybrid score of one pooled listing. The second return
// value is false when the listing is off-sector and has too few skill hits
// to be worth showing.
func Score(tax *taxonomy.Taxonomy, w Weights, skills []string, entry types.RankedOpportunity, semantic float64) (types.RankedOpportunity, bool) {
	jobSkills := entry.SkillsText()
	direct, synonym := skillHits(tax, skills, jobSkills)
	matchedCount := len(direct) + len(synonym)

	if !entry.SectorRelevant && matchedCount < w.MinSkillMatches {
		return entry, false
	}

	coverage := requiredCoverage(tax, skills, textutil.SplitSkills(jobSkills))
	skillComponent := math.Min(w.SkillBoostCap,
		w.SkillBoostPerMatch*float64(len(direct))+
			w.SkillBoostSynonym*float64(len(synonym))+
			w.SkillCoverageWeight*coverage)

	multiplier := w.OnSectorMultiplier
	if !entry.SectorRelevant {
		multiplier = w.OffSectorMultiplier
	}
	locBonus := w.locationBonus(entry.MatchType)

	final := (semantic*w.SemanticWeight + skillComponent + locBonus) * multiplier
	score := clampInt(toPercent(final), toPercent(w.ScoreFloor), toPercent(w.ScoreCeiling))

	entry.MatchScore = score
	entry.MatchPercentage = fmt.Sprintf("%d%%", score)
	entry.MatchLabel = MatchLabel(score)
	entry.SkillCoverage = int(math.Round(coverage * 100))
	entry.MatchedSkills = append(append([]string{}, direct...), synonym...)
	entry.SemanticScore = round4(semantic)
	entry.SkillBoost = round4(skillComponent)
	entry.LocationBonus = locBonus
	entry.SectorMultiplier = multiplier
	entry.ScoreBreakdown = types.ScoreBreakdown{
		ProfileSkillScore: clampInt(toPercent(semantic*w.SemanticWeight+skillComponent), 0, toPercent(w.ScoreCeiling)),
		LocationScore:     locationScore(entry.MatchType),
	}
	return entry, true
}

// ScoreAll scores every pool entry and sorts by score, keeping input order
// among ties.
func ScoreAll(tax *taxonomy.Taxonomy, w Weights, skills []string, entries []types.RankedOpportunity, semantic []float64) []types.RankedOpportunity {
	scored := make([]types.RankedOpportunity, 0, len(entries))
	for i, e := range entries {
		if s, keep := Score(tax, w, skills, e, semantic[i]); keep {
			scored = append(scored, s)
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].MatchScore > scored[j].MatchScore
	})
	return scored
}

// MatchLabel buckets a score into a human label.
func MatchLabel(score int) string {
	switch {
	case score >= 85:
		return "Excellent Match"
	case score >= 70:
		return "Good Match"
	case score >= 55:
		return "Fair Match"
	case score >= 40:
		return "Average Match"
	default:
		return "Poor Match"
	}
}

func locationScore(mt types.MatchType) int {
	switch mt {
	case types.MatchLocal, types.MatchRemote:
		return 100
	case types.MatchRegional:
		return 75
	default:
		return 25
	}
}

// toPercent truncates to an integer percentage. The epsilon keeps values
// such as 0.99 from landing on 98 through float error.
func toPercent(f float64) int {
	return int(math.Floor(f*100 + 1e-9))
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}

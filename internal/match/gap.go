package match

import (
	"math"

	"internmatch/internal/textutil"
	"internmatch/internal/types"
)

// AnalyzeGap compares the listing's required skills with the candidate's.
// The missing list is truncated in parse order; gap_count keeps the full
// count so match_count + gap_count equals the number of parsed tokens.
func AnalyzeGap(skills []string, jobSkills string, missingLimit int) types.GapAnalysis {
	matched, missing := partitionRequired(skills, jobSkills)
	total := len(matched) + len(missing)

	shown := missing
	if missingLimit > 0 && len(shown) > missingLimit {
		shown = shown[:missingLimit]
	}

	return types.GapAnalysis{
		MatchedSkills: matched,
		MissingSkills: shown,
		MatchCount:    len(matched),
		GapCount:      len(missing),
		SkillCoverage: int(math.Round(float64(len(matched)) / float64(max(total, 1)) * 100)),
	}
}

// partitionRequired splits the parsed required tokens into matched and
// missing, both in parse order and never nil.
func partitionRequired(skills []string, jobSkills string) (matched, missing []string) {
	matched, missing = []string{}, []string{}
	for _, token := range textutil.SplitSkills(jobSkills) {
		if tokenMatchesAny(token, skills) {
			matched = append(matched, token)
		} else {
			missing = append(missing, token)
		}
	}
	return matched, missing
}

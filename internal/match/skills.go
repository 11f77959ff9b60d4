package match

import (
	"strings"

	"internmatch/internal/taxonomy"
	"internmatch/internal/textutil"
)

// shortTokenLen is the longest token that must match on word boundaries;
// "os" must never match inside "photoshop".
const shortTokenLen = 3

// tokenMatchesSkill is the gap-analysis rule: short tokens need a whole-word
// hit, longer ones may be contained in either direction so "react" and
// "reactjs" match each other.
func tokenMatchesSkill(token, skill string) bool {
	if len(token) <= shortTokenLen {
		return textutil.ContainsWord(skill, token)
	}
	if strings.Contains(skill, token) {
		return true
	}
	if len(skill) <= shortTokenLen {
		return textutil.ContainsWord(token, skill)
	}
	return strings.Contains(token, skill)
}

func tokenMatchesAny(token string, skills []string) bool {
	for _, s := range skills {
		if tokenMatchesSkill(token, s) {
			return true
		}
	}
	return false
}

// VerifiedMatches returns the candidate skills that appear word-bounded in
// the listing's skills text, in candidate order.
func VerifiedMatches(skills []string, jobSkills string) []string {
	lower := strings.ToLower(jobSkills)
	var out []string
	for _, s := range skills {
		if textutil.ContainsWord(lower, s) {
			out = append(out, s)
		}
	}
	return out
}

// skillHits splits candidate skills into direct hits and hits that only
// land through a synonym group.
func skillHits(tax *taxonomy.Taxonomy, skills []string, jobSkills string) (direct, synonym []string) {
	lower := strings.ToLower(jobSkills)
	for _, s := range skills {
		if textutil.ContainsWord(lower, s) {
			direct = append(direct, s)
			continue
		}
		for _, mate := range tax.SynonymsOf(s) {
			if textutil.ContainsWord(lower, mate) {
				synonym = append(synonym, s)
				break
			}
		}
	}
	return direct, synonym
}

// requiredCoverage is the share of required tokens the candidate covers,
// directly or through a synonym.
func requiredCoverage(tax *taxonomy.Taxonomy, skills []string, required []string) float64 {
	if len(required) == 0 {
		return 0
	}
	covered := 0
	for _, token := range required {
		if tokenMatchesAny(token, skills) {
			covered++
			continue
		}
		for _, mate := range tax.SynonymsOf(token) {
			if tokenMatchesAny(mate, skills) {
				covered++
				break
			}
		}
	}
	return float64(covered) / float64(len(required))
}

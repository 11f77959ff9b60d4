package match

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"internmatch/internal/taxonomy"
	"internmatch/internal/textutil"
	"internmatch/internal/types"
)

var experienceRe = regexp.MustCompile(`(\d+)\+?\s*year`)

// ParseResume extracts skills, an education hint, an experience estimate and
// a short summary from raw resume text. It never fails: empty text yields the
// existing skills and empty fields.
func ParseResume(tax *taxonomy.Taxonomy, resumeText string, existingSkills []string, summaryChars int) types.ParsedResume {
	trimmed := strings.TrimSpace(resumeText)
	if trimmed == "" {
		return types.ParsedResume{Skills: MergeSkills(existingSkills, nil)}
	}

	lower := strings.ToLower(trimmed)
	var found []string
	for _, skill := range tax.Skills {
		if textutil.ContainsWord(lower, skill) {
			found = append(found, skill)
		}
	}

	return types.ParsedResume{
		Skills:          MergeSkills(existingSkills, found),
		Education:       educationHint(tax, lower),
		ExperienceYears: experienceYears(lower),
		Summary:         textutil.Truncate(trimmed, summaryChars),
	}
}

// MergeSkills lower-cases and de-duplicates the union of both lists.
func MergeSkills(a, b []string) []string {
	set := make(map[string]struct{}, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, s := range list {
			if k := strings.ToLower(strings.TrimSpace(s)); k != "" {
				set[k] = struct{}{}
			}
		}
	}
	return sortedKeys(set)
}

// experienceYears returns the largest "<n> year" mention, or 0.
func experienceYears(lower string) int {
	best := 0
	for _, m := range experienceRe.FindAllStringSubmatch(lower, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n > best {
			best = n
		}
	}
	return best
}

func educationHint(tax *taxonomy.Taxonomy, lower string) string {
	for _, kw := range tax.EducationKeywords {
		if strings.Contains(lower, kw) {
			return kw
		}
	}
	return ""
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

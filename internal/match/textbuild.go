package match

import (
	"strings"

	"internmatch/internal/textutil"
	"internmatch/internal/types"
)

// BuildCandidateText joins the profile fields the embedding should see.
// skills is the merged, lower-cased skill set.
func BuildCandidateText(p types.CandidateProfile, parsed types.ParsedResume, skills []string) string {
	education := parsed.Education
	if education == "" {
		education = p.Education
	}
	summary := parsed.Summary
	if summary == "" {
		summary = p.Summary
	}
	return joinNonEmpty(
		strings.Join(skills, " "),
		p.Qualification,
		p.CareerGoal,
		p.PreferredSector,
		education,
		summary,
		p.Strengths,
	)
}

// BuildOpportunityText joins the listing fields the embedding should see.
func BuildOpportunityText(o types.Opportunity, limits Limits) string {
	return joinNonEmpty(
		o.Role,
		o.Company,
		o.Sector,
		textutil.StripWrapperArtifacts(o.Location),
		o.SkillsText(),
		textutil.Truncate(o.Description, limits.DescriptionChars),
		textutil.Truncate(o.Requirements, limits.RequirementsChars),
	)
}

func joinNonEmpty(parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

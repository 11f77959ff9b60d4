package match

import (
	"slices"
	"strings"

	"internmatch/internal/taxonomy"
	"internmatch/internal/types"
)

// LocationPreference is the parsed form of a candidate's location wishes.
type LocationPreference struct {
	Cities      []string
	Regions     []string
	WantsRemote bool
	NoPref      bool
}

// ParseLocationPreference reads preferred_locations and preferred_state.
// Items are separated by ';' or '|', parts of an item by commas. A part that
// names a known region is a region hint and a known hub city adds its region.
// An unknown second part is a region only when the item has exactly two
// parts ("city, state"); every other unknown part is a city.
func ParseLocationPreference(tax *taxonomy.Taxonomy, p types.CandidateProfile, workPreference string) LocationPreference {
	var pref LocationPreference

	items := make([]string, 0, len(p.PreferredLocations)+1)
	items = append(items, p.PreferredLocations...)
	items = append(items, strings.FieldsFunc(p.PreferredState, func(r rune) bool { return r == ';' || r == '|' })...)

	sawAny := false
	for _, item := range items {
		var parts []string
		for _, part := range strings.Split(item, ",") {
			if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
				parts = append(parts, part)
			}
		}
		for i, part := range parts {
			sawAny = true
			switch {
			case tax.IsNoPreference(part):
				pref.NoPref = true
			case tax.IsRemote(part):
				pref.WantsRemote = true
			case tax.IsRegion(part):
				pref.Regions = appendUnique(pref.Regions, part)
			default:
				if region, ok := tax.RegionOf(part); ok {
					pref.Cities = appendUnique(pref.Cities, part)
					pref.Regions = appendUnique(pref.Regions, region)
				} else if i == 1 && len(parts) == 2 {
					pref.Regions = appendUnique(pref.Regions, part)
				} else {
					pref.Cities = appendUnique(pref.Cities, part)
				}
			}
		}
	}
	if !sawAny {
		pref.NoPref = true
	}

	for _, mode := range []string{p.WorkMode, workPreference} {
		switch strings.ToLower(strings.TrimSpace(mode)) {
		case types.WorkModeRemote, types.WorkModeAny:
			pref.WantsRemote = true
		}
	}
	return pref
}

// Classify assigns exactly one match type to a cleaned location, evaluated
// in fixed precedence: local, remote_match, regional, anywhere.
func (lp LocationPreference) Classify(tax *taxonomy.Taxonomy, location string) types.MatchType {
	lower := strings.ToLower(location)

	if lp.NoPref || containsAny(lower, lp.Cities) {
		return types.MatchLocal
	}
	if lp.WantsRemote && tax.IsRemote(lower) {
		return types.MatchRemote
	}
	if containsAny(lower, lp.Regions) {
		return types.MatchRegional
	}
	for _, region := range lp.Regions {
		if containsAny(lower, tax.HubCities(region)) {
			return types.MatchRegional
		}
	}
	return types.MatchAnywhere
}

// LocationLabel is the display label for a match type.
func LocationLabel(mt types.MatchType) string {
	switch mt {
	case types.MatchLocal:
		return "Direct Match"
	case types.MatchRemote:
		return "Remote Match"
	case types.MatchRegional:
		return "Regional Match"
	default:
		return ""
	}
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(text, n) {
			return true
		}
	}
	return false
}

func appendUnique(list []string, v string) []string {
	if slices.Contains(list, v) {
		return list
	}
	return append(list, v)
}

// Package taxonomy holds the swappable vocabulary the matcher reasons with:
// known skills, synonym groups, the region to city hub map, sector keyword
// sets and the roadmap templates used by the deterministic explainer.
//
// A compiled Taxonomy is immutable and safe for concurrent reads.
package taxonomy

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"internmatch/internal/textutil"
)

// GenericCategory is the role category used when no other category matches.
const GenericCategory = "generic"

// SectorKeywords decides whether a listing belongs to a sector.
type SectorKeywords struct {
	Include []string `yaml:"include" json:"include"`
	Exclude []string `yaml:"exclude" json:"exclude"`
}

// DayTemplate is one roadmap step. {skill} and {query} are substituted.
type DayTemplate struct {
	Topic  string `yaml:"topic" json:"topic"`
	Action string `yaml:"action" json:"action"`
	Link   string `yaml:"link" json:"link"`
}

// RoadmapTemplate is a canned two-day plan for a role category.
type RoadmapTemplate struct {
	Summary string        `yaml:"summary" json:"summary"`
	Days    []DayTemplate `yaml:"days" json:"days"`
}

// RoleCategory maps coarse role keywords onto a roadmap template.
type RoleCategory struct {
	Name     string          `yaml:"name" json:"name"`
	Keywords []string        `yaml:"keywords" json:"keywords"`
	Roadmap  RoadmapTemplate `yaml:"roadmap" json:"roadmap"`
}

// Taxonomy is the full set of lookup tables. Call Compile after mutating it.
type Taxonomy struct {
	Name                 string                    `yaml:"name" json:"name"`
	Skills               []string                  `yaml:"skills" json:"skills"`
	EducationKeywords    []string                  `yaml:"educationKeywords" json:"educationKeywords"`
	Synonyms             map[string][]string       `yaml:"synonyms" json:"synonyms"`
	Regions              map[string][]string       `yaml:"regions" json:"regions"`
	Sectors              map[string]SectorKeywords `yaml:"sectors" json:"sectors"`
	SectorAliases        map[string]string         `yaml:"sectorAliases" json:"sectorAliases"`
	DefaultSector        string                    `yaml:"defaultSector" json:"defaultSector"`
	RemoteKeywords       []string                  `yaml:"remoteKeywords" json:"remoteKeywords"`
	NoPreferenceKeywords []string                  `yaml:"noPreferenceKeywords" json:"noPreferenceKeywords"`
	RoleCategories       []RoleCategory            `yaml:"roleCategories" json:"roleCategories"`

	cityRegion map[string]string
	synonymsOf map[string][]string
	compiled   bool
}

// Compile lower-cases every table and builds the reverse indexes.
func (t *Taxonomy) Compile() error {
	t.Skills = lowerUnique(t.Skills)
	t.EducationKeywords = lowerAll(t.EducationKeywords)
	t.RemoteKeywords = lowerUnique(t.RemoteKeywords)
	t.NoPreferenceKeywords = lowerUnique(t.NoPreferenceKeywords)
	t.DefaultSector = normalizeKey(t.DefaultSector)

	regions := make(map[string][]string, len(t.Regions))
	t.cityRegion = make(map[string]string)
	for region, cities := range t.Regions {
		key := normalizeKey(region)
		if key == "" {
			return fmt.Errorf("region with empty name")
		}
		regions[key] = lowerUnique(cities)
		for _, city := range regions[key] {
			if prev, ok := t.cityRegion[city]; ok && prev != key {
				return fmt.Errorf("city %q listed under both %q and %q", city, prev, key)
			}
			t.cityRegion[city] = key
		}
	}
	t.Regions = regions

	sectors := make(map[string]SectorKeywords, len(t.Sectors))
	for name, kw := range t.Sectors {
		sectors[normalizeKey(name)] = SectorKeywords{
			Include: lowerUnique(kw.Include),
			Exclude: lowerUnique(kw.Exclude),
		}
	}
	t.Sectors = sectors

	aliases := make(map[string]string, len(t.SectorAliases))
	for alias, target := range t.SectorAliases {
		aliases[normalizeKey(alias)] = normalizeKey(target)
	}
	t.SectorAliases = aliases

	t.synonymsOf = make(map[string][]string)
	synonyms := make(map[string][]string, len(t.Synonyms))
	for head, mates := range t.Synonyms {
		group := lowerUnique(append([]string{head}, mates...))
		synonyms[normalizeKey(head)] = group[1:]
		for _, member := range group {
			for _, other := range group {
				if other != member && !slices.Contains(t.synonymsOf[member], other) {
					t.synonymsOf[member] = append(t.synonymsOf[member], other)
				}
			}
		}
	}
	t.Synonyms = synonyms

	hasGeneric := false
	for i := range t.RoleCategories {
		c := &t.RoleCategories[i]
		c.Name = normalizeKey(c.Name)
		c.Keywords = lowerUnique(c.Keywords)
		if c.Name == GenericCategory {
			hasGeneric = true
		}
		if len(c.Roadmap.Days) == 0 {
			return fmt.Errorf("role category %q has an empty roadmap", c.Name)
		}
	}
	if !hasGeneric {
		return fmt.Errorf("role categories must include %q", GenericCategory)
	}

	t.compiled = true
	return nil
}

// RegionOf returns the region a hub city belongs to.
func (t *Taxonomy) RegionOf(city string) (string, bool) {
	region, ok := t.cityRegion[normalizeKey(city)]
	return region, ok
}

// IsRegion reports whether name is a known region.
func (t *Taxonomy) IsRegion(name string) bool {
	_, ok := t.Regions[normalizeKey(name)]
	return ok
}

// HubCities returns the cities of a region.
func (t *Taxonomy) HubCities(region string) []string {
	return t.Regions[normalizeKey(region)]
}

// SynonymsOf returns every skill sharing a synonym group with skill.
func (t *Taxonomy) SynonymsOf(skill string) []string {
	return t.synonymsOf[normalizeKey(skill)]
}

// IsRemote reports whether a location text advertises remote work.
func (t *Taxonomy) IsRemote(location string) bool {
	lower := strings.ToLower(location)
	for _, kw := range t.RemoteKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// IsNoPreference reports whether a location token means "anywhere".
func (t *Taxonomy) IsNoPreference(token string) bool {
	return slices.Contains(t.NoPreferenceKeywords, normalizeKey(token))
}

// ResolveSector maps a preferred sector onto its canonical name.
func (t *Taxonomy) ResolveSector(preferred string) string {
	key := normalizeKey(preferred)
	if key == "" {
		key = t.DefaultSector
	}
	if target, ok := t.SectorAliases[key]; ok {
		return target
	}
	return key
}

// IsRelevantSector decides whether a listing belongs to the preferred sector.
// Sectors with a keyword set use keyword mode; others fall back to a
// substring test against role and sector.
func (t *Taxonomy) IsRelevantSector(preferred, role, sector, skills string) bool {
	name := t.ResolveSector(preferred)
	roleSector := strings.ToLower(role + " " + sector)

	kw, ok := t.Sectors[name]
	if !ok {
		return strings.Contains(roleSector, name)
	}

	for _, ex := range kw.Exclude {
		if keywordHit(roleSector, ex) {
			return false
		}
	}
	positive := roleSector + " " + strings.ToLower(skills)
	for _, in := range kw.Include {
		if keywordHit(positive, in) {
			return true
		}
	}
	return false
}

// RoleCategoryFor picks the first category whose keywords appear in role.
func (t *Taxonomy) RoleCategoryFor(role string) RoleCategory {
	lower := strings.ToLower(role)
	var generic RoleCategory
	for _, c := range t.RoleCategories {
		if c.Name == GenericCategory {
			generic = c
			continue
		}
		for _, kw := range c.Keywords {
			if keywordHit(lower, kw) {
				return c
			}
		}
	}
	return generic
}

// Stats summarises table sizes for /stats and the taxonomy command.
func (t *Taxonomy) Stats() map[string]int {
	return map[string]int{
		"skills":          len(t.Skills),
		"synonym_groups":  len(t.Synonyms),
		"regions":         len(t.Regions),
		"hub_cities":      len(t.cityRegion),
		"sectors":         len(t.Sectors),
		"role_categories": len(t.RoleCategories),
	}
}

// RegionNames returns the region names in sorted order.
func (t *Taxonomy) RegionNames() []string {
	names := make([]string, 0, len(t.Regions))
	for name := range t.Regions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Short keywords need whole-word hits, longer ones only a leading boundary so
// "engineer" still matches "engineering".
func keywordHit(text, kw string) bool {
	if len(kw) <= 3 {
		return textutil.ContainsWord(text, kw)
	}
	return textutil.ContainsWordPrefix(text, kw)
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if k := normalizeKey(s); k != "" {
			out = append(out, k)
		}
	}
	return out
}

func lowerUnique(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		k := normalizeKey(s)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

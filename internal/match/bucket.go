package match

import (
	"internmatch/internal/taxonomy"
	"internmatch/internal/textutil"
	"internmatch/internal/types"
)

// BucketCounts reports how many listings landed in each tier before capping.
type BucketCounts struct {
	Local    int `json:"local"`
	Remote   int `json:"remote_match"`
	Regional int `json:"regional"`
	Anywhere int `json:"anywhere"`
	Other    int `json:"other"`
}

// Pool is the size-bounded candidate set handed to the scorer.
type Pool struct {
	Entries      []types.RankedOpportunity
	Counts       BucketCounts
	FromOther    bool
	SectorTarget string
}

// CleanOpportunity strips export artifacts from the fields used for
// bucketing and display.
func CleanOpportunity(o types.Opportunity) types.Opportunity {
	o.Role = textutil.StripWrapperArtifacts(o.Role)
	o.Company = textutil.StripWrapperArtifacts(o.Company)
	o.Sector = textutil.StripWrapperArtifacts(o.Sector)
	o.Location = textutil.CleanLocation(textutil.StripWrapperArtifacts(o.Location))
	return o
}

// BuildPool classifies every listing into one sector/location tier and
// concatenates capped bucket slices in priority order. Caps are hard: a
// bucket's overflow is dropped, never handed to another bucket.
func BuildPool(tax *taxonomy.Taxonomy, preferredSector string, lp LocationPreference, opportunities []types.Opportunity, caps PoolCaps) Pool {
	var local, remote, regional, anywhere, other []types.RankedOpportunity

	for _, raw := range opportunities {
		o := CleanOpportunity(raw)
		mt := lp.Classify(tax, o.Location)
		relevant := tax.IsRelevantSector(preferredSector, o.Role, o.Sector, o.SkillsText())

		if tax.IsRemote(o.Location) {
			o.WorkMode = "Remote"
		}

		entry := types.RankedOpportunity{
			Opportunity:    o,
			MatchType:      mt,
			SectorRelevant: relevant,
		}
		if !relevant {
			other = append(other, entry)
			continue
		}

		entry.LocationLabel = LocationLabel(mt)
		switch mt {
		case types.MatchLocal:
			local = append(local, entry)
		case types.MatchRemote:
			remote = append(remote, entry)
		case types.MatchRegional:
			regional = append(regional, entry)
		default:
			anywhere = append(anywhere, entry)
		}
	}

	pool := Pool{
		Counts: BucketCounts{
			Local:    len(local),
			Remote:   len(remote),
			Regional: len(regional),
			Anywhere: len(anywhere),
			Other:    len(other),
		},
		SectorTarget: tax.ResolveSector(preferredSector),
	}

	entries := make([]types.RankedOpportunity, 0, caps.Total)
	entries = append(entries, head(local, caps.Local)...)
	entries = append(entries, head(remote, caps.Remote)...)
	entries = append(entries, head(regional, caps.Regional)...)
	if room := caps.Total - len(entries); room > 0 {
		entries = append(entries, head(anywhere, room)...)
	}

	if len(entries) == 0 {
		entries = append(entries, head(other, caps.Other)...)
		pool.FromOther = len(entries) > 0
	}
	pool.Entries = entries
	return pool
}

func head[T any](s []T, n int) []T {
	if n <= 0 {
		return nil
	}
	if len(s) > n {
		return s[:n]
	}
	return s
}

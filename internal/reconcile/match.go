package reconcile

import (
	"strings"

	"github.com/neurostuff/curate/internal/study"
)

// Match records which base study a stub corresponds to and how.
type Match struct {
	Index     int    // Index into the base study slice
	MatchedBy string // "pmid", "doi", "title" or "position"
}

// MatchStubsToBaseStudies builds an explicit stub-id to base-study mapping.
// Stubs are matched by PMID first, then DOI, then case-insensitive title
// against base study name. Each base study is claimed at most once.
// Stubs that no key matches fall back to the base study at the same index
// when that one is still unclaimed. Title and position never pair a stub
// with a base study whose PMID or DOI conflicts with the stub's.
func MatchStubsToBaseStudies(stubs []study.CurationStub, baseStudies []study.BaseStudy) map[string]Match {
	result := make(map[string]Match, len(stubs))

	byPMID := make(map[string]int)
	byDOI := make(map[string]int)
	byTitle := make(map[string]int)
	for i, bs := range baseStudies {
		if bs.PMID != "" {
			if _, ok := byPMID[bs.PMID]; !ok {
				byPMID[bs.PMID] = i
			}
		}
		if doi := study.NormalizeDOI(bs.DOI); doi != "" {
			if _, ok := byDOI[doi]; !ok {
				byDOI[doi] = i
			}
		}
		if title := titleKey(bs.Name); title != "" {
			if _, ok := byTitle[title]; !ok {
				byTitle[title] = i
			}
		}
	}

	claimed := make(map[int]bool)
	pass := func(matchedBy string, key func(study.CurationStub) string, index map[string]int, guard bool) {
		for _, stub := range stubs {
			if _, done := result[stub.ID]; done {
				continue
			}
			k := key(stub)
			if k == "" {
				continue
			}
			if i, ok := index[k]; ok && !claimed[i] && !(guard && conflicting(stub, baseStudies[i])) {
				result[stub.ID] = Match{Index: i, MatchedBy: matchedBy}
				claimed[i] = true
			}
		}
	}

	pass("pmid", func(s study.CurationStub) string { return s.PMID }, byPMID, false)
	pass("doi", func(s study.CurationStub) string { return study.NormalizeDOI(s.DOI) }, byDOI, false)
	pass("title", func(s study.CurationStub) string { return titleKey(s.Title) }, byTitle, true)

	for i, stub := range stubs {
		if _, done := result[stub.ID]; done {
			continue
		}
		if i < len(baseStudies) && !claimed[i] && !conflicting(stub, baseStudies[i]) {
			result[stub.ID] = Match{Index: i, MatchedBy: "position"}
			claimed[i] = true
		}
	}

	return result
}

// conflicting reports whether both sides carry a PMID, or both a DOI, and
// the values differ.
func conflicting(stub study.CurationStub, bs study.BaseStudy) bool {
	sp, bp := strings.TrimSpace(stub.PMID), strings.TrimSpace(bs.PMID)
	if sp != "" && bp != "" && sp != bp {
		return true
	}
	sd, bd := study.NormalizeDOI(stub.DOI), study.NormalizeDOI(bs.DOI)
	return sd != "" && bd != "" && sd != bd
}

func titleKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

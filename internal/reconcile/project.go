package reconcile

import (
	"strings"

	"github.com/neurostuff/curate/internal/study"
)

// Import actions reported by MergeStubs.
const (
	ActionNew    = "new"
	ActionUpdate = "update"
	ActionSkip   = "skip"
)

// StubAction describes what MergeStubs did with one incoming stub.
type StubAction struct {
	StubID    string `json:"stub_id"`
	Action    string `json:"action"` // new, update, skip
	MatchedID string `json:"matched_id,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Title     string `json:"title"`
}

// MergeStubs folds incoming stubs into the existing project stubs.
// An incoming stub describing the same study as an existing (or earlier
// incoming) stub is not added; instead it fills that stub's empty fields.
// Existing tags, exclusions and NeurostoreID locks are never touched.
func MergeStubs(existing, incoming []study.CurationStub) ([]study.CurationStub, []StubAction) {
	// Working set covers persisted stubs and in-progress imports, so
	// duplicates within one batch are caught too.
	working := make([]study.CurationStub, len(existing), len(existing)+len(incoming))
	copy(working, existing)

	actions := make([]StubAction, 0, len(incoming))
	for _, in := range incoming {
		idx, reason := findSameStudy(working, in)
		if idx < 0 {
			working = append(working, in)
			actions = append(actions, StubAction{StubID: in.ID, Action: ActionNew, Title: in.Title})
			continue
		}

		filled, changed := fillStub(working[idx], in)
		working[idx] = filled
		action := ActionSkip
		if changed {
			action = ActionUpdate
		}
		actions = append(actions, StubAction{
			StubID:    in.ID,
			Action:    action,
			MatchedID: filled.ID,
			Reason:    reason,
			Title:     in.Title,
		})
	}
	return working, actions
}

// findSameStudy returns the index of the first stub matching s and the key
// that matched.
func findSameStudy(stubs []study.CurationStub, s study.CurationStub) (int, string) {
	for i, other := range stubs {
		if s.PMID != "" && other.PMID == s.PMID {
			return i, "pmid_match"
		}
	}
	doi := study.NormalizeDOI(s.DOI)
	for i, other := range stubs {
		if doi != "" && study.NormalizeDOI(other.DOI) == doi {
			return i, "doi_match"
		}
	}
	for i, other := range stubs {
		if study.SameStudy(other, s) {
			return i, "title_match"
		}
	}
	return -1, ""
}

// fillStub copies non-empty bibliographic fields from src into empty
// fields of dst.
func fillStub(dst, src study.CurationStub) (study.CurationStub, bool) {
	changed := false
	fill := func(target *string, val string) {
		if strings.TrimSpace(*target) == "" && val != "" {
			*target = val
			changed = true
		}
	}
	fill(&dst.Title, src.Title)
	fill(&dst.Authors, src.Authors)
	fill(&dst.DOI, src.DOI)
	fill(&dst.PMID, src.PMID)
	fill(&dst.PMCID, src.PMCID)
	fill(&dst.ArticleYear, src.ArticleYear)
	fill(&dst.Journal, src.Journal)
	fill(&dst.AbstractText, src.AbstractText)
	fill(&dst.Keywords, src.Keywords)
	fill(&dst.ArticleLink, src.ArticleLink)
	return dst, changed
}

package reconcile

import (
	"testing"

	"github.com/neurostuff/curate/internal/study"
)

func TestMatchStubsToBaseStudies_ReorderedIngestion(t *testing.T) {
	stubs := []study.CurationStub{
		{ID: "s-pmid", PMID: "111"},
		{ID: "s-doi", DOI: "10.1/B"},
		{ID: "s-title", Title: "  Reward Learning  "},
	}
	baseStudies := []study.BaseStudy{
		{Name: "reward learning"},
		{DOI: "10.1/b"},
		{PMID: "111"},
	}

	matches := MatchStubsToBaseStudies(stubs, baseStudies)

	tests := []struct {
		stubID    string
		wantIndex int
		wantBy    string
	}{
		{"s-pmid", 2, "pmid"},
		{"s-doi", 1, "doi"},
		{"s-title", 0, "title"},
	}
	for _, tt := range tests {
		m, ok := matches[tt.stubID]
		if !ok {
			t.Errorf("%s: no match", tt.stubID)
			continue
		}
		if m.Index != tt.wantIndex || m.MatchedBy != tt.wantBy {
			t.Errorf("%s: got %+v, want index %d by %s", tt.stubID, m, tt.wantIndex, tt.wantBy)
		}
	}
}

func TestMatchStubsToBaseStudies_PMIDPrioritizedOverDOI(t *testing.T) {
	stubs := []study.CurationStub{{ID: "s", PMID: "1", DOI: "10.1/a"}}
	baseStudies := []study.BaseStudy{
		{DOI: "10.1/a"},
		{PMID: "1"},
	}

	m := MatchStubsToBaseStudies(stubs, baseStudies)["s"]
	if m.Index != 1 || m.MatchedBy != "pmid" {
		t.Errorf("got %+v, want index 1 by pmid", m)
	}
}

func TestMatchStubsToBaseStudies_ClaimsOnce(t *testing.T) {
	stubs := []study.CurationStub{
		{ID: "first", DOI: "10.1/a"},
		{ID: "second", DOI: "10.1/a"},
	}
	baseStudies := []study.BaseStudy{{DOI: "10.1/a"}}

	matches := MatchStubsToBaseStudies(stubs, baseStudies)
	if _, ok := matches["first"]; !ok {
		t.Error("expected first stub to match")
	}
	if _, ok := matches["second"]; ok {
		t.Error("base study should only be claimed once")
	}
}

func TestMatchStubsToBaseStudies_ConflictingIdentifiers(t *testing.T) {
	tests := []struct {
		name        string
		stub        study.CurationStub
		baseStudies []study.BaseStudy
	}{
		{
			name:        "title with different pmid",
			stub:        study.CurationStub{ID: "s1", PMID: "111", Title: "Faces"},
			baseStudies: []study.BaseStudy{{PMID: "222", Name: "faces"}},
		},
		{
			name:        "title with different doi",
			stub:        study.CurationStub{ID: "s1", DOI: "10.1/a", Title: "Faces"},
			baseStudies: []study.BaseStudy{{DOI: "10.1/b", Name: "faces"}},
		},
		{
			name:        "position with different pmid",
			stub:        study.CurationStub{ID: "s1", PMID: "111"},
			baseStudies: []study.BaseStudy{{PMID: "222", Name: "Houses"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if m, ok := MatchStubsToBaseStudies([]study.CurationStub{tt.stub}, tt.baseStudies)["s1"]; ok {
				t.Errorf("expected no match, got %+v", m)
			}
		})
	}
}

func TestMatchStubsToBaseStudies_TitleWhenOneSideLacksIdentifiers(t *testing.T) {
	stubs := []study.CurationStub{{ID: "s1", PMID: "111", Title: "Faces"}}
	baseStudies := []study.BaseStudy{{Name: "faces"}}

	m, ok := MatchStubsToBaseStudies(stubs, baseStudies)["s1"]
	if !ok || m.MatchedBy != "title" {
		t.Errorf("got %+v, %v; want title match", m, ok)
	}
}

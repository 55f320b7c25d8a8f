package study

import (
	"testing"
	"time"
)

func TestSameStudy(t *testing.T) {
	tests := []struct {
		name string
		a, b CurationStub
		want bool
	}{
		{"pmid match", CurationStub{PMID: "1", DOI: "10.1/a"}, CurationStub{PMID: "1", DOI: "10.1/b"}, true},
		{"doi match", CurationStub{PMID: "1", DOI: "10.1/a"}, CurationStub{PMID: "2", DOI: "10.1/A"}, true},
		{"doi url prefix", CurationStub{DOI: "https://doi.org/10.1/a"}, CurationStub{DOI: "10.1/a"}, true},
		{"different ids", CurationStub{PMID: "1", Title: "Same"}, CurationStub{PMID: "2", Title: "Same"}, false},
		{"title fallback", CurationStub{Title: "Working Memory"}, CurationStub{Title: "working memory"}, true},
		{"title fallback one side has id", CurationStub{PMID: "1", Title: "T"}, CurationStub{Title: "t"}, true},
		{"empty titles", CurationStub{}, CurationStub{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameStudy(tt.a, tt.b); got != tt.want {
				t.Errorf("SameStudy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCurationStubTags(t *testing.T) {
	var s CurationStub
	s.AddTag(Tag{ID: "t1", Label: "fmri"})
	s.AddTag(Tag{ID: "t1", Label: "fmri"})
	if len(s.Tags) != 1 {
		t.Fatalf("expected 1 tag, got %d", len(s.Tags))
	}
	if s.IsExcluded() {
		t.Error("new stub should not be excluded")
	}
	s.Exclude(Tag{ID: "dup", Label: "Duplicate"})
	if !s.IsExcluded() || s.ExclusionTag.ID != "dup" {
		t.Errorf("expected exclusion tag dup, got %+v", s.ExclusionTag)
	}
}

func TestLastUpdated(t *testing.T) {
	created := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	updated := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)

	if got := (StudyVersion{CreatedAt: &created, UpdatedAt: &updated}).LastUpdated(); !got.Equal(updated) {
		t.Errorf("LastUpdated() = %v, want %v", got, updated)
	}
	if got := (StudyVersion{CreatedAt: &created}).LastUpdated(); !got.Equal(created) {
		t.Errorf("LastUpdated() = %v, want %v", got, created)
	}
	if got := (StudyVersion{}).LastUpdated(); !got.IsZero() {
		t.Errorf("LastUpdated() = %v, want zero", got)
	}
}

func TestNewStubIDUnique(t *testing.T) {
	if NewStubID() == NewStubID() {
		t.Error("expected distinct stub ids")
	}
}

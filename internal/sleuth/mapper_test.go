package sleuth

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/neurostuff/curate/internal/study"
)

func TestToBaseStudies_GroupsByIdentifier(t *testing.T) {
	result := Parse(NormalizeLineEndings(readTestFixture(t, "multi_block_crlf.txt")))
	studies := ToBaseStudies(result)

	if len(studies) != 2 {
		t.Fatalf("expected 2 base studies, got %d", len(studies))
	}

	jones := studies[0]
	if jones.PMID != "12345" {
		t.Errorf("PMID = %q, want 12345", jones.PMID)
	}
	if jones.Authors != "Jones et al.," {
		t.Errorf("Authors = %q", jones.Authors)
	}
	if jones.Year != 2005 {
		t.Errorf("Year = %d, want 2005", jones.Year)
	}
	if len(jones.Versions) != 1 {
		t.Fatalf("expected 1 version, got %d", len(jones.Versions))
	}
	analyses := jones.Versions[0].Analyses
	if len(analyses) != 2 {
		t.Fatalf("expected 2 analyses, got %d", len(analyses))
	}
	if analyses[1].Name != "Houses > Faces" {
		t.Errorf("second analysis = %q", analyses[1].Name)
	}
	if jones.Versions[0].Metadata.SampleSize != 16 {
		t.Errorf("SampleSize = %d, want 16", jones.Versions[0].Metadata.SampleSize)
	}

	wantPoints := []study.Point{
		{Coordinates: [3]float64{-42, -56, -18}, Space: "Talairach"},
		{Coordinates: [3]float64{40.5, -52, -20.25}, Space: "Talairach"},
	}
	if diff := cmp.Diff(wantPoints, analyses[0].Points); diff != "" {
		t.Errorf("points mismatch (-want +got):\n%s", diff)
	}

	if studies[1].DOI != "10.1016/j.neuroimage.2010.01.001" {
		t.Errorf("second DOI = %q", studies[1].DOI)
	}
}

func TestToBaseStudies_MergesPMIDAndDOIGroups(t *testing.T) {
	result := ParseResult{
		Space: "MNI",
		Stubs: []Stub{
			{AuthorYearString: "A 2001", PMID: "1", DOI: "10.1/a", AnalysisName: "x"},
			{AuthorYearString: "A 2001", DOI: "10.1/A", AnalysisName: "y"},
			{AuthorYearString: "B 2002", AnalysisName: "z"},
			{AuthorYearString: "B 2002", AnalysisName: "w"},
		},
	}

	studies := ToBaseStudies(result)
	if len(studies) != 2 {
		t.Fatalf("expected 2 base studies, got %d", len(studies))
	}
	if n := len(studies[0].Versions[0].Analyses); n != 2 {
		t.Errorf("first study analyses = %d, want 2", n)
	}
	if n := len(studies[1].Versions[0].Analyses); n != 2 {
		t.Errorf("second study analyses = %d, want 2", n)
	}
}

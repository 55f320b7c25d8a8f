package sleuth

import (
	"github.com/neurostuff/curate/internal/study"
)

// ToBaseStudies groups parsed stubs into base studies. Stubs sharing a PMID
// or DOI become analyses of one study; stubs with neither are grouped by
// their author/year string. Input order is preserved.
func ToBaseStudies(result ParseResult) []study.BaseStudy {
	var studies []study.BaseStudy

	for _, stub := range result.Stubs {
		idx := findGroup(studies, stub)
		if idx < 0 {
			studies = append(studies, newBaseStudy(stub))
			idx = len(studies) - 1
		}

		bs := &studies[idx]
		if bs.PMID == "" {
			bs.PMID = stub.PMID
		}
		if bs.DOI == "" {
			bs.DOI = stub.DOI
		}

		version := &bs.Versions[0]
		if stub.Subjects > version.Metadata.SampleSize {
			version.Metadata.SampleSize = stub.Subjects
		}
		version.Analyses = append(version.Analyses, toAnalysis(stub, result.Space))
	}

	return studies
}

// findGroup returns the index of the base study a stub belongs to, or -1.
func findGroup(studies []study.BaseStudy, stub Stub) int {
	for i, bs := range studies {
		switch {
		case stub.PMID != "" && bs.PMID == stub.PMID:
			return i
		case stub.DOI != "" && study.NormalizeDOI(bs.DOI) == study.NormalizeDOI(stub.DOI):
			return i
		case stub.PMID == "" && stub.DOI == "" && bs.PMID == "" && bs.DOI == "" &&
			bs.Authors == ExtractAuthors(stub.AuthorYearString):
			return i
		}
	}
	return -1
}

func newBaseStudy(stub Stub) study.BaseStudy {
	bs := study.BaseStudy{
		Authors:  ExtractAuthors(stub.AuthorYearString),
		DOI:      stub.DOI,
		PMID:     stub.PMID,
		Versions: []study.StudyVersion{{}},
	}
	if year, ok := ExtractYear(stub.AuthorYearString); ok {
		bs.Year = year
	}
	return bs
}

func toAnalysis(stub Stub, space string) study.Analysis {
	points := make([]study.Point, 0, len(stub.Coordinates))
	for _, c := range stub.Coordinates {
		points = append(points, study.Point{
			Coordinates: [3]float64{c.X, c.Y, c.Z},
			Space:       space,
		})
	}
	return study.Analysis{Name: stub.AnalysisName, Points: points}
}

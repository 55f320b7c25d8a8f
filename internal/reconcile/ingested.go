package reconcile

import (
	"strconv"

	"github.com/neurostuff/curate/internal/study"
)

// IngestedStudy links an ingested study back to the identifiers it was
// submitted with.
type IngestedStudy struct {
	StudyID     string   `json:"studyId"`
	DOI         string   `json:"doi"`
	PMID        string   `json:"pmid"`
	AnalysisIDs []string `json:"analysisIds,omitempty"`
}

// Upload is one imported file after bibliographic merge and ingestion.
type Upload struct {
	Filename          string            `json:"filename"`
	BaseStudies       []study.BaseStudy `json:"baseStudies"` // Merged with fetched details, deduplicated within the file
	StudyAnalysisList []IngestedStudy   `json:"studyAnalysisList"`
}

// IngestedStudiesToStubs flattens uploads into curation stubs, skipping any
// base study whose PMID or DOI was already seen in an earlier upload (or in
// seen). Each stub's provenance is its upload's filename, and its
// NeurostoreID is the ingested study with the same DOI or PMID.
//
// newID generates stub ids; nil uses study.NewStubID.
func IngestedStudiesToStubs(uploads []Upload, seen SeenIDs, newID func() string) ([]study.CurationStub, SeenIDs) {
	if newID == nil {
		newID = study.NewStubID
	}
	acc := seen.clone()

	stubs := []study.CurationStub{}
	for _, upload := range uploads {
		for _, bs := range upload.BaseStudies {
			if acc.Has(bs.PMID, bs.DOI) {
				continue
			}
			acc.add(bs.PMID, bs.DOI)

			stub := BaseStudyToStub(bs, newID())
			stub.IdentificationSource = upload.Filename
			stub.NeurostoreID = findIngestedStudyID(upload.StudyAnalysisList, bs)
			stubs = append(stubs, stub)
		}
	}
	return stubs, acc
}

// BaseStudyToStub maps bibliographic fields of a base study onto a new stub.
func BaseStudyToStub(bs study.BaseStudy, id string) study.CurationStub {
	stub := study.CurationStub{
		ID:           id,
		Title:        bs.Name,
		Authors:      bs.Authors,
		DOI:          bs.DOI,
		PMID:         bs.PMID,
		PMCID:        bs.PMCID,
		Journal:      bs.Publication,
		AbstractText: bs.Description,
		Tags:         []study.Tag{},
	}
	if bs.Year != 0 {
		stub.ArticleYear = strconv.Itoa(bs.Year)
	}
	return stub
}

func findIngestedStudyID(list []IngestedStudy, bs study.BaseStudy) string {
	doi := study.NormalizeDOI(bs.DOI)
	for _, ingested := range list {
		if doi != "" && study.NormalizeDOI(ingested.DOI) == doi {
			return ingested.StudyID
		}
		if bs.PMID != "" && ingested.PMID == bs.PMID {
			return ingested.StudyID
		}
	}
	return ""
}

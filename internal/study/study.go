// Package study defines the core domain types shared by import and curation.
package study

import (
	"strings"

	"github.com/google/uuid"
)

// Identification sources for curation stubs.
const (
	SourceSleuth    = "sleuth"
	SourcePubMed    = "pubmed"
	SourceManual    = "manual"
	SourcePaperpile = "paperpile"
)

// Tag is a label attached to a curation stub.
type Tag struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// CurationStub is a candidate study as seen during curation, independent of
// the format it was imported from.
type CurationStub struct {
	ID           string `json:"id"` // Client-generated identifier
	Title        string `json:"title"`
	Authors      string `json:"authors"`
	DOI          string `json:"doi"`
	PMID         string `json:"pmid"`
	PMCID        string `json:"pmcid"`
	ArticleYear  string `json:"articleYear"`
	Journal      string `json:"journal"`
	AbstractText string `json:"abstractText"`
	Keywords     string `json:"keywords,omitempty"`
	ArticleLink  string `json:"articleLink,omitempty"`

	Tags         []Tag `json:"tags"`
	ExclusionTag *Tag  `json:"exclusionTag"`

	// Provenance: "sleuth" stubs carry the source filename instead.
	IdentificationSource string `json:"identificationSource"`

	// Canonical persisted study version; once set it is treated as locked.
	NeurostoreID string `json:"neurostoreId,omitempty"`
}

// NewStubID returns a fresh client-side stub identifier.
func NewStubID() string {
	return uuid.NewString()
}

// HasTag reports whether the stub carries a tag with the given id.
func (s CurationStub) HasTag(id string) bool {
	for _, t := range s.Tags {
		if t.ID == id {
			return true
		}
	}
	return false
}

// AddTag attaches a tag unless it is already present.
func (s *CurationStub) AddTag(t Tag) {
	if s.HasTag(t.ID) {
		return
	}
	s.Tags = append(s.Tags, t)
}

// Exclude marks the stub as excluded with the given tag.
func (s *CurationStub) Exclude(t Tag) {
	tag := t
	s.ExclusionTag = &tag
}

// IsExcluded reports whether the stub has an exclusion tag.
func (s CurationStub) IsExcluded() bool {
	return s.ExclusionTag != nil
}

// SameStudy reports whether two stubs describe the same study.
// Priority: PMID, then DOI, then case-insensitive title.
func SameStudy(a, b CurationStub) bool {
	aPMID, bPMID := strings.TrimSpace(a.PMID), strings.TrimSpace(b.PMID)
	if aPMID != "" && aPMID == bPMID {
		return true
	}
	aDOI, bDOI := NormalizeDOI(a.DOI), NormalizeDOI(b.DOI)
	if aDOI != "" && aDOI == bDOI {
		return true
	}
	if aPMID == "" && aDOI == "" || bPMID == "" && bDOI == "" {
		return a.Title != "" && strings.EqualFold(strings.TrimSpace(a.Title), strings.TrimSpace(b.Title))
	}
	return false
}

// NormalizeDOI normalizes a DOI to a consistent format for comparison.
// It removes common URL prefixes (https://doi.org/, DOI:) and converts to lowercase.
func NormalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	doi = strings.TrimPrefix(doi, "https://doi.org/")
	doi = strings.TrimPrefix(doi, "http://doi.org/")
	doi = strings.TrimPrefix(doi, "https://dx.doi.org/")
	doi = strings.TrimPrefix(doi, "doi.org/")
	if len(doi) >= 4 && strings.EqualFold(doi[:4], "doi:") {
		doi = doi[4:]
	}
	return strings.ToLower(strings.TrimSpace(doi))
}

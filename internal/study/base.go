package study

import "time"

// BaseStudy is a canonical study record: bibliographic identity plus the
// versions (extractions) attached to it.
type BaseStudy struct {
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name"`
	Authors     string         `json:"authors"`
	Description string         `json:"description"`
	DOI         string         `json:"doi"`
	PMID        string         `json:"pmid"`
	PMCID       string         `json:"pmcid"`
	Publication string         `json:"publication"`
	Year        int            `json:"year,omitempty"`
	Level       string         `json:"level,omitempty"`
	Versions    []StudyVersion `json:"versions"`
}

// StudyVersion is one version of a base study.
type StudyVersion struct {
	ID        string     `json:"id,omitempty"`
	Name      string     `json:"name,omitempty"`
	Metadata  Metadata   `json:"metadata,omitempty"`
	Analyses  []Analysis `json:"analyses,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Metadata holds study-level metadata carried by a version.
type Metadata struct {
	SampleSize int `json:"sample_size,omitempty"`
}

// Analysis is a single experiment or contrast within a study version.
type Analysis struct {
	ID     string  `json:"id,omitempty"`
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// Point is a peak coordinate in a named space.
type Point struct {
	Coordinates [3]float64 `json:"coordinates"`
	Space       string     `json:"space"`
}

// StudysetEntry is one element of the studyset-update payload.
type StudysetEntry struct {
	ID               string `json:"id"`
	CurationStubUUID string `json:"curation_stub_uuid,omitempty"` // Empty for members no stub owns
}

// LastUpdated returns the timestamp used to rank a version by recency:
// UpdatedAt when present, otherwise CreatedAt. A version with neither
// returns the zero time and ranks lowest.
func (v StudyVersion) LastUpdated() time.Time {
	if v.UpdatedAt != nil && !v.UpdatedAt.IsZero() {
		return *v.UpdatedAt
	}
	if v.CreatedAt != nil {
		return *v.CreatedAt
	}
	return time.Time{}
}

// HasVersion reports whether the base study has a version with the given id.
func (b BaseStudy) HasVersion(id string) bool {
	for _, v := range b.Versions {
		if v.ID == id {
			return true
		}
	}
	return false
}

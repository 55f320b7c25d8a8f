// Package neurostore provides a client for the study ingestion and studyset
// services.
package neurostore

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/neurostuff/curate/internal/study"
)

// Timestamp formats seen in API responses.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseTimestamp parses an API timestamp. Empty or unparseable values
// return nil so the version ranks lowest.
func parseTimestamp(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// apiVersion is a study version as returned by the API.
type apiVersion struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	CreatedAt string         `json:"created_at"`
	UpdatedAt string         `json:"updated_at"`
	Metadata  study.Metadata `json:"metadata"`
	Analyses  []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"analyses"`
}

// apiBaseStudy is a base study as returned by the API.
type apiBaseStudy struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Authors     string       `json:"authors"`
	Description string       `json:"description"`
	DOI         string       `json:"doi"`
	PMID        string       `json:"pmid"`
	PMCID       string       `json:"pmcid"`
	Publication string       `json:"publication"`
	Year        int          `json:"year"`
	Level       string       `json:"level"`
	Versions    []apiVersion `json:"versions"`
}

func (b apiBaseStudy) toBaseStudy() study.BaseStudy {
	bs := study.BaseStudy{
		ID:          b.ID,
		Name:        b.Name,
		Authors:     b.Authors,
		Description: b.Description,
		DOI:         b.DOI,
		PMID:        b.PMID,
		PMCID:       b.PMCID,
		Publication: b.Publication,
		Year:        b.Year,
		Level:       b.Level,
		Versions:    make([]study.StudyVersion, 0, len(b.Versions)),
	}
	for _, v := range b.Versions {
		sv := study.StudyVersion{
			ID:        v.ID,
			Name:      v.Name,
			Metadata:  v.Metadata,
			CreatedAt: parseTimestamp(v.CreatedAt),
			UpdatedAt: parseTimestamp(v.UpdatedAt),
		}
		for _, a := range v.Analyses {
			sv.Analyses = append(sv.Analyses, study.Analysis{ID: a.ID, Name: a.Name})
		}
		bs.Versions = append(bs.Versions, sv)
	}
	return bs
}

// Studyset is a named collection of study versions.
type Studyset struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Studies     []string `json:"studies"`
}

// StudyIDs returns the set of study version ids in the studyset.
func (s Studyset) StudyIDs() map[string]bool {
	ids := make(map[string]bool, len(s.Studies))
	for _, id := range s.Studies {
		ids[id] = true
	}
	return ids
}

// UnmarshalJSON accepts studies either as id strings or as nested objects.
func (s *Studyset) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID          string            `json:"id"`
		Name        string            `json:"name"`
		Description string            `json:"description"`
		Studies     []json.RawMessage `json:"studies"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.ID = raw.ID
	s.Name = raw.Name
	s.Description = raw.Description
	s.Studies = make([]string, 0, len(raw.Studies))
	for _, item := range raw.Studies {
		var id string
		if err := json.Unmarshal(item, &id); err == nil {
			s.Studies = append(s.Studies, id)
			continue
		}
		var obj struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(item, &obj); err != nil {
			return err
		}
		s.Studies = append(s.Studies, obj.ID)
	}
	return nil
}

package importer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/neurostuff/curate/internal/study"
)

// FlexibleString can unmarshal from either string or number JSON values.
type FlexibleString string

func (f *FlexibleString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexibleString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexibleString(n.String())
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into FlexibleString", string(data))
}

func (f FlexibleString) String() string {
	return strings.TrimSpace(string(f))
}

// PaperpileEntry represents a single entry from a Paperpile JSON export.
type PaperpileEntry struct {
	ID        string         `json:"_id"`
	Citekey   string         `json:"citekey"`
	DOI       string         `json:"doi"`
	PMID      FlexibleString `json:"pmid"`
	PMCID     string         `json:"pmcid"`
	Title     string         `json:"title"`
	Abstract  string         `json:"abstract"`
	Journal   string         `json:"journal"`
	Keywords  string         `json:"keywords"`
	Published struct {
		Year FlexibleString `json:"year"`
	} `json:"published"`
	Author []struct {
		First string `json:"first"`
		Last  string `json:"last"`
	} `json:"author"`
	Labels []string `json:"labelsNamed"`
}

// ParsePaperpile parses a Paperpile JSON export into curation stubs with
// "paperpile" provenance. Invalid entries are reported and skipped.
// newID generates stub ids; nil uses study.NewStubID.
func ParsePaperpile(data []byte, newID func() string) ([]study.CurationStub, []error) {
	if newID == nil {
		newID = study.NewStubID
	}

	var entries []PaperpileEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, []error{fmt.Errorf("parsing Paperpile JSON: %w", err)}
	}

	var stubs []study.CurationStub
	var errs []error

	for i, entry := range entries {
		stub, err := paperpileEntryToStub(entry, newID())
		if err != nil {
			name := entry.Citekey
			if name == "" {
				name = entry.ID
			}
			errs = append(errs, fmt.Errorf("entry %d (%s): %w", i+1, name, err))
			continue
		}
		stubs = append(stubs, stub)
	}

	return stubs, errs
}

// paperpileEntryToStub converts a Paperpile entry to a curation stub.
func paperpileEntryToStub(entry PaperpileEntry, id string) (study.CurationStub, error) {
	title := strings.TrimSpace(entry.Title)
	if title == "" {
		return study.CurationStub{}, fmt.Errorf("missing required field 'title'")
	}

	year := entry.Published.Year.String()
	if year != "" {
		if _, err := strconv.Atoi(year); err != nil {
			return study.CurationStub{}, fmt.Errorf("invalid year: %s", year)
		}
	}

	stub := study.CurationStub{
		ID:                   id,
		Title:                title,
		Authors:              paperpileAuthors(entry),
		DOI:                  strings.TrimSpace(entry.DOI),
		PMID:                 entry.PMID.String(),
		PMCID:                strings.TrimSpace(entry.PMCID),
		ArticleYear:          year,
		Journal:              entry.Journal,
		AbstractText:         entry.Abstract,
		Keywords:             entry.Keywords,
		Tags:                 []study.Tag{},
		IdentificationSource: study.SourcePaperpile,
	}
	if stub.DOI != "" {
		stub.ArticleLink = "https://doi.org/" + study.NormalizeDOI(stub.DOI)
	}
	for _, label := range entry.Labels {
		if label = strings.TrimSpace(label); label != "" {
			stub.AddTag(study.Tag{ID: "paperpile:" + strings.ToLower(label), Label: label})
		}
	}

	return stub, nil
}

// paperpileAuthors renders authors in citation form ("Smith JA"), joined
// with ", ".
func paperpileAuthors(entry PaperpileEntry) string {
	names := make([]string, 0, len(entry.Author))
	for _, a := range entry.Author {
		last := strings.TrimSpace(a.Last)
		var initials strings.Builder
		for _, part := range strings.Fields(strings.ReplaceAll(a.First, "-", " ")) {
			initials.WriteString(strings.ToUpper(part[:1]))
		}
		switch {
		case last == "" && initials.Len() == 0:
			continue
		case initials.Len() == 0:
			names = append(names, last)
		case last == "":
			names = append(names, strings.TrimSpace(a.First))
		default:
			names = append(names, last+" "+initials.String())
		}
	}
	return strings.Join(names, ", ")
}

package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/neurostuff/curate/internal/study"
)

// CSVHeader is the column order written by WriteCSV.
var CSVHeader = []string{
	"id", "title", "authors", "year", "journal", "doi", "pmid", "pmcid",
	"source", "tags", "excluded", "neurostore_id",
}

// WriteCSV writes one row per stub, tags joined by ";".
func WriteCSV(w io.Writer, stubs []study.CurationStub) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, s := range stubs {
		tags := make([]string, 0, len(s.Tags))
		for _, t := range s.Tags {
			tags = append(tags, t.Label)
		}
		excluded := ""
		if s.ExclusionTag != nil {
			excluded = s.ExclusionTag.Label
		}
		row := []string{
			s.ID, s.Title, s.Authors, s.ArticleYear, s.Journal, s.DOI, s.PMID, s.PMCID,
			s.IdentificationSource, strings.Join(tags, ";"), excluded, s.NeurostoreID,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing stub %s: %w", s.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

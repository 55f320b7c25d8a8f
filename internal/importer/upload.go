// Package importer turns uploaded files and reference exports into curation
// stubs and drives the lookup, ingestion and studyset steps of an import.
package importer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/neurostuff/curate/internal/sleuth"
	"github.com/neurostuff/curate/internal/study"
)

// Upload is one validated and parsed Sleuth file.
type Upload struct {
	Filename    string            `json:"filename"`
	Space       string            `json:"space"`
	Stubs       []sleuth.Stub     `json:"sleuthStubs"`
	BaseStudies []study.BaseStudy `json:"baseStudies"`
}

// ReadUpload validates and parses Sleuth text. An invalid file returns the
// *sleuth.ValidationError describing the first problem.
func ReadUpload(name, text string) (*Upload, error) {
	text = sleuth.NormalizeLineEndings(text)
	if err := sleuth.Check(text); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	result := sleuth.Parse(text)
	return &Upload{
		Filename:    name,
		Space:       result.Space,
		Stubs:       result.Stubs,
		BaseStudies: sleuth.ToBaseStudies(result),
	}, nil
}

// ReadUploadFile reads a Sleuth file from disk. The upload is named after
// the file's base name.
func ReadUploadFile(path string) (*Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ReadUpload(filepath.Base(path), string(data))
}

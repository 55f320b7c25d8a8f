// Package storage handles data persistence in JSONL and SQLite formats.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/neurostuff/curate/internal/study"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
// Abstracts can make single stub lines long.
const MaxJSONLLineCapacity = 1024 * 1024

// ReadStubs reads all curation stubs from a JSONL file.
func ReadStubs(path string) ([]study.CurationStub, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // Empty file returns empty slice
		}
		return nil, fmt.Errorf("opening stubs file: %w", err)
	}
	defer f.Close()

	var stubs []study.CurationStub
	scanner := bufio.NewScanner(f)

	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var s study.CurationStub
		if err := json.Unmarshal(line, &s); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		if s.ID == "" {
			return nil, fmt.Errorf("invalid stub at line %d: missing id", lineNum)
		}
		stubs = append(stubs, s)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading stubs file: %w", err)
	}

	return stubs, nil
}

// writeStubJSONL marshals a stub to JSON and writes it as a JSONL line.
func writeStubJSONL(w io.Writer, s study.CurationStub) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding stub: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing stub: %w", err)
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		return fmt.Errorf("writing newline: %w", err)
	}
	return nil
}

// AppendStub adds a stub to the end of a JSONL file.
func AppendStub(path string, s study.CurationStub) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening stubs file for append: %w", err)
	}
	defer f.Close()

	return writeStubJSONL(f, s)
}

// WriteStubs writes all stubs to a JSONL file, replacing existing content.
// The file is written to a temporary sibling and renamed into place.
func WriteStubs(path string, stubs []study.CurationStub) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating stubs file: %w", err)
	}

	w := bufio.NewWriter(f)
	for i, s := range stubs {
		if err := writeStubJSONL(w, s); err != nil {
			f.Close()
			os.Remove(tmp)
			return fmt.Errorf("stub %d: %w", i, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("flushing stubs file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing stubs file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing stubs file: %w", err)
	}
	return nil
}

// FindStubByID searches for a stub by ID.
func FindStubByID(stubs []study.CurationStub, id string) (int, bool) {
	for i, s := range stubs {
		if s.ID == id {
			return i, true
		}
	}
	return -1, false
}

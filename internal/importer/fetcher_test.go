package importer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/neurostuff/curate/internal/pubmed"
	"github.com/neurostuff/curate/internal/storage"
)

type fakeLookup struct {
	articles map[string]pubmed.Article
	err      error
	calls    int
}

func (f *fakeLookup) LookupArticle(ctx context.Context, pmid, doi string) (*pubmed.Article, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if a, ok := f.articles[pmid]; ok {
		return &a, nil
	}
	for _, a := range f.articles {
		if doi != "" && a.DOI == doi {
			return &a, nil
		}
	}
	return nil, fmt.Errorf("%w: pmid %s", pubmed.ErrNotFound, pmid)
}

func TestPubMedFetcher_CachesLookups(t *testing.T) {
	db, err := storage.OpenDB(filepath.Join(t.TempDir(), "lookup.db"))
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	defer db.Close()

	lookup := &fakeLookup{articles: map[string]pubmed.Article{
		"12345": {PMID: "12345", Title: "Faces", Year: "2005", DOI: "10.1/faces",
			Authors: []pubmed.Author{{LastName: "Jones", Initials: "AB"}}},
	}}
	f := NewPubMedFetcher(lookup, db, 0, quietLogger())

	for i := 0; i < 2; i++ {
		bs, err := f.FetchDetails(context.Background(), "12345", "")
		if err != nil {
			t.Fatalf("FetchDetails() error = %v", err)
		}
		if bs.Name != "Faces" || bs.Year != 2005 || bs.Authors != "Jones AB" {
			t.Errorf("unexpected details: %+v", bs)
		}
	}
	if lookup.calls != 1 {
		t.Errorf("lookup calls = %d, want 1 (second call cached)", lookup.calls)
	}
}

func TestPubMedFetcher_NoCache(t *testing.T) {
	lookup := &fakeLookup{articles: map[string]pubmed.Article{
		"1": {PMID: "1", Title: "By DOI", DOI: "10.1/doi"},
	}}
	f := NewPubMedFetcher(lookup, nil, 0, nil)

	bs, err := f.FetchDetails(context.Background(), "", "10.1/doi")
	if err != nil {
		t.Fatalf("FetchDetails() error = %v", err)
	}
	if bs.PMID != "1" {
		t.Errorf("PMID = %q, want 1", bs.PMID)
	}
}

func TestPubMedFetcher_Errors(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name      string
		lookup    *fakeLookup
		pmid, doi string
		want      error
	}{
		{"not found", &fakeLookup{}, "999", "", ErrNoDetails},
		{"no identifiers", &fakeLookup{}, "", " ", ErrNoDetails},
		{"lookup failure", &fakeLookup{err: boom}, "1", "", boom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewPubMedFetcher(tt.lookup, nil, 0, quietLogger())
			_, err := f.FetchDetails(context.Background(), tt.pmid, tt.doi)
			if !errors.Is(err, tt.want) {
				t.Errorf("FetchDetails() error = %v, want %v", err, tt.want)
			}
		})
	}
}

package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/neurostuff/curate/internal/study"
)

func TestReadStubs_NonExistentFile(t *testing.T) {
	stubs, err := ReadStubs("/nonexistent/path/stubs.jsonl")
	if err != nil {
		t.Fatalf("ReadStubs() error = %v (should return nil for nonexistent file)", err)
	}
	if len(stubs) != 0 {
		t.Errorf("ReadStubs() returned %v, want empty", stubs)
	}
}

func TestReadStubs_SkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stubs.jsonl")
	content := `{"id":"a","title":"First","tags":[],"exclusionTag":null,"identificationSource":"faces.txt"}` + "\n\n" +
		`{"id":"b","title":"Second","pmid":"123","tags":[],"exclusionTag":null,"identificationSource":"pubmed"}` + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	stubs, err := ReadStubs(path)
	if err != nil {
		t.Fatalf("ReadStubs() error = %v", err)
	}
	if len(stubs) != 2 {
		t.Fatalf("ReadStubs() returned %d stubs, want 2", len(stubs))
	}
	if stubs[1].PMID != "123" || stubs[0].IdentificationSource != "faces.txt" {
		t.Errorf("unexpected stubs: %+v", stubs)
	}
}

func TestReadStubs_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"malformed", "{not json}\n", "parsing line 1"},
		{"missing id", `{"title":"x"}` + "\n", "missing id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "stubs.jsonl")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := ReadStubs(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ReadStubs() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestWriteStubs_RoundTripsAndReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stubs.jsonl")
	first := []study.CurationStub{{ID: "old", Title: "Old"}}
	if err := WriteStubs(path, first); err != nil {
		t.Fatalf("WriteStubs() error = %v", err)
	}

	tag := study.Tag{ID: "t1", Label: "included"}
	want := []study.CurationStub{
		{ID: "a", Title: "Faces", PMID: "1", Tags: []study.Tag{tag}, IdentificationSource: "faces.txt"},
		{ID: "b", Title: "Houses", DOI: "10.1/x", NeurostoreID: "v1", IdentificationSource: study.SourcePubMed},
	}
	if err := WriteStubs(path, want); err != nil {
		t.Fatalf("WriteStubs() error = %v", err)
	}

	got, err := ReadStubs(path)
	if err != nil {
		t.Fatalf("ReadStubs() error = %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("stubs mismatch (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temporary file left behind")
	}
}

func TestAppendStub(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stubs.jsonl")
	for _, id := range []string{"a", "b"} {
		if err := AppendStub(path, study.CurationStub{ID: id}); err != nil {
			t.Fatalf("AppendStub(%s) error = %v", id, err)
		}
	}

	stubs, err := ReadStubs(path)
	if err != nil {
		t.Fatalf("ReadStubs() error = %v", err)
	}
	if len(stubs) != 2 || stubs[0].ID != "a" || stubs[1].ID != "b" {
		t.Errorf("unexpected stubs after append: %+v", stubs)
	}
	if idx, ok := FindStubByID(stubs, "b"); !ok || idx != 1 {
		t.Errorf("FindStubByID(b) = %d, %v", idx, ok)
	}
	if _, ok := FindStubByID(stubs, "zzz"); ok {
		t.Errorf("FindStubByID(zzz) should not be found")
	}
}

package pdf

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestIdentifiersFromText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Identifiers
	}{
		{
			name: "doi and pmid",
			text: "Journal of Cognitive Neuroscience 17:3\n" +
				"Face processing in the human fusiform gyrus\n" +
				"https://doi.org/10.1016/j.neuroimage.2005.01.001.\n" +
				"PMID: 12345678\n",
			want: Identifiers{
				DOI:   "10.1016/j.neuroimage.2005.01.001",
				PMID:  "12345678",
				Title: "Face processing in the human fusiform gyrus",
			},
		},
		{
			name: "pmid without colon",
			text: "short\npmid 42\n",
			want: Identifiers{PMID: "42"},
		},
		{
			name: "nothing found",
			text: "Copyright 2020 by the publisher, all rights reserved\n",
			want: Identifiers{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IdentifiersFromText(tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("IdentifiersFromText() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFindDOI_TrimsPunctuation(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"(doi:10.1093/brain/awp001)", "10.1093/brain/awp001"},
		{"see 10.1/x", ""},
		{"10.12345/", ""},
	}
	for _, tt := range tests {
		if got := findDOI(tt.text); got != tt.want {
			t.Errorf("findDOI(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestIdentifiers_IsEmpty(t *testing.T) {
	if !(Identifiers{Title: "only a title"}).IsEmpty() {
		t.Error("title alone should count as empty")
	}
	if (Identifiers{PMID: "1"}).IsEmpty() {
		t.Error("PMID should count as an identifier")
	}
}

func TestExtractIdentifiers_MissingFile(t *testing.T) {
	if _, err := ExtractIdentifiers("/nonexistent/paper.pdf"); err == nil {
		t.Error("expected error for missing file")
	}
}

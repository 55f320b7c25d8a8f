package sleuth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse_SingleBlock(t *testing.T) {
	text := readTestFixture(t, "single_block.txt")
	result := Parse(text)

	want := ParseResult{
		Space: "MNI",
		Stubs: []Stub{
			{
				AnalysisName:     "Task A",
				AuthorYearString: "Smith et al., 2019",
				Subjects:         12,
				DOI:              "10.1/x",
				Coordinates: []Coordinate{
					{X: 1, Y: 2, Z: 3},
					{X: -1, Y: -2, Z: -3},
				},
			},
		},
	}
	if diff := cmp.Diff(want, result); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_MultiBlockCRLF(t *testing.T) {
	text := NormalizeLineEndings(readTestFixture(t, "multi_block_crlf.txt"))
	result := Parse(text)

	if result.Space != "Talairach" {
		t.Errorf("Space = %q, want Talairach", result.Space)
	}
	if len(result.Stubs) != 3 {
		t.Fatalf("expected 3 stubs, got %d", len(result.Stubs))
	}

	first := result.Stubs[0]
	if first.PMID != "12345" {
		t.Errorf("PMID = %q, want 12345", first.PMID)
	}
	if first.AnalysisName != "Faces > Houses, Faces > Objects" {
		t.Errorf("AnalysisName = %q", first.AnalysisName)
	}
	if first.AuthorYearString != "Jones et al., 2005" {
		t.Errorf("AuthorYearString = %q", first.AuthorYearString)
	}
	wantCoords := []Coordinate{{X: -42, Y: -56, Z: -18}, {X: 40.5, Y: -52, Z: -20.25}}
	if diff := cmp.Diff(wantCoords, first.Coordinates); diff != "" {
		t.Errorf("coordinates mismatch (-want +got):\n%s", diff)
	}

	if result.Stubs[1].DOI != "10.1016/j.neuroimage.2010.01.001" {
		t.Errorf("second DOI = %q", result.Stubs[1].DOI)
	}
	if result.Stubs[1].Subjects != 20 {
		t.Errorf("second Subjects = %d, want 20", result.Stubs[1].Subjects)
	}
}

func TestParse_InvalidSubjectsDefaultsToZero(t *testing.T) {
	result := Parse(readTestFixture(t, "bad_subjects.txt"))
	if len(result.Stubs) != 1 {
		t.Fatalf("expected 1 stub, got %d", len(result.Stubs))
	}
	if result.Stubs[0].Subjects != 0 {
		t.Errorf("Subjects = %d, want 0", result.Stubs[0].Subjects)
	}
}

func TestParse_LeadingBlankLinesAndMissingReference(t *testing.T) {
	text := "\n   \n// Space=MNI\nA et al., 2000: x\n1 2 3\n"
	result := Parse(text)
	if result.Space != "" {
		t.Errorf("Space = %q, want empty", result.Space)
	}
	if len(result.Stubs) != 1 {
		t.Fatalf("expected 1 stub, got %d", len(result.Stubs))
	}
}

func TestParse_Empty(t *testing.T) {
	result := Parse("")
	if result.Space != "" || len(result.Stubs) != 0 {
		t.Errorf("Parse(\"\") = %+v, want empty", result)
	}
}

func TestParse_HeaderVariants(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		space string
	}{
		{"double slash", "// Reference=MNI", "MNI"},
		{"single slash", "/Reference = Talairach", "Talairach"},
		{"no marker", "reference=MNI", "MNI"},
		{"spaces around equals", "//   REFERENCE   =   MNI  ", "MNI"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Parse(tt.line + "\n// DOI=1\nA: b\n")
			if result.Space != tt.space {
				t.Errorf("Space = %q, want %q", result.Space, tt.space)
			}
		})
	}
}

func TestIsCoordLine(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"1\t2\t3", true},
		{"-1.5 +2 .3", true},
		{"  10   -20\t30  ", true},
		{"1e2 0 0", true},
		{"1 2", false},
		{"1 2 3 4", false},
		{"1 2 x", false},
		{"NaN 1 2", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := isCoordLine(tt.line); got != tt.want {
			t.Errorf("isCoordLine(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestParseKeyVal(t *testing.T) {
	tests := []struct {
		line      string
		wantKey   string
		wantValue string
		wantOK    bool
	}{
		{"// DOI=10.1/x", "doi", "10.1/x", true},
		{"/PubMedId = 123", "pubmedid", "123", true},
		{"Subjects=", "subjects", "", true},
		{"Smith et al., 2019: A=B", "", "", false},
		{"1 2 3", "", "", false},
	}

	for _, tt := range tests {
		key, value, ok := parseKeyVal(tt.line)
		if key != tt.wantKey || value != tt.wantValue || ok != tt.wantOK {
			t.Errorf("parseKeyVal(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.line, key, value, ok, tt.wantKey, tt.wantValue, tt.wantOK)
		}
	}
}

func TestCountChunks(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"header only", "// Reference=MNI\n", 0},
		{"one block", "// Reference=MNI\nA: b\n1 2 3\n", 1},
		{"blank run collapses", "// Reference=MNI\nA: b\n\n\n\n  \nC: d\n", 2},
		{"blank after header", "// Reference=MNI\n\nA: b\n\nC: d\n\n", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountChunks(tt.text); got != tt.want {
				t.Errorf("CountChunks() = %d, want %d", got, tt.want)
			}
			if got := len(Parse(tt.text).Stubs); got != tt.want {
				t.Errorf("len(Parse().Stubs) = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNormalizeLineEndings(t *testing.T) {
	got := NormalizeLineEndings("a\r\nb\rc\n")
	if got != "a\nb\nc\n" {
		t.Errorf("NormalizeLineEndings() = %q", got)
	}
}

func readTestFixture(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join("..", "..", "testdata", "sleuth", name)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", name, err)
	}
	return string(data)
}

// Package sleuth parses and validates Sleuth coordinate text files.
//
// A Sleuth file starts with a "// Reference=<space>" line followed by study
// blocks separated by blank lines. Each block has optional DOI / PubMedId
// lines, one or more "Author et al., Year: Experiment" lines, a Subjects
// count, and tab- or space-separated x y z coordinates.
//
// Parse is tolerant and never fails; Validate is strict and reports the
// first violation. Both split blocks with SplitChunks so they always agree
// on block boundaries.
package sleuth

import (
	"regexp"
	"strings"
)

// Recognized metadata keys, lowercased.
const (
	KeyReference = "reference"
	KeySubjects  = "subjects"
	KeyDOI       = "doi"
	KeyPubMedID  = "pubmedid"
)

// Line is one line of input with its 1-indexed line number.
type Line struct {
	Num  int
	Text string
}

// Chunk is one study block: a run of non-blank lines.
type Chunk struct {
	Lines []Line
}

// StartLine returns the line number of the first line in the chunk.
func (c Chunk) StartLine() int {
	if len(c.Lines) == 0 {
		return 0
	}
	return c.Lines[0].Num
}

var (
	keyValPattern = regexp.MustCompile(`^([A-Za-z_]+)\s*=\s*(.*)$`)
	numberPattern = regexp.MustCompile(`^[-+]?(\d+(\.\d*)?|\.\d+)([eE][-+]?\d+)?$`)
)

// NormalizeLineEndings converts CRLF and lone CR line endings to LF.
func NormalizeLineEndings(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// cleanLine trims surrounding whitespace and an optional leading "//" or "/"
// comment marker.
func cleanLine(line string) string {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, "//") {
		line = line[2:]
	} else if strings.HasPrefix(line, "/") {
		line = line[1:]
	}
	return strings.TrimSpace(line)
}

// parseKeyVal splits a "key=value" line. The key is returned lowercased.
func parseKeyVal(line string) (key, value string, ok bool) {
	m := keyValPattern.FindStringSubmatch(cleanLine(line))
	if m == nil {
		return "", "", false
	}
	return strings.ToLower(m[1]), strings.TrimSpace(m[2]), true
}

// isCoordLine reports whether a line holds exactly three numeric tokens.
func isCoordLine(line string) bool {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return false
	}
	for _, f := range fields {
		if !numberPattern.MatchString(f) {
			return false
		}
	}
	return true
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// splitHeader returns the first non-blank line and all lines after it.
// ok is false when the text has no non-blank line.
func splitHeader(text string) (header Line, rest []Line, ok bool) {
	raw := strings.Split(text, "\n")
	for i, l := range raw {
		if isBlank(l) {
			continue
		}
		header = Line{Num: i + 1, Text: l}
		for j := i + 1; j < len(raw); j++ {
			rest = append(rest, Line{Num: j + 1, Text: raw[j]})
		}
		return header, rest, true
	}
	return Line{}, nil, false
}

// chunkLines groups lines into chunks separated by runs of blank lines.
func chunkLines(lines []Line) []Chunk {
	var chunks []Chunk
	var current []Line
	for _, l := range lines {
		if isBlank(l.Text) {
			if len(current) > 0 {
				chunks = append(chunks, Chunk{Lines: current})
				current = nil
			}
			continue
		}
		current = append(current, l)
	}
	if len(current) > 0 {
		chunks = append(chunks, Chunk{Lines: current})
	}
	return chunks
}

// SplitChunks returns the study blocks that follow the header line of
// normalized text.
func SplitChunks(text string) []Chunk {
	_, rest, ok := splitHeader(text)
	if !ok {
		return nil
	}
	return chunkLines(rest)
}

// CountChunks returns the number of study blocks in normalized text.
func CountChunks(text string) int {
	return len(SplitChunks(text))
}

package sleuth

import (
	"math"
	"strconv"
	"strings"
)

// Coordinate is a single x, y, z peak.
type Coordinate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Stub is one experiment parsed from a single study block.
type Stub struct {
	AnalysisName     string       `json:"analysisName"`
	AuthorYearString string       `json:"authorYearString"`
	Subjects         int          `json:"subjects"`
	DOI              string       `json:"doi"`
	PMID             string       `json:"pmid"`
	Coordinates      []Coordinate `json:"coordinates"`
}

// ParseResult is the output of Parse.
type ParseResult struct {
	Space string `json:"space"`
	Stubs []Stub `json:"sleuthStubs"`
}

// Parse converts normalized Sleuth text into stubs. It never fails:
// malformed values fall back to zero values. Use Validate to reject bad
// input before trusting the result.
func Parse(text string) ParseResult {
	result := ParseResult{Stubs: []Stub{}}

	header, rest, ok := splitHeader(text)
	if !ok {
		return result
	}
	if key, value, ok := parseKeyVal(header.Text); ok && key == KeyReference {
		result.Space = value
	}

	for _, chunk := range chunkLines(rest) {
		result.Stubs = append(result.Stubs, parseChunk(chunk))
	}
	return result
}

// parseChunk reduces one study block into a stub.
func parseChunk(chunk Chunk) Stub {
	stub := Stub{Coordinates: []Coordinate{}}
	var names []string

	for _, l := range chunk.Lines {
		if key, value, ok := parseKeyVal(l.Text); ok {
			switch key {
			case KeySubjects:
				stub.Subjects, _ = parseSubjects(value)
			case KeyDOI:
				stub.DOI = value
			case KeyPubMedID:
				stub.PMID = value
			}
			continue
		}

		if isCoordLine(l.Text) {
			stub.Coordinates = append(stub.Coordinates, parseCoordinate(l.Text))
			continue
		}

		author, experiment, _ := splitAuthorLine(l.Text)
		stub.AuthorYearString = author
		if experiment != "" {
			names = append(names, experiment)
		}
	}

	stub.AnalysisName = strings.Join(names, ", ")
	return stub
}

// parseSubjects parses a subject count. Non-numeric values yield 0, false.
func parseSubjects(value string) (int, bool) {
	if value == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

// parseCoordinate parses a line already accepted by isCoordLine.
func parseCoordinate(line string) Coordinate {
	fields := strings.Fields(line)
	var vals [3]float64
	for i := 0; i < 3 && i < len(fields); i++ {
		vals[i], _ = strconv.ParseFloat(fields[i], 64)
	}
	return Coordinate{X: vals[0], Y: vals[1], Z: vals[2]}
}

// splitAuthorLine splits "Author et al., Year: Experiment" on the first colon.
// ok is false when there is no colon.
func splitAuthorLine(line string) (author, experiment string, ok bool) {
	line = cleanLine(line)
	idx := strings.Index(line, ":")
	if idx < 0 {
		return line, "", false
	}
	return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:]), true
}

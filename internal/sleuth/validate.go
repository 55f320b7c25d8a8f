package sleuth

import (
	"fmt"
)

// ValidationError describes the first grammar violation found in a file.
type ValidationError struct {
	Line    int    // Line number (1-indexed); 0 for file-wide problems
	Message string // Description of the violation
	Context string // Offending line, verbatim
}

func (e *ValidationError) Error() string {
	if e.Line == 0 {
		return e.Message
	}
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Message, e.Context)
}

// ValidationResult is the outcome of Validate.
type ValidationResult struct {
	IsValid      bool   `json:"isValid"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// Validate checks normalized text against the Sleuth grammar.
func Validate(text string) ValidationResult {
	if err := Check(text); err != nil {
		return ValidationResult{IsValid: false, ErrorMessage: err.Error()}
	}
	return ValidationResult{IsValid: true}
}

// blockMode is the validator state within one study block.
type blockMode int

const (
	modeMetadata blockMode = iota
	modeCoordinates
)

// fileState tracks file-wide requirements across blocks.
type fileState struct {
	hasIdentifier bool
	hasAuthorLine bool
}

// Check validates normalized text and returns a *ValidationError for the
// first violation, or nil.
func Check(text string) error {
	header, rest, ok := splitHeader(text)
	if !ok {
		return &ValidationError{
			Message: `no coordinate reference space found: file is empty, expected a first line like "// Reference=MNI"`,
		}
	}
	key, value, ok := parseKeyVal(header.Text)
	if !ok || key != KeyReference || value == "" {
		return &ValidationError{
			Line:    header.Num,
			Message: `no coordinate reference space found: the first line must be "// Reference=<space>"`,
			Context: header.Text,
		}
	}

	var state fileState
	for _, chunk := range chunkLines(rest) {
		if err := checkChunk(chunk, &state); err != nil {
			return err
		}
	}

	if !state.hasIdentifier {
		return &ValidationError{
			Message: `no DOI or PMID found: at least one study block must contain a "DOI=<doi>" or "PubMedId=<pmid>" line (with or without a leading "//" or "/")`,
		}
	}
	if !state.hasAuthorLine {
		return &ValidationError{
			Message: `no author/experiment line found: expected at least one line like "Smith et al., 2019: Experiment name"`,
		}
	}
	return nil
}

// checkChunk validates one study block. Once a Subjects line is seen every
// remaining line must be a coordinate.
func checkChunk(chunk Chunk, state *fileState) error {
	mode := modeMetadata
	seenDOI := false
	seenPMID := false

	for _, l := range chunk.Lines {
		if mode == modeCoordinates {
			if !isCoordLine(l.Text) {
				return &ValidationError{
					Line:    l.Num,
					Message: `expected coordinates "x y z" after the Subjects line`,
					Context: l.Text,
				}
			}
			continue
		}

		if key, value, ok := parseKeyVal(l.Text); ok {
			switch key {
			case KeySubjects:
				if _, ok := parseSubjects(value); !ok {
					return &ValidationError{Line: l.Num, Message: "subjects value is not a valid number", Context: l.Text}
				}
				mode = modeCoordinates
			case KeyDOI:
				if value == "" {
					return &ValidationError{Line: l.Num, Message: "DOI is empty", Context: l.Text}
				}
				if seenDOI {
					return &ValidationError{Line: l.Num, Message: "more than one DOI in a single study block", Context: l.Text}
				}
				seenDOI = true
				state.hasIdentifier = true
			case KeyPubMedID:
				if value == "" {
					return &ValidationError{Line: l.Num, Message: "PubMedId is empty", Context: l.Text}
				}
				if seenPMID {
					return &ValidationError{Line: l.Num, Message: "more than one PubMedId in a single study block", Context: l.Text}
				}
				seenPMID = true
				state.hasIdentifier = true
			default:
				return &ValidationError{
					Line:    l.Num,
					Message: fmt.Sprintf("unknown property %q (expected Subjects, DOI or PubMedId)", key),
					Context: l.Text,
				}
			}
			continue
		}

		author, experiment, hasColon := splitAuthorLine(l.Text)
		if !hasColon {
			return &ValidationError{
				Line:    l.Num,
				Message: `expected "Author et al., Year: Experiment name" but the line has no colon`,
				Context: l.Text,
			}
		}
		if author == "" {
			return &ValidationError{
				Line:    l.Num,
				Message: `missing authors before the colon, expected "Author et al., Year: Experiment name"`,
				Context: l.Text,
			}
		}
		if experiment == "" {
			return &ValidationError{
				Line:    l.Num,
				Message: `missing experiment name after the colon, expected "Author et al., Year: Experiment name"`,
				Context: l.Text,
			}
		}
		state.hasAuthorLine = true
	}
	return nil
}

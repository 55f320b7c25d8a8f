package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/neurostuff/curate/internal/neurostore"
	"github.com/neurostuff/curate/internal/pubmed"
	"github.com/neurostuff/curate/internal/sleuth"
)

const (
	DefaultListLimit = 50 // Default limit for list commands
	ListTitleMaxLen  = 50 // Title truncation in tables
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// exitCodeForError maps collaborator errors onto exit codes.
func exitCodeForError(err error) int {
	var verr *sleuth.ValidationError
	var nsErr *neurostore.APIError
	var pmErr *pubmed.APIError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &verr):
		return ExitDataError
	case neurostore.IsAuthError(err):
		return ExitAuthError
	case errors.As(err, &nsErr), errors.As(err, &pmErr),
		errors.Is(err, neurostore.ErrNetworkError), errors.Is(err, neurostore.ErrInvalidResponse),
		errors.Is(err, neurostore.ErrNotFound),
		errors.Is(err, pubmed.ErrNetworkError), errors.Is(err, pubmed.ErrInvalidResponse),
		pubmed.IsRateLimited(err):
		return ExitAPIError
	default:
		return ExitError
	}
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// errorsToStrings converts a slice of errors to strings.
func errorsToStrings(errs []error) []string {
	strs := make([]string, len(errs))
	for i, e := range errs {
		strs[i] = e.Error()
	}
	return strs
}

package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/neurostuff/curate/internal/neurostore"
	"github.com/neurostuff/curate/internal/pubmed"
	"github.com/neurostuff/curate/internal/sleuth"
)

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"validation", fmt.Errorf("a.txt: %w", &sleuth.ValidationError{Line: 3, Message: "bad"}), ExitDataError},
		{"neurostore auth", fmt.Errorf("ingesting: %w", neurostore.ErrAuthError), ExitAuthError},
		{"neurostore 403", &neurostore.APIError{StatusCode: 403}, ExitAuthError},
		{"neurostore server error", &neurostore.APIError{StatusCode: 500, Message: "boom"}, ExitAPIError},
		{"neurostore network", fmt.Errorf("x: %w", neurostore.ErrNetworkError), ExitAPIError},
		{"pubmed rate limited", fmt.Errorf("x: %w", pubmed.ErrRateLimited), ExitAPIError},
		{"pubmed invalid response", pubmed.ErrInvalidResponse, ExitAPIError},
		{"other", errors.New("disk full"), ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCodeForError(tt.err); got != tt.want {
				t.Errorf("exitCodeForError() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		s      string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"a longer title here", 10, "a longe..."},
		{"Müller–Schmidt effect", 8, "Mülle..."},
	}

	for _, tt := range tests {
		if got := truncateString(tt.s, tt.maxLen); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.s, tt.maxLen, got, tt.want)
		}
	}
}

func TestErrorsToStrings(t *testing.T) {
	got := errorsToStrings([]error{errors.New("a"), errors.New("b")})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("errorsToStrings() = %v", got)
	}
	if got := errorsToStrings(nil); len(got) != 0 {
		t.Errorf("errorsToStrings(nil) = %v, want empty", got)
	}
}

package sleuth

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	yearPattern  = regexp.MustCompile(`\d{4}`)
	digitPattern = regexp.MustCompile(`\d`)
)

// ExtractYear returns the first four-digit run in an author/year string.
func ExtractYear(authorYear string) (int, bool) {
	m := yearPattern.FindString(authorYear)
	if m == "" {
		return 0, false
	}
	year, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return year, true
}

// ExtractAuthors strips all digits from an author/year string and trims it.
// Punctuation is kept: "Smith et al., 2019" becomes "Smith et al.,".
func ExtractAuthors(authorYear string) string {
	return strings.TrimSpace(digitPattern.ReplaceAllString(authorYear, ""))
}

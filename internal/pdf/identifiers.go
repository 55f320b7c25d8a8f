// Package pdf extracts study identifiers from article PDFs.
package pdf

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// MaxPages is how many leading pages are searched for identifiers.
const MaxPages = 3

// DOI pattern: 10.XXXX/... where XXXX is 4+ digits
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// PMID as printed on PubMed-derived PDFs: "PMID: 12345678" or "PMID 12345678".
var pmidPattern = regexp.MustCompile(`(?i)\bPMID:?\s*(\d{1,9})\b`)

// Identifiers are the study identifiers found in a PDF.
type Identifiers struct {
	DOI   string `json:"doi,omitempty"`
	PMID  string `json:"pmid,omitempty"`
	Title string `json:"title,omitempty"`
}

// IsEmpty reports whether neither a DOI nor a PMID was found.
func (id Identifiers) IsEmpty() bool {
	return id.DOI == "" && id.PMID == ""
}

// ExtractIdentifiers reads the first pages of a PDF and returns any DOI,
// PMID and likely title. Finding nothing is not an error.
func ExtractIdentifiers(filePath string) (Identifiers, error) {
	text, err := ExtractText(filePath, MaxPages)
	if err != nil {
		return Identifiers{}, err
	}
	return IdentifiersFromText(text), nil
}

// IdentifiersFromText finds identifiers in extracted PDF text.
func IdentifiersFromText(text string) Identifiers {
	return Identifiers{
		DOI:   findDOI(text),
		PMID:  findPMID(text),
		Title: findTitle(text),
	}
}

// ExtractText extracts all text from the first N pages of a PDF.
// Pages that fail to decode are skipped.
func ExtractText(filePath string, maxPages int) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	if maxPages <= 0 || maxPages > r.NumPage() {
		maxPages = r.NumPage()
	}

	var builder strings.Builder
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}

	return builder.String(), nil
}

// findDOI finds a DOI in text.
func findDOI(text string) string {
	for _, match := range doiPattern.FindAllString(text, -1) {
		match = strings.TrimRight(match, ".,;:)")
		if isValidDOI(match) {
			return match
		}
	}
	return ""
}

// isValidDOI performs basic validation on a DOI.
func isValidDOI(doi string) bool {
	if len(doi) < 10 || !strings.HasPrefix(doi, "10.") {
		return false
	}
	slashIdx := strings.Index(doi, "/")
	return slashIdx != -1 && slashIdx < len(doi)-1
}

// findPMID finds a labelled PMID in text.
func findPMID(text string) string {
	m := pmidPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

// findTitle returns the first substantial line that is not a running
// header. Best effort.
func findTitle(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > 20 && !isHeaderLine(line) && !doiPattern.MatchString(line) {
			return line
		}
	}
	return ""
}

// isHeaderLine checks if a line is likely a header/footer.
func isHeaderLine(line string) bool {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "journal"):
		return true
	case strings.Contains(lower, "volume") && strings.Contains(lower, "issue"):
		return true
	case strings.Contains(lower, "copyright"):
		return true
	case strings.Contains(lower, "article") && strings.Contains(lower, "published"):
		return true
	}
	return false
}

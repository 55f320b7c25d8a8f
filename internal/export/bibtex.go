// Package export writes curation stubs to citation-manager formats.
package export

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/neurostuff/curate/internal/study"
)

// ToBibTeX converts a stub to a BibTeX entry with the given citation key.
func ToBibTeX(stub study.CurationStub, key string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("@article{%s,\n", key))

	if stub.Authors != "" {
		b.WriteString(fmt.Sprintf("  author = {%s},\n", formatAuthors(stub.Authors)))
	}
	b.WriteString(fmt.Sprintf("  title = {%s},\n", escapeLatex(stub.Title)))
	if stub.Journal != "" {
		b.WriteString(fmt.Sprintf("  journal = {%s},\n", escapeLatex(stub.Journal)))
	}
	if stub.ArticleYear != "" {
		b.WriteString(fmt.Sprintf("  year = {%s},\n", stub.ArticleYear))
	}
	if stub.DOI != "" {
		b.WriteString(fmt.Sprintf("  doi = {%s},\n", stub.DOI))
	}
	if stub.PMID != "" {
		b.WriteString(fmt.Sprintf("  pmid = {%s},\n", stub.PMID))
	}
	if stub.Keywords != "" {
		b.WriteString(fmt.Sprintf("  keywords = {%s},\n", escapeLatex(stub.Keywords)))
	}
	if stub.AbstractText != "" {
		b.WriteString(fmt.Sprintf("  abstract = {%s},\n", escapeLatex(stub.AbstractText)))
	}

	b.WriteString("}\n")

	return b.String()
}

// ToBibTeXList converts stubs to BibTeX, assigning each a unique
// author-year citation key.
func ToBibTeXList(stubs []study.CurationStub) string {
	used := make(map[string]int)
	var entries []string
	for _, s := range stubs {
		key := CitationKey(s)
		used[key]++
		if n := used[key]; n > 1 {
			key = fmt.Sprintf("%s-%d", key, n)
		}
		entries = append(entries, ToBibTeX(s, key))
	}
	return strings.Join(entries, "\n")
}

// CitationKey builds "<Surname><Year>" from the first author, falling back
// to the stub id when the stub has no authors.
func CitationKey(stub study.CurationStub) string {
	surname := firstSurname(stub.Authors)
	if surname == "" {
		return stub.ID
	}
	return surname + stub.ArticleYear
}

// splitAuthors splits a comma- or semicolon-separated author list.
func splitAuthors(authors string) []string {
	sep := ","
	if strings.Contains(authors, ";") {
		sep = ";"
	}
	var out []string
	for _, a := range strings.Split(authors, sep) {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

// firstSurname returns the letters of the first author's surname.
func firstSurname(authors string) string {
	names := splitAuthors(authors)
	if len(names) == 0 {
		return ""
	}
	fields := strings.Fields(names[0])
	if len(fields) == 0 {
		return ""
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return r
		}
		return -1
	}, fields[0])
}

// formatAuthors joins authors BibTeX style: "Smith JA and Doe B".
func formatAuthors(authors string) string {
	return escapeLatex(strings.Join(splitAuthors(authors), " and "))
}

// escapeLatex escapes special LaTeX characters.
func escapeLatex(s string) string {
	// & must be first
	replacer := strings.NewReplacer(
		"&", `\&`,
		"%", `\%`,
		"$", `\$`,
		"#", `\#`,
		"_", `\_`,
		"{", `\{`,
		"}", `\}`,
		"~", `\textasciitilde{}`,
		"^", `\textasciicircum{}`,
	)
	return replacer.Replace(s)
}

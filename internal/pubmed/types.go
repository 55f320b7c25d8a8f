// Package pubmed provides a client for NCBI E-utilities used to resolve
// bibliographic details of studies by PMID or DOI.
package pubmed

import "strings"

// Article represents a PubMed article with parsed fields.
type Article struct {
	PMID     string   `json:"pmid"`
	Title    string   `json:"title"`
	Abstract string   `json:"abstract"`
	Authors  []Author `json:"authors"`
	Journal  string   `json:"journal"`
	Year     string   `json:"year"`
	DOI      string   `json:"doi,omitempty"`
	PMCID    string   `json:"pmcid,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
}

// Author represents an article author.
type Author struct {
	LastName       string `json:"last_name"`
	ForeName       string `json:"fore_name"`
	Initials       string `json:"initials"`
	CollectiveName string `json:"collective_name,omitempty"`
}

// FullName returns "ForeName LastName", or CollectiveName if present.
func (a Author) FullName() string {
	if a.CollectiveName != "" {
		return a.CollectiveName
	}
	if a.ForeName == "" {
		return a.LastName
	}
	return a.ForeName + " " + a.LastName
}

// Citation returns the PubMed citation form "LastName Initials".
func (a Author) Citation() string {
	if a.CollectiveName != "" {
		return a.CollectiveName
	}
	return strings.TrimSpace(a.LastName + " " + a.Initials)
}

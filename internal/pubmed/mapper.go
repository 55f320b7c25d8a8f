package pubmed

import (
	"strconv"
	"strings"

	"github.com/neurostuff/curate/internal/study"
)

// ToBaseStudy maps an article onto the bibliographic fields of a base study.
// Authors use the PubMed citation form joined with ", ".
func ToBaseStudy(a Article) study.BaseStudy {
	names := make([]string, 0, len(a.Authors))
	for _, au := range a.Authors {
		if name := au.Citation(); name != "" {
			names = append(names, name)
		}
	}

	bs := study.BaseStudy{
		Name:        a.Title,
		Authors:     strings.Join(names, ", "),
		Description: a.Abstract,
		DOI:         a.DOI,
		PMID:        a.PMID,
		PMCID:       a.PMCID,
		Publication: a.Journal,
	}
	if year, err := strconv.Atoi(a.Year); err == nil {
		bs.Year = year
	}
	return bs
}

// ToCurationStub maps an article onto a new curation stub with "pubmed"
// provenance.
func ToCurationStub(a Article, id string) study.CurationStub {
	bs := ToBaseStudy(a)
	return study.CurationStub{
		ID:                   id,
		Title:                bs.Name,
		Authors:              bs.Authors,
		DOI:                  bs.DOI,
		PMID:                 bs.PMID,
		PMCID:                bs.PMCID,
		ArticleYear:          a.Year,
		Journal:              bs.Publication,
		AbstractText:         bs.Description,
		Keywords:             strings.Join(a.Keywords, ", "),
		ArticleLink:          "https://pubmed.ncbi.nlm.nih.gov/" + a.PMID,
		Tags:                 []study.Tag{},
		IdentificationSource: study.SourcePubMed,
	}
}

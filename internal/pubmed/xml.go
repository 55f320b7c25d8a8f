package pubmed

import (
	"encoding/xml"
	"fmt"
	"html"
	"regexp"
	"strings"
)

// efetch XML shapes; only the fields we map are declared.
type xmlArticleSet struct {
	Articles []xmlPubmedArticle `xml:"PubmedArticle"`
}

type xmlPubmedArticle struct {
	Citation struct {
		PMID    string `xml:"PMID"`
		Article struct {
			Journal struct {
				Title   string `xml:"Title"`
				PubDate struct {
					Year        string `xml:"Year"`
					MedlineDate string `xml:"MedlineDate"`
				} `xml:"JournalIssue>PubDate"`
			} `xml:"Journal"`
			Title    innerText   `xml:"ArticleTitle"`
			Abstract []innerText `xml:"Abstract>AbstractText"`
			Authors  []struct {
				LastName       string `xml:"LastName"`
				ForeName       string `xml:"ForeName"`
				Initials       string `xml:"Initials"`
				CollectiveName string `xml:"CollectiveName"`
			} `xml:"AuthorList>Author"`
			ELocationIDs []struct {
				Type  string `xml:"EIdType,attr"`
				Value string `xml:",chardata"`
			} `xml:"ELocationID"`
		} `xml:"Article"`
		Keywords []string `xml:"KeywordList>Keyword"`
	} `xml:"MedlineCitation"`
	ArticleIDs []struct {
		Type  string `xml:"IdType,attr"`
		Value string `xml:",chardata"`
	} `xml:"PubmedData>ArticleIdList>ArticleId"`
}

// innerText captures an element's inner XML so inline markup such as
// <i> or <sup> in titles does not drop text.
type innerText struct {
	Label string `xml:"Label,attr"`
	Inner string `xml:",innerxml"`
}

var (
	tagPattern   = regexp.MustCompile(`<[^>]+>`)
	spacePattern = regexp.MustCompile(`\s+`)
	yearPattern  = regexp.MustCompile(`\d{4}`)
)

func (t innerText) text() string {
	s := tagPattern.ReplaceAllString(t.Inner, "")
	s = html.UnescapeString(s)
	return strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
}

// parseArticles decodes an efetch response.
func parseArticles(data []byte) ([]Article, error) {
	var set xmlArticleSet
	if err := xml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("%w: parsing efetch XML: %v", ErrInvalidResponse, err)
	}

	articles := make([]Article, 0, len(set.Articles))
	for _, x := range set.Articles {
		articles = append(articles, x.toArticle())
	}
	return articles, nil
}

func (x xmlPubmedArticle) toArticle() Article {
	c := x.Citation
	a := Article{
		PMID:     strings.TrimSpace(c.PMID),
		Title:    c.Article.Title.text(),
		Journal:  strings.TrimSpace(c.Article.Journal.Title),
		Keywords: c.Keywords,
	}

	a.Year = strings.TrimSpace(c.Article.Journal.PubDate.Year)
	if a.Year == "" {
		a.Year = yearPattern.FindString(c.Article.Journal.PubDate.MedlineDate)
	}

	var sections []string
	for _, s := range c.Article.Abstract {
		text := s.text()
		if text == "" {
			continue
		}
		if s.Label != "" {
			text = s.Label + ": " + text
		}
		sections = append(sections, text)
	}
	a.Abstract = strings.Join(sections, "\n")

	for _, au := range c.Article.Authors {
		a.Authors = append(a.Authors, Author{
			LastName:       au.LastName,
			ForeName:       au.ForeName,
			Initials:       au.Initials,
			CollectiveName: au.CollectiveName,
		})
	}

	for _, id := range x.ArticleIDs {
		switch strings.ToLower(id.Type) {
		case "doi":
			a.DOI = strings.TrimSpace(id.Value)
		case "pmc":
			a.PMCID = strings.TrimSpace(id.Value)
		}
	}
	if a.DOI == "" {
		for _, e := range c.Article.ELocationIDs {
			if strings.EqualFold(e.Type, "doi") {
				a.DOI = strings.TrimSpace(e.Value)
			}
		}
	}
	return a
}

package pubmed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", "pubmed", name))
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", name, err)
	}
	return data
}

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(WithBaseURL(srv.URL), WithAPIKey("test-key"))
}

func TestParseArticles(t *testing.T) {
	articles, err := parseArticles(readFixture(t, "efetch.xml"))
	if err != nil {
		t.Fatalf("parseArticles: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}

	want := Article{
		PMID:     "12345",
		Title:    "Face processing in the fusiform gyrus.",
		Abstract: "BACKGROUND: Faces are special.\nRESULTS: The FFA responds & adapts.",
		Authors: []Author{
			{LastName: "Jones", ForeName: "Alice B", Initials: "AB"},
			{CollectiveName: "Face Consortium"},
		},
		Journal:  "NeuroImage",
		Year:     "2005",
		DOI:      "10.1016/j.neuroimage.2005.01.001",
		PMCID:    "PMC999",
		Keywords: []string{"faces", "fMRI"},
	}
	if diff := cmp.Diff(want, articles[0]); diff != "" {
		t.Errorf("article mismatch (-want +got):\n%s", diff)
	}

	if articles[1].Year != "2010" {
		t.Errorf("MedlineDate year = %q, want 2010", articles[1].Year)
	}
	if articles[1].DOI != "10.1093/brain/awp001" {
		t.Errorf("DOI = %q", articles[1].DOI)
	}
}

func TestFetchArticles(t *testing.T) {
	fixture := readFixture(t, "efetch.xml")
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/efetch.fcgi" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("id") != "12345,67890" {
			t.Errorf("id = %q", q.Get("id"))
		}
		if q.Get("api_key") != "test-key" {
			t.Errorf("api_key = %q", q.Get("api_key"))
		}
		if q.Get("tool") != DefaultTool {
			t.Errorf("tool = %q", q.Get("tool"))
		}
		w.Write(fixture)
	})

	articles, err := client.FetchArticles(context.Background(), []string{"12345", "67890"})
	if err != nil {
		t.Fatalf("FetchArticles: %v", err)
	}
	if len(articles) != 2 {
		t.Errorf("expected 2 articles, got %d", len(articles))
	}
}

func TestLookupArticle_ByDOI(t *testing.T) {
	fixture := readFixture(t, "efetch.xml")
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/esearch.fcgi":
			if got := r.URL.Query().Get("term"); got != "10.1016/j.neuroimage.2005.01.001[doi]" {
				t.Errorf("term = %q", got)
			}
			w.Write([]byte(`{"esearchresult":{"count":"1","idlist":["12345"]}}`))
		case "/efetch.fcgi":
			w.Write(fixture)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	article, err := client.LookupArticle(context.Background(), "", "10.1016/j.neuroimage.2005.01.001")
	if err != nil {
		t.Fatalf("LookupArticle: %v", err)
	}
	if article.PMID != "12345" {
		t.Errorf("PMID = %q, want 12345", article.PMID)
	}
}

func TestSearchDOI_NotFound(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"esearchresult":{"count":"0","idlist":[]}}`))
	})

	_, err := client.SearchDOI(context.Background(), "10.1/missing")
	if !IsNotFound(err) {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestGetArticle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"rate limited", http.StatusTooManyRequests, IsRateLimited},
		{"server error", http.StatusInternalServerError, func(err error) bool {
			var apiErr *APIError
			return errors.As(err, &apiErr) && apiErr.StatusCode == 500
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			_, err := client.GetArticle(context.Background(), "1")
			if err == nil || !tt.check(err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestGetArticle_Missing(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<PubmedArticleSet></PubmedArticleSet>`))
	})
	_, err := client.GetArticle(context.Background(), "1")
	if !IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestToBaseStudy(t *testing.T) {
	articles, err := parseArticles(readFixture(t, "efetch.xml"))
	if err != nil {
		t.Fatal(err)
	}
	bs := ToBaseStudy(articles[0])

	if bs.Authors != "Jones AB, Face Consortium" {
		t.Errorf("Authors = %q", bs.Authors)
	}
	if bs.Year != 2005 || bs.Publication != "NeuroImage" || bs.PMCID != "PMC999" {
		t.Errorf("unexpected base study: %+v", bs)
	}

	stub := ToCurationStub(articles[0], "id-1")
	if stub.IdentificationSource != "pubmed" || stub.Keywords != "faces, fMRI" {
		t.Errorf("unexpected stub: %+v", stub)
	}
}

func TestNewClient_RateLimitDependsOnKey(t *testing.T) {
	t.Setenv("NCBI_API_KEY", "")
	if got := float64(NewClient().limiter.Limit()); got != RateLimit {
		t.Errorf("limit without key = %v, want %v", got, RateLimit)
	}
	if got := float64(NewClient(WithAPIKey("k")).limiter.Limit()); got != RateLimitWithKey {
		t.Errorf("limit with key = %v, want %v", got, RateLimitWithKey)
	}
}

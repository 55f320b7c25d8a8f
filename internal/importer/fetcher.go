package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/neurostuff/curate/internal/pubmed"
	"github.com/neurostuff/curate/internal/storage"
	"github.com/neurostuff/curate/internal/study"
)

// ErrNoDetails is returned by a DetailsFetcher when no record exists for
// the identifiers. The pipeline skips such studies.
var ErrNoDetails = errors.New("no bibliographic details found")

// DetailsFetcher looks up bibliographic details for a study by PMID or DOI.
type DetailsFetcher interface {
	FetchDetails(ctx context.Context, pmid, doi string) (*study.BaseStudy, error)
}

// ArticleLookup resolves an article by PMID or DOI.
type ArticleLookup interface {
	LookupArticle(ctx context.Context, pmid, doi string) (*pubmed.Article, error)
}

// PubMedFetcher fetches details from PubMed, optionally through the
// lookup cache.
type PubMedFetcher struct {
	lookup ArticleLookup
	cache  *storage.DB
	maxAge time.Duration
	logger *slog.Logger
}

// NewPubMedFetcher creates a fetcher. cache may be nil.
func NewPubMedFetcher(lookup ArticleLookup, cache *storage.DB, maxAge time.Duration, logger *slog.Logger) *PubMedFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &PubMedFetcher{lookup: lookup, cache: cache, maxAge: maxAge, logger: logger}
}

// FetchDetails implements DetailsFetcher.
func (f *PubMedFetcher) FetchDetails(ctx context.Context, pmid, doi string) (*study.BaseStudy, error) {
	key := storage.DetailsKey(pmid, doi)
	if key == "" {
		return nil, ErrNoDetails
	}

	if f.cache != nil {
		bs, ok, err := f.cache.GetDetails(key, f.maxAge)
		if err != nil {
			f.logger.Warn("lookup cache read failed", slog.String("key", key), slog.Any("error", err))
		} else if ok {
			f.logger.Debug("lookup cache hit", slog.String("key", key))
			return bs, nil
		}
	}

	article, err := f.lookup.LookupArticle(ctx, pmid, doi)
	if err != nil {
		if pubmed.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoDetails, key)
		}
		return nil, err
	}

	bs := pubmed.ToBaseStudy(*article)
	if f.cache != nil {
		if err := f.cache.PutDetails(key, bs); err != nil {
			f.logger.Warn("lookup cache write failed", slog.String("key", key), slog.Any("error", err))
		}
	}
	return &bs, nil
}

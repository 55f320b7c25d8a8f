// Package reconcile matches, deduplicates, and merges study records coming
// from Sleuth uploads, bibliographic lookups, and the ingestion service.
//
// Every function here is a pure transform over its inputs and is safe to
// re-run against fresh data.
package reconcile

import "github.com/neurostuff/curate/internal/study"

// SeenIDs is the set of PMIDs and DOIs already emitted by a dedup fold.
// Functions that accept a SeenIDs never modify it; they return an updated
// copy instead.
type SeenIDs struct {
	pmids map[string]struct{}
	dois  map[string]struct{}
}

// NewSeenIDs returns an empty identifier set.
func NewSeenIDs() SeenIDs {
	return SeenIDs{
		pmids: make(map[string]struct{}),
		dois:  make(map[string]struct{}),
	}
}

// Has reports whether either identifier has been seen. Empty identifiers
// never match.
func (s SeenIDs) Has(pmid, doi string) bool {
	if pmid != "" {
		if _, ok := s.pmids[pmid]; ok {
			return true
		}
	}
	if doi = study.NormalizeDOI(doi); doi != "" {
		if _, ok := s.dois[doi]; ok {
			return true
		}
	}
	return false
}

// With returns a copy of s that also contains the given identifiers.
func (s SeenIDs) With(pmid, doi string) SeenIDs {
	next := s.clone()
	next.add(pmid, doi)
	return next
}

// Len returns the number of identifiers recorded.
func (s SeenIDs) Len() int {
	return len(s.pmids) + len(s.dois)
}

func (s SeenIDs) clone() SeenIDs {
	next := NewSeenIDs()
	for k := range s.pmids {
		next.pmids[k] = struct{}{}
	}
	for k := range s.dois {
		next.dois[k] = struct{}{}
	}
	return next
}

// add records identifiers in place. Only used on a clone owned by the caller.
func (s SeenIDs) add(pmid, doi string) {
	if pmid != "" {
		s.pmids[pmid] = struct{}{}
	}
	if doi = study.NormalizeDOI(doi); doi != "" {
		s.dois[doi] = struct{}{}
	}
}

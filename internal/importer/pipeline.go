package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/neurostuff/curate/internal/neurostore"
	"github.com/neurostuff/curate/internal/reconcile"
	"github.com/neurostuff/curate/internal/study"
)

// DefaultConcurrency bounds concurrent lookups when Options leaves it unset.
const DefaultConcurrency = 4

// Ingester persists base studies and returns them with ids and versions.
type Ingester interface {
	IngestBaseStudies(ctx context.Context, studies []study.BaseStudy) ([]study.BaseStudy, error)
}

// StudysetUpdater reads and replaces the studies of a studyset.
type StudysetUpdater interface {
	GetStudyset(ctx context.Context, id string) (*neurostore.Studyset, error)
	UpdateStudyset(ctx context.Context, id string, entries []study.StudysetEntry) (*neurostore.Studyset, error)
}

// Pipeline runs uploads through lookup, ingestion and studyset update.
type Pipeline struct {
	fetcher  DetailsFetcher
	ingester Ingester
	studyset StudysetUpdater
	newID    func() string
	logger   *slog.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithIDGenerator sets the stub id generator.
func WithIDGenerator(newID func() string) PipelineOption {
	return func(p *Pipeline) {
		p.newID = newID
	}
}

// NewPipeline creates a pipeline from its collaborators.
func NewPipeline(fetcher DetailsFetcher, ingester Ingester, studyset StudysetUpdater, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		fetcher:  fetcher,
		ingester: ingester,
		studyset: studyset,
		newID:    study.NewStubID,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Options controls a pipeline run.
type Options struct {
	StudysetID  string
	DryRun      bool // Look up details and plan, but do not ingest or update
	Concurrency int
	// Preferred maps stub id to a requested version id.
	Preferred map[string]string
}

// UploadSummary reports what happened to one upload.
type UploadSummary struct {
	Filename     string `json:"filename"`
	Studies      int    `json:"studies"`
	Merged       int    `json:"merged"`
	LookupMisses int    `json:"lookup_misses"`
	Ingested     int    `json:"ingested"`
}

// Result is the outcome of a pipeline run.
type Result struct {
	Uploads []UploadSummary        `json:"uploads"`
	Actions []reconcile.StubAction `json:"actions"`
	Payload []study.StudysetEntry  `json:"payload"`
	Changes []reconcile.SyncChange `json:"changes,omitempty"`
	Stubs   []study.CurationStub   `json:"-"`
	DryRun  bool                   `json:"dry_run"`
}

// Run imports uploads into the project whose current stubs are existing.
// The returned Result.Stubs is the full updated stub list; existing is not
// modified. Collaborator errors abort the run.
func (p *Pipeline) Run(ctx context.Context, existing []study.CurationStub, uploads []*Upload, opts Options) (*Result, error) {
	result := &Result{DryRun: opts.DryRun}

	ingestedUploads := make([]reconcile.Upload, 0, len(uploads))
	var allBaseStudies []study.BaseStudy

	for _, upload := range uploads {
		summary := UploadSummary{Filename: upload.Filename, Studies: len(upload.BaseStudies)}

		details, misses, err := p.fetchDetails(ctx, upload.BaseStudies, opts.Concurrency)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", upload.Filename, err)
		}
		summary.LookupMisses = misses

		merged := reconcile.ApplyDetailsAndDedupe(upload.BaseStudies, details)
		summary.Merged = len(merged)

		ingested := merged
		if !opts.DryRun {
			ingested, err = p.ingester.IngestBaseStudies(ctx, merged)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", upload.Filename, err)
			}
			summary.Ingested = len(ingested)
		}

		p.logger.Info("processed upload",
			slog.String("file", upload.Filename),
			slog.Int("studies", summary.Studies),
			slog.Int("merged", summary.Merged),
			slog.Int("lookup_misses", misses))

		ingestedUploads = append(ingestedUploads, reconcile.Upload{
			Filename:          upload.Filename,
			BaseStudies:       ingested,
			StudyAnalysisList: analysisList(ingested),
		})
		allBaseStudies = append(allBaseStudies, ingested...)
		result.Uploads = append(result.Uploads, summary)
	}

	incoming, _ := reconcile.IngestedStudiesToStubs(ingestedUploads, reconcile.NewSeenIDs(), p.newID)
	stubs, actions := reconcile.MergeStubs(existing, incoming)
	result.Actions = actions

	existingIDs := map[string]bool{}
	var current []string
	if opts.StudysetID != "" && p.studyset != nil {
		ss, err := p.studyset.GetStudyset(ctx, opts.StudysetID)
		if err != nil {
			return nil, err
		}
		existingIDs = ss.StudyIDs()
		current = ss.Studies
	}

	payloadStubs := importedStubs(stubs, actions)
	imported := reconcile.MapStubsToStudysetPayload(payloadStubs, allBaseStudies, reconcile.PayloadOptions{
		Locked:    reconcile.LockedMap(existing),
		Preferred: opts.Preferred,
		Existing:  existingIDs,
	})
	result.Payload = retainedEntries(stubs, imported, current)

	if opts.DryRun || opts.StudysetID == "" || p.studyset == nil {
		result.Stubs = stubs
		return result, nil
	}

	updated, err := p.studyset.UpdateStudyset(ctx, opts.StudysetID, result.Payload)
	if err != nil {
		return nil, err
	}
	result.Stubs, result.Changes = reconcile.SyncStubsWithStudyset(stubs, result.Payload, updated.StudyIDs())
	if len(result.Changes) > 0 {
		p.logger.Info("synced stubs with studyset",
			slog.String("studyset", opts.StudysetID),
			slog.Int("changed", len(result.Changes)))
	}
	return result, nil
}

// fetchDetails looks up details for every base study with an identifier,
// concurrently and bounded by limit. Results keep input order; misses are
// counted and skipped.
func (p *Pipeline) fetchDetails(ctx context.Context, studies []study.BaseStudy, limit int) ([]study.BaseStudy, int, error) {
	if p.fetcher == nil {
		return nil, 0, nil
	}
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	found := make([]*study.BaseStudy, len(studies))
	missed := make([]bool, len(studies))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, bs := range studies {
		if bs.PMID == "" && bs.DOI == "" {
			continue
		}
		i, bs := i, bs
		g.Go(func() error {
			d, err := p.fetcher.FetchDetails(gctx, bs.PMID, bs.DOI)
			if errors.Is(err, ErrNoDetails) {
				p.logger.Debug("no details found", slog.String("pmid", bs.PMID), slog.String("doi", bs.DOI))
				missed[i] = true
				return nil
			}
			if err != nil {
				return fmt.Errorf("looking up pmid=%q doi=%q: %w", bs.PMID, bs.DOI, err)
			}
			found[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	var details []study.BaseStudy
	misses := 0
	for i := range studies {
		if missed[i] {
			misses++
		}
		if found[i] != nil {
			details = append(details, *found[i])
		}
	}
	return details, misses, nil
}

// analysisList records the version chosen for each ingested base study.
func analysisList(ingested []study.BaseStudy) []reconcile.IngestedStudy {
	list := make([]reconcile.IngestedStudy, 0, len(ingested))
	for _, bs := range ingested {
		v, ok := reconcile.SelectBestVersion(bs)
		if !ok || v.ID == "" {
			continue
		}
		entry := reconcile.IngestedStudy{StudyID: v.ID, DOI: bs.DOI, PMID: bs.PMID}
		for _, a := range v.Analyses {
			if a.ID != "" {
				entry.AnalysisIDs = append(entry.AnalysisIDs, a.ID)
			}
		}
		list = append(list, entry)
	}
	return list
}

// importedStubs returns the non-excluded stubs touched by this import: new
// stubs and the existing stubs that incoming ones matched. Each appears once.
func importedStubs(stubs []study.CurationStub, actions []reconcile.StubAction) []study.CurationStub {
	byID := make(map[string]study.CurationStub, len(stubs))
	for _, s := range stubs {
		byID[s.ID] = s
	}

	seen := make(map[string]bool, len(actions))
	var out []study.CurationStub
	for _, a := range actions {
		id := a.StubID
		if a.Action != reconcile.ActionNew {
			id = a.MatchedID
		}
		s, ok := byID[id]
		if !ok || seen[id] || s.IsExcluded() {
			continue
		}
		seen[id] = true
		out = append(out, s)
	}
	return out
}

// retainedEntries completes the studyset payload so an update never drops
// what earlier imports put there. Entries for this import come first, then
// every other non-excluded stub with a NeurostoreID, then studyset members no
// project stub owns. Studies of excluded stubs are left out.
func retainedEntries(stubs []study.CurationStub, imported []study.StudysetEntry, current []string) []study.StudysetEntry {
	payload := append([]study.StudysetEntry{}, imported...)
	stubDone := make(map[string]bool, len(payload))
	versionDone := make(map[string]bool, len(payload))
	for _, e := range payload {
		stubDone[e.CurationStubUUID] = true
		versionDone[e.ID] = true
	}

	excluded := make(map[string]bool)
	for _, s := range stubs {
		if s.IsExcluded() {
			if s.NeurostoreID != "" {
				excluded[s.NeurostoreID] = true
			}
			continue
		}
		if s.NeurostoreID == "" || stubDone[s.ID] || versionDone[s.NeurostoreID] {
			continue
		}
		payload = append(payload, study.StudysetEntry{ID: s.NeurostoreID, CurationStubUUID: s.ID})
		stubDone[s.ID] = true
		versionDone[s.NeurostoreID] = true
	}

	for _, id := range current {
		if id == "" || versionDone[id] || excluded[id] {
			continue
		}
		payload = append(payload, study.StudysetEntry{ID: id})
		versionDone[id] = true
	}
	return payload
}

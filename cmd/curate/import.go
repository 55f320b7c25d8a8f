package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/neurostuff/curate/internal/config"
	"github.com/neurostuff/curate/internal/importer"
	"github.com/neurostuff/curate/internal/neurostore"
	"github.com/neurostuff/curate/internal/pubmed"
	"github.com/neurostuff/curate/internal/reconcile"
	"github.com/neurostuff/curate/internal/sleuth"
	"github.com/neurostuff/curate/internal/storage"
)

var (
	importDryRun      bool
	importStudyset    string
	importConcurrency int
	importPrefer      map[string]string
)

func init() {
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Look up details and plan without ingesting or writing")
	importCmd.Flags().StringVar(&importStudyset, "studyset", "", "Studyset to update (default: studyset_id from config)")
	importCmd.Flags().IntVar(&importConcurrency, "concurrency", 0, "Concurrent PubMed lookups (default: concurrency from config)")
	importCmd.Flags().StringToStringVar(&importPrefer, "prefer", nil, "Preferred version per stub, as stub-id=version-id")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Import Sleuth files into the project",
	Long: `Import Sleuth files into the project.

Each file is validated and parsed. Bibliographic details are looked up on
PubMed, the studies are ingested, and new curation stubs are added to the
project. Studies already seen in an earlier file or in the project are not
added twice. When a studyset is configured it is updated with one version
per imported stub, and stub locks are synced with it.

Usage:
  curate import faces.txt houses.txt
  curate import faces.txt --dry-run
  curate import faces.txt --studyset abc123 --prefer <stub-id>=<version-id>`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

// ImportResponse is the JSON result of an import.
type ImportResponse struct {
	DryRun   bool                     `json:"dry_run"`
	Studyset string                   `json:"studyset,omitempty"`
	New      int                      `json:"new"`
	Updated  int                      `json:"updated"`
	Skipped  int                      `json:"skipped"`
	Uploads  []importer.UploadSummary `json:"uploads"`
	Details  []reconcile.StubAction   `json:"details,omitempty"`
	Payload  int                      `json:"payload"`
	Changes  []reconcile.SyncChange   `json:"changes,omitempty"`
}

func runImport(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)

	uploads := make([]*importer.Upload, 0, len(args))
	for _, path := range args {
		upload, err := importer.ReadUploadFile(path)
		if err != nil {
			var verr *sleuth.ValidationError
			if errors.As(err, &verr) {
				exitWithError(ExitDataError, "%v", err)
			}
			exitWithError(ExitError, "%v", err)
		}
		uploads = append(uploads, upload)
	}

	stubsPath := config.StubsPath(repoRoot)
	existing, err := storage.ReadStubs(stubsPath)
	if err != nil {
		exitWithError(ExitDataError, "reading existing stubs: %v", err)
	}

	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	opts := importer.Options{
		StudysetID:  importStudyset,
		DryRun:      importDryRun,
		Concurrency: importConcurrency,
		Preferred:   importPrefer,
	}
	if opts.StudysetID == "" {
		opts.StudysetID = cfg.StudysetID
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = cfg.LookupConcurrency()
	}

	pipeline := newPipeline(db, cfg)
	result, err := pipeline.Run(cmd.Context(), existing, uploads, opts)
	if err != nil {
		exitWithError(exitCodeForError(err), "import failed: %v", err)
	}

	if !importDryRun {
		if err := storage.WriteStubs(stubsPath, result.Stubs); err != nil {
			exitWithError(ExitError, "writing stubs: %v", err)
		}
	}

	reportImport(opts.StudysetID, result)
	return nil
}

// newPipeline wires the PubMed lookup and neurostore clients into a pipeline.
func newPipeline(db *storage.DB, cfg *config.Config) *importer.Pipeline {
	pm := pubmed.NewClient(
		pubmed.WithAPIKey(config.GetNCBIAPIKey()),
		pubmed.WithEmail(config.GetNCBIEmail()),
		pubmed.WithLogger(logger),
	)
	ns := neurostore.NewClient(
		neurostore.WithBaseURL(config.GetNeurostoreURL()),
		neurostore.WithToken(config.GetNeurostoreToken()),
		neurostore.WithLogger(logger),
	)
	fetcher := importer.NewPubMedFetcher(pm, db, cfg.CacheMaxAge(), logger)
	return importer.NewPipeline(fetcher, ns, ns, importer.WithLogger(logger))
}

// summarizeImport counts stub actions into an ImportResponse.
func summarizeImport(studyset string, result *importer.Result) ImportResponse {
	resp := ImportResponse{
		DryRun:   result.DryRun,
		Studyset: studyset,
		Uploads:  result.Uploads,
		Details:  result.Actions,
		Payload:  len(result.Payload),
		Changes:  result.Changes,
	}
	for _, a := range result.Actions {
		switch a.Action {
		case reconcile.ActionNew:
			resp.New++
		case reconcile.ActionUpdate:
			resp.Updated++
		case reconcile.ActionSkip:
			resp.Skipped++
		}
	}
	return resp
}

func reportImport(studyset string, result *importer.Result) {
	resp := summarizeImport(studyset, result)
	if !humanOutput {
		outputJSON(resp)
		return
	}

	if resp.DryRun {
		fmt.Println("Dry run - nothing was ingested or written.")
	}
	rows := make([][]string, 0, len(resp.Uploads))
	for _, u := range resp.Uploads {
		rows = append(rows, []string{
			u.Filename,
			strconv.Itoa(u.Studies),
			strconv.Itoa(u.Merged),
			strconv.Itoa(u.LookupMisses),
			strconv.Itoa(u.Ingested),
		})
	}
	fmt.Println(renderTable(
		[]string{"File", "Studies", "Merged", "Not on PubMed", "Ingested"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight},
	))
	fmt.Printf("  New stubs:      %d\n", resp.New)
	fmt.Printf("  Updated stubs:  %d\n", resp.Updated)
	fmt.Printf("  Skipped:        %d (already in project)\n", resp.Skipped)
	if studyset != "" {
		fmt.Printf("  Studyset %s: %d entries\n", studyset, resp.Payload)
	}
	for _, c := range resp.Changes {
		if c.Previous == "" {
			fmt.Printf("  Locked %s to %s\n", c.StubID, c.Current)
		} else {
			fmt.Printf("  Relocked %s: %s -> %s (previous version not in studyset)\n", c.StubID, c.Previous, c.Current)
		}
	}
}

package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/neurostuff/curate/internal/config"
	"github.com/neurostuff/curate/internal/export"
	"github.com/neurostuff/curate/internal/importer"
	"github.com/neurostuff/curate/internal/pdf"
	"github.com/neurostuff/curate/internal/pubmed"
	"github.com/neurostuff/curate/internal/reconcile"
	"github.com/neurostuff/curate/internal/storage"
	"github.com/neurostuff/curate/internal/study"
)

func init() {
	rootCmd.AddCommand(stubCmd)
}

var stubCmd = &cobra.Command{
	Use:   "stub",
	Short: "List and add curation stubs",
}

// ---- stub list ----

var (
	stubListQuery    string
	stubListSource   string
	stubListExcluded bool
	stubListLocked   bool
	stubListLimit    int
)

func init() {
	stubListCmd.Flags().StringVarP(&stubListQuery, "query", "q", "", "Match title or authors (case-insensitive substring)")
	stubListCmd.Flags().StringVar(&stubListSource, "source", "", "Only stubs with this identification source")
	stubListCmd.Flags().BoolVar(&stubListExcluded, "excluded", false, "Only excluded (true) or included (false) stubs")
	stubListCmd.Flags().BoolVar(&stubListLocked, "locked", false, "Only stubs with (true) or without (false) a neurostore id")
	stubListCmd.Flags().IntVarP(&stubListLimit, "limit", "n", DefaultListLimit, "Maximum results (0 for all)")
	stubCmd.AddCommand(stubListCmd)
}

var stubListCmd = &cobra.Command{
	Use:   "list",
	Short: "List curation stubs",
	Args:  cobra.NoArgs,
	RunE:  runStubList,
}

func runStubList(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	stubsPath := config.StubsPath(repoRoot)

	stubs, err := storage.ReadStubs(stubsPath)
	if err != nil {
		exitWithError(ExitDataError, "reading stubs: %v", err)
	}

	db := mustOpenDatabase(repoRoot)
	defer db.Close()
	if _, err := db.RebuildFromJSONL(stubsPath); err != nil {
		exitWithError(ExitError, "indexing stubs: %v", err)
	}

	filters := storage.StubFilters{Query: stubListQuery, Source: stubListSource}
	if cmd.Flags().Changed("excluded") {
		filters.Excluded = &stubListExcluded
	}
	if cmd.Flags().Changed("locked") {
		filters.Locked = &stubListLocked
	}

	ids, err := db.ListStubIDs(filters, stubListLimit)
	if err != nil {
		exitWithError(ExitError, "listing stubs: %v", err)
	}

	result := make([]study.CurationStub, 0, len(ids))
	for _, id := range ids {
		if idx, ok := storage.FindStubByID(stubs, id); ok {
			result = append(result, stubs[idx])
		}
	}

	if humanOutput {
		if len(result) == 0 {
			fmt.Println("No stubs found.")
			return nil
		}
		fmt.Println(renderTable(
			[]string{"ID", "Title", "Year", "PMID", "DOI", "Source", "Locked"},
			stubRows(result),
			nil,
		))
		return nil
	}
	outputJSON(result)
	return nil
}

// stubRows renders one table row per stub.
func stubRows(stubs []study.CurationStub) [][]string {
	rows := make([][]string, 0, len(stubs))
	for _, s := range stubs {
		locked := ""
		if s.NeurostoreID != "" {
			locked = s.NeurostoreID
		}
		title := s.Title
		if s.IsExcluded() {
			title = "[excluded] " + title
		}
		rows = append(rows, []string{
			shortID(s.ID),
			truncateString(title, ListTitleMaxLen),
			s.ArticleYear,
			s.PMID,
			s.DOI,
			s.IdentificationSource,
			locked,
		})
	}
	return rows
}

// shortID abbreviates a UUID for display.
func shortID(id string) string {
	if len(id) > 8 && strings.Count(id, "-") == 4 {
		return id[:8]
	}
	return id
}

// ---- stub add ----

var (
	stubAddTitle    string
	stubAddAuthors  string
	stubAddDOI      string
	stubAddPMID     string
	stubAddYear     string
	stubAddPDF      string
	stubAddNoLookup bool
)

func init() {
	stubAddCmd.Flags().StringVar(&stubAddTitle, "title", "", "Article title")
	stubAddCmd.Flags().StringVar(&stubAddAuthors, "authors", "", "Authors")
	stubAddCmd.Flags().StringVar(&stubAddDOI, "doi", "", "DOI")
	stubAddCmd.Flags().StringVar(&stubAddPMID, "pmid", "", "PubMed id")
	stubAddCmd.Flags().StringVar(&stubAddYear, "year", "", "Publication year")
	stubAddCmd.Flags().StringVar(&stubAddPDF, "pdf", "", "Read DOI, PMID and title from a PDF")
	stubAddCmd.Flags().BoolVar(&stubAddNoLookup, "no-lookup", false, "Do not fill details from PubMed")
	stubCmd.AddCommand(stubAddCmd)
}

var stubAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a curation stub by hand or from a PDF",
	Long: `Add a curation stub by hand or from a PDF.

Flags take precedence over what is read from --pdf. When a PMID or DOI is
known, empty fields are filled from PubMed unless --no-lookup is given.
A stub for a study already in the project fills that stub's empty fields
instead of being added again.

Usage:
  curate stub add --pmid 12345
  curate stub add --title "Faces and places" --year 2001
  curate stub add --pdf papers/jones2005.pdf`,
	Args: cobra.NoArgs,
	RunE: runStubAdd,
}

// StubAddResponse is the JSON result of stub add and import-paperpile.
type StubAddResponse struct {
	Actions []reconcile.StubAction `json:"actions"`
	Stubs   []study.CurationStub   `json:"stubs,omitempty"`
	Errors  []string               `json:"errors,omitempty"`
}

func runStubAdd(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)

	stub := study.CurationStub{
		ID:                   study.NewStubID(),
		Title:                strings.TrimSpace(stubAddTitle),
		Authors:              strings.TrimSpace(stubAddAuthors),
		DOI:                  strings.TrimSpace(stubAddDOI),
		PMID:                 strings.TrimSpace(stubAddPMID),
		ArticleYear:          strings.TrimSpace(stubAddYear),
		Tags:                 []study.Tag{},
		IdentificationSource: study.SourceManual,
	}

	if stubAddPDF != "" {
		ids, err := pdf.ExtractIdentifiers(stubAddPDF)
		if err != nil {
			exitWithError(ExitDataError, "reading %s: %v", stubAddPDF, err)
		}
		stub = applyPDFIdentifiers(stub, ids)
		logger.Debug("read identifiers from pdf", "file", stubAddPDF, "doi", ids.DOI, "pmid", ids.PMID)
	}

	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	if !stubAddNoLookup && (stub.PMID != "" || stub.DOI != "") {
		stub = fillFromPubMed(cmd, db, cfg, stub)
	}

	if stub.Title == "" && stub.PMID == "" && stub.DOI == "" {
		exitWithError(ExitError, "a stub needs a title, PMID or DOI")
	}

	persistStubs(repoRoot, []study.CurationStub{stub}, nil, false)
	return nil
}

// applyPDFIdentifiers fills empty stub fields from identifiers read from a PDF.
func applyPDFIdentifiers(stub study.CurationStub, ids pdf.Identifiers) study.CurationStub {
	if stub.DOI == "" {
		stub.DOI = ids.DOI
	}
	if stub.PMID == "" {
		stub.PMID = ids.PMID
	}
	if stub.Title == "" {
		stub.Title = ids.Title
	}
	return stub
}

// fillFromPubMed fills empty stub fields from a PubMed lookup. A lookup
// miss leaves the stub unchanged.
func fillFromPubMed(cmd *cobra.Command, db *storage.DB, cfg *config.Config, stub study.CurationStub) study.CurationStub {
	pm := pubmed.NewClient(
		pubmed.WithAPIKey(config.GetNCBIAPIKey()),
		pubmed.WithEmail(config.GetNCBIEmail()),
		pubmed.WithLogger(logger),
	)
	fetcher := importer.NewPubMedFetcher(pm, db, cfg.CacheMaxAge(), logger)

	details, err := fetcher.FetchDetails(cmd.Context(), stub.PMID, stub.DOI)
	if errors.Is(err, importer.ErrNoDetails) {
		logger.Warn("no PubMed record found", "pmid", stub.PMID, "doi", stub.DOI)
		return stub
	}
	if err != nil {
		exitWithError(exitCodeForError(err), "looking up details: %v", err)
	}

	filled := reconcile.BaseStudyToStub(*details, stub.ID)
	merged, _ := reconcile.MergeStubs([]study.CurationStub{stub}, []study.CurationStub{filled})
	return merged[0]
}

// persistStubs merges incoming stubs into the project and reports the
// actions. Nothing is written on a dry run.
func persistStubs(repoRoot string, incoming []study.CurationStub, parseErrors []error, dryRun bool) {
	stubsPath := config.StubsPath(repoRoot)
	existing, err := storage.ReadStubs(stubsPath)
	if err != nil {
		exitWithError(ExitDataError, "reading existing stubs: %v", err)
	}

	merged, actions := reconcile.MergeStubs(existing, incoming)

	if !dryRun && changedAny(actions) {
		if err := storage.WriteStubs(stubsPath, merged); err != nil {
			exitWithError(ExitError, "writing stubs: %v", err)
		}
	}

	resp := StubAddResponse{Actions: actions, Errors: errorsToStrings(parseErrors)}
	if len(incoming) == 1 {
		resp.Stubs = resolvedStubs(merged, actions)
	}

	if !humanOutput {
		outputJSON(resp)
		return
	}
	if dryRun {
		fmt.Println("Dry run - nothing was written.")
	}
	for _, a := range actions {
		switch a.Action {
		case reconcile.ActionNew:
			fmt.Printf("  added   %s  %s\n", shortID(a.StubID), truncateString(a.Title, ListTitleMaxLen))
		case reconcile.ActionUpdate:
			fmt.Printf("  updated %s  %s (%s)\n", shortID(a.MatchedID), truncateString(a.Title, ListTitleMaxLen), a.Reason)
		default:
			fmt.Printf("  skipped %s  already in project as %s (%s)\n", truncateString(a.Title, ListTitleMaxLen), shortID(a.MatchedID), a.Reason)
		}
	}
	if len(resp.Errors) > 0 {
		fmt.Println("\nParse errors:")
		for _, e := range resp.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}
}

// changedAny reports whether any action adds or updates a stub.
func changedAny(actions []reconcile.StubAction) bool {
	for _, a := range actions {
		if a.Action != reconcile.ActionSkip {
			return true
		}
	}
	return false
}

// resolvedStubs returns the stored stub each action ended up in.
func resolvedStubs(stubs []study.CurationStub, actions []reconcile.StubAction) []study.CurationStub {
	var out []study.CurationStub
	for _, a := range actions {
		id := a.StubID
		if a.Action != reconcile.ActionNew {
			id = a.MatchedID
		}
		if idx, ok := storage.FindStubByID(stubs, id); ok {
			out = append(out, stubs[idx])
		}
	}
	return out
}

// ---- stub import-paperpile ----

var paperpileDryRun bool

func init() {
	stubImportPaperpileCmd.Flags().BoolVar(&paperpileDryRun, "dry-run", false, "Show what would be added without writing")
	stubCmd.AddCommand(stubImportPaperpileCmd)
}

var stubImportPaperpileCmd = &cobra.Command{
	Use:   "import-paperpile <file>",
	Short: "Add stubs from a Paperpile JSON export",
	Long: `Add stubs from a Paperpile JSON export.

Entries without a title are reported and skipped. Paperpile labels become
stub tags. Studies already in the project fill empty fields of the
existing stub instead of being added again.`,
	Args: cobra.ExactArgs(1),
	RunE: runStubImportPaperpile,
}

func runStubImportPaperpile(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	data, err := os.ReadFile(args[0])
	if err != nil {
		exitWithError(ExitError, "reading file: %v", err)
	}

	stubs, parseErrors := importer.ParsePaperpile(data, nil)
	if len(parseErrors) > 0 && len(stubs) == 0 {
		exitWithError(ExitDataError, "failed to parse any entries: %v", parseErrors[0])
	}

	persistStubs(repoRoot, stubs, parseErrors, paperpileDryRun)
	return nil
}

// ---- stub export ----

var (
	stubExportFormat   string
	stubExportOutput   string
	stubExportExcluded bool
)

func init() {
	stubExportCmd.Flags().StringVarP(&stubExportFormat, "format", "f", "bibtex", "Output format: bibtex or csv")
	stubExportCmd.Flags().StringVarP(&stubExportOutput, "output", "o", "", "Write to file instead of stdout")
	stubExportCmd.Flags().BoolVar(&stubExportExcluded, "include-excluded", false, "Also export excluded stubs")
	stubCmd.AddCommand(stubExportCmd)
}

var stubExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export curation stubs as BibTeX or CSV",
	Args:  cobra.NoArgs,
	RunE:  runStubExport,
}

func runStubExport(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	stubs, err := storage.ReadStubs(config.StubsPath(repoRoot))
	if err != nil {
		exitWithError(ExitDataError, "reading stubs: %v", err)
	}
	if !stubExportExcluded {
		stubs = includedStubs(stubs)
	}

	var buf bytes.Buffer
	switch stubExportFormat {
	case "bibtex":
		buf.WriteString(export.ToBibTeXList(stubs))
	case "csv":
		if err := export.WriteCSV(&buf, stubs); err != nil {
			exitWithError(ExitError, "exporting: %v", err)
		}
	default:
		exitWithError(ExitError, "unknown format %q (want bibtex or csv)", stubExportFormat)
	}

	if stubExportOutput == "" {
		fmt.Print(buf.String())
		return nil
	}
	if err := os.WriteFile(stubExportOutput, buf.Bytes(), 0644); err != nil {
		exitWithError(ExitError, "writing %s: %v", stubExportOutput, err)
	}
	if humanOutput {
		fmt.Printf("Exported %d stubs to %s\n", len(stubs), stubExportOutput)
	} else {
		outputJSON(StatusResponse{Status: "exported", Path: stubExportOutput})
	}
	return nil
}

// includedStubs drops stubs that carry an exclusion tag.
func includedStubs(stubs []study.CurationStub) []study.CurationStub {
	out := make([]study.CurationStub, 0, len(stubs))
	for _, s := range stubs {
		if !s.IsExcluded() {
			out = append(out, s)
		}
	}
	return out
}

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/neurostuff/curate/internal/sleuth"
)

var parseSkipValidation bool

func init() {
	parseCmd.Flags().BoolVar(&parseSkipValidation, "no-validate", false, "Parse without validating first")
	rootCmd.AddCommand(parseCmd)
}

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a Sleuth file into study blocks",
	Long: `Parse a Sleuth file into study blocks.

Outputs the reference space and one stub per study block with its
analysis names, subjects, identifiers and coordinates. The file is
validated first unless --no-validate is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func runParse(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		exitWithError(ExitError, "reading %s: %v", args[0], err)
	}

	text := sleuth.NormalizeLineEndings(string(data))
	if !parseSkipValidation {
		if err := sleuth.Check(text); err != nil {
			exitWithError(ExitDataError, "%s: %v", args[0], err)
		}
	}

	result := sleuth.Parse(text)
	if humanOutput {
		fmt.Printf("Reference space: %s\n", result.Space)
		fmt.Println(renderTable(
			[]string{"#", "Author/Year", "Analysis", "Subjects", "PMID", "DOI", "Coords"},
			parseRows(result),
			[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignRight},
		))
		return nil
	}
	outputJSON(result)
	return nil
}

// parseRows renders one table row per parsed stub.
func parseRows(result sleuth.ParseResult) [][]string {
	rows := make([][]string, 0, len(result.Stubs))
	for i, s := range result.Stubs {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			s.AuthorYearString,
			truncateString(s.AnalysisName, ListTitleMaxLen),
			strconv.Itoa(s.Subjects),
			s.PMID,
			s.DOI,
			strconv.Itoa(len(s.Coordinates)),
		})
	}
	return rows
}

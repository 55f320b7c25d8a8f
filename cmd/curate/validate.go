package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/neurostuff/curate/internal/sleuth"
)

func init() {
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Check Sleuth files against the format",
	Long: `Check Sleuth files against the format.

Reports the first problem in each file with its line number. Exits with
status 3 if any file is invalid.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

// FileValidation is the validation outcome for one file.
type FileValidation struct {
	File string `json:"file"`
	sleuth.ValidationResult
	Line int `json:"line,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	results := make([]FileValidation, 0, len(args))
	allValid := true

	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			exitWithError(ExitError, "reading %s: %v", path, err)
		}
		results = append(results, validateText(path, string(data)))
		if !results[len(results)-1].IsValid {
			allValid = false
		}
	}

	if humanOutput {
		for _, r := range results {
			if r.IsValid {
				fmt.Printf("%s: ok\n", r.File)
			} else {
				fmt.Printf("%s: %s\n", r.File, r.ErrorMessage)
			}
		}
	} else {
		outputJSON(results)
	}

	if !allValid {
		os.Exit(ExitDataError)
	}
	return nil
}

// validateText validates one file's contents.
func validateText(name, text string) FileValidation {
	text = sleuth.NormalizeLineEndings(text)
	err := sleuth.Check(text)
	if err == nil {
		return FileValidation{File: name, ValidationResult: sleuth.ValidationResult{IsValid: true}}
	}

	result := FileValidation{
		File:             name,
		ValidationResult: sleuth.ValidationResult{IsValid: false, ErrorMessage: err.Error()},
	}
	var verr *sleuth.ValidationError
	if errors.As(err, &verr) {
		result.Line = verr.Line
	}
	return result
}

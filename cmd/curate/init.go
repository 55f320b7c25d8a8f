package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/neurostuff/curate/internal/config"
)

var (
	initName     string
	initStudyset string
)

func init() {
	initCmd.Flags().StringVar(&initName, "name", "", "Project name")
	initCmd.Flags().StringVar(&initStudyset, "studyset", "", "Studyset id updated by imports")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a curation project in the current directory",
	Long: `Create a curation project in the current directory.

Creates .curate/ holding config.json, an empty stubs.jsonl and the cache
directory for the lookup database.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	if err := config.Init(cwd, config.Config{Name: initName, StudysetID: initStudyset}); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	if humanOutput {
		fmt.Printf("Initialized curate project in %s\n", config.CuratePath(cwd))
	} else {
		outputJSON(StatusResponse{Status: "initialized", Path: config.CuratePath(cwd)})
	}
	return nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neurostuff/curate/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set project configuration values",
	Long: `Get or set project configuration values.

Usage:
  curate config                      # Show all config
  curate config studyset_id          # Get specific value
  curate config studyset_id abc123   # Set value

Keys:
  name                Project name
  studyset_id         Studyset updated by 'curate import'
  cache_max_age_days  Refetch cached PubMed lookups older than this (0 = never)
  concurrency         Concurrent PubMed lookups during import

Credentials live in the global config (~/.config/curate/config.yml) or the
environment: NEUROSTORE_TOKEN, NEUROSTORE_URL, NCBI_API_KEY, NCBI_EMAIL.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)

	if len(args) == 0 {
		if humanOutput {
			for _, key := range config.Keys() {
				value, _ := cfg.Get(key)
				fmt.Printf("%-20s %s\n", key+":", value)
			}
		} else {
			outputJSON(cfg)
		}
		return nil
	}

	key := args[0]
	if len(args) == 1 {
		value, err := cfg.Get(key)
		if err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		if humanOutput {
			fmt.Println(value)
		} else {
			outputJSON(map[string]string{key: value})
		}
		return nil
	}

	if err := cfg.Set(key, args[1]); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	if err := cfg.Save(repoRoot); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	if humanOutput {
		fmt.Printf("Set %s = %s\n", key, args[1])
	} else {
		outputJSON(UpdateResponse{Status: "updated", Key: key, Value: args[1]})
	}
	return nil
}

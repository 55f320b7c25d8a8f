package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the PubMed lookup cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached PubMed lookups",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

// CacheClearResponse is the JSON result of cache clear.
type CacheClearResponse struct {
	Status  string `json:"status"`
	Removed int64  `json:"removed"`
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	n, err := db.ClearDetails()
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		fmt.Printf("Removed %d cached lookups\n", n)
	} else {
		outputJSON(CacheClearResponse{Status: "cleared", Removed: n})
	}
	return nil
}

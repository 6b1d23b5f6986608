package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/pubdb/internal/config"
	"github.com/matsen/pubdb/internal/storage"
)

func init() {
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show repository counts",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

// StatsResponse is the response for the stats command.
type StatsResponse struct {
	Publications int `json:"publications"`
	Authors      int `json:"authors"`
	Journals     int `json:"journals"`
	Authorships  int `json:"authorships"`
	Failures     int `json:"failures"`
}

func runStats(cmd *cobra.Command, args []string) error {
	r := openRepo()
	defer r.Close()

	var resp StatsResponse
	var err error
	if resp.Publications, err = r.db.CountPublications(); err != nil {
		r.Close()
		exitWithError(ExitError, "counting publications: %v", err)
	}
	if resp.Authorships, err = r.db.CountAuthorships(); err != nil {
		r.Close()
		exitWithError(ExitError, "counting authorships: %v", err)
	}
	authors, err := r.db.ListAuthors()
	if err != nil {
		r.Close()
		exitWithError(ExitError, "%v", err)
	}
	resp.Authors = len(authors)
	journals, err := r.db.ListJournals()
	if err != nil {
		r.Close()
		exitWithError(ExitError, "%v", err)
	}
	resp.Journals = len(journals)
	failures, err := storage.ReadFailures(config.FailurePath(r.root))
	if err != nil {
		r.Close()
		exitWithError(ExitDataError, "%v", err)
	}
	resp.Failures = len(failures)

	if humanOutput {
		fmt.Printf("Publications: %d\n", resp.Publications)
		fmt.Printf("Authors:      %d\n", resp.Authors)
		fmt.Printf("Journals:     %d\n", resp.Journals)
		fmt.Printf("Authorships:  %d\n", resp.Authorships)
		fmt.Printf("Failures:     %d\n", resp.Failures)
	} else {
		outputJSON(resp)
	}
	return nil
}

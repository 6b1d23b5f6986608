package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/pubdb/internal/config"
	"github.com/matsen/pubdb/internal/storage"
)

func init() {
	failuresCmd.AddCommand(failuresListCmd)
	failuresCmd.AddCommand(failuresClearCmd)
	rootCmd.AddCommand(failuresCmd)
}

var failuresCmd = &cobra.Command{
	Use:   "failures",
	Short: "Inspect the journal of failed import entries",
	Long: `Inspect the journal of failed import entries (.pubdb/failures.jsonl).
Entries are journaled only when failure_log is enabled.`,
}

var failuresListCmd = &cobra.Command{
	Use:   "list",
	Short: "List failed import entries",
	Args:  cobra.NoArgs,
	RunE:  runFailuresList,
}

var failuresClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the failure journal",
	Args:  cobra.NoArgs,
	RunE:  runFailuresClear,
}

func runFailuresList(cmd *cobra.Command, args []string) error {
	root := findRepoRoot()

	records, err := storage.ReadFailures(config.FailurePath(root))
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	if humanOutput {
		if len(records) == 0 {
			fmt.Println("No failed entries")
			return nil
		}
		for _, rec := range records {
			fmt.Printf("%s  entry %d [%s] @%s: %s\n",
				rec.Time.Format("2006-01-02 15:04:05"), rec.Index, rec.Stage, rec.Type, rec.Error)
		}
		return nil
	}
	if records == nil {
		records = []storage.FailureRecord{}
	}
	outputJSON(records)
	return nil
}

func runFailuresClear(cmd *cobra.Command, args []string) error {
	root := findRepoRoot()

	path := config.FailurePath(root)
	if err := storage.ClearFailures(path); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		fmt.Println("Cleared failure journal")
	} else {
		outputJSON(StatusResponse{Status: "cleared", Path: path})
	}
	return nil
}

// findRepoRoot locates the repository without opening its database.
func findRepoRoot() string {
	start, exitCode := getRepoRoot()
	if exitCode != 0 {
		os.Exit(exitCode)
	}
	root, err := config.FindRepository(start)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	return root
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/pubdb/internal/reference"
)

func init() {
	journalsCmd.AddCommand(journalsListCmd)
	journalsCmd.AddCommand(journalsDeleteCmd)
	rootCmd.AddCommand(journalsCmd)
}

var journalsCmd = &cobra.Command{
	Use:   "journals",
	Short: "Inspect and maintain journals",
}

var journalsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List journals",
	Args:  cobra.NoArgs,
	RunE:  runJournalsList,
}

var journalsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a journal",
	Long:  `Delete a journal. Articles that referenced it keep their journal name.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalsDelete,
}

func runJournalsList(cmd *cobra.Command, args []string) error {
	r := openRepo()
	defer r.Close()

	journals, err := r.db.ListJournals()
	if err != nil {
		r.Close()
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		if len(journals) == 0 {
			fmt.Println("No journals")
			return nil
		}
		for _, j := range journals {
			if j.Publisher != "" {
				fmt.Printf("%4d  %s (%s)\n", j.ID, j.Name, j.Publisher)
			} else {
				fmt.Printf("%4d  %s\n", j.ID, j.Name)
			}
		}
		return nil
	}
	if journals == nil {
		journals = []reference.Journal{}
	}
	outputJSON(journals)
	return nil
}

func runJournalsDelete(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	r := openRepo()
	defer r.Close()

	j, err := r.db.GetJournal(ids[0])
	if err != nil {
		r.Close()
		exitWithError(ExitError, "loading journal %d: %v", ids[0], err)
	}
	if j == nil {
		r.Close()
		exitWithError(ExitDataError, "journal not found: %d", ids[0])
	}

	if err := r.db.DeleteJournal(j.ID); err != nil {
		r.Close()
		exitWithError(ExitError, "%v", err)
	}
	r.log.Info("deleted journal", "id", j.ID, "name", j.Name)

	if humanOutput {
		fmt.Printf("Deleted journal %d (%s)\n", j.ID, j.Name)
	} else {
		outputJSON(DeleteResponse{Status: "deleted", ID: j.ID})
	}
	return nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(deleteCmd)
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a publication and its authorship links",
	Long: `Delete a publication and its authorship links. Its authors and journal
are kept.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	r := openRepo()
	defer r.Close()

	pub, err := r.db.GetPublication(ids[0])
	if err != nil {
		r.Close()
		exitWithError(ExitError, "loading publication %d: %v", ids[0], err)
	}
	if pub == nil {
		r.Close()
		exitWithError(ExitDataError, "publication not found: %d", ids[0])
	}

	if err := r.db.DeletePublication(ids[0]); err != nil {
		r.Close()
		exitWithError(ExitError, "%v", err)
	}
	r.log.Info("deleted publication", "id", ids[0])

	if humanOutput {
		fmt.Printf("Deleted publication %d\n", ids[0])
	} else {
		outputJSON(DeleteResponse{Status: "deleted", ID: ids[0]})
	}
	return nil
}

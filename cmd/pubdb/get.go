package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/pubdb/internal/export"
	"github.com/matsen/pubdb/internal/storage"
)

func init() {
	rootCmd.AddCommand(getCmd)
}

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a publication",
	Long:  `Show a publication with its ranked authors and, for articles, its journal.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	r := openRepo()
	defer r.Close()

	e, err := export.NewExporter(r.db).Load(ids[0])
	if err != nil {
		r.Close()
		if errors.Is(err, storage.ErrNotFound) {
			exitWithError(ExitDataError, "publication not found: %d", ids[0])
		}
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		printPublicationHuman(e)
		return nil
	}
	outputJSON(PublicationDetail{Publication: e.Publication, Authors: e.Authors, Journal: e.Journal})
	return nil
}

func printPublicationHuman(e export.Entry) {
	p := e.Publication
	fmt.Printf("%d  %s\n", p.ID, p.Title)
	fmt.Printf("%s\n", strings.Repeat("─", 60))
	fmt.Printf("Kind:     %s (%s)\n", p.Kind(), p.Category)
	fmt.Printf("Authors:  %s\n", strings.Join(fullNames(e.Authors), ", "))
	if p.Date.Year > 0 {
		fmt.Printf("Date:     %04d-%02d-%02d\n", p.Date.Year, p.Date.Month, p.Date.Day)
	}
	if e.Journal != nil {
		fmt.Printf("Journal:  %s\n", e.Journal.Name)
	}
	if p.DOI != "" {
		fmt.Printf("DOI:      %s\n", p.DOI)
	}
	if p.PDFPath != "" {
		fmt.Printf("PDF:      %s\n", p.PDFPath)
	}
}

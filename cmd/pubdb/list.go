package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/pubdb/internal/reference"
)

var (
	listTitle string
	listLimit int
)

func init() {
	listCmd.Flags().StringVar(&listTitle, "title", "", "Only publications with exactly this title")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Maximum number of publications (0 for all)")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List publications",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	r := openRepo()
	defer r.Close()

	var pubs []reference.Publication
	var err error
	if listTitle != "" {
		pubs, err = r.db.FindPublicationsByTitle(listTitle)
	} else {
		pubs, err = r.db.ListPublications()
	}
	if err != nil {
		r.Close()
		exitWithError(ExitError, "listing publications: %v", err)
	}
	if listLimit > 0 && len(pubs) > listLimit {
		pubs = pubs[:listLimit]
	}

	summaries := make([]PublicationSummary, 0, len(pubs))
	shortAuthors := make([]string, 0, len(pubs))
	for i := range pubs {
		p := &pubs[i]
		authors, err := r.db.AuthorsOfPublication(p.ID)
		if err != nil {
			r.Close()
			exitWithError(ExitError, "loading authors of publication %d: %v", p.ID, err)
		}
		summaries = append(summaries, PublicationSummary{
			ID:       p.ID,
			Kind:     string(p.Kind()),
			Category: string(p.Category),
			Title:    p.Title,
			Year:     p.Date.Year,
			Authors:  fullNames(authors),
		})
		shortAuthors = append(shortAuthors, formatAuthorsShort(authors, 3))
	}

	if humanOutput {
		if len(summaries) == 0 {
			fmt.Println("No publications")
			return nil
		}
		for i, s := range summaries {
			fmt.Printf("%4d  %-50s  %s (%d)\n", s.ID, truncateString(s.Title, ListTitleMaxLen), shortAuthors[i], s.Year)
		}
		return nil
	}
	outputJSON(summaries)
	return nil
}

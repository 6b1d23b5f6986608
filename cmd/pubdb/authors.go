package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/pubdb/internal/author"
	"github.com/matsen/pubdb/internal/reference"
)

var similarThreshold float32

func init() {
	authorsSimilarCmd.Flags().Float32Var(&similarThreshold, "threshold", author.DefaultSimilarityThreshold, "Minimum Jaro-Winkler similarity (0-1)")
	authorsCmd.AddCommand(authorsListCmd)
	authorsCmd.AddCommand(authorsSimilarCmd)
	authorsCmd.AddCommand(authorsDeleteCmd)
	rootCmd.AddCommand(authorsCmd)
}

var authorsCmd = &cobra.Command{
	Use:   "authors",
	Short: "Inspect and maintain authors",
}

var authorsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List authors",
	Args:  cobra.NoArgs,
	RunE:  runAuthorsList,
}

var authorsSimilarCmd = &cobra.Command{
	Use:   "similar",
	Short: "Report pairs of authors with near-identical names",
	Long: `Report pairs of distinct authors whose names are close under
Jaro-Winkler similarity but were not merged on import, for example
"Jon Doe" and "John Doe".`,
	Args: cobra.NoArgs,
	RunE: runAuthorsSimilar,
}

var authorsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an author and its authorship links",
	Long: `Delete an author. Its links are removed and the ranks of the remaining
authors of each affected publication are closed up.`,
	Args: cobra.ExactArgs(1),
	RunE: runAuthorsDelete,
}

// AuthorSummary is an author row in list output.
type AuthorSummary struct {
	reference.Author
	Publications int `json:"publications"`
}

func runAuthorsList(cmd *cobra.Command, args []string) error {
	r := openRepo()
	defer r.Close()

	authors, err := r.db.ListAuthors()
	if err != nil {
		r.Close()
		exitWithError(ExitError, "listing authors: %v", err)
	}

	summaries := make([]AuthorSummary, 0, len(authors))
	for _, a := range authors {
		links, err := r.db.AuthorshipsByAuthor(a.ID)
		if err != nil {
			r.Close()
			exitWithError(ExitError, "loading authorships of author %d: %v", a.ID, err)
		}
		summaries = append(summaries, AuthorSummary{Author: a, Publications: len(links)})
	}

	if humanOutput {
		if len(summaries) == 0 {
			fmt.Println("No authors")
			return nil
		}
		for _, s := range summaries {
			fmt.Printf("%4d  %-40s  %d publications\n", s.ID, s.FullName(), s.Publications)
		}
		return nil
	}
	outputJSON(summaries)
	return nil
}

func runAuthorsSimilar(cmd *cobra.Command, args []string) error {
	if similarThreshold <= 0 || similarThreshold > 1 {
		exitWithError(ExitError, "threshold must be in (0, 1], got %v", similarThreshold)
	}

	r := openRepo()
	defer r.Close()

	authors, err := r.db.ListAuthors()
	if err != nil {
		r.Close()
		exitWithError(ExitError, "listing authors: %v", err)
	}

	pairs, err := author.FindSimilar(authors, similarThreshold)
	if err != nil {
		r.Close()
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		if len(pairs) == 0 {
			fmt.Println("No similar authors")
			return nil
		}
		for _, p := range pairs {
			fmt.Printf("[%.2f] %d %s  ~  %d %s\n", p.Score, p.A.ID, p.A.FullName(), p.B.ID, p.B.FullName())
		}
		return nil
	}
	if pairs == nil {
		pairs = []author.SimilarPair{}
	}
	outputJSON(pairs)
	return nil
}

func runAuthorsDelete(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	r := openRepo()
	defer r.Close()

	a, err := r.db.GetAuthor(ids[0])
	if err != nil {
		r.Close()
		exitWithError(ExitError, "loading author %d: %v", ids[0], err)
	}
	if a == nil {
		r.Close()
		exitWithError(ExitDataError, "author not found: %d", ids[0])
	}

	if err := r.db.DeleteAuthor(a.ID); err != nil {
		r.Close()
		exitWithError(ExitError, "%v", err)
	}
	r.log.Info("deleted author", "id", a.ID, "name", a.FullName())

	if humanOutput {
		fmt.Printf("Deleted author %d (%s)\n", a.ID, a.FullName())
	} else {
		outputJSON(DeleteResponse{Status: "deleted", ID: a.ID})
	}
	return nil
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/pubdb/internal/authorship"
	"github.com/matsen/pubdb/internal/reference"
)

func init() {
	authorsCmd.AddCommand(authorsUnlinkCmd)
	authorsCmd.AddCommand(authorsReorderCmd)
	authorsCmd.AddCommand(authorsCheckCmd)
}

var authorsUnlinkCmd = &cobra.Command{
	Use:   "unlink <publication-id> <author-id>",
	Short: "Remove an author from a publication",
	Long: `Remove an author from a publication. The ranks of the authors after it
move up by one. The last author of a publication cannot be removed.`,
	Args: cobra.ExactArgs(2),
	RunE: runAuthorsUnlink,
}

var authorsReorderCmd = &cobra.Command{
	Use:   "reorder <publication-id> <author-id>...",
	Short: "Set the author order of a publication",
	Long: `Set the author order of a publication. The author ids must be exactly
the publication's current authors, in the new order.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAuthorsReorder,
}

var authorsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that every publication has contiguous author ranks",
	Args:  cobra.NoArgs,
	RunE:  runAuthorsCheck,
}

// LinksResponse is the author order of one publication after a change.
type LinksResponse struct {
	PublicationID int64   `json:"publication_id"`
	AuthorIDs     []int64 `json:"author_ids"`
}

// RankProblem is a publication whose authorships break the rank invariant.
type RankProblem struct {
	PublicationID int64  `json:"publication_id"`
	Problem       string `json:"problem"`
}

func runAuthorsUnlink(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	pubID, authorID := ids[0], ids[1]

	r := openRepo()
	defer r.Close()

	links, err := r.db.AuthorshipsByPublication(pubID)
	if err != nil {
		r.Close()
		exitWithError(ExitError, "%v", err)
	}
	if !hasAuthor(links, authorID) {
		r.Close()
		exitWithError(ExitDataError, "author %d is not linked to publication %d", authorID, pubID)
	}
	if len(links) == 1 {
		r.Close()
		exitWithError(ExitDataError, "author %d is the only author of publication %d", authorID, pubID)
	}

	if err := authorship.NewRanker(r.db).Detach(pubID, authorID); err != nil {
		r.Close()
		exitWithError(ExitError, "%v", err)
	}
	r.log.Info("unlinked author", "publication", pubID, "author", authorID)

	return printLinks(r, pubID)
}

func runAuthorsReorder(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	pubID, order := ids[0], ids[1:]

	r := openRepo()
	defer r.Close()

	if err := authorship.NewRanker(r.db).Reorder(pubID, order); err != nil {
		r.Close()
		exitWithError(ExitDataError, "%v", err)
	}
	r.log.Info("reordered authors", "publication", pubID, "order", order)

	return printLinks(r, pubID)
}

func runAuthorsCheck(cmd *cobra.Command, args []string) error {
	r := openRepo()
	defer r.Close()

	pubs, err := r.db.ListPublications()
	if err != nil {
		r.Close()
		exitWithError(ExitError, "%v", err)
	}

	problems := []RankProblem{}
	for _, p := range pubs {
		links, err := r.db.AuthorshipsByPublication(p.ID)
		if err != nil {
			r.Close()
			exitWithError(ExitError, "%v", err)
		}
		if len(links) == 0 {
			problems = append(problems, RankProblem{PublicationID: p.ID, Problem: "no authors"})
			continue
		}
		if err := authorship.Validate(links); err != nil {
			problems = append(problems, RankProblem{PublicationID: p.ID, Problem: err.Error()})
		}
	}

	if humanOutput {
		if len(problems) == 0 {
			fmt.Printf("All %d publications have contiguous author ranks\n", len(pubs))
		}
		for _, p := range problems {
			fmt.Printf("%4d  %s\n", p.PublicationID, p.Problem)
		}
	} else {
		outputJSON(problems)
	}

	if len(problems) > 0 {
		r.Close()
		os.Exit(ExitDataError)
	}
	return nil
}

func hasAuthor(links []reference.Authorship, authorID int64) bool {
	for _, l := range links {
		if l.AuthorID == authorID {
			return true
		}
	}
	return false
}

// printLinks prints the author order of a publication.
func printLinks(r *repo, pubID int64) error {
	links, err := r.db.AuthorshipsByPublication(pubID)
	if err != nil {
		r.Close()
		exitWithError(ExitError, "%v", err)
	}
	resp := LinksResponse{PublicationID: pubID, AuthorIDs: make([]int64, len(links))}
	for i, l := range links {
		resp.AuthorIDs[i] = l.AuthorID
	}

	if humanOutput {
		fmt.Printf("Publication %d authors: %v\n", pubID, resp.AuthorIDs)
	} else {
		outputJSON(resp)
	}
	return nil
}

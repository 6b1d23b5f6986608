package author

import (
	"strings"

	"github.com/matsen/pubdb/internal/reference"
)

// Directory is an in-memory reconciliation index over known authors.
//
// It is built once per import batch and updated with Add whenever an author
// is created, so authors created by earlier entries of a batch are matched
// by later ones. A Directory is not safe for concurrent use.
type Directory struct {
	authors []reference.Author
	// exact maps the case-folded "first\x00last" key to an index in authors.
	exact map[string]int
}

// NewDirectory indexes the given authors. Earlier authors win ties.
func NewDirectory(authors []reference.Author) *Directory {
	d := &Directory{
		authors: make([]reference.Author, 0, len(authors)),
		exact:   make(map[string]int, len(authors)),
	}
	for _, a := range authors {
		d.Add(a)
	}
	return d
}

// Add indexes a newly created author.
func (d *Directory) Add(a reference.Author) {
	d.authors = append(d.authors, a)
	key := exactKey(a.First, a.Last)
	if _, exists := d.exact[key]; !exists {
		d.exact[key] = len(d.authors) - 1
	}
}

// Len returns the number of indexed authors.
func (d *Directory) Len() int {
	return len(d.authors)
}

// Resolve finds the known author matching n. Rules are tried in priority
// order across all authors: an exact match anywhere beats a swapped match
// on an earlier author.
func (d *Directory) Resolve(n Name) (reference.Author, Rule, bool) {
	if i, ok := d.exact[exactKey(n.First, n.Last)]; ok {
		return d.authors[i], RuleExact, true
	}
	if i, ok := d.exact[exactKey(n.Last, n.First)]; ok {
		return d.authors[i], RuleSwapped, true
	}

	for _, r := range []Rule{RuleAbbreviated, RuleAbbreviatedSwapped} {
		for _, a := range d.authors {
			if n.Satisfies(r, a) {
				return a, r, true
			}
		}
	}
	return reference.Author{}, NoMatch, false
}

func exactKey(first, last string) string {
	return strings.ToLower(first) + "\x00" + strings.ToLower(last)
}

// Package authorship maintains the ordered author lists of publications.
//
// Ranks of the links of one publication always form the contiguous sequence
// 0..n-1 in declared author order.
package authorship

import (
	"fmt"
	"sort"

	"github.com/matsen/pubdb/internal/reference"
)

// Store is the persistence the ranker needs.
type Store interface {
	AuthorshipsByPublication(pubID int64) ([]reference.Authorship, error)
	AuthorshipsByAuthor(authorID int64) ([]reference.Authorship, error)
	InsertAuthorship(link reference.Authorship) error
	DeleteAuthorship(pubID, authorID int64) error
	// DetachAuthorship atomically deletes the link at rank and moves the
	// higher ranks of pubID down by one.
	DetachAuthorship(pubID, authorID int64, rank int) error
	// SetAuthorshipRanks atomically gives authorIDs[i] rank i on pubID.
	SetAuthorshipRanks(pubID int64, authorIDs []int64) error
}

// Ranker creates and removes authorship links.
type Ranker struct {
	store Store
}

// NewRanker creates a ranker backed by store.
func NewRanker(store Store) *Ranker {
	return &Ranker{store: store}
}

// Attach links an author to a publication at the next free rank.
//
// When the author is already linked to the publication the existing link is
// returned with created == false, so an author listed twice in one entry
// keeps a single rank.
func (r *Ranker) Attach(pubID, authorID int64) (link reference.Authorship, created bool, err error) {
	pubLinks, err := r.store.AuthorshipsByPublication(pubID)
	if err != nil {
		return reference.Authorship{}, false, fmt.Errorf("loading authorships of publication %d: %w", pubID, err)
	}
	authorLinks, err := r.store.AuthorshipsByAuthor(authorID)
	if err != nil {
		return reference.Authorship{}, false, fmt.Errorf("loading authorships of author %d: %w", authorID, err)
	}

	if existing, ok := intersect(authorLinks, pubLinks); ok {
		return existing, false, nil
	}

	link = reference.Authorship{
		PublicationID: pubID,
		AuthorID:      authorID,
		Rank:          len(pubLinks),
	}
	if err := r.store.InsertAuthorship(link); err != nil {
		return reference.Authorship{}, false, fmt.Errorf("inserting authorship: %w", err)
	}
	return link, true, nil
}

// Detach removes a link and closes the gap it leaves in the ranks.
// Detaching a link that does not exist is a no-op.
func (r *Ranker) Detach(pubID, authorID int64) error {
	links, err := r.store.AuthorshipsByPublication(pubID)
	if err != nil {
		return fmt.Errorf("loading authorships of publication %d: %w", pubID, err)
	}

	rank := -1
	for _, l := range links {
		if l.AuthorID == authorID {
			rank = l.Rank
			break
		}
	}
	if rank < 0 {
		return nil
	}

	if err := r.store.DetachAuthorship(pubID, authorID, rank); err != nil {
		return fmt.Errorf("detaching author %d from publication %d: %w", authorID, pubID, err)
	}
	return nil
}

// Reorder assigns ranks 0..n-1 following authorIDs. The list must name
// exactly the authors currently linked to the publication.
func (r *Ranker) Reorder(pubID int64, authorIDs []int64) error {
	links, err := r.store.AuthorshipsByPublication(pubID)
	if err != nil {
		return fmt.Errorf("loading authorships of publication %d: %w", pubID, err)
	}
	if len(links) != len(authorIDs) {
		return fmt.Errorf("publication %d has %d authors, got %d in new order", pubID, len(links), len(authorIDs))
	}

	linked := make(map[int64]bool, len(links))
	for _, l := range links {
		linked[l.AuthorID] = true
	}
	for _, id := range authorIDs {
		if !linked[id] {
			return fmt.Errorf("author %d is not linked to publication %d", id, pubID)
		}
		delete(linked, id)
	}

	if err := r.store.SetAuthorshipRanks(pubID, authorIDs); err != nil {
		return fmt.Errorf("reordering authors of publication %d: %w", pubID, err)
	}
	return nil
}

// Validate checks that the links of one publication have the ranks 0..n-1
// with no gaps or repeats.
func Validate(links []reference.Authorship) error {
	ranks := make([]int, len(links))
	for i, l := range links {
		ranks[i] = l.Rank
	}
	sort.Ints(ranks)
	for i, rank := range ranks {
		if rank != i {
			return fmt.Errorf("ranks %v are not contiguous from 0", ranks)
		}
	}
	return nil
}

// intersect returns the link of authorLinks that also belongs to pubLinks.
func intersect(authorLinks, pubLinks []reference.Authorship) (reference.Authorship, bool) {
	onPub := make(map[int64]bool, len(pubLinks))
	for _, l := range pubLinks {
		onPub[l.PublicationID] = true
	}
	for _, l := range authorLinks {
		if onPub[l.PublicationID] {
			return l, true
		}
	}
	return reference.Authorship{}, false
}

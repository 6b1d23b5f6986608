package reference

import "time"

// UnknownBirthDate is the sentinel stored for authors created by import.
var UnknownBirthDate = time.Unix(0, 0).UTC()

// Author represents a person who can be linked to publications.
type Author struct {
	ID        int64     `json:"id"`
	First     string    `json:"first"` // First/given name(s)
	Last      string    `json:"last"`  // Last/family name
	BirthDate time.Time `json:"birth_date"`
	Email     string    `json:"email,omitempty"`
	HasPage   bool      `json:"has_page"` // Author has a personal page
}

// FullName returns "First Last", or just Last when First is empty.
func (a Author) FullName() string {
	if a.First == "" {
		return a.Last
	}
	return a.First + " " + a.Last
}

// Journal is a periodical that articles are published in.
type Journal struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Publisher string `json:"publisher,omitempty"`
}

// Authorship links an author to a publication at a 0-based rank.
type Authorship struct {
	PublicationID int64 `json:"publication_id"`
	AuthorID      int64 `json:"author_id"`
	Rank          int   `json:"rank"`
}

package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/matsen/pubdb/internal/reference"
)

func TestSaveAuthor_DefaultsBirthDate(t *testing.T) {
	db := setupTestDB(t)

	a := &reference.Author{First: "Marie", Last: "Curie"}
	if err := db.SaveAuthor(a); err != nil {
		t.Fatalf("SaveAuthor() error = %v", err)
	}
	if a.ID == 0 {
		t.Fatal("SaveAuthor() did not assign an ID")
	}

	got, err := db.GetAuthor(a.ID)
	if err != nil {
		t.Fatalf("GetAuthor() error = %v", err)
	}
	if got.First != "Marie" || got.Last != "Curie" {
		t.Errorf("GetAuthor() = %+v", got)
	}
	if !got.BirthDate.Equal(reference.UnknownBirthDate) {
		t.Errorf("BirthDate = %v, want %v", got.BirthDate, reference.UnknownBirthDate)
	}
	if got.HasPage {
		t.Error("HasPage should default to false")
	}
}

func TestSaveAuthor_Update(t *testing.T) {
	db := setupTestDB(t)

	a := &reference.Author{First: "Ada", Last: "Lovelace"}
	db.SaveAuthor(a)

	a.Email = "ada@example.org"
	a.HasPage = true
	a.BirthDate = time.Date(1815, 12, 10, 0, 0, 0, 0, time.UTC)
	if err := db.SaveAuthor(a); err != nil {
		t.Fatalf("SaveAuthor() update error = %v", err)
	}

	got, _ := db.GetAuthor(a.ID)
	if got.Email != a.Email || !got.HasPage || !got.BirthDate.Equal(a.BirthDate) {
		t.Errorf("after update got %+v", got)
	}

	ghost := &reference.Author{ID: 77, Last: "Ghost"}
	if err := db.SaveAuthor(ghost); !errors.Is(err, ErrNotFound) {
		t.Errorf("updating missing author error = %v, want ErrNotFound", err)
	}
}

func TestListAuthors_CreationOrder(t *testing.T) {
	db := setupTestDB(t)

	for _, last := range []string{"Zeta", "Alpha", "Mu"} {
		db.SaveAuthor(&reference.Author{Last: last})
	}

	authors, err := db.ListAuthors()
	if err != nil {
		t.Fatalf("ListAuthors() error = %v", err)
	}
	want := []string{"Zeta", "Alpha", "Mu"}
	if len(authors) != len(want) {
		t.Fatalf("ListAuthors() = %d authors, want %d", len(authors), len(want))
	}
	for i, a := range authors {
		if a.Last != want[i] {
			t.Errorf("authors[%d] = %q, want %q", i, a.Last, want[i])
		}
	}
}

func TestAuthorsOfPublication_RankOrder(t *testing.T) {
	db := setupTestDB(t)

	pub := newArticle("Ranked")
	db.SavePublication(pub)

	var ids []int64
	for _, last := range []string{"First", "Second", "Third"} {
		a := &reference.Author{Last: last}
		db.SaveAuthor(a)
		ids = append(ids, a.ID)
	}
	// Insert out of order; ranks decide the result order.
	db.InsertAuthorship(reference.Authorship{PublicationID: pub.ID, AuthorID: ids[2], Rank: 2})
	db.InsertAuthorship(reference.Authorship{PublicationID: pub.ID, AuthorID: ids[0], Rank: 0})
	db.InsertAuthorship(reference.Authorship{PublicationID: pub.ID, AuthorID: ids[1], Rank: 1})

	authors, err := db.AuthorsOfPublication(pub.ID)
	if err != nil {
		t.Fatalf("AuthorsOfPublication() error = %v", err)
	}
	if len(authors) != 3 || authors[0].Last != "First" || authors[2].Last != "Third" {
		t.Errorf("AuthorsOfPublication() = %+v", authors)
	}
}

func TestDeleteAuthor_CompactsRanks(t *testing.T) {
	db := setupTestDB(t)

	pub := newArticle("Shared")
	db.SavePublication(pub)

	var ids []int64
	for i, last := range []string{"A", "B", "C"} {
		a := &reference.Author{Last: last}
		db.SaveAuthor(a)
		ids = append(ids, a.ID)
		db.InsertAuthorship(reference.Authorship{PublicationID: pub.ID, AuthorID: a.ID, Rank: i})
	}

	if err := db.DeleteAuthor(ids[0]); err != nil {
		t.Fatalf("DeleteAuthor() error = %v", err)
	}

	links, err := db.AuthorshipsByPublication(pub.ID)
	if err != nil {
		t.Fatalf("AuthorshipsByPublication() error = %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("links = %d, want 2", len(links))
	}
	if links[0].AuthorID != ids[1] || links[0].Rank != 0 || links[1].AuthorID != ids[2] || links[1].Rank != 1 {
		t.Errorf("links after delete = %+v", links)
	}
	if got, _ := db.GetAuthor(ids[0]); got != nil {
		t.Error("author still present after delete")
	}
}

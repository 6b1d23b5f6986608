package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/matsen/pubdb/internal/reference"
)

const selectAuthorFields = `id, first_name, last_name, birth_date, email, has_page`

// SaveAuthor inserts a new author (ID 0) and sets its ID, or updates an
// existing one.
func (d *DB) SaveAuthor(a *reference.Author) error {
	birth := a.BirthDate
	if birth.IsZero() {
		birth = reference.UnknownBirthDate
	}
	birthText := birth.UTC().Format(time.RFC3339)

	if a.ID == 0 {
		res, err := d.db.Exec(`
			INSERT INTO authors (first_name, last_name, birth_date, email, has_page)
			VALUES (?, ?, ?, ?, ?)
		`, a.First, a.Last, birthText, nullableStringValue(a.Email), a.HasPage)
		if err != nil {
			return fmt.Errorf("inserting author: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading author id: %w", err)
		}
		a.ID = id
		a.BirthDate = birth
		return nil
	}

	res, err := d.db.Exec(`
		UPDATE authors SET first_name = ?, last_name = ?, birth_date = ?, email = ?, has_page = ?
		WHERE id = ?
	`, a.First, a.Last, birthText, nullableStringValue(a.Email), a.HasPage, a.ID)
	if err != nil {
		return fmt.Errorf("updating author %d: %w", a.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("updating author %d: %w", a.ID, ErrNotFound)
	}
	return nil
}

// GetAuthor retrieves an author by ID. Returns nil if not found.
func (d *DB) GetAuthor(id int64) (*reference.Author, error) {
	row := d.db.QueryRow(`SELECT `+selectAuthorFields+` FROM authors WHERE id = ?`, id)
	return scanAuthor(row)
}

// ListAuthors returns all authors in creation order.
func (d *DB) ListAuthors() ([]reference.Author, error) {
	rows, err := d.db.Query(`SELECT ` + selectAuthorFields + ` FROM authors ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing authors: %w", err)
	}
	defer rows.Close()

	return scanAuthors(rows)
}

// AuthorsOfPublication returns the authors of a publication in rank order.
func (d *DB) AuthorsOfPublication(pubID int64) ([]reference.Author, error) {
	rows, err := d.db.Query(`
		SELECT a.id, a.first_name, a.last_name, a.birth_date, a.email, a.has_page
		FROM authors a
		JOIN authorships s ON s.author_id = a.id
		WHERE s.publication_id = ?
		ORDER BY s.author_rank
	`, pubID)
	if err != nil {
		return nil, fmt.Errorf("querying authors of publication %d: %w", pubID, err)
	}
	defer rows.Close()

	return scanAuthors(rows)
}

// DeleteAuthor removes an author, its authorships, and closes the rank gaps
// this leaves in the affected publications.
func (d *DB) DeleteAuthor(id int64) error {
	return d.inTx(func(tx *sql.Tx) error {
		rows, err := tx.Query(`SELECT publication_id, author_rank FROM authorships WHERE author_id = ?`, id)
		if err != nil {
			return fmt.Errorf("loading authorships of author %d: %w", id, err)
		}
		var links []reference.Authorship
		for rows.Next() {
			l := reference.Authorship{AuthorID: id}
			if err := rows.Scan(&l.PublicationID, &l.Rank); err != nil {
				rows.Close()
				return err
			}
			links = append(links, l)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, l := range links {
			if _, err := tx.Exec(`DELETE FROM authorships WHERE publication_id = ? AND author_id = ?`, l.PublicationID, id); err != nil {
				return fmt.Errorf("deleting authorship: %w", err)
			}
			if _, err := tx.Exec(`
				UPDATE authorships SET author_rank = author_rank - 1
				WHERE publication_id = ? AND author_rank > ?
			`, l.PublicationID, l.Rank); err != nil {
				return fmt.Errorf("compacting ranks of publication %d: %w", l.PublicationID, err)
			}
		}

		if _, err := tx.Exec(`DELETE FROM authors WHERE id = ?`, id); err != nil {
			return fmt.Errorf("deleting author %d: %w", id, err)
		}
		return nil
	})
}

func scanAuthor(s scanner) (*reference.Author, error) {
	var a reference.Author
	var birthText string
	var email sql.NullString

	if err := s.Scan(&a.ID, &a.First, &a.Last, &birthText, &email, &a.HasPage); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	birth, err := time.Parse(time.RFC3339, birthText)
	if err != nil {
		return nil, fmt.Errorf("parsing birth date of author %d: %w", a.ID, err)
	}
	a.BirthDate = birth
	a.Email = email.String
	return &a, nil
}

func scanAuthors(rows *sql.Rows) ([]reference.Author, error) {
	var authors []reference.Author
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, err
		}
		if a != nil {
			authors = append(authors, *a)
		}
	}
	return authors, rows.Err()
}

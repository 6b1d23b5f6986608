package storage

import (
	"database/sql"
	"fmt"

	"github.com/matsen/pubdb/internal/reference"
)

// AuthorshipsByPublication returns the links of a publication in rank order.
func (d *DB) AuthorshipsByPublication(pubID int64) ([]reference.Authorship, error) {
	rows, err := d.db.Query(`
		SELECT publication_id, author_id, author_rank FROM authorships
		WHERE publication_id = ?
		ORDER BY author_rank
	`, pubID)
	if err != nil {
		return nil, fmt.Errorf("querying authorships of publication %d: %w", pubID, err)
	}
	defer rows.Close()

	return scanAuthorships(rows)
}

// AuthorshipsByAuthor returns the links of an author ordered by publication.
func (d *DB) AuthorshipsByAuthor(authorID int64) ([]reference.Authorship, error) {
	rows, err := d.db.Query(`
		SELECT publication_id, author_id, author_rank FROM authorships
		WHERE author_id = ?
		ORDER BY publication_id
	`, authorID)
	if err != nil {
		return nil, fmt.Errorf("querying authorships of author %d: %w", authorID, err)
	}
	defer rows.Close()

	return scanAuthorships(rows)
}

// InsertAuthorship stores a new link.
func (d *DB) InsertAuthorship(link reference.Authorship) error {
	_, err := d.db.Exec(`
		INSERT INTO authorships (publication_id, author_id, author_rank) VALUES (?, ?, ?)
	`, link.PublicationID, link.AuthorID, link.Rank)
	if err != nil {
		return fmt.Errorf("inserting authorship (%d, %d): %w", link.PublicationID, link.AuthorID, err)
	}
	return nil
}

// DeleteAuthorship removes a single link without touching other ranks.
func (d *DB) DeleteAuthorship(pubID, authorID int64) error {
	_, err := d.db.Exec(`DELETE FROM authorships WHERE publication_id = ? AND author_id = ?`, pubID, authorID)
	if err != nil {
		return fmt.Errorf("deleting authorship (%d, %d): %w", pubID, authorID, err)
	}
	return nil
}

// DetachAuthorship removes the link of authorID at rank and moves every
// higher rank of pubID down by one, in a single transaction.
func (d *DB) DetachAuthorship(pubID, authorID int64, rank int) error {
	return d.inTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(`
			DELETE FROM authorships WHERE publication_id = ? AND author_id = ? AND author_rank = ?
		`, pubID, authorID, rank)
		if err != nil {
			return fmt.Errorf("deleting authorship (%d, %d): %w", pubID, authorID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("deleting authorship (%d, %d) at rank %d: %w", pubID, authorID, rank, ErrNotFound)
		}
		if _, err := tx.Exec(`
			UPDATE authorships SET author_rank = author_rank - 1
			WHERE publication_id = ? AND author_rank > ?
		`, pubID, rank); err != nil {
			return fmt.Errorf("compacting ranks of publication %d: %w", pubID, err)
		}
		return nil
	})
}

// SetAuthorshipRanks gives authorIDs[i] rank i on pubID, in a single
// transaction. A missing link aborts the whole update with ErrNotFound.
func (d *DB) SetAuthorshipRanks(pubID int64, authorIDs []int64) error {
	return d.inTx(func(tx *sql.Tx) error {
		for rank, authorID := range authorIDs {
			res, err := tx.Exec(`
				UPDATE authorships SET author_rank = ? WHERE publication_id = ? AND author_id = ?
			`, rank, pubID, authorID)
			if err != nil {
				return fmt.Errorf("setting rank of (%d, %d): %w", pubID, authorID, err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return fmt.Errorf("setting rank of (%d, %d): %w", pubID, authorID, ErrNotFound)
			}
		}
		return nil
	})
}

// CountAuthorships returns the total number of links.
func (d *DB) CountAuthorships() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM authorships").Scan(&count)
	return count, err
}

func scanAuthorships(rows *sql.Rows) ([]reference.Authorship, error) {
	var links []reference.Authorship
	for rows.Next() {
		var l reference.Authorship
		if err := rows.Scan(&l.PublicationID, &l.AuthorID, &l.Rank); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

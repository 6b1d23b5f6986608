package storage

import (
	"database/sql"
	"fmt"

	"github.com/matsen/pubdb/internal/reference"
)

// SaveJournal inserts a new journal (ID 0) and sets its ID, or updates an
// existing one.
func (d *DB) SaveJournal(j *reference.Journal) error {
	if j.ID == 0 {
		res, err := d.db.Exec(`INSERT INTO journals (name, publisher) VALUES (?, ?)`,
			j.Name, nullableStringValue(j.Publisher))
		if err != nil {
			return fmt.Errorf("inserting journal: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading journal id: %w", err)
		}
		j.ID = id
		return nil
	}

	res, err := d.db.Exec(`UPDATE journals SET name = ?, publisher = ? WHERE id = ?`,
		j.Name, nullableStringValue(j.Publisher), j.ID)
	if err != nil {
		return fmt.Errorf("updating journal %d: %w", j.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("updating journal %d: %w", j.ID, ErrNotFound)
	}
	return nil
}

// GetJournal retrieves a journal by ID. Returns nil if not found.
func (d *DB) GetJournal(id int64) (*reference.Journal, error) {
	row := d.db.QueryRow(`SELECT id, name, publisher FROM journals WHERE id = ?`, id)
	return scanJournal(row)
}

// FindJournalByName returns the oldest journal whose name is exactly name,
// or nil if there is none.
func (d *DB) FindJournalByName(name string) (*reference.Journal, error) {
	row := d.db.QueryRow(`SELECT id, name, publisher FROM journals WHERE name = ? ORDER BY id LIMIT 1`, name)
	return scanJournal(row)
}

// ListJournals returns all journals ordered by ID.
func (d *DB) ListJournals() ([]reference.Journal, error) {
	rows, err := d.db.Query(`SELECT id, name, publisher FROM journals ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing journals: %w", err)
	}
	defer rows.Close()

	var journals []reference.Journal
	for rows.Next() {
		j, err := scanJournal(rows)
		if err != nil {
			return nil, err
		}
		journals = append(journals, *j)
	}
	return journals, rows.Err()
}

// DeleteJournal removes a journal. Articles that referenced it keep their
// journal name but lose the link.
func (d *DB) DeleteJournal(id int64) error {
	return d.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`UPDATE publications SET journal_id = NULL WHERE journal_id = ?`, id); err != nil {
			return fmt.Errorf("unlinking journal %d: %w", id, err)
		}
		if _, err := tx.Exec(`DELETE FROM journals WHERE id = ?`, id); err != nil {
			return fmt.Errorf("deleting journal %d: %w", id, err)
		}
		return nil
	})
}

func scanJournal(s scanner) (*reference.Journal, error) {
	var j reference.Journal
	var publisher sql.NullString
	if err := s.Scan(&j.ID, &j.Name, &publisher); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	j.Publisher = publisher.String
	return &j, nil
}

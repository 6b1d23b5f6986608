package storage

import (
	"database/sql"
	"fmt"

	"github.com/matsen/pubdb/internal/reference"
)

// selectPublicationFields contains the standard field list for SELECT queries.
const selectPublicationFields = `id, kind, category, title, abstract, keywords,
	pub_year, pub_month, pub_day,
	note, annotations, isbn, issn, doi, url, dblp,
	pdf_path, language, award_path, journal_id, details_json`

// SavePublication inserts a draft (ID 0) and sets its ID, or updates an
// existing publication.
func (d *DB) SavePublication(p *reference.Publication) error {
	if p.Details == nil {
		return fmt.Errorf("publication %q has no details", p.Title)
	}
	detailsJSON, err := reference.MarshalDetails(p.Details)
	if err != nil {
		return fmt.Errorf("marshaling details: %w", err)
	}

	var journalID int64
	if art, ok := p.Details.(*reference.Article); ok {
		journalID = art.JournalID
	}

	args := []interface{}{
		string(p.Kind()), string(p.Category), p.Title,
		nullableStringValue(p.Abstract), nullableStringValue(p.Keywords),
		nullableInt(p.Date.Year), nullableInt(p.Date.Month), nullableInt(p.Date.Day),
		nullableStringValue(p.Note), nullableStringValue(p.Annotations),
		nullableStringValue(p.ISBN), nullableStringValue(p.ISSN),
		nullableStringValue(p.DOI), nullableStringValue(p.URL), nullableStringValue(p.DBLP),
		nullableStringValue(p.PDFPath), nullableStringValue(p.Language), nullableStringValue(p.AwardPath),
		nullableID(journalID), string(detailsJSON),
	}

	if p.ID == 0 {
		res, err := d.db.Exec(`
			INSERT INTO publications (
				kind, category, title, abstract, keywords,
				pub_year, pub_month, pub_day,
				note, annotations, isbn, issn, doi, url, dblp,
				pdf_path, language, award_path, journal_id, details_json
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, args...)
		if err != nil {
			return fmt.Errorf("inserting publication: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading publication id: %w", err)
		}
		p.ID = id
		return nil
	}

	res, err := d.db.Exec(`
		UPDATE publications SET
			kind = ?, category = ?, title = ?, abstract = ?, keywords = ?,
			pub_year = ?, pub_month = ?, pub_day = ?,
			note = ?, annotations = ?, isbn = ?, issn = ?, doi = ?, url = ?, dblp = ?,
			pdf_path = ?, language = ?, award_path = ?, journal_id = ?, details_json = ?
		WHERE id = ?
	`, append(args, p.ID)...)
	if err != nil {
		return fmt.Errorf("updating publication %d: %w", p.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("updating publication %d: %w", p.ID, ErrNotFound)
	}
	return nil
}

// GetPublication retrieves a publication by its ID. Returns nil if not found.
func (d *DB) GetPublication(id int64) (*reference.Publication, error) {
	row := d.db.QueryRow(`SELECT `+selectPublicationFields+` FROM publications WHERE id = ?`, id)
	return scanPublication(row)
}

// ListPublications returns all publications ordered by ID.
func (d *DB) ListPublications() ([]reference.Publication, error) {
	rows, err := d.db.Query(`SELECT ` + selectPublicationFields + ` FROM publications ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing publications: %w", err)
	}
	defer rows.Close()

	return scanPublications(rows)
}

// FindPublicationsByTitle returns the publications whose title is exactly title.
func (d *DB) FindPublicationsByTitle(title string) ([]reference.Publication, error) {
	rows, err := d.db.Query(`SELECT `+selectPublicationFields+` FROM publications WHERE title = ? ORDER BY id`, title)
	if err != nil {
		return nil, fmt.Errorf("finding publications by title: %w", err)
	}
	defer rows.Close()

	return scanPublications(rows)
}

// ListTitles returns the titles of all stored publications.
func (d *DB) ListTitles() ([]string, error) {
	rows, err := d.db.Query(`SELECT title FROM publications`)
	if err != nil {
		return nil, fmt.Errorf("listing titles: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, err
		}
		titles = append(titles, title)
	}
	return titles, rows.Err()
}

// DeletePublication removes a publication together with its authorships.
// Deleting a missing publication is not an error.
func (d *DB) DeletePublication(id int64) error {
	return d.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM authorships WHERE publication_id = ?`, id); err != nil {
			return fmt.Errorf("deleting authorships of publication %d: %w", id, err)
		}
		if _, err := tx.Exec(`DELETE FROM publications WHERE id = ?`, id); err != nil {
			return fmt.Errorf("deleting publication %d: %w", id, err)
		}
		return nil
	})
}

// CountPublications returns the total number of publications.
func (d *DB) CountPublications() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM publications").Scan(&count)
	return count, err
}

func scanPublication(s scanner) (*reference.Publication, error) {
	var p reference.Publication
	var kind, category, detailsJSON string
	var abstract, keywords, note, annotations sql.NullString
	var isbn, issn, doi, url, dblp, pdfPath, language, awardPath sql.NullString
	var year, month, day, journalID sql.NullInt64

	err := s.Scan(
		&p.ID, &kind, &category, &p.Title, &abstract, &keywords,
		&year, &month, &day,
		&note, &annotations, &isbn, &issn, &doi, &url, &dblp,
		&pdfPath, &language, &awardPath, &journalID, &detailsJSON,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	// Handle nullable fields
	p.Category = reference.Category(category)
	p.Abstract = abstract.String
	p.Keywords = keywords.String
	p.Note = note.String
	p.Annotations = annotations.String
	p.ISBN = isbn.String
	p.ISSN = issn.String
	p.DOI = doi.String
	p.URL = url.String
	p.DBLP = dblp.String
	p.PDFPath = pdfPath.String
	p.Language = language.String
	p.AwardPath = awardPath.String
	p.Date = reference.PublicationDate{
		Year:  int(year.Int64),
		Month: int(month.Int64),
		Day:   int(day.Int64),
	}

	p.Details, err = reference.UnmarshalDetails(reference.Kind(kind), []byte(detailsJSON))
	if err != nil {
		return nil, fmt.Errorf("parsing details for publication %d: %w", p.ID, err)
	}
	// The column is authoritative for the journal link.
	if art, ok := p.Details.(*reference.Article); ok {
		art.JournalID = journalID.Int64
	}

	return &p, nil
}

func scanPublications(rows *sql.Rows) ([]reference.Publication, error) {
	var pubs []reference.Publication
	for rows.Next() {
		p, err := scanPublication(rows)
		if err != nil {
			return nil, err
		}
		if p != nil {
			pubs = append(pubs, *p)
		}
	}
	return pubs, rows.Err()
}

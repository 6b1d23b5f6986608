// Package reference defines the core domain types for stored publications.
package reference

import "unicode/utf8"

// MaxTitleLen and MaxKeywordsLen bound the stored length (in runes) of the
// title and keywords columns. Longer values are truncated, never rejected.
const (
	MaxTitleLen    = 255
	MaxKeywordsLen = 255
)

// Publication represents a stored bibliographic record.
// A Publication with ID 0 is a draft that has not been persisted yet.
type Publication struct {
	// Identity
	ID int64 `json:"id"`

	// Metadata
	Title       string          `json:"title"`
	Abstract    string          `json:"abstract,omitempty"`
	Keywords    string          `json:"keywords,omitempty"`
	Date        PublicationDate `json:"date"`
	Note        string          `json:"note,omitempty"`
	Annotations string          `json:"annotations,omitempty"`
	Language    string          `json:"language,omitempty"`

	// External Identifiers
	ISBN string `json:"isbn,omitempty"`
	ISSN string `json:"issn,omitempty"`
	DOI  string `json:"doi,omitempty"`
	URL  string `json:"url,omitempty"`
	DBLP string `json:"dblp,omitempty"`

	// File Paths (opaque, never opened by the store)
	PDFPath   string `json:"pdf_path,omitempty"`
	AwardPath string `json:"award_path,omitempty"`

	// Classification
	Category Category `json:"category"`
	Details  Details  `json:"details"`
}

// PublicationDate represents a publication date. Day is 2 for every record
// built from BibTeX.
type PublicationDate struct {
	Year  int `json:"year"`
	Month int `json:"month,omitempty"` // 1-12, 0 if unknown
	Day   int `json:"day,omitempty"`
}

// IsZero reports whether no year is known.
func (d PublicationDate) IsZero() bool {
	return d.Year == 0
}

// Kind returns the subtype of the publication, or KindUnknown for a
// publication without details.
func (p *Publication) Kind() Kind {
	if p.Details == nil {
		return KindUnknown
	}
	return p.Details.Kind()
}

// SetTitle stores the title, truncated to MaxTitleLen runes.
func (p *Publication) SetTitle(title string) {
	p.Title = Truncate(title, MaxTitleLen)
}

// SetKeywords stores the keywords, truncated to MaxKeywordsLen runes.
func (p *Publication) SetKeywords(keywords string) {
	p.Keywords = Truncate(keywords, MaxKeywordsLen)
}

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

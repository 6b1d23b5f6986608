package export

import (
	"fmt"

	"github.com/matsen/pubdb/internal/reference"
	"github.com/matsen/pubdb/internal/storage"
)

// Format names an output format.
type Format string

const (
	FormatBibTeX Format = "bibtex"
	FormatHTML   Format = "html"
	FormatWoS    Format = "wos"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatBibTeX, FormatHTML, FormatWoS:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q (valid: bibtex, html, wos)", s)
}

// Render renders one entry in format f.
func Render(e Entry, f Format) string {
	switch f {
	case FormatHTML:
		return ToHTML(e)
	case FormatWoS:
		return ToWoS(e)
	}
	return ToBibTeX(e)
}

// RenderList renders entries in format f.
func RenderList(entries []Entry, f Format) string {
	switch f {
	case FormatHTML:
		return ToHTMLList(entries)
	case FormatWoS:
		return ""
	}
	return ToBibTeXList(entries)
}

// Store is the read side of the publication store.
type Store interface {
	GetPublication(id int64) (*reference.Publication, error)
	ListPublications() ([]reference.Publication, error)
	AuthorsOfPublication(pubID int64) ([]reference.Author, error)
	GetJournal(id int64) (*reference.Journal, error)
}

// Exporter loads publications from a store for rendering.
type Exporter struct {
	store Store
}

// NewExporter creates an exporter backed by store.
func NewExporter(store Store) *Exporter {
	return &Exporter{store: store}
}

// Load returns the entry for a publication id. A missing publication
// yields an error wrapping storage.ErrNotFound.
func (x *Exporter) Load(id int64) (Entry, error) {
	pub, err := x.store.GetPublication(id)
	if err != nil {
		return Entry{}, fmt.Errorf("loading publication %d: %w", id, err)
	}
	if pub == nil {
		return Entry{}, fmt.Errorf("publication %d: %w", id, storage.ErrNotFound)
	}
	return x.complete(*pub)
}

// LoadAll returns the entries of every publication ordered by id.
func (x *Exporter) LoadAll() ([]Entry, error) {
	pubs, err := x.store.ListPublications()
	if err != nil {
		return nil, fmt.Errorf("listing publications: %w", err)
	}
	entries := make([]Entry, 0, len(pubs))
	for _, p := range pubs {
		e, err := x.complete(p)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Export loads a publication and renders it in format f.
func (x *Exporter) Export(id int64, f Format) (string, error) {
	e, err := x.Load(id)
	if err != nil {
		return "", err
	}
	return Render(e, f), nil
}

// complete attaches the authors and journal of a publication.
func (x *Exporter) complete(pub reference.Publication) (Entry, error) {
	authors, err := x.store.AuthorsOfPublication(pub.ID)
	if err != nil {
		return Entry{}, fmt.Errorf("loading authors of publication %d: %w", pub.ID, err)
	}
	e := Entry{Publication: pub, Authors: authors}

	if art, ok := pub.Details.(*reference.Article); ok && art.JournalID != 0 {
		j, err := x.store.GetJournal(art.JournalID)
		if err != nil {
			return Entry{}, fmt.Errorf("loading journal %d: %w", art.JournalID, err)
		}
		e.Journal = j
	}
	return e, nil
}

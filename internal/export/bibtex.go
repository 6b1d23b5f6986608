// Package export renders stored publications as BibTeX, HTML and WoS text.
package export

import (
	"fmt"
	"strings"

	"github.com/matsen/pubdb/internal/bibtex"
	"github.com/matsen/pubdb/internal/reference"
)

// Entry is a publication together with its ranked authors and, for
// articles, its journal.
type Entry struct {
	Publication reference.Publication
	Authors     []reference.Author // rank order
	Journal     *reference.Journal // nil when unknown
}

// field is one `name = {value}` line.
type field struct {
	name  string
	value string
}

// ToBibTeX converts an entry to BibTeX format.
func ToBibTeX(e Entry) string {
	p := &e.Publication
	var b strings.Builder

	fmt.Fprintf(&b, "@%s{%s,\n", bibtex.TagFor(p.Kind()), CiteKey(e))

	fields := genericFields(p)
	fields = append(fields, subtypeFields(e)...)
	for _, f := range fields {
		if f.value != "" {
			writeField(&b, f.name, f.value)
		}
	}

	// Date
	if p.Date.Month > 0 {
		writeField(&b, "month", bibtex.MonthCode(p.Date.Month))
	}
	if p.Date.Year > 0 {
		writeField(&b, "year", fmt.Sprintf("%d", p.Date.Year))
	}

	writeField(&b, "title", p.Title)
	fmt.Fprintf(&b, "  author = {%s}\n", escapeLatex(formatAuthors(e.Authors)))
	b.WriteString("}\n")

	return b.String()
}

// ToBibTeXList converts multiple entries to BibTeX format.
func ToBibTeXList(entries []Entry) string {
	var out []string
	for _, e := range entries {
		out = append(out, ToBibTeX(e))
	}
	return strings.Join(out, "\n")
}

// CiteKey builds the citation key: author surnames concatenated without
// whitespace, the 4-digit year, then "_" and the publication id.
func CiteKey(e Entry) string {
	var b strings.Builder
	for _, a := range e.Authors {
		b.WriteString(strings.Join(strings.Fields(a.Last), ""))
	}
	fmt.Fprintf(&b, "%04d_%d", e.Publication.Date.Year, e.Publication.ID)
	return b.String()
}

// genericFields lists the fields shared by every kind, in output order.
func genericFields(p *reference.Publication) []field {
	return []field{
		{"abstract", p.Abstract},
		{"keywords", p.Keywords},
		{"note", p.Note},
		{"annotations", p.Annotations},
		{"isbn", p.ISBN},
		{"issn", p.ISSN},
		{"doi", p.DOI},
		{"url", p.URL},
		{"dblp", p.DBLP},
		{"pdf", p.PDFPath},
		{"language", p.Language},
		{"award", p.AwardPath},
	}
}

// subtypeFields lists the kind-specific fields, in output order.
func subtypeFields(e Entry) []field {
	switch d := e.Publication.Details.(type) {
	case *reference.Article:
		journal, publisher := d.Journal, ""
		if e.Journal != nil {
			journal, publisher = e.Journal.Name, e.Journal.Publisher
		}
		return []field{
			{"journal", journal},
			{"publisher", publisher},
			{"volume", d.Volume},
			{"number", d.Number},
			{"pages", d.Pages},
		}
	case *reference.Conference:
		return []field{
			{"booktitle", d.Proceedings},
			{"organization", d.Organization},
			{"address", d.Address},
			{"editor", d.Editor},
			{"publisher", d.Publisher},
			{"series", d.Series},
			{"pages", d.Pages},
		}
	case *reference.Book:
		return []field{
			{"editor", d.Editor},
			{"publisher", d.Publisher},
			{"series", d.Series},
			{"volume", d.Volume},
			{"edition", d.Edition},
			{"address", d.Address},
		}
	case *reference.BookChapter:
		return []field{
			{"booktitle", d.BookTitle},
			{"chapter", d.Chapter},
			{"pages", d.Pages},
			{"editor", d.Editor},
			{"publisher", d.Publisher},
			{"series", d.Series},
			{"edition", d.Edition},
			{"address", d.Address},
		}
	case *reference.Misc:
		return []field{{"howpublished", d.HowPublished}}
	case *reference.Manual:
		return []field{
			{"organization", d.Organization},
			{"address", d.Address},
			{"edition", d.Edition},
		}
	case *reference.TechReport:
		return []field{
			{"institution", d.Institution},
			{"type", d.ReportType},
			{"number", d.Number},
			{"address", d.Address},
		}
	case *reference.PhDThesis:
		return []field{{"school", d.School}, {"address", d.Address}}
	case *reference.MastersThesis:
		return []field{{"school", d.School}, {"address", d.Address}}
	}
	return nil
}

func writeField(b *strings.Builder, name, value string) {
	fmt.Fprintf(b, "  %s = {%s},\n", name, escapeLatex(value))
}

// formatAuthors formats authors in BibTeX style: "Last, First and Last, First"
func formatAuthors(authors []reference.Author) string {
	var formatted []string
	for _, a := range authors {
		if a.First != "" {
			formatted = append(formatted, fmt.Sprintf("%s, %s", a.Last, a.First))
		} else {
			formatted = append(formatted, a.Last)
		}
	}
	return strings.Join(formatted, " and ")
}

// latexEscaper undoes the two escapes the importer decodes besides accents.
var latexEscaper = strings.NewReplacer(
	"&", `\&`,
	"#", `{\string#}`,
)

// escapeLatex escapes the characters the importer reads back literally.
func escapeLatex(s string) string {
	return latexEscaper.Replace(s)
}

package export

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/matsen/pubdb/internal/reference"
)

// DOIResolver is prepended to bare DOIs to build a link.
const DOIResolver = "https://doi.org/"

// doiURLPrefixes are the prefixes of DOIs that are already links.
var doiURLPrefixes = []string{
	"https://doi.org/",
	"http://doi.org/",
	"https://dx.doi.org/",
	"http://dx.doi.org/",
}

var itemTemplate = template.Must(template.New("item").Parse(
	`<li>{{range $i, $a := .Authors}}{{if $i}}, {{end}}{{if $a.HasPage}}<u>{{$a.FullName}}</u>{{else}}{{$a.FullName}}{{end}}{{end}}. ` +
		`<i>{{.Title}}</i>.{{with .Description}} {{.}}.{{end}}` +
		`{{range .Links}} {{.Label}}: {{if .Href}}<a href="{{.Href}}">{{.Value}}</a>{{else}}{{.Value}}{{end}}.{{end}}</li>`,
))

type htmlLink struct {
	Label string
	Value string
	Href  string
}

type htmlItem struct {
	Authors     []reference.Author
	Title       string
	Description string
	Links       []htmlLink
}

// ToHTML renders an entry as an HTML list item. Authors with a personal
// page are underlined.
func ToHTML(e Entry) string {
	p := &e.Publication
	item := htmlItem{
		Authors:     e.Authors,
		Title:       p.Title,
		Description: describe(e),
		Links:       links(p),
	}

	var b strings.Builder
	if err := itemTemplate.Execute(&b, item); err != nil {
		// unreachable: the template is static
		panic(fmt.Sprintf("rendering html item: %v", err))
	}
	b.WriteString("\n")
	return b.String()
}

// ToHTMLList renders entries as an unordered list.
func ToHTMLList(entries []Entry) string {
	var b strings.Builder
	b.WriteString("<ul>\n")
	for _, e := range entries {
		b.WriteString(ToHTML(e))
	}
	b.WriteString("</ul>\n")
	return b.String()
}

// ToWoS renders an entry in Web of Science format. Not supported yet: the
// result is always empty.
func ToWoS(e Entry) string {
	return ""
}

// DOIURL returns a link for a DOI, keeping values that already are links.
func DOIURL(doi string) string {
	for _, prefix := range doiURLPrefixes {
		if strings.HasPrefix(doi, prefix) {
			return doi
		}
	}
	return DOIResolver + strings.TrimPrefix(strings.TrimPrefix(doi, "doi:"), "DOI:")
}

func links(p *reference.Publication) []htmlLink {
	var out []htmlLink
	if p.ISBN != "" {
		out = append(out, htmlLink{Label: "ISBN", Value: p.ISBN})
	}
	if p.ISSN != "" {
		out = append(out, htmlLink{Label: "ISSN", Value: p.ISSN})
	}
	if p.DOI != "" {
		out = append(out, htmlLink{Label: "DOI", Value: p.DOI, Href: DOIURL(p.DOI)})
	}
	return out
}

// describe builds the kind-specific part of an HTML item.
func describe(e Entry) string {
	p := &e.Publication
	date := formatDate(p.Date)

	switch d := p.Details.(type) {
	case *reference.Article:
		journal := d.Journal
		if e.Journal != nil {
			journal = e.Journal.Name
		}
		return joinParts(journal, prefixed("vol. ", d.Volume), prefixed("no. ", d.Number), prefixed("pp. ", d.Pages), date)
	case *reference.Conference:
		return joinParts(prefixed("In ", d.Proceedings), d.Organization, d.Address, prefixed("pp. ", d.Pages), date)
	case *reference.Book:
		return joinParts(prefixed("Ed. ", d.Editor), d.Publisher, d.Address, d.Series, prefixed("vol. ", d.Volume), suffixed(d.Edition, " ed."), date)
	case *reference.BookChapter:
		return joinParts(prefixed("In ", d.BookTitle), prefixed("ch. ", d.Chapter), prefixed("pp. ", d.Pages), d.Publisher, d.Address, date)
	case *reference.Misc:
		return joinParts(d.HowPublished, date)
	case *reference.Manual:
		return joinParts(d.Organization, d.Address, suffixed(d.Edition, " ed."), date)
	case *reference.TechReport:
		kind := d.ReportType
		if kind == "" {
			kind = "Technical report"
		}
		return joinParts(d.Institution, strings.TrimSpace(kind+" "+d.Number), d.Address, date)
	case *reference.PhDThesis:
		return joinParts("PhD thesis", d.School, d.Address, date)
	case *reference.MastersThesis:
		return joinParts("Master's thesis", d.School, d.Address, date)
	}
	return date
}

func formatDate(d reference.PublicationDate) string {
	if d.Year == 0 {
		return ""
	}
	if d.Month >= 1 && d.Month <= 12 {
		return fmt.Sprintf("%s %d", time.Month(d.Month), d.Year)
	}
	return fmt.Sprintf("%d", d.Year)
}

func prefixed(prefix, value string) string {
	if value == "" {
		return ""
	}
	return prefix + value
}

func suffixed(value, suffix string) string {
	if value == "" {
		return ""
	}
	return value + suffix
}

func joinParts(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

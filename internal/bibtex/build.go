package bibtex

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/matsen/pubdb/internal/reference"
)

// DraftDay is the day of month stored for every imported date.
const DraftDay = 2

var yearRegex = regexp.MustCompile(`\d{4}`)

// monthCodes holds the three-letter month codes, January first.
var monthCodes = [12]string{
	"jan", "feb", "mar", "apr", "may", "jun",
	"jul", "aug", "sep", "oct", "nov", "dec",
}

// Draft is a typed publication built from one entry, not yet persisted.
type Draft struct {
	Publication reference.Publication

	// Authors is the raw author field ("Last, First and Last, First").
	Authors    string
	HasAuthors bool

	// JournalPublisher is the publisher of an article's journal.
	JournalPublisher string
}

// Build classifies an entry and builds its draft.
// It returns ErrUnknownType for unsupported entry types.
func Build(entry RawEntry) (*Draft, error) {
	kind, ok := Classify(entry.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, entry.Type)
	}

	f := ParseFields(entry.Text)
	d := &Draft{}
	d.Authors, d.HasAuthors = f.Get("author")

	p := &d.Publication
	p.SetTitle(f.Value("title"))
	p.Abstract = f.Value("abstract")
	p.SetKeywords(f.Value("keywords"))
	p.Date = parseDate(f)
	p.Note = f.Value("note")
	p.Annotations = firstOf(f, "annotations", "annote")
	p.ISBN = f.Value("isbn")
	p.ISSN = f.Value("issn")
	p.DOI = f.Value("doi")
	p.URL = f.Value("url")
	p.DBLP = f.Value("dblp")
	p.PDFPath = f.Value("pdf")
	p.Language = f.Value("language")
	p.AwardPath = f.Value("award")
	p.Category = reference.DefaultCategory(kind)

	switch kind {
	case reference.KindArticle:
		p.Details = &reference.Article{
			Journal: f.Value("journal"),
			Volume:  f.Value("volume"),
			Number:  f.Value("number"),
			Pages:   f.Value("pages"),
		}
		d.JournalPublisher = f.Value("publisher")
	case reference.KindConference:
		p.Details = &reference.Conference{
			Proceedings:  f.Value("booktitle"),
			Organization: f.Value("organization"),
			Address:      f.Value("address"),
			Editor:       f.Value("editor"),
			Publisher:    f.Value("publisher"),
			Series:       f.Value("series"),
			Pages:        f.Value("pages"),
		}
	case reference.KindBook:
		p.Details = &reference.Book{
			Editor:    f.Value("editor"),
			Publisher: f.Value("publisher"),
			Series:    f.Value("series"),
			Volume:    f.Value("volume"),
			Edition:   f.Value("edition"),
			Address:   f.Value("address"),
		}
	case reference.KindBookChapter:
		p.Details = &reference.BookChapter{
			BookTitle: f.Value("booktitle"),
			Chapter:   f.Value("chapter"),
			Pages:     f.Value("pages"),
			Editor:    f.Value("editor"),
			Publisher: f.Value("publisher"),
			Series:    f.Value("series"),
			Edition:   f.Value("edition"),
			Address:   f.Value("address"),
		}
	case reference.KindMisc:
		p.Details = &reference.Misc{
			HowPublished: f.Value("howpublished"),
		}
	case reference.KindManual:
		p.Details = &reference.Manual{
			Organization: f.Value("organization"),
			Address:      f.Value("address"),
			Edition:      f.Value("edition"),
		}
	case reference.KindTechReport:
		p.Details = &reference.TechReport{
			Institution: f.Value("institution"),
			ReportType:  f.Value("type"),
			Number:      f.Value("number"),
			Address:     f.Value("address"),
		}
	case reference.KindPhDThesis:
		p.Details = &reference.PhDThesis{
			School:  f.Value("school"),
			Address: f.Value("address"),
		}
	case reference.KindMastersThesis:
		p.Details = &reference.MastersThesis{
			School:  f.Value("school"),
			Address: f.Value("address"),
		}
	}

	return d, nil
}

// parseDate builds the publication date from the year and month fields.
// A missing month defaults to January; the day is always DraftDay.
func parseDate(f Fields) reference.PublicationDate {
	year := yearRegex.FindString(f.Value("year"))
	if year == "" {
		return reference.PublicationDate{}
	}
	y, _ := strconv.Atoi(year)

	month := ParseMonth(f.Value("month"))
	if month == 0 {
		month = 1
	}
	return reference.PublicationDate{Year: y, Month: month, Day: DraftDay}
}

// ParseMonth accepts "3", "03", "mar" or "March" and returns 1-12, or 0.
func ParseMonth(s string) int {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 1 && n <= 12 {
			return n
		}
		return 0
	}
	if len(s) < 3 {
		return 0
	}
	for i, code := range monthCodes {
		if s[:3] == code {
			return i + 1
		}
	}
	return 0
}

// MonthCode returns the three-letter lowercase code of month m, or "".
func MonthCode(m int) string {
	if m < 1 || m > 12 {
		return ""
	}
	return monthCodes[m-1]
}

func firstOf(f Fields, names ...string) string {
	for _, name := range names {
		if v, ok := f.Get(name); ok {
			return v
		}
	}
	return ""
}

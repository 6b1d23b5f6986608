package export

import (
	"strings"
	"testing"

	"github.com/matsen/pubdb/internal/reference"
)

func articleEntry() Entry {
	return Entry{
		Publication: reference.Publication{
			ID:       12,
			Title:    "Test Paper Title",
			Abstract: "This is the abstract",
			DOI:      "10.1234/test",
			Date:     reference.PublicationDate{Year: 2026, Month: 3, Day: 2},
			Category: reference.CategoryACL,
			Details:  &reference.Article{JournalID: 4, Journal: "Nat.", Volume: "7", Pages: "1--9"},
		},
		Authors: []reference.Author{
			{ID: 1, First: "John", Last: "Smith"},
			{ID: 2, First: "Jane", Last: "van der Berg"},
		},
		Journal: &reference.Journal{ID: 4, Name: "Nature", Publisher: "NPG"},
	}
}

func TestToBibTeX_BasicArticle(t *testing.T) {
	got := ToBibTeX(articleEntry())

	want := `@Article{SmithvanderBerg2026_12,
  abstract = {This is the abstract},
  doi = {10.1234/test},
  journal = {Nature},
  publisher = {NPG},
  volume = {7},
  pages = {1--9},
  month = {mar},
  year = {2026},
  title = {Test Paper Title},
  author = {Smith, John and van der Berg, Jane}
}
`
	if got != want {
		t.Errorf("ToBibTeX() =\n%s\nwant:\n%s", got, want)
	}
}

func TestToBibTeX_JournalNameWithoutRecord(t *testing.T) {
	e := articleEntry()
	e.Journal = nil

	got := ToBibTeX(e)
	if !strings.Contains(got, "journal = {Nat.}") {
		t.Errorf("should fall back to the stored journal name, got:\n%s", got)
	}
	if strings.Contains(got, "publisher") {
		t.Errorf("no publisher expected without a journal record, got:\n%s", got)
	}
}

func TestToBibTeX_GenericFieldOrder(t *testing.T) {
	e := Entry{
		Publication: reference.Publication{
			ID:          1,
			Title:       "T",
			Abstract:    "abs",
			Keywords:    "kw",
			Note:        "n",
			Annotations: "ann",
			ISBN:        "isbn",
			ISSN:        "issn",
			DOI:         "doi",
			URL:         "url",
			DBLP:        "dblp",
			PDFPath:     "p.pdf",
			Language:    "en",
			AwardPath:   "award.pdf",
			Details:     &reference.Misc{HowPublished: "online"},
		},
		Authors: []reference.Author{{Last: "Plato"}},
	}

	got := ToBibTeX(e)
	order := []string{"abstract", "keywords", "note", "annotations", "isbn", "issn", "doi", "url", "dblp", "pdf", "language", "award", "howpublished", "title", "author"}
	last := -1
	for _, name := range order {
		i := strings.Index(got, "  "+name+" = {")
		if i < 0 {
			t.Fatalf("missing field %s in:\n%s", name, got)
		}
		if i < last {
			t.Errorf("field %s out of order in:\n%s", name, got)
		}
		last = i
	}
	if !strings.HasPrefix(got, "@Misc{Plato0000_1,\n") {
		t.Errorf("header = %q", strings.SplitN(got, "\n", 2)[0])
	}
	if strings.Contains(got, "year =") || strings.Contains(got, "month =") {
		t.Errorf("no date fields expected without a year, got:\n%s", got)
	}
	if !strings.Contains(got, "author = {Plato}\n}") {
		t.Errorf("single-name author not rendered, got:\n%s", got)
	}
}

func TestToBibTeX_SubtypeFields(t *testing.T) {
	tests := []struct {
		name    string
		details reference.Details
		tag     string
		fields  []string
	}{
		{"conference", &reference.Conference{Proceedings: "Proc", Organization: "Org", Pages: "3"}, "Inproceedings", []string{"booktitle = {Proc}", "organization = {Org}", "pages = {3}"}},
		{"book", &reference.Book{Editor: "Ed", Publisher: "Pub", Edition: "2"}, "Book", []string{"editor = {Ed}", "publisher = {Pub}", "edition = {2}"}},
		{"chapter", &reference.BookChapter{BookTitle: "Big Book", Chapter: "4"}, "Inbook", []string{"booktitle = {Big Book}", "chapter = {4}"}},
		{"manual", &reference.Manual{Organization: "ACME", Edition: "3"}, "Manual", []string{"organization = {ACME}", "edition = {3}"}},
		{"techreport", &reference.TechReport{Institution: "Lab", ReportType: "Memo", Number: "9"}, "Techreport", []string{"institution = {Lab}", "type = {Memo}", "number = {9}"}},
		{"phd", &reference.PhDThesis{School: "MIT"}, "Phdthesis", []string{"school = {MIT}"}},
		{"masters", &reference.MastersThesis{School: "ETH", Address: "Zurich"}, "Mastersthesis", []string{"school = {ETH}", "address = {Zurich}"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Entry{
				Publication: reference.Publication{ID: 5, Title: "T", Date: reference.PublicationDate{Year: 1999}, Details: tt.details},
				Authors:     []reference.Author{{First: "A", Last: "B"}},
			}
			got := ToBibTeX(e)
			if !strings.HasPrefix(got, "@"+tt.tag+"{B1999_5,") {
				t.Errorf("header of:\n%s\nwant tag %s", got, tt.tag)
			}
			last := -1
			for _, f := range tt.fields {
				i := strings.Index(got, f)
				if i < 0 {
					t.Errorf("missing %q in:\n%s", f, got)
				}
				if i < last {
					t.Errorf("%q out of order in:\n%s", f, got)
				}
				last = i
			}
		})
	}
}

func TestToBibTeX_Escaping(t *testing.T) {
	e := articleEntry()
	e.Publication.Title = "Cats & Dogs #1"

	got := ToBibTeX(e)
	if !strings.Contains(got, `title = {Cats \& Dogs {\string#}1}`) {
		t.Errorf("title not escaped, got:\n%s", got)
	}
}

func TestFormatAuthors(t *testing.T) {
	tests := []struct {
		name    string
		authors []reference.Author
		want    string
	}{
		{"none", nil, ""},
		{"single", []reference.Author{{First: "John", Last: "Smith"}}, "Smith, John"},
		{"no first", []reference.Author{{Last: "Plato"}}, "Plato"},
		{"two", []reference.Author{{First: "John", Last: "Smith"}, {First: "Jane", Last: "Doe"}}, "Smith, John and Doe, Jane"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatAuthors(tt.authors); got != tt.want {
				t.Errorf("formatAuthors() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestToBibTeXList(t *testing.T) {
	a := articleEntry()
	b := articleEntry()
	b.Publication.ID = 13

	got := ToBibTeXList([]Entry{a, b})
	if strings.Count(got, "@Article{") != 2 {
		t.Errorf("ToBibTeXList() should contain two entries, got:\n%s", got)
	}
	if ToBibTeXList(nil) != "" {
		t.Error("ToBibTeXList(nil) should be empty")
	}
}

package reference

import (
	"encoding/json"
	"fmt"
)

// Kind identifies one of the nine publication subtypes.
type Kind string

const (
	KindUnknown       Kind = ""
	KindArticle       Kind = "article"
	KindConference    Kind = "conference"
	KindBook          Kind = "book"
	KindBookChapter   Kind = "book_chapter"
	KindMisc          Kind = "misc"
	KindManual        Kind = "manual"
	KindTechReport    Kind = "tech_report"
	KindPhDThesis     Kind = "phd_thesis"
	KindMastersThesis Kind = "masters_thesis"
)

// Kinds lists every publication subtype in declaration order.
var Kinds = []Kind{
	KindArticle, KindConference, KindBook, KindBookChapter, KindMisc,
	KindManual, KindTechReport, KindPhDThesis, KindMastersThesis,
}

// Details holds the subtype-specific fields of a publication.
// The set of implementations is closed: only the types in this file satisfy it.
type Details interface {
	Kind() Kind
	details()
}

// Article is a journal article. JournalID is resolved by the importer;
// Journal carries the name as it appeared in the source.
type Article struct {
	JournalID int64  `json:"journal_id,omitempty"`
	Journal   string `json:"journal,omitempty"`
	Volume    string `json:"volume,omitempty"`
	Number    string `json:"number,omitempty"`
	Pages     string `json:"pages,omitempty"`
}

// Conference is a paper published in conference proceedings.
type Conference struct {
	Proceedings  string `json:"proceedings,omitempty"`
	Organization string `json:"organization,omitempty"`
	Address      string `json:"address,omitempty"`
	Editor       string `json:"editor,omitempty"`
	Publisher    string `json:"publisher,omitempty"`
	Series       string `json:"series,omitempty"`
	Pages        string `json:"pages,omitempty"`
}

// Book is a whole book.
type Book struct {
	Editor    string `json:"editor,omitempty"`
	Publisher string `json:"publisher,omitempty"`
	Series    string `json:"series,omitempty"`
	Volume    string `json:"volume,omitempty"`
	Edition   string `json:"edition,omitempty"`
	Address   string `json:"address,omitempty"`
}

// BookChapter is a part of a book.
type BookChapter struct {
	BookTitle string `json:"book_title,omitempty"`
	Chapter   string `json:"chapter,omitempty"`
	Pages     string `json:"pages,omitempty"`
	Editor    string `json:"editor,omitempty"`
	Publisher string `json:"publisher,omitempty"`
	Series    string `json:"series,omitempty"`
	Edition   string `json:"edition,omitempty"`
	Address   string `json:"address,omitempty"`
}

// Misc is anything that fits no other subtype.
type Misc struct {
	HowPublished string `json:"how_published,omitempty"`
}

// Manual is technical documentation.
type Manual struct {
	Organization string `json:"organization,omitempty"`
	Address      string `json:"address,omitempty"`
	Edition      string `json:"edition,omitempty"`
}

// TechReport is a report published by an institution.
type TechReport struct {
	Institution string `json:"institution,omitempty"`
	ReportType  string `json:"report_type,omitempty"`
	Number      string `json:"number,omitempty"`
	Address     string `json:"address,omitempty"`
}

// PhDThesis is a doctoral dissertation.
type PhDThesis struct {
	School  string `json:"school,omitempty"`
	Address string `json:"address,omitempty"`
}

// MastersThesis is a master's dissertation.
type MastersThesis struct {
	School  string `json:"school,omitempty"`
	Address string `json:"address,omitempty"`
}

func (*Article) Kind() Kind       { return KindArticle }
func (*Conference) Kind() Kind    { return KindConference }
func (*Book) Kind() Kind          { return KindBook }
func (*BookChapter) Kind() Kind   { return KindBookChapter }
func (*Misc) Kind() Kind          { return KindMisc }
func (*Manual) Kind() Kind        { return KindManual }
func (*TechReport) Kind() Kind    { return KindTechReport }
func (*PhDThesis) Kind() Kind     { return KindPhDThesis }
func (*MastersThesis) Kind() Kind { return KindMastersThesis }

func (*Article) details()       {}
func (*Conference) details()    {}
func (*Book) details()          {}
func (*BookChapter) details()   {}
func (*Misc) details()          {}
func (*Manual) details()        {}
func (*TechReport) details()    {}
func (*PhDThesis) details()     {}
func (*MastersThesis) details() {}

// NewDetails returns an empty Details value of the given kind.
func NewDetails(k Kind) (Details, error) {
	switch k {
	case KindArticle:
		return &Article{}, nil
	case KindConference:
		return &Conference{}, nil
	case KindBook:
		return &Book{}, nil
	case KindBookChapter:
		return &BookChapter{}, nil
	case KindMisc:
		return &Misc{}, nil
	case KindManual:
		return &Manual{}, nil
	case KindTechReport:
		return &TechReport{}, nil
	case KindPhDThesis:
		return &PhDThesis{}, nil
	case KindMastersThesis:
		return &MastersThesis{}, nil
	}
	return nil, fmt.Errorf("unknown publication kind %q", k)
}

// MarshalDetails encodes details as JSON for storage.
func MarshalDetails(d Details) ([]byte, error) {
	if d == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(d)
}

// UnmarshalDetails decodes stored JSON into a Details value of kind k.
func UnmarshalDetails(k Kind, data []byte) (Details, error) {
	d, err := NewDetails(k)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return d, nil
	}
	if err := json.Unmarshal(data, d); err != nil {
		return nil, fmt.Errorf("decoding %s details: %w", k, err)
	}
	return d, nil
}

package bibtex

import (
	"errors"
	"strings"

	"github.com/matsen/pubdb/internal/reference"
)

// ErrUnknownType is returned for entry types outside the nine supported ones.
// Callers ignore such entries rather than reporting them.
var ErrUnknownType = errors.New("unknown entry type")

// entryTypes maps capitalized BibTeX entry tags to publication kinds.
var entryTypes = []struct {
	Tag  string
	Kind reference.Kind
}{
	{"Article", reference.KindArticle},
	{"Inproceedings", reference.KindConference},
	{"Book", reference.KindBook},
	{"Inbook", reference.KindBookChapter},
	{"Misc", reference.KindMisc},
	{"Manual", reference.KindManual},
	{"Techreport", reference.KindTechReport},
	{"Phdthesis", reference.KindPhDThesis},
	{"Mastersthesis", reference.KindMastersThesis},
}

// Classify maps an entry tag such as "article" or "INPROCEEDINGS" to a kind.
func Classify(tag string) (reference.Kind, bool) {
	tag = Capitalize(strings.TrimSpace(tag))
	for _, et := range entryTypes {
		if et.Tag == tag {
			return et.Kind, true
		}
	}
	return reference.KindUnknown, false
}

// TagFor returns the capitalized BibTeX tag written for a kind.
func TagFor(k reference.Kind) string {
	for _, et := range entryTypes {
		if et.Kind == k {
			return et.Tag
		}
	}
	return "Misc"
}

// Capitalize upper-cases the first letter and lower-cases the rest.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

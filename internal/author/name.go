// Package author provides author name parsing and reconciliation against
// the authors already known to the store.
package author

import (
	"strings"
	"unicode"
)

// listSeparator separates authors inside a BibTeX author field.
const listSeparator = " and "

// Name is a parsed author name.
type Name struct {
	First string // First/given name(s), may be empty
	Last  string // Last/family name
}

// ParseList splits a BibTeX author field into names.
//
// Whitespace runs (including line breaks inside the field) count as a single
// space, so "Doe, John and\n  Roe, Jane" yields two names.
func ParseList(field string) []Name {
	field = strings.Join(strings.Fields(field), " ")
	if field == "" {
		return nil
	}

	var names []Name
	for _, token := range strings.Split(field, listSeparator) {
		if n := ParseName(token); n.Last != "" || n.First != "" {
			names = append(names, n)
		}
	}
	return names
}

// ParseName parses a single author token.
//
// Supported formats:
//   - "Doe, John"     → last="Doe", first="John" (first comma splits)
//   - "John Doe"      → first="John", last="Doe" (last whitespace run splits)
//   - "John M. Doe"   → first="John M.", last="Doe"
//   - "Plato"         → last="Plato"
//
// Escaped apostrophes (\') are stored as plain apostrophes.
func ParseName(token string) Name {
	token = strings.TrimSpace(strings.ReplaceAll(token, `\'`, "'"))
	if token == "" {
		return Name{}
	}

	if idx := strings.Index(token, ","); idx >= 0 {
		return Name{
			First: strings.TrimSpace(token[idx+1:]),
			Last:  strings.TrimSpace(token[:idx]),
		}
	}

	idx := strings.LastIndexFunc(token, unicode.IsSpace)
	if idx < 0 {
		return Name{Last: token}
	}
	return Name{
		First: strings.TrimSpace(token[:idx]),
		Last:  strings.TrimSpace(token[idx+1:]),
	}
}

// String returns "First Last".
func (n Name) String() string {
	if n.First == "" {
		return n.Last
	}
	return n.First + " " + n.Last
}

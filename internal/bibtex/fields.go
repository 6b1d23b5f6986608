package bibtex

import (
	"regexp"
	"strings"
)

// titleField is the internal name of the "title" field. Storing it under a
// distinct name keeps it apart from "booktitle" and every other *title key.
const titleField = "pubtitle"

var braceStripper = strings.NewReplacer("{", "", "}", "")

// Fields holds the field values of one entry, keyed by lowercase field name.
type Fields map[string]string

// Get returns the value of a field. A missing field is a soft miss, not an error.
func (f Fields) Get(name string) (string, bool) {
	v, ok := f[fieldKey(name)]
	return v, ok
}

// Value returns the value of a field, or "" when it is absent.
func (f Fields) Value(name string) string {
	return f[fieldKey(name)]
}

// Extract returns a single field of an entry.
func Extract(chunk, name string) (string, bool) {
	return ParseFields(chunk).Get(name)
}

// fieldKey maps a field name to its storage key.
func fieldKey(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "title" {
		return titleField
	}
	return name
}

// ParseFields scans the `key = value` pairs of an entry.
//
// Values may be brace-delimited, quoted, or bare (year = 2020,). Braces are
// stripped from the returned values. When a key repeats, the first wins.
func ParseFields(chunk string) Fields {
	fields := make(Fields)

	s := &fieldScanner{src: chunk}
	if !s.skipHeader() {
		return fields
	}

	for {
		s.skipSeparators()
		if s.done() || s.peek() == '}' {
			return fields
		}

		name := s.ident()
		if name == "" {
			// Not a field: drop the rest of the line.
			s.skipPast('\n')
			continue
		}

		s.skipSpace()
		if s.done() || s.peek() != '=' {
			s.skipPast('\n')
			continue
		}
		s.pos++
		s.skipSpace()

		value := s.value()
		key := fieldKey(name)
		if _, seen := fields[key]; !seen {
			fields[key] = strings.TrimSpace(braceStripper.Replace(value))
		}
	}
}

type fieldScanner struct {
	src string
	pos int
}

func (s *fieldScanner) done() bool { return s.pos >= len(s.src) }

func (s *fieldScanner) peek() byte { return s.src[s.pos] }

// skipHeader moves past "@type{key," and reports whether any fields follow.
func (s *fieldScanner) skipHeader() bool {
	open := strings.IndexByte(s.src, '{')
	if open < 0 {
		return false
	}
	comma := strings.IndexByte(s.src[open:], ',')
	if comma < 0 {
		return false
	}
	s.pos = open + comma + 1
	return true
}

func (s *fieldScanner) skipSpace() {
	for !s.done() && isSpace(s.peek()) {
		s.pos++
	}
}

func (s *fieldScanner) skipSeparators() {
	for !s.done() && (isSpace(s.peek()) || s.peek() == ',') {
		s.pos++
	}
}

func (s *fieldScanner) skipPast(c byte) {
	if i := strings.IndexByte(s.src[s.pos:], c); i >= 0 {
		s.pos += i + 1
		return
	}
	s.pos = len(s.src)
}

func (s *fieldScanner) ident() string {
	start := s.pos
	for !s.done() && isIdentByte(s.peek()) {
		s.pos++
	}
	return s.src[start:s.pos]
}

// value reads one field value starting at the current position.
func (s *fieldScanner) value() string {
	if s.done() {
		return ""
	}
	switch s.peek() {
	case '{':
		return s.bracedValue()
	case '"':
		return s.quotedValue()
	}
	return s.bareValue()
}

// bracedValue reads a {...} value. The value normally ends at its matching
// close brace. A stray inner "{" can make the braces balance only at the
// close of the entry (or never), so when a field assignment starts on a line
// between the first "}," (else "}\n") and the balanced close, the value ends
// at that terminator instead.
func (s *fieldScanner) bracedValue() string {
	start := s.pos + 1
	end := matchingBrace(s.src, s.pos)
	termAt, termLen := terminator(s.src[start:])

	if termAt >= 0 {
		termAt += start
		if end < 0 || (end > termAt && fieldStart.MatchString(s.src[termAt+termLen:end])) {
			s.pos = termAt + termLen
			return s.src[start:termAt]
		}
	}
	if end >= 0 {
		s.pos = end + 1
		return s.src[start:end]
	}

	s.pos = len(s.src)
	return strings.TrimSuffix(strings.TrimSpace(s.src[start:]), "}")
}

// fieldStart matches a `name =` assignment at the start of a line.
var fieldStart = regexp.MustCompile(`(?m)^[ \t]*[A-Za-z][A-Za-z0-9_:-]*[ \t]*=`)

// matchingBrace returns the index of the "}" closing the "{" at open, or -1.
func matchingBrace(src string, open int) int {
	depth := 0
	for i := open; i < len(src); i++ {
		switch src[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// terminator finds the first "}," in rest, else the first "}\n", and
// returns its index and length, or -1.
func terminator(rest string) (int, int) {
	for _, term := range []string{"},", "}\n"} {
		if i := strings.Index(rest, term); i >= 0 {
			return i, len(term)
		}
	}
	return -1, 0
}

func (s *fieldScanner) quotedValue() string {
	start := s.pos + 1
	for i := start; i < len(s.src); i++ {
		if s.src[i] == '"' && s.src[i-1] != '\\' {
			s.pos = i + 1
			return s.src[start:i]
		}
	}
	s.pos = len(s.src)
	return s.src[start:]
}

// bareValue reads an unbraced value such as `year = 2020,` up to the next comma.
func (s *fieldScanner) bareValue() string {
	start := s.pos
	for !s.done() {
		switch s.peek() {
		case ',', '\n', '}':
			return s.src[start:s.pos]
		}
		s.pos++
	}
	return s.src[start:]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isIdentByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-' || c == ':'
}

package bibtex

import (
	"regexp"
	"strings"
)

// entryBoundary separates entries: an "@" at the start of a line.
const entryBoundary = "\n@"

// entryHeaderRegex matches the entry header: @type{key,
var entryHeaderRegex = regexp.MustCompile(`^@\s*([A-Za-z]+)\s*\{`)

// RawEntry is the text of a single entry plus its type tag as written.
type RawEntry struct {
	Text string
	Type string
}

// Split cuts a multi-entry blob into one RawEntry per "@"-led line.
// Text before the first entry is discarded. An "@" inside a field value
// is only a boundary when it starts a line.
func Split(text string) []RawEntry {
	chunks := strings.Split("\n"+text, entryBoundary)
	if len(chunks) < 2 {
		return nil
	}

	entries := make([]RawEntry, 0, len(chunks)-1)
	for _, chunk := range chunks[1:] {
		chunk = "@" + chunk
		entries = append(entries, RawEntry{
			Text: chunk,
			Type: entryType(chunk),
		})
	}
	return entries
}

// entryType returns the type tag of an entry, or "" if the header is malformed.
func entryType(chunk string) string {
	if m := entryHeaderRegex.FindStringSubmatch(chunk); len(m) > 1 {
		return m[1]
	}
	return ""
}

package export

import (
	"os"
	"regexp"
	"strings"

	"github.com/matsen/pubdb/internal/bibtex"
)

// citeKeyRegex matches the key of an entry header: @type{key,
var citeKeyRegex = regexp.MustCompile(`^@\s*\w+\s*\{\s*([^,\s]+)\s*,`)

// BibIndex indexes the entries of an existing .bib file.
type BibIndex struct {
	// Keys maps citation keys to true for existence check
	Keys map[string]bool
	// DOIs maps normalized DOI values to citation keys
	DOIs map[string]string
}

// NewBibIndex creates an empty index.
func NewBibIndex() *BibIndex {
	return &BibIndex{
		Keys: make(map[string]bool),
		DOIs: make(map[string]string),
	}
}

// HasEntry returns true if the entry already exists (by DOI or key).
// DOI is the primary match; citation key is the fallback if no DOI.
func (idx *BibIndex) HasEntry(key, doi string) bool {
	if doi != "" {
		if _, exists := idx.DOIs[normalizeDOI(doi)]; exists {
			return true
		}
	}
	return idx.Keys[key]
}

// Add records an entry in the index.
func (idx *BibIndex) Add(key, doi string) {
	idx.Keys[key] = true
	if d := normalizeDOI(doi); d != "" {
		idx.DOIs[d] = key
	}
}

// ReadBibIndex builds an index from an existing .bib file.
// Returns an empty index if the file doesn't exist.
func ReadBibIndex(path string) (*BibIndex, error) {
	idx := NewBibIndex()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, err
	}

	for _, entry := range bibtex.Split(string(data)) {
		m := citeKeyRegex.FindStringSubmatch(entry.Text)
		if len(m) < 2 {
			continue
		}
		doi, _ := bibtex.Extract(entry.Text, "doi")
		idx.Add(m[1], doi)
	}
	return idx, nil
}

// normalizeDOI normalizes a DOI for comparison.
// Removes resolver and "doi:" prefixes and lowercases.
func normalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	for _, prefix := range doiURLPrefixes {
		doi = strings.TrimPrefix(doi, prefix)
	}
	doi = strings.TrimPrefix(doi, "doi.org/")
	doi = strings.TrimPrefix(doi, "DOI:")
	doi = strings.TrimPrefix(doi, "doi:")
	return strings.ToLower(doi)
}

// AppendNew appends to a .bib file the entries it does not already hold,
// matching by DOI then by citation key. It returns how many were written.
func AppendNew(path string, entries []Entry) (int, error) {
	idx, err := ReadBibIndex(path)
	if err != nil {
		return 0, err
	}

	var fresh []Entry
	for _, e := range entries {
		key := CiteKey(e)
		if idx.HasEntry(key, e.Publication.DOI) {
			continue
		}
		idx.Add(key, e.Publication.DOI)
		fresh = append(fresh, e)
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	if err := appendToBibFile(path, ToBibTeXList(fresh)); err != nil {
		return 0, err
	}
	return len(fresh), nil
}

// appendToBibFile appends BibTeX content to a file.
func appendToBibFile(path, content string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	// Ensure we start on a new line
	_, err = file.WriteString("\n" + content)
	return err
}

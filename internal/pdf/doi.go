// Package pdf reads DOIs out of publication PDFs.
package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DOI pattern: 10.XXXX/... where XXXX is 4+ digits
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// DOIPages is how many leading pages are searched for a DOI.
const DOIPages = 3

// ExtractDOI extracts a DOI from a PDF file.
// It searches the first few pages for DOI patterns and returns "" when
// none is found.
func ExtractDOI(filePath string) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", filePath, err)
	}
	defer f.Close()

	maxPages := DOIPages
	if r.NumPage() < maxPages {
		maxPages = r.NumPage()
	}

	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		if doi := FindDOI(text); doi != "" {
			return doi, nil
		}
	}

	return "", nil
}

// FindDOI returns the first plausible DOI in text, or "".
func FindDOI(text string) string {
	for _, match := range doiPattern.FindAllString(text, -1) {
		match = strings.TrimRight(match, ".,;:)")
		if isValidDOI(match) {
			return match
		}
	}
	return ""
}

// isValidDOI performs basic validation on a DOI.
func isValidDOI(doi string) bool {
	if len(doi) < 10 {
		return false
	}
	if !strings.HasPrefix(doi, "10.") {
		return false
	}
	slashIdx := strings.Index(doi, "/")
	if slashIdx == -1 || slashIdx >= len(doi)-1 {
		return false
	}
	return true
}

// Backfiller looks up DOIs for the pdf paths recorded on publications.
// Relative paths resolve against Root.
type Backfiller struct {
	Root string
}

// NewBackfiller creates a backfiller rooted at root.
func NewBackfiller(root string) *Backfiller {
	return &Backfiller{Root: root}
}

// Resolve turns a stored pdf path into a file path that exists.
func (b *Backfiller) Resolve(pdfPath string) (string, error) {
	if pdfPath == "" {
		return "", fmt.Errorf("no PDF path specified")
	}
	fullPath := pdfPath
	if !filepath.IsAbs(pdfPath) {
		if b.Root == "" {
			return "", fmt.Errorf("pdf_root not configured")
		}
		fullPath = filepath.Join(b.Root, pdfPath)
	}

	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("PDF not found: %s", fullPath)
		}
		return "", fmt.Errorf("checking PDF: %w", err)
	}
	return fullPath, nil
}

// DOIFor resolves pdfPath and extracts a DOI from it.
func (b *Backfiller) DOIFor(pdfPath string) (string, error) {
	fullPath, err := b.Resolve(pdfPath)
	if err != nil {
		return "", err
	}
	return ExtractDOI(fullPath)
}

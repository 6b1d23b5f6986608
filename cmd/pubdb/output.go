package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/matsen/pubdb/internal/reference"
)

// Truncation lengths by context
const (
	ImportErrorMaxLen = 60 // Used in import failure summaries
	ListTitleMaxLen   = 50 // Used in list command output
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError writes an error message to stderr and returns the exit code.
func outputError(code int, format string, args ...interface{}) int {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	return code
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ImportResponse is the response for the import command.
type ImportResponse struct {
	Imported   int             `json:"imported"`
	IDs        []int64         `json:"ids"`
	Duplicates int             `json:"duplicates"`
	Ignored    int             `json:"ignored"`
	Failed     int             `json:"failed"`
	Failures   []FailureResult `json:"failures,omitempty"`
}

// FailureResult summarizes one entry that was rolled back.
type FailureResult struct {
	Index int    `json:"index"`
	Stage string `json:"stage"`
	Type  string `json:"type,omitempty"`
	Error string `json:"error"`
}

// PublicationSummary is a publication row in list output.
type PublicationSummary struct {
	ID       int64    `json:"id"`
	Kind     string   `json:"kind"`
	Category string   `json:"category"`
	Title    string   `json:"title"`
	Year     int      `json:"year,omitempty"`
	Authors  []string `json:"authors"`
}

// PublicationDetail is a publication with its ranked authors and journal.
type PublicationDetail struct {
	reference.Publication
	Authors []reference.Author `json:"authors"`
	Journal *reference.Journal `json:"journal,omitempty"`
}

// DeleteResponse is the response for delete commands.
type DeleteResponse struct {
	Status string `json:"status"`
	ID     int64  `json:"id"`
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// formatAuthorShort formats an author as "Last F" (abbreviated first name).
func formatAuthorShort(a reference.Author) string {
	if a.First != "" {
		return a.Last + " " + string([]rune(a.First)[0])
	}
	return a.Last
}

// formatAuthorsShort formats authors with abbreviation and "et al." for more than maxCount.
func formatAuthorsShort(authors []reference.Author, maxCount int) string {
	if len(authors) == 0 {
		return ""
	}

	var names []string
	for i, a := range authors {
		if i >= maxCount {
			names = append(names, "et al.")
			break
		}
		names = append(names, formatAuthorShort(a))
	}
	return strings.Join(names, ", ")
}

// fullNames returns the full names of authors in order.
func fullNames(authors []reference.Author) []string {
	names := make([]string, len(authors))
	for i, a := range authors {
		names[i] = a.FullName()
	}
	return names
}

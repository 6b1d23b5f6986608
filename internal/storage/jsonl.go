package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// FailureRecord describes one BibTeX entry that could not be imported.
type FailureRecord struct {
	Time  time.Time `json:"time"`
	Index int       `json:"index"`
	Stage string    `json:"stage"`
	Type  string    `json:"type,omitempty"`
	Error string    `json:"error"`
	Raw   string    `json:"raw"`
}

// ReadFailures reads all failure records from a JSONL file.
// A missing file yields no records.
func ReadFailures(path string) ([]FailureRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening failure log: %w", err)
	}
	defer f.Close()

	var records []FailureRecord
	scanner := bufio.NewScanner(f)

	// Raw entries can carry long abstracts
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec FailureRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading failure log: %w", err)
	}

	return records, nil
}

// AppendFailure adds a record to the end of a JSONL file, creating it if needed.
func AppendFailure(path string, rec FailureRecord) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening failure log for append: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding failure record: %w", err)
	}
	data = append(data, '\n')

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing failure record: %w", err)
	}
	return nil
}

// ClearFailures truncates the failure log.
func ClearFailures(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing failure log: %w", err)
	}
	return nil
}

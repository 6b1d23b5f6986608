package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAppendAndReadFailures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "failures.jsonl")

	recs := []FailureRecord{
		{Time: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), Index: 0, Stage: "authors", Type: "Article", Error: "no authors", Raw: "@Article{k,\n title = {X}\n}"},
		{Time: time.Date(2024, 1, 2, 3, 4, 6, 0, time.UTC), Index: 3, Stage: "commit", Error: "disk full", Raw: "@Book{b, title={Y}}"},
	}
	for _, rec := range recs {
		if err := AppendFailure(path, rec); err != nil {
			t.Fatalf("AppendFailure() error = %v", err)
		}
	}

	got, err := ReadFailures(path)
	if err != nil {
		t.Fatalf("ReadFailures() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ReadFailures() = %d records, want 2", len(got))
	}
	if got[0].Raw != recs[0].Raw || got[0].Stage != "authors" || !got[0].Time.Equal(recs[0].Time) {
		t.Errorf("got[0] = %+v, want %+v", got[0], recs[0])
	}
	if got[1].Index != 3 || got[1].Type != "" {
		t.Errorf("got[1] = %+v", got[1])
	}
}

func TestReadFailures_Missing(t *testing.T) {
	got, err := ReadFailures(filepath.Join(t.TempDir(), "none.jsonl"))
	if err != nil {
		t.Fatalf("ReadFailures() error = %v", err)
	}
	if got != nil {
		t.Errorf("ReadFailures() = %v, want nil", got)
	}
}

func TestReadFailures_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.jsonl")
	os.WriteFile(path, []byte("{\"index\": 1}\n\nnot json\n"), 0644)

	if _, err := ReadFailures(path); err == nil {
		t.Error("expected error for malformed line")
	}
}

func TestClearFailures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "failures.jsonl")
	AppendFailure(path, FailureRecord{Error: "x"})

	if err := ClearFailures(path); err != nil {
		t.Fatalf("ClearFailures() error = %v", err)
	}
	if got, _ := ReadFailures(path); len(got) != 0 {
		t.Errorf("records after clear = %d", len(got))
	}
	if err := ClearFailures(path); err != nil {
		t.Errorf("clearing a missing log error = %v", err)
	}
}

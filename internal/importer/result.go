package importer

import (
	"errors"
	"fmt"
)

// ErrNoAuthors is returned when an entry ends up with no authorship links.
var ErrNoAuthors = errors.New("publication has no authors")

// Stage is the position of an entry in the import state machine.
type Stage string

const (
	StagePending         Stage = "pending"
	StageTypeClassified  Stage = "type_classified"
	StageAuthorsAttached Stage = "authors_attached"
	StageCommitted       Stage = "committed"
)

// Outcome is how an entry left the pipeline.
type Outcome int

const (
	OutcomeCommitted Outcome = iota
	OutcomeDuplicate         // identical title already stored
	OutcomeIgnored           // unsupported entry type
	OutcomeFailed            // rolled back
)

var outcomeNames = map[Outcome]string{
	OutcomeCommitted: "committed",
	OutcomeDuplicate: "duplicate",
	OutcomeIgnored:   "ignored",
	OutcomeFailed:    "failed",
}

func (o Outcome) String() string {
	return outcomeNames[o]
}

// EntryError describes why one entry was rolled back.
type EntryError struct {
	Index int    // 0-based position of the entry in the batch
	Stage Stage  // last stage the entry reached
	Type  string // entry type tag as written
	Raw   string // entry text after normalization
	Err   error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("entry %d (%s) failed at %s: %v", e.Index, e.Type, e.Stage, e.Err)
}

func (e *EntryError) Unwrap() error {
	return e.Err
}

// EntryResult is the explicit outcome of one entry.
type EntryResult struct {
	Index   int
	Outcome Outcome
	ID      int64       // set when Outcome is OutcomeCommitted
	Err     *EntryError // set when Outcome is OutcomeFailed
}

// Report summarizes a batch.
type Report struct {
	IDs     []int64 // committed publication ids in commit order
	Results []EntryResult
}

// Count returns how many entries had outcome o.
func (r *Report) Count(o Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}

// Failures returns the errors of the rolled-back entries.
func (r *Report) Failures() []*EntryError {
	var errs []*EntryError
	for _, res := range r.Results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	return errs
}

// Package importer turns a BibTeX blob into stored publications, one entry
// at a time, rolling back every entry that fails.
package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matsen/pubdb/internal/author"
	"github.com/matsen/pubdb/internal/authorship"
	"github.com/matsen/pubdb/internal/bibtex"
	"github.com/matsen/pubdb/internal/logger"
	"github.com/matsen/pubdb/internal/reference"
	"github.com/matsen/pubdb/internal/storage"
)

// Store is the persistence the importer needs.
type Store interface {
	authorship.Store

	ListTitles() ([]string, error)
	SavePublication(p *reference.Publication) error
	DeletePublication(id int64) error

	ListAuthors() ([]reference.Author, error)
	SaveAuthor(a *reference.Author) error

	FindJournalByName(name string) (*reference.Journal, error)
	SaveJournal(j *reference.Journal) error
}

// DOISource finds the DOI printed in a publication's PDF.
type DOISource interface {
	DOIFor(pdfPath string) (string, error)
}

// Options configures an Importer. The zero value logs nothing, keeps no
// failure journal and does not back-fill DOIs.
type Options struct {
	Logger *logger.Logger
	// FailureLog is the JSONL file failed entries are appended to.
	FailureLog string
	// DOIs back-fills missing DOIs from PDFs when set.
	DOIs DOISource
}

// Importer runs import batches against a store.
type Importer struct {
	store      Store
	ranker     *authorship.Ranker
	log        *logger.Logger
	failureLog string
	dois       DOISource
	now        func() time.Time
}

// New creates an importer.
func New(store Store, opts Options) *Importer {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Importer{
		store:      store,
		ranker:     authorship.NewRanker(store),
		log:        log,
		failureLog: opts.FailureLog,
		dois:       opts.DOIs,
		now:        time.Now,
	}
}

// batch holds the reconciliation index for one Import call.
type batch struct {
	titles    map[string]bool
	directory *author.Directory
}

// Import imports every entry of text and returns the ids of the committed
// publications in commit order. Entry failures are logged and never
// returned; the error is for failures loading the batch state or for a
// cancelled context, in which case the ids committed so far are returned.
func (im *Importer) Import(ctx context.Context, text string) ([]int64, error) {
	report, err := im.Run(ctx, text)
	if report == nil {
		return nil, err
	}
	return report.IDs, err
}

// Run is Import with the per-entry results.
func (im *Importer) Run(ctx context.Context, text string) (*Report, error) {
	b, err := im.loadBatch()
	if err != nil {
		return nil, err
	}

	entries := bibtex.Split(bibtex.Normalize(text))
	report := &Report{IDs: []int64{}}

	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			im.log.Warn("import cancelled", "remaining", len(entries)-i, "imported", len(report.IDs))
			return report, fmt.Errorf("import cancelled after %d of %d entries: %w", i, len(entries), err)
		}

		res := im.importEntry(b, i, entry)
		report.Results = append(report.Results, res)

		switch res.Outcome {
		case OutcomeCommitted:
			report.IDs = append(report.IDs, res.ID)
		case OutcomeFailed:
			im.recordFailure(res.Err)
		}
	}

	im.log.Info("import finished",
		"entries", len(entries),
		"imported", len(report.IDs),
		"duplicates", report.Count(OutcomeDuplicate),
		"ignored", report.Count(OutcomeIgnored),
		"failed", report.Count(OutcomeFailed),
	)
	return report, nil
}

// loadBatch builds the title set and the author directory from the store.
func (im *Importer) loadBatch() (*batch, error) {
	titles, err := im.store.ListTitles()
	if err != nil {
		return nil, fmt.Errorf("loading titles: %w", err)
	}
	authors, err := im.store.ListAuthors()
	if err != nil {
		return nil, fmt.Errorf("loading authors: %w", err)
	}

	b := &batch{
		titles:    make(map[string]bool, len(titles)),
		directory: author.NewDirectory(authors),
	}
	for _, t := range titles {
		if t != "" {
			b.titles[t] = true
		}
	}
	im.log.Debug("loaded reconciliation index", "titles", len(b.titles), "authors", b.directory.Len())
	return b, nil
}

// importEntry drives one entry through the state machine.
func (im *Importer) importEntry(b *batch, index int, entry bibtex.RawEntry) EntryResult {
	res := EntryResult{Index: index}
	log := im.log.With("entry", index, "type", entry.Type)

	// Pending
	// An absent or empty title is a soft-miss and never counts as a duplicate.
	title, _ := bibtex.Extract(entry.Text, "title")
	title = reference.Truncate(title, reference.MaxTitleLen)
	if title != "" && b.titles[title] {
		log.Debug("skipping duplicate title", "title", title)
		res.Outcome = OutcomeDuplicate
		return res
	}

	draft, err := bibtex.Build(entry)
	if errors.Is(err, bibtex.ErrUnknownType) {
		log.Debug("ignoring unsupported entry type")
		res.Outcome = OutcomeIgnored
		return res
	}

	tx := &entryTx{im: im, index: index, entry: entry, stage: StagePending}
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = tx.fail(err)
		return res
	}

	// TypeClassified
	tx.stage = StageTypeClassified
	pub := &draft.Publication
	im.backfillDOI(log, pub)

	if err := im.resolveJournal(draft); err != nil {
		res.Outcome = OutcomeFailed
		res.Err = tx.fail(err)
		return res
	}
	if err := im.store.SavePublication(pub); err != nil {
		res.Outcome = OutcomeFailed
		res.Err = tx.fail(fmt.Errorf("saving publication: %w", err))
		return res
	}
	tx.pubID = pub.ID

	if err := im.attachAuthors(b, tx, draft); err != nil {
		res.Outcome = OutcomeFailed
		res.Err = tx.fail(err)
		return res
	}

	// AuthorsAttached
	tx.stage = StageAuthorsAttached
	if len(tx.links) == 0 {
		res.Outcome = OutcomeFailed
		res.Err = tx.fail(ErrNoAuthors)
		return res
	}

	// Committed
	if pub.Title != "" {
		b.titles[pub.Title] = true
	}
	log.Debug("imported publication", "id", pub.ID, "title", pub.Title, "authors", len(tx.links))
	res.Outcome = OutcomeCommitted
	res.ID = pub.ID
	return res
}

// attachAuthors resolves every name of the entry and links it to the
// publication in declared order.
func (im *Importer) attachAuthors(b *batch, tx *entryTx, draft *bibtex.Draft) error {
	if !draft.HasAuthors {
		return nil
	}

	for _, name := range author.ParseList(draft.Authors) {
		a, rule, ok := b.directory.Resolve(name)
		if !ok {
			a = reference.Author{
				First:     name.First,
				Last:      name.Last,
				BirthDate: reference.UnknownBirthDate,
			}
			if err := im.store.SaveAuthor(&a); err != nil {
				return fmt.Errorf("creating author %q: %w", name, err)
			}
			b.directory.Add(a)
			im.log.Debug("created author", "id", a.ID, "name", a.FullName())
		} else if rule != author.RuleExact {
			im.log.Debug("matched author", "name", name.String(), "id", a.ID, "rule", rule.String())
		}

		link, created, err := im.ranker.Attach(tx.pubID, a.ID)
		if err != nil {
			return fmt.Errorf("linking author %d: %w", a.ID, err)
		}
		if created {
			tx.links = append(tx.links, link)
		}
	}
	return nil
}

// resolveJournal links an article to the journal with the exact same name,
// creating the journal when none exists.
func (im *Importer) resolveJournal(draft *bibtex.Draft) error {
	art, ok := draft.Publication.Details.(*reference.Article)
	if !ok || art.Journal == "" {
		return nil
	}

	j, err := im.store.FindJournalByName(art.Journal)
	if err != nil {
		return fmt.Errorf("looking up journal %q: %w", art.Journal, err)
	}
	if j == nil {
		j = &reference.Journal{Name: art.Journal, Publisher: draft.JournalPublisher}
		if err := im.store.SaveJournal(j); err != nil {
			return fmt.Errorf("creating journal %q: %w", art.Journal, err)
		}
		im.log.Debug("created journal", "id", j.ID, "name", j.Name)
	}
	art.JournalID = j.ID
	return nil
}

// backfillDOI fills a missing DOI from the entry's PDF. Failures only warn.
func (im *Importer) backfillDOI(log *logger.Logger, pub *reference.Publication) {
	if im.dois == nil || pub.DOI != "" || pub.PDFPath == "" {
		return
	}
	doi, err := im.dois.DOIFor(pub.PDFPath)
	if err != nil {
		log.Warn("DOI back-fill failed", "pdf", pub.PDFPath, "error", err)
		return
	}
	if doi != "" {
		pub.DOI = doi
		log.Debug("back-filled DOI", "pdf", pub.PDFPath, "doi", doi)
	}
}

// recordFailure logs a failed entry and appends it to the failure journal.
func (im *Importer) recordFailure(e *EntryError) {
	im.log.Error("entry failed",
		"entry", e.Index,
		"stage", string(e.Stage),
		"type", e.Type,
		"raw", e.Raw,
		"error", e.Err,
	)
	if im.failureLog == "" {
		return
	}
	rec := storage.FailureRecord{
		Time:  im.now().UTC(),
		Index: e.Index,
		Stage: string(e.Stage),
		Type:  e.Type,
		Error: e.Err.Error(),
		Raw:   e.Raw,
	}
	if err := storage.AppendFailure(im.failureLog, rec); err != nil {
		im.log.Warn("writing failure log", "path", im.failureLog, "error", err)
	}
}

// entryTx tracks what one entry has persisted so it can be undone.
// Authors and journals it created are shared with the rest of the store
// and are kept.
type entryTx struct {
	im    *Importer
	index int
	entry bibtex.RawEntry
	stage Stage
	pubID int64
	links []reference.Authorship
}

// fail rolls the entry back and returns the error describing it.
func (tx *entryTx) fail(cause error) *EntryError {
	err := cause
	if rbErr := tx.rollback(); rbErr != nil {
		err = errors.Join(cause, fmt.Errorf("rollback: %w", rbErr))
	}
	return &EntryError{
		Index: tx.index,
		Stage: tx.stage,
		Type:  tx.entry.Type,
		Raw:   tx.entry.Text,
		Err:   err,
	}
}

// rollback deletes the links and the publication created by the entry.
func (tx *entryTx) rollback() error {
	var errs []error
	for i := len(tx.links) - 1; i >= 0; i-- {
		l := tx.links[i]
		if err := tx.im.store.DeleteAuthorship(l.PublicationID, l.AuthorID); err != nil {
			errs = append(errs, fmt.Errorf("deleting authorship (%d, %d): %w", l.PublicationID, l.AuthorID, err))
		}
	}
	if tx.pubID != 0 {
		if err := tx.im.store.DeletePublication(tx.pubID); err != nil {
			errs = append(errs, fmt.Errorf("deleting publication %d: %w", tx.pubID, err))
		}
	}
	tx.links = nil
	return errors.Join(errs...)
}

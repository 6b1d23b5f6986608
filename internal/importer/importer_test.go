package importer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/matsen/pubdb/internal/authorship"
	"github.com/matsen/pubdb/internal/reference"
	"github.com/matsen/pubdb/internal/storage"
)

func setupTestDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

const singleArticle = `@article{doe2020,
  title = {A Study of Things},
  author = {Doe, John},
  journal = {Journal of Things},
  publisher = {Thing Press},
  volume = {3},
  year = {2020},
  month = {mar}
}
`

func TestImport_SingleArticle(t *testing.T) {
	db := setupTestDB(t)
	im := New(db, Options{})

	ids, err := im.Import(context.Background(), singleArticle)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("Import() = %v, want one id", ids)
	}

	pub, err := db.GetPublication(ids[0])
	if err != nil || pub == nil {
		t.Fatalf("GetPublication() = (%v, %v)", pub, err)
	}
	if pub.Title != "A Study of Things" {
		t.Errorf("Title = %q", pub.Title)
	}
	if pub.Date != (reference.PublicationDate{Year: 2020, Month: 3, Day: 2}) {
		t.Errorf("Date = %+v", pub.Date)
	}
	if pub.Category != reference.CategoryACL {
		t.Errorf("Category = %q, want ACL", pub.Category)
	}

	art, ok := pub.Details.(*reference.Article)
	if !ok {
		t.Fatalf("Details = %T, want *Article", pub.Details)
	}
	journal, _ := db.GetJournal(art.JournalID)
	if journal == nil || journal.Name != "Journal of Things" || journal.Publisher != "Thing Press" {
		t.Errorf("journal = %+v", journal)
	}

	links, _ := db.AuthorshipsByPublication(pub.ID)
	if len(links) != 1 || links[0].Rank != 0 {
		t.Fatalf("links = %+v, want one link at rank 0", links)
	}
	a, _ := db.GetAuthor(links[0].AuthorID)
	if a.First != "John" || a.Last != "Doe" || !a.BirthDate.Equal(reference.UnknownBirthDate) {
		t.Errorf("author = %+v", a)
	}
}

func TestImport_MissingAuthorRollsBack(t *testing.T) {
	db := setupTestDB(t)
	failures := filepath.Join(t.TempDir(), "failures.jsonl")
	im := New(db, Options{FailureLog: failures})

	input := "@book{b,\n  title = {Authorless},\n  year = {1999}\n}\n"
	report, err := im.Run(context.Background(), input)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(report.IDs) != 0 {
		t.Errorf("IDs = %v, want none", report.IDs)
	}
	if n, _ := db.CountPublications(); n != 0 {
		t.Errorf("CountPublications() = %d, want 0 after rollback", n)
	}

	fails := report.Failures()
	if len(fails) != 1 {
		t.Fatalf("Failures() = %d, want 1", len(fails))
	}
	if !errors.Is(fails[0], ErrNoAuthors) {
		t.Errorf("failure = %v, want ErrNoAuthors", fails[0])
	}
	if fails[0].Stage != StageAuthorsAttached || fails[0].Type != "book" {
		t.Errorf("failure stage/type = %s/%s", fails[0].Stage, fails[0].Type)
	}

	recs, err := storage.ReadFailures(failures)
	if err != nil {
		t.Fatalf("ReadFailures() error = %v", err)
	}
	if len(recs) != 1 || recs[0].Raw != fails[0].Raw || recs[0].Stage != string(StageAuthorsAttached) {
		t.Errorf("failure journal = %+v", recs)
	}
}

func TestImport_DuplicateTitleInBatch(t *testing.T) {
	db := setupTestDB(t)
	im := New(db, Options{})

	input := `@article{a,
  title = {Same Title},
  author = {Doe, John},
  year = {2020}
}
@inproceedings{b,
  title = {Same Title},
  author = {Roe, Jane},
  booktitle = {Proc. Things},
  year = {2021}
}
`
	report, err := im.Run(context.Background(), input)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(report.IDs) != 1 {
		t.Errorf("IDs = %v, want one", report.IDs)
	}
	if report.Count(OutcomeDuplicate) != 1 {
		t.Errorf("duplicates = %d, want 1", report.Count(OutcomeDuplicate))
	}
	// The skipped entry must not create its author.
	authors, _ := db.ListAuthors()
	if len(authors) != 1 {
		t.Errorf("authors = %d, want 1", len(authors))
	}
}

func TestImport_UntitledEntriesAreNotDuplicates(t *testing.T) {
	db := setupTestDB(t)
	im := New(db, Options{})
	untitled := `@article{doe2020,
  author = {Doe, John},
  year = {2020}
}
@article{roe2021,
  author = {Roe, Jane},
  year = {2021}
}
`

	ids, err := im.Import(context.Background(), untitled)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("Import() = %v, want two ids", ids)
	}

	// A later batch sees the stored empty titles and still imports.
	more := "@article{poe2022,\n  author = {Poe, Edgar},\n  year = {2022}\n}\n"
	ids, err = im.Import(context.Background(), more)
	if err != nil {
		t.Fatalf("second Import() error = %v", err)
	}
	if len(ids) != 1 {
		t.Errorf("second Import() = %v, want one id", ids)
	}
}

func TestImport_UnbalancedTitleBrace(t *testing.T) {
	db := setupTestDB(t)
	im := New(db, Options{})
	text := "@article{k,\n  title = {Broken {value},\n  year = {2001},\n  author = {Doe, John},\n}\n"

	ids, err := im.Import(context.Background(), text)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("Import() = %v, want one id", ids)
	}
	pub, _ := db.GetPublication(ids[0])
	if pub.Title != "Broken value" || pub.Date.Year != 2001 {
		t.Errorf("publication = (%q, %d), want (Broken value, 2001)", pub.Title, pub.Date.Year)
	}
	authors, _ := db.AuthorsOfPublication(ids[0])
	if len(authors) != 1 || authors[0].Last != "Doe" {
		t.Errorf("authors = %+v, want Doe", authors)
	}
}

func TestImport_ReimportIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	im := New(db, Options{})

	first, err := im.Import(context.Background(), singleArticle)
	if err != nil || len(first) != 1 {
		t.Fatalf("first Import() = (%v, %v)", first, err)
	}

	second, err := im.Import(context.Background(), singleArticle)
	if err != nil {
		t.Fatalf("second Import() error = %v", err)
	}
	if len(second) != 0 {
		t.Errorf("second Import() = %v, want none", second)
	}

	pubs, _ := db.CountPublications()
	links, _ := db.CountAuthorships()
	authors, _ := db.ListAuthors()
	journals, _ := db.ListJournals()
	if pubs != 1 || links != 1 || len(authors) != 1 || len(journals) != 1 {
		t.Errorf("counts after re-import: pubs=%d links=%d authors=%d journals=%d", pubs, links, len(authors), len(journals))
	}
}

func TestImport_IntraBatchAuthorDedup(t *testing.T) {
	db := setupTestDB(t)
	im := New(db, Options{})

	input := `@article{a,
  title = {First},
  author = {Doe, John and Roe, Jane},
  journal = {J},
  year = {2020}
}
@techreport{b,
  title = {Second},
  author = {J. Doe and Jane Roe},
  institution = {Lab},
  year = {2021}
}
@misc{c,
  title = {Third},
  author = {John, Doe},
  year = {2022}
}
`
	ids, err := im.Import(context.Background(), input)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("Import() = %v, want three ids", ids)
	}

	authors, _ := db.ListAuthors()
	if len(authors) != 2 {
		t.Fatalf("authors = %+v, want 2", authors)
	}

	// The journal of the first entry is reused by name, not duplicated.
	journals, _ := db.ListJournals()
	if len(journals) != 1 {
		t.Errorf("journals = %d, want 1", len(journals))
	}

	for _, id := range ids {
		links, _ := db.AuthorshipsByPublication(id)
		if err := authorship.Validate(links); err != nil {
			t.Errorf("publication %d: %v", id, err)
		}
		if links[0].AuthorID != authors[0].ID {
			t.Errorf("publication %d first author = %d, want %d", id, links[0].AuthorID, authors[0].ID)
		}
	}
}

func TestImport_RepeatedAuthorGetsOneRank(t *testing.T) {
	db := setupTestDB(t)
	im := New(db, Options{})

	input := "@misc{m,\n  title = {Echo},\n  author = {Doe, John and Doe, John and Roe, Jane},\n  year = {2020}\n}\n"
	ids, err := im.Import(context.Background(), input)
	if err != nil || len(ids) != 1 {
		t.Fatalf("Import() = (%v, %v)", ids, err)
	}

	links, _ := db.AuthorshipsByPublication(ids[0])
	if len(links) != 2 {
		t.Fatalf("links = %+v, want 2", links)
	}
	if links[1].Rank != 1 {
		t.Errorf("second distinct author rank = %d, want 1", links[1].Rank)
	}
}

func TestImport_UnknownTypeIgnored(t *testing.T) {
	db := setupTestDB(t)
	im := New(db, Options{})

	input := "@unpublished{u,\n  title = {Draft},\n  author = {Doe, John}\n}\n" + singleArticle
	report, err := im.Run(context.Background(), input)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(report.IDs) != 1 || report.Count(OutcomeIgnored) != 1 || report.Count(OutcomeFailed) != 0 {
		t.Errorf("report = %+v", report)
	}
}

func TestImport_EncodingNormalized(t *testing.T) {
	db := setupTestDB(t)
	im := New(db, Options{})

	input := "@phdthesis{t,\n  title = {Caf{\\'e} Price €},\n  author = {Andr\\'{e}, Ren\\'e},\n  school = {Universit\\'e},\n  year = {2001}\n}\n"
	ids, err := im.Import(context.Background(), input)
	if err != nil || len(ids) != 1 {
		t.Fatalf("Import() = (%v, %v)", ids, err)
	}

	pub, _ := db.GetPublication(ids[0])
	if pub.Title != "Café Price ?" {
		t.Errorf("Title = %q, want %q", pub.Title, "Café Price ?")
	}
	authors, _ := db.AuthorsOfPublication(ids[0])
	if len(authors) != 1 || authors[0].Last != "André" || authors[0].First != "René" {
		t.Errorf("authors = %+v", authors)
	}
	if th := pub.Details.(*reference.PhDThesis); th.School != "Université" {
		t.Errorf("School = %q", th.School)
	}
}

// failingStore injects a persistence failure when linking a given author.
type failingStore struct {
	*storage.DB
	failLast string
	inserts  int
}

func (s *failingStore) InsertAuthorship(link reference.Authorship) error {
	a, err := s.DB.GetAuthor(link.AuthorID)
	if err != nil {
		return err
	}
	if a != nil && a.Last == s.failLast {
		return errors.New("disk full")
	}
	s.inserts++
	return s.DB.InsertAuthorship(link)
}

func TestImport_PersistenceFailureRollsBack(t *testing.T) {
	db := setupTestDB(t)
	store := &failingStore{DB: db, failLast: "Broken"}
	im := New(store, Options{})

	input := `@article{a,
  title = {Doomed},
  author = {Doe, John and Broken, Bob},
  year = {2020}
}
@article{b,
  title = {Fine},
  author = {Roe, Jane},
  year = {2020}
}
`
	report, err := im.Run(context.Background(), input)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(report.IDs) != 1 {
		t.Fatalf("IDs = %v, want only the second entry", report.IDs)
	}

	fails := report.Failures()
	if len(fails) != 1 || fails[0].Index != 0 || fails[0].Stage != StageTypeClassified {
		t.Fatalf("failures = %+v", fails)
	}

	pubs, _ := db.ListPublications()
	if len(pubs) != 1 || pubs[0].Title != "Fine" {
		t.Errorf("publications = %+v", pubs)
	}
	// The link to Doe was created then rolled back.
	if n, _ := db.CountAuthorships(); n != 1 {
		t.Errorf("CountAuthorships() = %d, want 1", n)
	}
	// Authors created before the failure are kept.
	authors, _ := db.ListAuthors()
	if len(authors) != 3 {
		t.Errorf("authors = %d, want 3", len(authors))
	}

	// A failed title is not remembered: a corrected entry imports later.
	store.failLast = ""
	ids, err := im.Import(context.Background(), input)
	if err != nil {
		t.Fatalf("re-Import() error = %v", err)
	}
	if len(ids) != 1 {
		t.Errorf("re-Import() = %v, want the previously failed entry", ids)
	}
}

func TestImport_CancelledContext(t *testing.T) {
	db := setupTestDB(t)
	im := New(db, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ids, err := im.Import(ctx, singleArticle)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Import() error = %v, want context.Canceled", err)
	}
	if len(ids) != 0 {
		t.Errorf("Import() = %v, want none", ids)
	}
}

type fakeDOIs struct {
	doi   string
	err   error
	calls int
}

func (f *fakeDOIs) DOIFor(string) (string, error) {
	f.calls++
	return f.doi, f.err
}

func TestImport_DOIBackfill(t *testing.T) {
	input := "@misc{m,\n  title = {%s},\n  author = {Doe, John},\n  pdf = {papers/m.pdf},\n  year = {2020}\n}\n"

	tests := []struct {
		name    string
		title   string
		dois    *fakeDOIs
		wantDOI string
	}{
		{"found", "With PDF", &fakeDOIs{doi: "10.1000/abc"}, "10.1000/abc"},
		{"not found", "No DOI", &fakeDOIs{}, ""},
		{"error is soft", "Broken PDF", &fakeDOIs{err: errors.New("bad pdf")}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDB(t)
			im := New(db, Options{DOIs: tt.dois})

			ids, err := im.Import(context.Background(), fmt.Sprintf(input, tt.title))
			if err != nil || len(ids) != 1 {
				t.Fatalf("Import() = (%v, %v)", ids, err)
			}
			pub, _ := db.GetPublication(ids[0])
			if pub.DOI != tt.wantDOI {
				t.Errorf("DOI = %q, want %q", pub.DOI, tt.wantDOI)
			}
			if tt.dois.calls != 1 {
				t.Errorf("DOIFor calls = %d, want 1", tt.dois.calls)
			}
		})
	}
}

func TestImport_DOIBackfillSkippedWhenPresent(t *testing.T) {
	db := setupTestDB(t)
	dois := &fakeDOIs{doi: "10.1000/other"}
	im := New(db, Options{DOIs: dois})

	input := "@misc{m,\n  title = {Has DOI},\n  author = {Doe, John},\n  doi = {10.1000/mine},\n  pdf = {m.pdf},\n  year = {2020}\n}\n"
	ids, _ := im.Import(context.Background(), input)
	pub, _ := db.GetPublication(ids[0])
	if pub.DOI != "10.1000/mine" || dois.calls != 0 {
		t.Errorf("DOI = %q, calls = %d", pub.DOI, dois.calls)
	}
}

func TestImport_EmptyInput(t *testing.T) {
	db := setupTestDB(t)
	ids, err := New(db, Options{}).Import(context.Background(), "no entries here")
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if ids == nil || len(ids) != 0 {
		t.Errorf("Import() = %#v, want empty non-nil slice", ids)
	}
}

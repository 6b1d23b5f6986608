package authorship

import (
	"errors"
	"sort"
	"testing"

	"github.com/matsen/pubdb/internal/reference"
)

// memStore is an in-memory Store for ranker tests.
type memStore struct {
	links     []reference.Authorship
	insertErr error
	detachErr error
}

func (m *memStore) AuthorshipsByPublication(pubID int64) ([]reference.Authorship, error) {
	var out []reference.Authorship
	for _, l := range m.links {
		if l.PublicationID == pubID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out, nil
}

func (m *memStore) AuthorshipsByAuthor(authorID int64) ([]reference.Authorship, error) {
	var out []reference.Authorship
	for _, l := range m.links {
		if l.AuthorID == authorID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memStore) InsertAuthorship(link reference.Authorship) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.links = append(m.links, link)
	return nil
}

func (m *memStore) DeleteAuthorship(pubID, authorID int64) error {
	kept := m.links[:0]
	for _, l := range m.links {
		if l.PublicationID != pubID || l.AuthorID != authorID {
			kept = append(kept, l)
		}
	}
	m.links = kept
	return nil
}

func (m *memStore) DetachAuthorship(pubID, authorID int64, rank int) error {
	if m.detachErr != nil {
		return m.detachErr
	}
	m.DeleteAuthorship(pubID, authorID)
	for i := range m.links {
		if m.links[i].PublicationID == pubID && m.links[i].Rank > rank {
			m.links[i].Rank--
		}
	}
	return nil
}

func (m *memStore) SetAuthorshipRanks(pubID int64, authorIDs []int64) error {
	for rank, authorID := range authorIDs {
		for i := range m.links {
			if m.links[i].PublicationID == pubID && m.links[i].AuthorID == authorID {
				m.links[i].Rank = rank
			}
		}
	}
	return nil
}

func rankOf(t *testing.T, m *memStore, pubID, authorID int64) int {
	t.Helper()
	for _, l := range m.links {
		if l.PublicationID == pubID && l.AuthorID == authorID {
			return l.Rank
		}
	}
	t.Fatalf("no link (%d, %d)", pubID, authorID)
	return -1
}

func TestRanker_AttachAppends(t *testing.T) {
	store := &memStore{}
	r := NewRanker(store)

	for i, authorID := range []int64{10, 20, 30} {
		link, created, err := r.Attach(1, authorID)
		if err != nil {
			t.Fatalf("Attach() error = %v", err)
		}
		if !created {
			t.Errorf("Attach(%d) created = false", authorID)
		}
		if link.Rank != i {
			t.Errorf("Attach(%d) rank = %d, want %d", authorID, link.Rank, i)
		}
	}

	links, _ := store.AuthorshipsByPublication(1)
	if err := Validate(links); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestRanker_AttachSkipsDuplicate(t *testing.T) {
	store := &memStore{}
	r := NewRanker(store)

	r.Attach(1, 10)
	r.Attach(1, 20)
	link, created, err := r.Attach(1, 10)
	if err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	if created {
		t.Error("duplicate Attach should not create a link")
	}
	if link.Rank != 0 {
		t.Errorf("duplicate Attach returned rank %d, want existing rank 0", link.Rank)
	}

	// The next distinct author still gets rank 2, not its parse position 3.
	link, _, _ = r.Attach(1, 30)
	if link.Rank != 2 {
		t.Errorf("rank after duplicate = %d, want 2", link.Rank)
	}
}

func TestRanker_AttachIndependentPerPublication(t *testing.T) {
	store := &memStore{}
	r := NewRanker(store)

	r.Attach(1, 10)
	link, created, _ := r.Attach(2, 10)
	if !created || link.Rank != 0 {
		t.Errorf("Attach to second publication = (%+v, %v), want rank 0 created", link, created)
	}
}

func TestRanker_AttachInsertError(t *testing.T) {
	boom := errors.New("disk full")
	r := NewRanker(&memStore{insertErr: boom})

	if _, _, err := r.Attach(1, 10); !errors.Is(err, boom) {
		t.Errorf("Attach() error = %v, want wrapping %v", err, boom)
	}
}

func TestRanker_DetachCompacts(t *testing.T) {
	store := &memStore{}
	r := NewRanker(store)
	for _, id := range []int64{10, 20, 30, 40} {
		r.Attach(1, id)
	}
	r.Attach(2, 30) // other publication must be untouched

	if err := r.Detach(1, 20); err != nil {
		t.Fatalf("Detach() error = %v", err)
	}

	want := map[int64]int{10: 0, 30: 1, 40: 2}
	for authorID, rank := range want {
		if got := rankOf(t, store, 1, authorID); got != rank {
			t.Errorf("rank of %d = %d, want %d", authorID, got, rank)
		}
	}
	if got := rankOf(t, store, 2, 30); got != 0 {
		t.Errorf("other publication rank = %d, want 0", got)
	}

	links, _ := store.AuthorshipsByPublication(1)
	if err := Validate(links); err != nil {
		t.Errorf("Validate() after Detach error = %v", err)
	}
}

func TestRanker_DetachMissingIsNoop(t *testing.T) {
	store := &memStore{}
	r := NewRanker(store)
	r.Attach(1, 10)

	if err := r.Detach(1, 99); err != nil {
		t.Errorf("Detach() error = %v", err)
	}
	if len(store.links) != 1 {
		t.Errorf("links = %d, want 1", len(store.links))
	}
}

func TestRanker_DetachErrorLeavesLinks(t *testing.T) {
	boom := errors.New("disk full")
	store := &memStore{}
	r := NewRanker(store)
	for _, id := range []int64{10, 20, 30} {
		r.Attach(1, id)
	}
	store.detachErr = boom

	if err := r.Detach(1, 20); !errors.Is(err, boom) {
		t.Fatalf("Detach() error = %v, want wrapping %v", err, boom)
	}
	links, _ := store.AuthorshipsByPublication(1)
	if len(links) != 3 {
		t.Errorf("links after failed Detach = %+v, want all 3", links)
	}
	if err := Validate(links); err != nil {
		t.Errorf("Validate() after failed Detach error = %v", err)
	}
}

func TestRanker_Reorder(t *testing.T) {
	store := &memStore{}
	r := NewRanker(store)
	for _, id := range []int64{10, 20, 30} {
		r.Attach(1, id)
	}

	if err := r.Reorder(1, []int64{30, 10, 20}); err != nil {
		t.Fatalf("Reorder() error = %v", err)
	}
	if rankOf(t, store, 1, 30) != 0 || rankOf(t, store, 1, 10) != 1 || rankOf(t, store, 1, 20) != 2 {
		t.Errorf("unexpected ranks after Reorder: %+v", store.links)
	}

	if err := r.Reorder(1, []int64{10, 20}); err == nil {
		t.Error("Reorder() with missing author should fail")
	}
	if err := r.Reorder(1, []int64{10, 20, 99}); err == nil {
		t.Error("Reorder() with unknown author should fail")
	}
	if err := r.Reorder(1, []int64{10, 10, 20}); err == nil {
		t.Error("Reorder() with repeated author should fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		ranks   []int
		wantErr bool
	}{
		{"empty", nil, false},
		{"single", []int{0}, false},
		{"unordered contiguous", []int{2, 0, 1}, false},
		{"gap", []int{0, 2}, true},
		{"repeat", []int{0, 0, 1}, true},
		{"not from zero", []int{1, 2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			links := make([]reference.Authorship, len(tt.ranks))
			for i, r := range tt.ranks {
				links[i] = reference.Authorship{PublicationID: 1, AuthorID: int64(i), Rank: r}
			}
			err := Validate(links)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%v) error = %v, wantErr %v", tt.ranks, err, tt.wantErr)
			}
		})
	}
}

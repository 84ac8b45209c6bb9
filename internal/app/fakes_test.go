package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/proteoparc/proteoparc/internal/domain"
	"github.com/proteoparc/proteoparc/internal/ports"
)

type fakeTaxonomy struct {
	descendants map[int64][]int64
	names       map[int64]string
	err         error
}

func (f *fakeTaxonomy) Descendants(_ context.Context, root int64) ([]int64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.descendants[root], nil
}

func (f *fakeTaxonomy) ScientificName(_ context.Context, id int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.names[id], nil
}

func hominidTaxonomy() *fakeTaxonomy {
	return &fakeTaxonomy{
		descendants: map[int64][]int64{9604: {9605, 9606, 9598}},
		names:       map[int64]string{9604: "Hominidae"},
	}
}

// fakeArchive serves canned pages per scope. Entries are looked up by id
// for fan-out fetches. A scope in failAfter serves its pages and then
// returns the error.
type fakeArchive struct {
	mu        sync.Mutex
	pages     map[domain.Scope][][]domain.RawRecord
	fail      map[domain.Scope]error
	failAfter map[domain.Scope]error
	entries   map[string]domain.RawRecord
	calls     []domain.Scope
}

func (f *fakeArchive) Search(ctx context.Context, scope domain.Scope, visit func(ports.Page) error) error {
	f.mu.Lock()
	f.calls = append(f.calls, scope)
	f.mu.Unlock()

	if err := f.fail[scope]; err != nil {
		return err
	}
	pages := f.pages[scope]
	total := 0
	for _, p := range pages {
		total += len(p)
	}
	if len(pages) == 0 {
		return visit(ports.Page{})
	}
	for _, p := range pages {
		if err := visit(ports.Page{Records: p, Total: total}); err != nil {
			return err
		}
	}
	return f.failAfter[scope]
}

func (f *fakeArchive) SearchIDs(ctx context.Context, scope domain.Scope, visit func(ports.IDPage) error) error {
	return f.Search(ctx, scope, func(p ports.Page) error {
		ids := make([]string, len(p.Records))
		for i, r := range p.Records {
			ids[i] = r.ID
		}
		return visit(ports.IDPage{IDs: ids, Total: p.Total})
	})
}

func (f *fakeArchive) Entry(_ context.Context, id string) (domain.RawRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.entries[id]
	if !ok {
		return domain.RawRecord{}, &domain.ServiceError{StatusCode: 404, URL: "/uniparc/" + id}
	}
	return rec, nil
}

// index makes every paged record reachable through Entry.
func (f *fakeArchive) index() *fakeArchive {
	f.entries = map[string]domain.RawRecord{}
	for _, pages := range f.pages {
		for _, p := range pages {
			for _, r := range p {
				f.entries[r.ID] = r
			}
		}
	}
	return f
}

func human(id, seq string) domain.RawRecord {
	return domain.RawRecord{
		ID:       id,
		Sequence: seq,
		CrossReferences: []domain.CrossReference{{
			Database:    "RefSeq",
			LastUpdated: "2023-05-03",
			ProteinName: "p53",
			GeneName:    "tp53",
			Version:     1,
			Organism:    &domain.Organism{ScientificName: "Homo sapiens", TaxID: 9606},
		}},
	}
}

func records(prefix string, n int) []domain.RawRecord {
	out := make([]domain.RawRecord, n)
	for i := range out {
		out[i] = human(fmt.Sprintf("%s%03d", prefix, i), fmt.Sprintf("M%sK%03d", prefix, i))
	}
	return out
}

var errBoom = errors.New("boom")

type recordingEmitter struct {
	mu     sync.Mutex
	done   []domain.Scope
	failed []domain.Scope
}

func (e *recordingEmitter) OnScopeDone(scope domain.Scope, _ int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.done = append(e.done, scope)
}

func (e *recordingEmitter) OnScopeError(scope domain.Scope, _ error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failed = append(e.failed, scope)
}

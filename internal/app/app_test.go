package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/proteoparc/proteoparc/internal/domain"
)

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver(hominidTaxonomy(), zerolog.Nop())

	taxon, err := r.Resolve(context.Background(), 9604)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if taxon.Name != "Hominidae" || taxon.Size() != 4 {
		t.Errorf("taxon = %+v, size %d", taxon, taxon.Size())
	}
	for _, id := range []int64{9604, 9605, 9606, 9598} {
		if !taxon.Contains(id) {
			t.Errorf("clade missing %d", id)
		}
	}
}

func TestResolver_Leaf(t *testing.T) {
	r := NewResolver(&fakeTaxonomy{}, zerolog.Nop())

	taxon, err := r.Resolve(context.Background(), 9606)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if taxon.Size() != 1 || !taxon.Contains(9606) {
		t.Errorf("leaf clade = size %d", taxon.Size())
	}
}

func TestResolver_Errors(t *testing.T) {
	tests := []struct {
		name string
		svc  *fakeTaxonomy
		root int64
		want error
	}{
		{"zero id", &fakeTaxonomy{}, 0, domain.ErrInvalidTaxID},
		{"negative id", &fakeTaxonomy{}, -5, domain.ErrInvalidTaxID},
		{"service failure", &fakeTaxonomy{err: errBoom}, 9604, errBoom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewResolver(tt.svc, zerolog.Nop()).Resolve(context.Background(), tt.root)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			var se *domain.StageError
			if !errors.As(err, &se) || se.Stage != domain.StageTaxonomy {
				t.Errorf("error = %v, want taxonomy StageError", err)
			}
		})
	}
}

func TestFetcher_FetchGene_DiscoveryOrder(t *testing.T) {
	scope := domain.Scope{TaxID: 9604, Gene: "TP53"}
	archive := &fakeArchive{pages: map[domain.Scope][][]domain.RawRecord{
		scope: {records("A", 2), records("B", 1)},
	}}
	f := NewFetcher(archive, FetchConfig{}, zerolog.Nop())
	taxon := domain.NewTaxon(9604, "Hominidae", nil)

	var ids []string
	n, err := f.FetchGene(context.Background(), taxon, "TP53", func(r domain.RawRecord) error {
		ids = append(ids, r.ID)
		return nil
	})
	if err != nil {
		t.Fatalf("FetchGene() error = %v", err)
	}
	if n != 3 || strings.Join(ids, ",") != "A000,A001,B000" {
		t.Errorf("n = %d, ids = %v", n, ids)
	}
}

func TestFetcher_FailureCarriesScope(t *testing.T) {
	scope := domain.Scope{TaxID: 9604}
	archive := &fakeArchive{fail: map[domain.Scope]error{scope: errBoom}}
	f := NewFetcher(archive, FetchConfig{}, zerolog.Nop())

	_, err := f.FetchClade(context.Background(), domain.NewTaxon(9604, "", nil), func(domain.RawRecord) error { return nil })
	var se *domain.StageError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want StageError", err)
	}
	if se.Stage != domain.StageFetch || se.Scope != scope || !errors.Is(err, errBoom) {
		t.Errorf("StageError = %+v", se)
	}
}

func TestFetcher_FanOut_DeliversEveryID(t *testing.T) {
	scope := domain.Scope{TaxID: 9604, Gene: "TP53"}
	archive := (&fakeArchive{pages: map[domain.Scope][][]domain.RawRecord{
		scope: {records("A", 40), records("B", 25)},
	}}).index()
	f := NewFetcher(archive, FetchConfig{Workers: 4}, zerolog.Nop())

	var mu sync.Mutex
	got := make(map[int]string)
	n, err := f.FetchFanOut(context.Background(), domain.NewTaxon(9604, "", nil), "TP53", func(i int, r domain.RawRecord) error {
		mu.Lock()
		defer mu.Unlock()
		if _, dup := got[i]; dup {
			t.Errorf("index %d delivered twice", i)
		}
		got[i] = r.ID
		return nil
	})
	if err != nil {
		t.Fatalf("FetchFanOut() error = %v", err)
	}
	if n != 65 || len(got) != 65 {
		t.Fatalf("n = %d, delivered = %d, want 65", n, len(got))
	}
	if got[0] != "A000" || got[40] != "B000" || got[64] != "B024" {
		t.Errorf("indexes do not follow listing order: %v %v %v", got[0], got[40], got[64])
	}
}

func TestFetcher_FanOut_EntryFailure(t *testing.T) {
	scope := domain.Scope{TaxID: 9604}
	archive := (&fakeArchive{pages: map[domain.Scope][][]domain.RawRecord{
		scope: {records("A", 10)},
	}}).index()
	delete(archive.entries, "A007")
	f := NewFetcher(archive, FetchConfig{Workers: 2}, zerolog.Nop())

	_, err := f.FetchFanOut(context.Background(), domain.NewTaxon(9604, "", nil), "", func(int, domain.RawRecord) error { return nil })
	var svc *domain.ServiceError
	if !errors.As(err, &svc) || svc.StatusCode != 404 {
		t.Fatalf("error = %v, want wrapped 404", err)
	}
}

func TestAggregator(t *testing.T) {
	a := NewAggregator()
	a.Add(domain.SequenceRecord{Header: "h0", Sequence: "A"})

	base := a.Len()
	a.Put(base+2, domain.SequenceRecord{Header: "h3", Sequence: "D"})
	a.Put(base+0, domain.SequenceRecord{Header: "h1", Sequence: "B"})
	// base+1 is never filled, as for a dropped fan-out record
	if !a.Drop(&domain.FormatError{ID: "x", Field: "sequence"}) {
		t.Error("FormatError should be counted")
	}
	if a.Drop(errBoom) {
		t.Error("non-format error should not be counted")
	}

	got := a.Done()
	var headers []string
	for _, r := range got {
		headers = append(headers, r.Header)
	}
	if strings.Join(headers, ",") != "h0,h1,h3" {
		t.Errorf("Done() = %v", headers)
	}
	if a.Count() != 3 || a.Dropped() != 1 {
		t.Errorf("Count = %d, Dropped = %d", a.Count(), a.Dropped())
	}
}

func TestAggregator_Merge(t *testing.T) {
	a := NewAggregator()
	a.Add(domain.SequenceRecord{Header: "h0", Sequence: "A"})
	a.AddProvenance(domain.Provenance{ID: "UPI1", Databases: []string{"RefSeq"}})

	scope := NewAggregator()
	scope.Put(1, domain.SequenceRecord{Header: "h2", Sequence: "C"})
	scope.Put(0, domain.SequenceRecord{Header: "h1", Sequence: "B"})
	scope.Drop(&domain.FormatError{ID: "x", Field: "sequence"})
	scope.AddProvenance(domain.Provenance{ID: "UPI1", Databases: []string{"EMBL"}})

	a.Merge(scope)

	var headers []string
	for _, r := range a.Done() {
		headers = append(headers, r.Header)
	}
	if strings.Join(headers, ",") != "h0,h1,h2" {
		t.Errorf("Done() = %v", headers)
	}
	if a.Count() != 3 || a.Dropped() != 1 {
		t.Errorf("Count = %d, Dropped = %d", a.Count(), a.Dropped())
	}
	p := a.Provenance()
	if len(p) != 1 || strings.Join(p[0].Databases, ",") != "RefSeq,EMBL" {
		t.Errorf("Provenance() = %+v", p)
	}
}

func TestAggregator_ProvenanceMerged(t *testing.T) {
	a := NewAggregator()
	a.AddProvenance(domain.Provenance{ID: "UPI2", Databases: []string{"EMBL"}})
	a.AddProvenance(domain.Provenance{ID: "UPI1", Databases: []string{"RefSeq"}})
	a.AddProvenance(domain.Provenance{ID: "UPI2", Databases: []string{"PDB"}})

	p := a.Provenance()
	if len(p) != 2 || p[0].ID != "UPI1" || strings.Join(p[1].Databases, ",") != "EMBL,PDB" {
		t.Errorf("Provenance() = %+v", p)
	}
}

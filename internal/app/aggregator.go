package app

import (
	"errors"
	"sort"
	"sync"

	"github.com/proteoparc/proteoparc/internal/domain"
)

type slot struct {
	rec    domain.SequenceRecord
	filled bool
}

// Aggregator collects synthesized records from every fetch scope into one
// ordered collection. Paginated fetches append in discovery order; fan-out
// workers fill pre-indexed slots so the final order does not depend on
// completion order. Safe for concurrent use.
type Aggregator struct {
	mu         sync.Mutex
	slots      []slot
	filled     int
	dropped    int
	provenance map[string]*domain.Provenance
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{provenance: make(map[string]*domain.Provenance)}
}

// Add appends a record after everything collected so far.
func (a *Aggregator) Add(rec domain.SequenceRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.slots = append(a.slots, slot{rec: rec, filled: true})
	a.filled++
}

// Put stores a record at absolute position i, growing the slot list as
// needed. Positions left unfilled are skipped by Done.
func (a *Aggregator) Put(i int, rec domain.SequenceRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if i >= len(a.slots) {
		a.slots = append(a.slots, make([]slot, i+1-len(a.slots))...)
	}
	if !a.slots[i].filled {
		a.filled++
	}
	a.slots[i] = slot{rec: rec, filled: true}
}

// Drop counts a record that could not be synthesized. Only format errors
// are counted; anything else is reported back to the caller.
func (a *Aggregator) Drop(err error) bool {
	var fe *domain.FormatError
	if !errors.As(err, &fe) {
		return false
	}
	a.mu.Lock()
	a.dropped++
	a.mu.Unlock()
	return true
}

// AddProvenance records the sources of one archive id. Repeated ids are
// merged.
func (a *Aggregator) AddProvenance(p domain.Provenance) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if cur, ok := a.provenance[p.ID]; ok {
		cur.Merge(p)
		return
	}
	a.provenance[p.ID] = &p
}

// Merge appends everything o collected after the records already held,
// keeping o's order, and folds in its drop count and provenance. o must
// not be in use by other goroutines.
func (a *Aggregator) Merge(o *Aggregator) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, s := range o.slots {
		if s.filled {
			a.slots = append(a.slots, s)
			a.filled++
		}
	}
	a.dropped += o.dropped
	for id, p := range o.provenance {
		if cur, ok := a.provenance[id]; ok {
			cur.Merge(*p)
			continue
		}
		cp := *p
		a.provenance[id] = &cp
	}
}

// Len returns the number of positions handed out so far, filled or not.
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.slots)
}

// Count returns the number of records collected.
func (a *Aggregator) Count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.filled
}

// Dropped returns the number of records dropped for format errors.
func (a *Aggregator) Dropped() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dropped
}

// Done returns the collected records in order.
func (a *Aggregator) Done() domain.Collection {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make(domain.Collection, 0, a.filled)
	for _, s := range a.slots {
		if s.filled {
			out = append(out, s.rec)
		}
	}
	return out
}

// Provenance returns the recorded sources sorted by archive id.
func (a *Aggregator) Provenance() []domain.Provenance {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]domain.Provenance, 0, len(a.provenance))
	for _, p := range a.provenance {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

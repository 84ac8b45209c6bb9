// Package reduce removes redundant sequences from a collection.
//
// A record is redundant when an earlier record has exactly the same
// sequence, or when its sequence is a contiguous substring of a strictly
// longer record's sequence. Survivors keep their input order.
package reduce

import (
	"sort"
	"strings"

	"github.com/pbnjay/memory"
	"golang.org/x/sync/errgroup"

	"github.com/proteoparc/proteoparc/internal/domain"
)

// perRecordOverhead approximates the bookkeeping cost of one record:
// index slots, the dedup map entry and the output slice entry.
const perRecordOverhead = 128

// parallelThreshold is the survivor count below which the substring scan
// stays on one goroutine.
const parallelThreshold = 2048

type options struct {
	budget  int64
	workers int
}

// Option configures Reduce.
type Option func(*options)

// WithMemoryBudget makes Reduce refuse collections whose estimated working
// set exceeds bytes. Zero disables the check.
func WithMemoryBudget(bytes int64) Option {
	return func(o *options) { o.budget = bytes }
}

// WithWorkers splits the substring scan across n goroutines. The result is
// identical to a single-threaded run.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// DefaultBudget returns fraction of the machine's physical memory, or zero
// when the total cannot be determined.
func DefaultBudget(fraction float64) int64 {
	total := memory.TotalMemory()
	if total == 0 || fraction <= 0 {
		return 0
	}
	return int64(float64(total) * fraction)
}

// EstimateBytes approximates the memory Reduce needs for c.
func EstimateBytes(c domain.Collection) int64 {
	var n int64
	for _, r := range c {
		// sequence is referenced by the map key and the survivor slice
		n += int64(len(r.Sequence)) + perRecordOverhead
	}
	return n
}

// Reduce partitions c into retained and removed records.
//
// Phase one keeps the first record of every distinct sequence. Phase two
// orders the survivors by length (stable, so ties keep discovery order)
// and drops each one contained in a strictly longer survivor. Phase three
// restores input order. c is not modified.
func Reduce(c domain.Collection, opts ...Option) (domain.RedundancyResult, error) {
	o := options{workers: 1}
	for _, opt := range opts {
		opt(&o)
	}

	if o.budget > 0 {
		if need := EstimateBytes(c); need > o.budget {
			return domain.RedundancyResult{}, &domain.ResourceExhaustionError{
				Records: len(c),
				Needed:  need,
				Budget:  o.budget,
			}
		}
	}

	removed := make([]bool, len(c))

	survivors, exact := dropExact(c, removed)
	substring := dropContained(c, survivors, removed, o.workers)

	res := domain.RedundancyResult{
		Retained:       make(domain.Collection, 0, len(c)-exact-substring),
		Removed:        make(domain.Collection, 0, exact+substring),
		ExactCount:     exact,
		SubstringCount: substring,
	}
	for i, r := range c {
		if removed[i] {
			res.Removed = append(res.Removed, r)
		} else {
			res.Retained = append(res.Retained, r)
		}
	}
	return res, nil
}

// dropExact marks every repeat of an already seen sequence and returns the
// indexes of first occurrences in input order.
func dropExact(c domain.Collection, removed []bool) ([]int, int) {
	seen := make(map[string]struct{}, len(c))
	survivors := make([]int, 0, len(c))
	count := 0
	for i, r := range c {
		if _, dup := seen[r.Sequence]; dup {
			removed[i] = true
			count++
			continue
		}
		seen[r.Sequence] = struct{}{}
		survivors = append(survivors, i)
	}
	return survivors, count
}

// dropContained marks survivors whose sequence occurs inside a strictly
// longer survivor. Each record is tested against the longer ones one by
// one, so no match can span two sequences.
func dropContained(c domain.Collection, survivors []int, removed []bool, workers int) int {
	order := make([]int, len(survivors))
	copy(order, survivors)
	sort.SliceStable(order, func(a, b int) bool {
		return len(c[order[a]].Sequence) < len(c[order[b]].Sequence)
	})

	// longer[i] is the first position in order holding a sequence strictly
	// longer than order[i].
	longer := make([]int, len(order))
	next := 0
	for i, idx := range order {
		if next <= i {
			next = i + 1
		}
		n := len(c[idx].Sequence)
		for next < len(order) && len(c[order[next]].Sequence) <= n {
			next++
		}
		longer[i] = next
	}

	contained := make([]bool, len(order))
	scan := func(lo, hi int) {
		for i := lo; i < hi; i++ {
			s := c[order[i]].Sequence
			for _, j := range order[longer[i]:] {
				if strings.Contains(c[j].Sequence, s) {
					contained[i] = true
					break
				}
			}
		}
	}

	if workers <= 1 || len(order) < parallelThreshold {
		scan(0, len(order))
	} else {
		var g errgroup.Group
		g.SetLimit(workers)
		chunk := (len(order) + workers*4 - 1) / (workers * 4)
		for lo := 0; lo < len(order); lo += chunk {
			lo, hi := lo, min(lo+chunk, len(order))
			g.Go(func() error {
				scan(lo, hi)
				return nil
			})
		}
		_ = g.Wait()
	}

	count := 0
	for i, hit := range contained {
		if hit {
			removed[order[i]] = true
			count++
		}
	}
	return count
}

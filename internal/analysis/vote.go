package analysis

import (
	"cmp"
	"slices"
)

// Candidate is a hypothesised base address and the number of
// (pointer, string) pairs that agree on it.
type Candidate struct {
	Base    uint64 `json:"base"`
	Support int    `json:"support"`
}

// Ranking is the frozen outcome of a vote.
type Ranking struct {
	// Candidates are ordered by support descending, then base ascending.
	Candidates []Candidate `json:"candidates"`
	// Distinct is the number of candidates before singletons were dropped.
	Distinct int `json:"distinct"`
	// Votes is the total support before singletons were dropped.
	Votes int `json:"votes"`
}

// Best returns the inferred base. ok is false when no candidate survived.
func (r *Ranking) Best() (c Candidate, ok bool) {
	if r == nil || len(r.Candidates) == 0 {
		return Candidate{}, false
	}
	return r.Candidates[0], true
}

// Top returns at most n leading candidates.
func (r *Ranking) Top(n int) []Candidate {
	if r == nil {
		return nil
	}
	if n < 0 || n > len(r.Candidates) {
		n = len(r.Candidates)
	}
	return r.Candidates[:n]
}

// Share returns c's support as a fraction of all votes cast.
func (r *Ranking) Share(c Candidate) float64 {
	if r == nil || r.Votes == 0 {
		return 0
	}
	return float64(c.Support) / float64(r.Votes)
}

// Vote pairs every string offset with every address in the same page-offset
// bucket and tallies A-S for each pair with A >= S. Each address votes once
// per occurrence. Candidates supported by a single pair are dropped.
func Vote[T Word](strs, addrs *Index[T], jobs int) *Ranking {
	var keys []T
	for _, k := range strs.Keys() {
		if len(addrs.Bucket(k)) > 0 {
			keys = append(keys, k)
		}
	}

	spans := partition(len(keys), workers(jobs), 1)
	partials := fork(spans, jobs, func(s span) map[T]int {
		tally := make(map[T]int)
		for _, k := range keys[s.lo:s.hi] {
			tallyBucket(tally, strs.Bucket(k), addrs.Bucket(k))
		}
		return tally
	})

	tally := make(map[T]int)
	for _, p := range partials {
		for base, n := range p {
			tally[base] += n
		}
	}

	r := &Ranking{Distinct: len(tally)}
	for base, n := range tally {
		r.Votes += n
		if n > 1 {
			r.Candidates = append(r.Candidates, Candidate{Base: uint64(base), Support: n})
		}
	}
	slices.SortFunc(r.Candidates, func(a, b Candidate) int {
		if c := cmp.Compare(b.Support, a.Support); c != 0 {
			return c
		}
		return cmp.Compare(a.Base, b.Base)
	})
	return r
}

// tallyBucket adds the votes of one bucket. Both slices are sorted by value.
func tallyBucket[T Word](tally map[T]int, strs, addrs []Entry[T]) {
	for _, s := range strs {
		// first address not below the string offset
		i, _ := slices.BinarySearchFunc(addrs, s.Value, func(e Entry[T], t T) int {
			return cmp.Compare(e.Value, t)
		})
		for _, a := range addrs[i:] {
			tally[a.Value-s.Value] += a.Count * s.Count
		}
	}
}

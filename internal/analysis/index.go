package analysis

import (
	"cmp"
	"slices"
)

// Entry is a unique value in an Index together with how often it was seen.
type Entry[T Word] struct {
	Value T
	Count int
}

// Index buckets values by page offset. It is read-only once built.
type Index[T Word] struct {
	buckets map[T][]Entry[T]
	keys    []T
	total   int
}

// IndexStats summarises an Index for reporting.
type IndexStats struct {
	Values      int `json:"values"`
	Buckets     int `json:"buckets"`
	Occurrences int `json:"occurrences"`
}

// NewIndex buckets entries by PageKey. Entries with a non-positive count
// are ignored; duplicate values are merged by summing their counts.
func NewIndex[T Word](entries []Entry[T]) *Index[T] {
	merged := make(map[T]int, len(entries))
	for _, e := range entries {
		if e.Count > 0 {
			merged[e.Value] += e.Count
		}
	}

	idx := &Index[T]{buckets: make(map[T][]Entry[T])}
	for v, n := range merged {
		k := PageKey(v)
		idx.buckets[k] = append(idx.buckets[k], Entry[T]{Value: v, Count: n})
		idx.total += n
	}
	for k, b := range idx.buckets {
		slices.SortFunc(b, func(a, b Entry[T]) int { return cmp.Compare(a.Value, b.Value) })
		idx.keys = append(idx.keys, k)
	}
	slices.Sort(idx.keys)
	return idx
}

// newValueIndex builds an Index from distinct values that were each seen once.
func newValueIndex[T Word](values []T) *Index[T] {
	entries := make([]Entry[T], len(values))
	for i, v := range values {
		entries[i] = Entry[T]{Value: v, Count: 1}
	}
	return NewIndex(entries)
}

// Bucket returns the entries sharing key, sorted by value.
func (x *Index[T]) Bucket(key T) []Entry[T] {
	if x == nil {
		return nil
	}
	return x.buckets[key]
}

// Keys returns the bucket keys in ascending order.
func (x *Index[T]) Keys() []T {
	if x == nil {
		return nil
	}
	return x.keys
}

// Len returns the number of distinct values.
func (x *Index[T]) Len() int {
	if x == nil {
		return 0
	}
	n := 0
	for _, b := range x.buckets {
		n += len(b)
	}
	return n
}

// Count returns how often v was seen, or zero if v is absent.
func (x *Index[T]) Count(v T) int {
	b := x.Bucket(PageKey(v))
	i, ok := slices.BinarySearchFunc(b, v, func(e Entry[T], t T) int { return cmp.Compare(e.Value, t) })
	if !ok {
		return 0
	}
	return b[i].Count
}

// Values returns every distinct value in ascending order.
func (x *Index[T]) Values() []T {
	out := make([]T, 0, x.Len())
	for _, k := range x.Keys() {
		for _, e := range x.buckets[k] {
			out = append(out, e.Value)
		}
	}
	slices.Sort(out)
	return out
}

// Stats summarises the index.
func (x *Index[T]) Stats() IndexStats {
	if x == nil {
		return IndexStats{}
	}
	return IndexStats{Values: x.Len(), Buckets: len(x.keys), Occurrences: x.total}
}

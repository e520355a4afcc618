package analysis

import (
	"cmp"
	"encoding/binary"
	"slices"
)

// AddressConfig controls LocateAddresses.
type AddressConfig struct {
	Order      binary.ByteOrder
	MaxResults int // 0 keeps everything
	Jobs       int
}

// LocateAddresses decodes every aligned word of buf and returns the non-zero
// values that occur more than once, bucketed by page offset. A value stored
// in a single slot is more likely scalar data than a pointer.
func LocateAddresses[T Word](buf []byte, cfg AddressConfig) *Index[T] {
	size := WordSize[T]()
	n := len(buf) - len(buf)%size // trailing partial word is ignored
	if cfg.Order == nil || n == 0 {
		return NewIndex[T](nil)
	}
	decode := DecoderFor[T](cfg.Order)

	spans := partition(n, workers(cfg.Jobs), size)
	partials := fork(spans, cfg.Jobs, func(s span) map[T]int {
		counts := make(map[T]int)
		for off := s.lo; off+size <= s.hi; off += size {
			if v := decode(buf[off : off+size]); v != 0 {
				counts[v]++
			}
		}
		return counts
	})

	freq := partials[0]
	for _, p := range partials[1:] {
		for v, c := range p {
			freq[v] += c
		}
	}

	entries := make([]Entry[T], 0, len(freq))
	for v, c := range freq {
		if c > 1 {
			entries = append(entries, Entry[T]{Value: v, Count: c})
		}
	}
	if cfg.MaxResults > 0 && len(entries) > cfg.MaxResults {
		slices.SortFunc(entries, func(a, b Entry[T]) int {
			if c := cmp.Compare(b.Count, a.Count); c != 0 {
				return c
			}
			return cmp.Compare(a.Value, b.Value)
		})
		entries = entries[:cfg.MaxResults]
	}
	return NewIndex(entries)
}

package analysis

// Reference is one (pointer, string) pair supporting a candidate base.
type Reference struct {
	Address  uint64 `json:"address"`  // pointer value found in the image
	Offset   uint64 `json:"offset"`   // file offset of the string it points to
	Pointers int    `json:"pointers"` // aligned slots holding the pointer
	Text     string `json:"text"`
}

// evidenceSource is a width-independent view of an Index.
type evidenceSource interface {
	values() []uint64
	count(v uint64) int
	fits(v uint64) bool
}

type indexSource[T Word] struct {
	idx *Index[T]
}

func (s indexSource[T]) values() []uint64 {
	vs := s.idx.Values()
	out := make([]uint64, len(vs))
	for i, v := range vs {
		out[i] = uint64(v)
	}
	return out
}

func (s indexSource[T]) fits(v uint64) bool {
	return v <= uint64(^T(0))
}

func (s indexSource[T]) count(v uint64) int {
	if !s.fits(v) {
		return 0
	}
	return s.idx.Count(T(v))
}

// Evidence lists up to limit string references explained by base, in
// string-offset order. buf must be the image the Result was computed from.
// A non-positive limit lists every reference.
func (r *Result) Evidence(buf []byte, base uint64, limit int) []Reference {
	if r == nil || r.strs == nil || r.addrs == nil {
		return nil
	}

	var refs []Reference
	for _, off := range r.strs.values() {
		addr := base + off
		if addr < off || !r.addrs.fits(addr) {
			break // wrapped past the word width; later offsets wrap too
		}
		n := r.addrs.count(addr)
		if n == 0 {
			continue
		}
		text, _ := stringAt(buf, off, MaxEvidenceText)
		refs = append(refs, Reference{
			Address:  addr,
			Offset:   off,
			Pointers: n,
			Text:     EscapeUnprintable(text),
		})
		if limit > 0 && len(refs) == limit {
			break
		}
	}
	return refs
}

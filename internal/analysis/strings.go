package analysis

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Charset is a byte-level membership table for printable string bytes.
type Charset [256]bool

// ParseCharset compiles the body of a regular-expression character class,
// such as "a-zA-Z0-9_", into a Charset. Each byte is matched as the Latin-1
// code point of the same value.
func ParseCharset(class string) (*Charset, error) {
	if class == "" {
		return nil, fmt.Errorf("%w: empty printable class", ErrInvalidOptions)
	}
	re, err := regexp.Compile("^[" + class + "]$")
	if err != nil {
		return nil, fmt.Errorf("%w: printable class %q: %v", ErrInvalidOptions, class, err)
	}

	var cs Charset
	members := 0
	for b := 0; b < len(cs); b++ {
		if b == 0 {
			// NUL terminates strings and can never be part of one
			continue
		}
		if re.MatchString(string(rune(b))) {
			cs[b] = true
			members++
		}
	}
	if members == 0 {
		return nil, fmt.Errorf("%w: printable class %q matches no bytes", ErrInvalidOptions, class)
	}
	return &cs, nil
}

// StringConfig controls LocateStrings.
type StringConfig struct {
	Charset    *Charset
	MinLen     int
	MaxLen     int
	MaxResults int // 0 keeps everything
	Jobs       int
}

// LocateStrings returns the file offsets of every maximal run of charset
// bytes with a length in [MinLen, MaxLen] that is followed by a NUL byte,
// bucketed by page offset. Offsets that do not fit in T are skipped.
func LocateStrings[T Word](buf []byte, cfg StringConfig) *Index[T] {
	if cfg.Charset == nil || cfg.MinLen < 1 || cfg.MaxLen < cfg.MinLen || len(buf) < cfg.MinLen+1 {
		return newValueIndex[T](nil)
	}

	spans := partition(len(buf), workers(cfg.Jobs), 1)
	found := fork(spans, cfg.Jobs, func(s span) []int {
		return findStrings(buf, s, cfg)
	})

	var offsets []int
	for _, f := range found {
		offsets = append(offsets, f...)
	}
	slices.Sort(offsets)
	offsets = slices.Compact(offsets)
	if cfg.MaxResults > 0 && len(offsets) > cfg.MaxResults {
		offsets = offsets[:cfg.MaxResults]
	}

	values := make([]T, 0, len(offsets))
	for _, off := range offsets {
		if fits[T](off) {
			values = append(values, T(off))
		}
	}
	return newValueIndex(values)
}

// findStrings scans the runs that start inside s. A run may extend past
// s.hi; it is read from buf directly.
func findStrings(buf []byte, s span, cfg StringConfig) []int {
	cs := cfg.Charset
	var out []int

	i := s.lo
	if i > 0 && cs[buf[i-1]] {
		// continuation of a run owned by the previous span
		for i < s.hi && cs[buf[i]] {
			i++
		}
	}

	for i < s.hi {
		if !cs[buf[i]] {
			i++
			continue
		}
		start := i
		limit := start + cfg.MaxLen + 1
		for i < len(buf) && i < limit && cs[buf[i]] {
			i++
		}
		if i == limit {
			// longer than MaxLen: skip the rest of the run
			for i < s.hi && cs[buf[i]] {
				i++
			}
			continue
		}
		if i-start >= cfg.MinLen && i < len(buf) && buf[i] == 0 {
			out = append(out, start)
		}
	}
	return out
}

// stringAt reads the NUL-terminated string at off, up to limit bytes.
func stringAt(buf []byte, off uint64, limit int) ([]byte, bool) {
	if off >= uint64(len(buf)) {
		return nil, false
	}
	end := min(uint64(len(buf)), off+uint64(limit))
	raw := buf[off:end]
	if n := slices.Index(raw, 0); n >= 0 {
		raw = raw[:n]
	}
	return raw, true
}

// EscapeUnprintable returns a string where printable Unicode runes are preserved.
// Control and unprintable runes are escaped as \uXXXX. Invalid UTF-8 is escaped as \xXX.
func EscapeUnprintable(b []byte) string {
	var sb strings.Builder
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size == 1 {
			// Invalid UTF-8 sequence, escape the byte
			sb.WriteString(fmt.Sprintf("\\x%02X", b[0]))
		} else if unicode.IsPrint(r) {
			sb.WriteRune(r)
		} else {
			sb.WriteString(fmt.Sprintf("\\u%04X", r))
		}
		b = b[size:]
	}
	return sb.String()
}

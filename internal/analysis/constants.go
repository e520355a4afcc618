// Package analysis infers the load base of a flat binary image.
// It locates NUL-terminated strings and pointer-like words and votes on
// the base address that best explains pointers to those strings.
package analysis

// Constants for analysis operations
const (
	// PageOffsetMask selects the in-page offset of a value (4 KiB pages).
	PageOffsetMask = 0xFFF

	// DefaultMinStringLength is the shortest string considered a candidate
	DefaultMinStringLength = 10

	// DefaultMaxStringLength is the longest string considered a candidate
	DefaultMaxStringLength = 1024

	// DefaultMaxStrings caps the number of string offsets entering the vote
	DefaultMaxStrings = 1 << 20

	// DefaultMaxAddresses caps the number of distinct addresses entering the vote
	DefaultMaxAddresses = 1 << 20

	// DefaultTop is how many ranked candidates are reported
	DefaultTop = 10

	// DefaultCharset is the printable class used for string candidates
	DefaultCharset = "a-zA-Z0-9_"

	// MaxEvidenceText bounds the text read back for an evidence string
	MaxEvidenceText = 256
)

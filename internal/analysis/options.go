package analysis

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidOptions is wrapped by every configuration error.
var ErrInvalidOptions = errors.New("invalid options")

// Options configures a base inference run.
type Options struct {
	Width        int              // word width in bits: 32 or 64
	Order        binary.ByteOrder // byte order of pointer words
	MinLen       int              // shortest string, in bytes
	MaxLen       int              // longest string, in bytes
	Charset      string           // character class body of string bytes
	MaxStrings   int              // cap on string offsets, 0 for no cap
	MaxAddresses int              // cap on distinct addresses, 0 for no cap
	Jobs         int              // worker count, 0 for GOMAXPROCS
	Top          int              // ranked candidates to report
}

// DefaultOptions returns the options of a 32-bit little-endian image.
func DefaultOptions() Options {
	return Options{
		Width:        32,
		Order:        binary.LittleEndian,
		MinLen:       DefaultMinStringLength,
		MaxLen:       DefaultMaxStringLength,
		Charset:      DefaultCharset,
		MaxStrings:   DefaultMaxStrings,
		MaxAddresses: DefaultMaxAddresses,
		Top:          DefaultTop,
	}
}

// Validate reports the first configuration error in o.
func (o Options) Validate() error {
	_, err := o.charset()
	return err
}

func (o Options) charset() (*Charset, error) {
	switch {
	case o.Width != 32 && o.Width != 64:
		return nil, fmt.Errorf("%w: word width must be 32 or 64, got %d", ErrInvalidOptions, o.Width)
	case o.Order == nil:
		return nil, fmt.Errorf("%w: byte order is required", ErrInvalidOptions)
	case o.MinLen < 1:
		return nil, fmt.Errorf("%w: minimum string length must be positive, got %d", ErrInvalidOptions, o.MinLen)
	case o.MinLen > o.MaxLen:
		return nil, fmt.Errorf("%w: minimum string length %d exceeds maximum %d", ErrInvalidOptions, o.MinLen, o.MaxLen)
	case o.MaxStrings < 0 || o.MaxAddresses < 0:
		return nil, fmt.Errorf("%w: sampling caps cannot be negative", ErrInvalidOptions)
	case o.Jobs < 0:
		return nil, fmt.Errorf("%w: jobs cannot be negative, got %d", ErrInvalidOptions, o.Jobs)
	case o.Top < 0:
		return nil, fmt.Errorf("%w: top cannot be negative, got %d", ErrInvalidOptions, o.Top)
	}
	return ParseCharset(o.Charset)
}

// ParseByteOrder maps "little"/"le" and "big"/"be" to a byte order.
func ParseByteOrder(s string) (binary.ByteOrder, error) {
	switch strings.ToLower(s) {
	case "little", "le", "":
		return binary.LittleEndian, nil
	case "big", "be":
		return binary.BigEndian, nil
	}
	return nil, fmt.Errorf("%w: unknown byte order %q", ErrInvalidOptions, s)
}

// ByteOrderName is the inverse of ParseByteOrder.
func ByteOrderName(order binary.ByteOrder) string {
	if order == binary.BigEndian {
		return "big"
	}
	return "little"
}

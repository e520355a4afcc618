package analysis

import (
	"encoding/binary"
	"unsafe"
)

// Word is an address-sized unsigned integer.
type Word interface {
	~uint32 | ~uint64
}

// Decoder turns exactly one word worth of bytes into a value.
type Decoder[T Word] func([]byte) T

// WordSize returns the size of T in bytes.
func WordSize[T Word]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// DecoderFor returns the decoder for T under the given byte order.
func DecoderFor[T Word](order binary.ByteOrder) Decoder[T] {
	if WordSize[T]() == 4 {
		return func(b []byte) T { return T(order.Uint32(b)) }
	}
	return func(b []byte) T { return T(order.Uint64(b)) }
}

// PageKey returns the bucket key of v.
func PageKey[T Word](v T) T {
	return v & PageOffsetMask
}

// fits reports whether the file offset off is representable in T.
func fits[T Word](off int) bool {
	limit := ^T(0)
	return off >= 0 && uint64(off) <= uint64(limit)
}

package analysis

import (
	"encoding/binary"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecoderFor(t *testing.T) {
	raw := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}

	assert.Equal(t, uint32(0x04030201), DecoderFor[uint32](binary.LittleEndian)(raw[:4]))
	assert.Equal(t, uint32(0x01020304), DecoderFor[uint32](binary.BigEndian)(raw[:4]))
	assert.Equal(t, uint64(0x0807060504030201), DecoderFor[uint64](binary.LittleEndian)(raw))
	assert.Equal(t, uint64(0x0102030405060708), DecoderFor[uint64](binary.BigEndian)(raw))
}

func TestWordSize(t *testing.T) {
	assert.Equal(t, 4, WordSize[uint32]())
	assert.Equal(t, 8, WordSize[uint64]())
}

func TestFits(t *testing.T) {
	assert.True(t, fits[uint32](0xFFFFFFFF))
	assert.False(t, fits[uint32](0x1_0000_0000))
	assert.True(t, fits[uint64](0x1_0000_0000))
	assert.False(t, fits[uint64](-1))
}

// A page-aligned base never moves a value to another bucket, so bucketing
// cannot drop a true (pointer, string) match.
func TestPageKeyPreservedByAlignedBase(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for range 10000 {
		base := rng.Uint64() &^ PageOffsetMask
		s := rng.Uint64() >> 1
		a := s + base
		if a < s {
			continue
		}
		assert.Equal(t, PageKey(s), PageKey(a), "base %#x string %#x", base, s)
		assert.Equal(t, base, a-s)
	}
}

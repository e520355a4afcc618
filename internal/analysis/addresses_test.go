package analysis

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocateAddresses32(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		t.Run(order.String(), func(t *testing.T) {
			im := newImage(t, 0x43, order) // 16 words plus a partial one
			im.word32(0x00, 0x1000).word32(0x04, 0x1000)
			im.word32(0x08, 0x2000)
			im.word32(0x10, 0x3000).word32(0x14, 0x3000).word32(0x30, 0x3000)
			copy(im.buf[0x40:], []byte{0x11, 0x11, 0x11}) // ignored

			for _, jobs := range []int{1, 2, 5, 16} {
				idx := LocateAddresses[uint32](im.buf, AddressConfig{Order: order, Jobs: jobs})
				assert.Equal(t, []uint32{0x1000, 0x3000}, idx.Values(), "jobs=%d", jobs)
				assert.Equal(t, 2, idx.Count(0x1000))
				assert.Equal(t, 3, idx.Count(0x3000))
				assert.Zero(t, idx.Count(0x2000), "a single occurrence is not an address")
				assert.Zero(t, idx.Count(0), "zero is never an address")
			}
		})
	}
}

func TestLocateAddresses64(t *testing.T) {
	im := newImage(t, 0x40, binary.BigEndian)
	im.word64(0x00, 0xffff_0000_0040_1000).word64(0x18, 0xffff_0000_0040_1000)
	im.word64(0x08, 0x0000_0000_0040_1000)

	idx := LocateAddresses[uint64](im.buf, AddressConfig{Order: binary.BigEndian})
	assert.Equal(t, []uint64{0xffff_0000_0040_1000}, idx.Values())
	assert.Equal(t, []uint64{0x000}, idx.Keys())
}

func TestLocateAddressesCap(t *testing.T) {
	im := newImage(t, 0x40, binary.LittleEndian)
	for off := 0; off < 0x10; off += 4 {
		im.word32(off, 0xaaaa) // four times
	}
	for off := 0x10; off < 0x1c; off += 4 {
		im.word32(off, 0xcccc) // three times
	}
	for off := 0x20; off < 0x28; off += 4 {
		im.word32(off, 0xbbbb) // twice
	}
	for off := 0x28; off < 0x30; off += 4 {
		im.word32(off, 0x9999) // twice
	}

	idx := LocateAddresses[uint32](im.buf, AddressConfig{Order: binary.LittleEndian, MaxResults: 3})
	assert.Equal(t, []uint32{0x9999, 0xaaaa, 0xcccc}, idx.Values())
}

func TestLocateAddressesDegenerate(t *testing.T) {
	cfg := AddressConfig{Order: binary.LittleEndian}
	assert.Zero(t, LocateAddresses[uint32](nil, cfg).Len())
	assert.Zero(t, LocateAddresses[uint32]([]byte{1, 2, 3}, cfg).Len())
	assert.Zero(t, LocateAddresses[uint64]([]byte{1, 0, 0, 0, 1, 0, 0}, cfg).Len())
	assert.Zero(t, LocateAddresses[uint64](make([]byte, 64), cfg).Len())
	assert.Zero(t, LocateAddresses[uint32](make([]byte, 64), AddressConfig{}).Len())
}

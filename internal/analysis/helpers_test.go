package analysis

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// image is a small builder for synthetic firmware blobs.
type image struct {
	t     *testing.T
	buf   []byte
	order binary.ByteOrder
}

func newImage(t *testing.T, size int, order binary.ByteOrder) *image {
	t.Helper()
	return &image{t: t, buf: make([]byte, size), order: order}
}

// cstring writes s followed by a NUL at off.
func (im *image) cstring(off int, s string) *image {
	im.t.Helper()
	require.LessOrEqual(im.t, off+len(s)+1, len(im.buf), "string does not fit")
	copy(im.buf[off:], s)
	im.buf[off+len(s)] = 0
	return im
}

func (im *image) word32(off int, v uint32) *image {
	im.t.Helper()
	require.Zero(im.t, off%4, "unaligned 32-bit word")
	im.order.PutUint32(im.buf[off:], v)
	return im
}

func (im *image) word64(off int, v uint64) *image {
	im.t.Helper()
	require.Zero(im.t, off%8, "unaligned 64-bit word")
	im.order.PutUint64(im.buf[off:], v)
	return im
}

func testOptions(width int, order binary.ByteOrder) Options {
	opts := DefaultOptions()
	opts.Width = width
	opts.Order = order
	return opts
}

func mustCharset(t *testing.T, class string) *Charset {
	t.Helper()
	cs, err := ParseCharset(class)
	require.NoError(t, err)
	return cs
}

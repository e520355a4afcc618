// Package image memory-maps flat binary images and maps runtime addresses
// back to file offsets once a load base is known.
package image

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Image is a read-only view of a flat binary. The whole file is one segment
// loaded at Base.
type Image struct {
	Path string
	All  []byte
	Base uint64

	unmap func() error
}

// Open maps the file at path read-only. A zero-length file yields an empty
// image.
func Open(path string) (*Image, error) {
	data, unmap, err := mapFile(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	return &Image{Path: path, All: data, unmap: unmap}, nil
}

// Close releases the mapping. It is safe to call more than once.
func (im *Image) Close() error {
	if im.unmap == nil {
		return nil
	}
	err := im.unmap()
	im.unmap = nil
	im.All = nil
	return err
}

// Size is the image length in bytes.
func (im *Image) Size() int {
	return len(im.All)
}

// Digest returns the hex SHA-256 of the image contents.
func (im *Image) Digest() string {
	sum := sha256.Sum256(im.All)
	return hex.EncodeToString(sum[:])
}

// Rebase sets the address the image is assumed to be loaded at.
func (im *Image) Rebase(base uint64) {
	im.Base = base
}

// VA2Off converts a runtime address to a file offset.
func (im *Image) VA2Off(va uint64) (uint64, bool) {
	if va < im.Base {
		return 0, false
	}
	off := va - im.Base
	if off >= uint64(len(im.All)) {
		return 0, false
	}
	return off, true
}

// Off2VA converts a file offset to a runtime address.
func (im *Image) Off2VA(off uint64) (uint64, bool) {
	if off >= uint64(len(im.All)) {
		return 0, false
	}
	va := im.Base + off
	if va < off {
		return 0, false
	}
	return va, true
}

// ReadCStringVA reads the NUL-terminated string at va, truncated to limit
// bytes. An unterminated string running to the end of the image is returned
// as is.
func (im *Image) ReadCStringVA(va uint64, limit int) ([]byte, bool) {
	off, ok := im.VA2Off(va)
	if !ok {
		return nil, false
	}
	end := uint64(len(im.All))
	if limit > 0 && off+uint64(limit) < end {
		end = off + uint64(limit)
	}
	s := im.All[off:end]
	if i := bytes.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return s, true
}

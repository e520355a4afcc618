package analysis

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 0x2000-byte image with one identifier at 0x100 and the pointer 0x9100
// stored twice.
func scenarioA(t *testing.T) []byte {
	im := newImage(t, 0x2000, binary.LittleEndian)
	im.cstring(0x100, "firmware_identifier1")
	im.word64(0x1000, 0x9100)
	im.word64(0x1800, 0x9100)
	return im.buf
}

func TestRunScenarioA(t *testing.T) {
	opts := testOptions(64, binary.LittleEndian)
	opts.MinLen, opts.MaxLen = 10, 32

	res, err := Run(scenarioA(t), opts, nil)
	require.NoError(t, err)

	best, ok := res.Best()
	require.True(t, ok)
	assert.Equal(t, Candidate{Base: 0x9000, Support: 2}, best)
	assert.Equal(t, IndexStats{Values: 1, Buckets: 1, Occurrences: 1}, res.Strings)
	assert.Equal(t, IndexStats{Values: 1, Buckets: 1, Occurrences: 2}, res.Addresses)
}

// synthetic builds an image whose strings are referenced through a pointer
// table, each pointer stored twice, as a loader at base would see them.
func synthetic(t *testing.T, width int, order binary.ByteOrder, base uint64) ([]byte, []int) {
	im := newImage(t, 0x10000, order)
	var offsets []int
	for i := range 24 {
		off := 0x800 + i*0x1d3
		im.cstring(off, fmt.Sprintf("symbol_name_%04d", i))
		offsets = append(offsets, off)
	}

	size := width / 8
	slot := 0x8000
	for _, off := range offsets {
		for range 2 {
			if width == 32 {
				im.word32(slot, uint32(base)+uint32(off))
			} else {
				im.word64(slot, base+uint64(off))
			}
			slot += size
		}
	}
	// scalar noise that occurs once per slot
	for i := 0; i < 0x400; i += size {
		if width == 32 {
			im.word32(0xc000+i, uint32(0x1234_5000+i*7))
		} else {
			im.word64(0xc000+i, uint64(0x1234_5000+i*7))
		}
	}
	return im.buf, offsets
}

func TestRunRecoversSyntheticBase(t *testing.T) {
	tests := []struct {
		width int
		order binary.ByteOrder
		base  uint64
	}{
		{32, binary.LittleEndian, 0x0800_0000},
		{32, binary.BigEndian, 0x8000_0000},
		{64, binary.LittleEndian, 0xffff_ff80_0010_0000},
		{64, binary.BigEndian, 0x4_0000_0000},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d-%s-%#x", tt.width, ByteOrderName(tt.order), tt.base), func(t *testing.T) {
			buf, offsets := synthetic(t, tt.width, tt.order, tt.base)
			opts := testOptions(tt.width, tt.order)

			res, err := Run(buf, opts, nil)
			require.NoError(t, err)
			best, ok := res.Best()
			require.True(t, ok)
			assert.Equal(t, tt.base, best.Base)
			assert.Equal(t, 2*len(offsets), best.Support)
		})
	}
}

func TestRunIsIdempotent(t *testing.T) {
	buf, _ := synthetic(t, 32, binary.LittleEndian, 0x2000_0000)

	var first *Result
	for _, jobs := range []int{1, 2, 3, 8, 0} {
		opts := testOptions(32, binary.LittleEndian)
		opts.Jobs = jobs
		res, err := Run(buf, opts, nil)
		require.NoError(t, err)
		if first == nil {
			first = res
			continue
		}
		assert.Equal(t, first.Ranking, res.Ranking, "jobs=%d", jobs)
		assert.Equal(t, first.Strings, res.Strings, "jobs=%d", jobs)
		assert.Equal(t, first.Addresses, res.Addresses, "jobs=%d", jobs)
	}
}

func TestRunDegenerateImages(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
	}{
		{name: "empty", buf: nil},
		{name: "shorter than a word", buf: []byte{1, 2, 3}},
		{name: "shorter than min length", buf: []byte("abc\x00")},
		{name: "all zero", buf: make([]byte, 4096)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Run(tt.buf, testOptions(32, binary.LittleEndian), nil)
			require.NoError(t, err)
			_, ok := res.Best()
			assert.False(t, ok)
			assert.Zero(t, res.Strings.Values)
			assert.Zero(t, res.Addresses.Values)
		})
	}
}

func TestRunRejectsInvalidOptions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *Options)
	}{
		{name: "width", mutate: func(o *Options) { o.Width = 16 }},
		{name: "byte order", mutate: func(o *Options) { o.Order = nil }},
		{name: "min above max", mutate: func(o *Options) { o.MinLen, o.MaxLen = 20, 10 }},
		{name: "zero min", mutate: func(o *Options) { o.MinLen = 0 }},
		{name: "charset", mutate: func(o *Options) { o.Charset = "z-a" }},
		{name: "negative cap", mutate: func(o *Options) { o.MaxStrings = -1 }},
		{name: "negative jobs", mutate: func(o *Options) { o.Jobs = -2 }},
		{name: "negative top", mutate: func(o *Options) { o.Top = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			require.True(t, errors.Is(opts.Validate(), ErrInvalidOptions))

			obs := &recorder{}
			res, err := Run([]byte("some_image_text\x00"), opts, obs)
			require.ErrorIs(t, err, ErrInvalidOptions)
			assert.Nil(t, res)
			assert.Empty(t, obs.started, "no phase may start on a configuration error")
		})
	}
}

type recorder struct {
	mu       sync.Mutex
	started  []Phase
	finished map[Phase]int
}

func (r *recorder) PhaseStarted(p Phase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, p)
}

func (r *recorder) PhaseFinished(p Phase, count int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finished == nil {
		r.finished = make(map[Phase]int)
	}
	r.finished[p] = count
}

func TestRunReportsPhases(t *testing.T) {
	opts := testOptions(64, binary.LittleEndian)
	obs := &recorder{}

	_, err := Run(scenarioA(t), opts, obs)
	require.NoError(t, err)

	assert.ElementsMatch(t, []Phase{PhaseStrings, PhaseAddresses, PhaseVote}, obs.started)
	assert.Equal(t, PhaseVote, obs.started[2], "voting starts after both locators")
	assert.Equal(t, map[Phase]int{PhaseStrings: 1, PhaseAddresses: 1, PhaseVote: 1}, obs.finished)
}

func TestParseByteOrder(t *testing.T) {
	for _, in := range []string{"little", "LE", ""} {
		order, err := ParseByteOrder(in)
		require.NoError(t, err)
		assert.Equal(t, binary.LittleEndian, order)
	}
	for _, in := range []string{"big", "BE"} {
		order, err := ParseByteOrder(in)
		require.NoError(t, err)
		assert.Equal(t, binary.BigEndian, order)
	}
	_, err := ParseByteOrder("middle")
	assert.ErrorIs(t, err, ErrInvalidOptions)

	assert.Equal(t, "big", ByteOrderName(binary.BigEndian))
	assert.Equal(t, "little", ByteOrderName(binary.LittleEndian))
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "strings", PhaseStrings.String())
	assert.Equal(t, "addresses", PhaseAddresses.String())
	assert.Equal(t, "vote", PhaseVote.String())
	assert.Equal(t, "unknown", Phase(9).String())
}

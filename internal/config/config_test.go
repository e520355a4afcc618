package config

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"basefind/internal/analysis"
)

func TestDefaultMatchesAnalysisDefaults(t *testing.T) {
	opts, err := Default().Options()
	require.NoError(t, err)
	assert.Equal(t, analysis.DefaultOptions(), opts)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		check   func(t *testing.T, c *Config)
		wantErr string
	}{
		{
			name:  "empty document",
			doc:   "",
			check: func(t *testing.T, c *Config) { assert.Equal(t, Default(), c) },
		},
		{
			name: "partial override",
			doc:  "width: 64\nendian: big\nmin-length: 6\n",
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, 64, c.Width)
				assert.Equal(t, "big", c.Endian)
				assert.Equal(t, 6, c.MinLength)
				assert.Equal(t, analysis.DefaultMaxStringLength, c.MaxLength, "unset keys keep defaults")
			},
		},
		{
			name:    "unknown key",
			doc:     "widht: 64\n",
			wantErr: "widht",
		},
		{
			name:    "wrong type",
			doc:     "jobs: many\n",
			wantErr: "decode config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Decode(strings.NewReader(tt.doc))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, c)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "basefind.yaml")
	doc := "width: 64\nendian: be\ncharset: '\\x20-\\x7e'\nmax-strings: 0\njobs: 2\ntop: 3\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	opts, err := c.Options()
	require.NoError(t, err)
	assert.Equal(t, 64, opts.Width)
	assert.Equal(t, binary.BigEndian, opts.Order)
	assert.Equal(t, `\x20-\x7e`, opts.Charset)
	assert.Zero(t, opts.MaxStrings)
	assert.Equal(t, 2, opts.Jobs)
	assert.Equal(t, 3, opts.Top)
}

func TestLoadErrorsNameTheFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("top: [1\n"), 0o644))
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestOptionsRejectsInvalidValues(t *testing.T) {
	for _, mutate := range []func(c *Config){
		func(c *Config) { c.Width = 16 },
		func(c *Config) { c.Endian = "middle" },
		func(c *Config) { c.MinLength = 0 },
		func(c *Config) { c.Charset = "" },
	} {
		c := Default()
		mutate(c)
		_, err := c.Options()
		assert.ErrorIs(t, err, analysis.ErrInvalidOptions)
	}
}

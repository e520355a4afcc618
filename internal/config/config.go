// Package config loads the optional YAML configuration file of basefind.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"basefind/internal/analysis"
)

// Config defines all options that can be set through the configuration file.
// Command-line flags take precedence over the file.
type Config struct {
	// Width is the pointer width in bits.
	Width int `yaml:"width" json:"width" jsonschema:"title=Word Width,description=Pointer width in bits,enum=32,enum=64,default=32"`
	// Endian is the byte order of pointer words.
	Endian string `yaml:"endian" json:"endian" jsonschema:"title=Byte Order,description=Byte order of pointer words,enum=little,enum=big,default=little"`

	MinLength int `yaml:"min-length" json:"minLength" jsonschema:"title=Minimum String Length,minimum=1,default=10"`
	MaxLength int `yaml:"max-length" json:"maxLength" jsonschema:"title=Maximum String Length,minimum=1,default=1024"`
	// Charset is a regular-expression character class body, without brackets.
	Charset string `yaml:"charset" json:"charset" jsonschema:"title=Charset,description=Character class of string bytes,default=a-zA-Z0-9_"`

	// Sampling caps. Zero disables a cap.
	MaxStrings   int `yaml:"max-strings" json:"maxStrings" jsonschema:"title=Maximum Strings,description=Cap on string offsets (0 disables),minimum=0"`
	MaxAddresses int `yaml:"max-addresses" json:"maxAddresses" jsonschema:"title=Maximum Addresses,description=Cap on distinct repeated addresses (0 disables),minimum=0"`

	Jobs  int  `yaml:"jobs" json:"jobs" jsonschema:"title=Jobs,description=Worker count (0 uses every CPU),minimum=0"`
	Top   int  `yaml:"top" json:"top" jsonschema:"title=Top,description=Ranked candidates to report,minimum=0,default=10"`
	Debug bool `yaml:"debug" json:"debug" jsonschema:"title=Debug,description=Enable debug logging"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	opts := analysis.DefaultOptions()
	return &Config{
		Width:        opts.Width,
		Endian:       analysis.ByteOrderName(opts.Order),
		MinLength:    opts.MinLen,
		MaxLength:    opts.MaxLen,
		Charset:      opts.Charset,
		MaxStrings:   opts.MaxStrings,
		MaxAddresses: opts.MaxAddresses,
		Jobs:         opts.Jobs,
		Top:          opts.Top,
	}
}

// Load reads the file at path on top of the defaults. Unknown keys are
// rejected so that typos do not silently fall back to defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	c, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Decode reads a YAML document from r on top of the defaults. An empty
// document yields the defaults.
func Decode(r io.Reader) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}

// Options converts c to validated analysis options.
func (c *Config) Options() (analysis.Options, error) {
	order, err := analysis.ParseByteOrder(c.Endian)
	if err != nil {
		return analysis.Options{}, err
	}
	opts := analysis.Options{
		Width:        c.Width,
		Order:        order,
		MinLen:       c.MinLength,
		MaxLen:       c.MaxLength,
		Charset:      c.Charset,
		MaxStrings:   c.MaxStrings,
		MaxAddresses: c.MaxAddresses,
		Jobs:         c.Jobs,
		Top:          c.Top,
	}
	if err := opts.Validate(); err != nil {
		return analysis.Options{}, err
	}
	return opts, nil
}

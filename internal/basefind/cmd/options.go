package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"basefind/internal/analysis"
	"basefind/internal/basefind/log"
	"basefind/internal/config"
)

// addAnalysisFlags registers the flags shared by every command that runs the
// pipeline.
func addAnalysisFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.Bool("32", false, "File is 32-bit (default)")
	flags.Bool("64", false, "File is 64-bit")
	flags.Bool("little", false, "File is little-endian (default)")
	flags.Bool("big", false, "File is big-endian")
	flags.Int("min", analysis.DefaultMinStringLength, "Minimum string length")
	flags.Int("max", analysis.DefaultMaxStringLength, "Maximum string length")
	flags.String("charset", analysis.DefaultCharset, "Character class of string bytes")
	flags.Int("max-strings", analysis.DefaultMaxStrings, "Cap on string offsets (0 disables)")
	flags.Int("max-addresses", analysis.DefaultMaxAddresses, "Cap on distinct repeated addresses (0 disables)")
	flags.IntP("jobs", "j", 0, "Number of workers (0 uses every CPU)")
	flags.Int("top", analysis.DefaultTop, "Number of ranked candidates to report")
	flags.String("config", "", "YAML configuration file")
	flags.BoolP("debug", "d", false, "Debug")

	cmd.MarkFlagsMutuallyExclusive("32", "64")
	cmd.MarkFlagsMutuallyExclusive("little", "big")
}

// loadConfig merges the configuration file with the flags the user set
// explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()

	c := config.Default()
	if path, _ := flags.GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		c = loaded
	}

	set := func(name string) bool {
		v, _ := flags.GetBool(name)
		return flags.Changed(name) && v
	}
	switch {
	case set("32"):
		c.Width = 32
	case set("64"):
		c.Width = 64
	}
	switch {
	case set("little"):
		c.Endian = "little"
	case set("big"):
		c.Endian = "big"
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"min", &c.MinLength},
		{"max", &c.MaxLength},
		{"max-strings", &c.MaxStrings},
		{"max-addresses", &c.MaxAddresses},
		{"jobs", &c.Jobs},
		{"top", &c.Top},
	}
	for _, f := range ints {
		if flags.Changed(f.name) {
			*f.dst, _ = flags.GetInt(f.name)
		}
	}
	if flags.Changed("charset") {
		c.Charset, _ = flags.GetString("charset")
	}
	if flags.Changed("debug") {
		c.Debug, _ = flags.GetBool("debug")
	}
	return c, nil
}

// setup resolves the configuration, installs logging and returns the
// validated analysis options.
func setup(cmd *cobra.Command) (analysis.Options, error) {
	c, err := loadConfig(cmd)
	if err != nil {
		return analysis.Options{}, err
	}
	log.Setup(c.Debug)

	opts, err := c.Options()
	if err != nil {
		return analysis.Options{}, fmt.Errorf("configuration: %w", err)
	}
	slog.Debug("Resolved options",
		"width", opts.Width,
		"endian", analysis.ByteOrderName(opts.Order),
		"min", opts.MinLen,
		"max", opts.MaxLen,
		"charset", opts.Charset,
		"jobs", opts.Jobs)
	return opts, nil
}

// logObserver reports pipeline progress through slog.
type logObserver struct{}

func (logObserver) PhaseStarted(p analysis.Phase) {
	slog.Debug("Phase started", "phase", p)
}

func (logObserver) PhaseFinished(p analysis.Phase, count int, elapsed time.Duration) {
	slog.Debug("Phase finished", "phase", p, "count", count, "elapsed", elapsed)
}

package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"basefind/internal/analysis"
	"basefind/internal/image"
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Infer the base address without the TUI",
	Long: `Run the analysis in non-interactive mode, print a plain-text report and exit.
Addresses given with --resolve are mapped back to file offsets using the inferred base,
and file offsets given with --offset are mapped to the runtime addresses they load at.`,
	Example: `
# Analyse a 32-bit little-endian firmware image
basefind run firmware.bin

# Print only the base of a 64-bit big-endian image
basefind run -q --64 --big dump.bin

# Show what lives at two runtime addresses
basefind run --resolve 0x8001234 --resolve 0x8004000 firmware.bin

# Show where a string found with a hex editor lives at runtime
basefind run --offset 0x1234 firmware.bin
  `,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := setup(cmd)
		if err != nil {
			return err
		}
		quiet, _ := cmd.Flags().GetBool("quiet")
		resolve, _ := cmd.Flags().GetStringSlice("resolve")
		offset, _ := cmd.Flags().GetStringSlice("offset")

		addrs, err := parseAddresses(resolve)
		if err != nil {
			return err
		}
		offs, err := parseAddresses(offset)
		if err != nil {
			return err
		}

		slog.Debug("Running analysis", "file", args[0])
		im, res, err := analyze(args[0], opts, logObserver{})
		if err != nil {
			return err
		}
		defer im.Close()

		out := cmd.OutOrStdout()
		writeText(out, newReport(im, res), quiet)

		if len(addrs) > 0 || len(offs) > 0 {
			best, ok := res.Best()
			if !ok {
				return fmt.Errorf("cannot resolve addresses: no base found")
			}
			im.Rebase(best.Base)
			writeResolved(out, im, addrs)
			writeLocated(out, im, offs)
		}
		return nil
	},
}

func parseAddresses(in []string) ([]uint64, error) {
	out := make([]uint64, 0, len(in))
	for _, s := range in {
		v, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid address %q: %w", s, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// writeResolved prints the file offset and string at each runtime address.
func writeResolved(w io.Writer, im *image.Image, addrs []uint64) {
	for _, va := range addrs {
		off, ok := im.VA2Off(va)
		if !ok {
			fmt.Fprintf(w, "%#x: outside image\n", va)
			continue
		}
		s, _ := im.ReadCStringVA(va, analysis.MaxEvidenceText)
		fmt.Fprintf(w, "%#x: offset %#x \"%s\"\n", va, off, analysis.EscapeUnprintable(s))
	}
}

// writeLocated prints the runtime address and string at each file offset.
func writeLocated(w io.Writer, im *image.Image, offs []uint64) {
	for _, off := range offs {
		va, ok := im.Off2VA(off)
		if !ok {
			fmt.Fprintf(w, "offset %#x: outside image\n", off)
			continue
		}
		s, _ := im.ReadCStringVA(va, analysis.MaxEvidenceText)
		fmt.Fprintf(w, "offset %#x: %#x \"%s\"\n", off, va, analysis.EscapeUnprintable(s))
	}
}

func init() {
	runCmd.Flags().BoolP("quiet", "q", false, "Print only the inferred base")
	runCmd.Flags().StringSlice("resolve", nil, "Runtime address to map back to the image (repeatable)")
	runCmd.Flags().StringSlice("offset", nil, "File offset to map to its runtime address (repeatable)")
}

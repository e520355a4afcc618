package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/pprof"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"basefind/internal/analysis"
	"basefind/internal/basefind/styles"
	"basefind/internal/ui/colorize"
)

func init() {
	addRootFlags(rootCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(schemaCmd)
}

func addRootFlags(cmd *cobra.Command) {
	addAnalysisFlags(cmd)

	cmd.Flags().BoolP("help", "h", false, "Help")
	cmd.Flags().BoolP("no-tui", "n", false, "Show the report without TUI")
	cmd.Flags().Bool("json", false, "Output results as JSON")
	cmd.Flags().String("cpuprofile", "", "Write CPU profile to file")
	cmd.Flags().String("memprofile", "", "Write memory profile to file")
	cmd.MarkFlagsMutuallyExclusive("no-tui", "json")
}

var rootCmd = &cobra.Command{
	Use:   "basefind [file]",
	Short: "Infer the load address of a flat binary",
	Long: `Basefind infers the base address of a flat binary image, such as a firmware
dump, by matching pointer-sized words against the offsets of the strings they
could point to. Every candidate base is voted on and the best supported one wins.`,
	Example: `
# Explore the result interactively
basefind firmware.bin

# 64-bit big-endian image, report as markdown
basefind -n --64 --big dump.bin

# Machine-readable output
basefind --json firmware.bin | jq .base
  `,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		stop, err := startProfiles(cmd)
		if err != nil {
			return err
		}
		defer stop()

		opts, err := setup(cmd)
		if err != nil {
			return err
		}

		path := args[0]
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("file not found: %s", path)
			}
			return fmt.Errorf("cannot access file: %w", err)
		}

		noTUI, _ := cmd.Flags().GetBool("no-tui")
		jsonOutput, _ := cmd.Flags().GetBool("json")

		tty := isTerminal(cmd.OutOrStdout())
		if !tty {
			noTUI = true
		}

		if jsonOutput {
			return runJSON(cmd.OutOrStdout(), path, opts, tty && !colorize.Disabled())
		}
		if noTUI {
			return runNoTUI(cmd.OutOrStdout(), path, opts, tty)
		}

		program := tea.NewProgram(
			NewModel(path, opts),
			tea.WithAltScreen(),
			tea.WithContext(cmd.Context()),
		)
		if _, err := program.Run(); err != nil {
			slog.Error("TUI run error", "error", err)
			return fmt.Errorf("TUI error: %w", err)
		}
		return nil
	},
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(f.Fd())
}

// startProfiles starts the profiles requested on the command line. The
// returned function stops them and writes the heap profile.
func startProfiles(cmd *cobra.Command) (func(), error) {
	var stops []func()
	stop := func() {
		for i := len(stops) - 1; i >= 0; i-- {
			stops[i]()
		}
	}

	if cpuprofile, _ := cmd.Flags().GetString("cpuprofile"); cpuprofile != "" {
		f, err := os.Create(cpuprofile)
		if err != nil {
			return nil, fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return nil, fmt.Errorf("could not start CPU profile: %w", err)
		}
		stops = append(stops, func() {
			pprof.StopCPUProfile()
			f.Close()
		})
	}

	if memprofile, _ := cmd.Flags().GetString("memprofile"); memprofile != "" {
		stops = append(stops, func() {
			f, err := os.Create(memprofile)
			if err != nil {
				fmt.Fprintf(os.Stderr, "could not create memory profile: %v\n", err)
				return
			}
			defer f.Close()
			if err := pprof.WriteHeapProfile(f); err != nil {
				fmt.Fprintf(os.Stderr, "could not write memory profile: %v\n", err)
			}
		})
	}
	return stop, nil
}

// runNoTUI prints the markdown report, rendered when w is a terminal.
func runNoTUI(w io.Writer, path string, opts analysis.Options, render bool) error {
	im, res, err := analyze(path, opts, logObserver{})
	if err != nil {
		return err
	}
	defer im.Close()

	md := newReport(im, res).markdown()
	if render {
		width := 100
		if f, ok := w.(*os.File); ok {
			if tw, _, err := term.GetSize(f.Fd()); err == nil && tw > 2 {
				width = tw - 2
			}
		}
		md = styles.RenderMarkdown(md, width)
	}
	_, err = io.WriteString(w, md)
	return err
}

// runJSON prints the JSON report, colourised when color is set.
func runJSON(w io.Writer, path string, opts analysis.Options, color bool) error {
	im, res, err := analyze(path, opts, logObserver{})
	if err != nil {
		return err
	}
	defer im.Close()

	data, err := marshalJSON(newReport(im, res))
	if err != nil {
		return err
	}
	out := string(data)
	if color {
		if colored, err := colorize.ColorizeJSON(out); err == nil {
			out = strings.TrimRight(colored, "\n")
		}
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

// plainOutput reports whether the command line asks for output meant for a
// pipe or a plain report, which bypasses fang's styled execution.
func plainOutput(args []string, tty bool) bool {
	if !tty {
		return true
	}
	c, _, err := rootCmd.Find(args)
	if err == nil && c != rootCmd {
		return true
	}
	// Parse into a scratch command so rootCmd's flags stay untouched.
	scratch := &cobra.Command{Use: rootCmd.Use}
	addRootFlags(scratch)
	scratch.Flags().SetOutput(io.Discard)
	if err := scratch.ParseFlags(args); err != nil {
		return false
	}
	noTUI, _ := scratch.Flags().GetBool("no-tui")
	jsonOutput, _ := scratch.Flags().GetBool("json")
	return noTUI || jsonOutput
}

func Execute() {
	if plainOutput(os.Args[1:], term.IsTerminal(os.Stdout.Fd())) {
		if err := rootCmd.Execute(); err != nil {
			os.Exit(1)
		}
		return
	}

	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

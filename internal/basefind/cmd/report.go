package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/ianlancetaylor/demangle"

	"basefind/internal/analysis"
	"basefind/internal/image"
)

// evidenceLimit bounds the references listed for a candidate.
const evidenceLimit = 16

type evidence struct {
	analysis.Reference
	Demangled string
}

// report is everything the renderers need about one run.
type report struct {
	Path     string
	Digest   string
	Size     int
	Options  analysis.Options
	Result   *analysis.Result
	Evidence []evidence
}

func newReport(im *image.Image, res *analysis.Result) *report {
	rep := &report{
		Path:    im.Path,
		Digest:  im.Digest(),
		Size:    im.Size(),
		Options: res.Options,
		Result:  res,
	}
	if best, ok := res.Best(); ok {
		rep.Evidence = collectEvidence(im, res, best.Base, evidenceLimit)
	}
	return rep
}

// collectEvidence lists the references behind base, demangling symbol names.
func collectEvidence(im *image.Image, res *analysis.Result, base uint64, limit int) []evidence {
	refs := res.Evidence(im.All, base, limit)
	out := make([]evidence, len(refs))
	for i, ref := range refs {
		out[i] = evidence{Reference: ref}
		if d := demangle.Filter(ref.Text); d != ref.Text {
			out[i].Demangled = d
		}
	}
	return out
}

// analyze maps path and runs the pipeline over it. The caller closes the
// returned image.
func analyze(path string, opts analysis.Options, obs analysis.Observer) (*image.Image, *analysis.Result, error) {
	im, err := image.Open(path)
	if err != nil {
		return nil, nil, err
	}
	res, err := analysis.Run(im.All, opts, obs)
	if err != nil {
		im.Close()
		return nil, nil, err
	}
	return im, res, nil
}

func widthName(width int) string {
	return fmt.Sprintf("%d-bit", width)
}

// writeHeader echoes the run configuration.
func writeHeader(w io.Writer, path string, opts analysis.Options) {
	fmt.Fprintf(w, "file: %s\n", path)
	fmt.Fprintf(w, "size: %s\n", widthName(opts.Width))
	fmt.Fprintf(w, "endian: %s\n", analysis.ByteOrderName(opts.Order))
	fmt.Fprintf(w, "max: %d\n", opts.MaxLen)
	fmt.Fprintf(w, "min: %d\n", opts.MinLen)
}

// writeText prints the plain-text report. In quiet mode only the inferred
// base is printed.
func writeText(w io.Writer, rep *report, quiet bool) {
	res := rep.Result
	best, ok := res.Best()
	if quiet {
		if ok {
			fmt.Fprintf(w, "%#x\n", best.Base)
		}
		return
	}

	writeHeader(w, rep.Path, rep.Options)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Found: %d strings\n", res.Strings.Values)
	fmt.Fprintf(w, "Found: %d addresses\n", res.Addresses.Values)
	fmt.Fprintf(w, "Found: %d candidates\n", res.Ranking.Distinct)
	fmt.Fprintf(w, "Found: %d filtered candidates\n", len(res.Ranking.Candidates))
	fmt.Fprintf(w, "Found: %d votes (share denominator)\n", res.Ranking.Votes)
	for i, c := range res.Ranking.Top(rep.Options.Top) {
		fmt.Fprintf(w, "%2d: %x: %d (%.2f%%)\n", i+1, c.Base, c.Support, 100*res.Ranking.Share(c))
	}

	if ok {
		fmt.Fprintf(w, "Found base: %x\n", best.Base)
	} else {
		fmt.Fprintln(w, "No base found")
	}
	fmt.Fprintf(w, "Took: %s\n", res.Elapsed.Round(time.Microsecond))
}

// mdCell escapes text for a markdown table cell.
func mdCell(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "`", "'")
}

// markdown renders the report as a markdown document.
func (rep *report) markdown() string {
	var b strings.Builder
	res := rep.Result
	opts := rep.Options

	b.WriteString("# basefind\n\n```\n")
	if dir := filepath.Dir(rep.Path); dir != "." {
		fmt.Fprintf(&b, "; %s/\n", dir)
	}
	fmt.Fprintf(&b, "; %s (%d bytes)\n", filepath.Base(rep.Path), rep.Size)
	fmt.Fprintf(&b, "; %s\n", rep.Digest)
	fmt.Fprintf(&b, "; %s %s-endian, strings %d..%d [%s]\n",
		widthName(opts.Width), analysis.ByteOrderName(opts.Order), opts.MinLen, opts.MaxLen, opts.Charset)
	b.WriteString("```\n\n")

	fmt.Fprintf(&b, "Found **%d** strings in %d buckets and **%d** repeated addresses in %d buckets.\n\n",
		res.Strings.Values, res.Strings.Buckets, res.Addresses.Values, res.Addresses.Buckets)

	best, ok := res.Best()
	if !ok {
		fmt.Fprintf(&b, "> No base found among %d candidates.\n\n", res.Ranking.Distinct)
		fmt.Fprintf(&b, "_Took %s_\n", res.Elapsed.Round(time.Microsecond))
		return b.String()
	}
	fmt.Fprintf(&b, "## Base `%#x`\n\n", best.Base)
	fmt.Fprintf(&b, "%d of %d candidates survived filtering. Shares are of all %d votes cast.\n\n",
		len(res.Ranking.Candidates), res.Ranking.Distinct, res.Ranking.Votes)

	b.WriteString("| # | Base | Support | Share of votes |\n|---:|---|---:|---:|\n")
	for i, c := range res.Ranking.Top(opts.Top) {
		fmt.Fprintf(&b, "| %d | `%#x` | %d | %.2f%% |\n", i+1, c.Base, c.Support, 100*res.Ranking.Share(c))
	}
	b.WriteString("\n")

	if len(rep.Evidence) > 0 {
		b.WriteString(evidenceMarkdown(best.Base, rep.Evidence))
	}
	fmt.Fprintf(&b, "_Took %s_\n", res.Elapsed.Round(time.Microsecond))
	return b.String()
}

// evidenceMarkdown renders the references behind base as a table.
func evidenceMarkdown(base uint64, refs []evidence) string {
	var b strings.Builder
	fmt.Fprintf(&b, "### Evidence for `%#x`\n\n", base)
	if len(refs) == 0 {
		b.WriteString("No string is referenced through this base.\n\n")
		return b.String()
	}
	b.WriteString("| Pointer | Offset | Slots | String |\n|---|---|---:|---|\n")
	for _, ref := range refs {
		text := "`" + mdCell(ref.Text) + "`"
		if ref.Demangled != "" {
			text += " " + mdCell(ref.Demangled)
		}
		fmt.Fprintf(&b, "| `%#x` | `%#x` | %d | %s |\n", ref.Address, ref.Offset, ref.Pointers, text)
	}
	b.WriteString("\n")
	return b.String()
}

// JSONOutput is the machine-readable report.
type JSONOutput struct {
	File       string              `json:"file"`
	Digest     string              `json:"digest"`
	Size       int                 `json:"size"`
	Width      int                 `json:"width"`
	Endian     string              `json:"endian"`
	Strings    analysis.IndexStats `json:"strings"`
	Addresses  analysis.IndexStats `json:"addresses"`
	Distinct   int                 `json:"distinct_candidates"`
	Votes      int                 `json:"votes"`
	Base       string              `json:"base,omitempty"`
	Candidates []JSONCandidate     `json:"candidates"`
	Evidence   []JSONReference     `json:"evidence,omitempty"`
	ElapsedMS  float64             `json:"elapsed_ms"`
}

type JSONCandidate struct {
	Base    string  `json:"base"`
	Support int     `json:"support"`
	Share   float64 `json:"share"`
}

type JSONReference struct {
	Address   string `json:"address"`
	Offset    string `json:"offset"`
	Pointers  int    `json:"pointers"`
	Text      string `json:"text"`
	Demangled string `json:"demangled,omitempty"`
}

func (rep *report) json() JSONOutput {
	res := rep.Result
	out := JSONOutput{
		File:       rep.Path,
		Digest:     rep.Digest,
		Size:       rep.Size,
		Width:      rep.Options.Width,
		Endian:     analysis.ByteOrderName(rep.Options.Order),
		Strings:    res.Strings,
		Addresses:  res.Addresses,
		Distinct:   res.Ranking.Distinct,
		Votes:      res.Ranking.Votes,
		Candidates: []JSONCandidate{},
		ElapsedMS:  float64(res.Elapsed.Microseconds()) / 1000,
	}
	if best, ok := res.Best(); ok {
		out.Base = fmt.Sprintf("%#x", best.Base)
	}
	for _, c := range res.Ranking.Top(rep.Options.Top) {
		out.Candidates = append(out.Candidates, JSONCandidate{
			Base:    fmt.Sprintf("%#x", c.Base),
			Support: c.Support,
			Share:   res.Ranking.Share(c),
		})
	}
	for _, ref := range rep.Evidence {
		out.Evidence = append(out.Evidence, JSONReference{
			Address:   fmt.Sprintf("%#x", ref.Address),
			Offset:    fmt.Sprintf("%#x", ref.Offset),
			Pointers:  ref.Pointers,
			Text:      strings.ToValidUTF8(ref.Text, "�"),
			Demangled: ref.Demangled,
		})
	}
	return out
}

func marshalJSON(rep *report) ([]byte, error) {
	data, err := json.MarshalIndent(rep.json(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return data, nil
}

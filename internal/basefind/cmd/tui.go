package cmd

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/v2/list"
	"github.com/charmbracelet/bubbles/v2/spinner"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"basefind/internal/analysis"
	"basefind/internal/basefind/styles"
	"basefind/internal/image"
)

type viewMode int

const (
	viewReport viewMode = iota
	viewCandidates
	viewEvidence
)

// Messages

type phaseMsg struct {
	phase   analysis.Phase
	started bool
	count   int
	elapsed time.Duration
}

type analysisDoneMsg struct {
	img *image.Image
	res *analysis.Result
	err error
}

// tuiObserver forwards pipeline progress to the program. The channel is
// sized for every event of one run so the pipeline never blocks on it.
type tuiObserver struct {
	events chan phaseMsg

	mu      sync.Mutex
	stopped bool
	img     *image.Image
}

func newTUIObserver() *tuiObserver {
	return &tuiObserver{events: make(chan phaseMsg, 8)}
}

func (o *tuiObserver) PhaseStarted(p analysis.Phase) {
	o.events <- phaseMsg{phase: p, started: true}
}

func (o *tuiObserver) PhaseFinished(p analysis.Phase, count int, elapsed time.Duration) {
	o.events <- phaseMsg{phase: p, count: count, elapsed: elapsed}
}

// stop marks the program as quitting and closes the analysed image, whether
// or not its message was delivered. An image produced later is closed by
// adopt.
func (o *tuiObserver) stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stopped = true
	if o.img != nil {
		o.img.Close()
		o.img = nil
	}
}

// adopt records the finished image so stop can release it. It closes the
// image instead and reports false if the program already quit.
func (o *tuiObserver) adopt(img *image.Image) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stopped {
		if img != nil {
			img.Close()
		}
		return false
	}
	o.img = img
	return true
}

func waitForPhase(events <-chan phaseMsg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}

func analyzeCmd(path string, opts analysis.Options, obs *tuiObserver) tea.Cmd {
	return func() tea.Msg {
		img, res, err := analyze(path, opts, obs)
		close(obs.events)
		if !obs.adopt(img) {
			return nil
		}
		return analysisDoneMsg{img: img, res: res, err: err}
	}
}

// candidateItem is one ranked base in the candidates list.
type candidateItem struct {
	rank  int
	cand  analysis.Candidate
	share float64
}

func (i candidateItem) Title() string {
	return fmt.Sprintf("%2d  %#x", i.rank, i.cand.Base)
}

func (i candidateItem) Description() string { return "" }

func (i candidateItem) FilterValue() string {
	return fmt.Sprintf("%x", i.cand.Base)
}

type candidateDelegate struct{}

func (d candidateDelegate) Height() int                               { return 1 }
func (d candidateDelegate) Spacing() int                              { return 0 }
func (d candidateDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d candidateDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(candidateItem)
	if !ok {
		return
	}

	indicator := " "
	baseStyle := styles.Dim
	if index == m.Index() {
		indicator = ">"
		baseStyle = styles.Selected
	}
	supportStyle := styles.Normal
	if i.rank == 1 {
		supportStyle = styles.Good
	}
	fmt.Fprintf(w, " %s %2d  %s  %s",
		indicator,
		i.rank,
		baseStyle.Render(fmt.Sprintf("%#018x", i.cand.Base)),
		supportStyle.Render(fmt.Sprintf("%8d  %6.2f%%", i.cand.Support, 100*i.share)))
}

type phaseState struct {
	running bool
	done    bool
	count   int
	elapsed time.Duration
}

type model struct {
	viewport     viewport.Model
	candidates   list.Model
	evidenceView viewport.Model
	spinner      spinner.Model
	mode         viewMode

	evidenceShown bool

	path    string
	opts    analysis.Options
	obs     *tuiObserver
	phases  [3]phaseState
	loading bool

	img *image.Image
	res *analysis.Result
	rep *report
	err error

	width  int
	height int
}

// NewModel returns the interactive model analysing path with opts.
func NewModel(path string, opts analysis.Options) model {
	vp := viewport.New()
	vp.SetWidth(80)
	vp.SetHeight(24)

	candidates := list.New([]list.Item{}, candidateDelegate{}, 80, 24)
	candidates.SetShowStatusBar(false)
	candidates.SetFilteringEnabled(true)
	candidates.Title = "Candidates"
	candidates.Styles.Title = styles.Title.MarginLeft(2)
	candidates.SetShowHelp(true)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Accent)

	evp := viewport.New()
	evp.SetWidth(80)
	evp.SetHeight(24)

	m := model{
		viewport:     vp,
		candidates:   candidates,
		evidenceView: evp,
		spinner:      s,
		mode:         viewReport,
		path:         path,
		opts:         opts,
		obs:          newTUIObserver(),
		loading:      true,
		width:        80,
		height:       24,
	}
	m.updateContent()
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		analyzeCmd(m.path, m.opts, m.obs),
		waitForPhase(m.obs.events),
		m.spinner.Tick,
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case phaseMsg:
		st := &m.phases[msg.phase]
		if msg.started {
			st.running = true
		} else {
			st.running, st.done = false, true
			st.count, st.elapsed = msg.count, msg.elapsed
		}
		m.updateContent()
		return m, waitForPhase(m.obs.events)

	case analysisDoneMsg:
		m.loading = false
		m.img, m.res, m.err = msg.img, msg.res, msg.err
		if m.err == nil {
			m.rep = newReport(m.img, m.res)
			m.updateCandidatesList()
		}
		m.updateContent()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		m.updateContent()
		return m, cmd

	case tea.WindowSizeMsg:
		if msg.Width != m.width || msg.Height != m.height {
			m.width = msg.Width
			m.height = msg.Height
			m.viewport.SetWidth(msg.Width)
			m.viewport.SetHeight(msg.Height - 2)
			m.candidates.SetWidth(msg.Width)
			m.candidates.SetHeight(msg.Height - 2)
			m.evidenceView.SetWidth(msg.Width)
			m.evidenceView.SetHeight(msg.Height - 2)
			m.updateContent()
		}

	case tea.KeyMsg:
		if m.mode == viewCandidates && m.candidates.FilterState() == list.Filtering {
			if msg.String() == "ctrl+c" {
				return m, m.quit()
			}
			break
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, m.quit()
		case "r":
			m.mode = viewReport
			return m, nil
		case "c":
			if m.hasCandidates() {
				m.mode = viewCandidates
			}
			return m, nil
		case "e":
			if m.hasCandidates() {
				best, _ := m.res.Best()
				m.showEvidence(best.Base)
			}
			return m, nil
		case "enter":
			if m.mode == viewCandidates {
				if item, ok := m.candidates.SelectedItem().(candidateItem); ok {
					m.showEvidence(item.cand.Base)
				}
			}
			return m, nil
		case "tab":
			m.cycle(1)
			return m, nil
		case "shift+tab":
			m.cycle(-1)
			return m, nil
		}
	}

	switch m.mode {
	case viewCandidates:
		m.candidates, cmd = m.candidates.Update(msg)
	case viewEvidence:
		m.evidenceView, cmd = m.evidenceView.Update(msg)
	default:
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

func (m *model) quit() tea.Cmd {
	m.obs.stop()
	m.img = nil
	return tea.Quit
}

func (m model) hasCandidates() bool {
	return m.err == nil && m.res != nil && len(m.res.Ranking.Candidates) > 0
}

// cycle moves through the views that have content.
func (m *model) cycle(step int) {
	if !m.hasCandidates() {
		m.mode = viewReport
		return
	}
	m.mode = viewMode((int(m.mode) + step + 3) % 3)
	if m.mode == viewEvidence && !m.evidenceShown {
		best, _ := m.res.Best()
		m.showEvidence(best.Base)
	}
}

func (m *model) showEvidence(base uint64) {
	if m.img == nil || m.res == nil {
		return
	}
	refs := collectEvidence(m.img, m.res, base, 0)
	md := evidenceMarkdown(base, refs)
	m.evidenceView.SetContent(strings.TrimSuffix(styles.RenderMarkdown(md, m.renderWidth()), "\n"))
	m.evidenceView.GotoTop()
	m.evidenceShown = true
	m.mode = viewEvidence
}

func (m model) View() string {
	var content string
	switch m.mode {
	case viewCandidates:
		content = m.candidates.View()
	case viewEvidence:
		content = m.evidenceView.View()
	default:
		content = m.viewport.View()
	}

	var keys [][2]string
	switch {
	case m.mode == viewCandidates:
		keys = [][2]string{{"Enter", "evidence"}, {"R", "report"}, {"/", "filter"}, {"Tab", "cycle"}, {"Q", "quit"}}
	case m.mode == viewEvidence:
		keys = [][2]string{{"R", "report"}, {"C", "candidates"}, {"Tab", "cycle"}, {"Q", "quit"}}
	case m.hasCandidates():
		keys = [][2]string{{"C", "candidates"}, {"E", "evidence"}, {"Tab", "cycle"}, {"Q", "quit"}}
	default:
		keys = [][2]string{{"Q", "quit"}}
	}

	items := make([]string, len(keys))
	for i, k := range keys {
		items[i] = styles.Key.Render(k[0]) + ": " + k[1]
	}
	menu := strings.Join(items, styles.Bar.Render(" • "))
	if m.err != nil {
		menu = styles.Bad.Render("failed") + styles.Bar.Render(" • ") + menu
	}

	menuStyle := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("252")).
		Padding(0, 1).
		Width(m.width)

	return content + "\n" + menuStyle.Render(menu)
}

func (m model) renderWidth() int {
	if m.width <= 2 {
		return 78
	}
	return m.width - 2
}

// progressMarkdown lists the pipeline phases while the analysis runs.
func (m *model) progressMarkdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# basefind\n\n```\n; %s\n; %s %s-endian\n```\n\n",
		m.path, widthName(m.opts.Width), analysis.ByteOrderName(m.opts.Order))
	for _, p := range []analysis.Phase{analysis.PhaseStrings, analysis.PhaseAddresses, analysis.PhaseVote} {
		st := m.phases[p]
		switch {
		case st.done:
			fmt.Fprintf(&b, "- %s: **%d** in %s\n", p, st.count, st.elapsed.Round(time.Microsecond))
		case st.running:
			fmt.Fprintf(&b, "- %s: running\n", p)
		default:
			fmt.Fprintf(&b, "- %s: waiting\n", p)
		}
	}
	return b.String()
}

func (m *model) updateContent() {
	var md string
	switch {
	case m.err != nil:
		md = fmt.Sprintf("# basefind\n\n> %s\n", mdCell(m.err.Error()))
	case m.rep != nil:
		md = m.rep.markdown()
	default:
		md = m.progressMarkdown()
	}

	rendered := styles.RenderMarkdown(md, m.renderWidth())
	if m.loading {
		rendered += fmt.Sprintf("\n  %s Analysing...", m.spinner.View())
	}
	m.viewport.SetContent(strings.TrimSuffix(rendered, "\n"))
}

func (m *model) updateCandidatesList() {
	top := m.res.Ranking.Top(m.opts.Top)
	items := make([]list.Item, len(top))
	for i, c := range top {
		items[i] = candidateItem{rank: i + 1, cand: c, share: m.res.Ranking.Share(c)}
	}
	m.candidates.SetItems(items)
	m.candidates.Title = fmt.Sprintf("Candidates (share of %d votes)", m.res.Ranking.Votes)
}

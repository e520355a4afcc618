package styles

import (
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/exp/charmtone"
)

// Palette used by the TUI and the plain-text report.
var (
	Primary   = lipgloss.Color(charmtone.Charple.Hex())
	Accent    = lipgloss.Color(charmtone.Malibu.Hex())
	Highlight = lipgloss.Color(charmtone.Zest.Hex())
	Success   = lipgloss.Color(charmtone.Guac.Hex())
	Muted     = lipgloss.Color(charmtone.Squid.Hex())
	Subtle    = lipgloss.Color(charmtone.Charcoal.Hex())
	Error     = lipgloss.Color(charmtone.Cheeky.Hex())
)

var (
	Title    = lipgloss.NewStyle().Foreground(Highlight).Background(Primary).Bold(true).Padding(0, 1)
	Selected = lipgloss.NewStyle().Foreground(Accent).Bold(true)
	Normal   = lipgloss.NewStyle()
	Dim      = lipgloss.NewStyle().Foreground(Muted)
	Good     = lipgloss.NewStyle().Foreground(Success).Bold(true)
	Bad      = lipgloss.NewStyle().Foreground(Error).Bold(true)
	Key      = lipgloss.NewStyle().Foreground(Highlight).Bold(true)
	Bar      = lipgloss.NewStyle().Foreground(Subtle)
)

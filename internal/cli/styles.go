package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Terminal palette.
var (
	batYellow = lipgloss.Color("11")
	itemGreen = lipgloss.Color("10")
	cmdCyan   = lipgloss.Color("14")
)

// styles renders for one writer, so color is only emitted to terminals.
type styles struct {
	banner  lipgloss.Style
	name    lipgloss.Style
	command lipgloss.Style
	muted   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		banner:  r.NewStyle().Foreground(batYellow),
		name:    r.NewStyle().Foreground(itemGreen),
		command: r.NewStyle().Foreground(cmdCyan).Bold(true),
		muted:   r.NewStyle().Faint(true),
	}
}

// batSignal frames text with bats.
func (s styles) batSignal(text string) string {
	return "🦇 " + s.banner.Render(text) + " 🦇"
}

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderStatusBar produces a full-width inverted status line showing the
// round, phase, survivors and sheriff, with an AUTO marker while the game
// plays itself.
func (m Model) renderStatusBar() string {
	g := m.engine.Game()
	if g == nil {
		return styleStatusBar.Width(m.width).Render("")
	}

	left := " " + m.format.Text("ui.status", g.Round, m.format.Phase(g.Phase), len(g.Alive()))
	if p := g.Player(g.SheriffID); p != nil {
		left += fmt.Sprintf(" | %s: %s", m.format.Text("ui.sheriff"), p.Name)
	}
	right := m.format.Lang() + " "
	if v := g.Winner; v.HasWinner {
		right = m.format.Camp(string(v.WinnerCamp)) + " | " + right
	}

	marker := ""
	if m.auto {
		marker = styleAuto.Render(" AUTO ")
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - lipgloss.Width(marker)
	if gap < 0 {
		gap = 0
	}
	bar := styleStatusBar.Render(left + strings.Repeat(" ", gap) + right)
	return marker + bar
}

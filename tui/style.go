package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/wolfcore/types"
)

var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleAuto = lipgloss.NewStyle().
			Background(lipgloss.Color("130")).
			Foreground(lipgloss.Color("230")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleNarration = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	stylePhase = lipgloss.NewStyle().
			Foreground(lipgloss.Color("111")).
			Bold(true)

	styleDeath = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	styleSpeech = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	stylePrivate = lipgloss.NewStyle().
			Foreground(lipgloss.Color("141")).
			Italic(true)

	styleVictory = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true)

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarration lineKind = iota
	kindPhase
	kindDeath
	kindSpeech
	kindPrivate
	kindVictory
	kindSystem
	kindTrace
)

// classifyEvent picks the style of an event line. Private events share one
// style regardless of type.
func classifyEvent(e types.Event) lineKind {
	if e.VisibleTo != nil {
		return kindPrivate
	}
	switch e.Type {
	case types.EventPhaseChanged, types.EventRoundStarted, types.EventGameStarted:
		return kindPhase
	case types.EventPlayerDied, types.EventPlayerEliminated, types.EventLoverDied,
		types.EventDeathShot, types.EventKnightDuel:
		return kindDeath
	case types.EventPlayerSpeech, types.EventSheriffSpeech, types.EventWerewolfDiscussion:
		return kindSpeech
	case types.EventGameEnded:
		return kindVictory
	case types.EventError:
		return kindSystem
	}
	return kindNarration
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindPhase:
		return stylePhase.Render(line)
	case kindDeath:
		return styleDeath.Render(line)
	case kindSpeech:
		return styleSpeech.Render(line)
	case kindPrivate:
		return stylePrivate.Render(line)
	case kindVictory:
		return styleVictory.Render(line)
	case kindSystem:
		return styledSystemMsg(line)
	case kindTrace:
		return styleTrace.Render(line)
	default:
		return styleNarration.Render(line)
	}
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}

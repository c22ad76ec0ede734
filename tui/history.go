// Package tui provides a Bubble Tea spectator UI for wolfcore games.
package tui

// History keeps the last submitted commands for Up/Down recall.
type History struct {
	entries []string
	max     int
	cursor  int // -1 while not browsing
}

// NewHistory creates a history holding at most max commands.
func NewHistory(max int) *History {
	return &History{entries: make([]string, 0, max), max: max, cursor: -1}
}

// Push records cmd. Repeating the latest command does not add an entry.
func (h *History) Push(cmd string) {
	if n := len(h.entries); n > 0 && h.entries[n-1] == cmd {
		return
	}
	if h.max > 0 && len(h.entries) == h.max {
		h.entries = append(h.entries[:0], h.entries[1:]...)
	}
	h.entries = append(h.entries, cmd)
}

// Prev moves one entry back in time. It stops at the oldest entry.
func (h *History) Prev() (string, bool) {
	switch {
	case len(h.entries) == 0:
		return "", false
	case h.cursor == -1:
		h.cursor = len(h.entries) - 1
	case h.cursor > 0:
		h.cursor--
	}
	return h.entries[h.cursor], true
}

// Next moves one entry forward. Past the newest entry browsing ends and it
// returns false.
func (h *History) Next() (string, bool) {
	if h.cursor == -1 {
		return "", false
	}
	if h.cursor++; h.cursor == len(h.entries) {
		h.cursor = -1
		return "", false
	}
	return h.entries[h.cursor], true
}

// ResetCursor ends browsing.
func (h *History) ResetCursor() { h.cursor = -1 }

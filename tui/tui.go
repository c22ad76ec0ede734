package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/wolfcore/cli"
	"github.com/nathoo/wolfcore/engine"
	"github.com/nathoo/wolfcore/engine/roles"
	"github.com/nathoo/wolfcore/engine/save"
	"github.com/nathoo/wolfcore/locale"
	"github.com/nathoo/wolfcore/types"
)

// DefaultDelay is the pause between phases while auto-playing.
const DefaultDelay = 800 * time.Millisecond

// Options configures the TUI.
type Options struct {
	Saves   cli.Saver
	Archive cli.Archiver // optional
	Reveal  bool         // show private events and roles
	Auto    bool         // start in auto-play
	Delay   time.Duration
}

// rawLine stores an unstyled output line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text    string
	kind    lineKind
	isInput bool // true for echoed player input
}

// Model is the Bubble Tea model for the spectator TUI.
type Model struct {
	ctx    context.Context
	engine *engine.Engine
	format *locale.Formatter
	opts   Options

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine // accumulated narrative lines (unstyled, for re-wrapping)

	width    int
	height   int
	ready    bool
	trace    bool
	reveal   bool
	auto     bool
	archived bool
	quitting bool
}

// tickMsg advances one phase while auto-playing.
type tickMsg struct{}

// New creates a TUI model wired to the given engine.
func New(ctx context.Context, eng *engine.Engine, f *locale.Formatter, opts Options) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	if opts.Saves == nil {
		opts.Saves = cli.Files(save.FileStore{Dir: save.DefaultDir()})
	}
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}

	m := Model{
		ctx:     ctx,
		engine:  eng,
		format:  f,
		opts:    opts,
		input:   ti,
		history: NewHistory(100),
		reveal:  opts.Reveal,
		auto:    opts.Auto,
	}
	m.rawLines = append(m.rawLines, rawLine{text: f.Text("ui.title"), kind: kindPhase})
	m.appendEvents(eng.Events())
	m.appendSystem(f.Text("ui.press"))
	return m
}

// Run starts the Bubble Tea program.
func Run(ctx context.Context, eng *engine.Engine, f *locale.Formatter, opts Options) error {
	p := tea.NewProgram(New(ctx, eng, f, opts), tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init starts the cursor blink and, in auto mode, the phase timer.
func (m Model) Init() tea.Cmd {
	if m.auto {
		return tea.Batch(textinput.Blink, m.tick())
	}
	return textinput.Blink
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.opts.Delay, func(time.Time) tea.Msg { return tickMsg{} })
}

// Update handles messages (key presses, window resize, auto-play ticks).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 2 // 1 status bar + 1 input line
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		m.refreshViewport()
		return m, nil

	case tickMsg:
		if !m.auto {
			return m, nil
		}
		m = m.step()
		if m.auto {
			return m, m.tick()
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "ctrl+a":
			return m.toggleAuto()

		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
				m.history.ResetCursor()
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	return m, inputCmd
}

// handleEnter processes the submitted input line. An empty line advances
// one phase.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		return m.step(), nil
	}

	m.history.Push(input)
	m.history.ResetCursor()
	m.rawLines = append(m.rawLines, rawLine{text: "> " + input, isInput: true})

	cmd := cli.Parse(input)
	switch cmd.Verb {
	case cli.VerbAuto:
		return m.toggleAuto()
	case cli.VerbStep:
		return m.step(), nil
	case cli.VerbQuit:
		m.quitting = true
		return m, tea.Quit
	}
	m.dispatch(cmd)
	m.refreshViewport()
	return m, nil
}

func (m Model) toggleAuto() (tea.Model, tea.Cmd) {
	if m.ended() {
		m.auto = false
		return m, nil
	}
	m.auto = !m.auto
	if m.auto {
		return m, m.tick()
	}
	return m, nil
}

func (m Model) ended() bool {
	g := m.engine.Game()
	return g == nil || g.Phase == types.PhaseEnded
}

// step advances the engine one phase and appends what happened.
func (m Model) step() Model {
	if m.ended() {
		m.auto = false
		return m
	}
	res, err := m.engine.Step(m.ctx)
	if err != nil {
		m.appendSystem(m.format.Text("ui.failed", "step", err))
		m.auto = false
		m.refreshViewport()
		return m
	}
	m.appendEvents(res.Events)
	if m.trace {
		m.rawLines = append(m.rawLines, rawLine{
			text: fmt.Sprintf("[trace] %s round %d: %d events", res.Phase, res.Round, len(res.Events)),
			kind: kindTrace,
		})
	}
	if m.ended() {
		m.auto = false
		m.finish()
	}
	m.rawLines = append(m.rawLines, rawLine{})
	m.refreshViewport()
	return m
}

// finish shows every role and archives the log once.
func (m *Model) finish() {
	m.appendLines(m.roster(true))
	if m.archived || m.opts.Archive == nil {
		return
	}
	m.archived = true
	if _, err := m.opts.Archive.Archive(m.ctx, m.engine.Game().ID, m.engine.Events()); err != nil {
		m.appendSystem(m.format.Text("ui.failed", "archive", err))
	}
}

func (m *Model) appendEvents(evs []types.Event) {
	for _, e := range evs {
		text := m.format.Event(e)
		if text == "" {
			continue
		}
		if e.VisibleTo != nil {
			if !m.reveal {
				continue
			}
			text = fmt.Sprintf("(%s) %s", m.audience(e.VisibleTo), text)
		}
		m.rawLines = append(m.rawLines, rawLine{text: text, kind: classifyEvent(e)})
	}
}

func (m *Model) audience(ids []string) string {
	g := m.engine.Game()
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if p := g.Player(id); p != nil {
			names = append(names, p.Name)
		} else {
			names = append(names, id)
		}
	}
	return strings.Join(names, ", ")
}

func (m *Model) appendSystem(text string) {
	m.rawLines = append(m.rawLines, rawLine{text: text, kind: kindSystem})
}

func (m *Model) appendLines(lines []string) {
	for _, l := range lines {
		m.rawLines = append(m.rawLines, rawLine{text: l, kind: kindNarration})
	}
}

// refreshViewport re-wraps and re-styles all raw lines at the current width
// and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.width
	if width < 10 {
		width = 10
	}

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}
		wrapped := wordWrap(rl.text, width)
		if rl.isInput {
			styled = append(styled, stylePlayerInput.Render(wrapped))
			continue
		}
		styled = append(styled, renderLineKind(wrapped, rl.kind))
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// wordWrap wraps text to fit within the given display width, breaking at
// word boundaries. Wide runes count double.
func wordWrap(text string, width int) string {
	if width <= 0 || lipgloss.Width(text) <= width {
		return text
	}

	var result strings.Builder
	lineLen := 0
	for i, word := range strings.Fields(text) {
		wLen := lipgloss.Width(word)
		switch {
		case i == 0:
			lineLen = wLen
		case lineLen+1+wLen > width:
			result.WriteString("\n")
			lineLen = wLen
		default:
			result.WriteString(" ")
			lineLen += 1 + wLen
		}
		result.WriteString(word)
	}
	return result.String()
}

// View renders the full TUI layout: viewport + status bar + input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}
	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// dispatch runs the commands that only append output.
func (m *Model) dispatch(cmd cli.Command) {
	switch cmd.Verb {
	case cli.VerbSave:
		m.cmdSave(cmd.Arg)
	case cli.VerbLoad:
		m.cmdLoad(cmd.Arg)
	case cli.VerbHelp:
		m.appendLines(helpLines)
	case cli.VerbState:
		m.appendLines(m.roster(m.reveal))
	case cli.VerbEvents:
		m.cmdEvents(cmd.Arg)
	case cli.VerbReveal:
		m.reveal = !m.reveal
		m.appendSystem("Reveal " + onOff(m.reveal) + ".")
	case cli.VerbTrace:
		m.trace = !m.trace
		m.appendSystem("Trace output " + onOff(m.trace) + ".")
	default:
		m.appendSystem(m.format.Text("ui.unknown"))
	}
}

func onOff(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

var helpLines = []string{
	"Commands:",
	"  <enter>         Advance one phase",
	"  a / ctrl+a      Toggle auto-play",
	"  /save [name]    Save game (default: quicksave), alias /s",
	"  /load [name]    Load game (default: quicksave), alias /l",
	"  /state          Show the roster, alias /who",
	"  /events [n]     Show the last n events (default: 20)",
	"  /reveal         Toggle private events and roles",
	"  /trace          Toggle debug trace output",
	"  /quit           Exit, alias /q",
	"",
	"Navigation: PgUp/PgDn to scroll, Up/Down for command history",
}

func (m *Model) cmdSave(name string) {
	if name == "" {
		name = save.DefaultName
	}
	snap, err := m.engine.Save()
	if err == nil {
		_, err = m.opts.Saves.Save(m.ctx, name, snap)
	}
	if err != nil {
		m.appendSystem(m.format.Text("ui.failed", "save", err))
		return
	}
	m.appendSystem(m.format.Text("ui.saved", name))
}

func (m *Model) cmdLoad(name string) {
	if name == "" {
		name = save.DefaultName
	}
	snap, err := m.opts.Saves.Load(m.ctx, name)
	if err == nil {
		err = m.engine.Load(snap)
	}
	if err != nil {
		m.appendSystem(m.format.Text("ui.failed", "load", err))
		return
	}
	m.auto = false
	m.archived = false
	m.appendSystem(m.format.Text("ui.loaded", name))
	m.appendLines(m.roster(m.reveal))
}

func (m *Model) cmdEvents(arg string) {
	n := 20
	if v, err := strconv.Atoi(arg); err == nil && v > 0 {
		n = v
	}
	evs := m.engine.Events()
	if len(evs) > n {
		evs = evs[len(evs)-n:]
	}
	m.appendEvents(evs)
}

// roster lists every player, with roles when reveal is set.
func (m *Model) roster(reveal bool) []string {
	g := m.engine.Game()
	if g == nil {
		return nil
	}
	var lines []string
	for _, p := range g.Players {
		status := m.format.Text("ui.alive")
		if !p.Alive {
			status = m.format.Text("ui.dead")
		}
		line := fmt.Sprintf("  %-10s %-6s", p.Name, status)
		if reveal {
			line += " " + m.format.Role(roles.Name(p))
		}
		if g.SheriffID == p.ID {
			line += " *" + m.format.Text("ui.sheriff")
		}
		lines = append(lines, strings.TrimRight(line, " "))
	}
	if v := g.Winner; v.HasWinner {
		lines = append(lines, m.format.Text("ui.winner", m.format.Camp(string(v.WinnerCamp)), v.Reason))
	}
	return lines
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}

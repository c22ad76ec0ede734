// Package cli provides the line-oriented spectator loop: it steps the
// engine, renders events through the locale formatter and dispatches
// meta-commands.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/nathoo/wolfcore/engine"
	"github.com/nathoo/wolfcore/engine/roles"
	"github.com/nathoo/wolfcore/engine/save"
	"github.com/nathoo/wolfcore/locale"
	"github.com/nathoo/wolfcore/types"
)

// Saver stores and fetches snapshots by name. The returned string locates
// the save (a file path or a row ID).
type Saver interface {
	Save(ctx context.Context, name string, s *save.Snapshot) (string, error)
	Load(ctx context.Context, name string) (*save.Snapshot, error)
}

// Archiver receives the event log once a game has ended.
type Archiver interface {
	Archive(ctx context.Context, gameID string, evs []types.Event) (int, error)
}

// Files adapts a save.FileStore to Saver.
func Files(fs save.FileStore) Saver { return fileSaver{fs} }

type fileSaver struct{ fs save.FileStore }

func (f fileSaver) Save(_ context.Context, name string, s *save.Snapshot) (string, error) {
	return f.fs.Save(name, s)
}

func (f fileSaver) Load(_ context.Context, name string) (*save.Snapshot, error) {
	return f.fs.Load(name)
}

// CLI runs a game in the terminal.
type CLI struct {
	Engine    *engine.Engine
	Format    *locale.Formatter
	In        *bufio.Reader // shared with console agents
	Out       io.Writer
	Saves     Saver
	Archive   Archiver // optional
	Reveal    bool     // show private events and roles
	Trace     bool
	EchoInput bool // echo each input line after the prompt (for script playback)
	Auto      bool // play to the end without waiting for input
	stopped   bool
}

// New creates a CLI wired to the given engine.
func New(eng *engine.Engine, f *locale.Formatter) *CLI {
	return &CLI{
		Engine: eng,
		Format: f,
		In:     bufio.NewReader(os.Stdin),
		Out:    os.Stdout,
		Saves:  Files(save.FileStore{Dir: save.DefaultDir()}),
		Reveal: true,
	}
}

// Run shows the setup events, then loops: prompt, input, dispatch. An empty
// line advances one phase. It returns when the game ends, on /quit, or when
// input runs out.
func (c *CLI) Run(ctx context.Context) error {
	c.printLine(c.Format.Text("ui.title"))
	c.printEvents(c.Engine.Events())
	if !c.Auto {
		c.printSystem(c.Format.Text("ui.press"))
	}

	for {
		if c.ended() {
			c.finish(ctx)
			return nil
		}
		if c.Auto {
			if err := c.playAll(ctx); err != nil && !errors.Is(err, engine.ErrRoundLimit) {
				return err
			}
			continue
		}

		c.print("> ")
		line, err := c.In.ReadString('\n')
		if err != nil && line == "" {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		input := strings.TrimSpace(line)
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		if c.dispatch(ctx, Parse(input)) {
			return nil // /quit
		}
	}
}

func (c *CLI) ended() bool {
	g := c.Engine.Game()
	return c.stopped || g == nil || g.Phase == types.PhaseEnded
}

func (c *CLI) step(ctx context.Context) {
	res, err := c.Engine.Step(ctx)
	if err != nil {
		c.printSystem(c.Format.Text("ui.failed", "step", err))
		c.Auto = false
		return
	}
	c.printEvents(res.Events)
	if c.Trace {
		c.printTrace(res)
	}
}

// playAll steps to the end of the game. Hitting the round limit stops the
// loop for good.
func (c *CLI) playAll(ctx context.Context) error {
	mark := len(c.Engine.Events())
	_, err := c.Engine.PlayToCompletion(ctx)
	c.printEvents(c.Engine.Events()[mark:])
	if err != nil {
		c.printSystem(c.Format.Text("ui.failed", "auto", err))
		c.Auto = false
		c.stopped = errors.Is(err, engine.ErrRoundLimit)
	}
	return err
}

// finish prints the roster with every role and archives the log.
func (c *CLI) finish(ctx context.Context) {
	g := c.Engine.Game()
	if g == nil {
		return
	}
	c.printLine("")
	c.cmdState(true)
	if c.Archive == nil {
		return
	}
	if _, err := c.Archive.Archive(ctx, g.ID, c.Engine.Events()); err != nil {
		c.printSystem(c.Format.Text("ui.failed", "archive", err))
	}
}

// dispatch runs a parsed command. Returns true if the game should exit.
func (c *CLI) dispatch(ctx context.Context, cmd Command) bool {
	switch cmd.Verb {
	case VerbStep:
		c.step(ctx)
	case VerbAuto:
		_ = c.playAll(ctx)
	case VerbQuit:
		c.printSystem("Goodbye.")
		return true
	case VerbSave:
		c.cmdSave(ctx, cmd.Arg)
	case VerbLoad:
		c.cmdLoad(ctx, cmd.Arg)
	case VerbHelp:
		c.cmdHelp()
	case VerbState:
		c.cmdState(c.Reveal)
	case VerbEvents:
		c.cmdEvents(cmd.Arg)
	case VerbReveal:
		c.Reveal = !c.Reveal
		c.printSystem(fmt.Sprintf("Reveal %s.", onOff(c.Reveal)))
	case VerbTrace:
		c.Trace = !c.Trace
		c.printSystem(fmt.Sprintf("Trace output %s.", onOff(c.Trace)))
	default:
		c.printSystem(c.Format.Text("ui.unknown"))
	}
	return false
}

func onOff(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

func (c *CLI) cmdSave(ctx context.Context, name string) {
	if name == "" {
		name = save.DefaultName
	}
	snap, err := c.Engine.Save()
	if err != nil {
		c.printSystem(c.Format.Text("ui.failed", "save", err))
		return
	}
	if _, err := c.Saves.Save(ctx, name, snap); err != nil {
		c.printSystem(c.Format.Text("ui.failed", "save", err))
		return
	}
	c.printSystem(c.Format.Text("ui.saved", name))
}

func (c *CLI) cmdLoad(ctx context.Context, name string) {
	if name == "" {
		name = save.DefaultName
	}
	snap, err := c.Saves.Load(ctx, name)
	if err != nil {
		c.printSystem(c.Format.Text("ui.failed", "load", err))
		return
	}
	if err := c.Engine.Load(snap); err != nil {
		c.printSystem(c.Format.Text("ui.failed", "load", err))
		return
	}
	c.printSystem(c.Format.Text("ui.loaded", name))
	c.cmdState(c.Reveal)
}

func (c *CLI) cmdHelp() {
	help := []string{
		"Commands:",
		"  <enter> / next  Advance one phase",
		"  auto (a)        Play to the end",
		"  /save [name]    Save game (default: quicksave), alias /s",
		"  /load [name]    Load game (default: quicksave), alias /l",
		"  /state          Show the roster, alias /who",
		"  /events [n]     Show the last n events (default: 20)",
		"  /reveal         Toggle private events and roles",
		"  /trace          Toggle debug trace output",
		"  /quit           Exit, alias /q",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

// cmdState prints the round, phase and roster. Roles are shown only when
// reveal is set.
func (c *CLI) cmdState(reveal bool) {
	g := c.Engine.Game()
	if g == nil {
		return
	}
	alive := len(g.Alive())
	c.printSystem(c.Format.Text("ui.status", g.Round, c.Format.Phase(g.Phase), alive))
	for _, p := range g.Players {
		status := c.Format.Text("ui.alive")
		if !p.Alive {
			status = c.Format.Text("ui.dead")
		}
		line := fmt.Sprintf("  %-10s %-6s", p.Name, status)
		if reveal {
			line += " " + c.Format.Role(roles.Name(p))
		}
		if g.SheriffID == p.ID {
			line += " *" + c.Format.Text("ui.sheriff")
		}
		if reveal && p.LoverID != "" {
			line += " <3 " + g.Player(p.LoverID).Name
		}
		c.printLine(strings.TrimRight(line, " "))
	}
	if v := g.Winner; v.HasWinner {
		c.printSystem(c.Format.Text("ui.winner", c.Format.Camp(string(v.WinnerCamp)), v.Reason))
	}
}

func (c *CLI) cmdEvents(arg string) {
	n := 20
	if arg != "" {
		v, err := strconv.Atoi(arg)
		if err != nil || v <= 0 {
			c.printSystem(fmt.Sprintf("Bad count %q.", arg))
			return
		}
		n = v
	}
	evs := c.Engine.Events()
	if len(evs) > n {
		evs = evs[len(evs)-n:]
	}
	c.printEvents(evs)
}

func (c *CLI) printTrace(res types.Result) {
	c.printSystem(fmt.Sprintf("[trace] %s round %d: %d events", res.Phase, res.Round, len(res.Events)))
	for _, e := range res.Events {
		c.printSystem(fmt.Sprintf("[trace]   #%d %s %v", e.Seq, e.Type, e.Data))
	}
}

// printEvents renders public events, and private ones when revealing.
func (c *CLI) printEvents(evs []types.Event) {
	for _, e := range evs {
		text := c.Format.Event(e)
		if text == "" {
			continue
		}
		if e.VisibleTo != nil {
			if !c.Reveal {
				continue
			}
			text = fmt.Sprintf("  (%s) %s", c.audience(e.VisibleTo), text)
		}
		c.printLine(text)
	}
}

func (c *CLI) audience(ids []string) string {
	g := c.Engine.Game()
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

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}

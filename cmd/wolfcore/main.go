// Wolfcore runs Werewolf games between scripted, demo, Lua and human players.
// Usage: wolfcore [--version] [--plain] [--auto] [--hide] [--script <file>] [--trace]
//
//	[--seed <n>] [--lang <tag>] [--players <n>] [--db <path>] [game.yaml]
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/nathoo/wolfcore/cli"
	"github.com/nathoo/wolfcore/engine"
	"github.com/nathoo/wolfcore/engine/save"
	"github.com/nathoo/wolfcore/loader"
	"github.com/nathoo/wolfcore/locale"
	"github.com/nathoo/wolfcore/logging"
	"github.com/nathoo/wolfcore/store"
	"github.com/nathoo/wolfcore/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = "Usage: wolfcore [--version] [--plain] [--auto] [--hide] [--script <file>] [--trace] " +
	"[--seed <n>] [--lang <tag>] [--players <n>] [--db <path>] [game.yaml]"

type options struct {
	plain, auto, hide, trace bool
	script, lang, db, game   string
	seed                     int64
	players                  int
}

func main() {
	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}
	if opts == nil {
		fmt.Printf("wolfcore %s (commit %s, built %s)\n", version, commit, date)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// parseArgs returns nil options for --version.
func parseArgs(args []string) (*options, error) {
	o := &options{players: 8}
	value := func(i *int, flag string) (string, error) {
		if *i+1 >= len(args) {
			return "", fmt.Errorf("%s requires a value", flag)
		}
		*i++
		return args[*i], nil
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		var err error
		switch arg {
		case "--version":
			return nil, nil
		case "--plain":
			o.plain = true
		case "--auto":
			o.auto = true
		case "--hide":
			o.hide = true
		case "--trace":
			o.trace = true
		case "--script":
			o.script, err = value(&i, arg)
		case "--lang":
			o.lang, err = value(&i, arg)
		case "--db":
			o.db, err = value(&i, arg)
		case "--seed":
			var v string
			if v, err = value(&i, arg); err == nil {
				o.seed, err = strconv.ParseInt(v, 10, 64)
			}
		case "--players":
			var v string
			if v, err = value(&i, arg); err == nil {
				o.players, err = strconv.Atoi(v)
			}
		default:
			if strings.HasPrefix(arg, "--") {
				return nil, fmt.Errorf("unknown flag %s", arg)
			}
			if o.game == "" {
				o.game = arg
			}
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", arg, err)
		}
	}
	return o, nil
}

func run(ctx context.Context, o *options) error {
	settings, err := loader.LoadSettings()
	if err != nil {
		return err
	}
	log, closer, err := logging.New(settings.LogLevel, settings.LogFile)
	if err != nil {
		return err
	}
	defer closer.Close()

	var setup *loader.Setup
	if o.game != "" {
		setup, err = loader.Load(o.game)
	} else {
		setup, err = loader.Quick(o.players)
	}
	if err != nil {
		return err
	}
	defer setup.Close()
	for _, w := range setup.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	seed := firstNonZero(o.seed, setup.Seed, settings.Seed)
	if seed == 0 {
		seed = engine.NewSeed()
	}
	lang := o.lang
	switch {
	case lang != "":
	case o.game != "":
		lang = setup.Language
	default:
		lang = settings.Lang
	}
	f, err := locale.New(lang)
	if err != nil {
		return err
	}

	var input io.Reader = os.Stdin
	if o.script != "" {
		sf, err := os.Open(o.script)
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer sf.Close()
		input = sf
	}
	in := bufio.NewReader(input)

	rng := engine.NewRNG(seed)
	eng := engine.New(setup.Config, engine.WithRNG(rng), engine.WithLogger(log))
	specs, err := setup.Agents(loader.Deps{Rand: rng, In: in, Out: os.Stdout, LLM: settings.LLM})
	if err != nil {
		return err
	}
	if err := eng.Setup(specs, setup.Roles); err != nil {
		return err
	}
	log.Info().Int64("seed", seed).Str("lang", f.Lang()).Int("players", len(specs)).Msg("starting game")

	saveDir := settings.SaveDir
	if saveDir == "" {
		saveDir = save.DefaultDir()
	}
	saver := cli.Files(save.FileStore{Dir: saveDir})
	var archive cli.Archiver
	if path := firstNonEmpty(o.db, settings.DB); path != "" {
		db, err := store.Open(ctx, path, log)
		if err != nil {
			return err
		}
		defer db.Close()
		saver, archive = db, db
	}

	// Console players read from the same input as the command loop, which
	// only the plain CLI can share.
	if o.plain || o.script != "" || hasHuman(setup) || !isTerminal() {
		c := cli.New(eng, f)
		c.In = in
		c.Saves = saver
		c.Archive = archive
		c.Reveal = !o.hide
		c.Trace = o.trace
		c.Auto = o.auto
		c.EchoInput = o.script != ""
		return c.Run(ctx)
	}

	return tui.Run(ctx, eng, f, tui.Options{
		Saves:   saver,
		Archive: archive,
		Reveal:  !o.hide,
		Auto:    o.auto,
	})
}

func hasHuman(s *loader.Setup) bool {
	for _, p := range s.Players {
		if strings.EqualFold(p.Model, loader.ModelHuman) {
			return true
		}
	}
	return false
}

func firstNonZero(vals ...int64) int64 {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

package loader

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nathoo/wolfcore/agent"
	"github.com/nathoo/wolfcore/engine"
	"github.com/nathoo/wolfcore/engine/roles"
	"github.com/nathoo/wolfcore/engine/state"
	"github.com/nathoo/wolfcore/types"
)

// Agent models accepted in a player entry.
const (
	ModelDemo     = "demo"
	ModelHuman    = "human"
	ModelScripted = "scripted"
	ModelLua      = "lua"
	ModelLLM      = "llm"
)

// Setup is a validated game ready to be handed to the engine.
type Setup struct {
	Config   state.Config
	Roles    []types.RoleKind
	Players  []PlayerEntry
	Language string
	Seed     int64 // zero when the file leaves it unset
	Warnings []string

	dir     string
	closers []func()
}

// Deps are what agents need from the running program.
type Deps struct {
	Rand agent.Rand
	In   *bufio.Reader
	Out  io.Writer
	LLM  LLMSettings
}

func compile(f *File, dir string) (*Setup, error) {
	if len(f.Players) == 0 {
		return nil, fmt.Errorf("no players defined")
	}
	names := make([]string, len(f.Players))
	for i, p := range f.Players {
		names[i] = p.Name
	}

	cfg, err := compileConfig(&f.Game, len(f.Players))
	if err != nil {
		return nil, err
	}

	ve := Check(cfg, names)
	for i, p := range f.Players {
		if err := checkModel(p); err != nil {
			ve.Errors = append(ve.Errors, fmt.Sprintf("player %d (%s): %v", i+1, p.Name, err))
		}
	}
	if len(ve.Errors) > 0 {
		return nil, ve
	}

	kinds := make([]types.RoleKind, len(cfg.RoleNames))
	for i, name := range cfg.RoleNames {
		kinds[i], _ = roles.Parse(name)
	}
	cfg.NumPlayers = len(f.Players)

	lang := f.Language
	if lang == "" {
		lang = "en"
	}
	return &Setup{
		Config:   cfg,
		Roles:    kinds,
		Players:  f.Players,
		Language: lang,
		Seed:     f.Seed,
		Warnings: ve.Warnings,
		dir:      dir,
	}, nil
}

// compileConfig starts from the preset for n players, or from the defaults
// when the file lists its own roles, and applies the game section over it.
func compileConfig(node *yaml.Node, n int) (state.Config, error) {
	var probe struct {
		Roles []string `yaml:"roles"`
	}
	if !node.IsZero() {
		if err := node.Decode(&probe); err != nil {
			return state.Config{}, fmt.Errorf("decoding game section: %w", err)
		}
	}

	var cfg state.Config
	if len(probe.Roles) > 0 {
		cfg = state.DefaultConfig()
	} else {
		p, err := Preset(n)
		if err != nil {
			return state.Config{}, err
		}
		cfg = p
	}
	if !node.IsZero() {
		if err := node.Decode(&cfg); err != nil {
			return state.Config{}, fmt.Errorf("decoding game section: %w", err)
		}
	}
	return cfg, nil
}

func checkModel(p PlayerEntry) error {
	switch strings.ToLower(p.Model) {
	case ModelDemo, ModelHuman, "":
	case ModelScripted:
		if len(p.Responses) == 0 {
			return fmt.Errorf("scripted player needs responses")
		}
	case ModelLua:
		if p.Script == "" {
			return fmt.Errorf("lua player needs a script")
		}
	case ModelLLM:
		if p.Provider != "" && !slices.Contains(agent.Providers(), strings.ToLower(p.Provider)) {
			return fmt.Errorf("unknown llm provider %q", p.Provider)
		}
	default:
		return fmt.Errorf("unknown model %q", p.Model)
	}
	return nil
}

// Agents builds one agent per player. A missing model means demo. Lua
// scripts are resolved relative to the game file.
func (s *Setup) Agents(deps Deps) ([]engine.PlayerSpec, error) {
	specs := make([]engine.PlayerSpec, len(s.Players))
	for i, p := range s.Players {
		var a agent.Agent
		switch strings.ToLower(p.Model) {
		case ModelHuman:
			a = agent.NewConsole(p.Name, deps.In, deps.Out)
		case ModelScripted:
			a = agent.NewScripted(p.Name, p.Responses...)
		case ModelLua:
			path := p.Script
			if !filepath.IsAbs(path) {
				path = filepath.Join(s.dir, path)
			}
			l, err := agent.NewLua(p.Name, path, deps.Rand)
			if err != nil {
				s.Close()
				return nil, fmt.Errorf("player %s: %w", p.Name, err)
			}
			s.closers = append(s.closers, l.Close)
			a = l
		case ModelLLM:
			cfg, err := deps.LLM.Config(p.Provider, p.ModelName)
			if err != nil {
				s.Close()
				return nil, fmt.Errorf("player %s: %w", p.Name, err)
			}
			l, err := agent.NewLLM(p.Name, cfg)
			if err != nil {
				s.Close()
				return nil, fmt.Errorf("player %s: %w", p.Name, err)
			}
			a = l
		default:
			a = agent.NewDemo(p.Name, deps.Rand)
		}
		specs[i] = engine.PlayerSpec{Name: p.Name, Agent: a}
	}
	return specs, nil
}

// Close releases the Lua VMs built by Agents.
func (s *Setup) Close() {
	for _, c := range s.closers {
		c()
	}
	s.closers = nil
}

package roles

import (
	"fmt"
	"strings"

	"github.com/nathoo/wolfcore/agent"
	"github.com/nathoo/wolfcore/engine/state"
	"github.com/nathoo/wolfcore/types"
)

// Situation renders what p knows right now: the table, the public record
// and p's private notes. It is prepended to every question put to p's agent.
func Situation(g *state.Game, p *state.Player) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s (%s).\n", p.Name, Name(p))
	if p.IsWolf() {
		var mates []string
		for _, w := range g.AliveWolves() {
			if w.ID != p.ID {
				mates = append(mates, w.Name)
			}
		}
		if len(mates) > 0 {
			fmt.Fprintf(&b, "Your fellow werewolves: %s\n", strings.Join(mates, ", "))
		}
	}
	if lover := g.Lover(p); lover != nil {
		fmt.Fprintf(&b, "You are in love with %s.\n", lover.Name)
	}

	fmt.Fprintf(&b, "Alive: %s\n", strings.Join(state.Names(g.Alive()), ", "))
	if dead := g.Dead(); len(dead) > 0 {
		fmt.Fprintf(&b, "Dead: %s\n", strings.Join(state.Names(dead), ", "))
	}
	if s := g.Player(g.SheriffID); s != nil {
		fmt.Fprintf(&b, "Sheriff: %s\n", s.Name)
	}

	if len(g.Discussion) > 0 {
		b.WriteString("\nRecent discussion:\n")
		start := len(g.Discussion) - 10
		if start < 0 {
			start = 0
		}
		for _, line := range g.Discussion[start:] {
			b.WriteString("- " + line + "\n")
		}
	}
	if len(p.Notes) > 0 {
		b.WriteString("\nYour notes:\n")
		for _, n := range p.Notes {
			b.WriteString("- " + n + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (e Env) request(action string, opts []*state.Player, allowSkip bool) agent.Request {
	return agent.Request{
		Role:      Name(e.Self),
		Action:    action,
		Context:   Situation(e.Game, e.Self),
		Round:     e.Game.Round,
		Phase:     string(e.Game.Phase),
		Options:   state.Options(opts),
		AllowSkip: allowSkip,
	}
}

// pick asks for one of opts; nil means skipped.
func (e Env) pick(action string, opts []*state.Player, allowSkip bool) *state.Player {
	if len(opts) == 0 {
		return nil
	}
	idx, ok := e.Ask.Target(e.Ctx, e.Self.Agent, e.request(action, opts, allowSkip))
	if !ok {
		return nil
	}
	return opts[idx]
}

func (e Env) pickN(action string, opts []*state.Player, n int) []*state.Player {
	idx, ok := e.Ask.Targets(e.Ctx, e.Self.Agent, e.request(action, opts, false), n)
	if !ok {
		return nil
	}
	out := make([]*state.Player, len(idx))
	for i, j := range idx {
		out[i] = opts[j]
	}
	return out
}

func (e Env) confirm(question string) bool {
	return e.Ask.YesNo(e.Ctx, e.Self.Agent, e.request(question, nil, false))
}

func cardOptions(cards []types.RoleKind) []agent.Option {
	opts := make([]agent.Option, len(cards))
	for i, c := range cards {
		opts[i] = agent.Option{ID: string(c), Label: string(c)}
	}
	return opts
}

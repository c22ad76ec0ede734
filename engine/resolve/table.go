// Package resolve holds the phase resolvers composed by the engine: night
// actions, death cascades, sheriff election, day discussion and voting.
package resolve

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/nathoo/wolfcore/agent"
	"github.com/nathoo/wolfcore/engine/events"
	"github.com/nathoo/wolfcore/engine/roles"
	"github.com/nathoo/wolfcore/engine/state"
	"github.com/nathoo/wolfcore/types"
)

// Table is what every resolver shares: the game, its log, the agent
// selector and the game's randomness.
type Table struct {
	Game   *state.Game
	Log    *events.Log
	Ask    *agent.Selector
	Rand   agent.Rand
	Config state.Config
	Logger zerolog.Logger
}

func (t *Table) env(ctx context.Context, p *state.Player) roles.Env {
	return roles.Env{Ctx: ctx, Game: t.Game, Self: p, Ask: t.Ask}
}

func (t *Table) request(p *state.Player, action string, opts []*state.Player, allowSkip bool) agent.Request {
	return agent.Request{
		Role:      roles.Name(p),
		Action:    action,
		Context:   roles.Situation(t.Game, p),
		Round:     t.Game.Round,
		Phase:     string(t.Game.Phase),
		Options:   state.Options(opts),
		AllowSkip: allowSkip,
	}
}

func (t *Table) emit(typ types.EventType, msg string, data map[string]any, visibleTo ...string) {
	t.Log.Emit(typ, msg, data, visibleTo...)
}

// died announces a death.
func (t *Table) died(p *state.Player, cause types.DeathCause) string {
	msg := fmt.Sprintf("%s died.", p.Name)
	data := map[string]any{"player_id": p.ID, "player": p.Name, "cause": string(cause)}
	if t.Config.ShowRoleOnDeath {
		data["role"] = roles.Name(p)
		msg = fmt.Sprintf("%s died. They were a %s.", p.Name, roles.Name(p))
	}
	t.emit(types.EventPlayerDied, msg, data)
	return msg
}

// diedSince announces the deaths recorded after index from of the current
// death list.
func (t *Table) diedSince(from int) []string {
	var out []string
	for _, id := range t.Game.CycleDeaths()[from:] {
		out = append(out, t.died(t.Game.Player(id), t.Game.DeathCauses[id]))
	}
	return out
}

func ids(players []*state.Player) []string {
	out := make([]string, len(players))
	for i, p := range players {
		out[i] = p.ID
	}
	return out
}

func playerData(p *state.Player) map[string]any {
	return map[string]any{"player_id": p.ID, "player": p.Name}
}

func targetData(actor, target *state.Player) map[string]any {
	d := playerData(actor)
	d["target_id"] = target.ID
	d["target"] = target.Name
	return d
}

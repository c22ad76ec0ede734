package resolve

import (
	"context"
	"fmt"
	"strings"

	"github.com/nathoo/wolfcore/engine/roles"
	"github.com/nathoo/wolfcore/types"
)

// Discussion collects the day's speeches and gives daytime abilities
// (the Knight's duel) their turn.
type Discussion struct {
	*Table
	Death *Death
}

// Run lets every living player with an agent speak, in roster order.
func (d *Discussion) Run(ctx context.Context) []string {
	g := d.Game
	var out []string

	msg := fmt.Sprintf("Day %d. The village gathers.", g.Round)
	if dead := d.lastNight(); len(dead) > 0 {
		msg += " Last night, " + strings.Join(dead, ", ") + " died."
	}
	d.emit(types.EventMessage, msg, map[string]any{"round": g.Round})
	out = append(out, msg)

	prompt := fmt.Sprintf("It is day %d. Share your thoughts with the village. Who do you suspect, and why? Keep it short.", g.Round)
	for _, p := range g.Alive() {
		if p.Agent == nil {
			continue
		}
		speech := d.Ask.Speech(ctx, p.Agent, roles.Situation(g, p), prompt)
		if speech == "" {
			continue
		}
		line := fmt.Sprintf("%s: %s", p.Name, speech)
		g.Discussion = append(g.Discussion, line)
		data := playerData(p)
		data["speech"] = speech
		d.emit(types.EventPlayerSpeech, line, data)
		out = append(out, line)
	}

	return append(out, d.dayActions(ctx)...)
}

func (d *Discussion) lastNight() []string {
	var names []string
	for _, id := range d.Game.NightDeaths {
		if p := d.Game.Player(id); p != nil {
			names = append(names, p.Name)
		}
	}
	return names
}

func (d *Discussion) dayActions(ctx context.Context) []string {
	g := d.Game
	var out []string
	for _, p := range g.Players {
		if !p.Alive || p.Role.Disabled() {
			continue
		}
		da, ok := roles.Effective(p.Role).(roles.DayActor)
		if !ok {
			continue
		}
		for _, a := range da.DayActions(d.env(ctx, p)) {
			if !a.Validate() {
				d.Logger.Debug().Str("actor", p.ID).Int("kind", int(a.Kind())).Msg("dropped invalid day action")
				continue
			}
			before := len(g.CycleDeaths())
			msgs := a.Execute()
			data := targetData(p, a.Targets()[0])
			if duel, ok := a.(*roles.KnightDuel); ok && duel.Loser != nil {
				data["loser_id"] = duel.Loser.ID
			}
			d.emit(types.EventKnightDuel, strings.Join(msgs, " "), data)
			out = append(out, msgs...)
			out = append(out, d.diedSince(before)...)
		}
	}
	return append(out, d.Death.Aftermath(ctx)...)
}

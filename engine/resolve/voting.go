package resolve

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/wolfcore/engine/roles"
	"github.com/nathoo/wolfcore/engine/state"
	"github.com/nathoo/wolfcore/types"
)

// Voting runs the day vote and its elimination.
type Voting struct {
	*Table
	Death *Death
}

// Run collects one ballot per eligible voter, tallies it with the Raven's
// mark and eliminates the single leader. A tie eliminates nobody, unless
// revotes are allowed, in which case one runoff among the tied players is
// held first.
func (v *Voting) Run(ctx context.Context) []string {
	g := v.Game
	out := v.collect(ctx, nil)

	counts := g.VoteCounts()
	leaders, top := state.Leaders(counts)
	out = append(out, v.result(counts, leaders, top))

	if len(leaders) > 1 && v.Config.AllowRevote {
		tied := make([]*state.Player, 0, len(leaders))
		for _, id := range leaders {
			tied = append(tied, g.Player(id))
		}
		msg := fmt.Sprintf("Runoff between %s.", strings.Join(state.Names(tied), ", "))
		v.emit(types.EventMessage, msg, map[string]any{"runoff": leaders})
		out = append(out, msg)

		g.Votes = map[string]string{}
		out = append(out, v.collect(ctx, tied)...)
		counts = g.VoteCounts()
		for id := range counts {
			if !contains(leaders, id) {
				delete(counts, id)
			}
		}
		leaders, top = state.Leaders(counts)
		out = append(out, v.result(counts, leaders, top))
	}

	if len(leaders) != 1 {
		msg := "No one is eliminated today."
		v.emit(types.EventMessage, msg, nil)
		return append(out, msg)
	}
	return append(out, v.eliminate(ctx, g.Player(leaders[0]))...)
}

// collect asks every eligible voter in roster order. A nil among means any
// other living player.
func (v *Voting) collect(ctx context.Context, among []*state.Player) []string {
	g := v.Game
	var out []string
	for _, voter := range g.Alive() {
		if !voter.CanVote || voter.Agent == nil {
			continue
		}
		var opts []*state.Player
		if among == nil {
			opts = g.Alive(voter.ID)
		} else {
			for _, p := range among {
				if p.ID != voter.ID && p.Alive {
					opts = append(opts, p)
				}
			}
		}
		if len(opts) == 0 {
			continue
		}
		idx, ok := v.Ask.Target(ctx, voter.Agent, v.request(voter, "Vote to eliminate a player", opts, false))
		if !ok {
			continue
		}
		ballot := roles.NewVote(g, voter, opts[idx])
		if !ballot.Validate() {
			v.Logger.Debug().Str("voter", voter.ID).Msg("dropped invalid vote")
			continue
		}
		ballot.Execute()
		msg := fmt.Sprintf("%s votes for %s.", voter.Name, opts[idx].Name)
		v.emit(types.EventVoteCast, msg, targetData(voter, opts[idx]))
		out = append(out, msg)
	}
	return out
}

func (v *Voting) result(counts map[string]int, leaders []string, top int) string {
	ranked := make([]string, 0, len(counts))
	for id := range counts {
		ranked = append(ranked, id)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if counts[ranked[i]] != counts[ranked[j]] {
			return counts[ranked[i]] > counts[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})
	parts := make([]string, len(ranked))
	for i, id := range ranked {
		parts[i] = fmt.Sprintf("%s: %d", v.Game.Player(id).Name, counts[id])
	}
	msg := "Vote result: " + strings.Join(parts, ", ")
	if len(ranked) == 0 {
		msg = "Vote result: no votes."
	}
	v.emit(types.EventVoteResult, msg, map[string]any{
		"counts":  counts,
		"leaders": leaders,
		"top":     top,
		"tie":     len(leaders) > 1,
	})
	return msg
}

func (v *Voting) eliminate(ctx context.Context, p *state.Player) []string {
	g := v.Game

	if idiot, ok := roles.Effective(p.Role).(*roles.Idiot); ok && !idiot.Revealed && !p.Role.Disabled() {
		idiot.Revealed = true
		p.CanVote = false
		p.Statuses[types.StatusRevealed] = true
		p.Statuses[types.StatusNoVote] = true
		msg := fmt.Sprintf("%s is revealed as the Idiot and survives, but can no longer vote.", p.Name)
		v.emit(types.EventIdiotRevealed, msg, playerData(p))
		return []string{msg}
	}

	g.Kill(p, types.CauseVote)
	msg := fmt.Sprintf("%s is eliminated by vote.", p.Name)
	v.emit(types.EventPlayerEliminated, msg, playerData(p))
	out := []string{msg, v.died(p, types.CauseVote)}

	if _, ok := roles.Effective(p.Role).(*roles.Elder); ok {
		var disabled []string
		for _, other := range g.Alive() {
			if other.Camp() == types.CampVillager {
				other.Role.Disable()
				disabled = append(disabled, other.ID)
			}
		}
		line := "The village voted out its Elder. Every villager loses their ability."
		v.emit(types.EventElderPenalty, line, map[string]any{"disabled": disabled})
		out = append(out, line)
	}

	return append(out, v.Death.Aftermath(ctx)...)
}

func contains(ids []string, id string) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

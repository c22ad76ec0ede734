package resolve

import (
	"context"
	"fmt"

	"github.com/nathoo/wolfcore/engine/roles"
	"github.com/nathoo/wolfcore/engine/state"
	"github.com/nathoo/wolfcore/types"
)

// Night collects, orders and executes every night action, settles the
// werewolf vote and hands the result to the death resolver.
type Night struct {
	*Table
	Death *Death
}

// Run resolves one night. The game must already be in the night phase.
func (n *Night) Run(ctx context.Context) []string {
	g := n.Game
	var out []string

	out = append(out, n.transform()...)
	out = append(out, n.wolfTalk(ctx)...)

	var early []roles.Action
	var aware []*state.Player
	for _, p := range g.Players {
		if !roles.CanActAtNight(g, p) {
			continue
		}
		if roles.IsKillAware(p) {
			aware = append(aware, p)
			continue
		}
		early = append(early, roles.NightActionsFor(n.env(ctx, p))...)
	}
	roles.SortActions(early)

	var rest []roles.Action
	for _, a := range early {
		if roles.Priority(a.Kind()) > roles.WitchPriority {
			out = append(out, n.execute(a)...)
		} else {
			rest = append(rest, a)
		}
	}

	out = append(out, n.settleWolfVote()...)

	// Kill-aware roles decide now that the target is known. Merging them
	// with the remaining queue keeps the overall priority order.
	for _, p := range aware {
		if roles.CanActAtNight(g, p) {
			rest = append(rest, roles.NightActionsFor(n.env(ctx, p))...)
		}
	}
	roles.SortActions(rest)
	for _, a := range rest {
		out = append(out, n.execute(a)...)
	}

	return append(out, n.Death.ResolveNight(ctx)...)
}

// transform wakes any BloodMoonApostle left alone in the werewolf camp.
func (n *Night) transform() []string {
	var out []string
	for _, p := range n.Game.Players {
		b, ok := roles.Effective(p.Role).(*roles.BloodMoonApostle)
		if !ok || !b.Transform(n.Game, p) {
			continue
		}
		msg := fmt.Sprintf("%s feels the blood moon rise and joins the hunt.", p.Name)
		n.emit(types.EventRoleTransformed, msg, playerData(p), p.ID)
		out = append(out, msg)
	}
	return out
}

func (n *Night) wolfTalk(ctx context.Context) []string {
	wolves := n.Game.AliveWolves()
	if len(wolves) < 2 {
		return nil
	}
	var out []string
	for _, w := range wolves {
		if w.Agent == nil {
			continue
		}
		speech := n.Ask.Speech(ctx, w.Agent, roles.Situation(n.Game, w),
			"It is night. Discuss with your fellow werewolves who should die tonight. Keep it short.")
		if speech == "" {
			continue
		}
		msg := fmt.Sprintf("%s (werewolf): %s", w.Name, speech)
		data := playerData(w)
		data["speech"] = speech
		n.emit(types.EventWerewolfDiscussion, msg, data, ids(wolves)...)
		out = append(out, msg)
	}
	return out
}

func (n *Night) execute(a roles.Action) []string {
	g := n.Game
	actor := a.Actor()
	if g.NightmareBlocked == actor.ID && a.Kind() != types.ActionNightmareBlock {
		msg := fmt.Sprintf("%s is blocked and cannot act tonight.", actor.Name)
		n.emit(types.EventPlayerBlocked, msg, playerData(actor), actor.ID)
		return []string{msg}
	}
	if !a.Validate() {
		n.Logger.Debug().Str("actor", actor.ID).Int("kind", int(a.Kind())).Msg("dropped invalid action")
		return nil
	}

	before := len(g.CycleDeaths())
	out := a.Execute()
	n.announce(a, out)
	if len(g.CycleDeaths()) == before {
		return out
	}
	// A night kill takes lovers and charmed players with it at once, so they
	// cannot act later in the night.
	out = append(out, n.diedSince(before)...)
	return append(out, n.Death.Cascade()...)
}

// announce records an executed action in the log. Results are private to
// the actor unless the whole pack shares them.
func (n *Night) announce(a roles.Action, msgs []string) {
	actor := a.Actor()
	msg := ""
	if len(msgs) > 0 {
		msg = msgs[0]
	}
	data := playerData(actor)
	if ts := a.Targets(); len(ts) > 0 {
		data["target_id"] = ts[0].ID
		data["target"] = ts[0].Name
	}
	pack := ids(n.Game.AliveWolves())

	switch act := a.(type) {
	case *roles.WerewolfVote:
		n.emit(types.EventMessage, fmt.Sprintf("%s votes to kill %s.", actor.Name, act.Targets()[0].Name), data, pack...)
	case *roles.WhiteWolfKill:
		data["killed"] = act.Killed
		n.emit(types.EventWhiteWolfKilled, msg, data, actor.ID)
	case *roles.WolfBeautyCharm:
		n.emit(types.EventWolfBeautyCharmed, msg, data, pack...)
	case *roles.GuardianWolfProtect:
		n.emit(types.EventGuardianProtected, msg, data, pack...)
	case *roles.NightmareBlock:
		n.emit(types.EventNightmareBlocked, msg, data, pack...)
	case *roles.WitchSave:
		n.emit(types.EventWitchSaved, msg, data, actor.ID)
	case *roles.WitchPoison:
		n.emit(types.EventWitchPoisoned, msg, data, actor.ID)
	case *roles.SeerCheck:
		data["camp"] = string(act.Result)
		n.emit(types.EventSeerChecked, msg, data, actor.ID)
	case *roles.GuardProtect:
		n.emit(types.EventGuardProtected, msg, data, actor.ID)
	case *roles.CupidLink:
		second := act.Targets()[1]
		data["second_id"] = second.ID
		data["second"] = second.Name
		n.emit(types.EventLoversLinked, msg, data, actor.ID, act.Targets()[0].ID, second.ID)
	case *roles.RavenMark:
		n.emit(types.EventRavenMarked, msg, data, actor.ID)
	case *roles.GraveyardCheck:
		data["role"] = string(act.Role)
		data["camp"] = string(act.Camp)
		n.emit(types.EventGraveyardChecked, msg, data, actor.ID)
	case *roles.MagicianSwap:
		second := act.Targets()[1]
		data["second_id"] = second.ID
		data["second"] = second.Name
		n.emit(types.EventMagicianSwapped, msg, data, actor.ID)
	case *roles.ThiefChoose:
		data["role"] = string(act.Card)
		delete(data, "target_id")
		delete(data, "target")
		n.emit(types.EventThiefChose, msg, data, actor.ID)
	default:
		n.emit(types.EventRoleActing, msg, data, actor.ID)
	}
}

// settleWolfVote turns the pack's ballots into tonight's target. A split
// vote is broken at random among the leaders.
func (n *Night) settleWolfVote() []string {
	g := n.Game
	counts := map[string]int{}
	for _, target := range g.WerewolfVotes {
		counts[target]++
	}
	leaders, _ := state.Leaders(counts)
	if len(leaders) == 0 {
		return nil
	}
	target := leaders[0]
	if len(leaders) > 1 {
		target = leaders[n.Rand.Intn(len(leaders))]
	}
	g.WerewolfTarget = target

	victim := g.Player(target)
	msg := fmt.Sprintf("The werewolves chose to attack %s.", victim.Name)
	data := playerData(victim)
	data["votes"] = counts[target]
	data["tied"] = len(leaders) > 1
	n.emit(types.EventWerewolfKilled, msg, data, ids(g.AliveWolves())...)
	return []string{msg}
}

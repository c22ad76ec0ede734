package resolve

import (
	"context"
	"fmt"

	"github.com/nathoo/wolfcore/engine/roles"
	"github.com/nathoo/wolfcore/engine/state"
	"github.com/nathoo/wolfcore/types"
)

// Death applies the night's kill and poison and runs every cascade that
// follows a death: lovers, charms, revenge shots and the sheriff badge.
type Death struct {
	*Table
}

// ResolveNight turns tonight's werewolf target and poison into deaths.
func (d *Death) ResolveNight(ctx context.Context) []string {
	g := d.Game
	var out []string

	if g.WerewolfTarget != "" {
		victim := g.Player(roles.Swapped(g, g.WerewolfTarget))
		if victim != nil && victim.Alive {
			out = append(out, d.attack(victim)...)
		}
	}

	if g.WitchPoisonTarget != "" {
		if p := g.Player(roles.Swapped(g, g.WitchPoisonTarget)); p != nil && p.Alive {
			out = append(out, d.kill(p, types.CauseWitchPoison)...)
		}
	}

	out = append(out, d.Aftermath(ctx)...)
	if len(g.NightDeaths) == 0 {
		msg := "It was a peaceful night. Nobody died."
		d.emit(types.EventMessage, msg, map[string]any{"peaceful": true})
		out = append(out, msg)
	}
	return out
}

func (d *Death) attack(victim *state.Player) []string {
	g := d.Game
	saved := func(by string) []string {
		msg := fmt.Sprintf("%s was attacked but survived.", victim.Name)
		data := playerData(victim)
		data["by"] = by
		d.emit(types.EventPlayerSaved, msg, data)
		return []string{msg}
	}

	switch {
	case g.WitchSavedTarget != "" && g.WitchSavedTarget == g.WerewolfTarget:
		return saved("witch")
	case g.GuardProtected == victim.ID:
		return saved("guard")
	case victim.IsWolf() && g.GuardianWolfProtected == victim.ID:
		return saved("guardian_wolf")
	}

	if ml, ok := roles.Effective(victim.Role).(roles.MultiLife); ok && !victim.Role.Disabled() && ml.Lives() > 1 {
		ml.LoseLife()
		msg := fmt.Sprintf("%s was attacked but survived.", victim.Name)
		data := playerData(victim)
		data["lives"] = ml.Lives()
		d.emit(types.EventElderSurvived, msg, data, victim.ID)
		d.emit(types.EventPlayerSaved, msg, playerData(victim))
		return []string{msg}
	}
	return d.kill(victim, types.CauseWerewolf)
}

// kill records a death and breaks the lover's heart in the same step.
func (d *Death) kill(p *state.Player, cause types.DeathCause) []string {
	if !d.Game.Kill(p, cause) {
		return nil
	}
	out := []string{d.died(p, cause)}
	return append(out, d.heartbreak(p)...)
}

func (d *Death) heartbreak(p *state.Player) []string {
	lover := d.Game.Lover(p)
	if lover == nil || !lover.Alive {
		return nil
	}
	d.Game.Kill(lover, types.CauseHeartbreak)
	msg := fmt.Sprintf("%s died of a broken heart.", lover.Name)
	d.emit(types.EventLoverDied, msg, targetData(p, lover))
	return append([]string{msg, d.died(lover, types.CauseHeartbreak)}, d.heartbreak(lover)...)
}

// Cascade follows every death of the current half-cycle to its lover and
// charm consequences, repeating until no new death results. It is safe to
// call at any time; deaths already followed are not revisited.
func (d *Death) Cascade() []string {
	g := d.Game
	var out []string
	for i := 0; i < len(g.CycleDeaths()); i++ {
		p := g.Player(g.CycleDeaths()[i])
		if p == nil {
			continue
		}
		out = append(out, d.heartbreak(p)...)
		out = append(out, d.charm(p)...)
	}
	return out
}

// Aftermath settles the current half-cycle. Lover and charm deaths are all
// applied before any death ability fires; each shot is cascaded in turn
// before the next dead player is considered. Calling Aftermath again in the
// same cycle does nothing new.
func (d *Death) Aftermath(ctx context.Context) []string {
	g := d.Game
	out := d.Cascade()
	for i := 0; i < len(g.CycleDeaths()); i++ {
		p := g.Player(g.CycleDeaths()[i])
		if p == nil {
			continue
		}
		out = append(out, d.deathShot(ctx, p)...)
		out = append(out, d.Cascade()...)
		out = append(out, d.badge(ctx, p)...)
	}
	return out
}

func (d *Death) charm(p *state.Player) []string {
	c, ok := roles.Effective(p.Role).(roles.Charmer)
	if !ok || c.CharmedTarget() == "" {
		return nil
	}
	t := d.Game.Player(c.CharmedTarget())
	if t == nil || !t.Alive {
		return nil
	}
	d.Game.Kill(t, types.CauseCharm)
	msg := fmt.Sprintf("%s was charmed by %s and follows them into death.", t.Name, p.Name)
	d.emit(types.EventWolfBeautyCharmed, msg, targetData(p, t))
	return append([]string{msg, d.died(t, types.CauseCharm)}, d.heartbreak(t)...)
}

func (d *Death) deathShot(ctx context.Context, p *state.Player) []string {
	g := d.Game
	if _, ok := roles.Effective(p.Role).(roles.DeathShooter); !ok || g.DeathAbilitiesUsed[p.ID] {
		return nil
	}
	if g.DeathCauses[p.ID] == types.CauseWitchPoison || p.Role.Disabled() {
		g.DeathAbilitiesUsed[p.ID] = true
		msg := fmt.Sprintf("%s cannot use their ability.", p.Name)
		d.emit(types.EventPoisonedNoAbility, msg, playerData(p))
		return []string{msg}
	}

	targets := g.Alive()
	if len(targets) == 0 {
		g.DeathAbilitiesUsed[p.ID] = true
		return nil
	}
	idx, ok := d.Ask.Target(ctx, p.Agent, d.request(p, "You are dying. Choose a player to shoot", targets, false))
	if !ok {
		g.DeathAbilitiesUsed[p.ID] = true
		return nil
	}

	shot := roles.NewDeathShot(g, p, targets[idx])
	if !shot.Validate() {
		d.Logger.Debug().Str("actor", p.ID).Msg("dropped invalid death shot")
		g.DeathAbilitiesUsed[p.ID] = true
		return nil
	}
	out := shot.Execute()
	target := targets[idx]
	d.emit(types.EventDeathShot, out[0], targetData(p, target))
	return append(out, d.died(target, types.CauseDeathShot))
}

func (d *Death) badge(ctx context.Context, p *state.Player) []string {
	g := d.Game
	if g.SheriffID != p.ID {
		return nil
	}
	others := g.Alive()
	if len(others) == 0 || p.Agent == nil {
		return d.tear(p)
	}
	idx, ok := d.Ask.Target(ctx, p.Agent, d.request(p, "You were the sheriff. Pass the badge to a successor", others, true))
	if !ok {
		return d.tear(p)
	}
	heir := others[idx]
	g.SetSheriff(heir.ID)
	msg := fmt.Sprintf("%s passes the sheriff badge to %s.", p.Name, heir.Name)
	d.emit(types.EventBadgeTransferred, msg, targetData(p, heir))
	return []string{msg}
}

func (d *Death) tear(p *state.Player) []string {
	d.Game.SetSheriff("")
	msg := fmt.Sprintf("The sheriff badge of %s is torn.", p.Name)
	d.emit(types.EventBadgeTorn, msg, playerData(p))
	return []string{msg}
}

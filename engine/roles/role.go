// Package roles implements every role and the Action commands they emit.
//
// Role identity is fixed at setup. Capabilities are expressed as small
// interfaces (NightActor, DeathShooter, MultiLife, ...) that callers probe
// through Effective, so a Thief that picked a card exposes the capabilities
// of that card.
package roles

import (
	"context"

	"github.com/nathoo/wolfcore/agent"
	"github.com/nathoo/wolfcore/engine/state"
	"github.com/nathoo/wolfcore/types"
)

// Env is what a role sees while deciding its actions.
type Env struct {
	Ctx  context.Context
	Game *state.Game
	Self *state.Player
	Ask  *agent.Selector
}

// NightActor is a role with a night ability.
type NightActor interface {
	HasNightAction(g *state.Game, self *state.Player) bool
	NightActions(env Env) []Action
}

// KillAware roles decide after the werewolf kill target is known.
type KillAware interface {
	NightActor
	awaitsKill()
}

// DayActor is a role with a daytime ability.
type DayActor interface {
	DayActions(env Env) []Action
}

// DeathShooter roles may shoot one player when they die.
type DeathShooter interface {
	DeathShot()
}

// MultiLife roles survive werewolf attacks while lives remain.
type MultiLife interface {
	Lives() int
	LoseLife()
}

// Charmer roles drag a charmed player with them when they die.
type Charmer interface {
	CharmedTarget() string
}

// SeerDisguise roles show the seer a camp other than their own.
type SeerDisguise interface {
	AppearsAs() types.Camp
}

type base struct {
	disabled bool
}

func (b *base) Disabled() bool { return b.disabled }
func (b *base) Disable()       { b.disabled = true }

// Effective returns the role whose abilities are in play: the chosen card
// for a Thief that has chosen, r itself otherwise.
func Effective(r state.Role) state.Role {
	if t, ok := r.(*Thief); ok && t.Chosen != nil {
		return t.Chosen
	}
	return r
}

// CanActAtNight reports whether p's role has a night action right now.
func CanActAtNight(g *state.Game, p *state.Player) bool {
	if !p.Alive || p.Role.Disabled() {
		return false
	}
	na, ok := Effective(p.Role).(NightActor)
	return ok && na.HasNightAction(g, p)
}

// NightActionsFor asks the acting player's role for its actions tonight.
func NightActionsFor(env Env) []Action {
	na, ok := Effective(env.Self.Role).(NightActor)
	if !ok {
		return nil
	}
	return na.NightActions(env)
}

// IsKillAware reports whether p decides after the werewolf kill is known.
func IsKillAware(p *state.Player) bool {
	_, ok := Effective(p.Role).(KillAware)
	return ok
}

// SeenBySeer returns the camp the seer learns for p.
func SeenBySeer(p *state.Player) types.Camp {
	if d, ok := Effective(p.Role).(SeerDisguise); ok {
		return d.AppearsAs()
	}
	return p.Camp()
}

// Name returns the display name of p's role, including a Thief's pick.
func Name(p *state.Player) string {
	if t, ok := p.Role.(*Thief); ok && t.Chosen != nil {
		return string(types.RoleThief) + "/" + string(t.Chosen.Kind())
	}
	return string(p.Role.Kind())
}

package roles

import (
	"github.com/nathoo/wolfcore/engine/state"
	"github.com/nathoo/wolfcore/types"
)

type wolf struct{ base }

func (*wolf) Camp() types.Camp { return types.CampWerewolf }

func (*wolf) HasNightAction(*state.Game, *state.Player) bool { return true }

func (w *wolf) NightActions(env Env) []Action {
	if a := wolfVote(env); a != nil {
		return []Action{a}
	}
	return nil
}

// wolfVote asks for this wolf's kill ballot among living non-wolves.
func wolfVote(env Env) Action {
	var prey []*state.Player
	for _, p := range env.Game.Alive() {
		if !p.IsWolf() {
			prey = append(prey, p)
		}
	}
	t := env.pick("Choose a player to kill tonight", prey, false)
	if t == nil {
		return nil
	}
	return NewWerewolfVote(env.Game, env.Self, t)
}

// Werewolf votes with the pack each night.
type Werewolf struct{ wolf }

func (*Werewolf) Kind() types.RoleKind { return types.RoleWerewolf }

// AlphaWolf is a werewolf that shoots when it dies.
type AlphaWolf struct{ wolf }

func (*AlphaWolf) Kind() types.RoleKind { return types.RoleAlphaWolf }
func (*AlphaWolf) DeathShot()           {}

// HiddenWolf appears as a villager to the seer.
type HiddenWolf struct{ wolf }

func (*HiddenWolf) Kind() types.RoleKind  { return types.RoleHiddenWolf }
func (*HiddenWolf) AppearsAs() types.Camp { return types.CampVillager }

// WhiteWolf may kill a fellow werewolf every second night.
type WhiteWolf struct{ wolf }

func (*WhiteWolf) Kind() types.RoleKind { return types.RoleWhiteWolf }

func (w *WhiteWolf) NightActions(env Env) []Action {
	var out []Action
	if a := wolfVote(env); a != nil {
		out = append(out, a)
	}
	if env.Game.Round%2 != 0 {
		return out
	}
	var pack []*state.Player
	for _, p := range env.Game.AliveWolves() {
		if p.ID != env.Self.ID {
			pack = append(pack, p)
		}
	}
	if t := env.pick("Kill a fellow werewolf?", pack, true); t != nil {
		out = append(out, NewWhiteWolfKill(env.Game, env.Self, t))
	}
	return out
}

// WolfBeauty charms one player, who dies when the WolfBeauty does.
type WolfBeauty struct {
	wolf
	CharmedID string
}

func (*WolfBeauty) Kind() types.RoleKind    { return types.RoleWolfBeauty }
func (w *WolfBeauty) CharmedTarget() string { return w.CharmedID }

func (w *WolfBeauty) NightActions(env Env) []Action {
	var out []Action
	if a := wolfVote(env); a != nil {
		out = append(out, a)
	}
	if w.CharmedID == "" {
		if t := env.pick("Choose a player to charm", env.Game.Alive(env.Self.ID), false); t != nil {
			out = append(out, NewWolfBeautyCharm(env.Game, env.Self, t))
		}
	}
	return out
}

// GuardianWolf protects one werewolf each night.
type GuardianWolf struct{ wolf }

func (*GuardianWolf) Kind() types.RoleKind { return types.RoleGuardianWolf }

func (w *GuardianWolf) NightActions(env Env) []Action {
	var out []Action
	if t := env.pick("Choose a werewolf to protect", env.Game.AliveWolves(), true); t != nil {
		out = append(out, NewGuardianWolfProtect(env.Game, env.Self, t))
	}
	if a := wolfVote(env); a != nil {
		out = append(out, a)
	}
	return out
}

// NightmareWolf blocks one player's night action.
type NightmareWolf struct{ wolf }

func (*NightmareWolf) Kind() types.RoleKind { return types.RoleNightmareWolf }

func (w *NightmareWolf) NightActions(env Env) []Action {
	var out []Action
	var others []*state.Player
	for _, p := range env.Game.Alive() {
		if !p.IsWolf() {
			others = append(others, p)
		}
	}
	if t := env.pick("Choose a player to block tonight", others, true); t != nil {
		out = append(out, NewNightmareBlock(env.Game, env.Self, t))
	}
	if a := wolfVote(env); a != nil {
		out = append(out, a)
	}
	return out
}

// BloodMoonApostle sides with the werewolves but looks like a villager
// until it becomes the last of them; then it transforms and hunts.
type BloodMoonApostle struct {
	wolf
	Transformed bool
}

func (*BloodMoonApostle) Kind() types.RoleKind { return types.RoleBloodMoonApostle }

func (b *BloodMoonApostle) AppearsAs() types.Camp {
	if b.Transformed {
		return types.CampWerewolf
	}
	return types.CampVillager
}

func (b *BloodMoonApostle) HasNightAction(*state.Game, *state.Player) bool { return b.Transformed }

// Transform reports whether the apostle changed. It happens once, when no
// other werewolf-camp player is alive.
func (b *BloodMoonApostle) Transform(g *state.Game, self *state.Player) bool {
	if b.Transformed || !self.Alive {
		return false
	}
	for _, w := range g.AliveWolves() {
		if w.ID != self.ID {
			return false
		}
	}
	b.Transformed = true
	return true
}

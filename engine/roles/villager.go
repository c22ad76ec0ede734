package roles

import (
	"github.com/nathoo/wolfcore/engine/state"
	"github.com/nathoo/wolfcore/types"
)

type villager struct{ base }

func (*villager) Camp() types.Camp { return types.CampVillager }

// Villager has no ability.
type Villager struct{ villager }

func (*Villager) Kind() types.RoleKind { return types.RoleVillager }

// Seer learns one player's camp each night.
type Seer struct{ villager }

func (*Seer) Kind() types.RoleKind                           { return types.RoleSeer }
func (*Seer) HasNightAction(*state.Game, *state.Player) bool { return true }

func (*Seer) NightActions(env Env) []Action {
	t := env.pick("Choose a player to check", env.Game.Alive(env.Self.ID), false)
	if t == nil {
		return nil
	}
	return []Action{NewSeerCheck(env.Game, env.Self, t)}
}

// Witch holds one save potion and one poison potion for the whole game.
type Witch struct {
	villager
	HasSavePotion   bool
	HasPoisonPotion bool
}

func (*Witch) Kind() types.RoleKind { return types.RoleWitch }
func (*Witch) awaitsKill()          {}

func (w *Witch) HasNightAction(*state.Game, *state.Player) bool {
	return w.HasSavePotion || w.HasPoisonPotion
}

// NightActions is called once the werewolf target is known. Saving uses up
// the night: a witch who saves does not also poison.
func (w *Witch) NightActions(env Env) []Action {
	g := env.Game
	if w.HasSavePotion && g.WerewolfTarget != "" {
		if victim := g.Player(g.WerewolfTarget); victim != nil && victim.Alive {
			if env.confirm("The werewolves attacked " + victim.Name + ". Use your save potion?") {
				return []Action{NewWitchSave(g, env.Self, victim)}
			}
		}
	}
	if w.HasPoisonPotion {
		if t := env.pick("Choose a player to poison", g.Alive(env.Self.ID), true); t != nil {
			return []Action{NewWitchPoison(g, env.Self, t)}
		}
	}
	return nil
}

// Hunter shoots one player on death, unless poisoned.
type Hunter struct{ villager }

func (*Hunter) Kind() types.RoleKind { return types.RoleHunter }
func (*Hunter) DeathShot()           {}

// Guard protects one player each night, never the same one twice in a row.
type Guard struct {
	villager
	LastProtectedID string
}

func (*Guard) Kind() types.RoleKind                           { return types.RoleGuard }
func (*Guard) HasNightAction(*state.Game, *state.Player) bool { return true }

func (gd *Guard) NightActions(env Env) []Action {
	var opts []*state.Player
	for _, p := range env.Game.Alive() {
		if p.ID != gd.LastProtectedID {
			opts = append(opts, p)
		}
	}
	t := env.pick("Choose a player to protect", opts, true)
	if t == nil {
		return nil
	}
	return []Action{NewGuardProtect(env.Game, env.Self, t)}
}

// Idiot survives the first elimination by vote, losing the right to vote instead.
type Idiot struct {
	villager
	Revealed bool
}

func (*Idiot) Kind() types.RoleKind { return types.RoleIdiot }

// Elder survives the first werewolf attack. Voting the Elder out costs
// the village its abilities.
type Elder struct {
	villager
	LivesLeft int
}

func (*Elder) Kind() types.RoleKind { return types.RoleElder }
func (e *Elder) Lives() int         { return e.LivesLeft }

func (e *Elder) LoseLife() {
	if e.LivesLeft > 0 {
		e.LivesLeft--
	}
}

// Knight may duel one player during the day, once per game.
type Knight struct {
	villager
	HasDueled bool
}

func (*Knight) Kind() types.RoleKind { return types.RoleKnight }

func (k *Knight) DayActions(env Env) []Action {
	if k.HasDueled || k.Disabled() || !env.Self.Alive {
		return nil
	}
	if !env.confirm("Do you want to challenge someone to a duel?") {
		return nil
	}
	t := env.pick("Choose a player to duel", env.Game.Alive(env.Self.ID), false)
	if t == nil {
		return nil
	}
	return []Action{NewKnightDuel(env.Game, env.Self, t)}
}

// Magician may swap two players once per game.
type Magician struct {
	villager
	HasSwapped bool
}

func (*Magician) Kind() types.RoleKind { return types.RoleMagician }

func (m *Magician) HasNightAction(*state.Game, *state.Player) bool { return !m.HasSwapped }

func (m *Magician) NightActions(env Env) []Action {
	alive := env.Game.Alive()
	if len(alive) < 2 || !env.confirm("Do you want to swap two players tonight?") {
		return nil
	}
	pair := env.pickN("Choose two players to swap", alive, 2)
	if len(pair) != 2 {
		return nil
	}
	return []Action{NewMagicianSwap(env.Game, env.Self, pair[0], pair[1])}
}

// Cupid links two lovers on the first night.
type Cupid struct {
	villager
	HasLinked bool
}

func (*Cupid) Kind() types.RoleKind { return types.RoleCupid }

func (c *Cupid) HasNightAction(g *state.Game, _ *state.Player) bool {
	return g.Round == 1 && !c.HasLinked
}

func (c *Cupid) NightActions(env Env) []Action {
	pair := env.pickN("Choose two players to fall in love", env.Game.Alive(), 2)
	if len(pair) != 2 {
		return nil
	}
	return []Action{NewCupidLink(env.Game, env.Self, pair[0], pair[1])}
}

// Raven marks one player each night, adding a vote against them tomorrow.
type Raven struct{ villager }

func (*Raven) Kind() types.RoleKind                           { return types.RoleRaven }
func (*Raven) HasNightAction(*state.Game, *state.Player) bool { return true }

func (*Raven) NightActions(env Env) []Action {
	t := env.pick("Choose a player to mark", env.Game.Alive(env.Self.ID), true)
	if t == nil {
		return nil
	}
	return []Action{NewRavenMark(env.Game, env.Self, t)}
}

// GraveyardKeeper learns the role of one dead player each night.
type GraveyardKeeper struct{ villager }

func (*GraveyardKeeper) Kind() types.RoleKind { return types.RoleGraveyardKeeper }

func (*GraveyardKeeper) HasNightAction(g *state.Game, _ *state.Player) bool {
	return len(g.Dead()) > 0
}

func (*GraveyardKeeper) NightActions(env Env) []Action {
	t := env.pick("Choose a dead player to examine", env.Game.Dead(), false)
	if t == nil {
		return nil
	}
	return []Action{NewGraveyardCheck(env.Game, env.Self, t)}
}

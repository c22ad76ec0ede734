package roles

import (
	"fmt"

	"github.com/nathoo/wolfcore/engine/state"
	"github.com/nathoo/wolfcore/types"
)

// Action is a command emitted by a role. Actions are created fresh each
// round, validated against the current state, executed once and discarded.
type Action interface {
	Kind() types.ActionKind
	Actor() *state.Player
	Targets() []*state.Player
	Validate() bool
	Execute() []string
}

type act struct {
	kind    types.ActionKind
	game    *state.Game
	actor   *state.Player
	targets []*state.Player
}

func (a *act) Kind() types.ActionKind   { return a.kind }
func (a *act) Actor() *state.Player     { return a.actor }
func (a *act) Targets() []*state.Player { return a.targets }
func (a *act) target() *state.Player    { return a.targets[0] }

func newAct(kind types.ActionKind, g *state.Game, actor *state.Player, targets ...*state.Player) act {
	return act{kind: kind, game: g, actor: actor, targets: targets}
}

// WerewolfVote is one werewolf's ballot for tonight's kill.
type WerewolfVote struct{ act }

func NewWerewolfVote(g *state.Game, actor, target *state.Player) *WerewolfVote {
	return &WerewolfVote{newAct(types.ActionWerewolfVote, g, actor, target)}
}

func (a *WerewolfVote) Validate() bool {
	return a.actor.Alive && a.actor.IsWolf() && a.target().Alive
}

func (a *WerewolfVote) Execute() []string {
	a.game.WerewolfVotes[a.actor.ID] = a.target().ID
	return nil
}

// WhiteWolfKill lets the White Wolf kill another werewolf on even rounds.
type WhiteWolfKill struct {
	act
	Killed bool
}

func NewWhiteWolfKill(g *state.Game, actor, target *state.Player) *WhiteWolfKill {
	return &WhiteWolfKill{act: newAct(types.ActionWhiteWolfKill, g, actor, target)}
}

func (a *WhiteWolfKill) Validate() bool {
	if _, ok := Effective(a.actor.Role).(*WhiteWolf); !ok {
		return false
	}
	if a.game.Round%2 == 1 {
		return false
	}
	t := a.target()
	return a.actor.Alive && t.Alive && t.IsWolf() && t.ID != a.actor.ID
}

func (a *WhiteWolfKill) Execute() []string {
	t := a.target()
	if a.game.GuardianWolfProtected == t.ID {
		return []string{fmt.Sprintf("White Wolf attacks %s, but the Guardian Wolf protects them.", t.Name)}
	}
	a.Killed = a.game.Kill(t, types.CauseWhiteWolf)
	return []string{fmt.Sprintf("White Wolf kills werewolf %s.", t.Name)}
}

// WolfBeautyCharm binds a target's fate to the Wolf Beauty.
type WolfBeautyCharm struct{ act }

func NewWolfBeautyCharm(g *state.Game, actor, target *state.Player) *WolfBeautyCharm {
	return &WolfBeautyCharm{newAct(types.ActionWolfBeautyCharm, g, actor, target)}
}

func (a *WolfBeautyCharm) Validate() bool {
	wb, ok := Effective(a.actor.Role).(*WolfBeauty)
	if !ok || wb.CharmedID != "" {
		return false
	}
	return a.actor.Alive && a.target().Alive
}

func (a *WolfBeautyCharm) Execute() []string {
	t := a.target()
	Effective(a.actor.Role).(*WolfBeauty).CharmedID = t.ID
	t.Statuses[types.StatusCharmed] = true
	return []string{fmt.Sprintf("Wolf Beauty charms %s.", t.Name)}
}

// GuardianWolfProtect shields a werewolf from the White Wolf and from the
// pack's own kill.
type GuardianWolfProtect struct{ act }

func NewGuardianWolfProtect(g *state.Game, actor, target *state.Player) *GuardianWolfProtect {
	return &GuardianWolfProtect{newAct(types.ActionGuardianWolfProtect, g, actor, target)}
}

func (a *GuardianWolfProtect) Validate() bool {
	t := a.target()
	return a.actor.Alive && t.Alive && t.IsWolf()
}

func (a *GuardianWolfProtect) Execute() []string {
	a.game.GuardianWolfProtected = a.target().ID
	return []string{fmt.Sprintf("Guardian Wolf protects %s.", a.target().Name)}
}

// NightmareBlock stops the target's night action this round.
type NightmareBlock struct{ act }

func NewNightmareBlock(g *state.Game, actor, target *state.Player) *NightmareBlock {
	return &NightmareBlock{newAct(types.ActionNightmareBlock, g, actor, target)}
}

func (a *NightmareBlock) Validate() bool {
	return a.actor.Alive && a.target().Alive
}

func (a *NightmareBlock) Execute() []string {
	t := a.target()
	a.game.NightmareBlocked = t.ID
	t.Statuses[types.StatusBlocked] = true
	return []string{fmt.Sprintf("Nightmare Wolf blocks %s.", t.Name)}
}

// WitchSave spends the save potion on tonight's werewolf victim.
type WitchSave struct{ act }

func NewWitchSave(g *state.Game, actor, target *state.Player) *WitchSave {
	return &WitchSave{newAct(types.ActionWitchSave, g, actor, target)}
}

func (a *WitchSave) Validate() bool {
	w, ok := Effective(a.actor.Role).(*Witch)
	if !ok || !w.HasSavePotion {
		return false
	}
	return a.actor.Alive && a.game.WerewolfTarget == a.target().ID
}

func (a *WitchSave) Execute() []string {
	Effective(a.actor.Role).(*Witch).HasSavePotion = false
	t := a.target()
	a.game.WitchSavedTarget = t.ID
	t.Statuses[types.StatusSaved] = true
	a.actor.Notes = append(a.actor.Notes, fmt.Sprintf("Round %d: used the save potion on %s.", a.game.Round, t.Name))
	return []string{fmt.Sprintf("Witch saves %s.", t.Name)}
}

// WitchPoison spends the poison potion.
type WitchPoison struct{ act }

func NewWitchPoison(g *state.Game, actor, target *state.Player) *WitchPoison {
	return &WitchPoison{newAct(types.ActionWitchPoison, g, actor, target)}
}

func (a *WitchPoison) Validate() bool {
	w, ok := Effective(a.actor.Role).(*Witch)
	if !ok || !w.HasPoisonPotion {
		return false
	}
	return a.actor.Alive && a.target().Alive
}

func (a *WitchPoison) Execute() []string {
	Effective(a.actor.Role).(*Witch).HasPoisonPotion = false
	t := a.target()
	a.game.WitchPoisonTarget = t.ID
	t.Statuses[types.StatusPoisoned] = true
	a.actor.Notes = append(a.actor.Notes, fmt.Sprintf("Round %d: poisoned %s.", a.game.Round, t.Name))
	return []string{fmt.Sprintf("Witch poisons %s.", t.Name)}
}

// SeerCheck reveals the camp a target appears to belong to.
type SeerCheck struct {
	act
	Result types.Camp
}

func NewSeerCheck(g *state.Game, actor, target *state.Player) *SeerCheck {
	return &SeerCheck{act: newAct(types.ActionSeerCheck, g, actor, target)}
}

func (a *SeerCheck) Validate() bool {
	return a.actor.Alive && a.target().Alive
}

func (a *SeerCheck) Execute() []string {
	t := a.target()
	a.Result = SeenBySeer(t)
	a.game.SeerChecked[a.game.Round] = t.ID
	a.actor.Notes = append(a.actor.Notes, fmt.Sprintf("Round %d: checked %s, result: %s.", a.game.Round, t.Name, a.Result))
	return []string{fmt.Sprintf("Seer checks %s: %s.", t.Name, a.Result)}
}

// GuardProtect shields a player from the werewolf kill.
type GuardProtect struct{ act }

func NewGuardProtect(g *state.Game, actor, target *state.Player) *GuardProtect {
	return &GuardProtect{newAct(types.ActionGuardProtect, g, actor, target)}
}

func (a *GuardProtect) Validate() bool {
	gd, ok := Effective(a.actor.Role).(*Guard)
	if !ok || gd.LastProtectedID == a.target().ID {
		return false
	}
	return a.actor.Alive && a.target().Alive
}

func (a *GuardProtect) Execute() []string {
	t := a.target()
	Effective(a.actor.Role).(*Guard).LastProtectedID = t.ID
	a.game.GuardProtected = t.ID
	t.Statuses[types.StatusProtected] = true
	a.actor.Notes = append(a.actor.Notes, fmt.Sprintf("Round %d: protected %s.", a.game.Round, t.Name))
	return []string{fmt.Sprintf("Guard protects %s.", t.Name)}
}

// CupidLink binds two players as lovers.
type CupidLink struct{ act }

func NewCupidLink(g *state.Game, actor, first, second *state.Player) *CupidLink {
	return &CupidLink{newAct(types.ActionCupidLink, g, actor, first, second)}
}

func (a *CupidLink) Validate() bool {
	c, ok := Effective(a.actor.Role).(*Cupid)
	if !ok || c.HasLinked || len(a.targets) != 2 {
		return false
	}
	first, second := a.targets[0], a.targets[1]
	return a.actor.Alive && first.Alive && second.Alive && first.ID != second.ID
}

func (a *CupidLink) Execute() []string {
	first, second := a.targets[0], a.targets[1]
	a.game.Link(first, second)
	Effective(a.actor.Role).(*Cupid).HasLinked = true
	return []string{fmt.Sprintf("Cupid links %s and %s as lovers.", first.Name, second.Name)}
}

// RavenMark adds a phantom vote against the target tomorrow.
type RavenMark struct{ act }

func NewRavenMark(g *state.Game, actor, target *state.Player) *RavenMark {
	return &RavenMark{newAct(types.ActionRavenMark, g, actor, target)}
}

func (a *RavenMark) Validate() bool {
	return a.actor.Alive && a.target().Alive
}

func (a *RavenMark) Execute() []string {
	t := a.target()
	a.game.RavenMarked = t.ID
	t.Statuses[types.StatusMarked] = true
	return []string{fmt.Sprintf("Raven marks %s.", t.Name)}
}

// GraveyardCheck reveals a dead player's role.
type GraveyardCheck struct {
	act
	Role types.RoleKind
	Camp types.Camp
}

func NewGraveyardCheck(g *state.Game, actor, target *state.Player) *GraveyardCheck {
	return &GraveyardCheck{act: newAct(types.ActionGraveyardCheck, g, actor, target)}
}

func (a *GraveyardCheck) Validate() bool {
	return a.actor.Alive && !a.target().Alive
}

func (a *GraveyardCheck) Execute() []string {
	t := a.target()
	a.Role = Effective(t.Role).Kind()
	a.Camp = t.Camp()
	a.actor.Notes = append(a.actor.Notes, fmt.Sprintf("Round %d: %s was a %s (%s camp).", a.game.Round, t.Name, a.Role, a.Camp))
	return []string{fmt.Sprintf("Graveyard Keeper checks %s: they were a %s (%s camp).", t.Name, a.Role, a.Camp)}
}

// MagicianSwap exchanges two players for tonight's kill and poison.
type MagicianSwap struct{ act }

func NewMagicianSwap(g *state.Game, actor, first, second *state.Player) *MagicianSwap {
	return &MagicianSwap{newAct(types.ActionMagicianSwap, g, actor, first, second)}
}

func (a *MagicianSwap) Validate() bool {
	m, ok := Effective(a.actor.Role).(*Magician)
	if !ok || m.HasSwapped || len(a.targets) != 2 {
		return false
	}
	first, second := a.targets[0], a.targets[1]
	return a.actor.Alive && first.Alive && second.Alive && first.ID != second.ID
}

func (a *MagicianSwap) Execute() []string {
	first, second := a.targets[0], a.targets[1]
	a.game.MagicianSwap = []string{first.ID, second.ID}
	Effective(a.actor.Role).(*Magician).HasSwapped = true
	return []string{fmt.Sprintf("Magician swaps %s and %s.", first.Name, second.Name)}
}

// Swapped maps id through tonight's Magician swap.
func Swapped(g *state.Game, id string) string {
	if len(g.MagicianSwap) != 2 || id == "" {
		return id
	}
	switch id {
	case g.MagicianSwap[0]:
		return g.MagicianSwap[1]
	case g.MagicianSwap[1]:
		return g.MagicianSwap[0]
	}
	return id
}

// ThiefChoose picks one of the Thief's extra cards.
type ThiefChoose struct {
	act
	Card types.RoleKind
}

func NewThiefChoose(g *state.Game, actor *state.Player, card types.RoleKind) *ThiefChoose {
	return &ThiefChoose{act: newAct(types.ActionThiefChoose, g, actor), Card: card}
}

func (a *ThiefChoose) Targets() []*state.Player { return []*state.Player{a.actor} }

func (a *ThiefChoose) Validate() bool {
	t, ok := a.actor.Role.(*Thief)
	if !ok || t.HasChosen || !a.actor.Alive {
		return false
	}
	for _, c := range t.Cards {
		if c == a.Card {
			return true
		}
	}
	return false
}

func (a *ThiefChoose) Execute() []string {
	t := a.actor.Role.(*Thief)
	chosen, err := New(a.Card)
	if err != nil {
		return nil
	}
	t.Chosen = chosen
	t.HasChosen = true
	a.actor.Notes = append(a.actor.Notes, fmt.Sprintf("Round %d: took the %s card.", a.game.Round, a.Card))
	return []string{fmt.Sprintf("Thief takes the %s card.", a.Card)}
}

// KnightDuel challenges a player in daylight. A werewolf target dies;
// otherwise the Knight does.
type KnightDuel struct {
	act
	Loser *state.Player
}

func NewKnightDuel(g *state.Game, actor, target *state.Player) *KnightDuel {
	return &KnightDuel{act: newAct(types.ActionKnightDuel, g, actor, target)}
}

func (a *KnightDuel) Validate() bool {
	k, ok := Effective(a.actor.Role).(*Knight)
	if !ok || k.HasDueled {
		return false
	}
	return a.actor.Alive && a.target().Alive && a.target().ID != a.actor.ID
}

func (a *KnightDuel) Execute() []string {
	Effective(a.actor.Role).(*Knight).HasDueled = true
	t := a.target()
	if t.IsWolf() {
		a.Loser = t
		a.game.Kill(t, types.CauseKnightDuel)
		return []string{fmt.Sprintf("Knight %s duels and defeats %s!", a.actor.Name, t.Name)}
	}
	a.Loser = a.actor
	a.game.Kill(a.actor, types.CauseKnightDuel)
	return []string{fmt.Sprintf("Knight %s loses the duel against %s and dies!", a.actor.Name, t.Name)}
}

// Vote is one day-vote ballot.
type Vote struct{ act }

func NewVote(g *state.Game, actor, target *state.Player) *Vote {
	return &Vote{newAct(types.ActionVote, g, actor, target)}
}

func (a *Vote) Validate() bool {
	t := a.target()
	return a.actor.Alive && a.actor.CanVote && t.Alive && t.ID != a.actor.ID
}

func (a *Vote) Execute() []string {
	a.game.Votes[a.actor.ID] = a.target().ID
	return nil
}

// DeathShot is the revenge shot of a dying Hunter or Alpha Wolf.
type DeathShot struct{ act }

func NewDeathShot(g *state.Game, actor, target *state.Player) *DeathShot {
	return &DeathShot{newAct(types.ActionDeathShot, g, actor, target)}
}

func (a *DeathShot) Validate() bool {
	if _, ok := Effective(a.actor.Role).(DeathShooter); !ok {
		return false
	}
	return !a.actor.Alive && a.target().Alive && !a.game.DeathAbilitiesUsed[a.actor.ID]
}

func (a *DeathShot) Execute() []string {
	a.game.DeathAbilitiesUsed[a.actor.ID] = true
	t := a.target()
	a.game.Kill(t, types.CauseDeathShot)
	return []string{fmt.Sprintf("%s (%s) shoots %s.", a.actor.Name, Effective(a.actor.Role).Kind(), t.Name)}
}

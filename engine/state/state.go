// Package state holds the mutable game state: the roster, the per-night
// ephemeral slots, and the durable record of deaths, checks and votes.
package state

import (
	"sort"

	"github.com/google/uuid"

	"github.com/nathoo/wolfcore/agent"
	"github.com/nathoo/wolfcore/types"
)

// Role is the minimal contract every role satisfies. Richer capabilities are
// expressed as separate interfaces in package roles.
type Role interface {
	Kind() types.RoleKind
	Camp() types.Camp
	Disabled() bool
	Disable()
}

// Player is a seat at the table. Dead players stay in the roster.
type Player struct {
	ID       string
	Name     string
	Role     Role
	Alive    bool
	Statuses map[types.Status]bool
	LoverID  string
	CanVote  bool
	Agent    agent.Agent // owned by the application; may be nil
	Notes    []string    // private memory fed back into this player's prompts
}

// NewPlayer creates a living player holding role.
func NewPlayer(id, name string, role Role, a agent.Agent) *Player {
	return &Player{
		ID:       id,
		Name:     name,
		Role:     role,
		Alive:    true,
		Statuses: map[types.Status]bool{},
		CanVote:  true,
		Agent:    a,
	}
}

// Camp returns the camp of the player's role.
func (p *Player) Camp() types.Camp { return p.Role.Camp() }

// IsWolf reports whether the player belongs to the werewolf camp.
func (p *Player) IsWolf() bool { return p.Role.Camp() == types.CampWerewolf }

// HasStatus reports whether s is set on the player.
func (p *Player) HasStatus(s types.Status) bool { return p.Statuses[s] }

// Model names the agent model, or "none".
func (p *Player) Model() string {
	if p.Agent == nil {
		return "none"
	}
	return p.Agent.Model()
}

// Game is the complete mutable state of one game.
type Game struct {
	ID      string
	Phase   types.Phase
	Round   int
	Players []*Player

	// Ephemeral, cleared on every Night entry.
	WerewolfTarget        string
	WerewolfVotes         map[string]string
	WitchSavedTarget      string
	WitchPoisonTarget     string
	GuardProtected        string
	GuardianWolfProtected string
	NightmareBlocked      string
	RavenMarked           string
	MagicianSwap          []string
	NightDeaths           []string

	// Cleared on DayDiscussion entry.
	DayDeaths []string

	// Durable.
	SeerChecked         map[int]string
	DeathCauses         map[string]types.DeathCause
	DeathAbilitiesUsed  map[string]bool
	SheriffID           string
	SheriffElectionDone bool
	Votes               map[string]string
	Winner              types.Victory
	Discussion          []string
}

// NewGame creates an empty game in the setup phase.
func NewGame(players []*Player) *Game {
	return &Game{
		ID:                 uuid.NewString(),
		Phase:              types.PhaseSetup,
		Players:            players,
		WerewolfVotes:      map[string]string{},
		SeerChecked:        map[int]string{},
		DeathCauses:        map[string]types.DeathCause{},
		DeathAbilitiesUsed: map[string]bool{},
		Votes:              map[string]string{},
	}
}

// Player returns the player with id, or nil.
func (g *Game) Player(id string) *Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Alive returns the living players in roster order, skipping any ids in
// except.
func (g *Game) Alive(except ...string) []*Player {
	var out []*Player
	for _, p := range g.Players {
		if !p.Alive || contains(except, p.ID) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Dead returns the dead players in roster order.
func (g *Game) Dead() []*Player {
	var out []*Player
	for _, p := range g.Players {
		if !p.Alive {
			out = append(out, p)
		}
	}
	return out
}

// AliveWolves returns the living werewolf-camp players.
func (g *Game) AliveWolves() []*Player {
	var out []*Player
	for _, p := range g.Players {
		if p.Alive && p.IsWolf() {
			out = append(out, p)
		}
	}
	return out
}

// CountAlive returns the number of living players per camp.
func (g *Game) CountAlive() map[types.Camp]int {
	counts := map[types.Camp]int{}
	for _, p := range g.Players {
		if p.Alive {
			counts[p.Camp()]++
		}
	}
	return counts
}

// SetPhase moves the game to phase. Entering Night increments the round and
// clears every ephemeral night slot; entering DayDiscussion clears the day's
// deaths.
func (g *Game) SetPhase(phase types.Phase) {
	g.Phase = phase
	switch phase {
	case types.PhaseNight:
		g.Round++
		g.clearNight()
		g.DayDeaths = nil
	case types.PhaseDayDiscussion:
		g.DayDeaths = nil
	case types.PhaseDayVoting:
		g.Votes = map[string]string{}
	}
}

func (g *Game) clearNight() {
	g.WerewolfTarget = ""
	g.WerewolfVotes = map[string]string{}
	g.WitchSavedTarget = ""
	g.WitchPoisonTarget = ""
	g.GuardProtected = ""
	g.GuardianWolfProtected = ""
	g.NightmareBlocked = ""
	g.RavenMarked = ""
	g.MagicianSwap = nil
	g.NightDeaths = nil
	for _, p := range g.Players {
		for _, s := range []types.Status{
			types.StatusProtected, types.StatusSaved, types.StatusBlocked,
			types.StatusMarked, types.StatusPoisoned,
		} {
			delete(p.Statuses, s)
		}
	}
}

// Kill marks p dead with cause and records the death in the current phase's
// death list. Killing a dead player is a no-op and returns false.
func (g *Game) Kill(p *Player, cause types.DeathCause) bool {
	if p == nil || !p.Alive {
		return false
	}
	p.Alive = false
	g.DeathCauses[p.ID] = cause
	if g.Phase == types.PhaseNight {
		g.NightDeaths = append(g.NightDeaths, p.ID)
	} else {
		g.DayDeaths = append(g.DayDeaths, p.ID)
	}
	return true
}

// CycleDeaths returns the deaths recorded in the current half of the cycle.
func (g *Game) CycleDeaths() []string {
	if g.Phase == types.PhaseNight {
		return g.NightDeaths
	}
	return g.DayDeaths
}

// Link makes a and b lovers. The bond is always symmetric.
func (g *Game) Link(a, b *Player) {
	a.LoverID = b.ID
	b.LoverID = a.ID
	a.Statuses[types.StatusLover] = true
	b.Statuses[types.StatusLover] = true
}

// Lover returns p's partner, or nil.
func (g *Game) Lover(p *Player) *Player {
	if p.LoverID == "" {
		return nil
	}
	return g.Player(p.LoverID)
}

// SetSheriff hands the badge to id; an empty id tears it.
func (g *Game) SetSheriff(id string) {
	if prev := g.Player(g.SheriffID); prev != nil {
		delete(prev.Statuses, types.StatusSheriff)
	}
	g.SheriffID = id
	if p := g.Player(id); p != nil {
		p.Statuses[types.StatusSheriff] = true
	}
}

// VoteCounts tallies the day votes. A Raven mark on a living player adds one
// vote.
func (g *Game) VoteCounts() map[string]int {
	counts := map[string]int{}
	for _, target := range g.Votes {
		counts[target]++
	}
	if p := g.Player(g.RavenMarked); p != nil && p.Alive {
		counts[p.ID]++
	}
	return counts
}

// Leaders returns the ids holding the maximum count, sorted for stable
// iteration, and that count.
func Leaders(counts map[string]int) ([]string, int) {
	max := 0
	for _, c := range counts {
		if c > max {
			max = c
		}
	}
	if max == 0 {
		return nil, 0
	}
	var ids []string
	for id, c := range counts {
		if c == max {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, max
}

// Options converts players into selectable agent options.
func Options(players []*Player) []agent.Option {
	opts := make([]agent.Option, len(players))
	for i, p := range players {
		opts[i] = agent.Option{ID: p.ID, Label: p.Name}
	}
	return opts
}

// Names returns the display names of players.
func Names(players []*Player) []string {
	names := make([]string, len(players))
	for i, p := range players {
		names[i] = p.Name
	}
	return names
}

func contains(ids []string, id string) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// Package save implements JSON serialization and deserialization of game state.
package save

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/nathoo/wolfcore/engine/roles"
	"github.com/nathoo/wolfcore/engine/state"
	"github.com/nathoo/wolfcore/types"
)

// Version is the snapshot format version.
const Version = 1

// Snapshot is the JSON-serializable save format: every game and player
// field, the event log and the RNG position.
type Snapshot struct {
	Version int          `json:"version"`
	GameID  string       `json:"game_id"`
	SavedAt time.Time    `json:"saved_at"`
	Config  state.Config `json:"config"`
	Phase   types.Phase  `json:"phase"`
	Round   int          `json:"round"`
	Players []PlayerData `json:"players"`

	WerewolfTarget        string            `json:"werewolf_target,omitempty"`
	WerewolfVotes         map[string]string `json:"werewolf_votes"`
	WitchSavedTarget      string            `json:"witch_saved_target,omitempty"`
	WitchPoisonTarget     string            `json:"witch_poison_target,omitempty"`
	GuardProtected        string            `json:"guard_protected,omitempty"`
	GuardianWolfProtected string            `json:"guardian_wolf_protected,omitempty"`
	NightmareBlocked      string            `json:"nightmare_blocked,omitempty"`
	RavenMarked           string            `json:"raven_marked,omitempty"`
	MagicianSwap          []string          `json:"magician_swap,omitempty"`
	NightDeaths           []string          `json:"night_deaths"`
	DayDeaths             []string          `json:"day_deaths"`

	SeerChecked         map[int]string              `json:"seer_checked"`
	DeathCauses         map[string]types.DeathCause `json:"death_causes"`
	DeathAbilitiesUsed  map[string]bool             `json:"death_abilities_used"`
	SheriffID           string                      `json:"sheriff_id,omitempty"`
	SheriffElectionDone bool                        `json:"sheriff_election_done"`
	Votes               map[string]string           `json:"votes"`
	Winner              types.Victory               `json:"winner"`
	Discussion          []string                    `json:"discussion"`

	Events      []types.Event `json:"events"`
	RNGSeed     int64         `json:"rng_seed"`
	RNGPosition int64         `json:"rng_position"`
}

// PlayerData is one seat of a snapshot. Agents are not saved; Model only
// records what was playing.
type PlayerData struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Role     types.RoleKind `json:"role"`
	RoleData RoleData       `json:"role_data"`
	Alive    bool           `json:"alive"`
	Statuses []types.Status `json:"statuses"`
	LoverID  string         `json:"lover_id,omitempty"`
	CanVote  bool           `json:"can_vote"`
	Notes    []string       `json:"notes"`
	Model    string         `json:"model"`
}

// RoleData holds every role-specific mutable field. Only the fields of the
// player's role are meaningful.
type RoleData struct {
	Disabled        bool             `json:"disabled,omitempty"`
	HasSavePotion   bool             `json:"has_save_potion,omitempty"`
	HasPoisonPotion bool             `json:"has_poison_potion,omitempty"`
	LastProtectedID string           `json:"last_protected_id,omitempty"`
	CharmedID       string           `json:"charmed_id,omitempty"`
	Lives           int              `json:"lives,omitempty"`
	Revealed        bool             `json:"revealed,omitempty"`
	HasDueled       bool             `json:"has_dueled,omitempty"`
	HasLinked       bool             `json:"has_linked,omitempty"`
	Transformed     bool             `json:"transformed,omitempty"`
	HasSwapped      bool             `json:"has_swapped,omitempty"`
	HasChosen       bool             `json:"has_chosen,omitempty"`
	Cards           []types.RoleKind `json:"cards,omitempty"`
	Chosen          types.RoleKind   `json:"chosen,omitempty"`
	ChosenData      *RoleData        `json:"chosen_data,omitempty"`
}

// Capture copies g into a snapshot.
func Capture(g *state.Game, cfg state.Config, evs []types.Event, seed, position int64) *Snapshot {
	s := &Snapshot{
		Version: Version,
		GameID:  g.ID,
		SavedAt: time.Now().UTC(),
		Config:  cfg,
		Phase:   g.Phase,
		Round:   g.Round,

		WerewolfTarget:        g.WerewolfTarget,
		WerewolfVotes:         copyMap(g.WerewolfVotes),
		WitchSavedTarget:      g.WitchSavedTarget,
		WitchPoisonTarget:     g.WitchPoisonTarget,
		GuardProtected:        g.GuardProtected,
		GuardianWolfProtected: g.GuardianWolfProtected,
		NightmareBlocked:      g.NightmareBlocked,
		RavenMarked:           g.RavenMarked,
		MagicianSwap:          append([]string(nil), g.MagicianSwap...),
		NightDeaths:           append([]string(nil), g.NightDeaths...),
		DayDeaths:             append([]string(nil), g.DayDeaths...),

		SeerChecked:         copyMap(g.SeerChecked),
		DeathCauses:         copyMap(g.DeathCauses),
		DeathAbilitiesUsed:  copyMap(g.DeathAbilitiesUsed),
		SheriffID:           g.SheriffID,
		SheriffElectionDone: g.SheriffElectionDone,
		Votes:               copyMap(g.Votes),
		Winner:              g.Winner,
		Discussion:          append([]string(nil), g.Discussion...),

		Events:      evs,
		RNGSeed:     seed,
		RNGPosition: position,
	}
	for _, p := range g.Players {
		s.Players = append(s.Players, capturePlayer(p))
	}
	return s
}

func capturePlayer(p *state.Player) PlayerData {
	statuses := make([]types.Status, 0, len(p.Statuses))
	for st, on := range p.Statuses {
		if on {
			statuses = append(statuses, st)
		}
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i] < statuses[j] })
	return PlayerData{
		ID:       p.ID,
		Name:     p.Name,
		Role:     p.Role.Kind(),
		RoleData: captureRole(p.Role),
		Alive:    p.Alive,
		Statuses: statuses,
		LoverID:  p.LoverID,
		CanVote:  p.CanVote,
		Notes:    append([]string(nil), p.Notes...),
		Model:    p.Model(),
	}
}

func captureRole(r state.Role) RoleData {
	d := RoleData{Disabled: r.Disabled()}
	switch r := r.(type) {
	case *roles.Witch:
		d.HasSavePotion, d.HasPoisonPotion = r.HasSavePotion, r.HasPoisonPotion
	case *roles.Guard:
		d.LastProtectedID = r.LastProtectedID
	case *roles.WolfBeauty:
		d.CharmedID = r.CharmedID
	case *roles.Elder:
		d.Lives = r.LivesLeft
	case *roles.Idiot:
		d.Revealed = r.Revealed
	case *roles.Knight:
		d.HasDueled = r.HasDueled
	case *roles.Cupid:
		d.HasLinked = r.HasLinked
	case *roles.BloodMoonApostle:
		d.Transformed = r.Transformed
	case *roles.Magician:
		d.HasSwapped = r.HasSwapped
	case *roles.Thief:
		d.HasChosen = r.HasChosen
		d.Cards = append([]types.RoleKind(nil), r.Cards...)
		if r.Chosen != nil {
			d.Chosen = r.Chosen.Kind()
			cd := captureRole(r.Chosen)
			d.ChosenData = &cd
		}
	}
	return d
}

// Restore rebuilds the game. Players come back without agents; the caller
// binds them again by ID.
func (s *Snapshot) Restore() (*state.Game, error) {
	players := make([]*state.Player, 0, len(s.Players))
	for _, pd := range s.Players {
		r, err := restoreRole(pd.Role, pd.RoleData)
		if err != nil {
			return nil, fmt.Errorf("player %s: %w", pd.ID, err)
		}
		p := state.NewPlayer(pd.ID, pd.Name, r, nil)
		p.Alive = pd.Alive
		p.LoverID = pd.LoverID
		p.CanVote = pd.CanVote
		p.Notes = append([]string(nil), pd.Notes...)
		for _, st := range pd.Statuses {
			p.Statuses[st] = true
		}
		players = append(players, p)
	}

	g := state.NewGame(players)
	g.ID = s.GameID
	g.Phase = s.Phase
	g.Round = s.Round
	g.WerewolfTarget = s.WerewolfTarget
	g.WerewolfVotes = copyMap(s.WerewolfVotes)
	g.WitchSavedTarget = s.WitchSavedTarget
	g.WitchPoisonTarget = s.WitchPoisonTarget
	g.GuardProtected = s.GuardProtected
	g.GuardianWolfProtected = s.GuardianWolfProtected
	g.NightmareBlocked = s.NightmareBlocked
	g.RavenMarked = s.RavenMarked
	g.MagicianSwap = append([]string(nil), s.MagicianSwap...)
	g.NightDeaths = append([]string(nil), s.NightDeaths...)
	g.DayDeaths = append([]string(nil), s.DayDeaths...)
	g.SeerChecked = copyMap(s.SeerChecked)
	g.DeathCauses = copyMap(s.DeathCauses)
	g.DeathAbilitiesUsed = copyMap(s.DeathAbilitiesUsed)
	g.SheriffID = s.SheriffID
	g.SheriffElectionDone = s.SheriffElectionDone
	g.Votes = copyMap(s.Votes)
	g.Winner = s.Winner
	g.Discussion = append([]string(nil), s.Discussion...)
	return g, nil
}

func restoreRole(kind types.RoleKind, d RoleData) (state.Role, error) {
	r, err := roles.New(kind)
	if err != nil {
		return nil, err
	}
	switch r := r.(type) {
	case *roles.Witch:
		r.HasSavePotion, r.HasPoisonPotion = d.HasSavePotion, d.HasPoisonPotion
	case *roles.Guard:
		r.LastProtectedID = d.LastProtectedID
	case *roles.WolfBeauty:
		r.CharmedID = d.CharmedID
	case *roles.Elder:
		r.LivesLeft = d.Lives
	case *roles.Idiot:
		r.Revealed = d.Revealed
	case *roles.Knight:
		r.HasDueled = d.HasDueled
	case *roles.Cupid:
		r.HasLinked = d.HasLinked
	case *roles.BloodMoonApostle:
		r.Transformed = d.Transformed
	case *roles.Magician:
		r.HasSwapped = d.HasSwapped
	case *roles.Thief:
		r.Cards = append([]types.RoleKind(nil), d.Cards...)
		r.HasChosen = d.HasChosen
		if d.Chosen != "" {
			cd := RoleData{}
			if d.ChosenData != nil {
				cd = *d.ChosenData
			}
			chosen, err := restoreRole(d.Chosen, cd)
			if err != nil {
				return nil, fmt.Errorf("thief card: %w", err)
			}
			r.Chosen = chosen
		}
	}
	if d.Disabled && !r.Disabled() {
		r.Disable()
	}
	return r, nil
}

// Marshal serializes a snapshot to indented JSON.
func Marshal(s *Snapshot) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// Unmarshal deserializes JSON bytes into a snapshot.
func Unmarshal(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.Version != Version {
		return nil, fmt.Errorf("unsupported save version %d", s.Version)
	}
	// Ensure maps are never nil after load.
	if s.WerewolfVotes == nil {
		s.WerewolfVotes = map[string]string{}
	}
	if s.SeerChecked == nil {
		s.SeerChecked = map[int]string{}
	}
	if s.DeathCauses == nil {
		s.DeathCauses = map[string]types.DeathCause{}
	}
	if s.DeathAbilitiesUsed == nil {
		s.DeathAbilitiesUsed = map[string]bool{}
	}
	if s.Votes == nil {
		s.Votes = map[string]string{}
	}
	if s.Events == nil {
		s.Events = []types.Event{}
	}
	return &s, nil
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

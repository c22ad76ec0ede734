package state

import "github.com/nathoo/wolfcore/types"

// Config is the game configuration consumed by the engine. It is produced by
// the loader (YAML file or player-count preset) and never mutated by the
// engine.
type Config struct {
	NumPlayers      int      `yaml:"num_players"`
	RoleNames       []string `yaml:"roles"`
	NightTimeout    int      `yaml:"night_timeout"`
	DayTimeout      int      `yaml:"day_timeout"`
	VoteTimeout     int      `yaml:"vote_timeout"`
	AllowRevote     bool     `yaml:"allow_revote"`
	ShowRoleOnDeath bool     `yaml:"show_role_on_death"`
	EnableSheriff   bool     `yaml:"enable_sheriff"`
	ThiefCards      []string `yaml:"thief_cards"`
}

// DefaultConfig returns the timing and rule defaults; callers fill in the
// player count and roles.
func DefaultConfig() Config {
	return Config{
		NightTimeout:    60,
		DayTimeout:      300,
		VoteTimeout:     60,
		ShowRoleOnDeath: true,
		ThiefCards:      []string{string(types.RoleVillager), string(types.RoleWerewolf)},
	}
}

// Timeout returns the advisory timeout in seconds for phase. The engine does
// not enforce it.
func (c Config) Timeout(phase types.Phase) int {
	switch phase {
	case types.PhaseNight:
		return c.NightTimeout
	case types.PhaseDayDiscussion, types.PhaseSheriffElection:
		return c.DayTimeout
	case types.PhaseDayVoting:
		return c.VoteTimeout
	}
	return 0
}

package loader

import (
	"fmt"
	"strings"

	"github.com/nathoo/wolfcore/engine/roles"
	"github.com/nathoo/wolfcore/engine/state"
	"github.com/nathoo/wolfcore/types"
)

// Minimum advisory timeouts, in seconds.
const (
	MinNightTimeout = 10
	MinDayTimeout   = 30
	MinVoteTimeout  = 10
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// Check inspects cfg and the player names without failing fast. The result
// is never nil; it has no Errors when the game can start.
func Check(cfg state.Config, players []string) *ValidationError {
	ve := &ValidationError{}

	n := len(players)
	if n < MinPlayers || n > MaxPlayers {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"%d players, want %d to %d", n, MinPlayers, MaxPlayers))
	}
	if cfg.NumPlayers != 0 && cfg.NumPlayers != n {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"num_players is %d but %d players are listed", cfg.NumPlayers, n))
	}
	if len(cfg.RoleNames) != n {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"%d roles for %d players", len(cfg.RoleNames), n))
	}

	// Player names unique and non-empty.
	seen := map[string]bool{}
	for i, name := range players {
		name = strings.TrimSpace(name)
		switch {
		case name == "":
			ve.Errors = append(ve.Errors, fmt.Sprintf("player %d has no name", i+1))
		case seen[name]:
			ve.Errors = append(ve.Errors, fmt.Sprintf("duplicate player name %q", name))
		}
		seen[name] = true
	}

	// Roles known, at least one werewolf.
	wolves, hasThief := 0, false
	for _, name := range cfg.RoleNames {
		k, err := roles.Parse(name)
		if err != nil {
			ve.Errors = append(ve.Errors, err.Error())
			continue
		}
		switch {
		case k == types.RoleThief:
			hasThief = true
		case roles.CampOf(k) == types.CampWerewolf:
			wolves++
		}
	}
	if len(cfg.RoleNames) > 0 && wolves == 0 {
		ve.Errors = append(ve.Errors, "at least one werewolf role is required")
	}
	if wolves > 0 && wolves*2 >= len(cfg.RoleNames) {
		ve.Warnings = append(ve.Warnings, fmt.Sprintf(
			"%d werewolves out of %d players: the werewolves win at the first check", wolves, len(cfg.RoleNames)))
	}

	if hasThief {
		if len(cfg.ThiefCards) != 2 {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"a Thief needs exactly 2 cards, got %d", len(cfg.ThiefCards)))
		}
		for _, card := range cfg.ThiefCards {
			k, err := roles.Parse(card)
			switch {
			case err != nil:
				ve.Errors = append(ve.Errors, "thief card: "+err.Error())
			case k == types.RoleThief:
				ve.Errors = append(ve.Errors, "thief card cannot be Thief")
			}
		}
	}

	// Timeouts.
	if cfg.NightTimeout < MinNightTimeout {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"night_timeout %d is below %d", cfg.NightTimeout, MinNightTimeout))
	}
	if cfg.DayTimeout < MinDayTimeout {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"day_timeout %d is below %d", cfg.DayTimeout, MinDayTimeout))
	}
	if cfg.VoteTimeout < MinVoteTimeout {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"vote_timeout %d is below %d", cfg.VoteTimeout, MinVoteTimeout))
	}

	return ve
}

// Validate returns a *ValidationError when cfg cannot start a game with
// these players.
func Validate(cfg state.Config, players []string) error {
	if ve := Check(cfg, players); len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

package loader

import (
	"fmt"

	"github.com/nathoo/wolfcore/engine/state"
	"github.com/nathoo/wolfcore/types"
)

// Player count bounds for presets and validated games.
const (
	MinPlayers = 6
	MaxPlayers = 20
)

// Preset returns a balanced configuration for n players: werewolves scale
// with the table, special villagers are added in a fixed order and the rest
// are plain Villagers.
func Preset(n int) (state.Config, error) {
	if n < MinPlayers || n > MaxPlayers {
		return state.Config{}, fmt.Errorf("preset: %d players, want %d to %d", n, MinPlayers, MaxPlayers)
	}
	kinds := append(presetWolves(n), presetVillagers(n)...)
	for len(kinds) < n {
		kinds = append(kinds, types.RoleVillager)
	}

	cfg := state.DefaultConfig()
	cfg.NumPlayers = n
	cfg.RoleNames = make([]string, len(kinds))
	for i, k := range kinds {
		cfg.RoleNames[i] = string(k)
	}
	cfg.NightTimeout, cfg.DayTimeout, cfg.VoteTimeout = presetTimeouts(n)
	return cfg, nil
}

func presetWolves(n int) []types.RoleKind {
	wolves := []types.RoleKind{types.RoleWerewolf, types.RoleWerewolf}
	if n > 8 {
		wolves = append(wolves, types.RoleAlphaWolf)
	}
	if n > 11 {
		wolves = append(wolves, types.RoleWhiteWolf)
	}
	if n > 14 {
		wolves = append(wolves, types.RoleWolfBeauty)
	}
	return wolves
}

// presetVillagers lists each special role with the table size it joins at.
func presetVillagers(n int) []types.RoleKind {
	steps := []struct {
		min  int
		kind types.RoleKind
	}{
		{0, types.RoleSeer},
		{0, types.RoleWitch},
		{7, types.RoleGuard},
		{9, types.RoleHunter},
		{11, types.RoleCupid},
		{13, types.RoleIdiot},
		{15, types.RoleElder},
		{17, types.RoleKnight},
		{19, types.RoleRaven},
	}
	var out []types.RoleKind
	for _, s := range steps {
		if n >= s.min {
			out = append(out, s.kind)
		}
	}
	return out
}

func presetTimeouts(n int) (night, day, vote int) {
	switch {
	case n <= 8:
		return 45, 180, 45
	case n <= 12:
		return 60, 300, 60
	}
	return 90, 400, 90
}
